// Package deskmcp is a lightweight index for the packages of the deskmcp
// server.
//
// This root package is documentation-only. The server binary lives in
// cmd/deskmcp; import specific subpackages to reuse the pieces.
//
// Available subpackages:
//   - github.com/spachava753/deskmcp/tools
//     Tool catalog, argument validation, routing, and the dispatcher that
//     turns every failure into an error result.
//   - github.com/spachava753/deskmcp/collection
//     Fan-out over the stores of a domain with per-store failure isolation
//     and the case-insensitive fallback search.
//   - github.com/spachava753/deskmcp/access
//     Per-domain permission probe with remediation messages.
//   - github.com/spachava753/deskmcp/macos/bridge
//     JXA automation bridge to Contacts, Notes, Reminders, and Calendar.
//   - github.com/spachava753/deskmcp/macos/contacts, .../notes,
//     .../reminders, .../calendar, .../messages
//     Domain services.
//   - github.com/spachava753/deskmcp/schedule
//     In-memory one-shot scheduler used for delayed messages.
//   - github.com/spachava753/deskmcp/mcpserver
//     MCP stdio surface.
//
// Discovery workflow for agents:
//   - Run: go doc github.com/spachava753/deskmcp
//   - Then drill in with:
//     go doc github.com/spachava753/deskmcp/tools
//     go doc github.com/spachava753/deskmcp/macos/reminders
package deskmcp
