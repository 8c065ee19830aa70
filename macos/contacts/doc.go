// Package contacts provides read access to the macOS address book for agents.
//
// The package exposes two primitives:
//
//   - All: every contact across the address book containers.
//   - Find: contacts whose name, organization, email, or phone contains a query.
//
// Each container (iCloud, Exchange, On My Mac) is a separate collection
// source, so one unreadable account does not hide the others. Find first asks
// the backend for a case-sensitive substring match on the name. When that
// yields nothing it reads every contact and matches case-insensitively on
// name, organization, email addresses, and phone numbers.
//
// # Backends
//
// [NewBridge] picks the backend. Darwin builds with cgo read Contacts.framework
// directly through [Framework], one store per container. Other builds fall
// back to the automation bridge, which sees the address book as a single
// store. Access requires System Settings > Privacy & Security > Contacts.
package contacts
