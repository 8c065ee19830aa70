// Package bridge is the automation boundary between the tool layers and the
// native macOS applications that own the data.
//
// The [Bridge] interface is deliberately small. A domain (contacts, notes,
// reminders, calendar, messages) exposes zero or more backing stores, each
// addressed by a [Handle]. Stores are enumerated, searched, appended to, and
// patched one field at a time. Items cross the boundary as untyped [Record]
// values and are decoded into domain types with [Decode].
//
// # Implementation
//
// [OSAScript] runs JavaScript for Automation (JXA) snippets through
// /usr/bin/osascript and exchanges JSON with them. Non-Darwin builds return
// [ErrUnsupportedPlatform] from every call.
//
// # Permissions
//
// The first call against an application triggers the macOS consent prompt.
// A denied prompt surfaces as a script error, which the access gate turns into
// a remediation message.
package bridge
