// Package messages reads, sends, and schedules iMessage/SMS/RCS messages.
//
// Data sources
//
//   - SQLite (~/Library/Messages/chat.db): read and unread queries. Requires
//     Full Disk Access for the calling process.
//   - AppleScript (Messages.app): send operations and contact name enrichment.
//
// Operations
//
//  1. Send(phone, body)
//     Deliver a message now. The service of an existing conversation is tried
//     first, then iMessage, SMS, and RCS.
//  2. Read(phone, limit)
//     Newest messages with one contact. Phone numbers match regardless of
//     formatting, with or without a +1 country prefix.
//  3. Unread(limit)
//     Newest unread inbound messages across all conversations.
//  4. Schedule(phone, body, at)
//     Queue a send for later. Queued sends live in process memory only.
//
// Limits default to 10 and are capped at 50.
//
// Operational notes
//
//   - This package does not implement message deletion.
//   - SQLite access uses github.com/mattn/go-sqlite3 (CGO required).
package messages
