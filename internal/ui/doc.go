// Package ui provides the rally terminal monitor.
//
// The monitor is a Bubble Tea program that polls state.Store.Snapshot() on a
// tick and renders it; it never writes the snapshot itself. The two actions
// it offers (select a match, mark the chat read) go through the Controller,
// which the core implements.
//
// # Panes
//
//   - Matches: nearby matches with seats and distance, and the match under
//     the cursor with its participants and announcements
//   - Chat: the current match chat with its unread count
//   - Inbox: friends with per-contact unread counts, pending contact
//     requests and match invitations
//   - Logs: the tail of the client log file in a scrollable viewport
//
// The header shows the connection state, the signed-in user, the current
// match and the unread counters; the command bar shows the pane tabs and the
// short key help rendered by bubbles/help.
//
// # Files
//
//   - app.go: Model, Update loop, Run
//   - keys.go: key bindings
//   - header.go: header, command bar, help overlay
//   - matches.go, messages.go, logs.go: one file per pane group
//   - theme.go, style_helpers.go: lipgloss palettes and background helpers
package ui
