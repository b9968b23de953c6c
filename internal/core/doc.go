// Package core is the command and bootstrap layer around the state store.
//
// # Overview
//
// Core wires the remote API, the event channel, the read-marker store and
// the token store to one state.Store. It is the only writer of that store.
//
// # Commands
//
// Commands come in two shapes and the difference is intentional:
//
//   - Session commands (SignIn, SignUp, SignOut, UpdateName) and cursor
//     moves (SelectMatch, SelectInbox) update the snapshot right after the
//     remote call succeeds.
//   - Match and message commands issue exactly one remote call and return.
//     The change comes back as a channel event and goes through the same
//     reducer as changes made by other users.
//
// Remote failures are returned to the caller wrapped with the command name;
// Core never swallows them.
//
// # Events and Topics
//
// Core implements events.Handler. Each frame is decoded, reduced under the
// store lock, and followed by topic reconciliation: while online and signed
// in the client holds the user's own topic and the current match topic.
// Joining the user topic reloads private messages; joining a match topic
// reloads the match chat. Loads replace their collection, so a reconnect
// never double-counts.
//
// # Bootstrap
//
// Start marks the store ready, hydrates read markers, locates the device,
// fetches the user and nearby matches, and connects the channel. A failed
// location skips the fetches; a missing user or an empty match list is
// logged and the session carries on signed out.
package core
