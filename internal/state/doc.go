// Package state holds the client's authoritative in-memory model.
//
// # Overview
//
// One Snapshot describes the whole client: session flags, the signed-in
// user with contacts and invitations, the nearby matches, both chat
// collections and the read markers. Three writers feed it:
//
//   - session commands and cursor moves (core.Core, via Store.Update)
//   - inbound channel events (core.Core, via Store.Apply)
//   - read-marker writes mirrored from readmark.Store
//
// Readers (the terminal monitor, tests, embedding applications) call
// Store.Snapshot and derive views with the selector functions.
//
// # Reducer
//
// Reduce is the single step function for inbound events. It implements
// events.Visitor, so a new event kind does not compile until the reducer
// handles it. Rules it keeps:
//
//   - Appends are filtered by id first; a redelivered event converges.
//   - A second match-join for the same participant replaces their count.
//   - user.match is cleared only when the event's match id equals the
//     current one, checked at apply time. A stale leave for a match the
//     user already left does not touch the user.
//   - match-update overlays only the keys the payload carries.
//   - Matches are re-sorted by distance after match-create only.
//   - A handler error or panic leaves the snapshot unchanged.
//
// Reduce returns Effects listing topics the caller must leave on the
// event channel; it performs no I/O itself.
//
// # Concurrency Model
//
// Store uses a readers-writer lock:
//
//   - Update and Apply take the write lock, so handlers never interleave.
//   - Snapshot takes the read lock and returns a copy.
//
// Every commit increments Version; readers compare versions to detect
// change without diffing.
//
// # Unread Counts
//
// Unread, MatchUnread, InboxUnread and PrivateUnreadTotal are pure
// functions of the snapshot and are recomputed on every call.
package state
