// Package remote provides an HTTP client for the match backend API.
//
// # Overview
//
// This package is the Remote Access Layer of the client. It performs the
// create/read/update/delete calls against /api/v1 and decodes the JSON
// payloads into the types in types.go. It holds no state of its own.
//
// # Mutations are fire-and-forget
//
// Calls that change shared match or message state (create, join, leave,
// post, announce, ...) return only an error. The resulting change reaches
// every interested client, the caller included, through the event channel.
// Callers must not apply a local copy of the change as well; see package
// core for the reasoning.
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation and timeout control
//   - Set Accept: application/json and User-Agent: rally/0.1
//   - Carry a fresh X-Request-ID so backend logs can be correlated
//   - Attach the session token in the token header when one is stored
//
// # Error Handling
//
//   - Network errors: "execute request: dial tcp: connection refused"
//   - HTTP errors: *StatusError, "api /api/v1/match/join returned status 409"
//   - Rejected credentials on sign-in/sign-up: *AuthError wrapping the status
//   - Deserialization errors: "decode response: unexpected EOF"
//
// The client never retries. Command failures are returned to the caller so
// the UI can show per-action feedback.
//
// # Wire Quirks
//
// Coordinates travel as [lng, lat]. Record references may arrive either as a
// bare id or as a populated object; the Ref type accepts both.
package remote
