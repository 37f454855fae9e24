package session

import "errors"

// Common session service errors. Handlers map these onto the HTTP error
// surface; the service never exposes store internals directly.
var (
	// ErrSessionNotFound is returned when the session does not exist or is
	// owned by a different learner. The two cases are deliberately
	// indistinguishable to the caller.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionClosed is returned when an operation requires an active
	// session but the session is in a terminal state.
	ErrSessionClosed = errors.New("session is closed")

	// ErrSessionExpired is returned when the session's time limit has
	// elapsed. Detection performs the terminal transition as a side effect.
	ErrSessionExpired = errors.New("session has expired")

	// ErrConflict is returned when a concurrent update to the same session
	// was detected and this call lost the race.
	ErrConflict = errors.New("session was modified concurrently")

	// ErrCardMismatch is returned when the submitted item ID does not match
	// the card under the session cursor.
	ErrCardMismatch = errors.New("submitted item does not match the current card")
)
