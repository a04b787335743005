package models

import "errors"

// Sentinel errors returned by the storage layer. Callers match with errors.Is;
// the HTTP layer maps them to status codes.
var (
	// ErrUnauthorized means no caller identity was supplied where one is required.
	ErrUnauthorized = errors.New("liftlog: unauthorized")

	// ErrNotFound means the entity is absent or the caller does not own it.
	// The two cases are deliberately indistinguishable to prevent enumeration.
	ErrNotFound = errors.New("liftlog: not found")

	// ErrInvalidState means the operation is not legal in the session's
	// current status (e.g. resuming an active session, adding a set to a
	// cancelled session).
	ErrInvalidState = errors.New("liftlog: invalid session state")

	// ErrMutationFailed means the durable store rejected or timed out a write.
	ErrMutationFailed = errors.New("liftlog: mutation failed")
)
