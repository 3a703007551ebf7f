package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrOperationNotFound is returned when a queued operation lookup or
	// update targets an id that does not exist.
	ErrOperationNotFound = errors.New("operation not found")

	// ErrInvalidTransition is returned when a status update finds the
	// operation in a state the requested transition is not allowed from
	// (e.g. marking Synced an operation that never went InFlight).
	ErrInvalidTransition = errors.New("invalid operation status transition")

	// ErrRecordNotFound is returned when a record lookup or in-place URL
	// patch targets a record id that does not exist locally.
	ErrRecordNotFound = errors.New("record not found")
)
