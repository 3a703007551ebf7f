package adapter

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport marks failures where the request never produced a
	// definitive answer: connection errors, timeouts and 5xx responses.
	// These are safe to retry.
	ErrTransport = errors.New("transport failure")

	// ErrUnauthorized is returned for 401 responses.
	ErrUnauthorized = errors.New("client unauthorized")

	// ErrAlreadyExists is returned for 409 responses on account creation.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("not found")

	// ErrBatchUnsupported is returned when the backend does not expose the
	// batch record endpoint.
	ErrBatchUnsupported = errors.New("batch endpoint unsupported")
)

// RejectionError is a definitive application-level refusal (a 4xx response
// not covered by a sentinel above). Retrying the same payload will not
// succeed, so callers must not reschedule it.
type RejectionError struct {
	StatusCode int
	Reason     string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("rejected by server (http %d): %s", e.StatusCode, e.Reason)
}

// IsRetryable reports whether err describes a failure that may resolve on a
// later attempt with the same payload.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransport)
}
