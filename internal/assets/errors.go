package assets

import "errors"

var (
	// ErrIntegrity is returned when a downloaded asset's sha256 does not
	// match the announced hash. The download is discarded and the
	// installed asset stays active.
	ErrIntegrity = errors.New("asset integrity check failed")

	// ErrSkipped is returned when an update check was gated off: the
	// agent is offline, the minimum check interval has not elapsed, a
	// failure backoff window is open, or the connection is metered and
	// policy forbids large downloads.
	ErrSkipped = errors.New("update check skipped")

	// ErrNoUpdate is returned by a manual apply when no announced update
	// is pending.
	ErrNoUpdate = errors.New("no update available")
)
