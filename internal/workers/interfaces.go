// Package workers provides the agent's background loops: the periodic queue
// drain with remote-truth merge, and the periodic model asset update check.
// It defines the Worker interface and a Workers aggregate that starts and
// stops them as a unit.
package workers

import "context"

// Worker is one background loop with the agent's start/stop discipline:
// Start launches the loop, stopping any previous run first; Stop cancels it
// and blocks until the loop has fully exited. Stop is safe to call on a
// worker that is not running.
type Worker interface {
	Start(ctx context.Context)
	Stop()
}
