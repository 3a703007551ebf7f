// Package connectivity tracks backend reachability for the offline-first
// agent. The rest of the system never probes the network directly; it asks
// the observer for the last known state, or subscribes to be woken up when
// the agent comes back online.
package connectivity

import (
	"context"

	"github.com/modic-health/sync-agent/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/connectivity_mock.go -package=mock

// Observer reports the current connectivity state and notifies subscribers
// on state edges.
type Observer interface {
	// Start launches the background probe loop. The loop exits when ctx is
	// cancelled or Stop is called.
	Start(ctx context.Context)

	// Stop cancels the probe loop and blocks until it has exited. Safe to
	// call when the observer is not running.
	Stop()

	// State returns the last observed connectivity state.
	State() models.ConnectivityState

	// Subscribe registers a channel that receives the new state on every
	// online/offline edge. Delivery is best-effort: a subscriber that is not
	// draining its channel misses intermediate edges, never blocks the
	// observer.
	Subscribe() <-chan models.ConnectivityState
}
