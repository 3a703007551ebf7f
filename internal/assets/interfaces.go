// Package assets keeps the local model asset current with the version the
// backend announces, downloading and installing updates so that a partially
// written file is never observable as the active asset.
package assets

//go:generate mockgen -source=interfaces.go -destination=../workers/assets_mocks_test.go -package=workers

import (
	"context"

	"github.com/modic-health/sync-agent/models"
)

// Phase is the updater's current position in the update state machine.
type Phase string

const (
	PhaseIdle            Phase = "idle"
	PhaseChecking        Phase = "checking"
	PhaseUpdateAvailable Phase = "update_available"
	PhaseDownloading     Phase = "downloading"
	PhaseVerifying       Phase = "verifying"
	PhaseInstalling      Phase = "installing"
)

// Manager drives the asset update state machine. One update runs at a time;
// every failure path leaves the previously installed asset active.
type Manager interface {
	// CheckForUpdate probes the remote asset version and, when a
	// different hash is announced and policy allows, downloads, verifies
	// and installs it. When the auto-update or metered policy blocks the
	// download, the announced version stays surfaced via [Manager.Available]
	// until it is installed. Gated by connectivity, the minimum check
	// interval and the metered policy; gated calls return [ErrSkipped].
	CheckForUpdate(ctx context.Context) error

	// Available returns the announced asset version that has not been
	// installed yet, and whether one is pending.
	Available() (models.AssetInfo, bool)

	// ApplyUpdate downloads, verifies and installs the available update.
	// A user-initiated install, so the auto-update and metered policies
	// do not apply; connectivity is still required. Returns [ErrNoUpdate]
	// when nothing is pending.
	ApplyUpdate(ctx context.Context) error

	// Phase reports where the updater currently is.
	Phase() Phase

	// Progress reports download completion in [0,1], or -1 when the
	// remote did not declare a size. Meaningful only while downloading.
	Progress() float64
}
