// Package backoff holds the pure retry delay policy shared by the sync
// orchestrator and the asset updater, so both degrade the same way under
// repeated failure.
package backoff

import (
	"math"
	"time"
)

// Policy defines exponential backoff parameters.
type Policy struct {
	Initial time.Duration
	Max     time.Duration
	Factor  float64
}

// NextDelay returns the delay before the attempt following retryCount
// failures (0-based) with clamping. The function is pure: the same
// retryCount always yields the same delay, so a delay can be recomputed
// from the persisted counter after a restart.
func (p Policy) NextDelay(retryCount int) time.Duration {
	if retryCount < 0 {
		retryCount = 0
	}
	initial := p.Initial
	if initial <= 0 {
		initial = time.Second
	}
	factor := p.Factor
	if factor <= 0 {
		factor = 2
	}

	delay := float64(initial) * math.Pow(factor, float64(retryCount))
	d := time.Duration(delay)
	if p.Max > 0 && (d > p.Max || d <= 0) {
		d = p.Max
	}
	if d <= 0 {
		d = initial
	}
	return d
}
