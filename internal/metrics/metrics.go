package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	unsyncedOperations = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sync_agent",
			Name:      "unsynced_operations",
			Help:      "Queued operations not yet acknowledged by the backend.",
		},
	)

	drainResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sync_agent",
			Name:      "drain_operations_total",
			Help:      "Drained operations by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	remoteCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sync_agent",
			Name:      "remote_calls_total",
			Help:      "Outbound backend calls by operation and result.",
		},
		[]string{"operation", "result"},
	)

	assetInstalls = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sync_agent",
			Name:      "asset_installs_total",
			Help:      "Model assets verified and installed.",
		},
	)

	assetCheckFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sync_agent",
			Name:      "asset_check_failures_total",
			Help:      "Failed model asset update checks.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			unsyncedOperations,
			drainResults,
			remoteCalls,
			assetInstalls,
			assetCheckFailures,
		)
	})
}

// SetUnsynced records the current depth of the pending operation queue.
func SetUnsynced(n int) {
	unsyncedOperations.Set(float64(n))
}

// IncDrain counts one drained operation with its outcome
// ("synced", "failed", "terminal").
func IncDrain(kind, outcome string) {
	drainResults.WithLabelValues(kind, outcome).Inc()
}

// IncRemoteCall counts one backend call with its result ("ok", "error").
func IncRemoteCall(operation, result string) {
	remoteCalls.WithLabelValues(operation, result).Inc()
}

// IncAssetInstall counts one verified asset install.
func IncAssetInstall() {
	assetInstalls.Inc()
}

// IncAssetCheckFailure counts one failed asset update check.
func IncAssetCheckFailure() {
	assetCheckFailures.Inc()
}
