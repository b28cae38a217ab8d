package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReconcileTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visionpath_reconcile_total",
			Help: "Reconciliation passes by outcome",
		},
		[]string{"outcome"}, // outcome: synced, error, offline
	)

	MutationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visionpath_mutation_total",
			Help: "Entity mutations by collection, operation and remote outcome",
		},
		[]string{"entity", "op", "outcome"}, // outcome: synced, error, offline
	)

	CacheWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "visionpath_cache_write_failures_total",
			Help: "Local snapshot writes that failed (non-fatal)",
		},
	)

	RemoteReadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "visionpath_remote_read_duration_seconds",
			Help:    "Remote collection read duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"collection"},
	)
)

// ObserveRemoteRead records one collection read during reconciliation.
func ObserveRemoteRead(collection string, duration time.Duration) {
	RemoteReadDuration.WithLabelValues(collection).Observe(duration.Seconds())
}
