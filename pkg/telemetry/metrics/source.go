package metrics

import (
	"time"

	"mercator-hq/saturn/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// SourceMetrics tracks the health and sync performance of rule sources:
// the declarative rulebook directory, the git-backed rulebook repository
// and the persisted record store.
//
// Metrics:
//   - mercator_saturn_source_health: Source health status (1=reachable, 0=unreachable)
//   - mercator_saturn_source_sync_duration_seconds: Source sync latency
//   - mercator_saturn_source_sync_errors_total: Sync error count by type
//   - mercator_saturn_source_syncs_total: Total sync attempts per source
type SourceMetrics struct {
	// Source health status (gauge: 1=reachable, 0=unreachable)
	health *prometheus.GaugeVec

	// Source sync latency histogram
	syncDuration *prometheus.HistogramVec

	// Sync error counter
	errors *prometheus.CounterVec

	// Total sync attempts per source
	syncs *prometheus.CounterVec
}

// NewSourceMetrics creates and registers source metrics with the provided registry.
func NewSourceMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SourceMetrics {
	sm := &SourceMetrics{
		health: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "source_health",
				Help:      "Rule source health status (1=reachable, 0=unreachable)",
			},
			[]string{"source"},
		),

		syncDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "source_sync_duration_seconds",
				Help:      "Duration of rule source synchronization in seconds",
				// Local reads are fast; git pulls dominate the tail
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 13), // 10ms to ~40s
			},
			[]string{"source"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "source_sync_errors_total",
				Help:      "Total number of source sync errors by type",
			},
			[]string{"source", "error_type"},
		),

		syncs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "source_syncs_total",
				Help:      "Total number of synchronization attempts per rule source",
			},
			[]string{"source"},
		),
	}

	// Register all metrics
	registry.MustRegister(
		sm.health,
		sm.syncDuration,
		sm.errors,
		sm.syncs,
	)

	return sm
}

// UpdateHealth updates the health status of a rule source.
//
// Parameters:
//   - source: Source name (e.g., "rulebooks", "git", "store")
//   - healthy: true if the source is reachable, false otherwise
//
// The health metric is a gauge where 1=reachable, 0=unreachable.
func (sm *SourceMetrics) UpdateHealth(source string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	sm.health.WithLabelValues(source).Set(value)
}

// RecordSync records a synchronization attempt against a rule source.
//
// Parameters:
//   - source: Source name
//   - duration: Time the sync took
//
// Each call increments the attempt counter and observes the latency.
func (sm *SourceMetrics) RecordSync(source string, duration time.Duration) {
	sm.syncs.WithLabelValues(source).Inc()
	sm.syncDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordError records a sync error for a rule source.
//
// Parameters:
//   - source: Source name
//   - errorType: Type of error (e.g., "clone", "pull", "auth", "parse", "io")
//
// Common error types:
//   - "clone": Initial checkout of the rulebook repository failed
//   - "pull": Fetching upstream rulebook changes failed
//   - "auth": Authentication against the remote failed
//   - "parse": A rulebook or record could not be parsed
//   - "io": Local filesystem or database error
func (sm *SourceMetrics) RecordError(source, errorType string) {
	sm.errors.WithLabelValues(source, errorType).Inc()
}
