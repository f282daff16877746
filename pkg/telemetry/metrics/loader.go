package metrics

import (
	"time"

	"mercator-hq/saturn/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// LoaderMetrics tracks catalog assembly: load passes over the declarative
// rulebooks and the persisted record store, and the records each pass
// skipped.
//
// Metrics:
//   - mercator_saturn_catalog_reloads_total: Total load passes by outcome
//   - mercator_saturn_catalog_reload_duration_seconds: Load pass duration
//   - mercator_saturn_catalog_rules: Current catalog size by origin
//   - mercator_saturn_catalog_skipped_sources_total: Declarative sources skipped on load errors
//   - mercator_saturn_catalog_skipped_records_total: Persisted records skipped by the translator
type LoaderMetrics struct {
	// Total load passes
	reloadsTotal *prometheus.CounterVec

	// Load pass duration histogram
	reloadDuration *prometheus.HistogramVec

	// Current catalog composition (gauge, set on each successful load)
	rulesLoaded *prometheus.GaugeVec

	// Declarative sources skipped because they failed to load
	skippedSources prometheus.Counter

	// Persisted records skipped because they failed to translate
	skippedRecords prometheus.Counter
}

// NewLoaderMetrics creates and registers loader metrics with the provided registry.
func NewLoaderMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *LoaderMetrics {
	lm := &LoaderMetrics{
		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "catalog_reloads_total",
				Help:      "Total number of catalog load passes by outcome",
			},
			[]string{"outcome"},
		),

		reloadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "catalog_reload_duration_seconds",
				Help:      "Duration of catalog load passes in seconds",
				// A pass reads every rulebook and store record
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
			},
			[]string{"outcome"},
		),

		rulesLoaded: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "catalog_rules",
				Help:      "Current number of catalog rules by origin",
			},
			[]string{"origin"},
		),

		skippedSources: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "catalog_skipped_sources_total",
				Help:      "Total number of declarative sources skipped on load errors",
			},
		),

		skippedRecords: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "catalog_skipped_records_total",
				Help:      "Total number of persisted records skipped by the translator",
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		lm.reloadsTotal,
		lm.reloadDuration,
		lm.rulesLoaded,
		lm.skippedSources,
		lm.skippedRecords,
	)

	return lm
}

// RecordReload records one catalog load pass.
//
// Parameters:
//   - outcome: Load outcome ("success", "failure")
//   - duration: Time the pass took
func (lm *LoaderMetrics) RecordReload(outcome string, duration time.Duration) {
	lm.reloadsTotal.WithLabelValues(outcome).Inc()
	lm.reloadDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordRulesLoaded records how many rules an origin contributed to the
// catalog. Called once per origin after each successful load pass, so the
// gauge always reflects the current catalog composition.
//
// Parameters:
//   - origin: Rule origin ("file", "store")
//   - count: Number of rules the origin contributed
func (lm *LoaderMetrics) RecordRulesLoaded(origin string, count int) {
	lm.rulesLoaded.WithLabelValues(origin).Set(float64(count))
}

// RecordSourceError counts one declarative source the load pass skipped.
func (lm *LoaderMetrics) RecordSourceError() {
	lm.skippedSources.Inc()
}

// RecordTranslationSkip counts one persisted record the translator skipped.
func (lm *LoaderMetrics) RecordTranslationSkip() {
	lm.skippedRecords.Inc()
}
