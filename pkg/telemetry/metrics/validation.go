package metrics

import (
	"time"

	"mercator-hq/saturn/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ValidationMetrics tracks metrics related to whole validation runs.
//
// Metrics:
//   - mercator_saturn_validations_total: Total validation count by outcome and status
//   - mercator_saturn_validation_duration_seconds: Validation run duration histogram
//   - mercator_saturn_validation_rules_total: Total rules evaluated by result
//   - mercator_saturn_rules_per_validation: Rules evaluated per run (histogram)
//   - mercator_saturn_context_fields: Extracted fields per evaluation context
type ValidationMetrics struct {
	// Total validation run count
	validationsTotal *prometheus.CounterVec

	// Validation run duration histogram
	validationDuration *prometheus.HistogramVec

	// Rule result counts (passed, triggered, skipped)
	rulesTotal *prometheus.CounterVec

	// Rules evaluated per validation run
	rulesPerValidation prometheus.Histogram

	// Extracted field count per evaluation context
	contextFields prometheus.Histogram
}

// NewValidationMetrics creates and registers validation metrics with the provided registry.
func NewValidationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ValidationMetrics {
	vm := &ValidationMetrics{
		validationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "validations_total",
				Help:      "Total number of document validation runs processed",
			},
			[]string{"outcome", "status"},
		),

		validationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "validation_duration_seconds",
				Help:      "Duration of validation runs in seconds",
				Buckets:   cfg.ValidationDurationBuckets,
			},
			[]string{"outcome"},
		),

		rulesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "validation_rules_total",
				Help:      "Total number of rules evaluated across all validation runs",
			},
			[]string{"result"},
		),

		rulesPerValidation: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rules_per_validation",
				Help:      "Number of rules evaluated per validation run",
				Buckets:   cfg.RuleCountBuckets,
			},
		),

		contextFields: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "context_fields",
				Help:      "Number of extracted fields in the evaluation context",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1 to 2048 fields
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		vm.validationsTotal,
		vm.validationDuration,
		vm.rulesTotal,
		vm.rulesPerValidation,
		vm.contextFields,
	)

	return vm
}

// RecordValidation records metrics for a completed validation run.
//
// Parameters:
//   - outcome: Run outcome ("compliant", "discrepant")
//   - status: Run status ("success", "error")
//   - duration: Total run duration
//   - rulesEvaluated: Number of rules evaluated in the run
func (vm *ValidationMetrics) RecordValidation(outcome, status string, duration time.Duration, rulesEvaluated int) {
	// Increment validation counter
	vm.validationsTotal.WithLabelValues(outcome, status).Inc()

	// Record duration
	vm.validationDuration.WithLabelValues(outcome).Observe(duration.Seconds())

	// Record rules evaluated (if known)
	if rulesEvaluated > 0 {
		vm.rulesTotal.WithLabelValues("total").Add(float64(rulesEvaluated))
		vm.rulesPerValidation.Observe(float64(rulesEvaluated))
	}
}

// RecordRuleResults records rule result counts separately for each terminal state.
//
// Parameters:
//   - passed: Number of rules whose conditions all held
//   - triggered: Number of rules that raised a discrepancy
//   - skipped: Number of rules skipped on missing fields
func (vm *ValidationMetrics) RecordRuleResults(passed, triggered, skipped int) {
	if passed > 0 {
		vm.rulesTotal.WithLabelValues("passed").Add(float64(passed))
	}
	if triggered > 0 {
		vm.rulesTotal.WithLabelValues("triggered").Add(float64(triggered))
	}
	if skipped > 0 {
		vm.rulesTotal.WithLabelValues("skipped").Add(float64(skipped))
	}
}

// RecordContextSize records the size of an evaluation context.
//
// Parameters:
//   - fieldCount: Number of extracted top-level fields in the context
func (vm *ValidationMetrics) RecordContextSize(fieldCount int) {
	if fieldCount > 0 {
		vm.contextFields.Observe(float64(fieldCount))
	}
}
