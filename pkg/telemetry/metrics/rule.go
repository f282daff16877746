package metrics

import (
	"time"

	"mercator-hq/saturn/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RuleMetrics tracks metrics related to individual rule evaluations.
//
// Metrics:
//   - mercator_saturn_rule_executions_total: Total rule evaluations by rule and outcome
//   - mercator_saturn_rule_execution_duration_seconds: Rule evaluation duration
//   - mercator_saturn_rule_triggered_total: Number of times a rule raised a discrepancy
//   - mercator_saturn_rule_skipped_total: Number of times a rule was skipped on missing fields
type RuleMetrics struct {
	// Total rule evaluations
	executionsTotal *prometheus.CounterVec

	// Rule evaluation duration histogram
	executionDuration *prometheus.HistogramVec

	// Rule triggered (at least one condition evaluated false)
	triggeredTotal *prometheus.CounterVec

	// Rule skipped (required field absent from the context)
	skippedTotal *prometheus.CounterVec
}

// NewRuleMetrics creates and registers rule metrics with the provided registry.
func NewRuleMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RuleMetrics {
	rm := &RuleMetrics{
		executionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_executions_total",
				Help:      "Total number of rule evaluations",
			},
			[]string{"rule_id", "outcome"},
		),

		executionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_execution_duration_seconds",
				Help:      "Duration of a single rule evaluation in seconds",
				// Rule evaluations are in-memory field comparisons (< 10ms)
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15), // 1µs to 16ms
			},
			[]string{"rule_id"},
		),

		triggeredTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_triggered_total",
				Help:      "Total number of rule evaluations that raised a discrepancy",
			},
			[]string{"rule_id"},
		),

		skippedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_skipped_total",
				Help:      "Total number of rule evaluations skipped because a required field was absent",
			},
			[]string{"rule_id"},
		),
	}

	// Register all metrics
	registry.MustRegister(
		rm.executionsTotal,
		rm.executionDuration,
		rm.triggeredTotal,
		rm.skippedTotal,
	)

	return rm
}

// RecordExecution records a single rule evaluation.
//
// Parameters:
//   - ruleID: Rule identifier
//   - outcome: Terminal evaluation state ("passed", "triggered", "skipped")
//   - duration: Time taken to evaluate the rule
//
// Example:
//
//	rm.RecordExecution("UCP600-18B", "triggered", 150*time.Microsecond)
func (rm *RuleMetrics) RecordExecution(ruleID, outcome string, duration time.Duration) {
	rm.executionsTotal.WithLabelValues(ruleID, outcome).Inc()
	rm.executionDuration.WithLabelValues(ruleID).Observe(duration.Seconds())
}

// RecordTriggered records that a rule found a discrepancy.
//
// Parameters:
//   - ruleID: Rule identifier
//
// A rule is "triggered" when at least one of its conditions evaluated false
// against the extracted document data, producing a discrepancy issue.
func (rm *RuleMetrics) RecordTriggered(ruleID string) {
	rm.triggeredTotal.WithLabelValues(ruleID).Inc()
}

// RecordSkipped records that a rule was skipped.
//
// Parameters:
//   - ruleID: Rule identifier
//
// A rule is "skipped" when a field it requires is absent from the evaluation
// context, so none of its conditions were evaluated.
func (rm *RuleMetrics) RecordSkipped(ruleID string) {
	rm.skippedTotal.WithLabelValues(ruleID).Inc()
}
