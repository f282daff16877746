package metrics

import (
	"mercator-hq/saturn/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// IssueMetrics tracks discrepancy issues raised by validation runs.
//
// Metrics:
//   - mercator_saturn_issues_total: Total issues raised by severity
//   - mercator_saturn_issues_per_validation: Issue count distribution per run (histogram)
type IssueMetrics struct {
	// Total issue counter by severity
	issuesTotal *prometheus.CounterVec

	// Issues per validation run histogram
	issuesPerValidation prometheus.Histogram
}

// NewIssueMetrics creates and registers issue metrics with the provided registry.
func NewIssueMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *IssueMetrics {
	im := &IssueMetrics{
		issuesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "issues_total",
				Help:      "Total number of discrepancy issues raised by severity",
			},
			[]string{"severity"},
		),

		issuesPerValidation: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "issues_per_validation",
				Help:      "Distribution of issue counts per validation run",
				// Most presentations yield a handful of discrepancies; the
				// zero bucket counts clean runs.
				Buckets: []float64{0, 1, 2, 3, 5, 10, 20, 50},
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		im.issuesTotal,
		im.issuesPerValidation,
	)

	return im
}

// RecordIssue records a single discrepancy issue.
//
// Parameters:
//   - severity: Issue severity ("critical", "major", "minor")
//
// Example:
//
//	im.RecordIssue("critical")
func (im *IssueMetrics) RecordIssue(severity string) {
	im.issuesTotal.WithLabelValues(severity).Inc()
}

// RecordValidationIssues records the total issue count of a completed run.
//
// Parameters:
//   - count: Number of issues the run produced
//
// A zero count is recorded too; the share of clean runs falls out of the
// le="0" bucket.
func (im *IssueMetrics) RecordValidationIssues(count int) {
	if count < 0 {
		return
	}

	im.issuesPerValidation.Observe(float64(count))
}
