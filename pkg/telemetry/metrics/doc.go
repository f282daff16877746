// Package metrics provides Prometheus metrics collection for Mercator Saturn.
//
// # Overview
//
// The metrics package implements comprehensive Prometheus metrics for monitoring
// rule evaluation, validation runs, discrepancy issues, catalog assembly and
// rule source synchronization. It provides high-performance metric collection
// with minimal overhead (<50µs per update).
//
// # Metrics Categories
//
//   - Rule Metrics: Per-rule evaluation count, duration, triggered and skipped counts
//   - Validation Metrics: Validation run count, duration, rules evaluated, context size
//   - Issue Metrics: Discrepancy issues by severity and per-run distribution
//   - Loader Metrics: Catalog load passes, catalog composition, skipped sources and records
//   - Source Metrics: Rule source health, sync latency and error rates
//   - Cache Metrics: Cache hits, misses, and sizes (if caching enabled)
//
// # Usage
//
//	// Create collector
//	collector := metrics.NewCollector(config, registry)
//
//	// Record a completed validation run
//	collector.RecordValidation(
//		"discrepant",          // outcome
//		"success",             // status
//		120*time.Millisecond,  // duration
//		86,                    // rules evaluated
//		3,                     // issues raised
//	)
//
//	// The rule engine records per-rule outcomes through the same collector
//	engine.New(catalog, engine.WithMetrics(collector))
//
//	// Record source sync metrics
//	collector.RecordSync("git", 800*time.Millisecond)
//	collector.UpdateSourceHealth("git", true)
//
// # Performance
//
// The metrics package is optimized for minimal overhead:
//
//   - Lock-free counters where possible
//   - Pre-allocated metric instances
//   - Batch updates for high-volume metrics
//   - Configurable cardinality limits
//   - Target: <50µs per metric update
//
// # Custom Histogram Buckets
//
// The collector uses custom histogram buckets optimized for rule evaluation
// workloads:
//
//	Validation Duration: 5ms, 10ms, 25ms, 50ms, 100ms, 250ms, 500ms, 1s, 2.5s
//	Rules per Validation: 10, 25, 50, 100, 250, 500, 1000
//
// # Prometheus Endpoint
//
// All metrics are exposed on the /metrics endpoint in standard Prometheus format:
//
//	# HELP mercator_saturn_validations_total Total number of document validation runs processed
//	# TYPE mercator_saturn_validations_total counter
//	mercator_saturn_validations_total{outcome="discrepant",status="success"} 1234
//
// # Cardinality Management
//
// The collector implements cardinality limits to prevent memory issues:
//
//   - Maximum 10,000 unique rule IDs per metric
//   - Overflow rule IDs aggregated into "other"
//
// Rule IDs from declarative rulebooks are bounded, but persisted store
// records carry user-assigned identifiers, so the limit guards against
// unbounded growth.
//
// # Integration
//
// The Collector satisfies the recorder interfaces the rule engine and the
// catalog manager consume, so one instance serves all components:
//
//   - engine.MetricsRecorder: per-rule executions and issues
//   - loader.MetricsRecorder: catalog load passes and skip counts
package metrics
