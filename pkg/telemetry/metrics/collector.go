package metrics

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"mercator-hq/saturn/pkg/config"
	"mercator-hq/saturn/pkg/crl/ast"
	"mercator-hq/saturn/pkg/rules/engine"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the main orchestrator for all Prometheus metrics in Mercator
// Saturn. It manages metric registration, collection, and provides a unified
// interface for recording metrics across all components.
//
// The collector satisfies both the engine's and the loader's recorder
// interfaces, so a single instance can be handed to the rule engine, the
// catalog manager and the store sync loop.
//
// The collector is designed for high-performance with minimal overhead (<50µs per update):
//   - Pre-allocated metric instances
//   - Lock-free counters where possible
//   - Cardinality limits to prevent memory issues
//   - Custom histogram buckets optimized for rule evaluation workloads
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// Rule evaluation metrics
	ruleMetrics *RuleMetrics

	// Validation run metrics
	validationMetrics *ValidationMetrics

	// Discrepancy issue metrics
	issueMetrics *IssueMetrics

	// Catalog loader metrics
	loaderMetrics *LoaderMetrics

	// Rule source sync metrics
	sourceMetrics *SourceMetrics

	// Cache metrics (optional, if caching is implemented)
	cacheMetrics *CacheMetrics

	// Cardinality tracking
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:    true,
//		Namespace:  "mercator",
//		Subsystem:  "saturn",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// Set defaults if not specified
	if cfg.Namespace == "" {
		cfg.Namespace = "mercator"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "saturn"
	}
	if len(cfg.ValidationDurationBuckets) == 0 {
		// Optimized for in-memory validation runs (5ms - 2.5s)
		cfg.ValidationDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5}
	}
	if len(cfg.RuleCountBuckets) == 0 {
		// Catalog sizes from small rulebooks to full UCP coverage
		cfg.RuleCountBuckets = []float64{10, 25, 50, 100, 250, 500, 1000}
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(10000), // Max 10K unique label sets
	}

	// Initialize metric subsystems
	c.ruleMetrics = NewRuleMetrics(cfg, registry)
	c.validationMetrics = NewValidationMetrics(cfg, registry)
	c.issueMetrics = NewIssueMetrics(cfg, registry)
	c.loaderMetrics = NewLoaderMetrics(cfg, registry)
	c.sourceMetrics = NewSourceMetrics(cfg, registry)
	c.cacheMetrics = NewCacheMetrics(cfg, registry)

	return c
}

// RecordValidation records metrics for a completed validation run.
//
// Parameters:
//   - outcome: Run outcome ("compliant", "discrepant")
//   - status: Run status ("success", "error")
//   - duration: Total run duration
//   - rulesEvaluated: Number of rules evaluated in the run
//   - issueCount: Number of discrepancy issues the run produced
//
// Example:
//
//	collector.RecordValidation(
//		"discrepant",
//		"success",
//		120*time.Millisecond,
//		86,
//		3,
//	)
func (c *Collector) RecordValidation(outcome, status string, duration time.Duration, rulesEvaluated, issueCount int) {
	if !c.config.Enabled {
		return
	}

	c.validationMetrics.RecordValidation(outcome, status, duration, rulesEvaluated)
	c.issueMetrics.RecordValidationIssues(issueCount)
}

// RecordRuleExecution records one rule evaluation and its outcome. It
// satisfies the rule engine's metrics recorder interface.
//
// Parameters:
//   - ruleID: Rule identifier (e.g., "UCP600-18B")
//   - outcome: Terminal evaluation state
//   - duration: Evaluation duration
//
// The outcome is recorded lowercase. Triggered and skipped evaluations
// additionally increment their per-rule counters.
func (c *Collector) RecordRuleExecution(ruleID string, outcome engine.RuleOutcome, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	// Check cardinality limit
	labelSet := fmt.Sprintf("rule:%s", ruleID)
	if !c.cardinalityLimiter.Allow(labelSet) {
		// Aggregate into "other" to prevent cardinality explosion
		ruleID = "other"
	}

	c.ruleMetrics.RecordExecution(ruleID, strings.ToLower(outcome.String()), duration)

	switch outcome {
	case engine.OutcomeTriggered:
		c.ruleMetrics.RecordTriggered(ruleID)
	case engine.OutcomeSkipped:
		c.ruleMetrics.RecordSkipped(ruleID)
	}
}

// RecordIssue records one generated issue by severity. It satisfies the
// rule engine's metrics recorder interface.
//
// Parameters:
//   - severity: Issue severity
//
// The severity is recorded lowercase.
func (c *Collector) RecordIssue(severity ast.Severity) {
	if !c.config.Enabled {
		return
	}

	c.issueMetrics.RecordIssue(strings.ToLower(string(severity)))
}

// RecordRuleResults records rule result counts of a completed run,
// separately for each terminal state.
//
// Parameters:
//   - passed: Number of rules whose conditions all held
//   - triggered: Number of rules that raised a discrepancy
//   - skipped: Number of rules skipped on missing fields
func (c *Collector) RecordRuleResults(passed, triggered, skipped int) {
	if !c.config.Enabled {
		return
	}

	c.validationMetrics.RecordRuleResults(passed, triggered, skipped)
}

// RecordContextSize records the size of an evaluation context.
//
// Parameters:
//   - fieldCount: Number of extracted top-level fields in the context
func (c *Collector) RecordContextSize(fieldCount int) {
	if !c.config.Enabled {
		return
	}

	c.validationMetrics.RecordContextSize(fieldCount)
}

// RecordReload records one catalog load pass and its outcome. It satisfies
// the catalog manager's metrics recorder interface.
//
// Parameters:
//   - outcome: Load outcome ("success", "failure")
//   - duration: Time the pass took
func (c *Collector) RecordReload(outcome string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.loaderMetrics.RecordReload(outcome, duration)
}

// RecordRulesLoaded records how many rules an origin contributed to the
// catalog. It satisfies the catalog manager's metrics recorder interface.
//
// Parameters:
//   - origin: Rule origin ("file", "store")
//   - count: Number of rules the origin contributed
func (c *Collector) RecordRulesLoaded(origin string, count int) {
	if !c.config.Enabled {
		return
	}

	c.loaderMetrics.RecordRulesLoaded(origin, count)
}

// RecordSourceError counts one skipped declarative source. It satisfies
// the catalog manager's metrics recorder interface.
func (c *Collector) RecordSourceError() {
	if !c.config.Enabled {
		return
	}

	c.loaderMetrics.RecordSourceError()
}

// RecordTranslationSkip counts one skipped persisted record. It satisfies
// the catalog manager's metrics recorder interface.
func (c *Collector) RecordTranslationSkip() {
	if !c.config.Enabled {
		return
	}

	c.loaderMetrics.RecordTranslationSkip()
}

// UpdateSourceHealth updates the health status of a rule source.
//
// Parameters:
//   - source: Source name (e.g., "rulebooks", "git", "store")
//   - healthy: true if the source is reachable, false otherwise
//
// The health metric is a gauge where 1=reachable, 0=unreachable.
func (c *Collector) UpdateSourceHealth(source string, healthy bool) {
	if !c.config.Enabled {
		return
	}

	c.sourceMetrics.UpdateHealth(source, healthy)
}

// RecordSync records a synchronization attempt against a rule source.
//
// Parameters:
//   - source: Source name
//   - duration: Time the sync took
func (c *Collector) RecordSync(source string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.sourceMetrics.RecordSync(source, duration)
}

// RecordSyncError records a sync error for a rule source.
//
// Parameters:
//   - source: Source name
//   - errorType: Type of error (e.g., "clone", "pull", "auth", "parse", "io")
func (c *Collector) RecordSyncError(source, errorType string) {
	if !c.config.Enabled {
		return
	}

	c.sourceMetrics.RecordError(source, errorType)
}

// RecordCacheHit records a cache hit.
//
// Parameters:
//   - cacheName: Name of the cache (e.g., "catalog", "parse")
func (c *Collector) RecordCacheHit(cacheName string) {
	if !c.config.Enabled {
		return
	}

	c.cacheMetrics.RecordHit(cacheName)
}

// RecordCacheMiss records a cache miss.
//
// Parameters:
//   - cacheName: Name of the cache
func (c *Collector) RecordCacheMiss(cacheName string) {
	if !c.config.Enabled {
		return
	}

	c.cacheMetrics.RecordMiss(cacheName)
}

// UpdateCacheSize updates the current size of a cache.
//
// Parameters:
//   - cacheName: Name of the cache
//   - size: Current number of entries in the cache
func (c *Collector) UpdateCacheSize(cacheName string, size int) {
	if !c.config.Enabled {
		return
	}

	c.cacheMetrics.UpdateSize(cacheName, size)
}

// Registry returns the Prometheus registry used by this collector.
// This can be used to create an HTTP handler for the /metrics endpoint:
//
//	http.Handle("/metrics", promhttp.HandlerFor(
//		collector.Registry(),
//		promhttp.HandlerOpts{},
//	))
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric. Rule IDs are the
// unbounded dimension here: persisted store records carry user-assigned
// identifiers.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if we haven't reached the cardinality limit yet.
// Returns false if adding this label set would exceed the limit.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
