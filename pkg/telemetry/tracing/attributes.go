package tracing

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span Attribute Helpers
//
// These functions provide a convenient way to set common attributes on spans.
// They ensure consistent attribute naming across the codebase.
//
// Custom attribute keys use the "saturn.*" namespace:
//   - saturn.validation_id: Validation run identifier
//   - saturn.lc_reference: Letter of credit reference
//   - saturn.rule.*: Rule identity and outcome
//   - saturn.rules.*: Execution summary counts
//   - saturn.catalog.*: Catalog version and size

// Common attribute keys used throughout the system
const (
	// Validation attributes
	AttrValidationID = "saturn.validation_id"
	AttrLCReference  = "saturn.lc_reference"
	AttrCheckedBy    = "saturn.checked_by"

	// Rule attributes
	AttrRuleID       = "saturn.rule.id"
	AttrRuleCategory = "saturn.rule.category"
	AttrRuleSeverity = "saturn.rule.severity"
	AttrRuleOutcome  = "saturn.rule.outcome"

	// Execution summary attributes
	AttrRulesTotal   = "saturn.rules.total"
	AttrRulesPassed  = "saturn.rules.passed"
	AttrRulesFailed  = "saturn.rules.failed"
	AttrRulesSkipped = "saturn.rules.skipped"
	AttrIssueCount   = "saturn.issues.count"

	// Catalog attributes
	AttrCatalogVersion = "saturn.catalog.version"
	AttrCatalogRules   = "saturn.catalog.rules"
	AttrSourceOrigin   = "saturn.source.origin"

	// Git source attributes
	AttrGitCommit = "saturn.git.commit"
	AttrGitBranch = "saturn.git.branch"

	// Cache attributes
	AttrCacheHit  = "saturn.cache.hit"
	AttrCacheName = "saturn.cache.name"

	// Error attributes
	AttrErrorType    = "saturn.error.type"
	AttrErrorMessage = "error.message"

	// Performance attributes
	AttrDuration = "saturn.duration_ms"
)

// SetValidationAttributes sets validation identity attributes on a span.
// Empty lcReference and checkedBy values are omitted.
//
// Example:
//
//	SetValidationAttributes(span, validationID, "LC-2024-001", "ops@bank.example")
func SetValidationAttributes(span trace.Span, validationID, lcReference, checkedBy string) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrValidationID, validationID),
	}

	if lcReference != "" {
		attrs = append(attrs, attribute.String(AttrLCReference, lcReference))
	}

	if checkedBy != "" {
		attrs = append(attrs, attribute.String(AttrCheckedBy, checkedBy))
	}

	span.SetAttributes(attrs...)
}

// SetRuleAttributes sets rule identity attributes on a span.
//
// Example:
//
//	SetRuleAttributes(span, "UCP600-14D-GOODS", "UCP600", "CRITICAL")
func SetRuleAttributes(span trace.Span, ruleID, category, severity string) {
	span.SetAttributes(
		attribute.String(AttrRuleID, ruleID),
		attribute.String(AttrRuleCategory, category),
		attribute.String(AttrRuleSeverity, severity),
	)
}

// SetRuleOutcome records the outcome of a single rule evaluation.
//
// Example:
//
//	SetRuleOutcome(span, "TRIGGERED")
func SetRuleOutcome(span trace.Span, outcome string) {
	span.SetAttributes(attribute.String(AttrRuleOutcome, outcome))
}

// SetOutcomeAttributes sets execution summary counts on a span.
// The total is derived from the three counts.
//
// Example:
//
//	SetOutcomeAttributes(span, summary.Passed, summary.Failed, summary.Skipped)
func SetOutcomeAttributes(span trace.Span, passed, failed, skipped int) {
	span.SetAttributes(
		attribute.Int(AttrRulesPassed, passed),
		attribute.Int(AttrRulesFailed, failed),
		attribute.Int(AttrRulesSkipped, skipped),
		attribute.Int(AttrRulesTotal, passed+failed+skipped),
	)
}

// SetIssueCountAttribute sets the number of discrepancy issues raised.
//
// Example:
//
//	SetIssueCountAttribute(span, len(summary.Issues))
func SetIssueCountAttribute(span trace.Span, count int) {
	span.SetAttributes(attribute.Int(AttrIssueCount, count))
}

// SetCatalogAttributes sets catalog version and size attributes on a span.
//
// Example:
//
//	SetCatalogAttributes(span, "a1b2c3d", 42)
func SetCatalogAttributes(span trace.Span, version string, ruleCount int) {
	span.SetAttributes(
		attribute.String(AttrCatalogVersion, version),
		attribute.Int(AttrCatalogRules, ruleCount),
	)
}

// SetOriginAttribute records which origin produced the rules
// ("file" or "store").
//
// Example:
//
//	SetOriginAttribute(span, "store")
func SetOriginAttribute(span trace.Span, origin string) {
	if origin != "" {
		span.SetAttributes(attribute.String(AttrSourceOrigin, origin))
	}
}

// SetGitAttributes sets rulebook git source attributes on a span.
// An empty branch is omitted (detached checkouts have none).
//
// Example:
//
//	SetGitAttributes(span, "9fceb02d", "main")
func SetGitAttributes(span trace.Span, commit, branch string) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrGitCommit, commit),
	}

	if branch != "" {
		attrs = append(attrs, attribute.String(AttrGitBranch, branch))
	}

	span.SetAttributes(attrs...)
}

// SetCacheAttributes sets cache-related attributes on a span.
//
// Example:
//
//	SetCacheAttributes(span, true, "catalog")
func SetCacheAttributes(span trace.Span, hit bool, cacheName string) {
	span.SetAttributes(
		attribute.Bool(AttrCacheHit, hit),
		attribute.String(AttrCacheName, cacheName),
	)
}

// SetErrorAttributes sets error-related attributes on a span.
// This also records the error using span.RecordError() and sets the span status.
//
// Example:
//
//	SetErrorAttributes(span, err, "load_failure")
func SetErrorAttributes(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}

	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String(AttrErrorType, errorType),
		attribute.String(AttrErrorMessage, err.Error()),
	)

	// Record error and set status
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetDurationAttribute sets the duration attribute on a span.
// Duration is recorded in milliseconds.
//
// Example:
//
//	start := time.Now()
//	// ... do work ...
//	SetDurationAttribute(span, time.Since(start).Milliseconds())
func SetDurationAttribute(span trace.Span, durationMs int64) {
	span.SetAttributes(attribute.Int64(AttrDuration, durationMs))
}

// AddEvent adds a named event to the span with optional attributes.
// Events represent interesting points in the span's lifetime.
//
// Example:
//
//	AddEvent(span, "rule_evaluated",
//	    attribute.String("rule_id", "UCP600-14D-GOODS"),
//	    attribute.String("outcome", "PASSED"),
//	)
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// AddEventWithTimestamp adds a named event recorded at a specific time,
// for events observed before execution reached this code path.
//
// Example:
//
//	AddEventWithTimestamp(span, "catalog_reloaded", reloadedAt,
//	    attribute.String("catalog_version", "a1b2c3d"),
//	)
func AddEventWithTimestamp(span trace.Span, name string, at time.Time, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithTimestamp(at), trace.WithAttributes(attrs...))
}

// RecordException records an exception event on the span.
// This is a convenience wrapper around RecordError for errors.
//
// Example:
//
//	RecordException(span, err)
func RecordException(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
}

// AttributeBuilder provides a fluent interface for building span attributes.
type AttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewAttributeBuilder creates a new attribute builder.
func NewAttributeBuilder() *AttributeBuilder {
	return &AttributeBuilder{
		attrs: make([]attribute.KeyValue, 0, 10),
	}
}

// WithValidation adds validation identity attributes.
func (ab *AttributeBuilder) WithValidation(validationID, lcReference string) *AttributeBuilder {
	ab.attrs = append(ab.attrs, attribute.String(AttrValidationID, validationID))
	if lcReference != "" {
		ab.attrs = append(ab.attrs, attribute.String(AttrLCReference, lcReference))
	}
	return ab
}

// WithRule adds rule identity attributes.
func (ab *AttributeBuilder) WithRule(ruleID, category, severity string) *AttributeBuilder {
	ab.attrs = append(ab.attrs,
		attribute.String(AttrRuleID, ruleID),
		attribute.String(AttrRuleCategory, category),
		attribute.String(AttrRuleSeverity, severity),
	)
	return ab
}

// WithOutcome adds execution summary counts, deriving the total.
func (ab *AttributeBuilder) WithOutcome(passed, failed, skipped int) *AttributeBuilder {
	ab.attrs = append(ab.attrs,
		attribute.Int(AttrRulesPassed, passed),
		attribute.Int(AttrRulesFailed, failed),
		attribute.Int(AttrRulesSkipped, skipped),
		attribute.Int(AttrRulesTotal, passed+failed+skipped),
	)
	return ab
}

// WithCatalog adds catalog version and size attributes.
func (ab *AttributeBuilder) WithCatalog(version string, ruleCount int) *AttributeBuilder {
	ab.attrs = append(ab.attrs,
		attribute.String(AttrCatalogVersion, version),
		attribute.Int(AttrCatalogRules, ruleCount),
	)
	return ab
}

// WithCache adds cache attributes.
func (ab *AttributeBuilder) WithCache(hit bool, cacheName string) *AttributeBuilder {
	ab.attrs = append(ab.attrs,
		attribute.Bool(AttrCacheHit, hit),
		attribute.String(AttrCacheName, cacheName),
	)
	return ab
}

// WithCustom adds a custom attribute.
func (ab *AttributeBuilder) WithCustom(key string, value interface{}) *AttributeBuilder {
	switch v := value.(type) {
	case string:
		ab.attrs = append(ab.attrs, attribute.String(key, v))
	case int:
		ab.attrs = append(ab.attrs, attribute.Int(key, v))
	case int64:
		ab.attrs = append(ab.attrs, attribute.Int64(key, v))
	case float64:
		ab.attrs = append(ab.attrs, attribute.Float64(key, v))
	case bool:
		ab.attrs = append(ab.attrs, attribute.Bool(key, v))
	default:
		// Fall back to string representation
		ab.attrs = append(ab.attrs, attribute.String(key, fmt.Sprintf("%v", v)))
	}
	return ab
}

// Build returns the built attributes as a trace.SpanStartOption.
func (ab *AttributeBuilder) Build() trace.SpanStartOption {
	return trace.WithAttributes(ab.attrs...)
}

// Apply applies the attributes to a span.
func (ab *AttributeBuilder) Apply(span trace.Span) {
	span.SetAttributes(ab.attrs...)
}

// Attributes returns the raw attribute slice.
func (ab *AttributeBuilder) Attributes() []attribute.KeyValue {
	return ab.attrs
}
