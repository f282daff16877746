package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/saturn/pkg/crl/ast"
)

// Catalog supplies enabled rules for batch execution. The loader's manager
// implements it; tests use small fakes.
type Catalog interface {
	// EnabledRules returns the enabled rules, optionally filtered by
	// category. No categories means all enabled rules.
	EnabledRules(ctx context.Context, categories ...ast.Category) ([]ast.Rule, error)
}

// MetricsRecorder receives execution outcomes for metrics collection.
// Implementations must be safe for concurrent use.
type MetricsRecorder interface {
	// RecordRuleExecution records one rule evaluation and its outcome.
	RecordRuleExecution(ruleID string, outcome RuleOutcome, duration time.Duration)

	// RecordIssue records one generated issue by severity.
	RecordIssue(severity ast.Severity)
}

// noopMetrics discards all recordings.
type noopMetrics struct{}

func (noopMetrics) RecordRuleExecution(string, RuleOutcome, time.Duration) {}
func (noopMetrics) RecordIssue(ast.Severity)                              {}

// Engine evaluates compliance rules against extracted document data. It
// holds configuration and collaborators only; all per-call state lives in
// the EvaluationContext, so one Engine serves concurrent validations.
type Engine struct {
	config  *Config
	catalog Catalog
	logger  *slog.Logger
	metrics MetricsRecorder
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithCatalog sets the rule catalog used by ExecuteAllRules.
func WithCatalog(catalog Catalog) Option {
	return func(e *Engine) {
		e.catalog = catalog
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics MetricsRecorder) Option {
	return func(e *Engine) {
		if metrics != nil {
			e.metrics = metrics
		}
	}
}

// New creates a rule execution engine.
func New(config *Config, opts ...Option) (*Engine, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		config:  config,
		logger:  slog.Default(),
		metrics: noopMetrics{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// ExecuteRule evaluates a single rule against the context.
//
// The rule starts pending and ends in exactly one terminal state: SKIPPED
// when a required field is absent, PASSED when every condition holds, or
// TRIGGERED when any condition fails. A triggered rule with an action
// produces exactly one issue. Internal failures are confined to the
// returned result; ExecuteRule never panics.
func (e *Engine) ExecuteRule(ctx context.Context, rule *ast.Rule, ec *EvaluationContext) (result ExecutionResult) {
	start := time.Now()
	result = ExecutionResult{
		RuleID:   rule.ID,
		RuleName: rule.Name,
		Outcome:  OutcomePending,
	}

	defer func() {
		if r := recover(); r != nil {
			// Compliance checks fail closed: an internal error marks the
			// rule triggered, never silently passed.
			result.Outcome = OutcomeTriggered
			result.Issue = nil
			result.Error = (&RuleError{RuleID: rule.ID, Cause: fmt.Errorf("internal error: %v", r)}).Error()
			e.logger.Error("rule evaluation panicked",
				"rule_id", rule.ID,
				"panic", r,
			)
		}
		elapsed := time.Since(start)
		result.DurationMS = float64(elapsed) / float64(time.Millisecond)
		e.metrics.RecordRuleExecution(rule.ID, result.Outcome, elapsed)
	}()

	// Required fields gate evaluation: a rule whose inputs were never
	// extracted is skipped, not failed, and none of its conditions run.
	if missing := missingRequiredField(rule, ec); missing != "" {
		result.Outcome = OutcomeSkipped
		result.SkipReason = fmt.Sprintf("required field %q not present", missing)
		e.logger.Debug("rule skipped",
			"rule_id", rule.ID,
			"missing_field", missing,
		)
		return result
	}

	if !rule.HasConditions() {
		result.Outcome = OutcomePassed
		return result
	}

	firstFailed := -1
	for i := range rule.Conditions {
		cr := e.evaluateCondition(rule, &rule.Conditions[i], ec)
		result.ConditionResults = append(result.ConditionResults, cr)
		if !cr.Passed && firstFailed < 0 {
			firstFailed = i
		}
	}

	if firstFailed < 0 {
		result.Outcome = OutcomePassed
		return result
	}

	result.Outcome = OutcomeTriggered
	if rule.HasAction() {
		result.Issue = e.buildIssue(rule, ec, &result.ConditionResults[firstFailed])
		e.metrics.RecordIssue(result.Issue.Severity)
	}
	return result
}

// evaluateCondition resolves the operands and dispatches on the operator.
// A condition that cannot be evaluated cleanly is marked failed with the
// error retained; it never aborts the rule.
func (e *Engine) evaluateCondition(rule *ast.Rule, cond *ast.Condition, ec *EvaluationContext) ConditionResult {
	actual := ec.Resolve(cond.Field)
	expected := cond.Value
	if cond.HasCompareField() {
		expected = ec.Resolve(cond.CompareField)
	}
	actual = normalizeOperand(actual, cond)
	expected = normalizeOperand(expected, cond)

	cr := ConditionResult{
		Field:    cond.Field,
		Operator: cond.Operator,
		Expected: expected,
		Actual:   actual,
	}

	passed, err := e.evaluateOperator(cond, actual, expected)
	if err != nil {
		condErr := &ConditionError{
			RuleID:   rule.ID,
			Field:    cond.Field,
			Operator: cond.Operator,
			Cause:    err,
		}
		cr.Passed = false
		cr.Error = condErr.Error()
		e.logger.Warn("condition evaluation failed",
			"rule_id", rule.ID,
			"field", cond.Field,
			"operator", cond.Operator.String(),
			"error", err,
		)
		return cr
	}

	cr.Passed = passed
	return cr
}

// normalizeOperand collapses whitespace in string operands when the
// condition asks for normalization. Non-strings pass through untouched.
func normalizeOperand(v any, cond *ast.Condition) any {
	if !cond.NormalizeEnabled() {
		return v
	}
	if s, ok := v.(string); ok {
		return NormalizeSpace(s)
	}
	return v
}

// missingRequiredField returns the first requires_fields path resolving to
// null or empty, or "" when all required fields are present.
func missingRequiredField(rule *ast.Rule, ec *EvaluationContext) string {
	for _, path := range rule.RequiresFields {
		if isEmpty(ec.Resolve(path)) {
			return path
		}
	}
	return ""
}

// ExecuteAllRules loads the enabled rules from the catalog, optionally
// filtered by category, and executes each independently. Rules share no
// state and have no ordering dependencies; a failure inside one rule is
// recorded on its result and never stops the others. The returned error is
// non-nil only when the catalog cannot supply rules or the context is
// cancelled.
func (e *Engine) ExecuteAllRules(ctx context.Context, ec *EvaluationContext, categories ...ast.Category) (*ExecutionSummary, error) {
	if e.catalog == nil {
		return nil, ErrNoCatalog
	}

	rules, err := e.catalog.EnabledRules(ctx, categories...)
	if err != nil {
		return nil, &CatalogError{Cause: err}
	}
	return e.executeBatch(ctx, rules, ec)
}

// ExecuteRuleSet executes the enabled member rules of one ruleset against
// the context. A disabled ruleset yields an empty summary.
func (e *Engine) ExecuteRuleSet(ctx context.Context, rs *ast.RuleSet, ec *EvaluationContext) (*ExecutionSummary, error) {
	if !rs.IsEnabled() {
		return NewExecutionSummary(), nil
	}
	return e.executeBatch(ctx, rs.EnabledRules(), ec)
}

func (e *Engine) executeBatch(ctx context.Context, rules []ast.Rule, ec *EvaluationContext) (*ExecutionSummary, error) {
	start := time.Now()
	summary := NewExecutionSummary()

	for i := range rules {
		select {
		case <-ctx.Done():
			summary.ExecutionTimeMS = time.Since(start).Milliseconds()
			return summary, ctx.Err()
		default:
		}
		summary.add(e.ExecuteRule(ctx, &rules[i], ec))
	}

	summary.ExecutionTimeMS = time.Since(start).Milliseconds()
	e.logger.Info("rule execution complete",
		"validation_id", ec.ValidationID,
		"total_rules", summary.TotalRules,
		"passed", summary.Passed,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"issues", len(summary.Issues),
		"duration_ms", summary.ExecutionTimeMS,
	)
	return summary, nil
}
