package engine

import (
	"mercator-hq/saturn/pkg/crl/ast"
)

// RuleOutcome is the terminal state of a single rule evaluation.
type RuleOutcome string

const (
	// OutcomePending marks an evaluation that has not reached a terminal
	// state. Callers never observe it on a returned result.
	OutcomePending RuleOutcome = "PENDING"

	// OutcomePassed means every condition evaluated true.
	OutcomePassed RuleOutcome = "PASSED"

	// OutcomeTriggered means at least one condition evaluated false.
	OutcomeTriggered RuleOutcome = "TRIGGERED"

	// OutcomeSkipped means a required field was absent from the context
	// and no condition was evaluated.
	OutcomeSkipped RuleOutcome = "SKIPPED"
)

// String returns the wire form of the outcome.
func (o RuleOutcome) String() string {
	return string(o)
}

// EvaluationContext carries the extracted document data for one validation
// run. Fields is a nested key/value structure produced by the upstream
// extraction pipeline and addressed through dotted paths (for example
// "lc.amount.value" or "invoice.goods_description"). A "documents" entry,
// when present, lists the classified source documents and is consulted
// during issue generation.
type EvaluationContext struct {
	// ValidationID identifies the validation run in logs and audit records.
	ValidationID string

	// Fields is the dotted-path addressable document data.
	Fields map[string]any
}

// NewEvaluationContext wraps extracted document fields for rule execution.
func NewEvaluationContext(fields map[string]any) *EvaluationContext {
	return &EvaluationContext{Fields: fields}
}

// Resolve resolves a dotted path against the context fields. A path that
// cannot be fully traversed resolves to nil; resolution never panics.
func (ec *EvaluationContext) Resolve(path string) any {
	if ec == nil {
		return nil
	}
	return resolveField(ec.Fields, path)
}

// ConditionResult records the evaluation of one condition.
type ConditionResult struct {
	// Field is the dotted path the condition resolved.
	Field string `json:"field"`

	// Operator is the comparison that was applied.
	Operator ast.Operator `json:"operator"`

	// Expected is the effective comparison operand after normalization.
	Expected any `json:"expected,omitempty"`

	// Actual is the resolved field value after normalization.
	Actual any `json:"actual,omitempty"`

	// Passed indicates whether the condition evaluated true.
	Passed bool `json:"passed"`

	// Error holds the evaluation error when the condition could not be
	// evaluated cleanly. Such a condition counts as failed.
	Error string `json:"error,omitempty"`
}

// ExecutionResult is the outcome of evaluating a single rule.
type ExecutionResult struct {
	// RuleID identifies the evaluated rule.
	RuleID string `json:"rule_id"`

	// RuleName is the rule's human-readable name.
	RuleName string `json:"rule_name,omitempty"`

	// Outcome is the terminal state: PASSED, TRIGGERED, or SKIPPED.
	Outcome RuleOutcome `json:"outcome"`

	// ConditionResults lists per-condition outcomes in declaration order.
	// Empty for skipped rules.
	ConditionResults []ConditionResult `json:"condition_results,omitempty"`

	// Issue is the generated discrepancy, present only when the rule
	// triggered and declares an action.
	Issue *Issue `json:"issue,omitempty"`

	// SkipReason names the missing required field for skipped rules.
	SkipReason string `json:"skip_reason,omitempty"`

	// Error records an unexpected internal failure confined to this rule.
	Error string `json:"error,omitempty"`

	// DurationMS is the wall-clock evaluation time in milliseconds.
	DurationMS float64 `json:"duration_ms"`
}

// Passed returns true if the rule's conditions all held.
func (r *ExecutionResult) Passed() bool {
	return r.Outcome == OutcomePassed
}

// Triggered returns true if at least one condition failed.
func (r *ExecutionResult) Triggered() bool {
	return r.Outcome == OutcomeTriggered
}

// Skipped returns true if the rule was skipped over missing required fields.
func (r *ExecutionResult) Skipped() bool {
	return r.Outcome == OutcomeSkipped
}

// Issue is one structured discrepancy emitted by a triggered rule, shaped
// for direct inclusion in a validation report.
type Issue struct {
	// RuleID identifies the rule that raised the issue.
	RuleID string `json:"rule_id"`

	// Title is the short issue headline.
	Title string `json:"title"`

	// Severity grades the discrepancy.
	Severity ast.Severity `json:"severity"`

	// Message explains the discrepancy, with field placeholders rendered.
	Message string `json:"message"`

	// Expected and Actual are the rendered comparison values.
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`

	// Suggestion is a remediation hint for the document checker.
	Suggestion string `json:"suggestion,omitempty"`

	// Documents names the context documents whose type matches the rule's
	// declared source or target document types.
	Documents []string `json:"documents,omitempty"`

	// Compliance cross-references carried over from the rule.
	UCPReference  string `json:"ucp_reference,omitempty"`
	ISBPReference string `json:"isbp_reference,omitempty"`
}

// ExecutionSummary aggregates a batch execution over one context.
type ExecutionSummary struct {
	TotalRules      int      `json:"total_rules"`
	Passed          int      `json:"passed"`
	Failed          int      `json:"failed"`
	Skipped         int      `json:"skipped"`
	ExecutionTimeMS int64    `json:"execution_time_ms"`
	Issues          []*Issue `json:"issues"`

	// ExecutionResults lists per-rule outcomes in execution order.
	ExecutionResults []ExecutionResult `json:"execution_results"`
}

// NewExecutionSummary returns an empty summary with initialized collections
// so an empty batch still serializes with issues and results present.
func NewExecutionSummary() *ExecutionSummary {
	return &ExecutionSummary{
		Issues:           []*Issue{},
		ExecutionResults: []ExecutionResult{},
	}
}

// add folds one rule result into the summary. Skipped rules are counted
// separately and never contribute to the failed counter.
func (s *ExecutionSummary) add(res ExecutionResult) {
	s.TotalRules++
	switch res.Outcome {
	case OutcomePassed:
		s.Passed++
	case OutcomeTriggered:
		s.Failed++
	case OutcomeSkipped:
		s.Skipped++
	}
	if res.Issue != nil {
		s.Issues = append(s.Issues, res.Issue)
	}
	s.ExecutionResults = append(s.ExecutionResults, res)
}

// HasIssues returns true if at least one issue was generated.
func (s *ExecutionSummary) HasIssues() bool {
	return len(s.Issues) > 0
}

// IssuesBySeverity returns the generated issues carrying the given severity.
func (s *ExecutionSummary) IssuesBySeverity(severity ast.Severity) []*Issue {
	var issues []*Issue
	for _, issue := range s.Issues {
		if issue.Severity == severity {
			issues = append(issues, issue)
		}
	}
	return issues
}
