package parser

import (
	"fmt"
	"time"

	"mercator-hq/saturn/pkg/crl/ast"
	crlErrors "mercator-hq/saturn/pkg/crl/errors"
)

// builder constructs AST nodes from intermediate YAML structures.
// It handles enum coercion, defaulting, and preserves source locations.
type builder struct {
	sourcePath string
	errors     *crlErrors.ErrorList
}

// newBuilder creates a new AST builder for the given source file.
func newBuilder(sourcePath string) *builder {
	return &builder{
		sourcePath: sourcePath,
		errors:     crlErrors.NewErrorList(),
	}
}

// buildRuleSet transforms a yamlRulebook into an ast.RuleSet. A flat rule
// list yields a set with empty ID; callers treat that as an anonymous
// grouping and only register wrappers that declare an id.
func (b *builder) buildRuleSet(yb *yamlRulebook) (*ast.RuleSet, error) {
	rs := &ast.RuleSet{
		ID:          yb.ID,
		Name:        yb.Name,
		Version:     yb.Version,
		Description: yb.Description,
		Enabled:     true, // Default to true
		UCPVersion:  yb.UCPVersion,
		Rules:       make([]ast.Rule, 0, len(yb.Rules)),
		SourceFile:  b.sourcePath,
		Location: ast.Location{
			File:   b.sourcePath,
			Line:   1,
			Column: 1,
		},
	}

	if yb.Enabled != nil {
		rs.Enabled = *yb.Enabled
	}
	if yb.Category != "" {
		rs.Category = ast.ParseCategory(yb.Category)
	}

	for i := range yb.Rules {
		rule, err := b.buildRule(&yb.Rules[i], yb, i)
		if err != nil {
			line, col := yb.ruleLocation(i)
			b.errors.AddError(crlErrors.ErrorTypeStructural,
				fmt.Sprintf("Invalid rule at index %d: %v", i, err),
				ast.Location{File: b.sourcePath, Line: line, Column: col})
			continue
		}
		rs.Rules = append(rs.Rules, *rule)
	}

	if b.errors.HasErrors() {
		return nil, b.errors
	}

	return rs, nil
}

// buildRule transforms a yamlRule into an ast.Rule.
// Malformed category and severity strings coerce to their documented
// defaults (CUSTOM, MINOR); they are never grounds for rejecting a rule.
func (b *builder) buildRule(yr *yamlRule, yb *yamlRulebook, index int) (*ast.Rule, error) {
	if yr.ID == "" {
		return nil, fmt.Errorf("missing required 'id'")
	}

	line, col := yb.ruleLocation(index)
	rule := &ast.Rule{
		ID:                       yr.ID,
		Name:                     yr.Name,
		Category:                 ast.ParseCategory(yr.Category),
		Severity:                 ast.ParseSeverity(yr.Severity),
		Description:              yr.Description,
		Enabled:                  true, // Default to true
		Version:                  yr.Version,
		UCPReference:             yr.UCPReference,
		ISBPReference:            yr.ISBPReference,
		SourceDocuments:          yr.SourceDocuments,
		TargetDocuments:          yr.TargetDocuments,
		RequiresFields:           yr.RequiresFields,
		OptionalFields:           yr.OptionalFields,
		CanOverride:              yr.CanOverride,
		OverrideRequiresApproval: yr.OverrideRequiresApproval,
		CreatedBy:                yr.CreatedBy,
		Conditions:               make([]ast.Condition, 0, len(yr.Conditions)),
		Location: ast.Location{
			File:   b.sourcePath,
			Line:   line,
			Column: col,
		},
	}

	if rule.Name == "" {
		rule.Name = rule.ID
	}

	// Handle enabled flag (default is true)
	if yr.Enabled != nil {
		rule.Enabled = *yr.Enabled
	}

	// A missing category on a rule inside a categorized ruleset inherits
	// the wrapper's category rather than coercing to CUSTOM.
	if yr.Category == "" && yb.Category != "" {
		rule.Category = ast.ParseCategory(yb.Category)
	}

	// Audit timestamps, informational only
	if yr.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, yr.CreatedAt); err == nil {
			rule.CreatedAt = t
		}
	}
	if yr.UpdatedAt != "" {
		if t, err := time.Parse(time.RFC3339, yr.UpdatedAt); err == nil {
			rule.UpdatedAt = t
		}
	}

	for i := range yr.Conditions {
		cond, err := b.buildCondition(&yr.Conditions[i], rule.Location)
		if err != nil {
			return nil, fmt.Errorf("invalid condition at index %d: %w", i, err)
		}
		rule.Conditions = append(rule.Conditions, *cond)
	}

	if yr.Action != nil {
		rule.Action = b.buildAction(yr.Action, rule.Location)
	}

	return rule, nil
}

// buildCondition transforms a yamlCondition into an ast.Condition.
// The operator string is normalized but not rejected when unknown; the
// validator reports unknown operators and the executor resolves them to
// false.
func (b *builder) buildCondition(yc *yamlCondition, loc ast.Location) (*ast.Condition, error) {
	if yc.Field == "" {
		return nil, fmt.Errorf("missing required 'field'")
	}
	if yc.Operator == "" {
		return nil, fmt.Errorf("missing required 'operator'")
	}

	op, _ := ast.ParseOperator(yc.Operator)

	return &ast.Condition{
		Field:         yc.Field,
		Operator:      op,
		Value:         normalizeValue(yc.Value),
		CompareField:  yc.CompareField,
		Threshold:     yc.Threshold,
		CaseSensitive: yc.CaseSensitive,
		Normalize:     yc.Normalize,
		Location:      loc,
	}, nil
}

// buildAction transforms a yamlAction into an ast.Action.
func (b *builder) buildAction(ya *yamlAction, loc ast.Location) *ast.Action {
	actionType := ya.Type
	if actionType == "" {
		actionType = ast.ActionTypeIssue
	}

	return &ast.Action{
		Type:             actionType,
		Title:            ya.Title,
		Message:          ya.Message,
		Suggestion:       ya.Suggestion,
		ExpectedTemplate: ya.ExpectedTemplate,
		ActualTemplate:   ya.ActualTemplate,
		Location:         loc,
	}
}

// normalizeValue brings decoded YAML values into the engine's comparison
// shapes: integers widen to float64 so numeric comparisons see one type,
// map keys become strings, and nested values normalize recursively.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case uint64:
		return float64(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}
