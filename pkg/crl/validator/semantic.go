package validator

import (
	"fmt"
	"regexp"
	"strings"

	"mercator-hq/saturn/pkg/crl/ast"
	crlErrors "mercator-hq/saturn/pkg/crl/errors"
)

// operatorsWithoutEvaluation lists vocabulary operators the executor
// resolves to false. Rules using them load and run, but the condition can
// never hold, so lint surfaces them.
var operatorsWithoutEvaluation = map[ast.Operator]bool{
	ast.OpBetween:    true,
	ast.OpBefore:     true,
	ast.OpAfter:      true,
	ast.OpWithinDays: true,
	ast.OpAllOf:      true,
	ast.OpAnyOf:      true,
	ast.OpNoneOf:     true,
}

// SemanticValidator checks that rules mean something: operators belong to
// the vocabulary, thresholds are in range, regular expressions compile, and
// templates are well formed.
type SemanticValidator struct {
	errors *crlErrors.ErrorList
}

// NewSemanticValidator creates a new semantic validator.
func NewSemanticValidator() *SemanticValidator {
	return &SemanticValidator{
		errors: crlErrors.NewErrorList(),
	}
}

// Validate performs semantic validation on a ruleset.
// It returns an ErrorList containing all semantic findings.
func (v *SemanticValidator) Validate(rs *ast.RuleSet) error {
	v.errors = crlErrors.NewErrorList()

	for i := range rs.Rules {
		v.validateRule(&rs.Rules[i])
	}

	return v.errors.ToError()
}

func (v *SemanticValidator) validateRule(rule *ast.Rule) {
	if len(rule.Conditions) == 0 {
		// A rule without conditions always passes. Legal, but almost
		// always a half-written rule.
		v.errors.AddErrorWithSuggestion(
			crlErrors.ErrorTypeValidation,
			fmt.Sprintf("Rule %q has no conditions and will always pass", rule.ID),
			rule.Location,
			"Add at least one condition, or disable the rule",
		)
	}

	for i := range rule.Conditions {
		v.validateCondition(rule, &rule.Conditions[i], i)
	}

	if rule.Action != nil {
		v.validateAction(rule, rule.Action)
	}
}

func (v *SemanticValidator) validateCondition(rule *ast.Rule, cond *ast.Condition, index int) {
	if !cond.Operator.IsValid() {
		v.errors.AddErrorWithSuggestion(
			crlErrors.ErrorTypeSemantic,
			fmt.Sprintf("Rule %q: condition %d uses unknown operator %q; it will always evaluate false", rule.ID, index, cond.Operator),
			cond.Location,
			crlErrors.SuggestOperator(string(cond.Operator)),
		)
	} else if operatorsWithoutEvaluation[cond.Operator] {
		v.errors.AddError(
			crlErrors.ErrorTypeValidation,
			fmt.Sprintf("Rule %q: condition %d uses operator %q, which has no evaluation yet and always evaluates false", rule.ID, index, cond.Operator),
			cond.Location,
		)
	}

	switch cond.Operator {
	case ast.OpSimilarTo:
		if !cond.HasValue() && !cond.HasCompareField() {
			v.errors.AddError(
				crlErrors.ErrorTypeSemantic,
				fmt.Sprintf("Rule %q: condition %d (similar_to) needs a value or compare_field", rule.ID, index),
				cond.Location,
			)
		}
		if cond.Threshold != nil && (*cond.Threshold < 0 || *cond.Threshold > 1) {
			v.errors.AddError(
				crlErrors.ErrorTypeSemantic,
				fmt.Sprintf("Rule %q: condition %d threshold %v is outside [0, 1]", rule.ID, index, *cond.Threshold),
				cond.Location,
			)
		}
	case ast.OpMatches:
		pattern, ok := cond.Value.(string)
		if !ok || pattern == "" {
			v.errors.AddError(
				crlErrors.ErrorTypeSemantic,
				fmt.Sprintf("Rule %q: condition %d (matches) needs a string pattern value", rule.ID, index),
				cond.Location,
			)
		} else if _, err := regexp.Compile(pattern); err != nil {
			v.errors.AddErrorWithSuggestion(
				crlErrors.ErrorTypeSemantic,
				fmt.Sprintf("Rule %q: condition %d regular expression does not compile: %v", rule.ID, index, err),
				cond.Location,
				"The condition will evaluate false at runtime until the pattern is fixed",
			)
		}
	case ast.OpEquals, ast.OpNotEquals, ast.OpMatchesField, ast.OpContains, ast.OpNotContains,
		ast.OpStartsWith, ast.OpEndsWith, ast.OpGT, ast.OpGTE, ast.OpLT, ast.OpLTE,
		ast.OpIn, ast.OpNotIn:
		if !cond.HasValue() && !cond.HasCompareField() {
			v.errors.AddError(
				crlErrors.ErrorTypeValidation,
				fmt.Sprintf("Rule %q: condition %d (%s) compares against nothing; both value and compare_field are unset", rule.ID, index, cond.Operator),
				cond.Location,
			)
		}
	}
}

func (v *SemanticValidator) validateAction(rule *ast.Rule, action *ast.Action) {
	if action.Title == "" && action.Message == "" {
		v.errors.AddError(
			crlErrors.ErrorTypeValidation,
			fmt.Sprintf("Rule %q: action has neither title nor message; generated issues will be empty", rule.ID),
			action.Location,
		)
	}

	for _, tmpl := range []struct {
		name string
		text string
	}{
		{"expected_template", action.ExpectedTemplate},
		{"actual_template", action.ActualTemplate},
	} {
		if tmpl.text == "" {
			continue
		}
		if strings.Count(tmpl.text, "{") != strings.Count(tmpl.text, "}") {
			v.errors.AddErrorWithSuggestion(
				crlErrors.ErrorTypeValidation,
				fmt.Sprintf("Rule %q: %s has unbalanced braces; it will render as raw text", rule.ID, tmpl.name),
				action.Location,
				"Placeholders take the form {field.path}",
			)
		}
	}
}
