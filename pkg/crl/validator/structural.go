package validator

import (
	"fmt"
	"regexp"

	"mercator-hq/saturn/pkg/crl/ast"
	crlErrors "mercator-hq/saturn/pkg/crl/errors"
)

var (
	// ruleIDPattern validates rule ids (e.g. "UCP600-14D-GOODS").
	// Ids key the catalog cache and appear verbatim in issues and audit
	// records, so they are restricted to a filesystem- and URL-safe set.
	ruleIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

	// fieldPathPattern validates dotted field paths (e.g. "lc.amount.value").
	fieldPathPattern = regexp.MustCompile(`^[A-Za-z0-9_]+(\.[A-Za-z0-9_]+)*$`)
)

// StructuralValidator validates the structural integrity of a ruleset:
// required fields, id uniqueness, and field path shapes.
type StructuralValidator struct {
	errors *crlErrors.ErrorList
}

// NewStructuralValidator creates a new structural validator.
func NewStructuralValidator() *StructuralValidator {
	return &StructuralValidator{
		errors: crlErrors.NewErrorList(),
	}
}

// Validate performs structural validation on a ruleset.
// It returns an ErrorList containing all structural errors found.
func (v *StructuralValidator) Validate(rs *ast.RuleSet) error {
	v.errors = crlErrors.NewErrorList()

	seen := make(map[string]ast.Location, len(rs.Rules))
	for i := range rs.Rules {
		rule := &rs.Rules[i]
		v.validateRule(rule)

		if prev, dup := seen[rule.ID]; dup {
			v.errors.AddErrorWithSuggestion(
				crlErrors.ErrorTypeStructural,
				fmt.Sprintf("Duplicate rule id %q (first defined at %s)", rule.ID, prev),
				rule.Location,
				"Rule ids must be unique within a loaded catalog",
			)
		} else {
			seen[rule.ID] = rule.Location
		}
	}

	return v.errors.ToError()
}

// validateRule checks one rule's required fields and shapes.
func (v *StructuralValidator) validateRule(rule *ast.Rule) {
	if rule.ID == "" {
		v.errors.AddErrorWithSuggestion(
			crlErrors.ErrorTypeStructural,
			"Missing required field 'id'",
			rule.Location,
			crlErrors.SuggestMissingField("id", "UCP600-14D-GOODS"),
		)
	} else if !ruleIDPattern.MatchString(rule.ID) {
		v.errors.AddErrorWithSuggestion(
			crlErrors.ErrorTypeStructural,
			fmt.Sprintf("Rule id %q contains unsupported characters", rule.ID),
			rule.Location,
			"Use letters, digits, '.', '_' and '-'",
		)
	}

	for i := range rule.Conditions {
		v.validateCondition(rule, &rule.Conditions[i], i)
	}

	for _, path := range rule.RequiresFields {
		if !fieldPathPattern.MatchString(path) {
			v.errors.AddError(
				crlErrors.ErrorTypeStructural,
				fmt.Sprintf("Rule %q: requires_fields entry %q is not a valid field path", rule.ID, path),
				rule.Location,
			)
		}
	}
}

// validateCondition checks one condition's required fields and shapes.
func (v *StructuralValidator) validateCondition(rule *ast.Rule, cond *ast.Condition, index int) {
	if cond.Field == "" {
		v.errors.AddError(
			crlErrors.ErrorTypeStructural,
			fmt.Sprintf("Rule %q: condition %d has no field", rule.ID, index),
			cond.Location,
		)
	} else if !fieldPathPattern.MatchString(cond.Field) {
		v.errors.AddError(
			crlErrors.ErrorTypeStructural,
			fmt.Sprintf("Rule %q: condition %d field %q is not a valid field path", rule.ID, index, cond.Field),
			cond.Location,
		)
	}

	if cond.CompareField != "" && !fieldPathPattern.MatchString(cond.CompareField) {
		v.errors.AddError(
			crlErrors.ErrorTypeStructural,
			fmt.Sprintf("Rule %q: condition %d compare_field %q is not a valid field path", rule.ID, index, cond.CompareField),
			cond.Location,
		)
	}
}
