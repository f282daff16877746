package validator

import (
	"mercator-hq/saturn/pkg/crl/ast"
	crlErrors "mercator-hq/saturn/pkg/crl/errors"
)

// Validator orchestrates the validation passes over a parsed rulebook.
// Structural problems suppress the semantic pass to avoid cascading noise.
type Validator struct {
	structural *StructuralValidator
	semantic   *SemanticValidator
}

// NewValidator creates a new validator with all validation passes.
func NewValidator() *Validator {
	return &Validator{
		structural: NewStructuralValidator(),
		semantic:   NewSemanticValidator(),
	}
}

// Validate runs all validation passes on a ruleset.
// It accumulates errors from all passes and returns them together.
func (v *Validator) Validate(rs *ast.RuleSet) error {
	errors := crlErrors.NewErrorList()

	if err := v.structural.Validate(rs); err != nil {
		if errList, ok := err.(*crlErrors.ErrorList); ok {
			errors.Errors = append(errors.Errors, errList.Errors...)
		}
	}

	// Run semantic validation only if the structure held up; broken
	// structure makes semantic findings misleading.
	if !errors.HasErrorType(crlErrors.ErrorTypeStructural) {
		if err := v.semantic.Validate(rs); err != nil {
			if errList, ok := err.(*crlErrors.ErrorList); ok {
				errors.Errors = append(errors.Errors, errList.Errors...)
			}
		}
	}

	return errors.ToError()
}

// ValidateRules validates a bare rule list, as produced by flat rulebook
// files or the record translator.
func (v *Validator) ValidateRules(rules []ast.Rule) error {
	return v.Validate(&ast.RuleSet{Enabled: true, Rules: rules})
}

// ValidateStructural runs only structural validation.
func (v *Validator) ValidateStructural(rs *ast.RuleSet) error {
	return v.structural.Validate(rs)
}

// ValidateSemantic runs only semantic validation.
func (v *Validator) ValidateSemantic(rs *ast.RuleSet) error {
	return v.semantic.Validate(rs)
}
