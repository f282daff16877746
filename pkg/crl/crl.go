package crl

import (
	"mercator-hq/saturn/pkg/crl/ast"
	"mercator-hq/saturn/pkg/crl/parser"
	"mercator-hq/saturn/pkg/crl/validator"
)

// ParseAndValidate is a convenience function that parses and validates a
// rulebook file. It returns the parsed AST if successful, or an error if
// parsing or validation fails.
func ParseAndValidate(path string) (*ast.RuleSet, error) {
	p := parser.NewParser()
	rs, err := p.ParseFile(path)
	if err != nil {
		return nil, err
	}

	v := validator.NewValidator()
	if err := v.Validate(rs); err != nil {
		return nil, err
	}

	return rs, nil
}

// ParseAndValidateBytes parses and validates rulebook YAML from bytes.
func ParseAndValidateBytes(data []byte, sourcePath string) (*ast.RuleSet, error) {
	p := parser.NewParser()
	rs, err := p.ParseBytes(data, sourcePath)
	if err != nil {
		return nil, err
	}

	v := validator.NewValidator()
	if err := v.Validate(rs); err != nil {
		return nil, err
	}

	return rs, nil
}

// Parse parses a rulebook file without validation.
// Use this to inspect the AST before validation.
func Parse(path string) (*ast.RuleSet, error) {
	p := parser.NewParser()
	return p.ParseFile(path)
}

// Validate validates a parsed rulebook.
func Validate(rs *ast.RuleSet) error {
	v := validator.NewValidator()
	return v.Validate(rs)
}
