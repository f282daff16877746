package engine

import (
	"errors"
	"fmt"

	"mercator-hq/saturn/pkg/crl/ast"
)

// Common sentinel errors
var (
	// ErrInvalidConfig indicates invalid engine configuration.
	ErrInvalidConfig = errors.New("invalid engine configuration")

	// ErrNoCatalog indicates batch execution was requested without a
	// rule catalog configured.
	ErrNoCatalog = errors.New("no rule catalog configured")
)

// ConditionError records a failure caught while evaluating one condition.
// It is retained on the condition's result; condition errors never
// propagate out of rule execution.
type ConditionError struct {
	RuleID   string
	Field    string
	Operator ast.Operator
	Cause    error
}

// Error returns the error message.
func (e *ConditionError) Error() string {
	return fmt.Sprintf("rule %s: condition %s on field %q: %v", e.RuleID, e.Operator, e.Field, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ConditionError) Unwrap() error {
	return e.Cause
}

// RuleError records an unexpected internal failure confined to one rule
// during batch execution.
type RuleError struct {
	RuleID string
	Cause  error
}

// Error returns the error message.
func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s: %v", e.RuleID, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *RuleError) Unwrap() error {
	return e.Cause
}

// CatalogError indicates the rule catalog could not supply rules for a
// batch execution.
type CatalogError struct {
	Cause error
}

// Error returns the error message.
func (e *CatalogError) Error() string {
	return fmt.Sprintf("loading rules from catalog: %v", e.Cause)
}

// Unwrap returns the underlying cause.
func (e *CatalogError) Unwrap() error {
	return e.Cause
}
