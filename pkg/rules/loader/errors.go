package loader

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidConfig indicates an invalid loader configuration value.
	ErrInvalidConfig = errors.New("invalid loader configuration")

	// ErrRuleNotFound is returned when the catalog holds no rule with the
	// requested id.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrRuleSetNotFound is returned when the catalog holds no ruleset with
	// the requested id.
	ErrRuleSetNotFound = errors.New("ruleset not found")
)

// SourceError represents a failure to load one declarative rule source.
// This covers file system errors, size and encoding limits, parse failures,
// and validation failures. One bad source never aborts the whole load.
type SourceError struct {
	// Path is the rulebook file or directory that failed to load
	Path string

	// Message describes the failure
	Message string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load rulebook %q: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load rulebook %q: %s", e.Path, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *SourceError) Unwrap() error {
	return e.Cause
}

// TranslationError represents a persisted rule record that could not be
// translated into the rule schema. The record is skipped; translation of
// the remaining records continues.
type TranslationError struct {
	// RuleID is the id of the record that failed to translate
	RuleID string

	// Message describes the failure
	Message string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *TranslationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to translate rule record %q: %s: %v", e.RuleID, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to translate rule record %q: %s", e.RuleID, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// RegistryError represents an error during catalog registry operations.
type RegistryError struct {
	// Operation is the operation that failed (e.g. "replace")
	Operation string

	// Message describes the error
	Message string
}

// Error implements the error interface.
func (e *RegistryError) Error() string {
	return fmt.Sprintf("registry error during %s: %s", e.Operation, e.Message)
}

// ErrorList contains multiple errors from one load pass over many sources.
type ErrorList struct {
	Errors []error
}

// Error implements the error interface.
func (e *ErrorList) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %v\n", i+1, err))
	}
	return sb.String()
}

// Add adds an error to the list.
func (e *ErrorList) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if the list contains any errors.
func (e *ErrorList) HasErrors() bool {
	return len(e.Errors) > 0
}

// ToError returns nil if there are no errors, the single error if there is
// one, or the ErrorList itself if there are multiple errors.
func (e *ErrorList) ToError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	if len(e.Errors) == 1 {
		return e.Errors[0]
	}
	return e
}
