package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrRecordNotFound is returned when a rule record does not exist.
var ErrRecordNotFound = errors.New("rule record not found")

// Record is a persisted rule as external tooling writes it. Severity and
// domain are free text, conditions carry aliased field names, and nothing is
// validated on the way in; the loader translates records into the strict
// rule schema and skips the ones it cannot.
type Record struct {
	// RuleID is the unique identifier of the rule.
	RuleID string `json:"rule_id"`

	// Title is the human-readable rule title.
	Title string `json:"title"`

	// Description explains what the rule checks.
	Description string `json:"description,omitempty"`

	// Severity is a free-text severity string ("fail", "warn", "high", ...).
	Severity string `json:"severity,omitempty"`

	// Domain is a free-text domain or regime string ("ucp600", "sanctions", ...).
	Domain string `json:"domain,omitempty"`

	// DocumentType is an alternative to Domain used by older writers.
	DocumentType string `json:"document_type,omitempty"`

	// Conditions is the JSON-shaped condition list.
	Conditions []RecordCondition `json:"conditions,omitempty"`

	// ExpectedOutcome carries example values from the authoring tool.
	// It is informational and not evaluated.
	ExpectedOutcome *ExpectedOutcome `json:"expected_outcome,omitempty"`

	// IsActive marks the record as live. Inactive records are retained but
	// never loaded into the catalog.
	IsActive bool `json:"is_active"`

	// Version is the record revision tag.
	Version string `json:"version,omitempty"`

	// Reference is a compliance citation (e.g. "UCP600 Art. 14").
	Reference string `json:"reference,omitempty"`

	// CreatedAt and UpdatedAt are maintained by the store.
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// DomainOrType returns the record's domain string, falling back to the
// legacy document_type field when domain is unset.
func (r *Record) DomainOrType() string {
	if r.Domain != "" {
		return r.Domain
	}
	return r.DocumentType
}

// RecordCondition is one condition as persisted. Writers disagree on field
// names, so each slot has an alias: field|path, operator|type,
// value|expected_value. The accessor methods apply the fallbacks.
type RecordCondition struct {
	Field         string   `json:"field,omitempty"`
	Path          string   `json:"path,omitempty"`
	Operator      string   `json:"operator,omitempty"`
	Type          string   `json:"type,omitempty"`
	Value         any      `json:"value,omitempty"`
	ExpectedValue any      `json:"expected_value,omitempty"`
	CompareField  string   `json:"compare_field,omitempty"`
	Threshold     *float64 `json:"threshold,omitempty"`
	CaseSensitive bool     `json:"case_sensitive,omitempty"`
}

// FieldPath returns the condition's field path, preferring field over path.
func (c *RecordCondition) FieldPath() string {
	if c.Field != "" {
		return c.Field
	}
	return c.Path
}

// OperatorName returns the condition's operator string, preferring operator
// over type.
func (c *RecordCondition) OperatorName() string {
	if c.Operator != "" {
		return c.Operator
	}
	return c.Type
}

// ComparisonValue returns the condition's literal comparison value,
// preferring value over expected_value.
func (c *RecordCondition) ComparisonValue() any {
	if c.Value != nil {
		return c.Value
	}
	return c.ExpectedValue
}

// ExpectedOutcome holds example inputs the rule author considered valid and
// invalid. Authoring tools use these for self-tests; the engine ignores them.
type ExpectedOutcome struct {
	Valid   []string `json:"valid,omitempty"`
	Invalid []string `json:"invalid,omitempty"`
}

// RecordStore is the storage interface for persisted rule records.
// Implementations must be safe for concurrent use.
type RecordStore interface {
	// ListActive returns all records with is_active set, ordered by rule id.
	ListActive(ctx context.Context) ([]Record, error)

	// List returns all records, active or not, ordered by rule id.
	List(ctx context.Context) ([]Record, error)

	// Get retrieves a single record by rule id.
	// Returns ErrRecordNotFound if no record exists.
	Get(ctx context.Context, ruleID string) (*Record, error)

	// Put inserts or replaces a record. The store sets CreatedAt on insert
	// and UpdatedAt on every write.
	Put(ctx context.Context, record *Record) error

	// Delete removes a record by rule id.
	// Returns ErrRecordNotFound if no record exists.
	Delete(ctx context.Context, ruleID string) error

	// Close releases resources held by the store.
	Close() error
}

// StoreError represents an error from a record store backend.
type StoreError struct {
	Backend   string // Backend type ("sqlite", "memory")
	Operation string // Operation that failed ("put", "list", ...)
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("rule store error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// NewStoreError creates a new StoreError.
func NewStoreError(backend, operation string, cause error) *StoreError {
	return &StoreError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}
