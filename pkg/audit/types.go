package audit

import (
	"context"
	"io"
	"time"
)

// Validation run outcomes. A run is discrepant when any rule triggered or
// any issue was generated; otherwise it is compliant.
const (
	OutcomeCompliant  = "compliant"
	OutcomeDiscrepant = "discrepant"
)

// ValidationRecord is the immutable audit trail entry for one validation
// run: a single execution of the rule catalog against one extracted
// presentation context.
type ValidationRecord struct {
	// Identity
	ID           string `json:"id"`            // UUID v4, assigned by the recorder
	ValidationID string `json:"validation_id"` // Caller-supplied run identifier

	// Timestamps
	StartedTime   time.Time `json:"started_time"`   // When execution began
	CompletedTime time.Time `json:"completed_time"` // When the summary arrived
	RecordedTime  time.Time `json:"recorded_time"`  // When the record was built

	// Input snapshot
	ContextHash   string   `json:"context_hash"`   // SHA-256 of the extracted fields
	DocumentTypes []string `json:"document_types"` // Classified documents in the presentation
	DocumentCount int      `json:"document_count"` // Entries in the documents collection
	FieldCount    int      `json:"field_count"`    // Top-level extracted field groups

	// Presentation metadata
	LCReference string `json:"lc_reference"` // Letter of credit reference
	CheckedBy   string `json:"checked_by"`   // Document checker identity

	// CatalogVersion is the rule catalog version hash active during the run.
	CatalogVersion string `json:"catalog_version"`

	// Outcome counts
	TotalRules      int   `json:"total_rules"`
	Passed          int   `json:"passed"`
	Failed          int   `json:"failed"`
	Skipped         int   `json:"skipped"`
	ExecutionTimeMS int64 `json:"execution_time_ms"`

	// Discrepancies
	Outcome       string        `json:"outcome"` // "compliant" or "discrepant"
	Issues        []IssueRecord `json:"issues"`
	IssueCount    int           `json:"issue_count"`
	CriticalCount int           `json:"critical_count"`
	MajorCount    int           `json:"major_count"`
	MinorCount    int           `json:"minor_count"`

	// Error records an infrastructure failure reported by the caller for
	// this run. A discrepancy is never an error.
	Error string `json:"error,omitempty"`
}

// IssueRecord is one flattened discrepancy carried inside a validation
// record. Long text fields are truncated by the recorder before storage.
type IssueRecord struct {
	RuleID        string   `json:"rule_id"`
	Title         string   `json:"title"`
	Severity      string   `json:"severity"`
	Message       string   `json:"message"`
	Expected      string   `json:"expected,omitempty"`
	Actual        string   `json:"actual,omitempty"`
	Suggestion    string   `json:"suggestion,omitempty"`
	Documents     []string `json:"documents,omitempty"`
	UCPReference  string   `json:"ucp_reference,omitempty"`
	ISBPReference string   `json:"isbp_reference,omitempty"`
}

// Query defines filter parameters for querying validation records.
type Query struct {
	// Time range on StartedTime, both bounds inclusive
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	// Filters
	ValidationID string `json:"validation_id,omitempty"` // Exact run identifier
	LCReference  string `json:"lc_reference,omitempty"`  // Letter of credit reference
	CheckedBy    string `json:"checked_by,omitempty"`    // Checker identity
	RuleID       string `json:"rule_id,omitempty"`       // Runs whose issues cite this rule
	Severity     string `json:"severity,omitempty"`      // Runs carrying an issue of this severity
	Outcome      string `json:"outcome,omitempty"`       // "compliant" or "discrepant"

	// Thresholds
	MinIssues *int `json:"min_issues,omitempty"`
	MaxIssues *int `json:"max_issues,omitempty"`
	MinFailed *int `json:"min_failed,omitempty"`
	MaxFailed *int `json:"max_failed,omitempty"`

	// Status selects on the record's error field: "success" for runs
	// without an error, "error" for runs with one.
	Status string `json:"status,omitempty"`

	// Pagination
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// Sorting
	SortBy    string `json:"sort_by,omitempty"`    // "started_time", "issue_count", ...
	SortOrder string `json:"sort_order,omitempty"` // "asc", "desc"
}

// Storage defines the interface for validation history backends.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Store persists a validation record.
	Store(ctx context.Context, record *ValidationRecord) error

	// Query retrieves validation records matching the query filters.
	// Returns an empty slice if no records match.
	Query(ctx context.Context, query *Query) ([]*ValidationRecord, error)

	// QueryStream returns a channel of validation records for
	// memory-efficient streaming over large result sets.
	//
	// Both channels are closed when the query completes or fails; callers
	// should drain the record channel and then read the error channel.
	QueryStream(ctx context.Context, query *Query) (<-chan *ValidationRecord, <-chan error, error)

	// Count returns the number of records matching the query filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes records matching the query filters and returns the
	// number deleted. Used for retention enforcement.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases any resources held by the backend.
	Close() error
}

// Exporter renders validation records to an output format.
type Exporter interface {
	// Export writes the records to w in the exporter's format.
	Export(ctx context.Context, records []*ValidationRecord, w io.Writer) error
}
