package query

import (
	"fmt"
	"strings"

	"mercator-hq/saturn/pkg/audit"
)

const (
	// DefaultLimit is the default number of records to return if not specified.
	DefaultLimit = 100

	// MaxLimit is the maximum number of records that can be returned in a single query.
	MaxLimit = 10000
)

// ValidSortFields contains the fields that can be used for sorting.
var ValidSortFields = map[string]bool{
	"started_time":      true,
	"completed_time":    true,
	"recorded_time":     true,
	"issue_count":       true,
	"failed":            true,
	"total_rules":       true,
	"execution_time_ms": true,
}

// ValidSortOrders contains the valid sort orders.
var ValidSortOrders = map[string]bool{
	"asc":  true,
	"desc": true,
}

// validSeverities contains the severity filter values the backends index.
var validSeverities = map[string]bool{
	"CRITICAL": true,
	"MAJOR":    true,
	"MINOR":    true,
}

// Validate validates a query and returns an error if any parameters are invalid.
func Validate(q *audit.Query) error {
	// Validate limit
	if q.Limit < 0 {
		return audit.NewQueryError(q, fmt.Errorf("limit must be >= 0, got %d", q.Limit))
	}
	if q.Limit > MaxLimit {
		return audit.NewQueryError(q, fmt.Errorf("limit must be <= %d, got %d", MaxLimit, q.Limit))
	}

	// Validate offset
	if q.Offset < 0 {
		return audit.NewQueryError(q, fmt.Errorf("offset must be >= 0, got %d", q.Offset))
	}

	// Validate sort field
	if q.SortBy != "" && !ValidSortFields[q.SortBy] {
		return audit.NewQueryError(q, fmt.Errorf("invalid sort field: %s", q.SortBy))
	}

	// Validate sort order
	if q.SortOrder != "" && !ValidSortOrders[q.SortOrder] {
		return audit.NewQueryError(q, fmt.Errorf("invalid sort order: %s (must be 'asc' or 'desc')", q.SortOrder))
	}

	// Validate time range
	if q.StartTime != nil && q.EndTime != nil {
		if q.StartTime.After(*q.EndTime) {
			return audit.NewQueryError(q, fmt.Errorf("start_time must be before end_time"))
		}
	}

	// Validate issue thresholds
	if q.MinIssues != nil && q.MaxIssues != nil {
		if *q.MinIssues > *q.MaxIssues {
			return audit.NewQueryError(q, fmt.Errorf("min_issues must be <= max_issues"))
		}
	}

	// Validate failed rule thresholds
	if q.MinFailed != nil && q.MaxFailed != nil {
		if *q.MinFailed > *q.MaxFailed {
			return audit.NewQueryError(q, fmt.Errorf("min_failed must be <= max_failed"))
		}
	}

	// Validate severity
	if q.Severity != "" {
		if !validSeverities[strings.ToUpper(strings.TrimSpace(q.Severity))] {
			return audit.NewQueryError(q, fmt.Errorf("invalid severity: %s (must be 'critical', 'major', or 'minor')", q.Severity))
		}
	}

	// Validate outcome
	if q.Outcome != "" {
		if q.Outcome != audit.OutcomeCompliant && q.Outcome != audit.OutcomeDiscrepant {
			return audit.NewQueryError(q, fmt.Errorf("invalid outcome: %s (must be %q or %q)", q.Outcome, audit.OutcomeCompliant, audit.OutcomeDiscrepant))
		}
	}

	// Validate status
	if q.Status != "" {
		validStatuses := map[string]bool{
			"success": true,
			"error":   true,
		}
		if !validStatuses[q.Status] {
			return audit.NewQueryError(q, fmt.Errorf("invalid status: %s (must be 'success' or 'error')", q.Status))
		}
	}

	return nil
}

// ApplyDefaults applies default values to a query.
func ApplyDefaults(q *audit.Query) {
	// Apply default limit
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}

	// Apply default sort field
	if q.SortBy == "" {
		q.SortBy = "started_time"
	}

	// Apply default sort order
	if q.SortOrder == "" {
		q.SortOrder = "desc"
	}
}
