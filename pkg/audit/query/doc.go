// Package query provides query validation for validation history lookups.
//
// # Query Validation
//
// The validator ensures query parameters are valid before execution:
//
//   - Limit >= 0 and <= MaxLimit
//   - Offset >= 0
//   - Sort field is valid (timestamps, issue and rule counters)
//   - Sort order is valid (asc, desc)
//   - Time range is valid (start <= end)
//   - Issue/failure thresholds are valid (min <= max)
//   - Severity is one of critical, major, minor
//   - Outcome is compliant or discrepant
//   - Status is success or error
//
// # Basic Usage
//
//	// Create query
//	q := &audit.Query{
//	    StartTime: &startTime,
//	    EndTime: &endTime,
//	    LCReference: "LC-2024-00017",
//	    Outcome: audit.OutcomeDiscrepant,
//	    SortBy: "started_time",
//	    SortOrder: "desc",
//	}
//
//	// Validate and fill defaults
//	if err := query.Validate(q); err != nil {
//	    log.Fatal(err)
//	}
//	query.ApplyDefaults(q)
//
//	// Execute query
//	records, err := storage.Query(ctx, q)
//	if err != nil {
//	    log.Fatal(err)
//	}
package query
