package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"mercator-hq/saturn/pkg/audit"
)

// MemoryStorage implements the Storage interface using an in-memory map.
// This implementation is intended for testing only and should not be used
// in production.
type MemoryStorage struct {
	records map[string]*audit.ValidationRecord
	mu      sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*audit.ValidationRecord),
	}
}

// Store persists a validation record to memory.
func (s *MemoryStorage) Store(ctx context.Context, record *audit.ValidationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Create a copy to avoid mutation
	recordCopy := *record
	s.records[record.ID] = &recordCopy

	return nil
}

// Query retrieves validation records matching the query filters, sorted
// and paginated the same way as the SQLite backend. A zero limit returns
// all matching records.
func (s *MemoryStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.ValidationRecord, error) {
	if query == nil {
		query = &audit.Query{}
	}

	s.mu.RLock()

	var results []*audit.ValidationRecord
	for _, record := range s.records {
		if matchesQuery(record, query) {
			// Create a copy to avoid mutation
			recordCopy := *record
			results = append(results, &recordCopy)
		}
	}

	s.mu.RUnlock()

	sortRecords(results, query)

	if query.Offset > 0 {
		if query.Offset >= len(results) {
			return []*audit.ValidationRecord{}, nil
		}
		results = results[query.Offset:]
	}
	if query.Limit > 0 && query.Limit < len(results) {
		results = results[:query.Limit]
	}

	return results, nil
}

// QueryStream returns a channel of validation records. The snapshot is
// taken up front, then streamed with cancellation checks. The channels
// are closed when the stream completes or errors.
func (s *MemoryStorage) QueryStream(ctx context.Context, query *audit.Query) (<-chan *audit.ValidationRecord, <-chan error, error) {
	records, err := s.Query(ctx, query)
	if err != nil {
		return nil, nil, err
	}

	recordsCh := make(chan *audit.ValidationRecord, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(recordsCh)
		defer close(errCh)

		for _, record := range records {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case recordsCh <- record:
			}
		}
	}()

	return recordsCh, errCh, nil
}

// Count returns the number of validation records matching the query filters.
func (s *MemoryStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	if query == nil {
		query = &audit.Query{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if matchesQuery(record, query) {
			count++
		}
	}

	return count, nil
}

// Delete removes validation records matching the query filters.
func (s *MemoryStorage) Delete(ctx context.Context, query *audit.Query) (int64, error) {
	if query == nil {
		query = &audit.Query{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	toDelete := []string{}
	for id, record := range s.records {
		if matchesQuery(record, query) {
			toDelete = append(toDelete, id)
		}
	}

	for _, id := range toDelete {
		delete(s.records, id)
	}

	return int64(len(toDelete)), nil
}

// Close releases resources held by the storage backend.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*audit.ValidationRecord)
	return nil
}

// matchesQuery checks if a record matches the query filters.
func matchesQuery(record *audit.ValidationRecord, query *audit.Query) bool {
	// Time range filter (inclusive, on the validation start time)
	if query.StartTime != nil && record.StartedTime.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && record.StartedTime.After(*query.EndTime) {
		return false
	}

	// Identity filters
	if query.ValidationID != "" && record.ValidationID != query.ValidationID {
		return false
	}
	if query.LCReference != "" && record.LCReference != query.LCReference {
		return false
	}
	if query.CheckedBy != "" && record.CheckedBy != query.CheckedBy {
		return false
	}

	// Rule filter matches any flagged issue
	if query.RuleID != "" {
		found := false
		for _, issue := range record.Issues {
			if issue.RuleID == query.RuleID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if query.Severity != "" {
		switch strings.ToUpper(strings.TrimSpace(query.Severity)) {
		case "CRITICAL":
			if record.CriticalCount == 0 {
				return false
			}
		case "MAJOR":
			if record.MajorCount == 0 {
				return false
			}
		case "MINOR":
			if record.MinorCount == 0 {
				return false
			}
		default:
			found := false
			for _, issue := range record.Issues {
				if strings.EqualFold(issue.Severity, query.Severity) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}

	if query.Outcome != "" && record.Outcome != query.Outcome {
		return false
	}

	// Issue thresholds
	if query.MinIssues != nil && record.IssueCount < *query.MinIssues {
		return false
	}
	if query.MaxIssues != nil && record.IssueCount > *query.MaxIssues {
		return false
	}

	// Failed rule thresholds
	if query.MinFailed != nil && record.Failed < *query.MinFailed {
		return false
	}
	if query.MaxFailed != nil && record.Failed > *query.MaxFailed {
		return false
	}

	// Status filter
	switch query.Status {
	case "success":
		if record.Error != "" {
			return false
		}
	case "error":
		if record.Error == "" {
			return false
		}
	}

	return true
}

// sortRecords orders records by the query's sort column, newest first by
// default, matching the SQLite backend's allowlist.
func sortRecords(records []*audit.ValidationRecord, query *audit.Query) {
	column := query.SortBy
	if !sortColumns[column] {
		column = "started_time"
	}
	asc := strings.EqualFold(query.SortOrder, "asc")

	sort.Slice(records, func(i, j int) bool {
		cmp := compareRecords(records[i], records[j], column)
		if asc {
			return cmp < 0
		}
		return cmp > 0
	})
}

func compareRecords(a, b *audit.ValidationRecord, column string) int {
	switch column {
	case "completed_time":
		return a.CompletedTime.Compare(b.CompletedTime)
	case "recorded_time":
		return a.RecordedTime.Compare(b.RecordedTime)
	case "issue_count":
		return a.IssueCount - b.IssueCount
	case "failed":
		return a.Failed - b.Failed
	case "total_rules":
		return a.TotalRules - b.TotalRules
	case "execution_time_ms":
		return cmpInt64(a.ExecutionTimeMS, b.ExecutionTimeMS)
	default:
		return a.StartedTime.Compare(b.StartedTime)
	}
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Clear removes all records from storage (for testing).
func (s *MemoryStorage) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*audit.ValidationRecord)
}

// GetByID retrieves a single validation record by ID (for testing).
func (s *MemoryStorage) GetByID(id string) *audit.ValidationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil
	}

	// Return a copy
	recordCopy := *record
	return &recordCopy
}

// Size returns the number of records in storage (for testing).
func (s *MemoryStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}
