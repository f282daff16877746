package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements RecordStore using an in-memory map.
// It is intended for tests and for embedding without a database file.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryStore creates a new in-memory record store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
	}
}

// ListActive returns all active records ordered by rule id.
func (s *MemoryStore) ListActive(ctx context.Context) ([]Record, error) {
	return s.list(func(r *Record) bool { return r.IsActive }), nil
}

// List returns all records ordered by rule id.
func (s *MemoryStore) List(ctx context.Context) ([]Record, error) {
	return s.list(func(*Record) bool { return true }), nil
}

func (s *MemoryStore) list(keep func(*Record) bool) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.records))
	for id, record := range s.records {
		if keep(record) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	records := make([]Record, 0, len(ids))
	for _, id := range ids {
		records = append(records, *s.records[id])
	}
	return records
}

// Get retrieves a single record by rule id.
func (s *MemoryStore) Get(ctx context.Context, ruleID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[ruleID]
	if !ok {
		return nil, ErrRecordNotFound
	}

	recordCopy := *record
	return &recordCopy, nil
}

// Put inserts or replaces a record.
func (s *MemoryStore) Put(ctx context.Context, record *Record) error {
	if record == nil {
		return NewStoreError("memory", "put", fmt.Errorf("record cannot be nil"))
	}
	if record.RuleID == "" {
		return NewStoreError("memory", "put", fmt.Errorf("rule_id cannot be empty"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	recordCopy := *record
	recordCopy.UpdatedAt = now
	if existing, ok := s.records[record.RuleID]; ok {
		recordCopy.CreatedAt = existing.CreatedAt
	} else if recordCopy.CreatedAt.IsZero() {
		recordCopy.CreatedAt = now
	}

	s.records[record.RuleID] = &recordCopy
	return nil
}

// Delete removes a record by rule id.
func (s *MemoryStore) Delete(ctx context.Context, ruleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[ruleID]; !ok {
		return ErrRecordNotFound
	}

	delete(s.records, ruleID)
	return nil
}

// Close clears the store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*Record)
	return nil
}

// Size returns the number of records in the store (for testing).
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}
