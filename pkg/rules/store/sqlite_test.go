package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// createTempStore creates a temporary SQLite record store for testing.
func createTempStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "rules.db")

	config := &SQLiteConfig{
		Path:         dbPath,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}

	st, err := NewSQLiteStore(config)
	if err != nil {
		t.Fatalf("Failed to create SQLite store: %v", err)
	}

	return st, dbPath
}

func testRecord(ruleID string, active bool) *Record {
	threshold := 0.85
	return &Record{
		RuleID:      ruleID,
		Title:       "Beneficiary name consistency",
		Description: "Beneficiary on the invoice must match the LC",
		Severity:    "fail",
		Domain:      "cross_document",
		Conditions: []RecordCondition{
			{
				Field:        "invoice.beneficiary_name",
				Operator:     "similar_to",
				CompareField: "lc.beneficiary_name",
				Threshold:    &threshold,
			},
		},
		ExpectedOutcome: &ExpectedOutcome{
			Valid:   []string{"ACME Trading Co"},
			Invalid: []string{"Globex Corp"},
		},
		IsActive:  active,
		Version:   "1.2.0",
		Reference: "UCP600 Art. 14(d)",
	}
}

func TestSQLiteStore_Initialize(t *testing.T) {
	st, dbPath := createTempStore(t)
	defer st.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestSQLiteStore_PutAndGet(t *testing.T) {
	st, _ := createTempStore(t)
	defer st.Close()

	ctx := context.Background()
	record := testRecord("XDOC-BENEFICIARY", true)

	if err := st.Put(ctx, record); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	got, err := st.Get(ctx, "XDOC-BENEFICIARY")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}

	if got.Title != record.Title {
		t.Errorf("Title = %q, want %q", got.Title, record.Title)
	}
	if got.Severity != "fail" {
		t.Errorf("Severity = %q, want %q", got.Severity, "fail")
	}
	if len(got.Conditions) != 1 {
		t.Fatalf("len(Conditions) = %d, want 1", len(got.Conditions))
	}
	if got.Conditions[0].CompareField != "lc.beneficiary_name" {
		t.Errorf("CompareField = %q, want %q", got.Conditions[0].CompareField, "lc.beneficiary_name")
	}
	if got.Conditions[0].Threshold == nil || *got.Conditions[0].Threshold != 0.85 {
		t.Errorf("Threshold = %v, want 0.85", got.Conditions[0].Threshold)
	}
	if got.ExpectedOutcome == nil || len(got.ExpectedOutcome.Valid) != 1 {
		t.Errorf("ExpectedOutcome = %+v, want one valid example", got.ExpectedOutcome)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps were not set on insert")
	}
}

func TestSQLiteStore_Get_NotFound(t *testing.T) {
	st, _ := createTempStore(t)
	defer st.Close()

	_, err := st.Get(context.Background(), "missing")
	if !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrRecordNotFound", err)
	}
}

func TestSQLiteStore_Put_Replace(t *testing.T) {
	st, _ := createTempStore(t)
	defer st.Close()

	ctx := context.Background()

	if err := st.Put(ctx, testRecord("R-1", true)); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	first, err := st.Get(ctx, "R-1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}

	updated := testRecord("R-1", true)
	updated.Version = "2.0.0"
	if err := st.Put(ctx, updated); err != nil {
		t.Fatalf("Put() replace failed: %v", err)
	}

	got, err := st.Get(ctx, "R-1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Version != "2.0.0" {
		t.Errorf("Version = %q, want %q", got.Version, "2.0.0")
	}
	if !got.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("CreatedAt changed on replace: %v -> %v", first.CreatedAt, got.CreatedAt)
	}
}

func TestSQLiteStore_Put_EmptyRuleID(t *testing.T) {
	st, _ := createTempStore(t)
	defer st.Close()

	err := st.Put(context.Background(), &Record{Title: "no id"})
	if err == nil {
		t.Fatal("Put(empty rule_id) error = nil, want error")
	}

	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("error type = %T, want *StoreError", err)
	}
}

func TestSQLiteStore_ListActive(t *testing.T) {
	st, _ := createTempStore(t)
	defer st.Close()

	ctx := context.Background()
	for _, rec := range []*Record{
		testRecord("R-B", true),
		testRecord("R-A", true),
		testRecord("R-C", false),
	} {
		if err := st.Put(ctx, rec); err != nil {
			t.Fatalf("Put(%s) failed: %v", rec.RuleID, err)
		}
	}

	active, err := st.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive() failed: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("len(active) = %d, want 2", len(active))
	}
	// Ordered by rule id
	if active[0].RuleID != "R-A" || active[1].RuleID != "R-B" {
		t.Errorf("active order = [%s %s], want [R-A R-B]", active[0].RuleID, active[1].RuleID)
	}

	all, err := st.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("len(all) = %d, want 3", len(all))
	}
}

func TestSQLiteStore_Delete(t *testing.T) {
	st, _ := createTempStore(t)
	defer st.Close()

	ctx := context.Background()
	if err := st.Put(ctx, testRecord("R-1", true)); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	if err := st.Delete(ctx, "R-1"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	if _, err := st.Get(ctx, "R-1"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrRecordNotFound", err)
	}

	if err := st.Delete(ctx, "R-1"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrRecordNotFound", err)
	}
}

func TestSQLiteStore_Reopen(t *testing.T) {
	st, dbPath := createTempStore(t)

	ctx := context.Background()
	if err := st.Put(ctx, testRecord("R-1", true)); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	reopened, err := NewSQLiteStore(&SQLiteConfig{
		Path:         dbPath,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, "R-1")
	if err != nil {
		t.Fatalf("Get() after reopen failed: %v", err)
	}
	if got.Title == "" {
		t.Error("record did not survive reopen")
	}
}
