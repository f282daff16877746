package store

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStore_PutAndGet(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	record := testRecord("R-1", true)
	if err := st.Put(ctx, record); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	got, err := st.Get(ctx, "R-1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Title != record.Title {
		t.Errorf("Title = %q, want %q", got.Title, record.Title)
	}

	// Returned record is a copy; mutating it must not affect the store.
	got.Title = "mutated"
	again, _ := st.Get(ctx, "R-1")
	if again.Title == "mutated" {
		t.Error("Get() returned a shared record, want a copy")
	}
}

func TestMemoryStore_Get_NotFound(t *testing.T) {
	st := NewMemoryStore()

	_, err := st.Get(context.Background(), "missing")
	if !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrRecordNotFound", err)
	}
}

func TestMemoryStore_ListActive(t *testing.T) {
	st := NewMemoryStore()
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

func TestMemoryStore_Delete(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	if err := st.Put(ctx, testRecord("R-1", true)); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	if err := st.Delete(ctx, "R-1"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if st.Size() != 0 {
		t.Errorf("Size() = %d, want 0", st.Size())
	}
	if err := st.Delete(ctx, "R-1"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrRecordNotFound", err)
	}
}

func TestMemoryStore_Put_PreservesCreatedAt(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	if err := st.Put(ctx, testRecord("R-1", true)); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	first, _ := st.Get(ctx, "R-1")

	updated := testRecord("R-1", true)
	updated.Version = "2.0.0"
	if err := st.Put(ctx, updated); err != nil {
		t.Fatalf("Put() replace failed: %v", err)
	}

	got, _ := st.Get(ctx, "R-1")
	if got.Version != "2.0.0" {
		t.Errorf("Version = %q, want %q", got.Version, "2.0.0")
	}
	if !got.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("CreatedAt changed on replace: %v -> %v", first.CreatedAt, got.CreatedAt)
	}
}

func TestRecordCondition_Aliases(t *testing.T) {
	tests := []struct {
		name     string
		cond     RecordCondition
		field    string
		operator string
		value    any
	}{
		{
			name:     "canonical names",
			cond:     RecordCondition{Field: "lc.number", Operator: "exists", Value: "x"},
			field:    "lc.number",
			operator: "exists",
			value:    "x",
		},
		{
			name:     "legacy aliases",
			cond:     RecordCondition{Path: "lc.number", Type: "equals", ExpectedValue: "LC-1"},
			field:    "lc.number",
			operator: "equals",
			value:    "LC-1",
		},
		{
			name:     "canonical wins over alias",
			cond:     RecordCondition{Field: "a", Path: "b", Operator: "gt", Type: "lt", Value: 1, ExpectedValue: 2},
			field:    "a",
			operator: "gt",
			value:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cond.FieldPath(); got != tt.field {
				t.Errorf("FieldPath() = %q, want %q", got, tt.field)
			}
			if got := tt.cond.OperatorName(); got != tt.operator {
				t.Errorf("OperatorName() = %q, want %q", got, tt.operator)
			}
			if got := tt.cond.ComparisonValue(); got != tt.value {
				t.Errorf("ComparisonValue() = %v, want %v", got, tt.value)
			}
		})
	}
}

func TestRecord_DomainOrType(t *testing.T) {
	r := &Record{Domain: "ucp600", DocumentType: "invoice"}
	if got := r.DomainOrType(); got != "ucp600" {
		t.Errorf("DomainOrType() = %q, want %q", got, "ucp600")
	}

	r = &Record{DocumentType: "invoice"}
	if got := r.DomainOrType(); got != "invoice" {
		t.Errorf("DomainOrType() = %q, want %q", got, "invoice")
	}
}
