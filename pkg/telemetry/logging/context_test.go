package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestContextKeys(t *testing.T) {
	ctx := context.Background()

	// Test ValidationID
	ctx = WithValidationID(ctx, "8f14e45f")
	if got := GetValidationID(ctx); got != "8f14e45f" {
		t.Errorf("GetValidationID() = %q, want %q", got, "8f14e45f")
	}

	// Test LCReference
	ctx = WithLCReference(ctx, "LC-2024-001")
	if got := GetLCReference(ctx); got != "LC-2024-001" {
		t.Errorf("GetLCReference() = %q, want %q", got, "LC-2024-001")
	}

	// Test CheckedBy
	ctx = WithCheckedBy(ctx, "examiner1")
	if got := GetCheckedBy(ctx); got != "examiner1" {
		t.Errorf("GetCheckedBy() = %q, want %q", got, "examiner1")
	}

	// Test Source
	ctx = WithSource(ctx, "git")
	if got := GetSource(ctx); got != "git" {
		t.Errorf("GetSource() = %q, want %q", got, "git")
	}

	// Test CatalogVersion
	ctx = WithCatalogVersion(ctx, "2024.08.1")
	if got := GetCatalogVersion(ctx); got != "2024.08.1" {
		t.Errorf("GetCatalogVersion() = %q, want %q", got, "2024.08.1")
	}

	// Test TraceID
	ctx = WithTraceID(ctx, "trace-1")
	if got := GetTraceID(ctx); got != "trace-1" {
		t.Errorf("GetTraceID() = %q, want %q", got, "trace-1")
	}

	// Test SpanID
	ctx = WithSpanID(ctx, "span-1")
	if got := GetSpanID(ctx); got != "span-1" {
		t.Errorf("GetSpanID() = %q, want %q", got, "span-1")
	}
}

func TestContextKeys_Empty(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		get  func(context.Context) string
	}{
		{"ValidationID", GetValidationID},
		{"LCReference", GetLCReference},
		{"CheckedBy", GetCheckedBy},
		{"Source", GetSource},
		{"CatalogVersion", GetCatalogVersion},
		{"TraceID", GetTraceID},
		{"SpanID", GetSpanID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.get(ctx); got != "" {
				t.Errorf("Get%s() on empty context = %q, want empty string", tt.name, got)
			}
		})
	}
}

func TestExtractContextFields(t *testing.T) {
	tests := []struct {
		name       string
		setupCtx   func(context.Context) context.Context
		wantFields map[string]string
	}{
		{
			name: "no fields",
			setupCtx: func(ctx context.Context) context.Context {
				return ctx
			},
			wantFields: map[string]string{},
		},
		{
			name: "single field",
			setupCtx: func(ctx context.Context) context.Context {
				return WithValidationID(ctx, "8f14e45f")
			},
			wantFields: map[string]string{
				"validation_id": "8f14e45f",
			},
		},
		{
			name: "multiple fields",
			setupCtx: func(ctx context.Context) context.Context {
				ctx = WithValidationID(ctx, "45c48cce")
				ctx = WithLCReference(ctx, "LC-2024-058")
				ctx = WithCheckedBy(ctx, "trade.ops")
				ctx = WithSource(ctx, "rulebook")
				return ctx
			},
			wantFields: map[string]string{
				"validation_id": "45c48cce",
				"lc_reference":  "LC-2024-058",
				"checked_by":    "trade.ops",
				"source":        "rulebook",
			},
		},
		{
			name: "all fields",
			setupCtx: func(ctx context.Context) context.Context {
				ctx = WithValidationID(ctx, "d3d94468")
				ctx = WithLCReference(ctx, "LC-2024-113")
				ctx = WithCheckedBy(ctx, "examiner2")
				ctx = WithSource(ctx, "store")
				ctx = WithCatalogVersion(ctx, "2024.08.2")
				ctx = WithTraceID(ctx, "trace-1")
				ctx = WithSpanID(ctx, "span-1")
				return ctx
			},
			wantFields: map[string]string{
				"validation_id":   "d3d94468",
				"lc_reference":    "LC-2024-113",
				"checked_by":      "examiner2",
				"source":          "store",
				"catalog_version": "2024.08.2",
				"trace_id":        "trace-1",
				"span_id":         "span-1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := tt.setupCtx(context.Background())
			fields := extractContextFields(ctx)

			// Convert []any to map for easier checking
			fieldsMap := make(map[string]string)
			for i := 0; i < len(fields); i += 2 {
				key := fields[i].(string)
				value := fields[i+1].(string)
				fieldsMap[key] = value
			}

			// Check expected fields are present
			for key, expectedValue := range tt.wantFields {
				if gotValue, ok := fieldsMap[key]; !ok {
					t.Errorf("Expected field %q not found", key)
				} else if gotValue != expectedValue {
					t.Errorf("Field %q = %q, want %q", key, gotValue, expectedValue)
				}
			}

			// Check no extra fields
			if len(fieldsMap) != len(tt.wantFields) {
				t.Errorf("Got %d fields, want %d. Fields: %v",
					len(fieldsMap), len(tt.wantFields), fieldsMap)
			}
		})
	}
}

func TestContextLogger(t *testing.T) {
	ctx := context.Background()
	ctx = WithValidationID(ctx, "9bf31c7f")
	ctx = WithLCReference(ctx, "LC-2024-114")

	var buf bytes.Buffer
	logger, err := New(Config{
		Level:  "debug",
		Format: "json",
		Writer: &buf,
	})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	ctxLogger := NewContextLogger(logger, ctx)
	if ctxLogger == nil {
		t.Fatal("NewContextLogger returned nil")
	}

	ctxLogger.Info("validation started")

	output := buf.String()
	if !strings.Contains(output, `"validation_id":"9bf31c7f"`) {
		t.Errorf("Output missing validation_id: %s", output)
	}
	if !strings.Contains(output, `"lc_reference":"LC-2024-114"`) {
		t.Errorf("Output missing lc_reference: %s", output)
	}

	// Context fields must appear exactly once per entry.
	if got := strings.Count(output, `"validation_id"`); got != 1 {
		t.Errorf("validation_id appears %d times in one entry, want 1: %s", got, output)
	}
	if got := strings.Count(output, `"lc_reference"`); got != 1 {
		t.Errorf("lc_reference appears %d times in one entry, want 1: %s", got, output)
	}

	buf.Reset()
	ctxLogger.Debug("parsing documents")
	ctxLogger.Warn("presentation period close to expiry")
	ctxLogger.Error("document set incomplete")

	if got := strings.Count(buf.String(), `"validation_id":"9bf31c7f"`); got != 3 {
		t.Errorf("Expected validation_id on 3 entries, got %d: %s", got, buf.String())
	}
}

func TestContextLogger_With(t *testing.T) {
	ctx := WithValidationID(context.Background(), "1679091c")

	var buf bytes.Buffer
	logger, err := New(Config{
		Level:  "info",
		Format: "json",
		Writer: &buf,
	})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	ctxLogger := NewContextLogger(logger, ctx)

	// Create child logger with additional fields
	childLogger := ctxLogger.With("rulebook", "ucp600-documents", "rule_count", 42)
	if childLogger == nil {
		t.Fatal("ContextLogger.With returned nil")
	}

	childLogger.Info("rulebook loaded")

	output := buf.String()
	if !strings.Contains(output, `"rulebook":"ucp600-documents"`) {
		t.Errorf("Output missing field from With: %s", output)
	}
	if !strings.Contains(output, `"rule_count":42`) {
		t.Errorf("Output missing numeric field from With: %s", output)
	}
	if !strings.Contains(output, `"validation_id":"1679091c"`) {
		t.Errorf("Child logger lost context fields: %s", output)
	}
	if got := strings.Count(output, `"validation_id"`); got != 1 {
		t.Errorf("validation_id appears %d times, want 1: %s", got, output)
	}
}

func TestContextChaining(t *testing.T) {
	// Test that context values can be added incrementally
	ctx := context.Background()
	ctx = WithValidationID(ctx, "c9f0f895")
	ctx = WithLCReference(ctx, "LC-2024-207")
	ctx = WithSource(ctx, "git")

	// Verify all values are present
	if got := GetValidationID(ctx); got != "c9f0f895" {
		t.Errorf("After chaining, GetValidationID() = %q, want %q", got, "c9f0f895")
	}
	if got := GetLCReference(ctx); got != "LC-2024-207" {
		t.Errorf("After chaining, GetLCReference() = %q, want %q", got, "LC-2024-207")
	}
	if got := GetSource(ctx); got != "git" {
		t.Errorf("After chaining, GetSource() = %q, want %q", got, "git")
	}

	// Add more values
	ctx = WithCatalogVersion(ctx, "2024.08.3")
	ctx = WithCheckedBy(ctx, "examiner3")

	if got := GetCatalogVersion(ctx); got != "2024.08.3" {
		t.Errorf("After more chaining, GetCatalogVersion() = %q, want %q", got, "2024.08.3")
	}
	if got := GetCheckedBy(ctx); got != "examiner3" {
		t.Errorf("After more chaining, GetCheckedBy() = %q, want %q", got, "examiner3")
	}

	// Verify original values still present
	if got := GetValidationID(ctx); got != "c9f0f895" {
		t.Errorf("Original value changed: GetValidationID() = %q, want %q", got, "c9f0f895")
	}
}

func TestContextOverwrite(t *testing.T) {
	// Test that context values can be overwritten
	ctx := context.Background()
	ctx = WithValidationID(ctx, "old-id")

	if got := GetValidationID(ctx); got != "old-id" {
		t.Errorf("Initial GetValidationID() = %q, want %q", got, "old-id")
	}

	// Overwrite with new value
	ctx = WithValidationID(ctx, "new-id")

	if got := GetValidationID(ctx); got != "new-id" {
		t.Errorf("After overwrite, GetValidationID() = %q, want %q", got, "new-id")
	}
}

func BenchmarkExtractContextFields(b *testing.B) {
	ctx := context.Background()
	ctx = WithValidationID(ctx, "8f14e45f")
	ctx = WithLCReference(ctx, "LC-2024-001")
	ctx = WithCheckedBy(ctx, "examiner1")
	ctx = WithSource(ctx, "git")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = extractContextFields(ctx)
	}
}

func BenchmarkWithValidationID(b *testing.B) {
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = WithValidationID(ctx, "8f14e45f")
	}
}

func BenchmarkGetValidationID(b *testing.B) {
	ctx := WithValidationID(context.Background(), "8f14e45f")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = GetValidationID(ctx)
	}
}
