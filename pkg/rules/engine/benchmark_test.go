package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"mercator-hq/saturn/pkg/crl/ast"
)

// BenchmarkFieldResolution benchmarks dotted-path resolution
func BenchmarkFieldResolution(b *testing.B) {
	fields := benchFields()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = resolveField(fields, "lc.amount.value")
	}
}

// BenchmarkSimilarity benchmarks the token-set scorer
func BenchmarkSimilarity(b *testing.B) {
	a := "ACME Trading Co Ltd"
	c := "Acme Trading Company Limited"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Similarity(a, c)
	}
}

// BenchmarkTemplateRendering benchmarks placeholder substitution
func BenchmarkTemplateRendering(b *testing.B) {
	ec := NewEvaluationContext(benchFields())
	tmpl := "Invoice amount {invoice.amount} exceeds {invoice_amount_limit} for credit {lc.number}"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = RenderTemplate(tmpl, ec)
	}
}

// BenchmarkExecuteRule benchmarks a full three-condition rule evaluation
func BenchmarkExecuteRule(b *testing.B) {
	e, err := New(DefaultConfig())
	if err != nil {
		b.Fatal(err)
	}
	rule := amountToleranceRule()
	ec := NewEvaluationContext(benchFields())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.ExecuteRule(context.Background(), rule, ec)
	}
}

// BenchmarkExecuteAllRules benchmarks a 50-rule batch
func BenchmarkExecuteAllRules(b *testing.B) {
	rules := make([]ast.Rule, 50)
	for i := range rules {
		r := *amountToleranceRule()
		r.ID = fmt.Sprintf("UCP-AMT-%03d", i)
		rules[i] = r
	}
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	e, err := New(DefaultConfig(), WithCatalog(&staticCatalog{rules: rules}), WithLogger(quiet))
	if err != nil {
		b.Fatal(err)
	}
	ec := NewEvaluationContext(benchFields())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.ExecuteAllRules(context.Background(), ec)
	}
}

func benchFields() map[string]any {
	return map[string]any{
		"lc": map[string]any{
			"number": "LC-2024-001",
			"amount": map[string]any{"value": 100000.0, "currency": "USD"},
		},
		"invoice":              map[string]any{"amount": 100500.0},
		"invoice_amount_limit": 105000.0,
	}
}
