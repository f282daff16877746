package crl

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleRulebook = `
id: isbp-invoice
name: ISBP invoice checks
version: "1.0.0"
category: ISBP
rules:
  - id: ISBP-C2-CURRENCY
    name: Invoice currency matches the credit
    severity: MAJOR
    requires_fields: [lc.currency, invoice.currency]
    conditions:
      - field: invoice.currency
        operator: equals
        compare_field: lc.currency
    action:
      title: Currency mismatch
      message: The invoice is issued in a different currency than the credit.
`

// TestParseAndValidate tests the high-level API
func TestParseAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "isbp.yaml")
	if err := os.WriteFile(path, []byte(sampleRulebook), 0o644); err != nil {
		t.Fatal(err)
	}

	rs, err := ParseAndValidate(path)
	if err != nil {
		t.Fatalf("ParseAndValidate() failed: %v", err)
	}

	if rs.ID != "isbp-invoice" {
		t.Errorf("RuleSet.ID = %q, want %q", rs.ID, "isbp-invoice")
	}
	if rs.RuleCount() != 1 {
		t.Errorf("RuleCount() = %d, want 1", rs.RuleCount())
	}
}

// TestParseAndValidateBytes tests parsing from bytes
func TestParseAndValidateBytes(t *testing.T) {
	rs, err := ParseAndValidateBytes([]byte(sampleRulebook), "memory://isbp")
	if err != nil {
		t.Fatalf("ParseAndValidateBytes() failed: %v", err)
	}

	if rs.Rules[0].ID != "ISBP-C2-CURRENCY" {
		t.Errorf("Rule.ID = %q, want %q", rs.Rules[0].ID, "ISBP-C2-CURRENCY")
	}
}

// TestParseAndValidateBytes_Invalid tests that lint findings surface
func TestParseAndValidateBytes_Invalid(t *testing.T) {
	bad := []byte(`
- id: R1
  conditions:
    - field: lc.amount.value
      operator: sounds_like
`)
	if _, err := ParseAndValidateBytes(bad, "memory://bad"); err == nil {
		t.Fatal("ParseAndValidateBytes() should reject an unknown operator")
	}
}

// BenchmarkParseAndValidateBytes benchmarks parsing + validation
func BenchmarkParseAndValidateBytes(b *testing.B) {
	data := []byte(sampleRulebook)
	for i := 0; i < b.N; i++ {
		if _, err := ParseAndValidateBytes(data, "memory://isbp"); err != nil {
			b.Fatal(err)
		}
	}
}
