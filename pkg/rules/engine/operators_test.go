package engine

import (
	"strings"
	"testing"

	"mercator-hq/saturn/pkg/crl/ast"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(DefaultConfig(), opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func floatPtr(v float64) *float64 { return &v }

// evalOp evaluates one operator in isolation.
func evalOp(t *testing.T, e *Engine, cond ast.Condition, actual, expected any) (bool, error) {
	t.Helper()
	return e.evaluateOperator(&cond, actual, expected)
}

func TestOperator_Exists(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name   string
		op     ast.Operator
		actual any
		want   bool
	}{
		{name: "value exists", op: ast.OpExists, actual: "LC-2024-001", want: true},
		{name: "zero exists", op: ast.OpExists, actual: 0.0, want: true},
		{name: "false exists", op: ast.OpExists, actual: false, want: true},
		{name: "nil does not exist", op: ast.OpExists, actual: nil, want: false},
		{name: "empty string does not exist", op: ast.OpExists, actual: "", want: false},
		{name: "empty list does not exist", op: ast.OpExists, actual: []any{}, want: false},
		{name: "non-empty list exists", op: ast.OpExists, actual: []any{"x"}, want: true},

		{name: "not_exists inverts nil", op: ast.OpNotExists, actual: nil, want: true},
		{name: "not_exists inverts empty string", op: ast.OpNotExists, actual: "", want: true},
		{name: "not_exists inverts empty list", op: ast.OpNotExists, actual: []any{}, want: true},
		{name: "not_exists inverts value", op: ast.OpNotExists, actual: "x", want: false},

		{name: "is_null on nil", op: ast.OpIsNull, actual: nil, want: true},
		{name: "is_null on empty string", op: ast.OpIsNull, actual: "", want: false},
		{name: "is_null on empty list", op: ast.OpIsNull, actual: []any{}, want: false},
		{name: "is_not_null on empty string", op: ast.OpIsNotNull, actual: "", want: true},
		{name: "is_not_null on nil", op: ast.OpIsNotNull, actual: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evalOp(t, e, ast.Condition{Field: "f", Operator: tt.op}, tt.actual, nil)
			if err != nil {
				t.Fatalf("evaluateOperator() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("%s(%#v) = %v, want %v", tt.op, tt.actual, got, tt.want)
			}
		})
	}
}

func TestOperator_Equals(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name          string
		actual        any
		expected      any
		caseSensitive bool
		want          bool
	}{
		{name: "equal strings", actual: "USD", expected: "USD", want: true},
		{name: "case folded by default", actual: "usd", expected: "USD", want: true},
		{name: "case sensitive mismatch", actual: "usd", expected: "USD", caseSensitive: true, want: false},
		{name: "different strings", actual: "USD", expected: "EUR", want: false},
		{name: "int equals float", actual: 100, expected: 100.0, want: true},
		{name: "float equals float", actual: 100.5, expected: 100.5, want: true},
		{name: "numbers unequal", actual: 100.0, expected: 100.5, want: false},
		{name: "numeric string is not a number", actual: "100", expected: 100.0, want: false},
		{name: "both nil equal", actual: nil, expected: nil, want: true},
		{name: "one nil unequal", actual: nil, expected: "USD", want: false},
		{name: "bools", actual: true, expected: true, want: true},
		{name: "slices deep equal", actual: []any{"a", "b"}, expected: []any{"a", "b"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond := ast.Condition{Field: "f", Operator: ast.OpEquals, CaseSensitive: tt.caseSensitive}
			got, err := evalOp(t, e, cond, tt.actual, tt.expected)
			if err != nil {
				t.Fatalf("evaluateOperator() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("equals(%#v, %#v) = %v, want %v", tt.actual, tt.expected, got, tt.want)
			}

			cond.Operator = ast.OpNotEquals
			inverted, err := evalOp(t, e, cond, tt.actual, tt.expected)
			if err != nil {
				t.Fatalf("evaluateOperator() error = %v", err)
			}
			if inverted != !tt.want {
				t.Errorf("not_equals(%#v, %#v) = %v, want %v", tt.actual, tt.expected, inverted, !tt.want)
			}
		})
	}
}

func TestOperator_MatchesField(t *testing.T) {
	e := newTestEngine(t)

	cond := ast.Condition{Field: "f", Operator: ast.OpMatchesField, CompareField: "g"}
	got, err := evalOp(t, e, cond, "ACME Trading", "acme trading")
	if err != nil {
		t.Fatalf("evaluateOperator() error = %v", err)
	}
	if !got {
		t.Errorf("matches_field = false, want true (equals semantics)")
	}
}

func TestOperator_StringOps(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name          string
		op            ast.Operator
		actual        any
		expected      any
		caseSensitive bool
		want          bool
	}{
		{name: "contains substring", op: ast.OpContains, actual: "45,000 MT of wheat", expected: "wheat", want: true},
		{name: "contains folds case", op: ast.OpContains, actual: "Wheat Grade A", expected: "wheat", want: true},
		{name: "contains case sensitive", op: ast.OpContains, actual: "Wheat Grade A", expected: "wheat", caseSensitive: true, want: false},
		{name: "contains missing substring", op: ast.OpContains, actual: "crude oil", expected: "wheat", want: false},
		{name: "contains null actual", op: ast.OpContains, actual: nil, expected: "wheat", want: false},
		{name: "contains null operand", op: ast.OpContains, actual: "wheat", expected: nil, want: false},
		{name: "contains number in string", op: ast.OpContains, actual: "seal 45231", expected: 45231, want: true},

		{name: "not_contains inverts match", op: ast.OpNotContains, actual: "crude oil", expected: "wheat", want: true},
		{name: "not_contains inverts hit", op: ast.OpNotContains, actual: "soft wheat", expected: "wheat", want: false},
		{name: "not_contains null actual", op: ast.OpNotContains, actual: nil, expected: "wheat", want: true},

		{name: "starts_with prefix", op: ast.OpStartsWith, actual: "LC-2024-001", expected: "lc-", want: true},
		{name: "starts_with wrong prefix", op: ast.OpStartsWith, actual: "INV-2024-001", expected: "LC-", want: false},
		{name: "starts_with null actual", op: ast.OpStartsWith, actual: nil, expected: "LC-", want: false},

		{name: "ends_with suffix", op: ast.OpEndsWith, actual: "ACME Trading Co Ltd", expected: "LTD", want: true},
		{name: "ends_with wrong suffix", op: ast.OpEndsWith, actual: "ACME Trading Co Ltd", expected: "Inc", want: false},
		{name: "ends_with null operand", op: ast.OpEndsWith, actual: "ACME", expected: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond := ast.Condition{Field: "f", Operator: tt.op, CaseSensitive: tt.caseSensitive}
			got, err := evalOp(t, e, cond, tt.actual, tt.expected)
			if err != nil {
				t.Fatalf("evaluateOperator() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("%s(%#v, %#v) = %v, want %v", tt.op, tt.actual, tt.expected, got, tt.want)
			}
		})
	}
}

func TestOperator_Matches(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name          string
		actual        any
		expected      any
		caseSensitive bool
		want          bool
		wantErr       bool
	}{
		{name: "unanchored search", actual: "shipped on board 2024-03-15", expected: `\d{4}-\d{2}-\d{2}`, want: true},
		{name: "case insensitive by default", actual: "CLEAN ON BOARD", expected: "clean on board", want: true},
		{name: "case sensitive", actual: "CLEAN ON BOARD", expected: "clean on board", caseSensitive: true, want: false},
		{name: "no match", actual: "freight collect", expected: "prepaid", want: false},
		{name: "number stringified before match", actual: 120000.0, expected: `^\d+$`, want: true},
		{name: "null actual", actual: nil, expected: "board", want: false},
		{name: "malformed pattern", actual: "anything", expected: "([", wantErr: true},
		{name: "null pattern", actual: "anything", expected: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond := ast.Condition{Field: "f", Operator: ast.OpMatches, CaseSensitive: tt.caseSensitive}
			got, err := evalOp(t, e, cond, tt.actual, tt.expected)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("evaluateOperator() error = nil, want error")
				}
				if got {
					t.Errorf("matches = true on error, want false")
				}
				return
			}
			if err != nil {
				t.Fatalf("evaluateOperator() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("matches(%#v, %#v) = %v, want %v", tt.actual, tt.expected, got, tt.want)
			}
		})
	}
}

func TestOperator_Matches_PatternLengthCap(t *testing.T) {
	e := newTestEngine(t)

	pattern := strings.Repeat("a", e.config.MaxRegexLength+1)
	cond := ast.Condition{Field: "f", Operator: ast.OpMatches}
	got, err := evalOp(t, e, cond, "aaa", pattern)
	if err == nil {
		t.Fatalf("evaluateOperator() error = nil, want pattern length error")
	}
	if got {
		t.Errorf("matches = true for oversized pattern, want false")
	}
}

func TestOperator_Numeric(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name     string
		op       ast.Operator
		actual   any
		expected any
		want     bool
	}{
		{name: "gt numbers", op: ast.OpGT, actual: 120000.0, expected: 105000.0, want: true},
		{name: "gt equal is false", op: ast.OpGT, actual: 100.0, expected: 100.0, want: false},
		{name: "gte equal", op: ast.OpGTE, actual: 100.0, expected: 100.0, want: true},
		{name: "lt", op: ast.OpLT, actual: 100500.0, expected: 105000.0, want: true},
		{name: "lte equal", op: ast.OpLTE, actual: 105000.0, expected: 105000.0, want: true},
		{name: "lte above limit", op: ast.OpLTE, actual: 120000.0, expected: 105000.0, want: false},
		{name: "thousands separators stripped", op: ast.OpGT, actual: "1,250,000.00", expected: "1,000,000", want: true},
		{name: "string versus number", op: ast.OpLTE, actual: "100500", expected: 105000.0, want: true},
		{name: "unparseable counts as zero", op: ast.OpLT, actual: "on request", expected: 1.0, want: true},
		{name: "unparseable on both sides", op: ast.OpGT, actual: "n/a", expected: "tbd", want: false},
		{name: "nil counts as zero", op: ast.OpGTE, actual: nil, expected: 0.0, want: true},
		{name: "int actual", op: ast.OpGT, actual: 200, expected: 150, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond := ast.Condition{Field: "f", Operator: tt.op}
			got, err := evalOp(t, e, cond, tt.actual, tt.expected)
			if err != nil {
				t.Fatalf("evaluateOperator() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("%s(%#v, %#v) = %v, want %v", tt.op, tt.actual, tt.expected, got, tt.want)
			}
		})
	}
}

func TestOperator_SimilarTo(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name      string
		actual    any
		expected  any
		threshold *float64
		want      bool
	}{
		{
			name:     "identical passes default threshold",
			actual:   "ACME Trading Co Ltd",
			expected: "ACME Trading Co Ltd",
			want:     true,
		},
		{
			name:     "third overlap fails default threshold",
			actual:   "ACME Trading Co Ltd",
			expected: "Acme Trading Company Limited",
			want:     false,
		},
		{
			name:      "third overlap passes lowered threshold",
			actual:    "ACME Trading Co Ltd",
			expected:  "Acme Trading Company Limited",
			threshold: floatPtr(0.3),
			want:      true,
		},
		{
			name:      "exact threshold boundary",
			actual:    "steel coils",
			expected:  "steel coils grade b",
			threshold: floatPtr(0.5),
			want:      true,
		},
		{
			name:     "null actual",
			actual:   nil,
			expected: "ACME",
			want:     false,
		},
		{
			name:     "null operand",
			actual:   "ACME",
			expected: nil,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond := ast.Condition{Field: "f", Operator: ast.OpSimilarTo, Threshold: tt.threshold}
			got, err := evalOp(t, e, cond, tt.actual, tt.expected)
			if err != nil {
				t.Fatalf("evaluateOperator() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("similar_to(%#v, %#v) = %v, want %v", tt.actual, tt.expected, got, tt.want)
			}
		})
	}
}

func TestOperator_Membership(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name     string
		op       ast.Operator
		actual   any
		expected any
		want     bool
	}{
		{name: "in sequence", op: ast.OpIn, actual: "USD", expected: []any{"USD", "EUR", "GBP"}, want: true},
		{name: "in folds case", op: ast.OpIn, actual: "usd", expected: []any{"USD", "EUR"}, want: true},
		{name: "not in sequence", op: ast.OpIn, actual: "JPY", expected: []any{"USD", "EUR"}, want: false},
		{name: "in string slice", op: ast.OpIn, actual: "CIF", expected: []string{"FOB", "CIF", "CFR"}, want: true},
		{name: "in numeric sequence", op: ast.OpIn, actual: 30, expected: []any{30.0, 60.0, 90.0}, want: true},
		{name: "in non-sequence operand", op: ast.OpIn, actual: "USD", expected: "USD", want: false},
		{name: "in nil operand", op: ast.OpIn, actual: "USD", expected: nil, want: false},
		{name: "in map operand", op: ast.OpIn, actual: "USD", expected: map[string]any{"USD": true}, want: false},

		{name: "not_in misses", op: ast.OpNotIn, actual: "JPY", expected: []any{"USD", "EUR"}, want: true},
		{name: "not_in hits", op: ast.OpNotIn, actual: "USD", expected: []any{"USD", "EUR"}, want: false},
		{name: "not_in non-sequence operand", op: ast.OpNotIn, actual: "USD", expected: "USD", want: true},
		{name: "not_in nil operand", op: ast.OpNotIn, actual: "USD", expected: nil, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond := ast.Condition{Field: "f", Operator: tt.op}
			got, err := evalOp(t, e, cond, tt.actual, tt.expected)
			if err != nil {
				t.Fatalf("evaluateOperator() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("%s(%#v, %#v) = %v, want %v", tt.op, tt.actual, tt.expected, got, tt.want)
			}
		})
	}
}

// Operators declared in the vocabulary without an evaluation, and operator
// strings outside the vocabulary entirely, both evaluate false through the
// single dispatch default.
func TestOperator_UnknownFallback(t *testing.T) {
	e := newTestEngine(t)

	ops := []ast.Operator{
		ast.OpBetween,
		ast.OpBefore,
		ast.OpAfter,
		ast.OpWithinDays,
		ast.OpAllOf,
		ast.OpAnyOf,
		ast.OpNoneOf,
		ast.Operator("fuzzy_match"),
		ast.Operator(""),
	}

	for _, op := range ops {
		t.Run(string(op), func(t *testing.T) {
			cond := ast.Condition{Field: "f", Operator: op}
			got, err := evalOp(t, e, cond, "2024-03-15", "2024-01-01")
			if err != nil {
				t.Fatalf("evaluateOperator() error = %v", err)
			}
			if got {
				t.Errorf("%s = true, want false via unknown-operator fallback", op)
			}
		})
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "nil", value: nil, want: ""},
		{name: "string", value: "USD", want: "USD"},
		{name: "whole float", value: 120000.0, want: "120000"},
		{name: "fractional float", value: 105000.5, want: "105000.5"},
		{name: "int", value: 42, want: "42"},
		{name: "bool", value: true, want: "true"},
		{name: "operator implements Stringer", value: ast.OpEquals, want: "equals"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stringify(tt.value); got != tt.want {
				t.Errorf("stringify(%#v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  float64
	}{
		{name: "float", value: 105000.0, want: 105000},
		{name: "int", value: 42, want: 42},
		{name: "plain string", value: "100500", want: 100500},
		{name: "thousands separators", value: "1,250,000.00", want: 1250000},
		{name: "padded string", value: "  2,500  ", want: 2500},
		{name: "unparseable", value: "on request", want: 0},
		{name: "nil", value: nil, want: 0},
		{name: "empty string", value: "", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseAmount(tt.value); got != tt.want {
				t.Errorf("parseAmount(%#v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
