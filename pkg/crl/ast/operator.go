package ast

import "strings"

// Operator identifies one comparison in the closed condition vocabulary.
//
// The vocabulary is deliberately bounded: rules stay auditable because every
// operator has a fixed, documented semantic and there is no escape hatch
// into arbitrary expressions. Operators listed under "declared but not
// evaluated" are accepted by the parser so existing rulebooks keep loading;
// the executor resolves them to false through its unknown-operator fallback.
type Operator string

const (
	// Presence checks. Exists treats empty strings and empty lists as absent;
	// the null checks do not.
	OpExists    Operator = "exists"
	OpNotExists Operator = "not_exists"
	OpIsNull    Operator = "is_null"
	OpIsNotNull Operator = "is_not_null"

	// Equality and string comparisons.
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpNotContains Operator = "not_contains"
	OpStartsWith  Operator = "starts_with"
	OpEndsWith    Operator = "ends_with"
	OpMatches     Operator = "matches" // regular expression search

	// Numeric comparisons.
	OpGT  Operator = "gt"
	OpGTE Operator = "gte"
	OpLT  Operator = "lt"
	OpLTE Operator = "lte"

	// Fuzzy and cross-field comparisons.
	OpSimilarTo    Operator = "similar_to"
	OpMatchesField Operator = "matches_field"

	// Membership.
	OpIn    Operator = "in"
	OpNotIn Operator = "not_in"

	// Declared but not evaluated. Part of the rulebook vocabulary for
	// forward compatibility; conditions using them evaluate false.
	OpBetween    Operator = "between"
	OpBefore     Operator = "before"
	OpAfter      Operator = "after"
	OpWithinDays Operator = "within_days"
	OpAllOf      Operator = "all_of"
	OpAnyOf      Operator = "any_of"
	OpNoneOf     Operator = "none_of"
)

// Operators lists the full closed operator vocabulary.
func Operators() []Operator {
	return []Operator{
		OpExists, OpNotExists, OpIsNull, OpIsNotNull,
		OpEquals, OpNotEquals, OpContains, OpNotContains,
		OpStartsWith, OpEndsWith, OpMatches,
		OpGT, OpGTE, OpLT, OpLTE,
		OpSimilarTo, OpMatchesField,
		OpIn, OpNotIn,
		OpBetween, OpBefore, OpAfter, OpWithinDays,
		OpAllOf, OpAnyOf, OpNoneOf,
	}
}

// ParseOperator normalizes a free-text operator string and reports whether
// it belongs to the closed vocabulary. The normalized form is returned even
// on a miss so diagnostics can show what was actually written.
func ParseOperator(s string) (Operator, bool) {
	op := Operator(strings.ToLower(strings.TrimSpace(s)))
	return op, op.IsValid()
}

// IsValid returns true if op belongs to the closed operator vocabulary.
func (op Operator) IsValid() bool {
	for _, known := range Operators() {
		if op == known {
			return true
		}
	}
	return false
}

// String returns the wire form of the operator.
func (op Operator) String() string {
	return string(op)
}
