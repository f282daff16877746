package engine

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"mercator-hq/saturn/pkg/crl/ast"
)

// evalFunc evaluates one operator against resolved operands. actual is the
// field value, expected the effective comparison value, both already
// normalized. A returned error marks the condition failed with the error
// retained; it never propagates further.
type evalFunc func(e *Engine, cond *ast.Condition, actual, expected any) (bool, error)

// evaluators is the closed dispatch table from operator to evaluation
// function. Operators outside this table evaluate false through
// evaluateOperator's default, which keeps the unknown-operator contract in
// one place. That default also covers the declared-but-unimplemented part
// of the vocabulary (between, before, after, within_days, all_of, any_of,
// none_of).
var evaluators = map[ast.Operator]evalFunc{
	ast.OpExists:    evalExists,
	ast.OpNotExists: evalNotExists,
	ast.OpIsNull:    evalIsNull,
	ast.OpIsNotNull: evalIsNotNull,

	ast.OpEquals:      evalEquals,
	ast.OpNotEquals:   evalNotEquals,
	ast.OpContains:    evalContains,
	ast.OpNotContains: evalNotContains,
	ast.OpStartsWith:  evalStartsWith,
	ast.OpEndsWith:    evalEndsWith,
	ast.OpMatches:     evalMatches,

	ast.OpGT:  evalGT,
	ast.OpGTE: evalGTE,
	ast.OpLT:  evalLT,
	ast.OpLTE: evalLTE,

	ast.OpSimilarTo: evalSimilarTo,

	// matches_field documents intent in rulebooks; it evaluates exactly
	// like equals against the compare field.
	ast.OpMatchesField: evalEquals,

	ast.OpIn:    evalIn,
	ast.OpNotIn: evalNotIn,
}

// evaluateOperator dispatches a condition to its operator's evaluation
// function. Any operator without an entry in the table evaluates false.
func (e *Engine) evaluateOperator(cond *ast.Condition, actual, expected any) (bool, error) {
	eval, ok := evaluators[cond.Operator]
	if !ok {
		e.logger.Warn("operator has no evaluation, condition is false",
			"operator", cond.Operator.String(),
			"field", cond.Field,
		)
		return false, nil
	}
	return eval(e, cond, actual, expected)
}

// evalExists is true iff the field resolves to a non-null value that is
// not an empty string or empty collection.
func evalExists(_ *Engine, _ *ast.Condition, actual, _ any) (bool, error) {
	return !isEmpty(actual), nil
}

func evalNotExists(_ *Engine, _ *ast.Condition, actual, _ any) (bool, error) {
	return isEmpty(actual), nil
}

// evalIsNull is a strict null check. Empty strings and empty collections
// are values, not null.
func evalIsNull(_ *Engine, _ *ast.Condition, actual, _ any) (bool, error) {
	return isNull(actual), nil
}

func evalIsNotNull(_ *Engine, _ *ast.Condition, actual, _ any) (bool, error) {
	return !isNull(actual), nil
}

func evalEquals(_ *Engine, cond *ast.Condition, actual, expected any) (bool, error) {
	return valuesEqual(actual, expected, cond.CaseSensitive), nil
}

func evalNotEquals(_ *Engine, cond *ast.Condition, actual, expected any) (bool, error) {
	return !valuesEqual(actual, expected, cond.CaseSensitive), nil
}

func evalContains(_ *Engine, cond *ast.Condition, actual, expected any) (bool, error) {
	s, substr, ok := stringOperands(actual, expected, cond.CaseSensitive)
	if !ok {
		return false, nil
	}
	return strings.Contains(s, substr), nil
}

// evalNotContains is the exact inverse of contains: a null operand makes
// contains false, so not_contains holds.
func evalNotContains(e *Engine, cond *ast.Condition, actual, expected any) (bool, error) {
	matched, err := evalContains(e, cond, actual, expected)
	return !matched, err
}

func evalStartsWith(_ *Engine, cond *ast.Condition, actual, expected any) (bool, error) {
	s, prefix, ok := stringOperands(actual, expected, cond.CaseSensitive)
	if !ok {
		return false, nil
	}
	return strings.HasPrefix(s, prefix), nil
}

func evalEndsWith(_ *Engine, cond *ast.Condition, actual, expected any) (bool, error) {
	s, suffix, ok := stringOperands(actual, expected, cond.CaseSensitive)
	if !ok {
		return false, nil
	}
	return strings.HasSuffix(s, suffix), nil
}

// evalMatches compiles the expected operand as a regular expression and
// searches it unanchored against the string form of the field. Matching is
// case-insensitive unless the condition is case-sensitive. Patterns are
// compiled with Go's linear-time regexp and capped in length, so a
// pathological pattern from a rule store cannot stall evaluation; a
// compile failure fails the condition with the error retained.
func evalMatches(e *Engine, cond *ast.Condition, actual, expected any) (bool, error) {
	if isNull(expected) {
		return false, fmt.Errorf("matches requires a pattern value")
	}
	if isNull(actual) {
		return false, nil
	}

	pattern := stringify(expected)
	if max := e.config.MaxRegexLength; max > 0 && len(pattern) > max {
		return false, fmt.Errorf("pattern length %d exceeds limit %d", len(pattern), max)
	}
	if !cond.CaseSensitive {
		pattern = "(?i)" + pattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Errorf("invalid pattern %q: %w", stringify(expected), err)
	}
	return re.MatchString(stringify(actual)), nil
}

func evalGT(_ *Engine, _ *ast.Condition, actual, expected any) (bool, error) {
	return parseAmount(actual) > parseAmount(expected), nil
}

func evalGTE(_ *Engine, _ *ast.Condition, actual, expected any) (bool, error) {
	return parseAmount(actual) >= parseAmount(expected), nil
}

func evalLT(_ *Engine, _ *ast.Condition, actual, expected any) (bool, error) {
	return parseAmount(actual) < parseAmount(expected), nil
}

func evalLTE(_ *Engine, _ *ast.Condition, actual, expected any) (bool, error) {
	return parseAmount(actual) <= parseAmount(expected), nil
}

// evalSimilarTo scores the operands with the token-set similarity and
// passes when the score meets the condition's threshold, falling back to
// the engine-wide default threshold.
func evalSimilarTo(e *Engine, cond *ast.Condition, actual, expected any) (bool, error) {
	if isNull(actual) || isNull(expected) {
		return false, nil
	}
	score := Similarity(stringify(actual), stringify(expected))
	return score >= cond.ThresholdOr(e.config.DefaultSimilarityThreshold), nil
}

// evalIn tests membership of the field value in the expected sequence. An
// expected operand that is not sequence-shaped never matches.
func evalIn(_ *Engine, cond *ast.Condition, actual, expected any) (bool, error) {
	items, ok := sequenceItems(expected)
	if !ok {
		return false, nil
	}
	for _, item := range items {
		if valuesEqual(actual, item, cond.CaseSensitive) {
			return true, nil
		}
	}
	return false, nil
}

// evalNotIn is the exact inverse of in, so a non-sequence operand makes it
// always true.
func evalNotIn(e *Engine, cond *ast.Condition, actual, expected any) (bool, error) {
	matched, err := evalIn(e, cond, actual, expected)
	return !matched, err
}

// valuesEqual compares two resolved values. Numbers compare numerically
// across integer and float representations; strings compare
// case-insensitively unless caseSensitive is set; everything else falls
// back to deep equality. Two nulls are equal.
func valuesEqual(a, b any, caseSensitive bool) bool {
	aNull, bNull := isNull(a), isNull(b)
	if aNull || bNull {
		return aNull && bNull
	}

	if af, ok := numericValue(a); ok {
		if bf, ok := numericValue(b); ok {
			return af == bf
		}
	}

	as, aIsString := a.(string)
	bs, bIsString := b.(string)
	if aIsString && bIsString {
		if caseSensitive {
			return as == bs
		}
		return strings.EqualFold(as, bs)
	}

	return reflect.DeepEqual(a, b)
}

// stringOperands renders both operands as strings for the substring
// operators, folding case unless the comparison is case-sensitive. ok is
// false when either side is null.
func stringOperands(actual, expected any, caseSensitive bool) (s, operand string, ok bool) {
	if isNull(actual) || isNull(expected) {
		return "", "", false
	}
	s = stringify(actual)
	operand = stringify(expected)
	if !caseSensitive {
		s = strings.ToLower(s)
		operand = strings.ToLower(operand)
	}
	return s, operand, true
}

// numericValue converts any Go numeric type to float64. Strings are not
// parsed here: equality between a string and a number stays false.
func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// parseAmount coerces a resolved value to a number for the ordering
// operators. Document amounts arrive as strings with thousands separators
// ("1,250,000.00"), so separators are stripped before parsing; anything
// that still fails to parse counts as zero rather than erroring.
func parseAmount(v any) float64 {
	if f, ok := numericValue(v); ok {
		return f
	}
	s := strings.ReplaceAll(strings.TrimSpace(stringify(v)), ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// sequenceItems flattens a sequence-shaped operand into a slice. ok is
// false for non-sequence shapes; strings are not sequences here, substring
// checks belong to contains.
func sequenceItems(v any) ([]any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case []any:
		return t, true
	case []string:
		items := make([]any, len(t))
		for i, s := range t {
			items[i] = s
		}
		return items, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// stringify renders a resolved value for string operators, templates, and
// issues. Floats render without a trailing ".0" so whole-number amounts
// read naturally in reports.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}
