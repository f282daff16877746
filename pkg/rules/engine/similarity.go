package engine

import (
	"strings"
	"unicode"
)

// Similarity computes the token-set Jaccard similarity of two strings.
// Both inputs are split on non-word characters, lower-cased, and
// deduplicated into sets; the score is |intersection| / |union|. The score
// is symmetric and 1.0 for identical non-empty inputs; it is 0.0 whenever
// either token set is empty.
//
// Trade-finance names rarely match byte for byte across documents
// ("ACME Trading Co Ltd" vs "Acme Trading Company Limited"), so the
// similar_to operator compares token sets instead of edit distance.
func Similarity(a, b string) float64 {
	ta := tokenize(a)
	tb := tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0.0
	}

	intersection := 0
	for token := range ta {
		if _, ok := tb[token]; ok {
			intersection++
		}
	}
	union := len(ta) + len(tb) - intersection
	return float64(intersection) / float64(union)
}

// tokenize splits text into a set of lower-cased word tokens. Word
// characters are letters, digits, and underscores; everything else is a
// boundary.
func tokenize(s string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, token := range strings.FieldsFunc(strings.ToLower(s), isTokenBoundary) {
		tokens[token] = struct{}{}
	}
	return tokens
}

func isTokenBoundary(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
}

// NormalizeSpace collapses internal whitespace runs to single spaces and
// trims leading and trailing whitespace. Conditions apply it to string
// operands by default so OCR artifacts do not defeat exact comparisons.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
