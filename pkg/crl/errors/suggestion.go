package errors

import (
	"fmt"
	"strings"

	"mercator-hq/saturn/pkg/crl/ast"
)

// SuggestOperator suggests the closest operator from the closed vocabulary
// when a rulebook uses an unknown operator string.
func SuggestOperator(unknown string) string {
	ops := ast.Operators()
	candidates := make([]string, len(ops))
	for i, op := range ops {
		candidates[i] = string(op)
	}
	return suggestClosest(strings.ToLower(unknown), candidates, "operator")
}

// SuggestCategory suggests the closest category value for an unknown
// category string. Unknown categories are not errors (they coerce to
// CUSTOM), so this backs a lint warning.
func SuggestCategory(unknown string) string {
	cats := ast.Categories()
	candidates := make([]string, len(cats))
	for i, c := range cats {
		candidates[i] = string(c)
	}
	return suggestClosest(strings.ToUpper(unknown), candidates, "category")
}

// SuggestSeverity suggests the closest severity value for an unknown
// severity string.
func SuggestSeverity(unknown string) string {
	sevs := ast.Severities()
	candidates := make([]string, len(sevs))
	for i, s := range sevs {
		candidates[i] = string(s)
	}
	return suggestClosest(strings.ToUpper(unknown), candidates, "severity")
}

// SuggestMissingField suggests adding a required rule field.
func SuggestMissingField(fieldName string, exampleValue string) string {
	if exampleValue != "" {
		return fmt.Sprintf("Add '%s: %s' to the rule", fieldName, exampleValue)
	}
	return fmt.Sprintf("Add '%s' field to the rule", fieldName)
}

// suggestClosest finds the candidate nearest to unknown by edit distance.
// Distant misses fall back to listing valid values.
func suggestClosest(unknown string, candidates []string, kind string) string {
	if len(candidates) == 0 {
		return ""
	}

	minDistance := 1000
	var bestMatch string
	for _, cand := range candidates {
		dist := levenshteinDistance(unknown, cand)
		if dist < minDistance {
			minDistance = dist
			bestMatch = cand
		}
	}

	// Only suggest if the distance is reasonable (< 5 edits)
	if minDistance < 5 {
		return fmt.Sprintf("Did you mean '%s'?", bestMatch)
	}

	if len(candidates) > 8 {
		return fmt.Sprintf("Valid %s values include: %s, ...", kind, strings.Join(candidates[:8], ", "))
	}
	return fmt.Sprintf("Valid %s values: %s", kind, strings.Join(candidates, ", "))
}

// levenshteinDistance computes the Levenshtein distance between two strings.
// This is used for finding similar enum values for suggestions.
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	len1 := len(s1)
	len2 := len(s2)

	matrix := make([][]int, len1+1)
	for i := range matrix {
		matrix[i] = make([]int, len2+1)
	}

	for i := 0; i <= len1; i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len2; j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len1; i++ {
		for j := 1; j <= len2; j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}

			matrix[i][j] = minOf(
				matrix[i-1][j]+1,      // Deletion
				matrix[i][j-1]+1,      // Insertion
				matrix[i-1][j-1]+cost, // Substitution
			)
		}
	}

	return matrix[len1][len2]
}

// minOf returns the minimum of three integers.
func minOf(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
