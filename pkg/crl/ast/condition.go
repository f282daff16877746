package ast

// Condition represents one comparison in a rule. All conditions in a rule
// are logically AND-ed; declaration order is preserved for diagnostics only
// and does not affect the outcome.
type Condition struct {
	Field         string   // Dotted path into the document context
	Operator      Operator // Comparison operator
	Value         any      // Literal comparison value (optional)
	CompareField  string   // Path of a second field to compare against (optional)
	Threshold     *float64 // Similarity threshold override for similar_to (optional)
	CaseSensitive bool     // String comparisons honor case (default: insensitive)
	Normalize     *bool    // Collapse whitespace and trim strings before comparing (default: true)
	Location      Location // Source location
}

// HasValue returns true if the condition carries a literal comparison value.
func (c *Condition) HasValue() bool {
	return c.Value != nil
}

// HasCompareField returns true if the condition compares against another
// resolved field rather than a literal value.
func (c *Condition) HasCompareField() bool {
	return c.CompareField != ""
}

// NormalizeEnabled reports whether operands should be whitespace-normalized
// before comparison. Unset means enabled.
func (c *Condition) NormalizeEnabled() bool {
	return c.Normalize == nil || *c.Normalize
}

// ThresholdOr returns the condition's similarity threshold, or def when the
// condition does not set one.
func (c *Condition) ThresholdOr(def float64) float64 {
	if c.Threshold != nil {
		return *c.Threshold
	}
	return def
}
