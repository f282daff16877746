package ast

import "time"

// Rule represents a single compliance check in the AST.
// A rule resolves document fields, evaluates its conditions in order, and
// triggers its action when any condition fails. Rules are independent of one
// another; a rulebook defines no evaluation ordering between them.
type Rule struct {
	ID          string      // Unique rule id within one loaded catalog
	Name        string      // Human-readable rule name
	Category    Category    // Compliance regime the rule belongs to
	Severity    Severity    // Severity of the issue the rule reports
	Description string      // Human-readable description
	Conditions  []Condition // AND-ed conditions, declaration order preserved
	Action      *Action     // Issue to emit on trigger (optional)
	Enabled     bool        // Whether the rule is active (default: true)
	Version     string      // Rule revision tag

	// Compliance cross-references, free text (e.g. "UCP600 Art. 14(d)").
	UCPReference  string
	ISBPReference string

	// Document associations. Source documents are where the checked values
	// originate; target documents are what they are compared against.
	SourceDocuments []string
	TargetDocuments []string

	// RequiresFields gates evaluation: when any listed path resolves to
	// null or empty in the context the rule is skipped, never failed.
	RequiresFields []string
	OptionalFields []string

	// Override policy for the review workflow.
	CanOverride              bool
	OverrideRequiresApproval bool

	// Audit metadata, informational only.
	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy string

	Location Location // Source location
}

// IsEnabled returns true if the rule is enabled.
// Rules are enabled by default unless explicitly disabled.
func (r *Rule) IsEnabled() bool {
	return r.Enabled
}

// HasConditions returns true if the rule has at least one condition.
// A rule without conditions always passes.
func (r *Rule) HasConditions() bool {
	return len(r.Conditions) > 0
}

// HasAction returns true if the rule emits an issue when triggered.
func (r *Rule) HasAction() bool {
	return r.Action != nil
}

// DocumentTypes returns the union of the rule's source and target document
// type tags, first occurrence order, without duplicates.
func (r *Rule) DocumentTypes() []string {
	seen := make(map[string]struct{}, len(r.SourceDocuments)+len(r.TargetDocuments))
	var types []string
	for _, t := range r.SourceDocuments {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			types = append(types, t)
		}
	}
	for _, t := range r.TargetDocuments {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			types = append(types, t)
		}
	}
	return types
}
