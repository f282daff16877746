package ast

// RuleSet represents a named, versioned grouping of related rules.
// Grouping is pure metadata; membership does not change how a rule
// evaluates. A rulebook file either declares a flat rule list or a single
// ruleset wrapper carrying its member rules.
type RuleSet struct {
	ID          string   // Unique ruleset id within one loaded catalog
	Name        string   // Human-readable name
	Version     string   // Ruleset revision tag
	Description string   // Human-readable description
	Enabled     bool     // Whether the ruleset is active (default: true)
	Category    Category // Shared category hint for member rules (optional)
	UCPVersion  string   // Compliance-standard version tag (e.g. "UCP 600 2007")
	Rules       []Rule   // Member rules

	SourceFile string   // Path of the rulebook file the set came from
	Location   Location // Source location
}

// IsEnabled returns true if the ruleset is enabled.
func (rs *RuleSet) IsEnabled() bool {
	return rs.Enabled
}

// GetRule returns the member rule with the given id, or nil if not found.
func (rs *RuleSet) GetRule(id string) *Rule {
	for i := range rs.Rules {
		if rs.Rules[i].ID == id {
			return &rs.Rules[i]
		}
	}
	return nil
}

// EnabledRules returns the member rules that are enabled.
func (rs *RuleSet) EnabledRules() []Rule {
	var enabled []Rule
	for _, rule := range rs.Rules {
		if rule.IsEnabled() {
			enabled = append(enabled, rule)
		}
	}
	return enabled
}

// RuleCount returns the total number of member rules.
func (rs *RuleSet) RuleCount() int {
	return len(rs.Rules)
}
