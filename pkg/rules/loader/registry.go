package loader

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"mercator-hq/saturn/pkg/crl/ast"
)

// Registry is the thread-safe in-memory rule catalog.
// Reloads replace the whole catalog atomically; readers always see either
// the previous complete catalog or the next one. Listing preserves the
// order rules were loaded in, so batch execution order is stable across
// identical catalogs.
type Registry struct {
	mu       sync.RWMutex
	rules    map[string]ast.Rule
	order    []string
	rulesets map[string]*ast.RuleSet
	setOrder []string
	version  string
	loadTime time.Time
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rules:    make(map[string]ast.Rule),
		rulesets: make(map[string]*ast.RuleSet),
		loadTime: time.Now(),
	}
}

// Replace atomically replaces the catalog with a new rule list and ruleset
// list. Rules must carry unique, non-empty ids; the manager's merge step
// guarantees that before calling Replace.
func (r *Registry) Replace(rules []ast.Rule, sets []*ast.RuleSet) error {
	for i := range rules {
		if rules[i].ID == "" {
			return &RegistryError{
				Operation: "replace",
				Message:   "rule id cannot be empty",
			}
		}
	}
	for _, rs := range sets {
		if rs == nil {
			return &RegistryError{
				Operation: "replace",
				Message:   "ruleset cannot be nil",
			}
		}
		if rs.ID == "" {
			return &RegistryError{
				Operation: "replace",
				Message:   "ruleset id cannot be empty",
			}
		}
	}

	newRules := make(map[string]ast.Rule, len(rules))
	newOrder := make([]string, 0, len(rules))
	for i := range rules {
		id := rules[i].ID
		if _, seen := newRules[id]; !seen {
			newOrder = append(newOrder, id)
		}
		newRules[id] = rules[i]
	}

	newSets := make(map[string]*ast.RuleSet, len(sets))
	newSetOrder := make([]string, 0, len(sets))
	for _, rs := range sets {
		if _, seen := newSets[rs.ID]; !seen {
			newSetOrder = append(newSetOrder, rs.ID)
		}
		newSets[rs.ID] = rs
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = newRules
	r.order = newOrder
	r.rulesets = newSets
	r.setOrder = newSetOrder
	r.loadTime = time.Now()
	r.updateVersion()

	return nil
}

// Rule retrieves a rule by id.
func (r *Registry) Rule(id string) (ast.Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rule, ok := r.rules[id]
	return rule, ok
}

// Rules returns all rules in catalog order.
// The returned slice is a copy and will not be modified by the registry.
func (r *Registry) Rules() []ast.Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rules := make([]ast.Rule, 0, len(r.order))
	for _, id := range r.order {
		rules = append(rules, r.rules[id])
	}
	return rules
}

// RuleSet retrieves a ruleset by id.
func (r *Registry) RuleSet(id string) (*ast.RuleSet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rs, ok := r.rulesets[id]
	return rs, ok
}

// RuleSets returns all rulesets in catalog order.
func (r *Registry) RuleSets() []*ast.RuleSet {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sets := make([]*ast.RuleSet, 0, len(r.setOrder))
	for _, id := range r.setOrder {
		sets = append(sets, r.rulesets[id])
	}
	return sets
}

// Count returns the number of rules in the catalog.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rules)
}

// Version returns the current catalog version.
// The version changes whenever the catalog content changes.
func (r *Registry) Version() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.version
}

// LoadTime returns when the catalog was last replaced.
func (r *Registry) LoadTime() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.loadTime
}

// Stats returns counts describing the current catalog. Origin counts are
// filled in by the manager, which knows where each rule came from.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Stats{
		TotalRules: len(r.rules),
		RuleSets:   len(r.rulesets),
		ByCategory: make(map[ast.Category]int),
		BySeverity: make(map[ast.Severity]int),
		Version:    r.version,
		LoadTime:   r.loadTime,
	}

	for _, id := range r.order {
		rule := r.rules[id]
		stats.ByCategory[rule.Category]++
		stats.BySeverity[rule.Severity]++
		if rule.IsEnabled() {
			stats.EnabledRules++
		}
	}

	return stats
}

// updateVersion derives the catalog version from catalog content.
// This must be called with the write lock held.
func (r *Registry) updateVersion() {
	h := sha256.New()
	for _, id := range r.order {
		rule := r.rules[id]
		h.Write([]byte(rule.ID))
		h.Write([]byte(rule.Version))
		h.Write([]byte(rule.Location.File))
	}
	for _, id := range r.setOrder {
		h.Write([]byte(id))
	}
	r.version = fmt.Sprintf("%x", h.Sum(nil))[:16]
}

// Stats contains counts describing a loaded catalog.
type Stats struct {
	// TotalRules is the number of rules in the catalog.
	TotalRules int

	// EnabledRules is the number of enabled rules.
	EnabledRules int

	// RuleSets is the number of registered rulesets.
	RuleSets int

	// ByCategory counts rules per category.
	ByCategory map[ast.Category]int

	// BySeverity counts rules per severity.
	BySeverity map[ast.Severity]int

	// FileRules and StoreRules count rules by origin in the last load.
	FileRules  int
	StoreRules int

	// Version is the catalog version the stats describe.
	Version string

	// LoadTime is when the catalog was loaded.
	LoadTime time.Time
}
