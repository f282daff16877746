// Package parser converts CRL rulebook YAML into AST values.
//
// A rulebook file takes one of two shapes: a flat list of rules, or a
// ruleset wrapper carrying grouping metadata plus its member rules. The
// parser accepts both, accumulates structural problems into an ErrorList
// instead of stopping at the first, and attaches source locations to every
// rule for diagnostics.
//
// Malformed category and severity strings never reject a rule; they coerce
// to the documented defaults (CUSTOM, MINOR). Unknown operator strings
// survive parsing so the validator can report them with a suggestion; the
// executor evaluates them to false.
//
// The package also provides the inverse direction: MarshalRules and
// MarshalRuleSet emit rulebook YAML that re-parses to identical values,
// which backs the loader's bootstrap rulebook and rule export tooling.
package parser
