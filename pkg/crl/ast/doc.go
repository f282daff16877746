// Package ast provides the Abstract Syntax Tree (AST) definitions for the
// Compliance Rule Language (CRL).
//
// The AST represents the parsed structure of a compliance rulebook, enabling
// validation, inspection, and evaluation. All AST nodes preserve source
// location information for precise error reporting.
//
// # Core Types
//
// RuleSet: Named, versioned grouping of related rules sharing metadata
//
// Rule: Individual compliance check with conditions and an optional action
//
// Condition: One comparison against a resolved document field
//
// Action: Issue description emitted when a rule triggers
//
// Category, Severity, Operator: Closed enumerations with fixed coercion
// defaults for malformed input
//
// Location: Source location (file, line, column)
//
// # Basic Usage
//
// Parse a rulebook and traverse the AST:
//
//	rules, err := parser.ParseFile("rules/ucp600.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, rule := range rules {
//	    fmt.Println("Rule:", rule.ID, rule.Severity)
//	    for _, cond := range rule.Conditions {
//	        fmt.Println("  Condition:", cond.Field, cond.Operator)
//	    }
//	}
//
// # Immutability
//
// AST nodes are constructed by the parser (or the record translator) at load
// time and must be treated as immutable afterwards. The executor never
// mutates a rule, a condition, or the evaluation context.
package ast
