// Package crl provides parsing and validation for the Compliance Rule
// Language (CRL).
//
// CRL is a declarative YAML-based language for trade-finance document
// compliance checks. It lets documentary-credit specialists express
// examination rules - UCP 600 articles, ISBP practice points, cross-document
// consistency checks - without writing code.
//
// # Architecture
//
// The package is organized into subpackages:
//
// - ast: Abstract Syntax Tree definitions for parsed rulebooks
// - parser: YAML parsing, AST construction, and rulebook emission
// - validator: Rulebook validation (structural, semantic)
// - errors: Rich error types with location and suggestions
//
// # Basic Usage
//
// Parse and validate a rulebook:
//
//	rs, err := crl.ParseAndValidate("rules/ucp600-core.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Ruleset:", rs.ID)
//	fmt.Println("Rules:", rs.RuleCount())
//
// # Rulebook Structure
//
// A rulebook file is either a flat rule list:
//
//	- id: UCP600-18B-AMOUNT
//	  name: Invoice amount within credit tolerance
//	  category: UCP600
//	  severity: CRITICAL
//	  requires_fields: [lc.amount.value, invoice.amount]
//	  conditions:
//	    - field: invoice.amount
//	      operator: lte
//	      compare_field: invoice_amount_limit
//	  action:
//	    title: Invoice exceeds credit amount
//	    message: Invoice amount is above the available credit plus tolerance.
//
// or a ruleset wrapper:
//
//	id: ucp600-core
//	name: UCP 600 core checks
//	version: "2.1.0"
//	category: UCP600
//	ucp_version: UCP 600 (2007 Revision)
//	rules:
//	  - id: UCP600-18B-AMOUNT
//	    ...
//
// # Error Handling
//
// Parsing and validation return rich errors with location and suggestions:
//
//	if err := crl.Validate(rs); err != nil {
//	    if errList, ok := err.(*errors.ErrorList); ok {
//	        for _, e := range errList.Errors {
//	            fmt.Println(e.Error())
//	        }
//	    }
//	}
//
// Error format:
//
//	[semantic] Rule "UCP600-18B-AMOUNT": condition 0 uses unknown operator "lessthan"; it will always evaluate false
//	  --> rules/ucp600-core.yaml:12:5
//	  = suggestion: Did you mean 'lte'?
package crl
