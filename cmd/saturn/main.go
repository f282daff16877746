// Mercator Saturn is a compliance rule engine for trade-finance documents.
//
// It validates extracted document data (letters of credit, commercial
// invoices, bills of lading, ...) against a catalog of declarative
// compliance rules and reports structured discrepancies:
//   - CRL rulebook parsing and validation (UCP 600 / ISBP checks)
//   - Rule catalog assembly from files, a persisted store, and git
//   - Pure rule execution with similarity matching and issue generation
//   - Validation audit history with retention and export
//
// Usage:
//
//	# Validate rulebook files
//	saturn lint --file rulebooks/ucp600.yaml
//
//	# Inspect the loaded rule catalog
//	saturn rules list
//
//	# Check an extracted presentation against the catalog
//	saturn check --context presentation.json --lc LC-2024-001
//
//	# Run as a long-lived validator with hot rule reload
//	saturn watch
//
//	# Query the validation audit trail
//	saturn history query --time-range "2026-08-01T00:00:00Z/2026-08-22T00:00:00Z"
//
// For complete documentation, see: https://github.com/mercator-hq/saturn
package main

func main() {
	Execute()
}
