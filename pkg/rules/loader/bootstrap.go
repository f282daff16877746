package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"mercator-hq/saturn/pkg/crl/ast"
	"mercator-hq/saturn/pkg/crl/parser"
)

// BootstrapFileName is the rulebook the loader writes on first start when
// the primary source directory holds no rules yet. The 00- prefix keeps it
// first in lexical load order.
const BootstrapFileName = "00-default-rules.yaml"

const bootstrapHeader = `# Baseline compliance rulebook, written on first start when no rulebook
# exists yet. Covers mandatory-field extraction checks and core
# cross-document consistency checks. Edit freely; the loader never
# overwrites an existing rulebook.
`

// Bootstrap writes the default rulebook into dir when dir holds no
// rulebook yet, creating dir if needed. It returns the written file path,
// or "" when bootstrapping was not needed.
func Bootstrap(dir string, config *Config, logger *slog.Logger) (string, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	fileInfo, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", &SourceError{
				Path:    dir,
				Message: "failed to create rulebook directory",
				Cause:   err,
			}
		}
	case err != nil:
		return "", &SourceError{
			Path:    dir,
			Message: "failed to access rulebook directory",
			Cause:   err,
		}
	case !fileInfo.IsDir():
		// A rulebook file configured directly is its own source
		return "", nil
	default:
		fl := NewFileLoader(config, parser.NewParser(), logger)
		existing, err := fl.collectRuleFiles(dir)
		if err != nil {
			return "", err
		}
		if len(existing) > 0 {
			return "", nil
		}
	}

	data, err := parser.MarshalRules(DefaultRules())
	if err != nil {
		return "", &SourceError{
			Path:    dir,
			Message: "failed to encode default rulebook",
			Cause:   err,
		}
	}
	data = append([]byte(bootstrapHeader), data...)

	path := filepath.Join(dir, BootstrapFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &SourceError{
			Path:    path,
			Message: "failed to write default rulebook",
			Cause:   err,
		}
	}

	logger.Info("Bootstrapped default rulebook",
		"path", path,
		"rules", len(DefaultRules()),
	)

	return path, nil
}

// DefaultRules returns the built-in baseline catalog: presence checks for
// the fields every documentary credit presentation must carry, and the
// cross-document consistency checks that catch the most common refusal
// grounds. The engine is never empty on first run.
func DefaultRules() []ast.Rule {
	f := func(v float64) *float64 { return &v }

	return []ast.Rule{
		// Mandatory-field extraction checks
		{
			ID:              "EXT-LC-NUMBER",
			Name:            "LC number present",
			Category:        ast.CategoryExtraction,
			Severity:        ast.SeverityCritical,
			Description:     "The documentary credit number must be extracted from the LC.",
			Enabled:         true,
			Version:         "1.0.0",
			UCPReference:    "UCP600 Art. 6",
			SourceDocuments: []string{"letter_of_credit"},
			Conditions: []ast.Condition{
				{Field: "lc.number", Operator: ast.OpExists},
			},
			Action: &ast.Action{
				Type:       ast.ActionTypeIssue,
				Title:      "Missing LC number",
				Message:    "No documentary credit number could be extracted from the letter of credit.",
				Suggestion: "Verify the LC copy is complete and legible, then re-run extraction.",
			},
		},
		{
			ID:              "EXT-LC-AMOUNT",
			Name:            "LC amount present",
			Category:        ast.CategoryExtraction,
			Severity:        ast.SeverityCritical,
			Description:     "The credit amount must be extracted from the LC.",
			Enabled:         true,
			Version:         "1.0.0",
			UCPReference:    "UCP600 Art. 18(b)",
			SourceDocuments: []string{"letter_of_credit"},
			Conditions: []ast.Condition{
				{Field: "lc.amount.value", Operator: ast.OpExists},
			},
			Action: &ast.Action{
				Type:       ast.ActionTypeIssue,
				Title:      "Missing LC amount",
				Message:    "No credit amount could be extracted from the letter of credit.",
				Suggestion: "Check field 32B of the MT700 or the amount clause of the LC.",
			},
		},
		{
			ID:              "EXT-LC-EXPIRY",
			Name:            "LC expiry date present",
			Category:        ast.CategoryExtraction,
			Severity:        ast.SeverityCritical,
			Description:     "The expiry date must be extracted from the LC.",
			Enabled:         true,
			Version:         "1.0.0",
			UCPReference:    "UCP600 Art. 6(d)",
			SourceDocuments: []string{"letter_of_credit"},
			Conditions: []ast.Condition{
				{Field: "lc.expiry_date", Operator: ast.OpExists},
			},
			Action: &ast.Action{
				Type:       ast.ActionTypeIssue,
				Title:      "Missing LC expiry date",
				Message:    "No expiry date could be extracted from the letter of credit.",
				Suggestion: "Check field 31D of the MT700.",
			},
		},
		{
			ID:              "EXT-LC-BENEFICIARY",
			Name:            "LC beneficiary present",
			Category:        ast.CategoryExtraction,
			Severity:        ast.SeverityMajor,
			Description:     "The beneficiary name must be extracted from the LC.",
			Enabled:         true,
			Version:         "1.0.0",
			UCPReference:    "UCP600 Art. 14(d)",
			SourceDocuments: []string{"letter_of_credit"},
			Conditions: []ast.Condition{
				{Field: "lc.beneficiary_name", Operator: ast.OpExists},
			},
			Action: &ast.Action{
				Type:    ast.ActionTypeIssue,
				Title:   "Missing LC beneficiary",
				Message: "No beneficiary name could be extracted from the letter of credit.",
			},
		},
		{
			ID:              "EXT-INV-NUMBER",
			Name:            "Invoice number present",
			Category:        ast.CategoryExtraction,
			Severity:        ast.SeverityMajor,
			Description:     "The invoice number must be extracted from the commercial invoice.",
			Enabled:         true,
			Version:         "1.0.0",
			UCPReference:    "UCP600 Art. 18",
			SourceDocuments: []string{"commercial_invoice"},
			Conditions: []ast.Condition{
				{Field: "invoice.number", Operator: ast.OpExists},
			},
			Action: &ast.Action{
				Type:    ast.ActionTypeIssue,
				Title:   "Missing invoice number",
				Message: "No invoice number could be extracted from the commercial invoice.",
			},
		},
		{
			ID:              "EXT-INV-AMOUNT",
			Name:            "Invoice amount present",
			Category:        ast.CategoryExtraction,
			Severity:        ast.SeverityCritical,
			Description:     "The invoice amount must be extracted from the commercial invoice.",
			Enabled:         true,
			Version:         "1.0.0",
			UCPReference:    "UCP600 Art. 18(b)",
			SourceDocuments: []string{"commercial_invoice"},
			Conditions: []ast.Condition{
				{Field: "invoice.amount", Operator: ast.OpExists},
			},
			Action: &ast.Action{
				Type:    ast.ActionTypeIssue,
				Title:   "Missing invoice amount",
				Message: "No amount could be extracted from the commercial invoice.",
			},
		},
		{
			ID:              "EXT-BL-NUMBER",
			Name:            "Bill of lading number present",
			Category:        ast.CategoryExtraction,
			Severity:        ast.SeverityMajor,
			Description:     "The bill of lading number must be extracted.",
			Enabled:         true,
			Version:         "1.0.0",
			UCPReference:    "UCP600 Art. 20",
			SourceDocuments: []string{"bill_of_lading"},
			Conditions: []ast.Condition{
				{Field: "bill_of_lading.number", Operator: ast.OpExists},
			},
			Action: &ast.Action{
				Type:    ast.ActionTypeIssue,
				Title:   "Missing B/L number",
				Message: "No bill of lading number could be extracted.",
			},
		},
		{
			ID:              "EXT-BL-SHIPMENT-DATE",
			Name:            "Shipped on board date present",
			Category:        ast.CategoryExtraction,
			Severity:        ast.SeverityMajor,
			Description:     "The shipped-on-board date must be extracted from the bill of lading.",
			Enabled:         true,
			Version:         "1.0.0",
			UCPReference:    "UCP600 Art. 20(a)(ii)",
			SourceDocuments: []string{"bill_of_lading"},
			Conditions: []ast.Condition{
				{Field: "bill_of_lading.shipped_on_board_date", Operator: ast.OpExists},
			},
			Action: &ast.Action{
				Type:    ast.ActionTypeIssue,
				Title:   "Missing shipped on board date",
				Message: "No shipped-on-board date could be extracted from the bill of lading.",
			},
		},

		// Cross-document consistency checks
		{
			ID:              "XDOC-BENEFICIARY-MATCH",
			Name:            "Beneficiary matches across LC and invoice",
			Category:        ast.CategoryCrossDocument,
			Severity:        ast.SeverityMajor,
			Description:     "The invoice must be issued by the beneficiary named in the LC.",
			Enabled:         true,
			Version:         "1.0.0",
			UCPReference:    "UCP600 Art. 18(a)(i)",
			SourceDocuments: []string{"commercial_invoice"},
			TargetDocuments: []string{"letter_of_credit"},
			RequiresFields:  []string{"lc.beneficiary_name", "invoice.beneficiary_name"},
			Conditions: []ast.Condition{
				{
					Field:        "invoice.beneficiary_name",
					Operator:     ast.OpSimilarTo,
					CompareField: "lc.beneficiary_name",
					Threshold:    f(0.8),
				},
			},
			Action: &ast.Action{
				Type:             ast.ActionTypeIssue,
				Title:            "Beneficiary name mismatch",
				Message:          "Invoice beneficiary {invoice.beneficiary_name} does not match LC beneficiary {lc.beneficiary_name}.",
				Suggestion:       "Confirm the invoice was issued by the LC beneficiary or request an amended invoice.",
				ExpectedTemplate: "{lc.beneficiary_name}",
				ActualTemplate:   "{invoice.beneficiary_name}",
			},
		},
		{
			ID:              "XDOC-AMOUNT-WITHIN-CREDIT",
			Name:            "Invoice amount within credit amount",
			Category:        ast.CategoryCrossDocument,
			Severity:        ast.SeverityCritical,
			Description:     "The invoice amount must not exceed the available credit amount.",
			Enabled:         true,
			Version:         "1.0.0",
			UCPReference:    "UCP600 Art. 18(b)",
			SourceDocuments: []string{"commercial_invoice"},
			TargetDocuments: []string{"letter_of_credit"},
			RequiresFields:  []string{"lc.amount.value", "invoice.amount"},
			Conditions: []ast.Condition{
				{
					Field:        "invoice.amount",
					Operator:     ast.OpLTE,
					CompareField: "lc.amount.value",
				},
			},
			Action: &ast.Action{
				Type:             ast.ActionTypeIssue,
				Title:            "Invoice exceeds credit amount",
				Message:          "Invoice amount {invoice.amount} exceeds the credit amount {lc.amount.value}.",
				Suggestion:       "Check whether the credit allows a tolerance; otherwise the drawing must be reduced.",
				ExpectedTemplate: "<= {lc.amount.value}",
				ActualTemplate:   "{invoice.amount}",
			},
		},
		{
			ID:              "XDOC-CURRENCY-MATCH",
			Name:            "Invoice currency matches LC currency",
			Category:        ast.CategoryCrossDocument,
			Severity:        ast.SeverityCritical,
			Description:     "The invoice must be made out in the currency of the credit.",
			Enabled:         true,
			Version:         "1.0.0",
			UCPReference:    "UCP600 Art. 18(a)(iii)",
			SourceDocuments: []string{"commercial_invoice"},
			TargetDocuments: []string{"letter_of_credit"},
			RequiresFields:  []string{"lc.currency", "invoice.currency"},
			Conditions: []ast.Condition{
				{
					Field:        "invoice.currency",
					Operator:     ast.OpEquals,
					CompareField: "lc.currency",
				},
			},
			Action: &ast.Action{
				Type:             ast.ActionTypeIssue,
				Title:            "Currency mismatch",
				Message:          "Invoice currency {invoice.currency} differs from the credit currency {lc.currency}.",
				ExpectedTemplate: "{lc.currency}",
				ActualTemplate:   "{invoice.currency}",
			},
		},
		{
			ID:              "XDOC-GOODS-CONSISTENT",
			Name:            "Goods description consistent with LC",
			Category:        ast.CategoryCrossDocument,
			Severity:        ast.SeverityMinor,
			Description:     "The goods description on the invoice should correspond with the credit.",
			Enabled:         true,
			Version:         "1.0.0",
			UCPReference:    "UCP600 Art. 18(c)",
			SourceDocuments: []string{"commercial_invoice"},
			TargetDocuments: []string{"letter_of_credit"},
			RequiresFields:  []string{"lc.goods_description", "invoice.goods_description"},
			Conditions: []ast.Condition{
				{
					Field:        "invoice.goods_description",
					Operator:     ast.OpSimilarTo,
					CompareField: "lc.goods_description",
					Threshold:    f(0.7),
				},
			},
			Action: &ast.Action{
				Type:             ast.ActionTypeIssue,
				Title:            "Goods description differs from LC",
				Message:          "Invoice goods description diverges from the description in the credit.",
				Suggestion:       "General terms are acceptable if not inconsistent with the credit; review before refusing.",
				ExpectedTemplate: "{lc.goods_description}",
				ActualTemplate:   "{invoice.goods_description}",
			},
		},
	}
}
