package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"mercator-hq/saturn/pkg/cli"
	crlErrors "mercator-hq/saturn/pkg/crl/errors"
	"mercator-hq/saturn/pkg/crl/parser"
	"mercator-hq/saturn/pkg/crl/validator"
)

var lintFlags struct {
	file   string
	dir    string
	strict bool
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate rulebook files",
	Long: `Validate CRL rulebook files for syntax and semantic errors.

The lint command parses rulebook files and performs comprehensive validation:
  - YAML syntax validation
  - Rule structure validation
  - Semantic validation (duplicate ids, operator/operand combinations)
  - Condition and action validation (field paths, templates, thresholds)

Rules that parse cleanly are also checked for advisory problems, such as
a rule without conditions (always passes) or a rule without an action
(triggers without reporting an issue). These are warnings unless --strict
is set.

Exit codes: 0 when all files are clean, 1 when findings were reported,
2 on usage errors.

Examples:
  # Lint single file
  saturn lint --file rulebooks/ucp600.yaml

  # Lint directory
  saturn lint --dir rulebooks/

  # Strict mode (warnings as errors, unknown fields rejected)
  saturn lint --file rulebooks/ucp600.yaml --strict

  # JSON output for CI/CD
  saturn lint --file rulebooks/ucp600.yaml --format json`,
	RunE: lintRulebooks,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "rulebook file to validate")
	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of rulebook files")
	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "treat warnings as errors and reject unknown fields")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

func lintRulebooks(cmd *cobra.Command, args []string) error {
	if lintFlags.file == "" && lintFlags.dir == "" {
		return fmt.Errorf("either --file or --dir must be specified")
	}

	var files []string

	if lintFlags.file != "" {
		files = append(files, lintFlags.file)
	}

	if lintFlags.dir != "" {
		matches, err := filepath.Glob(filepath.Join(lintFlags.dir, "*.yaml"))
		if err != nil {
			return fmt.Errorf("failed to list rulebook files: %w", err)
		}
		ymlMatches, err := filepath.Glob(filepath.Join(lintFlags.dir, "*.yml"))
		if err != nil {
			return fmt.Errorf("failed to list rulebook files: %w", err)
		}
		files = append(files, matches...)
		files = append(files, ymlMatches...)
	}

	if len(files) == 0 {
		return fmt.Errorf("no rulebook files found")
	}

	results := make([]ValidationResult, 0, len(files))

	for _, file := range files {
		result := validateRulebookFile(file)
		results = append(results, result)
	}

	if lintFlags.format == "json" {
		return outputLintJSON(results)
	}
	return outputLintText(results, lintFlags.strict)
}

// ValidationResult represents the validation result for a single rulebook file.
type ValidationResult struct {
	File     string            `json:"file"`
	Valid    bool              `json:"valid"`
	Errors   []ValidationError `json:"errors,omitempty"`
	Warnings []ValidationError `json:"warnings,omitempty"`
}

// ValidationError represents a single validation error or warning.
type ValidationError struct {
	Line       int    `json:"line,omitempty"`
	Column     int    `json:"column,omitempty"`
	Message    string `json:"message"`
	Severity   string `json:"severity"`
	Type       string `json:"type,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func validateRulebookFile(path string) ValidationResult {
	result := ValidationResult{
		File:  path,
		Valid: true,
	}

	p := parser.NewParser()
	if lintFlags.strict {
		p = p.WithStrictMode(true)
	}

	rs, err := p.ParseFile(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, toValidationErrors(err)...)
		return result
	}

	v := validator.NewValidator()
	if err := v.Validate(rs); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, toValidationErrors(err)...)
	}

	// Advisory findings on rules that parsed cleanly.
	for i := range rs.Rules {
		rule := &rs.Rules[i]
		if !rule.HasConditions() {
			result.Warnings = append(result.Warnings, ValidationError{
				Line:       rule.Location.Line,
				Column:     rule.Location.Column,
				Message:    fmt.Sprintf("rule %q has no conditions and always passes", rule.ID),
				Severity:   "warning",
				Suggestion: "add at least one condition or remove the rule",
			})
		} else if !rule.HasAction() {
			result.Warnings = append(result.Warnings, ValidationError{
				Line:       rule.Location.Line,
				Column:     rule.Location.Column,
				Message:    fmt.Sprintf("rule %q has no action and triggers without reporting an issue", rule.ID),
				Severity:   "warning",
				Suggestion: "add an action block with a title and message",
			})
		}
	}

	return result
}

// toValidationErrors flattens parser and validator errors into report rows.
func toValidationErrors(err error) []ValidationError {
	switch e := err.(type) {
	case *crlErrors.ErrorList:
		errs := make([]ValidationError, 0, len(e.Errors))
		for _, item := range e.Errors {
			errs = append(errs, ValidationError{
				Line:       item.Location.Line,
				Column:     item.Location.Column,
				Message:    item.Message,
				Severity:   "error",
				Type:       string(item.Type),
				Suggestion: item.Suggestion,
			})
		}
		return errs
	case *crlErrors.Error:
		return []ValidationError{{
			Line:       e.Location.Line,
			Column:     e.Location.Column,
			Message:    e.Message,
			Severity:   "error",
			Type:       string(e.Type),
			Suggestion: e.Suggestion,
		}}
	default:
		return []ValidationError{{
			Message:  err.Error(),
			Severity: "error",
		}}
	}
}

func outputLintText(results []ValidationResult, strict bool) error {
	totalErrors := 0
	totalWarnings := 0

	for _, result := range results {
		fmt.Printf("Validating %s...\n", result.File)

		if len(result.Errors) == 0 && len(result.Warnings) == 0 {
			fmt.Println("✓ Syntax valid")
			fmt.Println("✓ All rules have valid conditions")
		}

		for _, err := range result.Errors {
			fmt.Printf("✗ Error: %s", err.Message)
			if err.Line > 0 {
				fmt.Printf(" (line %d", err.Line)
				if err.Column > 0 {
					fmt.Printf(", col %d", err.Column)
				}
				fmt.Print(")")
			}
			if err.Type != "" {
				fmt.Printf(" [%s]", err.Type)
			}
			fmt.Println()
			if err.Suggestion != "" {
				fmt.Printf("    suggestion: %s\n", err.Suggestion)
			}
			totalErrors++
		}

		for _, warn := range result.Warnings {
			fmt.Printf("⚠  Warning: %s", warn.Message)
			if warn.Line > 0 {
				fmt.Printf(" (line %d", warn.Line)
				if warn.Column > 0 {
					fmt.Printf(", col %d", warn.Column)
				}
				fmt.Print(")")
			}
			fmt.Println()
			totalWarnings++
		}

		fmt.Println()
	}

	fmt.Println("Summary:")
	fmt.Printf("  %d error(s), %d warning(s)\n", totalErrors, totalWarnings)

	if strict && totalWarnings > 0 {
		fmt.Println("  Strict mode enabled: treating warnings as errors")
		return cli.NewExitError(cli.ExitFindings, fmt.Errorf("lint: %d finding(s)", totalErrors+totalWarnings))
	}

	if totalErrors > 0 {
		return cli.NewExitError(cli.ExitFindings, fmt.Errorf("lint: %d error(s)", totalErrors))
	}

	return nil
}

func outputLintJSON(results []ValidationResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(results); err != nil {
		return err
	}

	// JSON output carries the same exit contract as text, so CI can gate
	// on the exit code alone.
	totalErrors := 0
	totalWarnings := 0
	for _, result := range results {
		totalErrors += len(result.Errors)
		totalWarnings += len(result.Warnings)
	}
	if lintFlags.strict && totalWarnings > 0 {
		return cli.NewExitError(cli.ExitFindings, fmt.Errorf("lint: %d finding(s)", totalErrors+totalWarnings))
	}
	if totalErrors > 0 {
		return cli.NewExitError(cli.ExitFindings, fmt.Errorf("lint: %d error(s)", totalErrors))
	}
	return nil
}
