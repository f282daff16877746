package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"mercator-hq/saturn/pkg/audit"
	"mercator-hq/saturn/pkg/audit/recorder"
	"mercator-hq/saturn/pkg/cli"
	"mercator-hq/saturn/pkg/config"
	"mercator-hq/saturn/pkg/crl/ast"
	"mercator-hq/saturn/pkg/rules/engine"
)

var checkFlags struct {
	contextFile string
	lcReference string
	checkedBy   string
	categories  []string
	format      string
	output      string
	noAudit     bool
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check a presentation against the rule catalog",
	Long: `Execute the rule catalog against an extracted presentation context.

The context file is a JSON object of extracted document data, addressed
by the rules through dotted paths (for example "lc.amount.value"). A
"documents" entry, when present, lists the classified source documents.

Every enabled rule is evaluated; triggered rules emit discrepancy issues.
When the audit trail is enabled, the run is recorded to the validation
history.

Exit codes: 0 when the presentation is compliant, 1 when discrepancies
were found, 2 on usage or configuration errors.

Examples:
  # Check a presentation
  saturn check --context presentation.json

  # Attribute the run in the audit trail
  saturn check --context presentation.json --lc LC-2024-001 --checked-by j.smith

  # Restrict to UCP600 rules, JSON output
  saturn check --context presentation.json --category UCP600 --format json

  # Write the report to a file
  saturn check --context presentation.json --output report.json --format json`,
	RunE: checkPresentation,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkFlags.contextFile, "context", "", "extracted presentation context (JSON file)")
	checkCmd.Flags().StringVar(&checkFlags.lcReference, "lc", "", "letter of credit reference for the audit trail")
	checkCmd.Flags().StringVar(&checkFlags.checkedBy, "checked-by", "", "document checker identity for the audit trail")
	checkCmd.Flags().StringSliceVar(&checkFlags.categories, "category", nil, "restrict execution to these categories (repeatable)")
	checkCmd.Flags().StringVar(&checkFlags.format, "format", "text", "output format: text, json")
	checkCmd.Flags().StringVarP(&checkFlags.output, "output", "o", "", "output file (default: stdout)")
	checkCmd.Flags().BoolVar(&checkFlags.noAudit, "no-audit", false, "skip recording the run to the audit trail")
	_ = checkCmd.MarkFlagRequired("context")
}

func checkPresentation(cmd *cobra.Command, args []string) error {
	if checkFlags.contextFile == "" {
		return fmt.Errorf("--context must be specified")
	}

	cfg, err := loadSaturnConfig()
	if err != nil {
		return err
	}
	if err := initLogging(cfg, "warn"); err != nil {
		return err
	}

	categories, err := parseCategories(checkFlags.categories)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(checkFlags.contextFile)
	if err != nil {
		return fmt.Errorf("failed to read context file: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("failed to parse context file %q: %w", checkFlags.contextFile, err)
	}

	ctx := context.Background()
	cat, err := openCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	defer cat.Close()

	if _, err := cat.manager.LoadAllRules(ctx, false); err != nil {
		return cli.NewCommandError("check", fmt.Errorf("failed to load rule catalog: %w", err))
	}

	eng, err := engine.New(&engine.Config{
		DefaultSimilarityThreshold: cfg.Engine.DefaultSimilarityThreshold,
		MaxRegexLength:             cfg.Engine.MaxRegexLength,
	}, engine.WithCatalog(cat.manager), engine.WithLogger(slog.Default()))
	if err != nil {
		return cli.NewCommandError("check", fmt.Errorf("failed to create engine: %w", err))
	}

	ec := engine.NewEvaluationContext(fields)
	ec.ValidationID = uuid.New().String()

	started := time.Now()
	summary, err := eng.ExecuteAllRules(ctx, ec, categories...)
	if err != nil {
		return cli.NewCommandError("check", fmt.Errorf("rule execution failed: %w", err))
	}

	output := os.Stdout
	if checkFlags.output != "" {
		output, err = os.Create(checkFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	}

	switch checkFlags.format {
	case "json":
		err = outputCheckJSON(output, cat.manager.Version(), ec, summary)
	default:
		err = outputCheckText(output, cat.manager.Version(), ec, summary)
	}
	if err != nil {
		return err
	}

	recordValidationRun(ctx, cfg, cat.manager.Version(), started, ec, summary)

	if summary.Failed > 0 || summary.HasIssues() {
		return cli.NewExitError(cli.ExitFindings,
			fmt.Errorf("check: %d discrepant rule(s), %d issue(s)", summary.Failed, len(summary.Issues)))
	}
	return nil
}

// recordValidationRun writes the run to the audit trail when enabled. A
// recording failure never fails the validation; it is logged and the
// command's exit code keeps reflecting the compliance outcome.
func recordValidationRun(ctx context.Context, cfg *config.Config, catalogVersion string, started time.Time, ec *engine.EvaluationContext, summary *engine.ExecutionSummary) {
	if !cfg.Audit.Enabled || checkFlags.noAudit {
		return
	}
	if cfg.Audit.Backend != "sqlite" {
		slog.Debug("audit backend holds no history between runs, skipping record",
			"backend", cfg.Audit.Backend,
		)
		return
	}

	storage, err := openAuditStorage(cfg)
	if err != nil {
		slog.Warn("failed to open audit storage, run not recorded", "error", err)
		return
	}
	defer storage.Close()

	rec := recorder.NewRecorder(storage, &recorder.Config{
		Enabled:        true,
		AsyncBuffer:    cfg.Audit.Recorder.AsyncBuffer,
		WriteTimeout:   cfg.Audit.Recorder.WriteTimeout,
		HashContext:    cfg.Audit.Recorder.HashContext,
		MaxFieldLength: cfg.Audit.Recorder.MaxFieldLength,
	})
	defer rec.Close()

	meta := &recorder.RunMetadata{
		LCReference:    checkFlags.lcReference,
		CheckedBy:      checkFlags.checkedBy,
		CatalogVersion: catalogVersion,
		StartedAt:      started,
	}
	if err := rec.Record(ctx, meta, ec, summary); err != nil {
		slog.Warn("failed to record validation run", "error", err)
	}
}

func outputCheckText(output *os.File, catalogVersion string, ec *engine.EvaluationContext, summary *engine.ExecutionSummary) error {
	fmt.Fprintln(output, "Checking presentation against rule catalog...")
	fmt.Fprintln(output)
	fmt.Fprintf(output, "Catalog: %d rule(s), version %s\n", summary.TotalRules, catalogVersion)
	fmt.Fprintf(output, "Context: %s (%d field group(s))\n", checkFlags.contextFile, len(ec.Fields))
	if checkFlags.lcReference != "" {
		fmt.Fprintf(output, "LC Reference: %s\n", checkFlags.lcReference)
	}
	fmt.Fprintln(output)

	for _, issue := range summary.Issues {
		fmt.Fprintf(output, "✗ %s [%s] %s\n", issue.RuleID, issue.Severity, issue.Title)
		if issue.Message != "" {
			fmt.Fprintf(output, "    %s\n", issue.Message)
		}
		if issue.Expected != "" {
			fmt.Fprintf(output, "    expected: %s\n", issue.Expected)
		}
		if issue.Actual != "" {
			fmt.Fprintf(output, "    actual:   %s\n", issue.Actual)
		}
		if len(issue.Documents) > 0 {
			fmt.Fprintf(output, "    documents: %s\n", strings.Join(issue.Documents, ", "))
		}
		if issue.Suggestion != "" {
			fmt.Fprintf(output, "    suggestion: %s\n", issue.Suggestion)
		}
		if issue.UCPReference != "" {
			fmt.Fprintf(output, "    reference: %s\n", issue.UCPReference)
		}
	}
	if len(summary.Issues) > 0 {
		fmt.Fprintln(output)
	}

	if summary.Failed == 0 && !summary.HasIssues() {
		fmt.Fprintln(output, "✓ Presentation is compliant")
		fmt.Fprintln(output)
	}

	fmt.Fprintln(output, "Summary:")
	fmt.Fprintf(output, "  %d rule(s): %d passed, %d failed, %d skipped (%dms)\n",
		summary.TotalRules, summary.Passed, summary.Failed, summary.Skipped, summary.ExecutionTimeMS)
	fmt.Fprintf(output, "  %d issue(s): %d critical, %d major, %d minor\n",
		len(summary.Issues),
		len(summary.IssuesBySeverity(ast.SeverityCritical)),
		len(summary.IssuesBySeverity(ast.SeverityMajor)),
		len(summary.IssuesBySeverity(ast.SeverityMinor)))

	return nil
}

func outputCheckJSON(output *os.File, catalogVersion string, ec *engine.EvaluationContext, summary *engine.ExecutionSummary) error {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")

	outcome := audit.OutcomeCompliant
	if summary.Failed > 0 || summary.HasIssues() {
		outcome = audit.OutcomeDiscrepant
	}

	return encoder.Encode(map[string]any{
		"validation_id":   ec.ValidationID,
		"catalog_version": catalogVersion,
		"outcome":         outcome,
		"summary":         summary,
	})
}
