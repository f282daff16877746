package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"mercator-hq/saturn/pkg/audit"
	"mercator-hq/saturn/pkg/audit/export"
	"mercator-hq/saturn/pkg/audit/query"
	"mercator-hq/saturn/pkg/audit/storage"
	"mercator-hq/saturn/pkg/cli"
	"mercator-hq/saturn/pkg/config"
)

var historyFlags struct {
	timeRange string
	lc        string
	checkedBy string
	rule      string
	severity  string
	outcome   string
	status    string
	minIssues int
	maxIssues int

	limit     int
	offset    int
	sortBy    string
	sortOrder string
	format    string
	output    string

	exportFormat string
	exportLimit  int
	exportOutput string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query the validation audit trail",
	Long: `Query and export the validation audit trail.

Every recorded validation run carries its outcome counts, discrepancy
issues, catalog version, and presentation metadata (LC reference,
document checker).

Subcommands:
  query   - Query validation records with filters
  export  - Export matching records to JSON or CSV

Examples:
  # Runs from the last week
  saturn history query --time-range "2026-08-15T00:00:00Z/2026-08-22T00:00:00Z"

  # Discrepant runs for one credit
  saturn history query --lc LC-2024-001 --outcome discrepant

  # Export everything citing one rule
  saturn history export --rule UCP600-14D-GOODS --format csv --output runs.csv`,
}

var historyQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query validation records",
	Long: `Query validation records with various filters.

Time Range Format:
  RFC3339 interval format: "start/end"
  Example: "2026-08-15T00:00:00Z/2026-08-22T00:00:00Z"

Examples:
  # Query specific time range
  saturn history query --time-range "2026-08-15T00:00:00Z/2026-08-22T00:00:00Z"

  # Filter by checker and outcome
  saturn history query --checked-by j.smith --outcome discrepant

  # Runs carrying critical issues, most issues first
  saturn history query --severity CRITICAL --sort-by issue_count --sort-order desc

  # JSON output to a file
  saturn history query --format json --output runs.json`,
	RunE: queryHistory,
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export validation records",
	Long: `Export validation records matching the filters to JSON or CSV.

Records are streamed from storage, so exports stay memory-bounded even
for large result sets. At most 10000 records are exported per run;
narrow the time range to export more in slices.

Examples:
  # All records as pretty JSON
  saturn history export --output runs.json

  # One credit's runs as CSV
  saturn history export --lc LC-2024-001 --format csv --output lc-2024-001.csv`,
	RunE: exportHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyQueryCmd, historyExportCmd)

	// Filters shared by query and export
	historyCmd.PersistentFlags().StringVar(&historyFlags.timeRange, "time-range", "", "time range (RFC3339 interval: start/end)")
	historyCmd.PersistentFlags().StringVar(&historyFlags.lc, "lc", "", "filter by letter of credit reference")
	historyCmd.PersistentFlags().StringVar(&historyFlags.checkedBy, "checked-by", "", "filter by document checker identity")
	historyCmd.PersistentFlags().StringVar(&historyFlags.rule, "rule", "", "filter by rule id cited in issues")
	historyCmd.PersistentFlags().StringVar(&historyFlags.severity, "severity", "", "filter by issue severity (CRITICAL, MAJOR, MINOR)")
	historyCmd.PersistentFlags().StringVar(&historyFlags.outcome, "outcome", "", "filter by outcome (compliant, discrepant)")
	historyCmd.PersistentFlags().StringVar(&historyFlags.status, "status", "", "filter by run status (success, error)")
	historyCmd.PersistentFlags().IntVar(&historyFlags.minIssues, "min-issues", 0, "minimum issue count")
	historyCmd.PersistentFlags().IntVar(&historyFlags.maxIssues, "max-issues", 0, "maximum issue count")

	// Flags for query command
	historyQueryCmd.Flags().IntVar(&historyFlags.limit, "limit", 0, "max results (default from config)")
	historyQueryCmd.Flags().IntVar(&historyFlags.offset, "offset", 0, "pagination offset")
	historyQueryCmd.Flags().StringVar(&historyFlags.sortBy, "sort-by", "", "sort field (started_time, issue_count, failed, ...)")
	historyQueryCmd.Flags().StringVar(&historyFlags.sortOrder, "sort-order", "", "sort order: asc, desc")
	historyQueryCmd.Flags().StringVar(&historyFlags.format, "format", "text", "output format: text, json")
	historyQueryCmd.Flags().StringVarP(&historyFlags.output, "output", "o", "", "output file (default: stdout)")

	// Flags for export command
	historyExportCmd.Flags().StringVar(&historyFlags.exportFormat, "format", "json", "export format: json, csv")
	historyExportCmd.Flags().IntVar(&historyFlags.exportLimit, "limit", 0, "max records to export (default from config)")
	historyExportCmd.Flags().StringVarP(&historyFlags.exportOutput, "output", "o", "", "output file (default: stdout)")
}

// openAuditStorage opens the validation history backend configured for the
// audit trail. The in-memory backend holds no history between runs, so
// one-shot commands reject it.
func openAuditStorage(cfg *config.Config) (audit.Storage, error) {
	switch cfg.Audit.Backend {
	case "sqlite":
		st, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
			Path:         cfg.Audit.SQLite.Path,
			MaxOpenConns: cfg.Audit.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Audit.SQLite.MaxIdleConns,
			WALMode:      cfg.Audit.SQLite.WALMode,
			BusyTimeout:  cfg.Audit.SQLite.BusyTimeout,
		})
		if err != nil {
			return nil, cli.NewCommandError("history", fmt.Errorf("failed to open audit storage: %w", err))
		}
		return st, nil
	case "memory":
		return nil, fmt.Errorf("audit backend %q holds no history between runs (set audit.backend: sqlite)", cfg.Audit.Backend)
	default:
		return nil, fmt.Errorf("unsupported audit backend: %s (supported: sqlite)", cfg.Audit.Backend)
	}
}

// buildHistoryQuery maps the filter flags onto an audit query.
func buildHistoryQuery() (*audit.Query, error) {
	q := &audit.Query{
		LCReference: historyFlags.lc,
		CheckedBy:   historyFlags.checkedBy,
		RuleID:      historyFlags.rule,
		Severity:    strings.ToUpper(historyFlags.severity),
		Outcome:     strings.ToLower(historyFlags.outcome),
		Status:      strings.ToLower(historyFlags.status),
	}

	if historyFlags.timeRange != "" {
		start, end, err := parseTimeRange(historyFlags.timeRange)
		if err != nil {
			return nil, err
		}
		q.StartTime = start
		q.EndTime = end
	}

	if historyFlags.minIssues > 0 {
		q.MinIssues = &historyFlags.minIssues
	}
	if historyFlags.maxIssues > 0 {
		q.MaxIssues = &historyFlags.maxIssues
	}

	return q, nil
}

// parseTimeRange parses an RFC3339 "start/end" interval.
func parseTimeRange(s string) (*time.Time, *time.Time, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return nil, nil, fmt.Errorf("invalid time range format (expected: start/end)")
	}

	start, err := time.Parse(time.RFC3339, parts[0])
	if err != nil {
		return nil, nil, fmt.Errorf("invalid start time: %w", err)
	}
	end, err := time.Parse(time.RFC3339, parts[1])
	if err != nil {
		return nil, nil, fmt.Errorf("invalid end time: %w", err)
	}

	return &start, &end, nil
}

func queryHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadSaturnConfig()
	if err != nil {
		return err
	}
	if err := initLogging(cfg, "warn"); err != nil {
		return err
	}

	st, err := openAuditStorage(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	q, err := buildHistoryQuery()
	if err != nil {
		return err
	}
	q.Limit = historyFlags.limit
	q.Offset = historyFlags.offset
	q.SortBy = historyFlags.sortBy
	q.SortOrder = historyFlags.sortOrder

	query.ApplyDefaults(q)
	if err := query.Validate(q); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Audit.Query.Timeout)
	defer cancel()

	records, err := st.Query(ctx, q)
	if err != nil {
		return cli.NewCommandError("history", fmt.Errorf("query failed: %w", err))
	}

	output := os.Stdout
	if historyFlags.output != "" {
		output, err = os.Create(historyFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	}

	switch historyFlags.format {
	case "json":
		return outputHistoryJSON(output, records)
	default:
		return outputHistoryText(output, records, q)
	}
}

func outputHistoryText(output *os.File, records []*audit.ValidationRecord, q *audit.Query) error {
	fmt.Fprintln(output, "Querying validation records...")
	fmt.Fprintln(output)

	if q.StartTime != nil && q.EndTime != nil {
		fmt.Fprintf(output, "Time range: %s to %s\n",
			q.StartTime.Format(time.RFC3339),
			q.EndTime.Format(time.RFC3339))
	}
	fmt.Fprintf(output, "Total records: %d\n", len(records))
	fmt.Fprintln(output)

	if len(records) == 0 {
		fmt.Fprintln(output, "No records found.")
		return nil
	}

	for i, record := range records {
		if i > 0 {
			fmt.Fprintln(output)
		}

		fmt.Fprintf(output, "Record ID: %s\n", record.ID)
		fmt.Fprintf(output, "Started: %s\n", record.StartedTime.Format(time.RFC3339))
		if record.LCReference != "" {
			fmt.Fprintf(output, "LC Reference: %s\n", record.LCReference)
		}
		if record.CheckedBy != "" {
			fmt.Fprintf(output, "Checked By: %s\n", record.CheckedBy)
		}
		fmt.Fprintf(output, "Outcome: %s\n", record.Outcome)
		fmt.Fprintf(output, "Rules: %d total, %d passed, %d failed, %d skipped (%dms)\n",
			record.TotalRules, record.Passed, record.Failed, record.Skipped, record.ExecutionTimeMS)
		fmt.Fprintf(output, "Issues: %d (%d critical, %d major, %d minor)\n",
			record.IssueCount, record.CriticalCount, record.MajorCount, record.MinorCount)
		if record.CatalogVersion != "" {
			fmt.Fprintf(output, "Catalog: %s\n", record.CatalogVersion)
		}
		if record.Error != "" {
			fmt.Fprintf(output, "Error: %s\n", record.Error)
		}

		// Show limited output for large result sets
		if i >= 9 && len(records) > 10 {
			remaining := len(records) - 10
			fmt.Fprintln(output)
			fmt.Fprintf(output, "... and %d more records\n", remaining)
			fmt.Fprintf(output, "Use --limit and --offset for pagination.\n")
			break
		}
	}

	return nil
}

func outputHistoryJSON(output *os.File, records []*audit.ValidationRecord) error {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")

	return encoder.Encode(map[string]any{
		"total_records": len(records),
		"records":       records,
	})
}

// streamExporter is satisfied by both audit exporters.
type streamExporter interface {
	ExportStream(ctx context.Context, records <-chan *audit.ValidationRecord, w io.Writer) error
}

func exportHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadSaturnConfig()
	if err != nil {
		return err
	}
	if err := initLogging(cfg, "warn"); err != nil {
		return err
	}

	var exporter streamExporter
	switch historyFlags.exportFormat {
	case "json":
		exporter = export.NewJSONExporter(cfg.Audit.Export.JSONPretty)
	case "csv":
		exporter = export.NewCSVExporter(cfg.Audit.Export.CSVIncludeHeader)
	default:
		return fmt.Errorf("unsupported export format: %s (supported: json, csv)", historyFlags.exportFormat)
	}

	st, err := openAuditStorage(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	q, err := buildHistoryQuery()
	if err != nil {
		return err
	}

	// The export cap is the config limit bounded by the query engine's
	// maximum page size.
	limit := historyFlags.exportLimit
	if limit <= 0 {
		limit = cfg.Audit.Export.MaxExportSize
	}
	if limit > query.MaxLimit {
		limit = query.MaxLimit
	}
	q.Limit = limit

	query.ApplyDefaults(q)
	if err := query.Validate(q); err != nil {
		return err
	}

	ctx := context.Background()

	total, err := st.Count(ctx, q)
	if err != nil {
		return cli.NewCommandError("history", fmt.Errorf("count failed: %w", err))
	}
	if int64(q.Limit) < total {
		total = int64(q.Limit)
	}

	output := os.Stdout
	if historyFlags.exportOutput != "" {
		output, err = os.Create(historyFlags.exportOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	}

	records, errCh, err := st.QueryStream(ctx, q)
	if err != nil {
		return cli.NewCommandError("history", fmt.Errorf("query failed: %w", err))
	}

	progress := cli.NewProgressReporter(nil)
	progress.Start(total)

	// Tee the stream through the progress reporter on its way to the
	// exporter. done unblocks the tee when the exporter fails mid-stream.
	done := make(chan struct{})
	defer close(done)

	teed := make(chan *audit.ValidationRecord)
	var exported int64
	go func() {
		defer close(teed)
		for record := range records {
			progress.Update(atomic.AddInt64(&exported, 1))
			select {
			case teed <- record:
			case <-done:
				return
			}
		}
	}()

	if err := exporter.ExportStream(ctx, teed, output); err != nil {
		progress.Error(err)
		return cli.NewCommandError("history", fmt.Errorf("export failed: %w", err))
	}
	if err := <-errCh; err != nil {
		progress.Error(err)
		return cli.NewCommandError("history", fmt.Errorf("query failed during export: %w", err))
	}
	progress.Finish()

	if historyFlags.exportOutput != "" {
		fmt.Printf("✓ Exported %d record(s) to %s\n", atomic.LoadInt64(&exported), historyFlags.exportOutput)
	}

	return nil
}
