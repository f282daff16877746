package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"mercator-hq/saturn/pkg/audit"
)

// CSVExporter exports validation records to CSV format.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{
		IncludeHeader: includeHeader,
	}
}

// Export writes validation records to the provided writer in CSV format.
// The CSV format flattens nested structures (document types and issues
// become JSON strings).
func (e *CSVExporter) Export(ctx context.Context, records []*audit.ValidationRecord, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	// Write header row if configured
	if e.IncludeHeader {
		header := e.getHeaderRow()
		if err := writer.Write(header); err != nil {
			return audit.NewExportError("csv", len(records), err)
		}
	}

	// Write data rows
	for _, record := range records {
		row, err := e.recordToRow(record)
		if err != nil {
			return audit.NewExportError("csv", len(records), err)
		}
		if err := writer.Write(row); err != nil {
			return audit.NewExportError("csv", len(records), err)
		}
	}

	return nil
}

// ExportStream exports validation records from a channel to CSV format.
// This is memory-efficient for large result sets as it streams records
// one at a time instead of loading all records in memory.
//
// The CSV writer flushes periodically to provide progress feedback
// for long-running exports.
func (e *CSVExporter) ExportStream(ctx context.Context, recordsCh <-chan *audit.ValidationRecord, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	// Write header if configured
	if e.IncludeHeader {
		header := e.getHeaderRow()
		if err := writer.Write(header); err != nil {
			return audit.NewExportError("csv", 0, err)
		}
	}

	recordCount := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case record, ok := <-recordsCh:
			if !ok {
				// Channel closed - flush and return
				writer.Flush()
				if err := writer.Error(); err != nil {
					return audit.NewExportError("csv", recordCount, err)
				}
				return nil
			}

			row, err := e.recordToRow(record)
			if err != nil {
				return audit.NewExportError("csv", recordCount, err)
			}

			if err := writer.Write(row); err != nil {
				return audit.NewExportError("csv", recordCount, err)
			}

			recordCount++

			// Flush periodically (every 100 records)
			if recordCount%100 == 0 {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return audit.NewExportError("csv", recordCount, err)
				}
			}
		}
	}
}

// getHeaderRow returns the CSV header row.
func (e *CSVExporter) getHeaderRow() []string {
	return []string{
		"id", "validation_id",
		"started_time", "completed_time", "recorded_time",
		"context_hash", "document_types", "document_count", "field_count",
		"lc_reference", "checked_by", "catalog_version",
		"total_rules", "passed", "failed", "skipped", "execution_time_ms",
		"outcome", "issue_count", "critical_count", "major_count", "minor_count", "issues",
		"error",
	}
}

// recordToRow converts a validation record to a CSV row.
func (e *CSVExporter) recordToRow(record *audit.ValidationRecord) ([]string, error) {
	formatTime := func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(time.RFC3339)
	}

	formatJSON := func(v interface{}) string {
		data, _ := json.Marshal(v)
		return string(data)
	}

	row := []string{
		record.ID,
		record.ValidationID,
		formatTime(record.StartedTime),
		formatTime(record.CompletedTime),
		formatTime(record.RecordedTime),
		record.ContextHash,
		formatJSON(record.DocumentTypes),
		fmt.Sprintf("%d", record.DocumentCount),
		fmt.Sprintf("%d", record.FieldCount),
		record.LCReference,
		record.CheckedBy,
		record.CatalogVersion,
		fmt.Sprintf("%d", record.TotalRules),
		fmt.Sprintf("%d", record.Passed),
		fmt.Sprintf("%d", record.Failed),
		fmt.Sprintf("%d", record.Skipped),
		fmt.Sprintf("%d", record.ExecutionTimeMS),
		record.Outcome,
		fmt.Sprintf("%d", record.IssueCount),
		fmt.Sprintf("%d", record.CriticalCount),
		fmt.Sprintf("%d", record.MajorCount),
		fmt.Sprintf("%d", record.MinorCount),
		formatJSON(record.Issues),
		record.Error,
	}

	return row, nil
}
