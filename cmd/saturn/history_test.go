package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"mercator-hq/saturn/pkg/audit"
	"mercator-hq/saturn/pkg/audit/query"
	"mercator-hq/saturn/pkg/audit/storage"
	"mercator-hq/saturn/pkg/cli"
	"mercator-hq/saturn/pkg/config"
)

func resetHistoryFlags() {
	historyFlags.timeRange = ""
	historyFlags.lc = ""
	historyFlags.checkedBy = ""
	historyFlags.rule = ""
	historyFlags.severity = ""
	historyFlags.outcome = ""
	historyFlags.status = ""
	historyFlags.minIssues = 0
	historyFlags.maxIssues = 0
	historyFlags.limit = 0
	historyFlags.offset = 0
	historyFlags.sortBy = ""
	historyFlags.sortOrder = ""
	historyFlags.format = "text"
	historyFlags.output = ""
	historyFlags.exportFormat = "json"
	historyFlags.exportLimit = 0
	historyFlags.exportOutput = ""
}

func TestParseTimeRange(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:  "valid range",
			input: "2026-08-15T00:00:00Z/2026-08-22T00:00:00Z",
		},
		{
			name:    "missing separator",
			input:   "2026-08-15T00:00:00Z",
			wantErr: true,
		},
		{
			name:    "invalid start time",
			input:   "yesterday/2026-08-22T00:00:00Z",
			wantErr: true,
		},
		{
			name:    "invalid end time",
			input:   "2026-08-15T00:00:00Z/tomorrow",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := parseTimeRange(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseTimeRange(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if start == nil || end == nil {
				t.Fatalf("parseTimeRange(%q) returned nil bounds", tt.input)
			}
			if !start.Before(*end) {
				t.Errorf("parseTimeRange(%q) start %v not before end %v", tt.input, start, end)
			}
		})
	}
}

func TestOpenAuditStorageRejectsMemoryBackend(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Audit.Backend = "memory"

	if _, err := openAuditStorage(cfg); err == nil {
		t.Error("openAuditStorage() with memory backend should return error")
	}
}

func TestOpenAuditStorageUnknownBackend(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Audit.Backend = "postgres"

	if _, err := openAuditStorage(cfg); err == nil {
		t.Error("openAuditStorage() with unknown backend should return error")
	}
}

func TestBuildHistoryQuery(t *testing.T) {
	resetHistoryFlags()
	historyFlags.lc = "LC-2024-001"
	historyFlags.checkedBy = "j.smith"
	historyFlags.rule = "UCP600-14D-GOODS"
	historyFlags.severity = "critical"
	historyFlags.outcome = "Discrepant"
	historyFlags.status = "SUCCESS"
	historyFlags.minIssues = 1
	historyFlags.timeRange = "2026-08-01T00:00:00Z/2026-08-22T00:00:00Z"

	q, err := buildHistoryQuery()
	if err != nil {
		t.Fatalf("buildHistoryQuery() returned error: %v", err)
	}

	if q.LCReference != "LC-2024-001" {
		t.Errorf("LCReference = %q, want %q", q.LCReference, "LC-2024-001")
	}
	if q.Severity != "CRITICAL" {
		t.Errorf("Severity = %q, want %q", q.Severity, "CRITICAL")
	}
	if q.Outcome != "discrepant" {
		t.Errorf("Outcome = %q, want %q", q.Outcome, "discrepant")
	}
	if q.Status != "success" {
		t.Errorf("Status = %q, want %q", q.Status, "success")
	}
	if q.MinIssues == nil || *q.MinIssues != 1 {
		t.Errorf("MinIssues = %v, want 1", q.MinIssues)
	}
	if q.MaxIssues != nil {
		t.Errorf("MaxIssues = %v, want nil for unset flag", q.MaxIssues)
	}
	if q.StartTime == nil || q.EndTime == nil {
		t.Error("time range flags should set both query bounds")
	}
}

func TestBuildHistoryQueryBadTimeRange(t *testing.T) {
	resetHistoryFlags()
	historyFlags.timeRange = "not-a-range"

	if _, err := buildHistoryQuery(); err == nil {
		t.Error("buildHistoryQuery() with bad time range should return error")
	}
}

// TestHistoryAuditTrailRoundTrip checks a discrepant presentation with the
// audit trail enabled, then reads the recorded run back through storage and
// the history commands.
func TestHistoryAuditTrailRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "audit.db")
	cfgPath := filepath.Join(tmpDir, "saturn.yaml")

	cfgYAML := fmt.Sprintf(`rules:
  paths:
    - testdata/valid-rulebook.yaml
  store:
    enabled: false
  git:
    enabled: false

audit:
  enabled: true
  backend: sqlite
  sqlite:
    path: %s

telemetry:
  logging:
    level: warn
    format: text
`, dbPath)
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfgFile = cfgPath
	resetCheckFlags()
	checkFlags.contextFile = "testdata/context-discrepant.json"
	checkFlags.lcReference = "LC-2024-001"
	checkFlags.checkedBy = "j.smith"

	err := checkPresentation(nil, []string{})
	if err == nil {
		t.Fatal("checkPresentation() with discrepant context should return error")
	}
	if code := cli.ExitCode(err); code != cli.ExitFindings {
		t.Fatalf("checkPresentation() exit code = %d, want %d", code, cli.ExitFindings)
	}

	// The recorder drains on close, so the run is persisted by the time
	// checkPresentation returns.
	st, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{Path: dbPath})
	if err != nil {
		t.Fatalf("failed to open audit storage: %v", err)
	}

	q := &audit.Query{}
	query.ApplyDefaults(q)
	records, err := st.Query(context.Background(), q)
	st.Close()
	if err != nil {
		t.Fatalf("failed to query audit storage: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("audit storage holds %d record(s), want 1", len(records))
	}

	rec := records[0]
	if rec.Outcome != audit.OutcomeDiscrepant {
		t.Errorf("recorded outcome = %q, want %q", rec.Outcome, audit.OutcomeDiscrepant)
	}
	if rec.IssueCount != 2 {
		t.Errorf("recorded issue count = %d, want 2", rec.IssueCount)
	}
	if rec.LCReference != "LC-2024-001" {
		t.Errorf("recorded LC reference = %q, want %q", rec.LCReference, "LC-2024-001")
	}
	if rec.CheckedBy != "j.smith" {
		t.Errorf("recorded checker = %q, want %q", rec.CheckedBy, "j.smith")
	}

	// Query the run back through the history command.
	resetHistoryFlags()
	historyFlags.outcome = "discrepant"
	if err := queryHistory(nil, []string{}); err != nil {
		t.Errorf("queryHistory() returned error: %v", err)
	}

	// Export it to a JSON file.
	resetHistoryFlags()
	exportFile := filepath.Join(tmpDir, "runs.json")
	historyFlags.exportOutput = exportFile
	if err := exportHistory(nil, []string{}); err != nil {
		t.Fatalf("exportHistory() returned error: %v", err)
	}

	data, err := os.ReadFile(exportFile)
	if err != nil {
		t.Fatalf("failed to read export file: %v", err)
	}
	var exported []map[string]any
	if err := json.Unmarshal(data, &exported); err != nil {
		t.Fatalf("export is not a JSON array: %v", err)
	}
	if len(exported) != 1 {
		t.Errorf("export holds %d record(s), want 1", len(exported))
	}
}
