package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"mercator-hq/saturn/pkg/cli"
)

func resetCheckFlags() {
	checkFlags.contextFile = ""
	checkFlags.lcReference = ""
	checkFlags.checkedBy = ""
	checkFlags.categories = nil
	checkFlags.format = "text"
	checkFlags.output = ""
	checkFlags.noAudit = false
}

func TestCheckPresentationCompliant(t *testing.T) {
	cfgFile = "testdata/saturn.yaml"
	resetCheckFlags()
	checkFlags.contextFile = "testdata/context-compliant.json"

	err := checkPresentation(nil, []string{})
	if err != nil {
		t.Errorf("checkPresentation() with compliant context returned error: %v", err)
	}
}

func TestCheckPresentationDiscrepant(t *testing.T) {
	cfgFile = "testdata/saturn.yaml"
	resetCheckFlags()
	checkFlags.contextFile = "testdata/context-discrepant.json"

	err := checkPresentation(nil, []string{})
	if err == nil {
		t.Fatal("checkPresentation() with discrepant context should return error")
	}
	if code := cli.ExitCode(err); code != cli.ExitFindings {
		t.Errorf("checkPresentation() exit code = %d, want %d", code, cli.ExitFindings)
	}
}

func TestCheckPresentationCategoryFilter(t *testing.T) {
	// The discrepant context fails cross-document and UCP 600 rules but
	// carries a valid LC number, so restricting the run to extraction
	// rules makes it compliant.
	cfgFile = "testdata/saturn.yaml"
	resetCheckFlags()
	checkFlags.contextFile = "testdata/context-discrepant.json"
	checkFlags.categories = []string{"EXTRACTION"}

	err := checkPresentation(nil, []string{})
	if err != nil {
		t.Errorf("checkPresentation() restricted to EXTRACTION returned error: %v", err)
	}
}

func TestCheckPresentationUnknownCategory(t *testing.T) {
	cfgFile = "testdata/saturn.yaml"
	resetCheckFlags()
	checkFlags.contextFile = "testdata/context-compliant.json"
	checkFlags.categories = []string{"NOT_A_CATEGORY"}

	err := checkPresentation(nil, []string{})
	if err == nil {
		t.Error("checkPresentation() with unknown category should return error")
	}
}

func TestCheckPresentationMissingContextFile(t *testing.T) {
	cfgFile = "testdata/saturn.yaml"
	resetCheckFlags()
	checkFlags.contextFile = "testdata/nonexistent.json"

	err := checkPresentation(nil, []string{})
	if err == nil {
		t.Error("checkPresentation() with missing context file should return error")
	}
}

func TestCheckPresentationMalformedContext(t *testing.T) {
	tmpDir := t.TempDir()
	badContext := filepath.Join(tmpDir, "bad.json")
	if err := os.WriteFile(badContext, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	cfgFile = "testdata/saturn.yaml"
	resetCheckFlags()
	checkFlags.contextFile = badContext

	err := checkPresentation(nil, []string{})
	if err == nil {
		t.Error("checkPresentation() with malformed context should return error")
	}
}

func TestCheckPresentationJSONReport(t *testing.T) {
	tmpDir := t.TempDir()
	reportFile := filepath.Join(tmpDir, "report.json")

	cfgFile = "testdata/saturn.yaml"
	resetCheckFlags()
	checkFlags.contextFile = "testdata/context-compliant.json"
	checkFlags.format = "json"
	checkFlags.output = reportFile

	if err := checkPresentation(nil, []string{}); err != nil {
		t.Fatalf("checkPresentation() with JSON report returned error: %v", err)
	}

	data, err := os.ReadFile(reportFile)
	if err != nil {
		t.Fatalf("failed to read report file: %v", err)
	}

	var report struct {
		ValidationID   string `json:"validation_id"`
		CatalogVersion string `json:"catalog_version"`
		Outcome        string `json:"outcome"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if report.Outcome != "compliant" {
		t.Errorf("report outcome = %q, want %q", report.Outcome, "compliant")
	}
	if report.ValidationID == "" {
		t.Error("report validation_id should not be empty")
	}
	if report.CatalogVersion == "" {
		t.Error("report catalog_version should not be empty")
	}
}
