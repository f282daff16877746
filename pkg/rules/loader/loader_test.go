package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mercator-hq/saturn/pkg/crl/parser"
)

const validFlatRulebook = `
- id: UCP600-14D-GOODS
  name: Goods description consistency
  category: UCP600
  severity: CRITICAL
  requires_fields: [lc.goods_description, invoice.goods_description]
  conditions:
    - field: invoice.goods_description
      operator: similar_to
      compare_field: lc.goods_description
      threshold: 0.7
  action:
    title: Goods description mismatch
    message: The invoice describes the goods differently from the credit.
`

const validGroupedRulebook = `
id: ucp600-core
name: UCP 600 core checks
version: "1.0.0"
category: UCP600
rules:
  - id: UCP600-18B-AMOUNT
    severity: CRITICAL
    conditions:
      - field: invoice.amount
        operator: lte
        compare_field: lc.amount.value
    action:
      title: Invoice exceeds credit amount
      message: Invoice amount is above the available credit.
`

func writeRulebook(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestLoader(t *testing.T) *FileLoader {
	t.Helper()
	return NewFileLoader(DefaultConfig(), parser.NewParser(), nil)
}

func TestFileLoader_LoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeRulebook(t, tmpDir, "rules.yaml", validFlatRulebook)

	loader := newTestLoader(t)
	rs, err := loader.LoadFile(path)

	if err != nil {
		t.Fatalf("LoadFile() error = %v, want nil", err)
	}

	if len(rs.Rules) != 1 {
		t.Fatalf("len(Rules) = %d, want 1", len(rs.Rules))
	}
	if rs.Rules[0].ID != "UCP600-14D-GOODS" {
		t.Errorf("rule id = %q, want %q", rs.Rules[0].ID, "UCP600-14D-GOODS")
	}
	if rs.SourceFile != path {
		t.Errorf("rs.SourceFile = %q, want %q", rs.SourceFile, path)
	}
}

func TestFileLoader_LoadFile_NotFound(t *testing.T) {
	loader := newTestLoader(t)

	_, err := loader.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))

	if err == nil {
		t.Fatal("LoadFile(missing) error = nil, want error")
	}

	var srcErr *SourceError
	if !errors.As(err, &srcErr) {
		t.Fatalf("error type = %T, want *SourceError", err)
	}
	if !strings.Contains(srcErr.Message, "file not found") {
		t.Errorf("error message = %q, want to contain 'file not found'", srcErr.Message)
	}
}

func TestFileLoader_LoadFile_TooLarge(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeRulebook(t, tmpDir, "rules.yaml", validFlatRulebook)

	config := DefaultConfig()
	config.MaxFileSize = 10

	loader := NewFileLoader(config, parser.NewParser(), nil)
	_, err := loader.LoadFile(path)

	if err == nil {
		t.Fatal("LoadFile(oversized) error = nil, want error")
	}
	if !strings.Contains(err.Error(), "exceeds maximum") {
		t.Errorf("error = %v, want to mention size limit", err)
	}
}

func TestFileLoader_LoadFile_InvalidUTF8(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "rules.yaml")
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 0x00, 0x01}, 0o644); err != nil {
		t.Fatal(err)
	}

	loader := newTestLoader(t)
	_, err := loader.LoadFile(path)

	if err == nil {
		t.Fatal("LoadFile(invalid UTF-8) error = nil, want error")
	}
	if !strings.Contains(err.Error(), "UTF-8") {
		t.Errorf("error = %v, want to mention UTF-8", err)
	}
}

func TestFileLoader_LoadFile_MalformedYAML(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeRulebook(t, tmpDir, "rules.yaml", "- id: broken\n  conditions: [unclosed\n")

	loader := newTestLoader(t)
	_, err := loader.LoadFile(path)

	if err == nil {
		t.Fatal("LoadFile(malformed) error = nil, want error")
	}

	var srcErr *SourceError
	if !errors.As(err, &srcErr) {
		t.Fatalf("error type = %T, want *SourceError", err)
	}
	if srcErr.Message != "parsing failed" {
		t.Errorf("error message = %q, want %q", srcErr.Message, "parsing failed")
	}
}

func TestFileLoader_LoadDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	writeRulebook(t, tmpDir, "10-flat.yaml", validFlatRulebook)
	writeRulebook(t, tmpDir, "20-grouped.yaml", validGroupedRulebook)

	loader := newTestLoader(t)
	rulesets, err := loader.LoadDirectory(tmpDir)

	if err != nil {
		t.Fatalf("LoadDirectory() error = %v, want nil", err)
	}

	if len(rulesets) != 2 {
		t.Fatalf("len(rulesets) = %d, want 2", len(rulesets))
	}

	// Lexical order: 10-flat.yaml before 20-grouped.yaml
	if rulesets[0].Rules[0].ID != "UCP600-14D-GOODS" {
		t.Errorf("first rulebook rule = %q, want UCP600-14D-GOODS", rulesets[0].Rules[0].ID)
	}
	if rulesets[1].ID != "ucp600-core" {
		t.Errorf("second rulebook id = %q, want ucp600-core", rulesets[1].ID)
	}
}

func TestFileLoader_LoadDirectory_Recursive(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "ucp600")
	if err := os.MkdirAll(subDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeRulebook(t, subDir, "core.yaml", validFlatRulebook)

	loader := newTestLoader(t)
	rulesets, err := loader.LoadDirectory(tmpDir)

	if err != nil {
		t.Fatalf("LoadDirectory() error = %v, want nil", err)
	}
	if len(rulesets) != 1 {
		t.Errorf("len(rulesets) = %d, want 1 from subdirectory", len(rulesets))
	}
}

func TestFileLoader_LoadDirectory_Empty(t *testing.T) {
	loader := newTestLoader(t)

	_, err := loader.LoadDirectory(t.TempDir())

	if err == nil {
		t.Fatal("LoadDirectory(empty) error = nil, want error")
	}
	if !strings.Contains(err.Error(), "no rulebook files found") {
		t.Errorf("error = %v, want to mention no rulebook files", err)
	}
}

func TestFileLoader_LoadDirectory_PartialSuccess(t *testing.T) {
	tmpDir := t.TempDir()
	writeRulebook(t, tmpDir, "good.yaml", validFlatRulebook)
	writeRulebook(t, tmpDir, "bad.yaml", "{{{{ not yaml")

	loader := newTestLoader(t)
	rulesets, err := loader.LoadDirectory(tmpDir)

	// Partial success returns both the loaded rulebooks and the errors
	if err == nil {
		t.Fatal("LoadDirectory(partial) error = nil, want error list")
	}
	if len(rulesets) != 1 {
		t.Fatalf("len(rulesets) = %d, want 1 despite one bad file", len(rulesets))
	}

	errList, ok := err.(*ErrorList)
	if !ok {
		// A single failure comes back as the bare SourceError
		var srcErr *SourceError
		if !errors.As(err, &srcErr) {
			t.Fatalf("error type = %T, want *ErrorList or *SourceError", err)
		}
		return
	}
	if len(errList.Errors) != 1 {
		t.Errorf("len(errList.Errors) = %d, want 1", len(errList.Errors))
	}
}

func TestFileLoader_LoadDirectory_AllFailed(t *testing.T) {
	tmpDir := t.TempDir()
	writeRulebook(t, tmpDir, "bad1.yaml", "{{{{ not yaml")
	writeRulebook(t, tmpDir, "bad2.yaml", ": also broken\n\t- x")

	loader := newTestLoader(t)
	rulesets, err := loader.LoadDirectory(tmpDir)

	if err == nil {
		t.Fatal("LoadDirectory(all bad) error = nil, want error")
	}
	if rulesets != nil {
		t.Errorf("rulesets = %v, want nil when every file failed", rulesets)
	}
}

func TestFileLoader_LoadDirectory_SkipsHiddenAndForeign(t *testing.T) {
	tmpDir := t.TempDir()
	writeRulebook(t, tmpDir, "rules.yaml", validFlatRulebook)
	writeRulebook(t, tmpDir, ".hidden.yaml", "{{{{ would fail if loaded")
	writeRulebook(t, tmpDir, "notes.txt", "not a rulebook")

	hiddenDir := filepath.Join(tmpDir, ".git")
	if err := os.MkdirAll(hiddenDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeRulebook(t, hiddenDir, "config.yaml", "{{{{ would fail if loaded")

	loader := newTestLoader(t)
	rulesets, err := loader.LoadDirectory(tmpDir)

	if err != nil {
		t.Fatalf("LoadDirectory() error = %v, want nil", err)
	}
	if len(rulesets) != 1 {
		t.Errorf("len(rulesets) = %d, want 1 (hidden and non-yaml skipped)", len(rulesets))
	}
}

func TestFileLoader_IsDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeRulebook(t, tmpDir, "rules.yaml", validFlatRulebook)

	loader := newTestLoader(t)

	isDir, err := loader.IsDirectory(tmpDir)
	if err != nil {
		t.Fatalf("IsDirectory(dir) error = %v, want nil", err)
	}
	if !isDir {
		t.Error("IsDirectory(dir) = false, want true")
	}

	isDir, err = loader.IsDirectory(path)
	if err != nil {
		t.Fatalf("IsDirectory(file) error = %v, want nil", err)
	}
	if isDir {
		t.Error("IsDirectory(file) = true, want false")
	}
}

func TestFileLoader_HasValidExtension(t *testing.T) {
	loader := newTestLoader(t)

	tests := []struct {
		path  string
		valid bool
	}{
		{"rules.yaml", true},
		{"rules.yml", true},
		{"rules.YAML", true},
		{"rules.json", false},
		{"rules", false},
	}

	for _, tt := range tests {
		if got := loader.hasValidExtension(tt.path); got != tt.valid {
			t.Errorf("hasValidExtension(%q) = %v, want %v", tt.path, got, tt.valid)
		}
	}
}
