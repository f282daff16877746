package loader

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"mercator-hq/saturn/pkg/crl/ast"
	"mercator-hq/saturn/pkg/crl/parser"
)

// FileLoader reads rulebooks from the file system.
// It supports single files and directory trees, with per-file size and
// encoding checks before parsing.
type FileLoader struct {
	config *Config
	parser *parser.Parser
	logger *slog.Logger
}

// NewFileLoader creates a new file loader with the given configuration.
func NewFileLoader(config *Config, p *parser.Parser, logger *slog.Logger) *FileLoader {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileLoader{
		config: config,
		parser: p,
		logger: logger,
	}
}

// LoadFile loads a single rulebook file from the given path.
// It performs file size validation, UTF-8 validation, and YAML parsing.
func (l *FileLoader) LoadFile(path string) (*ast.RuleSet, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &SourceError{
				Path:    path,
				Message: "file not found",
				Cause:   err,
			}
		}
		if os.IsPermission(err) {
			return nil, &SourceError{
				Path:    path,
				Message: "permission denied",
				Cause:   err,
			}
		}
		return nil, &SourceError{
			Path:    path,
			Message: "failed to access file",
			Cause:   err,
		}
	}

	if !fileInfo.Mode().IsRegular() {
		return nil, &SourceError{
			Path:    path,
			Message: "not a regular file",
		}
	}

	if fileInfo.Size() > l.config.MaxFileSize {
		return nil, &SourceError{
			Path:    path,
			Message: fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", fileInfo.Size(), l.config.MaxFileSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &SourceError{
			Path:    path,
			Message: "failed to read file",
			Cause:   err,
		}
	}

	if !utf8.Valid(data) {
		return nil, &SourceError{
			Path:    path,
			Message: "file contains invalid UTF-8 encoding",
		}
	}

	rs, err := l.parser.ParseBytes(data, path)
	if err != nil {
		return nil, &SourceError{
			Path:    path,
			Message: "parsing failed",
			Cause:   err,
		}
	}

	return rs, nil
}

// LoadDirectory loads all rulebook files from the given directory
// recursively. It returns the successfully loaded rulebooks and any errors
// encountered; a partial result carries both.
func (l *FileLoader) LoadDirectory(dir string) ([]*ast.RuleSet, error) {
	fileInfo, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &SourceError{
				Path:    dir,
				Message: "directory not found",
				Cause:   err,
			}
		}
		return nil, &SourceError{
			Path:    dir,
			Message: "failed to access directory",
			Cause:   err,
		}
	}

	if !fileInfo.IsDir() {
		return nil, &SourceError{
			Path:    dir,
			Message: "not a directory",
		}
	}

	ruleFiles, err := l.collectRuleFiles(dir)
	if err != nil {
		return nil, err
	}

	if len(ruleFiles) == 0 {
		return nil, &SourceError{
			Path:    dir,
			Message: "no rulebook files found in directory",
		}
	}

	var rulesets []*ast.RuleSet
	errList := &ErrorList{}

	for _, filePath := range ruleFiles {
		rs, err := l.LoadFile(filePath)
		if err != nil {
			errList.Add(err)
			continue
		}
		rulesets = append(rulesets, rs)
	}

	// All files failed
	if len(rulesets) == 0 && errList.HasErrors() {
		return nil, errList
	}

	// Partial success carries both the rulebooks and the errors
	if errList.HasErrors() {
		return rulesets, errList
	}

	return rulesets, nil
}

// IsDirectory reports whether the given path is a directory.
func (l *FileLoader) IsDirectory(path string) (bool, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return fileInfo.IsDir(), nil
}

// collectRuleFiles collects all rulebook file paths under dir in lexical
// walk order, so load order is deterministic. It filters by extension,
// skips hidden entries, and guards against symlink loops.
func (l *FileLoader) collectRuleFiles(dir string) ([]string, error) {
	var ruleFiles []string
	visited := make(map[string]bool)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if l.config.SkipHidden && strings.HasPrefix(d.Name(), ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			if !l.config.FollowSymlinks {
				return nil
			}

			realPath, err := filepath.EvalSymlinks(path)
			if err != nil {
				return &SourceError{
					Path:    path,
					Message: "failed to resolve symlink",
					Cause:   err,
				}
			}

			if visited[realPath] {
				return &SourceError{
					Path:    path,
					Message: "symlink loop detected",
				}
			}
			visited[realPath] = true

			if !l.hasValidExtension(realPath) {
				return nil
			}

			ruleFiles = append(ruleFiles, path)
			return nil
		}

		if !l.hasValidExtension(path) {
			return nil
		}

		ruleFiles = append(ruleFiles, path)
		return nil
	})
	if err != nil {
		if _, ok := err.(*SourceError); ok {
			return nil, err
		}
		return nil, &SourceError{
			Path:    dir,
			Message: "directory walk failed",
			Cause:   err,
		}
	}

	return ruleFiles, nil
}

// hasValidExtension checks whether the path carries a rulebook extension.
func (l *FileLoader) hasValidExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, validExt := range l.config.AllowedExtensions {
		if ext == strings.ToLower(validExt) {
			return true
		}
	}
	return false
}
