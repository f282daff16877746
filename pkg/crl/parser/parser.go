package parser

import (
	"fmt"
	"os"
	"unicode/utf8"

	"mercator-hq/saturn/pkg/crl/ast"
	crlErrors "mercator-hq/saturn/pkg/crl/errors"
)

// Parser parses CRL rulebook files into Abstract Syntax Trees.
// It handles YAML parsing, AST construction, and basic structural checks;
// deeper semantic checks belong to the validator.
type Parser struct {
	maxFileSize int64 // Maximum file size in bytes (default: 5MB)
	strictMode  bool  // Reject unknown YAML fields
}

// NewParser creates a new parser with default configuration.
func NewParser() *Parser {
	return &Parser{
		maxFileSize: 5 * 1024 * 1024, // 5MB
		strictMode:  false,
	}
}

// WithMaxFileSize sets the maximum file size limit.
func (p *Parser) WithMaxFileSize(size int64) *Parser {
	p.maxFileSize = size
	return p
}

// WithStrictMode enables strict decoding: rulebook fields outside the
// documented schema become syntax errors instead of being ignored.
func (p *Parser) WithStrictMode(strict bool) *Parser {
	p.strictMode = strict
	return p
}

// ParseFile parses a rulebook file at the given path and returns the AST.
// It returns an error if the file cannot be read, is not valid UTF-8, has
// invalid YAML syntax, or contains structural errors.
func (p *Parser) ParseFile(path string) (*ast.RuleSet, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, &crlErrors.Error{
			Type:    crlErrors.ErrorTypeIO,
			Message: fmt.Sprintf("Failed to access file: %v", err),
			Location: ast.Location{
				File: path,
			},
		}
	}

	if fileInfo.Size() > p.maxFileSize {
		return nil, &crlErrors.Error{
			Type:    crlErrors.ErrorTypeIO,
			Message: fmt.Sprintf("File size %d exceeds maximum %d bytes", fileInfo.Size(), p.maxFileSize),
			Location: ast.Location{
				File: path,
			},
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &crlErrors.Error{
			Type:    crlErrors.ErrorTypeIO,
			Message: fmt.Sprintf("Failed to read file: %v", err),
			Location: ast.Location{
				File: path,
			},
		}
	}

	return p.ParseBytes(data, path)
}

// ParseBytes parses rulebook YAML from a byte slice.
// This is used for testing and for sources that are not files, such as a
// git worktree blob.
func (p *Parser) ParseBytes(data []byte, sourcePath string) (*ast.RuleSet, error) {
	if int64(len(data)) > p.maxFileSize {
		return nil, &crlErrors.Error{
			Type:    crlErrors.ErrorTypeIO,
			Message: fmt.Sprintf("Data size %d exceeds maximum %d bytes", len(data), p.maxFileSize),
			Location: ast.Location{
				File: sourcePath,
			},
		}
	}

	if !utf8.Valid(data) {
		return nil, &crlErrors.Error{
			Type:    crlErrors.ErrorTypeIO,
			Message: "File is not valid UTF-8",
			Location: ast.Location{
				File: sourcePath,
			},
		}
	}

	book, err := parseYAMLBytes(data, sourcePath, p.strictMode)
	if err != nil {
		return nil, &crlErrors.Error{
			Type:    crlErrors.ErrorTypeSyntax,
			Message: fmt.Sprintf("YAML parsing failed: %v", err),
			Location: ast.Location{
				File:   sourcePath,
				Line:   1,
				Column: 1,
			},
			Suggestion: "Check YAML syntax (indentation, colons, quotes)",
		}
	}

	builder := newBuilder(sourcePath)
	rs, err := builder.buildRuleSet(book)
	if err != nil {
		// Add context to errors
		if errList, ok := err.(*crlErrors.ErrorList); ok {
			for i, e := range errList.Errors {
				errList.Errors[i] = crlErrors.AddContextToError(e)
			}
		}
		return nil, err
	}

	return rs, nil
}
