package loader

import "fmt"

// Config controls where rulebooks are read from and how files are vetted
// before parsing.
type Config struct {
	// Paths lists rulebook files and directories to load, in order.
	// Directories are walked recursively. May be empty for a store-only
	// catalog.
	Paths []string

	// MaxFileSize is the maximum rulebook file size in bytes.
	// Default: 5MB
	MaxFileSize int64

	// AllowedExtensions is the list of rulebook file extensions.
	// Default: [".yaml", ".yml"]
	AllowedExtensions []string

	// FollowSymlinks controls whether directory walks follow symbolic links.
	// Default: true
	FollowSymlinks bool

	// SkipHidden controls whether hidden files and directories are skipped.
	// Default: true
	SkipHidden bool

	// Bootstrap writes the built-in default rulebook into the first
	// configured directory when no rulebook exists there yet.
	// Default: true
	Bootstrap bool

	// StrictParse rejects rulebook fields outside the documented schema.
	// Default: false
	StrictParse bool

	// ValidateRules runs the semantic validator on every parsed rulebook.
	// A rulebook that fails validation is skipped like a parse failure.
	// Default: true
	ValidateRules bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		MaxFileSize:       5 * 1024 * 1024, // 5MB
		AllowedExtensions: []string{".yaml", ".yml"},
		FollowSymlinks:    true,
		SkipHidden:        true,
		Bootstrap:         true,
		ValidateRules:     true,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("%w: max file size must be positive, got %d", ErrInvalidConfig, c.MaxFileSize)
	}
	if len(c.AllowedExtensions) == 0 {
		return fmt.Errorf("%w: at least one allowed extension is required", ErrInvalidConfig)
	}
	return nil
}
