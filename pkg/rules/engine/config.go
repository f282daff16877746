package engine

import "fmt"

// Config contains configuration for the rule execution engine.
type Config struct {
	// DefaultSimilarityThreshold is the minimum token-set similarity score
	// for similar_to conditions that do not set their own threshold.
	// Default: 0.8.
	DefaultSimilarityThreshold float64

	// MaxRegexLength caps the length of matches patterns before
	// compilation. Rule definitions can originate from a semi-trusted
	// record store, so oversized patterns are rejected rather than
	// compiled. Zero disables the cap.
	// Default: 512.
	MaxRegexLength int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultSimilarityThreshold: 0.8,
		MaxRegexLength:             512,
	}
}

// Validate validates the engine configuration.
func (c *Config) Validate() error {
	if c.DefaultSimilarityThreshold < 0 || c.DefaultSimilarityThreshold > 1 {
		return fmt.Errorf("%w: similarity threshold %v outside [0, 1]", ErrInvalidConfig, c.DefaultSimilarityThreshold)
	}
	if c.MaxRegexLength < 0 {
		return fmt.Errorf("%w: max regex length must not be negative", ErrInvalidConfig)
	}
	return nil
}

// WithSimilarityThreshold sets the default similarity threshold.
func (c *Config) WithSimilarityThreshold(threshold float64) *Config {
	c.DefaultSimilarityThreshold = threshold
	return c
}

// WithMaxRegexLength sets the matches pattern length cap.
func (c *Config) WithMaxRegexLength(length int) *Config {
	c.MaxRegexLength = length
	return c
}
