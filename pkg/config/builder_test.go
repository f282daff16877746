package config

import "time"

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts with default values and allows selective overrides.
type ConfigBuilder struct {
	cfg Config
}

// NewTestConfig creates a new ConfigBuilder with sensible defaults for testing.
// The resulting configuration is valid and can be used immediately.
func NewTestConfig() *ConfigBuilder {
	cfg := Config{}
	ApplyDefaults(&cfg)

	// Enable the audit trail for tests; defaults leave the flag alone.
	cfg.Audit.Enabled = true

	return &ConfigBuilder{cfg: cfg}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return &b.cfg
}

// WithRulebookPaths sets the rulebook search paths.
func (b *ConfigBuilder) WithRulebookPaths(paths ...string) *ConfigBuilder {
	b.cfg.Rules.Paths = paths
	return b
}

// WithWatch sets whether rulebook files are watched for changes.
func (b *ConfigBuilder) WithWatch(watch bool) *ConfigBuilder {
	b.cfg.Rules.Watch = watch
	return b
}

// WithStrictParse sets whether unknown rulebook fields are rejected.
func (b *ConfigBuilder) WithStrictParse(strict bool) *ConfigBuilder {
	b.cfg.Rules.StrictParse = strict
	return b
}

// WithGitRepository enables the git source for the given clone URL.
func (b *ConfigBuilder) WithGitRepository(repo string) *ConfigBuilder {
	b.cfg.Rules.Git.Enabled = true
	b.cfg.Rules.Git.Repository = repo
	if b.cfg.Rules.Git.Branch == "" {
		b.cfg.Rules.Git.Branch = DefaultGitBranch
	}
	if b.cfg.Rules.Git.Auth.Type == "" {
		b.cfg.Rules.Git.Auth.Type = DefaultGitAuthType
	}
	return b
}

// WithGitToken sets token authentication for the git source.
func (b *ConfigBuilder) WithGitToken(token string) *ConfigBuilder {
	b.cfg.Rules.Git.Auth.Type = "token"
	b.cfg.Rules.Git.Auth.Token = token
	return b
}

// WithGitPoll sets git polling parameters.
func (b *ConfigBuilder) WithGitPoll(interval, timeout time.Duration) *ConfigBuilder {
	b.cfg.Rules.Git.Poll.Enabled = true
	b.cfg.Rules.Git.Poll.Interval = interval
	b.cfg.Rules.Git.Poll.Timeout = timeout
	return b
}

// WithStore enables the rule record store at the given database path.
func (b *ConfigBuilder) WithStore(path string) *ConfigBuilder {
	b.cfg.Rules.Store.Enabled = true
	b.cfg.Rules.Store.SQLite.Path = path
	return b
}

// WithSimilarityThreshold sets the engine's default similarity threshold.
func (b *ConfigBuilder) WithSimilarityThreshold(threshold float64) *ConfigBuilder {
	b.cfg.Engine.DefaultSimilarityThreshold = threshold
	return b
}

// WithAuditEnabled sets whether audit recording is enabled.
func (b *ConfigBuilder) WithAuditEnabled(enabled bool) *ConfigBuilder {
	b.cfg.Audit.Enabled = enabled
	return b
}

// WithAuditBackend sets the audit storage backend.
func (b *ConfigBuilder) WithAuditBackend(backend string) *ConfigBuilder {
	b.cfg.Audit.Backend = backend
	return b
}

// WithAuditSQLitePath sets the audit database path and selects the
// sqlite backend.
func (b *ConfigBuilder) WithAuditSQLitePath(path string) *ConfigBuilder {
	b.cfg.Audit.Backend = "sqlite"
	b.cfg.Audit.SQLite.Path = path
	return b
}

// WithRetentionDays sets the audit retention window.
func (b *ConfigBuilder) WithRetentionDays(days int) *ConfigBuilder {
	b.cfg.Audit.Retention.Days = days
	return b
}

// WithLoggingLevel sets the logging level.
func (b *ConfigBuilder) WithLoggingLevel(level string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Level = level
	return b
}

// WithLoggingFormat sets the logging format.
func (b *ConfigBuilder) WithLoggingFormat(format string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Format = format
	return b
}

// WithMetricsEnabled sets whether metrics are enabled.
func (b *ConfigBuilder) WithMetricsEnabled(enabled bool) *ConfigBuilder {
	b.cfg.Telemetry.Metrics.Enabled = enabled
	return b
}

// WithMetricsPort sets the dedicated metrics listener port.
func (b *ConfigBuilder) WithMetricsPort(port int) *ConfigBuilder {
	b.cfg.Telemetry.Metrics.Port = port
	return b
}

// WithTracing enables tracing against the given OTLP collector endpoint.
func (b *ConfigBuilder) WithTracing(endpoint string) *ConfigBuilder {
	b.cfg.Telemetry.Tracing.Enabled = true
	b.cfg.Telemetry.Tracing.Endpoint = endpoint
	return b
}

// MinimalConfig returns a minimal valid configuration for testing.
// This is useful for tests that don't care about most configuration values.
func MinimalConfig() *Config {
	return NewTestConfig().Build()
}
