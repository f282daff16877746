package config

import "time"

// Config is the root configuration structure for Mercator Saturn.
// It contains all configuration sections for the rule catalog, the
// validation engine, the audit trail, and telemetry.
type Config struct {
	// Rules contains configuration for rule catalog assembly including
	// rulebook file sources, the persisted record store, and the
	// optional git source.
	Rules RulesConfig `yaml:"rules"`

	// Engine contains configuration for rule evaluation behavior.
	Engine EngineConfig `yaml:"engine"`

	// Audit contains configuration for validation run recording,
	// retention, and export.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry contains configuration for observability including
	// logging, metrics, tracing and health probes.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// RulesConfig contains configuration for where rules come from and how
// rulebook files are vetted before parsing.
type RulesConfig struct {
	// Paths lists rulebook files and directories to load, in order.
	// Directories are walked recursively.
	// Default: ["./rulebooks"]
	Paths []string `yaml:"paths"`

	// MaxFileSize is the maximum rulebook file size in bytes.
	// Default: 5242880 (5MB)
	MaxFileSize int64 `yaml:"max_file_size"`

	// AllowedExtensions lists accepted rulebook file extensions.
	// Default: [".yaml", ".yml"]
	AllowedExtensions []string `yaml:"allowed_extensions"`

	// FollowSymlinks controls whether directory walks follow symbolic links.
	// Default: true
	FollowSymlinks bool `yaml:"follow_symlinks"`

	// SkipHidden controls whether hidden files and directories are skipped.
	// Default: true
	SkipHidden bool `yaml:"skip_hidden"`

	// Bootstrap writes the built-in default rulebook into the first
	// configured directory when no rulebook exists there yet.
	// Default: true
	Bootstrap bool `yaml:"bootstrap"`

	// StrictParse rejects rulebook fields outside the documented schema.
	// Default: false
	StrictParse bool `yaml:"strict_parse"`

	// ValidateRules runs the semantic validator on every parsed rulebook.
	// Default: true
	ValidateRules bool `yaml:"validate_rules"`

	// Watch reloads the catalog when a rulebook file changes on disk.
	// Default: false
	Watch bool `yaml:"watch"`

	// Git contains configuration for the git rulebook source.
	Git GitConfig `yaml:"git"`

	// Store contains configuration for the persisted rule record store.
	Store StoreConfig `yaml:"store"`
}

// GitConfig contains configuration for loading rulebooks from a git
// repository.
type GitConfig struct {
	// Enabled turns the git source on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Repository is the clone URL (HTTPS or SSH).
	// Example: "https://github.com/acme/rulebooks.git"
	Repository string `yaml:"repository"`

	// Branch to track.
	// Default: "main"
	Branch string `yaml:"branch"`

	// Path within the repository holding rulebook files.
	// Default: "" (repository root)
	Path string `yaml:"path"`

	// Auth configures authentication against the remote.
	Auth GitAuthConfig `yaml:"auth"`

	// Poll configures remote change detection.
	Poll GitPollConfig `yaml:"poll"`

	// Clone configures the local checkout.
	Clone GitCloneConfig `yaml:"clone"`
}

// GitAuthConfig contains git authentication settings.
type GitAuthConfig struct {
	// Type selects the method: "token", "basic", "ssh" or "none".
	// Default: "none"
	Type string `yaml:"type"`

	// Token for HTTPS token authentication.
	// Required when Type is "token".
	Token string `yaml:"token"`

	// Username and Password for HTTPS basic authentication.
	// Username is required when Type is "basic".
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// SSHKeyPath points at the private key file.
	// Required when Type is "ssh".
	SSHKeyPath string `yaml:"ssh_key_path"`

	// SSHKeyPassphrase for encrypted keys.
	SSHKeyPassphrase string `yaml:"ssh_key_passphrase"`
}

// GitPollConfig configures how the git remote is checked for new commits.
type GitPollConfig struct {
	// Enabled turns polling on. When false the repository is cloned
	// once and never refreshed.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Interval between polls.
	// Default: 30s
	Interval time.Duration `yaml:"interval"`

	// Timeout for individual git operations.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// GitCloneConfig configures the local git checkout.
type GitCloneConfig struct {
	// Depth for shallow clones. Larger depths allow rolling back
	// further but fetch more history.
	// Default: 1
	Depth int `yaml:"depth"`

	// LocalPath where the repository is checked out.
	// Default: a directory under the system temp directory
	LocalPath string `yaml:"local_path"`

	// CleanOnStart removes the checkout before cloning.
	// Default: false
	CleanOnStart bool `yaml:"clean_on_start"`
}

// StoreConfig contains configuration for the persisted rule record store.
type StoreConfig struct {
	// Enabled turns on loading of persisted rule records into the catalog.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// SQLite configures the record database.
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// SQLiteConfig contains SQLite database settings. The same shape serves
// the rule record store and the audit trail, with different connection
// defaults.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open connections.
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long a connection waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// EngineConfig contains configuration for rule evaluation.
type EngineConfig struct {
	// DefaultSimilarityThreshold applies to similarity conditions that
	// do not name their own threshold. Must be between 0.0 and 1.0.
	// Default: 0.8
	DefaultSimilarityThreshold float64 `yaml:"default_similarity_threshold"`

	// MaxRegexLength caps the length of rule regex patterns before
	// compilation.
	// Default: 512
	MaxRegexLength int `yaml:"max_regex_length"`
}

// AuditConfig contains configuration for the validation audit trail.
type AuditConfig struct {
	// Enabled turns audit recording on.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend: "sqlite" or "memory".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite configures the audit database when Backend is "sqlite".
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Recorder configures how validation runs are captured.
	Recorder RecorderConfig `yaml:"recorder"`

	// Retention configures pruning of old audit records.
	Retention RetentionConfig `yaml:"retention"`

	// Query configures audit history queries.
	Query QueryConfig `yaml:"query"`

	// Export configures audit record export.
	Export ExportConfig `yaml:"export"`
}

// RecorderConfig contains configuration for validation run capture.
type RecorderConfig struct {
	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout bounds both the enqueue wait when the buffer is full
	// and each storage write.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// HashContext enables hashing of evaluation context fields so a
	// record proves what was checked without storing raw document
	// values.
	// Default: true
	HashContext bool `yaml:"hash_context"`

	// MaxFieldLength is the maximum length for issue text fields before
	// truncation.
	// Default: 500
	MaxFieldLength int `yaml:"max_field_length"`
}

// RetentionConfig contains configuration for audit record retention.
type RetentionConfig struct {
	// Days is how long audit records are kept. Zero disables age-based
	// pruning.
	// Default: 90
	Days int `yaml:"days"`

	// PruneSchedule is a cron expression for the prune job.
	// Default: "0 3 * * *" (daily at 3am)
	PruneSchedule string `yaml:"prune_schedule"`

	// ArchiveBeforeDelete exports records to the archive path before
	// pruning them.
	// Default: false
	ArchiveBeforeDelete bool `yaml:"archive_before_delete"`

	// ArchivePath is the directory for archived records.
	// Default: "data/archives/"
	ArchivePath string `yaml:"archive_path"`

	// MaxRecords caps the total number of stored records. Zero means
	// no cap.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`
}

// QueryConfig contains configuration for audit history queries.
type QueryConfig struct {
	// DefaultLimit is the page size applied when a query names none.
	// Default: 100
	DefaultLimit int `yaml:"default_limit"`

	// MaxLimit is the largest page size a query may request.
	// Default: 10000
	MaxLimit int `yaml:"max_limit"`

	// Timeout bounds a single history query.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`
}

// ExportConfig contains configuration for audit record export.
type ExportConfig struct {
	// JSONPretty enables indented JSON output.
	// Default: true
	JSONPretty bool `yaml:"json_pretty"`

	// CSVIncludeHeader includes a header row in CSV output.
	// Default: true
	CSVIncludeHeader bool `yaml:"csv_include_header"`

	// MaxExportSize caps the number of records in one export.
	// Default: 1000000
	MaxExportSize int `yaml:"max_export_size"`
}

// TelemetryConfig contains logging, metrics, tracing and health
// probe configuration.
type TelemetryConfig struct {
	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures Prometheus metrics.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing configures distributed tracing.
	Tracing TracingConfig `yaml:"tracing"`

	// Health configures the health probe endpoints served next to
	// the metrics handler.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains configuration for structured logging.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn" or "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes source file and line in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactFields enables redaction of document field values in log
	// output. Presentation fields carry counterparty names, credit
	// references and amounts.
	// Default: true
	RedactFields bool `yaml:"redact_fields"`

	// RedactPatterns adds custom redaction patterns on top of the
	// built-in ones.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern is a custom log redaction rule.
type RedactPattern struct {
	// Name identifies the pattern in diagnostics.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the text substituted for matches.
	// Default: "[REDACTED]"
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains configuration for Prometheus metrics.
type MetricsConfig struct {
	// Enabled turns metrics collection on.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the metrics endpoint path.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Port is the metrics listener port. Zero disables the dedicated
	// metrics listener; the handler can still be mounted by the caller.
	// Default: 0
	Port int `yaml:"port"`

	// Namespace is the metric name prefix.
	// Default: "mercator"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric name subsystem.
	// Default: "saturn"
	Subsystem string `yaml:"subsystem"`

	// ValidationDurationBuckets are histogram buckets for validation
	// run duration in seconds.
	ValidationDurationBuckets []float64 `yaml:"validation_duration_buckets"`

	// RuleCountBuckets are histogram buckets for rules evaluated per
	// validation run.
	RuleCountBuckets []float64 `yaml:"rule_count_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 0.1 (10%)
	SampleRatio float64 `yaml:"sample_ratio"`

	// Exporter determines the trace exporter to use.
	// Only "otlp" is supported; Jaeger and Zipkin both accept OTLP.
	// Default: "otlp"
	Exporter string `yaml:"exporter"`

	// Endpoint is the trace collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "saturn"
	ServiceName string `yaml:"service_name"`

	// OTLP contains OTLP exporter specific configuration.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health probe endpoint configuration. The
// probes mount at fixed paths (/health, /ready, /version) on the
// metrics listener.
type HealthConfig struct {
	// Enabled controls whether the probe endpoints are mounted.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// CheckTimeout is the timeout for individual component checks.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}
