package config

import "time"

// Default values for configuration fields.
const (
	// Rules defaults
	DefaultRulebookPath      = "./rulebooks"
	DefaultMaxFileSize       = int64(5 * 1024 * 1024) // 5MB
	DefaultFollowSymlinks    = true
	DefaultSkipHidden        = true
	DefaultBootstrap         = true
	DefaultValidateRules     = true
	DefaultGitBranch         = "main"
	DefaultGitAuthType       = "none"
	DefaultGitPollEnabled    = true
	DefaultGitPollInterval   = 30 * time.Second
	DefaultGitPollTimeout    = 10 * time.Second
	DefaultGitCloneDepth     = 1
	DefaultStorePath         = "data/rules.db"
	DefaultStoreMaxOpenConns = 10
	DefaultStoreMaxIdleConns = 5

	// Shared SQLite defaults
	DefaultSQLiteWALMode     = true
	DefaultSQLiteBusyTimeout = 5 * time.Second

	// Engine defaults
	DefaultSimilarityThreshold = 0.8
	DefaultMaxRegexLength      = 512

	// Audit defaults
	DefaultAuditEnabled          = true
	DefaultAuditBackend          = "sqlite"
	DefaultAuditSQLitePath       = "data/audit.db"
	DefaultAuditMaxOpenConns     = 1
	DefaultAuditMaxIdleConns     = 1
	DefaultRecorderAsyncBuffer   = 1000
	DefaultRecorderWriteTimeout  = 5 * time.Second
	DefaultRecorderHashContext   = true
	DefaultRecorderMaxFieldLen   = 500
	DefaultRetentionDays         = 90
	DefaultRetentionSchedule     = "0 3 * * *"
	DefaultRetentionArchive      = false
	DefaultRetentionArchivePath  = "data/archives/"
	DefaultRetentionMaxRecords   = int64(0)
	DefaultQueryDefaultLimit     = 100
	DefaultQueryMaxLimit         = 10000
	DefaultQueryTimeout          = 30 * time.Second
	DefaultExportJSONPretty      = true
	DefaultExportCSVHeader       = true
	DefaultExportMaxSize         = 1000000

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultLoggingRedact    = true
	DefaultMetricsEnabled   = true
	DefaultPrometheusPath   = "/metrics"
	DefaultMetricsNamespace = "mercator"
	DefaultMetricsSubsystem = "saturn"

	// Tracing defaults. Enabled itself defaults to false; the rest only
	// matter once tracing is switched on.
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 0.1
	DefaultTracingExporter    = "otlp"
	DefaultTracingService     = "saturn"
	DefaultOTLPInsecure       = true
	DefaultOTLPTimeout        = 10 * time.Second

	// Health probe defaults
	DefaultHealthEnabled      = true
	DefaultHealthCheckTimeout = 5 * time.Second
)

// DefaultConfig returns the configuration used when no configuration
// file is present: rulebooks from ./rulebooks, audit recording, metrics
// and health probes on, git source, record store and tracing off.
//
// ApplyDefaults deliberately never touches the Enabled flags, so the
// out-of-the-box values for those live here.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Audit.Enabled = DefaultAuditEnabled
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	cfg.Telemetry.Health.Enabled = DefaultHealthEnabled
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Rules defaults
	if len(cfg.Rules.Paths) == 0 {
		cfg.Rules.Paths = []string{DefaultRulebookPath}
	}
	if cfg.Rules.MaxFileSize == 0 {
		cfg.Rules.MaxFileSize = DefaultMaxFileSize
	}
	if len(cfg.Rules.AllowedExtensions) == 0 {
		cfg.Rules.AllowedExtensions = []string{".yaml", ".yml"}
	}
	if !cfg.Rules.FollowSymlinks {
		cfg.Rules.FollowSymlinks = DefaultFollowSymlinks
	}
	if !cfg.Rules.SkipHidden {
		cfg.Rules.SkipHidden = DefaultSkipHidden
	}
	if !cfg.Rules.Bootstrap {
		cfg.Rules.Bootstrap = DefaultBootstrap
	}
	if !cfg.Rules.ValidateRules {
		cfg.Rules.ValidateRules = DefaultValidateRules
	}

	// Git source defaults
	applyGitDefaults(&cfg.Rules.Git)

	// Store defaults
	if cfg.Rules.Store.SQLite.Path == "" {
		cfg.Rules.Store.SQLite.Path = DefaultStorePath
	}
	if cfg.Rules.Store.SQLite.MaxOpenConns == 0 {
		cfg.Rules.Store.SQLite.MaxOpenConns = DefaultStoreMaxOpenConns
	}
	if cfg.Rules.Store.SQLite.MaxIdleConns == 0 {
		cfg.Rules.Store.SQLite.MaxIdleConns = DefaultStoreMaxIdleConns
	}
	applySQLiteDefaults(&cfg.Rules.Store.SQLite)

	// Engine defaults
	if cfg.Engine.DefaultSimilarityThreshold == 0 {
		cfg.Engine.DefaultSimilarityThreshold = DefaultSimilarityThreshold
	}
	if cfg.Engine.MaxRegexLength == 0 {
		cfg.Engine.MaxRegexLength = DefaultMaxRegexLength
	}

	// Audit defaults. Enabled is not defaulted here: an explicit
	// "enabled: false" in the file is indistinguishable from an absent
	// field, so the flag stays as the file sets it.
	if cfg.Audit.Backend == "" {
		cfg.Audit.Backend = DefaultAuditBackend
	}
	if cfg.Audit.SQLite.Path == "" {
		cfg.Audit.SQLite.Path = DefaultAuditSQLitePath
	}
	if cfg.Audit.SQLite.MaxOpenConns == 0 {
		cfg.Audit.SQLite.MaxOpenConns = DefaultAuditMaxOpenConns
	}
	if cfg.Audit.SQLite.MaxIdleConns == 0 {
		cfg.Audit.SQLite.MaxIdleConns = DefaultAuditMaxIdleConns
	}
	applySQLiteDefaults(&cfg.Audit.SQLite)

	// Recorder defaults
	if cfg.Audit.Recorder.AsyncBuffer == 0 {
		cfg.Audit.Recorder.AsyncBuffer = DefaultRecorderAsyncBuffer
	}
	if cfg.Audit.Recorder.WriteTimeout == 0 {
		cfg.Audit.Recorder.WriteTimeout = DefaultRecorderWriteTimeout
	}
	if !cfg.Audit.Recorder.HashContext {
		cfg.Audit.Recorder.HashContext = DefaultRecorderHashContext
	}
	if cfg.Audit.Recorder.MaxFieldLength == 0 {
		cfg.Audit.Recorder.MaxFieldLength = DefaultRecorderMaxFieldLen
	}

	// Retention defaults
	if cfg.Audit.Retention.Days == 0 {
		cfg.Audit.Retention.Days = DefaultRetentionDays
	}
	if cfg.Audit.Retention.PruneSchedule == "" {
		cfg.Audit.Retention.PruneSchedule = DefaultRetentionSchedule
	}
	if cfg.Audit.Retention.ArchivePath == "" {
		cfg.Audit.Retention.ArchivePath = DefaultRetentionArchivePath
	}
	if cfg.Audit.Retention.MaxRecords == 0 {
		cfg.Audit.Retention.MaxRecords = DefaultRetentionMaxRecords
	}

	// Query defaults
	if cfg.Audit.Query.DefaultLimit == 0 {
		cfg.Audit.Query.DefaultLimit = DefaultQueryDefaultLimit
	}
	if cfg.Audit.Query.MaxLimit == 0 {
		cfg.Audit.Query.MaxLimit = DefaultQueryMaxLimit
	}
	if cfg.Audit.Query.Timeout == 0 {
		cfg.Audit.Query.Timeout = DefaultQueryTimeout
	}

	// Export defaults
	if !cfg.Audit.Export.JSONPretty {
		cfg.Audit.Export.JSONPretty = DefaultExportJSONPretty
	}
	if !cfg.Audit.Export.CSVIncludeHeader {
		cfg.Audit.Export.CSVIncludeHeader = DefaultExportCSVHeader
	}
	if cfg.Audit.Export.MaxExportSize == 0 {
		cfg.Audit.Export.MaxExportSize = DefaultExportMaxSize
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if !cfg.Telemetry.Logging.RedactFields {
		cfg.Telemetry.Logging.RedactFields = DefaultLoggingRedact
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultPrometheusPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	// Histogram buckets are left nil here; the metrics collector
	// supplies its own defaults when the slices are unset.

	// Tracing defaults. Enabled is not defaulted: tracing stays off
	// unless the file or environment turns it on.
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.Exporter == "" {
		cfg.Telemetry.Tracing.Exporter = DefaultTracingExporter
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingService
	}
	if !cfg.Telemetry.Tracing.OTLP.Insecure {
		cfg.Telemetry.Tracing.OTLP.Insecure = DefaultOTLPInsecure
	}
	if cfg.Telemetry.Tracing.OTLP.Timeout == 0 {
		cfg.Telemetry.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}

	// Health probe defaults. Enabled is left alone for the same reason
	// as Audit.Enabled above.
	if cfg.Telemetry.Health.CheckTimeout == 0 {
		cfg.Telemetry.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
}

// applyGitDefaults applies default values to the git source configuration.
func applyGitDefaults(git *GitConfig) {
	if git.Branch == "" {
		git.Branch = DefaultGitBranch
	}
	if git.Auth.Type == "" {
		git.Auth.Type = DefaultGitAuthType
	}
	if !git.Poll.Enabled {
		// Check if any poll fields are set - if so, leave the flag as
		// the file set it. Otherwise, use the default.
		hasAnyConfig := git.Poll.Interval > 0 || git.Poll.Timeout > 0
		if !hasAnyConfig {
			git.Poll.Enabled = DefaultGitPollEnabled
		}
	}
	if git.Poll.Interval == 0 {
		git.Poll.Interval = DefaultGitPollInterval
	}
	if git.Poll.Timeout == 0 {
		git.Poll.Timeout = DefaultGitPollTimeout
	}
	if git.Clone.Depth == 0 {
		git.Clone.Depth = DefaultGitCloneDepth
	}
}

// applySQLiteDefaults applies the SQLite settings shared by both
// databases. Connection limits differ per database and are set by the
// caller first.
func applySQLiteDefaults(sqlite *SQLiteConfig) {
	if !sqlite.WALMode {
		sqlite.WALMode = DefaultSQLiteWALMode
	}
	if sqlite.BusyTimeout == 0 {
		sqlite.BusyTimeout = DefaultSQLiteBusyTimeout
	}
}
