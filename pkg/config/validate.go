package config

import (
	"fmt"
	"regexp"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "rules.max_file_size").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	// Validate rules configuration
	errs = append(errs, validateRules(&cfg.Rules)...)

	// Validate engine configuration
	errs = append(errs, validateEngine(&cfg.Engine)...)

	// Validate audit configuration
	errs = append(errs, validateAudit(&cfg.Audit)...)

	// Validate telemetry configuration
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateRules validates rule source configuration.
func validateRules(cfg *RulesConfig) []FieldError {
	var errs []FieldError

	// Validate max file size
	if cfg.MaxFileSize < 0 {
		errs = append(errs, FieldError{
			Field:   "rules.max_file_size",
			Message: "max file size must be non-negative",
		})
	}
	if cfg.MaxFileSize > 100*1024*1024 { // 100MB is excessive for a rulebook
		errs = append(errs, FieldError{
			Field:   "rules.max_file_size",
			Message: "max file size exceeds reasonable limit (100MB)",
		})
	}

	// Validate extensions
	for _, ext := range cfg.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, FieldError{
				Field:   "rules.allowed_extensions",
				Message: fmt.Sprintf("extension %q must start with a dot", ext),
			})
		}
	}

	// Watch mode needs something to watch
	if cfg.Watch && len(cfg.Paths) == 0 {
		errs = append(errs, FieldError{
			Field:   "rules.watch",
			Message: "watch requires at least one rulebook path",
		})
	}

	// Validate git source configuration
	errs = append(errs, validateGit(&cfg.Git)...)

	// Validate store configuration
	errs = append(errs, validateStore(&cfg.Store)...)

	return errs
}

// validateGit validates git source configuration.
func validateGit(cfg *GitConfig) []FieldError {
	var errs []FieldError

	// If the git source is disabled, skip validation
	if !cfg.Enabled {
		return errs
	}

	if cfg.Repository == "" {
		errs = append(errs, FieldError{
			Field:   "rules.git.repository",
			Message: "repository is required when the git source is enabled",
		})
	}
	if cfg.Branch == "" {
		errs = append(errs, FieldError{
			Field:   "rules.git.branch",
			Message: "branch is required when the git source is enabled",
		})
	}

	// Validate auth type and its required fields
	validAuthTypes := map[string]bool{"token": true, "basic": true, "ssh": true, "none": true}
	if !validAuthTypes[cfg.Auth.Type] {
		errs = append(errs, FieldError{
			Field:   "rules.git.auth.type",
			Message: fmt.Sprintf("invalid auth type %q: must be 'token', 'basic', 'ssh', or 'none'", cfg.Auth.Type),
		})
	}
	switch cfg.Auth.Type {
	case "token":
		if cfg.Auth.Token == "" {
			errs = append(errs, FieldError{
				Field:   "rules.git.auth.token",
				Message: "token is required when auth type is 'token'",
			})
		}
	case "basic":
		if cfg.Auth.Username == "" {
			errs = append(errs, FieldError{
				Field:   "rules.git.auth.username",
				Message: "username is required when auth type is 'basic'",
			})
		}
	case "ssh":
		if cfg.Auth.SSHKeyPath == "" {
			errs = append(errs, FieldError{
				Field:   "rules.git.auth.ssh_key_path",
				Message: "SSH key path is required when auth type is 'ssh'",
			})
		}
	}

	// Validate polling
	if cfg.Poll.Enabled {
		if cfg.Poll.Interval <= 0 {
			errs = append(errs, FieldError{
				Field:   "rules.git.poll.interval",
				Message: "poll interval must be positive when polling is enabled",
			})
		}
		if cfg.Poll.Timeout <= 0 {
			errs = append(errs, FieldError{
				Field:   "rules.git.poll.timeout",
				Message: "poll timeout must be positive when polling is enabled",
			})
		}
	}

	// Validate clone depth
	if cfg.Clone.Depth < 0 {
		errs = append(errs, FieldError{
			Field:   "rules.git.clone.depth",
			Message: "clone depth must be non-negative",
		})
	}

	return errs
}

// validateStore validates rule record store configuration.
func validateStore(cfg *StoreConfig) []FieldError {
	var errs []FieldError

	// If the store is disabled, skip validation
	if !cfg.Enabled {
		return errs
	}

	errs = append(errs, validateSQLite("rules.store.sqlite", &cfg.SQLite)...)

	return errs
}

// validateSQLite validates SQLite settings under the given field prefix.
func validateSQLite(prefix string, cfg *SQLiteConfig) []FieldError {
	var errs []FieldError

	if cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   prefix + ".path",
			Message: "database path is required",
		})
	}
	if cfg.MaxOpenConns < 0 {
		errs = append(errs, FieldError{
			Field:   prefix + ".max_open_conns",
			Message: "max open connections must be non-negative",
		})
	}
	if cfg.MaxIdleConns < 0 {
		errs = append(errs, FieldError{
			Field:   prefix + ".max_idle_conns",
			Message: "max idle connections must be non-negative",
		})
	}
	if cfg.BusyTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   prefix + ".busy_timeout",
			Message: "busy timeout must be positive",
		})
	}

	return errs
}

// validateEngine validates engine configuration.
func validateEngine(cfg *EngineConfig) []FieldError {
	var errs []FieldError

	if cfg.DefaultSimilarityThreshold < 0 || cfg.DefaultSimilarityThreshold > 1.0 {
		errs = append(errs, FieldError{
			Field:   "engine.default_similarity_threshold",
			Message: "similarity threshold must be between 0.0 and 1.0",
		})
	}
	if cfg.MaxRegexLength < 0 {
		errs = append(errs, FieldError{
			Field:   "engine.max_regex_length",
			Message: "max regex length must be non-negative",
		})
	}
	if cfg.MaxRegexLength > 65536 {
		errs = append(errs, FieldError{
			Field:   "engine.max_regex_length",
			Message: "max regex length exceeds reasonable limit (65536)",
		})
	}

	return errs
}

// validateAudit validates audit configuration.
func validateAudit(cfg *AuditConfig) []FieldError {
	var errs []FieldError

	// If audit is disabled, skip validation
	if !cfg.Enabled {
		return errs
	}

	// Validate backend
	validBackends := map[string]bool{"sqlite": true, "memory": true}
	if cfg.Backend == "" {
		errs = append(errs, FieldError{
			Field:   "audit.backend",
			Message: "backend is required when audit is enabled",
		})
	} else if !validBackends[cfg.Backend] {
		errs = append(errs, FieldError{
			Field:   "audit.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'sqlite' or 'memory'", cfg.Backend),
		})
	}

	// Validate backend-specific configuration
	if cfg.Backend == "sqlite" {
		errs = append(errs, validateSQLite("audit.sqlite", &cfg.SQLite)...)
	}

	// Validate recorder
	if cfg.Recorder.AsyncBuffer < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.recorder.async_buffer",
			Message: "async buffer must be non-negative",
		})
	}
	if cfg.Recorder.AsyncBuffer > 1000000 {
		errs = append(errs, FieldError{
			Field:   "audit.recorder.async_buffer",
			Message: "async buffer exceeds reasonable limit (1,000,000)",
		})
	}
	if cfg.Recorder.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.recorder.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.Recorder.MaxFieldLength < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.recorder.max_field_length",
			Message: "max field length must be non-negative",
		})
	}

	// Validate retention
	if cfg.Retention.Days < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.retention.days",
			Message: "retention days must be non-negative",
		})
	}
	if cfg.Retention.Days > 3650 { // 10 years is excessive
		errs = append(errs, FieldError{
			Field:   "audit.retention.days",
			Message: "retention days exceeds reasonable limit (3650 days / 10 years)",
		})
	}
	if cfg.Retention.MaxRecords < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.retention.max_records",
			Message: "max records must be non-negative",
		})
	}
	if cfg.Retention.ArchiveBeforeDelete && cfg.Retention.ArchivePath == "" {
		errs = append(errs, FieldError{
			Field:   "audit.retention.archive_path",
			Message: "archive path is required when archive before delete is enabled",
		})
	}

	// Validate query limits
	if cfg.Query.DefaultLimit < 1 {
		errs = append(errs, FieldError{
			Field:   "audit.query.default_limit",
			Message: "default limit must be at least 1",
		})
	}
	if cfg.Query.MaxLimit < cfg.Query.DefaultLimit {
		errs = append(errs, FieldError{
			Field:   "audit.query.max_limit",
			Message: "max limit cannot be smaller than default limit",
		})
	}
	if cfg.Query.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.query.timeout",
			Message: "timeout must be positive",
		})
	}

	// Validate export
	if cfg.Export.MaxExportSize < 1 {
		errs = append(errs, FieldError{
			Field:   "audit.export.max_export_size",
			Message: "max export size must be at least 1",
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	// Validate logging level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	// Validate logging format
	validFormats := map[string]bool{"json": true, "text": true}
	if cfg.Logging.Format == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	// Validate redact patterns compile
	for i, p := range cfg.Logging.RedactPatterns {
		prefix := fmt.Sprintf("telemetry.logging.redact_patterns[%d]", i)
		if p.Name == "" {
			errs = append(errs, FieldError{
				Field:   prefix + ".name",
				Message: "pattern name is required",
			})
		}
		if p.Pattern == "" {
			errs = append(errs, FieldError{
				Field:   prefix + ".pattern",
				Message: "pattern is required",
			})
		} else if _, err := regexp.Compile(p.Pattern); err != nil {
			errs = append(errs, FieldError{
				Field:   prefix + ".pattern",
				Message: fmt.Sprintf("invalid regular expression: %v", err),
			})
		}
	}

	// Validate metrics
	if cfg.Metrics.Enabled {
		if cfg.Metrics.Path == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path is required when metrics are enabled",
			})
		}
		if cfg.Metrics.Path != "" && cfg.Metrics.Path[0] != '/' {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path must start with /",
			})
		}
	}
	if cfg.Metrics.Port < 0 || cfg.Metrics.Port > 65535 {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.port",
			Message: "metrics port must be between 0 and 65535",
		})
	}
	errs = append(errs, validateBuckets("telemetry.metrics.validation_duration_buckets", cfg.Metrics.ValidationDurationBuckets)...)
	errs = append(errs, validateBuckets("telemetry.metrics.rule_count_buckets", cfg.Metrics.RuleCountBuckets)...)

	// Validate tracing
	errs = append(errs, validateTracing(&cfg.Tracing)...)

	// Validate health probes
	if cfg.Health.CheckTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.health.check_timeout",
			Message: "check timeout must be positive",
		})
	}

	return errs
}

// validateTracing validates distributed tracing configuration.
func validateTracing(cfg *TracingConfig) []FieldError {
	var errs []FieldError

	// If tracing is disabled, skip validation
	if !cfg.Enabled {
		return errs
	}

	validSamplers := map[string]bool{"always": true, "never": true, "ratio": true}
	if !validSamplers[cfg.Sampler] {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Sampler),
		})
	}
	if cfg.Sampler == "ratio" && (cfg.SampleRatio < 0 || cfg.SampleRatio > 1.0) {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}
	if cfg.Exporter != "otlp" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.exporter",
			Message: fmt.Sprintf("invalid exporter %q: only 'otlp' is supported", cfg.Exporter),
		})
	}
	if cfg.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "endpoint is required when tracing is enabled",
		})
	}
	if cfg.ServiceName == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.service_name",
			Message: "service name is required when tracing is enabled",
		})
	}
	if cfg.OTLP.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.otlp.timeout",
			Message: "timeout must be positive",
		})
	}

	return errs
}

// validateBuckets checks that histogram bucket boundaries are strictly
// increasing, which Prometheus requires at registration time.
func validateBuckets(field string, buckets []float64) []FieldError {
	var errs []FieldError

	for i := 1; i < len(buckets); i++ {
		if buckets[i] <= buckets[i-1] {
			errs = append(errs, FieldError{
				Field:   field,
				Message: fmt.Sprintf("buckets must be strictly increasing, got %v <= %v at index %d", buckets[i], buckets[i-1], i),
			})
			break // One error per bucket list is enough
		}
	}

	return errs
}
