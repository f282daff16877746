package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	// Read the file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	// Apply defaults
	ApplyDefaults(&cfg)

	// Validate
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention SATURN_SECTION_FIELD (e.g., SATURN_RULES_WATCH).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	// First load from file (this already applies defaults)
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Re-validate after overrides
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format SATURN_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Rules overrides
	if val := os.Getenv("SATURN_RULES_PATHS"); val != "" {
		parts := strings.Split(val, ",")
		paths := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				paths = append(paths, p)
			}
		}
		if len(paths) > 0 {
			cfg.Rules.Paths = paths
		}
	}
	if val := os.Getenv("SATURN_RULES_MAX_FILE_SIZE"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Rules.MaxFileSize = i
		}
	}
	if val := os.Getenv("SATURN_RULES_STRICT_PARSE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Rules.StrictParse = b
		}
	}
	if val := os.Getenv("SATURN_RULES_VALIDATE_RULES"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Rules.ValidateRules = b
		}
	}
	if val := os.Getenv("SATURN_RULES_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Rules.Watch = b
		}
	}

	// Git source overrides
	if val := os.Getenv("SATURN_RULES_GIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Rules.Git.Enabled = b
		}
	}
	if val := os.Getenv("SATURN_RULES_GIT_REPOSITORY"); val != "" {
		cfg.Rules.Git.Repository = val
	}
	if val := os.Getenv("SATURN_RULES_GIT_BRANCH"); val != "" {
		cfg.Rules.Git.Branch = val
	}
	if val := os.Getenv("SATURN_RULES_GIT_PATH"); val != "" {
		cfg.Rules.Git.Path = val
	}
	if val := os.Getenv("SATURN_RULES_GIT_AUTH_TYPE"); val != "" {
		cfg.Rules.Git.Auth.Type = val
	}
	if val := os.Getenv("SATURN_RULES_GIT_AUTH_TOKEN"); val != "" {
		cfg.Rules.Git.Auth.Token = val
	}
	if val := os.Getenv("SATURN_RULES_GIT_AUTH_USERNAME"); val != "" {
		cfg.Rules.Git.Auth.Username = val
	}
	if val := os.Getenv("SATURN_RULES_GIT_AUTH_PASSWORD"); val != "" {
		cfg.Rules.Git.Auth.Password = val
	}
	if val := os.Getenv("SATURN_RULES_GIT_AUTH_SSH_KEY_PATH"); val != "" {
		cfg.Rules.Git.Auth.SSHKeyPath = val
	}
	if val := os.Getenv("SATURN_RULES_GIT_POLL_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Rules.Git.Poll.Enabled = b
		}
	}
	if val := os.Getenv("SATURN_RULES_GIT_POLL_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Rules.Git.Poll.Interval = d
		}
	}

	// Store overrides
	if val := os.Getenv("SATURN_RULES_STORE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Rules.Store.Enabled = b
		}
	}
	if val := os.Getenv("SATURN_RULES_STORE_PATH"); val != "" {
		cfg.Rules.Store.SQLite.Path = val
	}

	// Engine overrides
	if val := os.Getenv("SATURN_ENGINE_SIMILARITY_THRESHOLD"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Engine.DefaultSimilarityThreshold = f
		}
	}
	if val := os.Getenv("SATURN_ENGINE_MAX_REGEX_LENGTH"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Engine.MaxRegexLength = i
		}
	}

	// Audit overrides
	if val := os.Getenv("SATURN_AUDIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Audit.Enabled = b
		}
	}
	if val := os.Getenv("SATURN_AUDIT_BACKEND"); val != "" {
		cfg.Audit.Backend = val
	}
	if val := os.Getenv("SATURN_AUDIT_SQLITE_PATH"); val != "" {
		cfg.Audit.SQLite.Path = val
	}
	if val := os.Getenv("SATURN_AUDIT_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Audit.Retention.Days = i
		}
	}
	if val := os.Getenv("SATURN_AUDIT_RETENTION_SCHEDULE"); val != "" {
		cfg.Audit.Retention.PruneSchedule = val
	}
	if val := os.Getenv("SATURN_AUDIT_QUERY_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Audit.Query.Timeout = d
		}
	}

	// Telemetry overrides
	if val := os.Getenv("SATURN_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("SATURN_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("SATURN_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("SATURN_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
	if val := os.Getenv("SATURN_TELEMETRY_METRICS_PORT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Telemetry.Metrics.Port = i
		}
	}
	if val := os.Getenv("SATURN_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("SATURN_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := os.Getenv("SATURN_TELEMETRY_TRACING_SAMPLER"); val != "" {
		cfg.Telemetry.Tracing.Sampler = val
	}
	if val := os.Getenv("SATURN_TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
	if val := os.Getenv("SATURN_TELEMETRY_HEALTH_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Health.Enabled = b
		}
	}
}
