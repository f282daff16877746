// Package config provides configuration management for Mercator Saturn.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with comprehensive validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention SATURN_SECTION_FIELD.
// For example:
//
//   - SATURN_RULES_PATHS overrides rules.paths (comma-separated)
//   - SATURN_RULES_GIT_AUTH_TOKEN overrides rules.git.auth.token
//   - SATURN_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
// Secrets such as git tokens are typically injected this way rather than
// written into the file.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
// For application-wide configuration access, use the singleton pattern:
//
//	// At application startup
//	if err := config.Initialize("config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Anywhere in the application
//	cfg := config.GetConfig()
//	fmt.Println(cfg.Rules.Paths)
//
// For testing, prefer dependency injection with explicit Config instances
// rather than the global singleton.
//
// # Validation
//
// All configuration is validated automatically during loading. Validation includes:
//
//   - Required field checks (e.g., git repository when the git source is enabled)
//   - Range validation (e.g., similarity threshold must be 0.0-1.0)
//   - Format validation (e.g., redact patterns must compile)
//   - Logical validation (e.g., histogram buckets must be strictly increasing)
//
// Validation errors include field paths and helpful messages:
//
//	configuration validation failed with 2 errors:
//	  - rules.git.repository: repository is required when the git source is enabled
//	  - audit.backend: invalid backend "postgres": must be 'sqlite' or 'memory'
//
// # Example Configuration
//
// Here is a minimal configuration file:
//
//	rules:
//	  paths:
//	    - "./rulebooks"
//	  watch: true
//	  store:
//	    enabled: true
//	    sqlite:
//	      path: "data/rules.db"
//
//	engine:
//	  default_similarity_threshold: 0.8
//
//	audit:
//	  enabled: true
//	  backend: "sqlite"
//	  sqlite:
//	    path: "data/audit.db"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//	  metrics:
//	    enabled: true
//
// # Thread Safety
//
// All configuration access is thread-safe. The singleton pattern uses read-write
// locks to allow concurrent reads while protecting against concurrent writes during
// reload operations.
package config
