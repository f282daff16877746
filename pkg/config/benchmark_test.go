package config

import (
	"os"
	"path/filepath"
	"testing"
)

// BenchmarkLoadConfig benchmarks loading a typical configuration file.
// Target: <10ms p99 latency
func BenchmarkLoadConfig(b *testing.B) {
	// Create a temporary config file
	tmpDir := b.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
rules:
  paths:
    - "./rulebooks"
  max_file_size: 5242880
  strict_parse: false
  watch: true
  git:
    enabled: true
    repository: "https://github.com/acme/rulebooks.git"
    branch: "main"
    auth:
      type: "token"
      token: "test-token"
    poll:
      enabled: true
      interval: "30s"
      timeout: "10s"
  store:
    enabled: true
    sqlite:
      path: "./rules.db"

engine:
  default_similarity_threshold: 0.8
  max_regex_length: 512

audit:
  enabled: true
  backend: "sqlite"
  sqlite:
    path: "./audit.db"
  recorder:
    async_buffer: 1000
    write_timeout: "5s"
  retention:
    days: 90
    prune_schedule: "0 3 * * *"

telemetry:
  logging:
    level: "info"
    format: "json"
  metrics:
    enabled: true
    path: "/metrics"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		b.Fatalf("failed to write config file: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := LoadConfig(configPath)
		if err != nil {
			b.Fatalf("failed to load config: %v", err)
		}
	}
}

// BenchmarkLoadConfigWithEnvOverrides benchmarks loading with environment variable overrides.
func BenchmarkLoadConfigWithEnvOverrides(b *testing.B) {
	tmpDir := b.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
rules:
  paths:
    - "./rulebooks"

audit:
  enabled: true

telemetry:
  logging:
    level: "info"
    format: "json"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		b.Fatalf("failed to write config file: %v", err)
	}

	// Set some environment variables
	os.Setenv("SATURN_RULES_PATHS", "/etc/saturn/rulebooks")
	os.Setenv("SATURN_TELEMETRY_LOGGING_LEVEL", "debug")
	defer func() {
		os.Unsetenv("SATURN_RULES_PATHS")
		os.Unsetenv("SATURN_TELEMETRY_LOGGING_LEVEL")
	}()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := LoadConfigWithEnvOverrides(configPath)
		if err != nil {
			b.Fatalf("failed to load config: %v", err)
		}
	}
}

// BenchmarkValidate benchmarks configuration validation.
// Target: <1ms for full validation
func BenchmarkValidate(b *testing.B) {
	cfg := NewTestConfig().Build()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		err := Validate(cfg)
		if err != nil {
			b.Fatalf("validation failed: %v", err)
		}
	}
}

// BenchmarkApplyDefaults benchmarks applying default values.
func BenchmarkApplyDefaults(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cfg := Config{}
		ApplyDefaults(&cfg)
	}
}

// BenchmarkGetConfig benchmarks singleton config access.
// Target: <1µs (simple pointer return)
func BenchmarkGetConfig(b *testing.B) {
	// Set up config
	SetConfig(MinimalConfig())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = GetConfig()
	}
}

// BenchmarkConfigBuilder benchmarks building config programmatically.
func BenchmarkConfigBuilder(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = NewTestConfig().
			WithRulebookPaths("./rulebooks").
			WithStore("./rules.db").
			WithLoggingLevel("debug").
			Build()
	}
}
