// Package logging provides structured logging with sensitive-field redaction.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - Structured logging with JSON and text formats
//   - Automatic redaction of credentials and banking identifiers
//   - Context-aware logging with validation run metadata
//   - Configurable log levels (debug, info, warn, error)
//
// # Usage
//
//	// Create a logger
//	logger, err := logging.New(logging.Config{
//	    Level:        "info",
//	    Format:       "json",
//	    RedactFields: true,
//	})
//
//	// Log structured data
//	logger.Info("Validation completed",
//	    "validation_id", "8f14e45f",
//	    "git_token", "ghp_abc123",  // Automatically redacted
//	    "duration_ms", 1234,
//	)
//
//	// Hand the redacting slog.Logger to other components
//	engine, err := engine.New(engineCfg, engine.WithLogger(logger.Slog()))
//
//	// Create context-aware logger
//	ctx = logging.WithValidationID(ctx, "8f14e45f")
//	ctxLogger := logger.WithContext(ctx)
//	ctxLogger.Info("Executing rules")  // Includes validation_id automatically
//
// # Redaction
//
// Redaction runs inside the slog handler chain, so every logger derived
// from the configured one masks sensitive data, including loggers passed
// to the engine, the loader and the audit recorder. When RedactFields is
// enabled:
//
//   - Access tokens: ghp_abc123xyz... → ***
//   - Emails: user@example.com → u***@example.com
//   - IBANs: GB29NWBK60161331926819 → GB29****
//   - Values under sensitive keys (token, secret, iban, ...) → prefix + ***
//
// LC references are not masked: they are the correlation key between logs
// and the audit trail, and history queries filter by them. Deployments
// that need to mask parties, amounts or other document fields add
// patterns under telemetry.logging.redact_patterns in the configuration
// file.
//
// # Performance
//
// Redaction only runs for records that pass the level filter:
//   - <1µs when log level filters out the message
//   - pattern matching cost is proportional to string attribute sizes
package logging
