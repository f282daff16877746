// Package telemetry provides observability for Mercator Saturn.
//
// # Overview
//
// The telemetry package implements structured logging, Prometheus metrics,
// OpenTelemetry distributed tracing, and health check endpoints. It provides
// visibility into validation runs while keeping overhead small enough that a
// full catalog execution stays interactive.
//
// # Components
//
//   - logging: Structured logging with credential and PII redaction
//   - metrics: Prometheus metrics for the engine, loader, and rule sources
//   - tracing: OpenTelemetry spans over the validation pipeline
//   - health: Liveness/readiness probes for watch mode
//
// There is no umbrella constructor; cmd/saturn wires each subpackage from
// its section of config.TelemetryConfig:
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	if err != nil {
//		return err
//	}
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	mux.Handle("/metrics", collector.Handler())
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	if err != nil {
//		return err
//	}
//	defer tracer.Shutdown(ctx)
//
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//	health.HTTPMiddleware(mux, checker, version, commit, buildTime)
//
// Components that log take the *slog.Logger from logger.Slog(), so every
// path into the log stream passes through the redacting handler.
//
// # Performance
//
//   - Logging: <10µs per entry when enabled, <1µs when filtered by level
//   - Metrics: <50µs per update
//   - Tracing: <100µs per span when sampled, <1µs when disabled
//
// # Redaction
//
// By default, credentials and personal identifiers are redacted from logs:
//
//   - Access tokens: ghp_aBc123... → ***
//   - Emails: officer@bank.example → o***@bank.example
//   - IBANs: DE89370400440532013000 → DE89****
//   - Labelled account numbers: account no. 12345678 → account ***
//
// LC references and rule ids are never redacted; they are the correlation
// keys between log entries, spans, and the audit trail. Custom patterns can
// be added through telemetry.logging.redact_patterns.
package telemetry
