// Package tracing provides OpenTelemetry distributed tracing for the
// Saturn validation pipeline.
//
// # Overview
//
// The tracing package implements W3C Trace Context propagation, span
// creation, and OTLP trace export. A validation run produces a span tree
// covering catalog assembly, per-rule evaluation and audit recording, so
// slow rules and slow sources show up directly in the trace view.
//
// # Span Hierarchy
//
// Spans form a hierarchy representing one validation:
//
//	saturn.validation (140ms)
//	├── saturn.catalog.load (45ms)
//	│   ├── saturn.source.rulebooks (12ms)
//	│   ├── saturn.source.store (8ms)
//	│   └── saturn.source.git (25ms)
//	├── saturn.rules.execute (85ms)
//	│   ├── saturn.rule.evaluate (2ms)
//	│   └── saturn.rule.evaluate (3ms)
//	└── saturn.audit.record (6ms)
//
// # Usage
//
//	// Initialize tracer
//	cfg := &config.TracingConfig{
//	    Enabled:     true,
//	    Sampler:     "ratio",
//	    SampleRatio: 0.1,
//	    Exporter:    "otlp",
//	    Endpoint:    "localhost:4317",
//	    ServiceName: "saturn",
//	}
//	tracer, err := tracing.New(cfg, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	// Create span
//	ctx, span := tracer.Start(ctx, "saturn.validation")
//	defer span.End()
//
//	// Add attributes
//	tracing.SetValidationAttributes(span, validationID, lcReference, checkedBy)
//
//	// Add event
//	span.AddEvent("rule_evaluated", trace.WithAttributes(
//	    attribute.String("rule_id", "UCP600-14D-GOODS"),
//	    attribute.String("outcome", "PASSED"),
//	))
//
// # Joining a CI Trace
//
// CI systems that trace their pipelines export the current context in the
// TRACEPARENT and TRACESTATE environment variables. Extracting them makes
// every span from a check run a child of the pipeline trace:
//
//	ctx := tracing.ExtractFromEnvironment(context.Background())
//	ctx, span := tracer.Start(ctx, "saturn.validation")
//
// ExtractFromEnvironment works without a tracer, so the extracted trace ID
// can feed log correlation even when span export is disabled.
//
// # Sampling Strategies
//
// Three sampling strategies are supported:
//   - always: Sample all traces (interactive use, watch mode)
//   - never: Sample no traces
//   - ratio: Sample a fraction of traces (high-volume CI)
//
// # Trace Export
//
// OTLP over gRPC is the only wire format. Jaeger and Zipkin collectors
// both ingest OTLP natively, so pointing Endpoint at either works:
//
//	telemetry:
//	  tracing:
//	    exporter: otlp
//	    endpoint: localhost:4317
//	    otlp:
//	      insecure: true
//	      timeout: 10s
//
// # Attribute Helpers
//
// Common attributes can be set using helper functions:
//
//	// Validation identity
//	tracing.SetValidationAttributes(span, validationID, "LC-2024-001", "ops@bank.example")
//
//	// Rule identity and outcome
//	tracing.SetRuleAttributes(span, "UCP600-14D-GOODS", "UCP600", "CRITICAL")
//	tracing.SetRuleOutcome(span, "TRIGGERED")
//
//	// Execution summary
//	tracing.SetOutcomeAttributes(span, summary.Passed, summary.Failed, summary.Skipped)
//
//	// Error attributes
//	tracing.SetErrorAttributes(span, err, "load_failure")
//
// # Performance
//
// The tracing package is designed for minimal overhead:
//   - Span creation: <100µs per span
//   - Context propagation: <10µs
//   - Sampling decision: <1µs
//   - When disabled: <1µs (noop span)
package tracing
