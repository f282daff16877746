package logging

import (
	"context"
)

// Context keys for common log fields.
type contextKey string

const (
	// ValidationIDKey is the context key for validation run identifiers.
	ValidationIDKey contextKey = "validation_id"

	// LCReferenceKey is the context key for letter of credit references.
	LCReferenceKey contextKey = "lc_reference"

	// CheckedByKey is the context key for the examiner identity.
	CheckedByKey contextKey = "checked_by"

	// SourceKey is the context key for rule source names (file, git, store).
	SourceKey contextKey = "source"

	// CatalogVersionKey is the context key for rule catalog versions.
	CatalogVersionKey contextKey = "catalog_version"

	// TraceIDKey is the context key for trace IDs.
	TraceIDKey contextKey = "trace_id"

	// SpanIDKey is the context key for span IDs.
	SpanIDKey contextKey = "span_id"
)

// WithValidationID adds a validation run ID to the context.
func WithValidationID(ctx context.Context, validationID string) context.Context {
	return context.WithValue(ctx, ValidationIDKey, validationID)
}

// GetValidationID retrieves the validation run ID from the context.
func GetValidationID(ctx context.Context) string {
	if validationID, ok := ctx.Value(ValidationIDKey).(string); ok {
		return validationID
	}
	return ""
}

// WithLCReference adds a letter of credit reference to the context.
func WithLCReference(ctx context.Context, lcReference string) context.Context {
	return context.WithValue(ctx, LCReferenceKey, lcReference)
}

// GetLCReference retrieves the letter of credit reference from the context.
func GetLCReference(ctx context.Context) string {
	if lcReference, ok := ctx.Value(LCReferenceKey).(string); ok {
		return lcReference
	}
	return ""
}

// WithCheckedBy adds an examiner identity to the context.
func WithCheckedBy(ctx context.Context, checkedBy string) context.Context {
	return context.WithValue(ctx, CheckedByKey, checkedBy)
}

// GetCheckedBy retrieves the examiner identity from the context.
func GetCheckedBy(ctx context.Context) string {
	if checkedBy, ok := ctx.Value(CheckedByKey).(string); ok {
		return checkedBy
	}
	return ""
}

// WithSource adds a rule source name to the context.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, SourceKey, source)
}

// GetSource retrieves the rule source name from the context.
func GetSource(ctx context.Context) string {
	if source, ok := ctx.Value(SourceKey).(string); ok {
		return source
	}
	return ""
}

// WithCatalogVersion adds a rule catalog version to the context.
func WithCatalogVersion(ctx context.Context, version string) context.Context {
	return context.WithValue(ctx, CatalogVersionKey, version)
}

// GetCatalogVersion retrieves the rule catalog version from the context.
func GetCatalogVersion(ctx context.Context) string {
	if version, ok := ctx.Value(CatalogVersionKey).(string); ok {
		return version
	}
	return ""
}

// WithTraceID adds a trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// WithSpanID adds a span ID to the context.
func WithSpanID(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, SpanIDKey, spanID)
}

// GetSpanID retrieves the span ID from the context.
func GetSpanID(ctx context.Context) string {
	if spanID, ok := ctx.Value(SpanIDKey).(string); ok {
		return spanID
	}
	return ""
}

// extractContextFields extracts common fields from context for logging.
// Returns a slice of key-value pairs suitable for logger.With().
func extractContextFields(ctx context.Context) []any {
	var fields []any

	// Extract validation run ID
	if validationID := GetValidationID(ctx); validationID != "" {
		fields = append(fields, "validation_id", validationID)
	}

	// Extract LC reference
	if lcReference := GetLCReference(ctx); lcReference != "" {
		fields = append(fields, "lc_reference", lcReference)
	}

	// Extract examiner identity
	if checkedBy := GetCheckedBy(ctx); checkedBy != "" {
		fields = append(fields, "checked_by", checkedBy)
	}

	// Extract rule source
	if source := GetSource(ctx); source != "" {
		fields = append(fields, "source", source)
	}

	// Extract catalog version
	if version := GetCatalogVersion(ctx); version != "" {
		fields = append(fields, "catalog_version", version)
	}

	// Extract trace ID
	if traceID := GetTraceID(ctx); traceID != "" {
		fields = append(fields, "trace_id", traceID)
	}

	// Extract span ID
	if spanID := GetSpanID(ctx); spanID != "" {
		fields = append(fields, "span_id", spanID)
	}

	return fields
}

// ContextLogger is a logger that automatically includes context fields.
type ContextLogger struct {
	logger *Logger
	ctx    context.Context
}

// NewContextLogger creates a logger that automatically includes context fields.
// Fields are extracted per call, not baked into the logger, so each entry
// carries them exactly once.
func NewContextLogger(logger *Logger, ctx context.Context) *ContextLogger {
	return &ContextLogger{
		logger: logger,
		ctx:    ctx,
	}
}

// Debug logs a debug message with context fields.
func (cl *ContextLogger) Debug(msg string, args ...any) {
	cl.logger.DebugContext(cl.ctx, msg, args...)
}

// Info logs an info message with context fields.
func (cl *ContextLogger) Info(msg string, args ...any) {
	cl.logger.InfoContext(cl.ctx, msg, args...)
}

// Warn logs a warning message with context fields.
func (cl *ContextLogger) Warn(msg string, args ...any) {
	cl.logger.WarnContext(cl.ctx, msg, args...)
}

// Error logs an error message with context fields.
func (cl *ContextLogger) Error(msg string, args ...any) {
	cl.logger.ErrorContext(cl.ctx, msg, args...)
}

// With creates a new context logger with additional fields.
func (cl *ContextLogger) With(args ...any) *ContextLogger {
	return &ContextLogger{
		logger: cl.logger.With(args...),
		ctx:    cl.ctx,
	}
}
