package logging

import (
	"context"
	"log/slog"
)

// RedactingHandler is a slog.Handler middleware that redacts sensitive
// attribute values before delegating to the wrapped handler. Because it
// sits in the handler chain, every logger built on top of it redacts,
// including loggers handed to other components.
type RedactingHandler struct {
	inner    slog.Handler
	redactor *Redactor
}

// NewRedactingHandler wraps a handler with attribute redaction.
func NewRedactingHandler(inner slog.Handler, redactor *Redactor) *RedactingHandler {
	return &RedactingHandler{
		inner:    inner,
		redactor: redactor,
	}
}

// Enabled reports whether the wrapped handler handles records at the given level.
func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle redacts the record's attributes and passes the record on.
func (h *RedactingHandler) Handle(ctx context.Context, rec slog.Record) error {
	out := slog.NewRecord(rec.Time, rec.Level, rec.Message, rec.PC)
	rec.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.redactAttr(a))
		return true
	})
	return h.inner.Handle(ctx, out)
}

// WithAttrs returns a handler whose pre-set attributes are redacted.
func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.redactAttr(a)
	}
	return &RedactingHandler{
		inner:    h.inner.WithAttrs(redacted),
		redactor: h.redactor,
	}
}

// WithGroup returns a handler that starts a group with the given name.
func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{
		inner:    h.inner.WithGroup(name),
		redactor: h.redactor,
	}
}

// redactAttr redacts a single attribute. Group members are redacted
// recursively; values under sensitive keys are masked entirely; string
// values are run through the pattern set.
func (h *RedactingHandler) redactAttr(a slog.Attr) slog.Attr {
	value := a.Value.Resolve()

	if value.Kind() == slog.KindGroup {
		members := value.Group()
		redacted := make([]slog.Attr, len(members))
		for i, m := range members {
			redacted[i] = h.redactAttr(m)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(redacted...)}
	}

	if h.redactor.isSensitiveKey(a.Key) {
		return slog.Attr{Key: a.Key, Value: slog.AnyValue(h.redactor.redactValue(value.Any()))}
	}

	if value.Kind() == slog.KindString {
		return slog.String(a.Key, h.redactor.RedactString(value.String()))
	}

	return slog.Attr{Key: a.Key, Value: value}
}
