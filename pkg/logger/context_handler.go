package logger

import (
	"context"
	"log/slog"
)

// ContextExtractor pulls one attribute out of a context, for example the
// request id set by middleware.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// contextHandler adds extracted attributes to every record. An extracted
// key the record already carries is skipped, so handlers that log
// logger.RequestID explicitly do not emit it twice.
type contextHandler struct {
	next       slog.Handler
	extractors []ContextExtractor
}

// WrapHandler returns next decorated with the given extractors. With no
// usable extractors next is returned unchanged.
func WrapHandler(next slog.Handler, extractors ...ContextExtractor) slog.Handler {
	var usable []ContextExtractor
	for _, ex := range extractors {
		if ex != nil {
			usable = append(usable, ex)
		}
	}
	if len(usable) == 0 {
		return next
	}
	return &contextHandler{next: next, extractors: usable}
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, rec slog.Record) error {
	for _, ex := range h.extractors {
		attr, ok := ex(ctx)
		if !ok || hasKey(rec, attr.Key) {
			continue
		}
		rec.AddAttrs(attr)
	}
	return h.next.Handle(ctx, rec)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs), extractors: h.extractors}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name), extractors: h.extractors}
}

func hasKey(rec slog.Record, key string) bool {
	found := false
	rec.Attrs(func(a slog.Attr) bool {
		found = a.Key == key
		return !found
	})
	return found
}
