package clog

import (
	"context"
	"log/slog"
)

// AttributesHandler decorates another handler with the attributes collected
// on the record's context.
type AttributesHandler struct {
	handler slog.Handler
}

func NewAttributesHandler(handler slog.Handler) *AttributesHandler {
	return &AttributesHandler{handler: handler}
}

func (h *AttributesHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *AttributesHandler) Handle(ctx context.Context, record slog.Record) error {
	if values := GetAttributes(ctx); len(values) > 0 {
		attrs := make([]slog.Attr, 0, len(values))
		for k, v := range values {
			attrs = append(attrs, slog.Any(k, v))
		}
		record.AddAttrs(attrs...)
	}
	return h.handler.Handle(ctx, record)
}

func (h *AttributesHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AttributesHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *AttributesHandler) WithGroup(name string) slog.Handler {
	return &AttributesHandler{handler: h.handler.WithGroup(name)}
}
