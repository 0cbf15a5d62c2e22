package logger

import (
	"context"
	"log/slog"

	"github.com/zokybot/zoky-messenger-go/internal/ctxutil"
)

// ContextHandler wraps a slog.Handler and adds the tracing values stored by
// ctxutil (sender_id, page_id, request_id) to every record logged with a
// context, so call sites only pass ctx.
type ContextHandler struct {
	handler slog.Handler
}

// NewContextHandler creates a new ContextHandler that wraps the provided handler.
func NewContextHandler(handler slog.Handler) *ContextHandler {
	return &ContextHandler{handler: handler}
}

// Enabled delegates to the wrapped handler.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle adds context values as attributes before delegating.
// Canceling ctx does not affect record processing (per slog.Handler contract).
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if senderID := ctxutil.GetSenderID(ctx); senderID != "" {
		r.AddAttrs(slog.String("sender_id", senderID))
	}
	if pageID := ctxutil.GetPageID(ctx); pageID != "" {
		r.AddAttrs(slog.String("page_id", pageID))
	}
	if requestID, ok := ctxutil.GetRequestID(ctx); ok && requestID != "" {
		r.AddAttrs(slog.String("request_id", requestID))
	}
	return h.handler.Handle(ctx, r)
}

// WithAttrs returns a new ContextHandler wrapping handler.WithAttrs.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{handler: h.handler.WithAttrs(attrs)}
}

// WithGroup returns a new ContextHandler wrapping handler.WithGroup.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{handler: h.handler.WithGroup(name)}
}
