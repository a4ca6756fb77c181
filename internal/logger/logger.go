package logger

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

const (
	FormatPretty = "pretty"
	FormatJSON   = "json"
)

// ContextAttrs extracts request-scoped attributes, such as a request id,
// from the context passed to the *Context logging calls.
type ContextAttrs func(ctx context.Context) []slog.Attr

// New builds the process logger. Unknown formats fall back to pretty and
// unknown levels to info.
func New(w io.Writer, format string, level string, fromContext ContextAttrs) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = NewPrettyHandler(w, opts)
	}

	if fromContext != nil {
		handler = &contextHandler{Handler: handler, fromContext: fromContext}
	}

	return slog.New(handler)
}

func ParseLevel(level string) slog.Level {
	var parsed slog.Level
	if err := parsed.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return parsed
}

type contextHandler struct {
	slog.Handler
	fromContext ContextAttrs
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		r.AddAttrs(h.fromContext(ctx)...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs), fromContext: h.fromContext}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name), fromContext: h.fromContext}
}
