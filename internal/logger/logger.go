// Package logger provides structured logging setup for the dashboard.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/config"
)

// New creates a *slog.Logger from the given Logging config.
// Output is JSON to stdout with a "service" attribute on every record.
// In async mode records pass through an AsyncHandler; call Close on the
// returned Closer before exit to flush it.
func New(cfg config.Logging) (*slog.Logger, Closer) {
	level := parseLevel(cfg.Level)

	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	handler = &contextHandler{Handler: handler}

	var closer Closer = nopCloser{}
	if cfg.Async {
		buf, workers := cfg.AsyncBuffer, cfg.AsyncWorkers
		if buf <= 0 {
			buf = 10000
		}
		if workers <= 0 {
			workers = 4
		}
		ah := NewAsyncHandler(handler, buf, workers)
		handler, closer = ah, ah
	}

	return slog.New(handler).With("service", cfg.Service), closer
}

// contextHandler tags records logged with a *Context method with the
// request_id and user_id carried by the context.
type contextHandler struct {
	slog.Handler
}

func (h *contextHandler) Handle(ctx context.Context, rec slog.Record) error { //nolint:gocritic // slog.Handler interface requires value receiver
	f := fromContext(ctx)
	if f.requestID != "" {
		rec.AddAttrs(slog.String("request_id", f.requestID))
	}
	if f.userID != "" {
		rec.AddAttrs(slog.String("user_id", f.userID))
	}
	return h.Handler.Handle(ctx, rec)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name)}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
