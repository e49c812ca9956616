package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/marumori/jiten/internal/config"
	"github.com/marumori/jiten/pkg/ctxutil"
)

// NewLogger creates a *slog.Logger based on the provided LogConfig
// and sets it as the default logger via slog.SetDefault.
//
// Format "json" produces structured JSON output (production).
// Format "text" produces human-readable output with source info (development).
// Level is one of: debug, info, warn, error (case-insensitive); defaults to info.
// Output is always os.Stderr.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	logger := newLoggerWithWriter(os.Stderr, cfg)
	slog.SetDefault(logger)
	return logger
}

func newLoggerWithWriter(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: strings.EqualFold(cfg.Format, "text"),
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(jobIDHandler{handler})
}

// jobIDHandler adds the import job ID carried in the record's context as a
// "job" attribute, so every Context-variant log call inside a job is tagged
// without threading a derived logger through the call chain.
type jobIDHandler struct {
	slog.Handler
}

func (h jobIDHandler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := ctxutil.JobIDFromCtx(ctx); ok {
		r.AddAttrs(slog.String("job", id.String()))
	}
	return h.Handler.Handle(ctx, r)
}

func (h jobIDHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return jobIDHandler{h.Handler.WithAttrs(attrs)}
}

func (h jobIDHandler) WithGroup(name string) slog.Handler {
	return jobIDHandler{h.Handler.WithGroup(name)}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
