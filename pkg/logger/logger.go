package logger

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// HandlerOptions configures the handler returned by NewHandler.
type HandlerOptions struct {
	Level  slog.Level
	Format string // "json" or "text"
	Output io.Writer
}

// NewHandler creates the default slog handler of the service.
// Nil options mean JSON on stdout at info level.
func NewHandler(opts *HandlerOptions) slog.Handler {
	if opts == nil {
		opts = &HandlerOptions{Level: slog.LevelInfo, Format: "json"}
	}
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	return &errorSourceHandler{
		Handler: newBaseHandler(opts.Format, out, &slog.HandlerOptions{Level: opts.Level}),
		sourced: newBaseHandler(opts.Format, out, &slog.HandlerOptions{Level: opts.Level, AddSource: true}),
	}
}

func newBaseHandler(format string, out io.Writer, opts *slog.HandlerOptions) slog.Handler {
	if strings.EqualFold(format, "text") {
		return slog.NewTextHandler(out, opts)
	}

	return slog.NewJSONHandler(out, opts)
}

// ParseLevel converts a config string to slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
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

// errorSourceHandler adds caller information to error records only.
type errorSourceHandler struct {
	slog.Handler
	sourced slog.Handler
}

func (h *errorSourceHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return h.sourced.Handle(ctx, r)
	}

	return h.Handler.Handle(ctx, r)
}

func (h *errorSourceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &errorSourceHandler{Handler: h.Handler.WithAttrs(attrs), sourced: h.sourced.WithAttrs(attrs)}
}

func (h *errorSourceHandler) WithGroup(name string) slog.Handler {
	return &errorSourceHandler{Handler: h.Handler.WithGroup(name), sourced: h.sourced.WithGroup(name)}
}

// NewLoggerMiddleware returns a chi middleware logging every request.
func NewLoggerMiddleware(log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			attrs := []any{
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
			}

			switch {
			case ww.Status() >= http.StatusInternalServerError:
				log.Error("HTTP request completed", attrs...)
			case ww.Status() >= http.StatusBadRequest:
				log.Warn("HTTP request completed", attrs...)
			default:
				log.Info("HTTP request completed", attrs...)
			}
		})
	}
}
