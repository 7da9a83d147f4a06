// Package observability configures process-wide structured logging.
//
// Log lines go to stdout and, when a file is configured, are duplicated into
// a size-rotated log file whose old segments are pruned after a retention
// period. WithTrace attaches the per-command trace ID.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/bdobrica/Vaani/common/redact"
	"github.com/bdobrica/Vaani/common/trace"
)

// Config selects the log level, encoding and optional rotating file.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // text or json
	// File enables rotation into the given path when non-empty.
	File string
	// MaxAgeDays is how long rotated segments are kept.
	MaxAgeDays int
	// MaxSizeMB is the segment size that triggers rotation.
	MaxSizeMB int
}

// ParseLevel maps a level name onto slog; unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// Setup installs the default slog logger. The returned closer flushes and
// closes the log file; it is a no-op when no file is configured.
func Setup(cfg Config) io.Closer {
	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}

	if cfg.File != "" {
		if cfg.MaxSizeMB <= 0 {
			cfg.MaxSizeMB = 10
		}
		lj := &lumberjack.Logger{
			Filename: cfg.File,
			MaxSize:  cfg.MaxSizeMB,
			MaxAge:   cfg.MaxAgeDays,
			Compress: true,
		}
		out = io.MultiWriter(os.Stdout, lj)
		closer = lj
	}

	slog.SetDefault(slog.New(NewHandler(out, cfg)))
	return closer
}

// NewHandler builds the slog handler Setup would install, writing to w.
func NewHandler(w io.Writer, cfg Config) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// WithTrace returns a logger that includes the trace_id carried by ctx.
func WithTrace(ctx context.Context) *slog.Logger {
	traceID := trace.FromContext(ctx)
	if traceID == "" {
		return slog.Default()
	}
	return slog.With("trace_id", traceID)
}

// RedactSecrets replaces known-sensitive values in msg with "[REDACTED]".
func RedactSecrets(msg string, sensitiveValues ...string) string {
	return redact.String(msg, sensitiveValues...)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
