package logging

import (
	"io"
	"log/slog"
	"os"
)

// New creates a structured logger with text output on stderr.
// app: application name (e.g., "shuttle")
// level: one of "debug", "info", "warn", "error" (default: "info")
func New(app string, level string) *slog.Logger {
	return NewWithWriter(os.Stderr, app, level)
}

// NewWithWriter is New with an explicit output writer, for tests.
func NewWithWriter(w io.Writer, app string, level string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}
	logger := slog.New(slog.NewTextHandler(w, opts))

	return logger.With(
		slog.String("app", app),
		slog.Int("pid", os.Getpid()),
	)
}

func parseLevel(level string) slog.Level {
	switch level {
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
