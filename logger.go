package memkit

import (
	"io"
	"log/slog"
	"os"
)

// Logger carries the structured logger used for allocation diagnostics.
//
// Allocators only log at debug level (budget denials), so a host
// application's handler stays quiet unless debug is enabled.
type Logger struct {
	*slog.Logger
}

// NewLogger wraps the given slog handler. A nil handler falls back to text
// output on stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NoopLogger returns a Logger that discards all output. Allocators without
// an explicit logger use this.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}
