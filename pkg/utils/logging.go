package utils

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger creates the process logger. It writes to stderr so that nothing
// but requested output ever reaches stdout.
func NewLogger(verbose bool) *slog.Logger {
	return NewLoggerTo(os.Stderr, verbose)
}

// NewLoggerTo creates a text logger writing to w, at debug level when verbose.
func NewLoggerTo(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: func() slog.Level {
			if verbose {
				return slog.LevelDebug
			}
			return slog.LevelInfo
		}(),
	}))
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
