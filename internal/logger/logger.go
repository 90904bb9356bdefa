// Package logger builds the slog loggers used by the engine's binaries:
// JSON lines for the Lambda runtime, colored console output for the CLI.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// New returns a JSON-structured logger writing to stderr.
func New() *slog.Logger {
	return NewJSON(os.Stderr, slog.LevelInfo)
}

// NewJSON returns a JSON-structured logger at the given level.
func NewJSON(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewConsole returns a logger with timestamped, human-readable output.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func NewConsole(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           log.Level(level),
	}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps a level name to a slog level. Unknown names give info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
