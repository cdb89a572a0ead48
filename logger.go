package lcp

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger creates a JSON structured logger with the given level ("debug",
// "info", "warn" or "error") writing to output. Unknown levels fall back to
// info.
func NewLogger(level string, output io.Writer) *slog.Logger {
	logLevel, _ := parseLevel(level)

	handler := slog.NewJSONHandler(output, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

func parseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
