// Package logging builds the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// New creates a slog.Logger writing to w at the level named by level.
// JSON output suits the server; the CLI passes text=true for a console handler.
func New(w io.Writer, level string, text bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: LevelFromString(level)}
	if text {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// LevelFromString maps a level name to a slog.Level. Unknown names select info.
func LevelFromString(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
