// Package logging configures structured logging for log/slog.
//
// Usage:
//
//	logging.Setup("info", "text")   // coloured tint output on stderr
//	logging.Setup("debug", "json")  // JSON lines on stdout
//
// Levels: debug, info, warn, error (default: info).
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs the default slog logger for the given level and format.
// Any format other than "json" gets the coloured tint handler.
func Setup(level, format string) {
	if strings.EqualFold(format, "json") {
		slog.SetDefault(slog.New(NewJSONHandler(os.Stdout, ParseLevel(level))))
		return
	}
	slog.SetDefault(slog.New(NewTextHandler(os.Stderr, ParseLevel(level))))
}

// NewTextHandler returns a coloured tint handler.
func NewTextHandler(w io.Writer, level slog.Level) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
	})
}

// NewJSONHandler returns a JSON handler for log shipping.
func NewJSONHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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
