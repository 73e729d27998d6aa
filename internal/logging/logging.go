package logging

import (
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps a LOG_LEVEL style name onto a slog level.
func ParseLevel(name string, fallback slog.Level) slog.Level {
	switch strings.ToLower(name) {
	case "dev", "development", "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "production", "prod":
		return slog.LevelError
	default:
		return fallback
	}
}

// Init installs a text logger on stderr as the slog default. level is used
// when LOG_LEVEL is unset; an explicit level name always wins over both.
func Init(level slog.Level, explicit string) {
	if l, ok := os.LookupEnv("LOG_LEVEL"); ok {
		level = ParseLevel(l, level)
	}
	if explicit != "" {
		level = ParseLevel(explicit, level)
	}

	logger := slog.New(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}),
	)
	slog.SetDefault(logger)
}
