package slogobs

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// LevelTrace sits below DEBUG and is used for per-line stream diagnostics.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel parses trace, debug, info, warn (or warning) and error,
// ignoring case. An empty string is INFO.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO", "":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// LevelFromEnv reads CHATBRIDGE_LOG_LEVEL, then LOG_LEVEL. Unset or
// unparsable values give INFO.
func LevelFromEnv() slog.Level {
	level, _ := ParseLevel(envFirst("CHATBRIDGE_LOG_LEVEL", "LOG_LEVEL"))
	return level
}

// levelName renders TRACE instead of slog's "DEBUG-4".
func levelName(level slog.Level) string {
	if level <= LevelTrace {
		return "TRACE"
	}
	return level.String()
}

func envFirst(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}
