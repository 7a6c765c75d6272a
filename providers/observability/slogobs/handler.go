package slogobs

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/leofalp/chatbridge/providers/observability"
)

// Format selects the line layout written by [NewHandler].
type Format string

const (
	// FormatCompact writes key=value lines without a timestamp, for a
	// terminal that also shows the streamed answer.
	FormatCompact Format = "compact"
	// FormatJSON writes one JSON object per line.
	FormatJSON Format = "json"
)

// shortIDLength is how much of a generation id compact lines keep.
const shortIDLength = 8

// ParseFormat parses "compact" or "json", ignoring case. An empty string is
// compact.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCompact, "":
		return FormatCompact, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return FormatCompact, fmt.Errorf("unknown log format %q", s)
}

// FormatFromEnv reads CHATBRIDGE_LOG_FORMAT, then LOG_FORMAT. Unset or
// unknown values give compact.
func FormatFromEnv() Format {
	format, _ := ParseFormat(envFirst("CHATBRIDGE_LOG_FORMAT", "LOG_FORMAT"))
	return format
}

// NewHandler returns a handler writing records at or above level to w.
//
// Both formats print TRACE for [LevelTrace]. Compact lines also drop the
// timestamp and shorten generation ids, which are full UUIDs in JSON.
func NewHandler(w io.Writer, format Format, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}

	if format == FormatJSON {
		opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.LevelKey {
				return slog.String(slog.LevelKey, levelName(a.Value.Any().(slog.Level)))
			}
			return a
		}
		return slog.NewJSONHandler(w, opts)
	}

	opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
		if len(groups) > 0 {
			return a
		}
		switch a.Key {
		case slog.TimeKey:
			return slog.Attr{}
		case slog.LevelKey:
			return slog.String(slog.LevelKey, levelName(a.Value.Any().(slog.Level)))
		case observability.AttrGenerationID:
			if id := a.Value.String(); len(id) > shortIDLength {
				return slog.String(a.Key, id[:shortIDLength])
			}
		}
		return a
	}
	return slog.NewTextHandler(w, opts)
}
