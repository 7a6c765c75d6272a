package observability

import (
	"context"
	"log/slog"
	"time"
)

// Provider is what the session hands down to the layers it drives: spans
// for the generation timeline and leveled log calls. Counters live in the
// Prometheus collector, not here.
type Provider interface {
	Tracer
	Logger
}

// Tracer opens spans.
type Tracer interface {
	StartSpan(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Span is one timed step of a generation: the whole generation, the
// streaming request, a fallback call or a model listing.
type Span interface {
	End()
	SetAttributes(attrs ...Attribute)
	SetStatus(code StatusCode, description string)
	RecordError(err error)
	AddEvent(name string, attrs ...Attribute)
}

// StatusCode is the final status of a span.
type StatusCode int

const (
	StatusUnset StatusCode = iota
	StatusOK
	StatusError
)

// String returns "unset", "ok" or "error".
func (c StatusCode) String() string {
	switch c {
	case StatusOK:
		return "ok"
	case StatusError:
		return "error"
	default:
		return "unset"
	}
}

// Logger is a leveled structured logger. Trace sits below Debug and is
// where per-line stream diagnostics go.
type Logger interface {
	Trace(ctx context.Context, msg string, attrs ...Attribute)
	Debug(ctx context.Context, msg string, attrs ...Attribute)
	Info(ctx context.Context, msg string, attrs ...Attribute)
	Warn(ctx context.Context, msg string, attrs ...Attribute)
	Error(ctx context.Context, msg string, attrs ...Attribute)
}

// Attribute is a key-value pair attached to a span or a log call. It is a
// slog.Attr so slog-backed providers pass attributes through unchanged.
type Attribute = slog.Attr

func String(key, value string) Attribute {
	return slog.String(key, value)
}

func Int(key string, value int) Attribute {
	return slog.Int(key, value)
}

func Float64(key string, value float64) Attribute {
	return slog.Float64(key, value)
}

func Bool(key string, value bool) Attribute {
	return slog.Bool(key, value)
}

func Duration(key string, value time.Duration) Attribute {
	return slog.Duration(key, value)
}

// Error returns an [AttrError] attribute holding err's message, or an empty
// string for a nil error.
func Error(err error) Attribute {
	if err == nil {
		return slog.String(AttrError, "")
	}
	return slog.String(AttrError, err.Error())
}
