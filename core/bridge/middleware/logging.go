package middleware

import (
	"context"
	"iter"
	"log/slog"
	"time"

	"github.com/leofalp/chatbridge/core/bridge"
	"github.com/leofalp/chatbridge/internal/utils"
	"github.com/leofalp/chatbridge/providers/ai"
)

// LogLevel controls how much detail the logging middleware emits per stream.
type LogLevel int

const (
	// LogLevelMinimal logs only the endpoint path, duration and delta count.
	LogLevelMinimal LogLevel = iota

	// LogLevelStandard adds wire line counts and the accumulated text length.
	// This is the recommended default.
	LogLevelStandard

	// LogLevelVerbose adds the request body and the final text, each
	// truncated to 500 characters.
	//
	// WARNING: LogLevelVerbose logs raw prompts and answers. Use it for
	// local debugging only.
	LogLevelVerbose
)

// truncateLen is the maximum content length included in verbose log output.
const truncateLen = 500

// NewLoggingMiddleware returns a middleware that logs when a stream opens,
// fails to open, ends, fails mid-stream, or is abandoned by the caller.
//
// The logger parameter must not be nil. Use slog.Default() if you have not
// configured a custom logger.
func NewLoggingMiddleware(logger *slog.Logger, level LogLevel) bridge.Middleware {
	return func(next bridge.StreamFunc) bridge.StreamFunc {
		return func(ctx context.Context, req *ai.PreparedRequest) (*ai.DeltaStream, error) {
			logger.InfoContext(ctx, "llm stream", buildRequestAttrs(req, level)...)

			start := time.Now()
			stream, err := next(ctx, req)
			if err != nil {
				logger.ErrorContext(ctx, "llm stream failed",
					slog.String("path", req.Path),
					slog.Duration("duration", time.Since(start)),
					slog.String("error", err.Error()),
				)
				return nil, err
			}

			return wrapStreamWithLogging(ctx, stream, logger, req.Path, level, start), nil
		}
	}
}

// wrapStreamWithLogging returns a stream whose iterator logs a completion
// entry when the stream ends, or an error entry on failure.
func wrapStreamWithLogging(
	ctx context.Context,
	stream *ai.DeltaStream,
	logger *slog.Logger,
	path string,
	level LogLevel,
	start time.Time,
) *ai.DeltaStream {
	var wrapped *ai.DeltaStream
	wrapped = stream.Derive(func(seq iter.Seq2[string, error]) iter.Seq2[string, error] {
		return func(yield func(string, error) bool) {
			for delta, err := range seq {
				if err != nil {
					logger.ErrorContext(ctx, "llm stream interrupted",
						slog.String("path", path),
						slog.Duration("duration", time.Since(start)),
						slog.Int("deltas", wrapped.Stats().Deltas),
						slog.String("error", err.Error()),
					)
					yield("", err)
					return
				}

				if !yield(delta, nil) {
					logger.InfoContext(ctx, "llm stream abandoned",
						slog.String("path", path),
						slog.Duration("duration", time.Since(start)),
					)
					return
				}
			}

			logger.InfoContext(ctx, "llm stream completed", buildCompletionAttrs(wrapped, path, time.Since(start), level)...)
		}
	})
	return wrapped
}

// buildRequestAttrs returns slog attributes for an outgoing stream request.
func buildRequestAttrs(req *ai.PreparedRequest, level LogLevel) []any {
	attrs := []any{slog.String("path", req.Path)}

	if level >= LogLevelVerbose {
		attrs = append(attrs, slog.String("body", utils.JSONPreview(req.Body, truncateLen)))
	}
	return attrs
}

// buildCompletionAttrs returns slog attributes for a finished stream.
func buildCompletionAttrs(stream *ai.DeltaStream, path string, elapsed time.Duration, level LogLevel) []any {
	stats := stream.Stats()
	attrs := []any{
		slog.String("path", path),
		slog.Duration("duration", elapsed),
		slog.Int("deltas", stats.Deltas),
	}

	if level >= LogLevelStandard {
		attrs = append(attrs,
			slog.Int("lines", stats.Lines),
			slog.Int("lines_skipped", stats.Skipped),
			slog.Bool("final_marker", stats.Final),
			slog.Int("text_length", len(stream.Text())),
		)
	}

	if level >= LogLevelVerbose {
		attrs = append(attrs, slog.String("text", utils.Truncate(stream.Text(), truncateLen)))
	}
	return attrs
}
