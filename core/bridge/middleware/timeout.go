package middleware

import (
	"context"
	"iter"
	"time"

	"github.com/leofalp/chatbridge/core/bridge"
	"github.com/leofalp/chatbridge/providers/ai"
)

// NewTimeoutMiddleware returns a middleware that bounds the complete
// lifetime of a stream.
//
// The deadline is attached before the request is sent but its cancel
// function is not deferred: it runs once the stream is fully consumed, a
// mid-stream error occurs, or the iterator is abandoned. A shorter deadline
// already present on the caller's context wins as usual.
func NewTimeoutMiddleware(timeout time.Duration) bridge.Middleware {
	return func(next bridge.StreamFunc) bridge.StreamFunc {
		return func(ctx context.Context, req *ai.PreparedRequest) (*ai.DeltaStream, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)

			stream, err := next(ctx, req)
			if err != nil {
				cancel()
				return nil, err
			}

			return wrapStreamWithCancel(stream, cancel), nil
		}
	}
}

// wrapStreamWithCancel returns a stream whose iterator calls cancel once the
// underlying stream finishes, errors, or the caller breaks out of the loop.
func wrapStreamWithCancel(stream *ai.DeltaStream, cancel context.CancelFunc) *ai.DeltaStream {
	return stream.Derive(func(seq iter.Seq2[string, error]) iter.Seq2[string, error] {
		return func(yield func(string, error) bool) {
			defer cancel()

			for delta, err := range seq {
				if !yield(delta, err) {
					return
				}
				if err != nil {
					return
				}
			}
		}
	})
}
