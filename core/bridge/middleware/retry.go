package middleware

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/leofalp/chatbridge/core/bridge"
	"github.com/leofalp/chatbridge/providers/ai"
)

// RetryConfig holds the tuning parameters for the retry middleware. Zero
// values are replaced with the defaults documented below.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts after the first
	// failure. Default: 2.
	MaxRetries int

	// InitialBackoff is the wait before the first retry. Default: 500ms.
	InitialBackoff time.Duration

	// MaxBackoff caps the computed backoff. Default: 10s.
	MaxBackoff time.Duration

	// BackoffFactor is the exponential growth multiplier
	// (backoff = min(InitialBackoff * BackoffFactor^attempt, MaxBackoff)).
	// Default: 2.0.
	BackoffFactor float64

	// JitterFraction adds random noise in [0, JitterFraction * backoff].
	// Default: 0.1.
	JitterFraction float64

	// RetryableFunc reports whether an error should trigger a retry. The
	// default retries 429, 500, 502, 503 and 529 responses and connection
	// failures, but never a cancelled or expired context.
	RetryableFunc func(error) bool
}

// retryableStatus lists the HTTP statuses worth another attempt. 529 is the
// overloaded status some vendors use.
var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	529:                            true,
}

func defaultRetryableFunc(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var protocolErr *ai.ProtocolError
	if errors.As(err, &protocolErr) {
		return retryableStatus[protocolErr.StatusCode]
	}

	var transportErr *ai.TransportError
	return errors.As(err, &transportErr)
}

func applyRetryDefaults(config *RetryConfig) {
	if config.MaxRetries == 0 {
		config.MaxRetries = 2
	}
	if config.InitialBackoff == 0 {
		config.InitialBackoff = 500 * time.Millisecond
	}
	if config.MaxBackoff == 0 {
		config.MaxBackoff = 10 * time.Second
	}
	if config.BackoffFactor == 0 {
		config.BackoffFactor = 2.0
	}
	if config.JitterFraction == 0 {
		config.JitterFraction = 0.1
	}
	if config.RetryableFunc == nil {
		config.RetryableFunc = defaultRetryableFunc
	}
}

// computeBackoff returns the backoff for the given attempt (0-indexed).
func computeBackoff(config RetryConfig, attempt int) time.Duration {
	base := float64(config.InitialBackoff) * math.Pow(config.BackoffFactor, float64(attempt))
	if base > float64(config.MaxBackoff) {
		base = float64(config.MaxBackoff)
	}

	jitter := base * config.JitterFraction * rand.Float64() //nolint:gosec // non-cryptographic jitter is intentional
	return time.Duration(base + jitter)
}

// NewRetryMiddleware returns a middleware that retries opening a stream.
// Only synchronous failures are retried; a stream that has started is
// handed to the caller untouched, so no delta is ever delivered twice.
//
// On exhaustion the returned error wraps both [ErrRetryExhausted] and the
// last error.
func NewRetryMiddleware(config RetryConfig) bridge.Middleware {
	applyRetryDefaults(&config)

	return func(next bridge.StreamFunc) bridge.StreamFunc {
		return func(ctx context.Context, req *ai.PreparedRequest) (*ai.DeltaStream, error) {
			var lastErr error

			for attempt := 0; attempt <= config.MaxRetries; attempt++ {
				if attempt > 0 {
					backoff := computeBackoff(config, attempt-1)
					select {
					case <-ctx.Done():
						return nil, ctx.Err()
					case <-time.After(backoff):
					}
				}

				stream, err := next(ctx, req)
				if err == nil {
					return stream, nil
				}

				lastErr = err
				if !config.RetryableFunc(err) {
					return nil, err
				}
			}

			return nil, fmt.Errorf("%w after %d retries: %w", ErrRetryExhausted, config.MaxRetries, lastErr)
		}
	}
}
