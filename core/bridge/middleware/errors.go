package middleware

import "errors"

// ErrRetryExhausted is returned by the retry middleware when every attempt
// to open a stream failed. It is wrapped together with the last error so
// callers can inspect the root cause with [errors.As].
//
// Example:
//
//	if errors.Is(err, middleware.ErrRetryExhausted) {
//	    // all retries failed
//	}
var ErrRetryExhausted = errors.New("chatbridge: all retry attempts exhausted")
