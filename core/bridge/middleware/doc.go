// Package middleware provides built-in [bridge.Middleware] implementations.
// Each is constructed with a New* function and passed to [bridge.New].
//
// # Available Middleware
//
//   - [NewRetryMiddleware]: Retries opening a stream with exponential backoff
//     and jitter when the provider answers 429 / 5xx or the connection fails.
//     Only the request phase is retried: once a delta has been delivered the
//     stream is never replayed. Nothing installs it by default; the
//     chatbridge command adds it only for an explicit --retries.
//
//   - [NewTimeoutMiddleware]: Bounds the whole lifetime of a stream, from the
//     request until the last delta is read.
//
//   - [NewLoggingMiddleware]: Emits structured slog entries when a stream
//     opens and when it ends, with three verbosity levels.
//
// # Usage
//
//	b := bridge.New(client, cfg, adapter,
//	    middleware.NewTimeoutMiddleware(5*time.Minute),
//	    middleware.NewRetryMiddleware(middleware.RetryConfig{MaxRetries: 2}),
//	    middleware.NewLoggingMiddleware(slog.Default(), middleware.LogLevelStandard),
//	)
//
// Middlewares execute outermost-first. In the example above a request
// travels Timeout → Retry → Logging → Bridge.
package middleware
