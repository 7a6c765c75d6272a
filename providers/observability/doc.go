// Package observability defines the tracing and logging interfaces shared by
// the streaming bridge, the model directory and the session controller.
//
// The central entry point is [Provider], which composes [Tracer] and
// [Logger] into a single injectable dependency. Counters and histograms are
// exported by core/metrics instead.
//
// The session controller attaches the Provider to each generation's context
// with [ContextWithObserver]; lower layers fetch it back with
// [ObserverFromContext] and the current span with [SpanFromContext]. A nil Provider means "do not observe" and every caller
// checks for it.
//
// semconv.go holds the attribute keys, span names and event names used when
// recording observations, so log lines from different layers line up.
package observability
