// Package bridge drives the HTTP side of a generation: it posts a request
// prepared by a provider adapter, reads the response body line by line and
// hands each line back to the adapter, yielding text deltas as a
// [ai.DeltaStream].
//
// The bridge knows nothing about wire formats. Ollama's newline-delimited
// JSON, SSE "data:" framing and typed vendor events all arrive as plain
// lines; the adapter strips framing and extracts text. Lines it cannot use
// are counted and logged at trace level but never fail the stream.
//
// Errors are split by phase. Anything that goes wrong before the body
// starts is returned synchronously from [Bridge.Stream] as an
// [*ai.TransportError] or [*ai.ProtocolError]. Once streaming, a read
// failure or cancellation is yielded through the iterator.
//
// Cross-cutting behavior is added with [Middleware]; see the middleware
// subpackage for logging, retry and timeout implementations.
package bridge
