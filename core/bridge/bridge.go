package bridge

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/leofalp/chatbridge/internal/utils"
	"github.com/leofalp/chatbridge/providers/ai"
	"github.com/leofalp/chatbridge/providers/observability"
)

// maxLoggedLineLength bounds skipped lines echoed to trace logs.
const maxLoggedLineLength = 200

// Bridge sends prepared requests to one provider and turns the response
// into a stream of text deltas. It is bound to a single connection config
// and adapter; a provider switch builds a new Bridge.
type Bridge struct {
	client  *http.Client
	cfg     ai.ConnectionConfig
	adapter ai.Adapter
	stream  StreamFunc
}

// New creates a Bridge. A nil client falls back to http.DefaultClient.
// Middlewares wrap Stream outermost-first.
func New(client *http.Client, cfg ai.ConnectionConfig, adapter ai.Adapter, middlewares ...Middleware) *Bridge {
	if client == nil {
		client = http.DefaultClient
	}

	b := &Bridge{client: client, cfg: cfg, adapter: adapter}
	b.stream = buildStreamChain(b.openStream, middlewares)
	return b
}

// Adapter returns the provider adapter the bridge speaks through.
func (b *Bridge) Adapter() ai.Adapter {
	return b.adapter
}

// Config returns the connection config the bridge is bound to.
func (b *Bridge) Config() ai.ConnectionConfig {
	return b.cfg
}

// Stream posts req and returns a DeltaStream over the response lines.
//
// Failures before the first byte of the body (connection refused, timeout,
// non-2xx status) are returned synchronously as [*ai.TransportError] or
// [*ai.ProtocolError]. Afterwards every non-empty line goes through the
// adapter and each non-empty delta is yielded as soon as it is parsed. The
// stream ends at EOF, at the provider's terminal marker, or when ctx is
// cancelled, in which case ctx.Err() is yielded.
func (b *Bridge) Stream(ctx context.Context, req *ai.PreparedRequest) (*ai.DeltaStream, error) {
	return b.stream(ctx, req)
}

func (b *Bridge) openStream(ctx context.Context, req *ai.PreparedRequest) (*ai.DeltaStream, error) {
	observer := observability.ObserverFromContext(ctx)
	span := observability.SpanFromContext(ctx)
	url := b.cfg.URL(req.Path)

	if span != nil {
		span.AddEvent(observability.EventStreamStart,
			observability.String(observability.AttrLLMProvider, string(b.cfg.Provider)),
			observability.String(observability.AttrLLMEndpoint, url),
		)
	}
	if observer != nil {
		observer.Trace(ctx, "Opening provider stream",
			observability.String(observability.AttrLLMProvider, string(b.cfg.Provider)),
			observability.String(observability.AttrHTTPURL, url),
		)
	}

	response, err := utils.DoPostStream(ctx, b.client, url, req.Body, req.Header)
	if err != nil {
		return nil, b.classify("stream request", err)
	}

	var stream *ai.DeltaStream
	iteratorFunc := func(yield func(string, error) bool) {
		defer utils.CloseWithLog(response.Body)
		defer func() {
			if span != nil {
				stats := stream.Stats()
				span.AddEvent(observability.EventStreamEnd,
					observability.Int(observability.AttrStreamLines, stats.Lines),
					observability.Int(observability.AttrStreamSkipped, stats.Skipped),
					observability.Int(observability.AttrStreamDeltas, stats.Deltas),
					observability.Bool(observability.AttrStreamFinal, stats.Final),
				)
			}
		}()

		scanner := utils.NewLineScanner(response.Body)
		for {
			if ctx.Err() != nil {
				yield("", ctx.Err())
				return
			}

			line, scanErr := scanner.Next()
			if scanErr == io.EOF {
				return
			}
			if scanErr != nil {
				if ctx.Err() != nil {
					yield("", ctx.Err())
					return
				}
				yield("", &ai.TransportError{Provider: b.cfg.Provider, Op: "stream read", Err: scanErr})
				return
			}

			result := b.adapter.ParseStreamLine(line)
			stream.RecordLine(result)

			if !result.HasDelta() && !result.Final && observer != nil {
				observer.Trace(ctx, "Skipped stream line",
					observability.String(observability.AttrLLMProvider, string(b.cfg.Provider)),
					observability.String(observability.AttrStreamLine, utils.Truncate(line, maxLoggedLineLength)),
				)
			}

			if result.HasDelta() {
				if !yield(result.Delta, nil) {
					return
				}
			}
			if result.Final {
				return
			}
		}
	}

	stream = ai.NewDeltaStream(iteratorFunc)
	return stream, nil
}

// OneShot posts req and returns the complete response body. It is used for
// the non-streaming fallback.
func (b *Bridge) OneShot(ctx context.Context, req *ai.PreparedRequest) ([]byte, error) {
	url := b.cfg.URL(req.Path)

	if observer := observability.ObserverFromContext(ctx); observer != nil {
		observer.Trace(ctx, "Sending one-shot request",
			observability.String(observability.AttrLLMProvider, string(b.cfg.Provider)),
			observability.String(observability.AttrHTTPURL, url),
		)
	}

	body, err := utils.DoPost(ctx, b.client, url, req.Body, req.Header)
	if err != nil {
		return nil, b.classify("one-shot request", err)
	}
	return body, nil
}

// Get performs a GET against the provider and returns the body. Errors are
// classified the same way as for Stream.
func (b *Bridge) Get(ctx context.Context, path string, header http.Header) ([]byte, error) {
	body, err := utils.DoGet(ctx, b.client, b.cfg.URL(path), header)
	if err != nil {
		return nil, b.classify("GET "+path, err)
	}
	return body, nil
}

// classify turns a utils HTTP error into the typed error surfaced to callers.
func (b *Bridge) classify(op string, err error) error {
	return ClassifyError(b.cfg.Provider, op, err)
}

// ClassifyError maps an error from the HTTP helpers onto [*ai.ProtocolError]
// for non-2xx statuses and [*ai.TransportError] for everything else.
// Context errors stay reachable through errors.Is.
func ClassifyError(provider ai.ProviderKind, op string, err error) error {
	var statusErr *utils.HTTPStatusError
	if errors.As(err, &statusErr) {
		return &ai.ProtocolError{
			Provider:   provider,
			StatusCode: statusErr.StatusCode,
			Message:    utils.ExtractErrorMessage(statusErr.ContentType, statusErr.Body),
			Body:       utils.Truncate(string(statusErr.Body), 0),
		}
	}
	return &ai.TransportError{Provider: provider, Op: op, Err: err}
}
