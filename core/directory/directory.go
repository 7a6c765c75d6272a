package directory

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/leofalp/chatbridge/core/bridge"
	"github.com/leofalp/chatbridge/core/metrics"
	"github.com/leofalp/chatbridge/core/settings"
	"github.com/leofalp/chatbridge/providers/ai"
	"github.com/leofalp/chatbridge/providers/ai/adapters"
	"github.com/leofalp/chatbridge/providers/observability"
)

// DefaultTimeout bounds a single model listing.
const DefaultTimeout = 10 * time.Second

// Directory lists the models each provider offers. Listing is fail-soft:
// any failure yields an empty list, so a picker simply shows nothing for an
// unreachable or misconfigured provider.
type Directory struct {
	client  *http.Client
	metrics *metrics.Collector
	timeout time.Duration
}

// Option configures a Directory.
type Option func(*Directory)

// WithMetrics records listing results on collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(d *Directory) { d.metrics = collector }
}

// WithTimeout overrides the per-listing timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Directory) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// New creates a Directory sharing client with the rest of the bridge.
func New(client *http.Client, opts ...Option) *Directory {
	d := &Directory{client: client, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ListModels returns the model identifiers offered by cfg's provider, in
// the order the server reports them. It never fails: a missing API key,
// a transport error, a non-2xx status or an unexpected body all produce an
// empty slice.
func (d *Directory) ListModels(ctx context.Context, cfg ai.ConnectionConfig) []string {
	observer := observability.ObserverFromContext(ctx)
	providerAttr := observability.String(observability.AttrLLMProvider, string(cfg.Provider))

	if observer != nil {
		var span observability.Span
		ctx, span = observer.StartSpan(ctx, observability.SpanListModels, providerAttr)
		defer span.End()
	}

	models, err := d.listModels(ctx, cfg)
	if err != nil {
		if observer != nil {
			observer.Debug(ctx, "Model listing failed", providerAttr, observability.Error(err))
		}
		d.metrics.RecordModelList(cfg.Provider, 0, true)
		return []string{}
	}

	if observer != nil {
		observer.Debug(ctx, "Models listed", providerAttr, observability.Int(observability.AttrModelCount, len(models)))
	}
	d.metrics.RecordModelList(cfg.Provider, len(models), false)
	return models
}

func (d *Directory) listModels(ctx context.Context, cfg ai.ConnectionConfig) ([]string, error) {
	adapter, err := adapters.New(cfg)
	if err != nil {
		return nil, err
	}

	header, err := adapter.ModelListHeaders()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	body, err := bridge.New(d.client, cfg, adapter).Get(ctx, adapter.ModelListEndpoint(), header)
	if err != nil {
		return nil, err
	}
	return adapter.ParseModelList(body), nil
}

// ListAll lists the models of every provider enabled in s concurrently.
// Every enabled provider has an entry, empty when its listing failed.
func (d *Directory) ListAll(ctx context.Context, s settings.Settings) map[ai.ProviderKind][]string {
	enabled := s.EnabledProviders()
	result := make(map[ai.ProviderKind][]string, len(enabled))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, kind := range enabled {
		wg.Add(1)
		go func(kind ai.ProviderKind) {
			defer wg.Done()
			models := d.ListModels(ctx, s.ConnectionConfig(kind))

			mu.Lock()
			result[kind] = models
			mu.Unlock()
		}(kind)
	}
	wg.Wait()

	return result
}
