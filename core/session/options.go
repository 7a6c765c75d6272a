package session

import (
	"net/http"

	"github.com/leofalp/chatbridge/core/bridge"
	"github.com/leofalp/chatbridge/core/metrics"
	"github.com/leofalp/chatbridge/providers/memory"
	"github.com/leofalp/chatbridge/providers/observability"
)

// Option configures a Controller.
type Option func(*options)

type options struct {
	client      *http.Client
	store       memory.Store
	groupID     string
	observer    observability.Provider
	metrics     *metrics.Collector
	annotate    bool
	middlewares []bridge.Middleware
}

func defaultOptions() options {
	return options{annotate: true}
}

// WithHTTPClient sets the client used for provider requests. Share one
// client (see the transport package) across controllers so connections are
// pooled per host.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.client = client }
}

// WithStore persists every finished exchange to store and reads prior turns
// from it. Without a store the controller uses its own transcript as
// history.
func WithStore(store memory.Store) Option {
	return func(o *options) { o.store = store }
}

// WithGroupID sets the conversation the controller reads and writes. A new
// id is generated when none is given.
func WithGroupID(groupID string) Option {
	return func(o *options) { o.groupID = groupID }
}

// WithObserver enables spans and structured logs for every generation.
func WithObserver(observer observability.Provider) Option {
	return func(o *options) { o.observer = observer }
}

// WithMetrics records generation outcomes and stream counters on collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(o *options) { o.metrics = collector }
}

// WithAnnotations toggles the model name and tokens/sec suffix appended to
// completed answers. Enabled by default.
func WithAnnotations(enabled bool) Option {
	return func(o *options) { o.annotate = enabled }
}

// WithMiddleware wraps the streaming call with bridge middlewares,
// outermost first.
func WithMiddleware(middlewares ...bridge.Middleware) Option {
	return func(o *options) { o.middlewares = append(o.middlewares, middlewares...) }
}
