package transport

import (
	"net"
	"net/http"
	"time"

	"github.com/leofalp/chatbridge/core/settings"
)

const (
	// DefaultRequestTimeout bounds the wait for response headers. Local
	// models can take minutes to load before the first byte.
	DefaultRequestTimeout = 300 * time.Second
	// DefaultResourceTimeout bounds a whole exchange, streamed body included.
	DefaultResourceTimeout = 600 * time.Second
	// DefaultMaxConnsPerHost limits parallel connections to one server.
	DefaultMaxConnsPerHost = 6
)

// Config captures the transport knobs the bridge cares about.
type Config struct {
	RequestTimeout  time.Duration
	ResourceTimeout time.Duration
	MaxConnsPerHost int

	// Base replaces the tuned default transport when set.
	Base http.RoundTripper
}

// Option configures a Config.
type Option func(*Config)

// WithRequestTimeout sets the response header timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Config) { c.RequestTimeout = d }
}

// WithResourceTimeout sets the overall client timeout.
func WithResourceTimeout(d time.Duration) Option {
	return func(c *Config) { c.ResourceTimeout = d }
}

// WithMaxConnsPerHost sets the per-host connection limit.
func WithMaxConnsPerHost(n int) Option {
	return func(c *Config) { c.MaxConnsPerHost = n }
}

// WithTransport sets the base round tripper, mostly for tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Config) { c.Base = rt }
}

// FromSettings maps the transport part of s onto options.
func FromSettings(s settings.Settings) []Option {
	return []Option{
		WithRequestTimeout(s.RequestTimeout),
		WithResourceTimeout(s.ResourceTimeout),
		WithMaxConnsPerHost(s.MaxConnsPerHost),
	}
}

// NewClient builds the HTTP client shared by every provider request. The
// client pools idle connections, caps connections per host and sends
// every request with caching disabled.
func NewClient(opts ...Option) *http.Client {
	cfg := Config{
		RequestTimeout:  DefaultRequestTimeout,
		ResourceTimeout: DefaultResourceTimeout,
		MaxConnsPerHost: DefaultMaxConnsPerHost,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	base := cfg.Base
	if base == nil {
		base = NewTransport(cfg)
	}

	return &http.Client{
		Transport: noCache(base),
		Timeout:   cfg.ResourceTimeout,
	}
}

// NewTransport builds an *http.Transport from a clone of
// http.DefaultTransport with the overrides in cfg applied.
func NewTransport(cfg Config) *http.Transport {
	t := defaultTransport()
	if cfg.RequestTimeout > 0 {
		t.ResponseHeaderTimeout = cfg.RequestTimeout
	}
	if cfg.MaxConnsPerHost > 0 {
		t.MaxConnsPerHost = cfg.MaxConnsPerHost
		t.MaxIdleConnsPerHost = cfg.MaxConnsPerHost
	}
	return t
}

func defaultTransport() *http.Transport {
	base, _ := http.DefaultTransport.(*http.Transport)
	if base == nil {
		return &http.Transport{}
	}
	t := base.Clone()

	t.DialContext = (&net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext
	t.TLSHandshakeTimeout = 10 * time.Second
	t.ExpectContinueTimeout = 1 * time.Second
	t.IdleConnTimeout = 90 * time.Second
	t.ForceAttemptHTTP2 = true
	return t
}

// RoundTripperFunc adapts a function to an http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

// RoundTrip implements http.RoundTripper.
func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// noCache sets Cache-Control: no-cache on every outgoing request. The
// request is cloned because a RoundTripper must not modify its input.
func noCache(next http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		if r.Header.Get("Cache-Control") == "" {
			r = r.Clone(r.Context())
			r.Header.Set("Cache-Control", "no-cache")
		}
		return next.RoundTrip(r)
	})
}
