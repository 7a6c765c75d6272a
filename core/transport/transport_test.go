package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/leofalp/chatbridge/core/settings"
)

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient()

	if client.Timeout != DefaultResourceTimeout {
		t.Errorf("expected resource timeout %s, got %s", DefaultResourceTimeout, client.Timeout)
	}

	transport := NewTransport(Config{RequestTimeout: DefaultRequestTimeout, MaxConnsPerHost: DefaultMaxConnsPerHost})
	if transport.ResponseHeaderTimeout != DefaultRequestTimeout {
		t.Errorf("expected header timeout %s, got %s", DefaultRequestTimeout, transport.ResponseHeaderTimeout)
	}
	if transport.MaxConnsPerHost != DefaultMaxConnsPerHost {
		t.Errorf("expected %d conns per host, got %d", DefaultMaxConnsPerHost, transport.MaxConnsPerHost)
	}
}

func TestNewClient_SetsNoCacheHeader(t *testing.T) {
	var cacheControl string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cacheControl = r.Header.Get("Cache-Control")
	}))
	defer server.Close()

	response, err := NewClient().Get(server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	response.Body.Close()

	if cacheControl != "no-cache" {
		t.Errorf("expected Cache-Control no-cache, got %q", cacheControl)
	}
}

func TestNewClient_DoesNotMutateCallerRequest(t *testing.T) {
	var seen string
	base := RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		seen = r.Header.Get("Cache-Control")
		return &http.Response{StatusCode: http.StatusNoContent, Body: http.NoBody, Request: r}, nil
	})

	request, _ := http.NewRequest(http.MethodGet, "http://example.invalid/", nil)
	response, err := NewClient(WithTransport(base)).Do(request)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	response.Body.Close()

	if seen != "no-cache" {
		t.Errorf("expected base transport to see no-cache, got %q", seen)
	}
	if request.Header.Get("Cache-Control") != "" {
		t.Error("expected caller request to be left untouched")
	}
}

func TestFromSettings(t *testing.T) {
	s := settings.Defaults()
	s.RequestTimeout = 20 * time.Second
	s.ResourceTimeout = 40 * time.Second
	s.MaxConnsPerHost = 2

	var cfg Config
	for _, opt := range FromSettings(s) {
		opt(&cfg)
	}

	if cfg.RequestTimeout != 20*time.Second || cfg.ResourceTimeout != 40*time.Second || cfg.MaxConnsPerHost != 2 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if client := NewClient(FromSettings(s)...); client.Timeout != 40*time.Second {
		t.Errorf("expected client timeout 40s, got %s", client.Timeout)
	}
}
