package adapters

import (
	"errors"
	"testing"

	"github.com/leofalp/chatbridge/providers/ai"
)

func TestNew(t *testing.T) {
	for _, kind := range ai.AllProviders {
		t.Run(string(kind), func(t *testing.T) {
			adapter, err := New(ai.NewConnectionConfig(kind, "", "key"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if adapter.Kind() != kind {
				t.Errorf("Kind() = %s, want %s", adapter.Kind(), kind)
			}

			_, isFallback := adapter.(ai.FallbackAdapter)
			if isFallback != (kind == ai.ProviderOpenAI) {
				t.Errorf("FallbackAdapter support = %v for %s", isFallback, kind)
			}
		})
	}
}

func TestNew_RejectsMissingCloudKey(t *testing.T) {
	for _, kind := range []ai.ProviderKind{ai.ProviderClaude, ai.ProviderOpenAI} {
		if _, err := New(ai.NewConnectionConfig(kind, "", "")); !errors.Is(err, ai.ErrMissingAPIKey) {
			t.Errorf("%s: expected ErrMissingAPIKey, got %v", kind, err)
		}
	}
}

func TestNew_RejectsUnknownProvider(t *testing.T) {
	var cfgErr *ai.ConfigError
	if _, err := New(ai.ConnectionConfig{Provider: "gemini", BaseURL: "http://localhost"}); !errors.As(err, &cfgErr) {
		t.Errorf("expected *ai.ConfigError, got %v", err)
	}
}
