package ai

import (
	"errors"
	"testing"
)

func TestNewConnectionConfig_Endpoint(t *testing.T) {
	testCases := []struct {
		name    string
		kind    ProviderKind
		address string
		want    string
	}{
		{"ollama default", ProviderOllama, "", "http://localhost:11434"},
		{"ollama host and port", ProviderOllama, "192.168.0.10:8080", "http://192.168.0.10:8080"},
		{"ollama url without port", ProviderOllama, "https://gpu.lan", "https://gpu.lan:11434"},
		{"ollama trailing slash", ProviderOllama, "http://box:11434/", "http://box:11434"},
		{"ollama ipv6", ProviderOllama, "[::1]:11500", "http://[::1]:11500"},
		{"lmstudio default", ProviderLMStudio, "", "http://localhost:1234"},
		{"lmstudio custom", ProviderLMStudio, "http://studio.local:4321", "http://studio.local:4321"},
		{"claude ignores address", ProviderClaude, "http://localhost:9999", "https://api.anthropic.com"},
		{"openai ignores address", ProviderOpenAI, "", "https://api.openai.com"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewConnectionConfig(tc.kind, tc.address, "key")
			if got := cfg.Endpoint(); got != tc.want {
				t.Errorf("Endpoint() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestConnectionConfig_ExplicitPortWins(t *testing.T) {
	cfg := ConnectionConfig{Provider: ProviderClaude, BaseURL: "http://127.0.0.1:5555", Port: 443, APIKey: "k"}

	if got := cfg.Endpoint(); got != "http://127.0.0.1:5555" {
		t.Errorf("Endpoint() = %q", got)
	}
	if got := cfg.URL("/v1/messages"); got != "http://127.0.0.1:5555/v1/messages" {
		t.Errorf("URL() = %q", got)
	}
	if got := cfg.URL("api/tags"); got != "http://127.0.0.1:5555/api/tags" {
		t.Errorf("URL() = %q", got)
	}
}

func TestConnectionConfig_WithDefaults(t *testing.T) {
	cfg := ConnectionConfig{}.WithDefaults()
	if cfg.TopP != DefaultTopP || cfg.TopK != DefaultTopK {
		t.Errorf("expected defaults, got top_p=%v top_k=%v", cfg.TopP, cfg.TopK)
	}

	custom := ConnectionConfig{TopP: 0.5, TopK: 10}.WithDefaults()
	if custom.TopP != 0.5 || custom.TopK != 10 {
		t.Errorf("non-zero values must be kept, got %+v", custom)
	}
}

func TestConnectionConfig_Validate(t *testing.T) {
	testCases := []struct {
		name      string
		cfg       ConnectionConfig
		wantErr   bool
		wantNoKey bool
	}{
		{name: "ollama without key", cfg: NewConnectionConfig(ProviderOllama, "", "")},
		{name: "lmstudio without key", cfg: NewConnectionConfig(ProviderLMStudio, "", "")},
		{name: "claude with key", cfg: NewConnectionConfig(ProviderClaude, "", "sk-ant")},
		{name: "claude without key", cfg: NewConnectionConfig(ProviderClaude, "", ""), wantErr: true, wantNoKey: true},
		{name: "openai blank key", cfg: NewConnectionConfig(ProviderOpenAI, "", "   "), wantErr: true, wantNoKey: true},
		{name: "unknown provider", cfg: ConnectionConfig{Provider: "gemini", BaseURL: "http://x"}, wantErr: true},
		{name: "empty base url", cfg: ConnectionConfig{Provider: ProviderOllama}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err == nil {
				return
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %T", err)
			}
			if errors.Is(err, ErrMissingAPIKey) != tc.wantNoKey {
				t.Errorf("errors.Is(ErrMissingAPIKey) = %v, want %v", !tc.wantNoKey, tc.wantNoKey)
			}
		})
	}
}

func TestParseProviderKind(t *testing.T) {
	testCases := []struct {
		input   string
		want    ProviderKind
		wantErr bool
	}{
		{"ollama", ProviderOllama, false},
		{"Ollama Server", ProviderOllama, false},
		{"LM Studio", ProviderLMStudio, false},
		{"lmstudio", ProviderLMStudio, false},
		{"anthropic", ProviderClaude, false},
		{" Claude ", ProviderClaude, false},
		{"OpenAI", ProviderOpenAI, false},
		{"gemini", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseProviderKind(tc.input)
			if (err != nil) != tc.wantErr || got != tc.want {
				t.Errorf("ParseProviderKind(%q) = (%q, %v), want %q", tc.input, got, err, tc.want)
			}
		})
	}
}

func TestProviderKind_IsCloud(t *testing.T) {
	for _, kind := range AllProviders {
		want := kind == ProviderClaude || kind == ProviderOpenAI
		if kind.IsCloud() != want {
			t.Errorf("%s.IsCloud() = %v", kind, kind.IsCloud())
		}
		if kind.DisplayName() == "" {
			t.Errorf("%s has no display name", kind)
		}
	}
}
