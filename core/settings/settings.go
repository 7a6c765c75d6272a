package settings

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leofalp/chatbridge/providers/ai"
)

// DefaultSystemInstruction is sent ahead of every conversation unless the
// user configured another one.
const DefaultSystemInstruction = "You are a helpful assistant."

const (
	defaultTemperature     = 0.7
	defaultRequestTimeout  = 300 * time.Second
	defaultResourceTimeout = 600 * time.Second
	defaultMaxConnsPerHost = 6
)

// Settings is the user-editable configuration of the bridge. It is read as a
// snapshot: consumers copy what they need into a ConnectionConfig and never
// hold on to a Settings value across reloads.
type Settings struct {
	// ServerAddress is the Ollama server address (host[:port] or URL).
	ServerAddress string `yaml:"server_address"`
	// LMStudioAddress is the LM Studio server address (host[:port] or URL).
	LMStudioAddress string `yaml:"lmstudio_address"`

	ClaudeAPIKey string `yaml:"claude_api_key"`
	OpenAIAPIKey string `yaml:"openai_api_key"`

	Temperature       float64 `yaml:"temperature"`
	TopP              float64 `yaml:"top_p"`
	TopK              float64 `yaml:"top_k"`
	SystemInstruction string  `yaml:"system_instruction"`

	SelectedProvider string `yaml:"selected_provider"`
	SelectedModel    string `yaml:"selected_model"`

	ShowOllama   bool `yaml:"show_ollama"`
	ShowLMStudio bool `yaml:"show_lmstudio"`
	ShowClaude   bool `yaml:"show_claude"`
	ShowOpenAI   bool `yaml:"show_openai"`

	// RequestTimeout bounds the wait for response headers.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// ResourceTimeout bounds a whole request, body included.
	ResourceTimeout time.Duration `yaml:"resource_timeout"`
	MaxConnsPerHost int           `yaml:"max_conns_per_host"`
}

// Defaults returns the settings of a fresh install: Ollama enabled on its
// stock address, every other provider hidden.
func Defaults() Settings {
	s := Settings{
		ServerAddress:     ai.DefaultOllamaAddress,
		LMStudioAddress:   ai.DefaultLMStudioAddress,
		Temperature:       defaultTemperature,
		SystemInstruction: DefaultSystemInstruction,
		SelectedProvider:  string(ai.ProviderOllama),
		ShowOllama:        true,
	}
	s.ApplyDefaults()
	return s
}

// ApplyDefaults fills zero values that have no meaningful zero setting.
// Temperature is left alone: zero is a valid choice.
func (s *Settings) ApplyDefaults() {
	if s.TopP == 0 {
		s.TopP = ai.DefaultTopP
	}
	if s.TopK == 0 {
		s.TopK = ai.DefaultTopK
	}
	if strings.TrimSpace(s.SystemInstruction) == "" {
		s.SystemInstruction = DefaultSystemInstruction
	}
	if s.RequestTimeout == 0 {
		s.RequestTimeout = defaultRequestTimeout
	}
	if s.ResourceTimeout == 0 {
		s.ResourceTimeout = defaultResourceTimeout
	}
	if s.MaxConnsPerHost == 0 {
		s.MaxConnsPerHost = defaultMaxConnsPerHost
	}
	if s.SelectedProvider == "" {
		if enabled := s.EnabledProviders(); len(enabled) > 0 {
			s.SelectedProvider = string(enabled[0])
		}
	}
}

// Validate checks the settings for values no provider accepts.
func (s *Settings) Validate() error {
	var errs []error

	if s.Temperature < 0 || s.Temperature > 2 {
		errs = append(errs, fmt.Errorf("temperature must be between 0 and 2, got %v", s.Temperature))
	}
	if s.TopP < 0 || s.TopP > 1 {
		errs = append(errs, fmt.Errorf("top_p must be between 0 and 1, got %v", s.TopP))
	}
	if s.TopK < 0 {
		errs = append(errs, fmt.Errorf("top_k must not be negative, got %v", s.TopK))
	}
	if s.RequestTimeout < 0 || s.ResourceTimeout < 0 {
		errs = append(errs, errors.New("timeouts must not be negative"))
	}
	if s.ResourceTimeout > 0 && s.RequestTimeout > s.ResourceTimeout {
		errs = append(errs, fmt.Errorf("request_timeout (%s) exceeds resource_timeout (%s)", s.RequestTimeout, s.ResourceTimeout))
	}
	if s.MaxConnsPerHost < 0 {
		errs = append(errs, fmt.Errorf("max_conns_per_host must not be negative, got %d", s.MaxConnsPerHost))
	}
	if s.SelectedProvider != "" {
		if _, err := ai.ParseProviderKind(s.SelectedProvider); err != nil {
			errs = append(errs, fmt.Errorf("selected_provider: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid settings: %w", errors.Join(errs...))
	}
	return nil
}

// EnabledProviders returns the providers whose show flag is set, in display
// order.
func (s Settings) EnabledProviders() []ai.ProviderKind {
	enabled := make([]ai.ProviderKind, 0, len(ai.AllProviders))
	for _, kind := range ai.AllProviders {
		if s.IsEnabled(kind) {
			enabled = append(enabled, kind)
		}
	}
	return enabled
}

// IsEnabled reports whether kind is shown to the user.
func (s Settings) IsEnabled(kind ai.ProviderKind) bool {
	switch kind {
	case ai.ProviderOllama:
		return s.ShowOllama
	case ai.ProviderLMStudio:
		return s.ShowLMStudio
	case ai.ProviderClaude:
		return s.ShowClaude
	case ai.ProviderOpenAI:
		return s.ShowOpenAI
	}
	return false
}

// Provider returns the selected provider, falling back to Ollama when the
// stored name is empty or unknown.
func (s Settings) Provider() ai.ProviderKind {
	kind, err := ai.ParseProviderKind(s.SelectedProvider)
	if err != nil {
		return ai.ProviderOllama
	}
	return kind
}

// ConnectionConfig builds a fresh connection config for kind. The returned
// value shares nothing with s.
func (s Settings) ConnectionConfig(kind ai.ProviderKind) ai.ConnectionConfig {
	var address, apiKey string
	switch kind {
	case ai.ProviderOllama:
		address = s.ServerAddress
	case ai.ProviderLMStudio:
		address = s.LMStudioAddress
	case ai.ProviderClaude:
		apiKey = s.ClaudeAPIKey
	case ai.ProviderOpenAI:
		apiKey = s.OpenAIAPIKey
	}

	cfg := ai.NewConnectionConfig(kind, address, apiKey)
	cfg.Temperature = s.Temperature
	cfg.TopP = s.TopP
	cfg.TopK = s.TopK
	cfg.SystemInstruction = s.SystemInstruction
	return cfg.WithDefaults()
}
