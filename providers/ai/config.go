package ai

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultOllamaAddress is the address of a stock Ollama install.
	DefaultOllamaAddress = "http://localhost:11434"
	// DefaultLMStudioAddress is the address of a stock LM Studio server.
	DefaultLMStudioAddress = "http://localhost:1234"

	defaultClaudeBaseURL = "https://api.anthropic.com"
	defaultOpenAIBaseURL = "https://api.openai.com"

	defaultOllamaPort   = 11434
	defaultLMStudioPort = 1234
	defaultCloudPort    = 443

	// DefaultTopP is used when the configured nucleus sampling value is zero.
	DefaultTopP = 0.9
	// DefaultTopK is used when the configured top-k value is zero.
	DefaultTopK = 40
)

// ConnectionConfig describes how to reach one provider. It is a value type:
// a provider switch builds a new config rather than mutating one in place,
// and a config handed to a controller is never modified afterwards.
type ConnectionConfig struct {
	BaseURL  string
	Port     int
	Provider ProviderKind

	// APIKey is required for cloud providers and ignored by local ones.
	APIKey string

	Temperature float64
	TopP        float64
	TopK        float64

	// SystemInstruction is sent ahead of the conversation when non-empty.
	SystemInstruction string
}

// NewConnectionConfig builds a config for kind. For local providers address is
// the user-editable server address (empty selects the provider default); a
// missing port falls back to the provider's well-known port. Cloud providers
// ignore address and always target the vendor endpoint on port 443.
func NewConnectionConfig(kind ProviderKind, address, apiKey string) ConnectionConfig {
	cfg := ConnectionConfig{Provider: kind}

	switch kind {
	case ProviderClaude:
		cfg.BaseURL, cfg.Port, cfg.APIKey = defaultClaudeBaseURL, defaultCloudPort, apiKey
	case ProviderOpenAI:
		cfg.BaseURL, cfg.Port, cfg.APIKey = defaultOpenAIBaseURL, defaultCloudPort, apiKey
	case ProviderLMStudio:
		cfg.BaseURL, cfg.Port = splitAddress(address, DefaultLMStudioAddress, defaultLMStudioPort)
	default:
		cfg.BaseURL, cfg.Port = splitAddress(address, DefaultOllamaAddress, defaultOllamaPort)
	}

	return cfg.WithDefaults()
}

// WithDefaults returns a copy of c with zero sampling parameters replaced by
// their defaults.
func (c ConnectionConfig) WithDefaults() ConnectionConfig {
	if c.TopP == 0 {
		c.TopP = DefaultTopP
	}
	if c.TopK == 0 {
		c.TopK = DefaultTopK
	}
	return c
}

// Validate checks the invariants that must hold before any network call.
func (c ConnectionConfig) Validate() error {
	switch c.Provider {
	case ProviderOllama, ProviderLMStudio, ProviderClaude, ProviderOpenAI:
	default:
		return &ConfigError{Provider: c.Provider, Message: fmt.Sprintf("unsupported provider %q", c.Provider)}
	}

	if c.Provider.IsCloud() && strings.TrimSpace(c.APIKey) == "" {
		return &ConfigError{Provider: c.Provider, Message: "API key is required", Err: ErrMissingAPIKey}
	}

	if c.BaseURL == "" {
		return &ConfigError{Provider: c.Provider, Message: "base URL is empty"}
	}

	return nil
}

// Endpoint returns scheme://host:port for the configured server, without a
// trailing slash. An explicit port in BaseURL wins over Port.
func (c ConnectionConfig) Endpoint() string {
	parsed := parseAddress(c.BaseURL)
	if parsed == nil {
		return strings.TrimRight(c.BaseURL, "/")
	}

	if parsed.Port() == "" && c.Port > 0 && !isSchemeDefaultPort(parsed.Scheme, c.Port) {
		parsed.Host = net.JoinHostPort(parsed.Hostname(), strconv.Itoa(c.Port))
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/")
	parsed.RawQuery = ""
	parsed.Fragment = ""

	return parsed.String()
}

// URL joins the endpoint with a provider path.
func (c ConnectionConfig) URL(path string) string {
	return c.Endpoint() + "/" + strings.TrimLeft(path, "/")
}

// splitAddress normalizes a local server address into a base URL without a
// port plus the port to use.
func splitAddress(address, fallback string, defaultPort int) (string, int) {
	parsed := parseAddress(address)
	if parsed == nil || parsed.Hostname() == "" {
		parsed = parseAddress(fallback)
	}

	port := defaultPort
	if p, err := strconv.Atoi(parsed.Port()); err == nil && p > 0 {
		port = p
	}

	host := parsed.Hostname()
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}

	return parsed.Scheme + "://" + host, port
}

// parseAddress accepts both full URLs and bare host[:port] strings.
func parseAddress(address string) *url.URL {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil
	}
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}
	parsed, err := url.Parse(address)
	if err != nil || parsed.Host == "" {
		return nil
	}
	return parsed
}

func isSchemeDefaultPort(scheme string, port int) bool {
	return (scheme == "https" && port == 443) || (scheme == "http" && port == 80)
}
