package ai

import (
	"fmt"
	"net/http"
	"strings"
)

// ProviderKind identifies one of the supported chat backends.
type ProviderKind string

const (
	// ProviderOllama is a local-network generative server speaking newline-delimited JSON.
	ProviderOllama ProviderKind = "ollama"
	// ProviderLMStudio is a local OpenAI-compatible server speaking SSE-style lines.
	ProviderLMStudio ProviderKind = "lmstudio"
	// ProviderClaude is Anthropic's Messages API.
	ProviderClaude ProviderKind = "claude"
	// ProviderOpenAI is OpenAI's chat completions and responses APIs.
	ProviderOpenAI ProviderKind = "openai"
)

// AllProviders lists every supported provider in display order.
var AllProviders = []ProviderKind{ProviderOllama, ProviderLMStudio, ProviderClaude, ProviderOpenAI}

// ParseProviderKind maps a user supplied name (case-insensitive, display names
// accepted) to a ProviderKind.
func ParseProviderKind(name string) (ProviderKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ollama", "ollama server", "ollma":
		return ProviderOllama, nil
	case "lmstudio", "lm studio", "lm-studio":
		return ProviderLMStudio, nil
	case "claude", "claude api", "anthropic":
		return ProviderClaude, nil
	case "openai", "openai api":
		return ProviderOpenAI, nil
	}
	return "", fmt.Errorf("unknown provider %q", name)
}

// DisplayName returns the human readable provider label.
func (k ProviderKind) DisplayName() string {
	switch k {
	case ProviderOllama:
		return "Ollama Server"
	case ProviderLMStudio:
		return "LMStudio"
	case ProviderClaude:
		return "Claude API"
	case ProviderOpenAI:
		return "OpenAI API"
	}
	return string(k)
}

// IsCloud reports whether the provider is a hosted vendor API that requires an API key.
func (k ProviderKind) IsCloud() bool {
	return k == ProviderClaude || k == ProviderOpenAI
}

// PreparedRequest is a fully built provider request: endpoint path relative to
// the connection base, headers, and a JSON-serializable body.
type PreparedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   any
}

// LineResult is the outcome of parsing one wire line: at most one text delta
// and whether the line carried the provider's terminal marker.
// An empty Delta means the line produced no text.
type LineResult struct {
	Delta string
	Final bool
}

// HasDelta reports whether the line produced text.
func (r LineResult) HasDelta() bool {
	return r.Delta != ""
}

// Adapter is implemented by every provider variant. It covers request
// construction, endpoint naming and response parsing but performs no I/O;
// the bridge owns the HTTP lifecycle.
type Adapter interface {
	// Kind returns the provider variant this adapter speaks.
	Kind() ProviderKind

	// ModelListEndpoint returns the path of the model-listing endpoint.
	ModelListEndpoint() string

	// ModelListHeaders returns the headers required to list models. A
	// [*ConfigError] is returned when a required credential is missing.
	ModelListHeaders() (http.Header, error)

	// ChatEndpoint returns the chat path for the given model. Some providers
	// route certain model families to a different API.
	ChatEndpoint(model string) string

	// BuildChatRequest builds the streaming chat request for req.
	BuildChatRequest(req GenerationRequest) (*PreparedRequest, error)

	// ParseModelList extracts model identifiers from a model-list response.
	// It returns an empty slice on any shape mismatch rather than an error.
	ParseModelList(raw []byte) []string

	// ParseStreamLine strips provider framing from one line and extracts the
	// incremental text. Keepalives, event-type lines and malformed JSON yield
	// an empty result; this method never fails.
	ParseStreamLine(line string) LineResult
}

// FallbackAdapter is implemented by adapters whose streaming mode may be
// refused for some model families (for example when the account lacks the
// verification those models require). Callers detect support via type
// assertion: adapter.(FallbackAdapter).
type FallbackAdapter interface {
	Adapter

	// StreamGated reports whether model belongs to a family whose streaming
	// mode may be unavailable.
	StreamGated(model string) bool

	// BuildOneShotRequest builds a non-streaming request for req.
	BuildOneShotRequest(req GenerationRequest) (*PreparedRequest, error)

	// ParseOneShotResponse extracts the full answer from a non-streaming response body.
	ParseOneShotResponse(raw []byte) (string, error)
}
