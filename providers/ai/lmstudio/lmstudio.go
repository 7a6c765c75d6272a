// Package lmstudio implements [ai.Adapter] for LM Studio's local server, which
// speaks the OpenAI chat-completions dialect without authentication.
package lmstudio

import (
	"net/http"
	"strings"

	"github.com/leofalp/chatbridge/providers/ai"
	"github.com/leofalp/chatbridge/providers/ai/openaicompat"
)

// maxTokens caps local completions.
const maxTokens = 2048

// Adapter speaks LM Studio's /v1/chat/completions stream.
type Adapter struct {
	cfg ai.ConnectionConfig
}

// New returns an adapter bound to cfg.
func New(cfg ai.ConnectionConfig) *Adapter {
	return &Adapter{cfg: cfg.WithDefaults()}
}

var _ ai.Adapter = (*Adapter)(nil)

// Kind implements [ai.Adapter].
func (a *Adapter) Kind() ai.ProviderKind { return ai.ProviderLMStudio }

// ModelListEndpoint implements [ai.Adapter].
func (a *Adapter) ModelListEndpoint() string { return openaicompat.ModelsEndpoint }

// ModelListHeaders implements [ai.Adapter].
func (a *Adapter) ModelListHeaders() (http.Header, error) {
	header := http.Header{}
	header.Set("Accept", "application/json")
	return header, nil
}

// ChatEndpoint implements [ai.Adapter].
func (a *Adapter) ChatEndpoint(string) string { return openaicompat.ChatCompletionsEndpoint }

// BuildChatRequest implements [ai.Adapter].
func (a *Adapter) BuildChatRequest(req ai.GenerationRequest) (*ai.PreparedRequest, error) {
	if strings.TrimSpace(req.Model) == "" {
		return nil, &ai.ConfigError{Provider: ai.ProviderLMStudio, Message: "model is required"}
	}
	if req.SystemInstruction == "" {
		req.SystemInstruction = a.cfg.SystemInstruction
	}

	return &ai.PreparedRequest{
		Method: http.MethodPost,
		Path:   openaicompat.ChatCompletionsEndpoint,
		Header: openaicompat.StreamHeaders(""),
		Body: openaicompat.ChatCompletionRequest{
			Model:       req.Model,
			Messages:    openaicompat.BuildMessages(req),
			Stream:      true,
			Temperature: a.cfg.Temperature,
			MaxTokens:   maxTokens,
		},
	}, nil
}

// ParseModelList implements [ai.Adapter].
func (a *Adapter) ParseModelList(raw []byte) []string {
	return openaicompat.ParseModelList(raw)
}

// ParseStreamLine implements [ai.Adapter].
func (a *Adapter) ParseStreamLine(line string) ai.LineResult {
	return openaicompat.ParseStreamLine(line)
}
