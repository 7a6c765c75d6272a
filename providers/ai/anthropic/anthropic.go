package anthropic

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/leofalp/chatbridge/internal/utils"
	"github.com/leofalp/chatbridge/providers/ai"
)

const (
	modelsEndpoint   = "v1/models"
	messagesEndpoint = "v1/messages"

	// anthropicVersion is the required anthropic-version header value.
	anthropicVersion = "2023-06-01"

	maxTokens = 4096

	eventContentBlockDelta = "content_block_delta"
	eventMessageStop       = "message_stop"
	deltaTypeText          = "text_delta"
)

// Adapter speaks Anthropic's Messages API.
type Adapter struct {
	cfg ai.ConnectionConfig
}

// New returns an adapter bound to cfg.
func New(cfg ai.ConnectionConfig) *Adapter {
	return &Adapter{cfg: cfg.WithDefaults()}
}

var _ ai.Adapter = (*Adapter)(nil)

// Kind implements [ai.Adapter].
func (a *Adapter) Kind() ai.ProviderKind { return ai.ProviderClaude }

// ModelListEndpoint implements [ai.Adapter].
func (a *Adapter) ModelListEndpoint() string { return modelsEndpoint }

// ModelListHeaders implements [ai.Adapter].
func (a *Adapter) ModelListHeaders() (http.Header, error) {
	header, err := a.buildHeaders()
	if err != nil {
		return nil, err
	}
	header.Set("Accept", "application/json")
	return header, nil
}

// ChatEndpoint implements [ai.Adapter].
func (a *Adapter) ChatEndpoint(string) string { return messagesEndpoint }

// buildHeaders returns the credential and version headers every request
// needs. Anthropic does not use Bearer tokens.
func (a *Adapter) buildHeaders() (http.Header, error) {
	apiKey := strings.TrimSpace(a.cfg.APIKey)
	if apiKey == "" {
		return nil, &ai.ConfigError{Provider: ai.ProviderClaude, Message: "API key is required", Err: ai.ErrMissingAPIKey}
	}

	header := http.Header{}
	header.Set("x-api-key", apiKey)
	header.Set("anthropic-version", anthropicVersion)
	return header, nil
}

// BuildChatRequest implements [ai.Adapter].
func (a *Adapter) BuildChatRequest(req ai.GenerationRequest) (*ai.PreparedRequest, error) {
	header, err := a.buildHeaders()
	if err != nil {
		return nil, err
	}
	header.Set("Accept", "text/event-stream")

	if strings.TrimSpace(req.Model) == "" {
		return nil, &ai.ConfigError{Provider: ai.ProviderClaude, Message: "model is required"}
	}

	system := req.SystemInstruction
	if system == "" {
		system = a.cfg.SystemInstruction
	}

	messages := make([]anthropicMessage, 0, len(req.History)+1)
	for _, turn := range req.History {
		// System turns have no place in the messages array.
		if turn.Role == ai.RoleSystem {
			continue
		}
		messages = append(messages, messageFromTurn(turn.Role, turn.Content, turn.Image))
	}
	messages = append(messages, messageFromTurn(ai.RoleUser, req.Prompt, req.Image))

	return &ai.PreparedRequest{
		Method: http.MethodPost,
		Path:   messagesEndpoint,
		Header: header,
		Body: anthropicRequest{
			Model:       req.Model,
			Messages:    messages,
			MaxTokens:   maxTokens,
			Stream:      true,
			Temperature: a.cfg.Temperature,
			System:      strings.TrimSpace(system),
		},
	}, nil
}

// messageFromTurn puts the image block ahead of the text block.
func messageFromTurn(role ai.MessageRole, content string, image *ai.Image) anthropicMessage {
	blocks := make([]anthropicContentBlock, 0, 2)
	if image != nil {
		blocks = append(blocks, anthropicContentBlock{
			Type: "image",
			Source: &anthropicSource{
				Type:      "base64",
				MediaType: image.Type(),
				Data:      image.Base64(),
			},
		})
	}
	blocks = append(blocks, anthropicContentBlock{Type: "text", Text: content})
	return anthropicMessage{Role: string(role), Content: blocks}
}

// ParseModelList implements [ai.Adapter]: it returns data[].id.
func (a *Adapter) ParseModelList(raw []byte) []string {
	var list modelList
	if err := json.Unmarshal(raw, &list); err != nil {
		return []string{}
	}

	models := make([]string, 0, len(list.Data))
	for _, entry := range list.Data {
		if entry.ID != "" {
			models = append(models, entry.ID)
		}
	}
	return models
}

// ParseStreamLine implements [ai.Adapter].
func (a *Adapter) ParseStreamLine(line string) ai.LineResult {
	line = strings.TrimSpace(line)

	payload, ok := utils.SSEData(line)
	if !ok {
		if !strings.HasPrefix(line, "{") {
			return ai.LineResult{}
		}
		payload = line
	}
	if payload == "" || payload == utils.SSEDoneSentinel {
		return ai.LineResult{}
	}

	event, err := unmarshalStreamEvent(payload)
	if err != nil {
		return ai.LineResult{}
	}

	switch event.Type {
	case eventContentBlockDelta:
		// Untyped deltas carry text too; typed ones other than text_delta
		// (thinking, tool input) are not part of the answer.
		if event.Delta != nil && (event.Delta.Type == "" || event.Delta.Type == deltaTypeText) {
			return ai.LineResult{Delta: event.Delta.Text}
		}
	case eventMessageStop:
		return ai.LineResult{Final: true}
	}
	return ai.LineResult{}
}
