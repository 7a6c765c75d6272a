package openai

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/leofalp/chatbridge/internal/utils"
	"github.com/leofalp/chatbridge/providers/ai"
	"github.com/leofalp/chatbridge/providers/ai/openaicompat"
)

const (
	responsesEndpoint = "v1/responses"

	maxTokens = 4096
)

// gatedPrefixes are the model families served by the Responses API.
var gatedPrefixes = []string{"gpt-5", "o1", "o3", "o4"}

// Adapter speaks both OpenAI chat APIs.
type Adapter struct {
	cfg ai.ConnectionConfig
}

// New returns an adapter bound to cfg.
func New(cfg ai.ConnectionConfig) *Adapter {
	return &Adapter{cfg: cfg.WithDefaults()}
}

var _ ai.FallbackAdapter = (*Adapter)(nil)

// Kind implements [ai.Adapter].
func (a *Adapter) Kind() ai.ProviderKind { return ai.ProviderOpenAI }

// ModelListEndpoint implements [ai.Adapter].
func (a *Adapter) ModelListEndpoint() string { return openaicompat.ModelsEndpoint }

// ModelListHeaders implements [ai.Adapter].
func (a *Adapter) ModelListHeaders() (http.Header, error) {
	apiKey, err := a.apiKey()
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+apiKey)
	header.Set("Accept", "application/json")
	return header, nil
}

// StreamGated implements [ai.FallbackAdapter].
func (a *Adapter) StreamGated(model string) bool {
	model = strings.ToLower(strings.TrimSpace(model))
	for _, prefix := range gatedPrefixes {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

// ChatEndpoint implements [ai.Adapter].
func (a *Adapter) ChatEndpoint(model string) string {
	if a.StreamGated(model) {
		return responsesEndpoint
	}
	return openaicompat.ChatCompletionsEndpoint
}

func (a *Adapter) apiKey() (string, error) {
	apiKey := strings.TrimSpace(a.cfg.APIKey)
	if apiKey == "" {
		return "", &ai.ConfigError{Provider: ai.ProviderOpenAI, Message: "API key is required", Err: ai.ErrMissingAPIKey}
	}
	return apiKey, nil
}

func (a *Adapter) prepare(req *ai.GenerationRequest) (string, error) {
	apiKey, err := a.apiKey()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(req.Model) == "" {
		return "", &ai.ConfigError{Provider: ai.ProviderOpenAI, Message: "model is required"}
	}
	if req.SystemInstruction == "" {
		req.SystemInstruction = a.cfg.SystemInstruction
	}
	return apiKey, nil
}

// BuildChatRequest implements [ai.Adapter].
func (a *Adapter) BuildChatRequest(req ai.GenerationRequest) (*ai.PreparedRequest, error) {
	apiKey, err := a.prepare(&req)
	if err != nil {
		return nil, err
	}

	prepared := &ai.PreparedRequest{
		Method: http.MethodPost,
		Path:   a.ChatEndpoint(req.Model),
		Header: openaicompat.StreamHeaders(apiKey),
	}

	if a.StreamGated(req.Model) {
		prepared.Body = requestToResponses(req, true)
		return prepared, nil
	}

	prepared.Body = openaicompat.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    openaicompat.BuildMessages(req),
		Stream:      true,
		Temperature: a.cfg.Temperature,
		MaxTokens:   maxTokens,
	}
	return prepared, nil
}

// BuildOneShotRequest implements [ai.FallbackAdapter]. It always targets the
// Responses API with stream disabled.
func (a *Adapter) BuildOneShotRequest(req ai.GenerationRequest) (*ai.PreparedRequest, error) {
	apiKey, err := a.prepare(&req)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+apiKey)
	header.Set("Accept", "application/json")

	return &ai.PreparedRequest{
		Method: http.MethodPost,
		Path:   responsesEndpoint,
		Header: header,
		Body:   requestToResponses(req, false),
	}, nil
}

// ParseOneShotResponse implements [ai.FallbackAdapter].
func (a *Adapter) ParseOneShotResponse(raw []byte) (string, error) {
	var response responseCreateResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		return "", fmt.Errorf("error decoding response: %w", err)
	}
	return response.outputText()
}

// requestToResponses maps a generation request onto the Responses input
// array: prior user turns as input_text, prior assistant turns as
// output_text, then the new prompt with an optional input_image.
func requestToResponses(req ai.GenerationRequest, stream bool) responseCreateRequest {
	input := make([]inputItem, 0, len(req.History)+1)

	for _, turn := range req.History {
		switch turn.Role {
		case ai.RoleAssistant:
			input = append(input, inputItem{
				Role:    string(ai.RoleAssistant),
				Content: []contentItem{{Type: "output_text", Text: turn.Content}},
			})
		case ai.RoleUser:
			input = append(input, userItem(turn.Content, turn.Image))
		}
	}
	input = append(input, userItem(req.Prompt, req.Image))

	return responseCreateRequest{
		Model:        req.Model,
		Input:        input,
		Instructions: strings.TrimSpace(req.SystemInstruction),
		Stream:       utils.Ptr(stream),
	}
}

func userItem(text string, image *ai.Image) inputItem {
	content := []contentItem{{Type: "input_text", Text: text}}
	if image != nil {
		content = append(content, contentItem{Type: "input_image", ImageURL: image.DataURL()})
	}
	return inputItem{Role: string(ai.RoleUser), Content: content}
}

// ParseModelList implements [ai.Adapter].
func (a *Adapter) ParseModelList(raw []byte) []string {
	return openaicompat.ParseModelList(raw)
}

// ParseStreamLine implements [ai.Adapter]. Both stream shapes are accepted:
// legacy chunks with a choices array and typed Responses events.
func (a *Adapter) ParseStreamLine(line string) ai.LineResult {
	payload, done, ok := openaicompat.Payload(line)
	if done {
		return ai.LineResult{Final: true}
	}
	if !ok {
		return ai.LineResult{}
	}

	var event streamEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return ai.LineResult{}
	}

	if len(event.Choices) > 0 {
		return openaicompat.ParseChunk(payload)
	}

	switch event.Type {
	case eventOutputTextDelta:
		var delta string
		if err := json.Unmarshal(event.Delta, &delta); err != nil {
			return ai.LineResult{}
		}
		return ai.LineResult{Delta: delta}
	case eventResponseCompleted:
		return ai.LineResult{Final: true}
	}
	return ai.LineResult{}
}
