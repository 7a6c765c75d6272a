// Package ollama implements [ai.Adapter] for an Ollama server, which streams
// newline-delimited JSON objects from /api/chat.
package ollama

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/leofalp/chatbridge/providers/ai"
)

const (
	tagsEndpoint = "api/tags"
	chatEndpoint = "api/chat"
)

// Adapter speaks the Ollama chat API. It needs no credentials.
type Adapter struct {
	cfg ai.ConnectionConfig
}

// New returns an adapter bound to cfg.
func New(cfg ai.ConnectionConfig) *Adapter {
	return &Adapter{cfg: cfg.WithDefaults()}
}

var _ ai.Adapter = (*Adapter)(nil)

// Kind implements [ai.Adapter].
func (a *Adapter) Kind() ai.ProviderKind { return ai.ProviderOllama }

// ModelListEndpoint implements [ai.Adapter].
func (a *Adapter) ModelListEndpoint() string { return tagsEndpoint }

// ModelListHeaders implements [ai.Adapter].
func (a *Adapter) ModelListHeaders() (http.Header, error) {
	header := http.Header{}
	header.Set("Accept", "application/json")
	return header, nil
}

// ChatEndpoint implements [ai.Adapter]. Every model uses /api/chat.
func (a *Adapter) ChatEndpoint(string) string { return chatEndpoint }

// BuildChatRequest implements [ai.Adapter].
func (a *Adapter) BuildChatRequest(req ai.GenerationRequest) (*ai.PreparedRequest, error) {
	if strings.TrimSpace(req.Model) == "" {
		return nil, &ai.ConfigError{Provider: ai.ProviderOllama, Message: "model is required"}
	}

	instruction := req.SystemInstruction
	if instruction == "" {
		instruction = a.cfg.SystemInstruction
	}

	messages := make([]chatMessage, 0, len(req.History)+2)
	if instruction = strings.TrimSpace(instruction); instruction != "" {
		messages = append(messages, chatMessage{Role: string(ai.RoleSystem), Content: instruction})
	}
	for _, turn := range req.History {
		messages = append(messages, messageFromTurn(turn.Role, turn.Content, turn.Image))
	}
	messages = append(messages, messageFromTurn(ai.RoleUser, req.Prompt, req.Image))

	header := http.Header{}
	header.Set("Accept", "application/json")

	return &ai.PreparedRequest{
		Method: http.MethodPost,
		Path:   chatEndpoint,
		Header: header,
		Body: chatRequest{
			Model:       req.Model,
			Messages:    messages,
			Stream:      true,
			Temperature: a.cfg.Temperature,
			TopP:        a.cfg.TopP,
			TopK:        a.cfg.TopK,
		},
	}, nil
}

func messageFromTurn(role ai.MessageRole, content string, image *ai.Image) chatMessage {
	message := chatMessage{Role: string(role), Content: content}
	if image != nil {
		message.Images = []string{image.Base64()}
	}
	return message
}

// ParseModelList implements [ai.Adapter]: it returns models[].name.
func (a *Adapter) ParseModelList(raw []byte) []string {
	var tags tagsResponse
	if err := json.Unmarshal(raw, &tags); err != nil {
		return []string{}
	}

	models := make([]string, 0, len(tags.Models))
	for _, model := range tags.Models {
		if model.Name != "" {
			models = append(models, model.Name)
		}
	}
	return models
}

// ParseStreamLine implements [ai.Adapter]. Each line is a complete JSON
// object; done:true marks the last one.
func (a *Adapter) ParseStreamLine(line string) ai.LineResult {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "{") {
		return ai.LineResult{}
	}

	var chunk chatChunk
	if err := json.Unmarshal([]byte(line), &chunk); err != nil {
		return ai.LineResult{}
	}

	result := ai.LineResult{Final: chunk.Done}
	if chunk.Message != nil {
		result.Delta = chunk.Message.Content
	}
	return result
}
