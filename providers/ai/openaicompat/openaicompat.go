package openaicompat

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/leofalp/chatbridge/internal/utils"
	"github.com/leofalp/chatbridge/providers/ai"
)

const (
	// ModelsEndpoint lists the models a server exposes.
	ModelsEndpoint = "v1/models"
	// ChatCompletionsEndpoint is the streaming chat path.
	ChatCompletionsEndpoint = "v1/chat/completions"

	finishReasonStop = "stop"
)

// BuildMessages maps a generation request onto a messages array: the system
// instruction first (when set), prior turns in order, then the new prompt.
// An attached image turns the prompt into text + image_url content parts.
func BuildMessages(req ai.GenerationRequest) []ChatMessage {
	messages := make([]ChatMessage, 0, len(req.History)+2)

	if instruction := strings.TrimSpace(req.SystemInstruction); instruction != "" {
		messages = append(messages, ChatMessage{Role: string(ai.RoleSystem), Content: instruction})
	}

	for _, turn := range req.History {
		messages = append(messages, messageFromTurn(turn.Role, turn.Content, turn.Image))
	}

	return append(messages, messageFromTurn(ai.RoleUser, req.Prompt, req.Image))
}

func messageFromTurn(role ai.MessageRole, content string, image *ai.Image) ChatMessage {
	if image == nil {
		return ChatMessage{Role: string(role), Content: content}
	}
	return ChatMessage{
		Role: string(role),
		Content: []ContentPart{
			{Type: "text", Text: content},
			{Type: "image_url", ImageURL: &ImageURL{URL: image.DataURL()}},
		},
	}
}

// StreamHeaders returns the headers every chat-completions stream request
// carries. apiKey is sent as a bearer token when non-empty.
func StreamHeaders(apiKey string) http.Header {
	header := http.Header{}
	header.Set("Accept", "text/event-stream")
	header.Set("Connection", "keep-alive")
	if apiKey != "" {
		header.Set("Authorization", "Bearer "+apiKey)
	}
	return header
}

// Payload strips SSE framing from a stream line. It returns the JSON payload
// and whether there is anything to decode. "data:" lines yield their payload,
// bare JSON objects (some local servers omit the prefix) are passed through,
// and everything else (event:, comments, stray text) is dropped. done is set
// for the [DONE] sentinel.
func Payload(line string) (payload string, done bool, ok bool) {
	line = strings.TrimSpace(line)

	if data, isData := utils.SSEData(line); isData {
		switch data {
		case utils.SSEDoneSentinel:
			return "", true, false
		case "":
			return "", false, false
		}
		return data, false, true
	}

	if strings.HasPrefix(line, "{") {
		return line, false, true
	}
	return "", false, false
}

// ParseStreamLine extracts the content delta from one chat-completions line.
// The [DONE] sentinel and finish_reason "stop" both mark the end of the
// answer. Malformed JSON produces an empty result.
func ParseStreamLine(line string) ai.LineResult {
	payload, done, ok := Payload(line)
	if done {
		return ai.LineResult{Final: true}
	}
	if !ok {
		return ai.LineResult{}
	}
	return ParseChunk(payload)
}

// ParseChunk decodes a chat.completion.chunk payload.
func ParseChunk(payload string) ai.LineResult {
	var chunk streamChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		return ai.LineResult{}
	}

	var result ai.LineResult
	for _, choice := range chunk.Choices {
		if choice.Delta.Content != nil {
			result.Delta += *choice.Delta.Content
		}
		if choice.FinishReason != nil && *choice.FinishReason == finishReasonStop {
			result.Final = true
		}
	}
	return result
}

// ParseModelList returns data[].id from a /v1/models response, or an empty
// slice when the body has another shape.
func ParseModelList(raw []byte) []string {
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
