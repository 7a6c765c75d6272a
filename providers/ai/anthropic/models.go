package anthropic

import (
	"encoding/json"
	"fmt"
)

/*
	ANTHROPIC MESSAGES API - REQUEST TYPES
*/

// anthropicRequest is the streaming body for /v1/messages.
type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"` // Required by Anthropic on every request
	Stream      bool               `json:"stream"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system,omitempty"`
}

// anthropicMessage is a single conversation entry.
type anthropicMessage struct {
	Role    string                  `json:"role"` // "user" or "assistant"
	Content []anthropicContentBlock `json:"content"`
}

// anthropicContentBlock is either a "text" block or an "image" block.
type anthropicContentBlock struct {
	Type   string           `json:"type"`
	Text   string           `json:"text,omitempty"`
	Source *anthropicSource `json:"source,omitempty"`
}

// anthropicSource carries inline base64 image data.
type anthropicSource struct {
	Type      string `json:"type"` // "base64"
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

/*
	ANTHROPIC SSE STREAMING - WIRE TYPES

	Event lifecycle:
	  message_start → content_block_start → content_block_delta → content_block_stop →
	  message_delta → message_stop

	"event:" lines name the type, but the same name is repeated in the JSON
	payload, so only "data:" lines are decoded.
*/

// anthropicStreamEvent is the envelope shared by all stream events.
type anthropicStreamEvent struct {
	Type  string          `json:"type"`
	Index int             `json:"index,omitempty"`
	Delta *streamDelta    `json:"delta,omitempty"` // content_block_delta, message_delta
	Error *anthropicError `json:"error,omitempty"` // error
}

// streamDelta carries incremental content. Text is rendered from
// "text_delta" deltas and from deltas without a type.
type streamDelta struct {
	Type       string `json:"type,omitempty"`
	Text       string `json:"text,omitempty"`
	StopReason string `json:"stop_reason,omitempty"`
}

// anthropicError is the payload of an "error" event.
type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// unmarshalStreamEvent parses a JSON payload into an anthropicStreamEvent.
func unmarshalStreamEvent(payload string) (*anthropicStreamEvent, error) {
	var event anthropicStreamEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return nil, err
	}
	if event.Type == "" {
		return nil, fmt.Errorf("missing type field in stream event")
	}
	return &event, nil
}

/*
	MODEL LISTING
*/

type modelList struct {
	Data []struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name,omitempty"`
		Type        string `json:"type,omitempty"`
	} `json:"data"`
	HasMore bool `json:"has_more,omitempty"`
}
