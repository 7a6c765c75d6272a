package openai

import (
	"encoding/json"
	"fmt"
	"strings"
)

/*
	RESPONSES API - INPUT
*/

// responseCreateRequest is the body for the `/v1/responses` endpoint.
type responseCreateRequest struct {
	Model        string      `json:"model"`
	Input        []inputItem `json:"input"`
	Instructions string      `json:"instructions,omitempty"`
	Stream       *bool       `json:"stream,omitempty"`
}

// inputItem is one conversation entry of the input array.
type inputItem struct {
	Role    string        `json:"role"` // user, assistant
	Content []contentItem `json:"content"`
}

// contentItem is a typed content part of an input item.
type contentItem struct {
	Type     string `json:"type"` // input_text, input_image, output_text
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

/*
	RESPONSES API - OUTPUT
*/

// responseCreateResponse is the non-streaming response body.
type responseCreateResponse struct {
	ID     string        `json:"id"`
	Object string        `json:"object"` // "response"
	Model  string        `json:"model"`
	Status string        `json:"status"` // "completed", "incomplete", "failed"
	Output []outputItem  `json:"output"`
	Error  *errorDetails `json:"error,omitempty"`
}

// outputItem is an element of the `output` array.
type outputItem struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"` // "message", "reasoning", ...
	Role    string          `json:"role,omitempty"`
	Content []contentOutput `json:"content,omitempty"`
}

type contentOutput struct {
	Type string `json:"type"` // "output_text", "refusal"
	Text string `json:"text,omitempty"`
}

type errorDetails struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

/*
	RESPONSES API - STREAM EVENTS
*/

// streamEvent covers both typed Responses events and legacy chat chunks, so
// one decode tells the two shapes apart.
type streamEvent struct {
	Type    string          `json:"type"`
	Delta   json.RawMessage `json:"delta,omitempty"` // string for response.output_text.delta
	Choices json.RawMessage `json:"choices,omitempty"`
}

const (
	eventOutputTextDelta   = "response.output_text.delta"
	eventResponseCompleted = "response.completed"
)

// outputText concatenates every output_text part of every message item.
func (r *responseCreateResponse) outputText() (string, error) {
	if r.Error != nil && r.Error.Message != "" {
		return "", fmt.Errorf("response %s: %s", r.Status, r.Error.Message)
	}

	var text strings.Builder
	for _, item := range r.Output {
		if item.Type != "message" {
			continue
		}
		for _, part := range item.Content {
			if part.Type == "output_text" {
				text.WriteString(part.Text)
			}
		}
	}

	if text.Len() == 0 {
		return "", fmt.Errorf("response %s contained no output text", r.ID)
	}
	return text.String(), nil
}
