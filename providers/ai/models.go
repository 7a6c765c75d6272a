package ai

import (
	"encoding/base64"
	"net/http"
	"time"
)

// MessageRole is the author of a conversation turn.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Image is an optional attachment on a user turn. The bytes are sent as-is;
// resizing and re-encoding are the caller's responsibility.
type Image struct {
	Data      []byte
	MediaType string
}

// NewImage wraps raw image bytes, sniffing the media type when possible.
func NewImage(data []byte) *Image {
	if len(data) == 0 {
		return nil
	}
	mediaType := http.DetectContentType(data)
	if mediaType == "application/octet-stream" {
		mediaType = "image/jpeg"
	}
	return &Image{Data: data, MediaType: mediaType}
}

// Base64 returns the standard base64 encoding of the image bytes.
func (img *Image) Base64() string {
	if img == nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(img.Data)
}

// Type returns the media type, defaulting to image/jpeg.
func (img *Image) Type() string {
	if img == nil || img.MediaType == "" {
		return "image/jpeg"
	}
	return img.MediaType
}

// DataURL returns the image as an RFC 2397 data URL.
func (img *Image) DataURL() string {
	if img == nil {
		return ""
	}
	return "data:" + img.Type() + ";base64," + img.Base64()
}

// Turn is one message in a conversation.
type Turn struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Image     *Image      `json:"-"`
	Timestamp time.Time   `json:"timestamp"`
}

// GenerationRequest is built fresh for every send and is not modified while
// in flight. History holds the prior turns only: the new prompt is never part
// of it.
type GenerationRequest struct {
	Prompt            string
	Image             *Image
	Model             string
	History           []Turn
	SystemInstruction string
}

// OutcomeKind is the terminal state of one generation.
type OutcomeKind string

const (
	OutcomeCompleted OutcomeKind = "completed"
	OutcomeCancelled OutcomeKind = "cancelled"
	OutcomeFailed    OutcomeKind = "failed"
)

// Outcome describes how a generation ended. Text always holds whatever was
// accumulated, including partial text on cancellation or failure.
type Outcome struct {
	Kind     OutcomeKind
	Text     string
	Err      error
	Provider ProviderKind
	Model    string

	Duration        time.Duration
	TokensPerSecond float64

	// UsedFallback is set when the text came from the non-streaming fallback call.
	UsedFallback bool
}
