package openaicompat

/*
	CHAT COMPLETIONS - REQUEST TYPES
*/

// ChatCompletionRequest is the streaming request body for /v1/chat/completions.
type ChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// ChatMessage is one entry of the messages array. Content is either a plain
// string or a []ContentPart when an image is attached.
type ChatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ContentPart is a typed element of a multimodal message.
type ContentPart struct {
	Type     string    `json:"type"` // "text" or "image_url"
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL wraps the data URL of an inline image.
type ImageURL struct {
	URL string `json:"url"`
}

/*
	CHAT COMPLETIONS - STREAM TYPES
*/

// streamChunk is the payload of one "data:" line.
type streamChunk struct {
	Object  string         `json:"object,omitempty"` // "chat.completion.chunk"
	Choices []streamChoice `json:"choices"`
}

type streamChoice struct {
	Index        int         `json:"index"`
	Delta        streamDelta `json:"delta"`
	FinishReason *string     `json:"finish_reason"` // nil until the last chunk
}

type streamDelta struct {
	Role    string  `json:"role,omitempty"`
	Content *string `json:"content,omitempty"`
}

/*
	MODEL LISTING
*/

// modelList is the /v1/models response.
type modelList struct {
	Object string `json:"object,omitempty"`
	Data   []struct {
		ID string `json:"id"`
	} `json:"data"`
}
