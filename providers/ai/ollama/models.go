package ollama

// chatRequest is the /api/chat body. Sampling parameters are sent at the top
// level next to the model.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	TopK        float64       `json:"top_k"`
}

type chatMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"` // raw base64, no data: prefix
}

// chatChunk is one line of the /api/chat stream.
type chatChunk struct {
	Model      string       `json:"model,omitempty"`
	Message    *chatMessage `json:"message,omitempty"`
	Done       bool         `json:"done"`
	DoneReason string       `json:"done_reason,omitempty"`
	Error      string       `json:"error,omitempty"`
}

// tagsResponse is the /api/tags body.
type tagsResponse struct {
	Models []struct {
		Name       string `json:"name"`
		ModifiedAt string `json:"modified_at,omitempty"`
		Size       int64  `json:"size,omitempty"`
	} `json:"models"`
}
