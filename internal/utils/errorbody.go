package utils

import (
	"bytes"
	"encoding/json"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/kaptinlin/jsonrepair"
)

// maxErrorMessageLength bounds messages extracted from error bodies.
const maxErrorMessageLength = 300

// ExtractErrorMessage returns a human-readable message from a failed
// response body, or "" when nothing useful can be found.
//
// Vendor JSON envelopes are searched for error.message, a bare error string
// (Ollama) and a top-level message. A body cut off by the size cap is
// repaired before decoding. HTML error pages, usually from a proxy in front
// of a local server, are converted to markdown text.
func ExtractErrorMessage(contentType string, body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}

	switch {
	case trimmed[0] == '{':
		if message := messageFromJSON(string(trimmed)); message != "" {
			return Truncate(message, maxErrorMessageLength)
		}
		return ""

	case strings.Contains(contentType, "html") || trimmed[0] == '<':
		markdown, err := htmltomarkdown.ConvertString(string(trimmed))
		if err != nil {
			return ""
		}
		return Truncate(collapseWhitespace(markdown), maxErrorMessageLength)
	}

	return Truncate(collapseWhitespace(string(trimmed)), maxErrorMessageLength)
}

func messageFromJSON(raw string) string {
	var envelope map[string]any
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(raw)
		if repairErr != nil {
			return ""
		}
		if err := json.Unmarshal([]byte(repaired), &envelope); err != nil {
			return ""
		}
	}

	switch errorField := envelope["error"].(type) {
	case string:
		return errorField
	case map[string]any:
		if message, ok := errorField["message"].(string); ok {
			return message
		}
	}

	if message, ok := envelope["message"].(string); ok {
		return message
	}
	return ""
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
