package utils

import (
	"strings"
	"testing"
)

func TestExtractErrorMessage(t *testing.T) {
	testCases := []struct {
		name        string
		contentType string
		body        string
		want        string
	}{
		{
			name:        "openai envelope",
			contentType: "application/json",
			body:        `{"error":{"message":"Your organization must be verified to stream this model.","type":"invalid_request_error","code":"unsupported_value"}}`,
			want:        "Your organization must be verified to stream this model.",
		},
		{
			name:        "anthropic envelope",
			contentType: "application/json",
			body:        `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`,
			want:        "invalid x-api-key",
		},
		{
			name:        "ollama bare error string",
			contentType: "application/json; charset=utf-8",
			body:        `{"error":"model 'llama9' not found"}`,
			want:        "model 'llama9' not found",
		},
		{
			name:        "top level message",
			contentType: "application/json",
			body:        `{"message":"Unauthorized"}`,
			want:        "Unauthorized",
		},
		{
			name:        "truncated envelope is repaired",
			contentType: "application/json",
			body:        `{"error":{"message":"quota exceeded","type":"insufficient_quo`,
			want:        "quota exceeded",
		},
		{
			name:        "json without message",
			contentType: "application/json",
			body:        `{"detail":{"code":42}}`,
			want:        "",
		},
		{
			name:        "plain text",
			contentType: "text/plain",
			body:        "404 page   not found\n",
			want:        "404 page not found",
		},
		{
			name: "empty",
			body: "   ",
			want: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractErrorMessage(tc.contentType, []byte(tc.body))
			if got != tc.want {
				t.Errorf("ExtractErrorMessage() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExtractErrorMessage_HTMLPage(t *testing.T) {
	body := `<html><head><title>502 Bad Gateway</title></head><body><h1>Bad Gateway</h1><p>upstream unavailable</p></body></html>`

	got := ExtractErrorMessage("text/html", []byte(body))

	if !strings.Contains(got, "Bad Gateway") || !strings.Contains(got, "upstream unavailable") {
		t.Errorf("expected readable text from HTML page, got %q", got)
	}
	if strings.Contains(got, "<h1>") {
		t.Errorf("expected tags to be removed, got %q", got)
	}
}
