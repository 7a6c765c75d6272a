package utils

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/leofalp/chatbridge/providers/observability"
)

// DoPostStream performs an HTTP POST request and returns the raw response with body
// left open for line-by-line reading. The caller is responsible for closing the
// response body when done reading. Non-2xx responses are drained, closed and
// returned as *HTTPStatusError.
func DoPostStream(ctx context.Context, client *http.Client, url string, body any, header http.Header) (*http.Response, error) {
	span := observability.SpanFromContext(ctx)

	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	req, size, err := newJSONRequest(ctx, http.MethodPost, url, body, header)
	if err != nil {
		return nil, err
	}

	if span != nil {
		span.AddEvent("http.stream_request.prepared",
			observability.String(observability.AttrHTTPMethod, http.MethodPost),
			observability.String(observability.AttrHTTPURL, url),
			observability.Int(observability.AttrHTTPRequestBodySize, size),
		)
	}

	requestStart := time.Now()
	response, err := httpClient.Do(req)
	requestDuration := time.Since(requestStart)

	if err != nil {
		if span != nil {
			span.AddEvent("http.stream_request.error",
				observability.Error(err),
				observability.Duration("http.request.duration", requestDuration),
			)
		}
		return nil, fmt.Errorf("error sending stream request: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, newStatusError(response)
	}

	if span != nil {
		span.AddEvent("http.stream_response.started",
			observability.Int(observability.AttrHTTPStatusCode, response.StatusCode),
			observability.Duration("http.request.duration", requestDuration),
		)
	}

	return response, nil
}

// maxLineSize is the maximum size of a single stream line (1 MB).
// The default bufio.Scanner limit is 64 KiB, which is too small for
// long completions or base64 payloads echoed back by local servers.
// If a line exceeds this limit Next returns an error wrapping bufio.ErrTooLong.
const maxLineSize = 1 * 1024 * 1024

// LineScanner reads a response body as text lines. It does no framing of
// its own: SSE prefixes, sentinels and JSON are left to the provider
// adapter, so ND-JSON and SSE-style streams go through the same reader.
type LineScanner struct {
	scanner *bufio.Scanner
}

// NewLineScanner creates a LineScanner over reader.
func NewLineScanner(reader io.Reader) *LineScanner {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &LineScanner{scanner: scanner}
}

// Next returns the next non-blank line with any trailing carriage return
// removed. Returns io.EOF when the reader is exhausted.
func (s *LineScanner) Next() (string, error) {
	for s.scanner.Scan() {
		line := strings.TrimRight(s.scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		return line, nil
	}

	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("line scanner error: %w", err)
	}
	return "", io.EOF
}

// SSEDoneSentinel is the payload OpenAI-compatible servers send as their last data line.
const SSEDoneSentinel = "[DONE]"

// SSEData extracts the payload of an SSE "data:" line. ok is false for every
// other field (event:, id:, retry:), comments and bare text.
func SSEData(line string) (payload string, ok bool) {
	if !strings.HasPrefix(line, "data:") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(line, "data:")), true
}
