package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/leofalp/chatbridge/providers/observability"
)

// maxResponseBodySize is the maximum response body size (10 MB). Enforced via
// io.LimitReader to prevent unbounded memory allocation from rogue responses.
const maxResponseBodySize int64 = 10 * 1024 * 1024

// maxErrorBodySize caps how much of a non-2xx body is kept for diagnostics.
const maxErrorBodySize int64 = 64 * 1024

// HTTPStatusError is returned for non-2xx responses. The body is read (up to
// maxErrorBodySize) and the response closed before it is returned.
type HTTPStatusError struct {
	StatusCode  int
	ContentType string
	Body        []byte
	// Truncated is set when the body was longer than the diagnostic cap.
	Truncated bool
}

// Error implements the error interface.
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("non-2xx status %d: %s", e.StatusCode, Truncate(string(e.Body), 0))
}

// CloseWithLog closes c and logs, rather than returns, any close error.
func CloseWithLog(c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		slog.Warn("failed to close response body", "error", err.Error())
	}
}

// newStatusError drains a failed response into an HTTPStatusError.
func newStatusError(response *http.Response) *HTTPStatusError {
	defer CloseWithLog(response.Body)

	statusErr := &HTTPStatusError{
		StatusCode:  response.StatusCode,
		ContentType: response.Header.Get("Content-Type"),
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, maxErrorBodySize+1))
	if err != nil {
		return statusErr
	}
	if int64(len(body)) > maxErrorBodySize {
		body = body[:maxErrorBodySize]
		statusErr.Truncated = true
	}
	statusErr.Body = body
	return statusErr
}

// newJSONRequest marshals body and builds a request with the given headers.
// Headers in header override the JSON content type default.
func newJSONRequest(ctx context.Context, method, url string, body any, header http.Header) (*http.Request, int, error) {
	var reader io.Reader
	size := 0
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("error marshaling body: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
		size = len(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("error creating request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range header {
		req.Header.Del(key)
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	return req, size, nil
}

// DoPost performs a non-streaming JSON request and returns the raw response
// body. Non-2xx responses are returned as *HTTPStatusError.
func DoPost(ctx context.Context, client *http.Client, url string, body any, header http.Header) ([]byte, error) {
	return doBuffered(ctx, client, http.MethodPost, url, body, header)
}

// DoGet performs a GET request and returns the raw response body.
// Non-2xx responses are returned as *HTTPStatusError.
func DoGet(ctx context.Context, client *http.Client, url string, header http.Header) ([]byte, error) {
	return doBuffered(ctx, client, http.MethodGet, url, nil, header)
}

func doBuffered(ctx context.Context, client *http.Client, method, url string, body any, header http.Header) ([]byte, error) {
	span := observability.SpanFromContext(ctx)

	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	req, size, err := newJSONRequest(ctx, method, url, body, header)
	if err != nil {
		return nil, err
	}

	if span != nil {
		span.AddEvent("http.request.prepared",
			observability.String(observability.AttrHTTPMethod, method),
			observability.String(observability.AttrHTTPURL, url),
			observability.Int(observability.AttrHTTPRequestBodySize, size),
		)
	}

	requestStart := time.Now()
	res, err := httpClient.Do(req)
	requestDuration := time.Since(requestStart)
	if err != nil {
		if span != nil {
			span.AddEvent("http.request.error",
				observability.Error(err),
				observability.Duration("http.request.duration", requestDuration),
			)
		}
		return nil, fmt.Errorf("error sending request: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, newStatusError(res)
	}
	defer CloseWithLog(res.Body)

	respBody, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if span != nil {
		span.AddEvent("http.response.received",
			observability.Int(observability.AttrHTTPStatusCode, res.StatusCode),
			observability.Int(observability.AttrHTTPResponseBodySize, len(respBody)),
			observability.Duration("http.request.duration", requestDuration),
		)
	}

	return respBody, nil
}
