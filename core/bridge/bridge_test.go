package bridge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/leofalp/chatbridge/providers/ai"
	"github.com/leofalp/chatbridge/providers/ai/lmstudio"
	"github.com/leofalp/chatbridge/providers/ai/ollama"
)

// newOllamaBridge points an Ollama adapter at server and returns the bridge
// together with a prepared chat request.
func newOllamaBridge(t *testing.T, server *httptest.Server, middlewares ...Middleware) (*Bridge, *ai.PreparedRequest) {
	t.Helper()

	cfg := ai.ConnectionConfig{Provider: ai.ProviderOllama, BaseURL: server.URL}
	adapter := ollama.New(cfg)
	req, err := adapter.BuildChatRequest(ai.GenerationRequest{Model: "llama3.2", Prompt: "Hi"})
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	return New(server.Client(), cfg, adapter, middlewares...), req
}

// writeLines writes each line followed by a newline and flushes so the
// client sees them as separate chunks.
func writeLines(w http.ResponseWriter, lines ...string) {
	flusher, _ := w.(http.Flusher)
	for _, line := range lines {
		fmt.Fprintln(w, line)
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func TestStream_OllamaConcatenation(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		writeLines(w,
			`{"message":{"role":"assistant","content":"Hi"},"done":false}`,
			`{"message":{"role":"assistant","content":" there"},"done":false}`,
			`{"message":{"role":"assistant","content":"!"},"done":false}`,
			`{"message":{"role":"assistant","content":""},"done":true}`,
		)
	}))
	defer server.Close()

	bridge, req := newOllamaBridge(t, server)
	stream, err := bridge.Stream(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text, err := stream.Collect()
	if err != nil {
		t.Fatalf("unexpected stream error: %v", err)
	}
	if text != "Hi there!" {
		t.Errorf("expected %q, got %q", "Hi there!", text)
	}
	if gotPath != "/api/chat" {
		t.Errorf("expected /api/chat, got %s", gotPath)
	}

	stats := stream.Stats()
	if stats.Lines != 4 || stats.Deltas != 3 || stats.Skipped != 0 || !stats.Final {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestStream_FinalMarkerStopsReading(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeLines(w,
			`{"message":{"content":"done"},"done":true}`,
			`{"message":{"content":" trailing"},"done":false}`,
		)
	}))
	defer server.Close()

	bridge, req := newOllamaBridge(t, server)
	stream, err := bridge.Stream(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text, _ := stream.Collect()
	if text != "done" {
		t.Errorf("expected text up to the final marker, got %q", text)
	}
	if stream.Stats().Lines != 1 {
		t.Errorf("expected reading to stop after the final line, got %d lines", stream.Stats().Lines)
	}
}

func TestStream_SkipsMalformedLines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeLines(w,
			`: keepalive`,
			`data: {"choices":[{"delta":{"content":"Hel"}}]}`,
			`data: {not json`,
			``,
			`data: {"choices":[{"delta":{"content":"lo"}}]}`,
			`data: [DONE]`,
		)
	}))
	defer server.Close()

	cfg := ai.ConnectionConfig{Provider: ai.ProviderLMStudio, BaseURL: server.URL}
	adapter := lmstudio.New(cfg)
	req, err := adapter.BuildChatRequest(ai.GenerationRequest{Model: "qwen2.5-7b", Prompt: "Hi"})
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	stream, err := New(server.Client(), cfg, adapter).Stream(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text, err := stream.Collect()
	if err != nil {
		t.Fatalf("malformed lines must not fail the stream: %v", err)
	}
	if text != "Hello" {
		t.Errorf("expected %q, got %q", "Hello", text)
	}
	if skipped := stream.Stats().Skipped; skipped != 2 {
		t.Errorf("expected 2 skipped lines, got %d", skipped)
	}
}

func TestStream_NonSuccessStatusIsProtocolError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"model 'llama9' not found, try pulling it first"}`)
	}))
	defer server.Close()

	bridge, req := newOllamaBridge(t, server)
	_, err := bridge.Stream(context.Background(), req)

	var protocolErr *ai.ProtocolError
	if !errors.As(err, &protocolErr) {
		t.Fatalf("expected *ai.ProtocolError, got %T (%v)", err, err)
	}
	if protocolErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", protocolErr.StatusCode)
	}
	if !strings.Contains(protocolErr.Message, "not found") {
		t.Errorf("expected vendor message, got %q", protocolErr.Message)
	}
}

func TestStream_ConnectionRefusedIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	bridge, req := newOllamaBridge(t, server)
	server.Close()

	_, err := bridge.Stream(context.Background(), req)

	var transportErr *ai.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected *ai.TransportError, got %T (%v)", err, err)
	}
	if transportErr.Provider != ai.ProviderOllama {
		t.Errorf("unexpected provider %s", transportErr.Provider)
	}
}

func TestStream_CancellationMidStream(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeLines(w, `{"message":{"content":"partial"},"done":false}`)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	bridge, req := newOllamaBridge(t, server)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := bridge.Stream(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var streamErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		for delta, err := range stream.Iter() {
			if err != nil {
				streamErr = err
				return
			}
			if delta == "partial" {
				cancel()
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not stop after cancellation")
	}

	if !errors.Is(streamErr, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", streamErr)
	}
	if stream.Text() != "partial" {
		t.Errorf("expected partial text to be kept, got %q", stream.Text())
	}
}

func TestStream_BreakClosesBody(t *testing.T) {
	finished := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer close(finished)
		writeLines(w, `{"message":{"content":"one"},"done":false}`)
		<-r.Context().Done()
	}))
	defer server.Close()

	bridge, req := newOllamaBridge(t, server)
	stream, err := bridge.Stream(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for range stream.Iter() {
		break
	}

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("expected breaking out of the loop to close the connection")
	}
}

func TestOneShot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"completed"}`)
	}))
	defer server.Close()

	bridge, req := newOllamaBridge(t, server)
	body, err := bridge.OneShot(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `{"status":"completed"}` {
		t.Errorf("unexpected body %q", body)
	}
}

func TestGet_ClassifiesErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"Incorrect API key provided"}}`)
	}))
	defer server.Close()

	bridge, _ := newOllamaBridge(t, server)
	_, err := bridge.Get(context.Background(), "v1/models", nil)

	if !ai.IsAuthError(err) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Incorrect API key provided") {
		t.Errorf("expected vendor message in error, got %q", err.Error())
	}
}

func TestMiddlewareOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeLines(w, `{"message":{"content":"ok"},"done":true}`)
	}))
	defer server.Close()

	var order []string
	record := func(name string) Middleware {
		return func(next StreamFunc) StreamFunc {
			return func(ctx context.Context, req *ai.PreparedRequest) (*ai.DeltaStream, error) {
				order = append(order, name)
				return next(ctx, req)
			}
		}
	}

	bridge, req := newOllamaBridge(t, server, record("outer"), nil, record("inner"))
	stream, err := bridge.Stream(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, _ = stream.Collect()

	if strings.Join(order, ",") != "outer,inner" {
		t.Errorf("unexpected middleware order %v", order)
	}
}
