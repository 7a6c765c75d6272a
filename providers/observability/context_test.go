package observability

import (
	"context"
	"sync"
	"testing"
)

type testContextKey string

type mockSpan struct {
	name string
}

func (m *mockSpan) End()                                          {}
func (m *mockSpan) SetAttributes(attrs ...Attribute)              {}
func (m *mockSpan) SetStatus(code StatusCode, description string) {}
func (m *mockSpan) RecordError(err error)                         {}
func (m *mockSpan) AddEvent(name string, attrs ...Attribute)      {}

// mockProvider carries a label so round-trip tests can check identity.
type mockProvider struct {
	label string
}

func (m *mockProvider) StartSpan(ctx context.Context, _ string, _ ...Attribute) (context.Context, Span) {
	return ctx, nil
}
func (m *mockProvider) Trace(_ context.Context, _ string, _ ...Attribute) {}
func (m *mockProvider) Debug(_ context.Context, _ string, _ ...Attribute) {}
func (m *mockProvider) Info(_ context.Context, _ string, _ ...Attribute)  {}
func (m *mockProvider) Warn(_ context.Context, _ string, _ ...Attribute)  {}
func (m *mockProvider) Error(_ context.Context, _ string, _ ...Attribute) {}

func TestSpanFromContext_Empty(t *testing.T) {
	if span := SpanFromContext(context.Background()); span != nil {
		t.Errorf("Expected nil span from empty context, got %v", span)
	}
	//nolint:staticcheck // nil context is part of the contract
	if span := SpanFromContext(nil); span != nil {
		t.Errorf("Expected nil span from nil context, got %v", span)
	}
}

func TestContextWithSpan_RoundTripAndOverwrite(t *testing.T) {
	first := &mockSpan{name: "stream"}
	second := &mockSpan{name: "oneshot"}

	ctx := ContextWithSpan(context.Background(), first)
	if SpanFromContext(ctx) != first {
		t.Fatal("expected first span")
	}

	ctx = ContextWithSpan(ctx, second)
	if SpanFromContext(ctx) != second {
		t.Error("expected the later span to win")
	}
}

func TestContextWithSpan_SurvivesWrapping(t *testing.T) {
	span := &mockSpan{name: "generation"}
	ctx := ContextWithSpan(context.Background(), span)
	ctx = context.WithValue(ctx, testContextKey("provider"), "ollama")
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if SpanFromContext(ctx) != span {
		t.Error("expected span to survive context wrapping")
	}
}

func TestContextWithSpan_Concurrent(t *testing.T) {
	span := &mockSpan{name: "concurrent"}
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if SpanFromContext(ContextWithSpan(ctx, span)) != span {
				t.Errorf("concurrent access failed")
			}
		}()
	}
	wg.Wait()
}

func TestContextWithObserver_RoundTrip(t *testing.T) {
	observer := &mockProvider{label: "session"}
	ctx := ContextWithObserver(context.Background(), observer)

	retrieved, ok := ObserverFromContext(ctx).(*mockProvider)
	if !ok {
		t.Fatalf("expected *mockProvider, got %T", ObserverFromContext(ctx))
	}
	if retrieved != observer || retrieved.label != "session" {
		t.Errorf("expected the stored observer back, got %+v", retrieved)
	}
}

func TestObserverFromContext_Missing(t *testing.T) {
	if observer := ObserverFromContext(context.Background()); observer != nil {
		t.Errorf("expected nil observer, got %v", observer)
	}
	//nolint:staticcheck // nil context is part of the contract
	if observer := ObserverFromContext(nil); observer != nil {
		t.Errorf("expected nil observer from nil context, got %v", observer)
	}
}

func TestObserverAndSpan_AreIndependent(t *testing.T) {
	ctx := ContextWithObserver(context.Background(), &mockProvider{})
	if SpanFromContext(ctx) != nil {
		t.Error("observer must not be readable as a span")
	}
}
