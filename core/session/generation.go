package session

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/leofalp/chatbridge/providers/ai"
	"github.com/leofalp/chatbridge/providers/memory"
	"github.com/leofalp/chatbridge/providers/observability"
)

const (
	// deltaBuffer is how many deltas may queue up ahead of a slow consumer.
	deltaBuffer = 64

	cancelledMarker = "\nCancelled by user."
	errorMarker     = "\nAn error occurred."
)

// Generation is one in-flight request started by [Controller.Generate].
//
// Callers must either range over Deltas or call Wait; the generation keeps
// its connection open until one of them drains it or it is cancelled.
type Generation struct {
	id      string
	request ai.GenerationRequest

	// exchange is the index of the prompt in the controller's exchanges.
	exchange int

	ctx    context.Context
	cancel context.CancelFunc

	deltas chan string
	done   chan struct{}

	// outcome is written once before done is closed.
	outcome ai.Outcome
}

// ID returns the generation's unique id.
func (g *Generation) ID() string {
	return g.id
}

// Model returns the model the generation was sent to.
func (g *Generation) Model() string {
	return g.request.Model
}

// Deltas returns the text as it arrives, in wire order. Breaking out of the
// loop cancels the generation.
//
// The loop ends once the exchange has been recorded, so a Generate call
// made right after it sends this exchange as history.
//
// Example:
//
//	for delta := range gen.Deltas() {
//	    fmt.Print(delta)
//	}
//	outcome := gen.Wait()
func (g *Generation) Deltas() iter.Seq[string] {
	return func(yield func(string) bool) {
		for delta := range g.deltas {
			if !yield(delta) {
				g.Cancel()
				return
			}
		}
	}
}

// Wait discards any undelivered deltas, blocks until the generation has
// ended and returns its outcome.
func (g *Generation) Wait() ai.Outcome {
	for range g.deltas {
	}
	<-g.done
	return g.outcome
}

// Cancel stops the generation. The outcome becomes Cancelled unless the
// generation already ended. Safe to call more than once.
func (g *Generation) Cancel() {
	g.cancel()
}

// Done is closed once the outcome is available.
func (g *Generation) Done() <-chan struct{} {
	return g.done
}

func (g *Generation) cancelled() bool {
	return errors.Is(g.ctx.Err(), context.Canceled)
}

// emit hands delta to the consumer unless the generation is cancelled first.
func (g *Generation) emit(delta string) {
	select {
	case g.deltas <- delta:
	case <-g.ctx.Done():
	}
}

// accumulator keeps the running text of a generation along with a word
// based token estimate. It is only touched by the goroutine driving the
// generation.
type accumulator struct {
	text   strings.Builder
	tokens int
}

func (a *accumulator) add(delta string) {
	a.text.WriteString(delta)
	a.tokens += max(1, len(strings.Fields(delta)))
}

func (a *accumulator) empty() bool {
	return a.text.Len() == 0
}

func (a *accumulator) tokensPerSecond(elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(a.tokens) / elapsed.Seconds()
}

// run drives g from request to outcome.
func (c *Controller) run(g *Generation, prepared *ai.PreparedRequest) {
	ctx := g.ctx
	model := g.request.Model

	var span observability.Span
	if c.observer != nil {
		ctx, span = c.observer.StartSpan(ctx, observability.SpanGeneration,
			observability.String(observability.AttrGenerationID, g.id),
			observability.String(observability.AttrLLMProvider, string(c.cfg.Provider)),
			observability.String(observability.AttrLLMModel, model),
			observability.Int(observability.AttrPromptLength, len(g.request.Prompt)),
			observability.Int(observability.AttrHistoryTurns, len(g.request.History)),
			observability.Bool(observability.AttrHasImage, g.request.Image != nil),
		)
		ctx = observability.ContextWithSpan(ctx, span)
		ctx = observability.ContextWithObserver(ctx, c.observer)

		c.observer.Debug(ctx, "Generation started",
			observability.String(observability.AttrGenerationID, g.id),
			observability.String(observability.AttrLLMModel, model),
			observability.String(observability.AttrLLMEndpoint, c.cfg.URL(prepared.Path)),
		)
	}

	acc := &accumulator{}
	start := time.Now()

	err := c.streamInto(ctx, g, prepared, acc)

	usedFallback := false
	if err != nil && acc.empty() && !g.cancelled() {
		if fallback, ok := c.adapter.(ai.FallbackAdapter); ok && fallback.StreamGated(model) {
			usedFallback = true
			err = c.fallbackInto(ctx, g, fallback, err, acc)
		}
	}
	elapsed := time.Since(start)

	outcome := ai.Outcome{
		Text:         acc.text.String(),
		Provider:     c.cfg.Provider,
		Model:        model,
		Duration:     elapsed,
		UsedFallback: usedFallback,
	}

	switch {
	case err == nil:
		outcome.Kind = ai.OutcomeCompleted
		outcome.TokensPerSecond = acc.tokensPerSecond(outcome.Duration)
		if c.annotate {
			if suffix := annotation(outcome.Text, model, outcome.TokensPerSecond); suffix != "" {
				g.emit(suffix)
				outcome.Text += suffix
			}
		}
	case g.cancelled():
		outcome.Kind = ai.OutcomeCancelled
	default:
		outcome.Kind = ai.OutcomeFailed
		outcome.Err = err
	}
	answer := storedAnswer(outcome)
	c.release(g, answer)
	c.persist(ctx, g, answer)
	close(g.deltas)
	c.metrics.RecordGeneration(outcome)
	c.finish(ctx, span, g, outcome)

	g.outcome = outcome
	g.cancel()
	close(g.done)
}

// streamInto runs the streaming request and forwards every delta.
func (c *Controller) streamInto(ctx context.Context, g *Generation, prepared *ai.PreparedRequest, acc *accumulator) error {
	stream, err := c.bridge.Stream(ctx, prepared)
	if err != nil {
		return err
	}
	c.setState(g, StateStreaming)
	defer func() {
		c.metrics.RecordStream(c.cfg.Provider, stream.Stats())
	}()

	for delta, err := range stream.Iter() {
		if err != nil {
			return err
		}
		acc.add(delta)
		g.emit(delta)
	}
	return nil
}

// fallbackInto makes the single non-streaming attempt allowed after a
// streaming failure and forwards its text as one delta.
func (c *Controller) fallbackInto(ctx context.Context, g *Generation, adapter ai.FallbackAdapter, streamErr error, acc *accumulator) error {
	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventFallbackStart, observability.Error(streamErr))
	}
	if c.observer != nil {
		c.observer.Info(ctx, "Streaming failed, retrying without streaming",
			observability.String(observability.AttrLLMModel, g.request.Model),
			observability.Error(streamErr),
		)
	}

	text, err := c.oneShot(ctx, adapter, g.request)
	if err != nil {
		return fmt.Errorf("streaming failed: %w; fallback failed: %w", streamErr, err)
	}

	for delta := range ai.NewSingleDeltaStream(text).Iter() {
		acc.add(delta)
		g.emit(delta)
	}
	return nil
}

func (c *Controller) oneShot(ctx context.Context, adapter ai.FallbackAdapter, request ai.GenerationRequest) (string, error) {
	if c.observer != nil {
		var span observability.Span
		ctx, span = c.observer.StartSpan(ctx, observability.SpanOneShotRequest,
			observability.String(observability.AttrLLMModel, request.Model),
		)
		defer span.End()
	}

	prepared, err := adapter.BuildOneShotRequest(request)
	if err != nil {
		return "", err
	}

	body, err := c.bridge.OneShot(ctx, prepared)
	if err != nil {
		return "", err
	}
	return adapter.ParseOneShotResponse(body)
}

// persist stores the exchange. The record is written even when the
// generation was cancelled, so the store outlives the request context.
func (c *Controller) persist(ctx context.Context, g *Generation, answer string) {
	if c.store == nil || answer == "" {
		return
	}

	record := memory.Record{
		GroupID:   c.groupID,
		Question:  g.request.Prompt,
		Answer:    answer,
		Provider:  c.cfg.Provider,
		Model:     g.request.Model,
		Timestamp: time.Now(),
	}
	if g.request.Image != nil {
		record.Image = g.request.Image.Data
	}

	if err := c.store.AppendTurn(context.WithoutCancel(ctx), record); err != nil && c.observer != nil {
		c.observer.Warn(ctx, "Failed to store conversation turn",
			observability.String(observability.AttrMemoryGroupID, c.groupID),
			observability.Error(err),
		)
	}
}

// finish closes the generation span and logs the outcome.
func (c *Controller) finish(ctx context.Context, span observability.Span, g *Generation, outcome ai.Outcome) {
	if c.observer == nil {
		return
	}

	attrs := []observability.Attribute{
		observability.String(observability.AttrGenerationID, g.id),
		observability.String(observability.AttrGenerationOutcome, string(outcome.Kind)),
		observability.Duration(observability.AttrDuration, outcome.Duration),
		observability.Bool(observability.AttrUsedFallback, outcome.UsedFallback),
	}

	switch outcome.Kind {
	case ai.OutcomeCompleted:
		attrs = append(attrs, observability.Float64(observability.AttrTokensPerSecond, outcome.TokensPerSecond))
		span.SetStatus(observability.StatusOK, "generation completed")
		c.observer.Info(ctx, "Generation completed", attrs...)
	case ai.OutcomeCancelled:
		span.SetStatus(observability.StatusOK, "generation cancelled")
		c.observer.Info(ctx, "Generation cancelled", attrs...)
	default:
		span.RecordError(outcome.Err)
		span.SetStatus(observability.StatusError, "generation failed")
		c.observer.Error(ctx, "Generation failed", append(attrs, observability.Error(outcome.Err))...)
	}

	span.SetAttributes(attrs...)
	span.End()
}

// annotation returns the model and throughput suffix for a completed
// answer, leaving out parts the text already carries.
func annotation(text, model string, tokensPerSecond float64) string {
	var suffix strings.Builder
	if !strings.Contains(text, "["+model+"]") {
		fmt.Fprintf(&suffix, "\n\n**[%s]**", model)
	}
	if !strings.Contains(text, "tokens/sec") && !strings.Contains(text, "Performance:") {
		fmt.Fprintf(&suffix, "\n   %.1f tokens/sec", tokensPerSecond)
	}
	return suffix.String()
}

// storedAnswer is the assistant text kept in history for outcome.
func storedAnswer(outcome ai.Outcome) string {
	switch {
	case outcome.Kind == ai.OutcomeCompleted:
		return outcome.Text
	case outcome.Text == "":
		return ""
	case outcome.Kind == ai.OutcomeCancelled:
		return outcome.Text + cancelledMarker
	default:
		return outcome.Text + errorMarker
	}
}
