package ai

import (
	"iter"
	"strings"
	"sync"
)

// StreamStats counts what the bridge saw on the wire for one stream.
type StreamStats struct {
	Lines   int // non-empty lines read
	Skipped int // lines that produced neither text nor a terminal marker
	Deltas  int // text deltas forwarded
	Final   bool
}

// DeltaStream wraps a single-pass iterator of text deltas and keeps the
// running concatenation of everything forwarded so far. It supports
// range-based iteration for real-time display and a convenience Collect()
// for callers who only want the final text.
//
// Important: callers must consume the stream, either by iterating with Iter()
// (including breaking out of the loop early) or by calling Collect(). The
// bridge holds the HTTP response body open until the iterator completes or
// is abandoned via a loop break.
type DeltaStream struct {
	iterator iter.Seq2[string, error]

	// source is the stream this one was derived from; wire counters are
	// read from it.
	source *DeltaStream

	mu    sync.Mutex
	text  strings.Builder
	stats StreamStats
}

// NewDeltaStream creates a DeltaStream from a raw iterator. The iterator
// yields deltas with a nil error and may yield a non-nil error once to
// signal a mid-stream failure or cancellation.
func NewDeltaStream(iterator iter.Seq2[string, error]) *DeltaStream {
	return &DeltaStream{iterator: iterator}
}

// NewSingleDeltaStream wraps a complete answer as a one-delta stream. It is
// used for the non-streaming fallback so callers see one code path.
func NewSingleDeltaStream(text string) *DeltaStream {
	return NewDeltaStream(func(yield func(string, error) bool) {
		if text != "" {
			yield(text, nil)
		}
	})
}

// Derive returns a stream that yields through wrap while reporting the wire
// counters of s. Middleware uses it to observe a stream without losing the
// producer's statistics.
func (s *DeltaStream) Derive(wrap func(iter.Seq2[string, error]) iter.Seq2[string, error]) *DeltaStream {
	return &DeltaStream{iterator: wrap(s.Iter()), source: s}
}

// Iter returns the iterator for use with range-over-func loops. Every
// delta is appended to the running text before it is handed to the caller.
//
// Example:
//
//	for delta, err := range stream.Iter() {
//	    if err != nil { handle error }
//	    fmt.Print(delta)
//	}
func (s *DeltaStream) Iter() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for delta, err := range s.iterator {
			if err != nil {
				yield("", err)
				return
			}
			s.mu.Lock()
			s.text.WriteString(delta)
			s.stats.Deltas++
			s.mu.Unlock()

			if !yield(delta, nil) {
				return
			}
		}
	}
}

// Collect consumes the stream and returns the accumulated text. A mid-stream
// error stops collection and is returned together with the partial text.
func (s *DeltaStream) Collect() (string, error) {
	for _, err := range s.Iter() {
		if err != nil {
			return s.Text(), err
		}
	}
	return s.Text(), nil
}

// Text returns everything forwarded so far.
func (s *DeltaStream) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text.String()
}

// Stats returns a snapshot of the wire counters.
func (s *DeltaStream) Stats() StreamStats {
	s.mu.Lock()
	stats := s.stats
	s.mu.Unlock()

	if s.source != nil {
		wire := s.source.Stats()
		stats.Lines, stats.Skipped, stats.Final = wire.Lines, wire.Skipped, wire.Final
	}
	return stats
}

// RecordLine updates the wire counters. It is called by the producer for
// every non-empty line it reads.
func (s *DeltaStream) RecordLine(result LineResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Lines++
	if result.Final {
		s.stats.Final = true
	}
	if !result.HasDelta() && !result.Final {
		s.stats.Skipped++
	}
}
