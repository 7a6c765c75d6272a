package ai

import (
	"errors"
	"iter"
	"testing"
)

func deltasOf(deltas ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, d := range deltas {
			if !yield(d, nil) {
				return
			}
		}
	}
}

func TestDeltaStream_Collect(t *testing.T) {
	stream := NewDeltaStream(deltasOf("Hi", " there", "!"))

	text, err := stream.Collect()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Hi there!" {
		t.Errorf("Collect() = %q, want %q", text, "Hi there!")
	}
	if stream.Stats().Deltas != 3 {
		t.Errorf("expected 3 deltas, got %d", stream.Stats().Deltas)
	}
}

func TestDeltaStream_IterAccumulatesBeforeYield(t *testing.T) {
	stream := NewDeltaStream(deltasOf("a", "b", "c"))

	var seen []string
	for _, err := range stream.Iter() {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		seen = append(seen, stream.Text())
	}

	want := []string{"a", "ab", "abc"}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("running text at %d = %q, want %q", i, seen[i], want[i])
		}
	}
}

func TestDeltaStream_BreakStopsProducer(t *testing.T) {
	produced := 0
	stream := NewDeltaStream(func(yield func(string, error) bool) {
		for _, d := range []string{"one", "two", "three"} {
			produced++
			if !yield(d, nil) {
				return
			}
		}
	})

	for range stream.Iter() {
		break
	}

	if produced != 1 {
		t.Errorf("expected producer to stop after first delta, produced %d", produced)
	}
	if stream.Text() != "one" {
		t.Errorf("expected partial text %q, got %q", "one", stream.Text())
	}
}

func TestDeltaStream_MidStreamError(t *testing.T) {
	boom := errors.New("connection reset")
	stream := NewDeltaStream(func(yield func(string, error) bool) {
		if !yield("partial", nil) {
			return
		}
		yield("", boom)
	})

	text, err := stream.Collect()
	if !errors.Is(err, boom) {
		t.Fatalf("expected %v, got %v", boom, err)
	}
	if text != "partial" {
		t.Errorf("expected partial text to survive, got %q", text)
	}
}

func TestNewSingleDeltaStream(t *testing.T) {
	text, err := NewSingleDeltaStream("complete answer").Collect()
	if err != nil || text != "complete answer" {
		t.Errorf("got (%q, %v)", text, err)
	}

	empty := NewSingleDeltaStream("")
	if text, _ := empty.Collect(); text != "" || empty.Stats().Deltas != 0 {
		t.Errorf("empty stream should yield nothing, got %q", text)
	}
}

func TestDeltaStream_RecordLine(t *testing.T) {
	stream := NewDeltaStream(deltasOf())

	stream.RecordLine(LineResult{Delta: "Hi"})
	stream.RecordLine(LineResult{})
	stream.RecordLine(LineResult{})
	stream.RecordLine(LineResult{Final: true})

	stats := stream.Stats()
	if stats.Lines != 4 || stats.Skipped != 2 || !stats.Final {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestDeltaStream_DeriveKeepsWireCounters(t *testing.T) {
	inner := NewDeltaStream(deltasOf("Hi", " there"))
	inner.RecordLine(LineResult{Delta: "Hi"})
	inner.RecordLine(LineResult{})
	inner.RecordLine(LineResult{Delta: " there", Final: true})

	var observed int
	outer := inner.Derive(func(seq iter.Seq2[string, error]) iter.Seq2[string, error] {
		return func(yield func(string, error) bool) {
			for delta, err := range seq {
				observed++
				if !yield(delta, err) {
					return
				}
			}
		}
	})

	text, err := outer.Collect()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Hi there" || observed != 2 {
		t.Errorf("unexpected text %q after %d deltas", text, observed)
	}

	stats := outer.Stats()
	if stats.Lines != 3 || stats.Skipped != 1 || !stats.Final || stats.Deltas != 2 {
		t.Errorf("unexpected stats %+v", stats)
	}
}
