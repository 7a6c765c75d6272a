package inmemory

import (
	"context"
	"slices"
	"sync"

	"github.com/leofalp/chatbridge/providers/memory"
	"github.com/leofalp/chatbridge/providers/observability"
)

// Store is a simple, concurrency-safe in-memory conversation store.
// It uses RWMutex to guard access and is efficient for read-heavy workloads.
type Store struct {
	mu     sync.RWMutex
	groups map[string][]memory.Record
	order  []string
}

// New returns a new, empty [Store] ready for immediate use.
func New() *Store {
	return &Store{groups: make(map[string][]memory.Record)}
}

// Ensure Store implements memory.Store at compile time.
var _ memory.Store = (*Store)(nil)

// AppendTurn stores a copy of record at the end of its group.
// When an observability span is present in ctx, an event is recorded with the
// group id and the running total is set as a span attribute.
func (s *Store) AppendTurn(ctx context.Context, record memory.Record) error {
	span := observability.SpanFromContext(ctx)

	if len(record.Image) > 0 {
		record.Image = slices.Clone(record.Image)
	}

	s.mu.Lock()
	if _, exists := s.groups[record.GroupID]; !exists {
		s.order = append(s.order, record.GroupID)
	}
	s.groups[record.GroupID] = append(s.groups[record.GroupID], record)
	total := len(s.groups[record.GroupID])
	s.mu.Unlock()

	if span != nil {
		span.AddEvent(observability.EventMemoryAppend,
			observability.String(observability.AttrMemoryGroupID, record.GroupID),
		)
		span.SetAttributes(
			observability.Int(observability.AttrMemoryTotalMessages, total),
		)
	}
	return nil
}

// FetchHistory returns a copy of the group's records to avoid external
// mutation of internal state. The returned error is always nil.
func (s *Store) FetchHistory(_ context.Context, groupID string) ([]memory.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.groups[groupID]
	out := make([]memory.Record, len(records))
	copy(out, records)
	return out, nil
}

// Count returns the number of records stored for groupID.
func (s *Store) Count(_ context.Context, groupID string) (int, error) {
	s.mu.RLock()
	n := len(s.groups[groupID])
	s.mu.RUnlock()
	return n, nil
}

// Groups returns the known group ids in creation order.
func (s *Store) Groups() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order)
}

// DeleteGroup removes every record of groupID. Unknown groups are ignored.
func (s *Store) DeleteGroup(_ context.Context, groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.groups[groupID]; !exists {
		return nil
	}
	delete(s.groups, groupID)
	s.order = slices.DeleteFunc(s.order, func(id string) bool { return id == groupID })
	return nil
}
