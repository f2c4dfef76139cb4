package audit

import (
	"context"
	"sync"
)

// DefaultCapacity bounds the in-memory log when no capacity is given.
const DefaultCapacity = 10_000

// InMemoryStore keeps the most recent events in a fixed-size ring. Once full,
// the oldest event is overwritten. Kafka or a durable sink keeps full history.
type InMemoryStore struct {
	mu     sync.RWMutex
	ring   []Event
	next   int
	filled bool
}

type StoreOption func(*InMemoryStore)

func WithCapacity(n int) StoreOption {
	return func(s *InMemoryStore) {
		if n > 0 {
			s.ring = make([]Event, n)
		}
	}
}

func NewInMemoryStore(opts ...StoreOption) *InMemoryStore {
	s := &InMemoryStore{}
	for _, opt := range opts {
		opt(s)
	}
	if s.ring == nil {
		s.ring = make([]Event, DefaultCapacity)
	}
	return s
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.ring)
	s.next = 0
	s.filled = false
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ring[s.next] = event
	s.next++
	if s.next == len(s.ring) {
		s.next = 0
		s.filled = true
	}
	return nil
}

// ListByActor returns the retained events of actorID, oldest first.
func (s *InMemoryStore) ListByActor(_ context.Context, actorID string) ([]Event, error) {
	return s.collect(func(e Event) bool { return e.ActorID == actorID }), nil
}

// ListBySubject returns the retained events about one subject, e.g. a record ID.
func (s *InMemoryStore) ListBySubject(_ context.Context, subject string) ([]Event, error) {
	return s.collect(func(e Event) bool { return e.Subject == subject }), nil
}

func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.filled {
		return len(s.ring)
	}
	return s.next
}

func (s *InMemoryStore) collect(match func(Event) bool) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Event{}
	visit := func(events []Event) {
		for _, e := range events {
			if match(e) {
				out = append(out, e)
			}
		}
	}
	if s.filled {
		visit(s.ring[s.next:])
	}
	visit(s.ring[:s.next])
	return out
}
