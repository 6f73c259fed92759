package memory

import (
	"context"
	"sync"

	"mintguard/internal/events"
)

// Store keeps result records in memory, newest last. Intended for tests and
// single-node development; production deployments use the Postgres store.
type Store struct {
	mu      sync.RWMutex
	records []events.Event
}

// New creates an empty in-memory event store.
func New() *Store {
	return &Store{}
}

func (s *Store) Append(ctx context.Context, event events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, event)
	return nil
}

// List returns up to limit records, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]events.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.records)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]events.Event, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}
