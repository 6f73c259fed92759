package allowlist

import (
	"context"
	"sort"
	"sync"

	id "mintguard/pkg/domain"
)

// InMemoryStore keeps allowlist membership in process memory. Suitable for
// single-node deployments and tests; use PostgresStore when membership must
// survive restarts or be shared.
type InMemoryStore struct {
	mu      sync.RWMutex
	members map[id.Address]struct{}
}

// NewInMemory creates an empty in-memory allowlist store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{members: make(map[id.Address]struct{})}
}

func (s *InMemoryStore) Add(ctx context.Context, recipient id.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[recipient] = struct{}{}
	return nil
}

func (s *InMemoryStore) Remove(ctx context.Context, recipient id.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members, recipient)
	return nil
}

func (s *InMemoryStore) Contains(ctx context.Context, recipient id.Address) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[recipient]
	return ok, nil
}

func (s *InMemoryStore) List(ctx context.Context) ([]id.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members := make([]id.Address, 0, len(s.members))
	for m := range s.members {
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
	return members, nil
}
