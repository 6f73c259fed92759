package pending

import (
	"context"
	"fmt"
	"sync"

	"mintguard/internal/intake"
)

// InMemoryStore tracks pending oracle requests with a hard capacity. When
// full, the oldest entry is evicted: an indefinitely-unresolved request must
// not pin memory forever, and its late delivery then fails as unknown.
type InMemoryStore struct {
	mu       sync.Mutex
	capacity int
	requests map[string]*intake.PendingRequest
	order    []string
}

// NewInMemory creates a bounded in-memory pending store.
func NewInMemory(capacity int) *InMemoryStore {
	if capacity <= 0 {
		capacity = 1024
	}
	return &InMemoryStore{
		capacity: capacity,
		requests: make(map[string]*intake.PendingRequest),
	}
}

func (s *InMemoryStore) Register(ctx context.Context, req intake.PendingRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.requests[req.ID]; exists {
		return fmt.Errorf("request %s is already registered", req.ID)
	}

	for len(s.requests) >= s.capacity && len(s.order) > 0 {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.requests, oldest)
	}

	stored := req
	s.requests[req.ID] = &stored
	s.order = append(s.order, req.ID)
	return nil
}

func (s *InMemoryStore) Get(ctx context.Context, requestID string) (intake.PendingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[requestID]
	if !ok {
		return intake.PendingRequest{}, fmt.Errorf("%w: %s", intake.ErrUnknownRequest, requestID)
	}
	return *req, nil
}

func (s *InMemoryStore) MarkFulfilled(ctx context.Context, requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[requestID]
	if !ok {
		return fmt.Errorf("%w: %s", intake.ErrUnknownRequest, requestID)
	}
	if req.Fulfilled {
		return fmt.Errorf("%w: %s", intake.ErrRequestFulfilled, requestID)
	}
	req.Fulfilled = true
	return nil
}

func (s *InMemoryStore) Remove(ctx context.Context, requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.requests, requestID)
	for i, rid := range s.order {
		if rid == requestID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len reports the number of tracked requests, fulfilled entries included.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}
