package pending

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"mintguard/internal/intake"
)

// =============================================================================
// In-Memory Pending Store Test Suite
// =============================================================================

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory(3)
}

func (s *InMemoryStoreSuite) request(id string) intake.PendingRequest {
	return intake.PendingRequest{
		ID:          id,
		Query:       "reserve.usd",
		SubmittedAt: time.Now(),
	}
}

func (s *InMemoryStoreSuite) TestRegisterAndGet() {
	ctx := context.Background()

	s.Run("registered request is retrievable", func() {
		s.Require().NoError(s.store.Register(ctx, s.request("req-1")))

		req, err := s.store.Get(ctx, "req-1")
		s.NoError(err)
		s.Equal("req-1", req.ID)
		s.Equal("reserve.usd", req.Query)
		s.False(req.Fulfilled)
	})

	s.Run("duplicate registration rejected", func() {
		s.Require().NoError(s.store.Register(ctx, s.request("req-dup")))
		s.Error(s.store.Register(ctx, s.request("req-dup")))
	})

	s.Run("unknown id returns unknown request error", func() {
		_, err := s.store.Get(ctx, "missing")
		s.ErrorIs(err, intake.ErrUnknownRequest)
	})
}

func (s *InMemoryStoreSuite) TestCapacityEviction() {
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		s.Require().NoError(s.store.Register(ctx, s.request(fmt.Sprintf("req-%d", i))))
	}
	s.Equal(3, s.store.Len())

	// A fourth registration evicts the oldest entry.
	s.Require().NoError(s.store.Register(ctx, s.request("req-4")))
	s.Equal(3, s.store.Len())

	_, err := s.store.Get(ctx, "req-1")
	s.ErrorIs(err, intake.ErrUnknownRequest)

	for _, id := range []string{"req-2", "req-3", "req-4"} {
		_, err := s.store.Get(ctx, id)
		s.NoError(err, "request %s should survive eviction", id)
	}
}

func (s *InMemoryStoreSuite) TestMarkFulfilled() {
	ctx := context.Background()

	s.Run("marks and persists the flag", func() {
		s.Require().NoError(s.store.Register(ctx, s.request("req-1")))
		s.Require().NoError(s.store.MarkFulfilled(ctx, "req-1"))

		req, err := s.store.Get(ctx, "req-1")
		s.NoError(err)
		s.True(req.Fulfilled)
	})

	s.Run("second mark fails as already fulfilled", func() {
		err := s.store.MarkFulfilled(ctx, "req-1")
		s.ErrorIs(err, intake.ErrRequestFulfilled)
	})

	s.Run("unknown id fails", func() {
		s.ErrorIs(s.store.MarkFulfilled(ctx, "missing"), intake.ErrUnknownRequest)
	})
}

func (s *InMemoryStoreSuite) TestRemove() {
	ctx := context.Background()

	s.Require().NoError(s.store.Register(ctx, s.request("req-1")))
	s.Require().NoError(s.store.Remove(ctx, "req-1"))

	_, err := s.store.Get(ctx, "req-1")
	s.ErrorIs(err, intake.ErrUnknownRequest)
	s.Zero(s.store.Len())

	s.Run("removing unknown id is a no-op", func() {
		s.NoError(s.store.Remove(ctx, "missing"))
	})

	s.Run("removed slot frees capacity", func() {
		for i := 0; i < 3; i++ {
			s.Require().NoError(s.store.Register(ctx, s.request(fmt.Sprintf("fill-%d", i))))
		}
		s.Require().NoError(s.store.Remove(ctx, "fill-0"))
		s.Require().NoError(s.store.Register(ctx, s.request("fill-3")))

		// fill-1 was not evicted because capacity never overflowed.
		_, err := s.store.Get(ctx, "fill-1")
		s.NoError(err)
	})
}
