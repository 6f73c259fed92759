package policy

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/suite"

	allowlistStore "mintguard/internal/policy/store/allowlist"
	id "mintguard/pkg/domain"
)

// =============================================================================
// Policy Service Test Suite
// =============================================================================

type PolicyServiceSuite struct {
	suite.Suite
	store   *allowlistStore.InMemoryStore
	service *Service
}

func TestPolicyServiceSuite(t *testing.T) {
	suite.Run(t, new(PolicyServiceSuite))
}

func (s *PolicyServiceSuite) SetupTest() {
	s.store = allowlistStore.NewInMemory()

	var err error
	s.service, err = New(s.store)
	s.Require().NoError(err)
}

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *PolicyServiceSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := New(nil)
		s.Error(err)
		s.Contains(err.Error(), "allowlist store is required")
	})

	s.Run("valid store returns service with defaults", func() {
		svc, err := New(s.store)
		s.NoError(err)
		s.NotNil(svc)

		snap, err := svc.Snapshot(context.Background())
		s.NoError(err)
		s.Zero(snap.PerOperationLimit.Sign())
		s.False(snap.AllowlistEnabled)
		s.Empty(snap.Allowlist)
	})
}

// =============================================================================
// Operation Limit Tests
// =============================================================================

func (s *PolicyServiceSuite) TestCheckOperationLimit() {
	s.Run("zero limit means unlimited", func() {
		huge, ok := new(big.Int).SetString("999999999999999999999999999999", 10)
		s.Require().True(ok)
		s.NoError(s.service.CheckOperationLimit(huge))
	})

	s.Run("amount at limit passes", func() {
		s.Require().NoError(s.service.SetOperationLimit(big.NewInt(50)))
		s.NoError(s.service.CheckOperationLimit(big.NewInt(50)))
	})

	s.Run("amount above limit fails", func() {
		s.Require().NoError(s.service.SetOperationLimit(big.NewInt(50)))
		err := s.service.CheckOperationLimit(big.NewInt(51))
		s.ErrorIs(err, ErrLimitExceeded)
	})

	s.Run("resetting limit to zero lifts the cap", func() {
		s.Require().NoError(s.service.SetOperationLimit(big.NewInt(50)))
		s.Require().NoError(s.service.SetOperationLimit(new(big.Int)))
		s.NoError(s.service.CheckOperationLimit(big.NewInt(51)))
	})
}

func (s *PolicyServiceSuite) TestSetOperationLimit() {
	s.Run("nil limit rejected", func() {
		s.Error(s.service.SetOperationLimit(nil))
	})

	s.Run("negative limit rejected", func() {
		s.Error(s.service.SetOperationLimit(big.NewInt(-1)))
	})

	s.Run("caller mutation of the limit has no effect", func() {
		limit := big.NewInt(100)
		s.Require().NoError(s.service.SetOperationLimit(limit))
		limit.SetInt64(1)

		s.NoError(s.service.CheckOperationLimit(big.NewInt(100)))
	})
}

// =============================================================================
// Allowlist Tests
// =============================================================================

func (s *PolicyServiceSuite) TestCheckAllowlist() {
	ctx := context.Background()
	alice := id.Address("0xaaa1")
	bob := id.Address("0xbbb2")

	s.Run("disabled allowlist admits anyone", func() {
		s.NoError(s.service.CheckAllowlist(ctx, alice))
	})

	s.Run("enabled allowlist admits only members", func() {
		s.Require().NoError(s.service.SetAllowlistMembership(ctx, alice, true))
		s.service.SetAllowlistEnabled(true)

		s.NoError(s.service.CheckAllowlist(ctx, alice))
		s.ErrorIs(s.service.CheckAllowlist(ctx, bob), ErrRecipientNotAllowed)
	})

	s.Run("removing membership takes effect on next check", func() {
		s.Require().NoError(s.service.SetAllowlistMembership(ctx, alice, true))
		s.service.SetAllowlistEnabled(true)
		s.Require().NoError(s.service.CheckAllowlist(ctx, alice))

		s.Require().NoError(s.service.SetAllowlistMembership(ctx, alice, false))
		s.ErrorIs(s.service.CheckAllowlist(ctx, alice), ErrRecipientNotAllowed)
	})

	s.Run("disabling enforcement retains membership", func() {
		s.Require().NoError(s.service.SetAllowlistMembership(ctx, alice, true))
		s.service.SetAllowlistEnabled(true)
		s.service.SetAllowlistEnabled(false)

		s.NoError(s.service.CheckAllowlist(ctx, bob))

		snap, err := s.service.Snapshot(ctx)
		s.NoError(err)
		s.Equal([]id.Address{alice}, snap.Allowlist)
	})
}

func (s *PolicyServiceSuite) TestSetAllowlistMembership() {
	ctx := context.Background()

	s.Run("empty recipient rejected", func() {
		err := s.service.SetAllowlistMembership(ctx, id.Address(""), true)
		s.Error(err)
		s.Contains(err.Error(), "recipient is required")
	})

	s.Run("adding twice is idempotent", func() {
		addr := id.Address("0xccc3")
		s.NoError(s.service.SetAllowlistMembership(ctx, addr, true))
		s.NoError(s.service.SetAllowlistMembership(ctx, addr, true))

		snap, err := s.service.Snapshot(ctx)
		s.NoError(err)
		s.Equal([]id.Address{addr}, snap.Allowlist)
	})

	s.Run("removing a non-member is a no-op", func() {
		s.NoError(s.service.SetAllowlistMembership(ctx, id.Address("0xddd4"), false))
	})
}

// =============================================================================
// Snapshot Tests
// =============================================================================

func (s *PolicyServiceSuite) TestSnapshot() {
	ctx := context.Background()

	s.Run("members listed in sorted order", func() {
		s.Require().NoError(s.service.SetAllowlistMembership(ctx, id.Address("0xbbb"), true))
		s.Require().NoError(s.service.SetAllowlistMembership(ctx, id.Address("0xaaa"), true))

		snap, err := s.service.Snapshot(ctx)
		s.NoError(err)
		s.Equal([]id.Address{"0xaaa", "0xbbb"}, snap.Allowlist)
	})

	s.Run("limit in snapshot is a copy", func() {
		s.Require().NoError(s.service.SetOperationLimit(big.NewInt(10)))

		snap, err := s.service.Snapshot(ctx)
		s.NoError(err)
		snap.PerOperationLimit.SetInt64(0)

		s.ErrorIs(s.service.CheckOperationLimit(big.NewInt(11)), ErrLimitExceeded)
	})
}
