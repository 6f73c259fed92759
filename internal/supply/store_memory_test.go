package supply

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/suite"

	id "mintguard/pkg/domain"
)

// =============================================================================
// In-Memory Supply Ledger Test Suite
// =============================================================================

type InMemoryLedgerSuite struct {
	suite.Suite
	ledger *InMemoryLedger
}

func TestInMemoryLedgerSuite(t *testing.T) {
	suite.Run(t, new(InMemoryLedgerSuite))
}

func (s *InMemoryLedgerSuite) SetupTest() {
	s.ledger = NewInMemoryLedger()
}

func (s *InMemoryLedgerSuite) TestIncreaseSupply() {
	ctx := context.Background()
	alice := id.Address("0xaaa1")

	s.Run("nil amount rejected", func() {
		s.Error(s.ledger.IncreaseSupply(ctx, alice, nil, nil))
	})

	s.Run("zero amount rejected", func() {
		s.Error(s.ledger.IncreaseSupply(ctx, alice, new(big.Int), nil))
	})

	s.Run("mint credits balance and total", func() {
		s.Require().NoError(s.ledger.IncreaseSupply(ctx, alice, big.NewInt(100), nil))
		s.Require().NoError(s.ledger.IncreaseSupply(ctx, alice, big.NewInt(25), nil))

		balance, err := s.ledger.BalanceOf(ctx, alice)
		s.NoError(err)
		s.Zero(balance.Cmp(big.NewInt(125)))

		total, err := s.ledger.CurrentSupply(ctx)
		s.NoError(err)
		s.Zero(total.Cmp(big.NewInt(125)))
	})

	s.Run("caller mutation of amount has no effect", func() {
		bob := id.Address("0xbbb2")
		amount := big.NewInt(10)
		s.Require().NoError(s.ledger.IncreaseSupply(ctx, bob, amount, nil))
		amount.SetInt64(999)

		balance, err := s.ledger.BalanceOf(ctx, bob)
		s.NoError(err)
		s.Zero(balance.Cmp(big.NewInt(10)))
	})
}

func (s *InMemoryLedgerSuite) TestSupplyCeiling() {
	ctx := context.Background()
	alice := id.Address("0xaaa1")

	s.Run("mint up to the ceiling passes", func() {
		s.Require().NoError(s.ledger.IncreaseSupply(ctx, alice, big.NewInt(100), big.NewInt(100)))
	})

	s.Run("mint past the ceiling fails and leaves state unchanged", func() {
		err := s.ledger.IncreaseSupply(ctx, alice, big.NewInt(1), big.NewInt(100))

		var capErr *CapacityError
		s.Require().ErrorAs(err, &capErr)
		s.Zero(capErr.Required.Cmp(big.NewInt(101)))
		s.Zero(capErr.Available.Cmp(big.NewInt(100)))

		total, readErr := s.ledger.CurrentSupply(ctx)
		s.NoError(readErr)
		s.Zero(total.Cmp(big.NewInt(100)))

		balance, readErr := s.ledger.BalanceOf(ctx, alice)
		s.NoError(readErr)
		s.Zero(balance.Cmp(big.NewInt(100)))
	})

	s.Run("nil ceiling applies unconditionally", func() {
		s.Require().NoError(s.ledger.IncreaseSupply(ctx, alice, big.NewInt(1), nil))
	})
}

func (s *InMemoryLedgerSuite) TestDecreaseSupply() {
	ctx := context.Background()
	alice := id.Address("0xaaa1")

	s.Run("burn from unknown account fails", func() {
		err := s.ledger.DecreaseSupply(ctx, alice, big.NewInt(1))
		s.ErrorIs(err, ErrInsufficientBalance)
	})

	s.Run("burn above balance fails and leaves state unchanged", func() {
		s.Require().NoError(s.ledger.IncreaseSupply(ctx, alice, big.NewInt(50), nil))

		err := s.ledger.DecreaseSupply(ctx, alice, big.NewInt(51))
		s.ErrorIs(err, ErrInsufficientBalance)

		balance, err := s.ledger.BalanceOf(ctx, alice)
		s.NoError(err)
		s.Zero(balance.Cmp(big.NewInt(50)))
	})

	s.Run("burn of entire balance drains the account", func() {
		bob := id.Address("0xbbb2")
		s.Require().NoError(s.ledger.IncreaseSupply(ctx, bob, big.NewInt(30), nil))
		s.Require().NoError(s.ledger.DecreaseSupply(ctx, bob, big.NewInt(30)))

		balance, err := s.ledger.BalanceOf(ctx, bob)
		s.NoError(err)
		s.Zero(balance.Sign())
	})

	s.Run("zero amount rejected", func() {
		s.Error(s.ledger.DecreaseSupply(ctx, alice, new(big.Int)))
	})
}

func (s *InMemoryLedgerSuite) TestReads() {
	ctx := context.Background()

	s.Run("empty ledger reads as zero", func() {
		total, err := s.ledger.CurrentSupply(ctx)
		s.NoError(err)
		s.Zero(total.Sign())

		balance, err := s.ledger.BalanceOf(ctx, id.Address("0xnobody"))
		s.NoError(err)
		s.Zero(balance.Sign())
	})

	s.Run("returned values are copies", func() {
		alice := id.Address("0xaaa1")
		s.Require().NoError(s.ledger.IncreaseSupply(ctx, alice, big.NewInt(7), nil))

		total, err := s.ledger.CurrentSupply(ctx)
		s.Require().NoError(err)
		total.SetInt64(0)

		again, err := s.ledger.CurrentSupply(ctx)
		s.NoError(err)
		s.Zero(again.Cmp(big.NewInt(7)))
	})
}
