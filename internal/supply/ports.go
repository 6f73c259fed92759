// Package supply defines the boundary with the fungible-token ledger. The
// engine never mutates balances directly; it reads total supply for the
// capacity check and instructs the ledger only after a gate authorizes.
package supply

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	id "mintguard/pkg/domain"
)

// ErrInsufficientBalance rejects a burn larger than the account's balance.
var ErrInsufficientBalance = errors.New("burn amount exceeds account balance")

// CapacityError rejects a mint apply that would push total supply past the
// ceiling the gate authorized against. Required is the projected total,
// Available the ceiling at apply time.
type CapacityError struct {
	Required  *big.Int
	Available *big.Int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("supply ceiling exceeded: required %s, available %s", e.Required, e.Available)
}

// Ledger is the fungible-token ledger collaborator.
type Ledger interface {
	// IncreaseSupply credits recipient and grows total supply. The ledger
	// re-checks maxTotal against its own view of total supply at apply
	// time and fails with CapacityError when the credit would exceed it,
	// so a ledger shared between engine replicas cannot jointly over-issue.
	// A nil maxTotal applies unconditionally.
	IncreaseSupply(ctx context.Context, recipient id.Address, amount, maxTotal *big.Int) error

	// DecreaseSupply debits account and shrinks total supply. Fails with
	// ErrInsufficientBalance when the account cannot cover the amount.
	DecreaseSupply(ctx context.Context, account id.Address, amount *big.Int) error

	// CurrentSupply returns the total issued units in 18-decimal precision.
	CurrentSupply(ctx context.Context) (*big.Int, error)

	// BalanceOf returns the account balance in 18-decimal precision.
	BalanceOf(ctx context.Context, account id.Address) (*big.Int, error)
}
