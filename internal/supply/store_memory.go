package supply

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	id "mintguard/pkg/domain"
)

// InMemoryLedger is a mutex-guarded token ledger for single-node deployments
// and tests. Balances and total supply are big.Int so 18-decimal amounts
// never overflow.
type InMemoryLedger struct {
	mu       sync.RWMutex
	total    *big.Int
	balances map[id.Address]*big.Int
}

// NewInMemoryLedger creates an empty ledger.
func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{
		total:    new(big.Int),
		balances: make(map[id.Address]*big.Int),
	}
}

func (l *InMemoryLedger) IncreaseSupply(ctx context.Context, recipient id.Address, amount, maxTotal *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("mint amount must be positive")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if maxTotal != nil {
		projected := new(big.Int).Add(l.total, amount)
		if projected.Cmp(maxTotal) > 0 {
			return &CapacityError{Required: projected, Available: new(big.Int).Set(maxTotal)}
		}
	}

	balance, ok := l.balances[recipient]
	if !ok {
		balance = new(big.Int)
		l.balances[recipient] = balance
	}
	balance.Add(balance, amount)
	l.total.Add(l.total, amount)
	return nil
}

func (l *InMemoryLedger) DecreaseSupply(ctx context.Context, account id.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("burn amount must be positive")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	balance := l.balances[account]
	if balance == nil || balance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: account %s", ErrInsufficientBalance, account)
	}
	balance.Sub(balance, amount)
	l.total.Sub(l.total, amount)
	return nil
}

func (l *InMemoryLedger) CurrentSupply(ctx context.Context) (*big.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(big.Int).Set(l.total), nil
}

func (l *InMemoryLedger) BalanceOf(ctx context.Context, account id.Address) (*big.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if balance := l.balances[account]; balance != nil {
		return new(big.Int).Set(balance), nil
	}
	return new(big.Int), nil
}
