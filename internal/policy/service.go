// Package policy encapsulates the admin-tunable restrictions layered on top
// of the reserve invariant: the per-operation cap and the recipient
// allowlist. Policy checks are independent of reserve math.
package policy

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	id "mintguard/pkg/domain"
)

// AllowlistStore persists allowlist membership. Checks hit the store only
// while the allowlist is enabled.
type AllowlistStore interface {
	Add(ctx context.Context, recipient id.Address) error
	Remove(ctx context.Context, recipient id.Address) error
	Contains(ctx context.Context, recipient id.Address) (bool, error)
	List(ctx context.Context) ([]id.Address, error)
}

// Service holds the issuance policy. Limit and toggle are plain in-process
// state; membership goes through the store so deployments can share it.
type Service struct {
	mu                sync.RWMutex
	perOperationLimit *big.Int
	allowlistEnabled  bool

	allowlist AllowlistStore
}

// New constructs a policy service with no operation limit and the allowlist
// disabled.
func New(allowlist AllowlistStore) (*Service, error) {
	if allowlist == nil {
		return nil, fmt.Errorf("allowlist store is required")
	}
	return &Service{
		perOperationLimit: new(big.Int),
		allowlist:         allowlist,
	}, nil
}

// CheckOperationLimit passes trivially when no limit is configured, and fails
// with ErrLimitExceeded when amount is above the cap.
func (s *Service) CheckOperationLimit(amount *big.Int) error {
	s.mu.RLock()
	limit := s.perOperationLimit
	s.mu.RUnlock()

	if limit.Sign() == 0 {
		return nil
	}
	if amount.Cmp(limit) > 0 {
		return fmt.Errorf("%w: amount %s, limit %s", ErrLimitExceeded, amount, limit)
	}
	return nil
}

// CheckAllowlist passes trivially when the allowlist is disabled, and fails
// with ErrRecipientNotAllowed when the recipient is not a member.
func (s *Service) CheckAllowlist(ctx context.Context, recipient id.Address) error {
	s.mu.RLock()
	enabled := s.allowlistEnabled
	s.mu.RUnlock()

	if !enabled {
		return nil
	}
	member, err := s.allowlist.Contains(ctx, recipient)
	if err != nil {
		return fmt.Errorf("check allowlist membership: %w", err)
	}
	if !member {
		return fmt.Errorf("%w: %s", ErrRecipientNotAllowed, recipient)
	}
	return nil
}

// SetOperationLimit updates the per-operation cap. Zero disables the limit;
// negative values are rejected.
func (s *Service) SetOperationLimit(limit *big.Int) error {
	if limit == nil || limit.Sign() < 0 {
		return fmt.Errorf("operation limit must be non-negative")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.perOperationLimit = new(big.Int).Set(limit)
	return nil
}

// SetAllowlistEnabled toggles allowlist enforcement.
func (s *Service) SetAllowlistEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allowlistEnabled = enabled
}

// SetAllowlistMembership adds or removes a recipient.
func (s *Service) SetAllowlistMembership(ctx context.Context, recipient id.Address, allowed bool) error {
	if recipient.IsNil() {
		return fmt.Errorf("recipient is required")
	}
	if allowed {
		return s.allowlist.Add(ctx, recipient)
	}
	return s.allowlist.Remove(ctx, recipient)
}

// Snapshot returns the current policy state for the status surface.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	s.mu.RLock()
	snap := Snapshot{
		PerOperationLimit: new(big.Int).Set(s.perOperationLimit),
		AllowlistEnabled:  s.allowlistEnabled,
	}
	s.mu.RUnlock()

	members, err := s.allowlist.List(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list allowlist: %w", err)
	}
	snap.Allowlist = members
	return snap, nil
}
