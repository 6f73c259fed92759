package policy

import (
	"errors"
	"math/big"

	id "mintguard/pkg/domain"
)

var (
	// ErrLimitExceeded rejects an operation larger than the per-operation cap.
	ErrLimitExceeded = errors.New("amount exceeds per-operation limit")

	// ErrRecipientNotAllowed rejects a recipient absent from an enabled allowlist.
	ErrRecipientNotAllowed = errors.New("recipient is not on the allowlist")
)

// Snapshot is a point-in-time read of policy state for the status surface.
type Snapshot struct {
	// PerOperationLimit in 18-decimal token units; zero means no limit.
	PerOperationLimit *big.Int
	AllowlistEnabled  bool
	Allowlist         []id.Address
}
