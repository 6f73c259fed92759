package issuance

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrInvalidAmount rejects non-positive operation amounts.
	ErrInvalidAmount = errors.New("amount must be a positive integer")

	// ErrInvalidRecipient rejects empty or zero account identifiers.
	ErrInvalidRecipient = errors.New("recipient is not a valid account")

	// ErrSystemPaused rejects supply-changing operations while the engine is
	// halted. Callers must wait for an administrative unpause.
	ErrSystemPaused = errors.New("system is paused")

	// ErrBurnNotPermitted rejects a third-party burn from an operator
	// without the burn capability.
	ErrBurnNotPermitted = errors.New("operator lacks burn capability for third-party burn")
)

// ReserveStaleError reports a freshness violation. The caller's remedy is to
// trigger a new attestation cycle.
type ReserveStaleError struct {
	// AgeSeconds is the current attestation age; reserve.AgeUnknown when no
	// attestation has ever been recorded.
	AgeSeconds int64
	// MaxAgeSeconds is the configured freshness window.
	MaxAgeSeconds int64
}

func (e *ReserveStaleError) Error() string {
	return fmt.Sprintf("reserve attestation is stale: age %ds, max %ds", e.AgeSeconds, e.MaxAgeSeconds)
}

// ReserveInsufficientError reports a capacity violation: the projected supply
// would exceed the attested backing.
type ReserveInsufficientError struct {
	// Required is the projected total supply after the operation.
	Required *big.Int
	// Available is the scaled capacity of the current attestation.
	Available *big.Int
}

func (e *ReserveInsufficientError) Error() string {
	return fmt.Sprintf("reserve backing insufficient: required %s, available %s", e.Required, e.Available)
}
