package issuance

import (
	"math/big"

	"mintguard/internal/reserve"
	id "mintguard/pkg/domain"
)

// The gate is a pure decision layer: every function here evaluates a
// snapshot of engine state and returns the first violated check as a typed
// error. No I/O, no side effects, so each rule is independently testable.
//
// Mint rule order (fail-fast):
//  1. Amount and recipient validation - fail cheaply before business checks
//  2. Pause - operational halt overrides everything else
//  3. Freshness - a stale reserve number is categorically untrustworthy, so
//     it is checked before capacity; reporting "insufficient" against stale
//     data would be misleading
//  4. Capacity - projected supply must stay within scaled backing
//  5. Per-operation limit, then allowlist - policy layers on top

// checkAmount enforces that the operation amount is a positive integer.
func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// checkAccount enforces that the account identifier is usable.
func checkAccount(account id.Address) error {
	if account.IsNil() {
		return ErrInvalidRecipient
	}
	return nil
}

// checkPause enforces the operational halt.
func checkPause(paused bool) error {
	if paused {
		return ErrSystemPaused
	}
	return nil
}

// checkFreshness enforces the attestation age window against the snapshot.
func checkFreshness(snap reserve.Snapshot, ageSeconds int64) error {
	maxAge := int64(snap.TTL.Seconds())
	if !snap.HasAttestation || ageSeconds > maxAge {
		return &ReserveStaleError{AgeSeconds: ageSeconds, MaxAgeSeconds: maxAge}
	}
	return nil
}

// checkCapacity enforces the 1:1 backing invariant. It returns the projected
// total supply for the authorization record when the check passes.
func checkCapacity(totalIssued, amount, capacity *big.Int) (*big.Int, error) {
	projected := new(big.Int).Add(totalIssued, amount)
	if projected.Cmp(capacity) > 0 {
		return nil, &ReserveInsufficientError{
			Required:  projected,
			Available: new(big.Int).Set(capacity),
		}
	}
	return projected, nil
}

// checkBurnPermission enforces that third-party burns carry the burn
// capability. Self-burns need no capability: an account may always reduce
// its own balance.
func checkBurnPermission(isSelf bool, caps id.CapabilitySet) error {
	if isSelf {
		return nil
	}
	if !caps.Has(id.CapabilityBurn) {
		return ErrBurnNotPermitted
	}
	return nil
}
