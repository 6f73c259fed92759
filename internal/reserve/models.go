package reserve

import (
	"errors"
	"time"
)

// USD attestation values use 8 fractional decimal digits; token amounts use
// 18. ScaleFactor converts between the two precisions.
const (
	USDDecimals   = 8
	TokenDecimals = 18
)

// Attestation is a reported reserve value accepted by the ledger. It is
// immutable once stored; a newer attestation replaces, never mutates, the
// prior one.
type Attestation struct {
	// USDValue is the attested reserve in USD, fixed-point with 8
	// fractional digits (value x 10^8).
	USDValue uint64

	// Nonce is strictly increasing across accepted attestations and guards
	// against replayed or reordered deliveries.
	Nonce uint64

	// ObservedAt is assigned by the engine at acceptance time, not by the
	// attester, so a stale-but-accepted attestation cannot appear fresh.
	ObservedAt time.Time

	// RequestID correlates the attestation with the oracle request that
	// produced it. Audit only; not used in invariant logic.
	RequestID string
}

var (
	// ErrNonceNotMonotonic rejects an attestation whose nonce does not
	// strictly exceed the currently held one. The prior attestation is
	// retained unchanged.
	ErrNonceNotMonotonic = errors.New("attestation nonce is not strictly increasing")

	// ErrInvalidConfiguration rejects admin settings that would disable the
	// freshness check, such as a zero TTL.
	ErrInvalidConfiguration = errors.New("invalid reserve configuration")
)
