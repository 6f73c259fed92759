// Package reserve holds the single source of truth for how much backing
// currently exists and how trustworthy (fresh) that number is.
package reserve

import (
	"fmt"
	"math"
	"math/big"
	"sync"
	"time"
)

// AgeUnknown is returned by AgeSeconds before any attestation has been
// recorded. It compares greater than every configurable TTL.
const AgeUnknown = int64(math.MaxInt64)

// scaleFactor converts an 8-decimal USD value to 18-decimal token units.
var scaleFactor = new(big.Int).Exp(big.NewInt(10), big.NewInt(TokenDecimals-USDDecimals), nil)

// Ledger tracks the latest accepted attestation and its freshness window.
//
// Freshness is a function of wall-clock time, not of nonce: a legitimate
// attester may be slow without being wrong, so "how recent" is decoupled from
// "how many updates have occurred".
//
// The ledger guards its own state so read-only queries can run concurrently
// with the status surface; mutating calls are additionally serialized by the
// issuance coordinator so check-then-act sequences stay atomic.
type Ledger struct {
	mu      sync.RWMutex
	current *Attestation
	ttl     time.Duration
}

// NewLedger creates a ledger with the given freshness window.
func NewLedger(ttl time.Duration) (*Ledger, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("%w: ttl must be positive", ErrInvalidConfiguration)
	}
	return &Ledger{ttl: ttl}, nil
}

// RecordAttestation replaces the current attestation. It is the only mutator
// of the held value and rejects any nonce that does not strictly exceed the
// current one.
func (l *Ledger) RecordAttestation(usdValue, nonce uint64, now time.Time, requestID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current != nil && nonce <= l.current.Nonce {
		return fmt.Errorf("%w: nonce %d, current %d", ErrNonceNotMonotonic, nonce, l.current.Nonce)
	}

	l.current = &Attestation{
		USDValue:   usdValue,
		Nonce:      nonce,
		ObservedAt: now,
		RequestID:  requestID,
	}
	return nil
}

// AgeSeconds returns the age of the current attestation in whole seconds, or
// AgeUnknown when none has ever been recorded. A stored timestamp later than
// now clamps to zero rather than going negative.
func (l *Ledger) AgeSeconds(now time.Time) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ageSecondsLocked(now)
}

func (l *Ledger) ageSecondsLocked(now time.Time) int64 {
	if l.current == nil {
		return AgeUnknown
	}
	age := int64(now.Sub(l.current.ObservedAt) / time.Second)
	if age < 0 {
		return 0
	}
	return age
}

// IsFresh reports whether an attestation exists and its age is within the
// freshness window. The boundary is inclusive: age == TTL is still fresh.
func (l *Ledger) IsFresh(now time.Time) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.current == nil {
		return false
	}
	return l.ageSecondsLocked(now) <= int64(l.ttl/time.Second)
}

// ScaledCapacity returns the maximum total supply permitted by the current
// attestation, in 18-decimal token units. Zero when no attestation is held.
// big.Int keeps the scale multiplication exact for any reserve magnitude.
func (l *Ledger) ScaledCapacity() *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.current == nil {
		return new(big.Int)
	}
	usd := new(big.Int).SetUint64(l.current.USDValue)
	return usd.Mul(usd, scaleFactor)
}

// SetTTL updates the freshness window. Zero or negative windows would turn
// the freshness gate off entirely and are rejected.
func (l *Ledger) SetTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("%w: ttl must be positive", ErrInvalidConfiguration)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ttl = ttl
	return nil
}

// TTL returns the current freshness window.
func (l *Ledger) TTL() time.Duration {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ttl
}

// Snapshot is a point-in-time read of the ledger for the status surface.
type Snapshot struct {
	HasAttestation bool
	USDValue       uint64
	Nonce          uint64
	ObservedAt     time.Time
	RequestID      string
	TTL            time.Duration
}

// Snapshot returns a consistent view of the held attestation and window.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snap := Snapshot{TTL: l.ttl}
	if l.current != nil {
		snap.HasAttestation = true
		snap.USDValue = l.current.USDValue
		snap.Nonce = l.current.Nonce
		snap.ObservedAt = l.current.ObservedAt
		snap.RequestID = l.current.RequestID
	}
	return snap
}
