package httptransport

import (
	"math/big"

	id "mintguard/pkg/domain"
	dErrors "mintguard/pkg/domain-errors"
)

// MintRequest asks the gate to authorize a supply increase. Amount is a
// decimal string of 18-decimal token units.
type MintRequest struct {
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

// BurnRequest asks the gate to authorize a supply decrease.
type BurnRequest struct {
	Account string `json:"account"`
	Amount  string `json:"amount"`
}

// SetTTLRequest updates the attestation freshness window.
type SetTTLRequest struct {
	TTLSeconds int64 `json:"ttl_seconds"`
}

// SetLimitRequest updates the per-operation cap; "0" disables the limit.
type SetLimitRequest struct {
	Limit string `json:"limit"`
}

// SetAllowlistEnabledRequest toggles allowlist enforcement.
type SetAllowlistEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// parseAmount parses a positive decimal integer string in token units.
// Negative and non-numeric inputs are rejected here; the zero/positive rule
// itself belongs to the gate.
func parseAmount(raw string) (*big.Int, error) {
	if raw == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "amount is required")
	}
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, dErrors.New(dErrors.CodeBadRequest, "amount must be a base-10 integer")
	}
	return amount, nil
}

// parseAccount validates an account identifier.
func parseAccount(raw string) (id.Address, error) {
	return id.ParseAddress(raw)
}
