package httptransport

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"mintguard/internal/events"
	"mintguard/internal/issuance"
	"mintguard/internal/reserve"
)

// MintResponse reports an authorized mint. Amounts are decimal strings of
// 18-decimal token units; the USD figure is rendered human-readable.
type MintResponse struct {
	Recipient        string `json:"recipient"`
	Amount           string `json:"amount"`
	TotalSupplyAfter string `json:"total_supply_after"`
	ReserveUsedUSD   string `json:"reserve_used_usd"`
}

// BurnResponse reports an authorized burn.
type BurnResponse struct {
	Account          string `json:"account"`
	Amount           string `json:"amount"`
	TotalSupplyAfter string `json:"total_supply_after"`
}

// RefreshResponse reports a submitted oracle request.
type RefreshResponse struct {
	RequestID string `json:"request_id"`
}

// StatusResponse is the read-only observable state surface.
type StatusResponse struct {
	Paused bool `json:"paused"`

	HasAttestation  bool   `json:"has_attestation"`
	ReserveUSD      string `json:"reserve_usd,omitempty"`
	ReserveNonce    uint64 `json:"reserve_nonce"`
	ReserveUpdated  string `json:"reserve_updated,omitempty"`
	ReserveFresh    bool   `json:"reserve_fresh"`
	AgeSeconds      *int64 `json:"age_seconds,omitempty"`
	TTLSeconds      int64  `json:"ttl_seconds"`
	Capacity        string `json:"capacity"`
	TotalSupply     string `json:"total_supply"`
	OperationLimit  string `json:"operation_limit"`
	AllowlistOn     bool   `json:"allowlist_enabled"`
	AllowlistMember []string `json:"allowlist"`
}

// EventResponse is a persisted result record.
type EventResponse struct {
	ID               string `json:"id"`
	Type             string `json:"type"`
	Timestamp        string `json:"timestamp"`
	USDValue         string `json:"usd_value,omitempty"`
	Nonce            uint64 `json:"nonce,omitempty"`
	RequestID        string `json:"request_id,omitempty"`
	Recipient        string `json:"recipient,omitempty"`
	Account          string `json:"account,omitempty"`
	Operator         string `json:"operator,omitempty"`
	Amount           string `json:"amount,omitempty"`
	TotalSupplyAfter string `json:"total_supply_after,omitempty"`
	ReserveValueUsed string `json:"reserve_value_used,omitempty"`
}

// usdString renders an 8-decimal fixed-point USD value as a decimal string.
// Display formatting only; invariant math never leaves scaled integers. The
// value goes through big.Int because uint64 attestations above MaxInt64
// would flip sign in decimal.New.
func usdString(value uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(value), -reserve.USDDecimals).String()
}

// FromMintAuthorization converts an authorization to its response shape.
func FromMintAuthorization(auth *issuance.MintAuthorization) MintResponse {
	return MintResponse{
		Recipient:        auth.Recipient.String(),
		Amount:           auth.Amount.String(),
		TotalSupplyAfter: auth.TotalSupplyAfter.String(),
		ReserveUsedUSD:   usdString(auth.ReserveUsedForCheck),
	}
}

// FromBurnAuthorization converts an authorization to its response shape.
func FromBurnAuthorization(auth *issuance.BurnAuthorization) BurnResponse {
	return BurnResponse{
		Account:          auth.Account.String(),
		Amount:           auth.Amount.String(),
		TotalSupplyAfter: auth.TotalSupplyAfter.String(),
	}
}

// FromStatus converts engine status to its response shape.
func FromStatus(status *issuance.Status) StatusResponse {
	resp := StatusResponse{
		Paused:          status.Paused,
		HasAttestation:  status.HasAttestation,
		ReserveNonce:    status.ReserveNonce,
		ReserveFresh:    status.ReserveFresh,
		TTLSeconds:      status.TTLSeconds,
		Capacity:        status.Capacity.String(),
		TotalSupply:     status.TotalSupply.String(),
		OperationLimit:  status.PerOperationLimit.String(),
		AllowlistOn:     status.AllowlistEnabled,
		AllowlistMember: make([]string, 0, len(status.Allowlist)),
	}
	for _, member := range status.Allowlist {
		resp.AllowlistMember = append(resp.AllowlistMember, member.String())
	}
	if status.HasAttestation {
		resp.ReserveUSD = usdString(status.ReserveUSDValue)
		resp.ReserveUpdated = status.ReserveUpdated.UTC().Format(time.RFC3339)
		if status.AgeSeconds != reserve.AgeUnknown {
			age := status.AgeSeconds
			resp.AgeSeconds = &age
		}
	}
	return resp
}

// FromEvent converts a stored record to its response shape.
func FromEvent(event events.Event) EventResponse {
	resp := EventResponse{
		ID:               event.ID,
		Type:             string(event.Type),
		Timestamp:        event.Timestamp.UTC().Format(time.RFC3339Nano),
		Nonce:            event.Nonce,
		RequestID:        event.RequestID,
		Recipient:        event.Recipient,
		Account:          event.Account,
		Operator:         event.Operator,
		Amount:           event.Amount,
		TotalSupplyAfter: event.TotalSupplyAfter,
	}
	if event.USDValue > 0 {
		resp.USDValue = usdString(event.USDValue)
	}
	if event.ReserveValueUsed > 0 {
		resp.ReserveValueUsed = usdString(event.ReserveValueUsed)
	}
	return resp
}
