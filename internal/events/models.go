// Package events defines the result records emitted on engine state changes.
// Records are consumed by external observers and never re-read by the engine.
package events

import "time"

// Type identifies the kind of result record.
type Type string

const (
	TypeAttestationRecorded Type = "attestation_recorded"
	TypeMintAuthorized      Type = "mint_authorized"
	TypeBurnAuthorized      Type = "burn_authorized"
)

// Event is a flat record of a single accepted state change. Amount fields are
// decimal strings in 18-decimal token units; USDValue is the 8-decimal
// fixed-point reserve figure.
type Event struct {
	ID        string
	Type      Type
	Timestamp time.Time

	// Attestation fields.
	USDValue  uint64
	Nonce     uint64
	RequestID string

	// Mint/burn fields.
	Recipient        string
	Account          string
	Operator         string
	Amount           string
	TotalSupplyAfter string
	ReserveValueUsed uint64
}
