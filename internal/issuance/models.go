package issuance

import (
	"math/big"
	"time"

	id "mintguard/pkg/domain"
)

// MintAuthorization is the successful outcome of the mint gate. The supply
// increment has been applied by the ledger collaborator when the coordinator
// returns it.
type MintAuthorization struct {
	Recipient        id.Address
	Amount           *big.Int
	TotalSupplyAfter *big.Int
	// ReserveUsedForCheck is the 8-decimal USD value the capacity check ran
	// against, recorded for audit.
	ReserveUsedForCheck uint64
}

// BurnAuthorization is the successful outcome of the burn gate.
type BurnAuthorization struct {
	Account          id.Address
	Amount           *big.Int
	TotalSupplyAfter *big.Int
}

// Status is the read-only observable state surface of the engine.
type Status struct {
	Paused bool

	HasAttestation  bool
	ReserveUSDValue uint64
	ReserveNonce    uint64
	ReserveUpdated  time.Time
	ReserveFresh    bool
	AgeSeconds      int64
	TTLSeconds      int64

	Capacity    *big.Int
	TotalSupply *big.Int

	PerOperationLimit *big.Int
	AllowlistEnabled  bool
	Allowlist         []id.Address
}
