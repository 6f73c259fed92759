package httptransport

import (
	"context"
	"math/big"
	"net/http"
	"time"

	"mintguard/internal/issuance"
	id "mintguard/pkg/domain"
	"mintguard/pkg/platform/httputil"
	"mintguard/pkg/requestcontext"
)

// IssuanceService is the engine surface the HTTP layer depends on.
type IssuanceService interface {
	Mint(ctx context.Context, recipient id.Address, amount *big.Int) (*issuance.MintAuthorization, error)
	Burn(ctx context.Context, account id.Address, amount *big.Int) (*issuance.BurnAuthorization, error)
	Status(ctx context.Context) (*issuance.Status, error)
	SetPaused(ctx context.Context, paused bool)
	SetTTL(ctx context.Context, ttl time.Duration) error
	SetOperationLimit(ctx context.Context, limit *big.Int) error
	SetAllowlistEnabled(ctx context.Context, enabled bool)
	SetAllowlistMembership(ctx context.Context, recipient id.Address, allowed bool) error
}

// AttestationService is the intake surface the HTTP layer depends on.
type AttestationService interface {
	Submit(ctx context.Context) (string, error)
}

// HandleMint handles POST /v1/mint.
func (h *Handler) HandleMint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	req, ok := httputil.Decode[MintRequest](w, r, h.logger)
	if !ok {
		return
	}

	recipient, err := parseAccount(req.Recipient)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	auth, err := h.issuance.Mint(ctx, recipient, amount)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "mint request served",
		"request_id", requestcontext.RequestID(ctx),
		"recipient", recipient,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromMintAuthorization(auth))
}

// HandleBurn handles POST /v1/burn.
func (h *Handler) HandleBurn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[BurnRequest](w, r, h.logger)
	if !ok {
		return
	}

	account, err := parseAccount(req.Account)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	auth, err := h.issuance.Burn(ctx, account, amount)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromBurnAuthorization(auth))
}
