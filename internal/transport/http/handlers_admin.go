package httptransport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mintguard/pkg/platform/httputil"
)

// HandleSetTTL handles PUT /v1/admin/ttl.
func (h *Handler) HandleSetTTL(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[SetTTLRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := h.issuance.SetTTL(r.Context(), time.Duration(req.TTLSeconds)*time.Second); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSetLimit handles PUT /v1/admin/limit.
func (h *Handler) HandleSetLimit(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[SetLimitRequest](w, r, h.logger)
	if !ok {
		return
	}
	limit, err := parseAmount(req.Limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.issuance.SetOperationLimit(r.Context(), limit); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSetAllowlistEnabled handles PUT /v1/admin/allowlist/enabled.
func (h *Handler) HandleSetAllowlistEnabled(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[SetAllowlistEnabledRequest](w, r, h.logger)
	if !ok {
		return
	}
	h.issuance.SetAllowlistEnabled(r.Context(), req.Enabled)
	w.WriteHeader(http.StatusNoContent)
}

// HandleAllowlistAdd handles PUT /v1/admin/allowlist/{recipient}.
func (h *Handler) HandleAllowlistAdd(w http.ResponseWriter, r *http.Request) {
	h.setAllowlistMembership(w, r, true)
}

// HandleAllowlistRemove handles DELETE /v1/admin/allowlist/{recipient}.
func (h *Handler) HandleAllowlistRemove(w http.ResponseWriter, r *http.Request) {
	h.setAllowlistMembership(w, r, false)
}

func (h *Handler) setAllowlistMembership(w http.ResponseWriter, r *http.Request, allowed bool) {
	recipient, err := parseAccount(chi.URLParam(r, "recipient"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.issuance.SetAllowlistMembership(r.Context(), recipient, allowed); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandlePause handles POST /v1/admin/pause.
func (h *Handler) HandlePause(w http.ResponseWriter, r *http.Request) {
	h.issuance.SetPaused(r.Context(), true)
	w.WriteHeader(http.StatusNoContent)
}

// HandleUnpause handles POST /v1/admin/unpause.
func (h *Handler) HandleUnpause(w http.ResponseWriter, r *http.Request) {
	h.issuance.SetPaused(r.Context(), false)
	w.WriteHeader(http.StatusNoContent)
}

// HandleRefreshAttestation handles POST /v1/attestations/refresh.
func (h *Handler) HandleRefreshAttestation(w http.ResponseWriter, r *http.Request) {
	requestID, err := h.attestations.Submit(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, RefreshResponse{RequestID: requestID})
}
