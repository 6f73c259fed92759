package httptransport

import (
	"net/http"
	"strconv"

	"mintguard/pkg/platform/httputil"
)

// HandleStatus handles GET /v1/reserve/status.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.issuance.Status(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromStatus(status))
}

// HandleListEvents handles GET /v1/events. Records are returned newest first.
func (h *Handler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := h.events.List(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	out := make([]EventResponse, 0, len(records))
	for _, record := range records {
		out = append(out, FromEvent(record))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// HandleHealthz handles GET /healthz.
func (h *Handler) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
