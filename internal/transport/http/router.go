// Package httptransport is the thin HTTP layer over the issuance engine. It
// delegates to domain services without embedding business logic so transport
// concerns remain isolated.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mintguard/internal/events"
	id "mintguard/pkg/domain"
	"mintguard/pkg/platform/middleware/auth"
	"mintguard/pkg/requestcontext"
)

// Handler wires engine endpoints to their services.
type Handler struct {
	issuance     IssuanceService
	attestations AttestationService
	events       events.Store
	logger       *slog.Logger
}

// NewHandler constructs the HTTP handler with its dependencies.
func NewHandler(issuanceSvc IssuanceService, attestations AttestationService, eventStore events.Store, logger *slog.Logger) *Handler {
	return &Handler{
		issuance:     issuanceSvc,
		attestations: attestations,
		events:       eventStore,
		logger:       logger,
	}
}

// NewRouter wires all endpoints. Supply-changing and administrative routes
// sit behind the capability middleware; the status surface is public.
func NewRouter(h *Handler, validator *auth.Validator) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(requestIDMiddleware)

	// Public read surface.
	r.Get("/healthz", h.HandleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/v1/reserve/status", h.HandleStatus)
	r.Get("/v1/events", h.HandleListEvents)

	// Authenticated operations.
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(validator, h.logger))

		r.With(auth.RequireCapability(id.CapabilityMint)).Post("/v1/mint", h.HandleMint)
		// Burn capability for third-party burns is enforced by the gate;
		// self-burns only need authentication.
		r.Post("/v1/burn", h.HandleBurn)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireCapability(id.CapabilityAdmin))

			r.Post("/v1/attestations/refresh", h.HandleRefreshAttestation)
			r.Put("/v1/admin/ttl", h.HandleSetTTL)
			r.Put("/v1/admin/limit", h.HandleSetLimit)
			r.Put("/v1/admin/allowlist/enabled", h.HandleSetAllowlistEnabled)
			r.Put("/v1/admin/allowlist/{recipient}", h.HandleAllowlistAdd)
			r.Delete("/v1/admin/allowlist/{recipient}", h.HandleAllowlistRemove)
			r.Post("/v1/admin/pause", h.HandlePause)
			r.Post("/v1/admin/unpause", h.HandleUnpause)
		})
	})

	return r
}

// requestIDMiddleware propagates (or assigns) a correlation id for logging.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
