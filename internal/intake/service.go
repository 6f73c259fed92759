// Package intake is the boundary between the external, possibly adversarial
// oracle transport and the trusted reserve ledger. It validates deliveries,
// enforces request correlation, and forwards accepted values for recording.
package intake

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mintguard/pkg/requestcontext"
)

// PendingStore tracks submitted-but-unresolved oracle requests. The set is
// bounded; implementations evict the oldest entries rather than grow without
// limit.
type PendingStore interface {
	Register(ctx context.Context, req PendingRequest) error
	Get(ctx context.Context, requestID string) (PendingRequest, error)
	MarkFulfilled(ctx context.Context, requestID string) error
	Remove(ctx context.Context, requestID string) error
}

// ReserveRecorder applies an accepted attestation. Implemented by the
// issuance coordinator so recording happens under the engine lock.
type ReserveRecorder interface {
	RecordAttestation(ctx context.Context, usdValue, nonce uint64, requestID string) error
}

// Transport submits attestation requests to the oracle pipe. Fire-and-forget:
// the response, if any, arrives later through Ingest.
type Transport interface {
	SubmitRequest(ctx context.Context, requestID, query string) error
}

// Service validates and applies incoming reserve attestations.
type Service struct {
	pending  PendingStore
	recorder ReserveRecorder

	transport Transport
	query     string

	logger *slog.Logger
}

// Option configures optional service dependencies.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithTransport wires the outbound oracle pipe. Without it, Submit fails and
// deliveries must be injected directly (tests, replay tooling).
func WithTransport(transport Transport, query string) Option {
	return func(s *Service) {
		s.transport = transport
		s.query = query
	}
}

// New constructs the intake service.
func New(pending PendingStore, recorder ReserveRecorder, opts ...Option) (*Service, error) {
	if pending == nil {
		return nil, fmt.Errorf("pending store is required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("reserve recorder is required")
	}

	svc := &Service{
		pending:  pending,
		recorder: recorder,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Submit issues a new oracle request and registers it as pending. Returns the
// correlation request id.
func (s *Service) Submit(ctx context.Context) (string, error) {
	if s.transport == nil {
		return "", fmt.Errorf("no oracle transport configured")
	}

	requestID := uuid.NewString()
	req := PendingRequest{
		ID:          requestID,
		Query:       s.query,
		SubmittedAt: requestcontext.Now(ctx),
	}
	if err := s.pending.Register(ctx, req); err != nil {
		return "", fmt.Errorf("register pending request: %w", err)
	}

	if err := s.transport.SubmitRequest(ctx, requestID, s.query); err != nil {
		// Submission never made it onto the pipe; drop the registration so
		// the id cannot linger as forever-pending.
		if removeErr := s.pending.Remove(ctx, requestID); removeErr != nil {
			s.logger.WarnContext(ctx, "remove failed pending request", "request_id", requestID, "error", removeErr)
		}
		return "", fmt.Errorf("submit oracle request: %w", err)
	}

	s.logger.InfoContext(ctx, "oracle request submitted", "request_id", requestID)
	return requestID, nil
}

// Ingest validates a delivery and applies it to the reserve ledger. Each
// check short-circuits with a distinct error kind; on any failure the ledger
// and the pending entry are left unchanged, so a corrected re-delivery for
// the same request id can still succeed.
func (s *Service) Ingest(ctx context.Context, requestID string, payload []byte, transportErr error) error {
	req, err := s.pending.Get(ctx, requestID)
	if err != nil {
		return err
	}
	if req.Fulfilled {
		return fmt.Errorf("%w: %s", ErrRequestFulfilled, requestID)
	}

	if transportErr != nil {
		s.logger.WarnContext(ctx, "oracle delivery failed",
			"request_id", requestID,
			"error", transportErr,
		)
		return fmt.Errorf("%w: %v", ErrTransportFailure, transportErr)
	}

	usdValue, nonce, err := decodeResponse(payload)
	if err != nil {
		s.logger.WarnContext(ctx, "oracle payload rejected", "request_id", requestID, "error", err)
		return err
	}

	if err := s.recorder.RecordAttestation(ctx, usdValue, nonce, requestID); err != nil {
		return err
	}

	if err := s.pending.MarkFulfilled(ctx, requestID); err != nil {
		// The attestation is already recorded; a bookkeeping failure here
		// must not report the delivery as rejected.
		s.logger.ErrorContext(ctx, "mark request fulfilled failed", "request_id", requestID, "error", err)
	}

	s.logger.InfoContext(ctx, "attestation ingested",
		"request_id", requestID,
		"usd_value", usdValue,
		"nonce", nonce,
		"request_age", time.Since(req.SubmittedAt),
	)
	return nil
}
