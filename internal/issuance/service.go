// Package issuance implements the decision function for "may this mint
// happen right now" and the coordinator that applies authorized operations
// to the fungible ledger.
package issuance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"sync"
	"time"

	"mintguard/internal/events"
	"mintguard/internal/issuance/metrics"
	"mintguard/internal/policy"
	"mintguard/internal/reserve"
	"mintguard/internal/supply"
	id "mintguard/pkg/domain"
	dErrors "mintguard/pkg/domain-errors"
	"mintguard/pkg/requestcontext"
)

// EventSink receives result records for accepted operations.
type EventSink interface {
	Publish(ctx context.Context, event events.Event)
}

// Service coordinates the reserve ledger, policy store, and supply ledger.
//
// One mutex serializes every mutating operation (mint, burn, attestation
// recording, admin updates) so check-then-act sequences are atomic: no other
// mutation can interleave between a gate decision and its ledger apply. The
// gate itself is stateless; all state lives in the collaborators.
type Service struct {
	mu sync.Mutex

	ledger *reserve.Ledger
	policy *policy.Service
	supply supply.Ledger

	paused bool

	sink    EventSink
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures optional service dependencies.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithEventSink(sink EventSink) Option {
	return func(s *Service) { s.sink = sink }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs the issuance coordinator.
func New(ledger *reserve.Ledger, policySvc *policy.Service, supplyLedger supply.Ledger, opts ...Option) (*Service, error) {
	if ledger == nil {
		return nil, fmt.Errorf("reserve ledger is required")
	}
	if policySvc == nil {
		return nil, fmt.Errorf("policy service is required")
	}
	if supplyLedger == nil {
		return nil, fmt.Errorf("supply ledger is required")
	}

	svc := &Service{
		ledger: ledger,
		policy: policySvc,
		supply: supplyLedger,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Mint authorizes and applies a supply increase. Checks run in a fixed
// order and the first failure returns a typed error with no side effect;
// rejected calls leave all engine state unchanged.
func (s *Service) Mint(ctx context.Context, recipient id.Address, amount *big.Int) (*MintAuthorization, error) {
	start := time.Now()
	now := requestcontext.Now(ctx)
	operator := requestcontext.Operator(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	auth, err := s.mintLocked(ctx, recipient, amount, now)
	s.metrics.ObserveAuthorizeLatency(time.Since(start))
	if err != nil {
		s.metrics.IncrementMintOutcome(outcomeLabel(err))
		s.logger.WarnContext(ctx, "mint rejected",
			"recipient", recipient,
			"amount", bigString(amount),
			"operator", operator,
			"reason", outcomeLabel(err),
		)
		return nil, asCoded(err)
	}

	s.metrics.IncrementMintOutcome("authorized")
	s.refreshGaugesLocked(ctx, now)

	if s.sink != nil {
		s.sink.Publish(ctx, events.Event{
			Type:             events.TypeMintAuthorized,
			Recipient:        recipient.String(),
			Operator:         operator.String(),
			Amount:           auth.Amount.String(),
			TotalSupplyAfter: auth.TotalSupplyAfter.String(),
			ReserveValueUsed: auth.ReserveUsedForCheck,
		})
	}

	s.logger.InfoContext(ctx, "mint authorized",
		"recipient", recipient,
		"amount", auth.Amount,
		"operator", operator,
		"total_supply_after", auth.TotalSupplyAfter,
	)
	return auth, nil
}

func (s *Service) mintLocked(ctx context.Context, recipient id.Address, amount *big.Int, now time.Time) (*MintAuthorization, error) {
	if err := checkAmount(amount); err != nil {
		return nil, err
	}
	if err := checkAccount(recipient); err != nil {
		return nil, err
	}
	if err := checkPause(s.paused); err != nil {
		return nil, err
	}

	snap := s.ledger.Snapshot()
	if err := checkFreshness(snap, s.ledger.AgeSeconds(now)); err != nil {
		return nil, err
	}

	totalIssued, err := s.supply.CurrentSupply(ctx)
	if err != nil {
		return nil, fmt.Errorf("read total supply: %w", err)
	}
	projected, err := checkCapacity(totalIssued, amount, s.ledger.ScaledCapacity())
	if err != nil {
		return nil, err
	}

	if err := s.policy.CheckOperationLimit(amount); err != nil {
		return nil, err
	}
	if err := s.policy.CheckAllowlist(ctx, recipient); err != nil {
		return nil, err
	}

	// The ledger re-checks the ceiling at apply time. Within one process
	// s.mu makes that redundant, but a shared ledger can move between the
	// CurrentSupply read above and the apply when another engine instance
	// mints against it.
	if err := s.supply.IncreaseSupply(ctx, recipient, amount, s.ledger.ScaledCapacity()); err != nil {
		var capErr *supply.CapacityError
		if errors.As(err, &capErr) {
			return nil, &ReserveInsufficientError{Required: capErr.Required, Available: capErr.Available}
		}
		return nil, fmt.Errorf("apply mint: %w", err)
	}

	return &MintAuthorization{
		Recipient:           recipient,
		Amount:              new(big.Int).Set(amount),
		TotalSupplyAfter:    projected,
		ReserveUsedForCheck: snap.USDValue,
	}, nil
}

// Burn authorizes and applies a supply decrease. Burning only reduces backed
// supply, so there is no reserve check; third-party burns require the burn
// capability presented by the caller.
func (s *Service) Burn(ctx context.Context, account id.Address, amount *big.Int) (*BurnAuthorization, error) {
	start := time.Now()
	operator := requestcontext.Operator(ctx)
	caps := requestcontext.Capabilities(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	auth, err := s.burnLocked(ctx, account, amount, operator, caps)
	s.metrics.ObserveAuthorizeLatency(time.Since(start))
	if err != nil {
		s.metrics.IncrementBurnOutcome(outcomeLabel(err))
		s.logger.WarnContext(ctx, "burn rejected",
			"account", account,
			"amount", bigString(amount),
			"operator", operator,
			"reason", outcomeLabel(err),
		)
		return nil, asCoded(err)
	}

	s.metrics.IncrementBurnOutcome("authorized")
	s.refreshGaugesLocked(ctx, requestcontext.Now(ctx))

	if s.sink != nil {
		s.sink.Publish(ctx, events.Event{
			Type:             events.TypeBurnAuthorized,
			Account:          account.String(),
			Operator:         operator.String(),
			Amount:           auth.Amount.String(),
			TotalSupplyAfter: auth.TotalSupplyAfter.String(),
		})
	}

	s.logger.InfoContext(ctx, "burn authorized",
		"account", account,
		"amount", auth.Amount,
		"operator", operator,
		"total_supply_after", auth.TotalSupplyAfter,
	)
	return auth, nil
}

func (s *Service) burnLocked(ctx context.Context, account id.Address, amount *big.Int, operator id.Address, caps id.CapabilitySet) (*BurnAuthorization, error) {
	if err := checkAmount(amount); err != nil {
		return nil, err
	}
	if err := checkAccount(account); err != nil {
		return nil, err
	}
	if err := checkPause(s.paused); err != nil {
		return nil, err
	}
	if err := checkBurnPermission(operator == account, caps); err != nil {
		return nil, err
	}

	if err := s.supply.DecreaseSupply(ctx, account, amount); err != nil {
		return nil, err
	}

	total, err := s.supply.CurrentSupply(ctx)
	if err != nil {
		return nil, fmt.Errorf("read total supply: %w", err)
	}
	return &BurnAuthorization{
		Account:          account,
		Amount:           new(big.Int).Set(amount),
		TotalSupplyAfter: total,
	}, nil
}

// RecordAttestation applies an accepted oracle response to the reserve
// ledger under the engine lock, so a mint in flight can never observe a
// half-applied update. ObservedAt is assigned here, never by the attester.
func (s *Service) RecordAttestation(ctx context.Context, usdValue, nonce uint64, requestID string) error {
	now := requestcontext.Now(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.RecordAttestation(usdValue, nonce, now, requestID); err != nil {
		s.metrics.IncrementAttestationOutcome(outcomeLabel(err))
		return asCoded(err)
	}

	s.metrics.IncrementAttestationOutcome("recorded")
	s.refreshGaugesLocked(ctx, now)

	if s.sink != nil {
		s.sink.Publish(ctx, events.Event{
			Type:      events.TypeAttestationRecorded,
			USDValue:  usdValue,
			Nonce:     nonce,
			RequestID: requestID,
		})
	}

	s.logger.InfoContext(ctx, "attestation recorded",
		"usd_value", usdValue,
		"nonce", nonce,
		"request_id", requestID,
	)
	return nil
}

// SetPaused halts or resumes supply-changing operations.
func (s *Service) SetPaused(ctx context.Context, paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = paused
	s.logger.InfoContext(ctx, "pause state changed", "paused", paused, "operator", requestcontext.Operator(ctx))
}

// SetTTL updates the attestation freshness window.
func (s *Service) SetTTL(ctx context.Context, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.SetTTL(ttl); err != nil {
		return asCoded(err)
	}
	return nil
}

// SetOperationLimit updates the per-operation cap.
func (s *Service) SetOperationLimit(ctx context.Context, limit *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.policy.SetOperationLimit(limit); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid operation limit")
	}
	return nil
}

// SetAllowlistEnabled toggles allowlist enforcement.
func (s *Service) SetAllowlistEnabled(ctx context.Context, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policy.SetAllowlistEnabled(enabled)
}

// SetAllowlistMembership adds or removes an allowlist member.
func (s *Service) SetAllowlistMembership(ctx context.Context, recipient id.Address, allowed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.policy.SetAllowlistMembership(ctx, recipient, allowed); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "update allowlist membership")
	}
	return nil
}

// Status assembles the observable state surface. Reads are consistent per
// collaborator; the surface is informational, not a gate input.
func (s *Service) Status(ctx context.Context) (*Status, error) {
	now := requestcontext.Now(ctx)

	s.mu.Lock()
	paused := s.paused
	s.mu.Unlock()

	snap := s.ledger.Snapshot()
	total, err := s.supply.CurrentSupply(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "read total supply")
	}
	policySnap, err := s.policy.Snapshot(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "read policy state")
	}

	return &Status{
		Paused:            paused,
		HasAttestation:    snap.HasAttestation,
		ReserveUSDValue:   snap.USDValue,
		ReserveNonce:      snap.Nonce,
		ReserveUpdated:    snap.ObservedAt,
		ReserveFresh:      s.ledger.IsFresh(now),
		AgeSeconds:        s.ledger.AgeSeconds(now),
		TTLSeconds:        int64(snap.TTL.Seconds()),
		Capacity:          s.ledger.ScaledCapacity(),
		TotalSupply:       total,
		PerOperationLimit: policySnap.PerOperationLimit,
		AllowlistEnabled:  policySnap.AllowlistEnabled,
		Allowlist:         policySnap.Allowlist,
	}, nil
}

// refreshGaugesLocked updates the reserve and supply gauges after an
// accepted state change. Must be called while holding s.mu.
func (s *Service) refreshGaugesLocked(ctx context.Context, now time.Time) {
	if s.metrics == nil {
		return
	}
	snap := s.ledger.Snapshot()
	s.metrics.SetReserveState(snap.USDValue, s.ledger.IsFresh(now))

	capacity := s.ledger.ScaledCapacity()
	if capacity.Sign() > 0 {
		if total, err := s.supply.CurrentSupply(ctx); err == nil {
			ratio, _ := new(big.Rat).SetFrac(total, capacity).Float64()
			s.metrics.SetSupplyRatio(ratio)
		}
	}
}

// outcomeLabel maps a gate error to a stable metrics label.
func outcomeLabel(err error) string {
	var stale *ReserveStaleError
	var insufficient *ReserveInsufficientError
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrInvalidRecipient):
		return "invalid_recipient"
	case errors.Is(err, ErrSystemPaused):
		return "paused"
	case errors.As(err, &stale):
		return "reserve_stale"
	case errors.As(err, &insufficient):
		return "reserve_insufficient"
	case errors.Is(err, policy.ErrLimitExceeded):
		return "limit_exceeded"
	case errors.Is(err, policy.ErrRecipientNotAllowed):
		return "recipient_not_allowed"
	case errors.Is(err, ErrBurnNotPermitted):
		return "burn_not_permitted"
	case errors.Is(err, supply.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, reserve.ErrNonceNotMonotonic):
		return "nonce_not_monotonic"
	default:
		return "internal_error"
	}
}

// asCoded wraps a gate error into a coded error for the transport layer
// while preserving the typed cause for errors.Is/As callers.
func asCoded(err error) error {
	var stale *ReserveStaleError
	var insufficient *ReserveInsufficientError
	switch {
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidRecipient):
		return dErrors.Wrap(err, dErrors.CodeBadRequest, err.Error())
	case errors.Is(err, ErrSystemPaused):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, err.Error())
	case errors.As(err, &stale):
		return dErrors.Wrap(err, dErrors.CodeUnprocessable, "reserve attestation is stale").WithDetails(map[string]string{
			"age_seconds":     strconv.FormatInt(stale.AgeSeconds, 10),
			"max_age_seconds": strconv.FormatInt(stale.MaxAgeSeconds, 10),
		})
	case errors.As(err, &insufficient):
		return dErrors.Wrap(err, dErrors.CodeUnprocessable, "reserve backing insufficient").WithDetails(map[string]string{
			"required":  insufficient.Required.String(),
			"available": insufficient.Available.String(),
		})
	case errors.Is(err, policy.ErrLimitExceeded):
		return dErrors.Wrap(err, dErrors.CodeUnprocessable, "amount exceeds per-operation limit")
	case errors.Is(err, policy.ErrRecipientNotAllowed):
		return dErrors.Wrap(err, dErrors.CodeForbidden, "recipient is not on the allowlist")
	case errors.Is(err, ErrBurnNotPermitted):
		return dErrors.Wrap(err, dErrors.CodeForbidden, err.Error())
	case errors.Is(err, supply.ErrInsufficientBalance):
		return dErrors.Wrap(err, dErrors.CodeUnprocessable, "burn amount exceeds account balance")
	case errors.Is(err, reserve.ErrNonceNotMonotonic):
		return dErrors.Wrap(err, dErrors.CodeConflict, "attestation nonce is not strictly increasing")
	case errors.Is(err, reserve.ErrInvalidConfiguration):
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid reserve configuration")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "issuance engine failure")
	}
}

func bigString(v *big.Int) string {
	if v == nil {
		return "<nil>"
	}
	return v.String()
}
