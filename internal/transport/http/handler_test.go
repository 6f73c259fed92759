package httptransport

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"mintguard/internal/events"
	eventsMemory "mintguard/internal/events/store/memory"
	"mintguard/internal/issuance"
	"mintguard/internal/policy"
	allowlistStore "mintguard/internal/policy/store/allowlist"
	"mintguard/internal/reserve"
	"mintguard/internal/supply"
	"mintguard/pkg/platform/middleware/auth"
	"mintguard/pkg/testutil"
)

// =============================================================================
// HTTP Transport Test Suite
// =============================================================================
// These tests exercise the full router: auth middleware, capability checks,
// request decoding, and the error envelope, backed by real services over
// in-memory stores.

// fakeAttestations satisfies AttestationService without an oracle pipe.
type fakeAttestations struct {
	requestID string
	err       error
}

func (f *fakeAttestations) Submit(ctx context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.requestID, nil
}

// directSink appends events synchronously so handler tests can read them
// back through the store without a worker goroutine.
type directSink struct {
	store events.Store
}

func (d *directSink) Publish(ctx context.Context, event events.Event) {
	_ = d.store.Append(ctx, event)
}

type HandlerSuite struct {
	suite.Suite
	service      *issuance.Service
	attestations *fakeAttestations
	eventStore   *eventsMemory.Store
	router       http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ledger, err := reserve.NewLedger(900 * time.Second)
	s.Require().NoError(err)

	policySvc, err := policy.New(allowlistStore.NewInMemory())
	s.Require().NoError(err)

	s.eventStore = eventsMemory.New()
	s.service, err = issuance.New(ledger, policySvc, supply.NewInMemoryLedger(),
		issuance.WithEventSink(&directSink{store: s.eventStore}))
	s.Require().NoError(err)

	s.attestations = &fakeAttestations{requestID: "req-fixed"}

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	handler := NewHandler(s.service, s.attestations, s.eventStore, logger)
	s.router = NewRouter(handler, auth.NewValidator(testutil.SigningKey))
}

// attest seeds the reserve ledger so mints can pass the freshness gate.
func (s *HandlerSuite) attest(usdValue, nonce uint64) {
	s.Require().NoError(s.service.RecordAttestation(context.Background(), usdValue, nonce, "req-seed"))
}

func (s *HandlerSuite) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return testutil.DoRequest(s.router, req)
}

// tokenUnits renders n whole tokens as an 18-decimal base unit string.
func tokenUnits(n int) string {
	return fmt.Sprintf("%d000000000000000000", n)
}

// =============================================================================
// Authentication and Capability Tests
// =============================================================================

func (s *HandlerSuite) TestAuthEnforcement() {
	s.Run("missing token rejected", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/mint",
			MintRequest{Recipient: "0xaaa1", Amount: "1"})
		rr := s.do(req, "")
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("garbage token rejected", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/mint",
			MintRequest{Recipient: "0xaaa1", Amount: "1"})
		rr := s.do(req, "not-a-jwt")
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("mint without mint capability forbidden", func() {
		token := testutil.BearerToken(s.T(), "0xoperator", "BURN")
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/mint",
			MintRequest{Recipient: "0xaaa1", Amount: "1"})
		rr := s.do(req, token)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")
	})

	s.Run("admin routes need admin capability", func() {
		token := testutil.BearerToken(s.T(), "0xoperator", "MINT", "BURN")
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/admin/pause", nil)
		rr := s.do(req, token)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")
	})

	s.Run("status surface is public", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/v1/reserve/status", nil)
		rr := s.do(req, "")
		s.Equal(http.StatusOK, rr.Code)
	})
}

// =============================================================================
// Mint Endpoint Tests
// =============================================================================

func (s *HandlerSuite) TestMintEndpoint() {
	token := testutil.BearerToken(s.T(), "0xminter", "MINT")

	s.Run("no attestation maps to unprocessable", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/mint",
			MintRequest{Recipient: "0xbbb2", Amount: "1"})
		rr := s.do(req, token)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "unprocessable")
	})

	s.Run("authorized mint returns the authorization record", func() {
		s.attest(100_00000000, 1)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/mint",
			MintRequest{Recipient: "0xAAA1", Amount: tokenUnits(5)})
		rr := s.do(req, token)
		s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())

		resp := testutil.UnmarshalResponse[MintResponse](s.T(), rr)
		s.Equal("0xaaa1", resp.Recipient)
		s.Equal(tokenUnits(5), resp.Amount)
		s.Equal(tokenUnits(5), resp.TotalSupplyAfter)
		s.Equal("100", resp.ReserveUsedUSD)
	})

	s.Run("capacity violation maps to unprocessable", func() {
		s.attest(1_00000000, 2)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/mint",
			MintRequest{Recipient: "0xbbb2", Amount: tokenUnits(1000)})
		rr := s.do(req, token)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "unprocessable")
	})

	s.Run("zero address rejected", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/mint",
			MintRequest{Recipient: "0x0000", Amount: "1"})
		rr := s.do(req, token)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("non-numeric amount rejected", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/mint",
			MintRequest{Recipient: "0xaaa1", Amount: "ten"})
		rr := s.do(req, token)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("unknown body field rejected", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/mint",
			map[string]string{"recipient": "0xaaa1", "amount": "1", "memo": "hi"})
		rr := s.do(req, token)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

// =============================================================================
// Burn Endpoint Tests
// =============================================================================

func (s *HandlerSuite) TestBurnEndpoint() {
	s.attest(1_000_00000000, 1)

	mintToken := testutil.BearerToken(s.T(), "0xholder", "MINT")
	mintReq := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/mint",
		MintRequest{Recipient: "0xholder", Amount: tokenUnits(10)})
	s.Require().Equal(http.StatusOK, s.do(mintReq, mintToken).Code)

	s.Run("self burn needs only authentication", func() {
		token := testutil.BearerToken(s.T(), "0xholder")
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/burn",
			BurnRequest{Account: "0xholder", Amount: tokenUnits(4)})
		rr := s.do(req, token)
		s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())

		resp := testutil.UnmarshalResponse[BurnResponse](s.T(), rr)
		s.Equal(tokenUnits(6), resp.TotalSupplyAfter)
	})

	s.Run("third-party burn without capability forbidden", func() {
		token := testutil.BearerToken(s.T(), "0xother")
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/burn",
			BurnRequest{Account: "0xholder", Amount: "1"})
		rr := s.do(req, token)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")
	})

	s.Run("third-party burn with capability succeeds", func() {
		token := testutil.BearerToken(s.T(), "0xother", "BURN")
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/burn",
			BurnRequest{Account: "0xholder", Amount: tokenUnits(1)})
		rr := s.do(req, token)
		s.Equal(http.StatusOK, rr.Code, rr.Body.String())
	})

	s.Run("burn above balance maps to unprocessable", func() {
		token := testutil.BearerToken(s.T(), "0xholder")
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/burn",
			BurnRequest{Account: "0xholder", Amount: tokenUnits(999)})
		rr := s.do(req, token)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "unprocessable")
	})
}

// =============================================================================
// Admin Endpoint Tests
// =============================================================================

func (s *HandlerSuite) TestAdminEndpoints() {
	admin := testutil.BearerToken(s.T(), "0xadmin", "ADMIN")
	minter := testutil.BearerToken(s.T(), "0xminter", "MINT")
	s.attest(1_000_00000000, 1)

	s.Run("pause blocks mint until unpause", func() {
		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/admin/pause", nil), admin)
		s.Require().Equal(http.StatusNoContent, rr.Code)

		mint := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/mint",
			MintRequest{Recipient: "0xaaa1", Amount: "1"})
		testutil.AssertStatusAndError(s.T(), s.do(mint, minter), http.StatusServiceUnavailable, "unavailable")

		rr = s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/admin/unpause", nil), admin)
		s.Require().Equal(http.StatusNoContent, rr.Code)

		mint = testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/mint",
			MintRequest{Recipient: "0xaaa1", Amount: "1"})
		s.Equal(http.StatusOK, s.do(mint, minter).Code)
	})

	s.Run("set ttl validates input", func() {
		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPut, "/v1/admin/ttl",
			SetTTLRequest{TTLSeconds: 0}), admin)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")

		rr = s.do(testutil.NewJSONRequest(s.T(), http.MethodPut, "/v1/admin/ttl",
			SetTTLRequest{TTLSeconds: 1800}), admin)
		s.Equal(http.StatusNoContent, rr.Code)

		status := testutil.UnmarshalResponse[StatusResponse](s.T(),
			s.do(testutil.NewJSONRequest(s.T(), http.MethodGet, "/v1/reserve/status", nil), ""))
		s.Equal(int64(1800), status.TTLSeconds)
	})

	s.Run("set limit enforces the cap on the next mint", func() {
		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPut, "/v1/admin/limit",
			SetLimitRequest{Limit: tokenUnits(2)}), admin)
		s.Require().Equal(http.StatusNoContent, rr.Code)

		mint := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/mint",
			MintRequest{Recipient: "0xaaa1", Amount: tokenUnits(3)})
		testutil.AssertStatusAndError(s.T(), s.do(mint, minter), http.StatusUnprocessableEntity, "unprocessable")

		// Lift the cap again for later subtests.
		rr = s.do(testutil.NewJSONRequest(s.T(), http.MethodPut, "/v1/admin/limit",
			SetLimitRequest{Limit: "0"}), admin)
		s.Require().Equal(http.StatusNoContent, rr.Code)
	})

	s.Run("negative limit rejected", func() {
		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPut, "/v1/admin/limit",
			SetLimitRequest{Limit: "-5"}), admin)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("allowlist lifecycle", func() {
		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPut, "/v1/admin/allowlist/0xaaa1", nil), admin)
		s.Require().Equal(http.StatusNoContent, rr.Code)

		rr = s.do(testutil.NewJSONRequest(s.T(), http.MethodPut, "/v1/admin/allowlist/enabled",
			SetAllowlistEnabledRequest{Enabled: true}), admin)
		s.Require().Equal(http.StatusNoContent, rr.Code)

		blocked := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/mint",
			MintRequest{Recipient: "0xccc3", Amount: "1"})
		testutil.AssertStatusAndError(s.T(), s.do(blocked, minter), http.StatusForbidden, "forbidden")

		allowed := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/mint",
			MintRequest{Recipient: "0xaaa1", Amount: "1"})
		s.Equal(http.StatusOK, s.do(allowed, minter).Code)

		rr = s.do(testutil.NewJSONRequest(s.T(), http.MethodDelete, "/v1/admin/allowlist/0xaaa1", nil), admin)
		s.Require().Equal(http.StatusNoContent, rr.Code)

		again := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/mint",
			MintRequest{Recipient: "0xaaa1", Amount: "1"})
		testutil.AssertStatusAndError(s.T(), s.do(again, minter), http.StatusForbidden, "forbidden")
	})

	s.Run("refresh returns the correlation id", func() {
		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/attestations/refresh", nil), admin)
		s.Require().Equal(http.StatusAccepted, rr.Code)

		resp := testutil.UnmarshalResponse[RefreshResponse](s.T(), rr)
		s.Equal("req-fixed", resp.RequestID)
	})
}

// =============================================================================
// Status and Events Tests
// =============================================================================

func (s *HandlerSuite) TestStatusEndpoint() {
	s.Run("empty engine omits attestation fields", func() {
		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodGet, "/v1/reserve/status", nil), "")
		s.Require().Equal(http.StatusOK, rr.Code)

		resp := testutil.UnmarshalResponse[StatusResponse](s.T(), rr)
		s.False(resp.HasAttestation)
		s.False(resp.ReserveFresh)
		s.Empty(resp.ReserveUSD)
		s.Nil(resp.AgeSeconds)
		s.Equal("0", resp.Capacity)
		s.Equal("0", resp.TotalSupply)
	})

	s.Run("attested engine reports the reserve view", func() {
		s.attest(250_50000000, 1)

		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodGet, "/v1/reserve/status", nil), "")
		resp := testutil.UnmarshalResponse[StatusResponse](s.T(), rr)
		s.True(resp.HasAttestation)
		s.True(resp.ReserveFresh)
		s.Equal("250.5", resp.ReserveUSD)
		s.Equal(uint64(1), resp.ReserveNonce)
		s.Require().NotNil(resp.AgeSeconds)
		s.GreaterOrEqual(*resp.AgeSeconds, int64(0))
		s.Equal("250500000000000000000", resp.Capacity)
	})
}

func (s *HandlerSuite) TestEventsEndpoint() {
	s.attest(100_00000000, 1)

	minter := testutil.BearerToken(s.T(), "0xminter", "MINT")
	mint := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/mint",
		MintRequest{Recipient: "0xaaa1", Amount: tokenUnits(2)})
	s.Require().Equal(http.StatusOK, s.do(mint, minter).Code)

	s.Run("events listed newest first", func() {
		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodGet, "/v1/events", nil), "")
		s.Require().Equal(http.StatusOK, rr.Code)

		resp := testutil.UnmarshalResponse[[]EventResponse](s.T(), rr)
		s.Require().Len(*resp, 2)
		s.Equal(string(events.TypeMintAuthorized), (*resp)[0].Type)
		s.Equal(string(events.TypeAttestationRecorded), (*resp)[1].Type)
		s.Equal("0xminter", (*resp)[0].Operator)
		s.Equal("100", (*resp)[0].ReserveValueUsed)
	})

	s.Run("limit parameter truncates the list", func() {
		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodGet, "/v1/events?limit=1", nil), "")
		resp := testutil.UnmarshalResponse[[]EventResponse](s.T(), rr)
		s.Len(*resp, 1)
	})
}

func (s *HandlerSuite) TestHealthz() {
	rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodGet, "/healthz", nil), "")
	s.Equal(http.StatusOK, rr.Code)
}
