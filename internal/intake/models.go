package intake

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrTransportFailure rejects a delivery carrying a transport-level
	// error payload. The reserve ledger is untouched.
	ErrTransportFailure = errors.New("oracle transport reported a delivery failure")

	// ErrMalformedResponse rejects a payload that does not decode into
	// exactly two non-negative integers. The reserve ledger is untouched.
	ErrMalformedResponse = errors.New("oracle response payload is malformed")

	// ErrUnknownRequest rejects a delivery whose request id was never
	// submitted (or has aged out of the pending set).
	ErrUnknownRequest = errors.New("delivery does not match a pending request")

	// ErrRequestFulfilled rejects a second delivery for an already
	// fulfilled request. A fulfilled request should not be re-delivered, so
	// this is a hard error rather than a silent no-op.
	ErrRequestFulfilled = errors.New("request has already been fulfilled")
)

// PendingRequest tracks an in-flight oracle request. A request that never
// resolves simply stays pending until it is evicted; there is no cancellation
// primitive.
type PendingRequest struct {
	ID          string
	Query       string
	SubmittedAt time.Time
	Fulfilled   bool
}

// responsePayload is the oracle response wire format.
type responsePayload struct {
	USDValue *uint64 `json:"usd_value"`
	Nonce    *uint64 `json:"nonce"`
}

// decodeResponse parses a payload into (usdValue, nonce). Pointer fields make
// missing keys detectable; unknown fields and negative numbers fail decoding.
func decodeResponse(payload []byte) (usdValue, nonce uint64, err error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()

	var resp responsePayload
	if err := dec.Decode(&resp); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if dec.More() {
		return 0, 0, fmt.Errorf("%w: trailing data", ErrMalformedResponse)
	}
	if resp.USDValue == nil || resp.Nonce == nil {
		return 0, 0, fmt.Errorf("%w: usd_value and nonce are required", ErrMalformedResponse)
	}
	return *resp.USDValue, *resp.Nonce, nil
}
