// Package httputil centralizes JSON encoding and error translation for the
// HTTP layer so handlers stay thin and error envelopes stay consistent.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "mintguard/pkg/domain-errors"
)

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type errorEnvelope struct {
	Error            string            `json:"error"`
	ErrorDescription string            `json:"error_description,omitempty"`
	Details          map[string]string `json:"details,omitempty"`
}

// WriteError translates a domain error into the standard JSON error envelope.
// Internal errors omit the description so storage and transport failures do
// not leak into client responses.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeInternal
	envelope := errorEnvelope{Error: string(code)}

	var de *dErrors.Error
	if errors.As(err, &de) {
		code = de.Code
		envelope.Error = string(code)
		if code != dErrors.CodeInternal {
			envelope.ErrorDescription = de.Message
			envelope.Details = de.Details
		}
	}

	WriteJSON(w, dErrors.ToHTTPStatus(code), envelope)
}

// Decode parses the request body into T, rejecting unknown fields. On failure
// it writes a bad_request envelope and logs the decode error.
func Decode[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (T, bool) {
	var req T
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if logger != nil {
			logger.WarnContext(r.Context(), "request decode failed", "path", r.URL.Path, "error", err)
		}
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed request body"))
		return req, false
	}
	return req, true
}
