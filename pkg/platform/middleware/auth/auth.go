// Package auth authenticates operators and enforces capability checks.
// Capability storage and assignment live outside this service: the bearer
// token presents the operator's capability set and the middleware only
// checks membership before a request reaches the issuance gate.
package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	id "mintguard/pkg/domain"
	"mintguard/pkg/requestcontext"
)

// Claims is the expected token shape: sub is the operator address,
// capabilities the privilege names granted to it.
type Claims struct {
	Capabilities []string `json:"capabilities"`
	jwt.RegisteredClaims
}

// Validator verifies bearer tokens with an HMAC signing key.
type Validator struct {
	signingKey []byte
}

// NewValidator creates a token validator.
func NewValidator(signingKey string) *Validator {
	return &Validator{signingKey: []byte(signingKey)}
}

// ValidateToken parses and verifies a bearer token, returning the operator
// identity and capability set.
func (v *Validator) ValidateToken(tokenString string) (id.Address, id.CapabilitySet, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.signingKey, nil
	})
	if err != nil {
		return "", nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", nil, fmt.Errorf("invalid token claims")
	}

	operator, err := id.ParseAddress(claims.Subject)
	if err != nil {
		return "", nil, fmt.Errorf("invalid subject: %w", err)
	}

	caps := make(id.CapabilitySet, len(claims.Capabilities))
	for _, raw := range claims.Capabilities {
		if c, err := id.ParseCapability(raw); err == nil {
			caps[c] = true
		}
	}
	return operator, caps, nil
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":%q,"error_description":%q}`, errCode, errDesc))
}

// RequireAuth authenticates the bearer token and injects the operator
// identity and capabilities into the request context.
func RequireAuth(validator *Validator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(authHeader, bearerPrefix) {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}

			operator, caps, err := validator.ValidateToken(strings.TrimPrefix(authHeader, bearerPrefix))
			if err != nil {
				logger.WarnContext(r.Context(), "token rejected", "path", r.URL.Path, "error", err)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "invalid bearer token")
				return
			}

			ctx := requestcontext.WithOperator(r.Context(), operator, caps)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireCapability rejects requests whose operator does not hold the
// capability. Must be mounted inside RequireAuth.
func RequireCapability(capability id.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requestcontext.Capabilities(r.Context()).Has(capability) {
				writeJSONError(w, http.StatusForbidden, "forbidden",
					fmt.Sprintf("operation requires the %s capability", capability))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
