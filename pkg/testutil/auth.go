package testutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	authmw "mintguard/pkg/platform/middleware/auth"
)

// SigningKey is the shared HMAC key for tokens minted in tests.
const SigningKey = "test-signing-key"

// BearerToken mints a signed token for operator with the given capabilities,
// matching what the auth middleware expects.
func BearerToken(t *testing.T, operator string, capabilities ...string) string {
	t.Helper()

	claims := authmw.Claims{
		Capabilities: capabilities,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   operator,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(SigningKey))
	require.NoError(t, err, "failed to sign test token")
	return token
}
