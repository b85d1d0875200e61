package token_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/sgdl/go-sgdl-client/token"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwtlib.MapClaims) string {
	t.Helper()
	raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	return raw
}

func TestInspectExtractsClaims(t *testing.T) {
	expiry := time.Now().Add(5 * time.Minute).Truncate(time.Second)
	issued := time.Now().Truncate(time.Second)
	raw := signedToken(t, jwtlib.MapClaims{
		"token_type": "access",
		"user_id":    float64(7),
		"exp":        expiry.Unix(),
		"iat":        issued.Unix(),
	})

	claims, ok := token.Inspect(raw)
	require.True(t, ok)
	require.Equal(t, "access", claims.TokenType)
	require.NotNil(t, claims.UserID)
	require.Equal(t, int64(7), *claims.UserID)
	require.NotNil(t, claims.ExpiresAt)
	require.Equal(t, expiry.Unix(), claims.ExpiresAt.Unix())
	require.NotNil(t, claims.IssuedAt)
	require.Equal(t, issued.Unix(), claims.IssuedAt.Unix())
}

func TestInspectRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "   ", "not-a-jwt", "a.b"} {
		_, ok := token.Inspect(raw)
		require.False(t, ok, "expected %q to be rejected", raw)
	}
}

func TestExpired(t *testing.T) {
	now := time.Now()

	stale := signedToken(t, jwtlib.MapClaims{"exp": now.Add(-time.Minute).Unix()})
	fresh := signedToken(t, jwtlib.MapClaims{"exp": now.Add(time.Minute).Unix()})
	noExp := signedToken(t, jwtlib.MapClaims{"token_type": "access"})

	require.True(t, token.Expired(stale, now))
	require.False(t, token.Expired(fresh, now))

	// Without a readable exp claim the backend stays the authority.
	require.False(t, token.Expired(noExp, now))
	require.False(t, token.Expired("not-a-jwt", now))
}
