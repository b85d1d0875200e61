// Package token provides client-side inspection of the SimpleJWT access
// token. The client never verifies signatures — validity is only ever
// confirmed by the backend — but the unverified claims are useful for
// logging and for skipping a round trip that is guaranteed to fail.
package token

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of access-token claims the client cares about.
type Claims struct {
	UserID    *int64     // "user_id" claim set by the backend's token view
	ExpiresAt *time.Time // "exp" claim; nil when absent or unparseable
	IssuedAt  *time.Time // "iat" claim
	TokenType string     // "access" or "refresh"
}

// Inspect extracts claims from a raw token without verifying its signature.
// An empty or malformed token yields ok=false.
func Inspect(rawToken string) (Claims, bool) {
	if strings.TrimSpace(rawToken) == "" {
		return Claims{}, false
	}
	parsed, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return Claims{}, false
	}
	mapClaims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return Claims{}, false
	}

	var claims Claims
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = &exp.Time
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = &iat.Time
	}
	if tokenType, ok := mapClaims["token_type"].(string); ok {
		claims.TokenType = tokenType
	}
	if userID, ok := mapClaims["user_id"].(float64); ok {
		id := int64(userID)
		claims.UserID = &id
	}
	return claims, true
}

// Expired reports whether the token's exp claim is in the past relative to
// now. A token with no readable exp claim is never reported as expired; the
// backend remains the authority.
func Expired(rawToken string, now time.Time) bool {
	claims, ok := Inspect(rawToken)
	if !ok || claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(now)
}
