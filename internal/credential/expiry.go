package credential

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiresAt reads the exp claim of a JWT without verifying its signature.
// Opaque (non-JWT) tokens and tokens without exp report ok=false.
func ExpiresAt(token string) (exp time.Time, ok bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Expired reports whether token carries an exp claim at or before now.
// A false result does not make the token valid; that is for the server to decide.
func Expired(token string, now time.Time) bool {
	exp, ok := ExpiresAt(token)
	return ok && !exp.After(now)
}
