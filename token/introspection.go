package token

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// PeekExpiry decodes a token without verifying its signature and returns the
// expiry timestamp. Diagnostics only - the result must never be used to
// authorize access.
func PeekExpiry(raw string) (time.Time, bool) {
	unverified, _, err := jwtlib.NewParser().ParseUnverified(raw, &Claims{})
	if err != nil {
		return time.Time{}, false
	}

	claims, ok := unverified.Claims.(*Claims)
	if !ok || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// IsExpired reports whether the token's unverified expiry is in the past.
// Diagnostics only, like PeekExpiry.
func IsExpired(raw string) bool {
	exp, ok := PeekExpiry(raw)
	if !ok {
		return true
	}
	return NowTimeFunc().After(exp)
}
