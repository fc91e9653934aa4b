package token

import (
	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/urbanfix/go-civic-auth/users"
)

// Claims carries the identity asserted by both token classes. Subject holds
// the user ID. SessionFamily ties the token to its server-side session record:
// required on refresh tokens, and stamped on access tokens as well so bearer
// requests can resolve their session exactly.
type Claims struct {
	Email         string     `json:"email"`
	Role          users.Role `json:"role"`
	SessionFamily string     `json:"sid,omitempty"`
	jwtlib.RegisteredClaims
}

// UserID returns the user identifier the token was issued for.
func (c *Claims) UserID() string {
	return c.Subject
}
