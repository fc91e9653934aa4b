// Package token creates and verifies the two classes of signed tokens used by
// the platform: short-lived access tokens checked on every request, and
// long-lived refresh tokens bound to a server-side session.
package token

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/urbanfix/go-civic-auth/users"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

var (
	// ErrTokenExpired marks a token that verified but is past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid marks a token that is malformed, forged, or of the wrong class.
	ErrTokenInvalid = errors.New("token invalid")
)

// Config holds the signing material and lifetimes for the codec. Secrets are
// injected at process start and never defaulted in code.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Codec issues and verifies access and refresh tokens. The two classes use
// distinct secrets so that compromise of one cannot forge the other.
type Codec struct {
	config Config
}

// NewCodec validates the config and creates a codec.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.AccessSecret) == 0 {
		return nil, errors.New("token.NewCodec: access secret is required")
	}
	if len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("token.NewCodec: refresh secret is required")
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, errors.New("token.NewCodec: access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token.NewCodec: token lifetimes must be positive")
	}
	return &Codec{config: cfg}, nil
}

// AccessTTL returns the configured access token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.config.AccessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (c *Codec) RefreshTTL() time.Duration { return c.config.RefreshTTL }

// IssueAccessToken signs a short-lived access token for the user. family is
// the session's token-family identifier and may be empty only for tokens that
// predate session binding.
func (c *Codec) IssueAccessToken(user *users.User, family string) (string, error) {
	return c.sign(user, family, c.config.AccessSecret, c.config.AccessTTL)
}

// IssueRefreshToken signs a long-lived refresh token bound to the session's
// token family.
func (c *Codec) IssueRefreshToken(user *users.User, family string) (string, error) {
	if family == "" {
		return "", errors.New("token.IssueRefreshToken: token family is required")
	}
	return c.sign(user, family, c.config.RefreshSecret, c.config.RefreshTTL)
}

// VerifyAccessToken verifies signature and expiry of an access token and
// returns its claims.
func (c *Codec) VerifyAccessToken(raw string) (*Claims, error) {
	return c.verify(raw, c.config.AccessSecret)
}

// VerifyRefreshToken verifies signature and expiry of a refresh token and
// returns its claims.
func (c *Codec) VerifyRefreshToken(raw string) (*Claims, error) {
	return c.verify(raw, c.config.RefreshSecret)
}

func (c *Codec) sign(user *users.User, family string, secret []byte, ttl time.Duration) (string, error) {
	if user == nil || user.ID == "" {
		return "", errors.New("token: user with ID is required")
	}

	now := NowTimeFunc()
	claims := &Claims{
		Email:         user.Email,
		Role:          user.Role,
		SessionFamily: family,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("token: failed to sign: %w", err)
	}
	return signed, nil
}

func (c *Codec) verify(raw string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwtlib.ParseWithClaims(raw, claims,
		func(t *jwtlib.Token) (any, error) { return secret, nil },
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(func() time.Time { return NowTimeFunc() }),
	)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
