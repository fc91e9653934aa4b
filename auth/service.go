// Package auth implements the credential and token lifecycle flows: login,
// logout, registration, and the single transparent-refresh procedure used by
// the request gate.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/urbanfix/go-civic-auth/sessions"
	"github.com/urbanfix/go-civic-auth/token"
	"github.com/urbanfix/go-civic-auth/users"
)

// Repos holds all repository dependencies for the Service.
type Repos struct {
	Users    users.Repo
	Sessions sessions.Repo
}

// Service owns login, logout, registration, and refresh. Every session
// mutation goes through here or the repo methods it calls.
type Service struct {
	repos      Repos
	codec      *token.Codec
	bcryptCost int
	nowTime    func() time.Time // injectable for testing
}

// Option modifies the Service instance.
type Option func(*Service)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithBcryptCost sets the bcrypt cost used when hashing new passwords.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

// NewService initializes a new Service with required dependencies.
func NewService(repos Repos, codec *token.Codec, options ...Option) (*Service, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if repos.Sessions == nil {
		return nil, errors.New("[NewService] Sessions repo is required")
	}
	if codec == nil {
		return nil, errors.New("[NewService] token codec is required")
	}

	service := &Service{
		repos:      repos,
		codec:      codec,
		bcryptCost: bcrypt.DefaultCost,
		nowTime:    time.Now,
	}
	for _, opt := range options {
		opt(service)
	}
	return service, nil
}

// TokenPair is the result of a successful login: both token classes plus the
// session record that backs the refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	Session      *sessions.Session
}

// Login verifies credentials, creates a session under a fresh token family,
// and issues an access/refresh token pair.
func (s *Service) Login(ctx context.Context, email, password string) (*users.User, *TokenPair, error) {
	user, err := s.repos.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("[Service.Login] GetByEmail: %w", err)
	}

	if !users.CheckPasswordHash(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, nil, ErrAccountDeactivated
	}

	family := uuid.New().String()
	session, err := s.repos.Sessions.Create(ctx, user.ID, family, s.codec.RefreshTTL())
	if err != nil {
		return nil, nil, fmt.Errorf("[Service.Login] session create: %w", err)
	}

	accessToken, err := s.codec.IssueAccessToken(user, family)
	if err != nil {
		return nil, nil, fmt.Errorf("[Service.Login] issue access token: %w", err)
	}
	refreshToken, err := s.codec.IssueRefreshToken(user, family)
	if err != nil {
		return nil, nil, fmt.Errorf("[Service.Login] issue refresh token: %w", err)
	}

	if err := s.repos.Users.SetLastLogin(ctx, user.ID, s.nowTime()); err != nil {
		// Bookkeeping only, the login itself succeeded.
		log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
	}

	return user.Sanitized(), &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Session:      session,
	}, nil
}

// Register creates a citizen account. Role is fixed: staff and admin accounts
// are provisioned out of band.
func (s *Service) Register(ctx context.Context, email, fullName, password string) (*users.User, error) {
	if _, err := s.repos.Users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, users.ErrNotFound) {
		return nil, fmt.Errorf("[Service.Register] GetByEmail: %w", err)
	}

	hash, err := users.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("[Service.Register] hash password: %w", err)
	}

	user := &users.User{
		ID:           uuid.New().String(),
		Email:        email,
		FullName:     fullName,
		Role:         users.RoleCitizen,
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    s.nowTime(),
	}
	if err := s.repos.Users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("[Service.Register] upsert: %w", err)
	}
	return user.Sanitized(), nil
}

// Refresh is the single transparent-refresh procedure: verify the refresh
// token, resolve its session, enforce lazy expiry, re-check the account, and
// mint exactly one new access token. The refresh token itself is reused, not
// rotated - revocation happens server-side through the session.
func (s *Service) Refresh(ctx context.Context, rawRefreshToken string) (*users.User, *sessions.Session, string, error) {
	claims, err := s.codec.VerifyRefreshToken(rawRefreshToken)
	if err != nil {
		return nil, nil, "", ErrRefreshInvalid
	}

	session, err := s.repos.Sessions.FindActive(ctx, claims.SessionFamily, claims.UserID())
	if err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			return nil, nil, "", ErrSessionExpired
		}
		return nil, nil, "", fmt.Errorf("[Service.Refresh] FindActive: %w", err)
	}

	if session.Expired(s.nowTime()) {
		if err := s.repos.Sessions.Deactivate(ctx, session); err != nil {
			log.Warn().Err(err).Str("session_id", session.ID).Msg("failed to deactivate expired session")
		}
		return nil, nil, "", ErrSessionExpired
	}

	user, err := s.repos.Users.GetByID(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, nil, "", ErrUserNotFound
		}
		return nil, nil, "", fmt.Errorf("[Service.Refresh] GetByID: %w", err)
	}
	if !user.Active {
		return nil, nil, "", ErrAccountDeactivated
	}

	accessToken, err := s.codec.IssueAccessToken(user, session.TokenFamily)
	if err != nil {
		return nil, nil, "", fmt.Errorf("[Service.Refresh] issue access token: %w", err)
	}

	if err := s.repos.Sessions.Touch(ctx, session); err != nil {
		log.Warn().Err(err).Str("session_id", session.ID).Msg("failed to touch session")
	}

	return user.Sanitized(), session, accessToken, nil
}

// Logout deactivates the session behind the given token family. Missing or
// already-inactive sessions are not an error.
func (s *Service) Logout(ctx context.Context, userID, tokenFamily string) error {
	session, err := s.repos.Sessions.FindActive(ctx, tokenFamily, userID)
	if err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("[Service.Logout] FindActive: %w", err)
	}
	if err := s.repos.Sessions.Deactivate(ctx, session); err != nil {
		return fmt.Errorf("[Service.Logout] Deactivate: %w", err)
	}
	return nil
}

// LogoutAll revokes every active session for the user. Used when an account
// is compromised or deactivated.
func (s *Service) LogoutAll(ctx context.Context, userID string) (int, error) {
	revoked, err := s.repos.Sessions.DeactivateAllForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("[Service.LogoutAll] DeactivateAllForUser: %w", err)
	}
	return revoked, nil
}
