package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrRefreshInvalid     = errors.New("refresh token invalid")
	ErrSessionExpired     = errors.New("session expired or revoked")
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountDeactivated = errors.New("account deactivated")
)
