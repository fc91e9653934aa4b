package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

const contentTypeJSON = "application/json; charset=utf-8"

// Denial error codes shared by every failure path. 401 for authentication
// failures, 403 for authorization failures, 500 for internal errors.
const (
	CodeNotAuthenticated        = "NOT_AUTHENTICATED"
	CodeNoToken                 = "NO_TOKEN"
	CodeTokenExpired            = "TOKEN_EXPIRED"
	CodeSessionExpired          = "SESSION_EXPIRED"
	CodeAllTokensInvalid        = "ALL_TOKENS_INVALID"
	CodeUserNotFound            = "USER_NOT_FOUND"
	CodeAccountDeactivated      = "ACCOUNT_DEACTIVATED"
	CodeInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"
	CodeResourceAccessDenied    = "RESOURCE_ACCESS_DENIED"
	CodeAuthError               = "AUTH_ERROR"
)

type errorBody struct {
	Code string `json:"code"`
}

type envelope struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: true, Message: message, Data: data}); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: false, Message: message, Error: &errorBody{Code: code}}); err != nil {
		log.Error().Err(err).Msg("failed to encode error response")
	}
}
