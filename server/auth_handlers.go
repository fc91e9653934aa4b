package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/urbanfix/go-civic-auth/auth"
	"github.com/urbanfix/go-civic-auth/internal/metrics"
)

// Mobile clients identify themselves on login so tokens are returned in the
// body instead of cookies. Authenticated requests are classified by the
// Authorization header instead.
const mobileClientHeader = "X-Client"

func isMobileClient(r *http.Request) bool {
	if strings.EqualFold(r.Header.Get(mobileClientHeader), "mobile") {
		return true
	}
	return strings.EqualFold(r.URL.Query().Get("client"), "mobile")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Email and password are required")
		return
	}

	user, err := s.auth.Register(r.Context(), req.Email, req.FullName, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			respondError(w, http.StatusConflict, "EMAIL_TAKEN", "Email is already registered")
			return
		}
		log.Error().Err(err).Msg("registration failed")
		respondError(w, http.StatusInternalServerError, CodeAuthError, "Registration failed")
		return
	}

	respondJSON(w, http.StatusCreated, "Account created", user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	user, pair, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		metrics.Logins.WithLabelValues("failure").Inc()
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, CodeNotAuthenticated, "Invalid email or password")
		case errors.Is(err, auth.ErrAccountDeactivated):
			respondError(w, http.StatusUnauthorized, CodeAccountDeactivated, "Account has been deactivated")
		default:
			log.Error().Err(err).Msg("login failed")
			respondError(w, http.StatusInternalServerError, CodeAuthError, "Login failed")
		}
		return
	}
	metrics.Logins.WithLabelValues("success").Inc()

	if isMobileClient(r) {
		respondJSON(w, http.StatusOK, "Logged in", map[string]any{
			"user": user,
			"tokens": tokenResponse{
				AccessToken:  pair.AccessToken,
				RefreshToken: pair.RefreshToken,
				TokenType:    "Bearer",
				ExpiresIn:    int(s.codec.AccessTTL().Seconds()),
			},
		})
		return
	}

	s.setAuthCookies(w, pair.AccessToken, pair.RefreshToken)
	respondJSON(w, http.StatusOK, "Logged in", map[string]any{"user": user})
}

// handleRefresh is the explicit refresh endpoint for clients that cannot use
// the transparent cookie path. The refresh token comes from the body, or from
// the refresh cookie as a fallback.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	refreshToken := req.RefreshToken
	fromCookie := false
	if refreshToken == "" {
		_, refreshToken = extractCookieTokens(r)
		fromCookie = true
	}
	if refreshToken == "" {
		respondError(w, http.StatusUnauthorized, CodeNoToken, "No refresh token provided")
		return
	}

	user, session, accessToken, err := s.auth.Refresh(r.Context(), refreshToken)
	if err != nil {
		deny := refreshDenial(err)
		deny.clearCookies = deny.clearCookies && fromCookie
		s.denyAndClear(w, deny)
		return
	}

	if fromCookie {
		s.setAuthCookies(w, accessToken, refreshToken)
	}
	respondJSON(w, http.StatusOK, "Token refreshed", map[string]any{
		"user":       user,
		"session_id": session.ID,
		"tokens": tokenResponse{
			AccessToken: accessToken,
			TokenType:   "Bearer",
			ExpiresIn:   int(s.codec.AccessTTL().Seconds()),
		},
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, CodeNotAuthenticated, "Authentication required")
		return
	}

	if family := s.tokenFamilyFromRequest(r); family != "" {
		if err := s.auth.Logout(r.Context(), user.ID, family); err != nil {
			log.Error().Err(err).Str("user_id", user.ID).Msg("logout failed")
			respondError(w, http.StatusInternalServerError, CodeAuthError, "Logout failed")
			return
		}
		metrics.SessionsRevoked.Inc()
	}

	s.clearAuthCookies(w)
	respondJSON(w, http.StatusOK, "Logged out", nil)
}

// handleLogoutAll revokes every session of the target user. Mounted behind
// RequireSelfOrAdmin on the user route and RequireRoles(admin) on the admin
// route.
func (s *Server) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "userID")
	if targetID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "User ID is required")
		return
	}

	revoked, err := s.auth.LogoutAll(r.Context(), targetID)
	if err != nil {
		log.Error().Err(err).Str("user_id", targetID).Msg("logout-all failed")
		respondError(w, http.StatusInternalServerError, CodeAuthError, "Failed to revoke sessions")
		return
	}
	metrics.SessionsRevoked.Add(float64(revoked))

	// Clear cookies only when the caller revoked their own login.
	if user, ok := UserFromContext(r.Context()); ok && user.ID == targetID {
		s.clearAuthCookies(w)
	}
	respondJSON(w, http.StatusOK, "Sessions revoked", map[string]any{"revoked": revoked})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, CodeNotAuthenticated, "Authentication required")
		return
	}

	data := map[string]any{"user": user}
	if sessionID, ok := SessionIDFromContext(r.Context()); ok {
		data["session_id"] = sessionID
	}
	respondJSON(w, http.StatusOK, "", data)
}

// handleStatus reports whether the caller is logged in. Mounted behind
// OptionalAuth, so it never denies.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if user, ok := UserFromContext(r.Context()); ok {
		respondJSON(w, http.StatusOK, "", map[string]any{"authenticated": true, "user": user})
		return
	}
	respondJSON(w, http.StatusOK, "", map[string]any{"authenticated": false})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, "ok", nil)
}

// tokenFamilyFromRequest recovers the token family of the presented
// credential: the access token's session claim for bearer requests, the
// refresh cookie for web requests.
func (s *Server) tokenFamilyFromRequest(r *http.Request) string {
	if bearerToken, ok := extractBearerToken(r); ok {
		if claims, err := s.codec.VerifyAccessToken(bearerToken); err == nil {
			return claims.SessionFamily
		}
		return ""
	}
	if _, refreshToken := extractCookieTokens(r); refreshToken != "" {
		if claims, err := s.codec.VerifyRefreshToken(refreshToken); err == nil {
			return claims.SessionFamily
		}
	}
	return ""
}
