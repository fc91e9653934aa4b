package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/urbanfix/go-civic-auth/auth"
	"github.com/urbanfix/go-civic-auth/internal/metrics"
	"github.com/urbanfix/go-civic-auth/sessions"
	"github.com/urbanfix/go-civic-auth/users"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	// ContextKeyUser stores the authenticated *users.User.
	ContextKeyUser ContextKey = "user"
	// ContextKeySessionID stores the resolved session ID, when one resolved.
	ContextKeySessionID ContextKey = "session_id"
)

// UserFromContext returns the authenticated user attached by RequireAuth.
func UserFromContext(ctx context.Context) (*users.User, bool) {
	user, ok := ctx.Value(ContextKeyUser).(*users.User)
	return user, ok
}

// SessionIDFromContext returns the session ID attached by RequireAuth, if the
// request resolved one.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ContextKeySessionID).(string)
	return id, ok
}

const (
	transportBearer = "bearer"
	transportCookie = "cookie"
)

// identity is the outcome of a successful gate pass.
type identity struct {
	user      *users.User
	sessionID string
	transport string
}

// denial is a terminal gate failure. clearCookies is only honored on the
// cookie transport, so repeated failed refresh attempts stop at the client.
type denial struct {
	status       int
	code         string
	message      string
	clearCookies bool
}

// RequireAuth is the authentication gate. It extracts a credential from the
// bearer header or the cookie pair, verifies the access token, transparently
// refreshes an expired one on the cookie transport, re-checks the account, and
// attaches the identity to the request context. Every failure writes the
// uniform denial envelope and stops the chain.
func (s *Server) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, deny := s.authenticate(w, r)
		if deny != nil {
			metrics.AuthRequests.WithLabelValues(deny.code, transportOf(r)).Inc()
			s.denyAndClear(w, deny)
			return
		}
		metrics.AuthRequests.WithLabelValues("authorized", id.transport).Inc()
		next.ServeHTTP(w, r.WithContext(id.attach(r.Context())))
	})
}

// OptionalAuth runs the same procedure as RequireAuth but swallows every
// failure: the request proceeds unauthenticated, with no denial written and no
// cookies cleared. For endpoints that personalize output when logged in.
func (s *Server) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, deny := s.authenticate(w, r)
		if deny != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(id.attach(r.Context())))
	})
}

// RequireRoles permits only principals whose role is in the given set.
// Must be chained after RequireAuth.
func (s *Server) RequireRoles(permitted ...users.Role) func(http.Handler) http.Handler {
	roleSet := users.NewRoleSet(permitted...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				respondError(w, http.StatusUnauthorized, CodeNotAuthenticated, "Authentication required")
				return
			}
			if !roleSet.Contains(user.Role) {
				respondError(w, http.StatusForbidden, CodeInsufficientPermissions, "You do not have permission to perform this action")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSelfOrAdmin permits admins, or the principal whose ID matches the
// named URL parameter. Must be chained after RequireAuth.
func (s *Server) RequireSelfOrAdmin(ownerParam string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				respondError(w, http.StatusUnauthorized, CodeNotAuthenticated, "Authentication required")
				return
			}
			ownerID := chi.URLParam(r, ownerParam)
			if user.Role != users.RoleAdmin && user.ID != ownerID {
				respondError(w, http.StatusForbidden, CodeResourceAccessDenied, "You do not have access to this resource")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (id *identity) attach(ctx context.Context) context.Context {
	ctx = context.WithValue(ctx, ContextKeyUser, id.user)
	if id.sessionID != "" {
		ctx = context.WithValue(ctx, ContextKeySessionID, id.sessionID)
	}
	return ctx
}

func transportOf(r *http.Request) string {
	if _, ok := extractBearerToken(r); ok {
		return transportBearer
	}
	return transportCookie
}

// denyAndClear writes the denial and, on the cookie transport only, clears
// both auth cookies. The single place that pairs the two side effects.
func (s *Server) denyAndClear(w http.ResponseWriter, deny *denial) {
	if deny.clearCookies {
		s.clearAuthCookies(w)
	}
	respondError(w, deny.status, deny.code, deny.message)
}

// authenticate runs the per-request decision procedure. On success it returns
// the identity; on failure it returns the denial without writing anything, so
// RequireAuth and OptionalAuth can handle it differently. w is only written
// on the silent-refresh success path (new access cookie).
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (*identity, *denial) {
	if bearerToken, ok := extractBearerToken(r); ok {
		return s.authenticateBearer(r, bearerToken)
	}
	return s.authenticateCookies(w, r)
}

// authenticateBearer handles the mobile transport. Expired tokens are a hard
// failure: no refresh is ever attempted for header requests, clients must
// re-authenticate explicitly.
func (s *Server) authenticateBearer(r *http.Request, rawToken string) (*identity, *denial) {
	claims, err := s.codec.VerifyAccessToken(rawToken)
	if err != nil {
		return nil, &denial{http.StatusUnauthorized, CodeTokenExpired, "Access token is invalid or expired", false}
	}

	user, deny := s.lookupPrincipal(r.Context(), claims.UserID(), false)
	if deny != nil {
		return nil, deny
	}

	id := &identity{user: user, transport: transportBearer}

	// Best effort: bearer requests carry no refresh token, so resolve the
	// session from the family claim, falling back to the most recently
	// active session for tokens that predate the claim.
	session, err := s.resolveBearerSession(r.Context(), claims.SessionFamily, user.ID)
	if err == nil && session != nil {
		id.sessionID = session.ID
		if err := s.repos.Sessions.Touch(r.Context(), session); err != nil {
			log.Debug().Err(err).Str("session_id", session.ID).Msg("failed to touch session")
		}
	}
	return id, nil
}

func (s *Server) resolveBearerSession(ctx context.Context, family, userID string) (*sessions.Session, error) {
	if family != "" {
		return s.repos.Sessions.FindActive(ctx, family, userID)
	}
	return s.repos.Sessions.FindMostRecentActive(ctx, userID)
}

// authenticateCookies handles the web transport, including the transparent
// refresh of an expired access token.
func (s *Server) authenticateCookies(w http.ResponseWriter, r *http.Request) (*identity, *denial) {
	accessToken, refreshToken := extractCookieTokens(r)
	if accessToken == "" && refreshToken == "" {
		return nil, &denial{http.StatusUnauthorized, CodeNoToken, "No authentication token provided", false}
	}

	if accessToken != "" {
		claims, err := s.codec.VerifyAccessToken(accessToken)
		if err == nil {
			user, deny := s.lookupPrincipal(r.Context(), claims.UserID(), true)
			if deny != nil {
				return nil, deny
			}
			id := &identity{user: user, transport: transportCookie}
			// Opportunistically resolve and touch the session; failure
			// here is non-fatal, the access token already authenticated
			// the request.
			if refreshToken != "" {
				if refreshClaims, err := s.codec.VerifyRefreshToken(refreshToken); err == nil {
					if session, err := s.repos.Sessions.FindActive(r.Context(), refreshClaims.SessionFamily, user.ID); err == nil {
						id.sessionID = session.ID
						if err := s.repos.Sessions.Touch(r.Context(), session); err != nil {
							log.Debug().Err(err).Str("session_id", session.ID).Msg("failed to touch session")
						}
					}
				}
			}
			return id, nil
		}
		if refreshToken == "" {
			return nil, &denial{http.StatusUnauthorized, CodeTokenExpired, "Access token expired and no refresh token provided", true}
		}
	}

	// Access token missing or failed verification and a refresh cookie is
	// present: attempt exactly one transparent refresh.
	user, session, newAccessToken, err := s.auth.Refresh(r.Context(), refreshToken)
	if err != nil {
		return nil, refreshDenial(err)
	}

	s.setAuthCookies(w, newAccessToken, refreshToken) // refresh cookie is reused, not rotated
	metrics.TransparentRefreshes.Inc()

	return &identity{user: user, sessionID: session.ID, transport: transportCookie}, nil
}

// lookupPrincipal loads the user behind verified claims and re-checks the
// account state. Cookies are only cleared for web-transport failures.
func (s *Server) lookupPrincipal(ctx context.Context, userID string, webTransport bool) (*users.User, *denial) {
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, &denial{http.StatusUnauthorized, CodeUserNotFound, "User account no longer exists", webTransport}
		}
		log.Error().Err(err).Str("user_id", userID).Msg("principal lookup failed")
		return nil, &denial{http.StatusInternalServerError, CodeAuthError, "Authentication failed", webTransport}
	}
	if !user.Active {
		return nil, &denial{http.StatusUnauthorized, CodeAccountDeactivated, "Account has been deactivated", webTransport}
	}
	return user, nil
}

func refreshDenial(err error) *denial {
	switch {
	case errors.Is(err, auth.ErrRefreshInvalid):
		return &denial{http.StatusUnauthorized, CodeAllTokensInvalid, "Both access and refresh tokens are invalid", true}
	case errors.Is(err, auth.ErrSessionExpired):
		return &denial{http.StatusUnauthorized, CodeSessionExpired, "Session has expired, please log in again", true}
	case errors.Is(err, auth.ErrUserNotFound):
		return &denial{http.StatusUnauthorized, CodeUserNotFound, "User account no longer exists", true}
	case errors.Is(err, auth.ErrAccountDeactivated):
		return &denial{http.StatusUnauthorized, CodeAccountDeactivated, "Account has been deactivated", true}
	default:
		log.Error().Err(err).Msg("transparent refresh failed")
		return &denial{http.StatusInternalServerError, CodeAuthError, "Authentication failed", true}
	}
}
