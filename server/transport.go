package server

import (
	"net/http"
	"strings"
)

// Cookie names for the web transport. Clearing must use attributes matching
// ClearAuthCookies exactly or browsers silently keep the cookie.
const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// extractBearerToken recognizes "Authorization: Bearer <token>". Presence of
// the header marks the request as mobile: it takes precedence over cookies and
// selects the hard-failure branch on expiry.
func extractBearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// extractCookieTokens returns the access and refresh tokens from the web
// transport cookies. Either may be empty.
func extractCookieTokens(r *http.Request) (accessToken, refreshToken string) {
	if c, err := r.Cookie(accessTokenCookie); err == nil {
		accessToken = c.Value
	}
	if c, err := r.Cookie(refreshTokenCookie); err == nil {
		refreshToken = c.Value
	}
	return accessToken, refreshToken
}

func (s *Server) cookieSameSite() http.SameSite {
	if s.config.IsProduction() {
		return http.SameSiteStrictMode
	}
	return http.SameSiteLaxMode
}

// setAuthCookies sets both auth cookies on the response. The access cookie
// lives as long as the access token, the refresh cookie as long as the
// refresh token.
func (s *Server) setAuthCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(s.codec.AccessTTL().Seconds()),
		HttpOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: s.cookieSameSite(),
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   int(s.codec.RefreshTTL().Seconds()),
		HttpOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: s.cookieSameSite(),
	})
}

// clearAuthCookies removes both auth cookies with attributes matching
// setAuthCookies.
func (s *Server) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{accessTokenCookie, refreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   s.config.IsProduction(),
			SameSite: s.cookieSameSite(),
		})
	}
}
