package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/urbanfix/go-civic-auth/internal/config"
	"github.com/urbanfix/go-civic-auth/server"
	"github.com/urbanfix/go-civic-auth/sessions/repofakes"
	"github.com/urbanfix/go-civic-auth/token"
	"github.com/urbanfix/go-civic-auth/users"
	"github.com/urbanfix/go-civic-auth/users/repofake"

	authpkg "github.com/urbanfix/go-civic-auth/auth"
)

const (
	testPassword = "Sup3rSecret"
	accessTTL    = 15 * time.Minute
	refreshTTL   = 7 * 24 * time.Hour
)

type envelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

type testFixture struct {
	server      *server.Server
	codec       *token.Codec
	userRepo    *repofake.FakeUserRepo
	sessionRepo *repofakes.FakeSessionRepo
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	codec, err := token.NewCodec(token.Config{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
	})
	require.NoError(t, err)

	userRepo := repofake.NewFakeUserRepo()
	sessionRepo := repofakes.NewFakeSessionRepo()

	cfg := &config.Config{
		AppName:         "civic-auth-test",
		Addr:            ":0",
		Env:             "test",
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: refreshTTL,
		BcryptCost:      bcrypt.MinCost,
	}

	srv, err := server.New(cfg, authpkg.Repos{Users: userRepo, Sessions: sessionRepo}, codec)
	require.NoError(t, err)

	return &testFixture{
		server:      srv,
		codec:       codec,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
	}
}

func (f *testFixture) createTestUser(t *testing.T, id string, role users.Role, active bool) *users.User {
	t.Helper()

	hash, err := users.HashPassword(testPassword, bcrypt.MinCost)
	require.NoError(t, err)

	user := &users.User{
		ID:           id,
		Email:        id + "@example.com",
		FullName:     "Test User",
		Role:         role,
		PasswordHash: hash,
		Active:       active,
	}
	require.NoError(t, f.userRepo.Upsert(context.Background(), user))
	return user
}

// loginWeb performs a cookie-transport login and returns the response cookies.
func (f *testFixture) loginWeb(t *testing.T, email string) []*http.Cookie {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"email": email, "password": testPassword})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	return cookies
}

// createBearerSession creates a session directly and issues a matching access token.
func (f *testFixture) createBearerSession(t *testing.T, user *users.User) (accessToken, sessionID string) {
	t.Helper()

	family := uuid.New().String()
	session, err := f.sessionRepo.Create(context.Background(), user.ID, family, refreshTTL)
	require.NoError(t, err)

	accessToken, err = f.codec.IssueAccessToken(user, family)
	require.NoError(t, err)
	return accessToken, session.ID
}

// issueExpiredAccessToken issues an access token that expired five minutes ago.
func (f *testFixture) issueExpiredAccessToken(t *testing.T, user *users.User, family string) string {
	t.Helper()

	token.NowTimeFunc = func() time.Time { return time.Now().Add(-accessTTL - 5*time.Minute) }
	defer func() { token.NowTimeFunc = time.Now }()

	raw, err := f.codec.IssueAccessToken(user, family)
	require.NoError(t, err)
	return raw
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func requireDenied(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, rec.Code)
	env := decodeEnvelope(t, rec)
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	require.Equal(t, code, env.Error.Code)
}

func requireCookiesCleared(t *testing.T, cookies []*http.Cookie) {
	t.Helper()
	for _, name := range []string{"accessToken", "refreshToken"} {
		cleared := cookieByName(cookies, name)
		require.NotNil(t, cleared, "expected %s clearing cookie", name)
		require.Empty(t, cleared.Value)
		require.Less(t, cleared.MaxAge, 0)
	}
}

func TestNoTokenDenied(t *testing.T) {
	f := setupTestFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	requireDenied(t, rec, http.StatusUnauthorized, server.CodeNoToken)
}

func TestLoginSetsCookiesWithConfiguredLifetimes(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, "web-user", users.RoleCitizen, true)

	cookies := f.loginWeb(t, "web-user@example.com")

	access := cookieByName(cookies, "accessToken")
	require.NotNil(t, access)
	require.Equal(t, int(accessTTL.Seconds()), access.MaxAge)
	require.True(t, access.HttpOnly)

	refresh := cookieByName(cookies, "refreshToken")
	require.NotNil(t, refresh)
	require.Equal(t, int(refreshTTL.Seconds()), refresh.MaxAge)
	require.True(t, refresh.HttpOnly)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, "web-user", users.RoleCitizen, true)

	body, _ := json.Marshal(map[string]string{"email": "web-user@example.com", "password": "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	requireDenied(t, rec, http.StatusUnauthorized, server.CodeNotAuthenticated)
}

func TestMobileLoginReturnsTokensInBody(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, "mob-user", users.RoleCitizen, true)

	body, _ := json.Marshal(map[string]string{"email": "mob-user@example.com", "password": testPassword})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("X-Client", "mobile")
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Result().Cookies())

	env := decodeEnvelope(t, rec)
	tokens, ok := env.Data["tokens"].(map[string]any)
	require.True(t, ok)
	require.NotEmpty(t, tokens["access_token"])
	require.NotEmpty(t, tokens["refresh_token"])
}

// Scenario: a request after the access TTL with a valid refresh cookie and an
// active session silently succeeds with a fresh access cookie, refresh cookie
// unchanged.
func TestTransparentRefreshOnWebTransport(t *testing.T) {
	f := setupTestFixture(t)
	user := f.createTestUser(t, "web-user", users.RoleCitizen, true)
	cookies := f.loginWeb(t, "web-user@example.com")

	refresh := cookieByName(cookies, "refreshToken")
	claims, err := f.codec.VerifyRefreshToken(refresh.Value)
	require.NoError(t, err)

	expiredAccess := f.issueExpiredAccessToken(t, user, claims.SessionFamily)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: expiredAccess})
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refresh.Value})
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	respCookies := rec.Result().Cookies()
	newAccess := cookieByName(respCookies, "accessToken")
	require.NotNil(t, newAccess)
	require.NotEqual(t, expiredAccess, newAccess.Value)

	newClaims, err := f.codec.VerifyAccessToken(newAccess.Value)
	require.NoError(t, err)
	require.Equal(t, user.ID, newClaims.UserID())
	require.Equal(t, claims.SessionFamily, newClaims.SessionFamily)

	// Refresh token is reused, not rotated.
	respRefresh := cookieByName(respCookies, "refreshToken")
	require.NotNil(t, respRefresh)
	require.Equal(t, refresh.Value, respRefresh.Value)

	// The original session record was touched, not replaced.
	require.Equal(t, 1, f.sessionRepo.Count())
}

// Scenario: same as above but the session was revoked in between.
func TestRevokedSessionDeniesRefresh(t *testing.T) {
	f := setupTestFixture(t)
	user := f.createTestUser(t, "web-user", users.RoleCitizen, true)
	cookies := f.loginWeb(t, "web-user@example.com")

	refresh := cookieByName(cookies, "refreshToken")
	claims, err := f.codec.VerifyRefreshToken(refresh.Value)
	require.NoError(t, err)

	session, err := f.sessionRepo.FindActive(context.Background(), claims.SessionFamily, user.ID)
	require.NoError(t, err)
	require.NoError(t, f.sessionRepo.Deactivate(context.Background(), session))

	expiredAccess := f.issueExpiredAccessToken(t, user, claims.SessionFamily)
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: expiredAccess})
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refresh.Value})
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	requireDenied(t, rec, http.StatusUnauthorized, server.CodeSessionExpired)
	requireCookiesCleared(t, rec.Result().Cookies())
}

func TestExpiredAccessWithoutRefreshCookie(t *testing.T) {
	f := setupTestFixture(t)
	user := f.createTestUser(t, "web-user", users.RoleCitizen, true)

	expiredAccess := f.issueExpiredAccessToken(t, user, "some-family")
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: expiredAccess})
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	requireDenied(t, rec, http.StatusUnauthorized, server.CodeTokenExpired)
	requireCookiesCleared(t, rec.Result().Cookies())
}

func TestExpiredAccessWithGarbageRefresh(t *testing.T) {
	f := setupTestFixture(t)
	user := f.createTestUser(t, "web-user", users.RoleCitizen, true)

	expiredAccess := f.issueExpiredAccessToken(t, user, "some-family")
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: expiredAccess})
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "garbage"})
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	requireDenied(t, rec, http.StatusUnauthorized, server.CodeAllTokensInvalid)
	requireCookiesCleared(t, rec.Result().Cookies())
}

// Scenario: a valid bearer token succeeds with no cookie operations.
func TestBearerRequestSucceedsWithoutCookies(t *testing.T) {
	f := setupTestFixture(t)
	user := f.createTestUser(t, "mob-user", users.RoleCitizen, true)
	accessToken, sessionID := f.createBearerSession(t, user)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Result().Cookies())

	env := decodeEnvelope(t, rec)
	require.Equal(t, sessionID, env.Data["session_id"])
	userData, ok := env.Data["user"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, user.ID, userData["id"])
}

// An expired bearer token is a hard failure: no refresh attempt is made even
// though an active session exists for the user.
func TestExpiredBearerTokenNeverRefreshes(t *testing.T) {
	f := setupTestFixture(t)
	user := f.createTestUser(t, "mob-user", users.RoleCitizen, true)
	_, sessionID := f.createBearerSession(t, user)

	session, ok := f.sessionRepo.Get(sessionID)
	require.True(t, ok)
	expiredAccess := f.issueExpiredAccessToken(t, user, session.TokenFamily)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+expiredAccess)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	requireDenied(t, rec, http.StatusUnauthorized, server.CodeTokenExpired)
	require.Empty(t, rec.Result().Cookies())

	// Session untouched by the denied request.
	after, ok := f.sessionRepo.Get(sessionID)
	require.True(t, ok)
	require.True(t, after.IsActive)
	require.Equal(t, session.LastActiveAt, after.LastActiveAt)
}

// Header takes precedence over cookies when both are present.
func TestBearerHeaderWinsOverCookies(t *testing.T) {
	f := setupTestFixture(t)
	user := f.createTestUser(t, "dual-user", users.RoleCitizen, true)
	cookies := f.loginWeb(t, "dual-user@example.com")

	expiredAccess := f.issueExpiredAccessToken(t, user, "any-family")
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+expiredAccess)
	for _, c := range cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	// Mobile branch: hard failure, no transparent refresh from the cookies.
	requireDenied(t, rec, http.StatusUnauthorized, server.CodeTokenExpired)
}

// A deactivated account is denied even with a fully valid access token.
func TestDeactivatedAccountDenied(t *testing.T) {
	f := setupTestFixture(t)
	user := f.createTestUser(t, "gone-user", users.RoleCitizen, true)
	accessToken, _ := f.createBearerSession(t, user)

	user.Active = false
	require.NoError(t, f.userRepo.Upsert(context.Background(), user))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	requireDenied(t, rec, http.StatusUnauthorized, server.CodeAccountDeactivated)
}

func TestUnknownPrincipalDenied(t *testing.T) {
	f := setupTestFixture(t)
	ghost := &users.User{ID: "ghost", Email: "ghost@example.com", Role: users.RoleCitizen}
	raw, err := f.codec.IssueAccessToken(ghost, "family")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	requireDenied(t, rec, http.StatusUnauthorized, server.CodeUserNotFound)
}

// Scenario: a role-gated admin route rejects a citizen with 403, not 401.
func TestRoleGateDeniesWithForbidden(t *testing.T) {
	f := setupTestFixture(t)
	citizen := f.createTestUser(t, "citizen", users.RoleCitizen, true)
	accessToken, _ := f.createBearerSession(t, citizen)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/users/whoever/revoke-sessions", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	requireDenied(t, rec, http.StatusForbidden, server.CodeInsufficientPermissions)
}

func TestAdminCanRevokeAnyUsersSessions(t *testing.T) {
	f := setupTestFixture(t)
	admin := f.createTestUser(t, "admin", users.RoleAdmin, true)
	citizen := f.createTestUser(t, "citizen", users.RoleCitizen, true)
	adminToken, _ := f.createBearerSession(t, admin)
	_, citizenSessionID := f.createBearerSession(t, citizen)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/users/citizen/revoke-sessions", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	session, ok := f.sessionRepo.Get(citizenSessionID)
	require.True(t, ok)
	require.False(t, session.IsActive)
}

func TestSelfOrAdminOwnership(t *testing.T) {
	f := setupTestFixture(t)
	citizen := f.createTestUser(t, "citizen", users.RoleCitizen, true)
	accessToken, _ := f.createBearerSession(t, citizen)

	// Own resource: permitted.
	req := httptest.NewRequest(http.MethodPost, "/api/users/citizen/logout-all", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// Someone else's resource: denied with 403.
	accessToken, _ = f.createBearerSession(t, citizen)
	req = httptest.NewRequest(http.MethodPost, "/api/users/other-user/logout-all", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rec = httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	requireDenied(t, rec, http.StatusForbidden, server.CodeResourceAccessDenied)
}

func TestOptionalAuthSwallowsFailures(t *testing.T) {
	f := setupTestFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, false, env.Data["authenticated"])

	req = httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env = decodeEnvelope(t, rec)
	require.Equal(t, false, env.Data["authenticated"])
}

func TestOptionalAuthAttachesIdentity(t *testing.T) {
	f := setupTestFixture(t)
	user := f.createTestUser(t, "citizen", users.RoleCitizen, true)
	accessToken, _ := f.createBearerSession(t, user)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, true, env.Data["authenticated"])
}

func TestLogoutDeactivatesSessionAndClearsCookies(t *testing.T) {
	f := setupTestFixture(t)
	user := f.createTestUser(t, "web-user", users.RoleCitizen, true)
	cookies := f.loginWeb(t, "web-user@example.com")

	refresh := cookieByName(cookies, "refreshToken")
	claims, err := f.codec.VerifyRefreshToken(refresh.Value)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	for _, c := range cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	requireCookiesCleared(t, rec.Result().Cookies())

	_, err = f.sessionRepo.FindActive(context.Background(), claims.SessionFamily, user.ID)
	require.Error(t, err)
}

func TestExplicitRefreshEndpointForMobile(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, "mob-user", users.RoleCitizen, true)

	body, _ := json.Marshal(map[string]string{"email": "mob-user@example.com", "password": testPassword})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("X-Client", "mobile")
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	tokens := env.Data["tokens"].(map[string]any)
	refreshToken := tokens["refresh_token"].(string)

	body, _ = json.Marshal(map[string]string{"refresh_token": refreshToken})
	req = httptest.NewRequest(http.MethodPost, "/api/auth/refresh", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Result().Cookies())

	env = decodeEnvelope(t, rec)
	newTokens := env.Data["tokens"].(map[string]any)
	newAccess := newTokens["access_token"].(string)
	_, err := f.codec.VerifyAccessToken(newAccess)
	require.NoError(t, err)
}

func TestRefreshEndpointRejectsRevokedSession(t *testing.T) {
	f := setupTestFixture(t)
	user := f.createTestUser(t, "mob-user", users.RoleCitizen, true)

	family := uuid.New().String()
	session, err := f.sessionRepo.Create(context.Background(), user.ID, family, refreshTTL)
	require.NoError(t, err)
	refreshToken, err := f.codec.IssueRefreshToken(user, family)
	require.NoError(t, err)

	require.NoError(t, f.sessionRepo.Deactivate(context.Background(), session))

	body, _ := json.Marshal(map[string]string{"refresh_token": refreshToken})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	requireDenied(t, rec, http.StatusUnauthorized, server.CodeSessionExpired)
	// Body-transport refresh never clears cookies.
	require.Empty(t, rec.Result().Cookies())
}

func TestMissingAccessCookieWithValidRefreshStillAuthenticates(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, "web-user", users.RoleCitizen, true)
	cookies := f.loginWeb(t, "web-user@example.com")
	refresh := cookieByName(cookies, "refreshToken")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refresh.Value})
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	newAccess := cookieByName(rec.Result().Cookies(), "accessToken")
	require.NotNil(t, newAccess)
	require.NotEmpty(t, newAccess.Value)
}

func TestHealthz(t *testing.T) {
	f := setupTestFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := setupTestFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterEndpoint(t *testing.T) {
	f := setupTestFixture(t)

	body, _ := json.Marshal(map[string]string{
		"email":     "new@example.com",
		"full_name": "New Citizen",
		"password":  testPassword,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Duplicate registration conflicts.
	req = httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusConflict, rec.Code)
}
