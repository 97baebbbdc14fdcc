package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"passport/internal/delivery/http/response"
	"passport/internal/domain/entity"
	"passport/internal/domain/service"
	mockSvc "passport/internal/mocks/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthTestContext(t *testing.T, authHeader string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()

	return e.NewContext(req, rec), rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()

	var envelope response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	return envelope
}

// countingHandler records whether the wrapped handler ran.
func countingHandler(calls *int) echo.HandlerFunc {
	return func(c echo.Context) error {
		*calls++

		return c.NoContent(http.StatusOK)
	}
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	tokenSvc := mockSvc.NewMockTokenService(t)
	m := NewAuthMiddleware(tokenSvc)

	c, rec := newAuthTestContext(t, "")

	calls := 0
	err := m.Authenticate(countingHandler(&calls))(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, calls)

	envelope := decodeEnvelope(t, rec)
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "TOKEN_MISSING", envelope.Error.Code)
}

func TestAuthenticate_NonBearerHeader(t *testing.T) {
	tokenSvc := mockSvc.NewMockTokenService(t)
	m := NewAuthMiddleware(tokenSvc)

	c, rec := newAuthTestContext(t, "Basic dXNlcjpwYXNz")

	calls := 0
	err := m.Authenticate(countingHandler(&calls))(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, calls)
	assert.Equal(t, "TOKEN_INVALID", decodeEnvelope(t, rec).Error.Code)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	tokenSvc := mockSvc.NewMockTokenService(t)
	tokenSvc.On("Verify", "bad.token").Return(nil, service.ErrTokenInvalid)
	m := NewAuthMiddleware(tokenSvc)

	c, rec := newAuthTestContext(t, "Bearer bad.token")

	calls := 0
	err := m.Authenticate(countingHandler(&calls))(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, calls)
	assert.Equal(t, "TOKEN_INVALID", decodeEnvelope(t, rec).Error.Code)
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	tokenSvc := mockSvc.NewMockTokenService(t)
	tokenSvc.On("Verify", "stale.token").Return(nil, service.ErrTokenExpired)
	m := NewAuthMiddleware(tokenSvc)

	c, rec := newAuthTestContext(t, "Bearer stale.token")

	calls := 0
	err := m.Authenticate(countingHandler(&calls))(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, calls)
	// Expired gets its own code so clients know re-login fixes it.
	assert.Equal(t, "TOKEN_EXPIRED", decodeEnvelope(t, rec).Error.Code)
}

func TestAuthenticate_ValidTokenAttachesIdentity(t *testing.T) {
	tokenSvc := mockSvc.NewMockTokenService(t)
	tokenSvc.On("Verify", "good.token").Return(&service.Claims{
		UserID:           42,
		Email:            "alice@x.com",
		Roles:            []string{"user", "admin"},
		RegisteredClaims: jwt.RegisteredClaims{Subject: "42"},
	}, nil)
	m := NewAuthMiddleware(tokenSvc)

	c, rec := newAuthTestContext(t, "Bearer good.token")

	calls := 0
	err := m.Authenticate(countingHandler(&calls))(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, calls)

	userID, ok := UserIDFromContext(c)
	require.True(t, ok)
	assert.Equal(t, int64(42), userID)

	roles, ok := RolesFromContext(c)
	require.True(t, ok)
	assert.Equal(t, entity.Roles{entity.RoleUser, entity.RoleAdmin}, roles)
	assert.Equal(t, "alice@x.com", c.Get(ContextKeyEmail))
}

func TestRequireRole_MissingRoleInfo(t *testing.T) {
	tokenSvc := mockSvc.NewMockTokenService(t)
	m := NewAuthMiddleware(tokenSvc)

	// RequireRole used without Authenticate: no roles on the context.
	c, rec := newAuthTestContext(t, "")

	calls := 0
	err := m.RequireRole(entity.RoleAdmin)(countingHandler(&calls))(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, calls)
	assert.Equal(t, "ROLE_MISSING", decodeEnvelope(t, rec).Error.Code)
}

func TestRequireRole_RoleNotHeld(t *testing.T) {
	tokenSvc := mockSvc.NewMockTokenService(t)
	m := NewAuthMiddleware(tokenSvc)

	c, rec := newAuthTestContext(t, "")
	c.Set(ContextKeyRoles, entity.Roles{entity.RoleUser})

	calls := 0
	err := m.RequireRole(entity.RoleAdmin)(countingHandler(&calls))(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, calls)
	assert.Equal(t, "ROLE_REQUIRED", decodeEnvelope(t, rec).Error.Code)
}

func TestRequireRole_RoleHeld(t *testing.T) {
	tokenSvc := mockSvc.NewMockTokenService(t)
	m := NewAuthMiddleware(tokenSvc)

	c, rec := newAuthTestContext(t, "")
	c.Set(ContextKeyRoles, entity.Roles{entity.RoleUser, entity.RoleAdmin})

	calls := 0
	err := m.RequireRole(entity.RoleAdmin)(countingHandler(&calls))(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, calls)
}

func TestAuthenticateThenRequireRole_FullChain(t *testing.T) {
	tokenSvc := mockSvc.NewMockTokenService(t)
	tokenSvc.On("Verify", "admin.token").Return(&service.Claims{
		UserID: 7,
		Email:  "root@x.com",
		Roles:  []string{"user", "admin"},
	}, nil)
	m := NewAuthMiddleware(tokenSvc)

	c, rec := newAuthTestContext(t, "Bearer admin.token")

	calls := 0
	chain := m.Authenticate(m.RequireRole(entity.RoleAdmin)(countingHandler(&calls)))
	err := chain(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, calls)
}
