package auth

import (
	"strconv"
	"testing"
	"time"

	"passport/config"
	"passport/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_access_secret_key_very_long_for_testing"

func newTestJWTService(t *testing.T) service.TokenService {
	t.Helper()

	cfg := &config.Config{}
	cfg.SecretKey.Access = testSecret

	svc, err := NewJWTService(cfg)
	require.NoError(t, err)

	return svc
}

func TestNewJWTService_RequiresSecret(t *testing.T) {
	cfg := &config.Config{}

	_, err := NewJWTService(cfg)
	assert.Error(t, err)
}

func TestJWTService_IssueAndVerify(t *testing.T) {
	svc := newTestJWTService(t)

	roles := []string{"user", "admin"}
	token, err := svc.Issue(42, "alice@x.com", roles)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice@x.com", claims.Email)
	assert.Equal(t, roles, claims.Roles)

	// Expiry is the fixed 24h policy relative to issuance.
	issuedAt := claims.IssuedAt.Time
	expiresAt := claims.ExpiresAt.Time
	assert.Equal(t, 24*time.Hour, expiresAt.Sub(issuedAt))
}

func TestJWTService_RoleSnapshotIsPerToken(t *testing.T) {
	svc := newTestJWTService(t)

	oldToken, err := svc.Issue(42, "alice@x.com", []string{"user"})
	require.NoError(t, err)
	newToken, err := svc.Issue(42, "alice@x.com", []string{"user", "admin"})
	require.NoError(t, err)

	// The earlier token keeps the role set it was issued with; role changes
	// never propagate into tokens already in flight.
	oldClaims, err := svc.Verify(oldToken)
	require.NoError(t, err)
	assert.Equal(t, []string{"user"}, oldClaims.Roles)

	newClaims, err := svc.Verify(newToken)
	require.NoError(t, err)
	assert.Equal(t, []string{"user", "admin"}, newClaims.Roles)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc := newTestJWTService(t)

	// Hand-build a correctly signed token whose expiry is in the past.
	now := time.Now()
	expired := &service.Claims{
		Email: "alice@x.com",
		Roles: []string{"user"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(42, 10),
			IssuedAt:  jwt.NewNumericDate(now.Add(-48 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-24 * time.Hour)),
		},
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expired).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.Verify(tokenString)
	assert.ErrorIs(t, err, service.ErrTokenExpired)
	assert.NotErrorIs(t, err, service.ErrTokenInvalid)
}

func TestJWTService_TamperedToken(t *testing.T) {
	svc := newTestJWTService(t)

	token, err := svc.Issue(42, "alice@x.com", []string{"user"})
	require.NoError(t, err)

	// Flip the last signature byte.
	tampered := token[:len(token)-1] + string(token[len(token)-1]^1)

	_, err = svc.Verify(tampered)
	assert.ErrorIs(t, err, service.ErrTokenInvalid)
	assert.NotErrorIs(t, err, service.ErrTokenExpired)
}

func TestJWTService_WrongSecret(t *testing.T) {
	svc := newTestJWTService(t)

	otherCfg := &config.Config{}
	otherCfg.SecretKey.Access = "a-completely-different-secret-key"
	otherSvc, err := NewJWTService(otherCfg)
	require.NoError(t, err)

	token, err := otherSvc.Issue(42, "alice@x.com", []string{"user"})
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, service.ErrTokenInvalid)
}

func TestJWTService_GarbageToken(t *testing.T) {
	svc := newTestJWTService(t)

	for _, garbled := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := svc.Verify(garbled)
		assert.ErrorIs(t, err, service.ErrTokenInvalid)
	}
}

func TestJWTService_RejectsNonHMACSigningMethod(t *testing.T) {
	svc := newTestJWTService(t)

	// alg=none tokens must never pass, regardless of payload.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	tokenString, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Verify(tokenString)
	assert.ErrorIs(t, err, service.ErrTokenInvalid)
}
