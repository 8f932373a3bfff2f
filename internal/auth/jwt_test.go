// AngelaMos | 2026
// jwt_test.go

package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/neighborly/internal/config"
	"github.com/carterperez-dev/neighborly/internal/core"
)

func testJWTConfig(t *testing.T) config.JWTConfig {
	t.Helper()

	dir := t.TempDir()
	cfg := config.JWTConfig{
		PrivateKeyPath:    filepath.Join(dir, "private.pem"),
		PublicKeyPath:     filepath.Join(dir, "public.pem"),
		AccessTokenExpire: 15 * time.Minute,
		Issuer:            "neighborly",
		Audience:          "neighborly-api",
	}
	require.NoError(t, GenerateKeyPair(cfg.PrivateKeyPath, cfg.PublicKeyPath))
	return cfg
}

func newTestJWTManager(t *testing.T) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(testJWTConfig(t))
	require.NoError(t, err)
	return m
}

func TestJWTManager_ReplicasShareKeyID(t *testing.T) {
	cfg := testJWTConfig(t)

	first, err := NewJWTManager(cfg)
	require.NoError(t, err)
	second, err := NewJWTManager(cfg)
	require.NoError(t, err)

	assert.NotEmpty(t, first.GetKeyID())
	assert.Equal(t, first.GetKeyID(), second.GetKeyID())

	token, _, err := first.CreateAccessToken(TokenClaims{UserID: "u1", Role: core.RoleCustomer, CommunityID: "c1"})
	require.NoError(t, err)
	_, err = second.VerifyAccessToken(context.Background(), token)
	assert.NoError(t, err)
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := newTestJWTManager(t)

	token, expiresAt, err := m.CreateAccessToken(TokenClaims{
		UserID:      "p1",
		Role:        core.RoleProvider,
		CommunityID: "c1",
	})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := m.VerifyAccessToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "p1", claims.UserID)
	assert.Equal(t, "provider", claims.Role)
	assert.Equal(t, "c1", claims.CommunityID)
	assert.Equal(t, core.Caller{ID: "p1", Role: core.RoleProvider, CommunityID: "c1"}, claims.Caller())
}

func TestJWTManager_AdminWithoutCommunity(t *testing.T) {
	m := newTestJWTManager(t)

	token, _, err := m.CreateAccessToken(TokenClaims{UserID: "a1", Role: core.RoleAdmin})
	require.NoError(t, err)

	claims, err := m.VerifyAccessToken(context.Background(), token)
	require.NoError(t, err)
	assert.Empty(t, claims.CommunityID)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := newTestJWTManager(t)
	other := newTestJWTManager(t)

	resident := TokenClaims{UserID: "u1", Role: core.RoleCustomer, CommunityID: "c1"}

	foreign, _, err := other.CreateAccessToken(resident)
	require.NoError(t, err)

	homeless, _, err := m.CreateAccessToken(TokenClaims{UserID: "u1", Role: core.RoleCustomer})
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(-time.Hour) }
	stale, _, err := m.CreateAccessToken(resident)
	require.NoError(t, err)
	m.now = time.Now

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"signed by another key", foreign},
		{"expired", stale},
		{"customer without community", homeless},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.VerifyAccessToken(context.Background(), tt.token)
			require.Error(t, err)
			assert.True(t,
				errors.Is(err, core.ErrTokenInvalid) || errors.Is(err, core.ErrTokenExpired),
				"got %v", err,
			)
			assert.Equal(t, core.KindUnauthorized, core.ErrorKind(err))
		})
	}
}

func TestJWTManager_JWKS(t *testing.T) {
	m := newTestJWTManager(t)

	rec := httptest.NewRecorder()
	m.GetJWKSHandler()(rec, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), m.GetKeyID())
	assert.NotContains(t, rec.Body.String(), `"d"`)
}
