// AngelaMos | 2026
// jwt_test.go

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/authz"
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/config"
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/core"
)

func newTestJWTManager(t *testing.T) *JWTManager {
	t.Helper()

	dir := t.TempDir()
	priv := filepath.Join(dir, "keys", "private.pem")
	pub := filepath.Join(dir, "keys", "public.pem")
	require.NoError(t, GenerateKeyPair(priv, pub))

	m, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath:    priv,
		PublicKeyPath:     pub,
		AccessTokenExpire: 168 * time.Hour,
		Issuer:            "smart-cafeteria",
		Audience:          "smart-cafeteria-api",
	})
	require.NoError(t, err)
	return m
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newTestJWTManager(t)

	token, issued, err := m.CreateAccessToken(TokenClaims{
		UserID: 42,
		Role:   authz.RoleStudent,
		Name:   "Mia",
		Email:  "mia@campus.edu",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, issued.TokenID)
	assert.WithinDuration(t, time.Now().Add(168*time.Hour), issued.ExpiresAt, time.Minute)

	claims, err := m.VerifyAccessToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, authz.RoleStudent, claims.Role)
	assert.Equal(t, "Mia", claims.Name)
	assert.Equal(t, "mia@campus.edu", claims.Email)
	assert.Equal(t, issued.TokenID, claims.TokenID)
}

func TestVerifyExpiredToken(t *testing.T) {
	m := newTestJWTManager(t)

	past := time.Now().Add(-200 * time.Hour)
	m.now = func() time.Time { return past }
	token, _, err := m.CreateAccessToken(TokenClaims{UserID: 1, Role: authz.RoleFaculty})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.VerifyAccessToken(context.Background(), token)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	issuer := newTestJWTManager(t)
	verifier := newTestJWTManager(t)

	token, _, err := issuer.CreateAccessToken(TokenClaims{UserID: 1, Role: authz.RoleStaff})
	require.NoError(t, err)

	_, err = verifier.VerifyAccessToken(context.Background(), token)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)

	_, err = verifier.VerifyAccessToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestJWKSHandler(t *testing.T) {
	m := newTestJWTManager(t)

	rec := httptest.NewRecorder()
	m.GetJWKSHandler()(rec, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var set struct {
		Keys []map[string]any `json:"keys"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &set))
	require.Len(t, set.Keys, 1)
	assert.Equal(t, m.GetKeyID(), set.Keys[0]["kid"])
	assert.NotContains(t, set.Keys[0], "d")
}
