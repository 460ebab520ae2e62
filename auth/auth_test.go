package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planningos/quota-engine/auth"
)

func TestTokenRoundTrip(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)

	token, err := m.GenerateToken("u1", "anna@example.org", "Anna Agent", auth.RoleAgent)
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "anna@example.org", claims.Email)
	assert.Equal(t, auth.RoleAgent, claims.Role)
}

func TestValidateToken_Failures(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)
	other := auth.NewManager("other-secret", time.Hour)

	token, err := m.GenerateToken("u1", "anna@example.org", "Anna", auth.RoleAgent)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken, "wrong secret")

	_, err = m.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	expired := auth.NewManager("test-secret", -time.Minute)
	token, err = expired.GenerateToken("u1", "anna@example.org", "Anna", auth.RoleAgent)
	require.NoError(t, err)
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken, "expired")
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.NoError(t, auth.CheckPassword(hash, "s3cret"))
	assert.ErrorIs(t, auth.CheckPassword(hash, "wrong"), auth.ErrInvalidCredentials)
}

func TestMiddleware(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)
	token, err := m.GenerateToken("u1", "anna@example.org", "Anna", auth.RoleAgent)
	require.NoError(t, err)

	var seen *auth.Claims
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	t.Run("valid token passes and exposes claims", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		m.RequireAuth(inner).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "u1", seen.UserID)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		m.RequireAuth(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("role gate", func(t *testing.T) {
		guarded := m.RequireAuth(auth.RequireRole(auth.RoleAdmin, auth.RolePlanner)(inner))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		guarded.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code, "agents are not planners")

		plannerToken, err := m.GenerateToken("u2", "bert@example.org", "Bert", auth.RolePlanner)
		require.NoError(t, err)
		rec = httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+plannerToken)
		guarded.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
