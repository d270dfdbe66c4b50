package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/product-catalogue/internal/auth"
	"github.com/tuanvumaihuynh/product-catalogue/internal/config"
)

func newManager() *auth.JWTManager {
	return auth.NewJWTManager(config.Auth{
		JWTSecret:  "test-secret",
		JWTIssuer:  "catalogue-tests",
		RolesClaim: "roles",
	})
}

func TestJWTManager(t *testing.T) {
	m := newManager()

	t.Run("Should verify a signed token", func(t *testing.T) {
		token, err := m.Sign("alice", []string{"ROLE_Admin", "User", "Auditor"}, time.Minute)
		require.NoError(t, err)

		identity, err := m.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "alice", identity.Subject)
		assert.Equal(t, []auth.Role{auth.RoleAdmin, auth.RoleUser}, identity.Roles)
	})

	t.Run("Should reject expired tokens", func(t *testing.T) {
		token, err := m.Sign("alice", []string{"Admin"}, -time.Minute)
		require.NoError(t, err)

		_, err = m.Verify(token)
		assert.ErrorIs(t, err, auth.ErrExpiredToken)
	})

	t.Run("Should reject tokens signed with another secret", func(t *testing.T) {
		other := auth.NewJWTManager(config.Auth{JWTSecret: "other", JWTIssuer: "catalogue-tests", RolesClaim: "roles"})
		token, err := other.Sign("alice", []string{"Admin"}, time.Minute)
		require.NoError(t, err)

		_, err = m.Verify(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("Should reject tokens from another issuer", func(t *testing.T) {
		other := auth.NewJWTManager(config.Auth{JWTSecret: "test-secret", JWTIssuer: "someone-else", RolesClaim: "roles"})
		token, err := other.Sign("alice", []string{"Admin"}, time.Minute)
		require.NoError(t, err)

		_, err = m.Verify(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("Should reject unsigned tokens", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"sub":   "alice",
			"exp":   jwt.NewNumericDate(time.Now().Add(time.Minute)),
			"roles": []string{"Admin"},
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = m.Verify(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("Should read a single string roles claim", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":   "bob",
			"iss":   "catalogue-tests",
			"exp":   jwt.NewNumericDate(time.Now().Add(time.Minute)),
			"roles": "User",
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		identity, err := m.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, []auth.Role{auth.RoleUser}, identity.Roles)
	})
}
