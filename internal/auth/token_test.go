package auth

import (
	"testing"
	"time"

	"github.com/franciscosanchezn/freshbite-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParseUserToken(t *testing.T) {
	secret := []byte(testSecret)
	now := time.Now()
	user := &models.User{ID: 42, Role: models.RoleAdmin}

	token, err := IssueUserToken(secret, user, time.Hour, now)
	require.NoError(t, err)

	claims, err := ParseToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, now.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())

	t.Run("role defaults to user", func(t *testing.T) {
		token, err := IssueUserToken(secret, &models.User{ID: 7}, time.Hour, now)
		require.NoError(t, err)
		claims, err := ParseToken(secret, token)
		require.NoError(t, err)
		assert.Equal(t, models.RoleUser, claims.Role)
	})

	t.Run("no user", func(t *testing.T) {
		_, err := IssueUserToken(secret, &models.User{}, time.Hour, now)
		assert.Error(t, err)
	})
}

func TestParseTokenRejects(t *testing.T) {
	secret := []byte(testSecret)
	now := time.Now()
	user := &models.User{ID: 1, Role: models.RoleUser}

	t.Run("expired", func(t *testing.T) {
		token, err := IssueUserToken(secret, user, time.Hour, now.Add(-2*time.Hour))
		require.NoError(t, err)
		_, err = ParseToken(secret, token)
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := IssueUserToken([]byte("another-secret"), user, time.Hour, now)
		require.NoError(t, err)
		_, err = ParseToken(secret, token)
		assert.Error(t, err)
	})

	t.Run("other algorithm", func(t *testing.T) {
		claims := Claims{UserID: 1, Role: models.RoleUser, RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
		require.NoError(t, err)
		_, err = ParseToken(secret, token)
		assert.Error(t, err)
	})

	t.Run("missing uid", func(t *testing.T) {
		claims := Claims{Role: models.RoleUser, RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
		require.NoError(t, err)
		_, err = ParseToken(secret, token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseToken(secret, "not-a-token")
		assert.Error(t, err)
	})
}
