package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAdminToken(t *testing.T) {
	service := NewJwtService("test-secret")
	uid := uuid.New()

	tokenString, err := service.CreateAdminToken(uid, "admin@example.com", "owner")
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	parsed, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(*AdminClaims)
	require.True(t, ok)
	assert.Equal(t, uid.String(), claims.Subject)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, "owner", claims.Permissions)
}

func TestCreateAdminToken_Expiry(t *testing.T) {
	service := NewJwtService("test-secret", WithExpiry(time.Minute))

	tokenString, err := service.CreateAdminToken(uuid.New(), "admin@example.com", "editor")
	require.NoError(t, err)

	parsed, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)

	claims := parsed.Claims.(*AdminClaims)
	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	assert.Equal(t, time.Minute, ttl)
}

func TestCreateAdminToken_WrongSecretRejected(t *testing.T) {
	service := NewJwtService("test-secret")

	tokenString, err := service.CreateAdminToken(uuid.New(), "admin@example.com", "editor")
	require.NoError(t, err)

	_, err = jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte("other-secret"), nil
	})
	assert.Error(t, err)
}
