package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rupayana/backend/internal/models"
)

func TestGenerateSignedToken(t *testing.T) {
	tm := NewTokenManager("test-secret", "rupayana-test", 30*time.Minute)

	signed, err := tm.Generate(models.User{ID: 42, Name: "Asha", Email: "asha@example.com"})
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "rupayana-test", claims["iss"])
	assert.Equal(t, "42", claims["sub"])
	assert.Equal(t, "asha@example.com", claims["email"])
}

func TestGenerateRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("test-secret", "rupayana-test", time.Minute)
	signed, err := tm.Generate(models.User{ID: 1})
	require.NoError(t, err)

	_, err = jwt.Parse(signed, func(token *jwt.Token) (any, error) {
		return []byte("other-secret"), nil
	})
	assert.Error(t, err)
}
