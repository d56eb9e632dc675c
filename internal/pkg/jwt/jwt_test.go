package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	secret := []byte("test-secret")
	token, err := GenerateToken("user-1", "a@example.com", "Ada Lovelace", "otp", secret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token, secret)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "a@example.com", claims.Email)
	require.Equal(t, "Ada Lovelace", claims.FullName)
	require.Equal(t, "otp", claims.Provider)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("user-1", "a@example.com", "", "otp", []byte("secret-a"), time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, []byte("secret-b"))
	require.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	secret := []byte("test-secret")
	token, err := GenerateToken("user-1", "a@example.com", "", "otp", secret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, secret)
	require.Error(t, err)
}

func TestParseRejectsCorrupted(t *testing.T) {
	secret := []byte("test-secret")
	token, err := GenerateToken("user-1", "a@example.com", "", "otp", secret, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token+"x", secret)
	require.Error(t, err)
	_, err = ParseToken("not-a-token", secret)
	require.Error(t, err)
}
