package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDashboardToken_RoundTrip(t *testing.T) {
	tok, err := NewDashboardToken("secret", "123456789012345678", 15)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)

	parsed, err := jwt.Parse(tok.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "123456789012345678", claims["sub"])

	assert.WithinDuration(t, time.Now().Add(15*time.Minute), tok.Exp, 5*time.Second)
}

func TestNewDashboardToken_WrongSecretRejected(t *testing.T) {
	tok, err := NewDashboardToken("secret", "1", 15)
	require.NoError(t, err)

	_, err = jwt.Parse(tok.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("other-secret"), nil
	})
	assert.Error(t, err)
}
