package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestInspectToken_JWT(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	exp := now.Add(time.Hour)
	tok := signedToken(t, jwt.MapClaims{"sub": "u1", "exp": exp.Unix()})

	info := InspectToken(tok, now)
	assert.True(t, info.IsJWT)
	assert.Equal(t, "u1", info.Subject)
	assert.True(t, info.ExpiresAt.Equal(exp))
	assert.False(t, info.Expired)

	info = InspectToken(tok, exp.Add(time.Second))
	assert.True(t, info.Expired)
}

func TestInspectToken_NoExpiry(t *testing.T) {
	info := InspectToken(signedToken(t, jwt.MapClaims{"sub": "u1"}), time.Now())
	assert.True(t, info.IsJWT)
	assert.True(t, info.ExpiresAt.IsZero())
	assert.False(t, info.Expired)
}

func TestInspectToken_Opaque(t *testing.T) {
	assert.Equal(t, TokenInfo{}, InspectToken("b3BhcXVl-token", time.Now()))
	assert.Equal(t, TokenInfo{}, InspectToken("", time.Now()))
}
