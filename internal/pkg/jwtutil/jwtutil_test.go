package jwtutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-of-sufficient-length"

func TestGenerateAndParse(t *testing.T) {
	token, err := GenerateToken(testSecret, time.Hour, 42, "Ada")
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "Ada", claims.Name)
	assert.Equal(t, "42", claims.Subject)
}

func TestParseToken_Rejects(t *testing.T) {
	expired, err := GenerateToken(testSecret, -time.Minute, 1, "x")
	require.NoError(t, err)
	_, err = ParseToken(testSecret, expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	valid, err := GenerateToken(testSecret, time.Hour, 1, "x")
	require.NoError(t, err)
	_, err = ParseToken("another-secret-entirely", valid)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	_, err = ParseToken(testSecret, "not-a-token")
	assert.Error(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseToken(testSecret, noneToken)
	assert.Error(t, err)
}

func TestGenerateToken_EmptySecret(t *testing.T) {
	_, err := GenerateToken("", time.Hour, 1, "x")
	assert.Error(t, err)
}
