package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenAndParseToken(t *testing.T) {
	secret := []byte("test-secret")

	aToken, rToken, err := GenToken("u-1", secret, 30, 60)
	require.NoError(t, err)
	require.NotEmpty(t, aToken)
	require.NotEmpty(t, rToken)

	claims, err := ParseToken(aToken, string(secret))
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserId)
}

func TestParseTokenWrongSecret(t *testing.T) {
	aToken, _, err := GenToken("u-1", []byte("secret-a"), 30, 60)
	require.NoError(t, err)

	_, err = ParseToken(aToken, "secret-b")
	assert.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	aToken, _, err := GenToken("u-1", []byte("s"), -1, 60)
	require.NoError(t, err)

	_, err = ParseToken(aToken, "s")
	assert.Error(t, err)
}
