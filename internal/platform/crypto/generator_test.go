package crypto

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecureRandomString(t *testing.T) {
	a, err := GenerateSecureRandomString(32)
	require.NoError(t, err)
	b, err := GenerateSecureRandomString(32)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	raw, err := base64.URLEncoding.DecodeString(a)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
}

func TestGenerateSigningSecret(t *testing.T) {
	secret, err := GenerateSigningSecret(24)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(secret, SigningSecretPrefix))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, SigningSecretPrefix))
	require.NoError(t, err)
	assert.Len(t, raw, 24)

	_, err = GenerateSigningSecret(0)
	assert.Error(t, err)
}
