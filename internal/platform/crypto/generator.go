// File: internal/platform/crypto/generator.go
package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// SigningSecretPrefix marks webhook signing secrets.
const SigningSecretPrefix = "whsec_"

// GenerateSecureRandomString creates a cryptographically secure random string.
// n is the number of bytes of randomness; the URL-safe base64 result is longer.
func GenerateSecureRandomString(n int) (string, error) {
	b, err := randomBytes(n)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// GenerateSigningSecret returns a webhook signing secret in the
// "whsec_<std base64>" form accepted by WEBHOOK_SIGNING_SECRET.
func GenerateSigningSecret(n int) (string, error) {
	b, err := randomBytes(n)
	if err != nil {
		return "", err
	}
	return SigningSecretPrefix + base64.StdEncoding.EncodeToString(b), nil
}

func randomBytes(n int) ([]byte, error) {
	if n < 1 {
		return nil, fmt.Errorf("random length must be positive, got %d", n)
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
