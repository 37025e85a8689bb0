// File: internal/webhook/verifier.go
package webhook

import (
	"errors"
	"fmt"
	"strings"

	svix "github.com/svix/svix-webhooks/go"
)

// Signature headers sent with every delivery.
const (
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"
)

// NewVerifier builds the svix verifier for a "whsec_"-prefixed signing secret.
func NewVerifier(secret string) (*svix.Webhook, error) {
	secret = strings.TrimSpace(secret)
	if strings.TrimPrefix(secret, "whsec_") == "" {
		return nil, errors.New("webhook signing secret is empty")
	}
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook signing secret: %w", err)
	}
	return wh, nil
}
