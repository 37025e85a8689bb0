// File: internal/identity/verifier.go
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/config"

	"go.uber.org/zap"
)

// ErrInvalidToken is returned by verifiers for any token they reject.
var ErrInvalidToken = errors.New("identity: invalid token")

// TokenVerifier validates a raw bearer token and returns the identity-provider user ID.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (externalID string, err error)
}

// NewTokenVerifier builds the verifier selected by IDENTITY_PROVIDER.
func NewTokenVerifier(cfg *config.Config, logger *zap.Logger) (TokenVerifier, error) {
	switch cfg.IdentityProvider {
	case config.IdentityProviderFirebase:
		return NewFirebaseVerifier(cfg, logger)
	case config.IdentityProviderJWT:
		return NewJWTVerifier(cfg.IdentityJWTSecret, logger)
	default:
		return nil, fmt.Errorf("unsupported identity provider %q", cfg.IdentityProvider)
	}
}
