package identity

import (
	"context"
	"errors"

	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Resolver turns a bearer token into the caller's internal user ID.
type Resolver interface {
	// ResolveUserID fails with common.ErrUnauthenticated for a missing or
	// rejected token and common.ErrUserNotFound when no user record exists.
	ResolveUserID(ctx context.Context, rawToken string) (uuid.UUID, error)
}

// UserLookup maps an external identity to an internal user ID. It returns an
// error matching common.ErrNotFound when the user is unknown.
type UserLookup interface {
	IDByExternalID(ctx context.Context, externalID string) (uuid.UUID, error)
}

type resolver struct {
	verifier TokenVerifier
	users    UserLookup
	logger   *zap.Logger
}

// NewResolver creates a Resolver.
func NewResolver(verifier TokenVerifier, users UserLookup, logger *zap.Logger) Resolver {
	return &resolver{verifier: verifier, users: users, logger: logger.Named("IdentityResolver")}
}

func (r *resolver) ResolveUserID(ctx context.Context, rawToken string) (uuid.UUID, error) {
	if rawToken == "" {
		return uuid.Nil, common.ErrUnauthenticated.WithDetails("Authorization header is required.")
	}

	externalID, err := r.verifier.Verify(ctx, rawToken)
	if err != nil {
		return uuid.Nil, common.ErrUnauthenticated.WithDetails("Invalid or expired token.")
	}

	id, err := r.users.IDByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			r.logger.Debug("No user record for identity", zap.String("externalID", externalID))
			return uuid.Nil, common.ErrUserNotFound
		}
		return uuid.Nil, err
	}
	return id, nil
}
