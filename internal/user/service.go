package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service keeps local user records in step with the identity provider.
type Service interface {
	// SyncCreated stores a newly created identity. Replays of the same event update the existing row.
	SyncCreated(ctx context.Context, profile Profile) (*User, error)
	// SyncUpdated applies a profile change. found is false when no local record exists.
	SyncUpdated(ctx context.Context, profile Profile) (u *User, found bool, err error)
	// SyncDeleted removes the local record. found is false when no local record exists.
	SyncDeleted(ctx context.Context, externalID string) (found bool, err error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	// IDByExternalID maps an identity-provider ID to the internal user ID.
	IDByExternalID(ctx context.Context, externalID string) (uuid.UUID, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new user service.
func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger.Named("UserService")}
}

func (s *service) SyncCreated(ctx context.Context, profile Profile) (*User, error) {
	if profile.ExternalID == "" {
		return nil, common.ErrBadRequest.WithDetails("External user ID is required.")
	}

	existing, err := s.repo.FindByExternalID(ctx, profile.ExternalID)
	if err == nil {
		profile.apply(existing)
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to refresh existing user: %w", err)
		}
		s.logger.Info("User already present, profile refreshed", zap.String("userID", existing.ID.String()))
		return existing, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	u := &User{}
	profile.apply(u)
	if err := s.repo.Create(ctx, u); err != nil {
		s.logger.Error("Failed to create user", zap.Error(err), zap.String("externalID", profile.ExternalID))
		return nil, err
	}
	s.logger.Info("User created", zap.String("userID", u.ID.String()), zap.String("externalID", u.ExternalID))
	return u, nil
}

func (s *service) SyncUpdated(ctx context.Context, profile Profile) (*User, bool, error) {
	existing, err := s.repo.FindByExternalID(ctx, profile.ExternalID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Info("User not found for update event", zap.String("externalID", profile.ExternalID))
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to look up user: %w", err)
	}

	profile.apply(existing)
	if err := s.repo.Update(ctx, existing); err != nil {
		s.logger.Error("Failed to update user", zap.Error(err), zap.String("userID", existing.ID.String()))
		return nil, true, err
	}
	s.logger.Info("User updated", zap.String("userID", existing.ID.String()))
	return existing, true, nil
}

func (s *service) SyncDeleted(ctx context.Context, externalID string) (bool, error) {
	existing, err := s.repo.FindByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Info("User not found for delete event", zap.String("externalID", externalID))
			return false, nil
		}
		return false, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.repo.Delete(ctx, existing.ID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return false, nil
		}
		return true, err
	}
	s.logger.Info("User deleted", zap.String("userID", existing.ID.String()))
	return true, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) IDByExternalID(ctx context.Context, externalID string) (uuid.UUID, error) {
	u, err := s.repo.FindByExternalID(ctx, externalID)
	if err != nil {
		return uuid.Nil, err
	}
	return u.ID, nil
}
