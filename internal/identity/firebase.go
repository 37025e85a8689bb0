package identity

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// idTokenVerifier is the part of the Firebase auth client used here.
type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseVerifier verifies Firebase ID tokens with the Admin SDK.
type FirebaseVerifier struct {
	client idTokenVerifier
	logger *zap.Logger
}

// NewFirebaseVerifier initializes the Firebase Admin SDK from the service account key file.
func NewFirebaseVerifier(cfg *config.Config, logger *zap.Logger) (*FirebaseVerifier, error) {
	if cfg.FirebaseServiceAccountKeyPath == "" {
		return nil, fmt.Errorf("firebase service account key path is required")
	}
	opt := option.WithCredentialsFile(filepath.Clean(cfg.FirebaseServiceAccountKeyPath))

	var conf *firebase.Config
	if cfg.FirebaseProjectID != "" {
		conf = &firebase.Config{ProjectID: cfg.FirebaseProjectID}
	}

	ctx := context.Background()
	app, err := firebase.NewApp(ctx, conf, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Firebase Auth client: %w", err)
	}

	logger.Info("Firebase Admin SDK initialized successfully.")
	return &FirebaseVerifier{client: client, logger: logger.Named("FirebaseVerifier")}, nil
}

// Verify checks the ID token signature and expiry and returns the Firebase UID.
func (v *FirebaseVerifier) Verify(ctx context.Context, rawToken string) (string, error) {
	if rawToken == "" {
		return "", ErrInvalidToken
	}
	token, err := v.client.VerifyIDToken(ctx, rawToken)
	if err != nil {
		v.logger.Debug("Firebase ID token verification failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return token.UID, nil
}
