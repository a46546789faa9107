package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"launchkit-backend-go/internal/models"
)

const settingsCollection = "settings"

// firestoreSettingsRepository implements SettingsRepository using Firestore.
// The document ID is the user ID, which keeps settings one-to-one with users.
type firestoreSettingsRepository struct {
	client *firestore.Client
}

func NewFirestoreSettingsRepository(client *firestore.Client) SettingsRepository {
	if client == nil {
		zap.L().Fatal("Firestore client is not initialized for SettingsRepository")
	}
	return &firestoreSettingsRepository{client: client}
}

func (r *firestoreSettingsRepository) Get(ctx context.Context, userID string) (*models.Settings, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for Get operation")
	}
	snap, err := r.client.Collection(settingsCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("settings for user '%s' not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get settings for user '%s': %w", userID, err)
	}
	var s models.Settings
	if err := snap.DataTo(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings for user '%s': %w", userID, err)
	}
	s.UserID = snap.Ref.ID
	return &s, nil
}

// Save writes the full settings document, creating it when absent.
func (r *firestoreSettingsRepository) Save(ctx context.Context, settings *models.Settings) error {
	if settings.UserID == "" {
		return errors.New("userID cannot be empty for Save operation")
	}
	if _, err := r.client.Collection(settingsCollection).Doc(settings.UserID).Set(ctx, settings); err != nil {
		return fmt.Errorf("failed to save settings for user '%s': %w", settings.UserID, err)
	}
	return nil
}
