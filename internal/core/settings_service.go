package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"launchkit-backend-go/internal/db"
	"launchkit-backend-go/internal/models"
)

type settingsService struct {
	settingsRepo db.SettingsRepository
	logger       *zap.Logger
	now          func() time.Time
}

func NewSettingsService(sr db.SettingsRepository, logger *zap.Logger) SettingsService {
	return &settingsService{settingsRepo: sr, logger: logger, now: time.Now}
}

// Get returns the user's settings, creating the defaults on first read.
func (s *settingsService) Get(ctx context.Context, userID string) (*models.Settings, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}
	settings, err := s.settingsRepo.Get(ctx, userID)
	if err == nil {
		settings.UserID = userID
		return settings, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("failed to load settings for user '%s': %w", userID, err)
	}

	settings = models.DefaultSettings(userID)
	settings.CreatedAt = s.now().UTC()
	settings.UpdatedAt = settings.CreatedAt
	if err := s.settingsRepo.Save(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to create default settings for user '%s': %w", userID, err)
	}
	s.logger.Debug("Created default settings", zap.String("userID", userID))
	return settings, nil
}

func (s *settingsService) Update(ctx context.Context, userID string, req models.UpdateSettingsRequest) (*models.Settings, error) {
	settings, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	settings.AIProvider = req.AIProvider
	if req.AIMode != nil {
		settings.AIMode = *req.AIMode
	}
	settings.UpdatedAt = s.now().UTC()
	if err := s.settingsRepo.Save(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to update settings for user '%s': %w", userID, err)
	}
	return settings, nil
}

func (s *settingsService) ForCaller(ctx context.Context, caller Caller) (*models.Settings, error) {
	if caller.IsAnonymous() {
		return models.DefaultSettings(""), nil
	}
	return s.Get(ctx, caller.UserID)
}
