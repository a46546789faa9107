package db

import (
	"context"
	"errors"
	"time"

	"launchkit-backend-go/internal/models"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// AnalysisRepository stores ICP analyses.
type AnalysisRepository interface {
	Create(ctx context.Context, analysis *models.ICPAnalysis) (string, error)
	GetByID(ctx context.Context, id string) (*models.ICPAnalysis, error)
	// Update overwrites the stored document with the given state.
	Update(ctx context.Context, analysis *models.ICPAnalysis) error
	ListCompletedByUser(ctx context.Context, userID string, limit int) ([]*models.ICPAnalysis, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status models.AnalysisStatus) (int, error)
	CreatedSince(ctx context.Context, since time.Time) ([]time.Time, error)
	ConfidenceScores(ctx context.Context) ([]int, error)
}

// StrategyRepository stores GTM strategies.
type StrategyRepository interface {
	Create(ctx context.Context, strategy *models.GTMStrategy) (string, error)
	GetByID(ctx context.Context, id string) (*models.GTMStrategy, error)
	// FindByAnalysisAndUser returns ErrNotFound when the pair has no strategy yet.
	FindByAnalysisAndUser(ctx context.Context, icpAnalysisID, userID string) (*models.GTMStrategy, error)
	ListByUser(ctx context.Context, userID string, filter models.StrategyFilter) ([]*models.GTMStrategy, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	Count(ctx context.Context) (int, error)
	CreatedSince(ctx context.Context, since time.Time) ([]time.Time, error)
}

// SettingsRepository stores per-user settings keyed by user id.
type SettingsRepository interface {
	Get(ctx context.Context, userID string) (*models.Settings, error)
	Save(ctx context.Context, settings *models.Settings) error
}

// UserRepository stores users mirrored from the identity provider.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, userID string) error
	Count(ctx context.Context) (int, error)
	CountByPlan(ctx context.Context, plan models.Plan) (int, error)
	CreatedSince(ctx context.Context, since time.Time) ([]time.Time, error)
}

// WaitlistRepository stores waitlist signups.
type WaitlistRepository interface {
	Create(ctx context.Context, entry *models.WaitlistEntry) (string, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Count(ctx context.Context) (int, error)
	CreatedSince(ctx context.Context, since time.Time) ([]time.Time, error)
	Recent(ctx context.Context, limit int) ([]*models.WaitlistEntry, error)
}
