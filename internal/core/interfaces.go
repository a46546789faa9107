package core

import (
	"context"

	"launchkit-backend-go/internal/generation"
	"launchkit-backend-go/internal/models"
)

// Caller identifies who is making a request. An empty UserID means anonymous.
type Caller struct {
	UserID string
	Email  string
}

func (c Caller) IsAnonymous() bool { return c.UserID == "" }

// AnalysisService runs and reads ICP analyses.
type AnalysisService interface {
	// Create always returns the stored analysis once the pending row exists, together with
	// the stage failure (if any) that marked it failed.
	Create(ctx context.Context, caller Caller, req models.CreateAnalysisRequest) (*models.ICPAnalysis, error)
	List(ctx context.Context, caller Caller, limit int) ([]*models.ICPAnalysis, error)
	Get(ctx context.Context, caller Caller, id string) (*models.ICPAnalysis, error)
}

// StrategyService generates and reads GTM strategies.
type StrategyService interface {
	// Generate reports created=false when an existing strategy was returned unchanged.
	Generate(ctx context.Context, caller Caller, icpAnalysisID string) (strategy *models.GTMStrategy, created bool, err error)
	List(ctx context.Context, caller Caller, filter models.StrategyFilter) ([]*models.GTMStrategy, error)
	Get(ctx context.Context, caller Caller, id string) (*models.GTMStrategy, error)
}

// CardService generates ICP persona cards. Cards are not persisted.
type CardService interface {
	Generate(ctx context.Context, caller Caller, icpAnalysisID string) (map[string]any, error)
}

// SettingsService reads and updates per-user generation settings.
type SettingsService interface {
	Get(ctx context.Context, userID string) (*models.Settings, error)
	Update(ctx context.Context, userID string, req models.UpdateSettingsRequest) (*models.Settings, error)
	// ForCaller returns defaults for anonymous callers.
	ForCaller(ctx context.Context, caller Caller) (*models.Settings, error)
}

// PlanService reports plan usage and enforces the creation quota.
type PlanService interface {
	Info(ctx context.Context, caller Caller) (*models.PlanInfo, error)
	CanCreateContent(ctx context.Context, caller Caller) (bool, *models.PlanInfo, error)
}

// UserService mirrors identity provider users and answers admin checks.
type UserService interface {
	Upsert(ctx context.Context, user *models.User) (*models.User, error)
	Delete(ctx context.Context, userID string) error
	IsAdminEmail(email string) bool
	IsAdmin(ctx context.Context, userID, email string) (bool, error)
}

// WaitlistService captures pre-launch signups.
type WaitlistService interface {
	Join(ctx context.Context, req models.JoinWaitlistRequest) (*models.WaitlistEntry, error)
	Stats(ctx context.Context) (*models.WaitlistStats, error)
}

// StatsService serves the admin and user dashboards.
type StatsService interface {
	Admin(ctx context.Context) (*models.AdminStats, error)
	Dashboard(ctx context.Context, caller Caller) (*models.Dashboard, error)
}

// BackendSelector picks a generation backend for a user's settings.
type BackendSelector interface {
	For(settings *models.Settings) generation.Generator
}
