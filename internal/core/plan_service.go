package core

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"launchkit-backend-go/internal/db"
	"launchkit-backend-go/internal/models"
)

type planService struct {
	userRepo          db.UserRepository
	analysisRepo      db.AnalysisRepository
	strategyRepo      db.StrategyRepository
	users             UserService
	trialMaxCreations int
	logger            *zap.Logger
}

// NewPlanService creates a PlanService. Trial users may create trialMaxCreations analyses
// and strategies combined; pro users and admins are unlimited.
func NewPlanService(
	ur db.UserRepository,
	ar db.AnalysisRepository,
	sr db.StrategyRepository,
	users UserService,
	trialMaxCreations int,
	logger *zap.Logger,
) PlanService {
	return &planService{
		userRepo:          ur,
		analysisRepo:      ar,
		strategyRepo:      sr,
		users:             users,
		trialMaxCreations: trialMaxCreations,
		logger:            logger,
	}
}

func (s *planService) Info(ctx context.Context, caller Caller) (*models.PlanInfo, error) {
	if caller.IsAnonymous() {
		return nil, ErrAuthRequired
	}

	plan := models.PlanTrial
	email := caller.Email
	user, err := s.userRepo.GetByID(ctx, caller.UserID)
	switch {
	case err == nil:
		if user.Plan != "" {
			plan = user.Plan
		}
		if email == "" {
			email = user.Email
		}
	case errors.Is(err, db.ErrNotFound):
		// The user webhook may not have arrived yet.
		s.logger.Debug("No stored user for plan lookup, assuming trial", zap.String("userID", caller.UserID))
	default:
		return nil, fmt.Errorf("failed to load user '%s' for plan lookup: %w", caller.UserID, err)
	}

	isAdmin, err := s.users.IsAdmin(ctx, caller.UserID, email)
	if err != nil {
		return nil, err
	}

	analyses, err := s.analysisRepo.CountByUser(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to count analyses for user '%s': %w", caller.UserID, err)
	}
	strategies, err := s.strategyRepo.CountByUser(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to count strategies for user '%s': %w", caller.UserID, err)
	}

	maxCreations := s.trialMaxCreations
	if isAdmin || plan == models.PlanPro {
		maxCreations = models.UnlimitedCreations
	}
	return &models.PlanInfo{
		Plan:         plan,
		UsageCount:   analyses + strategies,
		MaxCreations: maxCreations,
		IsAdmin:      isAdmin,
	}, nil
}

func (s *planService) CanCreateContent(ctx context.Context, caller Caller) (bool, *models.PlanInfo, error) {
	info, err := s.Info(ctx, caller)
	if err != nil {
		return false, nil, err
	}
	if info.MaxCreations == models.UnlimitedCreations {
		return true, info, nil
	}
	return info.UsageCount < info.MaxCreations, info, nil
}

// ensureQuota returns a *QuotaError when an authenticated caller has no creations left.
// Anonymous callers are not metered.
func ensureQuota(ctx context.Context, plans PlanService, caller Caller) error {
	if caller.IsAnonymous() {
		return nil
	}
	ok, info, err := plans.CanCreateContent(ctx, caller)
	if err != nil {
		return fmt.Errorf("failed to check plan limit: %w", err)
	}
	if !ok {
		return &QuotaError{Used: info.UsageCount, Max: info.MaxCreations}
	}
	return nil
}
