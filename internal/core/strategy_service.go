package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"launchkit-backend-go/internal/db"
	"launchkit-backend-go/internal/events"
	"launchkit-backend-go/internal/models"
	"launchkit-backend-go/internal/prompts"
)

type strategyService struct {
	strategyRepo db.StrategyRepository
	analysisRepo db.AnalysisRepository
	catalog      *prompts.Catalog
	selector     BackendSelector
	settings     SettingsService
	plans        PlanService
	publisher    events.Publisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewStrategyService creates a StrategyService.
func NewStrategyService(
	sr db.StrategyRepository,
	ar db.AnalysisRepository,
	catalog *prompts.Catalog,
	selector BackendSelector,
	settings SettingsService,
	plans PlanService,
	publisher events.Publisher,
	logger *zap.Logger,
) StrategyService {
	return &strategyService{
		strategyRepo: sr,
		analysisRepo: ar,
		catalog:      catalog,
		selector:     selector,
		settings:     settings,
		plans:        plans,
		publisher:    publisher,
		logger:       logger,
		now:          time.Now,
	}
}

// Generate returns the caller's existing strategy for the analysis when there is one.
// Otherwise it runs the GTM, messaging and checklist stages in order, each fed with the
// output of the stages before it, and stores a single record. Nothing is stored when a
// stage fails.
func (s *strategyService) Generate(ctx context.Context, caller Caller, icpAnalysisID string) (*models.GTMStrategy, bool, error) {
	analysis, err := loadCompletedAnalysis(ctx, s.analysisRepo, caller, icpAnalysisID)
	if err != nil {
		return nil, false, err
	}

	if !caller.IsAnonymous() {
		existing, err := s.strategyRepo.FindByAnalysisAndUser(ctx, analysis.ID, caller.UserID)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, db.ErrNotFound) {
			return nil, false, fmt.Errorf("failed to look up existing strategy: %w", err)
		}
		if err := ensureQuota(ctx, s.plans, caller); err != nil {
			return nil, false, err
		}
	}

	settings, err := s.settings.ForCaller(ctx, caller)
	if err != nil {
		return nil, false, err
	}
	gen := s.selector.For(settings)
	productName := prompts.ProductName(analysis.ScrapedContent, analysis.URL)
	log := s.logger.With(zap.String("analysisID", analysis.ID), zap.String("backend", gen.Name()))

	prompt, err := s.catalog.GTMStrategy(productName, analysis.ICPResult)
	if err != nil {
		return nil, false, err
	}
	gtm, err := generateObject(ctx, gen, prompt)
	if err != nil {
		log.Warn("GTM stage failed", zap.Error(err))
		return nil, false, err
	}

	prompt, err = s.catalog.Messaging(productName, analysis.ICPResult, gtm)
	if err != nil {
		return nil, false, err
	}
	messaging, err := generateObject(ctx, gen, prompt)
	if err != nil {
		log.Warn("Messaging stage failed", zap.Error(err))
		return nil, false, err
	}

	prompt, err = s.catalog.Checklist(productName, gtm, messaging)
	if err != nil {
		return nil, false, err
	}
	checklist, err := generateObject(ctx, gen, prompt)
	if err != nil {
		log.Warn("Checklist stage failed", zap.Error(err))
		return nil, false, err
	}

	strategy := &models.GTMStrategy{
		UserID:          caller.UserID,
		ICPAnalysisID:   analysis.ID,
		GTMResult:       gtm,
		MessagingResult: messaging,
		ChecklistResult: checklist,
		CreatedAt:       s.now().UTC(),
	}
	writeCtx := context.WithoutCancel(ctx)
	id, err := s.strategyRepo.Create(writeCtx, strategy)
	if err != nil {
		return nil, false, fmt.Errorf("failed to store strategy: %w", err)
	}
	strategy.ID = id
	log.Info("Strategy created", zap.String("strategyID", id))

	publish(writeCtx, s.publisher, s.logger, events.New(events.StrategyCreated, map[string]any{
		"strategyId":    strategy.ID,
		"icpAnalysisId": strategy.ICPAnalysisID,
		"userId":        strategy.UserID,
	}))
	return strategy, true, nil
}

func (s *strategyService) List(ctx context.Context, caller Caller, filter models.StrategyFilter) ([]*models.GTMStrategy, error) {
	if caller.IsAnonymous() {
		return nil, ErrAuthRequired
	}
	filter.Limit = clampLimit(filter.Limit)
	strategies, err := s.strategyRepo.ListByUser(ctx, caller.UserID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list strategies for user '%s': %w", caller.UserID, err)
	}
	if !filter.IncludeDetails {
		for i, st := range strategies {
			strategies[i] = st.Summary()
		}
	}
	return strategies, nil
}

// Get returns the strategy with its source analysis joined in. A strategy whose analysis has
// since disappeared is returned without it.
func (s *strategyService) Get(ctx context.Context, caller Caller, id string) (*models.GTMStrategy, error) {
	if id == "" {
		return nil, ErrStrategyNotFound
	}
	strategy, err := s.strategyRepo.GetByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("%w: '%s'", ErrStrategyNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load strategy '%s': %w", id, err)
	}
	if strategy.UserID != "" && strategy.UserID != caller.UserID {
		return nil, ErrForbidden
	}

	analysis, err := s.analysisRepo.GetByID(ctx, strategy.ICPAnalysisID)
	switch {
	case err == nil:
		strategy.ICPAnalysis = analysis
	case errors.Is(err, db.ErrNotFound):
		s.logger.Warn("Strategy references a missing analysis",
			zap.String("strategyID", id), zap.String("analysisID", strategy.ICPAnalysisID))
	default:
		return nil, fmt.Errorf("failed to load analysis for strategy '%s': %w", id, err)
	}
	return strategy, nil
}
