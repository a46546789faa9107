package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"launchkit-backend-go/internal/db"
	"launchkit-backend-go/internal/events"
	"launchkit-backend-go/internal/generation"
	"launchkit-backend-go/internal/models"
	"launchkit-backend-go/internal/prompts"
	"launchkit-backend-go/internal/scraper"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type analysisService struct {
	analysisRepo db.AnalysisRepository
	extractor    scraper.Extractor
	catalog      *prompts.Catalog
	selector     BackendSelector
	settings     SettingsService
	plans        PlanService
	publisher    events.Publisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewAnalysisService creates an AnalysisService.
func NewAnalysisService(
	ar db.AnalysisRepository,
	extractor scraper.Extractor,
	catalog *prompts.Catalog,
	selector BackendSelector,
	settings SettingsService,
	plans PlanService,
	publisher events.Publisher,
	logger *zap.Logger,
) AnalysisService {
	return &analysisService{
		analysisRepo: ar,
		extractor:    extractor,
		catalog:      catalog,
		selector:     selector,
		settings:     settings,
		plans:        plans,
		publisher:    publisher,
		logger:       logger,
		now:          time.Now,
	}
}

// Create runs the analysis pipeline synchronously. When a stage fails the stored analysis is
// marked failed and returned together with the stage error.
func (s *analysisService) Create(ctx context.Context, caller Caller, req models.CreateAnalysisRequest) (*models.ICPAnalysis, error) {
	if !scraper.IsFetchableURL(req.URL) {
		return nil, ErrInvalidURL
	}
	if err := ensureQuota(ctx, s.plans, caller); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	analysis := &models.ICPAnalysis{
		UserID:             caller.UserID,
		URL:                strings.TrimSpace(req.URL),
		ProductDescription: strings.TrimSpace(req.ProductDescription),
		TargetRegion:       strings.TrimSpace(req.TargetRegion),
		Status:             models.AnalysisPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	id, err := s.analysisRepo.Create(ctx, analysis)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis: %w", err)
	}
	analysis.ID = id

	log := s.logger.With(zap.String("analysisID", id), zap.String("url", analysis.URL))
	log.Info("Analysis started", zap.Bool("anonymous", caller.IsAnonymous()))

	result, err := s.run(ctx, caller, analysis)
	if err != nil {
		log.Warn("Analysis failed", zap.Error(err))
		return s.finish(ctx, analysis, nil, err)
	}
	log.Info("Analysis completed", zap.String("primaryICP", analysis.PrimaryICP))
	return s.finish(ctx, analysis, result, nil)
}

func (s *analysisService) run(ctx context.Context, caller Caller, analysis *models.ICPAnalysis) (map[string]any, error) {
	settings, err := s.settings.ForCaller(ctx, caller)
	if err != nil {
		return nil, err
	}

	scraped, err := s.extractor.Extract(ctx, analysis.URL)
	if err != nil {
		return nil, err
	}
	analysis.ScrapedContent = scraped

	prompt := s.catalog.ICPAnalysis(analysis.URL, scraped, analysis.ProductDescription, analysis.TargetRegion)
	return generateObject(ctx, s.selector.For(settings), prompt)
}

// finish records the terminal state. The write uses a context detached from the request so a
// disconnected client cannot leave the row pending.
func (s *analysisService) finish(ctx context.Context, analysis *models.ICPAnalysis, result map[string]any, runErr error) (*models.ICPAnalysis, error) {
	analysis.UpdatedAt = s.now().UTC()
	eventType := events.AnalysisCompleted
	if runErr != nil {
		analysis.Status = models.AnalysisFailed
		analysis.ErrorMessage = runErr.Error()
		eventType = events.AnalysisFailed
	} else {
		analysis.Status = models.AnalysisCompleted
		analysis.ICPResult = result
		analysis.PrimaryICP = primaryICP(result)
		analysis.ConfidenceScore = confidenceScore(result)
	}

	writeCtx := context.WithoutCancel(ctx)
	if err := s.analysisRepo.Update(writeCtx, analysis); err != nil {
		return analysis, errors.Join(runErr, fmt.Errorf("failed to record analysis '%s' as %s: %w", analysis.ID, analysis.Status, err))
	}

	publish(writeCtx, s.publisher, s.logger, events.New(eventType, map[string]any{
		"analysisId": analysis.ID,
		"userId":     analysis.UserID,
		"url":        analysis.URL,
		"status":     string(analysis.Status),
	}))
	return analysis, runErr
}

func (s *analysisService) List(ctx context.Context, caller Caller, limit int) ([]*models.ICPAnalysis, error) {
	if caller.IsAnonymous() {
		return nil, ErrAuthRequired
	}
	analyses, err := s.analysisRepo.ListCompletedByUser(ctx, caller.UserID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses for user '%s': %w", caller.UserID, err)
	}
	return analyses, nil
}

func (s *analysisService) Get(ctx context.Context, caller Caller, id string) (*models.ICPAnalysis, error) {
	return loadAnalysis(ctx, s.analysisRepo, caller, id)
}

// loadAnalysis fetches an analysis and checks the caller may read it.
func loadAnalysis(ctx context.Context, repo db.AnalysisRepository, caller Caller, id string) (*models.ICPAnalysis, error) {
	if id == "" {
		return nil, ErrAnalysisNotFound
	}
	analysis, err := repo.GetByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("%w: '%s'", ErrAnalysisNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis '%s': %w", id, err)
	}
	if !analysis.OwnedBy(caller.UserID) {
		return nil, ErrForbidden
	}
	return analysis, nil
}

// loadCompletedAnalysis is loadAnalysis for stages that build on a finished analysis.
func loadCompletedAnalysis(ctx context.Context, repo db.AnalysisRepository, caller Caller, id string) (*models.ICPAnalysis, error) {
	analysis, err := loadAnalysis(ctx, repo, caller, id)
	if err != nil {
		return nil, err
	}
	if analysis.Status != models.AnalysisCompleted || analysis.ICPResult == nil {
		return nil, ErrAnalysisNotCompleted
	}
	return analysis, nil
}

// generateObject runs one generation and requires a JSON object back.
func generateObject(ctx context.Context, gen generation.Generator, prompt string) (map[string]any, error) {
	out, err := gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	obj, ok := out.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: %w", gen.Name(), ErrInvalidModelOutput)
	}
	return obj, nil
}

// primaryICP reads the headline persona: either a string or an object carrying a title or name.
func primaryICP(result map[string]any) string {
	switch v := result["primaryICP"].(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		for _, key := range []string{"title", "name"} {
			if s, ok := v[key].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// confidenceScore reads confidenceScore as a number clamped to 0..100.
func confidenceScore(result map[string]any) *int {
	var f float64
	switch v := result["confidenceScore"].(type) {
	case float64:
		f = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "%")), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) {
		return nil
	}
	score := int(math.Round(math.Max(0, math.Min(100, f))))
	return &score
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func publish(ctx context.Context, p events.Publisher, logger *zap.Logger, e events.Event) {
	if err := p.Publish(ctx, e); err != nil {
		logger.Warn("Failed to publish event", zap.String("type", e.Type), zap.Error(err))
	}
}
