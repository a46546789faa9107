package core

import (
	"context"

	"go.uber.org/zap"

	"launchkit-backend-go/internal/db"
	"launchkit-backend-go/internal/prompts"
)

type cardService struct {
	analysisRepo db.AnalysisRepository
	catalog      *prompts.Catalog
	selector     BackendSelector
	settings     SettingsService
	logger       *zap.Logger
}

func NewCardService(ar db.AnalysisRepository, catalog *prompts.Catalog, selector BackendSelector, settings SettingsService, logger *zap.Logger) CardService {
	return &cardService{analysisRepo: ar, catalog: catalog, selector: selector, settings: settings, logger: logger}
}

func (s *cardService) Generate(ctx context.Context, caller Caller, icpAnalysisID string) (map[string]any, error) {
	analysis, err := loadCompletedAnalysis(ctx, s.analysisRepo, caller, icpAnalysisID)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.ForCaller(ctx, caller)
	if err != nil {
		return nil, err
	}

	prompt, err := s.catalog.ICPCard(prompts.ProductName(analysis.ScrapedContent, analysis.URL), analysis.URL, analysis.ICPResult)
	if err != nil {
		return nil, err
	}
	card, err := generateObject(ctx, s.selector.For(settings), prompt)
	if err != nil {
		s.logger.Warn("ICP card generation failed", zap.String("analysisID", analysis.ID), zap.Error(err))
		return nil, err
	}
	return card, nil
}
