package core

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"launchkit-backend-go/internal/db"
	"launchkit-backend-go/internal/models"
	"launchkit-backend-go/pkg/cache"
)

const (
	adminStatsCacheKey = "stats:admin"
	dashboardRecent    = 5
)

type statsService struct {
	userRepo     db.UserRepository
	analysisRepo db.AnalysisRepository
	strategyRepo db.StrategyRepository
	waitlistRepo db.WaitlistRepository
	plans        PlanService
	cache        cache.Cache
	cacheTTL     time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

// NewStatsService creates a StatsService. Admin stats are cached for cacheTTL; a zero TTL
// disables caching.
func NewStatsService(
	ur db.UserRepository,
	ar db.AnalysisRepository,
	sr db.StrategyRepository,
	wr db.WaitlistRepository,
	plans PlanService,
	c cache.Cache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) StatsService {
	if c == nil {
		c = cache.NopCache{}
	}
	return &statsService{
		userRepo:     ur,
		analysisRepo: ar,
		strategyRepo: sr,
		waitlistRepo: wr,
		plans:        plans,
		cache:        c,
		cacheTTL:     cacheTTL,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *statsService) Admin(ctx context.Context) (*models.AdminStats, error) {
	if cached, ok := s.cachedAdmin(ctx); ok {
		return cached, nil
	}

	now := s.now().UTC()
	since := seriesStart(now, seriesDays)
	stats := models.AdminStats{AnalysesByStatus: make(map[models.AnalysisStatus]int, len(models.AllAnalysisStatuses))}
	byStatus := make([]int, len(models.AllAnalysisStatuses))
	var (
		analysisTimes, strategyTimes, signupTimes []time.Time
		scores                                    []int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalUsers, err = s.userRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.ProUsers, err = s.userRepo.CountByPlan(gctx, models.PlanPro)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalAnalyses, err = s.analysisRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalStrategies, err = s.strategyRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalWaitlist, err = s.waitlistRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		analysisTimes, err = s.analysisRepo.CreatedSince(gctx, since)
		return err
	})
	g.Go(func() (err error) {
		strategyTimes, err = s.strategyRepo.CreatedSince(gctx, since)
		return err
	})
	g.Go(func() (err error) {
		signupTimes, err = s.userRepo.CreatedSince(gctx, since)
		return err
	})
	g.Go(func() (err error) {
		scores, err = s.analysisRepo.ConfidenceScores(gctx)
		return err
	})
	for i, status := range models.AllAnalysisStatuses {
		g.Go(func() (err error) {
			byStatus[i], err = s.analysisRepo.CountByStatus(gctx, status)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load admin stats: %w", err)
	}

	for i, status := range models.AllAnalysisStatuses {
		stats.AnalysesByStatus[status] = byStatus[i]
	}
	stats.AnalysesPerDay = dailySeries(analysisTimes, now, seriesDays)
	stats.StrategiesPerDay = dailySeries(strategyTimes, now, seriesDays)
	stats.SignupsPerDay = dailySeries(signupTimes, now, seriesDays)
	stats.AverageConfidence = average(scores)

	s.storeAdmin(ctx, &stats)
	return &stats, nil
}

func (s *statsService) cachedAdmin(ctx context.Context) (*models.AdminStats, bool) {
	if s.cacheTTL <= 0 {
		return nil, false
	}
	raw, ok, err := s.cache.Get(ctx, adminStatsCacheKey)
	if err != nil {
		s.logger.Warn("Admin stats cache read failed", zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var stats models.AdminStats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		s.logger.Warn("Discarding unreadable admin stats cache entry", zap.Error(err))
		return nil, false
	}
	return &stats, true
}

func (s *statsService) storeAdmin(ctx context.Context, stats *models.AdminStats) {
	if s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		s.logger.Warn("Failed to encode admin stats for cache", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, adminStatsCacheKey, string(raw), s.cacheTTL); err != nil {
		s.logger.Warn("Admin stats cache write failed", zap.Error(err))
	}
}

func (s *statsService) Dashboard(ctx context.Context, caller Caller) (*models.Dashboard, error) {
	if caller.IsAnonymous() {
		return nil, ErrAuthRequired
	}

	var (
		dash models.Dashboard
		plan *models.PlanInfo
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		plan, err = s.plans.Info(gctx, caller)
		return err
	})
	g.Go(func() (err error) {
		dash.AnalysisCount, err = s.analysisRepo.CountByUser(gctx, caller.UserID)
		return err
	})
	g.Go(func() (err error) {
		dash.StrategyCount, err = s.strategyRepo.CountByUser(gctx, caller.UserID)
		return err
	})
	g.Go(func() (err error) {
		dash.RecentAnalyses, err = s.analysisRepo.ListCompletedByUser(gctx, caller.UserID, dashboardRecent)
		return err
	})
	g.Go(func() (err error) {
		dash.RecentStrategies, err = s.strategyRepo.ListByUser(gctx, caller.UserID, models.StrategyFilter{Limit: dashboardRecent})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load dashboard for user '%s': %w", caller.UserID, err)
	}

	dash.Plan = *plan
	for i, st := range dash.RecentStrategies {
		dash.RecentStrategies[i] = st.Summary()
	}
	if dash.RecentAnalyses == nil {
		dash.RecentAnalyses = []*models.ICPAnalysis{}
	}
	if dash.RecentStrategies == nil {
		dash.RecentStrategies = []*models.GTMStrategy{}
	}
	return &dash, nil
}

func average(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return math.Round(float64(sum)/float64(len(values))*10) / 10
}
