package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"launchkit-backend-go/internal/db"
	"launchkit-backend-go/internal/events"
	"launchkit-backend-go/internal/models"
)

const recentWaitlistEntries = 10

type waitlistService struct {
	waitlistRepo db.WaitlistRepository
	publisher    events.Publisher
	logger       *zap.Logger
	now          func() time.Time
}

func NewWaitlistService(wr db.WaitlistRepository, publisher events.Publisher, logger *zap.Logger) WaitlistService {
	return &waitlistService{waitlistRepo: wr, publisher: publisher, logger: logger, now: time.Now}
}

// Join adds a signup. Emails are stored lower-cased and may only appear once; the check is a
// lookup before insert, so two concurrent signups for one address can both succeed.
func (s *waitlistService) Join(ctx context.Context, req models.JoinWaitlistRequest) (*models.WaitlistEntry, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.waitlistRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check waitlist for duplicates: %w", err)
	}
	if exists {
		return nil, ErrWaitlistDuplicate
	}

	now := s.now().UTC()
	entry := &models.WaitlistEntry{
		Email:       email,
		VentureName: strings.TrimSpace(req.VentureName),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	id, err := s.waitlistRepo.Create(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to add waitlist entry: %w", err)
	}
	entry.ID = id
	s.logger.Info("Waitlist entry created", zap.String("entryID", id))

	publish(ctx, s.publisher, s.logger, events.New(events.WaitlistJoined, map[string]any{
		"entryId":     entry.ID,
		"email":       entry.Email,
		"ventureName": entry.VentureName,
	}))
	return entry, nil
}

func (s *waitlistService) Stats(ctx context.Context) (*models.WaitlistStats, error) {
	now := s.now().UTC()
	var (
		stats  models.WaitlistStats
		recent []time.Time
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Total, err = s.waitlistRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.waitlistRepo.CreatedSince(gctx, seriesStart(now, seriesDays))
		return err
	})
	g.Go(func() (err error) {
		stats.Recent, err = s.waitlistRepo.Recent(gctx, recentWaitlistEntries)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load waitlist stats: %w", err)
	}

	weekAgo := now.AddDate(0, 0, -7)
	for _, t := range recent {
		if t.After(weekAgo) {
			stats.Last7Days++
		}
	}
	stats.EntriesPerDay = dailySeries(recent, now, seriesDays)
	if stats.Recent == nil {
		stats.Recent = []*models.WaitlistEntry{}
	}
	return &stats, nil
}
