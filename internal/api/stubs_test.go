package api

import (
	"context"
	"errors"

	"launchkit-backend-go/internal/auth"
	"launchkit-backend-go/internal/core"
	"launchkit-backend-go/internal/models"
)

var errNotStubbed = errors.New("not stubbed")

const (
	userToken  = "user-token"
	adminToken = "admin-token"
	adminEmail = "founder@launchkit.test"
)

type tokenVerifier struct{}

func (tokenVerifier) Verify(token string) (*auth.Claims, error) {
	switch token {
	case userToken:
		return &auth.Claims{Subject: "user_1", Email: "ana@example.com"}, nil
	case adminToken:
		return &auth.Claims{Subject: "user_admin", Email: adminEmail}, nil
	}
	return nil, errors.New("bad token")
}

type stubAnalyses struct {
	create func(core.Caller, models.CreateAnalysisRequest) (*models.ICPAnalysis, error)
	list   func(core.Caller, int) ([]*models.ICPAnalysis, error)
	get    func(core.Caller, string) (*models.ICPAnalysis, error)
}

func (s *stubAnalyses) Create(_ context.Context, caller core.Caller, req models.CreateAnalysisRequest) (*models.ICPAnalysis, error) {
	if s.create == nil {
		return nil, errNotStubbed
	}
	return s.create(caller, req)
}

func (s *stubAnalyses) List(_ context.Context, caller core.Caller, limit int) ([]*models.ICPAnalysis, error) {
	if s.list == nil {
		return nil, errNotStubbed
	}
	return s.list(caller, limit)
}

func (s *stubAnalyses) Get(_ context.Context, caller core.Caller, id string) (*models.ICPAnalysis, error) {
	if s.get == nil {
		return nil, errNotStubbed
	}
	return s.get(caller, id)
}

type stubStrategies struct {
	generate func(core.Caller, string) (*models.GTMStrategy, bool, error)
	list     func(core.Caller, models.StrategyFilter) ([]*models.GTMStrategy, error)
	get      func(core.Caller, string) (*models.GTMStrategy, error)
}

func (s *stubStrategies) Generate(_ context.Context, caller core.Caller, id string) (*models.GTMStrategy, bool, error) {
	if s.generate == nil {
		return nil, false, errNotStubbed
	}
	return s.generate(caller, id)
}

func (s *stubStrategies) List(_ context.Context, caller core.Caller, filter models.StrategyFilter) ([]*models.GTMStrategy, error) {
	if s.list == nil {
		return nil, errNotStubbed
	}
	return s.list(caller, filter)
}

func (s *stubStrategies) Get(_ context.Context, caller core.Caller, id string) (*models.GTMStrategy, error) {
	if s.get == nil {
		return nil, errNotStubbed
	}
	return s.get(caller, id)
}

type stubCards struct {
	generate func(core.Caller, string) (map[string]any, error)
}

func (s *stubCards) Generate(_ context.Context, caller core.Caller, id string) (map[string]any, error) {
	if s.generate == nil {
		return nil, errNotStubbed
	}
	return s.generate(caller, id)
}

type stubSettings struct {
	update func(string, models.UpdateSettingsRequest) (*models.Settings, error)
}

func (s *stubSettings) Get(_ context.Context, userID string) (*models.Settings, error) {
	return models.DefaultSettings(userID), nil
}

func (s *stubSettings) Update(_ context.Context, userID string, req models.UpdateSettingsRequest) (*models.Settings, error) {
	if s.update == nil {
		return nil, errNotStubbed
	}
	return s.update(userID, req)
}

func (s *stubSettings) ForCaller(_ context.Context, caller core.Caller) (*models.Settings, error) {
	return models.DefaultSettings(caller.UserID), nil
}

type stubPlans struct {
	info *models.PlanInfo
}

func (s *stubPlans) Info(context.Context, core.Caller) (*models.PlanInfo, error) {
	if s.info == nil {
		return nil, errNotStubbed
	}
	return s.info, nil
}

func (s *stubPlans) CanCreateContent(ctx context.Context, caller core.Caller) (bool, *models.PlanInfo, error) {
	info, err := s.Info(ctx, caller)
	if err != nil {
		return false, nil, err
	}
	return true, info, nil
}

type stubUsers struct {
	upserted []*models.User
	deleted  []string
}

func (s *stubUsers) Upsert(_ context.Context, u *models.User) (*models.User, error) {
	s.upserted = append(s.upserted, u)
	return u, nil
}

func (s *stubUsers) Delete(_ context.Context, userID string) error {
	s.deleted = append(s.deleted, userID)
	return nil
}

func (s *stubUsers) IsAdminEmail(email string) bool { return email == adminEmail }

func (s *stubUsers) IsAdmin(_ context.Context, _ string, email string) (bool, error) {
	return s.IsAdminEmail(email), nil
}

type stubWaitlist struct {
	join  func(models.JoinWaitlistRequest) (*models.WaitlistEntry, error)
	stats *models.WaitlistStats
}

func (s *stubWaitlist) Join(_ context.Context, req models.JoinWaitlistRequest) (*models.WaitlistEntry, error) {
	if s.join == nil {
		return nil, errNotStubbed
	}
	return s.join(req)
}

func (s *stubWaitlist) Stats(context.Context) (*models.WaitlistStats, error) {
	if s.stats == nil {
		return nil, errNotStubbed
	}
	return s.stats, nil
}

type stubStats struct {
	admin *models.AdminStats
	err   error
}

func (s *stubStats) Admin(context.Context) (*models.AdminStats, error) { return s.admin, s.err }

func (s *stubStats) Dashboard(context.Context, core.Caller) (*models.Dashboard, error) {
	return nil, errNotStubbed
}
