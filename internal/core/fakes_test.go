package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"launchkit-backend-go/internal/db"
	"launchkit-backend-go/internal/events"
	"launchkit-backend-go/internal/generation"
	"launchkit-backend-go/internal/models"
	"launchkit-backend-go/internal/prompts"
)

var fixedNow = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// In-memory repositories. They store copies so tests observe only what was written.

type memAnalysisRepo struct {
	mu        sync.Mutex
	seq       int
	items     map[string]*models.ICPAnalysis
	createErr error
	updateErr error
}

func newMemAnalysisRepo() *memAnalysisRepo {
	return &memAnalysisRepo{items: map[string]*models.ICPAnalysis{}}
}

func (r *memAnalysisRepo) Create(_ context.Context, a *models.ICPAnalysis) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return "", r.createErr
	}
	r.seq++
	id := fmt.Sprintf("analysis-%d", r.seq)
	c := *a
	c.ID = id
	r.items[id] = &c
	return id, nil
}

func (r *memAnalysisRepo) GetByID(_ context.Context, id string) (*models.ICPAnalysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (r *memAnalysisRepo) Update(_ context.Context, a *models.ICPAnalysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	c := *a
	r.items[a.ID] = &c
	return nil
}

func (r *memAnalysisRepo) ListCompletedByUser(_ context.Context, userID string, limit int) ([]*models.ICPAnalysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ICPAnalysis
	for _, a := range r.items {
		if a.UserID == userID && a.Status == models.AnalysisCompleted {
			c := *a
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memAnalysisRepo) CountByUser(_ context.Context, userID string) (int, error) {
	return r.count(func(a *models.ICPAnalysis) bool { return a.UserID == userID }), nil
}

func (r *memAnalysisRepo) Count(context.Context) (int, error) {
	return r.count(func(*models.ICPAnalysis) bool { return true }), nil
}

func (r *memAnalysisRepo) CountByStatus(_ context.Context, status models.AnalysisStatus) (int, error) {
	return r.count(func(a *models.ICPAnalysis) bool { return a.Status == status }), nil
}

func (r *memAnalysisRepo) CreatedSince(_ context.Context, since time.Time) ([]time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []time.Time
	for _, a := range r.items {
		if !a.CreatedAt.Before(since) {
			out = append(out, a.CreatedAt)
		}
	}
	return out, nil
}

func (r *memAnalysisRepo) ConfidenceScores(context.Context) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []int
	for _, a := range r.items {
		if a.ConfidenceScore != nil {
			out = append(out, *a.ConfidenceScore)
		}
	}
	return out, nil
}

func (r *memAnalysisRepo) count(match func(*models.ICPAnalysis) bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.items {
		if match(a) {
			n++
		}
	}
	return n
}

// seed stores a as is and returns its id.
func (r *memAnalysisRepo) seed(a models.ICPAnalysis) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if a.ID == "" {
		a.ID = fmt.Sprintf("analysis-%d", r.seq)
	}
	r.items[a.ID] = &a
	return a.ID
}

type memStrategyRepo struct {
	mu    sync.Mutex
	seq   int
	items map[string]*models.GTMStrategy
}

func newMemStrategyRepo() *memStrategyRepo {
	return &memStrategyRepo{items: map[string]*models.GTMStrategy{}}
}

func (r *memStrategyRepo) Create(_ context.Context, s *models.GTMStrategy) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	id := fmt.Sprintf("strategy-%d", r.seq)
	c := *s
	c.ID = id
	r.items[id] = &c
	return id, nil
}

func (r *memStrategyRepo) GetByID(_ context.Context, id string) (*models.GTMStrategy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	c := *s
	return &c, nil
}

func (r *memStrategyRepo) FindByAnalysisAndUser(_ context.Context, icpAnalysisID, userID string) (*models.GTMStrategy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.items {
		if s.ICPAnalysisID == icpAnalysisID && s.UserID == userID {
			c := *s
			return &c, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r *memStrategyRepo) ListByUser(_ context.Context, userID string, filter models.StrategyFilter) ([]*models.GTMStrategy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.GTMStrategy
	for _, s := range r.items {
		if s.UserID != userID || (filter.ICPAnalysisID != "" && s.ICPAnalysisID != filter.ICPAnalysisID) {
			continue
		}
		c := *s
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *memStrategyRepo) CountByUser(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.items {
		if s.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *memStrategyRepo) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items), nil
}

func (r *memStrategyRepo) CreatedSince(_ context.Context, since time.Time) ([]time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []time.Time
	for _, s := range r.items {
		if !s.CreatedAt.Before(since) {
			out = append(out, s.CreatedAt)
		}
	}
	return out, nil
}

type memSettingsRepo struct {
	mu    sync.Mutex
	items map[string]models.Settings
	saves int
}

func newMemSettingsRepo() *memSettingsRepo {
	return &memSettingsRepo{items: map[string]models.Settings{}}
}

func (r *memSettingsRepo) Get(_ context.Context, userID string) (*models.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[userID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &s, nil
}

func (r *memSettingsRepo) Save(_ context.Context, s *models.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.items[s.UserID] = *s
	return nil
}

type memUserRepo struct {
	mu    sync.Mutex
	items map[string]models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{items: map[string]models.User{}}
}

func (r *memUserRepo) GetByID(_ context.Context, userID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.items[userID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &u, nil
}

func (r *memUserRepo) Upsert(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[u.ID] = *u
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[userID]; !ok {
		return db.ErrNotFound
	}
	delete(r.items, userID)
	return nil
}

func (r *memUserRepo) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items), nil
}

func (r *memUserRepo) CountByPlan(_ context.Context, plan models.Plan) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, u := range r.items {
		if u.Plan == plan {
			n++
		}
	}
	return n, nil
}

func (r *memUserRepo) CreatedSince(_ context.Context, since time.Time) ([]time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []time.Time
	for _, u := range r.items {
		if !u.CreatedAt.Before(since) {
			out = append(out, u.CreatedAt)
		}
	}
	return out, nil
}

type memWaitlistRepo struct {
	mu    sync.Mutex
	seq   int
	items []models.WaitlistEntry
}

func (r *memWaitlistRepo) Create(_ context.Context, e *models.WaitlistEntry) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	c := *e
	c.ID = fmt.Sprintf("entry-%d", r.seq)
	r.items = append(r.items, c)
	return c.ID, nil
}

func (r *memWaitlistRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.items {
		if e.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *memWaitlistRepo) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items), nil
}

func (r *memWaitlistRepo) CreatedSince(_ context.Context, since time.Time) ([]time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []time.Time
	for _, e := range r.items {
		if !e.CreatedAt.Before(since) {
			out = append(out, e.CreatedAt)
		}
	}
	return out, nil
}

func (r *memWaitlistRepo) Recent(_ context.Context, limit int) ([]*models.WaitlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.WaitlistEntry
	for i := len(r.items) - 1; i >= 0 && len(out) < limit; i-- {
		c := r.items[i]
		out = append(out, &c)
	}
	return out, nil
}

// Generation and extraction doubles.

type mockGenerator struct{ mock.Mock }

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (any, error) {
	args := m.Called(ctx, prompt)
	return args.Get(0), args.Error(1)
}

func (m *mockGenerator) Name() string { return "mock" }

// promptAt returns the prompt passed to the i-th Generate call.
func (m *mockGenerator) promptAt(i int) string {
	return m.Calls[i].Arguments.String(1)
}

type recordingSelector struct {
	gen  generation.Generator
	mu   sync.Mutex
	seen []models.Settings
}

func (s *recordingSelector) For(settings *models.Settings) generation.Generator {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, *settings)
	return s.gen
}

type fakeExtractor struct {
	content   string
	err       error
	calls     int
	onExtract func()
}

func (f *fakeExtractor) Extract(context.Context, string) (string, error) {
	f.calls++
	if f.onExtract != nil {
		f.onExtract()
	}
	return f.content, f.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

const (
	testAdminEmail = "founder@launchkit.test"
	testTrialMax   = 3
	scrapedAcme    = `{"url":"https://www.acme.test","title":"Acme Billing","heroText":"Invoices that chase themselves"}`
)

// testEnv wires every service against in-memory repositories.
type testEnv struct {
	analyses   *memAnalysisRepo
	strategies *memStrategyRepo
	settings   *memSettingsRepo
	users      *memUserRepo
	waitlist   *memWaitlistRepo

	gen       *mockGenerator
	selector  *recordingSelector
	extractor *fakeExtractor
	publisher *recordingPublisher

	userService     UserService
	settingsService SettingsService
	planService     PlanService
	analysisService AnalysisService
	strategyService StrategyService
	cardService     CardService
	waitlistService WaitlistService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	env := &testEnv{
		analyses:   newMemAnalysisRepo(),
		strategies: newMemStrategyRepo(),
		settings:   newMemSettingsRepo(),
		users:      newMemUserRepo(),
		waitlist:   &memWaitlistRepo{},
		gen:        &mockGenerator{},
		extractor:  &fakeExtractor{content: scrapedAcme},
		publisher:  &recordingPublisher{},
	}
	env.selector = &recordingSelector{gen: env.gen}
	catalog := prompts.Default()

	env.userService = NewUserService(env.users, []string{testAdminEmail}, logger)
	env.userService.(*userService).now = clock

	env.settingsService = NewSettingsService(env.settings, logger)
	env.settingsService.(*settingsService).now = clock

	env.planService = NewPlanService(env.users, env.analyses, env.strategies, env.userService, testTrialMax, logger)

	env.analysisService = NewAnalysisService(env.analyses, env.extractor, catalog, env.selector,
		env.settingsService, env.planService, env.publisher, logger)
	env.analysisService.(*analysisService).now = clock

	env.strategyService = NewStrategyService(env.strategies, env.analyses, catalog, env.selector,
		env.settingsService, env.planService, env.publisher, logger)
	env.strategyService.(*strategyService).now = clock

	env.cardService = NewCardService(env.analyses, catalog, env.selector, env.settingsService, logger)

	env.waitlistService = NewWaitlistService(env.waitlist, env.publisher, logger)
	env.waitlistService.(*waitlistService).now = clock
	return env
}

// seedCompleted stores a completed analysis owned by userID.
func (e *testEnv) seedCompleted(userID string) string {
	score := 80
	return e.analyses.seed(models.ICPAnalysis{
		UserID:          userID,
		URL:             "https://acme.test",
		Status:          models.AnalysisCompleted,
		ScrapedContent:  scrapedAcme,
		ICPResult:       map[string]any{"primaryICP": "Finance lead at a 20-person agency"},
		PrimaryICP:      "Finance lead at a 20-person agency",
		ConfidenceScore: &score,
		CreatedAt:       fixedNow.Add(-time.Hour),
		UpdatedAt:       fixedNow.Add(-time.Hour),
	})
}
