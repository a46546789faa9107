package api

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"launchkit-backend-go/internal/core"
	"launchkit-backend-go/internal/generation"
	"launchkit-backend-go/internal/models"
	"launchkit-backend-go/internal/scraper"
)

var webhookKey = []byte("launchkit-test-webhook-signing-k")

type testServer struct {
	router     *gin.Engine
	analyses   *stubAnalyses
	strategies *stubStrategies
	cards      *stubCards
	settings   *stubSettings
	plans      *stubPlans
	users      *stubUsers
	waitlist   *stubWaitlist
	stats      *stubStats
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ts := &testServer{
		router:     gin.New(),
		analyses:   &stubAnalyses{},
		strategies: &stubStrategies{},
		cards:      &stubCards{},
		settings:   &stubSettings{},
		plans:      &stubPlans{},
		users:      &stubUsers{},
		waitlist:   &stubWaitlist{},
		stats:      &stubStats{},
	}
	webhooks, err := NewClerkWebhookVerifier("whsec_" + base64.StdEncoding.EncodeToString(webhookKey))
	require.NoError(t, err)

	SetupRoutes(ts.router, zap.NewNop(), tokenVerifier{}, webhooks, Services{
		Analyses:   ts.analyses,
		Strategies: ts.strategies,
		Cards:      ts.cards,
		Settings:   ts.settings,
		Plans:      ts.plans,
		Users:      ts.users,
		Waitlist:   ts.waitlist,
		Stats:      ts.stats,
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "UP", decode(t, w)["status"])
}

func TestCreateAnalysis_Success(t *testing.T) {
	ts := newTestServer(t)
	var got core.Caller
	ts.analyses.create = func(caller core.Caller, req models.CreateAnalysisRequest) (*models.ICPAnalysis, error) {
		got = caller
		return &models.ICPAnalysis{
			ID: "a1", UserID: caller.UserID, URL: req.URL, Status: models.AnalysisCompleted,
			ICPResult: map[string]any{"primaryICP": "Ops lead"},
		}, nil
	}

	w := ts.do(t, http.MethodPost, "/api/icp-scrape", userToken, map[string]string{"url": "https://acme.test"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	analysis := body["analysis"].(map[string]any)
	assert.Equal(t, "completed", analysis["status"])
	assert.NotNil(t, analysis["icpResult"])
	assert.Equal(t, core.Caller{UserID: "user_1", Email: "ana@example.com"}, got)
}

func TestCreateAnalysis_AnonymousAndBadToken(t *testing.T) {
	ts := newTestServer(t)
	ts.analyses.create = func(caller core.Caller, req models.CreateAnalysisRequest) (*models.ICPAnalysis, error) {
		assert.True(t, caller.IsAnonymous())
		return &models.ICPAnalysis{ID: "a1", Status: models.AnalysisCompleted}, nil
	}

	w := ts.do(t, http.MethodPost, "/api/icp-scrape", "", map[string]string{"url": "https://acme.test"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(t, http.MethodPost, "/api/icp-scrape", "forged", map[string]string{"url": "https://acme.test"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid or expired authentication token", body["error"])
}

func TestCreateAnalysis_Validation(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name string
		body any
		want string
	}{
		{name: "missing url", body: map[string]string{}, want: "url is required"},
		{name: "description too long", body: map[string]string{"url": "https://acme.test", "productDescription": string(bytes.Repeat([]byte("a"), 2001))}, want: "productDescription must be at most 2000 characters"},
		{name: "malformed json", body: `{"url":`, want: "Invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/icp-scrape", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decode(t, w)
			assert.Equal(t, tt.want, body["error"])
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestCreateAnalysis_ErrorMapping(t *testing.T) {
	failed := &models.ICPAnalysis{ID: "a1", Status: models.AnalysisFailed, ErrorMessage: "x"}
	tests := []struct {
		name         string
		analysis     *models.ICPAnalysis
		err          error
		wantStatus   int
		wantError    string
		wantAnalysis bool
	}{
		{
			name:         "blocked by anti-bot",
			analysis:     failed,
			err:          &scraper.Error{Kind: scraper.KindBlocked, StatusCode: 403, Message: "anti-bot protection detected"},
			wantStatus:   http.StatusBadGateway,
			wantError:    "anti-bot protection detected",
			wantAnalysis: true,
		},
		{
			name:         "backend not configured",
			analysis:     failed,
			err:          fmt.Errorf("%w: OPENAI_API_KEY is not set", generation.ErrNotConfigured),
			wantStatus:   http.StatusInternalServerError,
			wantError:    "generation backend not configured: OPENAI_API_KEY is not set",
			wantAnalysis: true,
		},
		{
			name:         "invalid model output",
			analysis:     failed,
			err:          core.ErrInvalidModelOutput,
			wantStatus:   http.StatusBadGateway,
			wantError:    "The AI response could not be read. Please try again.",
			wantAnalysis: true,
		},
		{
			name:       "invalid url",
			err:        core.ErrInvalidURL,
			wantStatus: http.StatusBadRequest,
			wantError:  core.ErrInvalidURL.Error(),
		},
		{
			name:       "quota",
			err:        &core.QuotaError{Used: 3, Max: 3},
			wantStatus: http.StatusForbidden,
			wantError:  (&core.QuotaError{Used: 3, Max: 3}).Error(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.analyses.create = func(core.Caller, models.CreateAnalysisRequest) (*models.ICPAnalysis, error) {
				return tt.analysis, tt.err
			}
			w := ts.do(t, http.MethodPost, "/api/icp-scrape", userToken, map[string]string{"url": "https://acme.test"})
			assert.Equal(t, tt.wantStatus, w.Code)
			body := decode(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantError, body["error"])
			_, hasAnalysis := body["analysis"]
			assert.Equal(t, tt.wantAnalysis, hasAnalysis)
		})
	}
}

func TestListAnalyses(t *testing.T) {
	ts := newTestServer(t)
	ts.analyses.list = func(caller core.Caller, limit int) ([]*models.ICPAnalysis, error) {
		assert.Equal(t, 5, limit)
		return nil, nil
	}

	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/icp-scrape", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/api/icp-scrape?limit=abc", userToken, nil).Code)

	w := ts.do(t, http.MethodGet, "/api/icp-scrape?limit=5", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, decode(t, w)["analyses"])
}

func TestGetAnalysis_StatusCodes(t *testing.T) {
	ts := newTestServer(t)
	ts.analyses.get = func(_ core.Caller, id string) (*models.ICPAnalysis, error) {
		switch id {
		case "mine":
			return &models.ICPAnalysis{ID: id}, nil
		case "theirs":
			return nil, core.ErrForbidden
		}
		return nil, fmt.Errorf("%w: '%s'", core.ErrAnalysisNotFound, id)
	}

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/icp-scrape/mine", userToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, ts.do(t, http.MethodGet, "/api/icp-scrape/theirs", userToken, nil).Code)
	w := ts.do(t, http.MethodGet, "/api/icp-scrape/gone", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, core.ErrAnalysisNotFound.Error(), decode(t, w)["error"])
}

func TestGenerateStrategy_StatusReflectsCreation(t *testing.T) {
	ts := newTestServer(t)
	created := true
	ts.strategies.generate = func(_ core.Caller, id string) (*models.GTMStrategy, bool, error) {
		switch id {
		case "pending":
			return nil, false, core.ErrAnalysisNotCompleted
		case "nope":
			return nil, false, core.ErrAnalysisNotFound
		}
		return &models.GTMStrategy{ID: "s1", ICPAnalysisID: id}, created, nil
	}

	w := ts.do(t, http.MethodPost, "/api/gtm-strategy", userToken, map[string]string{"icpAnalysisId": "a1"})
	assert.Equal(t, http.StatusCreated, w.Code)
	created = false
	w = ts.do(t, http.MethodPost, "/api/gtm-strategy", userToken, map[string]string{"icpAnalysisId": "a1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s1", decode(t, w)["strategy"].(map[string]any)["id"])

	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/api/gtm-strategy", userToken, map[string]string{"icpAnalysisId": "pending"}).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPost, "/api/gtm-strategy", userToken, map[string]string{"icpAnalysisId": "nope"}).Code)

	w = ts.do(t, http.MethodPost, "/api/gtm-strategy", userToken, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "icpAnalysisId is required", decode(t, w)["error"])
}

func TestListStrategies_Filters(t *testing.T) {
	ts := newTestServer(t)
	var got models.StrategyFilter
	ts.strategies.list = func(_ core.Caller, filter models.StrategyFilter) ([]*models.GTMStrategy, error) {
		got = filter
		return []*models.GTMStrategy{{ID: "s1"}}, nil
	}

	w := ts.do(t, http.MethodGet, "/api/gtm-strategy?icpAnalysisId=a1&limit=3&includeDetails=true", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StrategyFilter{ICPAnalysisID: "a1", Limit: 3, IncludeDetails: true}, got)
	assert.Len(t, decode(t, w)["strategies"], 1)

	w = ts.do(t, http.MethodGet, "/api/gtm-strategy?includeDetails=maybe", userToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateCard(t *testing.T) {
	ts := newTestServer(t)
	ts.cards.generate = func(_ core.Caller, id string) (map[string]any, error) {
		return map[string]any{"name": "Finance Fiona"}, nil
	}
	w := ts.do(t, http.MethodPost, "/api/icp-card", "", map[string]string{"icpAnalysisId": "a1"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Finance Fiona", body["card"].(map[string]any)["name"])
}

func TestSettings(t *testing.T) {
	ts := newTestServer(t)
	ts.settings.update = func(userID string, req models.UpdateSettingsRequest) (*models.Settings, error) {
		s := models.DefaultSettings(userID)
		s.AIProvider = req.AIProvider
		return s, nil
	}

	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/settings", "", nil).Code)

	w := ts.do(t, http.MethodGet, "/api/settings", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "openai", decode(t, w)["settings"].(map[string]any)["aiProvider"])

	w = ts.do(t, http.MethodPatch, "/api/settings", userToken, map[string]string{"aiProvider": "anthropic"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anthropic", decode(t, w)["settings"].(map[string]any)["aiProvider"])

	w = ts.do(t, http.MethodPatch, "/api/settings", userToken, map[string]string{"aiProvider": "gemini"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "aiProvider must be one of: openai, anthropic", decode(t, w)["error"])

	w = ts.do(t, http.MethodPatch, "/api/settings", userToken, map[string]string{"aiProvider": "openai", "aiMode": "turbo"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "aiMode must be one of: direct, agent", decode(t, w)["error"])
}

func TestPlan(t *testing.T) {
	ts := newTestServer(t)
	ts.plans.info = &models.PlanInfo{Plan: models.PlanTrial, UsageCount: 1, MaxCreations: 3}

	w := ts.do(t, http.MethodGet, "/api/plan", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"plan": "trial", "usageCount": 1.0, "maxCreations": 3.0, "isAdmin": false}, decode(t, w))
}

func TestAdminRoutes(t *testing.T) {
	ts := newTestServer(t)
	ts.stats.admin = &models.AdminStats{TotalUsers: 7}
	ts.waitlist.stats = &models.WaitlistStats{Total: 2}

	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/admin/stats", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, ts.do(t, http.MethodGet, "/api/admin/stats", userToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, ts.do(t, http.MethodGet, "/api/waitlist/stats", userToken, nil).Code)

	w := ts.do(t, http.MethodGet, "/api/admin/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7.0, decode(t, w)["totalUsers"])

	w = ts.do(t, http.MethodGet, "/api/waitlist/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2.0, decode(t, w)["total"])

	ts.stats.admin, ts.stats.err = nil, fmt.Errorf("firestore unavailable")
	w = ts.do(t, http.MethodGet, "/api/admin/stats", adminToken, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to load admin statistics", decode(t, w)["error"])
}

func TestJoinWaitlist(t *testing.T) {
	ts := newTestServer(t)
	ts.waitlist.join = func(req models.JoinWaitlistRequest) (*models.WaitlistEntry, error) {
		if req.Email == "taken@example.com" {
			return nil, core.ErrWaitlistDuplicate
		}
		return &models.WaitlistEntry{ID: "w1", Email: req.Email, VentureName: req.VentureName}, nil
	}

	w := ts.do(t, http.MethodPost, "/api/waitlist", "", map[string]string{"email": "new@example.com", "ventureName": "Acme"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "w1", decode(t, w)["entry"].(map[string]any)["id"])

	w = ts.do(t, http.MethodPost, "/api/waitlist", "", map[string]string{"email": "taken@example.com", "ventureName": "Acme"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, core.ErrWaitlistDuplicate.Error(), decode(t, w)["error"])

	w = ts.do(t, http.MethodPost, "/api/waitlist", "", map[string]string{"email": "not-an-email", "ventureName": "Acme"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email must be a valid email address", decode(t, w)["error"])
}

// signedWebhook builds a delivery signed the way the identity provider signs them.
func signedWebhook(t *testing.T, payload string, key []byte) *http.Request {
	t.Helper()
	id := "msg_2abc"
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(id + "." + ts + "." + payload))
	signature := "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil))

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/clerk", bytes.NewReader([]byte(payload)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("svix-id", id)
	req.Header.Set("svix-timestamp", ts)
	req.Header.Set("svix-signature", signature)
	return req
}

func TestClerkWebhook_UserCreated(t *testing.T) {
	ts := newTestServer(t)
	payload := `{"type":"user.created","object":"event","data":{"id":"user_42","first_name":"Ana","last_name":"Silva",` +
		`"image_url":"https://img.test/a.png","primary_email_address_id":"idn_2",` +
		`"email_addresses":[{"id":"idn_1","email_address":"old@example.com"},{"id":"idn_2","email_address":"ana@example.com"}]}}`

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, signedWebhook(t, payload, webhookKey))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["success"])

	require.Len(t, ts.users.upserted, 1)
	assert.Equal(t, models.User{
		ID: "user_42", Email: "ana@example.com", FirstName: "Ana", LastName: "Silva", ImageURL: "https://img.test/a.png",
	}, *ts.users.upserted[0])
}

func TestClerkWebhook_UserDeleted(t *testing.T) {
	ts := newTestServer(t)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, signedWebhook(t, `{"type":"user.deleted","data":{"id":"user_42","deleted":true}}`, webhookKey))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"user_42"}, ts.users.deleted)
}

func TestClerkWebhook_RejectsBadSignature(t *testing.T) {
	ts := newTestServer(t)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, signedWebhook(t, `{"type":"user.created","data":{"id":"user_42"}}`, []byte("some-other-key-entirely-00000000")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, ts.users.upserted)

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/clerk", bytes.NewReader([]byte(`{}`)))
	w = httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClerkWebhook_IgnoresOtherEvents(t *testing.T) {
	ts := newTestServer(t)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, signedWebhook(t, `{"type":"session.created","data":{"id":"sess_1"}}`, webhookKey))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, ts.users.upserted)
	assert.Empty(t, ts.users.deleted)
}
