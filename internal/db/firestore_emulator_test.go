package db

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchkit-backend-go/internal/models"
)

// These tests talk to the Firestore emulator and are skipped unless FIRESTORE_EMULATOR_HOST is set.
func emulatorClient(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := firestore.NewClient(context.Background(), "launchkit-test")
	require.NoError(t, err)
	SetFirestoreClient(client)
	t.Cleanup(func() { _ = CloseFirestore() })
	return client
}

func TestAnalysisRepositoryLifecycle(t *testing.T) {
	client := emulatorClient(t)
	repo := NewFirestoreAnalysisRepository(GetFirestoreClient())
	require.Same(t, client, GetFirestoreClient())
	ctx := context.Background()
	userID := "user_" + uuid.NewString()

	now := time.Now().UTC()
	a := &models.ICPAnalysis{UserID: userID, URL: "https://www.example.com", Status: models.AnalysisPending, CreatedAt: now, UpdatedAt: now}
	id, err := repo.Create(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, id, a.ID)

	score := 82
	a.Status = models.AnalysisCompleted
	a.ICPResult = map[string]interface{}{"primaryICP": "Seed-stage founders"}
	a.PrimaryICP = "Seed-stage founders"
	a.ConfidenceScore = &score
	require.NoError(t, repo.Update(ctx, a))

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.AnalysisCompleted, got.Status)
	assert.Equal(t, "Seed-stage founders", got.PrimaryICP)
	require.NotNil(t, got.ConfidenceScore)
	assert.Equal(t, 82, *got.ConfidenceScore)

	n, err := repo.CountByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = repo.GetByID(ctx, "missing-"+uuid.NewString())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStrategyRepositoryFindByAnalysisAndUser(t *testing.T) {
	emulatorClient(t)
	repo := NewFirestoreStrategyRepository(GetFirestoreClient())
	ctx := context.Background()
	analysisID := uuid.NewString()

	_, err := repo.FindByAnalysisAndUser(ctx, analysisID, "user_a")
	assert.True(t, errors.Is(err, ErrNotFound))

	s := &models.GTMStrategy{UserID: "user_a", ICPAnalysisID: analysisID, GTMResult: map[string]interface{}{"k": "v"}, CreatedAt: time.Now().UTC()}
	id, err := repo.Create(ctx, s)
	require.NoError(t, err)

	found, err := repo.FindByAnalysisAndUser(ctx, analysisID, "user_a")
	require.NoError(t, err)
	assert.Equal(t, id, found.ID)
}

func TestWaitlistRepositoryExistsByEmail(t *testing.T) {
	emulatorClient(t)
	repo := NewFirestoreWaitlistRepository(GetFirestoreClient())
	ctx := context.Background()
	email := uuid.NewString() + "@example.com"

	exists, err := repo.ExistsByEmail(ctx, email)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.Create(ctx, &models.WaitlistEntry{Email: email, VentureName: "Acme", CreatedAt: time.Now().UTC()})
	require.NoError(t, err)

	exists, err = repo.ExistsByEmail(ctx, email)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSettingsRepositoryRoundTrip(t *testing.T) {
	emulatorClient(t)
	repo := NewFirestoreSettingsRepository(GetFirestoreClient())
	ctx := context.Background()
	userID := "user_" + uuid.NewString()

	_, err := repo.Get(ctx, userID)
	assert.True(t, errors.Is(err, ErrNotFound))

	s := models.DefaultSettings(userID)
	s.AIProvider = models.AIProviderAnthropic
	require.NoError(t, repo.Save(ctx, s))

	got, err := repo.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, models.AIProviderAnthropic, got.AIProvider)
	assert.Equal(t, models.AIModeDirect, got.AIMode)
}
