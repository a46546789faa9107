package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"launchkit-backend-go/internal/models"
)

const analysesCollection = "icpAnalyses"

// firestoreAnalysisRepository implements AnalysisRepository using Firestore.
type firestoreAnalysisRepository struct {
	client *firestore.Client
}

// NewFirestoreAnalysisRepository creates a new instance of firestoreAnalysisRepository.
func NewFirestoreAnalysisRepository(client *firestore.Client) AnalysisRepository {
	if client == nil {
		zap.L().Fatal("Firestore client is not initialized for AnalysisRepository")
	}
	return &firestoreAnalysisRepository{client: client}
}

// Create adds a new analysis with an auto-generated ID and sets analysis.ID.
func (r *firestoreAnalysisRepository) Create(ctx context.Context, analysis *models.ICPAnalysis) (string, error) {
	docRef := r.client.Collection(analysesCollection).NewDoc()
	analysis.ID = docRef.ID
	if _, err := docRef.Create(ctx, analysis); err != nil {
		return "", fmt.Errorf("failed to create analysis: %w", err)
	}
	return docRef.ID, nil
}

func (r *firestoreAnalysisRepository) GetByID(ctx context.Context, id string) (*models.ICPAnalysis, error) {
	if id == "" {
		return nil, errors.New("analysis ID cannot be empty for GetByID operation")
	}
	snap, err := r.client.Collection(analysesCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("analysis with ID '%s' not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get analysis with ID '%s': %w", id, err)
	}
	return decodeAnalysis(snap)
}

func (r *firestoreAnalysisRepository) Update(ctx context.Context, analysis *models.ICPAnalysis) error {
	if analysis.ID == "" {
		return errors.New("analysis ID cannot be empty for Update operation")
	}
	if _, err := r.client.Collection(analysesCollection).Doc(analysis.ID).Set(ctx, analysis); err != nil {
		return fmt.Errorf("failed to update analysis with ID '%s': %w", analysis.ID, err)
	}
	return nil
}

// ListCompletedByUser returns the user's completed analyses, newest first.
// Requires a composite index on (userId, status, createdAt desc).
func (r *firestoreAnalysisRepository) ListCompletedByUser(ctx context.Context, userID string, limit int) ([]*models.ICPAnalysis, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for ListCompletedByUser operation")
	}
	query := r.client.Collection(analysesCollection).
		Where("userId", "==", userID).
		Where("status", "==", string(models.AnalysisCompleted)).
		OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	analyses := []*models.ICPAnalysis{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate analyses for user '%s': %w", userID, err)
		}
		a, err := decodeAnalysis(doc)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, a)
	}
	return analyses, nil
}

// CountByUser counts every analysis the user created, whatever its status.
func (r *firestoreAnalysisRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, errors.New("userID cannot be empty for CountByUser operation")
	}
	n, err := countQuery(ctx, r.client.Collection(analysesCollection).Where("userId", "==", userID))
	if err != nil {
		return 0, fmt.Errorf("failed to count analyses for user '%s': %w", userID, err)
	}
	return n, nil
}

func (r *firestoreAnalysisRepository) Count(ctx context.Context) (int, error) {
	n, err := countQuery(ctx, r.client.Collection(analysesCollection).Query)
	if err != nil {
		return 0, fmt.Errorf("failed to count analyses: %w", err)
	}
	return n, nil
}

func (r *firestoreAnalysisRepository) CountByStatus(ctx context.Context, st models.AnalysisStatus) (int, error) {
	n, err := countQuery(ctx, r.client.Collection(analysesCollection).Where("status", "==", string(st)))
	if err != nil {
		return 0, fmt.Errorf("failed to count %s analyses: %w", st, err)
	}
	return n, nil
}

func (r *firestoreAnalysisRepository) CreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	return createdSince(ctx, r.client, analysesCollection, since)
}

// ConfidenceScores returns the confidence score of every completed analysis that has one.
func (r *firestoreAnalysisRepository) ConfidenceScores(ctx context.Context) ([]int, error) {
	iter := r.client.Collection(analysesCollection).
		Where("status", "==", string(models.AnalysisCompleted)).
		Select("confidenceScore").
		Documents(ctx)
	defer iter.Stop()

	var scores []int
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate confidence scores: %w", err)
		}
		v, err := doc.DataAt("confidenceScore")
		if err != nil {
			continue
		}
		if n, ok := v.(int64); ok {
			scores = append(scores, int(n))
		}
	}
	return scores, nil
}

func decodeAnalysis(snap *firestore.DocumentSnapshot) (*models.ICPAnalysis, error) {
	var a models.ICPAnalysis
	if err := snap.DataTo(&a); err != nil {
		return nil, fmt.Errorf("failed to decode analysis data for ID '%s': %w", snap.Ref.ID, err)
	}
	a.ID = snap.Ref.ID
	return &a, nil
}
