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

const strategiesCollection = "gtmStrategies"

// firestoreStrategyRepository implements StrategyRepository using Firestore.
type firestoreStrategyRepository struct {
	client *firestore.Client
}

// NewFirestoreStrategyRepository creates a new instance of firestoreStrategyRepository.
func NewFirestoreStrategyRepository(client *firestore.Client) StrategyRepository {
	if client == nil {
		zap.L().Fatal("Firestore client is not initialized for StrategyRepository")
	}
	return &firestoreStrategyRepository{client: client}
}

func (r *firestoreStrategyRepository) Create(ctx context.Context, strategy *models.GTMStrategy) (string, error) {
	docRef := r.client.Collection(strategiesCollection).NewDoc()
	strategy.ID = docRef.ID
	if _, err := docRef.Create(ctx, strategy); err != nil {
		return "", fmt.Errorf("failed to create strategy: %w", err)
	}
	return docRef.ID, nil
}

func (r *firestoreStrategyRepository) GetByID(ctx context.Context, id string) (*models.GTMStrategy, error) {
	if id == "" {
		return nil, errors.New("strategy ID cannot be empty for GetByID operation")
	}
	snap, err := r.client.Collection(strategiesCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("strategy with ID '%s' not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get strategy with ID '%s': %w", id, err)
	}
	return decodeStrategy(snap)
}

func (r *firestoreStrategyRepository) FindByAnalysisAndUser(ctx context.Context, icpAnalysisID, userID string) (*models.GTMStrategy, error) {
	iter := r.client.Collection(strategiesCollection).
		Where("icpAnalysisId", "==", icpAnalysisID).
		Where("userId", "==", userID).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("strategy for analysis '%s' and user '%s': %w", icpAnalysisID, userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up strategy for analysis '%s': %w", icpAnalysisID, err)
	}
	return decodeStrategy(doc)
}

// ListByUser returns the user's strategies, newest first. Without IncludeDetails only the
// generated payloads are left out.
func (r *firestoreStrategyRepository) ListByUser(ctx context.Context, userID string, filter models.StrategyFilter) ([]*models.GTMStrategy, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for ListByUser operation")
	}
	query := r.client.Collection(strategiesCollection).Where("userId", "==", userID)
	if filter.ICPAnalysisID != "" {
		query = query.Where("icpAnalysisId", "==", filter.ICPAnalysisID)
	}
	if !filter.IncludeDetails {
		query = query.Select("userId", "icpAnalysisId", "createdAt")
	}
	query = query.OrderBy("createdAt", firestore.Desc)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	strategies := []*models.GTMStrategy{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate strategies for user '%s': %w", userID, err)
		}
		s, err := decodeStrategy(doc)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, s)
	}
	return strategies, nil
}

func (r *firestoreStrategyRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, errors.New("userID cannot be empty for CountByUser operation")
	}
	n, err := countQuery(ctx, r.client.Collection(strategiesCollection).Where("userId", "==", userID))
	if err != nil {
		return 0, fmt.Errorf("failed to count strategies for user '%s': %w", userID, err)
	}
	return n, nil
}

func (r *firestoreStrategyRepository) Count(ctx context.Context) (int, error) {
	n, err := countQuery(ctx, r.client.Collection(strategiesCollection).Query)
	if err != nil {
		return 0, fmt.Errorf("failed to count strategies: %w", err)
	}
	return n, nil
}

func (r *firestoreStrategyRepository) CreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	return createdSince(ctx, r.client, strategiesCollection, since)
}

func decodeStrategy(snap *firestore.DocumentSnapshot) (*models.GTMStrategy, error) {
	var s models.GTMStrategy
	if err := snap.DataTo(&s); err != nil {
		return nil, fmt.Errorf("failed to decode strategy data for ID '%s': %w", snap.Ref.ID, err)
	}
	s.ID = snap.Ref.ID
	return &s, nil
}
