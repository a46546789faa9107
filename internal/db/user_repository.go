package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"launchkit-backend-go/internal/models"
)

const usersCollection = "users"

// firestoreUserRepository implements UserRepository using Firestore.
// The identity provider's user ID is used as the document ID.
type firestoreUserRepository struct {
	client *firestore.Client
}

// NewFirestoreUserRepository creates a new instance of firestoreUserRepository.
func NewFirestoreUserRepository(client *firestore.Client) UserRepository {
	if client == nil {
		zap.L().Fatal("Firestore client is not initialized for UserRepository")
	}
	return &firestoreUserRepository{client: client}
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for GetByID operation")
	}
	snap, err := r.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("user with ID '%s' not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user with ID '%s': %w", userID, err)
	}

	var user models.User
	if err := snap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user data for ID '%s': %w", userID, err)
	}
	user.ID = snap.Ref.ID
	return &user, nil
}

// Upsert writes the user with Set, creating the document when it does not exist.
func (r *firestoreUserRepository) Upsert(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return errors.New("user ID cannot be empty for Upsert operation")
	}
	if _, err := r.client.Collection(usersCollection).Doc(user.ID).Set(ctx, user); err != nil {
		return fmt.Errorf("failed to upsert user with ID '%s': %w", user.ID, err)
	}
	return nil
}

// Delete removes the user document. Deleting a missing user is not an error.
func (r *firestoreUserRepository) Delete(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.New("userID cannot be empty for Delete operation")
	}
	if _, err := r.client.Collection(usersCollection).Doc(userID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete user with ID '%s': %w", userID, err)
	}
	return nil
}

func (r *firestoreUserRepository) Count(ctx context.Context) (int, error) {
	n, err := countQuery(ctx, r.client.Collection(usersCollection).Query)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func (r *firestoreUserRepository) CountByPlan(ctx context.Context, plan models.Plan) (int, error) {
	n, err := countQuery(ctx, r.client.Collection(usersCollection).Where("plan", "==", string(plan)))
	if err != nil {
		return 0, fmt.Errorf("failed to count %s users: %w", plan, err)
	}
	return n, nil
}

func (r *firestoreUserRepository) CreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	return createdSince(ctx, r.client, usersCollection, since)
}
