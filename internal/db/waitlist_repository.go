package db

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"launchkit-backend-go/internal/models"
)

const waitlistCollection = "waitlist"

// firestoreWaitlistRepository implements WaitlistRepository using Firestore.
type firestoreWaitlistRepository struct {
	client *firestore.Client
}

func NewFirestoreWaitlistRepository(client *firestore.Client) WaitlistRepository {
	if client == nil {
		zap.L().Fatal("Firestore client is not initialized for WaitlistRepository")
	}
	return &firestoreWaitlistRepository{client: client}
}

func (r *firestoreWaitlistRepository) Create(ctx context.Context, entry *models.WaitlistEntry) (string, error) {
	docRef := r.client.Collection(waitlistCollection).NewDoc()
	entry.ID = docRef.ID
	if _, err := docRef.Create(ctx, entry); err != nil {
		return "", fmt.Errorf("failed to create waitlist entry: %w", err)
	}
	return docRef.ID, nil
}

// ExistsByEmail expects email already normalized to lower case.
func (r *firestoreWaitlistRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	iter := r.client.Collection(waitlistCollection).Where("email", "==", email).Limit(1).Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up waitlist email: %w", err)
	}
	return true, nil
}

func (r *firestoreWaitlistRepository) Count(ctx context.Context) (int, error) {
	n, err := countQuery(ctx, r.client.Collection(waitlistCollection).Query)
	if err != nil {
		return 0, fmt.Errorf("failed to count waitlist entries: %w", err)
	}
	return n, nil
}

func (r *firestoreWaitlistRepository) CreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	return createdSince(ctx, r.client, waitlistCollection, since)
}

func (r *firestoreWaitlistRepository) Recent(ctx context.Context, limit int) ([]*models.WaitlistEntry, error) {
	query := r.client.Collection(waitlistCollection).OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}
	iter := query.Documents(ctx)
	defer iter.Stop()

	entries := []*models.WaitlistEntry{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate waitlist entries: %w", err)
		}
		var e models.WaitlistEntry
		if err := doc.DataTo(&e); err != nil {
			return nil, fmt.Errorf("failed to decode waitlist entry '%s': %w", doc.Ref.ID, err)
		}
		e.ID = doc.Ref.ID
		entries = append(entries, &e)
	}
	return entries, nil
}
