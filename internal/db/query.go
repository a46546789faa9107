package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/iterator"
)

// countQuery runs a server-side COUNT aggregation.
func countQuery(ctx context.Context, q firestore.Query) (int, error) {
	results, err := q.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, err
	}
	raw, ok := results["all"]
	if !ok {
		return 0, errors.New("aggregation result missing count")
	}
	v, ok := raw.(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("unexpected aggregation value type %T", raw)
	}
	return int(v.GetIntegerValue()), nil
}

// createdSince returns the createdAt of every document in collection created at or after since.
func createdSince(ctx context.Context, client *firestore.Client, collection string, since time.Time) ([]time.Time, error) {
	iter := client.Collection(collection).
		Where("createdAt", ">=", since).
		Select("createdAt").
		Documents(ctx)
	defer iter.Stop()

	var out []time.Time
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate %s: %w", collection, err)
		}
		ts, err := doc.DataAt("createdAt")
		if err != nil {
			continue
		}
		if t, ok := ts.(time.Time); ok {
			out = append(out, t)
		}
	}
	return out, nil
}
