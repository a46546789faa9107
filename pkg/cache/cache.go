package cache

import (
	"context"
	"time"
)

// Cache defines the interface for caching services.
type Cache interface {
	// Get returns ok=false when the key does not exist.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// NopCache never stores anything. It is used when no Redis address is configured.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (string, bool, error)        { return "", false, nil }
func (NopCache) Set(context.Context, string, string, time.Duration) error { return nil }
func (NopCache) Delete(context.Context, string) error                     { return nil }
func (NopCache) Close() error                                             { return nil }
