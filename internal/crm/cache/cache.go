// Package cache provides the TTL caches shared by the permission resolver,
// the instance lookup and the webhook idempotency check. Values are rebuilt
// from the store on miss, so any entry may be dropped at any time.
package cache

import (
	"context"
	"time"
)

// Cache is a key/value store with per-entry expiry.
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, bool, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error

	// Add stores value only when key is absent or expired and reports whether
	// it did.
	Add(ctx context.Context, key string, value V, ttl time.Duration) (bool, error)

	Delete(ctx context.Context, keys ...string) error
}
