// Package cachemanager provides typed caches over go-cache. Viewers use it to
// keep recently viewed content bytes in memory between tab switches.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager is a typed key/value cache with per-item TTL. Delete and
// Flush back ReadThroughCache.Invalidate when the case changes on disk.
type CacheManager[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
}
