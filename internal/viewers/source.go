package viewers

import (
	"context"
	"fmt"
	"time"

	"github.com/zjrosen/caseview/internal/cachemanager"
	"github.com/zjrosen/caseview/internal/evidence"
)

// ContentSource loads the stored bytes of a file.
type ContentSource interface {
	Bytes(ctx context.Context, c *evidence.Content) ([]byte, error)
}

// CachedSource reads content through an in-memory cache keyed by GUID.
type CachedSource struct {
	cache *cachemanager.ReadThroughCache[string, []byte, *evidence.Content]
	ttl   time.Duration
}

// NewCachedSource caches repo reads for ttl. A ttl of zero disables caching.
func NewCachedSource(repo evidence.ContentRepository, ttl time.Duration) *CachedSource {
	manager := cachemanager.NewInMemoryCacheManager[string, []byte]("content", ttl, cachemanager.DefaultCleanupInterval)
	load := func(_ context.Context, c *evidence.Content) ([]byte, error) {
		data, err := repo.Data(c.RowID())
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", c.DisplayPath(), err)
		}
		return data, nil
	}
	return &CachedSource{
		cache: cachemanager.NewReadThroughCache[string, []byte, *evidence.Content](manager, load, ttl <= 0),
		ttl:   ttl,
	}
}

// Bytes implements ContentSource. Hits extend the entry's TTL.
func (s *CachedSource) Bytes(ctx context.Context, c *evidence.Content) ([]byte, error) {
	return s.cache.GetWithRefresh(ctx, c.GUID(), c, s.ttl)
}

// Invalidate drops every cached entry, e.g. after the case file changed.
func (s *CachedSource) Invalidate(ctx context.Context) error {
	return s.cache.Invalidate(ctx)
}
