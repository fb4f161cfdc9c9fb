package feed

import (
	"context"
	"sync"
	"time"

	"solana-flow-bot/internal/domain"
)

// DefaultCacheTTL is how long a cached pool list stays fresh.
const DefaultCacheTTL = 30 * time.Second

// Cache wraps a Source with a TTL cache over pool records. It is an
// explicitly owned object: callers construct it, inject it, and control
// invalidation.
type Cache struct {
	source Source
	ttl    time.Duration
	now    func() time.Time

	mu        sync.RWMutex
	pools     []domain.PoolRecord
	byID      map[string]*domain.PoolRecord
	fetchedAt time.Time
}

var _ Source = (*Cache)(nil)

// NewCache creates a cache over source. A non-positive ttl falls back to
// DefaultCacheTTL.
func NewCache(source Source, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		source: source,
		ttl:    ttl,
		now:    time.Now,
		byID:   make(map[string]*domain.PoolRecord),
	}
}

// WithClock overrides the cache's time source. Used in tests.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// Pools returns the cached pool list, refreshing from the source when the
// cache is stale or empty.
func (c *Cache) Pools(ctx context.Context) ([]domain.PoolRecord, error) {
	c.mu.RLock()
	if c.pools != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		pools := make([]domain.PoolRecord, len(c.pools))
		copy(pools, c.pools)
		c.mu.RUnlock()
		return pools, nil
	}
	c.mu.RUnlock()

	fresh, err := c.source.Pools(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.pools = fresh
	c.byID = make(map[string]*domain.PoolRecord, len(fresh))
	for i := range fresh {
		c.byID[fresh[i].ID] = &fresh[i]
	}
	c.fetchedAt = c.now()
	c.mu.Unlock()

	pools := make([]domain.PoolRecord, len(fresh))
	copy(pools, fresh)
	return pools, nil
}

// Pool returns a single pool, served from the cached list when fresh.
func (c *Cache) Pool(ctx context.Context, id string) (*domain.PoolRecord, error) {
	c.mu.RLock()
	if c.pools != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		if pool, ok := c.byID[id]; ok {
			copied := *pool
			c.mu.RUnlock()
			return &copied, nil
		}
	}
	c.mu.RUnlock()

	return c.source.Pool(ctx, id)
}

// Invalidate drops the entire cached pool list.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.pools = nil
	c.byID = make(map[string]*domain.PoolRecord)
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}

// InvalidatePool drops a single pool from the cache. The pool list itself
// stays fresh; only lookups by ID fall through to the source.
func (c *Cache) InvalidatePool(id string) {
	c.mu.Lock()
	delete(c.byID, id)
	c.mu.Unlock()
}
