package cache

import (
	"context"
	"sync"
	"time"

	"github.com/comitanigiacomo/cadence-engine/internal/core/domain"
)

type memoryEntry struct {
	summary   *domain.AnalyticsSummary
	expiresAt time.Time
}

// MemoryResultCache is an in-process TTL cache for analytics summaries.
// Used in tests and redis-less deployments; every instance has its own
// lifecycle, so tests don't pollute each other.
type MemoryResultCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]memoryEntry
}

func NewMemoryResultCache(ttl time.Duration) *MemoryResultCache {
	return &MemoryResultCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

// WithClock overrides the time source, so tests can expire entries without
// sleeping.
func (c *MemoryResultCache) WithClock(now func() time.Time) *MemoryResultCache {
	c.now = now
	return c
}

func (c *MemoryResultCache) Get(ctx context.Context, key string) (*domain.AnalyticsSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.summary, true
}

func (c *MemoryResultCache) Set(ctx context.Context, key string, summary *domain.AnalyticsSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memoryEntry{
		summary:   summary,
		expiresAt: c.now().Add(c.ttl),
	}
}

func (c *MemoryResultCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]memoryEntry)
	return nil
}
