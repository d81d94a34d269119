package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/machshop/backend/internal/domain/estimating"
	"github.com/shopspring/decimal"
)

type listPriceEntry struct {
	price     decimal.Decimal
	expiresAt time.Time
}

// InMemoryListPriceCache is a process-local list price cache for
// single-instance deployments and tests. Entries expire lazily on read.
type InMemoryListPriceCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]listPriceEntry
	ttl     time.Duration
}

// NewInMemoryListPriceCache creates an in-memory list price cache.
// A non-positive ttl falls back to the default.
func NewInMemoryListPriceCache(ttl time.Duration) *InMemoryListPriceCache {
	if ttl <= 0 {
		ttl = defaultListPriceTTL
	}
	return &InMemoryListPriceCache{
		entries: make(map[uuid.UUID]listPriceEntry),
		ttl:     ttl,
	}
}

// GetListPrice retrieves a cached list price
func (c *InMemoryListPriceCache) GetListPrice(_ context.Context, itemID uuid.UUID) (decimal.Decimal, bool) {
	c.mu.RLock()
	entry, ok := c.entries[itemID]
	c.mu.RUnlock()

	if !ok {
		return decimal.Zero, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, itemID)
		c.mu.Unlock()
		return decimal.Zero, false
	}
	return entry.price, true
}

// SetListPrice stores a list price with the configured TTL
func (c *InMemoryListPriceCache) SetListPrice(_ context.Context, itemID uuid.UUID, price decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[itemID] = listPriceEntry{
		price:     price,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// InvalidateListPrice removes the cached price for an item
func (c *InMemoryListPriceCache) InvalidateListPrice(_ context.Context, itemID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, itemID)
}

// Ensure both implementations satisfy the domain interface
var (
	_ estimating.ListPriceCache = (*InMemoryListPriceCache)(nil)
	_ estimating.ListPriceCache = (*RedisListPriceCache)(nil)
)
