package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultListPriceTTL = 15 * time.Minute

// RedisConfig holds connection settings for Redis-backed caches
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisListPriceCache caches resolved list prices in Redis. The cache is
// advisory: any Redis failure is logged and reported as a miss so pricing
// keeps working without it.
type RedisListPriceCache struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	ttl        time.Duration
	logger     *zap.Logger
}

// RedisListPriceCacheOption is a functional option for configuring the cache
type RedisListPriceCacheOption func(*RedisListPriceCache)

// WithListPriceTTL sets how long cached list prices stay valid
func WithListPriceTTL(ttl time.Duration) RedisListPriceCacheOption {
	return func(c *RedisListPriceCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithListPriceLogger sets the logger for the cache
func WithListPriceLogger(logger *zap.Logger) RedisListPriceCacheOption {
	return func(c *RedisListPriceCache) {
		c.logger = logger
	}
}

// NewRedisListPriceCache creates a Redis-backed list price cache
func NewRedisListPriceCache(cfg RedisConfig, opts ...RedisListPriceCacheOption) (*RedisListPriceCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	cache := &RedisListPriceCache{
		client:     client,
		ownsClient: true,
		ttl:        defaultListPriceTTL,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache, nil
}

// NewRedisListPriceCacheWithClient creates a cache with an existing Redis client.
// The caller retains ownership of the client and is responsible for closing it.
func NewRedisListPriceCacheWithClient(client *redis.Client, opts ...RedisListPriceCacheOption) *RedisListPriceCache {
	cache := &RedisListPriceCache{
		client:     client,
		ownsClient: false,
		ttl:        defaultListPriceTTL,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// listPriceKey generates the cache key for an item's list price
func (c *RedisListPriceCache) listPriceKey(itemID uuid.UUID) string {
	return fmt.Sprintf("list_price:%s", itemID.String())
}

// GetListPrice retrieves a cached list price. Returns false on miss or on
// any Redis error.
func (c *RedisListPriceCache) GetListPrice(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, bool) {
	data, err := c.client.Get(ctx, c.listPriceKey(itemID)).Result()
	if err == redis.Nil {
		return decimal.Zero, false
	}
	if err != nil {
		c.logger.Warn("Failed to get list price from cache",
			zap.String("item_id", itemID.String()),
			zap.Error(err))
		return decimal.Zero, false
	}

	price, err := decimal.NewFromString(data)
	if err != nil {
		c.logger.Warn("Corrupt list price cache entry",
			zap.String("item_id", itemID.String()),
			zap.Error(err))
		return decimal.Zero, false
	}

	return price, true
}

// SetListPrice stores a list price with the configured TTL
func (c *RedisListPriceCache) SetListPrice(ctx context.Context, itemID uuid.UUID, price decimal.Decimal) {
	if err := c.client.Set(ctx, c.listPriceKey(itemID), price.String(), c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to cache list price",
			zap.String("item_id", itemID.String()),
			zap.Error(err))
	}
}

// InvalidateListPrice removes the cached price for an item
func (c *RedisListPriceCache) InvalidateListPrice(ctx context.Context, itemID uuid.UUID) {
	if err := c.client.Del(ctx, c.listPriceKey(itemID)).Err(); err != nil {
		c.logger.Warn("Failed to invalidate list price",
			zap.String("item_id", itemID.String()),
			zap.Error(err))
	}
}

// Close closes the Redis client if this cache owns it
func (c *RedisListPriceCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}
