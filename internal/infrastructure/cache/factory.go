package cache

import (
	"time"

	"github.com/machshop/backend/internal/domain/estimating"
	"github.com/machshop/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ListPriceCacheFactory creates list price caches based on configuration
type ListPriceCacheFactory struct {
	redisConfig           config.RedisConfig
	ttl                   time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ListPriceCacheFactoryOption is a functional option for configuring the factory
type ListPriceCacheFactoryOption func(*ListPriceCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ListPriceCacheFactoryOption {
	return func(f *ListPriceCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) ListPriceCacheFactoryOption {
	return func(f *ListPriceCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewListPriceCacheFactory creates a new factory
func NewListPriceCacheFactory(cfg config.RedisConfig, ttl time.Duration, opts ...ListPriceCacheFactoryOption) *ListPriceCacheFactory {
	f := &ListPriceCacheFactory{
		redisConfig:           cfg,
		ttl:                   ttl,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateCache tries Redis first and falls back to the in-memory cache when
// Redis is unreachable and fallback is allowed. A process-local cache serves
// stale prices across instances, which is acceptable for advisory pricing.
func (f *ListPriceCacheFactory) CreateCache() (estimating.ListPriceCache, error) {
	redisCache, err := NewRedisListPriceCache(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, WithListPriceTTL(f.ttl), WithListPriceLogger(f.logger))
	if err == nil {
		f.logger.Info("Using Redis list price cache")
		return redisCache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, err
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory list price cache",
		zap.Error(err))
	return NewInMemoryListPriceCache(f.ttl), nil
}
