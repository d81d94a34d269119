package cache

import (
	"testing"
	"time"

	"github.com/machshop/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unreachableRedisConfig() config.RedisConfig {
	return config.RedisConfig{Host: "127.0.0.1", Port: 1}
}

func TestListPriceCacheFactory(t *testing.T) {
	t.Run("falls back to the in-memory cache when redis is down", func(t *testing.T) {
		factory := NewListPriceCacheFactory(unreachableRedisConfig(), time.Minute)

		cache, err := factory.CreateCache()

		require.NoError(t, err)
		_, ok := cache.(*InMemoryListPriceCache)
		assert.True(t, ok)
	})

	t.Run("surfaces the redis error when fallback is disabled", func(t *testing.T) {
		factory := NewListPriceCacheFactory(unreachableRedisConfig(), time.Minute,
			WithInMemoryFallback(false))

		cache, err := factory.CreateCache()

		require.Error(t, err)
		assert.Nil(t, cache)
	})
}
