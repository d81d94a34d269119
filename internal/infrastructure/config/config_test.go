package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"MACHSHOP_APP_NAME":                   os.Getenv("MACHSHOP_APP_NAME"),
		"MACHSHOP_APP_ENV":                    os.Getenv("MACHSHOP_APP_ENV"),
		"MACHSHOP_APP_PORT":                   os.Getenv("MACHSHOP_APP_PORT"),
		"MACHSHOP_DATABASE_HOST":              os.Getenv("MACHSHOP_DATABASE_HOST"),
		"MACHSHOP_DATABASE_PORT":              os.Getenv("MACHSHOP_DATABASE_PORT"),
		"MACHSHOP_DATABASE_USER":              os.Getenv("MACHSHOP_DATABASE_USER"),
		"MACHSHOP_DATABASE_PASSWORD":          os.Getenv("MACHSHOP_DATABASE_PASSWORD"),
		"MACHSHOP_DATABASE_DBNAME":            os.Getenv("MACHSHOP_DATABASE_DBNAME"),
		"MACHSHOP_DATABASE_SSLMODE":           os.Getenv("MACHSHOP_DATABASE_SSLMODE"),
		"MACHSHOP_DATABASE_MAX_OPEN_CONNS":    os.Getenv("MACHSHOP_DATABASE_MAX_OPEN_CONNS"),
		"MACHSHOP_DATABASE_MAX_IDLE_CONNS":    os.Getenv("MACHSHOP_DATABASE_MAX_IDLE_CONNS"),
		"MACHSHOP_ESTIMATING_VALIDITY_DAYS":   os.Getenv("MACHSHOP_ESTIMATING_VALIDITY_DAYS"),
		"MACHSHOP_ESTIMATING_TAX_RATE":        os.Getenv("MACHSHOP_ESTIMATING_TAX_RATE"),
		"MACHSHOP_ESTIMATING_PROCESSING_DAYS": os.Getenv("MACHSHOP_ESTIMATING_PROCESSING_DAYS"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "machshop-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "machshop", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)

		assert.Equal(t, 30, cfg.Estimating.ValidityDays)
		assert.Equal(t, 0.08, cfg.Estimating.TaxRate)
		assert.Equal(t, 2, cfg.Estimating.ProcessingDays)
		assert.Equal(t, 15*time.Minute, cfg.Estimating.ListPriceCacheTTL)
		assert.Equal(t, time.Hour, cfg.Estimating.ExpiryCheckInterval)
	})

	t.Run("loads values from environment variables with MACHSHOP prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("MACHSHOP_APP_NAME", "test-app")
		os.Setenv("MACHSHOP_APP_ENV", "testing")
		os.Setenv("MACHSHOP_APP_PORT", "9000")
		os.Setenv("MACHSHOP_DATABASE_HOST", "testdb.local")
		os.Setenv("MACHSHOP_DATABASE_PORT", "5433")
		os.Setenv("MACHSHOP_ESTIMATING_VALIDITY_DAYS", "45")
		os.Setenv("MACHSHOP_ESTIMATING_TAX_RATE", "0.05")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, 45, cfg.Estimating.ValidityDays)
		assert.Equal(t, 0.05, cfg.Estimating.TaxRate)
	})

	t.Run("rejects out-of-range tax rate", func(t *testing.T) {
		clearEnv()
		os.Setenv("MACHSHOP_ESTIMATING_TAX_RATE", "1.5")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("production requires a database password", func(t *testing.T) {
		clearEnv()
		os.Setenv("MACHSHOP_APP_ENV", "production")
		os.Setenv("MACHSHOP_DATABASE_SSLMODE", "require")

		_, err := Load()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "database.password")
	})

	t.Run("production rejects sslmode disable", func(t *testing.T) {
		clearEnv()
		os.Setenv("MACHSHOP_APP_ENV", "production")
		os.Setenv("MACHSHOP_DATABASE_PASSWORD", "secret")

		_, err := Load()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.local",
		Port:     5432,
		User:     "app",
		Password: "p@ss/word",
		DBName:   "machshop",
		SSLMode:  "require",
	}

	dsn := cfg.DSN()

	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.local:5432")
	assert.Contains(t, dsn, "sslmode=require")
	// Special characters must be escaped
	assert.NotContains(t, dsn, "p@ss/word")
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "cache.local", Port: 6380}
	assert.Equal(t, "cache.local:6380", cfg.Addr())
}
