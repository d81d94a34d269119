package telemetry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func dbMeter(t *testing.T) (metric.Meter, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return provider.Meter("db.client.test"), reader
}

func collectedMetric(t *testing.T, reader *sdkmetric.ManualReader, name string) (metricdata.Metrics, bool) {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func mockGormDB(t *testing.T) *gorm.DB {
	t.Helper()
	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB
}

func TestDefaultDBMetricsConfig(t *testing.T) {
	cfg := DefaultDBMetricsConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThreshold)
	assert.Equal(t, 15*time.Second, cfg.PoolStatsInterval)
}

func TestNewDBMetrics(t *testing.T) {
	t.Run("registers every instrument", func(t *testing.T) {
		meter, _ := dbMeter(t)
		m, err := NewDBMetrics(meter, DefaultDBMetricsConfig(), zap.NewNop())
		require.NoError(t, err)

		assert.NotNil(t, m.poolConnections)
		assert.NotNil(t, m.poolConnectionsMax)
		assert.NotNil(t, m.queryTotal)
		assert.NotNil(t, m.queryDuration)
		assert.NotNil(t, m.slowQueryTotal)
	})

	t.Run("applies defaults to a zero config", func(t *testing.T) {
		meter, _ := dbMeter(t)
		m, err := NewDBMetrics(meter, DBMetricsConfig{}, nil)
		require.NoError(t, err)

		assert.Equal(t, 200*time.Millisecond, m.config.SlowQueryThreshold)
		assert.Equal(t, 15*time.Second, m.config.PoolStatsInterval)
		assert.NotNil(t, m.logger)
	})
}

func TestDBMetricsRecordQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("counts the query and its latency", func(t *testing.T) {
		meter, reader := dbMeter(t)
		m, err := NewDBMetrics(meter, DefaultDBMetricsConfig(), zap.NewNop())
		require.NoError(t, err)

		m.RecordQuery(ctx, "SELECT", "estimates", 50*time.Millisecond)

		total, found := collectedMetric(t, reader, "db_query_total")
		require.True(t, found)
		sum, ok := total.Data.(metricdata.Sum[int64])
		require.True(t, ok)
		require.Len(t, sum.DataPoints, 1)
		assert.Equal(t, int64(1), sum.DataPoints[0].Value)

		op, found := sum.DataPoints[0].Attributes.Value(AttrDBOperation)
		require.True(t, found)
		assert.Equal(t, "SELECT", op.AsString())

		_, found = collectedMetric(t, reader, "db_query_duration_seconds")
		assert.True(t, found)
	})

	t.Run("flags queries over the slow threshold by table", func(t *testing.T) {
		meter, reader := dbMeter(t)
		m, err := NewDBMetrics(meter, DBMetricsConfig{
			Enabled:            true,
			SlowQueryThreshold: 100 * time.Millisecond,
		}, zap.NewNop())
		require.NoError(t, err)

		m.RecordQuery(ctx, "SELECT", "estimate_lines", 250*time.Millisecond)

		slow, found := collectedMetric(t, reader, "db_slow_query_total")
		require.True(t, found)
		sum, ok := slow.Data.(metricdata.Sum[int64])
		require.True(t, ok)
		require.Len(t, sum.DataPoints, 1)

		table, ok := sum.DataPoints[0].Attributes.Value(AttrDBTable)
		require.True(t, ok)
		assert.Equal(t, "estimate_lines", table.AsString())
	})

	t.Run("fast queries are not flagged as slow", func(t *testing.T) {
		meter, reader := dbMeter(t)
		m, err := NewDBMetrics(meter, DefaultDBMetricsConfig(), zap.NewNop())
		require.NoError(t, err)

		m.RecordQuery(ctx, "SELECT", "items", 50*time.Millisecond)

		slow, found := collectedMetric(t, reader, "db_slow_query_total")
		if found {
			sum := slow.Data.(metricdata.Sum[int64])
			for _, dp := range sum.DataPoints {
				assert.Equal(t, int64(0), dp.Value)
			}
		}
	})

	t.Run("normalizes the operation label", func(t *testing.T) {
		meter, reader := dbMeter(t)
		m, err := NewDBMetrics(meter, DefaultDBMetricsConfig(), zap.NewNop())
		require.NoError(t, err)

		m.RecordQuery(ctx, "select", "estimates", 10*time.Millisecond)
		m.RecordQuery(ctx, "Select", "estimates", 10*time.Millisecond)
		m.RecordQuery(ctx, "", "estimates", 10*time.Millisecond)

		total, found := collectedMetric(t, reader, "db_query_total")
		require.True(t, found)
		sum := total.Data.(metricdata.Sum[int64])

		byOp := make(map[string]int64, len(sum.DataPoints))
		for _, dp := range sum.DataPoints {
			op, _ := dp.Attributes.Value(AttrDBOperation)
			byOp[op.AsString()] = dp.Value
		}
		assert.Equal(t, int64(2), byOp["SELECT"])
		assert.Equal(t, int64(1), byOp["UNKNOWN"])
	})

	t.Run("slow query with no table falls back to unknown", func(t *testing.T) {
		meter, reader := dbMeter(t)
		m, err := NewDBMetrics(meter, DBMetricsConfig{
			Enabled:            true,
			SlowQueryThreshold: 50 * time.Millisecond,
		}, zap.NewNop())
		require.NoError(t, err)

		m.RecordQuery(ctx, "SELECT", "", 100*time.Millisecond)

		slow, found := collectedMetric(t, reader, "db_slow_query_total")
		require.True(t, found)
		sum := slow.Data.(metricdata.Sum[int64])
		require.Len(t, sum.DataPoints, 1)
		table, _ := sum.DataPoints[0].Attributes.Value(AttrDBTable)
		assert.Equal(t, "unknown", table.AsString())
	})
}

func TestDBMetricsPoolStats(t *testing.T) {
	t.Run("samples the pool after start", func(t *testing.T) {
		meter, reader := dbMeter(t)
		mockDB, _, err := sqlmock.New()
		require.NoError(t, err)
		defer mockDB.Close()

		m, err := NewDBMetrics(meter, DBMetricsConfig{
			Enabled:           true,
			PoolStatsInterval: 50 * time.Millisecond,
		}, zap.NewNop())
		require.NoError(t, err)
		m.SetSQLDB(mockDB)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		m.StartPoolStatsCollection(ctx)
		time.Sleep(100 * time.Millisecond)
		m.Stop()

		_, foundMax := collectedMetric(t, reader, "db_pool_connections_max")
		_, foundPool := collectedMetric(t, reader, "db_pool_connections")
		assert.True(t, foundMax)
		assert.True(t, foundPool)
	})

	t.Run("does not start without a pool", func(t *testing.T) {
		meter, _ := dbMeter(t)
		m, err := NewDBMetrics(meter, DefaultDBMetricsConfig(), zap.NewNop())
		require.NoError(t, err)

		m.StartPoolStatsCollection(context.Background())
		m.Stop()
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		meter, _ := dbMeter(t)
		mockDB, _, err := sqlmock.New()
		require.NoError(t, err)
		defer mockDB.Close()

		m, err := NewDBMetrics(meter, DBMetricsConfig{
			Enabled:           true,
			PoolStatsInterval: time.Second,
		}, zap.NewNop())
		require.NoError(t, err)
		m.SetSQLDB(mockDB)

		ctx, cancel := context.WithCancel(context.Background())
		m.StartPoolStatsCollection(ctx)
		cancel()
		m.Stop()
	})

	t.Run("stop does not block and is idempotent", func(t *testing.T) {
		meter, _ := dbMeter(t)
		mockDB, _, err := sqlmock.New()
		require.NoError(t, err)
		defer mockDB.Close()

		m, err := NewDBMetrics(meter, DBMetricsConfig{
			Enabled:           true,
			PoolStatsInterval: 100 * time.Millisecond,
		}, zap.NewNop())
		require.NoError(t, err)
		m.SetSQLDB(mockDB)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		m.StartPoolStatsCollection(ctx)

		done := make(chan struct{})
		go func() {
			m.Stop()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Stop blocked for too long")
		}

		assert.NotPanics(t, m.Stop)
	})
}

func TestDBMetricsPlugin(t *testing.T) {
	t.Run("reports its name", func(t *testing.T) {
		meter, _ := dbMeter(t)
		m, err := NewDBMetrics(meter, DefaultDBMetricsConfig(), zap.NewNop())
		require.NoError(t, err)

		assert.Equal(t, "db_metrics", NewDBMetricsPlugin(m, zap.NewNop()).Name())
	})

	t.Run("registers callbacks on a gorm db", func(t *testing.T) {
		meter, _ := dbMeter(t)
		m, err := NewDBMetrics(meter, DefaultDBMetricsConfig(), zap.NewNop())
		require.NoError(t, err)

		require.NoError(t, NewDBMetricsPlugin(m, zap.NewNop()).Initialize(mockGormDB(t)))
	})
}

func TestOperationFromSQL(t *testing.T) {
	tests := []struct {
		sql  string
		want string
	}{
		{"SELECT * FROM estimates", "SELECT"},
		{"select id from estimates", "SELECT"},
		{"  SELECT id FROM estimates", "SELECT"},
		{"INSERT INTO estimates (number) VALUES ('EST-1')", "INSERT"},
		{"UPDATE estimates SET status = 'SENT'", "UPDATE"},
		{"delete from estimate_lines", "DELETE"},
		{"CREATE TABLE estimates", "OTHER"},
		{"TRUNCATE TABLE estimates", "OTHER"},
		{"", "OTHER"},
	}

	for _, tc := range tests {
		t.Run(tc.sql, func(t *testing.T) {
			assert.Equal(t, tc.want, operationFromSQL(tc.sql))
		})
	}
}

func TestRegisterDBMetrics(t *testing.T) {
	logger := zap.NewNop()

	t.Run("returns nil when disabled", func(t *testing.T) {
		m, err := RegisterDBMetrics(mockGormDB(t), nil, DBMetricsConfig{Enabled: false}, logger)
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("returns nil without a meter provider", func(t *testing.T) {
		m, err := RegisterDBMetrics(mockGormDB(t), nil, DBMetricsConfig{Enabled: true}, logger)
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("registers the plugin when enabled", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		sdkProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		t.Cleanup(func() { _ = sdkProvider.Shutdown(context.Background()) })

		mp := &MeterProvider{
			provider: sdkProvider,
			logger:   logger,
			config:   MetricsConfig{Enabled: true},
		}

		m, err := RegisterDBMetrics(mockGormDB(t), mp, DefaultDBMetricsConfig(), logger)
		require.NoError(t, err)
		require.NotNil(t, m)
	})
}

func TestDBMetricsConcurrentRecordQuery(t *testing.T) {
	ctx := context.Background()
	meter, reader := dbMeter(t)
	m, err := NewDBMetrics(meter, DefaultDBMetricsConfig(), zap.NewNop())
	require.NoError(t, err)

	operations := []string{"SELECT", "INSERT", "UPDATE", "DELETE"}
	tables := []string{"estimates", "estimate_lines", "items", "customers"}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.RecordQuery(ctx, operations[i%4], tables[i%4], time.Duration(i)*time.Millisecond)
		}(i)
	}
	wg.Wait()

	total, found := collectedMetric(t, reader, "db_query_total")
	require.True(t, found)
	sum := total.Data.(metricdata.Sum[int64])
	var recorded int64
	for _, dp := range sum.DataPoints {
		recorded += dp.Value
	}
	assert.Equal(t, int64(100), recorded)
}
