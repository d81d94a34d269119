package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterRequired is returned when business metrics are built without a meter.
var ErrMeterRequired = errors.New("business metrics: meter is required")

const (
	defaultCollectInterval = 5 * time.Minute
	defaultExpiryHorizon   = 72 * time.Hour
)

// EstimateMetricsProvider supplies pipeline counts for periodic gauge
// collection without coupling the telemetry layer to the estimating domain.
type EstimateMetricsProvider interface {
	// GetPendingApprovalCount returns the number of estimates waiting for approval.
	GetPendingApprovalCount(ctx context.Context) (int64, error)

	// GetExpiringSoonCount returns the number of open estimates whose validity
	// window ends within the given horizon.
	GetExpiringSoonCount(ctx context.Context, horizon time.Duration) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter            metric.Meter
	Logger           *zap.Logger
	ExpiryHorizon    time.Duration
	EstimateProvider EstimateMetricsProvider
}

// BusinessMetrics tracks estimate lifecycle activity and the approval backlog
// for the quoting pipeline.
type BusinessMetrics struct {
	logger *zap.Logger

	estimateCreatedTotal  *Counter
	estimateAcceptedTotal *Counter
	estimateAmountTotal   *Counter
	statusTransitionTotal *Counter
	priceResolutionTotal  *Counter

	pendingApprovalCount *Gauge
	expiringSoonCount    *Gauge

	estimateProvider EstimateMetricsProvider
	expiryHorizon    time.Duration

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once
}

// NewBusinessMetrics registers the quoting pipeline instruments on the meter.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterRequired
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	horizon := cfg.ExpiryHorizon
	if horizon <= 0 {
		horizon = defaultExpiryHorizon
	}

	var err error
	counter := func(name, description, unit string) *Counter {
		if err != nil {
			return nil
		}
		var c *Counter
		c, err = NewCounter(cfg.Meter, name, description, unit)
		return c
	}
	gauge := func(name, description, unit string) *Gauge {
		if err != nil {
			return nil
		}
		var g *Gauge
		g, err = NewGauge(cfg.Meter, name, description, unit)
		return g
	}

	bm := &BusinessMetrics{
		logger:           logger,
		estimateProvider: cfg.EstimateProvider,
		expiryHorizon:    horizon,
		stopChan:         make(chan struct{}),

		estimateCreatedTotal: counter("machshop_estimate_created_total",
			"Total number of estimates created, including revisions", "{estimates}"),
		estimateAcceptedTotal: counter("machshop_estimate_accepted_total",
			"Total number of estimates accepted by customers", "{estimates}"),
		estimateAmountTotal: counter("machshop_estimate_amount_total",
			"Total accepted estimate amount in cents", "{cents}"),
		statusTransitionTotal: counter("machshop_estimate_status_transition_total",
			"Total number of estimate status transitions", "{transitions}"),
		priceResolutionTotal: counter("machshop_price_resolution_total",
			"Total number of price resolutions by source", "{resolutions}"),

		pendingApprovalCount: gauge("machshop_estimate_pending_approval_count",
			"Number of estimates currently waiting for approval", "{estimates}"),
		expiringSoonCount: gauge("machshop_estimate_expiring_soon_count",
			"Number of open estimates whose validity window ends soon", "{estimates}"),
	}
	if err != nil {
		return nil, err
	}
	return bm, nil
}

// RecordEstimateCreated records an estimate creation event.
func (bm *BusinessMetrics) RecordEstimateCreated(ctx context.Context) {
	bm.estimateCreatedTotal.Inc(ctx)
}

// RecordEstimateAccepted records an accepted estimate together with its total,
// converted to the smallest currency unit.
func (bm *BusinessMetrics) RecordEstimateAccepted(ctx context.Context, total decimal.Decimal) {
	bm.estimateAcceptedTotal.Inc(ctx)
	bm.estimateAmountTotal.Add(ctx, total.Mul(decimal.NewFromInt(100)).IntPart())
}

// RecordStatusTransition records a lifecycle transition labeled by the
// resulting status.
func (bm *BusinessMetrics) RecordStatusTransition(ctx context.Context, toStatus string) {
	bm.statusTransitionTotal.Inc(ctx, AttrEstimateStatus.String(toStatus))
}

// RecordPriceResolution records which source resolved a unit price
// (customer book, segment book, default book, or item cost).
func (bm *BusinessMetrics) RecordPriceResolution(ctx context.Context, source string) {
	bm.priceResolutionTotal.Inc(ctx, AttrPriceSource.String(source))
}

// RecordPendingApprovalCount records the current approval backlog size.
func (bm *BusinessMetrics) RecordPendingApprovalCount(ctx context.Context, count int64) {
	bm.pendingApprovalCount.Record(ctx, count)
}

// RecordExpiringSoonCount records the number of estimates near expiry.
func (bm *BusinessMetrics) RecordExpiringSoonCount(ctx context.Context, count int64) {
	bm.expiringSoonCount.Record(ctx, count)
}

// StartPeriodicCollection starts the gauge collection loop. It is
// non-blocking and runs at most once; use Stop to end it.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = defaultCollectInterval
		}
		go bm.collectLoop(ctx, interval)
	})
}

// Stop ends the periodic collection loop.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

func (bm *BusinessMetrics) collectLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// collect once on start so gauges are populated before the first tick
	bm.collectPipelineGauges(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectPipelineGauges(ctx)
		}
	}
}

func (bm *BusinessMetrics) collectPipelineGauges(ctx context.Context) {
	if bm.estimateProvider == nil {
		bm.logger.Debug("No estimate provider configured, skipping pipeline metrics collection")
		return
	}

	pending, err := bm.estimateProvider.GetPendingApprovalCount(ctx)
	if err != nil {
		bm.logger.Warn("Failed to get pending approval count", zap.Error(err))
	} else {
		bm.RecordPendingApprovalCount(ctx, pending)
	}

	expiring, err := bm.estimateProvider.GetExpiringSoonCount(ctx, bm.expiryHorizon)
	if err != nil {
		bm.logger.Warn("Failed to get expiring soon count", zap.Error(err))
	} else {
		bm.RecordExpiringSoonCount(ctx, expiring)
	}
}
