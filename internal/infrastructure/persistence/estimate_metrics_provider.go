package persistence

import (
	"context"
	"time"

	"github.com/machshop/backend/internal/domain/estimating"
	"github.com/machshop/backend/internal/infrastructure/telemetry"
	"gorm.io/gorm"
)

// GormEstimateMetricsProvider supplies estimate pipeline counts for the
// periodic business metrics collector.
type GormEstimateMetricsProvider struct {
	db *gorm.DB
}

// NewGormEstimateMetricsProvider creates a new GormEstimateMetricsProvider
func NewGormEstimateMetricsProvider(db *gorm.DB) *GormEstimateMetricsProvider {
	return &GormEstimateMetricsProvider{db: db}
}

// GetPendingApprovalCount returns the number of estimates waiting for approval
func (p *GormEstimateMetricsProvider) GetPendingApprovalCount(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Model(&estimating.Estimate{}).
		Where("status = ?", estimating.EstimateStatusPendingApproval).
		Count(&count).Error
	return count, err
}

// GetExpiringSoonCount returns the number of open estimates whose validity
// window ends within the horizon
func (p *GormEstimateMetricsProvider) GetExpiringSoonCount(ctx context.Context, horizon time.Duration) (int64, error) {
	now := time.Now()

	var count int64
	err := p.db.WithContext(ctx).
		Model(&estimating.Estimate{}).
		Where("status IN ?", []string{
			estimating.EstimateStatusDraft.String(),
			estimating.EstimateStatusApproved.String(),
			estimating.EstimateStatusSent.String(),
		}).
		Where("valid_until IS NOT NULL AND valid_until >= ? AND valid_until < ?", now, now.Add(horizon)).
		Count(&count).Error
	return count, err
}

// Ensure GormEstimateMetricsProvider implements EstimateMetricsProvider
var _ telemetry.EstimateMetricsProvider = (*GormEstimateMetricsProvider)(nil)
