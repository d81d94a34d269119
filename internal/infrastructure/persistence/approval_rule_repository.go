package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/machshop/backend/internal/domain/estimating"
	"github.com/machshop/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormApprovalRuleRepository implements ApprovalRuleRepository using GORM
type GormApprovalRuleRepository struct {
	db *gorm.DB
}

// NewGormApprovalRuleRepository creates a new GormApprovalRuleRepository
func NewGormApprovalRuleRepository(db *gorm.DB) *GormApprovalRuleRepository {
	return &GormApprovalRuleRepository{db: db}
}

// FindByID finds an approval rule by ID
func (r *GormApprovalRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*estimating.ApprovalRule, error) {
	var rule estimating.ApprovalRule
	if err := r.db.WithContext(ctx).First(&rule, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rule, nil
}

// FindAll finds approval rules with filtering
func (r *GormApprovalRuleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]estimating.ApprovalRule, error) {
	var rules []estimating.ApprovalRule
	query := r.applyFilter(r.db.WithContext(ctx).Model(&estimating.ApprovalRule{}), filter)

	if err := query.Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// FindActive finds active rules ordered by priority ascending
func (r *GormApprovalRuleRepository) FindActive(ctx context.Context) ([]*estimating.ApprovalRule, error) {
	var rules []*estimating.ApprovalRule
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("priority ASC, created_at ASC").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// Save creates or updates an approval rule
func (r *GormApprovalRuleRepository) Save(ctx context.Context, rule *estimating.ApprovalRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

// Delete deletes an approval rule
func (r *GormApprovalRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&estimating.ApprovalRule{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts approval rules matching the filter
func (r *GormApprovalRuleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&estimating.ApprovalRule{}),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormApprovalRuleRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Paginated() {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("priority ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormApprovalRuleRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "condition_type":
			query = query.Where("condition_type = ?", value)
		case "approver_role":
			query = query.Where("approver_role = ?", value)
		case "active":
			if b, ok := value.(bool); ok {
				query = query.Where("active = ?", b)
			}
		}
	}

	return query
}

// Ensure GormApprovalRuleRepository implements ApprovalRuleRepository
var _ estimating.ApprovalRuleRepository = (*GormApprovalRuleRepository)(nil)
