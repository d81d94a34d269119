package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/machshop/backend/internal/domain/estimating"
	"github.com/machshop/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormEstimateRepository implements EstimateRepository using GORM
type GormEstimateRepository struct {
	db *gorm.DB
}

// NewGormEstimateRepository creates a new GormEstimateRepository
func NewGormEstimateRepository(db *gorm.DB) *GormEstimateRepository {
	return &GormEstimateRepository{db: db}
}

// FindByID finds an estimate by its ID
func (r *GormEstimateRepository) FindByID(ctx context.Context, id uuid.UUID) (*estimating.Estimate, error) {
	var estimate estimating.Estimate
	if err := r.db.WithContext(ctx).
		Preload("LineItems", lineOrder).
		First(&estimate, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &estimate, nil
}

// FindByNumber finds a specific revision of an estimate
func (r *GormEstimateRepository) FindByNumber(ctx context.Context, estimateNumber string, revision int) (*estimating.Estimate, error) {
	var estimate estimating.Estimate
	if err := r.db.WithContext(ctx).
		Preload("LineItems", lineOrder).
		Where("estimate_number = ? AND revision = ?", estimateNumber, revision).
		First(&estimate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &estimate, nil
}

// FindLatestByNumber finds the highest revision of an estimate
func (r *GormEstimateRepository) FindLatestByNumber(ctx context.Context, estimateNumber string) (*estimating.Estimate, error) {
	var estimate estimating.Estimate
	if err := r.db.WithContext(ctx).
		Preload("LineItems", lineOrder).
		Where("estimate_number = ?", estimateNumber).
		Order("revision DESC").
		First(&estimate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &estimate, nil
}

// FindRevisions finds all revisions sharing an estimate number, oldest first
func (r *GormEstimateRepository) FindRevisions(ctx context.Context, estimateNumber string) ([]estimating.Estimate, error) {
	var estimates []estimating.Estimate
	if err := r.db.WithContext(ctx).
		Where("estimate_number = ?", estimateNumber).
		Order("revision ASC").
		Find(&estimates).Error; err != nil {
		return nil, err
	}
	if len(estimates) == 0 {
		return nil, shared.ErrNotFound
	}
	return estimates, nil
}

// FindAll finds estimates with filtering
func (r *GormEstimateRepository) FindAll(ctx context.Context, filter shared.Filter) ([]estimating.Estimate, error) {
	var estimates []estimating.Estimate
	query := r.applyFilter(r.db.WithContext(ctx).Model(&estimating.Estimate{}), filter)

	if err := query.Find(&estimates).Error; err != nil {
		return nil, err
	}
	return estimates, nil
}

// FindByCustomer finds estimates for a customer
func (r *GormEstimateRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]estimating.Estimate, error) {
	var estimates []estimating.Estimate
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&estimating.Estimate{}).Where("customer_id = ?", customerID),
		filter,
	)

	if err := query.Find(&estimates).Error; err != nil {
		return nil, err
	}
	return estimates, nil
}

// FindByStatus finds estimates by status
func (r *GormEstimateRepository) FindByStatus(ctx context.Context, status estimating.EstimateStatus, filter shared.Filter) ([]estimating.Estimate, error) {
	var estimates []estimating.Estimate
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&estimating.Estimate{}).Where("status = ?", status),
		filter,
	)

	if err := query.Find(&estimates).Error; err != nil {
		return nil, err
	}
	return estimates, nil
}

// FindExpirable finds estimates whose validity window has passed and which are
// still in a state that allows expiry. Lines are loaded so a subsequent
// SaveWithLock does not drop them.
func (r *GormEstimateRepository) FindExpirable(ctx context.Context, before time.Time) ([]estimating.Estimate, error) {
	var estimates []estimating.Estimate
	if err := r.db.WithContext(ctx).
		Preload("LineItems", lineOrder).
		Where("valid_until IS NOT NULL AND valid_until < ?", before).
		Where("status IN ?", []string{
			estimating.EstimateStatusDraft.String(),
			estimating.EstimateStatusApproved.String(),
			estimating.EstimateStatusSent.String(),
		}).
		Find(&estimates).Error; err != nil {
		return nil, err
	}
	return estimates, nil
}

// Save creates or updates an estimate together with its lines. A unique
// index violation on (estimate_number, revision) surfaces as
// shared.ErrAlreadyExists so callers can regenerate the number.
func (r *GormEstimateRepository) Save(ctx context.Context, estimate *estimating.Estimate) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("LineItems").Save(estimate).Error; err != nil {
			return err
		}
		return r.syncLines(tx, estimate)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormEstimateRepository) SaveWithLock(ctx context.Context, estimate *estimating.Estimate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		currentVersion, err := r.lockedVersion(tx, estimate.ID)
		if err != nil {
			return err
		}
		if currentVersion != estimate.Version {
			return shared.ErrConcurrencyConflict
		}

		estimate.Version++
		estimate.UpdatedAt = time.Now()

		result := tx.Model(&estimating.Estimate{}).
			Where("id = ? AND version = ?", estimate.ID, currentVersion).
			Updates(estimateColumns(estimate))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		return r.syncLines(tx, estimate)
	})
}

// SaveRevision persists a new revision and marks the original superseded in
// the same transaction. The original's version is checked so two concurrent
// revise calls cannot both succeed.
func (r *GormEstimateRepository) SaveRevision(ctx context.Context, original, revision *estimating.Estimate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		currentVersion, err := r.lockedVersion(tx, original.ID)
		if err != nil {
			return err
		}
		if currentVersion != original.Version {
			return shared.ErrConcurrencyConflict
		}

		original.Version++
		original.UpdatedAt = time.Now()

		result := tx.Model(&estimating.Estimate{}).
			Where("id = ? AND version = ?", original.ID, currentVersion).
			Updates(map[string]interface{}{
				"superseded_by_id": original.SupersededByID,
				"version":          original.Version,
				"updated_at":       original.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		if err := tx.Omit("LineItems").Create(revision).Error; err != nil {
			return err
		}
		return r.syncLines(tx, revision)
	})
}

// Delete deletes an estimate and its lines
func (r *GormEstimateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("estimate_id = ?", id).Delete(&estimating.EstimateLineItem{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&estimating.Estimate{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts estimates matching the filter
func (r *GormEstimateRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&estimating.Estimate{}),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// NextEstimateNumber generates the next estimate number for the given date.
// Format: EST-YYYYMMDD-NNNN (e.g., EST-20260310-0001). The sequence restarts
// daily; the unique (estimate_number, revision) index backstops races.
func (r *GormEstimateRepository) NextEstimateNumber(ctx context.Context, date time.Time) (string, error) {
	prefix := fmt.Sprintf("EST-%s-", date.Format("20060102"))

	var lastNumber string
	err := r.db.WithContext(ctx).
		Model(&estimating.Estimate{}).
		Where("estimate_number LIKE ?", prefix+"%").
		Order("estimate_number DESC").
		Limit(1).
		Pluck("estimate_number", &lastNumber).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if lastNumber != "" {
		parts := strings.Split(lastNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	return fmt.Sprintf("%s%04d", prefix, nextNum), nil
}

// lockedVersion reads the stored version under FOR UPDATE
func (r *GormEstimateRepository) lockedVersion(tx *gorm.DB, id uuid.UUID) (int, error) {
	var currentVersion int
	row := tx.Raw("SELECT version FROM estimates WHERE id = ? FOR UPDATE", id).Row()
	if err := row.Scan(&currentVersion); err != nil {
		return 0, shared.ErrNotFound
	}
	return currentVersion, nil
}

// syncLines replaces the stored lines with the aggregate's current lines
func (r *GormEstimateRepository) syncLines(tx *gorm.DB, estimate *estimating.Estimate) error {
	currentLineIDs := make([]uuid.UUID, len(estimate.LineItems))
	for i, line := range estimate.LineItems {
		currentLineIDs[i] = line.ID
	}

	if len(currentLineIDs) > 0 {
		if err := tx.Where("estimate_id = ? AND id NOT IN ?", estimate.ID, currentLineIDs).
			Delete(&estimating.EstimateLineItem{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("estimate_id = ?", estimate.ID).
			Delete(&estimating.EstimateLineItem{}).Error; err != nil {
			return err
		}
	}

	for i := range estimate.LineItems {
		estimate.LineItems[i].EstimateID = estimate.ID
		if err := tx.Save(&estimate.LineItems[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// estimateColumns maps the aggregate's mutable columns for a locked update
func estimateColumns(e *estimating.Estimate) map[string]interface{} {
	return map[string]interface{}{
		"customer_id":             e.CustomerID,
		"price_book_id":           e.PriceBookID,
		"status":                  e.Status,
		"currency_code":           e.CurrencyCode,
		"subtotal":                e.Subtotal,
		"tax_amount":              e.TaxAmount,
		"total_amount":            e.TotalAmount,
		"margin_percent":          e.MarginPercent,
		"requested_delivery_date": e.RequestedDeliveryDate,
		"earliest_delivery_date":  e.EarliestDeliveryDate,
		"delivery_feasible":       e.DeliveryFeasible,
		"valid_until":             e.ValidUntil,
		"pending_approvers":       e.PendingApprovers,
		"approved_by":             e.ApprovedBy,
		"approved_at":             e.ApprovedAt,
		"approval_comment":        e.ApprovalComment,
		"rejection_reason":        e.RejectionReason,
		"sent_at":                 e.SentAt,
		"accepted_at":             e.AcceptedAt,
		"expired_at":              e.ExpiredAt,
		"parent_estimate_id":      e.ParentEstimateID,
		"superseded_by_id":        e.SupersededByID,
		"notes":                   e.Notes,
		"metadata":                e.Metadata,
		"version":                 e.Version,
		"updated_at":              e.UpdatedAt,
	}
}

// lineOrder orders preloaded lines by their display position
func lineOrder(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC")
}

// applyFilter applies filter options to the query
func (r *GormEstimateRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
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
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormEstimateRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("estimate_number ILIKE ? OR notes ILIKE ?",
			searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "price_book_id":
			query = query.Where("price_book_id = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		case "latest_only":
			if b, ok := value.(bool); ok && b {
				query = query.Where("superseded_by_id IS NULL")
			}
		}
	}

	return query
}

// Ensure GormEstimateRepository implements EstimateRepository
var _ estimating.EstimateRepository = (*GormEstimateRepository)(nil)
