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

// GormPriceBookRepository implements PriceBookRepository using GORM
type GormPriceBookRepository struct {
	db *gorm.DB
}

// NewGormPriceBookRepository creates a new GormPriceBookRepository
func NewGormPriceBookRepository(db *gorm.DB) *GormPriceBookRepository {
	return &GormPriceBookRepository{db: db}
}

// FindByID finds a price book with its entries by ID
func (r *GormPriceBookRepository) FindByID(ctx context.Context, id uuid.UUID) (*estimating.PriceBook, error) {
	var book estimating.PriceBook
	if err := r.db.WithContext(ctx).
		Preload("Entries", entryOrder).
		First(&book, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &book, nil
}

// FindAll finds price books with filtering
func (r *GormPriceBookRepository) FindAll(ctx context.Context, filter shared.Filter) ([]estimating.PriceBook, error) {
	var books []estimating.PriceBook
	query := r.applyFilter(r.db.WithContext(ctx).Model(&estimating.PriceBook{}), filter)

	if err := query.Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

// FindActiveByCustomer finds active books scoped to the customer
func (r *GormPriceBookRepository) FindActiveByCustomer(ctx context.Context, customerID uuid.UUID) ([]*estimating.PriceBook, error) {
	var books []*estimating.PriceBook
	if err := r.db.WithContext(ctx).
		Preload("Entries", entryOrder).
		Where("customer_id = ? AND active = ?", customerID, true).
		Order("created_at DESC").
		Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

// FindActiveBySegment finds active books scoped to the segment
func (r *GormPriceBookRepository) FindActiveBySegment(ctx context.Context, segment string) ([]*estimating.PriceBook, error) {
	var books []*estimating.PriceBook
	if err := r.db.WithContext(ctx).
		Preload("Entries", entryOrder).
		Where("customer_segment = ? AND active = ?", segment, true).
		Order("created_at DESC").
		Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

// FindDefault finds the active default price book
func (r *GormPriceBookRepository) FindDefault(ctx context.Context) (*estimating.PriceBook, error) {
	var book estimating.PriceBook
	if err := r.db.WithContext(ctx).
		Preload("Entries", entryOrder).
		Where("is_default = ? AND active = ?", true, true).
		First(&book).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &book, nil
}

// Save creates or updates a price book together with its entries
func (r *GormPriceBookRepository) Save(ctx context.Context, book *estimating.PriceBook) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Entries").Save(book).Error; err != nil {
			return err
		}

		currentEntryIDs := make([]uuid.UUID, len(book.Entries))
		for i, entry := range book.Entries {
			currentEntryIDs[i] = entry.ID
		}

		if len(currentEntryIDs) > 0 {
			if err := tx.Where("price_book_id = ? AND id NOT IN ?", book.ID, currentEntryIDs).
				Delete(&estimating.PriceBookEntry{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("price_book_id = ?", book.ID).
				Delete(&estimating.PriceBookEntry{}).Error; err != nil {
				return err
			}
		}

		for i := range book.Entries {
			book.Entries[i].PriceBookID = book.ID
			if err := tx.Save(&book.Entries[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete deletes a price book and its entries
func (r *GormPriceBookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("price_book_id = ?", id).Delete(&estimating.PriceBookEntry{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&estimating.PriceBook{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts price books matching the filter
func (r *GormPriceBookRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&estimating.PriceBook{}),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// entryOrder orders preloaded entries by item then tier floor
func entryOrder(db *gorm.DB) *gorm.DB {
	return db.Order("item_id ASC, min_qty ASC")
}

// applyFilter applies filter options to the query
func (r *GormPriceBookRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
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
		query = query.Order("name ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormPriceBookRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "segment":
			query = query.Where("customer_segment = ?", value)
		case "active":
			if b, ok := value.(bool); ok {
				query = query.Where("active = ?", b)
			}
		case "is_default":
			if b, ok := value.(bool); ok {
				query = query.Where("is_default = ?", b)
			}
		}
	}

	return query
}

// Ensure GormPriceBookRepository implements PriceBookRepository
var _ estimating.PriceBookRepository = (*GormPriceBookRepository)(nil)
