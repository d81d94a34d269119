package estimating

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/machshop/backend/internal/domain/shared"
)

// EstimateRepository defines the interface for estimate persistence
type EstimateRepository interface {
	// FindByID finds an estimate with its line items by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Estimate, error)

	// FindByNumber finds a specific revision of an estimate by number
	FindByNumber(ctx context.Context, estimateNumber string, revision int) (*Estimate, error)

	// FindLatestByNumber finds the highest revision of an estimate by number
	FindLatestByNumber(ctx context.Context, estimateNumber string) (*Estimate, error)

	// FindRevisions finds all revisions sharing an estimate number, ordered
	// by revision ascending
	FindRevisions(ctx context.Context, estimateNumber string) ([]Estimate, error)

	// FindAll finds estimates with filtering and pagination
	FindAll(ctx context.Context, filter shared.Filter) ([]Estimate, error)

	// FindByCustomer finds estimates for a customer
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Estimate, error)

	// FindByStatus finds estimates by status
	FindByStatus(ctx context.Context, status EstimateStatus, filter shared.Filter) ([]Estimate, error)

	// FindExpirable finds non-terminal estimates whose validity window ended
	// before the given date
	FindExpirable(ctx context.Context, before time.Time) ([]Estimate, error)

	// Save creates or updates an estimate and its line items
	Save(ctx context.Context, estimate *Estimate) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, estimate *Estimate) error

	// SaveRevision atomically marks the original superseded (with version
	// check) and inserts the new revision
	SaveRevision(ctx context.Context, original, revision *Estimate) error

	// Delete deletes a draft estimate and its line items
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts estimates matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// NextEstimateNumber generates the next number in the date-scoped
	// sequence for the given day. Counting and inserting must share one
	// transaction; the unique index on (estimate_number, revision) backstops
	// races.
	NextEstimateNumber(ctx context.Context, date time.Time) (string, error)
}

// PriceBookRepository defines the interface for price book persistence
type PriceBookRepository interface {
	// FindByID finds a price book with its entries by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PriceBook, error)

	// FindAll finds price books with filtering and pagination
	FindAll(ctx context.Context, filter shared.Filter) ([]PriceBook, error)

	// FindActiveByCustomer finds active books scoped to the customer
	FindActiveByCustomer(ctx context.Context, customerID uuid.UUID) ([]*PriceBook, error)

	// FindActiveBySegment finds active books scoped to the segment
	FindActiveBySegment(ctx context.Context, segment string) ([]*PriceBook, error)

	// FindDefault finds the active default book; a NOT_FOUND domain error
	// when none is configured
	FindDefault(ctx context.Context) (*PriceBook, error)

	// Save creates or updates a price book and its entries
	Save(ctx context.Context, book *PriceBook) error

	// Delete deletes a price book and its entries
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts price books matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// ApprovalRuleRepository defines the interface for approval rule persistence
type ApprovalRuleRepository interface {
	// FindByID finds an approval rule by ID
	FindByID(ctx context.Context, id uuid.UUID) (*ApprovalRule, error)

	// FindAll finds approval rules with filtering and pagination
	FindAll(ctx context.Context, filter shared.Filter) ([]ApprovalRule, error)

	// FindActive finds active rules ordered by priority ascending
	FindActive(ctx context.Context) ([]*ApprovalRule, error)

	// Save creates or updates an approval rule
	Save(ctx context.Context, rule *ApprovalRule) error

	// Delete deletes an approval rule
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts approval rules matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
