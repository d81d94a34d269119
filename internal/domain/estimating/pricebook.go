package estimating

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/machshop/backend/internal/domain/shared"
	"github.com/machshop/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PriceBookEntry is a single priced item within a price book, optionally
// bounded to a quantity range for volume tiers. MaxQty nil means unbounded.
type PriceBookEntry struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey"`
	PriceBookID uuid.UUID        `gorm:"type:uuid;not null;index"`
	ItemID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	MinQty      decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:1"`
	MaxQty      *decimal.Decimal `gorm:"type:decimal(18,4)"`
	UnitPrice   decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	CreatedAt   time.Time
}

// TableName returns the table name for GORM
func (PriceBookEntry) TableName() string {
	return "price_book_entries"
}

// Matches returns true when the requested quantity falls within the entry's
// quantity range
func (e *PriceBookEntry) Matches(qty decimal.Decimal) bool {
	if qty.LessThan(e.MinQty) {
		return false
	}
	if e.MaxQty != nil && qty.GreaterThan(*e.MaxQty) {
		return false
	}
	return true
}

// PriceBook is a named, scoped table of item prices. It may be bound to a
// single customer, to a customer segment, or be the global default.
// The book owns its entries.
type PriceBook struct {
	shared.BaseAggregateRoot
	Name            string               `gorm:"type:varchar(100);not null"`
	IsDefault       bool                 `gorm:"not null;default:false"`
	CustomerID      *uuid.UUID           `gorm:"type:uuid;index"`
	CustomerSegment string               `gorm:"type:varchar(50);index"`
	CurrencyCode    valueobject.Currency `gorm:"type:varchar(3);not null;default:'USD'"`
	ValidFrom       *time.Time           `gorm:"type:date"`
	ValidUntil      *time.Time           `gorm:"type:date"`
	Active          bool                 `gorm:"not null;default:true"`
	Entries         []PriceBookEntry     `gorm:"foreignKey:PriceBookID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (PriceBook) TableName() string {
	return "price_books"
}

// NewPriceBook creates a new price book
func NewPriceBook(name string) (*PriceBook, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Price book name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Price book name cannot exceed 100 characters")
	}

	return &PriceBook{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		CurrencyCode:      valueobject.DefaultCurrency,
		Active:            true,
		Entries:           make([]PriceBookEntry, 0),
	}, nil
}

// ScopeToCustomer binds the book to a single customer
func (b *PriceBook) ScopeToCustomer(customerID uuid.UUID) error {
	if customerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if b.CustomerSegment != "" {
		return shared.NewDomainError("INVALID_SCOPE", "Price book is already scoped to a segment")
	}
	b.CustomerID = &customerID
	b.UpdatedAt = time.Now()
	return nil
}

// ScopeToSegment binds the book to a customer segment
func (b *PriceBook) ScopeToSegment(segment string) error {
	if strings.TrimSpace(segment) == "" {
		return shared.NewDomainError("INVALID_SEGMENT", "Segment cannot be empty")
	}
	if b.CustomerID != nil {
		return shared.NewDomainError("INVALID_SCOPE", "Price book is already scoped to a customer")
	}
	b.CustomerSegment = segment
	b.UpdatedAt = time.Now()
	return nil
}

// MarkDefault flags this book as the global default. Only one default may be
// active at a time; the swap is coordinated by the application service.
func (b *PriceBook) MarkDefault() {
	b.IsDefault = true
	b.UpdatedAt = time.Now()
}

// UnmarkDefault clears the default flag
func (b *PriceBook) UnmarkDefault() {
	b.IsDefault = false
	b.UpdatedAt = time.Now()
}

// SetValidity sets the validity window; nil bounds are open-ended
func (b *PriceBook) SetValidity(from, until *time.Time) error {
	if from != nil && until != nil && until.Before(*from) {
		return shared.NewDomainError("INVALID_VALIDITY", "Validity end cannot be before validity start")
	}
	b.ValidFrom = from
	b.ValidUntil = until
	b.UpdatedAt = time.Now()
	return nil
}

// Deactivate soft-disables the book; it is never physically deleted once
// estimates reference it
func (b *PriceBook) Deactivate() {
	b.Active = false
	b.UpdatedAt = time.Now()
}

// AppliesOn returns true when the book is active and the given date falls
// inside its validity window
func (b *PriceBook) AppliesOn(date time.Time) bool {
	if !b.Active {
		return false
	}
	if b.ValidFrom != nil && date.Before(*b.ValidFrom) {
		return false
	}
	if b.ValidUntil != nil && date.After(*b.ValidUntil) {
		return false
	}
	return true
}

// AddEntry adds a priced item with an optional volume tier range
func (b *PriceBook) AddEntry(itemID uuid.UUID, unitPrice, minQty decimal.Decimal, maxQty *decimal.Decimal) (*PriceBookEntry, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if minQty.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Minimum quantity cannot be negative")
	}
	if maxQty != nil && maxQty.LessThan(minQty) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Maximum quantity cannot be below minimum quantity")
	}

	entry := PriceBookEntry{
		ID:          uuid.New(),
		PriceBookID: b.ID,
		ItemID:      itemID,
		MinQty:      minQty,
		MaxQty:      maxQty,
		UnitPrice:   unitPrice,
		CreatedAt:   time.Now(),
	}
	b.Entries = append(b.Entries, entry)
	b.UpdatedAt = time.Now()

	return &b.Entries[len(b.Entries)-1], nil
}

// RemoveEntry removes an entry by ID
func (b *PriceBook) RemoveEntry(entryID uuid.UUID) error {
	for idx, entry := range b.Entries {
		if entry.ID == entryID {
			b.Entries = append(b.Entries[:idx], b.Entries[idx+1:]...)
			b.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("ENTRY_NOT_FOUND", "Price book entry not found")
}

// PriceFor selects the unit price for an item at the requested quantity,
// applying the volume tier. When more than one entry matches (overlapping
// ranges are a configuration error) the entry with the highest MinQty wins,
// i.e. the tightest tier at or below the requested quantity.
// The second return value is false when no entry applies; the caller then
// falls through to the next book in the resolution hierarchy.
func (b *PriceBook) PriceFor(itemID uuid.UUID, qty decimal.Decimal) (decimal.Decimal, bool) {
	var best *PriceBookEntry
	for idx := range b.Entries {
		entry := &b.Entries[idx]
		if entry.ItemID != itemID || !entry.Matches(qty) {
			continue
		}
		if best == nil || entry.MinQty.GreaterThan(best.MinQty) {
			best = entry
		}
	}
	if best == nil {
		return decimal.Zero, false
	}
	return best.UnitPrice, true
}
