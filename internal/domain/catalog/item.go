package catalog

import (
	"strings"
	"time"

	"github.com/machshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Item represents a stocked material or part in the catalog.
// It is the aggregate root for item-related operations and is the source of
// truth for unit cost, on-hand quantity and vendor lead time.
type Item struct {
	shared.BaseAggregateRoot
	SKU                string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	Name               string          `gorm:"type:varchar(255);not null"`
	Description        string          `gorm:"type:text"`
	Unit               string          `gorm:"type:varchar(20);not null;default:'each'"`
	CostPerUnit        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	QuantityOnHand     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReorderPoint       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:10"`
	VendorLeadTimeDays int             `gorm:"not null;default:7"`
	VendorName         string          `gorm:"type:varchar(255)"`
	Category           string          `gorm:"type:varchar(100);index"`
	Active             bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "items"
}

// NewItem creates a new catalog item
func NewItem(sku, name, unit string, costPerUnit decimal.Decimal) (*Item, error) {
	if strings.TrimSpace(sku) == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 100 {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 100 characters")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Item name cannot be empty")
	}
	if costPerUnit.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Cost per unit cannot be negative")
	}
	if unit == "" {
		unit = "each"
	}

	return &Item{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		SKU:                strings.ToUpper(sku),
		Name:               name,
		Unit:               unit,
		CostPerUnit:        costPerUnit,
		QuantityOnHand:     decimal.Zero,
		ReorderPoint:       decimal.NewFromInt(10),
		VendorLeadTimeDays: 7,
		Active:             true,
	}, nil
}

// UpdateCost updates the unit cost
func (i *Item) UpdateCost(cost decimal.Decimal) error {
	if cost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Cost per unit cannot be negative")
	}
	i.CostPerUnit = cost
	i.UpdatedAt = time.Now()
	return nil
}

// SetOnHand sets the current on-hand quantity
func (i *Item) SetOnHand(qty decimal.Decimal) error {
	if qty.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "On-hand quantity cannot be negative")
	}
	i.QuantityOnHand = qty
	i.UpdatedAt = time.Now()
	return nil
}

// SetVendor sets the vendor name and replenishment lead time
func (i *Item) SetVendor(name string, leadTimeDays int) error {
	if leadTimeDays < 0 {
		return shared.NewDomainError("INVALID_LEAD_TIME", "Vendor lead time cannot be negative")
	}
	i.VendorName = name
	i.VendorLeadTimeDays = leadTimeDays
	i.UpdatedAt = time.Now()
	return nil
}

// Deactivate marks the item inactive; existing estimate lines keep their
// snapshotted prices and costs
func (i *Item) Deactivate() {
	i.Active = false
	i.UpdatedAt = time.Now()
}

// Activate marks the item active
func (i *Item) Activate() {
	i.Active = true
	i.UpdatedAt = time.Now()
}

// BelowReorderPoint returns true when on-hand stock has fallen to or below
// the reorder point
func (i *Item) BelowReorderPoint() bool {
	return i.QuantityOnHand.LessThanOrEqual(i.ReorderPoint)
}
