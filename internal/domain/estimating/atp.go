package estimating

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/machshop/backend/internal/domain/catalog"
	"github.com/machshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ATPStatus classifies how much of a requested quantity current stock covers
type ATPStatus string

const (
	ATPAvailable ATPStatus = "AVAILABLE"
	ATPPartial   ATPStatus = "PARTIAL"
	ATPBackorder ATPStatus = "BACKORDER"
)

// IsValid checks if the ATP status is valid
func (s ATPStatus) IsValid() bool {
	switch s {
	case ATPAvailable, ATPPartial, ATPBackorder:
		return true
	}
	return false
}

// DefaultProcessingDays is the fixed internal handling buffer added to every
// delivery estimate regardless of stock status.
const DefaultProcessingDays = 2

// Availability is a snapshot answer for one item at one quantity. It does not
// reserve stock; concurrent estimates may all see the same units.
type Availability struct {
	Status       ATPStatus
	AvailableQty decimal.Decimal
	ShortageQty  decimal.Decimal
	LeadTimeDays int
}

// ATPWarning is a human-readable note attached to a line that cannot be
// fully served from stock
type ATPWarning struct {
	LineID   uuid.UUID
	ItemID   uuid.UUID
	Status   ATPStatus
	Message  string
}

// LineAvailability pairs a line item with its computed availability
type LineAvailability struct {
	LineID       uuid.UUID
	ItemID       uuid.UUID
	ItemName     string
	Availability Availability
}

// DeliveryEstimate is the aggregate delivery answer across all lines
type DeliveryEstimate struct {
	EarliestDate time.Time
	Feasible     bool
	Warnings     []ATPWarning
}

// ItemReader is the slice of the catalog the estimating domain reads from
type ItemReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error)
}

// AvailabilityChecker answers available-to-promise questions against the
// live catalog snapshot. Checks are advisory; stock is never decremented or
// locked at quote time.
type AvailabilityChecker struct {
	items          ItemReader
	clock          shared.Clock
	processingDays int
}

// NewAvailabilityChecker creates a new availability checker. processingDays
// values below zero fall back to the default buffer.
func NewAvailabilityChecker(items ItemReader, clock shared.Clock, processingDays int) *AvailabilityChecker {
	if processingDays < 0 {
		processingDays = DefaultProcessingDays
	}
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &AvailabilityChecker{items: items, clock: clock, processingDays: processingDays}
}

// CheckItem computes availability for an already loaded item
func (c *AvailabilityChecker) CheckItem(item *catalog.Item, requiredQty decimal.Decimal) Availability {
	onHand := item.QuantityOnHand
	switch {
	case onHand.GreaterThanOrEqual(requiredQty):
		return Availability{
			Status:       ATPAvailable,
			AvailableQty: onHand,
			ShortageQty:  decimal.Zero,
			LeadTimeDays: 0,
		}
	case onHand.IsPositive():
		return Availability{
			Status:       ATPPartial,
			AvailableQty: onHand,
			ShortageQty:  requiredQty.Sub(onHand),
			LeadTimeDays: item.VendorLeadTimeDays,
		}
	default:
		return Availability{
			Status:       ATPBackorder,
			AvailableQty: decimal.Zero,
			ShortageQty:  requiredQty,
			LeadTimeDays: item.VendorLeadTimeDays,
		}
	}
}

// Check loads the item and computes its availability
func (c *AvailabilityChecker) Check(ctx context.Context, itemID uuid.UUID, requiredQty decimal.Decimal) (Availability, error) {
	item, err := c.items.FindByID(ctx, itemID)
	if err != nil {
		return Availability{}, err
	}
	return c.CheckItem(item, requiredQty), nil
}

// CheckLines computes availability for every catalog-backed line, fanning the
// item lookups out concurrently. Free-text lines (no item reference) are
// skipped. Result order matches input order.
func (c *AvailabilityChecker) CheckLines(ctx context.Context, lines []EstimateLineItem) ([]LineAvailability, error) {
	type slot struct {
		set   bool
		value LineAvailability
	}
	slots := make([]slot, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	for idx := range lines {
		line := &lines[idx]
		if line.ItemID == nil {
			continue
		}
		idx := idx
		g.Go(func() error {
			item, err := c.items.FindByID(gctx, *line.ItemID)
			if err != nil {
				return err
			}
			slots[idx] = slot{set: true, value: LineAvailability{
				LineID:       line.ID,
				ItemID:       item.ID,
				ItemName:     item.Name,
				Availability: c.CheckItem(item, line.Quantity),
			}}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]LineAvailability, 0, len(lines))
	for _, s := range slots {
		if s.set {
			results = append(results, s.value)
		}
	}
	return results, nil
}

// EstimateDelivery folds per-line availability into an aggregate delivery
// answer. Shortages are assumed to resolve in parallel within one procurement
// cycle, so the longest lead time governs, not the sum. When no requested
// date is given feasibility is trivially true.
func (c *AvailabilityChecker) EstimateDelivery(lineAvail []LineAvailability, requestedDate *time.Time) DeliveryEstimate {
	maxLead := 0
	warnings := make([]ATPWarning, 0)

	for _, la := range lineAvail {
		avail := la.Availability
		if avail.Status == ATPAvailable {
			continue
		}
		if avail.LeadTimeDays > maxLead {
			maxLead = avail.LeadTimeDays
		}

		var message string
		switch avail.Status {
		case ATPPartial:
			message = fmt.Sprintf("%s units of %s backordered (+%d days)", avail.ShortageQty.String(), la.ItemName, avail.LeadTimeDays)
		case ATPBackorder:
			message = fmt.Sprintf("%s not in stock. Lead time: %d days", la.ItemName, avail.LeadTimeDays)
		}
		warnings = append(warnings, ATPWarning{
			LineID:  la.LineID,
			ItemID:  la.ItemID,
			Status:  avail.Status,
			Message: message,
		})
	}

	now := c.clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	earliest := today.AddDate(0, 0, maxLead+c.processingDays)

	feasible := true
	if requestedDate != nil {
		feasible = !earliest.After(*requestedDate)
	}

	return DeliveryEstimate{
		EarliestDate: earliest,
		Feasible:     feasible,
		Warnings:     warnings,
	}
}
