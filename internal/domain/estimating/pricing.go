package estimating

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/machshop/backend/internal/domain/partner"
	"github.com/machshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PriceSource identifies which level of the pricing hierarchy produced a price
type PriceSource string

const (
	SourceCustomerBook PriceSource = "customer_book"
	SourceSegmentBook  PriceSource = "segment_book"
	SourceDefaultBook  PriceSource = "default_book"
	SourceItemCost     PriceSource = "item_cost"
)

// ResolvedPrice is the outcome of a price resolution
type ResolvedPrice struct {
	UnitPrice   decimal.Decimal
	Source      PriceSource
	PriceBookID *uuid.UUID
}

// PriceBookReader provides the books the resolver walks. Each finder returns
// only books applicable on the given date.
type PriceBookReader interface {
	FindActiveByCustomer(ctx context.Context, customerID uuid.UUID) ([]*PriceBook, error)
	FindActiveBySegment(ctx context.Context, segment string) ([]*PriceBook, error)
	FindDefault(ctx context.Context) (*PriceBook, error)
}

// CustomerReader is the slice of the partner domain pricing reads from
type CustomerReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error)
}

// ListPriceCache caches list prices keyed by item. Implementations must treat
// a miss and an unavailable cache identically; the resolver always recomputes
// on a miss.
type ListPriceCache interface {
	GetListPrice(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, bool)
	SetListPrice(ctx context.Context, itemID uuid.UUID, price decimal.Decimal)
	InvalidateListPrice(ctx context.Context, itemID uuid.UUID)
}

// PricingResolver resolves the unit price for an item/customer/quantity
// triple by walking the price book hierarchy: customer book, segment book,
// default book, then the item's own cost. A book with no matching entry falls
// through to the next level; only a found price short-circuits.
type PricingResolver struct {
	books     PriceBookReader
	customers CustomerReader
	items     ItemReader
	clock     shared.Clock
	cache     ListPriceCache
}

// NewPricingResolver creates a new pricing resolver. cache may be nil.
func NewPricingResolver(books PriceBookReader, customers CustomerReader, items ItemReader, clock shared.Clock, cache ListPriceCache) *PricingResolver {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &PricingResolver{
		books:     books,
		customers: customers,
		items:     items,
		clock:     clock,
		cache:     cache,
	}
}

// ResolvePrice resolves the unit price for the item at the given quantity.
// customerID may be nil for anonymous pricing, which starts the walk at the
// default book. The resolution is a pure read; nothing is reserved or
// mutated. Fails with the item repository's not-found error when the item
// does not exist, since the cost fallback is mandatory.
func (r *PricingResolver) ResolvePrice(ctx context.Context, itemID uuid.UUID, customerID *uuid.UUID, qty decimal.Decimal) (ResolvedPrice, error) {
	item, err := r.items.FindByID(ctx, itemID)
	if err != nil {
		return ResolvedPrice{}, err
	}

	today := r.clock.Now()

	if customerID != nil {
		customerBooks, err := r.books.FindActiveByCustomer(ctx, *customerID)
		if err != nil {
			return ResolvedPrice{}, err
		}
		if resolved, ok := priceFromBooks(customerBooks, itemID, qty, today, SourceCustomerBook); ok {
			return resolved, nil
		}

		customer, err := r.customers.FindByID(ctx, *customerID)
		if err != nil {
			return ResolvedPrice{}, err
		}
		if customer.Segment != "" {
			segmentBooks, err := r.books.FindActiveBySegment(ctx, customer.Segment)
			if err != nil {
				return ResolvedPrice{}, err
			}
			if resolved, ok := priceFromBooks(segmentBooks, itemID, qty, today, SourceSegmentBook); ok {
				return resolved, nil
			}
		}
	}

	defaultBook, err := r.books.FindDefault(ctx)
	if err != nil && !shared.IsNotFound(err) {
		return ResolvedPrice{}, err
	}
	if defaultBook != nil && defaultBook.AppliesOn(today) {
		if price, ok := defaultBook.PriceFor(itemID, qty); ok {
			return ResolvedPrice{UnitPrice: price, Source: SourceDefaultBook, PriceBookID: &defaultBook.ID}, nil
		}
	}

	return ResolvedPrice{UnitPrice: item.CostPerUnit, Source: SourceItemCost}, nil
}

// GetListPrice returns the catalog price for an item: the default book at
// quantity one, falling back to the item cost. Used to show discount-off-list
// alongside customer-specific pricing. Cached when a cache is configured.
func (r *PricingResolver) GetListPrice(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, error) {
	if r.cache != nil {
		if price, ok := r.cache.GetListPrice(ctx, itemID); ok {
			return price, nil
		}
	}

	resolved, err := r.ResolvePrice(ctx, itemID, nil, decimal.NewFromInt(1))
	if err != nil {
		return decimal.Zero, err
	}

	if r.cache != nil {
		r.cache.SetListPrice(ctx, itemID, resolved.UnitPrice)
	}
	return resolved.UnitPrice, nil
}

func priceFromBooks(books []*PriceBook, itemID uuid.UUID, qty decimal.Decimal, today time.Time, source PriceSource) (ResolvedPrice, bool) {
	for _, book := range books {
		if !book.AppliesOn(today) {
			continue
		}
		if price, ok := book.PriceFor(itemID, qty); ok {
			return ResolvedPrice{UnitPrice: price, Source: source, PriceBookID: &book.ID}, true
		}
	}
	return ResolvedPrice{}, false
}
