package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/machshop/backend/internal/domain/catalog"
	"github.com/machshop/backend/internal/domain/shared"
)

// ItemInvalidator drops derived pricing data when an item changes. The
// estimating context registers its list price cache here.
type ItemInvalidator interface {
	InvalidateListPrice(ctx context.Context, itemID uuid.UUID)
}

// ItemService handles catalog item management
type ItemService struct {
	items       catalog.ItemRepository
	invalidator ItemInvalidator
}

// NewItemService creates a new ItemService. invalidator may be nil.
func NewItemService(items catalog.ItemRepository, invalidator ItemInvalidator) *ItemService {
	return &ItemService{items: items, invalidator: invalidator}
}

// Create creates a new catalog item
func (s *ItemService) Create(ctx context.Context, req CreateItemRequest) (*ItemResponse, error) {
	if existing, err := s.items.FindBySKU(ctx, req.SKU); err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Item with this SKU already exists")
	} else if err != nil && !shared.IsNotFound(err) {
		return nil, err
	}

	item, err := catalog.NewItem(req.SKU, req.Name, req.Unit, req.CostPerUnit)
	if err != nil {
		return nil, err
	}

	item.Description = req.Description
	item.Category = req.Category
	if req.QuantityOnHand != nil {
		if err := item.SetOnHand(*req.QuantityOnHand); err != nil {
			return nil, err
		}
	}
	if req.ReorderPoint != nil {
		if req.ReorderPoint.IsNegative() {
			return nil, shared.NewValidationError("Reorder point cannot be negative")
		}
		item.ReorderPoint = *req.ReorderPoint
	}
	if req.VendorName != "" || req.VendorLeadTimeDays != nil {
		leadTime := item.VendorLeadTimeDays
		if req.VendorLeadTimeDays != nil {
			leadTime = *req.VendorLeadTimeDays
		}
		if err := item.SetVendor(req.VendorName, leadTime); err != nil {
			return nil, err
		}
	}

	if err := s.items.Save(ctx, item); err != nil {
		return nil, err
	}

	response := ToItemResponse(item)
	return &response, nil
}

// GetByID retrieves an item by ID
func (s *ItemService) GetByID(ctx context.Context, id uuid.UUID) (*ItemResponse, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToItemResponse(item)
	return &response, nil
}

// GetBySKU retrieves an item by SKU
func (s *ItemService) GetBySKU(ctx context.Context, sku string) (*ItemResponse, error) {
	item, err := s.items.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	response := ToItemResponse(item)
	return &response, nil
}

// List retrieves items with filtering and pagination
func (s *ItemService) List(ctx context.Context, filter shared.Filter) ([]ItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "sku"
		filter.OrderDir = "asc"
	}

	items, err := s.items.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.items.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return ToItemResponses(items), total, nil
}

// Update updates an item. Cost changes invalidate cached list prices; lines
// on existing estimates keep their snapshotted figures.
func (s *ItemService) Update(ctx context.Context, id uuid.UUID, req UpdateItemRequest) (*ItemResponse, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	priceAffecting := false

	if req.Name != nil {
		if *req.Name == "" {
			return nil, shared.NewValidationError("Item name cannot be empty")
		}
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.CostPerUnit != nil {
		if err := item.UpdateCost(*req.CostPerUnit); err != nil {
			return nil, err
		}
		priceAffecting = true
	}
	if req.ReorderPoint != nil {
		if req.ReorderPoint.IsNegative() {
			return nil, shared.NewValidationError("Reorder point cannot be negative")
		}
		item.ReorderPoint = *req.ReorderPoint
	}
	if req.VendorName != nil || req.VendorLeadTimeDays != nil {
		name := item.VendorName
		leadTime := item.VendorLeadTimeDays
		if req.VendorName != nil {
			name = *req.VendorName
		}
		if req.VendorLeadTimeDays != nil {
			leadTime = *req.VendorLeadTimeDays
		}
		if err := item.SetVendor(name, leadTime); err != nil {
			return nil, err
		}
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Active != nil {
		if *req.Active {
			item.Activate()
		} else {
			item.Deactivate()
		}
	}
	item.UpdatedAt = time.Now()

	if err := s.items.Save(ctx, item); err != nil {
		return nil, err
	}
	if priceAffecting && s.invalidator != nil {
		s.invalidator.InvalidateListPrice(ctx, item.ID)
	}

	response := ToItemResponse(item)
	return &response, nil
}

// SetStock sets the current on-hand quantity. ATP answers on draft estimates
// pick the new figure up on their next recomputation.
func (s *ItemService) SetStock(ctx context.Context, id uuid.UUID, req SetStockRequest) (*ItemResponse, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := item.SetOnHand(req.QuantityOnHand); err != nil {
		return nil, err
	}

	if err := s.items.Save(ctx, item); err != nil {
		return nil, err
	}

	response := ToItemResponse(item)
	return &response, nil
}

// Delete deletes an item. Estimate lines reference items by a nullable ID and
// keep their snapshots, so deletion does not rewrite history.
func (s *ItemService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.items.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.items.Delete(ctx, id); err != nil {
		return err
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateListPrice(ctx, id)
	}
	return nil
}
