package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/machshop/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ==================== Item DTOs ====================

// CreateItemRequest represents a request to create a catalog item
type CreateItemRequest struct {
	SKU                string           `json:"sku" binding:"required,min=1,max=100"`
	Name               string           `json:"name" binding:"required,min=1,max=255"`
	Description        string           `json:"description"`
	Unit               string           `json:"unit"`
	CostPerUnit        decimal.Decimal  `json:"cost_per_unit"`
	QuantityOnHand     *decimal.Decimal `json:"quantity_on_hand"`
	ReorderPoint       *decimal.Decimal `json:"reorder_point"`
	VendorName         string           `json:"vendor_name"`
	VendorLeadTimeDays *int             `json:"vendor_lead_time_days"`
	Category           string           `json:"category"`
}

// UpdateItemRequest represents a request to update a catalog item
type UpdateItemRequest struct {
	Name               *string          `json:"name"`
	Description        *string          `json:"description"`
	CostPerUnit        *decimal.Decimal `json:"cost_per_unit"`
	ReorderPoint       *decimal.Decimal `json:"reorder_point"`
	VendorName         *string          `json:"vendor_name"`
	VendorLeadTimeDays *int             `json:"vendor_lead_time_days"`
	Category           *string          `json:"category"`
	Active             *bool            `json:"active"`
}

// SetStockRequest represents a request to set the on-hand quantity
type SetStockRequest struct {
	QuantityOnHand decimal.Decimal `json:"quantity_on_hand"`
}

// ItemResponse represents a catalog item in API responses
type ItemResponse struct {
	ID                 uuid.UUID       `json:"id"`
	SKU                string          `json:"sku"`
	Name               string          `json:"name"`
	Description        string          `json:"description,omitempty"`
	Unit               string          `json:"unit"`
	CostPerUnit        decimal.Decimal `json:"cost_per_unit"`
	QuantityOnHand     decimal.Decimal `json:"quantity_on_hand"`
	ReorderPoint       decimal.Decimal `json:"reorder_point"`
	BelowReorderPoint  bool            `json:"below_reorder_point"`
	VendorName         string          `json:"vendor_name,omitempty"`
	VendorLeadTimeDays int             `json:"vendor_lead_time_days"`
	Category           string          `json:"category,omitempty"`
	Active             bool            `json:"active"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// ToItemResponse converts a domain item to a response DTO
func ToItemResponse(item *catalog.Item) ItemResponse {
	return ItemResponse{
		ID:                 item.ID,
		SKU:                item.SKU,
		Name:               item.Name,
		Description:        item.Description,
		Unit:               item.Unit,
		CostPerUnit:        item.CostPerUnit,
		QuantityOnHand:     item.QuantityOnHand,
		ReorderPoint:       item.ReorderPoint,
		BelowReorderPoint:  item.BelowReorderPoint(),
		VendorName:         item.VendorName,
		VendorLeadTimeDays: item.VendorLeadTimeDays,
		Category:           item.Category,
		Active:             item.Active,
		CreatedAt:          item.CreatedAt,
		UpdatedAt:          item.UpdatedAt,
	}
}

// ToItemResponses converts a slice of domain items to response DTOs
func ToItemResponses(items []catalog.Item) []ItemResponse {
	responses := make([]ItemResponse, len(items))
	for i := range items {
		responses[i] = ToItemResponse(&items[i])
	}
	return responses
}
