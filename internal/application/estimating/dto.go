package estimating

import (
	"time"

	"github.com/google/uuid"
	"github.com/machshop/backend/internal/domain/estimating"
	"github.com/shopspring/decimal"
)

// ==================== Estimate DTOs ====================

// CreateEstimateRequest represents a request to create an estimate
type CreateEstimateRequest struct {
	CustomerID            uuid.UUID         `json:"customer_id" binding:"required"`
	RequestedDeliveryDate *time.Time        `json:"requested_delivery_date"`
	Notes                 string            `json:"notes"`
	Metadata              map[string]string `json:"metadata"`
	Lines                 []LineItemInput   `json:"lines"`
}

// LineItemInput represents a line item in estimate requests. Catalog lines
// set ItemID and get their price resolved server-side; free-text lines set
// UnitPrice directly. DiscountPct is a fraction, 0.10 for ten percent off.
type LineItemInput struct {
	ItemID      *uuid.UUID       `json:"item_id"`
	Description string           `json:"description"`
	Quantity    decimal.Decimal  `json:"quantity" binding:"required"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	DiscountPct decimal.Decimal  `json:"discount_pct"`
	SortOrder   int              `json:"sort_order"`
}

// UpdateEstimateRequest represents a request to update estimate header
// fields (only in DRAFT status)
type UpdateEstimateRequest struct {
	RequestedDeliveryDate *time.Time `json:"requested_delivery_date"`
	Notes                 *string    `json:"notes"`
	ValidUntil            *time.Time `json:"valid_until"`
}

// ApproveEstimateRequest represents a request to approve a pending estimate
type ApproveEstimateRequest struct {
	ApproverID uuid.UUID `json:"approver_id" binding:"required"`
	Comment    string    `json:"comment"`
}

// RejectEstimateRequest represents a request to reject a pending estimate
type RejectEstimateRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// EstimateListFilter represents filter options for the estimate list
type EstimateListFilter struct {
	Search     string                     `form:"search"`
	CustomerID *uuid.UUID                 `form:"customer_id"`
	Status     *estimating.EstimateStatus `form:"status"`
	StartDate  *time.Time                 `form:"start_date"`
	EndDate    *time.Time                 `form:"end_date"`
	Page       int                        `form:"page" binding:"min=0"`
	PageSize   int                        `form:"page_size" binding:"min=0,max=100"`
	OrderBy    string                     `form:"order_by"`
	OrderDir   string                     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// LineItemResponse represents a line item in API responses
type LineItemResponse struct {
	ID           uuid.UUID        `json:"id"`
	ItemID       *uuid.UUID       `json:"item_id,omitempty"`
	Description  string           `json:"description"`
	Quantity     decimal.Decimal  `json:"quantity"`
	UnitPrice    decimal.Decimal  `json:"unit_price"`
	ListPrice    decimal.Decimal  `json:"list_price"`
	DiscountPct  decimal.Decimal  `json:"discount_pct"`
	LineTotal    decimal.Decimal  `json:"line_total"`
	PriceSource  string           `json:"price_source,omitempty"`
	SortOrder    int              `json:"sort_order"`
	ATPStatus    *string          `json:"atp_status,omitempty"`
	AvailableQty *decimal.Decimal `json:"available_qty,omitempty"`
	ShortageQty  *decimal.Decimal `json:"shortage_qty,omitempty"`
	LeadTimeDays *int             `json:"lead_time_days,omitempty"`
}

// EstimateResponse represents an estimate in API responses
type EstimateResponse struct {
	ID                    uuid.UUID          `json:"id"`
	EstimateNumber        string             `json:"estimate_number"`
	Revision              int                `json:"revision"`
	CustomerID            uuid.UUID          `json:"customer_id"`
	PriceBookID           *uuid.UUID         `json:"price_book_id,omitempty"`
	Status                string             `json:"status"`
	Currency              string             `json:"currency"`
	Lines                 []LineItemResponse `json:"lines"`
	Subtotal              decimal.Decimal    `json:"subtotal"`
	TaxAmount             decimal.Decimal    `json:"tax_amount"`
	TotalAmount           decimal.Decimal    `json:"total_amount"`
	MarginPercent         decimal.Decimal    `json:"margin_percent"`
	RequestedDeliveryDate *time.Time         `json:"requested_delivery_date,omitempty"`
	EarliestDeliveryDate  *time.Time         `json:"earliest_delivery_date,omitempty"`
	DeliveryFeasible      bool               `json:"delivery_feasible"`
	DeliveryWarnings      []string           `json:"delivery_warnings,omitempty"`
	ValidUntil            *time.Time         `json:"valid_until,omitempty"`
	PendingApprovers      []string           `json:"pending_approvers,omitempty"`
	ApprovedBy            *uuid.UUID         `json:"approved_by,omitempty"`
	ApprovedAt            *time.Time         `json:"approved_at,omitempty"`
	ApprovalComment       string             `json:"approval_comment,omitempty"`
	RejectionReason       string             `json:"rejection_reason,omitempty"`
	SentAt                *time.Time         `json:"sent_at,omitempty"`
	AcceptedAt            *time.Time         `json:"accepted_at,omitempty"`
	ExpiredAt             *time.Time         `json:"expired_at,omitempty"`
	ParentEstimateID      *uuid.UUID         `json:"parent_estimate_id,omitempty"`
	SupersededByID        *uuid.UUID         `json:"superseded_by_id,omitempty"`
	Notes                 string             `json:"notes,omitempty"`
	Metadata              map[string]string  `json:"metadata,omitempty"`
	CreatedAt             time.Time          `json:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at"`
}

// EstimateListItemResponse is a trimmed estimate for list views
type EstimateListItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	EstimateNumber string          `json:"estimate_number"`
	Revision       int             `json:"revision"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	Status         string          `json:"status"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	MarginPercent  decimal.Decimal `json:"margin_percent"`
	LineCount      int             `json:"line_count"`
	ValidUntil     *time.Time      `json:"valid_until,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ToLineItemResponse converts a domain line item to a response DTO
func ToLineItemResponse(line *estimating.EstimateLineItem) LineItemResponse {
	resp := LineItemResponse{
		ID:           line.ID,
		ItemID:       line.ItemID,
		Description:  line.Description,
		Quantity:     line.Quantity,
		UnitPrice:    line.UnitPrice,
		ListPrice:    line.ListPrice,
		DiscountPct:  line.DiscountPct,
		LineTotal:    line.LineTotal,
		PriceSource:  string(line.PriceSource),
		SortOrder:    line.SortOrder,
		AvailableQty: line.AvailableQty,
		ShortageQty:  line.ShortageQty,
		LeadTimeDays: line.LeadTimeDays,
	}
	if line.ATPStatus != nil {
		status := string(*line.ATPStatus)
		resp.ATPStatus = &status
	}
	return resp
}

// ToEstimateResponse converts a domain estimate to a response DTO
func ToEstimateResponse(estimate *estimating.Estimate) EstimateResponse {
	lines := make([]LineItemResponse, len(estimate.LineItems))
	for i := range estimate.LineItems {
		lines[i] = ToLineItemResponse(&estimate.LineItems[i])
	}

	return EstimateResponse{
		ID:                    estimate.ID,
		EstimateNumber:        estimate.EstimateNumber,
		Revision:              estimate.Revision,
		CustomerID:            estimate.CustomerID,
		PriceBookID:           estimate.PriceBookID,
		Status:                estimate.Status.String(),
		Currency:              string(estimate.CurrencyCode),
		Lines:                 lines,
		Subtotal:              estimate.Subtotal,
		TaxAmount:             estimate.TaxAmount,
		TotalAmount:           estimate.TotalAmount,
		MarginPercent:         estimate.MarginPercent,
		RequestedDeliveryDate: estimate.RequestedDeliveryDate,
		EarliestDeliveryDate:  estimate.EarliestDeliveryDate,
		DeliveryFeasible:      estimate.DeliveryFeasible,
		ValidUntil:            estimate.ValidUntil,
		PendingApprovers:      estimate.PendingApprovers,
		ApprovedBy:            estimate.ApprovedBy,
		ApprovedAt:            estimate.ApprovedAt,
		ApprovalComment:       estimate.ApprovalComment,
		RejectionReason:       estimate.RejectionReason,
		SentAt:                estimate.SentAt,
		AcceptedAt:            estimate.AcceptedAt,
		ExpiredAt:             estimate.ExpiredAt,
		ParentEstimateID:      estimate.ParentEstimateID,
		SupersededByID:        estimate.SupersededByID,
		Notes:                 estimate.Notes,
		Metadata:              estimate.Metadata,
		CreatedAt:             estimate.CreatedAt,
		UpdatedAt:             estimate.UpdatedAt,
	}
}

// ToEstimateListItemResponses converts domain estimates to list DTOs
func ToEstimateListItemResponses(estimates []estimating.Estimate) []EstimateListItemResponse {
	responses := make([]EstimateListItemResponse, len(estimates))
	for i := range estimates {
		e := &estimates[i]
		responses[i] = EstimateListItemResponse{
			ID:             e.ID,
			EstimateNumber: e.EstimateNumber,
			Revision:       e.Revision,
			CustomerID:     e.CustomerID,
			Status:         e.Status.String(),
			TotalAmount:    e.TotalAmount,
			MarginPercent:  e.MarginPercent,
			LineCount:      e.LineCount(),
			ValidUntil:     e.ValidUntil,
			CreatedAt:      e.CreatedAt,
		}
	}
	return responses
}

// ==================== Price Book DTOs ====================

// CreatePriceBookRequest represents a request to create a price book
type CreatePriceBookRequest struct {
	Name            string     `json:"name" binding:"required,min=1,max=100"`
	IsDefault       bool       `json:"is_default"`
	CustomerID      *uuid.UUID `json:"customer_id"`
	CustomerSegment string     `json:"customer_segment"`
	ValidFrom       *time.Time `json:"valid_from"`
	ValidUntil      *time.Time `json:"valid_until"`
}

// UpdatePriceBookRequest represents a request to update a price book
type UpdatePriceBookRequest struct {
	Name       *string    `json:"name"`
	IsDefault  *bool      `json:"is_default"`
	ValidFrom  *time.Time `json:"valid_from"`
	ValidUntil *time.Time `json:"valid_until"`
	Active     *bool      `json:"active"`
}

// AddPriceBookEntryRequest represents a request to add a price book entry
type AddPriceBookEntryRequest struct {
	ItemID    uuid.UUID        `json:"item_id" binding:"required"`
	UnitPrice decimal.Decimal  `json:"unit_price" binding:"required"`
	MinQty    decimal.Decimal  `json:"min_qty"`
	MaxQty    *decimal.Decimal `json:"max_qty"`
}

// PriceBookEntryResponse represents a price book entry in API responses
type PriceBookEntryResponse struct {
	ID        uuid.UUID        `json:"id"`
	ItemID    uuid.UUID        `json:"item_id"`
	MinQty    decimal.Decimal  `json:"min_qty"`
	MaxQty    *decimal.Decimal `json:"max_qty,omitempty"`
	UnitPrice decimal.Decimal  `json:"unit_price"`
}

// PriceBookResponse represents a price book in API responses
type PriceBookResponse struct {
	ID              uuid.UUID                `json:"id"`
	Name            string                   `json:"name"`
	IsDefault       bool                     `json:"is_default"`
	CustomerID      *uuid.UUID               `json:"customer_id,omitempty"`
	CustomerSegment string                   `json:"customer_segment,omitempty"`
	Currency        string                   `json:"currency"`
	ValidFrom       *time.Time               `json:"valid_from,omitempty"`
	ValidUntil      *time.Time               `json:"valid_until,omitempty"`
	Active          bool                     `json:"active"`
	Entries         []PriceBookEntryResponse `json:"entries"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// ToPriceBookResponse converts a domain price book to a response DTO
func ToPriceBookResponse(book *estimating.PriceBook) PriceBookResponse {
	entries := make([]PriceBookEntryResponse, len(book.Entries))
	for i, entry := range book.Entries {
		entries[i] = PriceBookEntryResponse{
			ID:        entry.ID,
			ItemID:    entry.ItemID,
			MinQty:    entry.MinQty,
			MaxQty:    entry.MaxQty,
			UnitPrice: entry.UnitPrice,
		}
	}

	return PriceBookResponse{
		ID:              book.ID,
		Name:            book.Name,
		IsDefault:       book.IsDefault,
		CustomerID:      book.CustomerID,
		CustomerSegment: book.CustomerSegment,
		Currency:        string(book.CurrencyCode),
		ValidFrom:       book.ValidFrom,
		ValidUntil:      book.ValidUntil,
		Active:          book.Active,
		Entries:         entries,
		CreatedAt:       book.CreatedAt,
		UpdatedAt:       book.UpdatedAt,
	}
}

// ToPriceBookResponses converts domain price books to response DTOs
func ToPriceBookResponses(books []estimating.PriceBook) []PriceBookResponse {
	responses := make([]PriceBookResponse, len(books))
	for i := range books {
		responses[i] = ToPriceBookResponse(&books[i])
	}
	return responses
}

// ==================== Approval Rule DTOs ====================

// CreateApprovalRuleRequest represents a request to create an approval rule
type CreateApprovalRuleRequest struct {
	Name          string          `json:"name" binding:"required,min=1,max=100"`
	ConditionType string          `json:"condition_type" binding:"required"`
	Threshold     decimal.Decimal `json:"threshold"`
	ApproverRole  string          `json:"approver_role" binding:"required,min=1,max=50"`
	Priority      *int            `json:"priority"`
}

// UpdateApprovalRuleRequest represents a request to update an approval rule
type UpdateApprovalRuleRequest struct {
	Name         *string          `json:"name"`
	Threshold    *decimal.Decimal `json:"threshold"`
	ApproverRole *string          `json:"approver_role"`
	Priority     *int             `json:"priority"`
	Active       *bool            `json:"active"`
}

// ApprovalRuleResponse represents an approval rule in API responses
type ApprovalRuleResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	ConditionType string          `json:"condition_type"`
	Threshold     decimal.Decimal `json:"threshold"`
	ApproverRole  string          `json:"approver_role"`
	Priority      int             `json:"priority"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToApprovalRuleResponse converts a domain approval rule to a response DTO
func ToApprovalRuleResponse(rule *estimating.ApprovalRule) ApprovalRuleResponse {
	return ApprovalRuleResponse{
		ID:            rule.ID,
		Name:          rule.Name,
		ConditionType: string(rule.ConditionType),
		Threshold:     rule.Threshold,
		ApproverRole:  rule.ApproverRole,
		Priority:      rule.Priority,
		Active:        rule.Active,
		CreatedAt:     rule.CreatedAt,
		UpdatedAt:     rule.UpdatedAt,
	}
}

// ToApprovalRuleResponses converts domain approval rules to response DTOs
func ToApprovalRuleResponses(rules []estimating.ApprovalRule) []ApprovalRuleResponse {
	responses := make([]ApprovalRuleResponse, len(rules))
	for i := range rules {
		responses[i] = ToApprovalRuleResponse(&rules[i])
	}
	return responses
}
