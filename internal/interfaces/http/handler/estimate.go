package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	estimatingapp "github.com/machshop/backend/internal/application/estimating"
)

// EstimateHandler handles estimate-related API endpoints
type EstimateHandler struct {
	BaseHandler
	estimateService *estimatingapp.EstimateService
}

// NewEstimateHandler creates a new EstimateHandler
func NewEstimateHandler(estimateService *estimatingapp.EstimateService) *EstimateHandler {
	return &EstimateHandler{
		estimateService: estimateService,
	}
}

// Create godoc
// @Summary      Create a new estimate
// @Description  Create a new estimate in DRAFT status with optional initial lines
// @Tags         estimates
// @Accept       json
// @Produce      json
// @Param        request body estimating.CreateEstimateRequest true "Estimate creation request"
// @Success      201 {object} dto.Response{data=estimating.EstimateResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /estimating/estimates [post]
func (h *EstimateHandler) Create(c *gin.Context) {
	var req estimatingapp.CreateEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	estimate, err := h.estimateService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, estimate)
}

// GetByID godoc
// @Summary      Get estimate by ID
// @Description  Retrieve an estimate by its ID, including line items
// @Tags         estimates
// @Produce      json
// @Param        id path string true "Estimate ID" format(uuid)
// @Success      200 {object} dto.Response{data=estimating.EstimateResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /estimating/estimates/{id} [get]
func (h *EstimateHandler) GetByID(c *gin.Context) {
	estimateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid estimate ID format")
		return
	}

	estimate, err := h.estimateService.GetByID(c.Request.Context(), estimateID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, estimate)
}

// GetByNumber godoc
// @Summary      Get estimate by number and revision
// @Description  Retrieve a revision of an estimate by its number; the latest revision when none is given
// @Tags         estimates
// @Produce      json
// @Param        estimate_number path string true "Estimate Number" example:"EST-20260310-0001"
// @Param        revision query int false "Revision number, defaults to the latest"
// @Success      200 {object} dto.Response{data=estimating.EstimateResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /estimating/estimates/number/{estimate_number} [get]
func (h *EstimateHandler) GetByNumber(c *gin.Context) {
	number := c.Param("estimate_number")
	if number == "" {
		h.BadRequest(c, "Estimate number is required")
		return
	}

	raw := c.Query("revision")
	if raw == "" {
		estimate, err := h.estimateService.GetLatestByNumber(c.Request.Context(), number)
		if err != nil {
			h.HandleDomainError(c, err)
			return
		}
		h.Success(c, estimate)
		return
	}

	revision, err := strconv.Atoi(raw)
	if err != nil || revision < 1 {
		h.BadRequest(c, "Invalid revision number")
		return
	}

	estimate, err := h.estimateService.GetByNumber(c.Request.Context(), number, revision)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, estimate)
}

// VersionHistory godoc
// @Summary      List estimate revisions
// @Description  Retrieve all revisions sharing an estimate number, oldest first
// @Tags         estimates
// @Produce      json
// @Param        estimate_number path string true "Estimate Number" example:"EST-20260310-0001"
// @Success      200 {object} dto.Response{data=[]estimating.EstimateListItemResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /estimating/estimates/number/{estimate_number}/revisions [get]
func (h *EstimateHandler) VersionHistory(c *gin.Context) {
	number := c.Param("estimate_number")
	if number == "" {
		h.BadRequest(c, "Estimate number is required")
		return
	}

	revisions, err := h.estimateService.VersionHistory(c.Request.Context(), number)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, revisions)
}

// List godoc
// @Summary      List estimates
// @Description  Retrieve a paginated list of estimates with optional filtering
// @Tags         estimates
// @Produce      json
// @Param        search query string false "Search term (estimate number, notes)"
// @Param        customer_id query string false "Customer ID" format(uuid)
// @Param        status query string false "Estimate status" Enums(DRAFT, PENDING_APPROVAL, APPROVED, REJECTED, SENT, ACCEPTED, EXPIRED)
// @Param        start_date query string false "Start date (ISO 8601)" format(date-time)
// @Param        end_date query string false "End date (ISO 8601)" format(date-time)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(created_at)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} dto.Response{data=[]estimating.EstimateListItemResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /estimating/estimates [get]
func (h *EstimateHandler) List(c *gin.Context) {
	var filter estimatingapp.EstimateListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	estimates, total, err := h.estimateService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, estimates, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update an estimate
// @Description  Update estimate header fields (only allowed in DRAFT status)
// @Tags         estimates
// @Accept       json
// @Produce      json
// @Param        id path string true "Estimate ID" format(uuid)
// @Param        request body estimating.UpdateEstimateRequest true "Estimate update request"
// @Success      200 {object} dto.Response{data=estimating.EstimateResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /estimating/estimates/{id} [put]
func (h *EstimateHandler) Update(c *gin.Context) {
	estimateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid estimate ID format")
		return
	}

	var req estimatingapp.UpdateEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	estimate, err := h.estimateService.Update(c.Request.Context(), estimateID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, estimate)
}

// Delete godoc
// @Summary      Delete an estimate
// @Description  Delete an estimate (only allowed in DRAFT status)
// @Tags         estimates
// @Param        id path string true "Estimate ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /estimating/estimates/{id} [delete]
func (h *EstimateHandler) Delete(c *gin.Context) {
	estimateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid estimate ID format")
		return
	}

	if err := h.estimateService.Delete(c.Request.Context(), estimateID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// AddLineItem godoc
// @Summary      Add a line item
// @Description  Add a line item to a draft estimate, resolving price and availability
// @Tags         estimates
// @Accept       json
// @Produce      json
// @Param        id path string true "Estimate ID" format(uuid)
// @Param        request body estimating.LineItemInput true "Line item input"
// @Success      200 {object} dto.Response{data=estimating.EstimateResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /estimating/estimates/{id}/lines [post]
func (h *EstimateHandler) AddLineItem(c *gin.Context) {
	estimateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid estimate ID format")
		return
	}

	var input estimatingapp.LineItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	estimate, err := h.estimateService.AddLineItem(c.Request.Context(), estimateID, input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, estimate)
}

// UpdateLineItem godoc
// @Summary      Update a line item
// @Description  Replace a line item on a draft estimate and re-resolve its price
// @Tags         estimates
// @Accept       json
// @Produce      json
// @Param        id path string true "Estimate ID" format(uuid)
// @Param        line_id path string true "Line Item ID" format(uuid)
// @Param        request body estimating.LineItemInput true "Line item input"
// @Success      200 {object} dto.Response{data=estimating.EstimateResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /estimating/estimates/{id}/lines/{line_id} [put]
func (h *EstimateHandler) UpdateLineItem(c *gin.Context) {
	estimateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid estimate ID format")
		return
	}

	lineID, err := uuid.Parse(c.Param("line_id"))
	if err != nil {
		h.BadRequest(c, "Invalid line item ID format")
		return
	}

	var input estimatingapp.LineItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	estimate, err := h.estimateService.UpdateLineItem(c.Request.Context(), estimateID, lineID, input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, estimate)
}

// DeleteLineItem godoc
// @Summary      Remove a line item
// @Description  Remove a line item from a draft estimate
// @Tags         estimates
// @Produce      json
// @Param        id path string true "Estimate ID" format(uuid)
// @Param        line_id path string true "Line Item ID" format(uuid)
// @Success      200 {object} dto.Response{data=estimating.EstimateResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /estimating/estimates/{id}/lines/{line_id} [delete]
func (h *EstimateHandler) DeleteLineItem(c *gin.Context) {
	estimateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid estimate ID format")
		return
	}

	lineID, err := uuid.Parse(c.Param("line_id"))
	if err != nil {
		h.BadRequest(c, "Invalid line item ID format")
		return
	}

	estimate, err := h.estimateService.DeleteLineItem(c.Request.Context(), estimateID, lineID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, estimate)
}

// Submit godoc
// @Summary      Submit an estimate
// @Description  Submit a draft estimate, evaluating approval rules. Moves to PENDING_APPROVAL or APPROVED.
// @Tags         estimates
// @Produce      json
// @Param        id path string true "Estimate ID" format(uuid)
// @Success      200 {object} dto.Response{data=estimating.EstimateResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /estimating/estimates/{id}/submit [post]
func (h *EstimateHandler) Submit(c *gin.Context) {
	h.transition(c, h.estimateService.Submit)
}

// Approve godoc
// @Summary      Approve an estimate
// @Description  Approve a pending estimate
// @Tags         estimates
// @Accept       json
// @Produce      json
// @Param        id path string true "Estimate ID" format(uuid)
// @Param        request body estimating.ApproveEstimateRequest true "Approval request"
// @Success      200 {object} dto.Response{data=estimating.EstimateResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /estimating/estimates/{id}/approve [post]
func (h *EstimateHandler) Approve(c *gin.Context) {
	estimateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid estimate ID format")
		return
	}

	var req estimatingapp.ApproveEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	estimate, err := h.estimateService.Approve(c.Request.Context(), estimateID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, estimate)
}

// Reject godoc
// @Summary      Reject an estimate
// @Description  Reject a pending estimate with a reason
// @Tags         estimates
// @Accept       json
// @Produce      json
// @Param        id path string true "Estimate ID" format(uuid)
// @Param        request body estimating.RejectEstimateRequest true "Rejection request"
// @Success      200 {object} dto.Response{data=estimating.EstimateResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /estimating/estimates/{id}/reject [post]
func (h *EstimateHandler) Reject(c *gin.Context) {
	estimateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid estimate ID format")
		return
	}

	var req estimatingapp.RejectEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	estimate, err := h.estimateService.Reject(c.Request.Context(), estimateID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, estimate)
}

// Send godoc
// @Summary      Send an estimate
// @Description  Mark an approved estimate as sent to the customer
// @Tags         estimates
// @Produce      json
// @Param        id path string true "Estimate ID" format(uuid)
// @Success      200 {object} dto.Response{data=estimating.EstimateResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /estimating/estimates/{id}/send [post]
func (h *EstimateHandler) Send(c *gin.Context) {
	h.transition(c, h.estimateService.Send)
}

// Accept godoc
// @Summary      Accept an estimate
// @Description  Mark a sent estimate as accepted by the customer
// @Tags         estimates
// @Produce      json
// @Param        id path string true "Estimate ID" format(uuid)
// @Success      200 {object} dto.Response{data=estimating.EstimateResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /estimating/estimates/{id}/accept [post]
func (h *EstimateHandler) Accept(c *gin.Context) {
	h.transition(c, h.estimateService.Accept)
}

// Expire godoc
// @Summary      Expire an estimate
// @Description  Force-expire an open estimate
// @Tags         estimates
// @Produce      json
// @Param        id path string true "Estimate ID" format(uuid)
// @Success      200 {object} dto.Response{data=estimating.EstimateResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /estimating/estimates/{id}/expire [post]
func (h *EstimateHandler) Expire(c *gin.Context) {
	h.transition(c, h.estimateService.Expire)
}

// CreateRevision godoc
// @Summary      Create an estimate revision
// @Description  Create a new draft revision of an estimate, superseding the original
// @Tags         estimates
// @Produce      json
// @Param        id path string true "Estimate ID" format(uuid)
// @Success      201 {object} dto.Response{data=estimating.EstimateResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /estimating/estimates/{id}/revisions [post]
func (h *EstimateHandler) CreateRevision(c *gin.Context) {
	estimateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid estimate ID format")
		return
	}

	revision, err := h.estimateService.CreateRevision(c.Request.Context(), estimateID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, revision)
}

// ExpireOverdue godoc
// @Summary      Expire overdue estimates
// @Description  Expire all open estimates whose validity window has passed
// @Tags         estimates
// @Produce      json
// @Success      200 {object} dto.Response{data=CountData}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /estimating/estimates/expire-overdue [post]
func (h *EstimateHandler) ExpireOverdue(c *gin.Context) {
	count, err := h.estimateService.ExpireOverdue(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, CountData{Count: int64(count)})
}

// Quote godoc
// @Summary      Quote an item
// @Description  Compute price and availability for an item/quantity without persisting anything
// @Tags         estimates
// @Produce      json
// @Param        item_id query string true "Item ID" format(uuid)
// @Param        customer_id query string false "Customer ID for customer-specific pricing" format(uuid)
// @Param        qty query number true "Quantity" minimum(0)
// @Success      200 {object} dto.Response{data=estimating.QuoteResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /estimating/quote [get]
func (h *EstimateHandler) Quote(c *gin.Context) {
	itemID, err := uuid.Parse(c.Query("item_id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	var customerID *uuid.UUID
	if raw := c.Query("customer_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid customer ID format")
			return
		}
		customerID = &parsed
	}

	qty, err := decimal.NewFromString(c.Query("qty"))
	if err != nil || !qty.IsPositive() {
		h.BadRequest(c, "Quantity must be a positive number")
		return
	}

	quote, err := h.estimateService.Quote(c.Request.Context(), itemID, customerID, qty)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, quote)
}

// transition runs a body-less lifecycle operation identified by the id path
// parameter.
func (h *EstimateHandler) transition(
	c *gin.Context,
	op func(ctx context.Context, id uuid.UUID) (*estimatingapp.EstimateResponse, error),
) {
	estimateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid estimate ID format")
		return
	}

	estimate, err := op(c.Request.Context(), estimateID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, estimate)
}
