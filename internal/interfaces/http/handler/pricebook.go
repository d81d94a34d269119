package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	estimatingapp "github.com/machshop/backend/internal/application/estimating"
	"github.com/machshop/backend/internal/interfaces/http/dto"
)

// PriceBookHandler handles price book-related API endpoints
type PriceBookHandler struct {
	BaseHandler
	bookService *estimatingapp.PriceBookService
}

// NewPriceBookHandler creates a new PriceBookHandler
func NewPriceBookHandler(bookService *estimatingapp.PriceBookService) *PriceBookHandler {
	return &PriceBookHandler{
		bookService: bookService,
	}
}

// Create godoc
// @Summary      Create a price book
// @Description  Create a new price book, optionally scoped to a customer or segment
// @Tags         price-books
// @Accept       json
// @Produce      json
// @Param        request body estimating.CreatePriceBookRequest true "Price book creation request"
// @Success      201 {object} dto.Response{data=estimating.PriceBookResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /estimating/price-books [post]
func (h *PriceBookHandler) Create(c *gin.Context) {
	var req estimatingapp.CreatePriceBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	book, err := h.bookService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, book)
}

// GetByID godoc
// @Summary      Get price book by ID
// @Description  Retrieve a price book by its ID, including entries
// @Tags         price-books
// @Produce      json
// @Param        id path string true "Price Book ID" format(uuid)
// @Success      200 {object} dto.Response{data=estimating.PriceBookResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /estimating/price-books/{id} [get]
func (h *PriceBookHandler) GetByID(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid price book ID format")
		return
	}

	book, err := h.bookService.GetByID(c.Request.Context(), bookID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, book)
}

// List godoc
// @Summary      List price books
// @Description  Retrieve a paginated list of price books with optional filtering
// @Tags         price-books
// @Produce      json
// @Param        search query string false "Search term (name)"
// @Param        customer_id query string false "Customer ID" format(uuid)
// @Param        customer_segment query string false "Customer segment"
// @Param        active query bool false "Active flag"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]estimating.PriceBookResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /estimating/price-books [get]
func (h *PriceBookHandler) List(c *gin.Context) {
	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filters := map[string]interface{}{}
	if raw := c.Query("customer_id"); raw != "" {
		customerID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid customer ID format")
			return
		}
		filters["customer_id"] = customerID
	}
	if segment := c.Query("customer_segment"); segment != "" {
		filters["customer_segment"] = segment
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			h.BadRequest(c, "Invalid active flag")
			return
		}
		filters["active"] = active
	}

	books, total, err := h.bookService.List(c.Request.Context(), toSharedFilter(listReq, filters))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, books, total, listReq.Page, listReq.PageSize)
}

// Update godoc
// @Summary      Update a price book
// @Description  Update price book header fields
// @Tags         price-books
// @Accept       json
// @Produce      json
// @Param        id path string true "Price Book ID" format(uuid)
// @Param        request body estimating.UpdatePriceBookRequest true "Price book update request"
// @Success      200 {object} dto.Response{data=estimating.PriceBookResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /estimating/price-books/{id} [put]
func (h *PriceBookHandler) Update(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid price book ID format")
		return
	}

	var req estimatingapp.UpdatePriceBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	book, err := h.bookService.Update(c.Request.Context(), bookID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, book)
}

// Delete godoc
// @Summary      Delete a price book
// @Description  Delete a price book and its entries
// @Tags         price-books
// @Param        id path string true "Price Book ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /estimating/price-books/{id} [delete]
func (h *PriceBookHandler) Delete(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid price book ID format")
		return
	}

	if err := h.bookService.Delete(c.Request.Context(), bookID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// AddEntry godoc
// @Summary      Add a price book entry
// @Description  Add a quantity-banded price entry to a price book
// @Tags         price-books
// @Accept       json
// @Produce      json
// @Param        id path string true "Price Book ID" format(uuid)
// @Param        request body estimating.AddPriceBookEntryRequest true "Entry creation request"
// @Success      200 {object} dto.Response{data=estimating.PriceBookResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /estimating/price-books/{id}/entries [post]
func (h *PriceBookHandler) AddEntry(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid price book ID format")
		return
	}

	var req estimatingapp.AddPriceBookEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	book, err := h.bookService.AddEntry(c.Request.Context(), bookID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, book)
}

// RemoveEntry godoc
// @Summary      Remove a price book entry
// @Description  Remove an entry from a price book
// @Tags         price-books
// @Produce      json
// @Param        id path string true "Price Book ID" format(uuid)
// @Param        entry_id path string true "Entry ID" format(uuid)
// @Success      200 {object} dto.Response{data=estimating.PriceBookResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /estimating/price-books/{id}/entries/{entry_id} [delete]
func (h *PriceBookHandler) RemoveEntry(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid price book ID format")
		return
	}

	entryID, err := uuid.Parse(c.Param("entry_id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID format")
		return
	}

	book, err := h.bookService.RemoveEntry(c.Request.Context(), bookID, entryID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, book)
}
