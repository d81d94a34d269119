package handler

import (
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogapp "github.com/machshop/backend/internal/application/catalog"
	"github.com/machshop/backend/internal/interfaces/http/dto"
)

// maxImportFileSize caps CSV uploads at 10 MB
const maxImportFileSize int64 = 10 << 20

// ItemHandler handles catalog item-related API endpoints
type ItemHandler struct {
	BaseHandler
	itemService   *catalogapp.ItemService
	importService *catalogapp.ItemImportService
}

// NewItemHandler creates a new ItemHandler. importService may be nil when
// bulk import is not exposed.
func NewItemHandler(itemService *catalogapp.ItemService, importService *catalogapp.ItemImportService) *ItemHandler {
	return &ItemHandler{
		itemService:   itemService,
		importService: importService,
	}
}

// Create godoc
// @Summary      Create a catalog item
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        request body catalog.CreateItemRequest true "Item creation request"
// @Success      201 {object} dto.Response{data=catalog.ItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/items [post]
func (h *ItemHandler) Create(c *gin.Context) {
	var req catalogapp.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.itemService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, item)
}

// GetByID godoc
// @Summary      Get item by ID
// @Tags         items
// @Produce      json
// @Param        id path string true "Item ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalog.ItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/items/{id} [get]
func (h *ItemHandler) GetByID(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	item, err := h.itemService.GetByID(c.Request.Context(), itemID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, item)
}

// GetBySKU godoc
// @Summary      Get item by SKU
// @Tags         items
// @Produce      json
// @Param        sku path string true "Item SKU" example:"BRK-100"
// @Success      200 {object} dto.Response{data=catalog.ItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/items/sku/{sku} [get]
func (h *ItemHandler) GetBySKU(c *gin.Context) {
	sku := c.Param("sku")
	if sku == "" {
		h.BadRequest(c, "SKU is required")
		return
	}

	item, err := h.itemService.GetBySKU(c.Request.Context(), sku)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, item)
}

// List godoc
// @Summary      List catalog items
// @Tags         items
// @Produce      json
// @Param        search query string false "Search term (SKU, name)"
// @Param        category query string false "Item category"
// @Param        vendor_name query string false "Vendor name"
// @Param        active query bool false "Active flag"
// @Param        below_reorder_point query bool false "Only items below their reorder point"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]catalog.ItemResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/items [get]
func (h *ItemHandler) List(c *gin.Context) {
	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filters := map[string]interface{}{}
	if category := c.Query("category"); category != "" {
		filters["category"] = category
	}
	if vendor := c.Query("vendor_name"); vendor != "" {
		filters["vendor_name"] = vendor
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			h.BadRequest(c, "Invalid active flag")
			return
		}
		filters["active"] = active
	}
	if raw := c.Query("below_reorder_point"); raw != "" {
		below, err := strconv.ParseBool(raw)
		if err != nil {
			h.BadRequest(c, "Invalid below_reorder_point flag")
			return
		}
		filters["below_reorder_point"] = below
	}

	items, total, err := h.itemService.List(c.Request.Context(), toSharedFilter(listReq, filters))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, listReq.Page, listReq.PageSize)
}

// Update godoc
// @Summary      Update a catalog item
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        id path string true "Item ID" format(uuid)
// @Param        request body catalog.UpdateItemRequest true "Item update request"
// @Success      200 {object} dto.Response{data=catalog.ItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/items/{id} [put]
func (h *ItemHandler) Update(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	var req catalogapp.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.itemService.Update(c.Request.Context(), itemID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, item)
}

// SetStock godoc
// @Summary      Set item stock
// @Description  Set the on-hand quantity used for availability checks
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        id path string true "Item ID" format(uuid)
// @Param        request body catalog.SetStockRequest true "Stock update request"
// @Success      200 {object} dto.Response{data=catalog.ItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/items/{id}/stock [put]
func (h *ItemHandler) SetStock(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	var req catalogapp.SetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.itemService.SetStock(c.Request.Context(), itemID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, item)
}

// Delete godoc
// @Summary      Delete a catalog item
// @Tags         items
// @Param        id path string true "Item ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/items/{id} [delete]
func (h *ItemHandler) Delete(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	if err := h.itemService.Delete(c.Request.Context(), itemID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Import godoc
// @Summary      Bulk import catalog items from CSV
// @Tags         items
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "CSV file with sku and name columns"
// @Param        conflict_mode formData string false "skip, update or fail" default(skip)
// @Success      200 {object} dto.Response{data=catalog.ItemImportResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/items/import [post]
func (h *ItemHandler) Import(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Missing CSV file upload")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImportFileSize+1))
	if err != nil {
		h.BadRequest(c, "Failed to read CSV file")
		return
	}
	if int64(len(data)) > maxImportFileSize {
		h.BadRequest(c, "CSV file exceeds the 10 MB limit")
		return
	}

	mode := catalogapp.ConflictMode(c.DefaultPostForm("conflict_mode", string(catalogapp.ConflictModeSkip)))

	result, err := h.importService.Import(c.Request.Context(), data, mode)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}
