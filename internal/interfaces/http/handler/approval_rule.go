package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	estimatingapp "github.com/machshop/backend/internal/application/estimating"
	"github.com/machshop/backend/internal/interfaces/http/dto"
)

// ApprovalRuleHandler handles approval rule-related API endpoints
type ApprovalRuleHandler struct {
	BaseHandler
	ruleService *estimatingapp.ApprovalRuleService
}

// NewApprovalRuleHandler creates a new ApprovalRuleHandler
func NewApprovalRuleHandler(ruleService *estimatingapp.ApprovalRuleService) *ApprovalRuleHandler {
	return &ApprovalRuleHandler{
		ruleService: ruleService,
	}
}

// Create godoc
// @Summary      Create an approval rule
// @Description  Create a new approval rule evaluated at estimate submission
// @Tags         approval-rules
// @Accept       json
// @Produce      json
// @Param        request body estimating.CreateApprovalRuleRequest true "Approval rule creation request"
// @Success      201 {object} dto.Response{data=estimating.ApprovalRuleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /estimating/approval-rules [post]
func (h *ApprovalRuleHandler) Create(c *gin.Context) {
	var req estimatingapp.CreateApprovalRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	rule, err := h.ruleService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, rule)
}

// GetByID godoc
// @Summary      Get approval rule by ID
// @Tags         approval-rules
// @Produce      json
// @Param        id path string true "Approval Rule ID" format(uuid)
// @Success      200 {object} dto.Response{data=estimating.ApprovalRuleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /estimating/approval-rules/{id} [get]
func (h *ApprovalRuleHandler) GetByID(c *gin.Context) {
	ruleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid approval rule ID format")
		return
	}

	rule, err := h.ruleService.GetByID(c.Request.Context(), ruleID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, rule)
}

// List godoc
// @Summary      List approval rules
// @Description  Retrieve a paginated list of approval rules ordered by priority
// @Tags         approval-rules
// @Produce      json
// @Param        condition_type query string false "Condition type" Enums(TOTAL_ABOVE, MARGIN_BELOW, CUSTOM)
// @Param        approver_role query string false "Approver role"
// @Param        active query bool false "Active flag"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]estimating.ApprovalRuleResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /estimating/approval-rules [get]
func (h *ApprovalRuleHandler) List(c *gin.Context) {
	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filters := map[string]interface{}{}
	if conditionType := c.Query("condition_type"); conditionType != "" {
		filters["condition_type"] = conditionType
	}
	if role := c.Query("approver_role"); role != "" {
		filters["approver_role"] = role
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			h.BadRequest(c, "Invalid active flag")
			return
		}
		filters["active"] = active
	}

	rules, total, err := h.ruleService.List(c.Request.Context(), toSharedFilter(listReq, filters))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, rules, total, listReq.Page, listReq.PageSize)
}

// Update godoc
// @Summary      Update an approval rule
// @Tags         approval-rules
// @Accept       json
// @Produce      json
// @Param        id path string true "Approval Rule ID" format(uuid)
// @Param        request body estimating.UpdateApprovalRuleRequest true "Approval rule update request"
// @Success      200 {object} dto.Response{data=estimating.ApprovalRuleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /estimating/approval-rules/{id} [put]
func (h *ApprovalRuleHandler) Update(c *gin.Context) {
	ruleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid approval rule ID format")
		return
	}

	var req estimatingapp.UpdateApprovalRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	rule, err := h.ruleService.Update(c.Request.Context(), ruleID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, rule)
}

// Delete godoc
// @Summary      Delete an approval rule
// @Tags         approval-rules
// @Param        id path string true "Approval Rule ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /estimating/approval-rules/{id} [delete]
func (h *ApprovalRuleHandler) Delete(c *gin.Context) {
	ruleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid approval rule ID format")
		return
	}

	if err := h.ruleService.Delete(c.Request.Context(), ruleID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
