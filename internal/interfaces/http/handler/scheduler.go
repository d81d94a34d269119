package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/machshop/backend/internal/infrastructure/scheduler"
)

// SchedulerHandler exposes the expiry scheduler's status and manual trigger
type SchedulerHandler struct {
	BaseHandler
	expiryScheduler *scheduler.ExpiryScheduler
}

// NewSchedulerHandler creates a new SchedulerHandler
func NewSchedulerHandler(expiryScheduler *scheduler.ExpiryScheduler) *SchedulerHandler {
	return &SchedulerHandler{
		expiryScheduler: expiryScheduler,
	}
}

// SchedulerStatusResponse represents the expiry scheduler status
type SchedulerStatusResponse struct {
	Running bool `json:"running"`
}

// ExpiryRunResponse represents one recorded expiry sweep
type ExpiryRunResponse struct {
	StartedAt    time.Time `json:"started_at"`
	CompletedAt  time.Time `json:"completed_at"`
	Status       string    `json:"status"`
	ExpiredCount int       `json:"expired_count"`
	Error        string    `json:"error,omitempty"`
}

// Status godoc
// @Summary      Get expiry scheduler status
// @Tags         scheduler
// @Produce      json
// @Success      200 {object} dto.Response{data=SchedulerStatusResponse}
// @Router       /estimating/scheduler/status [get]
func (h *SchedulerHandler) Status(c *gin.Context) {
	h.Success(c, SchedulerStatusResponse{
		Running: h.expiryScheduler.IsRunning(),
	})
}

// History godoc
// @Summary      List recent expiry sweeps
// @Description  Returns the most recent expiry sweep runs, newest last
// @Tags         scheduler
// @Produce      json
// @Success      200 {object} dto.Response{data=[]ExpiryRunResponse}
// @Router       /estimating/scheduler/history [get]
func (h *SchedulerHandler) History(c *gin.Context) {
	runs := h.expiryScheduler.History()

	responses := make([]ExpiryRunResponse, len(runs))
	for i, run := range runs {
		responses[i] = ExpiryRunResponse{
			StartedAt:    run.StartedAt,
			CompletedAt:  run.CompletedAt,
			Status:       string(run.Status),
			ExpiredCount: run.ExpiredCount,
			Error:        run.Error,
		}
	}

	h.Success(c, responses)
}

// TriggerNow godoc
// @Summary      Trigger an expiry sweep
// @Description  Run an immediate expiry sweep outside the regular interval
// @Tags         scheduler
// @Produce      json
// @Success      200 {object} dto.Response{data=CountData}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /estimating/scheduler/trigger [post]
func (h *SchedulerHandler) TriggerNow(c *gin.Context) {
	count, err := h.expiryScheduler.TriggerNow(c.Request.Context())
	if err != nil {
		h.UnprocessableEntity(c, "SCHEDULER_NOT_RUNNING", err.Error())
		return
	}

	h.Success(c, CountData{Count: int64(count)})
}
