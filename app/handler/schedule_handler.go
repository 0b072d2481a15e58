package handler

import (
	"net/http"
	"strings"

	"swasthyaflow/app/middleware"
	"swasthyaflow/internal/model"
	"swasthyaflow/internal/service"

	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader lets clients retry creates safely
const IdempotencyKeyHeader = "Idempotency-Key"

// ScheduleHandler handles therapy session operations
type ScheduleHandler struct {
	scheduleService *service.ScheduleService
	trigger         *service.BroadcastTrigger
}

// NewScheduleHandler creates schedule handler
func NewScheduleHandler(scheduleService *service.ScheduleService, trigger *service.BroadcastTrigger) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService: scheduleService,
		trigger:         trigger,
	}
}

// List lists the caller's sessions
// @Summary List sessions
// @Tags schedules
// @Produce json
// @Success 200 {object} map[string][]model.Schedule
// @Router /api/schedules [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	items, err := h.scheduleService.List(c.Request.Context(), middleware.OwnerID(c))
	if err != nil {
		respondError(c, err, "fetch schedules")
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Create creates a session and pushes fresh analytics to the caller's dashboards
// @Summary Create session
// @Tags schedules
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Retry key"
// @Param request body model.CreateScheduleRequest true "Session"
// @Success 201 {object} map[string]model.Schedule
// @Router /api/schedules [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	ownerID := middleware.OwnerID(c)

	var req model.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindingError(err), "create schedule")
		return
	}

	params, err := h.scheduleService.ParseCreateRequest(ownerID, &req)
	if err != nil {
		respondError(c, err, "create schedule")
		return
	}
	params.IdempotencyKey = strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))

	result, err := h.scheduleService.Create(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "create schedule")
		return
	}

	if result.Replayed {
		c.JSON(http.StatusOK, gin.H{"item": result.Schedule})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"item": result.Schedule})
	h.trigger.Fire(ownerID)
}

// Cancel cancels a scheduled session
// @Summary Cancel session
// @Tags schedules
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} map[string]model.Schedule
// @Router /api/schedules/{id}/cancel [post]
func (h *ScheduleHandler) Cancel(c *gin.Context) {
	ownerID := middleware.OwnerID(c)

	item, err := h.scheduleService.Cancel(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		respondError(c, err, "cancel schedule")
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
	h.trigger.Fire(ownerID)
}
