package handler

import (
	"net/http"
	"strconv"

	"github.com/axonlms/integrity-engine/internal/response"
	"github.com/axonlms/integrity-engine/internal/service"
	"github.com/gin-gonic/gin"
)

// AnalyticsHandler exposes task-level assessment aggregates.
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// TaskAnalytics godoc
// GET /api/v1/assessments/tasks/:task_id/analytics
func (h *AnalyticsHandler) TaskAnalytics(c *gin.Context) {
	taskID, err := strconv.ParseInt(c.Param("task_id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	analytics, err := h.analyticsService.GetTaskAnalytics(c.Request.Context(), taskID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, analytics)
}
