package handler

import (
	"errors"
	"net/http"

	"github.com/axonlms/integrity-engine/internal/middleware"
	"github.com/axonlms/integrity-engine/internal/model"
	"github.com/axonlms/integrity-engine/internal/response"
	"github.com/axonlms/integrity-engine/internal/service"
	"github.com/axonlms/integrity-engine/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AssessmentHandler handles the timed attempt endpoints.
type AssessmentHandler struct {
	assessmentService *service.AssessmentService
}

// NewAssessmentHandler creates a new AssessmentHandler.
func NewAssessmentHandler(assessmentService *service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessmentService: assessmentService}
}

// Start godoc
// POST /api/v1/assessments/start
// Starts a timed session, or returns the existing active one for the task.
func (h *AssessmentHandler) Start(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.StartAssessmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.assessmentService.Start(c.Request.Context(), claims.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrTaskNotAssessable):
			response.Fail(c, http.StatusConflict, response.ErrTaskNotAssessable)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	status := http.StatusCreated
	if result.Resumed {
		status = http.StatusOK
	}
	response.Success(c, status, result)
}

// SubmitResponse godoc
// POST /api/v1/assessments/:session_id/responses
// Records one answer and auto-grades it when the question type allows.
func (h *AssessmentHandler) SubmitResponse(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var req model.SubmitResponseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.assessmentService.SubmitResponse(c.Request.Context(), sessionID, req)
	if err != nil {
		failAssessment(c, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// Submit godoc
// POST /api/v1/assessments/:session_id/submit
// Finalizes the session: aggregates grades and records the outcome.
func (h *AssessmentHandler) Submit(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	result, err := h.assessmentService.Submit(c.Request.Context(), sessionID)
	if err != nil {
		failAssessment(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Status godoc
// GET /api/v1/assessments/:session_id/status
// Returns a session snapshot with the stored advisory time remaining.
func (h *AssessmentHandler) Status(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	info, err := h.assessmentService.Status(c.Request.Context(), sessionID)
	if err != nil {
		failAssessment(c, err)
		return
	}
	response.Success(c, http.StatusOK, info)
}

func sessionIDParam(c *gin.Context) (string, bool) {
	sessionID := c.Param("session_id")
	if _, err := uuid.Parse(sessionID); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return "", false
	}
	return sessionID, true
}

func failAssessment(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrSessionInactive):
		response.Fail(c, http.StatusConflict, response.ErrSessionInactive)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
