package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/axonlms/integrity-engine/internal/model"
	"github.com/axonlms/integrity-engine/internal/repository"
	"github.com/axonlms/integrity-engine/internal/response"
	"github.com/axonlms/integrity-engine/internal/service"
	"github.com/axonlms/integrity-engine/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// IntegrityHandler handles monitoring sessions, events, flags, and the
// analysis read side.
type IntegrityHandler struct {
	integrityService *service.IntegrityService
}

// NewIntegrityHandler creates a new IntegrityHandler.
func NewIntegrityHandler(integrityService *service.IntegrityService) *IntegrityHandler {
	return &IntegrityHandler{integrityService: integrityService}
}

// CreateSession godoc
// POST /api/v1/integrity/sessions
func (h *IntegrityHandler) CreateSession(c *gin.Context) {
	var req model.CreateIntegritySessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.integrityService.CreateSession(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, session)
}

// GetSession godoc
// GET /api/v1/integrity/sessions/:session_uuid
func (h *IntegrityHandler) GetSession(c *gin.Context) {
	sessionUUID, ok := sessionUUIDParam(c)
	if !ok {
		return
	}

	session, err := h.integrityService.GetSession(c.Request.Context(), sessionUUID)
	if err != nil {
		failIntegrity(c, err)
		return
	}
	response.Success(c, http.StatusOK, session)
}

// UpdateSessionStatus godoc
// PUT /api/v1/integrity/sessions/:session_uuid/status
func (h *IntegrityHandler) UpdateSessionStatus(c *gin.Context) {
	sessionUUID, ok := sessionUUIDParam(c)
	if !ok {
		return
	}

	var req model.UpdateIntegritySessionStatusRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.integrityService.UpdateSessionStatus(c.Request.Context(), sessionUUID, req); err != nil {
		failIntegrity(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session_uuid": sessionUUID, "status": req.Status})
}

// ListActiveSessions godoc
// GET /api/v1/integrity/users/:user_id/sessions/active
func (h *IntegrityHandler) ListActiveSessions(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	sessions, err := h.integrityService.ListActiveSessions(c.Request.Context(), userID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if sessions == nil {
		sessions = []model.IntegritySession{}
	}
	response.Success(c, http.StatusOK, gin.H{"sessions": sessions})
}

// RecordEvent godoc
// POST /api/v1/integrity/events
func (h *IntegrityHandler) RecordEvent(c *gin.Context) {
	var req model.CreateProctorEventRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	event, err := h.integrityService.RecordEvent(c.Request.Context(), req)
	if err != nil {
		failIntegrity(c, err)
		return
	}
	response.Success(c, http.StatusCreated, event)
}

// RecordEventsBatch godoc
// POST /api/v1/integrity/events/batch
// The whole batch is rejected when any referenced session is unknown.
func (h *IntegrityHandler) RecordEventsBatch(c *gin.Context) {
	var req model.BatchProctorEventsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ids, err := h.integrityService.RecordEventsBatch(c.Request.Context(), req)
	if err != nil {
		failIntegrity(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"event_ids": ids, "count": len(ids)})
}

// ListSessionEvents godoc
// GET /api/v1/integrity/sessions/:session_uuid/events
// Supports ?event_type=, ?flagged_only=true, ?limit=.
func (h *IntegrityHandler) ListSessionEvents(c *gin.Context) {
	sessionUUID, ok := sessionUUIDParam(c)
	if !ok {
		return
	}

	events, err := h.integrityService.ListSessionEvents(c.Request.Context(), sessionUUID, eventFilterFromQuery(c))
	if err != nil {
		failIntegrity(c, err)
		return
	}
	if events == nil {
		events = []model.ProctorEvent{}
	}
	response.Success(c, http.StatusOK, gin.H{"events": events})
}

// ListUserEvents godoc
// GET /api/v1/integrity/users/:user_id/events
func (h *IntegrityHandler) ListUserEvents(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	events, err := h.integrityService.ListUserEvents(c.Request.Context(), userID, eventFilterFromQuery(c))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if events == nil {
		events = []model.ProctorEvent{}
	}
	response.Success(c, http.StatusOK, gin.H{"events": events})
}

// CreateFlag godoc
// POST /api/v1/integrity/flags
func (h *IntegrityHandler) CreateFlag(c *gin.Context) {
	var req model.CreateIntegrityFlagRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	flag, err := h.integrityService.CreateFlag(c.Request.Context(), req)
	if err != nil {
		failIntegrity(c, err)
		return
	}
	response.Success(c, http.StatusCreated, flag)
}

// UpdateFlagDecision godoc
// PUT /api/v1/integrity/flags/:flag_id/decision
func (h *IntegrityHandler) UpdateFlagDecision(c *gin.Context) {
	flagID, err := strconv.ParseInt(c.Param("flag_id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateFlagDecisionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	decision := model.ReviewerDecision(req.ReviewerDecision)
	if err := h.integrityService.UpdateFlagDecision(c.Request.Context(), flagID, decision); err != nil {
		failIntegrity(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"flag_id": flagID, "reviewer_decision": decision})
}

// ListSessionFlags godoc
// GET /api/v1/integrity/sessions/:session_uuid/flags
func (h *IntegrityHandler) ListSessionFlags(c *gin.Context) {
	sessionUUID, ok := sessionUUIDParam(c)
	if !ok {
		return
	}

	flags, err := h.integrityService.ListSessionFlags(c.Request.Context(), sessionUUID)
	if err != nil {
		failIntegrity(c, err)
		return
	}
	if flags == nil {
		flags = []model.IntegrityFlag{}
	}
	response.Success(c, http.StatusOK, gin.H{"flags": flags})
}

// ListPendingFlags godoc
// GET /api/v1/integrity/flags/pending
func (h *IntegrityHandler) ListPendingFlags(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	flags, err := h.integrityService.ListPendingFlags(c.Request.Context(), limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if flags == nil {
		flags = []model.IntegrityFlag{}
	}
	response.Success(c, http.StatusOK, gin.H{"flags": flags})
}

// AnalyzeSession godoc
// GET /api/v1/integrity/sessions/:session_uuid/analysis
func (h *IntegrityHandler) AnalyzeSession(c *gin.Context) {
	sessionUUID, ok := sessionUUIDParam(c)
	if !ok {
		return
	}

	analysis, err := h.integrityService.AnalyzeSession(c.Request.Context(), sessionUUID)
	if err != nil {
		failIntegrity(c, err)
		return
	}
	response.Success(c, http.StatusOK, analysis)
}

// CohortOverview godoc
// GET /api/v1/integrity/cohorts/:cohort_id/overview
// Supports ?include_details=true to include per-session analyses.
func (h *IntegrityHandler) CohortOverview(c *gin.Context) {
	cohortID, err := strconv.ParseInt(c.Param("cohort_id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	includeDetails := c.Query("include_details") == "true"

	overview, err := h.integrityService.CohortOverview(c.Request.Context(), cohortID, includeDetails)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, overview)
}

func sessionUUIDParam(c *gin.Context) (string, bool) {
	sessionUUID := c.Param("session_uuid")
	if _, err := uuid.Parse(sessionUUID); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return "", false
	}
	return sessionUUID, true
}

func userIDParam(c *gin.Context) (int64, bool) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return userID, true
}

func eventFilterFromQuery(c *gin.Context) repository.EventFilter {
	filter := repository.EventFilter{
		FlaggedOnly: c.Query("flagged_only") == "true",
	}
	if eventType := c.Query("event_type"); eventType != "" {
		filter.EventType = &eventType
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}
	return filter
}

func failIntegrity(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrUnknownSession):
		response.Fail(c, http.StatusBadRequest, response.ErrBatchSessionUnknown)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
