package handler

import (
	"encoding/json"
	"net/http"

	"github.com/axonlms/integrity-engine/internal/config"
	"github.com/axonlms/integrity-engine/internal/heuristic"
	"github.com/axonlms/integrity-engine/internal/model"
	"github.com/axonlms/integrity-engine/internal/response"
	"github.com/axonlms/integrity-engine/internal/service"
	"github.com/axonlms/integrity-engine/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AnalysisHandler runs the telemetry heuristics and, when a verdict crosses
// the persistence threshold, appends a flagged proctor event as part of the
// same request.
type AnalysisHandler struct {
	integrityService *service.IntegrityService
	cfg              *config.Config
	log              zerolog.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(integrityService *service.IntegrityService, cfg *config.Config, log zerolog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		integrityService: integrityService,
		cfg:              cfg,
		log:              log.With().Str("component", "analysis_handler").Logger(),
	}
}

// AnalyzeGaze godoc
// POST /api/v1/integrity/analyze/gaze
func (h *AnalysisHandler) AnalyzeGaze(c *gin.Context) {
	var req model.AnalyzeGazeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if _, err := h.integrityService.GetSession(c.Request.Context(), req.SessionUUID); err != nil {
		failIntegrity(c, err)
		return
	}

	cfg := heuristic.DefaultGazeConfig().WithOverrides(req.Config)
	away, confidence, metrics := heuristic.AnalyzeGaze(req.Landmarks, req.EulerAngles, cfg)

	verdict := model.AnalysisVerdict{
		Violation:  away,
		Confidence: confidence,
		Metrics:    metrics,
	}
	if !h.persistVerdict(c, req.SessionUUID, req.UserID, model.EventLookingAway, req.Config, &verdict) {
		return
	}
	response.Success(c, http.StatusOK, verdict)
}

// AnalyzeMouseDrift godoc
// POST /api/v1/integrity/analyze/mouse-drift
func (h *AnalysisHandler) AnalyzeMouseDrift(c *gin.Context) {
	var req model.AnalyzeMouseDriftRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if _, err := h.integrityService.GetSession(c.Request.Context(), req.SessionUUID); err != nil {
		failIntegrity(c, err)
		return
	}

	cfg := heuristic.DefaultDriftConfig().WithOverrides(req.Config)
	drift, confidence, metrics := heuristic.AnalyzeMouseDrift(req.Samples, req.ScreenWidth, req.ScreenHeight, cfg)

	verdict := model.AnalysisVerdict{
		Violation:  drift,
		Confidence: confidence,
		Metrics:    metrics,
	}
	if !h.persistVerdict(c, req.SessionUUID, req.UserID, model.EventMouseDrift, req.Config, &verdict) {
		return
	}
	response.Success(c, http.StatusOK, verdict)
}

// persistVerdict appends a flagged event when the verdict is positive and
// confident enough. Returns false after writing an error response.
func (h *AnalysisHandler) persistVerdict(c *gin.Context, sessionUUID string, userID int64, eventType model.EventType, overrides map[string]float64, verdict *model.AnalysisVerdict) bool {
	threshold := h.cfg.EventConfidenceThreshold
	if v, ok := overrides["event_threshold"]; ok {
		threshold = v
	}
	if !verdict.Violation || verdict.Confidence < threshold {
		return true
	}

	data, err := json.Marshal(gin.H{
		"confidence": verdict.Confidence,
		"metrics":    verdict.Metrics,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to encode verdict metrics")
		data = nil
	}

	_, err = h.integrityService.RecordEvent(c.Request.Context(), model.CreateProctorEventRequest{
		SessionUUID: sessionUUID,
		UserID:      userID,
		EventType:   string(eventType),
		Data:        data,
		Severity:    string(model.SeverityMedium),
		Flagged:     true,
	})
	if err != nil {
		failIntegrity(c, err)
		return false
	}
	verdict.EventRecorded = true
	return true
}
