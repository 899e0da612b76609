package handler

import (
	"errors"
	"net/http"

	"github.com/axonlms/integrity-engine/internal/model"
	"github.com/axonlms/integrity-engine/internal/response"
	"github.com/axonlms/integrity-engine/internal/service"
	"github.com/axonlms/integrity-engine/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ReportHandler exposes reviewer-facing report generation.
type ReportHandler struct {
	reportService *service.ReportService
	log           zerolog.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService *service.ReportService, log zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		log:           log.With().Str("component", "report_handler").Logger(),
	}
}

// Generate godoc
// POST /api/v1/integrity/report
// Summarizes the supplied events and returns collaborator-generated prose.
func (h *ReportHandler) Generate(c *gin.Context) {
	var req model.GenerateReportRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.reportService.Generate(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrReportNotConfigured) {
			response.Fail(c, http.StatusServiceUnavailable, response.ErrReportUnavailable)
			return
		}
		h.log.Error().Err(err).Str("session_uuid", req.SessionUUID).Msg("report generation failed")
		response.Fail(c, http.StatusBadGateway, response.ErrReportUnavailable)
		return
	}
	response.Success(c, http.StatusOK, result)
}
