package handler

import (
	"net/http"

	"github.com/a2z-dev/a2z/frontend/internal/middleware"
	"github.com/a2z-dev/a2z/shared/api"
	"github.com/a2z-dev/a2z/shared/middleware/metrics"
	"github.com/a2z-dev/a2z/shared/utils"
)

// ReportError stores an error reported by the client and hands back its ticket id.
func (h *Handler) ReportError(w http.ResponseWriter, r *http.Request) {
	var body api.ErrorReportRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	report := middleware.ReportFromRequest(r)
	report.Message = body.Message
	report.Stack = body.Stack
	report.Type = "error"
	report.AdditionalInfo = body.AdditionalInfo
	if body.URL != "" {
		report.URL = body.URL
	}

	refId := h.reporter.LogError(r.Context(), report)
	metrics.ErrorReported()
	utils.WriteJSON(w, http.StatusCreated, api.ErrorReportResponse{RefId: refId})
}
