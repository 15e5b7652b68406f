package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/branchpulse-backend/internal/http/response"
	"github.com/yungbote/branchpulse-backend/internal/platform/dbctx"
	"github.com/yungbote/branchpulse-backend/internal/services"
)

type AnalysisHandler struct {
	analysis services.AnalysisService
}

func NewAnalysisHandler(analysis services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysis: analysis}
}

type createRunRequest struct {
	MonthsAhead int `json:"months_ahead"`
	TopK        int `json:"top_k"`
}

// POST /api/analysis-runs
func (h *AnalysisHandler) CreateAnalysisRun(c *gin.Context) {
	var req createRunRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("parse request: %w", err))
		return
	}
	run, job, err := h.analysis.EnqueueRun(dbctx.New(c.Request.Context()), services.RunParams{
		MonthsAhead: req.MonthsAhead,
		TopK:        req.TopK,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondAccepted(c, gin.H{"run": run, "job": job})
}

// GET /api/analysis-runs
func (h *AnalysisHandler) ListAnalysisRuns(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	runs, err := h.analysis.ListRuns(dbctx.New(c.Request.Context()), limit)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"runs": runs})
}

// GET /api/analysis-runs/:id
func (h *AnalysisHandler) GetAnalysisRun(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_run_id", err)
		return
	}
	run, err := h.analysis.GetRun(dbctx.New(c.Request.Context()), runID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"run": run})
}

// GET /api/analysis-runs/:id/snapshots
func (h *AnalysisHandler) ListRunSnapshots(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_run_id", err)
		return
	}
	rows, err := h.analysis.ListSnapshots(dbctx.New(c.Request.Context()), runID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"snapshots": rows})
}

// GET /api/analysis-runs/:id/recommendations
func (h *AnalysisHandler) ListRunRecommendations(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_run_id", err)
		return
	}
	rows, err := h.analysis.ListRecommendations(dbctx.New(c.Request.Context()), runID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"recommendations": rows})
}

// GET /api/analysis-runs/:id/forecasts?region=
func (h *AnalysisHandler) ListRunForecasts(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_run_id", err)
		return
	}
	details, err := h.analysis.ListForecasts(dbctx.New(c.Request.Context()), runID, c.Query("region"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"forecasts": details})
}
