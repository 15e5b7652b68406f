package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/branchpulse-backend/internal/http/response"
	"github.com/yungbote/branchpulse-backend/internal/platform/dbctx"
	"github.com/yungbote/branchpulse-backend/internal/services"
)

type ReportHandler struct {
	reports services.ReportService
}

func NewReportHandler(reports services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// GET /api/reports/kpis
func (h *ReportHandler) GetKPIs(c *gin.Context) {
	kpis, err := h.reports.KPIs(dbctx.New(c.Request.Context()))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"kpis": kpis})
}

// GET /api/reports/provinces
func (h *ReportHandler) GetProvinces(c *gin.Context) {
	rollups, err := h.reports.Provinces(dbctx.New(c.Request.Context()))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"provinces": rollups})
}

// GET /api/reports/seasonal
func (h *ReportHandler) GetSeasonal(c *gin.Context) {
	report, err := h.reports.Seasonal(dbctx.New(c.Request.Context()))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"seasonal": report})
}

// GET /api/reports/branch-load
func (h *ReportHandler) GetBranchLoad(c *gin.Context) {
	loads, err := h.reports.BranchLoad(dbctx.New(c.Request.Context()))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"branches": loads})
}
