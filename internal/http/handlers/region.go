package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/branchpulse-backend/internal/http/response"
	"github.com/yungbote/branchpulse-backend/internal/platform/dbctx"
	"github.com/yungbote/branchpulse-backend/internal/services"
)

type RegionHandler struct {
	regions  services.RegionService
	series   services.SeriesService
	coverage services.CoverageService
}

func NewRegionHandler(regions services.RegionService, series services.SeriesService, coverage services.CoverageService) *RegionHandler {
	return &RegionHandler{regions: regions, series: series, coverage: coverage}
}

// GET /api/regions
func (h *RegionHandler) ListRegions(c *gin.Context) {
	rows, err := h.regions.List(dbctx.New(c.Request.Context()))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"regions": rows})
}

// GET /api/regions/:code
func (h *RegionHandler) GetRegion(c *gin.Context) {
	region, err := h.regions.GetByCode(dbctx.New(c.Request.Context()), c.Param("code"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"region": region})
}

// GET /api/regions/:code/branches
func (h *RegionHandler) ListRegionBranches(c *gin.Context) {
	rows, err := h.regions.ListBranches(dbctx.New(c.Request.Context()), c.Param("code"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"branches": rows})
}

// GET /api/regions/:code/series
func (h *RegionHandler) GetRegionSeries(c *gin.Context) {
	rows, err := h.series.ListByRegionCode(dbctx.New(c.Request.Context()), c.Param("code"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"observations": rows})
}

type upsertSeriesRequest struct {
	Observations []services.ObservationInput `json:"observations"`
}

// POST /api/regions/:code/series
func (h *RegionHandler) UpsertRegionSeries(c *gin.Context) {
	var req upsertSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("parse request: %w", err))
		return
	}
	rows, err := h.series.UpsertBatch(dbctx.New(c.Request.Context()), c.Param("code"), req.Observations)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"observations": rows})
}

// GET /api/regions/:code/summary
func (h *RegionHandler) GetRegionSummary(c *gin.Context) {
	summary, err := h.coverage.SummarizeRegion(dbctx.New(c.Request.Context()), c.Param("code"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"summary": summary})
}
