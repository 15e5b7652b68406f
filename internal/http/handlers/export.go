package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/branchpulse-backend/internal/http/response"
	"github.com/yungbote/branchpulse-backend/internal/platform/dbctx"
	"github.com/yungbote/branchpulse-backend/internal/services"
)

type ExportHandler struct {
	exports services.ExportService
}

func NewExportHandler(exports services.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// GET /api/exports/regional-summary.csv
func (h *ExportHandler) RegionalSummaryCSV(c *gin.Context) {
	h.serveCSV(c, "regional-summary.csv", h.exports.RegionalSummaryCSV)
}

// GET /api/exports/recommendations.csv
func (h *ExportHandler) RecommendationsCSV(c *gin.Context) {
	h.serveCSV(c, "recommendations.csv", h.exports.RecommendationsCSV)
}

// GET /api/exports/forecasts.csv
func (h *ExportHandler) ForecastsCSV(c *gin.Context) {
	h.serveCSV(c, "forecasts.csv", h.exports.ForecastsCSV)
}

// GET /api/exports/branches.csv
func (h *ExportHandler) BranchesCSV(c *gin.Context) {
	h.serveCSV(c, "branches.csv", h.exports.BranchesCSV)
}

// GET /api/exports/kpis.csv
func (h *ExportHandler) KPIsCSV(c *gin.Context) {
	h.serveCSV(c, "kpis.csv", h.exports.KPIsCSV)
}

// GET /api/exports/provinces.csv
func (h *ExportHandler) ProvincesCSV(c *gin.Context) {
	h.serveCSV(c, "provinces.csv", h.exports.ProvincesCSV)
}

// serveCSV buffers the export before writing so an error mid-render still
// yields a clean JSON error instead of a truncated CSV body.
func (h *ExportHandler) serveCSV(c *gin.Context, filename string, render func(dbctx.Context, io.Writer) error) {
	var buf bytes.Buffer
	if err := render(dbctx.New(c.Request.Context()), &buf); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
