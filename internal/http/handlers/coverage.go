package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/branchpulse-backend/internal/http/response"
	"github.com/yungbote/branchpulse-backend/internal/platform/dbctx"
	"github.com/yungbote/branchpulse-backend/internal/services"
)

type CoverageHandler struct {
	coverage services.CoverageService
}

func NewCoverageHandler(coverage services.CoverageService) *CoverageHandler {
	return &CoverageHandler{coverage: coverage}
}

// GET /api/coverage/summary
func (h *CoverageHandler) GetCoverageSummary(c *gin.Context) {
	summaries, err := h.coverage.SummarizeNetwork(dbctx.New(c.Request.Context()))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"summaries": summaries})
}
