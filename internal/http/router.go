package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/branchpulse-backend/internal/http/handlers"
	httpMW "github.com/yungbote/branchpulse-backend/internal/http/middleware"
	"github.com/yungbote/branchpulse-backend/internal/observability"
	"github.com/yungbote/branchpulse-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler   *httpH.HealthHandler
	RegionHandler   *httpH.RegionHandler
	CoverageHandler *httpH.CoverageHandler
	AnalysisHandler *httpH.AnalysisHandler
	ReportHandler   *httpH.ReportHandler
	ExportHandler   *httpH.ExportHandler
	JobHandler      *httpH.JobHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("branchpulse"))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Regions & network topology
		if cfg.RegionHandler != nil {
			api.GET("/regions", cfg.RegionHandler.ListRegions)
			api.GET("/regions/:code", cfg.RegionHandler.GetRegion)
			api.GET("/regions/:code/branches", cfg.RegionHandler.ListRegionBranches)
			api.GET("/regions/:code/series", cfg.RegionHandler.GetRegionSeries)
			api.GET("/regions/:code/summary", cfg.RegionHandler.GetRegionSummary)
		}

		// Coverage
		if cfg.CoverageHandler != nil {
			api.GET("/coverage/summary", cfg.CoverageHandler.GetCoverageSummary)
		}

		// Analysis runs (reads)
		if cfg.AnalysisHandler != nil {
			api.GET("/analysis-runs", cfg.AnalysisHandler.ListAnalysisRuns)
			api.GET("/analysis-runs/:id", cfg.AnalysisHandler.GetAnalysisRun)
			api.GET("/analysis-runs/:id/snapshots", cfg.AnalysisHandler.ListRunSnapshots)
			api.GET("/analysis-runs/:id/recommendations", cfg.AnalysisHandler.ListRunRecommendations)
			api.GET("/analysis-runs/:id/forecasts", cfg.AnalysisHandler.ListRunForecasts)
		}

		// Reports
		if cfg.ReportHandler != nil {
			api.GET("/reports/kpis", cfg.ReportHandler.GetKPIs)
			api.GET("/reports/provinces", cfg.ReportHandler.GetProvinces)
			api.GET("/reports/seasonal", cfg.ReportHandler.GetSeasonal)
			api.GET("/reports/branch-load", cfg.ReportHandler.GetBranchLoad)
		}

		// CSV exports
		if cfg.ExportHandler != nil {
			api.GET("/exports/regional-summary.csv", cfg.ExportHandler.RegionalSummaryCSV)
			api.GET("/exports/recommendations.csv", cfg.ExportHandler.RecommendationsCSV)
			api.GET("/exports/forecasts.csv", cfg.ExportHandler.ForecastsCSV)
			api.GET("/exports/branches.csv", cfg.ExportHandler.BranchesCSV)
			api.GET("/exports/kpis.csv", cfg.ExportHandler.KPIsCSV)
			api.GET("/exports/provinces.csv", cfg.ExportHandler.ProvincesCSV)
		}

		// Jobs (reads)
		if cfg.JobHandler != nil {
			api.GET("/jobs", cfg.JobHandler.ListJobs)
			api.GET("/jobs/:id", cfg.JobHandler.GetJob)
			api.GET("/jobs/:id/events", cfg.JobHandler.ListJobEvents)
		}
	}

	// Mutating routes require a service token.
	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireServiceToken())
		}
		if cfg.RegionHandler != nil {
			protected.POST("/regions/:code/series", cfg.RegionHandler.UpsertRegionSeries)
		}
		if cfg.AnalysisHandler != nil {
			protected.POST("/analysis-runs", cfg.AnalysisHandler.CreateAnalysisRun)
		}
		if cfg.JobHandler != nil {
			protected.POST("/jobs/:id/cancel", cfg.JobHandler.CancelJob)
		}
	}

	return r
}
