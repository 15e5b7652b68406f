package app

import (
	"github.com/gin-gonic/gin"

	httpx "github.com/yungbote/branchpulse-backend/internal/http"
	httpH "github.com/yungbote/branchpulse-backend/internal/http/handlers"
	httpMW "github.com/yungbote/branchpulse-backend/internal/http/middleware"
	"github.com/yungbote/branchpulse-backend/internal/observability"
	"github.com/yungbote/branchpulse-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Region   *httpH.RegionHandler
	Coverage *httpH.CoverageHandler
	Analysis *httpH.AnalysisHandler
	Report   *httpH.ReportHandler
	Export   *httpH.ExportHandler
	Job      *httpH.JobHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Region:   httpH.NewRegionHandler(services.Region, services.Series, services.Coverage),
		Coverage: httpH.NewCoverageHandler(services.Coverage),
		Analysis: httpH.NewAnalysisHandler(services.Analysis),
		Report:   httpH.NewReportHandler(services.Report),
		Export:   httpH.NewExportHandler(services.Export),
		Job:      httpH.NewJobHandler(services.JobService),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireRouter(log *logger.Logger, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *gin.Engine {
	return httpx.NewRouter(httpx.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		AuthMiddleware: middleware.Auth,

		HealthHandler:   handlers.Health,
		RegionHandler:   handlers.Region,
		CoverageHandler: handlers.Coverage,
		AnalysisHandler: handlers.Analysis,
		ReportHandler:   handlers.Report,
		ExportHandler:   handlers.Export,
		JobHandler:      handlers.Job,
	})
}
