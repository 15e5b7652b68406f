package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/branchpulse-backend/internal/jobs/pipeline/coverage_forecast"
	jobruntime "github.com/yungbote/branchpulse-backend/internal/jobs/runtime"
	"github.com/yungbote/branchpulse-backend/internal/jobs/worker"
	"github.com/yungbote/branchpulse-backend/internal/observability"
	"github.com/yungbote/branchpulse-backend/internal/platform/logger"
	"github.com/yungbote/branchpulse-backend/internal/services"
)

type Services struct {
	Auth     services.AuthService
	Region   services.RegionService
	Series   services.SeriesService
	Coverage services.CoverageService
	Analysis services.AnalysisService
	Report   services.ReportService
	Export   services.ExportService

	JobService  services.JobService
	JobRegistry *jobruntime.Registry
	JobWorker   *worker.Worker
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, policies Policies, repos Repos, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	authService := services.NewAuthService(log, cfg.AuthSecret)
	jobService := services.NewJobService(db, log, repos.JobRun, repos.JobRunEvent)

	regionService := services.NewRegionService(db, log, repos.Region, repos.Branch)
	seriesService := services.NewSeriesService(db, log, repos.Region, repos.MonthlyObservation)
	coverageService := services.NewCoverageService(db, log, repos.Region, repos.Branch, policies.Coverage)

	analysisService := services.NewAnalysisService(
		db,
		log,
		repos.Region,
		repos.Branch,
		repos.MonthlyObservation,
		repos.AnalysisRun,
		repos.CoverageSnapshot,
		repos.RegionForecast,
		repos.ForecastPoint,
		repos.ExpansionRecommendation,
		jobService,
		policies.Coverage,
		policies.Planning,
		cfg.ForecastWorkers,
	)

	reportService := services.NewReportService(
		db,
		log,
		repos.Region,
		repos.Branch,
		repos.MonthlyObservation,
		coverageService,
		clients.Redis,
		cfg.ReportCacheTTL,
	)

	exportService := services.NewExportService(
		db,
		log,
		repos.Region,
		repos.Branch,
		coverageService,
		analysisService,
		reportService,
	)

	jobRegistry := jobruntime.NewRegistry()
	if err := jobRegistry.Register(coverage_forecast.New(db, log, analysisService)); err != nil {
		return Services{}, err
	}

	var jobWorker *worker.Worker
	if cfg.WorkerEnabled {
		jobWorker = worker.NewWorker(db, log, repos.JobRun, repos.JobRunEvent, jobRegistry, metrics)
	}

	return Services{
		Auth:        authService,
		Region:      regionService,
		Series:      seriesService,
		Coverage:    coverageService,
		Analysis:    analysisService,
		Report:      reportService,
		Export:      exportService,
		JobService:  jobService,
		JobRegistry: jobRegistry,
		JobWorker:   jobWorker,
	}, nil
}
