package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/branchpulse-backend/internal/data/repos"
	"github.com/yungbote/branchpulse-backend/internal/platform/logger"
)

type Repos struct {
	Region                  repos.RegionRepo
	Branch                  repos.BranchRepo
	MonthlyObservation      repos.MonthlyObservationRepo
	AnalysisRun             repos.AnalysisRunRepo
	CoverageSnapshot        repos.CoverageSnapshotRepo
	RegionForecast          repos.RegionForecastRepo
	ForecastPoint           repos.ForecastPointRepo
	ExpansionRecommendation repos.ExpansionRecommendationRepo
	JobRun                  repos.JobRunRepo
	JobRunEvent             repos.JobRunEventRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Region:                  repos.NewRegionRepo(db, log),
		Branch:                  repos.NewBranchRepo(db, log),
		MonthlyObservation:      repos.NewMonthlyObservationRepo(db, log),
		AnalysisRun:             repos.NewAnalysisRunRepo(db, log),
		CoverageSnapshot:        repos.NewCoverageSnapshotRepo(db, log),
		RegionForecast:          repos.NewRegionForecastRepo(db, log),
		ForecastPoint:           repos.NewForecastPointRepo(db, log),
		ExpansionRecommendation: repos.NewExpansionRecommendationRepo(db, log),
		JobRun:                  repos.NewJobRunRepo(db, log),
		JobRunEvent:             repos.NewJobRunEventRepo(db, log),
	}
}
