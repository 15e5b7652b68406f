package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/branchpulse-backend/internal/data/repos/analytics"
	"github.com/yungbote/branchpulse-backend/internal/data/repos/jobs"
	"github.com/yungbote/branchpulse-backend/internal/data/repos/network"
	"github.com/yungbote/branchpulse-backend/internal/data/repos/series"
	"github.com/yungbote/branchpulse-backend/internal/platform/logger"
)

type (
	RegionRepo                  = network.RegionRepo
	BranchRepo                  = network.BranchRepo
	MonthlyObservationRepo      = series.MonthlyObservationRepo
	AnalysisRunRepo             = analytics.AnalysisRunRepo
	CoverageSnapshotRepo        = analytics.CoverageSnapshotRepo
	RegionForecastRepo          = analytics.RegionForecastRepo
	ForecastPointRepo           = analytics.ForecastPointRepo
	ExpansionRecommendationRepo = analytics.ExpansionRecommendationRepo
	JobRunRepo                  = jobs.JobRunRepo
	JobRunEventRepo             = jobs.JobRunEventRepo
)

func NewRegionRepo(db *gorm.DB, baseLog *logger.Logger) RegionRepo {
	return network.NewRegionRepo(db, baseLog)
}

func NewBranchRepo(db *gorm.DB, baseLog *logger.Logger) BranchRepo {
	return network.NewBranchRepo(db, baseLog)
}

func NewMonthlyObservationRepo(db *gorm.DB, baseLog *logger.Logger) MonthlyObservationRepo {
	return series.NewMonthlyObservationRepo(db, baseLog)
}

func NewAnalysisRunRepo(db *gorm.DB, baseLog *logger.Logger) AnalysisRunRepo {
	return analytics.NewAnalysisRunRepo(db, baseLog)
}

func NewCoverageSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) CoverageSnapshotRepo {
	return analytics.NewCoverageSnapshotRepo(db, baseLog)
}

func NewRegionForecastRepo(db *gorm.DB, baseLog *logger.Logger) RegionForecastRepo {
	return analytics.NewRegionForecastRepo(db, baseLog)
}

func NewForecastPointRepo(db *gorm.DB, baseLog *logger.Logger) ForecastPointRepo {
	return analytics.NewForecastPointRepo(db, baseLog)
}

func NewExpansionRecommendationRepo(db *gorm.DB, baseLog *logger.Logger) ExpansionRecommendationRepo {
	return analytics.NewExpansionRecommendationRepo(db, baseLog)
}

func NewJobRunRepo(db *gorm.DB, baseLog *logger.Logger) JobRunRepo {
	return jobs.NewJobRunRepo(db, baseLog)
}

func NewJobRunEventRepo(db *gorm.DB, baseLog *logger.Logger) JobRunEventRepo {
	return jobs.NewJobRunEventRepo(db, baseLog)
}
