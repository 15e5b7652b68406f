package coverage_forecast

import (
	"gorm.io/gorm"

	"github.com/yungbote/branchpulse-backend/internal/platform/logger"
	"github.com/yungbote/branchpulse-backend/internal/services"
)

type Pipeline struct {
	db       *gorm.DB
	log      *logger.Logger
	analysis services.AnalysisService
}

func New(
	db *gorm.DB,
	baseLog *logger.Logger,
	analysis services.AnalysisService,
) *Pipeline {
	return &Pipeline{
		db:       db,
		log:      baseLog.With("job", "coverage_forecast"),
		analysis: analysis,
	}
}

func (p *Pipeline) Type() string { return services.JobTypeCoverageForecast }
