package analytics

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ForecastStatusOK                  = "ok"
	ForecastStatusInsufficientHistory = "insufficient_history"
)

// RegionForecast stores the fitted trend for one region within one analysis
// run. Regions with too little history keep a row with Status
// insufficient_history and no points, so consumers can tell "skipped" apart
// from "not selected".
type RegionForecast struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	AnalysisRunID uuid.UUID `gorm:"type:uuid;column:analysis_run_id;not null;index;uniqueIndex:uq_region_forecast_run_region" json:"analysis_run_id"`
	RegionID      uuid.UUID `gorm:"type:uuid;column:region_id;not null;index;uniqueIndex:uq_region_forecast_run_region" json:"region_id"`

	Status        string `gorm:"column:status;not null;index" json:"status"`
	HistoryMonths int    `gorm:"column:history_months;not null;default:0" json:"history_months"`
	MonthsAhead   int    `gorm:"column:months_ahead;not null;default:0" json:"months_ahead"`

	Slope               float64        `gorm:"column:slope;not null;default:0" json:"slope"`
	Intercept           float64        `gorm:"column:intercept;not null;default:0" json:"intercept"`
	SeasonalMultipliers datatypes.JSON `gorm:"column:seasonal_multipliers;type:jsonb" json:"seasonal_multipliers"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (RegionForecast) TableName() string { return "region_forecast" }
