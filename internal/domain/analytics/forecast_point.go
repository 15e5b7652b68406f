package analytics

import (
	"time"

	"github.com/google/uuid"
)

// ForecastPoint is one projected month of a region forecast. Seq runs 1..N
// in calendar order with no gaps.
type ForecastPoint struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	RegionForecastID uuid.UUID `gorm:"type:uuid;column:region_forecast_id;not null;index;uniqueIndex:uq_forecast_point_forecast_seq" json:"region_forecast_id"`
	Seq              int       `gorm:"column:seq;not null;uniqueIndex:uq_forecast_point_forecast_seq" json:"seq"`

	Month              time.Time `gorm:"column:month;type:date;not null" json:"month"`
	TrendValue         float64   `gorm:"column:trend_value;not null;default:0" json:"trend_value"`
	SeasonalMultiplier float64   `gorm:"column:seasonal_multiplier;not null;default:1" json:"seasonal_multiplier"`
	ForecastValue      float64   `gorm:"column:forecast_value;not null;default:0" json:"forecast_value"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (ForecastPoint) TableName() string { return "forecast_point" }
