package series

import (
	"time"

	"github.com/google/uuid"
)

// MonthlyObservation is one point of a region's transaction series. Month is
// normalized to the first day of the month in UTC; one row per region per month.
type MonthlyObservation struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	RegionID     uuid.UUID `gorm:"type:uuid;column:region_id;not null;index;uniqueIndex:uq_monthly_observation_region_month" json:"region_id"`
	Month        time.Time `gorm:"column:month;type:date;not null;uniqueIndex:uq_monthly_observation_region_month" json:"month"`
	Transactions float64   `gorm:"column:transactions;not null;default:0" json:"transactions"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (MonthlyObservation) TableName() string { return "monthly_observation" }
