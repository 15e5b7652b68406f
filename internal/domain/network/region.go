package network

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Region is the unit of coverage analysis. Demand fields arrive from the
// ingestion boundary already validated and are treated as immutable inputs
// by the engine.
type Region struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	Code     string `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Name     string `gorm:"column:name;not null" json:"name"`
	Province string `gorm:"column:province;not null;index" json:"province"`

	Population             int     `gorm:"column:population;not null;default:0" json:"population"`
	MedianIncome           int     `gorm:"column:median_income;not null;default:0" json:"median_income"`
	DigitalAdoptionRate    float64 `gorm:"column:digital_adoption_rate;not null;default:0" json:"digital_adoption_rate"`
	InBranchPreference     float64 `gorm:"column:in_branch_preference;not null;default:0" json:"in_branch_preference"`
	SmallBusinessDensity   int     `gorm:"column:small_business_density;not null;default:0" json:"small_business_density"`
	AvgMonthlyTransactions float64 `gorm:"column:avg_monthly_transactions;not null;default:0" json:"avg_monthly_transactions"`
	DemandScore            float64 `gorm:"column:demand_score;not null;default:0;index" json:"demand_score"`

	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now();index" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Region) TableName() string { return "region" }
