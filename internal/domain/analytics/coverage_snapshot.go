package analytics

import (
	"time"

	"github.com/google/uuid"
)

// Coverage statuses as stored on snapshot rows.
const (
	CoverageStatusNoCoverage   = "No Coverage"
	CoverageStatusUnderserved  = "Underserved"
	CoverageStatusBalanced     = "Balanced"
	CoverageStatusOversupplied = "Oversupplied"
)

// CoverageSnapshot is the persisted regional summary for one region within
// one analysis run. Coverage fields are a pure function of the region and
// branch rows at run time; the snapshot exists for reporting, never as
// authoritative coverage state.
type CoverageSnapshot struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	AnalysisRunID uuid.UUID `gorm:"type:uuid;column:analysis_run_id;not null;index;uniqueIndex:uq_coverage_snapshot_run_region" json:"analysis_run_id"`
	RegionID      uuid.UUID `gorm:"type:uuid;column:region_id;not null;index;uniqueIndex:uq_coverage_snapshot_run_region" json:"region_id"`

	BranchCount            int     `gorm:"column:branch_count;not null;default:0" json:"branch_count"`
	TotalBranchCapacity    float64 `gorm:"column:total_branch_capacity;not null;default:0" json:"total_branch_capacity"`
	AvgMonthlyTransactions float64 `gorm:"column:avg_monthly_transactions;not null;default:0" json:"avg_monthly_transactions"`
	CapacityGap            float64 `gorm:"column:capacity_gap;not null;default:0" json:"capacity_gap"`
	DemandCapacityRatio    float64 `gorm:"column:demand_capacity_ratio;not null;default:0" json:"demand_capacity_ratio"`
	CoverageStatus         string  `gorm:"column:coverage_status;not null;index" json:"coverage_status"`
	CoverageRank           int     `gorm:"column:coverage_rank;not null;default:0" json:"coverage_rank"`
	DemandScore            float64 `gorm:"column:demand_score;not null;default:0" json:"demand_score"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (CoverageSnapshot) TableName() string { return "coverage_snapshot" }
