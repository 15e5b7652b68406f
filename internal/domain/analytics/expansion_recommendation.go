package analytics

import (
	"time"

	"github.com/google/uuid"
)

// Priority levels as stored on recommendation rows.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// ExpansionRecommendation is the planner output for one flagged region:
// how much capacity to add and how urgently.
type ExpansionRecommendation struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	AnalysisRunID uuid.UUID `gorm:"type:uuid;column:analysis_run_id;not null;index;uniqueIndex:uq_expansion_recommendation_run_region" json:"analysis_run_id"`
	RegionID      uuid.UUID `gorm:"type:uuid;column:region_id;not null;index;uniqueIndex:uq_expansion_recommendation_run_region" json:"region_id"`

	CoverageStatus string  `gorm:"column:coverage_status;not null" json:"coverage_status"`
	DemandScore    float64 `gorm:"column:demand_score;not null;default:0" json:"demand_score"`

	ProjectedGap      float64 `gorm:"column:projected_gap;not null;default:0" json:"projected_gap"`
	BranchesNeeded    int     `gorm:"column:branches_needed;not null;default:0" json:"branches_needed"`
	StaffNeeded       int     `gorm:"column:staff_needed;not null;default:0" json:"staff_needed"`
	PriorityLevel     string  `gorm:"column:priority_level;not null;index" json:"priority_level"`
	PriorityRank      int     `gorm:"column:priority_rank;not null;default:0" json:"priority_rank"`
	RecommendedAction string  `gorm:"column:recommended_action;not null" json:"recommended_action"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (ExpansionRecommendation) TableName() string { return "expansion_recommendation" }
