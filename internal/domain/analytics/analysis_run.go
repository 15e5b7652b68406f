package analytics

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// AnalysisRun records one execution of the coverage and forecast pipeline
// together with the parameters it ran under.
type AnalysisRun struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	Status string         `gorm:"column:status;not null;index" json:"status"`
	Params datatypes.JSON `gorm:"column:params;type:jsonb" json:"params"`

	RegionsTotal      int `gorm:"column:regions_total;not null;default:0" json:"regions_total"`
	RegionsFlagged    int `gorm:"column:regions_flagged;not null;default:0" json:"regions_flagged"`
	RegionsForecasted int `gorm:"column:regions_forecasted;not null;default:0" json:"regions_forecasted"`
	RegionsSkipped    int `gorm:"column:regions_skipped;not null;default:0" json:"regions_skipped"`

	Error      string     `gorm:"column:error" json:"error,omitempty"`
	StartedAt  *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	FinishedAt *time.Time `gorm:"column:finished_at" json:"finished_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now();index" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (AnalysisRun) TableName() string { return "analysis_run" }
