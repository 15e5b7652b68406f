package jobs

import (
	"time"

	"github.com/google/uuid"
)

const (
	JobEventCreated   = "created"
	JobEventProgress  = "progress"
	JobEventSucceeded = "succeeded"
	JobEventFailed    = "failed"
	JobEventCanceled  = "canceled"
)

// JobRunEvent is one append-only entry in a job's timeline. The job_run row
// holds only the latest state; the timeline keeps every transition so a
// finished run can still be traced stage by stage.
type JobRunEvent struct {
	ID    uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	JobID uuid.UUID `gorm:"type:uuid;column:job_id;not null;index" json:"job_id"`

	Kind     string `gorm:"column:kind;not null;index" json:"kind"`
	Stage    string `gorm:"column:stage;not null" json:"stage"`
	Progress int    `gorm:"column:progress;not null;default:0" json:"progress"`
	Message  string `gorm:"column:message;type:text" json:"message,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (JobRunEvent) TableName() string { return "job_run_event" }
