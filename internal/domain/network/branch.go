package network

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	BranchTypeFullService = "Full Service"
	BranchTypeExpress     = "Express"
	BranchTypeFlagship    = "Flagship"
)

// Branch contributes its monthly transaction throughput to its region's
// capacity. Many branches per region, zero allowed.
type Branch struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	Code     string    `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Name     string    `gorm:"column:name;not null" json:"name"`
	City     string    `gorm:"column:city" json:"city,omitempty"`
	Province string    `gorm:"column:province;index" json:"province,omitempty"`
	RegionID uuid.UUID `gorm:"type:uuid;column:region_id;not null;index" json:"region_id"`

	Latitude  float64 `gorm:"column:latitude" json:"latitude,omitempty"`
	Longitude float64 `gorm:"column:longitude" json:"longitude,omitempty"`

	BranchType          string  `gorm:"column:branch_type;not null" json:"branch_type"`
	StaffCount          int     `gorm:"column:staff_count;not null;default:0" json:"staff_count"`
	MonthlyTransactions float64 `gorm:"column:monthly_transactions;not null;default:0" json:"monthly_transactions"`
	OpenedYear          int     `gorm:"column:opened_year" json:"opened_year,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now();index" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Branch) TableName() string { return "branch" }
