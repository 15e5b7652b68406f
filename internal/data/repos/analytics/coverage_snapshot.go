package analytics

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/branchpulse-backend/internal/domain"
	"github.com/yungbote/branchpulse-backend/internal/platform/dbctx"
	"github.com/yungbote/branchpulse-backend/internal/platform/logger"
)

type CoverageSnapshotRepo interface {
	CreateMany(dbc dbctx.Context, rows []*types.CoverageSnapshot) ([]*types.CoverageSnapshot, error)
	ListByRunID(dbc dbctx.Context, runID uuid.UUID) ([]*types.CoverageSnapshot, error)
	ListByRunIDAndStatuses(dbc dbctx.Context, runID uuid.UUID, statuses []string) ([]*types.CoverageSnapshot, error)
	FullDeleteByRunID(dbc dbctx.Context, runID uuid.UUID) error
}

type coverageSnapshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCoverageSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) CoverageSnapshotRepo {
	return &coverageSnapshotRepo{db: db, log: baseLog.With("repo", "CoverageSnapshotRepo")}
}

func (r *coverageSnapshotRepo) CreateMany(dbc dbctx.Context, rows []*types.CoverageSnapshot) ([]*types.CoverageSnapshot, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.CoverageSnapshot{}, nil
	}
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByRunID returns a run's snapshots ordered by severity rank, then by the
// widest capacity gap first within the same status.
func (r *coverageSnapshotRepo) ListByRunID(dbc dbctx.Context, runID uuid.UUID) ([]*types.CoverageSnapshot, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.CoverageSnapshot
	if runID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("analysis_run_id = ?", runID).
		Order("coverage_rank ASC, capacity_gap DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *coverageSnapshotRepo) ListByRunIDAndStatuses(dbc dbctx.Context, runID uuid.UUID, statuses []string) ([]*types.CoverageSnapshot, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.CoverageSnapshot
	if runID == uuid.Nil || len(statuses) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("analysis_run_id = ? AND coverage_status IN ?", runID, statuses).
		Order("demand_score DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *coverageSnapshotRepo) FullDeleteByRunID(dbc dbctx.Context, runID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if runID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("analysis_run_id = ?", runID).
		Delete(&types.CoverageSnapshot{}).Error
}
