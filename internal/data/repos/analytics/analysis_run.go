package analytics

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/branchpulse-backend/internal/domain"
	"github.com/yungbote/branchpulse-backend/internal/platform/dbctx"
	"github.com/yungbote/branchpulse-backend/internal/platform/logger"
)

type AnalysisRunRepo interface {
	Create(dbc dbctx.Context, rows []*types.AnalysisRun) ([]*types.AnalysisRun, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.AnalysisRun, error)
	GetLatestSucceeded(dbc dbctx.Context) (*types.AnalysisRun, error)
	List(dbc dbctx.Context, limit int) ([]*types.AnalysisRun, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type analysisRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnalysisRunRepo(db *gorm.DB, baseLog *logger.Logger) AnalysisRunRepo {
	return &analysisRunRepo{db: db, log: baseLog.With("repo", "AnalysisRunRepo")}
}

func (r *analysisRunRepo) Create(dbc dbctx.Context, rows []*types.AnalysisRun) ([]*types.AnalysisRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.AnalysisRun{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *analysisRunRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.AnalysisRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.AnalysisRun
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

// GetLatestSucceeded returns the newest finished run whose results are safe to
// read, or nil when no run has succeeded yet.
func (r *analysisRunRepo) GetLatestSucceeded(dbc dbctx.Context) (*types.AnalysisRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.AnalysisRun
	err := transaction.WithContext(dbc.Ctx).
		Where("status = ?", types.RunStatusSucceeded).
		Order("created_at DESC").
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *analysisRunRepo) List(dbc dbctx.Context, limit int) ([]*types.AnalysisRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 50
	}
	var out []*types.AnalysisRun
	if err := transaction.WithContext(dbc.Ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *analysisRunRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.AnalysisRun{}).
		Where("id = ?", id).
		Updates(updates).Error
}
