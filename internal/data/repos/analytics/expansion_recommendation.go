package analytics

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/branchpulse-backend/internal/domain"
	"github.com/yungbote/branchpulse-backend/internal/platform/dbctx"
	"github.com/yungbote/branchpulse-backend/internal/platform/logger"
)

type ExpansionRecommendationRepo interface {
	CreateMany(dbc dbctx.Context, rows []*types.ExpansionRecommendation) ([]*types.ExpansionRecommendation, error)
	ListByRunID(dbc dbctx.Context, runID uuid.UUID) ([]*types.ExpansionRecommendation, error)
	ListByRunIDAndPriority(dbc dbctx.Context, runID uuid.UUID, priority string) ([]*types.ExpansionRecommendation, error)
	FullDeleteByRunID(dbc dbctx.Context, runID uuid.UUID) error
}

type expansionRecommendationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExpansionRecommendationRepo(db *gorm.DB, baseLog *logger.Logger) ExpansionRecommendationRepo {
	return &expansionRecommendationRepo{db: db, log: baseLog.With("repo", "ExpansionRecommendationRepo")}
}

func (r *expansionRecommendationRepo) CreateMany(dbc dbctx.Context, rows []*types.ExpansionRecommendation) ([]*types.ExpansionRecommendation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.ExpansionRecommendation{}, nil
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

// ListByRunID returns recommendations in planning order, highest priority
// first.
func (r *expansionRecommendationRepo) ListByRunID(dbc dbctx.Context, runID uuid.UUID) ([]*types.ExpansionRecommendation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ExpansionRecommendation
	if runID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("analysis_run_id = ?", runID).
		Order("priority_rank ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *expansionRecommendationRepo) ListByRunIDAndPriority(dbc dbctx.Context, runID uuid.UUID, priority string) ([]*types.ExpansionRecommendation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ExpansionRecommendation
	if runID == uuid.Nil || priority == "" {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("analysis_run_id = ? AND priority_level = ?", runID, priority).
		Order("priority_rank ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *expansionRecommendationRepo) FullDeleteByRunID(dbc dbctx.Context, runID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if runID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("analysis_run_id = ?", runID).
		Delete(&types.ExpansionRecommendation{}).Error
}
