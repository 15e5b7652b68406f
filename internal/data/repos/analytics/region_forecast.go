package analytics

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/branchpulse-backend/internal/domain"
	"github.com/yungbote/branchpulse-backend/internal/platform/dbctx"
	"github.com/yungbote/branchpulse-backend/internal/platform/logger"
)

type RegionForecastRepo interface {
	CreateMany(dbc dbctx.Context, rows []*types.RegionForecast) ([]*types.RegionForecast, error)
	GetByRunAndRegion(dbc dbctx.Context, runID uuid.UUID, regionID uuid.UUID) (*types.RegionForecast, error)
	ListByRunID(dbc dbctx.Context, runID uuid.UUID) ([]*types.RegionForecast, error)
	FullDeleteByRunID(dbc dbctx.Context, runID uuid.UUID) error
}

type regionForecastRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRegionForecastRepo(db *gorm.DB, baseLog *logger.Logger) RegionForecastRepo {
	return &regionForecastRepo{db: db, log: baseLog.With("repo", "RegionForecastRepo")}
}

func (r *regionForecastRepo) CreateMany(dbc dbctx.Context, rows []*types.RegionForecast) ([]*types.RegionForecast, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.RegionForecast{}, nil
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

func (r *regionForecastRepo) GetByRunAndRegion(dbc dbctx.Context, runID uuid.UUID, regionID uuid.UUID) (*types.RegionForecast, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if runID == uuid.Nil || regionID == uuid.Nil {
		return nil, nil
	}
	var row types.RegionForecast
	err := transaction.WithContext(dbc.Ctx).
		Where("analysis_run_id = ? AND region_id = ?", runID, regionID).
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

func (r *regionForecastRepo) ListByRunID(dbc dbctx.Context, runID uuid.UUID) ([]*types.RegionForecast, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.RegionForecast
	if runID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("analysis_run_id = ?", runID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *regionForecastRepo) FullDeleteByRunID(dbc dbctx.Context, runID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if runID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("analysis_run_id = ?", runID).
		Delete(&types.RegionForecast{}).Error
}
