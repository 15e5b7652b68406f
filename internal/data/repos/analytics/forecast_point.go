package analytics

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/branchpulse-backend/internal/domain"
	"github.com/yungbote/branchpulse-backend/internal/platform/dbctx"
	"github.com/yungbote/branchpulse-backend/internal/platform/logger"
)

type ForecastPointRepo interface {
	CreateMany(dbc dbctx.Context, rows []*types.ForecastPoint) ([]*types.ForecastPoint, error)
	ListByForecastID(dbc dbctx.Context, forecastID uuid.UUID) ([]*types.ForecastPoint, error)
	ListByForecastIDs(dbc dbctx.Context, forecastIDs []uuid.UUID) ([]*types.ForecastPoint, error)
	FullDeleteByForecastIDs(dbc dbctx.Context, forecastIDs []uuid.UUID) error
}

type forecastPointRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewForecastPointRepo(db *gorm.DB, baseLog *logger.Logger) ForecastPointRepo {
	return &forecastPointRepo{db: db, log: baseLog.With("repo", "ForecastPointRepo")}
}

func (r *forecastPointRepo) CreateMany(dbc dbctx.Context, rows []*types.ForecastPoint) ([]*types.ForecastPoint, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.ForecastPoint{}, nil
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

// ListByForecastID returns points in horizon order.
func (r *forecastPointRepo) ListByForecastID(dbc dbctx.Context, forecastID uuid.UUID) ([]*types.ForecastPoint, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ForecastPoint
	if forecastID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("region_forecast_id = ?", forecastID).
		Order("seq ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *forecastPointRepo) ListByForecastIDs(dbc dbctx.Context, forecastIDs []uuid.UUID) ([]*types.ForecastPoint, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ForecastPoint
	if len(forecastIDs) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("region_forecast_id IN ?", forecastIDs).
		Order("region_forecast_id ASC, seq ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// FullDeleteByForecastIDs hard-deletes the points of a forecast set, used
// when a run is re-executed after a partial failure.
func (r *forecastPointRepo) FullDeleteByForecastIDs(dbc dbctx.Context, forecastIDs []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(forecastIDs) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Unscoped().
		Where("region_forecast_id IN ?", forecastIDs).
		Delete(&types.ForecastPoint{}).Error
}
