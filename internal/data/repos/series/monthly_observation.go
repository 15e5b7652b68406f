package series

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/branchpulse-backend/internal/domain"
	"github.com/yungbote/branchpulse-backend/internal/platform/dbctx"
	"github.com/yungbote/branchpulse-backend/internal/platform/logger"
)

type MonthlyObservationRepo interface {
	UpsertMany(dbc dbctx.Context, rows []*types.MonthlyObservation) ([]*types.MonthlyObservation, error)
	ListByRegionID(dbc dbctx.Context, regionID uuid.UUID) ([]*types.MonthlyObservation, error)
	ListByRegionIDs(dbc dbctx.Context, regionIDs []uuid.UUID) ([]*types.MonthlyObservation, error)
	CountByRegionID(dbc dbctx.Context, regionID uuid.UUID) (int64, error)
	LatestMonth(dbc dbctx.Context) (*time.Time, error)
	FullDeleteByRegionIDs(dbc dbctx.Context, regionIDs []uuid.UUID) error
}

type monthlyObservationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMonthlyObservationRepo(db *gorm.DB, baseLog *logger.Logger) MonthlyObservationRepo {
	return &monthlyObservationRepo{db: db, log: baseLog.With("repo", "MonthlyObservationRepo")}
}

// UpsertMany inserts observations, overwriting the transaction value when a
// row for the same region and month already exists.
func (r *monthlyObservationRepo) UpsertMany(dbc dbctx.Context, rows []*types.MonthlyObservation) ([]*types.MonthlyObservation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.MonthlyObservation{}, nil
	}
	now := time.Now()
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		row.UpdatedAt = now
	}
	err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "region_id"}, {Name: "month"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"transactions",
				"updated_at",
			}),
		}).
		Create(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByRegionID returns a region's observations in chronological order.
func (r *monthlyObservationRepo) ListByRegionID(dbc dbctx.Context, regionID uuid.UUID) ([]*types.MonthlyObservation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.MonthlyObservation
	if regionID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("region_id = ?", regionID).
		Order("month ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *monthlyObservationRepo) ListByRegionIDs(dbc dbctx.Context, regionIDs []uuid.UUID) ([]*types.MonthlyObservation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.MonthlyObservation
	if len(regionIDs) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("region_id IN ?", regionIDs).
		Order("region_id ASC, month ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *monthlyObservationRepo) CountByRegionID(dbc dbctx.Context, regionID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if regionID == uuid.Nil {
		return 0, nil
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.MonthlyObservation{}).
		Where("region_id = ?", regionID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// LatestMonth returns the most recent observed month across all regions, or
// nil when no observations exist.
func (r *monthlyObservationRepo) LatestMonth(dbc dbctx.Context) (*time.Time, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.MonthlyObservation
	err := transaction.WithContext(dbc.Ctx).
		Order("month DESC").
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	month := row.Month
	return &month, nil
}

func (r *monthlyObservationRepo) FullDeleteByRegionIDs(dbc dbctx.Context, regionIDs []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(regionIDs) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("region_id IN ?", regionIDs).
		Delete(&types.MonthlyObservation{}).Error
}
