package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/branchpulse-backend/internal/data/repos"
	types "github.com/yungbote/branchpulse-backend/internal/domain"
	"github.com/yungbote/branchpulse-backend/internal/platform/dbctx"
	"github.com/yungbote/branchpulse-backend/internal/platform/errs"
	"github.com/yungbote/branchpulse-backend/internal/platform/logger"
)

// ObservationInput is one month of transaction history as submitted at the
// ingestion boundary, before normalization.
type ObservationInput struct {
	Month        time.Time `json:"month"`
	Transactions float64   `json:"transactions"`
}

type SeriesService interface {
	ListByRegionCode(dbc dbctx.Context, regionCode string) ([]*types.MonthlyObservation, error)
	UpsertBatch(dbc dbctx.Context, regionCode string, inputs []ObservationInput) ([]*types.MonthlyObservation, error)
}

type seriesService struct {
	db           *gorm.DB
	log          *logger.Logger
	regions      repos.RegionRepo
	observations repos.MonthlyObservationRepo
}

func NewSeriesService(db *gorm.DB, baseLog *logger.Logger, regions repos.RegionRepo, observations repos.MonthlyObservationRepo) SeriesService {
	return &seriesService{
		db:           db,
		log:          baseLog.With("service", "SeriesService"),
		regions:      regions,
		observations: observations,
	}
}

func (s *seriesService) ListByRegionCode(dbc dbctx.Context, regionCode string) ([]*types.MonthlyObservation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}
	repoCtx := dbctx.Context{Ctx: dbc.Ctx, Tx: transaction}
	region, err := s.regions.GetByCode(repoCtx, regionCode)
	if err != nil {
		return nil, err
	}
	if region == nil {
		return nil, fmt.Errorf("region %s: %w", regionCode, errs.ErrNotFound)
	}
	return s.observations.ListByRegionID(repoCtx, region.ID)
}

// UpsertBatch validates and persists a batch of monthly observations for one
// region. Months are normalized to the first day of the month in UTC before
// the duplicate check, so "2024-03-15" and "2024-03-01" collide.
func (s *seriesService) UpsertBatch(dbc dbctx.Context, regionCode string, inputs []ObservationInput) ([]*types.MonthlyObservation, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("empty observation batch: %w", errs.ErrInvalidArgument)
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}
	repoCtx := dbctx.Context{Ctx: dbc.Ctx, Tx: transaction}

	region, err := s.regions.GetByCode(repoCtx, regionCode)
	if err != nil {
		return nil, err
	}
	if region == nil {
		return nil, fmt.Errorf("region %s: %w", regionCode, errs.ErrNotFound)
	}

	now := time.Now()
	seen := make(map[time.Time]bool, len(inputs))
	rows := make([]*types.MonthlyObservation, 0, len(inputs))
	for i, in := range inputs {
		if in.Month.IsZero() {
			return nil, fmt.Errorf("observation %d: missing month: %w", i, errs.ErrInvalidArgument)
		}
		if in.Transactions < 0 {
			return nil, fmt.Errorf("observation %d: negative transactions: %w", i, errs.ErrInvalidArgument)
		}
		month := NormalizeMonth(in.Month)
		if seen[month] {
			return nil, fmt.Errorf("observation %d: duplicate month %s: %w", i, month.Format("2006-01"), errs.ErrInvalidArgument)
		}
		seen[month] = true
		rows = append(rows, &types.MonthlyObservation{
			RegionID:     region.ID,
			Month:        month,
			Transactions: in.Transactions,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	out, err := s.observations.UpsertMany(repoCtx, rows)
	if err != nil {
		return nil, fmt.Errorf("upsert observations: %w", err)
	}
	return out, nil
}

// NormalizeMonth truncates a timestamp to the first day of its month in UTC.
func NormalizeMonth(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}
