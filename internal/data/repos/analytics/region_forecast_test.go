package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/branchpulse-backend/internal/data/repos/testutil"
	types "github.com/yungbote/branchpulse-backend/internal/domain"
	"github.com/yungbote/branchpulse-backend/internal/platform/dbctx"
	"gorm.io/datatypes"
)

func TestRegionForecastRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewRegionForecastRepo(db, testutil.Logger(t))
	pointRepo := NewForecastPointRepo(db, testutil.Logger(t))

	run := testutil.SeedAnalysisRun(t, ctx, tx, types.RunStatusRunning)
	region1 := testutil.SeedRegion(t, ctx, tx, testutil.UniqueCode("RG"), 150000)
	region2 := testutil.SeedRegion(t, ctx, tx, testutil.UniqueCode("RG"), 70000)

	fc1 := &types.RegionForecast{
		AnalysisRunID:       run.ID,
		RegionID:            region1.ID,
		Status:              types.ForecastStatusOK,
		HistoryMonths:       24,
		MonthsAhead:         6,
		Slope:               5000,
		Intercept:           150000,
		SeasonalMultipliers: datatypes.JSON([]byte(`{"1":0.9,"12":1.15}`)),
	}
	fc2 := &types.RegionForecast{
		AnalysisRunID: run.ID,
		RegionID:      region2.ID,
		Status:        types.ForecastStatusInsufficientHistory,
		HistoryMonths: 7,
		MonthsAhead:   6,
	}
	if _, err := repo.CreateMany(dbc, []*types.RegionForecast{fc1, fc2}); err != nil {
		t.Fatalf("CreateMany: %v", err)
	}

	if got, err := repo.GetByRunAndRegion(dbc, run.ID, region1.ID); err != nil || got == nil || got.Slope != 5000 {
		t.Fatalf("GetByRunAndRegion: got=%v err=%v", got, err)
	}
	if got, err := repo.GetByRunAndRegion(dbc, run.ID, uuid.New()); err != nil || got != nil {
		t.Fatalf("GetByRunAndRegion missing: got=%v err=%v", got, err)
	}
	if rows, err := repo.ListByRunID(dbc, run.ID); err != nil || len(rows) != 2 {
		t.Fatalf("ListByRunID: err=%v len=%d", err, len(rows))
	}

	firstMonth := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	points := []*types.ForecastPoint{
		{RegionForecastID: fc1.ID, Seq: 2, Month: firstMonth.AddDate(0, 1, 0), TrendValue: 160000, SeasonalMultiplier: 0.9, ForecastValue: 144000},
		{RegionForecastID: fc1.ID, Seq: 1, Month: firstMonth, TrendValue: 155000, SeasonalMultiplier: 1.15, ForecastValue: 178250},
	}
	if _, err := pointRepo.CreateMany(dbc, points); err != nil {
		t.Fatalf("points CreateMany: %v", err)
	}
	got, err := pointRepo.ListByForecastID(dbc, fc1.ID)
	if err != nil || len(got) != 2 {
		t.Fatalf("ListByForecastID: err=%v len=%d", err, len(got))
	}
	if got[0].Seq != 1 || got[1].Seq != 2 {
		t.Fatalf("ListByForecastID seq order: %d then %d", got[0].Seq, got[1].Seq)
	}
	if rows, err := pointRepo.ListByForecastIDs(dbc, []uuid.UUID{fc1.ID, fc2.ID}); err != nil || len(rows) != 2 {
		t.Fatalf("ListByForecastIDs: err=%v len=%d", err, len(rows))
	}

	if err := repo.FullDeleteByRunID(dbc, run.ID); err != nil {
		t.Fatalf("FullDeleteByRunID: %v", err)
	}
	if rows, err := repo.ListByRunID(dbc, run.ID); err != nil || len(rows) != 0 {
		t.Fatalf("after FullDeleteByRunID ListByRunID: err=%v len=%d", err, len(rows))
	}
}
