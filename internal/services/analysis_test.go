package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/branchpulse-backend/internal/data/repos"
	"github.com/yungbote/branchpulse-backend/internal/data/repos/testutil"
	types "github.com/yungbote/branchpulse-backend/internal/domain"
	"github.com/yungbote/branchpulse-backend/internal/engine/coverage"
	"github.com/yungbote/branchpulse-backend/internal/engine/forecast"
	"github.com/yungbote/branchpulse-backend/internal/engine/planning"
	"github.com/yungbote/branchpulse-backend/internal/platform/dbctx"
	"github.com/yungbote/branchpulse-backend/internal/platform/errs"
)

func TestNormalizeRunParams(t *testing.T) {
	p, err := NormalizeRunParams(RunParams{})
	if err != nil {
		t.Fatalf("NormalizeRunParams zero: %v", err)
	}
	if p.MonthsAhead != forecast.DefaultMonthsAhead {
		t.Fatalf("MonthsAhead = %d, want %d", p.MonthsAhead, forecast.DefaultMonthsAhead)
	}
	if p.TopK != 0 {
		t.Fatalf("TopK = %d, want 0", p.TopK)
	}

	if _, err := NormalizeRunParams(RunParams{MonthsAhead: 25}); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("months_ahead=25: err = %v, want ErrInvalidArgument", err)
	}
	if _, err := NormalizeRunParams(RunParams{MonthsAhead: -1}); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("months_ahead=-1: err = %v, want ErrInvalidArgument", err)
	}
	if _, err := NormalizeRunParams(RunParams{TopK: -1}); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("top_k=-1: err = %v, want ErrInvalidArgument", err)
	}

	p, err = NormalizeRunParams(RunParams{MonthsAhead: 24, TopK: 5})
	if err != nil {
		t.Fatalf("NormalizeRunParams max: %v", err)
	}
	if p.MonthsAhead != 24 || p.TopK != 5 {
		t.Fatalf("params = %+v", p)
	}
}

// newAnalysisForTest wires the service against a single rollback transaction.
// One forecast worker keeps repo calls on the shared tx serial.
func newAnalysisForTest(t *testing.T) (AnalysisService, dbctx.Context) {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	log := testutil.Logger(t)
	jobSvc := NewJobService(db, log, repos.NewJobRunRepo(db, log), repos.NewJobRunEventRepo(db, log))
	svc := NewAnalysisService(
		db, log,
		repos.NewRegionRepo(db, log),
		repos.NewBranchRepo(db, log),
		repos.NewMonthlyObservationRepo(db, log),
		repos.NewAnalysisRunRepo(db, log),
		repos.NewCoverageSnapshotRepo(db, log),
		repos.NewRegionForecastRepo(db, log),
		repos.NewForecastPointRepo(db, log),
		repos.NewExpansionRecommendationRepo(db, log),
		jobSvc,
		coverage.DefaultPolicy(),
		planning.DefaultPolicy(),
		1,
	)
	return svc, dbc
}

func TestAnalysisService_ExecutePipeline(t *testing.T) {
	svc, dbc := newAnalysisForTest(t)
	ctx := dbc.Ctx
	tx := dbc.Tx

	// Underserved region with a rising 24-month history: demand 200k against
	// 50k of branch capacity.
	underserved := testutil.SeedRegion(t, ctx, tx, testutil.UniqueCode("RGU"), 200000)
	testutil.SeedBranch(t, ctx, tx, underserved.ID, testutil.UniqueCode("BU"), 50000)
	start := time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)
	history := make([]float64, 24)
	for i := range history {
		history[i] = 150000 + 2500*float64(i)
	}
	testutil.SeedObservations(t, ctx, tx, underserved.ID, start, history)

	// Balanced region: never selected for forecasting.
	balanced := testutil.SeedRegion(t, ctx, tx, testutil.UniqueCode("RGB"), 50000)
	testutil.SeedBranch(t, ctx, tx, balanced.ID, testutil.UniqueCode("BB"), 50000)

	// No-coverage region with too little history for a forecast.
	short := testutil.SeedRegion(t, ctx, tx, testutil.UniqueCode("RGN"), 100000)
	testutil.SeedObservations(t, ctx, tx, short.ID, start, []float64{90000, 95000, 98000, 99000, 101000})

	run, job, err := svc.EnqueueRun(dbc, RunParams{MonthsAhead: 6})
	if err != nil {
		t.Fatalf("EnqueueRun: %v", err)
	}
	if job == nil || job.JobType != JobTypeCoverageForecast {
		t.Fatalf("job = %+v, want coverage_forecast", job)
	}

	run, stats, err := svc.Execute(dbc, run.ID, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if run.Status != types.RunStatusSucceeded {
		t.Fatalf("run status = %s, want succeeded", run.Status)
	}
	if stats.RegionsForecasted < 1 || stats.RegionsSkipped < 1 {
		t.Fatalf("stats = %+v, want at least one forecasted and one skipped", stats)
	}

	snapshots, err := svc.ListSnapshots(dbc, run.ID)
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	byRegion := map[uuid.UUID]*types.CoverageSnapshot{}
	for _, s := range snapshots {
		byRegion[s.RegionID] = s
	}
	if s := byRegion[underserved.ID]; s == nil || s.CoverageStatus != types.CoverageStatusUnderserved {
		t.Fatalf("underserved snapshot = %+v", s)
	}
	if s := byRegion[balanced.ID]; s == nil || s.CoverageStatus != types.CoverageStatusBalanced {
		t.Fatalf("balanced snapshot = %+v", s)
	}
	if s := byRegion[short.ID]; s == nil || s.CoverageStatus != types.CoverageStatusNoCoverage {
		t.Fatalf("no-coverage snapshot = %+v", s)
	}

	forecasts, err := svc.ListForecasts(dbc, run.ID, "")
	if err != nil {
		t.Fatalf("ListForecasts: %v", err)
	}
	var underservedFc, shortFc *ForecastDetail
	for _, f := range forecasts {
		switch f.Forecast.RegionID {
		case underserved.ID:
			underservedFc = f
		case short.ID:
			shortFc = f
		case balanced.ID:
			t.Fatal("balanced region must not be forecast")
		}
	}
	if underservedFc == nil || underservedFc.Forecast.Status != types.ForecastStatusOK {
		t.Fatalf("underserved forecast = %+v", underservedFc)
	}
	if underservedFc.Forecast.Slope <= 0 {
		t.Fatalf("slope = %v, want positive", underservedFc.Forecast.Slope)
	}
	if len(underservedFc.Points) != 6 {
		t.Fatalf("forecast points = %d, want 6", len(underservedFc.Points))
	}
	if shortFc == nil || shortFc.Forecast.Status != types.ForecastStatusInsufficientHistory {
		t.Fatalf("short-history forecast = %+v", shortFc)
	}
	if len(shortFc.Points) != 0 {
		t.Fatalf("short-history forecast has %d points, want 0", len(shortFc.Points))
	}

	recs, err := svc.ListRecommendations(dbc, run.ID)
	if err != nil {
		t.Fatalf("ListRecommendations: %v", err)
	}
	var rec *types.ExpansionRecommendation
	for _, r := range recs {
		if r.RegionID == underserved.ID {
			rec = r
		}
		if r.RegionID == short.ID {
			t.Fatal("insufficient-history region must not get a recommendation")
		}
	}
	if rec == nil {
		t.Fatal("no recommendation for underserved region")
	}
	if rec.ProjectedGap <= 0 || rec.BranchesNeeded < 1 {
		t.Fatalf("recommendation = %+v", rec)
	}
	switch rec.PriorityLevel {
	case types.PriorityHigh, types.PriorityMedium, types.PriorityLow:
	default:
		t.Fatalf("priority = %q", rec.PriorityLevel)
	}
}

func TestAnalysisService_ExecuteIsRerunnable(t *testing.T) {
	svc, dbc := newAnalysisForTest(t)
	ctx := dbc.Ctx
	tx := dbc.Tx

	region := testutil.SeedRegion(t, ctx, tx, testutil.UniqueCode("RGR"), 150000)
	testutil.SeedBranch(t, ctx, tx, region.ID, testutil.UniqueCode("BR"), 40000)
	start := time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)
	history := make([]float64, 18)
	for i := range history {
		history[i] = 120000 + 1000*float64(i)
	}
	testutil.SeedObservations(t, ctx, tx, region.ID, start, history)

	run, _, err := svc.EnqueueRun(dbc, RunParams{})
	if err != nil {
		t.Fatalf("EnqueueRun: %v", err)
	}
	if _, _, err := svc.Execute(dbc, run.ID, nil); err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if _, _, err := svc.Execute(dbc, run.ID, nil); err != nil {
		t.Fatalf("second Execute: %v", err)
	}

	// Artifacts from the first attempt are replaced, not duplicated.
	forecasts, err := svc.ListForecasts(dbc, run.ID, "")
	if err != nil {
		t.Fatalf("ListForecasts: %v", err)
	}
	seen := 0
	for _, f := range forecasts {
		if f.Forecast.RegionID == region.ID {
			seen++
		}
	}
	if seen != 1 {
		t.Fatalf("forecasts for region = %d, want 1", seen)
	}
}

func TestAnalysisService_ExecuteUnknownRun(t *testing.T) {
	svc, dbc := newAnalysisForTest(t)
	if _, _, err := svc.Execute(dbc, uuid.New(), nil); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
