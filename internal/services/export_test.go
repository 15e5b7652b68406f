package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/yungbote/branchpulse-backend/internal/data/repos"
	"github.com/yungbote/branchpulse-backend/internal/data/repos/testutil"
	"github.com/yungbote/branchpulse-backend/internal/engine/coverage"
	"github.com/yungbote/branchpulse-backend/internal/platform/dbctx"
)

func TestCSVNumberFormats(t *testing.T) {
	if got := wholeTx(1234.56); got != "1235" {
		t.Fatalf("wholeTx = %q, want 1235", got)
	}
	if got := wholeTx(-500.4); got != "-500" {
		t.Fatalf("wholeTx negative = %q, want -500", got)
	}
	if got := ratio2(2.456); got != "2.46" {
		t.Fatalf("ratio2 = %q, want 2.46", got)
	}
	if got := ratio2(0); got != "0.00" {
		t.Fatalf("ratio2 zero = %q, want 0.00", got)
	}
}

func TestRecommendationText(t *testing.T) {
	if got := recommendationText(17, 275); got != "Open 17 new branches, hire 275 staff" {
		t.Fatalf("recommendationText(17, 275) = %q", got)
	}
	if got := recommendationText(0, 8); got != "Increase staffing by 8 staff" {
		t.Fatalf("recommendationText(0, 8) = %q", got)
	}
}

func TestExportService_RegionalSummaryCSV(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	log := testutil.Logger(t)
	regionRepo := repos.NewRegionRepo(db, log)
	branchRepo := repos.NewBranchRepo(db, log)
	coverageSvc := NewCoverageService(db, log, regionRepo, branchRepo, coverage.DefaultPolicy())
	svc := NewExportService(db, log, regionRepo, branchRepo, coverageSvc, nil, nil)

	region := testutil.SeedRegion(t, ctx, tx, testutil.UniqueCode("RGX"), 180000)
	testutil.SeedBranch(t, ctx, tx, region.ID, testutil.UniqueCode("BX"), 60000)

	var buf bytes.Buffer
	if err := svc.RegionalSummaryCSV(dbc, &buf); err != nil {
		t.Fatalf("RegionalSummaryCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) < 2 {
		t.Fatalf("rows = %d, want header + at least one region", len(records))
	}
	header := records[0]
	if header[0] != "region_code" || header[8] != "coverage_status" {
		t.Fatalf("unexpected header: %v", header)
	}

	var row []string
	for _, r := range records[1:] {
		if r[0] == region.Code {
			row = r
		}
	}
	if row == nil {
		t.Fatalf("region %s missing from export", region.Code)
	}
	if row[3] != "1" {
		t.Fatalf("branch_count = %q, want 1", row[3])
	}
	if row[4] != "60000" {
		t.Fatalf("total_branch_capacity = %q, want 60000", row[4])
	}
	// 180000 demand over 60000 capacity: underserved at ratio 3.00.
	if row[7] != "3.00" {
		t.Fatalf("demand_capacity_ratio = %q, want 3.00", row[7])
	}
	if row[8] != "Underserved" {
		t.Fatalf("coverage_status = %q, want Underserved", row[8])
	}
}

func TestExportService_BranchesCSV(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	log := testutil.Logger(t)
	regionRepo := repos.NewRegionRepo(db, log)
	branchRepo := repos.NewBranchRepo(db, log)
	obsRepo := repos.NewMonthlyObservationRepo(db, log)
	coverageSvc := NewCoverageService(db, log, regionRepo, branchRepo, coverage.DefaultPolicy())
	reportSvc := NewReportService(db, log, regionRepo, branchRepo, obsRepo, coverageSvc, nil, time.Minute)
	svc := NewExportService(db, log, regionRepo, branchRepo, coverageSvc, nil, reportSvc)

	region := testutil.SeedRegion(t, ctx, tx, testutil.UniqueCode("RGY"), 120000)
	// 12 staff moving 11400/month: 950 per staff, critical load.
	branch := testutil.SeedBranch(t, ctx, tx, region.ID, testutil.UniqueCode("BY"), 11400)

	var buf bytes.Buffer
	if err := svc.BranchesCSV(dbc, &buf); err != nil {
		t.Fatalf("BranchesCSV: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}

	var row []string
	for _, r := range records[1:] {
		if r[0] == branch.Code {
			row = r
		}
	}
	if row == nil {
		t.Fatalf("branch %s missing from export", branch.Code)
	}
	if row[6] != "950" {
		t.Fatalf("transactions_per_staff = %q, want 950", row[6])
	}
	if row[7] != BranchLoadCritical {
		t.Fatalf("load_level = %q, want %s", row[7], BranchLoadCritical)
	}
}
