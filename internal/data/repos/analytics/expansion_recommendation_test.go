package analytics

import (
	"context"
	"testing"

	"github.com/yungbote/branchpulse-backend/internal/data/repos/testutil"
	types "github.com/yungbote/branchpulse-backend/internal/domain"
	"github.com/yungbote/branchpulse-backend/internal/platform/dbctx"
)

func TestExpansionRecommendationRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewExpansionRecommendationRepo(db, testutil.Logger(t))

	run := testutil.SeedAnalysisRun(t, ctx, tx, types.RunStatusRunning)
	region1 := testutil.SeedRegion(t, ctx, tx, testutil.UniqueCode("RG"), 220000)
	region2 := testutil.SeedRegion(t, ctx, tx, testutil.UniqueCode("RG"), 110000)

	rows := []*types.ExpansionRecommendation{
		{AnalysisRunID: run.ID, RegionID: region2.ID, CoverageStatus: types.CoverageStatusUnderserved, DemandScore: 2.1, ProjectedGap: 46000, BranchesNeeded: 5, StaffNeeded: 77, PriorityLevel: types.PriorityMedium, PriorityRank: 2, RecommendedAction: "Open 3-4 new branches immediately"},
		{AnalysisRunID: run.ID, RegionID: region1.ID, CoverageStatus: types.CoverageStatusNoCoverage, DemandScore: 3.2, ProjectedGap: 185000, BranchesNeeded: 19, StaffNeeded: 308, PriorityLevel: types.PriorityHigh, PriorityRank: 1, RecommendedAction: "Open 3-4 new branches immediately"},
	}
	if _, err := repo.CreateMany(dbc, rows); err != nil {
		t.Fatalf("CreateMany: %v", err)
	}

	got, err := repo.ListByRunID(dbc, run.ID)
	if err != nil || len(got) != 2 {
		t.Fatalf("ListByRunID: err=%v len=%d", err, len(got))
	}
	if got[0].PriorityRank != 1 || got[1].PriorityRank != 2 {
		t.Fatalf("ListByRunID rank order: %d then %d", got[0].PriorityRank, got[1].PriorityRank)
	}

	if rows, err := repo.ListByRunIDAndPriority(dbc, run.ID, types.PriorityHigh); err != nil || len(rows) != 1 || rows[0].RegionID != region1.ID {
		t.Fatalf("ListByRunIDAndPriority: err=%v len=%d", err, len(rows))
	}

	if err := repo.FullDeleteByRunID(dbc, run.ID); err != nil {
		t.Fatalf("FullDeleteByRunID: %v", err)
	}
	if got, err := repo.ListByRunID(dbc, run.ID); err != nil || len(got) != 0 {
		t.Fatalf("after FullDeleteByRunID ListByRunID: err=%v len=%d", err, len(got))
	}
}
