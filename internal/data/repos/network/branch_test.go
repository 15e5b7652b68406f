package network

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/yungbote/branchpulse-backend/internal/data/repos/testutil"
	types "github.com/yungbote/branchpulse-backend/internal/domain"
	"github.com/yungbote/branchpulse-backend/internal/platform/dbctx"
)

func TestBranchRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewBranchRepo(db, testutil.Logger(t))

	region1 := testutil.SeedRegion(t, ctx, tx, testutil.UniqueCode("RG"), 180000)
	region2 := testutil.SeedRegion(t, ctx, tx, testutil.UniqueCode("RG"), 60000)

	c1 := testutil.UniqueCode("BR1")
	c2 := testutil.UniqueCode("BR2")
	c3 := testutil.UniqueCode("BR3")

	b1 := &types.Branch{ID: uuid.New(), Code: c1, Name: "Main St", RegionID: region1.ID, BranchType: types.BranchTypeFullService, StaffCount: 14, MonthlyTransactions: 9000, OpenedYear: 2004}
	b2 := &types.Branch{ID: uuid.New(), Code: c2, Name: "King St", RegionID: region1.ID, BranchType: types.BranchTypeExpress, StaffCount: 8, MonthlyTransactions: 6400, OpenedYear: 2016}
	b3 := &types.Branch{ID: uuid.New(), Code: c3, Name: "Harbour", RegionID: region2.ID, BranchType: types.BranchTypeFlagship, StaffCount: 22, MonthlyTransactions: 14100, OpenedYear: 1998}
	if _, err := repo.Create(dbc, []*types.Branch{b1, b2, b3}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if got, err := repo.GetByID(dbc, b1.ID); err != nil || got == nil || got.ID != b1.ID {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if got, err := repo.GetByCode(dbc, c3); err != nil || got == nil || got.ID != b3.ID {
		t.Fatalf("GetByCode: got=%v err=%v", got, err)
	}
	if rows, err := repo.ListByRegionID(dbc, region1.ID); err != nil || len(rows) != 2 {
		t.Fatalf("ListByRegionID: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.ListByRegionIDs(dbc, []uuid.UUID{region1.ID, region2.ID}); err != nil || len(rows) != 3 {
		t.Fatalf("ListByRegionIDs: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.List(dbc); err != nil || len(rows) < 3 {
		t.Fatalf("List: err=%v len=%d", err, len(rows))
	}

	if err := repo.UpdateFields(dbc, b2.ID, map[string]interface{}{"staff_count": 11}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if got, err := repo.GetByID(dbc, b2.ID); err != nil || got == nil || got.StaffCount != 11 {
		t.Fatalf("after UpdateFields GetByID: got=%v err=%v", got, err)
	}

	if err := repo.SoftDeleteByIDs(dbc, []uuid.UUID{b1.ID, b2.ID}); err != nil {
		t.Fatalf("SoftDeleteByIDs: %v", err)
	}
	if rows, err := repo.ListByRegionID(dbc, region1.ID); err != nil || len(rows) != 0 {
		t.Fatalf("after SoftDeleteByIDs ListByRegionID: err=%v len=%d", err, len(rows))
	}
}
