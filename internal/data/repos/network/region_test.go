package network

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/yungbote/branchpulse-backend/internal/data/repos/testutil"
	types "github.com/yungbote/branchpulse-backend/internal/domain"
	"github.com/yungbote/branchpulse-backend/internal/platform/dbctx"
)

func TestRegionRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewRegionRepo(db, testutil.Logger(t))

	c1 := testutil.UniqueCode("RG1")
	c2 := testutil.UniqueCode("RG2")
	c3 := testutil.UniqueCode("RG3")

	r1 := &types.Region{ID: uuid.New(), Code: c1, Name: "Toronto Central", Province: "ON", Population: 450000, SmallBusinessDensity: 1800, AvgMonthlyTransactions: 210000, DemandScore: 2.9}
	r2 := &types.Region{ID: uuid.New(), Code: c2, Name: "Hamilton", Province: "ON", Population: 180000, SmallBusinessDensity: 600, AvgMonthlyTransactions: 95000, DemandScore: 1.6}
	r3 := &types.Region{ID: uuid.New(), Code: c3, Name: "Burnaby", Province: "BC", Population: 240000, SmallBusinessDensity: 900, AvgMonthlyTransactions: 130000, DemandScore: 2.1}
	if _, err := repo.Create(dbc, []*types.Region{r1, r2, r3}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if got, err := repo.GetByID(dbc, r1.ID); err != nil || got == nil || got.ID != r1.ID {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if got, err := repo.GetByID(dbc, uuid.New()); err != nil || got != nil {
		t.Fatalf("GetByID missing: got=%v err=%v", got, err)
	}
	if rows, err := repo.GetByIDs(dbc, []uuid.UUID{r1.ID, r2.ID, r3.ID}); err != nil || len(rows) != 3 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}
	if got, err := repo.GetByCode(dbc, c2); err != nil || got == nil || got.ID != r2.ID {
		t.Fatalf("GetByCode: got=%v err=%v", got, err)
	}
	if rows, err := repo.ListByProvince(dbc, "ON"); err != nil || len(rows) < 2 {
		t.Fatalf("ListByProvince: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.List(dbc); err != nil || len(rows) < 3 {
		t.Fatalf("List: err=%v len=%d", err, len(rows))
	}

	if err := repo.UpdateFields(dbc, r2.ID, map[string]interface{}{"demand_score": 2.4}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if got, err := repo.GetByID(dbc, r2.ID); err != nil || got == nil || got.DemandScore != 2.4 {
		t.Fatalf("after UpdateFields GetByID: got=%v err=%v", got, err)
	}

	if err := repo.SoftDeleteByIDs(dbc, []uuid.UUID{r3.ID}); err != nil {
		t.Fatalf("SoftDeleteByIDs: %v", err)
	}
	if got, err := repo.GetByID(dbc, r3.ID); err != nil || got != nil {
		t.Fatalf("after SoftDeleteByIDs GetByID: got=%v err=%v", got, err)
	}
}
