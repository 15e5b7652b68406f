package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/branchpulse-backend/internal/data/repos/testutil"
	types "github.com/yungbote/branchpulse-backend/internal/domain"
	"github.com/yungbote/branchpulse-backend/internal/platform/dbctx"
)

func TestJobRunRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewJobRunRepo(db, testutil.Logger(t))

	entity := uuid.New()
	j1 := &types.JobRun{ID: uuid.New(), JobType: "coverage_forecast", EntityType: "analysis_run", EntityID: testutil.PtrUUID(entity), Status: "queued"}
	if _, err := repo.Create(dbc, []*types.JobRun{j1}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if got, err := repo.GetByID(dbc, j1.ID); err != nil || got == nil || got.ID != j1.ID {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if rows, err := repo.GetByIDs(dbc, []uuid.UUID{j1.ID}); err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}
	if got, err := repo.GetLatestByEntity(dbc, "analysis_run", entity, "coverage_forecast"); err != nil || got == nil || got.ID != j1.ID {
		t.Fatalf("GetLatestByEntity: got=%v err=%v", got, err)
	}
	if ok, err := repo.ExistsRunnable(dbc, "coverage_forecast", "analysis_run", testutil.PtrUUID(entity)); err != nil || !ok {
		t.Fatalf("ExistsRunnable: ok=%v err=%v", ok, err)
	}

	claimed, err := repo.ClaimNextRunnable(dbc, 5, 30*time.Second, 2*time.Minute)
	if err != nil || claimed == nil || claimed.ID != j1.ID {
		t.Fatalf("ClaimNextRunnable: claimed=%v err=%v", claimed, err)
	}
	if got, err := repo.GetByID(dbc, j1.ID); err != nil || got == nil || got.Status != "running" || got.Attempts != 1 || got.HeartbeatAt == nil {
		t.Fatalf("after claim GetByID: got=%+v err=%v", got, err)
	}
	if again, err := repo.ClaimNextRunnable(dbc, 5, 30*time.Second, 2*time.Minute); err != nil || again != nil {
		t.Fatalf("ClaimNextRunnable drained: claimed=%v err=%v", again, err)
	}

	if err := repo.Heartbeat(dbc, j1.ID); err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}

	if ok, err := repo.UpdateFieldsUnlessStatus(dbc, j1.ID, []string{"canceled"}, map[string]interface{}{"status": "succeeded", "progress": 100}); err != nil || !ok {
		t.Fatalf("UpdateFieldsUnlessStatus: ok=%v err=%v", ok, err)
	}
	if ok, err := repo.UpdateFieldsUnlessStatus(dbc, j1.ID, []string{"succeeded"}, map[string]interface{}{"status": "running"}); err != nil || ok {
		t.Fatalf("UpdateFieldsUnlessStatus disallowed: ok=%v err=%v", ok, err)
	}

	// Failed jobs become runnable again once the retry delay has passed.
	old := time.Now().Add(-10 * time.Minute)
	j2 := &types.JobRun{ID: uuid.New(), JobType: "coverage_forecast", EntityType: "analysis_run", Status: "failed", Attempts: 1, LastErrorAt: testutil.PtrTime(old)}
	if _, err := repo.Create(dbc, []*types.JobRun{j2}); err != nil {
		t.Fatalf("seed j2: %v", err)
	}
	if claimed, err := repo.ClaimNextRunnable(dbc, 5, 30*time.Second, 2*time.Minute); err != nil || claimed == nil || claimed.ID != j2.ID {
		t.Fatalf("ClaimNextRunnable retry: claimed=%v err=%v", claimed, err)
	}

	// Running jobs with a stale heartbeat are reclaimed.
	j3 := &types.JobRun{ID: uuid.New(), JobType: "coverage_forecast", EntityType: "analysis_run", Status: "running", Attempts: 1, HeartbeatAt: testutil.PtrTime(old)}
	if _, err := repo.Create(dbc, []*types.JobRun{j3}); err != nil {
		t.Fatalf("seed j3: %v", err)
	}
	if claimed, err := repo.ClaimNextRunnable(dbc, 5, 30*time.Second, 2*time.Minute); err != nil || claimed == nil || claimed.ID != j3.ID {
		t.Fatalf("ClaimNextRunnable stale: claimed=%v err=%v", claimed, err)
	}

	counts, err := repo.CountByStatus(dbc)
	if err != nil || counts["succeeded"] != 1 || counts["running"] != 2 {
		t.Fatalf("CountByStatus: counts=%v err=%v", counts, err)
	}
	if rows, err := repo.List(dbc, 10); err != nil || len(rows) != 3 {
		t.Fatalf("List: err=%v len=%d", err, len(rows))
	}
}
