package runtime

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/branchpulse-backend/internal/data/repos"
	"github.com/yungbote/branchpulse-backend/internal/data/repos/testutil"
	types "github.com/yungbote/branchpulse-backend/internal/domain"
	"github.com/yungbote/branchpulse-backend/internal/platform/dbctx"
)

// Runtime updates bypass transactions (a worker owns no outer Tx), so this
// test writes committed rows and cleans them up itself.
func seedRunningJob(t *testing.T) (*types.JobRun, repos.JobRunRepo, repos.JobRunEventRepo) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	repo := repos.NewJobRunRepo(db, log)
	events := repos.NewJobRunEventRepo(db, log)

	job := &types.JobRun{
		ID:      uuid.New(),
		JobType: "coverage_forecast",
		Status:  "running",
		Stage:   "claimed",
		Payload: datatypes.JSON([]byte(`{}`)),
		Result:  datatypes.JSON([]byte(`{}`)),
	}
	if _, err := repo.Create(dbctx.New(context.Background()), []*types.JobRun{job}); err != nil {
		t.Fatalf("create job: %v", err)
	}
	t.Cleanup(func() {
		db.Exec(`DELETE FROM job_run_event WHERE job_id = ?`, job.ID)
		db.Exec(`DELETE FROM job_run WHERE id = ?`, job.ID)
	})
	return job, repo, events
}

func TestContext_EventTimeline(t *testing.T) {
	job, repo, events := seedRunningJob(t)
	db := testutil.DB(t)

	jc := NewContext(context.Background(), db, job, repo, events)
	jc.Progress("forecast", 40, "Projecting regions")
	jc.Succeed("finalize", map[string]any{"regions": 3})

	got, err := events.ListByJob(dbctx.New(context.Background()), job.ID)
	if err != nil {
		t.Fatalf("ListByJob: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].Kind != types.JobEventProgress || got[0].Stage != "forecast" || got[0].Progress != 40 {
		t.Fatalf("progress event = %+v", got[0])
	}
	if got[1].Kind != types.JobEventSucceeded || got[1].Stage != "finalize" || got[1].Progress != 100 {
		t.Fatalf("succeeded event = %+v", got[1])
	}
}

func TestContext_CanceledJobStopsTimeline(t *testing.T) {
	job, repo, events := seedRunningJob(t)
	db := testutil.DB(t)

	if err := repo.UpdateFields(dbctx.New(context.Background()), job.ID, map[string]interface{}{
		"status": "canceled",
	}); err != nil {
		t.Fatalf("cancel job: %v", err)
	}

	jc := NewContext(context.Background(), db, job, repo, events)
	jc.Progress("forecast", 40, "Projecting regions")

	got, err := events.ListByJob(dbctx.New(context.Background()), job.ID)
	if err != nil {
		t.Fatalf("ListByJob: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("canceled job gained %d events, want 0", len(got))
	}
}
