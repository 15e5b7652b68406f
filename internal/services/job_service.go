package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/branchpulse-backend/internal/data/repos"
	types "github.com/yungbote/branchpulse-backend/internal/domain"
	"github.com/yungbote/branchpulse-backend/internal/platform/ctxutil"
	"github.com/yungbote/branchpulse-backend/internal/platform/dbctx"
	"github.com/yungbote/branchpulse-backend/internal/platform/errs"
	"github.com/yungbote/branchpulse-backend/internal/platform/logger"
)

type JobService interface {
	Enqueue(dbc dbctx.Context, jobType string, entityType string, entityID *uuid.UUID, payload map[string]any) (*types.JobRun, error)
	EnqueueIfNeeded(dbc dbctx.Context, jobType string, entityType string, entityID *uuid.UUID, payload map[string]any) (*types.JobRun, bool, error)
	GetByID(dbc dbctx.Context, jobID uuid.UUID) (*types.JobRun, error)
	List(dbc dbctx.Context, limit int) ([]*types.JobRun, error)
	ListEvents(dbc dbctx.Context, jobID uuid.UUID) ([]*types.JobRunEvent, error)
	Cancel(dbc dbctx.Context, jobID uuid.UUID) (*types.JobRun, error)
}

type jobService struct {
	db     *gorm.DB
	log    *logger.Logger
	repo   repos.JobRunRepo
	events repos.JobRunEventRepo
}

func NewJobService(db *gorm.DB, baseLog *logger.Logger, repo repos.JobRunRepo, events repos.JobRunEventRepo) JobService {
	return &jobService{
		db:     db,
		log:    baseLog.With("service", "JobService"),
		repo:   repo,
		events: events,
	}
}

// Enqueue inserts a queued job_run row. The worker loop claims queued rows on
// its next tick; there is no dispatch step. Trace identifiers from the
// enqueueing request are copied into the payload so job logs correlate.
func (s *jobService) Enqueue(dbc dbctx.Context, jobType string, entityType string, entityID *uuid.UUID, payload map[string]any) (*types.JobRun, error) {
	if strings.TrimSpace(jobType) == "" {
		return nil, fmt.Errorf("missing job_type: %w", errs.ErrInvalidArgument)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	if td := ctxutil.GetTraceData(dbc.Ctx); td != nil {
		if td.TraceID != "" {
			if _, ok := payload["trace_id"]; !ok {
				payload["trace_id"] = td.TraceID
			}
		}
		if td.RequestID != "" {
			if _, ok := payload["request_id"]; !ok {
				payload["request_id"] = td.RequestID
			}
		}
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}

	b, _ := json.Marshal(payload)
	now := time.Now()
	job := &types.JobRun{
		ID:         uuid.New(),
		JobType:    jobType,
		EntityType: entityType,
		EntityID:   entityID,
		Status:     "queued",
		Stage:      "queued",
		Progress:   0,
		Attempts:   0,
		Message:    "Queued",
		Payload:    datatypes.JSON(b),
		Result:     datatypes.JSON([]byte(`{}`)),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	repoCtx := dbctx.Context{Ctx: dbc.Ctx, Tx: transaction}
	if _, err := s.repo.Create(repoCtx, []*types.JobRun{job}); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	if err := s.events.Append(repoCtx, []*types.JobRunEvent{{
		ID:       uuid.New(),
		JobID:    job.ID,
		Kind:     types.JobEventCreated,
		Stage:    job.Stage,
		Progress: job.Progress,
		Message:  job.Message,
	}}); err != nil {
		return nil, fmt.Errorf("append job event: %w", err)
	}
	return job, nil
}

// EnqueueIfNeeded enqueues unless a runnable (queued or running) job of the
// same type already targets the same entity. Returns created=false when the
// existing job makes a new one redundant.
func (s *jobService) EnqueueIfNeeded(dbc dbctx.Context, jobType string, entityType string, entityID *uuid.UUID, payload map[string]any) (*types.JobRun, bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}
	repoCtx := dbctx.Context{Ctx: dbc.Ctx, Tx: transaction}

	exists, err := s.repo.ExistsRunnable(repoCtx, jobType, entityType, entityID)
	if err != nil {
		return nil, false, err
	}
	if exists {
		return nil, false, nil
	}
	job, err := s.Enqueue(repoCtx, jobType, entityType, entityID, payload)
	if err != nil {
		return nil, false, err
	}
	return job, true, nil
}

func (s *jobService) GetByID(dbc dbctx.Context, jobID uuid.UUID) (*types.JobRun, error) {
	if jobID == uuid.Nil {
		return nil, fmt.Errorf("missing job id: %w", errs.ErrInvalidArgument)
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}
	job, err := s.repo.GetByID(dbctx.Context{Ctx: dbc.Ctx, Tx: transaction}, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("job %s: %w", jobID, errs.ErrNotFound)
	}
	return job, nil
}

func (s *jobService) List(dbc dbctx.Context, limit int) ([]*types.JobRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}
	return s.repo.List(dbctx.Context{Ctx: dbc.Ctx, Tx: transaction}, limit)
}

// ListEvents returns a job's timeline oldest-first.
func (s *jobService) ListEvents(dbc dbctx.Context, jobID uuid.UUID) ([]*types.JobRunEvent, error) {
	if jobID == uuid.Nil {
		return nil, fmt.Errorf("missing job id: %w", errs.ErrInvalidArgument)
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}
	repoCtx := dbctx.Context{Ctx: dbc.Ctx, Tx: transaction}
	job, err := s.repo.GetByID(repoCtx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("job %s: %w", jobID, errs.ErrNotFound)
	}
	return s.events.ListByJob(repoCtx, jobID)
}

// Cancel marks a non-terminal job canceled. A worker mid-flight observes the
// status through the guarded runtime updates and stops persisting progress;
// terminal jobs are returned unchanged.
func (s *jobService) Cancel(dbc dbctx.Context, jobID uuid.UUID) (*types.JobRun, error) {
	if jobID == uuid.Nil {
		return nil, fmt.Errorf("missing job id: %w", errs.ErrInvalidArgument)
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}

	var updated *types.JobRun
	err := transaction.WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: txx}
		job, err := s.repo.GetByID(inner, jobID)
		if err != nil {
			return err
		}
		if job == nil {
			return fmt.Errorf("job %s: %w", jobID, errs.ErrNotFound)
		}

		status := strings.ToLower(strings.TrimSpace(job.Status))
		if status == "succeeded" || status == "failed" || status == "canceled" {
			updated = job
			return nil
		}

		now := time.Now().UTC()
		if err := s.repo.UpdateFields(inner, jobID, map[string]interface{}{
			"status":       "canceled",
			"message":      "Canceled",
			"locked_at":    nil,
			"heartbeat_at": now,
			"updated_at":   now,
		}); err != nil {
			return err
		}

		if err := s.events.Append(inner, []*types.JobRunEvent{{
			ID:       uuid.New(),
			JobID:    jobID,
			Kind:     types.JobEventCanceled,
			Stage:    job.Stage,
			Progress: job.Progress,
			Message:  "Canceled",
		}}); err != nil {
			return err
		}

		job.Status = "canceled"
		job.Message = "Canceled"
		job.LockedAt = nil
		job.HeartbeatAt = &now
		job.UpdatedAt = now
		updated = job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
