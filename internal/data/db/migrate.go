package db

import (
	"fmt"

	types "github.com/yungbote/branchpulse-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(

		// =========================
		// Branch network
		// =========================
		&types.Region{},
		&types.Branch{},

		// =========================
		// Transaction history
		// =========================
		&types.MonthlyObservation{},

		// =========================
		// Analysis outputs
		// =========================
		&types.AnalysisRun{},
		&types.CoverageSnapshot{},
		&types.RegionForecast{},
		&types.ForecastPoint{},
		&types.ExpansionRecommendation{},

		// =========================
		// Jobs / worker
		// =========================
		&types.JobRun{},
		&types.JobRunEvent{},
	)
}

func EnsureSeriesIndexes(db *gorm.DB) error {
	// uuid-ossp is already enabled in NewPostgresService, but safe to re-run
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return fmt.Errorf("enable uuid-ossp: %w", err)
	}
	// Latest-month lookups scan newest observations first.
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_monthly_observation_month ON monthly_observation(month DESC);`).Error; err != nil {
		return fmt.Errorf("create idx_monthly_observation_month: %w", err)
	}
	return nil
}

func EnsureAnalyticsIndexes(db *gorm.DB) error {
	// Coverage reads filter one run by status.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_coverage_snapshot_run_status
		ON coverage_snapshot (analysis_run_id, coverage_status);
	`).Error; err != nil {
		return fmt.Errorf("create idx_coverage_snapshot_run_status: %w", err)
	}

	// Recommendation listings page through a run in rank order.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_expansion_recommendation_run_rank
		ON expansion_recommendation (analysis_run_id, priority_rank);
	`).Error; err != nil {
		return fmt.Errorf("create idx_expansion_recommendation_run_rank: %w", err)
	}

	return nil
}

func EnsureJobIndexes(db *gorm.DB) error {
	// Claim scans only live rows in FIFO order.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_job_run_claim
		ON job_run (status, created_at)
		WHERE deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_job_run_claim: %w", err)
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_job_run_entity
		ON job_run (entity_type, entity_id, job_type, created_at DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_job_run_entity: %w", err)
	}

	// Timeline reads page one job's events in order.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_job_run_event_timeline
		ON job_run_event (job_id, created_at);
	`).Error; err != nil {
		return fmt.Errorf("create idx_job_run_event_timeline: %w", err)
	}

	return nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureSeriesIndexes(s.db); err != nil {
		s.log.Error("Series index migration failed", "error", err)
		return err
	}
	if err := EnsureAnalyticsIndexes(s.db); err != nil {
		s.log.Error("Analytics index migration failed", "error", err)
		return err
	}
	if err := EnsureJobIndexes(s.db); err != nil {
		s.log.Error("Job index migration failed", "error", err)
		return err
	}

	return nil
}
