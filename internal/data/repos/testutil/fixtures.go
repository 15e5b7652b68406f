package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	types "github.com/yungbote/branchpulse-backend/internal/domain"
	"gorm.io/gorm"
)

func SeedRegion(tb testing.TB, ctx context.Context, tx *gorm.DB, code string, avgTx float64) *types.Region {
	tb.Helper()
	r := &types.Region{
		ID:                     uuid.New(),
		Code:                   code,
		Name:                   "Region " + code,
		Province:               "ON",
		Population:             250000,
		SmallBusinessDensity:   800,
		AvgMonthlyTransactions: avgTx,
		DemandScore:            2.2,
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed region: %v", err)
	}
	return r
}

func SeedBranch(tb testing.TB, ctx context.Context, tx *gorm.DB, regionID uuid.UUID, code string, monthlyTx float64) *types.Branch {
	tb.Helper()
	b := &types.Branch{
		ID:                  uuid.New(),
		Code:                code,
		Name:                "Branch " + code,
		RegionID:            regionID,
		BranchType:          types.BranchTypeFullService,
		StaffCount:          12,
		MonthlyTransactions: monthlyTx,
		OpenedYear:          2010,
	}
	if err := tx.WithContext(ctx).Create(b).Error; err != nil {
		tb.Fatalf("seed branch: %v", err)
	}
	return b
}

// SeedObservations writes n consecutive monthly observations for a region
// starting at start, with the given transaction values cycled if n exceeds
// len(values).
func SeedObservations(tb testing.TB, ctx context.Context, tx *gorm.DB, regionID uuid.UUID, start time.Time, values []float64) []*types.MonthlyObservation {
	tb.Helper()
	out := make([]*types.MonthlyObservation, 0, len(values))
	for i, v := range values {
		o := &types.MonthlyObservation{
			ID:           uuid.New(),
			RegionID:     regionID,
			Month:        start.AddDate(0, i, 0),
			Transactions: v,
		}
		if err := tx.WithContext(ctx).Create(o).Error; err != nil {
			tb.Fatalf("seed observation %d: %v", i, err)
		}
		out = append(out, o)
	}
	return out
}

func SeedAnalysisRun(tb testing.TB, ctx context.Context, tx *gorm.DB, status string) *types.AnalysisRun {
	tb.Helper()
	run := &types.AnalysisRun{
		ID:     uuid.New(),
		Status: status,
	}
	if err := tx.WithContext(ctx).Create(run).Error; err != nil {
		tb.Fatalf("seed analysis run: %v", err)
	}
	return run
}

func SeedJobRun(tb testing.TB, ctx context.Context, tx *gorm.DB, jobType string, status string) *types.JobRun {
	tb.Helper()
	j := &types.JobRun{
		ID:         uuid.New(),
		JobType:    jobType,
		EntityType: "analysis_run",
		Status:     status,
	}
	if err := tx.WithContext(ctx).Create(j).Error; err != nil {
		tb.Fatalf("seed job run: %v", err)
	}
	return j
}

// MonthlyValues builds a linear series of n values starting at base with the
// given step, handy for seeding predictable history.
func MonthlyValues(n int, base, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = base + step*float64(i)
	}
	return out
}

// UniqueCode suffixes a prefix with a short random fragment so parallel test
// runs against a shared database do not collide on unique indexes.
func UniqueCode(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString()[:8])
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
