package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/branchpulse-backend/internal/data/repos"
	"github.com/yungbote/branchpulse-backend/internal/data/repos/testutil"
	"github.com/yungbote/branchpulse-backend/internal/platform/dbctx"
	"github.com/yungbote/branchpulse-backend/internal/platform/errs"
)

func TestNormalizeMonth(t *testing.T) {
	in := time.Date(2024, time.March, 15, 13, 45, 0, 0, time.FixedZone("EST", -5*3600))
	got := NormalizeMonth(in)
	want := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("NormalizeMonth = %v, want %v", got, want)
	}
	if got.Location() != time.UTC {
		t.Fatalf("NormalizeMonth location = %v, want UTC", got.Location())
	}
}

func TestUpsertBatch_EmptyBatch(t *testing.T) {
	svc := NewSeriesService(nil, testutil.Logger(t), nil, nil)
	_, err := svc.UpsertBatch(dbctx.New(context.Background()), "RG001", nil)
	if !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestSeriesService_Postgres(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	log := testutil.Logger(t)
	svc := NewSeriesService(db, log, repos.NewRegionRepo(db, log), repos.NewMonthlyObservationRepo(db, log))

	region := testutil.SeedRegion(t, ctx, tx, testutil.UniqueCode("RGS"), 120000)

	t.Run("unknown region", func(t *testing.T) {
		_, err := svc.UpsertBatch(dbc, "RG-MISSING", []ObservationInput{
			{Month: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Transactions: 100},
		})
		if !errors.Is(err, errs.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("negative transactions", func(t *testing.T) {
		_, err := svc.UpsertBatch(dbc, region.Code, []ObservationInput{
			{Month: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Transactions: -5},
		})
		if !errors.Is(err, errs.ErrInvalidArgument) {
			t.Fatalf("err = %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("duplicate months after normalization", func(t *testing.T) {
		_, err := svc.UpsertBatch(dbc, region.Code, []ObservationInput{
			{Month: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Transactions: 100},
			{Month: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), Transactions: 200},
		})
		if !errors.Is(err, errs.ErrInvalidArgument) {
			t.Fatalf("err = %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("upsert and re-upsert", func(t *testing.T) {
		rows, err := svc.UpsertBatch(dbc, region.Code, []ObservationInput{
			{Month: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), Transactions: 1000},
			{Month: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Transactions: 1100},
		})
		if err != nil {
			t.Fatalf("UpsertBatch: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("rows = %d, want 2", len(rows))
		}
		if rows[0].Month.Day() != 1 {
			t.Fatalf("month not normalized: %v", rows[0].Month)
		}

		// Re-submitting January replaces its value instead of duplicating.
		if _, err := svc.UpsertBatch(dbc, region.Code, []ObservationInput{
			{Month: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Transactions: 1500},
		}); err != nil {
			t.Fatalf("re-upsert: %v", err)
		}
		all, err := svc.ListByRegionCode(dbc, region.Code)
		if err != nil {
			t.Fatalf("ListByRegionCode: %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("observations = %d, want 2", len(all))
		}
		for _, o := range all {
			if o.Month.Month() == time.January && o.Transactions != 1500 {
				t.Fatalf("january transactions = %v, want 1500", o.Transactions)
			}
		}
	})
}
