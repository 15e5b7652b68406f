package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yungbote/branchpulse-backend/internal/app"
	"github.com/yungbote/branchpulse-backend/internal/engine/forecast"
	"github.com/yungbote/branchpulse-backend/internal/platform/dbctx"
	"github.com/yungbote/branchpulse-backend/internal/platform/shutdown"
	"github.com/yungbote/branchpulse-backend/internal/seed"
	"github.com/yungbote/branchpulse-backend/internal/services"
)

func main() {
	cliApp := &cli.App{
		Name:  "branchctl",
		Usage: "operational commands for the branch coverage backend",
		Commands: []*cli.Command{
			seedCommand(),
			analyzeCommand(),
			exportCommand(),
			tokenCommand(),
		},
	}
	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// newApp builds the full application but never starts the HTTP server or the
// job worker; commands run against the wired services directly.
func newApp() (*app.App, context.Context, func(), error) {
	a, err := app.New()
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, stop := shutdown.NotifyContext(context.Background())
	cleanup := func() {
		stop()
		a.Close()
	}
	return a, ctx, cleanup, nil
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "populate the database with a deterministic synthetic network",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "seed", Value: seed.DefaultSeed, Usage: "rng seed"},
			&cli.IntFlag{Name: "regions", Value: seed.DefaultRegions, Usage: "number of regions"},
			&cli.IntFlag{Name: "branches", Value: seed.DefaultBranches, Usage: "number of branches"},
			&cli.IntFlag{Name: "months", Value: seed.DefaultMonths, Usage: "months of observation history"},
			&cli.BoolFlag{Name: "reset", Usage: "wipe existing network and series rows first"},
		},
		Action: func(c *cli.Context) error {
			a, ctx, cleanup, err := newApp()
			if err != nil {
				return err
			}
			defer cleanup()

			seeder := seed.NewSeeder(a.DB, a.Log, a.Repos.Region, a.Repos.Branch, a.Repos.MonthlyObservation)
			ds, err := seeder.Seed(dbctx.New(ctx), seed.Config{
				Seed:     c.Int64("seed"),
				Regions:  c.Int("regions"),
				Branches: c.Int("branches"),
				Months:   c.Int("months"),
				Reset:    c.Bool("reset"),
			})
			if err != nil {
				return err
			}
			fmt.Printf("seeded %d regions, %d branches, %d observations\n",
				len(ds.Regions), len(ds.Branches), len(ds.Observations))
			return nil
		},
	}
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "run the coverage & forecast pipeline synchronously",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "months-ahead", Value: forecast.DefaultMonthsAhead, Usage: "forecast horizon in months (1..24)"},
			&cli.IntFlag{Name: "top-k", Value: 0, Usage: "cap flagged regions by demand score (0 = unlimited)"},
		},
		Action: func(c *cli.Context) error {
			a, ctx, cleanup, err := newApp()
			if err != nil {
				return err
			}
			defer cleanup()
			dbc := dbctx.New(ctx)

			run, _, err := a.Services.Analysis.EnqueueRun(dbc, services.RunParams{
				MonthsAhead: c.Int("months-ahead"),
				TopK:        c.Int("top-k"),
			})
			if err != nil {
				return err
			}

			progress := func(stage string, pct int, msg string) {
				fmt.Printf("[%3d%%] %-10s %s\n", pct, stage, msg)
			}
			run, stats, err := a.Services.Analysis.Execute(dbc, run.ID, progress)
			if err != nil {
				return err
			}
			fmt.Printf("run %s %s: %d regions, %d flagged, %d forecast, %d skipped, %d recommendations\n",
				run.ID, run.Status, stats.RegionsTotal, stats.RegionsFlagged,
				stats.RegionsForecasted, stats.RegionsSkipped, stats.Recommendations)
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write all CSV reports to a directory",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: "exports", Usage: "output directory"},
		},
		Action: func(c *cli.Context) error {
			a, ctx, cleanup, err := newApp()
			if err != nil {
				return err
			}
			defer cleanup()
			dbc := dbctx.New(ctx)

			dir := c.String("dir")
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create export dir: %w", err)
			}

			exports := []struct {
				name   string
				render func(dbctx.Context, *os.File) error
			}{
				{"regional_summary.csv", func(dbc dbctx.Context, f *os.File) error { return a.Services.Export.RegionalSummaryCSV(dbc, f) }},
				{"recommendations.csv", func(dbc dbctx.Context, f *os.File) error { return a.Services.Export.RecommendationsCSV(dbc, f) }},
				{"forecasts.csv", func(dbc dbctx.Context, f *os.File) error { return a.Services.Export.ForecastsCSV(dbc, f) }},
				{"branches.csv", func(dbc dbctx.Context, f *os.File) error { return a.Services.Export.BranchesCSV(dbc, f) }},
				{"kpis.csv", func(dbc dbctx.Context, f *os.File) error { return a.Services.Export.KPIsCSV(dbc, f) }},
				{"provinces.csv", func(dbc dbctx.Context, f *os.File) error { return a.Services.Export.ProvincesCSV(dbc, f) }},
			}
			for _, e := range exports {
				path := filepath.Join(dir, e.name)
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("create %s: %w", path, err)
				}
				if err := e.render(dbc, f); err != nil {
					f.Close()
					return fmt.Errorf("export %s: %w", e.name, err)
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Printf("wrote %s\n", path)
			}
			return nil
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "issue a service token for the mutating API routes",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "subject", Value: "branchctl", Usage: "token subject"},
			&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour, Usage: "token lifetime"},
		},
		Action: func(c *cli.Context) error {
			a, _, cleanup, err := newApp()
			if err != nil {
				return err
			}
			defer cleanup()

			token, err := a.Services.Auth.IssueToken(c.String("subject"), c.Duration("ttl"))
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
}
