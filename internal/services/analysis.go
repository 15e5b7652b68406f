package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/branchpulse-backend/internal/data/repos"
	types "github.com/yungbote/branchpulse-backend/internal/domain"
	"github.com/yungbote/branchpulse-backend/internal/engine/coverage"
	"github.com/yungbote/branchpulse-backend/internal/engine/forecast"
	"github.com/yungbote/branchpulse-backend/internal/engine/planning"
	"github.com/yungbote/branchpulse-backend/internal/observability"
	"github.com/yungbote/branchpulse-backend/internal/platform/dbctx"
	"github.com/yungbote/branchpulse-backend/internal/platform/errs"
	"github.com/yungbote/branchpulse-backend/internal/platform/logger"
)

const (
	// JobTypeCoverageForecast is the queue job type the analysis pipeline
	// runs under.
	JobTypeCoverageForecast = "coverage_forecast"

	// MaxMonthsAhead bounds the forecast horizon accepted at the API.
	MaxMonthsAhead = 24

	// DefaultForecastWorkers caps concurrent per-region forecasts.
	DefaultForecastWorkers = 4

	// highGrowthSlopeMin flags a region whose fitted trend gains more than
	// this many transactions per month.
	highGrowthSlopeMin = 1000.0
)

// RunParams are the caller-supplied knobs for one analysis run.
type RunParams struct {
	MonthsAhead int `json:"months_ahead"`
	TopK        int `json:"top_k"`
}

// NormalizeRunParams applies defaults and validates bounds. MonthsAhead
// defaults to the engine horizon; TopK zero means unlimited.
func NormalizeRunParams(p RunParams) (RunParams, error) {
	if p.MonthsAhead == 0 {
		p.MonthsAhead = forecast.DefaultMonthsAhead
	}
	if p.MonthsAhead < 1 || p.MonthsAhead > MaxMonthsAhead {
		return p, fmt.Errorf("months_ahead must be between 1 and %d: %w", MaxMonthsAhead, errs.ErrInvalidArgument)
	}
	if p.TopK < 0 {
		return p, fmt.Errorf("top_k must be non-negative: %w", errs.ErrInvalidArgument)
	}
	return p, nil
}

// RunStats summarizes one pipeline execution for the job result payload.
type RunStats struct {
	RegionsTotal      int `json:"regions_total"`
	RegionsFlagged    int `json:"regions_flagged"`
	RegionsForecasted int `json:"regions_forecasted"`
	RegionsSkipped    int `json:"regions_skipped"`
	HighGrowthRegions int `json:"high_growth_regions"`
	Recommendations   int `json:"recommendations"`
}

// ForecastDetail is one stored forecast joined with its points and region
// identity for API consumers.
type ForecastDetail struct {
	Forecast   *types.RegionForecast  `json:"forecast"`
	RegionCode string                 `json:"region_code"`
	RegionName string                 `json:"region_name"`
	Points     []*types.ForecastPoint `json:"points"`
}

// ProgressFunc receives pipeline stage updates. May be nil.
type ProgressFunc func(stage string, pct int, msg string)

type AnalysisService interface {
	EnqueueRun(dbc dbctx.Context, params RunParams) (*types.AnalysisRun, *types.JobRun, error)
	Execute(dbc dbctx.Context, runID uuid.UUID, progress ProgressFunc) (*types.AnalysisRun, RunStats, error)
	GetRun(dbc dbctx.Context, runID uuid.UUID) (*types.AnalysisRun, error)
	ListRuns(dbc dbctx.Context, limit int) ([]*types.AnalysisRun, error)
	LatestSucceededRun(dbc dbctx.Context) (*types.AnalysisRun, error)
	ListSnapshots(dbc dbctx.Context, runID uuid.UUID) ([]*types.CoverageSnapshot, error)
	ListRecommendations(dbc dbctx.Context, runID uuid.UUID) ([]*types.ExpansionRecommendation, error)
	ListForecasts(dbc dbctx.Context, runID uuid.UUID, regionCode string) ([]*ForecastDetail, error)
}

type analysisService struct {
	db  *gorm.DB
	log *logger.Logger

	regions         repos.RegionRepo
	branches        repos.BranchRepo
	observations    repos.MonthlyObservationRepo
	runs            repos.AnalysisRunRepo
	snapshots       repos.CoverageSnapshotRepo
	forecasts       repos.RegionForecastRepo
	points          repos.ForecastPointRepo
	recommendations repos.ExpansionRecommendationRepo

	jobs JobService

	coveragePolicy  coverage.Policy
	planningPolicy  planning.Policy
	forecastWorkers int
}

func NewAnalysisService(
	db *gorm.DB,
	baseLog *logger.Logger,
	regions repos.RegionRepo,
	branches repos.BranchRepo,
	observations repos.MonthlyObservationRepo,
	runs repos.AnalysisRunRepo,
	snapshots repos.CoverageSnapshotRepo,
	forecasts repos.RegionForecastRepo,
	points repos.ForecastPointRepo,
	recommendations repos.ExpansionRecommendationRepo,
	jobs JobService,
	coveragePolicy coverage.Policy,
	planningPolicy planning.Policy,
	forecastWorkers int,
) AnalysisService {
	if forecastWorkers <= 0 {
		forecastWorkers = DefaultForecastWorkers
	}
	return &analysisService{
		db:              db,
		log:             baseLog.With("service", "AnalysisService"),
		regions:         regions,
		branches:        branches,
		observations:    observations,
		runs:            runs,
		snapshots:       snapshots,
		forecasts:       forecasts,
		points:          points,
		recommendations: recommendations,
		jobs:            jobs,
		coveragePolicy:  coveragePolicy,
		planningPolicy:  planningPolicy,
		forecastWorkers: forecastWorkers,
	}
}

// EnqueueRun records a pending analysis run and queues the coverage_forecast
// job that will execute it. Both rows commit in one transaction so a crash
// between them cannot leave a run without a job.
func (s *analysisService) EnqueueRun(dbc dbctx.Context, params RunParams) (*types.AnalysisRun, *types.JobRun, error) {
	params, err := NormalizeRunParams(params)
	if err != nil {
		return nil, nil, err
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}

	var run *types.AnalysisRun
	var job *types.JobRun
	err = transaction.WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: txx}

		paramsJSON, _ := json.Marshal(params)
		rows, err := s.runs.Create(inner, []*types.AnalysisRun{{
			ID:     uuid.New(),
			Status: types.RunStatusPending,
			Params: datatypes.JSON(paramsJSON),
		}})
		if err != nil {
			return fmt.Errorf("create analysis run: %w", err)
		}
		run = rows[0]

		entityID := run.ID
		job, err = s.jobs.Enqueue(inner, JobTypeCoverageForecast, "analysis_run", &entityID, map[string]any{
			"analysis_run_id": run.ID.String(),
			"months_ahead":    params.MonthsAhead,
			"top_k":           params.TopK,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return run, job, nil
}

// Execute runs the full coverage and forecast pipeline for one recorded run:
// classify every region, select the flagged set, forecast each selected
// region under a bounded worker pool, plan recommendations, and persist the
// artifacts. Stateless between runs; everything derives from the store
// snapshot at execution time.
func (s *analysisService) Execute(dbc dbctx.Context, runID uuid.UUID, progress ProgressFunc) (*types.AnalysisRun, RunStats, error) {
	if progress == nil {
		progress = func(string, int, string) {}
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}
	repoCtx := dbctx.Context{Ctx: dbc.Ctx, Tx: transaction}

	run, err := s.runs.GetByID(repoCtx, runID)
	if err != nil {
		return nil, RunStats{}, err
	}
	if run == nil {
		return nil, RunStats{}, fmt.Errorf("analysis run %s: %w", runID, errs.ErrNotFound)
	}

	var params RunParams
	if len(run.Params) > 0 {
		_ = json.Unmarshal(run.Params, &params)
	}
	params, err = NormalizeRunParams(params)
	if err != nil {
		return nil, RunStats{}, s.failRun(repoCtx, run, err)
	}

	startedAt := time.Now().UTC()
	if err := s.runs.UpdateFields(repoCtx, run.ID, map[string]interface{}{
		"status":     types.RunStatusRunning,
		"started_at": startedAt,
		"updated_at": startedAt,
	}); err != nil {
		return nil, RunStats{}, err
	}
	run.Status = types.RunStatusRunning
	run.StartedAt = &startedAt

	stats, err := s.execute(repoCtx, run, params, progress)
	if err != nil {
		return nil, stats, s.failRun(repoCtx, run, err)
	}

	finishedAt := time.Now().UTC()
	if err := s.runs.UpdateFields(repoCtx, run.ID, map[string]interface{}{
		"status":             types.RunStatusSucceeded,
		"regions_total":      stats.RegionsTotal,
		"regions_flagged":    stats.RegionsFlagged,
		"regions_forecasted": stats.RegionsForecasted,
		"regions_skipped":    stats.RegionsSkipped,
		"finished_at":        finishedAt,
		"updated_at":         finishedAt,
	}); err != nil {
		return nil, stats, err
	}
	run.Status = types.RunStatusSucceeded
	run.RegionsTotal = stats.RegionsTotal
	run.RegionsFlagged = stats.RegionsFlagged
	run.RegionsForecasted = stats.RegionsForecasted
	run.RegionsSkipped = stats.RegionsSkipped
	run.FinishedAt = &finishedAt

	s.log.Info("Analysis run complete",
		"run_id", run.ID,
		"regions_total", stats.RegionsTotal,
		"regions_flagged", stats.RegionsFlagged,
		"regions_forecasted", stats.RegionsForecasted,
		"regions_skipped", stats.RegionsSkipped,
		"high_growth_regions", stats.HighGrowthRegions,
	)
	return run, stats, nil
}

// forecastOutcome is the per-region result slot filled by the worker pool.
type forecastOutcome struct {
	forecast       *types.RegionForecast
	points         []*types.ForecastPoint
	recommendation *types.ExpansionRecommendation
	highGrowth     bool
}

func (s *analysisService) execute(repoCtx dbctx.Context, run *types.AnalysisRun, params RunParams, progress ProgressFunc) (RunStats, error) {
	stats := RunStats{}

	// Rerun hygiene: a retried run drops the artifacts of its failed attempt.
	if err := s.clearRunArtifacts(repoCtx, run.ID); err != nil {
		return stats, fmt.Errorf("clear run artifacts: %w", err)
	}

	progress("classify", 10, "Classifying regional coverage")
	classifyStart := time.Now()

	regions, err := s.regions.List(repoCtx)
	if err != nil {
		return stats, fmt.Errorf("list regions: %w", err)
	}
	stats.RegionsTotal = len(regions)

	byRegion, err := branchesByRegion(repoCtx, s.branches, regions)
	if err != nil {
		return stats, fmt.Errorf("list branches: %w", err)
	}

	regionByID := make(map[uuid.UUID]*types.Region, len(regions))
	summaries := make([]coverage.Summary, 0, len(regions))
	snapshotRows := make([]*types.CoverageSnapshot, 0, len(regions))
	for _, region := range regions {
		regionByID[region.ID] = region
		capacities := make([]coverage.Branch, 0, len(byRegion[region.ID]))
		for _, b := range byRegion[region.ID] {
			capacities = append(capacities, coverage.Branch{MonthlyTransactions: b.MonthlyTransactions})
		}
		summary := coverage.Classify(coverage.Region{
			RegionID:               region.ID,
			Code:                   region.Code,
			AvgMonthlyTransactions: region.AvgMonthlyTransactions,
			DemandScore:            region.DemandScore,
		}, capacities, s.coveragePolicy)
		summaries = append(summaries, summary)
		snapshotRows = append(snapshotRows, &types.CoverageSnapshot{
			ID:                     uuid.New(),
			AnalysisRunID:          run.ID,
			RegionID:               summary.RegionID,
			BranchCount:            summary.BranchCount,
			TotalBranchCapacity:    summary.TotalBranchCapacity,
			AvgMonthlyTransactions: summary.AvgMonthlyTransactions,
			CapacityGap:            summary.CapacityGap,
			DemandCapacityRatio:    summary.DemandCapacityRatio,
			CoverageStatus:         summary.Status,
			CoverageRank:           coverage.Rank(summary.Status),
			DemandScore:            summary.DemandScore,
		})
	}
	if _, err := s.snapshots.CreateMany(repoCtx, snapshotRows); err != nil {
		return stats, fmt.Errorf("persist coverage snapshots: %w", err)
	}
	observability.Current().ObservePipelineStage("classify", "ok", time.Since(classifyStart))

	progress("select", 25, "Selecting flagged regions")
	selected := make([]coverage.Summary, 0)
	for _, summary := range summaries {
		if summary.Status == types.CoverageStatusUnderserved || summary.Status == types.CoverageStatusNoCoverage {
			selected = append(selected, summary)
		}
	}
	stats.RegionsFlagged = len(selected)
	sort.Slice(selected, func(i, j int) bool {
		if selected[i].DemandScore != selected[j].DemandScore {
			return selected[i].DemandScore > selected[j].DemandScore
		}
		return selected[i].Code < selected[j].Code
	})
	if params.TopK > 0 && len(selected) > params.TopK {
		selected = selected[:params.TopK]
	}

	progress("forecast", 40, fmt.Sprintf("Forecasting %d regions", len(selected)))
	forecastStart := time.Now()

	selectedIDs := make([]uuid.UUID, 0, len(selected))
	for _, summary := range selected {
		selectedIDs = append(selectedIDs, summary.RegionID)
	}
	observationRows, err := s.observations.ListByRegionIDs(repoCtx, selectedIDs)
	if err != nil {
		return stats, fmt.Errorf("list observations: %w", err)
	}
	historyByRegion := make(map[uuid.UUID][]forecast.Observation, len(selected))
	for _, row := range observationRows {
		historyByRegion[row.RegionID] = append(historyByRegion[row.RegionID], forecast.Observation{
			Month:        row.Month,
			Transactions: row.Transactions,
		})
	}

	// Regions are independent; fan out under a bounded pool with one result
	// slot per region so no aggregation lock is needed.
	outcomes := make([]forecastOutcome, len(selected))
	g, gctx := errgroup.WithContext(repoCtx.Ctx)
	g.SetLimit(s.forecastWorkers)
	for i := range selected {
		i := i
		summary := selected[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = s.forecastRegion(run.ID, summary, historyByRegion[summary.RegionID], params.MonthsAhead)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		observability.Current().ObservePipelineStage("forecast", "failed", time.Since(forecastStart))
		return stats, err
	}

	forecastRows := make([]*types.RegionForecast, 0, len(outcomes))
	pointRows := make([]*types.ForecastPoint, 0)
	recommendationRows := make([]*types.ExpansionRecommendation, 0)
	for _, outcome := range outcomes {
		forecastRows = append(forecastRows, outcome.forecast)
		pointRows = append(pointRows, outcome.points...)
		if outcome.recommendation != nil {
			recommendationRows = append(recommendationRows, outcome.recommendation)
		}
		if outcome.forecast.Status == types.ForecastStatusOK {
			stats.RegionsForecasted++
			observability.Current().IncForecastOutcome("ok")
		} else {
			stats.RegionsSkipped++
			observability.Current().IncForecastOutcome("insufficient_history")
		}
		if outcome.highGrowth {
			stats.HighGrowthRegions++
		}
	}
	if _, err := s.forecasts.CreateMany(repoCtx, forecastRows); err != nil {
		return stats, fmt.Errorf("persist forecasts: %w", err)
	}
	if _, err := s.points.CreateMany(repoCtx, pointRows); err != nil {
		return stats, fmt.Errorf("persist forecast points: %w", err)
	}
	observability.Current().ObservePipelineStage("forecast", "ok", time.Since(forecastStart))

	progress("plan", 80, "Planning expansion recommendations")
	planStart := time.Now()

	// Priority tier first (High before Medium before Low), demand score
	// descending inside a tier, then a stable rank 1..n.
	sort.Slice(recommendationRows, func(i, j int) bool {
		oi := planning.PriorityOrder(recommendationRows[i].PriorityLevel)
		oj := planning.PriorityOrder(recommendationRows[j].PriorityLevel)
		if oi != oj {
			return oi < oj
		}
		if recommendationRows[i].DemandScore != recommendationRows[j].DemandScore {
			return recommendationRows[i].DemandScore > recommendationRows[j].DemandScore
		}
		return regionCodeOf(regionByID, recommendationRows[i].RegionID) < regionCodeOf(regionByID, recommendationRows[j].RegionID)
	})
	for i, rec := range recommendationRows {
		rec.PriorityRank = i + 1
	}
	if _, err := s.recommendations.CreateMany(repoCtx, recommendationRows); err != nil {
		return stats, fmt.Errorf("persist recommendations: %w", err)
	}
	stats.Recommendations = len(recommendationRows)
	observability.Current().ObservePipelineStage("plan", "ok", time.Since(planStart))

	progress("persist", 95, "Finalizing run")
	return stats, nil
}

// forecastRegion runs the pure engine path for one selected region: fit and
// project, then plan from the final projected month. Insufficient history is
// recorded, never escalated.
func (s *analysisService) forecastRegion(runID uuid.UUID, summary coverage.Summary, history []forecast.Observation, monthsAhead int) forecastOutcome {
	row := &types.RegionForecast{
		ID:            uuid.New(),
		AnalysisRunID: runID,
		RegionID:      summary.RegionID,
		MonthsAhead:   monthsAhead,
		HistoryMonths: len(history),
	}

	result, err := forecast.Project(history, monthsAhead)
	if err != nil {
		var insufficient *forecast.InsufficientHistoryError
		if errors.As(err, &insufficient) {
			s.log.Info("Skipping forecast", "region_code", summary.Code, "months", insufficient.Months, "required", insufficient.Required)
			row.Status = types.ForecastStatusInsufficientHistory
			return forecastOutcome{forecast: row}
		}
		// Project only fails on short history today; treat anything else
		// the same way rather than poisoning the run.
		s.log.Warn("Forecast failed", "region_code", summary.Code, "error", err)
		row.Status = types.ForecastStatusInsufficientHistory
		return forecastOutcome{forecast: row}
	}

	row.Status = types.ForecastStatusOK
	row.Slope = result.Slope
	row.Intercept = result.Intercept
	row.SeasonalMultipliers = marshalMultipliers(result.SeasonalMultipliers)

	points := make([]*types.ForecastPoint, 0, len(result.Points))
	for i, p := range result.Points {
		points = append(points, &types.ForecastPoint{
			ID:                 uuid.New(),
			RegionForecastID:   row.ID,
			Seq:                i + 1,
			Month:              p.Month,
			TrendValue:         p.TrendValue,
			SeasonalMultiplier: p.SeasonalMultiplier,
			ForecastValue:      p.ForecastValue,
		})
	}

	final := result.Points[len(result.Points)-1]
	plan := planning.Plan(planning.Input{
		TotalBranchCapacity: summary.TotalBranchCapacity,
		FinalForecastValue:  final.ForecastValue,
		DemandScore:         summary.DemandScore,
	}, s.planningPolicy)

	return forecastOutcome{
		forecast: row,
		points:   points,
		recommendation: &types.ExpansionRecommendation{
			ID:                uuid.New(),
			AnalysisRunID:     runID,
			RegionID:          summary.RegionID,
			CoverageStatus:    summary.Status,
			DemandScore:       summary.DemandScore,
			ProjectedGap:      plan.ProjectedGap,
			BranchesNeeded:    plan.BranchesNeeded,
			StaffNeeded:       plan.StaffNeeded,
			PriorityLevel:     plan.PriorityLevel,
			RecommendedAction: plan.RecommendedAction,
		},
		highGrowth: result.Slope > highGrowthSlopeMin,
	}
}

func (s *analysisService) clearRunArtifacts(repoCtx dbctx.Context, runID uuid.UUID) error {
	stale, err := s.forecasts.ListByRunID(repoCtx, runID)
	if err != nil {
		return err
	}
	if len(stale) > 0 {
		ids := make([]uuid.UUID, 0, len(stale))
		for _, f := range stale {
			ids = append(ids, f.ID)
		}
		if err := s.points.FullDeleteByForecastIDs(repoCtx, ids); err != nil {
			return err
		}
	}
	if err := s.forecasts.FullDeleteByRunID(repoCtx, runID); err != nil {
		return err
	}
	if err := s.snapshots.FullDeleteByRunID(repoCtx, runID); err != nil {
		return err
	}
	return s.recommendations.FullDeleteByRunID(repoCtx, runID)
}

func (s *analysisService) failRun(repoCtx dbctx.Context, run *types.AnalysisRun, cause error) error {
	now := time.Now().UTC()
	if err := s.runs.UpdateFields(repoCtx, run.ID, map[string]interface{}{
		"status":      types.RunStatusFailed,
		"error":       cause.Error(),
		"finished_at": now,
		"updated_at":  now,
	}); err != nil {
		s.log.Warn("Mark run failed", "run_id", run.ID, "error", err)
	}
	run.Status = types.RunStatusFailed
	run.Error = cause.Error()
	run.FinishedAt = &now
	return cause
}

func (s *analysisService) GetRun(dbc dbctx.Context, runID uuid.UUID) (*types.AnalysisRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}
	run, err := s.runs.GetByID(dbctx.Context{Ctx: dbc.Ctx, Tx: transaction}, runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("analysis run %s: %w", runID, errs.ErrNotFound)
	}
	return run, nil
}

func (s *analysisService) ListRuns(dbc dbctx.Context, limit int) ([]*types.AnalysisRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}
	return s.runs.List(dbctx.Context{Ctx: dbc.Ctx, Tx: transaction}, limit)
}

func (s *analysisService) LatestSucceededRun(dbc dbctx.Context) (*types.AnalysisRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}
	run, err := s.runs.GetLatestSucceeded(dbctx.Context{Ctx: dbc.Ctx, Tx: transaction})
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("no succeeded analysis run: %w", errs.ErrNotFound)
	}
	return run, nil
}

func (s *analysisService) ListSnapshots(dbc dbctx.Context, runID uuid.UUID) ([]*types.CoverageSnapshot, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}
	repoCtx := dbctx.Context{Ctx: dbc.Ctx, Tx: transaction}
	if _, err := s.GetRun(repoCtx, runID); err != nil {
		return nil, err
	}
	return s.snapshots.ListByRunID(repoCtx, runID)
}

func (s *analysisService) ListRecommendations(dbc dbctx.Context, runID uuid.UUID) ([]*types.ExpansionRecommendation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}
	repoCtx := dbctx.Context{Ctx: dbc.Ctx, Tx: transaction}
	if _, err := s.GetRun(repoCtx, runID); err != nil {
		return nil, err
	}
	return s.recommendations.ListByRunID(repoCtx, runID)
}

// ListForecasts returns the stored forecasts of a run with points attached,
// optionally filtered to one region code.
func (s *analysisService) ListForecasts(dbc dbctx.Context, runID uuid.UUID, regionCode string) ([]*ForecastDetail, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}
	repoCtx := dbctx.Context{Ctx: dbc.Ctx, Tx: transaction}
	if _, err := s.GetRun(repoCtx, runID); err != nil {
		return nil, err
	}

	var forecastRows []*types.RegionForecast
	regionCode = strings.TrimSpace(regionCode)
	if regionCode != "" {
		region, err := s.regions.GetByCode(repoCtx, regionCode)
		if err != nil {
			return nil, err
		}
		if region == nil {
			return nil, fmt.Errorf("region %s: %w", regionCode, errs.ErrNotFound)
		}
		row, err := s.forecasts.GetByRunAndRegion(repoCtx, runID, region.ID)
		if err != nil {
			return nil, err
		}
		if row != nil {
			forecastRows = append(forecastRows, row)
		}
	} else {
		var err error
		forecastRows, err = s.forecasts.ListByRunID(repoCtx, runID)
		if err != nil {
			return nil, err
		}
	}
	if len(forecastRows) == 0 {
		return []*ForecastDetail{}, nil
	}

	forecastIDs := make([]uuid.UUID, 0, len(forecastRows))
	regionIDs := make([]uuid.UUID, 0, len(forecastRows))
	for _, f := range forecastRows {
		forecastIDs = append(forecastIDs, f.ID)
		regionIDs = append(regionIDs, f.RegionID)
	}
	pointRows, err := s.points.ListByForecastIDs(repoCtx, forecastIDs)
	if err != nil {
		return nil, err
	}
	pointsByForecast := make(map[uuid.UUID][]*types.ForecastPoint, len(forecastRows))
	for _, p := range pointRows {
		pointsByForecast[p.RegionForecastID] = append(pointsByForecast[p.RegionForecastID], p)
	}
	regionRows, err := s.regions.GetByIDs(repoCtx, regionIDs)
	if err != nil {
		return nil, err
	}
	regionByID := make(map[uuid.UUID]*types.Region, len(regionRows))
	for _, r := range regionRows {
		regionByID[r.ID] = r
	}

	out := make([]*ForecastDetail, 0, len(forecastRows))
	for _, f := range forecastRows {
		detail := &ForecastDetail{
			Forecast: f,
			Points:   pointsByForecast[f.ID],
		}
		if region := regionByID[f.RegionID]; region != nil {
			detail.RegionCode = region.Code
			detail.RegionName = region.Name
		}
		out = append(out, detail)
	}
	return out, nil
}

// marshalMultipliers stores the calendar-month multipliers keyed "1".."12".
func marshalMultipliers(m map[time.Month]float64) datatypes.JSON {
	out := make(map[string]float64, len(m))
	for month, mult := range m {
		out[strconv.Itoa(int(month))] = mult
	}
	b, _ := json.Marshal(out)
	return datatypes.JSON(b)
}

func regionCodeOf(regionByID map[uuid.UUID]*types.Region, id uuid.UUID) string {
	if r := regionByID[id]; r != nil {
		return r.Code
	}
	return ""
}
