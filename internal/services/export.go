package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/branchpulse-backend/internal/data/repos"
	types "github.com/yungbote/branchpulse-backend/internal/domain"
	"github.com/yungbote/branchpulse-backend/internal/platform/dbctx"
	"github.com/yungbote/branchpulse-backend/internal/platform/logger"
)

// ExportService renders the tabular views as CSV. Floats are rounded to
// whole transactions here; everything upstream stays in floating point.
type ExportService interface {
	RegionalSummaryCSV(dbc dbctx.Context, w io.Writer) error
	RecommendationsCSV(dbc dbctx.Context, w io.Writer) error
	ForecastsCSV(dbc dbctx.Context, w io.Writer) error
	BranchesCSV(dbc dbctx.Context, w io.Writer) error
	KPIsCSV(dbc dbctx.Context, w io.Writer) error
	ProvincesCSV(dbc dbctx.Context, w io.Writer) error
}

type exportService struct {
	db          *gorm.DB
	log         *logger.Logger
	regions     repos.RegionRepo
	branches    repos.BranchRepo
	coverageSvc CoverageService
	analysisSvc AnalysisService
	reportSvc   ReportService
}

func NewExportService(
	db *gorm.DB,
	baseLog *logger.Logger,
	regions repos.RegionRepo,
	branches repos.BranchRepo,
	coverageSvc CoverageService,
	analysisSvc AnalysisService,
	reportSvc ReportService,
) ExportService {
	return &exportService{
		db:          db,
		log:         baseLog.With("service", "ExportService"),
		regions:     regions,
		branches:    branches,
		coverageSvc: coverageSvc,
		analysisSvc: analysisSvc,
		reportSvc:   reportSvc,
	}
}

// RegionalSummaryCSV exports the live classification of every region,
// ordered by coverage rank then capacity gap descending.
func (s *exportService) RegionalSummaryCSV(dbc dbctx.Context, w io.Writer) error {
	summaries, err := s.coverageSvc.SummarizeNetwork(dbc)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"region_code", "region_name", "province", "branch_count",
		"total_branch_capacity", "avg_monthly_transactions", "capacity_gap",
		"demand_capacity_ratio", "coverage_status", "coverage_rank", "demand_score",
	}); err != nil {
		return err
	}
	for _, summary := range summaries {
		if err := cw.Write([]string{
			summary.RegionCode,
			summary.RegionName,
			summary.Province,
			strconv.Itoa(summary.BranchCount),
			wholeTx(summary.TotalBranchCapacity),
			wholeTx(summary.AvgMonthlyTransactions),
			wholeTx(summary.CapacityGap),
			ratio2(summary.DemandCapacityRatio),
			summary.CoverageStatus,
			strconv.Itoa(summary.CoverageRank),
			ratio2(summary.DemandScore),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// RecommendationsCSV exports the recommendations of the latest succeeded run
// in priority rank order.
func (s *exportService) RecommendationsCSV(dbc dbctx.Context, w io.Writer) error {
	run, err := s.analysisSvc.LatestSucceededRun(dbc)
	if err != nil {
		return err
	}
	recs, err := s.analysisSvc.ListRecommendations(dbc, run.ID)
	if err != nil {
		return err
	}
	codeByID, err := s.regionCodes(dbc, regionIDsOfRecs(recs))
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"priority_rank", "region_code", "coverage_status", "demand_score",
		"projected_gap", "branches_needed", "staff_needed", "priority_level",
		"recommended_action",
	}); err != nil {
		return err
	}
	for _, rec := range recs {
		if err := cw.Write([]string{
			strconv.Itoa(rec.PriorityRank),
			codeByID[rec.RegionID],
			rec.CoverageStatus,
			ratio2(rec.DemandScore),
			wholeTx(rec.ProjectedGap),
			strconv.Itoa(rec.BranchesNeeded),
			strconv.Itoa(rec.StaffNeeded),
			rec.PriorityLevel,
			recommendationText(rec.BranchesNeeded, rec.StaffNeeded),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ForecastsCSV exports every forecast point of the latest succeeded run, one
// row per region per projected month.
func (s *exportService) ForecastsCSV(dbc dbctx.Context, w io.Writer) error {
	run, err := s.analysisSvc.LatestSucceededRun(dbc)
	if err != nil {
		return err
	}
	details, err := s.analysisSvc.ListForecasts(dbc, run.ID, "")
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"region_code", "status", "history_months", "slope", "month", "seq",
		"trend_value", "seasonal_multiplier", "forecast_value",
	}); err != nil {
		return err
	}
	for _, detail := range details {
		if detail.Forecast.Status != types.ForecastStatusOK {
			if err := cw.Write([]string{
				detail.RegionCode,
				detail.Forecast.Status,
				strconv.Itoa(detail.Forecast.HistoryMonths),
				"", "", "", "", "", "",
			}); err != nil {
				return err
			}
			continue
		}
		for _, p := range detail.Points {
			if err := cw.Write([]string{
				detail.RegionCode,
				detail.Forecast.Status,
				strconv.Itoa(detail.Forecast.HistoryMonths),
				ratio2(detail.Forecast.Slope),
				p.Month.Format("2006-01"),
				strconv.Itoa(p.Seq),
				wholeTx(p.TrendValue),
				ratio2(p.SeasonalMultiplier),
				wholeTx(p.ForecastValue),
			}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *exportService) BranchesCSV(dbc dbctx.Context, w io.Writer) error {
	loads, err := s.reportSvc.BranchLoad(dbc)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"branch_code", "branch_name", "region_code", "branch_type",
		"staff_count", "monthly_transactions", "transactions_per_staff",
		"load_level", "severity",
	}); err != nil {
		return err
	}
	for _, load := range loads {
		if err := cw.Write([]string{
			load.BranchCode,
			load.BranchName,
			load.RegionCode,
			load.BranchType,
			strconv.Itoa(load.StaffCount),
			wholeTx(load.MonthlyTransactions),
			wholeTx(load.TransactionsPerStaff),
			load.LoadLevel,
			strconv.Itoa(load.Severity),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *exportService) KPIsCSV(dbc dbctx.Context, w io.Writer) error {
	kpis, err := s.reportSvc.KPIs(dbc)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	rows := [][]string{
		{"metric", "value"},
		{"total_regions", strconv.Itoa(kpis.TotalRegions)},
		{"total_branches", strconv.Itoa(kpis.TotalBranches)},
		{"underserved_regions", strconv.Itoa(kpis.UnderservedRegions)},
		{"no_coverage_regions", strconv.Itoa(kpis.NoCoverageRegions)},
		{"coverage_rate_pct", ratio2(kpis.CoverageRatePct)},
		{"overloaded_branches", strconv.Itoa(kpis.OverloadedBranches)},
		{"total_capacity", wholeTx(kpis.TotalCapacity)},
		{"total_demand", wholeTx(kpis.TotalDemand)},
		{"total_gap", wholeTx(kpis.TotalGap)},
		{"avg_transactions_per_staff", wholeTx(kpis.AvgTransactionsStaff)},
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *exportService) ProvincesCSV(dbc dbctx.Context, w io.Writer) error {
	rollups, err := s.reportSvc.Provinces(dbc)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"province", "region_count", "branch_count", "total_capacity",
		"total_demand", "total_gap", "coverage_ratio_pct", "current_monthly",
		"projected_monthly", "growth_rate_pct", "cagr_pct",
	}); err != nil {
		return err
	}
	for _, roll := range rollups {
		if err := cw.Write([]string{
			roll.Province,
			strconv.Itoa(roll.RegionCount),
			strconv.Itoa(roll.BranchCount),
			wholeTx(roll.TotalCapacity),
			wholeTx(roll.TotalDemand),
			wholeTx(roll.TotalGap),
			ratio2(roll.CoverageRatioPct),
			wholeTx(roll.CurrentMonthly),
			wholeTx(roll.ProjectedMonthly),
			ratio2(roll.GrowthRatePct),
			ratio2(roll.CAGRPct),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *exportService) regionCodes(dbc dbctx.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}
	rows, err := s.regions.GetByIDs(dbctx.Context{Ctx: dbc.Ctx, Tx: transaction}, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]string, len(rows))
	for _, r := range rows {
		out[r.ID] = r.Code
	}
	return out, nil
}

func regionIDsOfRecs(recs []*types.ExpansionRecommendation) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(recs))
	for _, rec := range recs {
		ids = append(ids, rec.RegionID)
	}
	return ids
}

// recommendationText folds branch and staff counts into the one-line action
// the tabular exports carry.
func recommendationText(branchesNeeded, staffNeeded int) string {
	if branchesNeeded > 0 {
		return fmt.Sprintf("Open %d new branches, hire %d staff", branchesNeeded, staffNeeded)
	}
	return fmt.Sprintf("Increase staffing by %d staff", staffNeeded)
}

// wholeTx renders a transaction volume as a whole number.
func wholeTx(v float64) string {
	return fmt.Sprintf("%.0f", v)
}

// ratio2 renders a ratio or percentage with two decimals.
func ratio2(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
