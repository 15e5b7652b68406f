package services

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/branchpulse-backend/internal/data/repos"
	types "github.com/yungbote/branchpulse-backend/internal/domain"
	"github.com/yungbote/branchpulse-backend/internal/engine/forecast"
	"github.com/yungbote/branchpulse-backend/internal/observability"
	"github.com/yungbote/branchpulse-backend/internal/platform/dbctx"
	"github.com/yungbote/branchpulse-backend/internal/platform/logger"
)

// Branch load tiers, strict lower bounds on transactions per staff member.
const (
	BranchLoadCritical = "Critical"
	BranchLoadHigh     = "High"
	BranchLoadModerate = "Moderate"
	BranchLoadNormal   = "Normal"

	branchLoadCriticalMin = 900.0
	branchLoadHighMin     = 700.0
	branchLoadModerateMin = 500.0

	provinceProjectionMonths = 6
)

// NetworkKPIs is the network-wide health summary.
type NetworkKPIs struct {
	TotalRegions         int     `json:"total_regions"`
	TotalBranches        int     `json:"total_branches"`
	UnderservedRegions   int     `json:"underserved_regions"`
	NoCoverageRegions    int     `json:"no_coverage_regions"`
	CoverageRatePct      float64 `json:"coverage_rate_pct"`
	OverloadedBranches   int     `json:"overloaded_branches"`
	TotalCapacity        float64 `json:"total_capacity"`
	TotalDemand          float64 `json:"total_demand"`
	TotalGap             float64 `json:"total_gap"`
	AvgTransactionsStaff float64 `json:"avg_transactions_per_staff"`
}

// ProvinceRollup aggregates regions and branches per province, with a
// slope-only projection of the province transaction series.
type ProvinceRollup struct {
	Province         string  `json:"province"`
	RegionCount      int     `json:"region_count"`
	BranchCount      int     `json:"branch_count"`
	TotalCapacity    float64 `json:"total_capacity"`
	TotalDemand      float64 `json:"total_demand"`
	TotalGap         float64 `json:"total_gap"`
	CoverageRatioPct float64 `json:"coverage_ratio_pct"`

	HistoryMonths      int     `json:"history_months"`
	CurrentMonthly     float64 `json:"current_monthly"`
	ProjectedMonthly   float64 `json:"projected_monthly"`
	GrowthRatePct      float64 `json:"growth_rate_pct"`
	CAGRPct            float64 `json:"cagr_pct"`
	ProjectionComplete bool    `json:"projection_complete"`
}

// SeasonalMonth is the cross-region mean for one calendar month against the
// all-months baseline.
type SeasonalMonth struct {
	Month            int     `json:"month"`
	MonthName        string  `json:"month_name"`
	MeanTransactions float64 `json:"mean_transactions"`
	VsBaselinePct    float64 `json:"vs_baseline_pct"`
}

// SeasonalReport is the calendar-month demand pattern across the network.
type SeasonalReport struct {
	Baseline float64         `json:"baseline"`
	Months   []SeasonalMonth `json:"months"`
}

// BranchLoad classifies one branch by throughput per staff member.
type BranchLoad struct {
	BranchCode           string  `json:"branch_code"`
	BranchName           string  `json:"branch_name"`
	RegionCode           string  `json:"region_code"`
	BranchType           string  `json:"branch_type"`
	StaffCount           int     `json:"staff_count"`
	MonthlyTransactions  float64 `json:"monthly_transactions"`
	TransactionsPerStaff float64 `json:"transactions_per_staff"`
	LoadLevel            string  `json:"load_level"`
	Severity             int     `json:"severity"`
}

type ReportService interface {
	KPIs(dbc dbctx.Context) (*NetworkKPIs, error)
	Provinces(dbc dbctx.Context) ([]*ProvinceRollup, error)
	Seasonal(dbc dbctx.Context) (*SeasonalReport, error)
	BranchLoad(dbc dbctx.Context) ([]*BranchLoad, error)
}

type reportService struct {
	db           *gorm.DB
	log          *logger.Logger
	regions      repos.RegionRepo
	branches     repos.BranchRepo
	observations repos.MonthlyObservationRepo
	coverageSvc  CoverageService

	rdb      *goredis.Client
	cacheTTL time.Duration
}

func NewReportService(
	db *gorm.DB,
	baseLog *logger.Logger,
	regions repos.RegionRepo,
	branches repos.BranchRepo,
	observations repos.MonthlyObservationRepo,
	coverageSvc CoverageService,
	rdb *goredis.Client,
	cacheTTL time.Duration,
) ReportService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &reportService{
		db:           db,
		log:          baseLog.With("service", "ReportService"),
		regions:      regions,
		branches:     branches,
		observations: observations,
		coverageSvc:  coverageSvc,
		rdb:          rdb,
		cacheTTL:     cacheTTL,
	}
}

func (s *reportService) KPIs(dbc dbctx.Context) (*NetworkKPIs, error) {
	var cached NetworkKPIs
	if s.cacheGet(dbc.Ctx, "bp:report:kpis", &cached) {
		return &cached, nil
	}

	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}
	repoCtx := dbctx.Context{Ctx: dbc.Ctx, Tx: transaction}

	summaries, err := s.coverageSvc.SummarizeNetwork(repoCtx)
	if err != nil {
		return nil, err
	}
	branchRows, err := s.branches.List(repoCtx)
	if err != nil {
		return nil, err
	}

	kpis := &NetworkKPIs{
		TotalRegions:  len(summaries),
		TotalBranches: len(branchRows),
	}
	for _, summary := range summaries {
		kpis.TotalCapacity += summary.TotalBranchCapacity
		kpis.TotalDemand += summary.AvgMonthlyTransactions
		if summary.CapacityGap > 0 {
			kpis.TotalGap += summary.CapacityGap
		}
		switch summary.CoverageStatus {
		case types.CoverageStatusUnderserved:
			kpis.UnderservedRegions++
		case types.CoverageStatusNoCoverage:
			kpis.NoCoverageRegions++
		}
	}
	if len(summaries) > 0 {
		covered := len(summaries) - kpis.UnderservedRegions - kpis.NoCoverageRegions
		kpis.CoverageRatePct = float64(covered) / float64(len(summaries)) * 100
	}

	totalStaff := 0
	totalTx := 0.0
	for _, b := range branchRows {
		totalStaff += b.StaffCount
		totalTx += b.MonthlyTransactions
		if transactionsPerStaff(b) > branchLoadHighMin {
			kpis.OverloadedBranches++
		}
	}
	if totalStaff > 0 {
		kpis.AvgTransactionsStaff = totalTx / float64(totalStaff)
	}

	s.cacheSet(dbc.Ctx, "bp:report:kpis", kpis)
	return kpis, nil
}

func (s *reportService) Provinces(dbc dbctx.Context) ([]*ProvinceRollup, error) {
	var cached []*ProvinceRollup
	if s.cacheGet(dbc.Ctx, "bp:report:provinces", &cached) {
		return cached, nil
	}

	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}
	repoCtx := dbctx.Context{Ctx: dbc.Ctx, Tx: transaction}

	summaries, err := s.coverageSvc.SummarizeNetwork(repoCtx)
	if err != nil {
		return nil, err
	}
	regionRows, err := s.regions.List(repoCtx)
	if err != nil {
		return nil, err
	}
	byRegion, err := branchesByRegion(repoCtx, s.branches, regionRows)
	if err != nil {
		return nil, err
	}
	observationRows, err := s.observations.ListByRegionIDs(repoCtx, regionIDsOf(regionRows))
	if err != nil {
		return nil, err
	}

	provinceOfID := make(map[string]string, len(regionRows))
	for _, r := range regionRows {
		provinceOfID[r.ID.String()] = r.Province
	}

	rollups := map[string]*ProvinceRollup{}
	get := func(province string) *ProvinceRollup {
		roll := rollups[province]
		if roll == nil {
			roll = &ProvinceRollup{Province: province}
			rollups[province] = roll
		}
		return roll
	}

	for _, summary := range summaries {
		roll := get(summary.Province)
		roll.RegionCount++
		roll.TotalCapacity += summary.TotalBranchCapacity
		roll.TotalDemand += summary.AvgMonthlyTransactions
		roll.TotalGap += summary.AvgMonthlyTransactions - summary.TotalBranchCapacity
	}
	for _, r := range regionRows {
		get(r.Province).BranchCount += len(byRegion[r.ID])
	}

	// Aggregate the province series by calendar month before fitting.
	monthly := map[string]map[time.Time]float64{}
	for _, row := range observationRows {
		province := provinceOfID[row.RegionID.String()]
		if province == "" {
			continue
		}
		if monthly[province] == nil {
			monthly[province] = map[time.Time]float64{}
		}
		monthly[province][row.Month] += row.Transactions
	}

	for province, roll := range rollups {
		if roll.TotalDemand > 0 {
			roll.CoverageRatioPct = roll.TotalCapacity / roll.TotalDemand * 100
		}
		series := monthly[province]
		if len(series) == 0 {
			continue
		}
		history := make([]forecast.Observation, 0, len(series))
		for month, total := range series {
			history = append(history, forecast.Observation{Month: month, Transactions: total})
		}
		sort.Slice(history, func(i, j int) bool { return history[i].Month.Before(history[j].Month) })

		roll.HistoryMonths = len(history)
		first := history[0].Transactions
		last := history[len(history)-1].Transactions
		roll.CurrentMonthly = last

		slope, _, err := forecast.Fit(history)
		if err != nil {
			continue
		}
		roll.ProjectedMonthly = last + slope*provinceProjectionMonths
		if last != 0 {
			roll.GrowthRatePct = slope / last * 100
		}
		if first > 0 && len(history) > 0 {
			roll.CAGRPct = (math.Pow(last/first, 12/float64(len(history))) - 1) * 100
		}
		roll.ProjectionComplete = true
	}

	out := make([]*ProvinceRollup, 0, len(rollups))
	for _, roll := range rollups {
		out = append(out, roll)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Province < out[j].Province })

	s.cacheSet(dbc.Ctx, "bp:report:provinces", out)
	return out, nil
}

// Seasonal reports the mean transactions per calendar month across all
// regions against the baseline mean of those monthly means.
func (s *reportService) Seasonal(dbc dbctx.Context) (*SeasonalReport, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}
	repoCtx := dbctx.Context{Ctx: dbc.Ctx, Tx: transaction}

	regionRows, err := s.regions.List(repoCtx)
	if err != nil {
		return nil, err
	}
	observationRows, err := s.observations.ListByRegionIDs(repoCtx, regionIDsOf(regionRows))
	if err != nil {
		return nil, err
	}

	sums := map[time.Month]float64{}
	counts := map[time.Month]int{}
	for _, row := range observationRows {
		m := row.Month.Month()
		sums[m] += row.Transactions
		counts[m]++
	}

	report := &SeasonalReport{Months: make([]SeasonalMonth, 0, 12)}
	baselineSum := 0.0
	baselineMonths := 0
	for m := time.January; m <= time.December; m++ {
		if counts[m] == 0 {
			continue
		}
		mean := sums[m] / float64(counts[m])
		baselineSum += mean
		baselineMonths++
		report.Months = append(report.Months, SeasonalMonth{
			Month:            int(m),
			MonthName:        m.String(),
			MeanTransactions: mean,
		})
	}
	if baselineMonths > 0 {
		report.Baseline = baselineSum / float64(baselineMonths)
	}
	if report.Baseline > 0 {
		for i := range report.Months {
			report.Months[i].VsBaselinePct = (report.Months[i].MeanTransactions/report.Baseline - 1) * 100
		}
	}
	return report, nil
}

// BranchLoad classifies every branch by transactions per staff member,
// busiest first.
func (s *reportService) BranchLoad(dbc dbctx.Context) ([]*BranchLoad, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}
	repoCtx := dbctx.Context{Ctx: dbc.Ctx, Tx: transaction}

	branchRows, err := s.branches.List(repoCtx)
	if err != nil {
		return nil, err
	}
	regionRows, err := s.regions.List(repoCtx)
	if err != nil {
		return nil, err
	}
	codeByID := make(map[string]string, len(regionRows))
	for _, r := range regionRows {
		codeByID[r.ID.String()] = r.Code
	}

	out := make([]*BranchLoad, 0, len(branchRows))
	for _, b := range branchRows {
		perStaff := transactionsPerStaff(b)
		level, severity := classifyBranchLoad(perStaff)
		out = append(out, &BranchLoad{
			BranchCode:           b.Code,
			BranchName:           b.Name,
			RegionCode:           codeByID[b.RegionID.String()],
			BranchType:           b.BranchType,
			StaffCount:           b.StaffCount,
			MonthlyTransactions:  b.MonthlyTransactions,
			TransactionsPerStaff: perStaff,
			LoadLevel:            level,
			Severity:             severity,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TransactionsPerStaff != out[j].TransactionsPerStaff {
			return out[i].TransactionsPerStaff > out[j].TransactionsPerStaff
		}
		return out[i].BranchCode < out[j].BranchCode
	})
	return out, nil
}

// transactionsPerStaff guards the unstaffed branch: the full monthly volume
// counts as the per-staff load rather than dividing by zero.
func transactionsPerStaff(b *types.Branch) float64 {
	if b.StaffCount <= 0 {
		return b.MonthlyTransactions
	}
	return b.MonthlyTransactions / float64(b.StaffCount)
}

func classifyBranchLoad(perStaff float64) (string, int) {
	switch {
	case perStaff > branchLoadCriticalMin:
		return BranchLoadCritical, 4
	case perStaff > branchLoadHighMin:
		return BranchLoadHigh, 3
	case perStaff > branchLoadModerateMin:
		return BranchLoadModerate, 2
	default:
		return BranchLoadNormal, 1
	}
}

// cacheGet reads a cached report payload; misses and errors fall through to
// recomputation.
func (s *reportService) cacheGet(ctx context.Context, key string, dest any) bool {
	if s.rdb == nil {
		return false
	}
	if ctx == nil {
		ctx = context.Background()
	}
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err == goredis.Nil {
			observability.Current().IncCacheOp("get", "miss")
		} else {
			observability.Current().IncCacheOp("get", "error")
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		observability.Current().IncCacheOp("get", "error")
		return false
	}
	observability.Current().IncCacheOp("get", "hit")
	return true
}

func (s *reportService) cacheSet(ctx context.Context, key string, value any) {
	if s.rdb == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	b, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, b, s.cacheTTL).Err(); err != nil {
		observability.Current().IncCacheOp("set", "error")
		s.log.Debug("Report cache write failed", "key", key, "error", err)
		return
	}
	observability.Current().IncCacheOp("set", "ok")
}

func regionIDsOf(regions []*types.Region) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(regions))
	for _, r := range regions {
		ids = append(ids, r.ID)
	}
	return ids
}
