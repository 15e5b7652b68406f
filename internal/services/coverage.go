package services

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/branchpulse-backend/internal/data/repos"
	types "github.com/yungbote/branchpulse-backend/internal/domain"
	"github.com/yungbote/branchpulse-backend/internal/engine/coverage"
	"github.com/yungbote/branchpulse-backend/internal/platform/dbctx"
	"github.com/yungbote/branchpulse-backend/internal/platform/errs"
	"github.com/yungbote/branchpulse-backend/internal/platform/logger"
)

// RegionalSummary is the live classification view for one region: the engine
// summary joined with region identity. Recomputed per request from current
// region and branch rows, never read back from a stored run.
type RegionalSummary struct {
	RegionID               uuid.UUID `json:"region_id"`
	RegionCode             string    `json:"region_code"`
	RegionName             string    `json:"region_name"`
	Province               string    `json:"province"`
	BranchCount            int       `json:"branch_count"`
	TotalBranchCapacity    float64   `json:"total_branch_capacity"`
	AvgMonthlyTransactions float64   `json:"avg_monthly_transactions"`
	CapacityGap            float64   `json:"capacity_gap"`
	DemandCapacityRatio    float64   `json:"demand_capacity_ratio"`
	CoverageStatus         string    `json:"coverage_status"`
	CoverageRank           int       `json:"coverage_rank"`
	DemandScore            float64   `json:"demand_score"`
}

type CoverageService interface {
	SummarizeRegion(dbc dbctx.Context, regionCode string) (*RegionalSummary, error)
	SummarizeNetwork(dbc dbctx.Context) ([]*RegionalSummary, error)
}

type coverageService struct {
	db       *gorm.DB
	log      *logger.Logger
	regions  repos.RegionRepo
	branches repos.BranchRepo
	policy   coverage.Policy
}

func NewCoverageService(db *gorm.DB, baseLog *logger.Logger, regions repos.RegionRepo, branches repos.BranchRepo, policy coverage.Policy) CoverageService {
	return &coverageService{
		db:       db,
		log:      baseLog.With("service", "CoverageService"),
		regions:  regions,
		branches: branches,
		policy:   policy,
	}
}

func (s *coverageService) SummarizeRegion(dbc dbctx.Context, regionCode string) (*RegionalSummary, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}
	repoCtx := dbctx.Context{Ctx: dbc.Ctx, Tx: transaction}

	region, err := s.regions.GetByCode(repoCtx, regionCode)
	if err != nil {
		return nil, err
	}
	if region == nil {
		return nil, fmt.Errorf("region %s: %w", regionCode, errs.ErrNotFound)
	}
	branchRows, err := s.branches.ListByRegionID(repoCtx, region.ID)
	if err != nil {
		return nil, err
	}
	return s.summarize(region, branchRows), nil
}

// SummarizeNetwork classifies every region and returns the summaries sorted
// by capacity gap descending, so the most undersupplied regions lead.
func (s *coverageService) SummarizeNetwork(dbc dbctx.Context) ([]*RegionalSummary, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}
	repoCtx := dbctx.Context{Ctx: dbc.Ctx, Tx: transaction}

	regions, err := s.regions.List(repoCtx)
	if err != nil {
		return nil, err
	}
	byRegion, err := branchesByRegion(repoCtx, s.branches, regions)
	if err != nil {
		return nil, err
	}

	out := make([]*RegionalSummary, 0, len(regions))
	for _, region := range regions {
		out = append(out, s.summarize(region, byRegion[region.ID]))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CapacityGap != out[j].CapacityGap {
			return out[i].CapacityGap > out[j].CapacityGap
		}
		return out[i].RegionCode < out[j].RegionCode
	})
	return out, nil
}

func (s *coverageService) summarize(region *types.Region, branchRows []*types.Branch) *RegionalSummary {
	capacities := make([]coverage.Branch, 0, len(branchRows))
	for _, b := range branchRows {
		capacities = append(capacities, coverage.Branch{MonthlyTransactions: b.MonthlyTransactions})
	}
	summary := coverage.Classify(coverage.Region{
		RegionID:               region.ID,
		Code:                   region.Code,
		AvgMonthlyTransactions: region.AvgMonthlyTransactions,
		DemandScore:            region.DemandScore,
	}, capacities, s.policy)

	return &RegionalSummary{
		RegionID:               region.ID,
		RegionCode:             region.Code,
		RegionName:             region.Name,
		Province:               region.Province,
		BranchCount:            summary.BranchCount,
		TotalBranchCapacity:    summary.TotalBranchCapacity,
		AvgMonthlyTransactions: summary.AvgMonthlyTransactions,
		CapacityGap:            summary.CapacityGap,
		DemandCapacityRatio:    summary.DemandCapacityRatio,
		CoverageStatus:         summary.Status,
		CoverageRank:           coverage.Rank(summary.Status),
		DemandScore:            summary.DemandScore,
	}
}

// branchesByRegion loads the branch rows for a region set in one query and
// groups them by region id.
func branchesByRegion(dbc dbctx.Context, branchRepo repos.BranchRepo, regions []*types.Region) (map[uuid.UUID][]*types.Branch, error) {
	ids := make([]uuid.UUID, 0, len(regions))
	for _, r := range regions {
		ids = append(ids, r.ID)
	}
	rows, err := branchRepo.ListByRegionIDs(dbc, ids)
	if err != nil {
		return nil, err
	}
	byRegion := make(map[uuid.UUID][]*types.Branch, len(regions))
	for _, b := range rows {
		byRegion[b.RegionID] = append(byRegion[b.RegionID], b)
	}
	return byRegion, nil
}
