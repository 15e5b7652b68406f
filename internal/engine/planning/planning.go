package planning

import (
	"fmt"
	"math"
)

const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// PriorityOrder sorts priority levels for reporting, High first. Unknown
// levels sort last.
func PriorityOrder(level string) int {
	switch level {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// Policy carries the capacity planning constants. Zero values fall back to
// the defaults at planning time.
type Policy struct {
	// TransactionsPerBranch is the monthly throughput one new branch absorbs.
	TransactionsPerBranch float64
	// TransactionsPerStaff is the monthly throughput one additional staff
	// member absorbs.
	TransactionsPerStaff float64
	// HighDemandScoreMin and MediumDemandScoreMin are strict lower bounds on
	// demand score for the High and Medium tiers.
	HighDemandScoreMin   float64
	MediumDemandScoreMin float64
}

func DefaultPolicy() Policy {
	return Policy{
		TransactionsPerBranch: 10000,
		TransactionsPerStaff:  600,
		HighDemandScoreMin:    2.5,
		MediumDemandScoreMin:  2.0,
	}
}

// Input is the planning view of one region: current capacity from its
// coverage summary, the final projected month from its forecast, and the
// region's externally supplied demand score.
type Input struct {
	TotalBranchCapacity float64
	FinalForecastValue  float64
	DemandScore         float64
}

// Recommendation is the planner output for one region.
type Recommendation struct {
	ProjectedGap      float64
	BranchesNeeded    int
	StaffNeeded       int
	PriorityLevel     string
	RecommendedAction string
}

// Plan converts a projected capacity gap into branch and staffing counts and
// a priority tier. Counts are floored at zero; the planner never recommends
// removing capacity.
func Plan(input Input, policy Policy) Recommendation {
	if policy.TransactionsPerBranch <= 0 {
		policy.TransactionsPerBranch = 10000
	}
	if policy.TransactionsPerStaff <= 0 {
		policy.TransactionsPerStaff = 600
	}
	if policy.HighDemandScoreMin <= 0 {
		policy.HighDemandScoreMin = 2.5
	}
	if policy.MediumDemandScoreMin <= 0 {
		policy.MediumDemandScoreMin = 2.0
	}

	gap := input.FinalForecastValue - input.TotalBranchCapacity
	branches := nonNegativeCount(gap, policy.TransactionsPerBranch)
	staff := nonNegativeCount(gap, policy.TransactionsPerStaff)

	level := PriorityLow
	switch {
	case input.DemandScore > policy.HighDemandScoreMin:
		level = PriorityHigh
	case input.DemandScore > policy.MediumDemandScoreMin:
		level = PriorityMedium
	}

	return Recommendation{
		ProjectedGap:      gap,
		BranchesNeeded:    branches,
		StaffNeeded:       staff,
		PriorityLevel:     level,
		RecommendedAction: actionText(branches),
	}
}

// nonNegativeCount rounds gap/divisor to the nearest whole unit, floored at
// zero.
func nonNegativeCount(gap, divisor float64) int {
	if gap <= 0 {
		return 0
	}
	return int(math.Round(gap / divisor))
}

func actionText(branchesNeeded int) string {
	switch {
	case branchesNeeded > 3:
		return "Open 3-4 new branches immediately"
	case branchesNeeded > 1:
		return fmt.Sprintf("Open %d new branches", branchesNeeded)
	default:
		return "Increase staffing in existing branches"
	}
}
