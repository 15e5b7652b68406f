package coverage

import (
	"github.com/google/uuid"
)

const (
	StatusNoCoverage   = "No Coverage"
	StatusUnderserved  = "Underserved"
	StatusBalanced     = "Balanced"
	StatusOversupplied = "Oversupplied"
)

// Rank orders coverage statuses by severity for reporting, 1 being the most
// severe. Unknown statuses sort last.
func Rank(status string) int {
	switch status {
	case StatusNoCoverage:
		return 1
	case StatusUnderserved:
		return 2
	case StatusBalanced:
		return 3
	case StatusOversupplied:
		return 4
	default:
		return 5
	}
}

// Policy carries the classification thresholds. Zero values fall back to the
// defaults at classification time.
type Policy struct {
	// UnderservedRatioMin flags a region once the demand/capacity ratio is
	// strictly above this value. A ratio exactly at the bound stays Balanced.
	UnderservedRatioMin float64
	// OversuppliedRatioMax flags a region once the ratio is strictly below
	// this value. A ratio exactly at the bound stays Balanced.
	OversuppliedRatioMax float64
	// CapacityFloor is the minimum denominator for the demand/capacity ratio.
	CapacityFloor float64
}

func DefaultPolicy() Policy {
	return Policy{
		UnderservedRatioMin:  2.0,
		OversuppliedRatioMax: 0.5,
		CapacityFloor:        1.0,
	}
}

// Region is the demand side of a classification. Values arrive already
// validated from the ingestion boundary.
type Region struct {
	RegionID               uuid.UUID
	Code                   string
	AvgMonthlyTransactions float64
	DemandScore            float64
}

// Branch is one capacity contribution to a region.
type Branch struct {
	MonthlyTransactions float64
}

// Summary is the classification result for one region: a view over the
// Region and Branch inputs, recomputed fresh each run.
type Summary struct {
	RegionID               uuid.UUID
	Code                   string
	BranchCount            int
	TotalBranchCapacity    float64
	AvgMonthlyTransactions float64
	CapacityGap            float64
	DemandCapacityRatio    float64
	Status                 string
	DemandScore            float64
}

// Classify aggregates branch capacity for one region and labels its coverage.
// Pure function: identical inputs always yield an identical summary.
func Classify(region Region, branches []Branch, policy Policy) Summary {
	if policy.UnderservedRatioMin <= 0 {
		policy.UnderservedRatioMin = 2.0
	}
	if policy.OversuppliedRatioMax <= 0 {
		policy.OversuppliedRatioMax = 0.5
	}
	if policy.CapacityFloor <= 0 {
		policy.CapacityFloor = 1.0
	}

	capacity := 0.0
	for _, b := range branches {
		capacity += b.MonthlyTransactions
	}

	ratio := safeRatio(region.AvgMonthlyTransactions, capacity, policy.CapacityFloor)

	status := StatusBalanced
	switch {
	case len(branches) == 0:
		status = StatusNoCoverage
	case ratio > policy.UnderservedRatioMin:
		status = StatusUnderserved
	case ratio < policy.OversuppliedRatioMax:
		status = StatusOversupplied
	}

	return Summary{
		RegionID:               region.RegionID,
		Code:                   region.Code,
		BranchCount:            len(branches),
		TotalBranchCapacity:    capacity,
		AvgMonthlyTransactions: region.AvgMonthlyTransactions,
		CapacityGap:            region.AvgMonthlyTransactions - capacity,
		DemandCapacityRatio:    ratio,
		Status:                 status,
		DemandScore:            region.DemandScore,
	}
}

// safeRatio divides numerator by denominator, flooring the denominator at
// epsilonFloor.
func safeRatio(numerator, denominator, epsilonFloor float64) float64 {
	if denominator < epsilonFloor {
		denominator = epsilonFloor
	}
	return numerator / denominator
}
