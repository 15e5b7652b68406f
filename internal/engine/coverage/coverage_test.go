package coverage

import (
	"testing"
)

func TestClassify_NoBranchesIsNoCoverage(t *testing.T) {
	s := Classify(Region{AvgMonthlyTransactions: 200000}, nil, DefaultPolicy())
	if s.Status != StatusNoCoverage {
		t.Fatalf("expected %q got %q", StatusNoCoverage, s.Status)
	}
	if s.BranchCount != 0 || s.TotalBranchCapacity != 0 {
		t.Fatalf("expected empty capacity, got count=%d capacity=%v", s.BranchCount, s.TotalBranchCapacity)
	}
	if s.CapacityGap != 200000 {
		t.Fatalf("unexpected capacity gap: %v", s.CapacityGap)
	}
}

func TestClassify_UnderservedAboveRatioBound(t *testing.T) {
	branches := []Branch{{MonthlyTransactions: 50000}}
	s := Classify(Region{Code: "RG001", AvgMonthlyTransactions: 200000, DemandScore: 3.1}, branches, DefaultPolicy())
	if s.Status != StatusUnderserved {
		t.Fatalf("expected %q got %q", StatusUnderserved, s.Status)
	}
	if s.DemandCapacityRatio != 4.0 {
		t.Fatalf("unexpected ratio: %v", s.DemandCapacityRatio)
	}
	if s.CapacityGap != 150000 {
		t.Fatalf("unexpected gap: %v", s.CapacityGap)
	}
}

func TestClassify_OversuppliedBelowRatioBound(t *testing.T) {
	s := Classify(Region{AvgMonthlyTransactions: 40000}, []Branch{{MonthlyTransactions: 100000}}, DefaultPolicy())
	if s.Status != StatusOversupplied {
		t.Fatalf("expected %q got %q", StatusOversupplied, s.Status)
	}
}

func TestClassify_RatioBoundsAreStrict(t *testing.T) {
	s := Classify(Region{AvgMonthlyTransactions: 100000}, []Branch{{MonthlyTransactions: 50000}}, DefaultPolicy())
	if s.Status != StatusBalanced {
		t.Fatalf("ratio 2.0: expected %q got %q", StatusBalanced, s.Status)
	}
	s = Classify(Region{AvgMonthlyTransactions: 50000}, []Branch{{MonthlyTransactions: 100000}}, DefaultPolicy())
	if s.Status != StatusBalanced {
		t.Fatalf("ratio 0.5: expected %q got %q", StatusBalanced, s.Status)
	}
}

func TestClassify_CapacityGapIsExact(t *testing.T) {
	branches := []Branch{{MonthlyTransactions: 100000.25}, {MonthlyTransactions: 3456.25}}
	s := Classify(Region{AvgMonthlyTransactions: 123456.5}, branches, DefaultPolicy())
	if s.BranchCount != 2 {
		t.Fatalf("unexpected branch count: %d", s.BranchCount)
	}
	if s.TotalBranchCapacity != 103456.5 {
		t.Fatalf("unexpected capacity: %v", s.TotalBranchCapacity)
	}
	if s.CapacityGap != 20000 {
		t.Fatalf("unexpected gap: %v", s.CapacityGap)
	}
}

func TestClassify_IsIdempotent(t *testing.T) {
	region := Region{Code: "RG001", AvgMonthlyTransactions: 180000, DemandScore: 2.2}
	branches := []Branch{{MonthlyTransactions: 60000}, {MonthlyTransactions: 25000}}
	a := Classify(region, branches, DefaultPolicy())
	b := Classify(region, branches, DefaultPolicy())
	if a != b {
		t.Fatalf("expected identical summaries, got %#v vs %#v", a, b)
	}
}

func TestClassify_ZeroPolicyFallsBackToDefaults(t *testing.T) {
	s := Classify(Region{AvgMonthlyTransactions: 200000}, []Branch{{MonthlyTransactions: 50000}}, Policy{})
	if s.Status != StatusUnderserved {
		t.Fatalf("expected %q got %q", StatusUnderserved, s.Status)
	}
}

func TestSafeRatio_FloorsDenominator(t *testing.T) {
	if got := safeRatio(200000, 0, 1.0); got != 200000 {
		t.Fatalf("unexpected ratio: %v", got)
	}
	if got := safeRatio(10, 4, 1.0); got != 2.5 {
		t.Fatalf("unexpected ratio: %v", got)
	}
}

func TestRank_OrdersBySeverity(t *testing.T) {
	if Rank(StatusNoCoverage) != 1 || Rank(StatusUnderserved) != 2 || Rank(StatusBalanced) != 3 || Rank(StatusOversupplied) != 4 {
		t.Fatalf("unexpected ranks")
	}
	if Rank("bogus") <= Rank(StatusOversupplied) {
		t.Fatalf("unknown status should sort last")
	}
}
