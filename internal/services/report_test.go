package services

import (
	"testing"

	types "github.com/yungbote/branchpulse-backend/internal/domain"
)

func TestTransactionsPerStaff(t *testing.T) {
	b := &types.Branch{StaffCount: 10, MonthlyTransactions: 8000}
	if got := transactionsPerStaff(b); got != 800 {
		t.Fatalf("transactionsPerStaff = %v, want 800", got)
	}

	// A branch with no recorded staff carries its full volume as load.
	b = &types.Branch{StaffCount: 0, MonthlyTransactions: 8000}
	if got := transactionsPerStaff(b); got != 8000 {
		t.Fatalf("transactionsPerStaff zero staff = %v, want 8000", got)
	}
}

func TestClassifyBranchLoad(t *testing.T) {
	cases := []struct {
		perStaff     float64
		wantLevel    string
		wantSeverity int
	}{
		{950, BranchLoadCritical, 4},
		{900.01, BranchLoadCritical, 4},
		{900, BranchLoadHigh, 3},
		{750, BranchLoadHigh, 3},
		{700, BranchLoadModerate, 2},
		{550, BranchLoadModerate, 2},
		{500, BranchLoadNormal, 1},
		{120, BranchLoadNormal, 1},
		{0, BranchLoadNormal, 1},
	}
	for _, c := range cases {
		level, severity := classifyBranchLoad(c.perStaff)
		if level != c.wantLevel || severity != c.wantSeverity {
			t.Fatalf("classifyBranchLoad(%v) = %s/%d, want %s/%d",
				c.perStaff, level, severity, c.wantLevel, c.wantSeverity)
		}
	}
}
