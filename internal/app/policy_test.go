package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/yungbote/branchpulse-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func TestLoadPolicies_Defaults(t *testing.T) {
	policies, err := LoadPolicies(testLogger(t), "")
	if err != nil {
		t.Fatalf("LoadPolicies: %v", err)
	}
	if policies.Coverage.UnderservedRatioMin != 2.0 {
		t.Fatalf("UnderservedRatioMin = %v, want 2.0", policies.Coverage.UnderservedRatioMin)
	}
	if policies.Planning.TransactionsPerBranch != 10000 {
		t.Fatalf("TransactionsPerBranch = %v, want 10000", policies.Planning.TransactionsPerBranch)
	}
}

func TestLoadPolicies_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	contents := `
coverage:
  underserved_ratio_min: 3.5
planning:
  transactions_per_staff: 750
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write policy file: %v", err)
	}

	policies, err := LoadPolicies(testLogger(t), path)
	if err != nil {
		t.Fatalf("LoadPolicies: %v", err)
	}
	if policies.Coverage.UnderservedRatioMin != 3.5 {
		t.Fatalf("UnderservedRatioMin = %v, want 3.5", policies.Coverage.UnderservedRatioMin)
	}
	// Untouched keys keep their defaults.
	if policies.Coverage.OversuppliedRatioMax != 0.5 {
		t.Fatalf("OversuppliedRatioMax = %v, want 0.5", policies.Coverage.OversuppliedRatioMax)
	}
	if policies.Planning.TransactionsPerStaff != 750 {
		t.Fatalf("TransactionsPerStaff = %v, want 750", policies.Planning.TransactionsPerStaff)
	}
	if policies.Planning.HighDemandScoreMin != 2.5 {
		t.Fatalf("HighDemandScoreMin = %v, want 2.5", policies.Planning.HighDemandScoreMin)
	}
}

func TestLoadPolicies_MissingFile(t *testing.T) {
	if _, err := LoadPolicies(testLogger(t), "/nonexistent/policy.yaml"); err == nil {
		t.Fatal("expected error for missing policy file")
	}
}
