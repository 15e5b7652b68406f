package app

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/branchpulse-backend/internal/engine/coverage"
	"github.com/yungbote/branchpulse-backend/internal/engine/planning"
	"github.com/yungbote/branchpulse-backend/internal/platform/logger"
)

// Policies are the engine thresholds the pipeline runs under: defaults,
// optionally layered with a YAML file named by POLICY_PATH.
type Policies struct {
	Coverage coverage.Policy
	Planning planning.Policy
}

type policyFile struct {
	Coverage struct {
		UnderservedRatioMin  *float64 `yaml:"underserved_ratio_min"`
		OversuppliedRatioMax *float64 `yaml:"oversupplied_ratio_max"`
		CapacityFloor        *float64 `yaml:"capacity_floor"`
	} `yaml:"coverage"`
	Planning struct {
		TransactionsPerBranch *float64 `yaml:"transactions_per_branch"`
		TransactionsPerStaff  *float64 `yaml:"transactions_per_staff"`
		HighDemandScoreMin    *float64 `yaml:"high_demand_score_min"`
		MediumDemandScoreMin  *float64 `yaml:"medium_demand_score_min"`
	} `yaml:"planning"`
}

// LoadPolicies returns the default engine policies overlaid with any values
// present in the YAML file at path. Empty path means defaults.
func LoadPolicies(log *logger.Logger, path string) (Policies, error) {
	policies := Policies{
		Coverage: coverage.DefaultPolicy(),
		Planning: planning.DefaultPolicy(),
	}
	if path == "" {
		return policies, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return policies, fmt.Errorf("read policy file: %w", err)
	}
	var file policyFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return policies, fmt.Errorf("parse policy file: %w", err)
	}

	if v := file.Coverage.UnderservedRatioMin; v != nil {
		policies.Coverage.UnderservedRatioMin = *v
	}
	if v := file.Coverage.OversuppliedRatioMax; v != nil {
		policies.Coverage.OversuppliedRatioMax = *v
	}
	if v := file.Coverage.CapacityFloor; v != nil {
		policies.Coverage.CapacityFloor = *v
	}
	if v := file.Planning.TransactionsPerBranch; v != nil {
		policies.Planning.TransactionsPerBranch = *v
	}
	if v := file.Planning.TransactionsPerStaff; v != nil {
		policies.Planning.TransactionsPerStaff = *v
	}
	if v := file.Planning.HighDemandScoreMin; v != nil {
		policies.Planning.HighDemandScoreMin = *v
	}
	if v := file.Planning.MediumDemandScoreMin; v != nil {
		policies.Planning.MediumDemandScoreMin = *v
	}

	log.Info("Loaded engine policy overrides", "path", path)
	return policies, nil
}
