package coverage_forecast

import (
	"fmt"

	"github.com/google/uuid"

	jobrt "github.com/yungbote/branchpulse-backend/internal/jobs/runtime"
	"github.com/yungbote/branchpulse-backend/internal/platform/dbctx"
)

func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	runID, ok := jc.PayloadUUID("analysis_run_id")
	if !ok || runID == uuid.Nil {
		jc.Fail("validate", fmt.Errorf("missing analysis_run_id"))
		return nil
	}

	jc.Progress("start", 2, "Starting coverage analysis")
	run, stats, err := p.analysis.Execute(dbctx.New(jc.Ctx), runID, jc.Progress)
	if err != nil {
		jc.Fail("execute", err)
		return nil
	}

	jc.Succeed("done", map[string]any{
		"analysis_run_id":     runID.String(),
		"status":              run.Status,
		"regions_total":       stats.RegionsTotal,
		"regions_flagged":     stats.RegionsFlagged,
		"regions_forecasted":  stats.RegionsForecasted,
		"regions_skipped":     stats.RegionsSkipped,
		"high_growth_regions": stats.HighGrowthRegions,
		"recommendations":     stats.Recommendations,
	})
	return nil
}
