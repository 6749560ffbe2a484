package cmd

import (
	"github.com/spf13/cobra"

	"github.com/claritylab/clarity/core"
	"github.com/claritylab/clarity/internal/contract"
)

// collectCmd measures metrics for every sampled commit.
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Measure before/after readability metrics for the sampled commits.",
	Long: `Measure readability metrics for each sampled commit pair.

For every commit in sampled_commits.csv, fetches the changed files at the
commit and at its first parent from a local clone cache, computes the
maintainability index, cyclomatic complexity, and line count per
snapshot, and aggregates each side by mean into one row per commit in
commit_metrics.csv.

Failures stay local:
- A file that cannot be fetched or parsed is dropped from its side
- A commit with no valid before/after pair is skipped and counted
- The run summary reports totals by skip reason

Partial failures never fail the run; only missing inputs or broken
configuration do.

Finished commits are checkpointed under a fingerprint of the measurement
settings, so an interrupted run resumes where it stopped and a settings
change sidelines stale rows automatically.

Examples:
  # Collect with defaults (resume on, sqlite checkpoints)
  clarity collect

  # A big sample with run bookkeeping enabled
  clarity collect --workers 8 --runs-backend sqlite --notes "august drop"

  # Force a clean remeasure
  clarity store clear && clarity collect --resume=false`,
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCollect(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot collect commit metrics", err)
		}
	},
}
