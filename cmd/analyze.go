package cmd

import (
	"github.com/spf13/cobra"

	"github.com/claritylab/clarity/core"
	"github.com/claritylab/clarity/internal/contract"
)

// analyzeCmd runs the paired hypothesis tests.
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Test whether the sampled commits improved readability.",
	Long: `Run a paired two-sided Wilcoxon signed-rank test per metric.

Pairs the before/after columns of commit_metrics.csv and reports, for the
maintainability index, cyclomatic complexity, and line count:
- The test statistic W = min(W+, W-)
- The p-value (exact enumeration or tie-corrected normal approximation)
- The effect size r = z/sqrt(n)
- A verdict

Verdicts are directional: a higher maintainability index reads as
improvement, while higher complexity or line count reads as regression.
When every paired difference is zero the test is undefined and the
verdict says so explicitly.

Results are printed and persisted to analysis_results.csv.

Examples:
  # Analyze with the study defaults (alpha 0.05, approx method)
  clarity analyze

  # Exact p-values for small samples
  clarity analyze --method exact

  # Stricter significance level
  clarity analyze --alpha 0.01`,
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAnalyze(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run analysis", err)
		}
	},
}
