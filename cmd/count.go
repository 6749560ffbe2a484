package cmd

import (
	"github.com/spf13/cobra"

	"github.com/claritylab/clarity/core"
	"github.com/claritylab/clarity/internal/contract"
)

// countCmd reports the qualifying-commit funnel without writing artifacts.
var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Count qualifying commits without writing any files.",
	Long: `Run the extraction filter and report the qualifying-commit funnel.

Applies the same inclusion rules as extract (merged pull request, allowed
source extension, at least one changed line) and prints how many rows and
commits survive each stage:
- Raw rows in the commits table
- Rows attached to a merged pull request
- Rows touching an allowed source extension
- Rows with a nonzero line delta
- Distinct commits, then the keyword and owner filters when enabled

No output files are written - this is purely informational.

Use this to:
- Size the dataset before running the full pipeline
- Judge how much a filter tightens the funnel
- Sanity-check a fresh data drop against the last one

Examples:
  # Report the funnel with default filters
  clarity count

  # See what keyword matching would keep
  clarity count --keyword-match

  # Count only Python changes
  clarity count --extensions .py`,
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCount(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot count qualifying commits", err)
		}
	},
}
