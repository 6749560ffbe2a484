package cmd

import (
	"github.com/spf13/cobra"

	"github.com/claritylab/clarity/core"
	"github.com/claritylab/clarity/internal/contract"
)

// extractCmd filters the raw tables down to the qualifying commits.
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Filter the raw commit tables down to qualifying commits.",
	Long: `Filter the raw tables and write the qualifying commits as CSV and Parquet.

Reads the commits, pull requests, and commit details tables and keeps the
commit rows that belong to a merged pull request, touch an allowed source
extension, and change at least one line. Surviving rows are folded into
one record per commit, with pull request metadata and the full commit
message joined in.

Two optional narrowing filters:
- keyword matching restricts commits to readability-motivated messages
- fork exclusion keeps only the dominant repository owner

The filtered list is written twice with identical content:
- filtered_commits.csv, the input to the sampling stage
- filtered_commits.parquet, for columnar analytics

Examples:
  # Extract with defaults (.go sources, all owners)
  clarity extract

  # Restrict to readability-motivated messages
  clarity extract --keyword-match

  # Drop fork owners and widen the extension set
  clarity extract --exclude-forks --extensions .go,.py,.ts`,
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteExtract(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot extract qualifying commits", err)
		}
	},
}
