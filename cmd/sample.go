package cmd

import (
	"github.com/spf13/cobra"

	"github.com/claritylab/clarity/core"
	"github.com/claritylab/clarity/internal/contract"
)

// sampleCmd draws the reproducible study sample.
var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Draw a reproducible uniform sample of filtered commits.",
	Long: `Sample the filtered commits uniformly without replacement.

Draws from filtered_commits.csv using a seeded permutation, so the same
input and seed always produce byte-identical output. When the filtered
list has no more commits than the sample size, the whole list passes
through unchanged.

The sampled list keeps the input ordering and is written to
sampled_commits.csv, the input to the collect stage.

Examples:
  # Default study size (231 commits, seed 42)
  clarity sample

  # A smaller pilot sample
  clarity sample --sample-size 50

  # Re-draw with a different seed
  clarity sample --sample-seed 7`,
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSample(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot sample filtered commits", err)
		}
	},
}
