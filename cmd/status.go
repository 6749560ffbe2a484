package cmd

import (
	"github.com/spf13/cobra"

	"github.com/claritylab/clarity/core"
	"github.com/claritylab/clarity/internal/contract"
	"github.com/claritylab/clarity/internal/iostore"
	"github.com/claritylab/clarity/internal/outwriter"
)

// statusCmd inspects pipeline artifacts and configured stores.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display pipeline artifact and store status.",
	Long: `Show the state of every pipeline artifact and configured store.

Displays one row per stage artifact (raw tables and stage outputs) with
path, row count, and modification time, plus one row per configured
store (checkpoints, runs) with backend, row count, and entry age.

Read-only: nothing is fetched, computed, or written.

Use this to:
- See which stages have run against the current data dir
- Verify the stores are connected and growing
- Spot stale artifacts after a data drop

Examples:
  # Human-readable tables
  clarity status

  # Machine-readable status for scripts
  clarity status --output json`,
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		artifacts := core.CollectArtifactStatuses(cfg)
		stores := iostore.CollectStoreStatuses(storeManager)
		ow := outwriter.NewOutWriter()
		if err := ow.WriteStatus(artifacts, stores, cfg); err != nil {
			contract.LogFatal("Cannot write status report", err)
		}
	},
}
