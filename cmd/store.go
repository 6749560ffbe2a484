package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/claritylab/clarity/internal/contract"
	"github.com/claritylab/clarity/internal/iostore"
	"github.com/claritylab/clarity/schema"
)

// storeSetup loads minimal configuration needed for store operations.
// This is used by commands that need store access without full shared setup.
func storeSetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get checkpoint-related config values
	storeBackend := schema.StoreBackend(viper.GetString("store-backend"))
	storeConnStr := viper.GetString("store-db-connect")
	if err := contract.ValidateDatabaseConnectionString(storeBackend, storeConnStr); err != nil {
		return err
	}

	// Run tracking is opt-in; an empty backend means none.
	runsBackendStr := viper.GetString("runs-backend")
	var runsBackend schema.StoreBackend
	if runsBackendStr == "" {
		runsBackend = schema.NoneBackend
	} else {
		runsBackend = schema.StoreBackend(runsBackendStr)
	}
	runsConnStr := viper.GetString("runs-db-connect")
	if err := contract.ValidateDatabaseConnectionString(runsBackend, runsConnStr); err != nil {
		return err
	}

	// Initialize both stores with the loaded config
	if err := iostore.InitStores(storeBackend, storeConnStr, runsBackend, runsConnStr); err != nil {
		return fmt.Errorf("failed to initialize stores: %w", err)
	}
	storeManager = iostore.Manager

	cfg.StoreBackend = storeBackend
	cfg.StoreDBConnect = storeConnStr
	cfg.RunsBackend = runsBackend
	cfg.RunsDBConnect = runsConnStr

	// Output settings drive the run list rendering and the export target.
	colors, err := contract.ParseBoolString(viper.GetString("color"))
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors
	cfg.Output = schema.OutputMode(viper.GetString("output"))
	cfg.OutputFile = viper.GetString("output-file")
	cfg.Precision = viper.GetInt("precision")
	cfg.Width = viper.GetInt("width")

	return nil
}

// storeCmd focused on checkpoint management.
//
// Note: store subcommands use minimal initialization (storeSetup) instead
// of the full sharedSetup used by pipeline stages. This avoids artifact
// path resolution and filter validation for simple store operations.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the commit checkpoint store (collect resume state)",
	Long: `Manage the checkpoint store that lets interrupted collect runs resume.

The collector checkpoints every finished commit row, keyed by a
fingerprint of the measurement settings. A resumed run reuses the rows
whose fingerprint still matches; changing extensions or the metrics
revision sidelines old rows automatically.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None

Subcommands:
  clear - Remove all checkpointed rows

Examples:
  # Force the next collect to remeasure everything
  clarity store clear`,
}

// storeClearCmd clears the checkpoint rows.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all checkpointed commit metric rows",
	Long: `Delete all checkpointed commit rows from the configured backend.

Use this when:
- Sampled commits must be remeasured from scratch
- The clone cache was rebuilt with different history
- Checkpoint data may be stale or corrupted

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the checkpoint table

Examples:
  # Clear SQLite checkpoints (default)
  clarity store clear

  # Clear MySQL checkpoints (set connection string via env variable)
  CLARITY_STORE_BACKEND=mysql CLARITY_STORE_DB_CONNECT="..." clarity store clear`,
	PreRunE: storeSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iostore.ClearCheckpoints(cfg.StoreBackend, contract.GetStoreDBFilePath(), cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear checkpoints", err)
		}
		fmt.Println("Checkpoints cleared successfully.")
	},
}
