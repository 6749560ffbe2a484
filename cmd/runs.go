package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/claritylab/clarity/internal/contract"
	"github.com/claritylab/clarity/internal/iostore"
	"github.com/claritylab/clarity/internal/outwriter"
	"github.com/claritylab/clarity/schema"
)

// runsMigrateSetup loads minimal configuration for migrate operations.
// This is a specialized setup that does NOT initialize stores or create
// tables, allowing migrations to run on a fresh database.
func runsMigrateSetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Run tracking is opt-in; an empty backend means none.
	backendStr := viper.GetString("runs-backend")
	var backend schema.StoreBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.StoreBackend(backendStr)
	}

	connStr := viper.GetString("runs-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetRunsDBFilePath()
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr

	return nil
}

// runsCmd focused on collector run bookkeeping.
//
// Note: runs subcommands use minimal initialization (storeSetup) instead
// of the full sharedSetup used by pipeline stages. This avoids artifact
// path resolution and filter validation for simple store operations.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage collector run bookkeeping",
	Long: `Manage the history of tracked collect runs.

When run tracking is enabled (runs-backend), every collect invocation
records a begin/end row with its totals: sampled, succeeded, resumed,
and skipped by reason. The history shows how collection health moves
across dataset drops.

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled)

Subcommands:
  list    - Show recent runs
  export  - Export runs and checkpoints to Parquet
  clear   - Remove all run history
  migrate - Run database schema migrations

Examples:
  # Track runs in SQLite, then inspect them
  clarity collect --runs-backend sqlite
  clarity runs list`,
}

// runsListCmd lists tracked runs.
var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show tracked collect runs, newest first",
	Long: `List tracked collect runs from the configured runs backend.

Displays run id, start time, duration, sampled/succeeded/resumed totals,
skipped count, worker count, and notes. An unfinished run (interrupted
before its end record) shows a dash for its duration.

Examples:
  # The most recent runs
  clarity runs list

  # Everything, as CSV
  clarity runs list --limit 0 --output csv`,
	PreRunE: storeSetup,
	Run: func(_ *cobra.Command, _ []string) {
		records, err := storeManager.GetRunStore().ListRuns(viper.GetInt("limit"))
		if err != nil {
			contract.LogFatal("Failed to list runs", err)
		}
		ow := outwriter.NewOutWriter()
		if err := ow.WriteRuns(records, cfg); err != nil {
			contract.LogFatal("Cannot write run list", err)
		}
	},
}

// runsExportCmd exports store contents to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history and checkpoint rows to Parquet",
	Long: `Export the configured stores to Parquet format for analytics tools.

Writes one Parquet file per non-empty store next to the output file
prefix:
- <output-file>.collector_runs.parquet
- <output-file>.commit_metrics.parquet

Parquet format enables fast querying with DuckDB, pandas, or Spark, and
keeps the full checkpoint rows (per-commit metric values) alongside the
run history.

Requires: --output-file parameter

Examples:
  # Export everything for DuckDB/pandas
  clarity runs export --output-file clarity-data

  # Query the result
  duckdb -c "SELECT * FROM read_parquet('clarity-data.collector_runs.parquet')"`,
	PreRunE: storeSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iostore.ExecuteStoreExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export store data", err)
		}
	},
}

// runsClearCmd clears the run history.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all tracked run history",
	Long: `Delete every run record from the configured runs backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the runs and migration tables

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  clarity runs export --output-file backup
  clarity runs clear`,
	PreRunE: storeSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iostore.ClearRuns(cfg.RunsBackend, contract.GetRunsDBFilePath(), cfg.RunsDBConnect); err != nil {
			contract.LogFatal("Failed to clear run history", err)
		}
		fmt.Println("Run history cleared successfully.")
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run store.

Opening the run store migrates to the latest version automatically, so
this command exists for the other directions: pinning a specific
version, rolling back, or repairing a dirty migration state.

By default, migrates to the latest version. Use --target-version for
specific versions.

Examples:
  # Migrate to latest version (default)
  clarity runs migrate

  # Migrate to specific version
  clarity runs migrate --target-version 1

  # Rollback to initial state
  clarity runs migrate --target-version 0`,
	PreRunE: runsMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iostore.MigrateRuns(cfg.RunsBackend, cfg.RunsDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
