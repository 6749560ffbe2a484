// Package cmd defines the command-line interface for clarity.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/claritylab/clarity/internal/contract"
	"github.com/claritylab/clarity/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeClearCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("data-dir", contract.DefaultDataDir, "Directory holding the raw tables and stage outputs")
	rootCmd.PersistentFlags().String("commits-file", "", "Raw commits Parquet file (default commits.parquet under the data dir)")
	rootCmd.PersistentFlags().String("pull-requests-file", "", "Raw pull requests Parquet file (default pull_requests.parquet under the data dir)")
	rootCmd.PersistentFlags().String("commit-details-file", "", "Raw commit details Parquet file (default commit_details.parquet under the data dir)")
	rootCmd.PersistentFlags().String("repo-cache-dir", "", "Directory for cached repository clones (default repos under the data dir)")
	rootCmd.PersistentFlags().StringP("extensions", "e", strings.Join(contract.DefaultExtensions, ","), "Comma-separated source extensions that qualify a changed file")
	rootCmd.PersistentFlags().String("keywords", "", "Comma-separated message keywords (default: the readability keyword set)")
	rootCmd.PersistentFlags().Bool("keyword-match", false, "Keep only commits whose message matches a keyword")
	rootCmd.PersistentFlags().Bool("exclude-forks", false, "Keep only commits from the dominant repository owner")
	rootCmd.PersistentFlags().IntP("sample-size", "n", contract.DefaultSampleSize, "Number of commits to sample")
	rootCmd.PersistentFlags().Int64("sample-seed", contract.DefaultSampleSeed, "Seed for the sampling permutation")
	rootCmd.PersistentFlags().Float64("alpha", contract.DefaultAlpha, "Significance level for the signed-rank test")
	rootCmd.PersistentFlags().String("method", string(schema.ApproxMethod), "P-value method: approx or exact or auto")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("retry-attempts", contract.DefaultRetryAttempts, "Snapshot fetch attempts per operation")
	rootCmd.PersistentFlags().String("retrieval-timeout", contract.DefaultRetrievalTimeout, "Timeout per snapshot fetch attempt")
	rootCmd.PersistentFlags().Bool("resume", true, "Reuse checkpointed commits from earlier collect runs")
	rootCmd.PersistentFlags().String("notes", "", "Free-form note recorded with the collect run")
	rootCmd.PersistentFlags().String("output", string(schema.TableOut), "Output format: table or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Checkpoint backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("runs-backend", "", "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("runs-db-connect", "", "Database connection string for run tracking (must differ from store-db-connect)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of runsListCmd to Viper
	runsListCmd.Flags().IntP("limit", "l", contract.DefaultRunsLimit, "Number of runs to display (0 = all)")
	if err := viper.BindPFlags(runsListCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs list flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
