package iostore

import (
	"errors"
	"fmt"

	"github.com/claritylab/clarity/internal/parquet"
)

// ExecuteStoreExport writes the contents of the configured stores to
// Parquet files, one per store, named after the output file prefix.
func ExecuteStoreExport(outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export")
	}

	checkpoints := Manager.GetCheckpointStore()
	runs := Manager.GetRunStore()
	if checkpoints == nil && runs == nil {
		return errors.New("no stores configured to export")
	}

	exportedAny := false

	if checkpoints != nil {
		// An empty fingerprint exports rows from every configuration
		rows, err := checkpoints.All("")
		if err != nil {
			return fmt.Errorf("failed to retrieve checkpoint rows: %w", err)
		}
		if len(rows) > 0 {
			target := outputFile + ".commit_metrics.parquet"
			if err := parquet.WriteMetricRowsParquet(parquet.ConvertMetricRows(rows), target); err != nil {
				return fmt.Errorf("failed to write checkpoint rows: %w", err)
			}
			fmt.Printf("Exported %d checkpoint rows to: %s\n", len(rows), target)
			exportedAny = true
		}
	}

	if runs != nil {
		records, err := runs.ListRuns(0)
		if err != nil {
			return fmt.Errorf("failed to retrieve run records: %w", err)
		}
		if len(records) > 0 {
			target := outputFile + ".collector_runs.parquet"
			if err := parquet.WriteRunRowsParquet(parquet.ConvertRunRecords(records), target); err != nil {
				return fmt.Errorf("failed to write run records: %w", err)
			}
			fmt.Printf("Exported %d run records to: %s\n", len(records), target)
			exportedAny = true
		}
	}

	if !exportedAny {
		return errors.New("no store data found to export")
	}

	return nil
}
