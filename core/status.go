package core

import (
	"encoding/csv"
	"os"
	"strings"

	"github.com/claritylab/clarity/internal/contract"
	"github.com/claritylab/clarity/internal/parquet"
	"github.com/claritylab/clarity/schema"
)

// CollectArtifactStatuses stats every pipeline artifact for the status
// report, raw inputs first, stage outputs in pipeline order after. A
// missing file is reported, not an error.
func CollectArtifactStatuses(cfg *contract.Config) []schema.ArtifactStatus {
	artifacts := []struct {
		name string
		path string
	}{
		{"commits", cfg.CommitsPath},
		{"pull requests", cfg.PullRequestsPath},
		{"commit details", cfg.CommitDetailsPath},
		{"filtered commits (csv)", cfg.FilteredCSVPath},
		{"filtered commits (parquet)", cfg.FilteredParquetPath},
		{"sampled commits", cfg.SampledCSVPath},
		{"commit metrics", cfg.MetricsCSVPath},
		{"analysis results", cfg.AnalysisCSVPath},
	}

	statuses := make([]schema.ArtifactStatus, 0, len(artifacts))
	for _, a := range artifacts {
		status := schema.ArtifactStatus{Name: a.name, Path: a.path, Rows: -1}
		if info, err := os.Stat(a.path); err == nil {
			status.Exists = true
			status.Modified = info.ModTime()
			status.Rows = countArtifactRows(a.path)
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// countArtifactRows counts the data rows in one artifact. CSV rows go
// through the csv reader because commit messages span lines; Parquet
// counts come from the file footer. Unknown is -1.
func countArtifactRows(path string) int64 {
	if strings.HasSuffix(path, ".parquet") {
		n, err := parquet.RowCount(path)
		if err != nil {
			return -1
		}
		return n
	}

	f, err := os.Open(path)
	if err != nil {
		return -1
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var records int64
	for {
		if _, err := reader.Read(); err != nil {
			break
		}
		records++
	}
	if records == 0 {
		return 0
	}
	return records - 1 // the header row is not data
}
