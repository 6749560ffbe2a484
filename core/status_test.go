package core

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claritylab/clarity/internal/parquet"
	"github.com/claritylab/clarity/schema"
)

// TestCollectArtifactStatusesMissing checks that a fresh data dir
// reports every artifact as absent instead of failing.
func TestCollectArtifactStatusesMissing(t *testing.T) {
	cfg := newStageConfig(t)

	statuses := CollectArtifactStatuses(cfg)

	require.Len(t, statuses, 8)
	assert.Equal(t, "commits", statuses[0].Name)
	assert.Equal(t, cfg.CommitsPath, statuses[0].Path)
	assert.Equal(t, "analysis results", statuses[7].Name)
	for _, status := range statuses {
		assert.False(t, status.Exists, status.Name)
		assert.Equal(t, int64(-1), status.Rows, status.Name)
	}
}

// TestCollectArtifactStatusesCounts checks row counting for both
// artifact encodings. The fixture messages span lines, so a naive
// line count would overcount the CSV.
func TestCollectArtifactStatusesCounts(t *testing.T) {
	cfg := newStageConfig(t)
	commits := sampleFilteredCommits()
	require.NoError(t, WriteFilteredCommitsCSV(commits, cfg.FilteredCSVPath))
	require.NoError(t, parquet.WriteFilteredCommitsParquet(commits, cfg.FilteredParquetPath))

	byName := make(map[string]schema.ArtifactStatus)
	for _, status := range CollectArtifactStatuses(cfg) {
		byName[status.Name] = status
	}

	csvStatus := byName["filtered commits (csv)"]
	assert.True(t, csvStatus.Exists)
	assert.Equal(t, int64(len(commits)), csvStatus.Rows)
	assert.WithinDuration(t, time.Now(), csvStatus.Modified, time.Minute)

	parquetStatus := byName["filtered commits (parquet)"]
	assert.True(t, parquetStatus.Exists)
	assert.Equal(t, int64(len(commits)), parquetStatus.Rows)

	assert.False(t, byName["commits"].Exists)
}

// TestCountArtifactRows covers the header and empty-file edges.
func TestCountArtifactRows(t *testing.T) {
	cfg := newStageConfig(t)

	require.NoError(t, WriteFilteredCommitsCSV(nil, cfg.FilteredCSVPath))
	assert.Equal(t, int64(0), countArtifactRows(cfg.FilteredCSVPath))

	require.NoError(t, os.WriteFile(cfg.SampledCSVPath, nil, 0o644))
	assert.Equal(t, int64(0), countArtifactRows(cfg.SampledCSVPath))
}
