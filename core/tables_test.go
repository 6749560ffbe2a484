package core

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claritylab/clarity/schema"
)

// sampleFilteredCommits returns a small commit list with awkward field
// content, like commas and newlines inside messages.
func sampleFilteredCommits() []schema.FilteredCommit {
	return []schema.FilteredCommit{
		{
			SHA:          "aaaa1111aaaa1111aaaa1111aaaa1111aaaa1111",
			PRID:         101,
			Repo:         "octo/widgets",
			Message:      "refactor: improve readability, simplify loop\n\nSecond paragraph.",
			Agent:        "human",
			FilesChanged: 2,
			Additions:    40,
			Deletions:    12,
		},
		{
			SHA:          "bbbb2222bbbb2222bbbb2222bbbb2222bbbb2222",
			PRID:         102,
			Repo:         "octo/gadgets",
			Message:      `say "hello"`,
			Agent:        "bot",
			FilesChanged: 1,
			Additions:    3,
			Deletions:    0,
		},
	}
}

// TestFilteredCommitsCSVRoundTrip checks that writing and reading the
// filtered table preserves every field, including quoted content.
func TestFilteredCommitsCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filtered_commits.csv")
	commits := sampleFilteredCommits()

	require.NoError(t, WriteFilteredCommitsCSV(commits, path))

	got, err := ReadFilteredCommitsCSV(path)
	require.NoError(t, err)
	assert.Equal(t, commits, got)
}

// TestFilteredCommitsCSVEmpty checks that an empty table still writes
// a header and reads back as zero rows.
func TestFilteredCommitsCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filtered_commits.csv")

	require.NoError(t, WriteFilteredCommitsCSV(nil, path))

	got, err := ReadFilteredCommitsCSV(path)
	require.NoError(t, err)
	assert.Empty(t, got)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sha,pr_id,repo,message,agent,files_changed,additions,deletions\n", string(content))
}

// TestReadFilteredCommitsCSVMissingFile checks the missing-input error.
func TestReadFilteredCommitsCSVMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.csv")

	_, err := ReadFilteredCommitsCSV(path)

	var notFound *schema.DataNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, path, notFound.Path)
}

// TestReadFilteredCommitsCSVMissingColumn checks that a table without
// a required column is rejected with the column name.
func TestReadFilteredCommitsCSVMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filtered_commits.csv")
	content := "sha,pr_id,repo,message,files_changed,additions,deletions\n" +
		"abc,1,octo/widgets,msg,1,2,3\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := ReadFilteredCommitsCSV(path)

	var mismatch *schema.SchemaMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "agent", mismatch.Column)
}

// TestReadFilteredCommitsCSVEmptyFile checks that a file without even
// a header is treated as a schema mismatch, not a crash.
func TestReadFilteredCommitsCSVEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filtered_commits.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := ReadFilteredCommitsCSV(path)

	var mismatch *schema.SchemaMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "sha", mismatch.Column)
}

// TestReadFilteredCommitsCSVBadNumber checks that a malformed numeric
// cell reports its line and column.
func TestReadFilteredCommitsCSVBadNumber(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filtered_commits.csv")
	content := "sha,pr_id,repo,message,agent,files_changed,additions,deletions\n" +
		"abc,1,octo/widgets,msg,human,1,forty,3\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := ReadFilteredCommitsCSV(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "bad additions")
}

// TestMetricRowsCSVRoundTrip checks that metric rows survive the trip
// through their CSV encoding bit for bit.
func TestMetricRowsCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commit_metrics.csv")
	rows := []schema.CommitMetricRow{
		{
			SHA:      "aaaa1111aaaa1111aaaa1111aaaa1111aaaa1111",
			Repo:     "octo/widgets",
			MIBefore: 61.123456789012345, MIAfter: 64.5,
			CCBefore: 12, CCAfter: 9.5,
			LOCBefore: 240, LOCAfter: 250.25,
			FilesBefore: 3, FilesAfter: 4,
		},
		{
			SHA:      "bbbb2222bbbb2222bbbb2222bbbb2222bbbb2222",
			Repo:     "octo/gadgets",
			MIBefore: 100, MIAfter: 0,
			FilesBefore: 1, FilesAfter: 1,
		},
	}

	require.NoError(t, WriteMetricRowsCSV(rows, path))

	got, err := ReadMetricRowsCSV(path)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

// TestReadMetricRowsCSVMissingColumn checks schema validation on the
// metric table.
func TestReadMetricRowsCSVMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commit_metrics.csv")
	content := "sha,repo,mi_before,mi_after\nabc,octo/widgets,1,2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := ReadMetricRowsCSV(path)

	var mismatch *schema.SchemaMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "cc_before", mismatch.Column)
}

// TestWriteAnalysisResultsCSV checks the analysis artifact layout and
// that undefined values render as NaN.
func TestWriteAnalysisResultsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis_results.csv")
	results := []schema.AnalysisResult{
		{
			Metric: schema.MetricMI, Pairs: 9, Zeros: 1,
			Statistic: 18, PValue: 0.6328125, EffectSize: -0.1778,
			MedianBefore: 132.5, MedianAfter: 124.5,
			Improved: 4, Worsened: 5, Unchanged: 1,
			Exact: true, Verdict: schema.VerdictNoDifference,
		},
		{
			Metric: schema.MetricCC, Zeros: 10,
			Statistic: math.NaN(), PValue: math.NaN(), EffectSize: math.NaN(),
			MedianBefore: 5, MedianAfter: 5,
			Unchanged: 10, Verdict: schema.VerdictDegenerate,
		},
	}

	require.NoError(t, WriteAnalysisResultsCSV(results, path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t,
		"metric,pairs,zeros,statistic,p_value,effect_size,median_before,median_after,improved,worsened,unchanged,exact,verdict",
		lines[0])
	assert.Contains(t, lines[1], "mi,9,1,18,0.6328125,")
	assert.Contains(t, lines[1], string(schema.VerdictNoDifference))
	assert.Contains(t, lines[2], "NaN,NaN,NaN")
	assert.Contains(t, lines[2], string(schema.VerdictDegenerate))
}

// TestFormatFloat checks the stable float rendering used in artifacts.
func TestFormatFloat(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{0, "0"},
		{1.5, "1.5"},
		{-2.25, "-2.25"},
		{1.0 / 3.0, "0.3333333333333333"},
		{math.NaN(), "NaN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatFloat(tt.value))
		})
	}
}

// TestRequireColumnsOrder checks that the first missing column in
// declaration order is the one reported.
func TestRequireColumnsOrder(t *testing.T) {
	index := map[string]int{"sha": 0, "repo": 1}

	err := requireColumns("x.csv", index, []string{"sha", "pr_id", "repo", "message"})

	var mismatch *schema.SchemaMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "pr_id", mismatch.Column)
	assert.Equal(t, "x.csv", mismatch.Path)
}
