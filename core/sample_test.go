package core

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claritylab/clarity/schema"
)

// makeCommitList builds n distinct commits in a recognizable order.
func makeCommitList(n int) []schema.FilteredCommit {
	commits := make([]schema.FilteredCommit, 0, n)
	for i := range n {
		commits = append(commits, schema.FilteredCommit{
			SHA:          fmt.Sprintf("%040d", i),
			PRID:         int64(i + 1),
			Repo:         "octo/widgets",
			Message:      fmt.Sprintf("change %d", i),
			Agent:        "human",
			FilesChanged: 1,
			Additions:    int64(i),
			Deletions:    1,
		})
	}
	return commits
}

// TestSampleCommitsSize verifies that the sample size is the smaller
// of the requested size and the input size.
func TestSampleCommitsSize(t *testing.T) {
	tests := []struct {
		name  string
		input int
		n     int
		want  int
	}{
		{name: "empty input", input: 0, n: 10, want: 0},
		{name: "input below sample size", input: 9, n: 10, want: 9},
		{name: "input at sample size", input: 10, n: 10, want: 10},
		{name: "input above sample size", input: 11, n: 10, want: 10},
		{name: "input far above sample size", input: 300, n: 10, want: 10},
		{name: "default study size", input: 500, n: 231, want: 231},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sampled := sampleCommits(makeCommitList(tt.input), tt.n, 42)
			assert.Len(t, sampled, tt.want)
		})
	}
}

// TestSampleCommitsSmallInputPassesThrough verifies that an input at or
// below the sample size is returned unchanged.
func TestSampleCommitsSmallInputPassesThrough(t *testing.T) {
	commits := makeCommitList(5)

	sampled := sampleCommits(commits, 10, 42)

	assert.Equal(t, commits, sampled)
}

// TestSampleCommitsDeterministic verifies that one seed always draws
// the same commits.
func TestSampleCommitsDeterministic(t *testing.T) {
	commits := makeCommitList(100)

	first := sampleCommits(commits, 20, 42)
	second := sampleCommits(commits, 20, 42)
	other := sampleCommits(commits, 20, 43)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
}

// TestSampleCommitsPreservesOrder verifies that sampled commits keep
// their relative input order and stay unique.
func TestSampleCommitsPreservesOrder(t *testing.T) {
	commits := makeCommitList(100)

	sampled := sampleCommits(commits, 30, 42)

	require.Len(t, sampled, 30)
	seen := make(map[string]bool)
	prev := ""
	for _, c := range sampled {
		assert.False(t, seen[c.SHA], "duplicate commit %s", c.SHA)
		seen[c.SHA] = true
		// Zero-padded SHAs sort like their indices.
		assert.Greater(t, c.SHA, prev)
		prev = c.SHA
	}
}

// TestExecuteSampleWritesIdenticalFiles verifies that repeated runs
// over the same input produce a byte-identical sampled file.
func TestExecuteSampleWritesIdenticalFiles(t *testing.T) {
	cfg := newStageConfig(t)
	cfg.SampleSize = 20
	require.NoError(t, WriteFilteredCommitsCSV(makeCommitList(100), cfg.FilteredCSVPath))

	require.NoError(t, ExecuteSample(context.Background(), cfg))
	first, err := os.ReadFile(cfg.SampledCSVPath)
	require.NoError(t, err)

	require.NoError(t, ExecuteSample(context.Background(), cfg))
	second, err := os.ReadFile(cfg.SampledCSVPath)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// TestExecuteSampleSmallInput verifies that a filtered list below the
// sample size is copied through whole.
func TestExecuteSampleSmallInput(t *testing.T) {
	cfg := newStageConfig(t)
	commits := makeCommitList(7)
	require.NoError(t, WriteFilteredCommitsCSV(commits, cfg.FilteredCSVPath))

	require.NoError(t, ExecuteSample(context.Background(), cfg))

	sampled, err := ReadFilteredCommitsCSV(cfg.SampledCSVPath)
	require.NoError(t, err)
	assert.Equal(t, commits, sampled)
}

// TestExecuteSampleMissingInput verifies the fatal missing-input path.
func TestExecuteSampleMissingInput(t *testing.T) {
	cfg := newStageConfig(t)

	err := ExecuteSample(context.Background(), cfg)

	var notFound *schema.DataNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, cfg.FilteredCSVPath, notFound.Path)
}
