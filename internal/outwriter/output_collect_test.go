package outwriter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claritylab/clarity/internal/contract"
	"github.com/claritylab/clarity/schema"
)

func collectSummaryFixture() schema.CollectSummary {
	return schema.CollectSummary{
		Sampled:   231,
		Succeeded: 220,
		Resumed:   100,
		Skipped: map[schema.SkipReason]int{
			schema.SkipFetchFailure: 5,
			schema.SkipParseFailure: 2,
			schema.SkipEmptyPair:    4,
		},
		FileFetchFails: 9,
		FileParseFails: 3,
		Duration:       90 * time.Second,
	}
}

func TestBuildCollectOutcomes(t *testing.T) {
	outcomes := buildCollectOutcomes(collectSummaryFixture())

	require.Len(t, outcomes, 3+len(schema.AllSkipReasons))
	assert.Equal(t, "sampled", outcomes[0].Outcome)
	assert.Equal(t, 231, outcomes[0].Commits)
	assert.Equal(t, "succeeded", outcomes[1].Outcome)
	assert.Equal(t, "resumed from checkpoints", outcomes[2].Outcome)

	// Skip reasons keep their declared order.
	assert.Equal(t, "skipped: fetch_failure", outcomes[3].Outcome)
	assert.Equal(t, 5, outcomes[3].Commits)
	assert.Equal(t, "skipped: parse_failure", outcomes[4].Outcome)
	assert.Equal(t, "skipped: empty_pair", outcomes[5].Outcome)
}

func TestBuildCollectOutcomesNilMap(t *testing.T) {
	outcomes := buildCollectOutcomes(schema.CollectSummary{Sampled: 10})

	// A summary without a skip map still renders every reason as zero.
	require.Len(t, outcomes, 3+len(schema.AllSkipReasons))
	for _, o := range outcomes[3:] {
		assert.Equal(t, 0, o.Commits)
	}
}

func TestWriteCollectSummaryReportTable(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "summary.txt")
	cfg := &contract.Config{
		Output:       schema.TableOut,
		OutputFile:   tmpFile,
		Precision:    3,
		Workers:      4,
		StoreBackend: schema.SQLiteBackend,
	}

	err := WriteCollectSummaryReport(collectSummaryFixture(), cfg)
	require.NoError(t, err)

	content, err := os.ReadFile(tmpFile)
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "sampled")
	assert.Contains(t, text, "231")
	assert.Contains(t, text, "File-level failures: 9 fetch, 3 parse")
	assert.Contains(t, text, "Collection completed in 1m30s with 4 workers. Store backend: sqlite")
}

func TestWriteCollectSummaryReportCSV(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "summary.csv")
	cfg := &contract.Config{
		Output:     schema.CSVOut,
		OutputFile: tmpFile,
		Precision:  3,
	}

	err := WriteCollectSummaryReport(collectSummaryFixture(), cfg)
	require.NoError(t, err)

	content, err := os.ReadFile(tmpFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 7) // header + 3 totals + 3 skip reasons
	assert.Equal(t, "outcome,commits", lines[0])
	assert.Equal(t, "sampled,231", lines[1])
	assert.Equal(t, "skipped: empty_pair,4", lines[6])
}
