package outwriter

import (
	"encoding/json"
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

func funnelFixture() schema.FilterFunnel {
	return schema.FilterFunnel{
		FileRows:       1000,
		MergedRows:     800,
		ExtensionRows:  400,
		NontrivialRows: 380,
		Commits:        250,
		KeywordCommits: 90,
		OwnerCommits:   80,
	}
}

func TestBuildFunnelReport(t *testing.T) {
	tests := []struct {
		name         string
		keywordMatch bool
		excludeForks bool
		wantStages   int
		wantFinal    int
	}{
		{
			name:       "row filters only",
			wantStages: 5,
			wantFinal:  250,
		},
		{
			name:         "with keyword filter",
			keywordMatch: true,
			wantStages:   6,
			wantFinal:    90,
		},
		{
			name:         "with keyword and fork filters",
			keywordMatch: true,
			excludeForks: true,
			wantStages:   7,
			wantFinal:    80,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &contract.Config{KeywordMatch: tt.keywordMatch, ExcludeForks: tt.excludeForks}
			report := buildFunnelReport(funnelFixture(), cfg)

			assert.Len(t, report.Stages, tt.wantStages)
			assert.Equal(t, tt.wantFinal, report.Qualifying)
		})
	}
}

func TestBuildFunnelReportPercentages(t *testing.T) {
	cfg := &contract.Config{KeywordMatch: true}
	report := buildFunnelReport(funnelFixture(), cfg)

	// The first stage has nothing to compare against.
	assert.Nil(t, report.Stages[0].KeptPct)

	require.NotNil(t, report.Stages[1].KeptPct)
	assert.InDelta(t, 80.0, *report.Stages[1].KeptPct, 1e-9)

	require.NotNil(t, report.Stages[2].KeptPct)
	assert.InDelta(t, 50.0, *report.Stages[2].KeptPct, 1e-9)

	// Grouping rows into commits crosses units, so no ratio there.
	assert.Equal(t, "commits", report.Stages[4].Unit)
	assert.Nil(t, report.Stages[4].KeptPct)

	// The keyword stage compares commits against commits again.
	require.NotNil(t, report.Stages[5].KeptPct)
	assert.InDelta(t, 36.0, *report.Stages[5].KeptPct, 1e-9)
}

func TestBuildFunnelReportEmptyInput(t *testing.T) {
	cfg := &contract.Config{}
	report := buildFunnelReport(schema.FilterFunnel{}, cfg)

	assert.Equal(t, 0, report.Qualifying)
	for _, stage := range report.Stages[1:] {
		// Zero previous counts must not produce a ratio.
		assert.Nil(t, stage.KeptPct)
	}
}

func TestWriteFunnelReportTable(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "funnel.txt")
	cfg := &contract.Config{
		Output:     schema.TableOut,
		OutputFile: tmpFile,
		Precision:  1,
	}

	err := WriteFunnelReport(funnelFixture(), cfg, 42*time.Millisecond)
	require.NoError(t, err)

	content, err := os.ReadFile(tmpFile)
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "file-change rows")
	assert.Contains(t, text, "1000")
	assert.Contains(t, text, "250 commits qualify for extraction")
	assert.Contains(t, text, "Counted in 42ms")
}

func TestWriteFunnelReportCSV(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "funnel.csv")
	cfg := &contract.Config{
		Output:     schema.CSVOut,
		OutputFile: tmpFile,
		Precision:  3,
	}

	err := WriteFunnelReport(funnelFixture(), cfg, time.Second)
	require.NoError(t, err)

	content, err := os.ReadFile(tmpFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 6) // header + 5 stages
	assert.Equal(t, "stage,unit,count,kept_pct", lines[0])
	assert.Equal(t, "file-change rows,rows,1000,", lines[1])
	assert.Equal(t, "merged pull request,rows,800,80.000", lines[2])
}

func TestWriteFunnelReportJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "funnel.json")
	cfg := &contract.Config{
		Output:     schema.JSONOut,
		OutputFile: tmpFile,
		Precision:  3,
	}

	err := WriteFunnelReport(funnelFixture(), cfg, time.Second)
	require.NoError(t, err)

	content, err := os.ReadFile(tmpFile)
	require.NoError(t, err)

	var report struct {
		Stages []struct {
			Stage string `json:"stage"`
			Count int    `json:"count"`
		} `json:"stages"`
		Qualifying int `json:"qualifying"`
	}
	require.NoError(t, json.Unmarshal(content, &report))
	assert.Equal(t, 250, report.Qualifying)
	require.Len(t, report.Stages, 5)
	assert.Equal(t, "distinct commits", report.Stages[4].Stage)
}
