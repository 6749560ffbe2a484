package schema

import "time"

// FileMetric holds the static measurements for one file snapshot.
type FileMetric struct {
	MI           float64 // maintainability index on the 0..100 scale
	CC           int     // cyclomatic complexity summed over functions
	LOC          int     // physical lines
	SLOC         int     // lines that are neither blank nor comment-only
	LLOC         int     // logical lines (statement count)
	CommentLines int
	BlankLines   int
	Volume       float64 // Halstead volume
	Difficulty   float64 // Halstead difficulty
	Effort       float64 // Halstead effort
}

// CommitMetricRow is the per-commit output of the collect stage. Metric
// values are means across the files measured on each side of the commit.
type CommitMetricRow struct {
	SHA         string
	Repo        string
	MIBefore    float64
	MIAfter     float64
	CCBefore    float64
	CCAfter     float64
	LOCBefore   float64
	LOCAfter    float64
	FilesBefore int
	FilesAfter  int
}

// Values returns the before and after value of one metric.
func (r CommitMetricRow) Values(m MetricKey) (before, after float64) {
	switch m {
	case MetricCC:
		return r.CCBefore, r.CCAfter
	case MetricLOC:
		return r.LOCBefore, r.LOCAfter
	default:
		return r.MIBefore, r.MIAfter
	}
}

// CollectSummary aggregates the outcome of one collect run.
type CollectSummary struct {
	Sampled        int                `json:"sampled"`
	Succeeded      int                `json:"succeeded"`
	Resumed        int                `json:"resumed"` // rows reused from the checkpoint store
	Skipped        map[SkipReason]int `json:"skipped"`
	FileFetchFails int                `json:"file_fetch_fails"` // file snapshots lost to retrieval errors
	FileParseFails int                `json:"file_parse_fails"` // file snapshots lost to computation errors
	Duration       time.Duration      `json:"duration_ns"`
}

// SkippedTotal returns the number of commits that produced no row.
func (s CollectSummary) SkippedTotal() int {
	total := 0
	for _, n := range s.Skipped {
		total += n
	}
	return total
}
