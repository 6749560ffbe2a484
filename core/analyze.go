package core

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/claritylab/clarity/core/stats"
	"github.com/claritylab/clarity/internal/contract"
	"github.com/claritylab/clarity/internal/outwriter"
	"github.com/claritylab/clarity/schema"
)

// ExecuteAnalyze runs the paired signed-rank test for every metric
// over the collected rows and writes the per-metric results.
func ExecuteAnalyze(_ context.Context, cfg *contract.Config) error {
	start := time.Now()

	rows, err := ReadMetricRowsCSV(cfg.MetricsCSVPath)
	if err != nil {
		return err
	}

	results := make([]schema.AnalysisResult, 0, len(schema.AllMetricKeys))
	for _, metric := range schema.AllMetricKeys {
		results = append(results, analyzeMetric(metric, rows, cfg))
	}

	if err := WriteAnalysisResultsCSV(results, cfg.AnalysisCSVPath); err != nil {
		return err
	}
	outwriter.NoteArtifact("analysis results", cfg.AnalysisCSVPath)

	duration := time.Since(start)
	ow := outwriter.NewOutWriter()
	return ow.WriteAnalysis(results, cfg, duration)
}

// analyzeMetric tests one metric across all commit rows. A test where
// every difference is zero keeps its undefined fields as NaN and is
// reported with a degenerate verdict instead of failing the stage.
func analyzeMetric(metric schema.MetricKey, rows []schema.CommitMetricRow, cfg *contract.Config) schema.AnalysisResult {
	before := make([]float64, 0, len(rows))
	after := make([]float64, 0, len(rows))
	for _, row := range rows {
		b, a := row.Values(metric)
		before = append(before, b)
		after = append(after, a)
	}

	result := schema.AnalysisResult{
		Metric:       metric,
		MedianBefore: median(before),
		MedianAfter:  median(after),
	}
	result.Improved, result.Worsened, result.Unchanged = countDirections(metric, before, after)

	test, err := stats.SignedRank(before, after, cfg.Method)
	if err != nil {
		// Equal-length inputs only fail when every difference is zero.
		contract.LogWarn("analysis", &schema.DegenerateTestError{Metric: metric, Pairs: len(before)})
		result.Zeros = test.Zeros
		result.Statistic = math.NaN()
		result.PValue = math.NaN()
		result.EffectSize = math.NaN()
		result.Verdict = schema.VerdictDegenerate
		return result
	}

	result.Pairs = test.N
	result.Zeros = test.Zeros
	result.Statistic = test.Statistic
	result.PValue = test.PValue
	result.EffectSize = test.Z / math.Sqrt(float64(test.N))
	result.Exact = test.Exact
	result.Verdict = verdictFor(metric, test, cfg.Alpha, before, after)
	return result
}

// verdictFor turns a test outcome into a verdict. Direction comes from
// the median non-zero difference, falling back to the sign of the
// z-score when that median lands on zero.
func verdictFor(metric schema.MetricKey, test stats.TestResult, alpha float64, before, after []float64) schema.Verdict {
	if test.PValue >= alpha {
		return schema.VerdictNoDifference
	}

	diffs := make([]float64, 0, len(before))
	for i := range before {
		if d := after[i] - before[i]; d != 0 {
			diffs = append(diffs, d)
		}
	}
	direction := median(diffs)
	if direction == 0 {
		direction = test.Z
	}

	if (direction > 0) == schema.HigherIsBetter(metric) {
		return schema.VerdictImprovement
	}
	return schema.VerdictRegression
}

// countDirections tallies pairs by whether the change reads as an
// improvement for this metric.
func countDirections(metric schema.MetricKey, before, after []float64) (improved, worsened, unchanged int) {
	for i := range before {
		d := after[i] - before[i]
		switch {
		case d == 0:
			unchanged++
		case (d > 0) == schema.HigherIsBetter(metric):
			improved++
		default:
			worsened++
		}
	}
	return improved, worsened, unchanged
}

// median returns the middle value of the data, averaging the two
// middle values for even lengths. An empty slice yields NaN.
func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
