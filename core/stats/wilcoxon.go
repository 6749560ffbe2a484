// Package stats implements the paired test behind the analysis stage:
// the two-sided Wilcoxon signed-rank test with average ranks, a
// tie-corrected normal approximation and an exact small-sample
// distribution.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/claritylab/clarity/schema"
)

// ErrAllZeroDifferences reports a test where no non-zero paired
// differences remain, which leaves the statistic undefined.
var ErrAllZeroDifferences = errors.New("all paired differences are zero")

// exactCutoff is the largest sample size where the auto method picks the
// exact distribution over the normal approximation.
const exactCutoff = 25

// TestResult holds the outcome of one signed-rank test.
type TestResult struct {
	N         int     // pairs remaining after zero differences are dropped
	Zeros     int     // dropped zero differences
	WPlus     float64 // rank sum of positive differences
	WMinus    float64 // rank sum of negative differences
	Statistic float64 // min(WPlus, WMinus)
	Z         float64 // normal score of WPlus; positive when after tends larger
	PValue    float64 // two-sided
	Exact     bool    // PValue came from the exact distribution
}

// SignedRank runs the two-sided Wilcoxon signed-rank test on paired
// samples. Differences are after minus before; zero differences are
// dropped before ranking. The z score is always computed from the
// tie-corrected normal approximation, without continuity correction, so
// callers can derive direction and effect size under either method.
func SignedRank(before, after []float64, method schema.TestMethod) (TestResult, error) {
	if len(before) != len(after) {
		return TestResult{}, fmt.Errorf("paired samples differ in length: %d vs %d", len(before), len(after))
	}

	diffs := make([]float64, 0, len(before))
	zeros := 0
	for i := range before {
		d := after[i] - before[i]
		if d == 0 {
			zeros++
			continue
		}
		diffs = append(diffs, d)
	}

	n := len(diffs)
	if n == 0 {
		return TestResult{Zeros: zeros}, ErrAllZeroDifferences
	}

	ranks, tieCorrection := rankAbsolute(diffs)

	var wPlus, wMinus float64
	for i, d := range diffs {
		if d > 0 {
			wPlus += ranks[i]
		} else {
			wMinus += ranks[i]
		}
	}

	res := TestResult{
		N:         n,
		Zeros:     zeros,
		WPlus:     wPlus,
		WMinus:    wMinus,
		Statistic: math.Min(wPlus, wMinus),
	}

	mean := float64(n) * float64(n+1) / 4
	variance := float64(n)*float64(n+1)*float64(2*n+1)/24 - tieCorrection/48
	res.Z = (wPlus - mean) / math.Sqrt(variance)

	if method == schema.ExactMethod || (method == schema.AutoMethod && n <= exactCutoff) {
		res.PValue = exactPValue(ranks, res.Statistic)
		res.Exact = true
	} else {
		res.PValue = 2 * distuv.UnitNormal.Survival(math.Abs(res.Z))
	}
	return res, nil
}

// rankAbsolute assigns average ranks by ascending absolute value and
// returns the tie correction term sum(t^3 - t) over the tie groups.
func rankAbsolute(diffs []float64) ([]float64, float64) {
	n := len(diffs)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return math.Abs(diffs[order[i]]) < math.Abs(diffs[order[j]])
	})

	ranks := make([]float64, n)
	var correction float64
	for start := 0; start < n; {
		end := start + 1
		for end < n && math.Abs(diffs[order[end]]) == math.Abs(diffs[order[start]]) {
			end++
		}
		// Positions start..end-1 hold ranks start+1..end.
		avg := float64(start+end+1) / 2
		for k := start; k < end; k++ {
			ranks[order[k]] = avg
		}
		t := float64(end - start)
		correction += t*t*t - t
		start = end
	}
	return ranks, correction
}

// exactPValue computes the two-sided p-value from the exact distribution
// of the positive rank sum over all sign assignments. Ranks are doubled
// so tied average ranks stay integral, then tallied with a subset-sum
// convolution.
func exactPValue(ranks []float64, statistic float64) float64 {
	total := 0
	doubled := make([]int, len(ranks))
	for i, r := range ranks {
		doubled[i] = int(math.Round(2 * r))
		total += doubled[i]
	}
	target := min(int(math.Round(2*statistic)), total)

	counts := make([]float64, total+1)
	counts[0] = 1
	for _, d := range doubled {
		for s := total; s >= d; s-- {
			counts[s] += counts[s-d]
		}
	}

	var below float64
	for s := 0; s <= target; s++ {
		below += counts[s]
	}
	p := 2 * below / math.Exp2(float64(len(ranks)))
	return math.Min(p, 1)
}
