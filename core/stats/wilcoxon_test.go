package stats

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claritylab/clarity/schema"
)

// signedRankCases are hand-verified fixtures: rank sums derived on paper,
// p-values cross-checked numerically under both methods.
var signedRankCases = []struct {
	name    string
	before  []float64
	after   []float64
	n       int
	zeros   int
	wPlus   float64
	wMinus  float64
	stat    float64
	z       float64
	pApprox float64
	pExact  float64
}{
	{
		name:   "tied improvement",
		before: []float64{60, 65, 70},
		after:  []float64{70, 75, 72},
		n:      3,
		wPlus:  6, wMinus: 0, stat: 0,
		z:       1.6329931619,
		pApprox: 0.1024704349,
		pExact:  0.25,
	},
	{
		name:   "mixed signs",
		before: []float64{0, 0, 0, 0, 0},
		after:  []float64{1, -2, 3, -4, 5},
		n:      5,
		wPlus:  9, wMinus: 6, stat: 6,
		z:       0.4045199175,
		pApprox: 0.6858304345,
		pExact:  0.8125,
	},
	{
		name:   "textbook pairs with one zero",
		before: []float64{125, 115, 130, 140, 140, 115, 140, 125, 140, 135},
		after:  []float64{110, 122, 125, 120, 140, 124, 123, 137, 135, 145},
		n:      9,
		zeros:  1,
		wPlus:  18, wMinus: 27, stat: 18,
		z:       -0.5335822501,
		pApprox: 0.5936305914,
		pExact:  0.6328125,
	},
	{
		name:   "uniform improvement",
		before: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		after:  []float64{2, 4, 6, 8, 10, 12, 14, 16, 18, 20},
		n:      10,
		wPlus:  55, wMinus: 0, stat: 0,
		z:       2.8030595529,
		pApprox: 0.0050620321,
		pExact:  0.001953125,
	},
}

// TestSignedRankApprox checks rank sums, the tie-corrected z score and
// the normal-approximation p-value against the verified fixtures.
func TestSignedRankApprox(t *testing.T) {
	for _, tt := range signedRankCases {
		t.Run(tt.name, func(t *testing.T) {
			res, err := SignedRank(tt.before, tt.after, schema.ApproxMethod)
			require.NoError(t, err)

			assert.Equal(t, tt.n, res.N)
			assert.Equal(t, tt.zeros, res.Zeros)
			assert.Equal(t, tt.wPlus, res.WPlus)
			assert.Equal(t, tt.wMinus, res.WMinus)
			assert.Equal(t, tt.stat, res.Statistic)
			assert.InDelta(t, tt.z, res.Z, 1e-9)
			assert.InDelta(t, tt.pApprox, res.PValue, 1e-9)
			assert.False(t, res.Exact)

			// Dropping zeros keeps the rank sums complementary.
			assert.Equal(t, float64(res.N*(res.N+1)/2), res.WPlus+res.WMinus)
		})
	}
}

// TestSignedRankExact checks the doubled-rank enumeration, which returns
// dyadic p-values the fixtures pin exactly.
func TestSignedRankExact(t *testing.T) {
	for _, tt := range signedRankCases {
		t.Run(tt.name, func(t *testing.T) {
			res, err := SignedRank(tt.before, tt.after, schema.ExactMethod)
			require.NoError(t, err)

			assert.Equal(t, tt.stat, res.Statistic)
			assert.InDelta(t, tt.pExact, res.PValue, 1e-12)
			assert.InDelta(t, tt.z, res.Z, 1e-9)
			assert.True(t, res.Exact)
		})
	}
}

// TestSignedRankAuto checks the cutover between the exact distribution
// and the normal approximation.
func TestSignedRankAuto(t *testing.T) {
	build := func(n int) (before, after []float64) {
		for i := range n {
			before = append(before, float64(i))
			after = append(after, float64(i)+float64(i+1))
		}
		return before, after
	}

	small, err := SignedRank(signedRankCases[0].before, signedRankCases[0].after, schema.AutoMethod)
	require.NoError(t, err)
	assert.True(t, small.Exact)
	assert.InDelta(t, signedRankCases[0].pExact, small.PValue, 1e-12)

	before, after := build(25)
	atCutoff, err := SignedRank(before, after, schema.AutoMethod)
	require.NoError(t, err)
	assert.True(t, atCutoff.Exact)

	before, after = build(26)
	aboveCutoff, err := SignedRank(before, after, schema.AutoMethod)
	require.NoError(t, err)
	assert.False(t, aboveCutoff.Exact)
}

// TestSignedRankAllZeroDifferences checks that identical samples report
// the degenerate sentinel instead of a statistic.
func TestSignedRankAllZeroDifferences(t *testing.T) {
	res, err := SignedRank([]float64{3, 3, 3}, []float64{3, 3, 3}, schema.AutoMethod)
	require.ErrorIs(t, err, ErrAllZeroDifferences)
	assert.Equal(t, 0, res.N)
	assert.Equal(t, 3, res.Zeros)

	_, err = SignedRank(nil, nil, schema.AutoMethod)
	require.ErrorIs(t, err, ErrAllZeroDifferences)
}

// TestSignedRankLengthMismatch checks the guard on unpaired samples.
func TestSignedRankLengthMismatch(t *testing.T) {
	_, err := SignedRank([]float64{1, 2}, []float64{1}, schema.AutoMethod)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "differ in length")
}

// FuzzSignedRank fuzzes the test with parsed float pairs and checks the
// p-value range and rank sum identity on every defined result.
func FuzzSignedRank(f *testing.F) {
	seeds := [][2]string{
		{"60,65,70", "70,75,72"},
		{"1,2,3,4,5", "5,4,3,2,1"},
		{"0,0,0", "0,0,0"},
		{"1.5,2.5", "2.5,1.5"},
		{"", ""},
	}
	for _, seed := range seeds {
		f.Add(seed[0], seed[1])
	}

	f.Fuzz(func(t *testing.T, beforeCSV, afterCSV string) {
		before := parseFloats(beforeCSV)
		after := parseFloats(afterCSV)
		n := min(len(before), len(after))
		res, err := SignedRank(before[:n], after[:n], schema.AutoMethod)
		if err != nil {
			return
		}
		assert.GreaterOrEqual(t, res.PValue, 0.0)
		assert.LessOrEqual(t, res.PValue, 1.0)
		assert.Equal(t, math.Min(res.WPlus, res.WMinus), res.Statistic)
		assert.InDelta(t, float64(res.N*(res.N+1)/2), res.WPlus+res.WMinus, 1e-9)
	})
}

// parseFloats keeps the finite comma-separated values of s.
func parseFloats(s string) []float64 {
	var values []float64
	for part := range strings.SplitSeq(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		values = append(values, v)
	}
	return values
}
