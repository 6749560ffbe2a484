package schema

// AnalysisResult is the analyzed outcome for one metric.
type AnalysisResult struct {
	Metric       MetricKey `json:"metric"`
	Pairs        int       `json:"pairs"` // pairs with a non-zero difference
	Zeros        int       `json:"zeros"` // pairs dropped because the difference is zero
	Statistic    float64   `json:"statistic"`
	PValue       float64   `json:"p_value"`
	EffectSize   float64   `json:"effect_size"` // z / sqrt(pairs)
	MedianBefore float64   `json:"median_before"`
	MedianAfter  float64   `json:"median_after"`
	Improved     int       `json:"improved"`
	Worsened     int       `json:"worsened"`
	Unchanged    int       `json:"unchanged"`
	Exact        bool      `json:"exact"` // exact distribution instead of the normal approximation
	Verdict      Verdict   `json:"verdict"`
}

// Significant reports whether the verdict rejects the null hypothesis.
func (r AnalysisResult) Significant() bool {
	return r.Verdict == VerdictImprovement || r.Verdict == VerdictRegression
}
