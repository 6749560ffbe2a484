package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/claritylab/clarity/internal/contract"
	"github.com/claritylab/clarity/schema"
)

// jsonAnalysisResult mirrors schema.AnalysisResult with nullable numeric
// fields. A degenerate test carries NaN values, which JSON numbers cannot
// encode.
type jsonAnalysisResult struct {
	Metric       schema.MetricKey `json:"metric"`
	Pairs        int              `json:"pairs"`
	Zeros        int              `json:"zeros"`
	Statistic    *float64         `json:"statistic"`
	PValue       *float64         `json:"p_value"`
	EffectSize   *float64         `json:"effect_size"`
	MedianBefore *float64         `json:"median_before"`
	MedianAfter  *float64         `json:"median_after"`
	Improved     int              `json:"improved"`
	Worsened     int              `json:"worsened"`
	Unchanged    int              `json:"unchanged"`
	Exact        bool             `json:"exact"`
	Verdict      schema.Verdict   `json:"verdict"`
}

// nullableFloat maps NaN to nil so the JSON encoder never sees it.
func nullableFloat(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// toJSONAnalysisResults converts results into their JSON render form.
func toJSONAnalysisResults(results []schema.AnalysisResult) []jsonAnalysisResult {
	out := make([]jsonAnalysisResult, len(results))
	for i, r := range results {
		out[i] = jsonAnalysisResult{
			Metric:       r.Metric,
			Pairs:        r.Pairs,
			Zeros:        r.Zeros,
			Statistic:    nullableFloat(r.Statistic),
			PValue:       nullableFloat(r.PValue),
			EffectSize:   nullableFloat(r.EffectSize),
			MedianBefore: nullableFloat(r.MedianBefore),
			MedianAfter:  nullableFloat(r.MedianAfter),
			Improved:     r.Improved,
			Worsened:     r.Worsened,
			Unchanged:    r.Unchanged,
			Exact:        r.Exact,
			Verdict:      r.Verdict,
		}
	}
	return out
}

// WriteAnalysisResults outputs the hypothesis test results, dispatching based on the output format configured.
func WriteAnalysisResults(results []schema.AnalysisResult, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, toJSONAnalysisResults(results))
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVAnalysis(w, results, fmtFloat, intFmt)
		}, "Wrote CSV")
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAnalysisTable(results, cfg, fmtFloat, intFmt, duration, w)
		}, "Wrote table")
	}
}

// dashOrFloat renders a possibly-NaN value for table cells.
func dashOrFloat(v float64, fmtFloat func(float64) string) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmtFloat(v)
}

// dashOrPValue renders a possibly-NaN p-value for table cells.
func dashOrPValue(p float64, precision int) string {
	if math.IsNaN(p) {
		return "-"
	}
	return FormatPValue(p, precision)
}

// writeAnalysisTable generates and writes the human-readable results table.
func writeAnalysisTable(results []schema.AnalysisResult, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	table.Header([]string{
		"Metric",
		"N",
		"W",
		"P-Value",
		"Effect (r)",
		"Median Before",
		"Median After",
		"Improved",
		"Worsened",
		"Unchanged",
		"Verdict",
	})

	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, r := range results {
		verdict := contract.GetPlainVerdict(r.Verdict)
		if cfg.UseColors {
			verdict = contract.GetColorVerdict(r.Verdict)
		}
		row := []string{
			strings.ToUpper(string(r.Metric)),
			fmt.Sprintf(intFmt, r.Pairs),
			dashOrFloat(r.Statistic, fmtFloat),
			dashOrPValue(r.PValue, cfg.Precision),
			dashOrFloat(r.EffectSize, fmtFloat),
			dashOrFloat(r.MedianBefore, fmtFloat),
			dashOrFloat(r.MedianAfter, fmtFloat),
			fmt.Sprintf(intFmt, r.Improved),
			fmt.Sprintf(intFmt, r.Worsened),
			fmt.Sprintf(intFmt, r.Unchanged),
			verdict,
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	// Compute summary stats
	significant := 0
	for _, r := range results {
		if r.Significant() {
			significant++
		}
	}
	if _, err := fmt.Fprintf(writer, "Significant at alpha %s: %d of %d metrics\n", fmtFloat(cfg.Alpha), significant, len(results)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Analysis completed in %v. Method: %s\n", duration, cfg.Method); err != nil {
		return err
	}
	return nil
}

// writeCSVAnalysis writes the test results in CSV format.
func writeCSVAnalysis(w io.Writer, results []schema.AnalysisResult, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"metric",
		"pairs",
		"zeros",
		"statistic",
		"p_value",
		"effect_size",
		"median_before",
		"median_after",
		"improved",
		"worsened",
		"unchanged",
		"exact",
		"verdict",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range results {
			rec := []string{
				string(r.Metric),
				fmt.Sprintf(intFmt, r.Pairs),
				fmt.Sprintf(intFmt, r.Zeros),
				fmtFloat(r.Statistic),
				fmtFloat(r.PValue),
				fmtFloat(r.EffectSize),
				fmtFloat(r.MedianBefore),
				fmtFloat(r.MedianAfter),
				fmt.Sprintf(intFmt, r.Improved),
				fmt.Sprintf(intFmt, r.Worsened),
				fmt.Sprintf(intFmt, r.Unchanged),
				strconv.FormatBool(r.Exact),
				contract.GetPlainVerdict(r.Verdict),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
