package core

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/claritylab/clarity/schema"
)

// Column orders for the CSV artifacts passed between stages. The
// filtered and sampled tables share one layout, so sample can copy
// rows through unchanged.
var (
	filteredCommitsHeader = []string{
		"sha", "pr_id", "repo", "message", "agent",
		"files_changed", "additions", "deletions",
	}

	metricRowsHeader = []string{
		"sha", "repo",
		"mi_before", "mi_after",
		"cc_before", "cc_after",
		"loc_before", "loc_after",
		"files_before", "files_after",
	}

	analysisResultsHeader = []string{
		"metric", "pairs", "zeros", "statistic", "p_value", "effect_size",
		"median_before", "median_after",
		"improved", "worsened", "unchanged", "exact", "verdict",
	}
)

// WriteFilteredCommitsCSV writes qualifying commits to path, one row
// per commit in the given order.
func WriteFilteredCommitsCSV(commits []schema.FilteredCommit, path string) error {
	rows := make([][]string, 0, len(commits))
	for _, c := range commits {
		rows = append(rows, []string{
			c.SHA,
			strconv.FormatInt(c.PRID, 10),
			c.Repo,
			c.Message,
			c.Agent,
			strconv.Itoa(c.FilesChanged),
			strconv.FormatInt(c.Additions, 10),
			strconv.FormatInt(c.Deletions, 10),
		})
	}
	return writeCSVFile(path, filteredCommitsHeader, rows)
}

// ReadFilteredCommitsCSV reads a filtered or sampled commit table,
// preserving row order.
func ReadFilteredCommitsCSV(path string) ([]schema.FilteredCommit, error) {
	index, records, err := readCSVTable(path)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(path, index, filteredCommitsHeader); err != nil {
		return nil, err
	}

	commits := make([]schema.FilteredCommit, 0, len(records))
	for i, rec := range records {
		r := fieldReader{path: path, index: index, rec: rec, line: i + 2}
		commit := schema.FilteredCommit{
			SHA:          r.Text("sha"),
			PRID:         r.Int64("pr_id"),
			Repo:         r.Text("repo"),
			Message:      r.Text("message"),
			Agent:        r.Text("agent"),
			FilesChanged: r.Int("files_changed"),
			Additions:    r.Int64("additions"),
			Deletions:    r.Int64("deletions"),
		}
		if r.err != nil {
			return nil, r.err
		}
		commits = append(commits, commit)
	}
	return commits, nil
}

// WriteMetricRowsCSV writes per-commit metric rows to path.
func WriteMetricRowsCSV(rows []schema.CommitMetricRow, path string) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			row.SHA,
			row.Repo,
			formatFloat(row.MIBefore),
			formatFloat(row.MIAfter),
			formatFloat(row.CCBefore),
			formatFloat(row.CCAfter),
			formatFloat(row.LOCBefore),
			formatFloat(row.LOCAfter),
			strconv.Itoa(row.FilesBefore),
			strconv.Itoa(row.FilesAfter),
		})
	}
	return writeCSVFile(path, metricRowsHeader, records)
}

// ReadMetricRowsCSV reads the per-commit metric table written by collect.
func ReadMetricRowsCSV(path string) ([]schema.CommitMetricRow, error) {
	index, records, err := readCSVTable(path)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(path, index, metricRowsHeader); err != nil {
		return nil, err
	}

	rows := make([]schema.CommitMetricRow, 0, len(records))
	for i, rec := range records {
		r := fieldReader{path: path, index: index, rec: rec, line: i + 2}
		row := schema.CommitMetricRow{
			SHA:         r.Text("sha"),
			Repo:        r.Text("repo"),
			MIBefore:    r.Float("mi_before"),
			MIAfter:     r.Float("mi_after"),
			CCBefore:    r.Float("cc_before"),
			CCAfter:     r.Float("cc_after"),
			LOCBefore:   r.Float("loc_before"),
			LOCAfter:    r.Float("loc_after"),
			FilesBefore: r.Int("files_before"),
			FilesAfter:  r.Int("files_after"),
		}
		if r.err != nil {
			return nil, r.err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteAnalysisResultsCSV writes the per-metric test results to path.
// Undefined values, such as the statistic of a degenerate test, are
// written as NaN.
func WriteAnalysisResultsCSV(results []schema.AnalysisResult, path string) error {
	records := make([][]string, 0, len(results))
	for _, res := range results {
		records = append(records, []string{
			string(res.Metric),
			strconv.Itoa(res.Pairs),
			strconv.Itoa(res.Zeros),
			formatFloat(res.Statistic),
			formatFloat(res.PValue),
			formatFloat(res.EffectSize),
			formatFloat(res.MedianBefore),
			formatFloat(res.MedianAfter),
			strconv.Itoa(res.Improved),
			strconv.Itoa(res.Worsened),
			strconv.Itoa(res.Unchanged),
			strconv.FormatBool(res.Exact),
			string(res.Verdict),
		})
	}
	return writeCSVFile(path, analysisResultsHeader, records)
}

// formatFloat renders a float with the shortest digits that round-trip,
// so artifact files stay byte-stable across runs.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// writeCSVFile writes a header and rows to path, replacing any
// existing file.
func writeCSVFile(path string, header []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header to %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write rows to %s: %w", path, err)
	}
	return nil
}

// readCSVTable reads path into a column index and data rows. A missing
// file maps to schema.DataNotFoundError so callers can treat absent
// inputs as fatal.
func readCSVTable(path string) (map[string]int, [][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, &schema.DataNotFoundError{Path: path, Err: err}
		}
		return nil, nil, err
	}
	defer func() { _ = file.Close() }()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) == 0 {
		// No header row. requireColumns reports the first missing column.
		return map[string]int{}, nil, nil
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[name] = i
	}
	return index, records[1:], nil
}

// requireColumns checks that every named column exists in the index.
func requireColumns(path string, index map[string]int, names []string) error {
	for _, name := range names {
		if _, ok := index[name]; !ok {
			return &schema.SchemaMismatchError{Path: path, Column: name}
		}
	}
	return nil
}

// fieldReader resolves named columns in one CSV record and remembers
// the first parse failure, so row decoding stays flat.
type fieldReader struct {
	path  string
	index map[string]int
	rec   []string
	line  int
	err   error
}

// Text returns the raw value of the named column.
func (f *fieldReader) Text(name string) string {
	return f.rec[f.index[name]]
}

// Int parses the named column as an int.
func (f *fieldReader) Int(name string) int {
	if f.err != nil {
		return 0
	}
	v, err := strconv.Atoi(f.Text(name))
	if err != nil {
		f.err = fmt.Errorf("%s line %d: bad %s: %w", f.path, f.line, name, err)
	}
	return v
}

// Int64 parses the named column as an int64.
func (f *fieldReader) Int64(name string) int64 {
	if f.err != nil {
		return 0
	}
	v, err := strconv.ParseInt(f.Text(name), 10, 64)
	if err != nil {
		f.err = fmt.Errorf("%s line %d: bad %s: %w", f.path, f.line, name, err)
	}
	return v
}

// Float parses the named column as a float64.
func (f *fieldReader) Float(name string) float64 {
	if f.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(f.Text(name), 64)
	if err != nil {
		f.err = fmt.Errorf("%s line %d: bad %s: %w", f.path, f.line, name, err)
	}
	return v
}
