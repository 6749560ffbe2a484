// Package parquet provides data structures and functions for reading the
// raw commit tables and exporting pipeline data to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/claritylab/clarity/schema"
)

// CommitRow is one changed-file row of the commits input table.
type CommitRow struct {
	// PRID references the pull request the commit belongs to
	PRID int64 `parquet:"pr_id,snappy"`

	// SHA is the full commit hash
	SHA string `parquet:"sha,snappy"`

	// Repo is the owner/name slug of the repository
	Repo string `parquet:"repo,snappy"`

	// Filename is the path of the changed file
	Filename string `parquet:"filename,snappy"`

	// Additions is the number of added lines for this file
	Additions int64 `parquet:"additions,snappy"`

	// Deletions is the number of deleted lines for this file
	Deletions int64 `parquet:"deletions,snappy"`

	// Status is the change type reported for the file (A, M, D, R)
	Status string `parquet:"status,snappy"`
}

// PullRequestRow is one row of the pull request metadata table.
type PullRequestRow struct {
	// ID is the unique pull request identifier
	ID int64 `parquet:"id,snappy"`

	// Merged reports whether the pull request was merged
	Merged bool `parquet:"merged,snappy"`

	// Agent is the authorship flag recorded for the pull request
	Agent string `parquet:"agent,snappy"`

	// CreatedAt is when the pull request was opened
	CreatedAt time.Time `parquet:"created_at,snappy"`

	// MergedAt is when the pull request was merged (nullable)
	MergedAt *time.Time `parquet:"merged_at,optional,snappy"`
}

// CommitDetailRow is one row of the commit details table.
type CommitDetailRow struct {
	// SHA is the full commit hash
	SHA string `parquet:"sha,snappy"`

	// Message is the full commit message
	Message string `parquet:"message,snappy"`

	// Author is the recorded commit author
	Author string `parquet:"author,snappy"`

	// AuthoredAt is the author timestamp of the commit
	AuthoredAt time.Time `parquet:"authored_at,snappy"`
}

// FilteredCommitRow is one commit of the extract output in its columnar
// encoding. It mirrors the row-text CSV column for column.
type FilteredCommitRow struct {
	SHA          string `parquet:"sha,snappy"`
	PRID         int64  `parquet:"pr_id,snappy"`
	Repo         string `parquet:"repo,snappy"`
	Message      string `parquet:"message,snappy"`
	Agent        string `parquet:"agent,snappy"`
	FilesChanged int32  `parquet:"files_changed,snappy"`
	Additions    int64  `parquet:"additions,snappy"`
	Deletions    int64  `parquet:"deletions,snappy"`
}

// MetricRowExport is one collected commit for Parquet export.
type MetricRowExport struct {
	SHA         string  `parquet:"sha,snappy"`
	Repo        string  `parquet:"repo,snappy"`
	MIBefore    float64 `parquet:"mi_before,snappy"`
	MIAfter     float64 `parquet:"mi_after,snappy"`
	CCBefore    float64 `parquet:"cc_before,snappy"`
	CCAfter     float64 `parquet:"cc_after,snappy"`
	LOCBefore   float64 `parquet:"loc_before,snappy"`
	LOCAfter    float64 `parquet:"loc_after,snappy"`
	FilesBefore int32   `parquet:"files_before,snappy"`
	FilesAfter  int32   `parquet:"files_after,snappy"`
}

// RunRowExport is one tracked collect run for Parquet export.
type RunRowExport struct {
	RunID        int64      `parquet:"run_id,snappy"`
	StartedAt    time.Time  `parquet:"started_at,snappy"`
	FinishedAt   *time.Time `parquet:"finished_at,optional,snappy"`
	DurationMs   int64      `parquet:"duration_ms,snappy"`
	Sampled      int32      `parquet:"sampled,snappy"`
	Succeeded    int32      `parquet:"succeeded,snappy"`
	Resumed      int32      `parquet:"resumed,snappy"`
	SkippedFetch int32      `parquet:"skipped_fetch,snappy"`
	SkippedParse int32      `parquet:"skipped_parse,snappy"`
	SkippedEmpty int32      `parquet:"skipped_empty,snappy"`
	Workers      int32      `parquet:"workers,snappy"`
	Notes        *string    `parquet:"notes,optional,snappy"`
}

// Required columns for each table read by the pipeline. A table missing
// one of these fails with schema.SchemaMismatchError before any row is
// decoded.
var (
	CommitColumns         = []string{"pr_id", "sha", "repo", "filename", "additions", "deletions", "status"}
	PullRequestColumns    = []string{"id", "merged", "agent", "created_at", "merged_at"}
	CommitDetailColumns   = []string{"sha", "message", "author", "authored_at"}
	FilteredCommitColumns = []string{"sha", "pr_id", "repo", "message", "agent", "files_changed", "additions", "deletions"}
)

// readTable opens a Parquet file, verifies the required columns exist in
// its schema, and decodes every row.
func readTable[T any](path string, required []string) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &schema.DataNotFoundError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat parquet file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet footer of %s: %w", path, err)
	}
	for _, col := range required {
		if _, ok := pf.Schema().Lookup(col); !ok {
			return nil, &schema.SchemaMismatchError{Path: path, Column: col}
		}
	}

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	out := make([]T, 0, reader.NumRows())
	buf := make([]T, 256)
	for {
		n, err := reader.Read(buf)
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows from %s: %w", path, err)
		}
	}
	return out, nil
}

// writeTable writes rows to a Parquet file using struct schema inference.
// The schema is automatically derived from the struct tags.
func writeTable[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// RowCount returns the number of rows in a Parquet file without
// decoding them.
func RowCount(path string) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return 0, err
	}
	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return 0, err
	}
	return pf.NumRows(), nil
}

// ReadCommitTable reads the commits input table.
func ReadCommitTable(path string) ([]schema.RawCommitRecord, error) {
	rows, err := readTable[CommitRow](path, CommitColumns)
	if err != nil {
		return nil, err
	}
	return ConvertCommitRows(rows), nil
}

// ReadPullRequestTable reads the pull request metadata table.
func ReadPullRequestTable(path string) ([]schema.RawPullRequest, error) {
	rows, err := readTable[PullRequestRow](path, PullRequestColumns)
	if err != nil {
		return nil, err
	}
	return ConvertPullRequestRows(rows), nil
}

// ReadCommitDetailTable reads the commit details table.
func ReadCommitDetailTable(path string) ([]schema.RawCommitDetail, error) {
	rows, err := readTable[CommitDetailRow](path, CommitDetailColumns)
	if err != nil {
		return nil, err
	}
	return ConvertCommitDetailRows(rows), nil
}

// ReadFilteredCommitTable reads back the columnar extract output.
func ReadFilteredCommitTable(path string) ([]schema.FilteredCommit, error) {
	rows, err := readTable[FilteredCommitRow](path, FilteredCommitColumns)
	if err != nil {
		return nil, err
	}
	result := make([]schema.FilteredCommit, len(rows))
	for i, row := range rows {
		result[i] = schema.FilteredCommit{
			SHA:          row.SHA,
			PRID:         row.PRID,
			Repo:         row.Repo,
			Message:      row.Message,
			Agent:        row.Agent,
			FilesChanged: int(row.FilesChanged),
			Additions:    row.Additions,
			Deletions:    row.Deletions,
		}
	}
	return result, nil
}

// WriteCommitsParquet writes a commits input table.
func WriteCommitsParquet(data []CommitRow, outputPath string) error {
	return writeTable(data, outputPath)
}

// WritePullRequestsParquet writes a pull request metadata table.
func WritePullRequestsParquet(data []PullRequestRow, outputPath string) error {
	return writeTable(data, outputPath)
}

// WriteCommitDetailsParquet writes a commit details table.
func WriteCommitDetailsParquet(data []CommitDetailRow, outputPath string) error {
	return writeTable(data, outputPath)
}

// WriteFilteredCommitsParquet writes the columnar encoding of the
// extract output.
func WriteFilteredCommitsParquet(data []schema.FilteredCommit, outputPath string) error {
	return writeTable(ConvertFilteredCommits(data), outputPath)
}

// WriteMetricRowsParquet writes collected metric rows for export.
func WriteMetricRowsParquet(data []MetricRowExport, outputPath string) error {
	return writeTable(data, outputPath)
}

// WriteRunRowsParquet writes tracked collect runs for export.
func WriteRunRowsParquet(data []RunRowExport, outputPath string) error {
	return writeTable(data, outputPath)
}

// ConvertCommitRows converts CommitRow to schema.RawCommitRecord.
func ConvertCommitRows(rows []CommitRow) []schema.RawCommitRecord {
	result := make([]schema.RawCommitRecord, len(rows))
	for i, row := range rows {
		result[i] = schema.RawCommitRecord{
			PRID:      row.PRID,
			SHA:       row.SHA,
			Repo:      row.Repo,
			Filename:  row.Filename,
			Additions: row.Additions,
			Deletions: row.Deletions,
			Status:    row.Status,
		}
	}
	return result
}

// ConvertPullRequestRows converts PullRequestRow to schema.RawPullRequest.
func ConvertPullRequestRows(rows []PullRequestRow) []schema.RawPullRequest {
	result := make([]schema.RawPullRequest, len(rows))
	for i, row := range rows {
		record := schema.RawPullRequest{
			ID:        row.ID,
			Merged:    row.Merged,
			Agent:     row.Agent,
			CreatedAt: row.CreatedAt,
		}
		if row.MergedAt != nil {
			record.MergedAt = *row.MergedAt
		}
		result[i] = record
	}
	return result
}

// ConvertCommitDetailRows converts CommitDetailRow to schema.RawCommitDetail.
func ConvertCommitDetailRows(rows []CommitDetailRow) []schema.RawCommitDetail {
	result := make([]schema.RawCommitDetail, len(rows))
	for i, row := range rows {
		result[i] = schema.RawCommitDetail{
			SHA:        row.SHA,
			Message:    row.Message,
			Author:     row.Author,
			AuthoredAt: row.AuthoredAt,
		}
	}
	return result
}

// ConvertFilteredCommits converts schema.FilteredCommit to its Parquet row form.
func ConvertFilteredCommits(commits []schema.FilteredCommit) []FilteredCommitRow {
	result := make([]FilteredCommitRow, len(commits))
	for i, c := range commits {
		result[i] = FilteredCommitRow{
			SHA:          c.SHA,
			PRID:         c.PRID,
			Repo:         c.Repo,
			Message:      c.Message,
			Agent:        c.Agent,
			FilesChanged: int32(c.FilesChanged),
			Additions:    c.Additions,
			Deletions:    c.Deletions,
		}
	}
	return result
}

// ConvertMetricRows converts schema.CommitMetricRow to its Parquet row form.
func ConvertMetricRows(rows []schema.CommitMetricRow) []MetricRowExport {
	result := make([]MetricRowExport, len(rows))
	for i, r := range rows {
		result[i] = MetricRowExport{
			SHA:         r.SHA,
			Repo:        r.Repo,
			MIBefore:    r.MIBefore,
			MIAfter:     r.MIAfter,
			CCBefore:    r.CCBefore,
			CCAfter:     r.CCAfter,
			LOCBefore:   r.LOCBefore,
			LOCAfter:    r.LOCAfter,
			FilesBefore: int32(r.FilesBefore),
			FilesAfter:  int32(r.FilesAfter),
		}
	}
	return result
}

// ConvertRunRecords converts schema.RunRecord to its Parquet row form.
func ConvertRunRecords(records []schema.RunRecord) []RunRowExport {
	result := make([]RunRowExport, len(records))
	for i, r := range records {
		row := RunRowExport{
			RunID:        r.ID,
			StartedAt:    r.StartedAt,
			DurationMs:   r.DurationMS,
			Sampled:      int32(r.Sampled),
			Succeeded:    int32(r.Succeeded),
			Resumed:      int32(r.Resumed),
			SkippedFetch: int32(r.SkippedFetch),
			SkippedParse: int32(r.SkippedParse),
			SkippedEmpty: int32(r.SkippedEmpty),
			Workers:      int32(r.Workers),
		}
		if !r.FinishedAt.IsZero() {
			finished := r.FinishedAt
			row.FinishedAt = &finished
		}
		if r.Notes != "" {
			notes := r.Notes
			row.Notes = &notes
		}
		result[i] = row
	}
	return result
}
