package schema

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by snapshot retrieval.
var (
	// ErrNoParent marks a commit without a first parent (a root commit).
	ErrNoParent = errors.New("commit has no parent")

	// ErrSnapshotMissing marks a path absent from a revision.
	ErrSnapshotMissing = errors.New("path not present at revision")
)

// DataNotFoundError reports a required input artifact missing on disk.
// It is fatal for the stage that needs the artifact.
type DataNotFoundError struct {
	Path string
	Err  error
}

func (e *DataNotFoundError) Error() string {
	return fmt.Sprintf("input not found: %s", e.Path)
}

func (e *DataNotFoundError) Unwrap() error { return e.Err }

// SchemaMismatchError reports an input table that lacks a required column.
// It is fatal for the stage that reads the table.
type SchemaMismatchError struct {
	Path   string
	Column string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch in %s: missing column %q", e.Path, e.Column)
}

// RetrievalError reports a snapshot that could not be fetched after the
// configured retries. Collect counts it and moves on.
type RetrievalError struct {
	Repo string
	Rev  string
	Path string // empty for repository-level failures
	Err  error
}

func (e *RetrievalError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("retrieval failed for %s@%s: %v", e.Repo, ShortSHA(e.Rev), e.Err)
	}
	return fmt.Sprintf("retrieval failed for %s@%s:%s: %v", e.Repo, ShortSHA(e.Rev), e.Path, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// MetricComputationError reports a snapshot whose source could not be
// measured. Collect counts it and moves on.
type MetricComputationError struct {
	Path string
	Err  error
}

func (e *MetricComputationError) Error() string {
	return fmt.Sprintf("metric computation failed for %s: %v", e.Path, e.Err)
}

func (e *MetricComputationError) Unwrap() error { return e.Err }

// EmptyPairError reports a commit that yielded no valid before/after
// measurement pair.
type EmptyPairError struct {
	SHA string
}

func (e *EmptyPairError) Error() string {
	return fmt.Sprintf("no measurable file pair for commit %s", ShortSHA(e.SHA))
}

// DegenerateTestError reports a signed-rank test where every paired
// difference is zero, which leaves the statistic undefined.
type DegenerateTestError struct {
	Metric MetricKey
	Pairs  int
}

func (e *DegenerateTestError) Error() string {
	return fmt.Sprintf("signed-rank test for %s is undefined: all %d differences are zero", e.Metric, e.Pairs)
}
