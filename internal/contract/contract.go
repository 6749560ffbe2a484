// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/claritylab/clarity/schema"
)

// GitClient defines the necessary operations against local git clones.
// This allows the collection logic to be tested without a real git executable.
type GitClient interface {
	// --- Generic / Low-Level ---

	// Run executes a git command and returns the output.
	// Its use should be minimized in favor of the explicit methods below.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// --- Repository Lifecycle ---

	// Clone clones the repository at url into repoPath.
	Clone(ctx context.Context, url, repoPath string) error

	// Fetch refreshes the clone at repoPath from its origin.
	Fetch(ctx context.Context, repoPath string) error

	// HasRevision reports whether the revision exists in the clone.
	HasRevision(ctx context.Context, repoPath, rev string) bool

	// --- Commit Topology ---

	// FirstParent returns the first parent hash of the commit, or
	// schema.ErrNoParent for a root commit.
	FirstParent(ctx context.Context, repoPath, sha string) (string, error)

	// --- Diff / Content ---

	// ChangedFiles lists the files that differ between two revisions,
	// with their diff status.
	ChangedFiles(ctx context.Context, repoPath, base, target string) ([]schema.ChangedFile, error)

	// ShowFile returns the content of one file at a revision.
	ShowFile(ctx context.Context, repoPath, rev, path string) ([]byte, error)
}

// SnapshotFetcher retrieves the file snapshots around a commit. It hides
// where clones live and how revisions are resolved, so the collect stage
// can run against a mock.
type SnapshotFetcher interface {
	// Prepare makes the repository available locally and ensures the
	// commit is reachable in it.
	Prepare(ctx context.Context, repo, sha string) error

	// Parent returns the first parent of the commit, or schema.ErrNoParent.
	Parent(ctx context.Context, repo, sha string) (string, error)

	// ChangedFiles lists the files the commit touched relative to base.
	ChangedFiles(ctx context.Context, repo, base, sha string) ([]schema.ChangedFile, error)

	// FileAt returns the content of one file at a revision.
	FileAt(ctx context.Context, repo, rev, path string) ([]byte, error)
}

// SourceAnalyzer computes static metrics for one file snapshot.
type SourceAnalyzer interface {
	Analyze(path string, src []byte) (schema.FileMetric, error)
}

// CheckpointStore persists finished metric rows keyed by commit SHA, so
// an interrupted collect run can resume without refetching.
type CheckpointStore interface {
	// Get returns the stored row for the SHA when its fingerprint matches.
	Get(sha, fingerprint string) (schema.CommitMetricRow, bool, error)

	// Put stores or replaces the row for its SHA.
	Put(row schema.CommitMetricRow, fingerprint string, timestamp int64) error

	// All returns every stored row matching the fingerprint. An empty
	// fingerprint matches every row.
	All(fingerprint string) ([]schema.CommitMetricRow, error)

	// GetStatus returns status information about the checkpoint store.
	GetStatus() (schema.StoreStatus, error)

	// Clear removes all stored rows.
	Clear() error

	// Close closes the underlying connection.
	Close() error
}

// RunStore tracks collect runs across invocations.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID.
	BeginRun(start time.Time, workers int, notes string) (int64, error)

	// EndRun updates the run with completion data.
	EndRun(id int64, end time.Time, summary schema.CollectSummary) error

	// ListRuns returns up to limit runs, newest first. A non-positive
	// limit returns all runs.
	ListRuns(limit int) ([]schema.RunRecord, error)

	// GetStatus returns status information about the run store.
	GetStatus() (schema.StoreStatus, error)

	// Clear removes all stored runs.
	Clear() error

	// Close closes the underlying connection.
	Close() error
}

// StoreManager hands out the configured stores.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetCheckpointStore() CheckpointStore
	GetRunStore() RunStore
}
