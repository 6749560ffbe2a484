package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/claritylab/clarity/core/metrics"
	"github.com/claritylab/clarity/internal/contract"
	"github.com/claritylab/clarity/internal/outwriter"
	"github.com/claritylab/clarity/schema"
)

// retryBaseDelay is the wait after the first failed retrieval attempt.
// Later attempts wait a multiple of it.
var retryBaseDelay = 500 * time.Millisecond

// ExecuteCollect measures every sampled commit and writes the metric
// table. A commit that cannot be measured is counted and skipped, so
// one broken repository never sinks a long run.
func ExecuteCollect(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	fetcher := contract.NewGitSnapshotFetcher(contract.NewLocalGitClient(), cfg.RepoCacheDir)
	analyzer := metrics.NewGoAnalyzer()
	return collectCommits(ctx, cfg, mgr, fetcher, analyzer)
}

// commitOutcome carries one worker result back to the collector.
type commitOutcome struct {
	sha   string
	row   schema.CommitMetricRow
	files fileOutcome
	err   error
}

// collectCommits runs the collection pipeline against the given
// fetcher and analyzer.
func collectCommits(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, fetcher contract.SnapshotFetcher, analyzer contract.SourceAnalyzer) error {
	start := time.Now()

	sampled, err := ReadFilteredCommitsCSV(cfg.SampledCSVPath)
	if err != nil {
		return err
	}

	summary := schema.CollectSummary{
		Sampled: len(sampled),
		Skipped: make(map[schema.SkipReason]int),
	}

	fingerprint := cfg.Fingerprint()
	checkpoints := mgr.GetCheckpointStore()

	// Rows finished by earlier runs are reused instead of refetched.
	// Rows written under different settings carry another fingerprint
	// and are left alone.
	done := make(map[string]schema.CommitMetricRow)
	if cfg.Resume && checkpoints != nil {
		stored, err := checkpoints.All(fingerprint)
		if err != nil {
			contract.LogWarn("checkpoint read", err)
		}
		for _, row := range stored {
			done[row.SHA] = row
		}
	}

	rows := make(map[string]schema.CommitMetricRow, len(sampled))
	var pending []schema.FilteredCommit
	for _, c := range sampled {
		if row, ok := done[c.SHA]; ok {
			rows[c.SHA] = row
			summary.Resumed++
		} else {
			pending = append(pending, c)
		}
	}

	runID := beginRun(mgr, cfg, start)

	commitCh := make(chan schema.FilteredCommit, len(pending))
	resultCh := make(chan commitOutcome, len(pending))

	var wg sync.WaitGroup
	for range cfg.Workers {
		wg.Go(func() {
			for commit := range commitCh {
				row, files, err := collectOne(ctx, cfg, fetcher, analyzer, commit)
				resultCh <- commitOutcome{sha: commit.SHA, row: row, files: files, err: err}
			}
		})
	}

	for _, c := range pending {
		commitCh <- c
	}
	close(commitCh)

	wg.Wait()
	close(resultCh)

	for outcome := range resultCh {
		summary.FileFetchFails += outcome.files.fetchFails
		summary.FileParseFails += outcome.files.parseFails

		if outcome.err != nil {
			summary.Skipped[skipReason(outcome.files, outcome.err)]++
			contract.LogWarn(fmt.Sprintf("skipping commit %s", schema.ShortSHA(outcome.sha)), outcome.err)
			continue
		}

		rows[outcome.sha] = outcome.row
		summary.Succeeded++
		if checkpoints != nil {
			if err := checkpoints.Put(outcome.row, fingerprint, time.Now().Unix()); err != nil {
				contract.LogWarn("checkpoint write", err)
			}
		}
	}

	// Emit rows in sampled order so repeated runs write identical files.
	ordered := make([]schema.CommitMetricRow, 0, len(rows))
	for _, c := range sampled {
		if row, ok := rows[c.SHA]; ok {
			ordered = append(ordered, row)
		}
	}

	summary.Duration = time.Since(start)
	endRun(mgr, runID, summary)

	if err := WriteMetricRowsCSV(ordered, cfg.MetricsCSVPath); err != nil {
		return err
	}
	outwriter.NoteArtifact("commit metrics", cfg.MetricsCSVPath)

	ow := outwriter.NewOutWriter()
	if err := ow.WriteCollectSummary(summary, cfg); err != nil {
		return err
	}
	return ctx.Err()
}

// fileOutcome counts per-file losses within one commit.
type fileOutcome struct {
	fetchFails int
	parseFails int
}

// collectOne measures the parent and commit snapshots of every changed
// source file and aggregates each side by mean. Losing single files is
// tolerated as long as both sides keep at least one measurement.
func collectOne(ctx context.Context, cfg *contract.Config, fetcher contract.SnapshotFetcher, analyzer contract.SourceAnalyzer, commit schema.FilteredCommit) (schema.CommitMetricRow, fileOutcome, error) {
	var files fileOutcome

	err := fetchWithRetry(ctx, cfg, func(ctx context.Context) error {
		return fetcher.Prepare(ctx, commit.Repo, commit.SHA)
	})
	if err != nil {
		return schema.CommitMetricRow{}, files, &schema.RetrievalError{Repo: commit.Repo, Rev: commit.SHA, Err: err}
	}

	var parent string
	err = fetchWithRetry(ctx, cfg, func(ctx context.Context) error {
		var perr error
		parent, perr = fetcher.Parent(ctx, commit.Repo, commit.SHA)
		return perr
	})
	if errors.Is(err, schema.ErrNoParent) {
		// A root commit has no before side to compare against.
		return schema.CommitMetricRow{}, files, &schema.EmptyPairError{SHA: commit.SHA}
	}
	if err != nil {
		return schema.CommitMetricRow{}, files, &schema.RetrievalError{Repo: commit.Repo, Rev: commit.SHA, Err: err}
	}

	var changed []schema.ChangedFile
	err = fetchWithRetry(ctx, cfg, func(ctx context.Context) error {
		var cerr error
		changed, cerr = fetcher.ChangedFiles(ctx, commit.Repo, parent, commit.SHA)
		return cerr
	})
	if err != nil {
		return schema.CommitMetricRow{}, files, &schema.RetrievalError{Repo: commit.Repo, Rev: commit.SHA, Err: err}
	}

	var before, after []schema.FileMetric
	for _, file := range changed {
		if m, ok := measureSnapshot(ctx, cfg, fetcher, analyzer, commit.Repo, parent, file.BeforePath(), &files); ok {
			before = append(before, m)
		}
		if m, ok := measureSnapshot(ctx, cfg, fetcher, analyzer, commit.Repo, commit.SHA, file.AfterPath(), &files); ok {
			after = append(after, m)
		}
	}

	if len(before) == 0 || len(after) == 0 {
		return schema.CommitMetricRow{}, files, &schema.EmptyPairError{SHA: commit.SHA}
	}

	row := schema.CommitMetricRow{
		SHA:         commit.SHA,
		Repo:        commit.Repo,
		MIBefore:    meanOf(before, func(m schema.FileMetric) float64 { return m.MI }),
		MIAfter:     meanOf(after, func(m schema.FileMetric) float64 { return m.MI }),
		CCBefore:    meanOf(before, func(m schema.FileMetric) float64 { return float64(m.CC) }),
		CCAfter:     meanOf(after, func(m schema.FileMetric) float64 { return float64(m.CC) }),
		LOCBefore:   meanOf(before, func(m schema.FileMetric) float64 { return float64(m.LOC) }),
		LOCAfter:    meanOf(after, func(m schema.FileMetric) float64 { return float64(m.LOC) }),
		FilesBefore: len(before),
		FilesAfter:  len(after),
	}
	return row, files, nil
}

// measureSnapshot fetches and measures one file snapshot. Paths that
// are empty on this side or carry no allowed extension are not
// measured. A lost snapshot is counted on files and dropped.
func measureSnapshot(ctx context.Context, cfg *contract.Config, fetcher contract.SnapshotFetcher, analyzer contract.SourceAnalyzer, repo, rev, path string, files *fileOutcome) (schema.FileMetric, bool) {
	if path == "" || !contract.HasAllowedExtension(path, cfg.Extensions) {
		return schema.FileMetric{}, false
	}

	var src []byte
	err := fetchWithRetry(ctx, cfg, func(ctx context.Context) error {
		var ferr error
		src, ferr = fetcher.FileAt(ctx, repo, rev, path)
		return ferr
	})
	if err != nil {
		files.fetchFails++
		return schema.FileMetric{}, false
	}

	metric, err := analyzer.Analyze(path, src)
	if err != nil {
		files.parseFails++
		return schema.FileMetric{}, false
	}
	return metric, true
}

// meanOf averages one field across file measurements.
func meanOf(metrics []schema.FileMetric, value func(schema.FileMetric) float64) float64 {
	values := make([]float64, 0, len(metrics))
	for _, m := range metrics {
		values = append(values, value(m))
	}
	return stat.Mean(values, nil)
}

// fetchWithRetry runs op under the configured timeout, waiting a
// linearly growing delay between attempts. Errors that cannot change
// on retry, like a missing parent, return immediately.
func fetchWithRetry(ctx context.Context, cfg *contract.Config, op func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= cfg.RetryAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		attemptCtx, cancel := context.WithTimeout(ctx, cfg.RetrievalTimeout)
		err := op(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err

		if errors.Is(err, schema.ErrNoParent) || errors.Is(err, schema.ErrSnapshotMissing) {
			return err
		}
		if attempt == cfg.RetryAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBaseDelay):
		}
	}
	return lastErr
}

// skipReason classifies a commit-level failure for the run summary.
// An empty pair that lost files along the way is attributed to the
// loss, not to the commit shape.
func skipReason(files fileOutcome, err error) schema.SkipReason {
	var empty *schema.EmptyPairError
	if errors.As(err, &empty) {
		if files.fetchFails > 0 {
			return schema.SkipFetchFailure
		}
		if files.parseFails > 0 {
			return schema.SkipParseFailure
		}
		return schema.SkipEmptyPair
	}
	return schema.SkipFetchFailure
}

// beginRun opens a tracked run when run tracking is configured.
func beginRun(mgr contract.StoreManager, cfg *contract.Config, start time.Time) int64 {
	runs := mgr.GetRunStore()
	if runs == nil {
		return 0
	}
	id, err := runs.BeginRun(start, cfg.Workers, cfg.Notes)
	if err != nil {
		contract.LogWarn("run tracking begin", err)
		return 0
	}
	return id
}

// endRun closes a tracked run. Tracking failures are warnings, never
// collection failures.
func endRun(mgr contract.StoreManager, id int64, summary schema.CollectSummary) {
	if id == 0 {
		return
	}
	runs := mgr.GetRunStore()
	if runs == nil {
		return
	}
	if err := runs.EndRun(id, time.Now(), summary); err != nil {
		contract.LogWarn("run tracking end", err)
	}
}
