package parquet

import (
	"path/filepath"
	"time"
)

// MockCommitTables generates a small, internally consistent set of raw
// input rows for demos and tests. It spans five commits, of which
// exactly three qualify for extraction: one commit sits on an unmerged
// pull request, one touches only a markdown file, and one has no
// qualifying file row at all.
func MockCommitTables() ([]CommitRow, []PullRequestRow, []CommitDetailRow) {
	base := time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)
	mergedAt1 := base.Add(26 * time.Hour)
	mergedAt2 := base.Add(50 * time.Hour)

	commits := []CommitRow{
		// Commit 1: single Go file on a merged pull request. Qualifies.
		{PRID: 101, SHA: "aaaa000000000000000000000000000000000001", Repo: "acme/widget", Filename: "cmd/widget/main.go", Additions: 10, Deletions: 2, Status: "M"},

		// Commit 2: two Go files on a merged pull request. Qualifies once.
		{PRID: 101, SHA: "bbbb000000000000000000000000000000000002", Repo: "acme/widget", Filename: "internal/parse/parser.go", Additions: 5, Deletions: 5, Status: "M"},
		{PRID: 101, SHA: "bbbb000000000000000000000000000000000002", Repo: "acme/widget", Filename: "internal/parse/lexer.go", Additions: 1, Deletions: 0, Status: "A"},

		// Commit 3: single Go file on another merged pull request. Qualifies.
		{PRID: 102, SHA: "cccc000000000000000000000000000000000003", Repo: "acme/render", Filename: "render/canvas.go", Additions: 7, Deletions: 3, Status: "M"},

		// Commit 4: Go file with real changes, but the pull request never merged.
		{PRID: 103, SHA: "dddd000000000000000000000000000000000004", Repo: "acme/widget", Filename: "internal/feature/flag.go", Additions: 20, Deletions: 1, Status: "A"},

		// Commit 5: a markdown row and a zero-change Go row. No qualifying row.
		{PRID: 102, SHA: "eeee000000000000000000000000000000000005", Repo: "acme/render", Filename: "README.md", Additions: 3, Deletions: 0, Status: "M"},
		{PRID: 102, SHA: "eeee000000000000000000000000000000000005", Repo: "acme/render", Filename: "render/util.go", Additions: 0, Deletions: 0, Status: "M"},
	}

	pullRequests := []PullRequestRow{
		{ID: 101, Merged: true, Agent: "assistant-a", CreatedAt: base, MergedAt: &mergedAt1},
		{ID: 102, Merged: true, Agent: "human", CreatedAt: base.Add(12 * time.Hour), MergedAt: &mergedAt2},
		{ID: 103, Merged: false, Agent: "assistant-a", CreatedAt: base.Add(30 * time.Hour), MergedAt: nil},
	}

	details := []CommitDetailRow{
		{SHA: "aaaa000000000000000000000000000000000001", Message: "simplify widget entry point", Author: "alice", AuthoredAt: base.Add(2 * time.Hour)},
		{SHA: "bbbb000000000000000000000000000000000002", Message: "split parser and lexer", Author: "alice", AuthoredAt: base.Add(4 * time.Hour)},
		{SHA: "cccc000000000000000000000000000000000003", Message: "improve readability of canvas drawing", Author: "bob", AuthoredAt: base.Add(20 * time.Hour)},
		{SHA: "dddd000000000000000000000000000000000004", Message: "experimental feature flag wiring", Author: "alice", AuthoredAt: base.Add(32 * time.Hour)},
		{SHA: "eeee000000000000000000000000000000000005", Message: "touch up docs and whitespace", Author: "bob", AuthoredAt: base.Add(40 * time.Hour)},
	}

	return commits, pullRequests, details
}

// MockWriteCommitTables writes the mock tables into a directory using
// the standard artifact names, returning the three file paths.
func MockWriteCommitTables(dir string) (commitsPath, pullsPath, detailsPath string, err error) {
	commits, pulls, details := MockCommitTables()

	commitsPath = filepath.Join(dir, "commits.parquet")
	pullsPath = filepath.Join(dir, "pull_requests.parquet")
	detailsPath = filepath.Join(dir, "commit_details.parquet")

	if err = WriteCommitsParquet(commits, commitsPath); err != nil {
		return "", "", "", err
	}
	if err = WritePullRequestsParquet(pulls, pullsPath); err != nil {
		return "", "", "", err
	}
	if err = WriteCommitDetailsParquet(details, detailsPath); err != nil {
		return "", "", "", err
	}
	return commitsPath, pullsPath, detailsPath, nil
}
