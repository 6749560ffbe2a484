// Package schema holds common structs and vars for all packages.
package schema

import "time"

// RawCommitRecord is one changed-file row from the commits input table.
// A commit that touches k files appears as k rows sharing the same SHA.
type RawCommitRecord struct {
	PRID      int64
	SHA       string
	Repo      string
	Filename  string
	Additions int64
	Deletions int64
	Status    string
}

// RawPullRequest is one row from the pull request metadata table.
type RawPullRequest struct {
	ID        int64
	Merged    bool
	Agent     string
	CreatedAt time.Time
	MergedAt  time.Time
}

// RawCommitDetail is one row from the commit details table.
type RawCommitDetail struct {
	SHA        string
	Message    string
	Author     string
	AuthoredAt time.Time
}

// FilteredCommit is one qualifying commit produced by the extract stage.
// File rows are folded into a single row per commit, so FilesChanged
// counts only the files that passed the row filters.
type FilteredCommit struct {
	SHA          string
	PRID         int64
	Repo         string
	Message      string
	Agent        string
	FilesChanged int
	Additions    int64
	Deletions    int64
}

// FilterFunnel tracks how many rows and commits survive each extract filter.
// Row counts are cumulative: each stage is measured after the previous one.
type FilterFunnel struct {
	FileRows       int `json:"file_rows"`       // rows in the commits table
	MergedRows     int `json:"merged_rows"`     // rows whose pull request is merged
	ExtensionRows  int `json:"extension_rows"`  // rows whose filename carries an allowed extension
	NontrivialRows int `json:"nontrivial_rows"` // rows with additions+deletions > 0
	Commits        int `json:"commits"`         // distinct commits after the row filters
	KeywordCommits int `json:"keyword_commits"` // commits that pass the keyword filter
	OwnerCommits   int `json:"owner_commits"`   // commits that pass the fork filter
}

// ChangedFile is one entry of a commit diff, as reported by git.
type ChangedFile struct {
	Path    string // path on the after side
	OldPath string // path on the before side, differs only for renames
	Status  string // A, M, D or R
}

// BeforePath returns the path the file had before the commit, or an
// empty string when the file did not exist yet.
func (c ChangedFile) BeforePath() string {
	switch c.Status {
	case StatusAdded:
		return ""
	case StatusRenamed:
		return c.OldPath
	default:
		return c.Path
	}
}

// AfterPath returns the path the file has after the commit, or an
// empty string when the commit deleted it.
func (c ChangedFile) AfterPath() string {
	if c.Status == StatusDeleted {
		return ""
	}
	return c.Path
}
