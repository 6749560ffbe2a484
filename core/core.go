// Package core has core logic for extraction, sampling, collection and analysis.
package core

import (
	"strings"

	"github.com/claritylab/clarity/internal/contract"
	"github.com/claritylab/clarity/internal/parquet"
	"github.com/claritylab/clarity/schema"
)

// rawTables bundles the three input tables after loading.
type rawTables struct {
	commits []schema.RawCommitRecord
	pulls   map[int64]schema.RawPullRequest
	details map[string]schema.RawCommitDetail
}

// loadRawTables reads the commits, pull request and commit detail
// tables and indexes the latter two for joining.
func loadRawTables(cfg *contract.Config) (rawTables, error) {
	commits, err := parquet.ReadCommitTable(cfg.CommitsPath)
	if err != nil {
		return rawTables{}, err
	}

	pullRows, err := parquet.ReadPullRequestTable(cfg.PullRequestsPath)
	if err != nil {
		return rawTables{}, err
	}
	pulls := make(map[int64]schema.RawPullRequest, len(pullRows))
	for _, pr := range pullRows {
		pulls[pr.ID] = pr
	}

	detailRows, err := parquet.ReadCommitDetailTable(cfg.CommitDetailsPath)
	if err != nil {
		return rawTables{}, err
	}
	details := make(map[string]schema.RawCommitDetail, len(detailRows))
	for _, d := range detailRows {
		details[d.SHA] = d
	}

	return rawTables{commits: commits, pulls: pulls, details: details}, nil
}

// runExtraction applies the inclusion filters to the raw tables and
// folds the surviving file rows into one record per commit. Count and
// extract share this path, so the reported count always matches the
// extracted rows.
func runExtraction(cfg *contract.Config) (schema.FilterFunnel, []schema.FilteredCommit, error) {
	tables, err := loadRawTables(cfg)
	if err != nil {
		return schema.FilterFunnel{}, nil, err
	}

	var funnel schema.FilterFunnel
	funnel.FileRows = len(tables.commits)

	indexBySHA := make(map[string]int)
	var list []schema.FilteredCommit

	for _, row := range tables.commits {
		pr, ok := tables.pulls[row.PRID]
		if !ok || !pr.Merged {
			continue
		}
		funnel.MergedRows++

		if !contract.HasAllowedExtension(row.Filename, cfg.Extensions) {
			continue
		}
		funnel.ExtensionRows++

		if row.Additions+row.Deletions <= 0 {
			continue
		}
		funnel.NontrivialRows++

		i, seen := indexBySHA[row.SHA]
		if !seen {
			i = len(list)
			indexBySHA[row.SHA] = i
			list = append(list, schema.FilteredCommit{
				SHA:     row.SHA,
				PRID:    row.PRID,
				Repo:    row.Repo,
				Message: tables.details[row.SHA].Message,
				Agent:   pr.Agent,
			})
		}
		list[i].FilesChanged++
		list[i].Additions += row.Additions
		list[i].Deletions += row.Deletions
	}
	funnel.Commits = len(list)

	if cfg.KeywordMatch {
		list = filterByKeywords(list, cfg.Keywords)
	}
	funnel.KeywordCommits = len(list)

	if cfg.ExcludeForks {
		list = filterByDominantOwner(list)
	}
	funnel.OwnerCommits = len(list)

	return funnel, list, nil
}

// filterByKeywords keeps commits whose message mentions at least one
// keyword. Matching is case-insensitive.
func filterByKeywords(commits []schema.FilteredCommit, keywords []string) []schema.FilteredCommit {
	kept := make([]schema.FilteredCommit, 0, len(commits))
	for _, c := range commits {
		if messageMatches(c.Message, keywords) {
			kept = append(kept, c)
		}
	}
	return kept
}

// messageMatches reports whether the message contains any keyword.
func messageMatches(message string, keywords []string) bool {
	message = strings.ToLower(message)
	for _, kw := range keywords {
		if strings.Contains(message, kw) {
			return true
		}
	}
	return false
}

// filterByDominantOwner keeps commits whose repository owner is the
// most frequent owner in the list. Counting owners instead of full
// slugs keeps a fork farm from splitting one project into many repos.
// Ties break toward the lexicographically smallest owner so the pick
// is stable.
func filterByDominantOwner(commits []schema.FilteredCommit) []schema.FilteredCommit {
	if len(commits) == 0 {
		return commits
	}

	counts := make(map[string]int)
	for _, c := range commits {
		owner, _ := schema.SplitRepo(c.Repo)
		counts[owner]++
	}

	dominant := ""
	for owner, n := range counts {
		if dominant == "" || n > counts[dominant] || (n == counts[dominant] && owner < dominant) {
			dominant = owner
		}
	}

	kept := make([]schema.FilteredCommit, 0, len(commits))
	for _, c := range commits {
		if owner, _ := schema.SplitRepo(c.Repo); owner == dominant {
			kept = append(kept, c)
		}
	}
	return kept
}
