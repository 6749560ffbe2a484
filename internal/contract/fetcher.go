package contract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/claritylab/clarity/schema"
)

// GitSnapshotFetcher implements SnapshotFetcher on top of a GitClient
// and a local clone cache directory. Clones are kept between runs so a
// repeated collect pays the network cost only once.
type GitSnapshotFetcher struct {
	client   GitClient
	cacheDir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

var _ SnapshotFetcher = &GitSnapshotFetcher{} // Compile-time check

// NewGitSnapshotFetcher creates a fetcher that clones under cacheDir.
func NewGitSnapshotFetcher(client GitClient, cacheDir string) *GitSnapshotFetcher {
	return &GitSnapshotFetcher{
		client:   client,
		cacheDir: cacheDir,
		locks:    make(map[string]*sync.Mutex),
	}
}

// repoLock returns the per-repository mutex, creating it on first use.
// Workers may land on the same repository; only one of them may clone.
func (f *GitSnapshotFetcher) repoLock(repo string) *sync.Mutex {
	f.mu.Lock()
	defer f.mu.Unlock()
	lock, ok := f.locks[repo]
	if !ok {
		lock = &sync.Mutex{}
		f.locks[repo] = lock
	}
	return lock
}

// RepoDir returns the clone directory for an owner/name slug.
func (f *GitSnapshotFetcher) RepoDir(repo string) string {
	return filepath.Join(f.cacheDir, SanitizeRepoName(repo))
}

// Prepare implements the SnapshotFetcher interface.
func (f *GitSnapshotFetcher) Prepare(ctx context.Context, repo, sha string) error {
	lock := f.repoLock(repo)
	lock.Lock()
	defer lock.Unlock()

	dir := f.RepoDir(repo)
	if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
		if err := os.MkdirAll(f.cacheDir, 0o755); err != nil {
			return err
		}
		if err := f.client.Clone(ctx, CloneURL(repo), dir); err != nil {
			return err
		}
	}

	if f.client.HasRevision(ctx, dir, sha) {
		return nil
	}
	if err := f.client.Fetch(ctx, dir); err != nil {
		return err
	}
	if !f.client.HasRevision(ctx, dir, sha) {
		return fmt.Errorf("revision %s not found in %s after fetch", schema.ShortSHA(sha), repo)
	}
	return nil
}

// Parent implements the SnapshotFetcher interface.
func (f *GitSnapshotFetcher) Parent(ctx context.Context, repo, sha string) (string, error) {
	return f.client.FirstParent(ctx, f.RepoDir(repo), sha)
}

// ChangedFiles implements the SnapshotFetcher interface.
func (f *GitSnapshotFetcher) ChangedFiles(ctx context.Context, repo, base, sha string) ([]schema.ChangedFile, error) {
	return f.client.ChangedFiles(ctx, f.RepoDir(repo), base, sha)
}

// FileAt implements the SnapshotFetcher interface.
func (f *GitSnapshotFetcher) FileAt(ctx context.Context, repo, rev, path string) ([]byte, error) {
	return f.client.ShowFile(ctx, f.RepoDir(repo), rev, path)
}

// CloneURL maps a repository reference from the input tables to a clone
// URL. Full URLs pass through, owner/name slugs resolve to GitHub.
func CloneURL(repo string) string {
	if strings.Contains(repo, "://") || strings.HasPrefix(repo, "git@") {
		return repo
	}
	return "https://github.com/" + repo + ".git"
}

// SanitizeRepoName flattens a repository reference into a single path
// component safe for the clone cache.
func SanitizeRepoName(repo string) string {
	name := strings.ReplaceAll(repo, "/", "__")
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '_' || r == '-':
			return r
		default:
			return '-'
		}
	}, name)
}
