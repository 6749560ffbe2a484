package contract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCloneURL(t *testing.T) {
	tests := []struct {
		name string
		repo string
		want string
	}{
		{"owner and name slug", "acme/widget", "https://github.com/acme/widget.git"},
		{"https url passes through", "https://gitlab.com/acme/widget.git", "https://gitlab.com/acme/widget.git"},
		{"ssh url passes through", "git@github.com:acme/widget.git", "git@github.com:acme/widget.git"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CloneURL(tt.repo))
		})
	}
}

func TestSanitizeRepoName(t *testing.T) {
	tests := []struct {
		name string
		repo string
		want string
	}{
		{"plain slug", "acme/widget", "acme__widget"},
		{"dots and dashes survive", "acme/widget.go-lib", "acme__widget.go-lib"},
		{"odd characters flatten", "a:b/c d", "a-b__c-d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeRepoName(tt.repo))
		})
	}
}

func TestGitSnapshotFetcherPrepareClones(t *testing.T) {
	cacheDir := t.TempDir()
	client := new(MockGitClient)
	fetcher := NewGitSnapshotFetcher(client, cacheDir)

	ctx := context.Background()
	repoDir := fetcher.RepoDir("acme/widget")

	client.On("Clone", ctx, "https://github.com/acme/widget.git", repoDir).Return(nil).Once()
	client.On("HasRevision", ctx, repoDir, "abc123").Return(true).Once()

	require.NoError(t, fetcher.Prepare(ctx, "acme/widget", "abc123"))
	client.AssertExpectations(t)
}

func TestGitSnapshotFetcherPrepareReusesClone(t *testing.T) {
	cacheDir := t.TempDir()
	client := new(MockGitClient)
	fetcher := NewGitSnapshotFetcher(client, cacheDir)

	ctx := context.Background()
	repoDir := fetcher.RepoDir("acme/widget")
	require.NoError(t, os.MkdirAll(filepath.Join(repoDir, ".git"), 0o755))

	client.On("HasRevision", ctx, repoDir, "abc123").Return(true).Once()

	require.NoError(t, fetcher.Prepare(ctx, "acme/widget", "abc123"))
	client.AssertNotCalled(t, "Clone", mock.Anything, mock.Anything, mock.Anything)
}

func TestGitSnapshotFetcherPrepareFetchesMissingRevision(t *testing.T) {
	cacheDir := t.TempDir()
	client := new(MockGitClient)
	fetcher := NewGitSnapshotFetcher(client, cacheDir)

	ctx := context.Background()
	repoDir := fetcher.RepoDir("acme/widget")
	require.NoError(t, os.MkdirAll(filepath.Join(repoDir, ".git"), 0o755))

	client.On("HasRevision", ctx, repoDir, "abc123").Return(false).Twice()
	client.On("Fetch", ctx, repoDir).Return(nil).Once()

	err := fetcher.Prepare(ctx, "acme/widget", "abc123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	client.AssertExpectations(t)
}

func TestGitSnapshotFetcherDelegates(t *testing.T) {
	cacheDir := t.TempDir()
	client := new(MockGitClient)
	fetcher := NewGitSnapshotFetcher(client, cacheDir)

	ctx := context.Background()
	repoDir := fetcher.RepoDir("acme/widget")

	client.On("FirstParent", ctx, repoDir, "child").Return("parent", nil).Once()
	client.On("ShowFile", ctx, repoDir, "parent", "pkg/a.go").Return([]byte("package a\n"), nil).Once()

	parent, err := fetcher.Parent(ctx, "acme/widget", "child")
	require.NoError(t, err)
	assert.Equal(t, "parent", parent)

	content, err := fetcher.FileAt(ctx, "acme/widget", "parent", "pkg/a.go")
	require.NoError(t, err)
	assert.Equal(t, "package a\n", string(content))

	client.AssertExpectations(t)
}
