package contract

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/claritylab/clarity/schema"
)

// MockGitClient is a mock implementation of GitClient for testing.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	callArgs := make([]any, 0, len(args)+2)
	callArgs = append(callArgs, ctx, repoPath)
	for _, arg := range args {
		callArgs = append(callArgs, arg)
	}
	ret := m.Called(callArgs...)
	out, _ := ret.Get(0).([]byte)
	return out, ret.Error(1)
}

// Clone implements the GitClient interface.
func (m *MockGitClient) Clone(ctx context.Context, url, repoPath string) error {
	ret := m.Called(ctx, url, repoPath)
	return ret.Error(0)
}

// Fetch implements the GitClient interface.
func (m *MockGitClient) Fetch(ctx context.Context, repoPath string) error {
	ret := m.Called(ctx, repoPath)
	return ret.Error(0)
}

// HasRevision implements the GitClient interface.
func (m *MockGitClient) HasRevision(ctx context.Context, repoPath, rev string) bool {
	ret := m.Called(ctx, repoPath, rev)
	return ret.Bool(0)
}

// FirstParent implements the GitClient interface.
func (m *MockGitClient) FirstParent(ctx context.Context, repoPath, sha string) (string, error) {
	ret := m.Called(ctx, repoPath, sha)
	return ret.String(0), ret.Error(1)
}

// ChangedFiles implements the GitClient interface.
func (m *MockGitClient) ChangedFiles(ctx context.Context, repoPath, base, target string) ([]schema.ChangedFile, error) {
	ret := m.Called(ctx, repoPath, base, target)
	files, _ := ret.Get(0).([]schema.ChangedFile)
	return files, ret.Error(1)
}

// ShowFile implements the GitClient interface.
func (m *MockGitClient) ShowFile(ctx context.Context, repoPath, rev, path string) ([]byte, error) {
	ret := m.Called(ctx, repoPath, rev, path)
	out, _ := ret.Get(0).([]byte)
	return out, ret.Error(1)
}

// MockSnapshotFetcher is a mock implementation of SnapshotFetcher for testing.
type MockSnapshotFetcher struct {
	mock.Mock
}

var _ SnapshotFetcher = &MockSnapshotFetcher{} // Compile-time check

// Prepare implements the SnapshotFetcher interface.
func (m *MockSnapshotFetcher) Prepare(ctx context.Context, repo, sha string) error {
	ret := m.Called(ctx, repo, sha)
	return ret.Error(0)
}

// Parent implements the SnapshotFetcher interface.
func (m *MockSnapshotFetcher) Parent(ctx context.Context, repo, sha string) (string, error) {
	ret := m.Called(ctx, repo, sha)
	return ret.String(0), ret.Error(1)
}

// ChangedFiles implements the SnapshotFetcher interface.
func (m *MockSnapshotFetcher) ChangedFiles(ctx context.Context, repo, base, sha string) ([]schema.ChangedFile, error) {
	ret := m.Called(ctx, repo, base, sha)
	files, _ := ret.Get(0).([]schema.ChangedFile)
	return files, ret.Error(1)
}

// FileAt implements the SnapshotFetcher interface.
func (m *MockSnapshotFetcher) FileAt(ctx context.Context, repo, rev, path string) ([]byte, error) {
	ret := m.Called(ctx, repo, rev, path)
	out, _ := ret.Get(0).([]byte)
	return out, ret.Error(1)
}

// MockSourceAnalyzer is a mock implementation of SourceAnalyzer for testing.
type MockSourceAnalyzer struct {
	mock.Mock
}

var _ SourceAnalyzer = &MockSourceAnalyzer{} // Compile-time check

// Analyze implements the SourceAnalyzer interface.
func (m *MockSourceAnalyzer) Analyze(path string, src []byte) (schema.FileMetric, error) {
	ret := m.Called(path, src)
	metric, _ := ret.Get(0).(schema.FileMetric)
	return metric, ret.Error(1)
}
