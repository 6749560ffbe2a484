package contract

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claritylab/clarity/schema"
)

// skipIfGitNotAvailable skips the test if git binary is not found in PATH
func skipIfGitNotAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git binary not found in PATH: %v", err)
	}
}

// runGit runs a git command in dir with a fixed identity, failing the
// test on error.
func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	fullArgs := append([]string{
		"-C", dir,
		"-c", "user.name=clarity-test",
		"-c", "user.email=clarity@test.invalid",
	}, args...)
	out, err := exec.Command("git", fullArgs...).Output()
	require.NoError(t, err, "git %v", args)
	return string(out)
}

// writeFile writes content to a file under dir.
func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// headSHA returns the current HEAD hash of dir.
func headSHA(t *testing.T, dir string) string {
	t.Helper()
	return strings.TrimSpace(runGit(t, dir, "rev-parse", "HEAD"))
}

func TestNewLocalGitClient(t *testing.T) {
	client := NewLocalGitClient()
	assert.NotNil(t, client)
}

func TestLocalGitClientHistoryWalk(t *testing.T) {
	skipIfGitNotAvailable(t)

	dir := t.TempDir()
	runGit(t, dir, "init", "--quiet")

	writeFile(t, dir, "alpha.go", "package main\n\nfunc main() {}\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "--quiet", "-m", "initial commit")
	first := headSHA(t, dir)

	writeFile(t, dir, "alpha.go", "package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n")
	writeFile(t, dir, "beta.go", "package main\n\nfunc beta() int { return 2 }\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "--quiet", "-m", "grow the program")
	second := headSHA(t, dir)

	client := NewLocalGitClient()
	ctx := context.Background()

	t.Run("first parent of a child commit", func(t *testing.T) {
		parent, err := client.FirstParent(ctx, dir, second)
		require.NoError(t, err)
		assert.Equal(t, first, parent)
	})

	t.Run("root commit has no parent", func(t *testing.T) {
		_, err := client.FirstParent(ctx, dir, first)
		assert.ErrorIs(t, err, schema.ErrNoParent)
	})

	t.Run("changed files between revisions", func(t *testing.T) {
		files, err := client.ChangedFiles(ctx, dir, first, second)
		require.NoError(t, err)
		require.Len(t, files, 2)

		byPath := make(map[string]schema.ChangedFile)
		for _, f := range files {
			byPath[f.Path] = f
		}
		assert.Equal(t, schema.StatusModified, byPath["alpha.go"].Status)
		assert.Equal(t, schema.StatusAdded, byPath["beta.go"].Status)
	})

	t.Run("file content at revision", func(t *testing.T) {
		before, err := client.ShowFile(ctx, dir, first, "alpha.go")
		require.NoError(t, err)
		assert.Equal(t, "package main\n\nfunc main() {}\n", string(before))
	})

	t.Run("revision probes", func(t *testing.T) {
		assert.True(t, client.HasRevision(ctx, dir, second))
		assert.False(t, client.HasRevision(ctx, dir, "0000000000000000000000000000000000000000"))
	})
}

func TestLocalGitClientRename(t *testing.T) {
	skipIfGitNotAvailable(t)

	dir := t.TempDir()
	runGit(t, dir, "init", "--quiet")

	content := "package thing\n\nfunc Value() int {\n\treturn 42\n}\n"
	writeFile(t, dir, "old_name.go", content)
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "--quiet", "-m", "add thing")
	first := headSHA(t, dir)

	runGit(t, dir, "mv", "old_name.go", "new_name.go")
	runGit(t, dir, "commit", "--quiet", "-m", "rename thing")
	second := headSHA(t, dir)

	client := NewLocalGitClient()
	files, err := client.ChangedFiles(context.Background(), dir, first, second)
	require.NoError(t, err)
	require.Len(t, files, 1)

	assert.Equal(t, schema.StatusRenamed, files[0].Status)
	assert.Equal(t, "old_name.go", files[0].OldPath)
	assert.Equal(t, "new_name.go", files[0].Path)
	assert.Equal(t, "old_name.go", files[0].BeforePath())
	assert.Equal(t, "new_name.go", files[0].AfterPath())
}

func TestLocalGitClientRunError(t *testing.T) {
	skipIfGitNotAvailable(t)

	client := NewLocalGitClient()
	_, err := client.Run(context.Background(), t.TempDir(), "rev-parse", "HEAD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git command failed")
}

// TestMockGitClient_Run ensures the mock correctly records and returns
// expected values when its Run method is called.
func TestMockGitClient_Run(t *testing.T) {
	mockClient := new(MockGitClient)

	const expectedRepoPath = "/path/to/repo"
	expectedArgs := []string{"rev-list", "--parents", "-n", "1", "HEAD"}
	expectedOutput := []byte("a1b2c3d e5f6a7b")
	expectedError := errors.New("mocked git error")

	var calledArgs []any
	ctx := context.Background()
	calledArgs = append(calledArgs, ctx, expectedRepoPath)
	for _, arg := range expectedArgs {
		calledArgs = append(calledArgs, arg)
	}

	mockClient.
		On("Run", calledArgs...).
		Return(expectedOutput, expectedError).
		Once()

	actualOutput, actualError := mockClient.Run(ctx, expectedRepoPath, expectedArgs...)

	assert.Equal(t, expectedOutput, actualOutput)
	assert.Equal(t, expectedError, actualError)
	mockClient.AssertExpectations(t)
}
