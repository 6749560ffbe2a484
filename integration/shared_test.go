//go:build basic || database

// Package integration contains end-to-end tests for the clarity CLI.
// These tests are excluded from normal test runs due to build tags.
// To run them: go test -tags basic ./integration
// The database tests need Docker: go test -tags database ./integration
package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/claritylab/clarity/internal/parquet"
)

var (
	// sharedClarityPath holds the path to a shared clarity binary built once for all tests.
	sharedClarityPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	// Run all tests
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getClarityBinary returns the path to the clarity binary, building it once if needed.
func getClarityBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		// Create a temp directory for the binary
		var err error
		tempDir, err = os.MkdirTemp("", "clarity-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		clarityPath := filepath.Join(tempDir, "clarity")
		buildCmd := exec.Command("go", "build", "-o", clarityPath, "./cmd/clarity")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		err = buildCmd.Run()
		if err != nil {
			panic(fmt.Sprintf("failed to build clarity: %v", err))
		}

		sharedClarityPath = clarityPath
	})

	return sharedClarityPath
}

// runClarity runs the clarity binary with the given environment
// overrides and returns its combined output.
func runClarity(t *testing.T, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getClarityBinary(), args...)
	cmd.Dir = "../" // Run from project root
	cmd.Env = append(os.Environ(), env...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), string(output))
	}
	return string(output), err
}

// runGit executes git in dir under a fixed identity, so commits work
// without any global git configuration.
func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=widget-bot",
		"GIT_AUTHOR_EMAIL=widgets@example.com",
		"GIT_COMMITTER_NAME=widget-bot",
		"GIT_COMMITTER_EMAIL=widgets@example.com",
	)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), output)
	return strings.TrimSpace(string(output))
}

// fixtureRepo is the repository slug used across the seeded dataset.
const fixtureRepo = "octo/widgets"

// Source snapshots committed to the fixture repository. The second
// commit rewrites the greeter, the third rewrites it again and adds a
// counter next to it.
const (
	greeterV1 = `package widgets

func Greet(name string) string {
	return "hello " + name
}
`

	greeterV2 = `package widgets

// Greet builds a greeting, defaulting the empty name.
func Greet(name string) string {
	if name == "" {
		name = "world"
	}
	return "hello " + name
}
`

	greeterV3 = `package widgets

import "strings"

// Greet builds a greeting, defaulting blank names.
func Greet(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "world"
	}
	return "hello " + name
}
`

	counterV1 = `package widgets

// Positive counts the values above zero.
func Positive(values []int) int {
	count := 0
	for _, v := range values {
		if v > 0 {
			count++
		}
	}
	return count
}
`
)

// fixtureSHAs are the commits of the seeded repository, plus one hash
// that appears only in the commits table.
type fixtureSHAs struct {
	initial string // root commit, excluded by its unmerged pull request
	modify  string // rewrites greeter.go
	expand  string // rewrites greeter.go and adds counter.go
	phantom string // never exists in the repository
}

// seedPipelineData builds a complete dataset under dir: a local git
// repository placed where the collector caches clones for octo/widgets,
// plus the three raw Parquet tables describing its commits. It returns
// the environment pointing clarity at the dataset.
func seedPipelineData(t *testing.T, dir string) ([]string, fixtureSHAs) {
	t.Helper()

	dataDir := filepath.Join(dir, "data")
	repoDir := filepath.Join(dataDir, "repos", "octo__widgets")
	require.NoError(t, os.MkdirAll(repoDir, 0o755))

	runGit(t, repoDir, "init", "--quiet")

	commitFiles := func(msg string, files map[string]string) string {
		for name, src := range files {
			require.NoError(t, os.WriteFile(filepath.Join(repoDir, name), []byte(src), 0o644))
		}
		runGit(t, repoDir, "add", ".")
		runGit(t, repoDir, "commit", "--quiet", "-m", msg)
		return runGit(t, repoDir, "rev-parse", "HEAD")
	}

	var shas fixtureSHAs
	shas.initial = commitFiles("initial greeter", map[string]string{"greeter.go": greeterV1})
	shas.modify = commitFiles("refactor: clearer greeting default", map[string]string{"greeter.go": greeterV2})
	shas.expand = commitFiles("add positive counter", map[string]string{"greeter.go": greeterV3, "counter.go": counterV1})
	shas.phantom = strings.Repeat("f", 40)

	writeRawTables(t, dataDir, shas)

	return []string{"CLARITY_DATA_DIR=" + dataDir}, shas
}

// writeRawTables writes the three raw input tables. The commit rows mix
// in one file on an unmerged pull request, one file with a non-source
// extension and one file with an empty diff, so every extract filter
// has something to drop.
func writeRawTables(t *testing.T, dataDir string, shas fixtureSHAs) {
	t.Helper()

	commits := []parquet.CommitRow{
		{PRID: 101, SHA: shas.modify, Repo: fixtureRepo, Filename: "greeter.go", Additions: 5, Deletions: 1, Status: "M"},
		{PRID: 101, SHA: shas.modify, Repo: fixtureRepo, Filename: "README.md", Additions: 4, Deletions: 0, Status: "M"},
		{PRID: 101, SHA: shas.modify, Repo: fixtureRepo, Filename: "empty.go", Additions: 0, Deletions: 0, Status: "M"},
		{PRID: 102, SHA: shas.expand, Repo: fixtureRepo, Filename: "greeter.go", Additions: 4, Deletions: 1, Status: "M"},
		{PRID: 102, SHA: shas.expand, Repo: fixtureRepo, Filename: "counter.go", Additions: 12, Deletions: 0, Status: "A"},
		{PRID: 103, SHA: shas.phantom, Repo: fixtureRepo, Filename: "phantom.go", Additions: 6, Deletions: 2, Status: "M"},
		{PRID: 104, SHA: shas.initial, Repo: fixtureRepo, Filename: "greeter.go", Additions: 5, Deletions: 0, Status: "A"},
	}

	created := time.Date(2025, time.June, 9, 9, 30, 0, 0, time.UTC)
	merged := created.Add(26 * time.Hour)
	pulls := []parquet.PullRequestRow{
		{ID: 101, Merged: true, Agent: "assistant", CreatedAt: created, MergedAt: &merged},
		{ID: 102, Merged: true, Agent: "human", CreatedAt: created.Add(time.Hour), MergedAt: &merged},
		{ID: 103, Merged: true, Agent: "assistant", CreatedAt: created.Add(2 * time.Hour), MergedAt: &merged},
		{ID: 104, Merged: false, Agent: "human", CreatedAt: created.Add(3 * time.Hour)},
	}

	details := []parquet.CommitDetailRow{
		{SHA: shas.initial, Message: "initial greeter", Author: "widget-bot", AuthoredAt: created},
		{SHA: shas.modify, Message: "refactor: clearer greeting default", Author: "widget-bot", AuthoredAt: created.Add(time.Hour)},
		{SHA: shas.expand, Message: "add positive counter", Author: "widget-bot", AuthoredAt: created.Add(2 * time.Hour)},
		{SHA: shas.phantom, Message: "tune phantom widget", Author: "widget-bot", AuthoredAt: created.Add(3 * time.Hour)},
	}

	require.NoError(t, parquet.WriteCommitsParquet(commits, filepath.Join(dataDir, "commits.parquet")))
	require.NoError(t, parquet.WritePullRequestsParquet(pulls, filepath.Join(dataDir, "pull_requests.parquet")))
	require.NoError(t, parquet.WriteCommitDetailsParquet(details, filepath.Join(dataDir, "commit_details.parquet")))
}
