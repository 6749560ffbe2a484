package contract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/claritylab/clarity/schema"
)

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// Run executes a git command and returns its stdout output. The context
// bounds the command, so retrieval timeouts cut off hung transports.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("git command failed in %q: %s", repoPath, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}

// Clone implements the GitClient interface. It cannot go through Run
// because the target directory does not exist yet.
func (c *LocalGitClient) Clone(ctx context.Context, url, repoPath string) error {
	cmd := exec.CommandContext(ctx, "git", "clone", "--quiet", url, repoPath)
	_, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return fmt.Errorf("git clone of %s failed: %s", url, stderr)
	} else if err != nil {
		return fmt.Errorf("git clone of %s failed: %w", url, err)
	}
	return nil
}

// Fetch implements the GitClient interface.
func (c *LocalGitClient) Fetch(ctx context.Context, repoPath string) error {
	_, err := c.Run(ctx, repoPath, "fetch", "--quiet", "origin")
	return err
}

// HasRevision implements the GitClient interface.
func (c *LocalGitClient) HasRevision(ctx context.Context, repoPath, rev string) bool {
	_, err := c.Run(ctx, repoPath, "cat-file", "-e", rev+"^{commit}")
	return err == nil
}

// FirstParent implements the GitClient interface. It reads the parent
// list of the commit itself, so it distinguishes a root commit from a
// missing one.
func (c *LocalGitClient) FirstParent(ctx context.Context, repoPath, sha string) (string, error) {
	out, err := c.Run(ctx, repoPath, "rev-list", "--parents", "-n", "1", sha)
	if err != nil {
		return "", err
	}
	fields := strings.Fields(string(out))
	if len(fields) < 2 {
		return "", schema.ErrNoParent
	}
	return fields[1], nil
}

// ChangedFiles implements the GitClient interface. Rename detection is
// enabled so a moved file keeps its before/after pairing.
func (c *LocalGitClient) ChangedFiles(ctx context.Context, repoPath, base, target string) ([]schema.ChangedFile, error) {
	out, err := c.Run(ctx, repoPath, "diff", "--name-status", "-M", base, target)
	if err != nil {
		return nil, err
	}

	var files []schema.ChangedFile
	for line := range strings.SplitSeq(strings.TrimSpace(string(out)), "\n") {
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			continue
		}
		status := string(parts[0][0])
		switch status {
		case schema.StatusRenamed:
			if len(parts) < 3 {
				continue
			}
			files = append(files, schema.ChangedFile{Path: parts[2], OldPath: parts[1], Status: schema.StatusRenamed})
		case "C":
			// A copy leaves the source untouched, so only the new path counts.
			if len(parts) < 3 {
				continue
			}
			files = append(files, schema.ChangedFile{Path: parts[2], Status: schema.StatusAdded})
		case "T":
			files = append(files, schema.ChangedFile{Path: parts[1], Status: schema.StatusModified})
		case schema.StatusAdded, schema.StatusModified, schema.StatusDeleted:
			files = append(files, schema.ChangedFile{Path: parts[1], Status: status})
		}
	}
	return files, nil
}

// ShowFile implements the GitClient interface.
func (c *LocalGitClient) ShowFile(ctx context.Context, repoPath, rev, path string) ([]byte, error) {
	return c.Run(ctx, repoPath, "show", rev+":"+path)
}
