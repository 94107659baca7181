package contract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/huangsam/timemachine/schema"
)

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// Run executes a git command and returns its stdout.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	return runGit(ctx, repoPath, fullArgs...)
}

func runGit(ctx context.Context, where string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("git command failed in %q: %s. If this is not a Git repository, verify the path or run 'git init'", where, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w: %w. Ensure Git is installed and available on your PATH", ErrGitUnavailable, err)
	}
	return out, nil
}

// GetRepoHash implements the GitClient interface.
func (c *LocalGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	out, err := c.Run(ctx, repoPath, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// GetRepoRoot implements the GitClient interface.
func (c *LocalGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	out, err := c.Run(ctx, contextPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Clone implements the GitClient interface.
func (c *LocalGitClient) Clone(ctx context.Context, repoURL string, dir string) error {
	_, err := runGit(ctx, dir, "clone", "--quiet", repoURL, dir)
	return err
}

// ListCommits implements the GitClient interface.
func (c *LocalGitClient) ListCommits(ctx context.Context, repoPath string, ref string) ([]schema.CommitRecord, error) {
	if ref == "" {
		ref = "--all"
	}
	out, err := c.Run(ctx, repoPath, "log", ref, "--pretty=format:"+commitLogFormat)
	if err != nil {
		return nil, err
	}
	return ParseCommitLog(out)
}

// Diff implements the GitClient interface.
func (c *LocalGitClient) Diff(ctx context.Context, repoPath string, commit string, parent string) ([]schema.ChangeEntry, error) {
	args := append([]string{"diff-tree", "-r", "-z", "--no-commit-id", "-M", "--raw"}, treeArgs(commit, parent)...)
	out, err := c.Run(ctx, repoPath, args...)
	if err != nil {
		return nil, err
	}
	return ParseRawDiff(out)
}

// Stats implements the GitClient interface.
func (c *LocalGitClient) Stats(ctx context.Context, repoPath string, commit string, parent string) (map[string]schema.LineStats, error) {
	args := append([]string{"diff-tree", "-r", "-z", "--no-commit-id", "-M", "--numstat"}, treeArgs(commit, parent)...)
	out, err := c.Run(ctx, repoPath, args...)
	if err != nil {
		return nil, err
	}
	return ParseNumstat(out)
}

// ReadBlob implements the GitClient interface.
func (c *LocalGitClient) ReadBlob(ctx context.Context, repoPath string, blob string) ([]byte, error) {
	return c.Run(ctx, repoPath, "cat-file", "blob", blob)
}

// treeArgs compares against the parent, or against the empty tree for a root commit.
func treeArgs(commit, parent string) []string {
	if parent == "" {
		return []string{"--root", commit}
	}
	return []string{parent, commit}
}
