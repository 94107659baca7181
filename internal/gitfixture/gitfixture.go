// Package gitfixture builds throwaway git repositories with deterministic history for tests.
package gitfixture

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// baseTime is the author time of the first fixture commit. Each commit adds one day.
const baseTime = int64(1700000000)

// Author identifies who made a fixture commit.
type Author struct {
	Name  string
	Email string
}

// Default authors used across tests.
var (
	Alice = Author{Name: "Alice Doe", Email: "alice@example.com"}
	Bob   = Author{Name: "Bob Roe", Email: "bob@example.com"}
)

// Repo is a scratch repository rooted in a test temp dir.
type Repo struct {
	t       testing.TB
	Dir     string
	commits int
}

// New initializes an empty repository. The test is skipped when git is not on PATH.
func New(t testing.TB) *Repo {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git binary not found in PATH: %v", err)
	}
	r := &Repo{t: t, Dir: t.TempDir()}
	r.Git("init", "-q")
	r.Git("config", "commit.gpgsign", "false")
	return r
}

// Git runs a git command inside the repository and returns trimmed stdout.
func (r *Repo) Git(args ...string) string {
	r.t.Helper()
	return r.gitEnv(nil, args...)
}

func (r *Repo) gitEnv(env []string, args ...string) string {
	r.t.Helper()
	cmd := exec.Command("git", append([]string{"-C", r.Dir}, args...)...)
	cmd.Env = append(os.Environ(), "GIT_CONFIG_NOSYSTEM=1", "GIT_CONFIG_GLOBAL="+os.DevNull)
	cmd.Env = append(cmd.Env, env...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		r.t.Fatalf("git %s failed: %v\n%s", strings.Join(args, " "), err, out)
	}
	return strings.TrimSpace(string(out))
}

// Write creates or overwrites a text file.
func (r *Repo) Write(path string, content string) {
	r.t.Helper()
	r.WriteBytes(path, []byte(content))
}

// WriteBytes creates or overwrites a file with raw content.
func (r *Repo) WriteBytes(path string, content []byte) {
	r.t.Helper()
	full := filepath.Join(r.Dir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		r.t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(full, content, 0o644); err != nil {
		r.t.Fatalf("write %s: %v", path, err)
	}
}

// Remove deletes a tracked file.
func (r *Repo) Remove(path string) {
	r.t.Helper()
	r.Git("rm", "-q", path)
}

// Move renames a tracked file.
func (r *Repo) Move(oldPath, newPath string) {
	r.t.Helper()
	full := filepath.Join(r.Dir, filepath.FromSlash(newPath))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		r.t.Fatalf("mkdir for %s: %v", newPath, err)
	}
	r.Git("mv", oldPath, newPath)
}

// Commit stages everything and commits it as author, returning the new commit hash.
func (r *Repo) Commit(message string, author Author) string {
	r.t.Helper()
	when := fmt.Sprintf("@%d +0000", r.NextTime())
	env := []string{
		"GIT_AUTHOR_NAME=" + author.Name,
		"GIT_AUTHOR_EMAIL=" + author.Email,
		"GIT_AUTHOR_DATE=" + when,
		"GIT_COMMITTER_NAME=" + author.Name,
		"GIT_COMMITTER_EMAIL=" + author.Email,
		"GIT_COMMITTER_DATE=" + when,
	}
	r.Git("add", "-A")
	r.gitEnv(env, "commit", "-q", "--allow-empty", "-m", message)
	r.commits++
	return r.Git("rev-parse", "HEAD")
}

// NextTime returns the author time the next Commit call will use.
func (r *Repo) NextTime() int64 {
	return baseTime + int64(r.commits)*86400
}
