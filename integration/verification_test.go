//go:build integration

// Package integration contains integration tests for timemachine.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags integration ./integration
package integration

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/timemachine/internal/gitfixture"
)

// ownershipRow is the part of the JSON ownership output the checks need.
type ownershipRow struct {
	Path        string `json:"path"`
	AuthorEmail string `json:"author_email"`
	Commits     int    `json:"commits"`
}

// TestOwnershipVerification indexes a fixture repository and checks commit counts against git log.
func TestOwnershipVerification(t *testing.T) {
	repo := gitfixture.New(t)
	repo.Write("README.md", "# fixture\n")
	repo.Write("pkg/a.go", "package pkg\n")
	repo.Commit("Initial import", gitfixture.Alice)
	repo.Write("pkg/a.go", "package pkg\n\nfunc A() {}\n")
	repo.Commit("Add A", gitfixture.Bob)
	repo.Write("pkg/a.go", "package pkg\n\nfunc A() { println() }\n")
	repo.Write("README.md", "# fixture\n\nMore.\n")
	repo.Commit("Touch both", gitfixture.Bob)

	dbPath := filepath.Join(t.TempDir(), "history.db")
	_, err := runTimemachine(t, repo.Dir, "index", "--db-connect", dbPath)
	require.NoError(t, err)

	jsonPath := filepath.Join(t.TempDir(), "ownership.json")
	_, err = runTimemachine(t, repo.Dir, "ownership", "--db-connect", dbPath, "--output", "json", "--output-file", jsonPath, "--limit", "100")
	require.NoError(t, err)

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var rows []ownershipRow
	require.NoError(t, json.Unmarshal(data, &rows))
	require.NotEmpty(t, rows)

	for _, row := range rows {
		t.Run(row.Path+"/"+row.AuthorEmail, func(t *testing.T) {
			gitCmd := exec.Command("git", "log", "--oneline", "--author="+row.AuthorEmail, "--", row.Path)
			gitCmd.Dir = repo.Dir
			gitOutput, err := gitCmd.Output()
			require.NoError(t, err)
			gitLines := strings.Split(strings.TrimSpace(string(gitOutput)), "\n")
			if gitLines[0] == "" {
				gitLines = []string{}
			}
			assert.Equal(t, len(gitLines), row.Commits, "commit count mismatch for %s", row.Path)
		})
	}
}

// TestQueryVerification checks that rationale questions return the commit that explains itself.
func TestQueryVerification(t *testing.T) {
	repo := gitfixture.New(t)
	repo.Write("cache.go", "package cache\n")
	repo.Commit("Introduce cache because lookups were slow", gitfixture.Alice)
	repo.Write("cache.go", "package cache\n\n// LRU\n")
	repo.Commit("Tweak comment", gitfixture.Bob)

	dbPath := filepath.Join(t.TempDir(), "history.db")
	_, err := runTimemachine(t, repo.Dir, "index", "--db-connect", dbPath)
	require.NoError(t, err)

	out, err := runTimemachine(t, repo.Dir, "query", "why", "was", "the", "cache", "introduced", "--db-connect", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Introduce cache because lookups were slow")
	assert.NotContains(t, out, "Tweak comment")
}
