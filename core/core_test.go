package core

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/timemachine/internal/contract"
	"github.com/huangsam/timemachine/internal/gitfixture"
	"github.com/huangsam/timemachine/internal/iocache"
	"github.com/huangsam/timemachine/internal/report"
	"github.com/huangsam/timemachine/schema"
)

func TestRepoNameFromURL(t *testing.T) {
	tests := map[string]string{
		"https://github.com/psf/requests.git":  "requests",
		"https://github.com/psf/requests":      "requests",
		"https://github.com/psf/requests.git/": "requests",
		"git@github.com:psf/requests.git":      "requests",
		"/srv/git/tools.git":                   "tools",
		"":                                     "repo",
	}
	for url, expected := range tests {
		assert.Equal(t, expected, RepoNameFromURL(url), url)
	}
}

func TestCloneIfNeeded(t *testing.T) {
	ctx := context.Background()
	log := contract.NewDiscardLogger()

	t.Run("clones into missing dir", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "requests")
		client := new(contract.MockGitClient)
		client.On("Clone", mock.Anything, "https://example.com/requests.git", dir).Return(nil)

		got, err := CloneIfNeeded(ctx, client, "https://example.com/requests.git", dir, log)
		require.NoError(t, err)
		assert.Equal(t, dir, got)
		client.AssertExpectations(t)
	})

	t.Run("reuses non-empty dir", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hi"), 0o644))
		client := new(contract.MockGitClient)

		got, err := CloneIfNeeded(ctx, client, "https://example.com/requests.git", dir, log)
		require.NoError(t, err)
		assert.Equal(t, dir, got)
		client.AssertNotCalled(t, "Clone", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty dir without url", func(t *testing.T) {
		_, err := CloneIfNeeded(ctx, new(contract.MockGitClient), "", t.TempDir(), log)
		assert.Error(t, err)
	})

	t.Run("nothing given", func(t *testing.T) {
		_, err := CloneIfNeeded(ctx, new(contract.MockGitClient), "", "", log)
		assert.Error(t, err)
	})

	t.Run("clone failure", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "x")
		client := new(contract.MockGitClient)
		client.On("Clone", mock.Anything, "u", dir).Return(assert.AnError)

		_, err := CloneIfNeeded(ctx, client, "u", dir, log)
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestRunIndexRequiresRepoPath(t *testing.T) {
	_, err := RunIndex(context.Background(), &contract.Config{}, new(contract.MockGitClient),
		new(iocache.MockHistoryStore), contract.NewDiscardLogger())
	assert.ErrorContains(t, err, "repository path is required")
}

func TestGetAnswer(t *testing.T) {
	ctx := context.Background()
	store := new(iocache.MockHistoryStore)

	_, err := GetAnswer(ctx, &contract.Config{}, store)
	assert.Error(t, err)

	store.On("SearchCommitsByMessage", ctx, "%cache%", 4).Return([]schema.Commit{loginCommit}, nil)
	answer, err := GetAnswer(ctx, &contract.Config{Question: "cache", ResultLimit: 4}, store)
	require.NoError(t, err)
	assert.Len(t, answer.Commits, 1)
}

func TestGetOwnership(t *testing.T) {
	ctx := context.Background()
	rows := []schema.Ownership{{FileID: 1, Path: "src/a.go", AuthorEmail: "alice@example.com", Commits: 3}}

	store := new(iocache.MockHistoryStore)
	store.On("OwnershipByPath", ctx, "src/", contract.DefaultResultLimit).Return(rows, nil)
	got, err := GetOwnership(ctx, &contract.Config{PathPrefix: "src/"}, store)
	require.NoError(t, err)
	assert.Equal(t, rows, got)

	failing := new(iocache.MockHistoryStore)
	failing.On("OwnershipByPath", ctx, "", 5).Return(nil, assert.AnError)
	_, err = GetOwnership(ctx, &contract.Config{ResultLimit: 5}, failing)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestComputeOwnershipError(t *testing.T) {
	store := new(iocache.MockHistoryStore)
	store.On("RebuildOwnership", mock.Anything).Return(int64(0), assert.AnError)

	_, err := ComputeOwnership(context.Background(), store, contract.NewDiscardLogger())
	assert.ErrorIs(t, err, assert.AnError)
}

func TestVisualize(t *testing.T) {
	store := newMemoryStore(t)
	runIndexer(t, threeCommitHistory(), store, DefaultIndexOptions())

	outDir := filepath.Join(t.TempDir(), "charts")
	var buf bytes.Buffer
	require.NoError(t, visualize(context.Background(), &contract.Config{OutDir: outDir}, store, &buf))

	for _, name := range []string{report.OwnershipFile, report.ChurnFile, report.ComplexityFile, report.IndexFile} {
		path := filepath.Join(outDir, name)
		assert.FileExists(t, path)
		assert.Contains(t, buf.String(), "Wrote: "+path)
	}
}

// TestIndexLocalRepository runs the whole pipeline against a real git repository.
func TestIndexLocalRepository(t *testing.T) {
	repo := gitfixture.New(t)
	repo.Write("src/auth/login.go", loginSource)
	repo.WriteBytes("assets/logo.png", logoBlob)
	first := repo.Commit("Fixes #42 - add login throttle", gitfixture.Alice)

	repo.Move("src/auth/login.go", "internal/auth/login.go")
	repo.Write("README.md", "# readme\n")
	repo.Commit("PROJ-7 move auth because of the new layout", gitfixture.Bob)

	repo.Remove("assets/logo.png")
	head := repo.Commit("Remove logo", gitfixture.Alice)

	ctx := context.Background()
	store := newMemoryStore(t)
	cfg := &contract.Config{
		RepoPath:            repo.Dir,
		Ref:                 contract.DefaultRef,
		ChangeBatchSize:     contract.DefaultChangeBatchSize,
		ComplexityBatchSize: contract.DefaultComplexityBatchSize,
		FeatureBatchSize:    contract.DefaultFeatureBatchSize,
		Complexity:          true,
		Dedupe:              true,
		ComplexityExcludes:  contract.DefaultComplexityExcludes,
	}
	summary, err := RunIndex(ctx, cfg, contract.NewLocalGitClient(), store, contract.NewDiscardLogger())
	require.NoError(t, err)

	assert.Equal(t, head, summary.Head)
	assert.Equal(t, 3, summary.Commits)
	assert.Equal(t, 5, summary.Changes)
	assert.Equal(t, 1, summary.Renames)
	assert.Equal(t, 3, summary.Features)
	assert.Equal(t, 2, summary.ComplexitySamples)

	changes, err := store.ExportChanges(ctx)
	require.NoError(t, err)
	var sawBinary, sawRename bool
	for _, c := range changes {
		if c.CommitID == first && c.NewPath == "assets/logo.png" {
			sawBinary = c.IsBinary
		}
		if c.ChangeType == schema.ChangeRenamed {
			sawRename = c.OldPath == "src/auth/login.go" && c.NewPath == "internal/auth/login.go"
		}
	}
	assert.True(t, sawBinary)
	assert.True(t, sawRename)

	answer, err := Ask(ctx, store, "how did login evolve", 10)
	require.NoError(t, err)
	assert.Len(t, answer.Commits, 2, "the add and the rename touch auth paths")

	owners, err := GetOwnership(ctx, &contract.Config{PathPrefix: "internal/"}, store)
	require.NoError(t, err)
	require.Len(t, owners, 1)
	assert.Equal(t, gitfixture.Bob.Email, owners[0].AuthorEmail)
}
