// Package core has the indexing pipeline and the commands built on the history store.
package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/huangsam/timemachine/internal/complexity"
	"github.com/huangsam/timemachine/internal/contract"
	"github.com/huangsam/timemachine/internal/outwriter"
	"github.com/huangsam/timemachine/internal/report"
	"github.com/huangsam/timemachine/schema"
)

// ExecutorFunc defines the function signature for executing a command against the history store.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, store contract.HistoryStore) error

// ResolveComplexity returns the complexity capability for the enabled flag.
func ResolveComplexity(enabled bool) contract.Complexity {
	if !enabled {
		return contract.UnavailableComplexity()
	}
	return contract.AvailableComplexity(complexity.NewAnalyzer(complexity.DefaultRegistry()).Analyze)
}

// newLogger builds the pipeline logger for cfg.
func newLogger(cfg *contract.Config) (*logrus.Logger, error) {
	level := cfg.LogLevel
	if level == "" {
		level = contract.DefaultLogLevel
	}
	return contract.NewLogger(level, cfg.LogFile)
}

// RunIndex indexes cfg.RepoPath into store with the given git client.
func RunIndex(
	ctx context.Context,
	cfg *contract.Config,
	client contract.GitClient,
	store contract.HistoryWriter,
	log logrus.FieldLogger,
) (schema.IndexSummary, error) {
	if cfg.RepoPath == "" {
		return schema.IndexSummary{}, errors.New("repository path is required")
	}
	ix := NewIndexer(client, store, ResolveComplexity(cfg.Complexity), IndexOptionsFromConfig(cfg), log)
	return ix.Run(ctx, cfg.RepoPath)
}

// ExecuteIndex indexes (or re-indexes) the repository's full history and prints a summary.
// It serves as the main entry point for the 'index' command.
func ExecuteIndex(ctx context.Context, cfg *contract.Config, store contract.HistoryStore) error {
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	summary, err := RunIndex(ctx, cfg, contract.NewLocalGitClient(), store, log)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteIndexSummary(summary, cfg)
}

// ExecuteInit clones cfg.RepoURL unless the work directory already has content,
// then indexes it. It serves as the main entry point for the 'init' command.
func ExecuteInit(ctx context.Context, cfg *contract.Config, store contract.HistoryStore) error {
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	client := contract.NewLocalGitClient()
	dir, err := CloneIfNeeded(ctx, client, cfg.RepoURL, cfg.Workdir, log)
	if err != nil {
		return err
	}

	initCfg := cfg.Clone()
	initCfg.RepoPath = dir
	summary, err := RunIndex(ctx, initCfg, client, store, log)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteIndexSummary(summary, initCfg)
}

// CloneIfNeeded clones repoURL into dir and returns the absolute directory.
// An existing non-empty dir is reused as is. An empty dir defaults to the
// repository name taken from the URL.
func CloneIfNeeded(ctx context.Context, client contract.GitClient, repoURL, dir string, log logrus.FieldLogger) (string, error) {
	if dir == "" {
		if repoURL == "" {
			return "", errors.New("--repo-url or --workdir is required")
		}
		dir = RepoNameFromURL(repoURL)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	entries, err := os.ReadDir(abs)
	if err == nil && len(entries) > 0 {
		log.WithField("dir", abs).Info("reusing existing checkout")
		return abs, nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to inspect %s: %w", abs, err)
	}
	if repoURL == "" {
		return "", fmt.Errorf("%s is empty and no --repo-url was given", abs)
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", err
	}
	log.WithFields(logrus.Fields{"url": repoURL, "dir": abs}).Info("cloning repository")
	if err := client.Clone(ctx, repoURL, abs); err != nil {
		return "", fmt.Errorf("failed to clone %s: %w", repoURL, err)
	}
	return abs, nil
}

// RepoNameFromURL returns the last path element of a clone URL without its .git suffix.
func RepoNameFromURL(repoURL string) string {
	trimmed := strings.TrimRight(repoURL, "/")
	if i := strings.LastIndex(trimmed, ":"); i >= 0 && !strings.Contains(trimmed, "://") {
		trimmed = trimmed[i+1:] // scp-like git@host:org/repo
	}
	name := strings.TrimSuffix(path.Base(trimmed), ".git")
	if name == "" || name == "." || name == "/" {
		return "repo"
	}
	return name
}

// GetAnswer answers cfg.Question from the store.
func GetAnswer(ctx context.Context, cfg *contract.Config, store contract.HistoryReader) (schema.Answer, error) {
	if cfg.Question == "" {
		return schema.Answer{}, errors.New("a question is required")
	}
	return Ask(ctx, store, cfg.Question, cfg.ResultLimit)
}

// ExecuteQuery answers a free-text question about the repository's evolution.
// It serves as the main entry point for the 'query' command.
func ExecuteQuery(ctx context.Context, cfg *contract.Config, store contract.HistoryStore) error {
	answer, err := GetAnswer(ctx, cfg, store)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteAnswer(answer, cfg)
}

// GetOwnership returns ownership rows under cfg.PathPrefix, largest first.
func GetOwnership(ctx context.Context, cfg *contract.Config, store contract.HistoryReader) ([]schema.Ownership, error) {
	limit := cfg.ResultLimit
	if limit <= 0 {
		limit = contract.DefaultResultLimit
	}
	rows, err := store.OwnershipByPath(ctx, cfg.PathPrefix, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load ownership: %w", err)
	}
	return rows, nil
}

// ExecuteOwnership prints who owns the files under a path prefix.
// It serves as the main entry point for the 'ownership' command.
func ExecuteOwnership(ctx context.Context, cfg *contract.Config, store contract.HistoryStore) error {
	rows, err := GetOwnership(ctx, cfg, store)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteOwnership(rows, cfg)
}

// ExecuteVisualize renders the charts and the HTML report into cfg.OutDir.
// It serves as the main entry point for the 'visualize' command.
func ExecuteVisualize(ctx context.Context, cfg *contract.Config, store contract.HistoryStore) error {
	return visualize(ctx, cfg, store, os.Stdout)
}

func visualize(ctx context.Context, cfg *contract.Config, store contract.HistoryReader, w io.Writer) error {
	paths, err := report.Generate(ctx, store, cfg.OutDir)
	if err != nil {
		return err
	}
	for _, p := range paths {
		if _, err := fmt.Fprintf(w, "Wrote: %s\n", p); err != nil {
			return err
		}
	}
	return nil
}
