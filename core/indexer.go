package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/huangsam/timemachine/internal/contract"
	"github.com/huangsam/timemachine/schema"
)

// progressEvery controls how often the diff pass logs progress.
const progressEvery = 500

// IndexOptions tunes one indexing run. Batch sizes bound memory only; any size of
// at least one yields the same stored rows.
type IndexOptions struct {
	Ref                 string
	ChangeBatchSize     int
	ComplexityBatchSize int
	FeatureBatchSize    int
	Dedupe              bool
	ComplexityExcludes  []string
}

// DefaultIndexOptions returns the options used when nothing is configured.
func DefaultIndexOptions() IndexOptions {
	return IndexOptions{
		Ref:                 contract.DefaultRef,
		ChangeBatchSize:     contract.DefaultChangeBatchSize,
		ComplexityBatchSize: contract.DefaultComplexityBatchSize,
		FeatureBatchSize:    contract.DefaultFeatureBatchSize,
		Dedupe:              true,
		ComplexityExcludes:  contract.DefaultComplexityExcludes,
	}
}

// IndexOptionsFromConfig maps validated CLI configuration to indexing options.
func IndexOptionsFromConfig(cfg *contract.Config) IndexOptions {
	return IndexOptions{
		Ref:                 cfg.Ref,
		ChangeBatchSize:     cfg.ChangeBatchSize,
		ComplexityBatchSize: cfg.ComplexityBatchSize,
		FeatureBatchSize:    cfg.FeatureBatchSize,
		Dedupe:              cfg.Dedupe,
		ComplexityExcludes:  cfg.ComplexityExcludes,
	}
}

// Indexer walks a repository's history and writes it to the store.
// It is the only writer for the duration of Run.
type Indexer struct {
	git        contract.GitClient
	store      contract.HistoryWriter
	complexity contract.Complexity
	extractor  *FeatureExtractor
	opts       IndexOptions
	log        logrus.FieldLogger
	now        func() time.Time
}

// NewIndexer wires an indexer. Non-positive batch sizes fall back to one.
func NewIndexer(
	git contract.GitClient,
	store contract.HistoryWriter,
	complexity contract.Complexity,
	opts IndexOptions,
	log logrus.FieldLogger,
) *Indexer {
	for _, size := range []*int{&opts.ChangeBatchSize, &opts.ComplexityBatchSize, &opts.FeatureBatchSize} {
		if *size < 1 {
			*size = 1
		}
	}
	if opts.Ref == "" {
		opts.Ref = contract.DefaultRef
	}
	return &Indexer{
		git:        git,
		store:      store,
		complexity: complexity,
		extractor:  NewFeatureExtractor(),
		opts:       opts,
		log:        log,
		now:        time.Now,
	}
}

// WithExtractor replaces the default feature extractor.
func (ix *Indexer) WithExtractor(fe *FeatureExtractor) *Indexer {
	ix.extractor = fe
	return ix
}

// rowBuffer accumulates rows of one kind together with the commits that produced them.
type rowBuffer[T any] struct {
	rows      []T
	commitIDs []string
}

func (b *rowBuffer[T]) reset() {
	b.rows = nil
	b.commitIDs = nil
}

// indexRun holds the state of one Run call.
type indexRun struct {
	*Indexer
	repoPath   string
	summary    schema.IndexSummary
	changes    rowBuffer[schema.CommitFile]
	renames    []schema.FileRename
	features   rowBuffer[schema.FeatureReference]
	complexity []schema.ComplexitySample
}

// Run indexes every commit reachable from the configured ref, rebuilds ownership
// and records bookkeeping metadata. Git failures abort the run before any write.
func (ix *Indexer) Run(ctx context.Context, repoPath string) (schema.IndexSummary, error) {
	start := ix.now()
	run := &indexRun{Indexer: ix, repoPath: repoPath}
	run.summary.RunID = uuid.NewString()
	run.summary.RepoDir = repoPath
	log := ix.log.WithField("run_id", run.summary.RunID)

	commits, err := ix.git.ListCommits(ctx, repoPath, ix.opts.Ref)
	if err != nil {
		return run.summary, fmt.Errorf("failed to list commits: %w", err)
	}
	run.summary.Commits = len(commits)
	if head, err := ix.git.GetRepoHash(ctx, repoPath); err == nil {
		run.summary.Head = head
	} else {
		log.WithError(err).Debug("repository has no HEAD")
	}

	// --- 1. Metadata pass ---
	rows := make([]schema.Commit, len(commits))
	for i, c := range commits {
		rows[i] = c.ToCommit()
	}
	inserted, err := ix.store.AppendCommits(ctx, rows)
	if err != nil {
		return run.summary, fmt.Errorf("failed to store commits: %w", err)
	}
	run.summary.NewCommits = inserted
	log.WithFields(logrus.Fields{"commits": len(commits), "new": inserted}).Info("metadata pass complete")

	// --- 2. Diff pass ---
	for i, c := range commits {
		if err := run.indexCommit(ctx, c); err != nil {
			return run.summary, err
		}
		if err := run.flush(ctx, false); err != nil {
			return run.summary, err
		}
		if (i+1)%progressEvery == 0 {
			log.WithField("done", i+1).Debug("diff pass progress")
		}
	}
	if err := run.flush(ctx, true); err != nil {
		return run.summary, err
	}
	log.WithFields(logrus.Fields{
		"changes":    run.summary.Changes,
		"features":   run.summary.Features,
		"complexity": run.summary.ComplexitySamples,
	}).Info("diff pass complete")

	// --- 3. Derived aggregates ---
	ownership, err := ComputeOwnership(ctx, ix.store, log)
	if err != nil {
		return run.summary, err
	}
	run.summary.OwnershipRows = ownership

	// --- 4. Bookkeeping ---
	meta := []struct{ key, value string }{
		{schema.MetaRepoDir, repoPath},
		{schema.MetaLastIndexedAt, ix.now().UTC().Format(time.RFC3339)},
		{schema.MetaLastRunID, run.summary.RunID},
		{schema.MetaLastHead, run.summary.Head},
	}
	for _, m := range meta {
		if err := ix.store.SetMeta(ctx, m.key, m.value); err != nil {
			return run.summary, err
		}
	}

	run.summary.Duration = ix.now().Sub(start)
	return run.summary, nil
}

// indexCommit buffers every row derived from one commit.
func (r *indexRun) indexCommit(ctx context.Context, c schema.CommitRecord) error {
	parent := c.FirstParent()
	entries, err := r.git.Diff(ctx, r.repoPath, c.ID, parent)
	if err != nil {
		return fmt.Errorf("failed to diff %s: %w", c.ID, err)
	}
	stats, err := r.git.Stats(ctx, r.repoPath, c.ID, parent)
	if err != nil {
		return fmt.Errorf("failed to get stats of %s: %w", c.ID, err)
	}

	readBlob := func(ctx context.Context, blob string) ([]byte, error) {
		return r.git.ReadBlob(ctx, r.repoPath, blob)
	}
	changes, err := NormalizeChanges(ctx, c.ID, entries, stats, r.store, readBlob)
	if err != nil {
		return err
	}

	r.changes.commitIDs = append(r.changes.commitIDs, c.ID)
	for _, nc := range changes {
		r.changes.rows = append(r.changes.rows, nc.Row)
		if nc.Rename != nil {
			r.renames = append(r.renames, *nc.Rename)
		}
		if nc.Content == nil {
			continue
		}
		if sample, ok := SampleComplexity(r.Indexer.complexity, nc, r.opts.ComplexityExcludes, r.log); ok {
			r.complexity = append(r.complexity, sample)
		} else if r.Indexer.complexity.Available() {
			r.summary.SkippedSamples++
		}
	}

	r.features.commitIDs = append(r.features.commitIDs, c.ID)
	r.features.rows = append(r.features.rows, r.extractor.Extract(c.ID, c.Message)...)
	return nil
}

// flush writes each buffer that reached its threshold, or every buffer when final is set.
// It only runs between commits, so one commit's rows never span two flushes.
func (r *indexRun) flush(ctx context.Context, final bool) error {
	if len(r.changes.commitIDs) > 0 && (final || len(r.changes.rows) >= r.opts.ChangeBatchSize) {
		if err := r.flushChanges(ctx); err != nil {
			return err
		}
	}
	if len(r.features.commitIDs) > 0 && (final || len(r.features.rows) >= r.opts.FeatureBatchSize) {
		if err := r.flushFeatures(ctx); err != nil {
			return err
		}
	}
	if len(r.complexity) > 0 && (final || len(r.complexity) >= r.opts.ComplexityBatchSize) {
		if err := r.store.UpsertComplexity(ctx, r.complexity); err != nil {
			return fmt.Errorf("failed to store complexity samples: %w", err)
		}
		r.summary.ComplexitySamples += len(r.complexity)
		r.complexity = nil
	}
	return nil
}

func (r *indexRun) flushChanges(ctx context.Context) error {
	var err error
	if r.opts.Dedupe {
		err = r.store.ReplaceChanges(ctx, r.changes.commitIDs, r.changes.rows, r.renames)
	} else if len(r.changes.rows) > 0 {
		err = r.store.AppendChanges(ctx, r.changes.rows)
		if err == nil && len(r.renames) > 0 {
			err = r.store.AppendRenames(ctx, r.renames)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to store changes: %w", err)
	}
	r.summary.Changes += len(r.changes.rows)
	r.summary.Renames += len(r.renames)
	r.changes.reset()
	r.renames = nil
	return nil
}

func (r *indexRun) flushFeatures(ctx context.Context) error {
	var err error
	if r.opts.Dedupe {
		err = r.store.ReplaceFeatures(ctx, r.features.commitIDs, r.features.rows)
	} else if len(r.features.rows) > 0 {
		err = r.store.AppendFeatures(ctx, r.features.rows)
	}
	if err != nil {
		return fmt.Errorf("failed to store features: %w", err)
	}
	r.summary.Features += len(r.features.rows)
	r.features.reset()
	return nil
}
