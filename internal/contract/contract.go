// Package contract provides interfaces and shared utilities for timemachine's internal architecture.
package contract

import (
	"context"

	"github.com/huangsam/timemachine/schema"
)

// GitClient defines the repository operations the indexing pipeline needs.
// This allows the core logic to be tested without needing a real git executable.
type GitClient interface {
	// --- Generic / Low-Level ---

	// Run executes a git command and returns its stdout.
	// Its use should be minimized in favor of the explicit methods below.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// --- Repository Resolution ---

	// GetRepoHash returns the current HEAD commit hash of the repository.
	GetRepoHash(ctx context.Context, repoPath string) (string, error)

	// GetRepoRoot returns the absolute path to the root of the Git repository
	// containing the given context path.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)

	// Clone clones repoURL into dir.
	Clone(ctx context.Context, repoURL string, dir string) error

	// --- History ---

	// ListCommits returns every commit reachable from ref. No order is guaranteed.
	ListCommits(ctx context.Context, repoPath string, ref string) ([]schema.CommitRecord, error)

	// Diff returns the changes of commit against parent, or against the empty tree when parent is empty.
	Diff(ctx context.Context, repoPath string, commit string, parent string) ([]schema.ChangeEntry, error)

	// Stats returns per-path line counts of commit against parent, keyed by post-change path
	// (pre-change path for deletions).
	Stats(ctx context.Context, repoPath string, commit string, parent string) (map[string]schema.LineStats, error)

	// --- Content ---

	// ReadBlob returns the raw content of a blob object.
	ReadBlob(ctx context.Context, repoPath string, blob string) ([]byte, error)
}

// HistoryWriter is the write side of the history store used by the indexing pipeline.
type HistoryWriter interface {
	// ResolveFileID returns the id for path, creating the row on first sight.
	ResolveFileID(ctx context.Context, path string) (int64, error)

	// AppendCommits inserts commits, ignoring ones already stored. It returns how many were new.
	AppendCommits(ctx context.Context, rows []schema.Commit) (int64, error)

	// AppendChanges inserts change rows unconditionally.
	AppendChanges(ctx context.Context, rows []schema.CommitFile) error

	// ReplaceChanges deletes every change and rename row of commitIDs, then inserts rows and renames.
	ReplaceChanges(ctx context.Context, commitIDs []string, rows []schema.CommitFile, renames []schema.FileRename) error

	// AppendRenames inserts rename links unconditionally.
	AppendRenames(ctx context.Context, rows []schema.FileRename) error

	// AppendFeatures inserts feature rows unconditionally.
	AppendFeatures(ctx context.Context, rows []schema.FeatureReference) error

	// ReplaceFeatures deletes every feature row of commitIDs, then inserts rows.
	ReplaceFeatures(ctx context.Context, commitIDs []string, rows []schema.FeatureReference) error

	// UpsertComplexity inserts samples, replacing any existing sample for the same (file, commit).
	UpsertComplexity(ctx context.Context, rows []schema.ComplexitySample) error

	// SetMeta upserts a bookkeeping value.
	SetMeta(ctx context.Context, key string, value string) error

	// RebuildOwnership replaces the ownership table in one transaction and returns the new row count.
	RebuildOwnership(ctx context.Context) (int64, error)
}

// HistoryReader is the read side of the history store used by queries, charts and exports.
type HistoryReader interface {
	// GetMeta returns a bookkeeping value and whether it was present.
	GetMeta(ctx context.Context, key string) (string, bool, error)

	// SearchCommitsByMessage returns commits whose lower-cased message matches a LIKE pattern, oldest first.
	SearchCommitsByMessage(ctx context.Context, likePattern string, limit int) ([]schema.Commit, error)

	// SearchCommitsByPath returns commits touching a path matching any LIKE pattern, oldest first.
	SearchCommitsByPath(ctx context.Context, likePatterns []string, limit int) ([]schema.Commit, error)

	// OwnershipByPath returns ownership rows of paths starting with prefix, largest first.
	OwnershipByPath(ctx context.Context, prefix string, limit int) ([]schema.Ownership, error)

	// OwnershipByAuthor returns per-author commit totals summed over ownership, largest first.
	OwnershipByAuthor(ctx context.Context, limit int) ([]schema.AuthorShare, error)

	// WeeklyChurn returns added plus deleted lines per week bucket, oldest first.
	WeeklyChurn(ctx context.Context) ([]schema.ChurnPoint, error)

	// ComplexityTrend returns the mean per-function complexity per sampled commit, oldest first.
	ComplexityTrend(ctx context.Context) ([]schema.ComplexityPoint, error)

	// GetStatus returns status information about the store.
	GetStatus(ctx context.Context) (schema.StoreStatus, error)

	// ExportCommits returns every commit row.
	ExportCommits(ctx context.Context) ([]schema.Commit, error)

	// ExportChanges returns every change row.
	ExportChanges(ctx context.Context) ([]schema.CommitFile, error)

	// ExportFeatures returns every feature reference, oldest commit first.
	ExportFeatures(ctx context.Context) ([]schema.FeatureReference, error)

	// ExportOwnership returns every ownership row.
	ExportOwnership(ctx context.Context) ([]schema.Ownership, error)
}

// HistoryStore is the full relational store behind every command.
type HistoryStore interface {
	HistoryWriter
	HistoryReader

	// Initialize creates or migrates the schema to the latest version. It is idempotent.
	Initialize(ctx context.Context) error

	// Backend reports which database backend serves the store.
	Backend() schema.DatabaseBackend

	// Close closes the underlying connection.
	Close() error
}
