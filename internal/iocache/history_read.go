package iocache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/huangsam/timemachine/schema"
)

const commitColumns = "c.id, COALESCE(c.author_name, '') AS author_name, COALESCE(c.author_email, '') AS author_email, " +
	"COALESCE(c.authored_date, 0) AS authored_date, COALESCE(c.message, '') AS message"

// GetMeta implements the HistoryStore interface.
func (hs *HistoryStoreImpl) GetMeta(ctx context.Context, key string) (string, bool, error) {
	query := fmt.Sprintf("SELECT COALESCE(%s, '') FROM repo_meta WHERE %s = ?",
		quoteIdent("value", hs.backend), quoteIdent("key", hs.backend))
	var value string
	err := hs.db.GetContext(ctx, &value, hs.db.Rebind(query), key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get meta %s: %w", key, err)
	}
	return value, true, nil
}

// SearchCommitsByMessage implements the HistoryStore interface.
func (hs *HistoryStoreImpl) SearchCommitsByMessage(ctx context.Context, likePattern string, limit int) ([]schema.Commit, error) {
	query := "SELECT " + commitColumns + ` FROM commits c
		WHERE LOWER(c.message) LIKE ?
		ORDER BY c.authored_date ASC, c.id ASC
		LIMIT ?`
	var rows []schema.Commit
	if err := hs.db.SelectContext(ctx, &rows, hs.db.Rebind(query), strings.ToLower(likePattern), limit); err != nil {
		return nil, fmt.Errorf("failed to search commit messages: %w", err)
	}
	return rows, nil
}

// SearchCommitsByPath implements the HistoryStore interface.
func (hs *HistoryStoreImpl) SearchCommitsByPath(ctx context.Context, likePatterns []string, limit int) ([]schema.Commit, error) {
	if len(likePatterns) == 0 {
		return nil, nil
	}
	clauses := make([]string, len(likePatterns))
	args := make([]any, 0, len(likePatterns)+1)
	for i, p := range likePatterns {
		clauses[i] = "LOWER(f.path) LIKE ?"
		args = append(args, strings.ToLower(p))
	}
	args = append(args, limit)

	query := "SELECT " + commitColumns + ` FROM commits c
		WHERE c.id IN (
			SELECT cf.commit_id FROM commit_files cf
			JOIN files f ON f.id = cf.file_id
			WHERE ` + strings.Join(clauses, " OR ") + `
		)
		ORDER BY c.authored_date ASC, c.id ASC
		LIMIT ?`
	var rows []schema.Commit
	if err := hs.db.SelectContext(ctx, &rows, hs.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to search commit paths: %w", err)
	}
	return rows, nil
}

// OwnershipByPath implements the HistoryStore interface.
func (hs *HistoryStoreImpl) OwnershipByPath(ctx context.Context, prefix string, limit int) ([]schema.Ownership, error) {
	query := `SELECT o.file_id, f.path, o.author_email, o.commits, o.lines_added, o.lines_deleted,
			COALESCE(o.first_commit, 0) AS first_commit, COALESCE(o.last_commit, 0) AS last_commit
		FROM ownership o
		JOIN files f ON f.id = o.file_id
		WHERE f.path LIKE ?
		ORDER BY o.commits DESC, (o.lines_added + o.lines_deleted) DESC, f.path ASC, o.author_email ASC
		LIMIT ?`
	var rows []schema.Ownership
	if err := hs.db.SelectContext(ctx, &rows, hs.db.Rebind(query), prefix+"%", limit); err != nil {
		return nil, fmt.Errorf("failed to query ownership of %q: %w", prefix, err)
	}
	return rows, nil
}

// OwnershipByAuthor implements the HistoryStore interface.
func (hs *HistoryStoreImpl) OwnershipByAuthor(ctx context.Context, limit int) ([]schema.AuthorShare, error) {
	query := `SELECT author_email, SUM(commits) AS commits
		FROM ownership
		GROUP BY author_email
		ORDER BY commits DESC, author_email ASC
		LIMIT ?`
	var rows []schema.AuthorShare
	if err := hs.db.SelectContext(ctx, &rows, hs.db.Rebind(query), limit); err != nil {
		return nil, fmt.Errorf("failed to query ownership by author: %w", err)
	}
	return rows, nil
}

// WeeklyChurn implements the HistoryStore interface.
func (hs *HistoryStoreImpl) WeeklyChurn(ctx context.Context) ([]schema.ChurnPoint, error) {
	bucket := weekBucketExpr("c.authored_date", hs.backend)
	query := fmt.Sprintf(`SELECT %s AS week_start, SUM(cf.additions + cf.deletions) AS churn
		FROM commit_files cf
		JOIN commits c ON c.id = cf.commit_id
		GROUP BY %s
		ORDER BY week_start ASC`, bucket, bucket)
	var rows []schema.ChurnPoint
	if err := hs.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to query weekly churn: %w", err)
	}
	return rows, nil
}

// ComplexityTrend implements the HistoryStore interface.
// Samples of files without functions do not contribute to the mean.
func (hs *HistoryStoreImpl) ComplexityTrend(ctx context.Context) ([]schema.ComplexityPoint, error) {
	query := `SELECT c.id AS commit_id, c.authored_date AS authored_date,
			AVG(CASE WHEN x.functions > 0 THEN 1.0 * x.ccn / x.functions END) AS avg_ccn
		FROM complexity x
		JOIN commits c ON c.id = x.commit_id
		GROUP BY c.id, c.authored_date
		HAVING COUNT(CASE WHEN x.functions > 0 THEN 1 END) > 0
		ORDER BY c.authored_date ASC, c.id ASC`
	var rows []schema.ComplexityPoint
	if err := hs.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to query complexity trend: %w", err)
	}
	return rows, nil
}

// GetStatus implements the HistoryStore interface.
func (hs *HistoryStoreImpl) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil && hs.db.PingContext(ctx) == nil,
		TableSizes: make(map[string]int64),
	}
	if !status.Connected {
		return status, nil
	}

	version, dirty, err := hs.SchemaVersion()
	if err != nil {
		return status, fmt.Errorf("failed to get schema version: %w", err)
	}
	status.SchemaVersion, status.Dirty = version, dirty
	if version == 0 {
		return status, nil
	}

	for _, table := range schema.AllTables {
		var count int64
		if err := hs.db.GetContext(ctx, &count, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	meta := map[string]*string{
		schema.MetaRepoDir:   &status.RepoDir,
		schema.MetaLastRunID: &status.LastRunID,
		schema.MetaLastHead:  &status.LastHead,
	}
	for key, dst := range meta {
		if *dst, _, err = hs.GetMeta(ctx, key); err != nil {
			return status, err
		}
	}
	if ts, ok, err := hs.GetMeta(ctx, schema.MetaLastIndexedAt); err != nil {
		return status, err
	} else if ok {
		if parsed, perr := time.Parse(time.RFC3339, ts); perr == nil {
			status.LastIndexedAt = parsed
		}
	}

	var oldest, newest sql.NullInt64
	row := hs.db.QueryRowContext(ctx, "SELECT MIN(authored_date), MAX(authored_date) FROM commits")
	if err := row.Scan(&oldest, &newest); err != nil {
		return status, fmt.Errorf("failed to get commit date range: %w", err)
	}
	if oldest.Valid {
		status.OldestCommit = time.Unix(oldest.Int64, 0).UTC()
	}
	if newest.Valid {
		status.NewestCommit = time.Unix(newest.Int64, 0).UTC()
	}

	if hs.backend == schema.SQLiteBackend {
		if info, err := os.Stat(hs.connStr); err == nil {
			status.SizeBytes = info.Size()
		}
	}
	return status, nil
}

// ExportCommits implements the HistoryStore interface.
func (hs *HistoryStoreImpl) ExportCommits(ctx context.Context) ([]schema.Commit, error) {
	var rows []schema.Commit
	query := "SELECT " + commitColumns + " FROM commits c ORDER BY c.authored_date ASC, c.id ASC"
	if err := hs.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to export commits: %w", err)
	}
	return rows, nil
}

// ExportChanges implements the HistoryStore interface.
func (hs *HistoryStoreImpl) ExportChanges(ctx context.Context) ([]schema.CommitFile, error) {
	query := `SELECT cf.commit_id, cf.file_id, cf.additions, cf.deletions, cf.change_type,
			COALESCE(cf.old_path, '') AS old_path, COALESCE(cf.new_path, '') AS new_path, cf.is_binary
		FROM commit_files cf
		JOIN commits c ON c.id = cf.commit_id
		ORDER BY c.authored_date ASC, cf.commit_id ASC, cf.file_id ASC`
	var rows []schema.CommitFile
	if err := hs.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to export changes: %w", err)
	}
	return rows, nil
}

// ExportFeatures implements the HistoryStore interface.
func (hs *HistoryStoreImpl) ExportFeatures(ctx context.Context) ([]schema.FeatureReference, error) {
	query := `SELECT f.commit_id, f.type, COALESCE(f.reference, '') AS reference
		FROM features f
		JOIN commits c ON c.id = f.commit_id
		ORDER BY c.authored_date ASC, f.commit_id ASC, f.type ASC, reference ASC`
	var rows []schema.FeatureReference
	if err := hs.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to export features: %w", err)
	}
	return rows, nil
}

// ExportOwnership implements the HistoryStore interface.
func (hs *HistoryStoreImpl) ExportOwnership(ctx context.Context) ([]schema.Ownership, error) {
	query := `SELECT o.file_id, f.path, o.author_email, o.commits, o.lines_added, o.lines_deleted,
			COALESCE(o.first_commit, 0) AS first_commit, COALESCE(o.last_commit, 0) AS last_commit
		FROM ownership o
		JOIN files f ON f.id = o.file_id
		ORDER BY f.path ASC, o.author_email ASC`
	var rows []schema.Ownership
	if err := hs.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to export ownership: %w", err)
	}
	return rows, nil
}
