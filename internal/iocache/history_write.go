package iocache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/huangsam/timemachine/schema"
)

// ResolveFileID implements the HistoryStore interface.
func (hs *HistoryStoreImpl) ResolveFileID(ctx context.Context, path string) (int64, error) {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	if id, ok := hs.fileIDs[path]; ok {
		return id, nil
	}

	var id int64
	err := hs.db.GetContext(ctx, &id, hs.db.Rebind("SELECT id FROM files WHERE path = ?"), path)
	switch {
	case err == nil:
		hs.fileIDs[path] = id
		return id, nil
	case !errors.Is(err, sql.ErrNoRows):
		return 0, fmt.Errorf("failed to look up file %q: %w", path, err)
	}

	if hs.backend == schema.PostgreSQLBackend {
		err = hs.db.GetContext(ctx, &id, "INSERT INTO files (path) VALUES ($1) RETURNING id", path)
	} else {
		var res sql.Result
		res, err = hs.db.ExecContext(ctx, "INSERT INTO files (path) VALUES (?)", path)
		if err == nil {
			id, err = res.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert file %q: %w", path, classifyError(err))
	}
	hs.fileIDs[path] = id
	return id, nil
}

// AppendCommits implements the HistoryStore interface.
func (hs *HistoryStoreImpl) AppendCommits(ctx context.Context, rows []schema.Commit) (int64, error) {
	var inserted int64
	err := hs.withTx(ctx, func(tx *sqlx.Tx) error {
		stmt, err := tx.PreparexContext(ctx, tx.Rebind(insertCommitQuery(hs.backend)))
		if err != nil {
			return fmt.Errorf("failed to prepare commit insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, c := range rows {
			res, err := stmt.ExecContext(ctx, c.ID, c.AuthorName, c.AuthorEmail, c.AuthoredDate, c.Message)
			if err != nil {
				return fmt.Errorf("failed to insert commit %s: %w", c.ID, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to count inserted commits: %w", err)
			}
			inserted += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// AppendChanges implements the HistoryStore interface.
func (hs *HistoryStoreImpl) AppendChanges(ctx context.Context, rows []schema.CommitFile) error {
	return hs.withTx(ctx, func(tx *sqlx.Tx) error {
		return insertChanges(ctx, tx, rows)
	})
}

// ReplaceChanges implements the HistoryStore interface.
func (hs *HistoryStoreImpl) ReplaceChanges(ctx context.Context, commitIDs []string, rows []schema.CommitFile, renames []schema.FileRename) error {
	return hs.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := deleteByCommit(ctx, tx, schema.TableCommitFiles, commitIDs); err != nil {
			return err
		}
		if err := deleteByCommit(ctx, tx, schema.TableFileRenames, commitIDs); err != nil {
			return err
		}
		if err := insertChanges(ctx, tx, rows); err != nil {
			return err
		}
		return insertRenames(ctx, tx, renames)
	})
}

// AppendRenames implements the HistoryStore interface.
func (hs *HistoryStoreImpl) AppendRenames(ctx context.Context, rows []schema.FileRename) error {
	return hs.withTx(ctx, func(tx *sqlx.Tx) error {
		return insertRenames(ctx, tx, rows)
	})
}

// AppendFeatures implements the HistoryStore interface.
func (hs *HistoryStoreImpl) AppendFeatures(ctx context.Context, rows []schema.FeatureReference) error {
	return hs.withTx(ctx, func(tx *sqlx.Tx) error {
		return insertFeatures(ctx, tx, rows)
	})
}

// ReplaceFeatures implements the HistoryStore interface.
func (hs *HistoryStoreImpl) ReplaceFeatures(ctx context.Context, commitIDs []string, rows []schema.FeatureReference) error {
	return hs.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := deleteByCommit(ctx, tx, schema.TableFeatures, commitIDs); err != nil {
			return err
		}
		return insertFeatures(ctx, tx, rows)
	})
}

// UpsertComplexity implements the HistoryStore interface.
func (hs *HistoryStoreImpl) UpsertComplexity(ctx context.Context, rows []schema.ComplexitySample) error {
	return hs.withTx(ctx, func(tx *sqlx.Tx) error {
		stmt, err := tx.PreparexContext(ctx, tx.Rebind(upsertComplexityQuery(hs.backend)))
		if err != nil {
			return fmt.Errorf("failed to prepare complexity upsert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, s := range rows {
			if _, err := stmt.ExecContext(ctx, s.FileID, s.CommitID, s.NLOC, s.CCN, s.Functions); err != nil {
				return fmt.Errorf("failed to upsert complexity for file %d at %s: %w", s.FileID, s.CommitID, err)
			}
		}
		return nil
	})
}

// SetMeta implements the HistoryStore interface.
func (hs *HistoryStoreImpl) SetMeta(ctx context.Context, key string, value string) error {
	if _, err := hs.db.ExecContext(ctx, hs.db.Rebind(upsertMetaQuery(hs.backend)), key, value); err != nil {
		return fmt.Errorf("failed to set meta %s: %w", key, err)
	}
	return nil
}

// RebuildOwnership implements the HistoryStore interface.
// Readers see either the previous table or the rebuilt one, never a partial state.
func (hs *HistoryStoreImpl) RebuildOwnership(ctx context.Context) (int64, error) {
	var rows int64
	err := hs.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM ownership"); err != nil {
			return fmt.Errorf("failed to clear ownership: %w", err)
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO ownership (file_id, author_email, commits, lines_added, lines_deleted, first_commit, last_commit)
			SELECT cf.file_id,
			       COALESCE(c.author_email, ''),
			       COUNT(DISTINCT c.id),
			       COALESCE(SUM(cf.additions), 0),
			       COALESCE(SUM(cf.deletions), 0),
			       MIN(c.authored_date),
			       MAX(c.authored_date)
			FROM commit_files cf
			JOIN commits c ON c.id = cf.commit_id
			GROUP BY cf.file_id, COALESCE(c.author_email, '')`)
		if err != nil {
			return fmt.Errorf("failed to aggregate ownership: %w", err)
		}
		rows, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to count ownership rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return rows, nil
}

// withTx runs fn in one transaction. Any error rolls the whole batch back.
func (hs *HistoryStoreImpl) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := hs.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return classifyError(err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", classifyError(err))
	}
	return nil
}

func insertChanges(ctx context.Context, tx *sqlx.Tx, rows []schema.CommitFile) error {
	if len(rows) == 0 {
		return nil
	}
	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`INSERT INTO commit_files
		(commit_id, file_id, additions, deletions, change_type, old_path, new_path, is_binary)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("failed to prepare change insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range rows {
		_, err := stmt.ExecContext(ctx, r.CommitID, r.FileID, r.Additions, r.Deletions,
			string(r.ChangeType), nullable(r.OldPath), nullable(r.NewPath), r.IsBinary)
		if err != nil {
			return fmt.Errorf("failed to insert change of file %d at %s: %w", r.FileID, r.CommitID, err)
		}
	}
	return nil
}

func insertRenames(ctx context.Context, tx *sqlx.Tx, rows []schema.FileRename) error {
	if len(rows) == 0 {
		return nil
	}
	stmt, err := tx.PreparexContext(ctx, tx.Rebind(
		"INSERT INTO file_renames (commit_id, old_file_id, new_file_id) VALUES (?, ?, ?)"))
	if err != nil {
		return fmt.Errorf("failed to prepare rename insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.CommitID, r.OldFileID, r.NewFileID); err != nil {
			return fmt.Errorf("failed to insert rename at %s: %w", r.CommitID, err)
		}
	}
	return nil
}

func insertFeatures(ctx context.Context, tx *sqlx.Tx, rows []schema.FeatureReference) error {
	if len(rows) == 0 {
		return nil
	}
	stmt, err := tx.PreparexContext(ctx, tx.Rebind(
		"INSERT INTO features (commit_id, type, reference) VALUES (?, ?, ?)"))
	if err != nil {
		return fmt.Errorf("failed to prepare feature insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.CommitID, r.Type, r.Reference); err != nil {
			return fmt.Errorf("failed to insert feature of %s: %w", r.CommitID, err)
		}
	}
	return nil
}

// deleteByCommit removes every row of table owned by the given commits.
func deleteByCommit(ctx context.Context, tx *sqlx.Tx, table string, commitIDs []string) error {
	if len(commitIDs) == 0 {
		return nil
	}
	if err := validateIdent(table); err != nil {
		return err
	}
	stmt, err := tx.PreparexContext(ctx, tx.Rebind(fmt.Sprintf("DELETE FROM %s WHERE commit_id = ?", table)))
	if err != nil {
		return fmt.Errorf("failed to prepare delete on %s: %w", table, err)
	}
	defer func() { _ = stmt.Close() }()

	for _, id := range commitIDs {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("failed to delete %s rows of %s: %w", table, id, err)
		}
	}
	return nil
}

// nullable stores empty strings as NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
