package iocache

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/huangsam/timemachine/internal/contract"
	"github.com/huangsam/timemachine/schema"
)

// secondsPerWeek sizes churn buckets.
const secondsPerWeek = 604800

var identPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// validateIdent validates that name is a safe SQL identifier.
func validateIdent(name string) error {
	if name == "" {
		return fmt.Errorf("identifier cannot be empty")
	}
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier: %s (must match pattern ^[a-zA-Z_][a-zA-Z0-9_]*$)", name)
	}
	return nil
}

// quoteIdent returns the properly quoted identifier for the given backend.
func quoteIdent(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("\"%s\"", name)
	}
}

// insertCommitQuery ignores rows whose primary key already exists.
// MySQL uses a no-op update instead of INSERT IGNORE so foreign key errors still surface.
func insertCommitQuery(backend schema.DatabaseBackend) string {
	const cols = "(id, author_name, author_email, authored_date, message) VALUES (?, ?, ?, ?, ?)"
	switch backend {
	case schema.MySQLBackend:
		return "INSERT INTO commits " + cols + " ON DUPLICATE KEY UPDATE id = id"
	case schema.PostgreSQLBackend:
		return "INSERT INTO commits " + cols + " ON CONFLICT (id) DO NOTHING"
	default: // SQLite
		return "INSERT OR IGNORE INTO commits " + cols
	}
}

// upsertComplexityQuery replaces the sample keyed by (file_id, commit_id).
func upsertComplexityQuery(backend schema.DatabaseBackend) string {
	const cols = "(file_id, commit_id, nloc, ccn, functions) VALUES (?, ?, ?, ?, ?)"
	switch backend {
	case schema.MySQLBackend:
		return "INSERT INTO complexity " + cols + ` AS new
			ON DUPLICATE KEY UPDATE nloc = new.nloc, ccn = new.ccn, functions = new.functions`
	case schema.PostgreSQLBackend:
		return "INSERT INTO complexity " + cols + `
			ON CONFLICT (file_id, commit_id) DO UPDATE SET nloc = EXCLUDED.nloc, ccn = EXCLUDED.ccn, functions = EXCLUDED.functions`
	default: // SQLite
		return "INSERT OR REPLACE INTO complexity " + cols
	}
}

// upsertMetaQuery writes one repo_meta key.
func upsertMetaQuery(backend schema.DatabaseBackend) string {
	key, value := quoteIdent("key", backend), quoteIdent("value", backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("INSERT INTO repo_meta (%s, %s) VALUES (?, ?) AS new ON DUPLICATE KEY UPDATE %s = new.%s", key, value, value, value)
	case schema.PostgreSQLBackend:
		return fmt.Sprintf("INSERT INTO repo_meta (%s, %s) VALUES (?, ?) ON CONFLICT (%s) DO UPDATE SET %s = EXCLUDED.%s", key, value, key, value, value)
	default: // SQLite
		return fmt.Sprintf("INSERT OR REPLACE INTO repo_meta (%s, %s) VALUES (?, ?)", key, value)
	}
}

// weekBucketExpr floors a unix time column to the start of its week.
func weekBucketExpr(column string, backend schema.DatabaseBackend) string {
	if backend == schema.MySQLBackend {
		return fmt.Sprintf("((%s DIV %d) * %d)", column, secondsPerWeek, secondsPerWeek)
	}
	return fmt.Sprintf("((%s / %d) * %d)", column, secondsPerWeek, secondsPerWeek)
}

// classifyError marks driver constraint failures with contract.ErrConstraint.
func classifyError(err error) error {
	if err == nil || errors.Is(err, contract.ErrConstraint) {
		return err
	}
	if isConstraintError(err) {
		return fmt.Errorf("%w: %w", contract.ErrConstraint, err)
	}
	return err
}

func isConstraintError(err error) bool {
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062, 1216, 1451, 1452: // duplicate key, foreign key parent/child failures
			return true
		}
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 23: integrity constraint violation
		return len(pgErr.Code) == 5 && pgErr.Code[:2] == "23"
	}
	return false
}
