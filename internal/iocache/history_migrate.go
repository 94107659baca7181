package iocache

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/huangsam/timemachine/schema"
)

//go:embed migrations
var migrationsFS embed.FS

// migrationsTable records the applied schema version.
const migrationsTable = "timemachine_schema_migrations"

// Initialize implements the HistoryStore interface. It migrates to the latest version.
func (hs *HistoryStoreImpl) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return hs.withMigrate(func(m *migrate.Migrate) error {
		_, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return fmt.Errorf("failed to get current migration version: %w", err)
		}
		if dirty {
			return errDirty(m)
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to migrate to latest version: %w", err)
		}
		return nil
	})
}

// SchemaVersion returns the applied migration version, or 0 when none ran.
func (hs *HistoryStoreImpl) SchemaVersion() (uint, bool, error) {
	var version uint
	var dirty bool
	err := hs.withMigrate(func(m *migrate.Migrate) error {
		v, d, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return err
		}
		version, dirty = v, d
		return nil
	})
	return version, dirty, err
}

// Migrate moves the schema to targetVersion and writes progress to w.
// - If targetVersion < 0, it migrates to the latest version.
// - If targetVersion == 0, it rolls back all migrations (to initial state).
// - If targetVersion > 0, it migrates to the specified version.
func (hs *HistoryStoreImpl) Migrate(targetVersion int, w io.Writer) error {
	return hs.withMigrate(func(m *migrate.Migrate) error {
		currentVersion, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return fmt.Errorf("failed to get current migration version: %w", err)
		}
		if dirty {
			return errDirty(m)
		}

		switch {
		case targetVersion < 0:
			err = m.Up()
			if err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("failed to migrate to latest version: %w", err)
			}
			if errors.Is(err, migrate.ErrNoChange) {
				_, _ = fmt.Fprintln(w, "No migration needed. Database is already at the latest version.")
			} else {
				newVersion, _, _ := m.Version()
				_, _ = fmt.Fprintf(w, "Successfully migrated from version %d to version %d\n", currentVersion, newVersion)
			}
		case targetVersion == 0:
			err = m.Down()
			if err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("failed to roll back to version 0: %w", err)
			}
			if errors.Is(err, migrate.ErrNoChange) {
				_, _ = fmt.Fprintln(w, "No migration needed. Database is already at version 0")
			} else {
				_, _ = fmt.Fprintf(w, "Successfully rolled back from version %d to version 0\n", currentVersion)
			}
		default:
			err = m.Migrate(uint(targetVersion))
			if err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("failed to migrate to version %d: %w", targetVersion, err)
			}
			if errors.Is(err, migrate.ErrNoChange) {
				_, _ = fmt.Fprintf(w, "No migration needed. Database is already at version %d\n", targetVersion)
			} else {
				_, _ = fmt.Fprintf(w, "Successfully migrated from version %d to version %d\n", currentVersion, targetVersion)
			}
		}
		return nil
	})
}

func errDirty(m *migrate.Migrate) error {
	v, _, _ := m.Version()
	return fmt.Errorf("database is in a dirty state at version %d. Please fix manually or force version", v)
}

// withMigrate builds a migrate instance for the store's backend and runs fn.
// SQLite reuses the store's own connection, since an in-memory database exists only
// there, and must not be closed through migrate. The other backends get a dedicated
// connection that is closed afterwards.
func (hs *HistoryStoreImpl) withMigrate(fn func(m *migrate.Migrate) error) error {
	migrationFS, err := fs.Sub(migrationsFS, "migrations/"+string(hs.backend))
	if err != nil {
		return fmt.Errorf("failed to access migrations directory: %w", err)
	}
	sourceDriver, err := iofs.New(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	var driver database.Driver
	var dedicated *sql.DB
	switch hs.backend {
	case schema.SQLiteBackend:
		driver, err = sqlite.WithInstance(hs.db.DB, &sqlite.Config{MigrationsTable: migrationsTable})
		if err != nil {
			_ = sourceDriver.Close()
			return fmt.Errorf("failed to create SQLite migrate driver: %w", err)
		}

	case schema.MySQLBackend:
		dedicated, err = sql.Open(hs.driverName, hs.connStr)
		if err == nil {
			driver, err = mysql.WithInstance(dedicated, &mysql.Config{MigrationsTable: migrationsTable})
		}
		if err != nil {
			_ = sourceDriver.Close()
			closeQuietly(dedicated)
			return fmt.Errorf("failed to create MySQL migrate driver: %w", err)
		}

	case schema.PostgreSQLBackend:
		dedicated, err = sql.Open(hs.driverName, hs.connStr)
		if err == nil {
			driver, err = pgx.WithInstance(dedicated, &pgx.Config{MigrationsTable: migrationsTable})
		}
		if err != nil {
			_ = sourceDriver.Close()
			closeQuietly(dedicated)
			return fmt.Errorf("failed to create PostgreSQL migrate driver: %w", err)
		}

	default:
		_ = sourceDriver.Close()
		return fmt.Errorf("unsupported backend: %s", hs.backend)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "timemachine", driver)
	if err != nil {
		_ = sourceDriver.Close()
		closeQuietly(dedicated)
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	runErr := fn(m)

	if dedicated != nil {
		// Closes the source, the pinned connection and the dedicated pool.
		_, _ = m.Close()
	} else {
		_ = sourceDriver.Close()
	}
	return runErr
}

func closeQuietly(db *sql.DB) {
	if db != nil {
		_ = db.Close()
	}
}
