package iocache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/huangsam/timemachine/internal/contract"
	"github.com/huangsam/timemachine/schema"
)

// StoreManager holds the process-wide history store.
type StoreManager struct {
	sync.RWMutex
	history *HistoryStoreImpl
}

// GetHistoryStore returns the initialized history store, or nil before InitStore.
func (mgr *StoreManager) GetHistoryStore() *HistoryStoreImpl {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}

// Global Manager instance for main logic.
var (
	Manager   = &StoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitStore opens and migrates the global history store exactly once.
func InitStore(ctx context.Context, backend schema.DatabaseBackend, connStr string) error {
	var initErr error

	initOnce.Do(func() {
		store, err := OpenHistoryStore(ctx, backend, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize history store: %w", err)
			return
		}
		Manager.Lock()
		Manager.history = store
		Manager.Unlock()
	})

	return initErr
}

// CloseStore should be called on application shutdown.
func CloseStore() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.history != nil {
			_ = Manager.history.Close()
			Manager.history = nil
		}
	})
}

// ClearStore removes everything the history store holds.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the tables and the migrations table.
func ClearStore(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			dbFilePath = contract.GetDBFilePath()
		}
		for _, suffix := range []string{"", "-wal", "-shm"} {
			if err := os.Remove(dbFilePath + suffix); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath+suffix, err)
			}
		}
		return nil

	case schema.MySQLBackend:
		dsn, err := mysqlDSN(connStr)
		if err != nil {
			return fmt.Errorf("failed to parse MySQL connection string: %w", err)
		}
		return dropSQLTables("mysql", dsn)

	case schema.PostgreSQLBackend:
		return dropSQLTables("pgx", connStr)

	default:
		return fmt.Errorf("unsupported backend for clearing: %s", backend)
	}
}

// dropSQLTables drops every store table, children first.
func dropSQLTables(driverName, connStr string) error {
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driverName, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driverName, err)
	}

	tables := append(slices.Clone(schema.AllTables), migrationsTable)
	slices.Reverse(tables)
	for _, table := range tables {
		if err := validateIdent(table); err != nil {
			return err
		}
		if _, err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
