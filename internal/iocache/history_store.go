package iocache

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/huangsam/timemachine/internal/contract"
	"github.com/huangsam/timemachine/schema"
)

// HistoryStoreImpl implements the HistoryStore interface on top of database/sql.
type HistoryStoreImpl struct {
	db         *sqlx.DB
	backend    schema.DatabaseBackend
	driverName string
	connStr    string

	// mu serializes file identity resolution; fileIDs caches resolved paths.
	mu      sync.Mutex
	fileIDs map[string]int64
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore opens the store with the specified backend. Call Initialize before use.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (*HistoryStoreImpl, error) {
	var db *sqlx.DB
	var err error
	var driverName string

	switch backend {
	case schema.SQLiteBackend:
		driverName = "sqlite"
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetDBFilePath()
		}
		db, err = sqlx.Open(driverName, sqliteDSN(dbPath))
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		// and to keep in-memory databases alive for the lifetime of the store.
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
		connStr = dbPath

	case schema.MySQLBackend:
		driverName = "mysql"
		dsn, dsnErr := mysqlDSN(connStr)
		if dsnErr != nil {
			return nil, fmt.Errorf("failed to parse MySQL connection string: %w. Check connection string format: user:password@tcp(host:port)/dbname", dsnErr)
		}
		db, err = sqlx.Open(driverName, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}
		connStr = dsn

	case schema.PostgreSQLBackend:
		driverName = "pgx"
		db, err = sqlx.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=... user=... dbname=...", err)
		}

	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database file is accessible."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	return &HistoryStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
		connStr:    connStr,
		fileIDs:    make(map[string]int64),
	}, nil
}

// OpenHistoryStore opens the store and brings its schema to the latest version.
func OpenHistoryStore(ctx context.Context, backend schema.DatabaseBackend, connStr string) (*HistoryStoreImpl, error) {
	store, err := NewHistoryStore(backend, connStr)
	if err != nil {
		return nil, err
	}
	if err := store.Initialize(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize history store: %w", err)
	}
	return store, nil
}

// Backend implements the HistoryStore interface.
func (hs *HistoryStoreImpl) Backend() schema.DatabaseBackend {
	return hs.backend
}

// Close closes the underlying DB connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// sqliteDSN enables foreign keys, WAL and a busy timeout on a plain file path.
// DSNs that already carry a scheme or query are used as given.
func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") || strings.Contains(path, "?") {
		return path
	}
	if path == ":memory:" {
		return "file::memory:?_pragma=foreign_keys(1)"
	}
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

// mysqlDSN forces the driver options the store relies on.
func mysqlDSN(connStr string) (string, error) {
	cfg, err := mysql.ParseDSN(connStr)
	if err != nil {
		return "", err
	}
	cfg.MultiStatements = true
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}
