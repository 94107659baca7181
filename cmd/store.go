package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/huangsam/timemachine/internal/contract"
	"github.com/huangsam/timemachine/internal/iocache"
)

// storeSetup loads minimal configuration needed for store operations.
// It resolves the backend without validating repository or output options.
func storeSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	return contract.ProcessBackend(cfg, input)
}

// storeSetupWrapper wraps storeSetup and opens the store for PreRunE.
func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	if err := storeSetup(); err != nil {
		return err
	}
	return openStore(rootCtx)
}

// storeConfigWrapper wraps storeSetup without opening the store, so the
// command can run against a missing or outdated schema.
func storeConfigWrapper(_ *cobra.Command, _ []string) error {
	return storeSetup()
}

// storeCmd focused on history store management.
//
// Note: Store subcommands use minimal initialization (storeSetup) instead of
// the full sharedSetup used by history commands. This avoids Git repo validation
// and complex config processing for simple store operations.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the history store",
	Long: `Manage the relational store that holds the indexed history.

Supported backends: SQLite (default, ~/.timemachine.db), MySQL, PostgreSQL

Subcommands:
  status  - Show what the store holds
  export  - Export commits, changes and ownership to Parquet
  clear   - Remove all indexed history
  migrate - Run database schema migrations`,
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store statistics and connection details",
	Long: `Show the backend, schema version, last index run and table sizes.

Examples:
  timemachine store status
  timemachine store status --db-backend postgresql --db-connect "host=localhost user=tm dbname=tm"`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := historyStore.GetStatus(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		iocache.PrintStoreStatus(os.Stdout, status)
	},
}

// storeClearCmd clears the history store.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all indexed history",
	Long: `Delete everything the history store holds.

For SQLite the database file is removed. For MySQL and PostgreSQL every store
table is dropped together with the migrations table.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  timemachine store export --output-file backup
  timemachine store clear`,
	PreRunE: storeConfigWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearStore(cfg.Backend, cfg.DBConnect, cfg.DBConnect); err != nil {
			contract.LogFatal("Failed to clear history store", err)
		}
		fmt.Println("History store cleared successfully.")
	},
}

// storeExportCmd exports the store to Parquet files.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export indexed history to Parquet for BI tools and analytics",
	Long: `Export commits, per-file changes and ownership to Parquet files.

Requires: --output-file parameter, used as the prefix of three files:
  <prefix>.commits.parquet
  <prefix>.changes.parquet
  <prefix>.ownership.parquet

Examples:
  timemachine store export --output-file history
  duckdb -c "SELECT author_email, COUNT(*) FROM 'history.commits.parquet' GROUP BY 1"`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteStoreExport(rootCtx, historyStore, cfg.OutputFile, os.Stdout); err != nil {
			contract.LogFatal("Failed to export history store", err)
		}
	},
}

// storeMigrateCmd runs database migrations for the history store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions of the history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  timemachine store migrate

  # Migrate to specific version
  timemachine store migrate --target-version 1

  # Rollback to initial state
  timemachine store migrate --target-version 0`,
	PreRunE: storeConfigWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store, err := iocache.NewHistoryStore(cfg.Backend, cfg.DBConnect)
		if err != nil {
			contract.LogFatal("Failed to open history store", err)
		}
		defer func() { _ = store.Close() }()

		if err := store.Migrate(viper.GetInt("target-version"), os.Stdout); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
