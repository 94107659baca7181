// Package cmd defines the command-line interface for timemachine.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/huangsam/timemachine/internal/contract"
	"github.com/huangsam/timemachine/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(ownershipCmd)
	rootCmd.AddCommand(visualizeCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeMigrateCmd)
	storeCmd.AddCommand(storeExportCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("db-backend", string(schema.SQLiteBackend), "Store backend: sqlite or mysql or postgresql")
	rootCmd.PersistentFlags().String("db-connect", "", "Store connection string (sqlite file path, user:pass@tcp(host:port)/dbname, or host=... dbname=...)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().Int("batch-size", contract.DefaultChangeBatchSize, "Change rows buffered before a flush")
	rootCmd.PersistentFlags().Int("complexity-batch-size", contract.DefaultComplexityBatchSize, "Complexity samples buffered before a flush")
	rootCmd.PersistentFlags().Int("feature-batch-size", contract.DefaultFeatureBatchSize, "Feature references buffered before a flush")
	rootCmd.PersistentFlags().String("complexity", "yes", "Sample cyclomatic complexity while indexing (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("complexity-exclude", "", "Comma-separated path patterns skipped by complexity sampling")
	rootCmd.PersistentFlags().String("dedupe", "yes", "Replace the rows of re-indexed commits instead of appending (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Pipeline log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-file", "", "Optional rotating file for pipeline logs (stderr when empty)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of indexCmd and initCmd to Viper
	indexCmd.Flags().String("ref", contract.DefaultRef, "Git revision to walk (--all walks every ref)")
	if err := viper.BindPFlags(indexCmd.Flags()); err != nil {
		contract.LogFatal("Error binding index flags", err)
	}
	initCmd.Flags().String("repo-url", "", "Repository to clone when the work directory is empty")
	initCmd.Flags().String("workdir", "", "Directory to clone into or reuse (defaults to the repository name)")
	if err := viper.BindPFlags(initCmd.Flags()); err != nil {
		contract.LogFatal("Error binding init flags", err)
	}

	// Bind all flags of visualizeCmd to Viper
	visualizeCmd.Flags().String("outdir", contract.DefaultOutDir, "Directory receiving the HTML charts")
	if err := viper.BindPFlags(visualizeCmd.Flags()); err != nil {
		contract.LogFatal("Error binding visualize flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
