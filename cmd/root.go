package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/huangsam/timemachine/core"
	"github.com/huangsam/timemachine/internal/contract"
	"github.com/huangsam/timemachine/internal/iocache"
	"github.com/huangsam/timemachine/schema"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// historyStore is the store opened by the setup of the running command.
var historyStore contract.HistoryStore

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:   "timemachine",
	Short: "Index Git history and ask how a codebase evolved.",
	Long: `Codebase Time Machine indexes the full history of a Git repository into a
relational store, then answers questions about ownership, rationale and evolution.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in .env, the config file and ENV variables if set.
func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		contract.LogWarn("Cannot load .env file", err)
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("TIMEMACHINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("limit", contract.DefaultResultLimit)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("db-backend", schema.SQLiteBackend)
	viper.SetDefault("db-connect", "")
	viper.SetDefault("color", "yes")
	viper.SetDefault("log-level", contract.DefaultLogLevel)
	viper.SetDefault("ref", contract.DefaultRef)
	viper.SetDefault("batch-size", contract.DefaultChangeBatchSize)
	viper.SetDefault("complexity-batch-size", contract.DefaultComplexityBatchSize)
	viper.SetDefault("feature-batch-size", contract.DefaultFeatureBatchSize)
	viper.SetDefault("complexity", "yes")
	viper.SetDefault("dedupe", "yes")
	viper.SetDefault("outdir", contract.DefaultOutDir)
}

// loadConfigFile handles config file loading logic common to all setup functions.
func loadConfigFile() error {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".timemachine") // Name of config file (without extension)
		viper.SetConfigType("yaml")         // We'll use YAML format
		viper.AddConfigPath(".")            // Look in the current directory
		viper.AddConfigPath("$HOME")        // Look in the home directory
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}
	return nil
}

// argMapper copies a command's positional arguments into the raw input.
type argMapper func(in *contract.ConfigRawInput, args []string)

// repoArg treats the optional first argument as the repository path.
func repoArg(in *contract.ConfigRawInput, args []string) {
	in.RepoPathStr = "."
	if len(args) == 1 {
		in.RepoPathStr = args[0]
	}
}

// optionalRepoArg resolves a repository only when one is given.
func optionalRepoArg(in *contract.ConfigRawInput, args []string) {
	if len(args) == 1 {
		in.RepoPathStr = args[0]
	}
}

// questionArgs joins every argument into the question.
func questionArgs(in *contract.ConfigRawInput, args []string) {
	in.QuestionStr = strings.Join(args, " ")
}

// prefixArg treats the optional first argument as a path prefix.
func prefixArg(in *contract.ConfigRawInput, args []string) {
	if len(args) == 1 {
		in.PathPrefixStr = args[0]
	}
}

// sharedSetup unmarshals config, runs validation and opens the history store.
func sharedSetup(ctx context.Context, args []string, mapArgs argMapper) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := loadConfigFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Handle positional arguments (which Viper doesn't do).
	if mapArgs != nil {
		mapArgs(input, args)
	}

	// 4. Run all validation and complex parsing.
	client := contract.NewLocalGitClient()
	if err := contract.ProcessAndValidate(ctx, cfg, client, input); err != nil {
		return err
	}

	// 5. Initialize persistence layer with validated config
	return openStore(ctx)
}

// setupWith adapts sharedSetup to Cobra's PreRunE.
func setupWith(mapArgs argMapper) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		return sharedSetup(rootCtx, args, mapArgs)
	}
}

// openStore opens and migrates the history store named by cfg.
func openStore(ctx context.Context) error {
	if err := iocache.InitStore(ctx, cfg.Backend, cfg.DBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	historyStore = iocache.Manager.GetHistoryStore()
	return nil
}

// runWithStore runs an executor against the opened store, exiting on failure.
func runWithStore(action string, executor core.ExecutorFunc) func(*cobra.Command, []string) {
	return func(_ *cobra.Command, _ []string) {
		if err := executor(rootCtx, cfg, historyStore); err != nil {
			contract.LogFatal(action, err)
		}
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
