package contract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/timemachine/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit         = 20
	MaxResultLimit             = 1000
	DefaultChangeBatchSize     = 1000
	DefaultComplexityBatchSize = 500
	DefaultFeatureBatchSize    = 1000
	DefaultRef                 = "--all"
	DefaultLogLevel            = "info"
	DefaultOutDir              = "charts"
)

// DefaultComplexityExcludes are skipped by the complexity sampler. Their change rows are still recorded.
var DefaultComplexityExcludes = []string{
	"vendor/", "node_modules/", "dist/", "build/",
	".min.js", ".min.css", ".pb.go", "_generated.go",
}

// Config holds the runtime configuration of a command.
// This struct remains the "final, validated" config.
type Config struct {
	RepoPath string // Absolute path to the repository root (empty for commands that only read the store)
	RepoURL  string // Remote to clone during init
	Workdir  string // Clone target during init

	Question   string // Free-text question for query
	PathPrefix string // Repository-relative prefix for ownership

	Backend   schema.DatabaseBackend
	DBConnect string // Please use env var as this is plaintext

	Ref                 string
	ChangeBatchSize     int
	ComplexityBatchSize int
	FeatureBatchSize    int
	Complexity          bool
	ComplexityExcludes  []string
	Dedupe              bool

	Output      schema.OutputMode
	OutputFile  string
	OutDir      string
	ResultLimit int
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool

	LogLevel string
	LogFile  string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// These are set manually from positional args, so no tag
	RepoPathStr   string
	QuestionStr   string
	PathPrefixStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	DBBackend  string `mapstructure:"db-backend"`
	DBConnect  string `mapstructure:"db-connect"`
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Limit      int    `mapstructure:"limit"`
	Width      int    `mapstructure:"width"`
	Color      string `mapstructure:"color"`
	LogLevel   string `mapstructure:"log-level"`
	LogFile    string `mapstructure:"log-file"`

	// --- Fields from indexCmd.Flags() and initCmd.Flags() ---
	Ref                 string `mapstructure:"ref"`
	BatchSize           int    `mapstructure:"batch-size"`
	ComplexityBatchSize int    `mapstructure:"complexity-batch-size"`
	FeatureBatchSize    int    `mapstructure:"feature-batch-size"`
	Complexity          string `mapstructure:"complexity"`
	ComplexityExclude   string `mapstructure:"complexity-exclude"`
	Dedupe              string `mapstructure:"dedupe"`
	RepoURL             string `mapstructure:"repo-url"`
	Workdir             string `mapstructure:"workdir"`

	// --- Fields from visualizeCmd.Flags() ---
	OutDir string `mapstructure:"outdir"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.ComplexityExcludes != nil {
		clone.ComplexityExcludes = make([]string, len(c.ComplexityExcludes))
		copy(clone.ComplexityExcludes, c.ComplexityExcludes)
	}
	return &clone
}

// ProcessAndValidate validates input and fills cfg. The repository is resolved only
// when a repository path was given.
func ProcessAndValidate(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateIndexInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	cfg.Question = strings.TrimSpace(input.QuestionStr)
	if input.RepoPathStr != "" {
		root, err := ResolveRepoRoot(ctx, client, input.RepoPathStr)
		if err != nil {
			return err
		}
		cfg.RepoPath = root
	}
	prefix, err := NormalizePathPrefix(cfg.RepoPath, input.PathPrefixStr)
	if err != nil {
		return err
	}
	cfg.PathPrefix = prefix
	return nil
}

// ProcessBackend fills only the store settings of cfg. Store maintenance commands
// use it to avoid validating options they never read.
func ProcessBackend(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	return validateBackendConfigs(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for the given backend.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	backend := input.DBBackend
	if backend == "" {
		backend = string(schema.SQLiteBackend)
	}
	cfg.Backend = schema.DatabaseBackend(strings.ToLower(backend))
	if _, ok := schema.ValidDatabaseBackends[cfg.Backend]; !ok {
		return fmt.Errorf("invalid db-backend '%s'. must be sqlite, mysql, postgresql", input.DBBackend)
	}
	cfg.DBConnect = input.DBConnect
	if cfg.Backend == schema.SQLiteBackend && cfg.DBConnect == "" {
		cfg.DBConnect = GetDBFilePath()
	}
	return ValidateDatabaseConnectionString(cfg.Backend, cfg.DBConnect)
}

func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.LogFile = input.LogFile
	cfg.RepoURL = input.RepoURL
	cfg.Workdir = input.Workdir

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. ResultLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", cfg.Output)
	}

	// --- 3. Logging Validation ---
	cfg.LogLevel = strings.ToLower(input.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if _, err := ParseLogLevel(cfg.LogLevel); err != nil {
		return err
	}

	cfg.OutDir = input.OutDir
	if cfg.OutDir == "" {
		cfg.OutDir = DefaultOutDir
	}
	return nil
}

func validateIndexInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Ref = input.Ref
	if cfg.Ref == "" {
		cfg.Ref = DefaultRef
	}

	sizes := []struct {
		name  string
		value int
		dst   *int
	}{
		{"batch-size", input.BatchSize, &cfg.ChangeBatchSize},
		{"complexity-batch-size", input.ComplexityBatchSize, &cfg.ComplexityBatchSize},
		{"feature-batch-size", input.FeatureBatchSize, &cfg.FeatureBatchSize},
	}
	for _, s := range sizes {
		if s.value < 1 {
			return fmt.Errorf("%s must be at least 1 (received %d)", s.name, s.value)
		}
		*s.dst = s.value
	}

	complexity, err := ParseBoolString(input.Complexity)
	if err != nil {
		return fmt.Errorf("invalid --complexity value: %w", err)
	}
	cfg.Complexity = complexity

	dedupe, err := ParseBoolString(input.Dedupe)
	if err != nil {
		return fmt.Errorf("invalid --dedupe value: %w", err)
	}
	cfg.Dedupe = dedupe

	cfg.ComplexityExcludes = append([]string{}, DefaultComplexityExcludes...)
	if input.ComplexityExclude != "" {
		for p := range strings.SplitSeq(input.ComplexityExclude, ",") {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				cfg.ComplexityExcludes = append(cfg.ComplexityExcludes, trimmed)
			}
		}
	}
	return nil
}

// ResolveRepoRoot returns the root of the repository containing path.
// A path to a file resolves through its directory.
func ResolveRepoRoot(ctx context.Context, client GitClient, path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	absPath = filepath.Clean(absPath)

	contextPath := absPath
	if info, statErr := os.Stat(absPath); statErr == nil && !info.IsDir() {
		contextPath = filepath.Dir(absPath)
	}
	return client.GetRepoRoot(ctx, contextPath)
}
