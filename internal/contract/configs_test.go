package contract

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/timemachine/schema"
)

// validInput returns the raw input produced by the CLI defaults.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		DBBackend:           string(schema.SQLiteBackend),
		Output:              "text",
		Limit:               DefaultResultLimit,
		Color:               "yes",
		LogLevel:            "info",
		BatchSize:           DefaultChangeBatchSize,
		ComplexityBatchSize: DefaultComplexityBatchSize,
		FeatureBatchSize:    DefaultFeatureBatchSize,
		Complexity:          "yes",
		Dedupe:              "yes",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{name: "valid minimal config", mutate: func(*ConfigRawInput) {}},
		{name: "invalid output", mutate: func(in *ConfigRawInput) { in.Output = "yaml" }, expectError: true},
		{name: "limit too large", mutate: func(in *ConfigRawInput) { in.Limit = MaxResultLimit + 1 }, expectError: true},
		{name: "zero limit", mutate: func(in *ConfigRawInput) { in.Limit = 0 }, expectError: true},
		{name: "zero batch size", mutate: func(in *ConfigRawInput) { in.BatchSize = 0 }, expectError: true},
		{name: "negative complexity batch", mutate: func(in *ConfigRawInput) { in.ComplexityBatchSize = -1 }, expectError: true},
		{name: "bad complexity toggle", mutate: func(in *ConfigRawInput) { in.Complexity = "sometimes" }, expectError: true},
		{name: "bad dedupe toggle", mutate: func(in *ConfigRawInput) { in.Dedupe = "perhaps" }, expectError: true},
		{name: "bad color", mutate: func(in *ConfigRawInput) { in.Color = "rainbow" }, expectError: true},
		{name: "bad log level", mutate: func(in *ConfigRawInput) { in.LogLevel = "verbose" }, expectError: true},
		{name: "unknown backend", mutate: func(in *ConfigRawInput) { in.DBBackend = "oracle" }, expectError: true},
		{
			name: "mysql without connection",
			mutate: func(in *ConfigRawInput) {
				in.DBBackend = string(schema.MySQLBackend)
			},
			expectError: true,
		},
		{
			name: "postgres with connection",
			mutate: func(in *ConfigRawInput) {
				in.DBBackend = string(schema.PostgreSQLBackend)
				in.DBConnect = "host=localhost user=tm password=tm dbname=tm sslmode=disable"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(context.Background(), cfg, new(MockGitClient), input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	input := validInput()
	input.DBBackend = ""
	input.ComplexityExclude = "third_party/, *.gen.go"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(context.Background(), cfg, new(MockGitClient), input))

	assert.Equal(t, schema.SQLiteBackend, cfg.Backend)
	assert.Equal(t, GetDBFilePath(), cfg.DBConnect)
	assert.Equal(t, DefaultRef, cfg.Ref)
	assert.Equal(t, DefaultOutDir, cfg.OutDir)
	assert.True(t, cfg.Complexity)
	assert.True(t, cfg.Dedupe)
	assert.True(t, cfg.UseColors)
	assert.Contains(t, cfg.ComplexityExcludes, "vendor/")
	assert.Contains(t, cfg.ComplexityExcludes, "third_party/")
	assert.Contains(t, cfg.ComplexityExcludes, "*.gen.go")
	assert.Empty(t, cfg.RepoPath, "no repository requested")
}

func TestProcessAndValidateResolvesRepo(t *testing.T) {
	ctx := context.Background()
	workDir, err := filepath.Abs(".")
	require.NoError(t, err)

	client := new(MockGitClient)
	client.On("GetRepoRoot", ctx, workDir).Return("/mock/repo/root", nil)

	input := validInput()
	input.RepoPathStr = "."

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(ctx, cfg, client, input))
	assert.Equal(t, "/mock/repo/root", cfg.RepoPath)
	client.AssertExpectations(t)
}

func TestProcessAndValidateQuestionAndPrefix(t *testing.T) {
	ctx := context.Background()
	input := validInput()
	input.QuestionStr = "  why was the cache introduced?  "
	input.PathPrefixStr = "src/auth/"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(ctx, cfg, new(MockGitClient), input))
	assert.Equal(t, "why was the cache introduced?", cfg.Question)
	assert.Equal(t, "src/auth/", cfg.PathPrefix)

	input.PathPrefixStr = "../elsewhere"
	assert.Error(t, ProcessAndValidate(ctx, &Config{}, new(MockGitClient), input))

	input.PathPrefixStr = "/abs/path"
	assert.Error(t, ProcessAndValidate(ctx, &Config{}, new(MockGitClient), input), "absolute prefix needs a repository")
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		connStr string
		wantErr bool
	}{
		{"sqlite accepts anything", schema.SQLiteBackend, "", false},
		{"mysql ok", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/tm", false},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass@localhost/tm", true},
		{"mysql missing db", schema.MySQLBackend, "user:pass@tcp(localhost:3306)", true},
		{"postgres ok", schema.PostgreSQLBackend, "host=db dbname=tm", false},
		{"postgres missing host", schema.PostgreSQLBackend, "dbname=tm", true},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=db", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{ComplexityExcludes: []string{"vendor/"}, ResultLimit: 5}
	clone := cfg.Clone()
	clone.ComplexityExcludes[0] = "changed/"
	clone.ResultLimit = 9

	assert.Equal(t, "vendor/", cfg.ComplexityExcludes[0])
	assert.Equal(t, 5, cfg.ResultLimit)
}
