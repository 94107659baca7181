package outwriter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/timemachine/internal/contract"
	"github.com/huangsam/timemachine/schema"
)

var sampleAnswer = schema.Answer{
	Title: "Authentication / Authorization evolution",
	Commits: []schema.Commit{
		{
			ID:           "abc1234567890def",
			AuthorName:   "Alice Doe",
			AuthorEmail:  "alice@example.com",
			AuthoredDate: 1700000000,
			Message:      "Add login throttle\n\nBecause of brute force.",
		},
	},
}

var sampleOwnership = []schema.Ownership{
	{FileID: 1, Path: "src/main.go", AuthorEmail: "alice@example.com", Commits: 2, LinesAdded: 15, LinesDeleted: 1, FirstCommit: 1700000000, LastCommit: 1700086400},
	{FileID: 2, Path: "README.md", AuthorEmail: "alice@example.com", Commits: 1, LinesAdded: 2, FirstCommit: 1700000000, LastCommit: 1700000000},
	{FileID: 2, Path: "README.md", AuthorEmail: "bob@example.com", Commits: 3, LinesAdded: 1, LinesDeleted: 1, FirstCommit: 1700864000, LastCommit: 1700864000},
}

func TestGetMaxTablePathWidth(t *testing.T) {
	tests := []struct {
		width    int
		expected int
	}{
		{width: 80, expected: minPathWidth},
		{width: 100, expected: 25},
		{width: 300, expected: maxPathWidth},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, GetMaxTablePathWidth(&contract.Config{Width: tt.width}))
	}
}

func TestWriteJSONAnswer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSONAnswer(&buf, sampleAnswer))

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, sampleAnswer.Title, out["title"])
	commits := out["commits"].([]any)
	require.Len(t, commits, 1)
	first := commits[0].(map[string]any)
	assert.Equal(t, "2023-11-14", first["date"])
	assert.Equal(t, "Add login throttle", first["subject"])
	assert.Equal(t, "abc1234567890def", first["id"])
}

func TestWriteJSONAnswerEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSONAnswer(&buf, schema.Answer{Empty: "No relevant commits found."}))

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "No relevant commits found.", out["message"])
	assert.Empty(t, out["commits"])
}

func TestWriteCSVAnswer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCSVAnswer(&buf, sampleAnswer))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "date,commit,author_name,author_email,subject", lines[0])
	assert.Equal(t, "2023-11-14,abc1234567890def,Alice Doe,alice@example.com,Add login throttle", lines[1])
}

func TestPrintAnswerToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answer.txt")
	cfg := &contract.Config{Output: schema.TextOut, OutputFile: path}
	require.NoError(t, NewOutWriter().WriteAnswer(sampleAnswer, cfg))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleAnswer.String()+"\n", string(content))
	assert.Contains(t, string(content), "2023-11-14 | abc1234567 | Alice Doe <alice@example.com> | Add login throttle")
}

func TestPrintAnswerParquetNeedsFile(t *testing.T) {
	err := PrintAnswer(sampleAnswer, &contract.Config{Output: schema.ParquetOut})
	assert.Error(t, err)
}

func TestPrintAnswerParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answer.parquet")
	require.NoError(t, PrintAnswer(sampleAnswer, &contract.Config{Output: schema.ParquetOut, OutputFile: path}))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestComputeShares(t *testing.T) {
	shares := computeShares(sampleOwnership)
	require.Len(t, shares, 3)
	assert.InDelta(t, 100.0, shares[0].Share, 0.001)
	assert.Equal(t, contract.PrimaryValue, shares[0].Label)
	assert.InDelta(t, 25.0, shares[1].Share, 0.001)
	assert.Equal(t, contract.MajorValue, shares[1].Label)
	assert.InDelta(t, 75.0, shares[2].Share, 0.001)
}

func TestComputeSharesZeroCommits(t *testing.T) {
	shares := computeShares([]schema.Ownership{{FileID: 9, Path: "x"}})
	assert.Zero(t, shares[0].Share)
	assert.Equal(t, contract.MinorValue, shares[0].Label)
}

func TestWriteOwnershipTable(t *testing.T) {
	fmtFloat, intFmt := createFormatters(1)
	var buf bytes.Buffer
	cfg := &contract.Config{Width: 200}
	require.NoError(t, writeOwnershipTable(&buf, computeShares(sampleOwnership), cfg, fmtFloat, intFmt))

	out := buf.String()
	assert.Contains(t, out, "src/main.go")
	assert.Contains(t, out, "bob@example.com")
	assert.Contains(t, out, "75.0%")
	assert.Contains(t, out, "+15/-1")
	assert.Contains(t, out, "2023-11-15")
	assert.Contains(t, out, "Showing 3 ownership rows (total commits: 6)")
}

func TestWriteOwnershipTableEmpty(t *testing.T) {
	fmtFloat, intFmt := createFormatters(1)
	var buf bytes.Buffer
	require.NoError(t, writeOwnershipTable(&buf, nil, &contract.Config{}, fmtFloat, intFmt))
	assert.Contains(t, buf.String(), "No ownership data")
}

func TestWriteCSVOwnership(t *testing.T) {
	fmtFloat, intFmt := createFormatters(1)
	var buf bytes.Buffer
	require.NoError(t, writeCSVOwnership(&buf, computeShares(sampleOwnership), fmtFloat, intFmt))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "path,author_email,commits,share"))
	assert.Equal(t, "README.md,bob@example.com,3,75.0,Primary,1,1,2023-11-24,2023-11-24", lines[3])
}

func TestPrintOwnershipJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "owners.json")
	require.NoError(t, PrintOwnership(sampleOwnership, &contract.Config{Output: schema.JSONOut, OutputFile: path}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	var out []map[string]any
	require.NoError(t, json.Unmarshal(content, &out))
	require.Len(t, out, 3)
	assert.Equal(t, "README.md", out[2]["path"])
	assert.Equal(t, float64(75), out[2]["share"])
	assert.Equal(t, "Primary", out[2]["label"])
}

func TestPrintOwnershipParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "owners.parquet")
	require.NoError(t, PrintOwnership(sampleOwnership, &contract.Config{Output: schema.ParquetOut, OutputFile: path}))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestPrintIndexSummary(t *testing.T) {
	summary := schema.IndexSummary{
		RunID:      "run-1",
		RepoDir:    "/tmp/repo",
		Commits:    3,
		NewCommits: 2,
		Changes:    5,
		Duration:   1500 * time.Millisecond,
	}

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeIndexTable(&buf, summary))
		out := buf.String()
		assert.Contains(t, out, "run-1")
		assert.Contains(t, out, "Indexed 3 commits (2 new) in 1.5s")
	})

	t.Run("csv", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "summary.csv")
		require.NoError(t, PrintIndexSummary(summary, &contract.Config{Output: schema.CSVOut, OutputFile: path}))
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "field,value\nrun_id,run-1\n")
		assert.Contains(t, string(content), "changes,5\n")
	})

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "summary.json")
		require.NoError(t, NewOutWriter().WriteIndexSummary(summary, &contract.Config{Output: schema.JSONOut, OutputFile: path}))
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		var out schema.IndexSummary
		require.NoError(t, json.Unmarshal(content, &out))
		assert.Equal(t, summary, out)
	})

	t.Run("parquet unsupported", func(t *testing.T) {
		assert.Error(t, PrintIndexSummary(summary, &contract.Config{Output: schema.ParquetOut}))
	})
}
