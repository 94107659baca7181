package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/huangsam/timemachine/internal/contract"
	"github.com/huangsam/timemachine/schema"
)

// summaryFields flattens a summary into ordered name/value pairs.
func summaryFields(s schema.IndexSummary) [][2]string {
	return [][2]string{
		{"run_id", s.RunID},
		{"repo_dir", s.RepoDir},
		{"head", s.Head},
		{"commits", strconv.Itoa(s.Commits)},
		{"new_commits", strconv.FormatInt(s.NewCommits, 10)},
		{"changes", strconv.Itoa(s.Changes)},
		{"renames", strconv.Itoa(s.Renames)},
		{"features", strconv.Itoa(s.Features)},
		{"complexity_samples", strconv.Itoa(s.ComplexitySamples)},
		{"skipped_samples", strconv.Itoa(s.SkippedSamples)},
		{"ownership_rows", strconv.FormatInt(s.OwnershipRows, 10)},
		{"duration", s.Duration.Round(time.Millisecond).String()},
	}
}

// PrintIndexSummary outputs the outcome of an indexing run.
func PrintIndexSummary(summary schema.IndexSummary, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summary)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"field", "value"}, func(cw *csv.Writer) error {
				for _, f := range summaryFields(summary) {
					if err := cw.Write(f[:]); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errors.New("parquet output is not available for index summaries; use 'store export'")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeIndexTable(w, summary)
		}, "Wrote table")
	}
}

// writeIndexTable writes the summary as a two-column table.
func writeIndexTable(w io.Writer, summary schema.IndexSummary) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Field", "Value"})
	var data [][]string
	for _, f := range summaryFields(summary) {
		data = append(data, []string{f[0], f[1]})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Indexed %d commits (%d new) in %v\n",
		summary.Commits, summary.NewCommits, summary.Duration.Round(time.Millisecond))
	return err
}
