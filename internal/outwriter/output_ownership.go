package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/huangsam/timemachine/internal/contract"
	"github.com/huangsam/timemachine/internal/parquet"
	"github.com/huangsam/timemachine/schema"
)

// ownershipShare is an ownership row with the author's share of the file's commits.
type ownershipShare struct {
	schema.Ownership
	Share float64 `json:"share"` // percent, 0-100
	Label string  `json:"label"`
}

// computeShares derives each author's percentage of the commits listed for the same file.
func computeShares(rows []schema.Ownership) []ownershipShare {
	totals := make(map[int64]int64, len(rows))
	for _, r := range rows {
		totals[r.FileID] += r.Commits
	}
	out := make([]ownershipShare, len(rows))
	for i, r := range rows {
		share := 0.0
		if t := totals[r.FileID]; t > 0 {
			share = 100 * float64(r.Commits) / float64(t)
		}
		out[i] = ownershipShare{Ownership: r, Share: share, Label: contract.GetPlainLabel(share)}
	}
	return out
}

// PrintOwnership outputs ownership rows, dispatching based on the output format configured.
func PrintOwnership(rows []schema.Ownership, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(1)
	shares := computeShares(rows)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, shares)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVOwnership(w, shares, fmtFloat, intFmt)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return errors.New("parquet output requires --output-file")
		}
		if err := parquet.WriteOwnershipParquet(parquet.ConvertOwnership(rows), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing parquet output: %w", err)
		}
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeOwnershipTable(w, shares, cfg, fmtFloat, intFmt)
		}, "Wrote table")
	}
}

// writeOwnershipTable generates and writes the human-readable table.
func writeOwnershipTable(w io.Writer, shares []ownershipShare, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	if len(shares) == 0 {
		_, err := fmt.Fprintln(w, "No ownership data. Run 'timemachine index' first.")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Path", "Author", "Commits", "Share", "Label", "+/-", "Last Commit"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})

	pathWidth := GetMaxTablePathWidth(cfg)
	var data [][]string
	var totalCommits int64
	for _, s := range shares {
		label := s.Label
		if cfg.UseColors {
			label = contract.GetColorLabel(s.Share)
		}
		data = append(data, []string{
			contract.TruncatePath(s.Path, pathWidth),
			s.AuthorEmail,
			fmt.Sprintf(intFmt, s.Commits),
			fmtFloat(s.Share) + "%",
			label,
			fmt.Sprintf("+%d/-%d", s.LinesAdded, s.LinesDeleted),
			formatEpochDate(s.LastCommit),
		})
		totalCommits += s.Commits
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d ownership rows (total commits: %d)\n", len(shares), totalCommits)
	return err
}

// writeCSVOwnership writes one record per (file, author) row.
func writeCSVOwnership(w io.Writer, shares []ownershipShare, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"path",
		"author_email",
		"commits",
		"share",
		"label",
		"lines_added",
		"lines_deleted",
		"first_commit",
		"last_commit",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, s := range shares {
			rec := []string{
				s.Path,
				s.AuthorEmail,
				fmt.Sprintf(intFmt, s.Commits),
				fmtFloat(s.Share),
				s.Label,
				strconv.FormatInt(s.LinesAdded, 10),
				strconv.FormatInt(s.LinesDeleted, 10),
				formatEpochDate(s.FirstCommit),
				formatEpochDate(s.LastCommit),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// formatEpochDate renders epoch seconds as a UTC date, or "-" when unknown.
func formatEpochDate(ts int64) string {
	if ts == 0 {
		return "-"
	}
	return time.Unix(ts, 0).UTC().Format(time.DateOnly)
}
