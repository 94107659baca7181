package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/timemachine/internal/contract"
	"github.com/huangsam/timemachine/internal/parquet"
	"github.com/huangsam/timemachine/schema"
)

// PrintAnswer outputs the commits answering a question, dispatching based on the output format configured.
func PrintAnswer(answer schema.Answer, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONAnswer(w, answer)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVAnswer(w, answer)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return errors.New("parquet output requires --output-file")
		}
		if err := parquet.WriteCommitsParquet(parquet.ConvertCommits(answer.Commits), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing parquet output: %w", err)
		}
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			_, err := fmt.Fprintln(w, answer.String())
			return err
		}, "Wrote answer")
	}
}

// writeJSONAnswer writes the answer with a display line per commit.
func writeJSONAnswer(w io.Writer, answer schema.Answer) error {
	type jsonCommit struct {
		schema.Commit
		Date    string `json:"date"`
		Subject string `json:"subject"`
	}
	out := struct {
		Title   string       `json:"title,omitempty"`
		Message string       `json:"message,omitempty"`
		Commits []jsonCommit `json:"commits"`
	}{
		Title:   answer.Title,
		Commits: make([]jsonCommit, len(answer.Commits)),
	}
	if len(answer.Commits) == 0 {
		out.Message = answer.Empty
	}
	for i, c := range answer.Commits {
		out.Commits[i] = jsonCommit{Commit: c, Date: c.Date(), Subject: c.Subject()}
	}
	return writeJSON(w, out)
}

// writeCSVAnswer writes one record per commit. An empty answer yields the header only.
func writeCSVAnswer(w io.Writer, answer schema.Answer) error {
	header := []string{"date", "commit", "author_name", "author_email", "subject"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, c := range answer.Commits {
			if err := cw.Write([]string{c.Date(), c.ID, c.AuthorName, c.AuthorEmail, c.Subject()}); err != nil {
				return err
			}
		}
		return nil
	})
}
