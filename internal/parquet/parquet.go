// Package parquet provides data structures and functions for exporting the history
// store to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/huangsam/timemachine/schema"
)

// Commit represents one indexed commit.
// This struct maps to the commits database table.
type Commit struct {
	// ID is the full commit hash
	ID string `parquet:"id,snappy"`

	// AuthorName is the author as recorded in the commit
	AuthorName string `parquet:"author_name,snappy"`

	// AuthorEmail is the author's email address
	AuthorEmail string `parquet:"author_email,snappy"`

	// AuthoredAt is the author timestamp (stored as TIMESTAMP with nanosecond precision)
	AuthoredAt time.Time `parquet:"authored_at,snappy"`

	// Message is the full commit message
	Message string `parquet:"message,snappy"`
}

// Change represents one file changed by one commit.
// This struct maps to the commit_files database table.
type Change struct {
	CommitID   string  `parquet:"commit_id,snappy"`
	FileID     int64   `parquet:"file_id,snappy"`
	Additions  int32   `parquet:"additions,snappy"`
	Deletions  int32   `parquet:"deletions,snappy"`
	ChangeType string  `parquet:"change_type,snappy"`
	OldPath    *string `parquet:"old_path,optional,snappy"`
	NewPath    *string `parquet:"new_path,optional,snappy"`
	IsBinary   bool    `parquet:"is_binary,snappy"`
}

// Feature represents one issue, ticket or rationale reference extracted from a commit message.
// This struct maps to the features database table.
type Feature struct {
	CommitID  string `parquet:"commit_id,snappy"`
	Type      string `parquet:"type,snappy"`
	Reference string `parquet:"reference,snappy"`
}

// Ownership represents what one author contributed to one file.
// This struct maps to the ownership database table joined with files.
type Ownership struct {
	FileID       int64     `parquet:"file_id,snappy"`
	Path         string    `parquet:"path,snappy"`
	AuthorEmail  string    `parquet:"author_email,snappy"`
	Commits      int64     `parquet:"commits,snappy"`
	LinesAdded   int64     `parquet:"lines_added,snappy"`
	LinesDeleted int64     `parquet:"lines_deleted,snappy"`
	FirstCommit  time.Time `parquet:"first_commit,snappy"`
	LastCommit   time.Time `parquet:"last_commit,snappy"`
}

// WriteCommitsParquet writes a slice of Commit structs to a Parquet file.
func WriteCommitsParquet(data []Commit, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteChangesParquet writes a slice of Change structs to a Parquet file.
func WriteChangesParquet(data []Change, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteFeaturesParquet writes a slice of Feature structs to a Parquet file.
func WriteFeaturesParquet(data []Feature, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteOwnershipParquet writes a slice of Ownership structs to a Parquet file.
func WriteOwnershipParquet(data []Ownership, outputPath string) error {
	return writeParquet(data, outputPath)
}

func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the struct tags of T
	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertCommits converts store commit rows to Parquet commits.
func ConvertCommits(records []schema.Commit) []Commit {
	result := make([]Commit, len(records))
	for i, r := range records {
		result[i] = Commit{
			ID:          r.ID,
			AuthorName:  r.AuthorName,
			AuthorEmail: r.AuthorEmail,
			AuthoredAt:  time.Unix(r.AuthoredDate, 0).UTC(),
			Message:     r.Message,
		}
	}
	return result
}

// ConvertChanges converts store change rows to Parquet changes.
// Empty paths become nulls.
func ConvertChanges(records []schema.CommitFile) []Change {
	result := make([]Change, len(records))
	for i, r := range records {
		result[i] = Change{
			CommitID:   r.CommitID,
			FileID:     r.FileID,
			Additions:  int32(r.Additions),
			Deletions:  int32(r.Deletions),
			ChangeType: string(r.ChangeType),
			OldPath:    optional(r.OldPath),
			NewPath:    optional(r.NewPath),
			IsBinary:   r.IsBinary,
		}
	}
	return result
}

// ConvertFeatures converts store feature rows to Parquet features.
func ConvertFeatures(records []schema.FeatureReference) []Feature {
	result := make([]Feature, len(records))
	for i, r := range records {
		result[i] = Feature{CommitID: r.CommitID, Type: r.Type, Reference: r.Reference}
	}
	return result
}

// ConvertOwnership converts store ownership rows to Parquet ownership.
func ConvertOwnership(records []schema.Ownership) []Ownership {
	result := make([]Ownership, len(records))
	for i, r := range records {
		result[i] = Ownership{
			FileID:       r.FileID,
			Path:         r.Path,
			AuthorEmail:  r.AuthorEmail,
			Commits:      r.Commits,
			LinesAdded:   r.LinesAdded,
			LinesDeleted: r.LinesDeleted,
			FirstCommit:  time.Unix(r.FirstCommit, 0).UTC(),
			LastCommit:   time.Unix(r.LastCommit, 0).UTC(),
		}
	}
	return result
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
