package schema

import (
	"fmt"
	"strings"
	"time"
)

// IndexSummary describes one indexing run.
type IndexSummary struct {
	RunID             string        `json:"run_id"`
	RepoDir           string        `json:"repo_dir"`
	Head              string        `json:"head"`
	Commits           int           `json:"commits"`
	NewCommits        int64         `json:"new_commits"`
	Changes           int           `json:"changes"`
	Renames           int           `json:"renames"`
	Features          int           `json:"features"`
	ComplexitySamples int           `json:"complexity_samples"`
	SkippedSamples    int           `json:"skipped_samples"`
	OwnershipRows     int64         `json:"ownership_rows"`
	Duration          time.Duration `json:"duration"`
}

// StoreStatus represents the status of the history store.
type StoreStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	SchemaVersion uint             `json:"schema_version"`
	Dirty         bool             `json:"dirty"`
	RepoDir       string           `json:"repo_dir"`
	LastRunID     string           `json:"last_run_id"`
	LastHead      string           `json:"last_head"`
	LastIndexedAt time.Time        `json:"last_indexed_at"`
	OldestCommit  time.Time        `json:"oldest_commit"`
	NewestCommit  time.Time        `json:"newest_commit"`
	TableSizes    map[string]int64 `json:"table_sizes"`
	SizeBytes     int64            `json:"size_bytes"`
}

// AuthorShare is the commit count of one author across the whole history.
type AuthorShare struct {
	AuthorEmail string `db:"author_email" json:"author_email"`
	Commits     int64  `db:"commits" json:"commits"`
}

// ChurnPoint is the total lines added plus deleted within one week bucket.
type ChurnPoint struct {
	WeekStart int64 `db:"week_start" json:"week_start"`
	Churn     int64 `db:"churn" json:"churn"`
}

// ComplexityPoint is the mean per-function complexity of the samples taken at one commit.
type ComplexityPoint struct {
	CommitID     string  `db:"commit_id" json:"commit_id"`
	AuthoredDate int64   `db:"authored_date" json:"authored_date"`
	AvgCCN       float64 `db:"avg_ccn" json:"avg_ccn"`
}

// Answer is the result of a keyword question over the history.
type Answer struct {
	Title   string   `json:"title,omitempty"` // printed above the commits when set
	Commits []Commit `json:"commits"`
	Empty   string   `json:"empty,omitempty"` // printed instead when no commit matched
}

// String renders the answer as line-oriented text.
func (a Answer) String() string {
	if len(a.Commits) == 0 {
		return a.Empty
	}
	lines := make([]string, len(a.Commits))
	for i, c := range a.Commits {
		lines[i] = FormatCommitLine(c)
	}
	body := strings.Join(lines, "\n")
	if a.Title != "" {
		return a.Title + ":\n" + body
	}
	return body
}

// FormatCommitLine renders "date | short hash | author | subject".
func FormatCommitLine(c Commit) string {
	short := c.ID
	if len(short) > 10 {
		short = short[:10]
	}
	return fmt.Sprintf("%s | %s | %s <%s> | %s", c.Date(), short, c.AuthorName, c.AuthorEmail, c.Subject())
}

// Date returns the UTC author date as YYYY-MM-DD, or an empty string when unknown.
func (c Commit) Date() string {
	if c.AuthoredDate == 0 {
		return ""
	}
	return time.Unix(c.AuthoredDate, 0).UTC().Format("2006-01-02")
}

// Subject returns the first line of the message.
func (c Commit) Subject() string {
	subject, _, _ := strings.Cut(c.Message, "\n")
	return subject
}
