// Package schema has the models shared by every part of timemachine.
package schema

// CommitRecord is one commit as read from the repository, before anything is persisted.
type CommitRecord struct {
	ID           string   // full 40-hex object id
	ParentIDs    []string // first entry is the first parent
	AuthorName   string
	AuthorEmail  string
	AuthoredDate int64 // seconds since the epoch
	Message      string
}

// FirstParent returns the first parent id, or an empty string for a root commit.
func (c CommitRecord) FirstParent() string {
	if len(c.ParentIDs) == 0 {
		return ""
	}
	return c.ParentIDs[0]
}

// Commit is a row of the commits table.
type Commit struct {
	ID           string `db:"id" json:"id"`
	AuthorName   string `db:"author_name" json:"author_name"`
	AuthorEmail  string `db:"author_email" json:"author_email"`
	AuthoredDate int64  `db:"authored_date" json:"authored_date"`
	Message      string `db:"message" json:"message"`
}

// ToCommit drops the parent list, which the store does not keep.
func (c CommitRecord) ToCommit() Commit {
	return Commit{
		ID:           c.ID,
		AuthorName:   c.AuthorName,
		AuthorEmail:  c.AuthorEmail,
		AuthoredDate: c.AuthoredDate,
		Message:      c.Message,
	}
}

// ChangeEntry is one raw entry of a first-parent diff.
// OldPath is empty for additions and NewPath is empty for deletions.
// NewBlob is empty when the post-change side has no readable blob.
type ChangeEntry struct {
	Type    ChangeType
	OldPath string
	NewPath string
	NewBlob string
}

// LineStats holds numstat counts for one path of a commit.
type LineStats struct {
	Insertions int
	Deletions  int
}

// File is a row of the files table.
type File struct {
	ID   int64  `db:"id" json:"id"`
	Path string `db:"path" json:"path"`
}

// CommitFile is a row of the commit_files table.
type CommitFile struct {
	CommitID   string     `db:"commit_id" json:"commit_id"`
	FileID     int64      `db:"file_id" json:"file_id"`
	Additions  int        `db:"additions" json:"additions"`
	Deletions  int        `db:"deletions" json:"deletions"`
	ChangeType ChangeType `db:"change_type" json:"change_type"`
	OldPath    string     `db:"old_path" json:"old_path,omitempty"`
	NewPath    string     `db:"new_path" json:"new_path,omitempty"`
	IsBinary   bool       `db:"is_binary" json:"is_binary"`
}

// FileRename links the pre- and post-rename file rows of one rename.
type FileRename struct {
	CommitID  string `db:"commit_id" json:"commit_id"`
	OldFileID int64  `db:"old_file_id" json:"old_file_id"`
	NewFileID int64  `db:"new_file_id" json:"new_file_id"`
}

// Ownership is a row of the ownership table joined with its file path.
type Ownership struct {
	FileID       int64  `db:"file_id" json:"file_id"`
	Path         string `db:"path" json:"path"`
	AuthorEmail  string `db:"author_email" json:"author_email"`
	Commits      int64  `db:"commits" json:"commits"`
	LinesAdded   int64  `db:"lines_added" json:"lines_added"`
	LinesDeleted int64  `db:"lines_deleted" json:"lines_deleted"`
	FirstCommit  int64  `db:"first_commit" json:"first_commit"`
	LastCommit   int64  `db:"last_commit" json:"last_commit"`
}

// ComplexitySample is a row of the complexity table.
type ComplexitySample struct {
	FileID    int64  `db:"file_id" json:"file_id"`
	CommitID  string `db:"commit_id" json:"commit_id"`
	NLOC      int    `db:"nloc" json:"nloc"`
	CCN       int    `db:"ccn" json:"ccn"`
	Functions int    `db:"functions" json:"functions"`
}

// FeatureReference is a row of the features table.
type FeatureReference struct {
	CommitID  string `db:"commit_id" json:"commit_id"`
	Type      string `db:"type" json:"type"`
	Reference string `db:"reference" json:"reference"`
}

// FunctionComplexity is the analyzer's result for one function.
type FunctionComplexity struct {
	Name       string
	StartLine  int
	EndLine    int
	Cyclomatic int
}

// ComplexityReport is the analyzer's result for one file's content.
type ComplexityReport struct {
	NLOC      int
	Functions []FunctionComplexity
}

// TotalCCN sums cyclomatic complexity over all functions.
func (r *ComplexityReport) TotalCCN() int {
	total := 0
	for _, fn := range r.Functions {
		total += fn.Cyclomatic
	}
	return total
}
