package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the relational backend holding the history store.
	DatabaseBackend string

	// ChangeType is the single-letter classification of a file change within a commit.
	ChangeType string
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
)

// All change types recorded in commit_files.
const (
	ChangeAdded    ChangeType = "A"
	ChangeModified ChangeType = "M"
	ChangeDeleted  ChangeType = "D"
	ChangeRenamed  ChangeType = "R"
	ChangeTypeBits ChangeType = "T" // file mode or type change
)

// Feature reference types produced by message extraction.
const (
	FeatureIssueCloses = "issue-closes"
	FeatureTicketID    = "ticket-id"
	FeatureRationale   = "rationale"
)

// Keys written to the repo_meta table.
const (
	MetaRepoDir       = "repo_dir"
	MetaLastIndexedAt = "last_indexed_at"
	MetaLastRunID     = "last_run_id"
	MetaLastHead      = "last_head"
)

// Table names of the history store, in dependency order.
const (
	TableRepoMeta    = "repo_meta"
	TableCommits     = "commits"
	TableFiles       = "files"
	TableCommitFiles = "commit_files"
	TableFileRenames = "file_renames"
	TableOwnership   = "ownership"
	TableComplexity  = "complexity"
	TableFeatures    = "features"
)

// AllTables lists every table the history store owns, parents first.
var AllTables = []string{
	TableRepoMeta,
	TableCommits,
	TableFiles,
	TableCommitFiles,
	TableFileRenames,
	TableOwnership,
	TableComplexity,
	TableFeatures,
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
}

// ValidChangeTypes lists the change types accepted by the store.
var ValidChangeTypes = map[ChangeType]struct{}{
	ChangeAdded:    {},
	ChangeModified: {},
	ChangeDeleted:  {},
	ChangeRenamed:  {},
	ChangeTypeBits: {},
}
