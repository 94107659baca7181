package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/timemachine/core"
)

// initCmd clones a repository when needed, then indexes it.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Clone a repository if needed and index its full history.",
	Long: `Prepare a repository for questions in one step.

If --workdir is missing or empty, the repository at --repo-url is cloned into it
(the directory defaults to the repository name). An existing checkout is reused
as is. The history is then indexed and ownership rebuilt, exactly like 'index'.

Examples:
  # Clone and index
  timemachine init --repo-url https://github.com/psf/requests.git

  # Reuse a checkout in a custom directory
  timemachine init --workdir ~/src/requests`,
	Args:    cobra.NoArgs,
	PreRunE: setupWith(nil),
	Run:     runWithStore("Cannot initialize repository", core.ExecuteInit),
}

// indexCmd walks every commit and writes the history store.
var indexCmd = &cobra.Command{
	Use:   "index [repo-path]",
	Short: "Index the full Git history of a repository into the store.",
	Long: `Walk every commit reachable from --ref and record it in the history store.

For each commit the indexer stores:
- Commit metadata (author, date, message)
- Per-file changes against the first parent, with line counts and rename links
- Issue numbers, ticket ids and rationale markers found in the message
- Cyclomatic complexity samples of changed source files (--complexity)

Ownership aggregates are rebuilt at the end of every run. Re-indexing is safe:
known commits are skipped and their derived rows replaced (--dedupe).

Examples:
  # Index the current repository
  timemachine index

  # Index only the main branch, without complexity sampling
  timemachine index ~/src/requests --ref main --complexity no

  # Write the run summary as JSON
  timemachine index --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: setupWith(repoArg),
	Run:     runWithStore("Cannot index repository", core.ExecuteIndex),
}
