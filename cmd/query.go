package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/timemachine/core"
)

// queryCmd answers a question from the indexed history.
var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Ask how the codebase evolved.",
	Long: `Answer a free-text question with commits from the indexed history.

Questions are routed by keyword:
- Authentication words (auth, login, session, oauth, ...) list every commit
  touching a matching path
- why / reason / motivation / pattern search commit messages for rationale
- Anything else matches its keywords against messages, then paths

Examples:
  timemachine query "How did authentication evolve?"
  timemachine query "Why was the retry pattern introduced?"
  timemachine query database migration --limit 50 --output csv`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: setupWith(questionArgs),
	Run:     runWithStore("Cannot answer question", core.ExecuteQuery),
}

// ownershipCmd prints who owns the files under a path.
var ownershipCmd = &cobra.Command{
	Use:   "ownership [path-prefix]",
	Short: "Show who owns the files under a path prefix.",
	Long: `List per-file, per-author ownership rows computed by the last index run.

Rows are ordered by commits, then lines changed. The share column is the
author's fraction of the file's commits.

Examples:
  # Whole repository
  timemachine ownership

  # A subtree, as JSON
  timemachine ownership src/auth/ --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: setupWith(prefixArg),
	Run:     runWithStore("Cannot show ownership", core.ExecuteOwnership),
}

// visualizeCmd renders charts from the store.
var visualizeCmd = &cobra.Command{
	Use:   "visualize",
	Short: "Render ownership, churn and complexity charts as HTML.",
	Long: `Write standalone HTML charts into --outdir:
- ownership_pie.html    commits per author
- churn_weekly.html     lines added plus deleted per week
- complexity_avg.html   average cyclomatic complexity per sampled commit
- report.html           every available chart on one page

Charts without data are skipped.

Examples:
  timemachine visualize --outdir charts`,
	Args:    cobra.NoArgs,
	PreRunE: setupWith(nil),
	Run:     runWithStore("Cannot render charts", core.ExecuteVisualize),
}
