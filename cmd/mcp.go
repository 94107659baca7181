package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/timemachine/internal/mcp"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Time Machine MCP server",
	Long: `Launch an MCP server over stdio that lets AI agents query the indexed history.

Tools:
  ask_history         - answer a question with commits
  get_file_ownership  - ownership rows under a path prefix
  get_index_status    - what the store holds`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: setupWith(optionalRepoArg),
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, historyStore)
	},
}
