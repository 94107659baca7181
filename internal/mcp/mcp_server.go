// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/huangsam/timemachine/internal/contract"
)

// NewMCPServer initializes and configures the Time Machine MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, store contract.HistoryStore) *server.MCPServer {
	s := server.NewMCPServer(
		"Codebase Time Machine Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		store:   store,
	}

	// --- 1. Tool: ask_history ---
	s.AddTool(mcp.NewTool("ask_history",
		mcp.WithDescription("Answer a free-text question about how the indexed repository evolved, citing commits."),
		mcp.WithString("question", mcp.Description("The question, e.g. 'How did authentication evolve?' or 'Why was the cache introduced?'."), mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Limit the number of commits for keyword searches.")),
	), h.handleAskHistory)

	// --- 2. Tool: get_file_ownership ---
	s.AddTool(mcp.NewTool("get_file_ownership",
		mcp.WithDescription("List who owns the files under a path prefix, by commits and lines changed."),
		mcp.WithString("path_prefix", mcp.Description("Repository-relative path prefix (defaults to the whole repository).")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of ownership rows returned.")),
	), h.handleGetFileOwnership)

	// --- 3. Tool: get_index_status ---
	s.AddTool(mcp.NewTool("get_index_status",
		mcp.WithDescription("Report what the history store holds: last indexed run, head commit and table sizes."),
	), h.handleGetIndexStatus)

	return s
}

// StartMCPServer starts the Time Machine MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, store contract.HistoryStore) error {
	s := NewMCPServer(baseCfg, store)
	return server.ServeStdio(s)
}
