package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/huangsam/timemachine/core"
	"github.com/huangsam/timemachine/internal/contract"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	store   contract.HistoryStore
}

func (h *toolHandler) handleAskHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.Question = request.GetString("question", "")
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}

	answer, err := core.GetAnswer(ctx, cfg, h.store)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}
	if len(answer.Commits) == 0 {
		return mcp.NewToolResultText(answer.String()), nil
	}
	return jsonResult(answer)
}

func (h *toolHandler) handleGetFileOwnership(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	prefix, err := contract.NormalizePathPrefix(cfg.RepoPath, request.GetString("path_prefix", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid path_prefix: %v", err)), nil
	}
	cfg.PathPrefix = prefix
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}

	rows, err := core.GetOwnership(ctx, cfg, h.store)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ownership lookup failed: %v", err)), nil
	}
	return jsonResult(rows)
}

func (h *toolHandler) handleGetIndexStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := h.store.GetStatus(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("status failed: %v", err)), nil
	}
	return jsonResult(status)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
