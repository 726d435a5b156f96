package api

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer exposes the BI agent operations as MCP tools over a stdio
// transport, so coding agents and other MCP clients can query board data
// directly.
func NewMCPServer(a ChatAgent) *server.MCPServer {
	s := server.NewMCPServer(
		"boardbi",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("boardbi — conversational BI over Monday.com work orders and deals."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("ask_boards",
			mcp.WithDescription("Ask a natural-language business question over the work orders and deals boards."),
			mcp.WithString("question", mcp.Description("The business question to answer"), mcp.Required()),
		),
		mcpAskBoards(a),
	)

	s.AddTool(
		mcp.NewTool("leadership_report",
			mcp.WithDescription("Generate the markdown leadership update report from current board data."),
		),
		mcpLeadershipReport(a),
	)

	s.AddTool(
		mcp.NewTool("refresh_data",
			mcp.WithDescription("Drop cached board data so the next query fetches fresh data."),
		),
		mcpRefreshData(a),
	)

	s.AddTool(
		mcp.NewTool("board_health",
			mcp.WithDescription("Check Monday.com connectivity and board configuration."),
		),
		mcpBoardHealth(a),
	)

	return s
}

func mcpAskBoards(a ChatAgent) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := req.RequireString("question")
		if err != nil {
			return mcpError("question is required"), nil
		}
		return mcpText(a.Chat(ctx, question)), nil
	}
}

func mcpLeadershipReport(a ChatAgent) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcpText(a.Report(ctx)), nil
	}
}

func mcpRefreshData(a ChatAgent) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcpText(a.Refresh()), nil
	}
}

func mcpBoardHealth(a ChatAgent) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		b, err := json.Marshal(a.Health(ctx))
		if err != nil {
			return mcpError("failed to marshal health status"), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
