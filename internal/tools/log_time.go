package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/reaver89/time-tracker/internal/services"
)

// LogTimeTool logs a single worklog
type LogTimeTool struct {
	deps *Deps
}

// NewLogTimeTool creates the log_time tool
func NewLogTimeTool(deps *Deps) *LogTimeTool {
	return &LogTimeTool{deps: deps}
}

// Definition returns the MCP tool definition
func (t *LogTimeTool) Definition() mcp.Tool {
	return mcp.NewTool("log_time",
		mcp.WithDescription("Log time spent on a Jira issue to Tempo. The project's default billing account is attached when one is configured."),
		mcp.WithString("issue_key",
			mcp.Required(),
			mcp.Description("Issue key, e.g. PROJ-123 (case-insensitive)"),
		),
		mcp.WithString("time_spent",
			mcp.Required(),
			mcp.Description("Duration such as 2h, 30m, 1h30m or 1.5h"),
		),
		mcp.WithString("date",
			mcp.Description("Date of the work (YYYY-MM-DD); defaults to today"),
		),
		mcp.WithString("start_time",
			mcp.Description("Start time (HH:MM)"),
			mcp.DefaultString(services.DefaultStartTime),
		),
		mcp.WithString("description",
			mcp.Description("What was done"),
		),
		mcp.WithString("account_id",
			mcp.Description("Author account id; defaults to the current user"),
		),
	)
}

// Handle handles a log_time call
func (t *LogTimeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	issueKey, err := req.RequireString("issue_key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	timeSpent, err := req.RequireString("time_spent")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	logged, err := t.deps.worklogs().LogTime(ctx, services.LogRequest{
		IssueKey:    issueKey,
		TimeSpent:   timeSpent,
		Date:        req.GetString("date", ""),
		StartTime:   req.GetString("start_time", services.DefaultStartTime),
		Description: req.GetString("description", ""),
	}, accountOrSelf(t.deps, req))
	if err != nil {
		return errorResult(err), nil
	}

	return mcp.NewToolResultText(services.RenderLogged(logged)), nil
}
