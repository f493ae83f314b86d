package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/reaver89/time-tracker/internal/services"
)

// BulkLogTimeTool logs several worklogs in one call
type BulkLogTimeTool struct {
	deps *Deps
}

// NewBulkLogTimeTool creates the bulk_log_time tool
func NewBulkLogTimeTool(deps *Deps) *BulkLogTimeTool {
	return &BulkLogTimeTool{deps: deps}
}

// Definition returns the MCP tool definition
func (t *BulkLogTimeTool) Definition() mcp.Tool {
	return mcp.NewTool("bulk_log_time",
		mcp.WithDescription("Log several worklogs at once. Entries are processed in order and independently; a failing entry does not stop the others."),
		mcp.WithArray("entries",
			mcp.Required(),
			mcp.Description("Worklogs to create"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"issue_key":   map[string]any{"type": "string", "description": "Issue key, e.g. PROJ-123"},
					"time_spent":  map[string]any{"type": "string", "description": "Duration such as 2h or 1h30m"},
					"date":        map[string]any{"type": "string", "description": "YYYY-MM-DD, defaults to today"},
					"start_time":  map[string]any{"type": "string", "description": "HH:MM, defaults to 09:00"},
					"description": map[string]any{"type": "string"},
				},
				"required": []string{"issue_key", "time_spent"},
			}),
		),
		mcp.WithString("account_id",
			mcp.Description("Author account id; defaults to the current user"),
		),
	)
}

// Handle handles a bulk_log_time call
func (t *BulkLogTimeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, ok := objectArray(req, "entries")
	if !ok || len(entries) == 0 {
		return mcp.NewToolResultError("entries must be a non-empty array of worklogs"), nil
	}

	reqs := make([]services.LogRequest, 0, len(entries))
	for _, e := range entries {
		reqs = append(reqs, services.LogRequest{
			IssueKey:    stringField(e, "issue_key"),
			TimeSpent:   stringField(e, "time_spent"),
			Date:        stringField(e, "date"),
			StartTime:   stringField(e, "start_time"),
			Description: stringField(e, "description"),
		})
	}

	result := t.deps.worklogs().BulkLog(ctx, reqs, accountOrSelf(t.deps, req))
	text := services.RenderBulkResult(result)
	if result.Succeeded() == 0 {
		return mcp.NewToolResultError(text), nil
	}
	return mcp.NewToolResultText(text), nil
}
