package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/reaver89/time-tracker/internal/services"
)

// ListIssuesTool lists Jira issues
type ListIssuesTool struct {
	deps *Deps
}

// NewListIssuesTool creates the list_issues tool
func NewListIssuesTool(deps *Deps) *ListIssuesTool {
	return &ListIssuesTool{deps: deps}
}

// Definition returns the MCP tool definition
func (t *ListIssuesTool) Definition() mcp.Tool {
	return mcp.NewTool("list_issues",
		mcp.WithDescription("List Jira issues: open issues assigned to you, issues you recently worked on, or open issues of a project."),
		mcp.WithString("filter",
			mcp.Description("open: your unresolved issues; recent: yours updated in the last days; project: unresolved issues of project_key"),
			mcp.Enum(services.IssueFilters...),
			mcp.DefaultString(services.FilterOpen),
		),
		mcp.WithString("project_key",
			mcp.Description("Project key, required for filter=project"),
		),
		mcp.WithNumber("days",
			mcp.Description("Look-back window in days for filter=recent"),
			mcp.DefaultNumber(7),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of issues"),
			mcp.DefaultNumber(50),
		),
	)
}

// Handle handles a list_issues call
func (t *ListIssuesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := services.IssueQuery{
		Filter:     req.GetString("filter", services.FilterOpen),
		ProjectKey: req.GetString("project_key", ""),
		Days:       req.GetInt("days", 7),
		MaxResults: req.GetInt("max_results", 50),
	}

	issues, err := t.deps.Issues.List(ctx, q)
	if err != nil {
		return errorResult(err), nil
	}

	var title string
	switch q.Filter {
	case services.FilterRecent:
		title = fmt.Sprintf("Issues updated in the last %d days", q.Days)
	case services.FilterProject:
		title = "Open issues in " + strings.ToUpper(strings.TrimSpace(q.ProjectKey))
	default:
		title = "Your open issues"
	}
	return mcp.NewToolResultText(services.RenderIssues(issues, title)), nil
}
