package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/reaver89/time-tracker/internal/helpers"
	"github.com/reaver89/time-tracker/internal/services"
)

// TeamReportTool builds a timesheet report for several workers
type TeamReportTool struct {
	deps *Deps
}

// NewTeamReportTool creates the team_report tool
func NewTeamReportTool(deps *Deps) *TeamReportTool {
	return &TeamReportTool{deps: deps}
}

// Definition returns the MCP tool definition
func (t *TeamReportTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Timesheet report for several workers, grouped by worker (totals, daily grid, breakdowns) or by issue."),
		mcp.WithArray("account_ids",
			mcp.Description("Worker account ids; take precedence over worker_names"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithArray("worker_names",
			mcp.Description("Worker display names, resolved through a user search"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		periodOption(helpers.PeriodMonth),
	}
	opts = append(opts, rangeOptions()...)
	opts = append(opts,
		mcp.WithString("group_by",
			mcp.Description("worker: one section per worker; issue: one row per issue with worker sub-rows"),
			mcp.Enum(services.GroupByModes...),
			mcp.DefaultString(services.GroupByWorker),
		),
		mcp.WithBoolean("include_details",
			mcp.Description("Include per-issue and per-description breakdowns"),
			mcp.DefaultBool(true),
		),
	)
	return mcp.NewTool("team_report", opts...)
}

// Handle handles a team_report call
func (t *TeamReportTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := resolveRange(t.deps, req, helpers.PeriodMonth)
	if err != nil {
		return errorResult(err), nil
	}

	groupBy := req.GetString("group_by", services.GroupByWorker)
	report, err := t.deps.Reports.TeamReport(ctx,
		stringArray(req, "account_ids"),
		stringArray(req, "worker_names"),
		t.deps.Identity,
		r,
		groupBy,
	)
	if err != nil {
		return errorResult(err), nil
	}

	return mcp.NewToolResultText(services.RenderReport(report, services.RenderOptions{
		Title:            "Team report",
		IncludeDetails:   req.GetBool("include_details", true),
		SummaryWidth:     80,
		DescriptionWidth: 80,
	})), nil
}
