package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/reaver89/time-tracker/internal/helpers"
	"github.com/reaver89/time-tracker/internal/models"
	"github.com/reaver89/time-tracker/internal/services"
)

// TimeSummaryTool summarizes one worker's time over a period
type TimeSummaryTool struct {
	deps *Deps
}

// NewTimeSummaryTool creates the time_summary tool
func NewTimeSummaryTool(deps *Deps) *TimeSummaryTool {
	return &TimeSummaryTool{deps: deps}
}

// Definition returns the MCP tool definition
func (t *TimeSummaryTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Summarize logged time against required time for one worker: totals, a daily grid and breakdowns per issue and description."),
		periodOption(helpers.PeriodWeek),
	}
	opts = append(opts, rangeOptions()...)
	opts = append(opts,
		mcp.WithString("account_id",
			mcp.Description("Worker account id; defaults to the current user"),
		),
		mcp.WithBoolean("include_details",
			mcp.Description("Include breakdowns and the individual worklogs"),
			mcp.DefaultBool(true),
		),
	)
	return mcp.NewTool("time_summary", opts...)
}

// Handle handles a time_summary call
func (t *TimeSummaryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := resolveRange(t.deps, req, helpers.PeriodWeek)
	if err != nil {
		return errorResult(err), nil
	}

	accountID := accountOrSelf(t.deps, req)
	if accountID == "" {
		return errorResult(&models.ValidationError{
			Field:   "account_id",
			Message: "the current user is unknown; pass account_id explicitly",
		}), nil
	}

	details := req.GetBool("include_details", true)
	report := t.deps.Reports.Timesheet(ctx, []string{accountID}, r, services.GroupByWorker)

	return mcp.NewToolResultText(services.RenderReport(report, services.RenderOptions{
		Title:            "Time summary",
		IncludeDetails:   details,
		ShowEntries:      details,
		DescriptionWidth: 60,
	})), nil
}
