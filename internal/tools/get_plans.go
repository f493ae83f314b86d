package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/reaver89/time-tracker/internal/helpers"
	"github.com/reaver89/time-tracker/internal/services"
)

// GetPlansTool lists Tempo resource plans
type GetPlansTool struct {
	deps *Deps
}

// NewGetPlansTool creates the get_plans tool
func NewGetPlansTool(deps *Deps) *GetPlansTool {
	return &GetPlansTool{deps: deps}
}

// Definition returns the MCP tool definition
func (t *GetPlansTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("List Tempo resource plans (planned time on issues and projects) for a worker or for every member of a team."),
		mcp.WithString("account_id",
			mcp.Description("Worker account id; defaults to the current user"),
		),
		mcp.WithNumber("team_id",
			mcp.Description("Tempo team id; lists the plans of every member instead"),
		),
		periodOption(helpers.PeriodWeek),
	}
	opts = append(opts, rangeOptions()...)
	return mcp.NewTool("get_plans", opts...)
}

// Handle handles a get_plans call
func (t *GetPlansTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := resolveRange(t.deps, req, helpers.PeriodWeek)
	if err != nil {
		return errorResult(err), nil
	}

	report, err := t.deps.Plans.Plans(ctx,
		strings.TrimSpace(req.GetString("account_id", "")),
		int64(req.GetInt("team_id", 0)),
		t.deps.Identity,
		r,
	)
	if err != nil {
		return errorResult(err), nil
	}

	return mcp.NewToolResultText(services.RenderPlans(report)), nil
}
