package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/reaver89/time-tracker/internal/helpers"
	"github.com/reaver89/time-tracker/internal/services"
)

// TeamWorklogsTool lists the worklogs of the members of the teams you lead
type TeamWorklogsTool struct {
	deps *Deps
}

// NewTeamWorklogsTool creates the team_worklogs tool
func NewTeamWorklogsTool(deps *Deps) *TeamWorklogsTool {
	return &TeamWorklogsTool{deps: deps}
}

// Definition returns the MCP tool definition
func (t *TeamWorklogsTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Show the worklogs of your subordinates: every member of the Tempo teams you lead, or of one team."),
		mcp.WithNumber("team_id",
			mcp.Description("Tempo team id; defaults to every team led by the current user"),
		),
		periodOption(helpers.PeriodWeek),
	}
	opts = append(opts, rangeOptions()...)
	opts = append(opts,
		mcp.WithBoolean("include_details",
			mcp.Description("Include the individual worklogs per member"),
			mcp.DefaultBool(true),
		),
	)
	return mcp.NewTool("team_worklogs", opts...)
}

// Handle handles a team_worklogs call
func (t *TeamWorklogsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := resolveRange(t.deps, req, helpers.PeriodWeek)
	if err != nil {
		return errorResult(err), nil
	}

	teamID := int64(req.GetInt("team_id", 0))
	sections, err := t.deps.Reports.TeamWorklogs(ctx, teamID, t.deps.Identity, r)
	if err != nil {
		return errorResult(err), nil
	}

	return mcp.NewToolResultText(services.RenderTeamWorklogs(sections, r, services.RenderOptions{
		IncludeDetails:   req.GetBool("include_details", true),
		DescriptionWidth: 60,
	})), nil
}
