// Package tools defines the MCP tools and their handlers.
package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/reaver89/time-tracker/internal/helpers"
	"github.com/reaver89/time-tracker/internal/models"
	"github.com/reaver89/time-tracker/internal/services"
	"github.com/rs/zerolog"
)

// Deps holds everything the tool handlers need
type Deps struct {
	Worklogs *services.WorklogService
	Issues   *services.IssueService
	Reports  *services.ReportService
	Plans    *services.PlanService

	// Identity is the caller's account id, empty when it could not be resolved
	Identity string
	Log      zerolog.Logger
	Now      func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// worklogs returns the worklog service bound to the handlers' clock
func (d *Deps) worklogs() *services.WorklogService {
	if d.Now == nil {
		return d.Worklogs
	}
	return d.Worklogs.WithClock(d.Now)
}

// Tool is a single MCP tool
type Tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// McpServer is the part of the MCP server tools are registered on
type McpServer interface {
	AddTool(tool mcp.Tool, handler server.ToolHandlerFunc)
}

// All returns every tool in registration order
func All(deps *Deps) []Tool {
	return []Tool{
		NewLogTimeTool(deps),
		NewBulkLogTimeTool(deps),
		NewListIssuesTool(deps),
		NewTimeSummaryTool(deps),
		NewTeamWorklogsTool(deps),
		NewGetPlansTool(deps),
		NewTeamReportTool(deps),
	}
}

// Register adds every tool to the server, each wrapped with invocation logging
func Register(s McpServer, deps *Deps) {
	for _, t := range All(deps) {
		def := t.Definition()
		s.AddTool(def, Instrument(def.Name, deps.Log, t.Handle))
	}
}

// Instrument logs the start and the outcome of every invocation of a handler
func Instrument(name string, log zerolog.Logger, handler server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		requestID := uuid.NewString()
		l := log.With().Str("tool", name).Str("request_id", requestID).Logger()
		l.Debug().Interface("arguments", req.GetArguments()).Msg("tool called")

		start := time.Now()
		res, err := handler(l.WithContext(ctx), req)
		duration := time.Since(start)

		event := l.Info()
		if err != nil {
			event = l.Error().Err(err)
		}
		event.
			Int64("duration_ms", duration.Milliseconds()).
			Bool("is_error", err != nil || (res != nil && res.IsError)).
			Msg("tool finished")

		return res, err
	}
}

// errorResult renders err as a flagged tool result
func errorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(models.UserMessage(err))
}

func resolveRange(deps *Deps, req mcp.CallToolRequest, defaultPeriod string) (models.DateRange, error) {
	return helpers.ResolvePeriod(
		req.GetString("period", defaultPeriod),
		req.GetString("from", ""),
		req.GetString("to", ""),
		deps.now(),
	)
}

// accountOrSelf returns the account_id argument or the caller's identity
func accountOrSelf(deps *Deps, req mcp.CallToolRequest) string {
	if id := strings.TrimSpace(req.GetString("account_id", "")); id != "" {
		return id
	}
	return deps.Identity
}

// stringArray reads an array argument of strings. A single string is
// accepted as a comma separated list.
func stringArray(req mcp.CallToolRequest, key string) []string {
	v, ok := req.GetArguments()[key]
	if !ok || v == nil {
		return nil
	}

	var out []string
	switch items := v.(type) {
	case []any:
		for _, item := range items {
			if s, ok := item.(string); ok {
				out = append(out, s)
			} else if item != nil {
				out = append(out, fmt.Sprint(item))
			}
		}
	case []string:
		out = append(out, items...)
	case string:
		for _, s := range strings.Split(items, ",") {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

// objectArray reads an array argument of objects
func objectArray(req mcp.CallToolRequest, key string) ([]map[string]any, bool) {
	v, ok := req.GetArguments()[key]
	if !ok || v == nil {
		return nil, false
	}
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}

	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		m, _ := item.(map[string]any)
		out = append(out, m)
	}
	return out, true
}

func stringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func periodOption(defaultPeriod string) mcp.ToolOption {
	return mcp.WithString("period",
		mcp.Description("Reporting period; custom requires from and to"),
		mcp.Enum(helpers.Periods...),
		mcp.DefaultString(defaultPeriod),
	)
}

func rangeOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("from", mcp.Description("Start date (YYYY-MM-DD), required for period=custom")),
		mcp.WithString("to", mcp.Description("End date (YYYY-MM-DD), required for period=custom")),
	}
}
