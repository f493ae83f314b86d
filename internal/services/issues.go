package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/reaver89/time-tracker/internal/helpers"
	"github.com/reaver89/time-tracker/internal/models"
)

// Issue list filters
const (
	FilterOpen    = "open"
	FilterRecent  = "recent"
	FilterProject = "project"
)

// IssueFilters lists the accepted issue list filters
var IssueFilters = []string{FilterOpen, FilterRecent, FilterProject}

// IssueQuery selects which issues to list
type IssueQuery struct {
	Filter     string
	ProjectKey string
	Days       int
	MaxResults int
}

// IssueService lists issues
type IssueService struct {
	jira IssueTracker
}

// NewIssueService creates a new issue service
func NewIssueService(jira IssueTracker) *IssueService {
	return &IssueService{jira: jira}
}

// List runs the query. Only fixed JQL templates are ever used.
func (s *IssueService) List(ctx context.Context, q IssueQuery) ([]models.Issue, error) {
	switch q.Filter {
	case "", FilterOpen:
		return s.jira.MyOpenIssues(ctx, q.MaxResults)
	case FilterRecent:
		return s.jira.RecentIssues(ctx, q.Days, q.MaxResults)
	case FilterProject:
		key := strings.ToUpper(strings.TrimSpace(q.ProjectKey))
		if key == "" {
			return nil, &models.ValidationError{Field: "project_key", Message: `filter "project" requires project_key`}
		}
		return s.jira.ProjectIssues(ctx, key, q.MaxResults)
	default:
		return nil, &models.ValidationError{
			Field:   "filter",
			Message: fmt.Sprintf("unknown filter %q, must be one of %s", q.Filter, strings.Join(IssueFilters, ", ")),
		}
	}
}

// RenderIssues renders issues as a Markdown table
func RenderIssues(issues []models.Issue, title string) string {
	if len(issues) == 0 {
		return "No issues found."
	}

	table := helpers.NewMarkdownTable("Key", "Summary", "Status", "Type", "Assignee")
	for _, issue := range issues {
		assignee := issue.Assignee
		if assignee == "" {
			assignee = "Unassigned"
		}
		table.AddRow(issue.Key, helpers.Truncate(issue.Summary, DefaultSummaryWidth), issue.Status, issue.Type, assignee)
	}

	return fmt.Sprintf("## %s (%d)\n\n%s", title, len(issues), table.String())
}
