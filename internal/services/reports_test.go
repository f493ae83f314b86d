package services

import (
	"context"
	"testing"

	"github.com/reaver89/time-tracker/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamWorklogs_TeamsLedBySelf(t *testing.T) {
	jira := &fakeJira{
		users: map[string]models.User{"acc-1": {DisplayName: "Ada"}, "acc-2": {DisplayName: "Grace"}},
		byID:  map[int64]models.IssueRef{100: {Key: "PROJ-1", ID: 100, Summary: "Login"}},
	}
	tempo := &fakeTempo{
		teams: []models.Team{
			{ID: 1, Name: "Core", LeadID: "me"},
			{ID: 2, Name: "Other", LeadID: "someone"},
		},
		members: map[int64][]models.TeamMember{
			1: {{TeamID: 1, AccountID: "acc-1"}, {TeamID: 1, AccountID: "acc-2"}},
		},
		worklogs: map[string][]models.Worklog{
			"acc-1": {worklog(1, 100, "acc-1", "2024-03-04", 3600, 0, "dev")},
			"acc-2": {worklog(2, 100, "acc-2", "2024-03-05", 1800, 0, "qa")},
		},
	}

	svc := NewReportService(jira, tempo, zerolog.Nop())
	sections, err := svc.TeamWorklogs(context.Background(), 0, "me", week())
	require.NoError(t, err)
	require.Len(t, sections, 1)

	section := sections[0]
	assert.Equal(t, "Core", section.Team.Name)
	require.Len(t, section.Report.Workers, 2)
	assert.Equal(t, 5400, section.Report.Total.Logged)

	out := RenderTeamWorklogs(sections, week(), RenderOptions{IncludeDetails: true, DescriptionWidth: 60})
	assert.Contains(t, out, "## Core")
	assert.Contains(t, out, "| Ada | 1h |")
	assert.Contains(t, out, "| **Total** | **1h 30m** |")
	assert.Contains(t, out, "| 2024-03-05 | PROJ-1 | Login | 30m | qa |")
	assert.NotContains(t, out, "Other")
}

func TestTeamWorklogs_UnknownTeam(t *testing.T) {
	svc := NewReportService(&fakeJira{}, &fakeTempo{teams: []models.Team{{ID: 1}}}, zerolog.Nop())

	_, err := svc.TeamWorklogs(context.Background(), 42, "me", week())
	var notFound *models.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestTeamWorklogs_NoTeamsLed(t *testing.T) {
	svc := NewReportService(&fakeJira{}, &fakeTempo{}, zerolog.Nop())

	sections, err := svc.TeamWorklogs(context.Background(), 0, "me", week())
	require.NoError(t, err)
	assert.Contains(t, RenderTeamWorklogs(sections, week(), RenderOptions{}), "You do not lead any team")
}

func TestTeamReport_InvalidGroupBy(t *testing.T) {
	svc := NewReportService(&fakeJira{}, &fakeTempo{}, zerolog.Nop())

	_, err := svc.TeamReport(context.Background(), []string{"acc-1"}, nil, "", week(), "project")
	var validation *models.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "group_by", validation.Field)
}

func TestIssueService_List(t *testing.T) {
	jira := &fakeJira{open: []models.Issue{{Key: "PROJ-1", Summary: "Login", Status: "To Do", Type: "Task"}}}
	svc := NewIssueService(jira)
	ctx := context.Background()

	issues, err := svc.List(ctx, IssueQuery{Filter: FilterRecent, Days: 3})
	require.NoError(t, err)
	assert.Len(t, issues, 1)
	assert.Equal(t, 3, jira.lastDays)

	_, err = svc.List(ctx, IssueQuery{Filter: FilterProject, ProjectKey: " proj "})
	require.NoError(t, err)
	assert.Equal(t, "PROJ", jira.lastProject)

	_, err = svc.List(ctx, IssueQuery{Filter: FilterProject})
	var validation *models.ValidationError
	assert.ErrorAs(t, err, &validation)

	out := RenderIssues(issues, "Open issues")
	assert.Contains(t, out, "| PROJ-1 | Login | To Do | Task | Unassigned |")
	assert.Equal(t, "No issues found.", RenderIssues(nil, "Open issues"))
}
