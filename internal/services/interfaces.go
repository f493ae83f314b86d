package services

import (
	"context"
	"time"

	"github.com/reaver89/time-tracker/internal/models"
)

// IssueTracker is the subset of the JIRA repository the services depend on
type IssueTracker interface {
	GetIssueID(ctx context.Context, key string) (models.IssueRef, error)
	MyOpenIssues(ctx context.Context, max int) ([]models.Issue, error)
	RecentIssues(ctx context.Context, days, max int) ([]models.Issue, error)
	ProjectIssues(ctx context.Context, projectKey string, max int) ([]models.Issue, error)
	IssuesByID(ctx context.Context, ids []int64) (map[int64]models.IssueRef, error)
	GetProject(ctx context.Context, id int64) (models.Project, error)
	GetUser(ctx context.Context, accountID string) (models.User, error)
	GetMyself(ctx context.Context) (models.User, error)
	SearchUsers(ctx context.Context, fragment string, max int) ([]models.User, error)
}

// TimeTracker is the subset of the Tempo repository the services depend on
type TimeTracker interface {
	CreateWorklog(ctx context.Context, input models.WorklogInput) (models.Worklog, error)
	ListWorklogs(ctx context.Context, from, to time.Time, authorID string) ([]models.Worklog, error)
	ListTeams(ctx context.Context) ([]models.Team, error)
	ListTeamMembers(ctx context.Context, teamID int64) ([]models.TeamMember, error)
	DefaultBillingAccount(ctx context.Context, projectID int64) (string, bool)
	GetUserSchedule(ctx context.Context, accountID string, from, to time.Time) ([]models.ScheduleDay, error)
	ListUserPlans(ctx context.Context, accountID string, from, to time.Time) ([]models.Plan, error)
	SearchPlans(ctx context.Context, filter models.PlanFilter) ([]models.Plan, error)
}
