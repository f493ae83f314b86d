package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/reaver89/time-tracker/internal/models"
)

var errBoom = errors.New("boom")

type fakeJira struct {
	mu sync.Mutex

	issues      map[string]models.IssueRef
	byID        map[int64]models.IssueRef
	projects    map[int64]models.Project
	users       map[string]models.User
	failUsers   map[string]bool
	search      map[string][]models.User
	searchErr   error
	myself      models.User
	myselfErr   error
	open        []models.Issue
	lastDays    int
	lastProject string
	byIDCalls   int
}

func (f *fakeJira) GetIssueID(_ context.Context, key string) (models.IssueRef, error) {
	ref, ok := f.issues[key]
	if !ok {
		return models.IssueRef{}, &models.NotFoundError{Kind: "issue", Ref: key}
	}
	return ref, nil
}

func (f *fakeJira) MyOpenIssues(_ context.Context, _ int) ([]models.Issue, error) {
	return f.open, nil
}

func (f *fakeJira) RecentIssues(_ context.Context, days, _ int) ([]models.Issue, error) {
	f.lastDays = days
	return f.open, nil
}

func (f *fakeJira) ProjectIssues(_ context.Context, projectKey string, _ int) ([]models.Issue, error) {
	f.lastProject = projectKey
	return f.open, nil
}

func (f *fakeJira) IssuesByID(_ context.Context, ids []int64) (map[int64]models.IssueRef, error) {
	f.mu.Lock()
	f.byIDCalls++
	f.mu.Unlock()

	out := make(map[int64]models.IssueRef)
	for _, id := range ids {
		if ref, ok := f.byID[id]; ok {
			out[id] = ref
		}
	}
	return out, nil
}

func (f *fakeJira) GetProject(_ context.Context, id int64) (models.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return models.Project{}, &models.NotFoundError{Kind: "project"}
	}
	return p, nil
}

func (f *fakeJira) GetUser(_ context.Context, accountID string) (models.User, error) {
	if f.failUsers[accountID] {
		return models.User{}, errBoom
	}
	u, ok := f.users[accountID]
	if !ok {
		return models.User{}, &models.NotFoundError{Kind: "user", Ref: accountID}
	}
	return u, nil
}

func (f *fakeJira) GetMyself(_ context.Context) (models.User, error) {
	return f.myself, f.myselfErr
}

func (f *fakeJira) SearchUsers(_ context.Context, fragment string, _ int) ([]models.User, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.search[fragment], nil
}

type fakeTempo struct {
	mu sync.Mutex

	worklogs      map[string][]models.Worklog
	failWorklogs  map[string]bool
	schedules     map[string][]models.ScheduleDay
	failSchedules map[string]bool
	teams         []models.Team
	members       map[int64][]models.TeamMember
	billing       map[int64]string
	billingCalls  map[int64]int
	plans         map[string][]models.Plan
	searched      []models.PlanFilter
	created       []models.WorklogInput
	nextID        int64
}

func (f *fakeTempo) CreateWorklog(_ context.Context, input models.WorklogInput) (models.Worklog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.created = append(f.created, input)
	return models.Worklog{
		ID:          f.nextID,
		IssueID:     input.IssueID,
		AuthorID:    input.AuthorID,
		Date:        input.StartDate,
		StartTime:   input.StartTime,
		Seconds:     input.Seconds,
		Description: input.Description,
	}, nil
}

func (f *fakeTempo) ListWorklogs(_ context.Context, _, _ time.Time, authorID string) ([]models.Worklog, error) {
	if f.failWorklogs[authorID] {
		return nil, errBoom
	}
	return f.worklogs[authorID], nil
}

func (f *fakeTempo) ListTeams(_ context.Context) ([]models.Team, error) {
	return f.teams, nil
}

func (f *fakeTempo) ListTeamMembers(_ context.Context, teamID int64) ([]models.TeamMember, error) {
	return f.members[teamID], nil
}

func (f *fakeTempo) DefaultBillingAccount(_ context.Context, projectID int64) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.billingCalls == nil {
		f.billingCalls = make(map[int64]int)
	}
	f.billingCalls[projectID]++
	key, ok := f.billing[projectID]
	return key, ok
}

func (f *fakeTempo) GetUserSchedule(_ context.Context, accountID string, _, _ time.Time) ([]models.ScheduleDay, error) {
	if f.failSchedules[accountID] {
		return nil, errBoom
	}
	return f.schedules[accountID], nil
}

func (f *fakeTempo) ListUserPlans(_ context.Context, accountID string, _, _ time.Time) ([]models.Plan, error) {
	return f.plans[accountID], nil
}

func (f *fakeTempo) SearchPlans(_ context.Context, filter models.PlanFilter) ([]models.Plan, error) {
	f.mu.Lock()
	f.searched = append(f.searched, filter)
	f.mu.Unlock()

	var out []models.Plan
	for _, id := range filter.AssigneeIDs {
		out = append(out, f.plans[id]...)
	}
	return out, nil
}
