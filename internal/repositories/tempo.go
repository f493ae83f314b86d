package repositories

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/reaver89/time-tracker/internal/config"
	"github.com/reaver89/time-tracker/internal/helpers"
	"github.com/reaver89/time-tracker/internal/models"
	"github.com/rs/zerolog"
)

const tempoService = "Tempo"

// TempoRepository handles Tempo API interactions
type TempoRepository struct {
	config *config.TempoConfig
	api    *apiClient
	log    zerolog.Logger
}

// NewTempoRepository creates a new Tempo repository authenticated with a bearer token
func NewTempoRepository(tempoConfig *config.TempoConfig, log zerolog.Logger) *TempoRepository {
	token := tempoConfig.APIToken
	return &TempoRepository{
		config: tempoConfig,
		api: newAPIClient(tempoService, tempoConfig.BaseURL, tempoConfig.Timeout, func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+token)
		}, log),
		log: log,
	}
}

// listAll follows metadata.next from the first page until the server
// reports no further page and returns every result in order.
func listAll[T any](ctx context.Context, api *apiClient, firstURL string) ([]T, error) {
	var all []T
	seen := make(map[string]bool)

	for next := firstURL; next != ""; {
		if seen[next] {
			break
		}
		seen[next] = true

		var page models.TempoPage[T]
		if err := api.do(ctx, http.MethodGet, next, nil, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Results...)
		next = page.Metadata.Next
	}

	return all, nil
}

func (r *TempoRepository) pageSize() string {
	if r.config.PageSize <= 0 {
		return "1000"
	}
	return strconv.Itoa(r.config.PageSize)
}

func rangeQuery(from, to time.Time) url.Values {
	return url.Values{
		"from": {helpers.FormatDate(from)},
		"to":   {helpers.FormatDate(to)},
	}
}

// CreateWorklog creates a worklog and returns it as confirmed by Tempo
func (r *TempoRepository) CreateWorklog(ctx context.Context, input models.WorklogInput) (models.Worklog, error) {
	startTime, err := helpers.NormalizeStartTime(input.StartTime)
	if err != nil {
		return models.Worklog{}, err
	}

	body := models.TempoWorklogRequest{
		IssueID:          input.IssueID,
		TimeSpentSeconds: input.Seconds,
		StartDate:        input.StartDate,
		StartTime:        startTime,
		AuthorAccountID:  input.AuthorID,
		Description:      input.Description,
	}
	for _, attr := range input.Attributes {
		body.Attributes = append(body.Attributes, models.TempoAttribute{Key: attr.Key, Value: attr.Value})
	}

	var created models.TempoWorklog
	if err := r.api.do(ctx, http.MethodPost, r.api.url("/worklogs", nil), body, &created); err != nil {
		return models.Worklog{}, fmt.Errorf("failed to create worklog: %w", err)
	}

	worklog := created.ToWorklog()
	if worklog.IssueID == 0 {
		worklog.IssueID = input.IssueID
	}
	if worklog.AuthorID == "" {
		worklog.AuthorID = input.AuthorID
	}
	return worklog, nil
}

// ListWorklogs lists every worklog in the range, optionally for one author only
func (r *TempoRepository) ListWorklogs(ctx context.Context, from, to time.Time, authorID string) ([]models.Worklog, error) {
	path := "/worklogs"
	if authorID != "" {
		path = "/worklogs/user/" + url.PathEscape(authorID)
	}
	q := rangeQuery(from, to)
	q.Set("limit", r.pageSize())

	raw, err := listAll[models.TempoWorklog](ctx, r.api, r.api.url(path, q))
	if err != nil {
		return nil, fmt.Errorf("failed to list worklogs: %w", err)
	}

	worklogs := make([]models.Worklog, 0, len(raw))
	for _, w := range raw {
		wl := w.ToWorklog()
		if wl.AuthorID == "" {
			wl.AuthorID = authorID
		}
		worklogs = append(worklogs, wl)
	}
	return worklogs, nil
}

// ListTeams lists every team visible to the token
func (r *TempoRepository) ListTeams(ctx context.Context) ([]models.Team, error) {
	raw, err := listAll[models.TempoTeam](ctx, r.api, r.api.url("/teams", url.Values{"limit": {"50"}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	teams := make([]models.Team, 0, len(raw))
	for _, t := range raw {
		teams = append(teams, t.ToTeam())
	}
	return teams, nil
}

// ListTeamMembers lists the members of a team
func (r *TempoRepository) ListTeamMembers(ctx context.Context, teamID int64) ([]models.TeamMember, error) {
	path := "/teams/" + strconv.FormatInt(teamID, 10) + "/members"
	raw, err := listAll[models.TempoTeamMember](ctx, r.api, r.api.url(path, url.Values{"limit": {"50"}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list members of team %d: %w", teamID, err)
	}

	members := make([]models.TeamMember, 0, len(raw))
	for _, m := range raw {
		member := m.ToTeamMember(teamID)
		if member.AccountID == "" {
			continue
		}
		members = append(members, member)
	}
	return members, nil
}

// DefaultBillingAccount returns the key of the billing account linked to the
// project. The link flagged default wins, otherwise the first link is used.
// Any failure is reported as "no default".
func (r *TempoRepository) DefaultBillingAccount(ctx context.Context, projectID int64) (string, bool) {
	key, err := r.defaultBillingAccount(ctx, projectID)
	if err != nil {
		r.log.Debug().Err(err).Int64("project_id", projectID).Msg("billing account lookup failed")
		return "", false
	}
	return key, key != ""
}

func (r *TempoRepository) defaultBillingAccount(ctx context.Context, projectID int64) (string, error) {
	path := "/account-links/project/" + strconv.FormatInt(projectID, 10)
	links, err := listAll[models.TempoAccountLink](ctx, r.api, r.api.url(path, nil))
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return "", nil
		}
		return "", err
	}
	if len(links) == 0 {
		return "", nil
	}

	chosen := links[0]
	for _, link := range links {
		if link.Default {
			chosen = link
			break
		}
	}
	if chosen.Account == nil {
		return "", nil
	}
	if chosen.Account.Key != "" {
		return chosen.Account.Key, nil
	}

	accountID := chosen.Account.ID
	if accountID == 0 {
		id, ok := models.AccountIDFromSelf(chosen.Account.Self)
		if !ok {
			return "", fmt.Errorf("account link %d has no usable account reference", chosen.ID)
		}
		accountID = id
	}

	var account models.TempoAccount
	u := r.api.url("/accounts/"+strconv.FormatInt(accountID, 10), nil)
	if err := r.api.do(ctx, http.MethodGet, u, nil, &account); err != nil {
		return "", err
	}
	return account.Key, nil
}

// GetUserSchedule lists the required time per day for a user
func (r *TempoRepository) GetUserSchedule(ctx context.Context, accountID string, from, to time.Time) ([]models.ScheduleDay, error) {
	path := "/user-schedule/" + url.PathEscape(accountID)
	raw, err := listAll[models.TempoScheduleDay](ctx, r.api, r.api.url(path, rangeQuery(from, to)))
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule for %s: %w", accountID, err)
	}

	days := make([]models.ScheduleDay, 0, len(raw))
	for _, d := range raw {
		days = append(days, d.ToScheduleDay())
	}
	return days, nil
}

// ListUserPlans lists the plans assigned to a user in the range
func (r *TempoRepository) ListUserPlans(ctx context.Context, accountID string, from, to time.Time) ([]models.Plan, error) {
	path := "/plans/user/" + url.PathEscape(accountID)
	raw, err := listAll[models.TempoPlan](ctx, r.api, r.api.url(path, rangeQuery(from, to)))
	if err != nil {
		return nil, fmt.Errorf("failed to list plans for %s: %w", accountID, err)
	}
	return toPlans(raw), nil
}

// SearchPlans lists plans matching the filter
func (r *TempoRepository) SearchPlans(ctx context.Context, filter models.PlanFilter) ([]models.Plan, error) {
	q := rangeQuery(filter.From, filter.To)
	q.Set("limit", r.pageSize())
	for _, id := range filter.AssigneeIDs {
		q.Add("assigneeIds", id)
	}
	if len(filter.AssigneeIDs) > 0 {
		q.Set("assigneeTypes", "USER")
	}
	for _, t := range filter.PlanItemTypes {
		q.Add("planItemTypes", string(t))
	}

	raw, err := listAll[models.TempoPlan](ctx, r.api, r.api.url("/plans", q))
	if err != nil {
		return nil, fmt.Errorf("failed to search plans: %w", err)
	}
	return toPlans(raw), nil
}

func toPlans(raw []models.TempoPlan) []models.Plan {
	plans := make([]models.Plan, 0, len(raw))
	for _, p := range raw {
		plans = append(plans, p.ToPlan())
	}
	return plans
}
