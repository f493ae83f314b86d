package repositories

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/reaver89/time-tracker/internal/config"
	"github.com/reaver89/time-tracker/internal/models"
	"github.com/rs/zerolog"
)

const (
	jiraService     = "JIRA"
	jiraSearchPage  = 100
	jiraIDChunkSize = 50
)

var (
	issueFields   = []string{"summary", "status", "issuetype", "assignee", "project"}
	projectKeyRe  = regexp.MustCompile(`^[A-Z][A-Z0-9_]+$`)
	issueKeyHint  = "check the key or pass the full issue key, e.g. PROJ-123"
	accountIDHint = "pass the Atlassian account id explicitly"
)

// JiraRepository handles JIRA API interactions
type JiraRepository struct {
	config *config.JiraConfig
	api    *apiClient
}

// NewJiraRepository creates a new JIRA repository authenticated with the
// account email and API token.
func NewJiraRepository(jiraConfig *config.JiraConfig, log zerolog.Logger) *JiraRepository {
	email, token := jiraConfig.Email, jiraConfig.APIToken
	return &JiraRepository{
		config: jiraConfig,
		api: newAPIClient(jiraService, jiraConfig.BaseURL, jiraConfig.Timeout, func(req *http.Request) {
			req.SetBasicAuth(email, token)
		}, log),
	}
}

// GetIssueID resolves an issue key into its numeric id and project id.
// The key must already be normalized by the caller.
func (r *JiraRepository) GetIssueID(ctx context.Context, key string) (models.IssueRef, error) {
	u := r.api.url("/rest/api/3/issue/"+url.PathEscape(key), url.Values{"fields": {"project,summary"}})

	var issue models.JiraIssue
	if err := r.api.do(ctx, http.MethodGet, u, nil, &issue); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return models.IssueRef{}, &models.NotFoundError{Kind: "issue", Ref: key, Hint: issueKeyHint}
		}
		return models.IssueRef{}, fmt.Errorf("failed to get issue %s: %w", key, err)
	}

	ref := issue.ToIssueRef()
	if ref.ID == 0 {
		return models.IssueRef{}, &models.NotFoundError{Kind: "issue", Ref: key, Hint: issueKeyHint}
	}
	if ref.Key == "" {
		ref.Key = key
	}
	return ref, nil
}

// SearchIssues runs a JQL query and collects up to max issues across pages
func (r *JiraRepository) SearchIssues(ctx context.Context, jql string, max int) ([]models.Issue, error) {
	if max <= 0 {
		max = 50
	}

	issues := make([]models.Issue, 0, max)
	token := ""
	for len(issues) < max {
		pageSize := max - len(issues)
		if pageSize > jiraSearchPage {
			pageSize = jiraSearchPage
		}

		var page models.JiraSearchResponse
		body := models.JiraSearchRequest{
			JQL:           jql,
			MaxResults:    pageSize,
			Fields:        issueFields,
			NextPageToken: token,
		}
		if err := r.api.do(ctx, http.MethodPost, r.api.url("/rest/api/3/search/jql", nil), body, &page); err != nil {
			return nil, fmt.Errorf("failed to search issues: %w", err)
		}

		for _, issue := range page.Issues {
			if len(issues) == max {
				break
			}
			issues = append(issues, issue.ToIssue())
		}

		if page.IsLast || page.NextPageToken == "" || len(page.Issues) == 0 {
			break
		}
		token = page.NextPageToken
	}

	return issues, nil
}

// MyOpenIssues lists unresolved issues assigned to the authenticated user
func (r *JiraRepository) MyOpenIssues(ctx context.Context, max int) ([]models.Issue, error) {
	return r.SearchIssues(ctx, "assignee = currentUser() AND statusCategory != Done ORDER BY updated DESC", max)
}

// RecentIssues lists issues assigned to the authenticated user and updated in the last days
func (r *JiraRepository) RecentIssues(ctx context.Context, days, max int) ([]models.Issue, error) {
	if days <= 0 {
		days = 7
	}
	jql := fmt.Sprintf("assignee = currentUser() AND updated >= -%dd ORDER BY updated DESC", days)
	return r.SearchIssues(ctx, jql, max)
}

// ProjectIssues lists unresolved issues of one project
func (r *JiraRepository) ProjectIssues(ctx context.Context, projectKey string, max int) ([]models.Issue, error) {
	if !projectKeyRe.MatchString(projectKey) {
		return nil, &models.ValidationError{Field: "project_key", Message: fmt.Sprintf("%q is not a valid project key", projectKey)}
	}
	jql := fmt.Sprintf(`project = "%s" AND statusCategory != Done ORDER BY updated DESC`, projectKey)
	return r.SearchIssues(ctx, jql, max)
}

// IssuesByID looks up issues by numeric id. Ids that no longer exist are
// simply absent from the result.
func (r *JiraRepository) IssuesByID(ctx context.Context, ids []int64) (map[int64]models.IssueRef, error) {
	result := make(map[int64]models.IssueRef, len(ids))
	for start := 0; start < len(ids); start += jiraIDChunkSize {
		end := start + jiraIDChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		parts := make([]string, len(chunk))
		for i, id := range chunk {
			parts[i] = strconv.FormatInt(id, 10)
		}
		jql := fmt.Sprintf("id in (%s)", strings.Join(parts, ","))

		issues, err := r.SearchIssues(ctx, jql, len(chunk))
		if err != nil {
			return result, err
		}
		for _, issue := range issues {
			result[issue.ID] = models.IssueRef{
				Key:       issue.Key,
				ID:        issue.ID,
				ProjectID: issue.ProjectID,
				Summary:   issue.Summary,
			}
		}
	}
	return result, nil
}

// GetProject gets a project by numeric id
func (r *JiraRepository) GetProject(ctx context.Context, id int64) (models.Project, error) {
	ref := strconv.FormatInt(id, 10)

	var project models.JiraProject
	if err := r.api.do(ctx, http.MethodGet, r.api.url("/rest/api/3/project/"+ref, nil), nil, &project); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return models.Project{}, &models.NotFoundError{Kind: "project", Ref: ref}
		}
		return models.Project{}, fmt.Errorf("failed to get project %s: %w", ref, err)
	}
	return project.ToProject(), nil
}

// GetUser gets a user profile by account id
func (r *JiraRepository) GetUser(ctx context.Context, accountID string) (models.User, error) {
	u := r.api.url("/rest/api/3/user", url.Values{"accountId": {accountID}})

	var user models.JiraUser
	if err := r.api.do(ctx, http.MethodGet, u, nil, &user); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return models.User{}, &models.NotFoundError{Kind: "user", Ref: accountID, Hint: accountIDHint}
		}
		return models.User{}, fmt.Errorf("failed to get user %s: %w", accountID, err)
	}
	return user.ToUser(), nil
}

// GetMyself gets the profile of the authenticated user
func (r *JiraRepository) GetMyself(ctx context.Context) (models.User, error) {
	var user models.JiraUser
	if err := r.api.do(ctx, http.MethodGet, r.api.url("/rest/api/3/myself", nil), nil, &user); err != nil {
		return models.User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return user.ToUser(), nil
}

// SearchUsers finds users whose name or email matches the fragment
func (r *JiraRepository) SearchUsers(ctx context.Context, fragment string, max int) ([]models.User, error) {
	if max <= 0 {
		max = 20
	}
	u := r.api.url("/rest/api/3/user/search", url.Values{
		"query":      {fragment},
		"maxResults": {strconv.Itoa(max)},
	})

	var users []models.JiraUser
	if err := r.api.do(ctx, http.MethodGet, u, nil, &users); err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	result := make([]models.User, 0, len(users))
	for _, user := range users {
		result = append(result, user.ToUser())
	}
	return result, nil
}
