package models

import "strconv"

// JiraIssue represents a JIRA issue as returned by the REST API
type JiraIssue struct {
	ID     string          `json:"id"`
	Key    string          `json:"key"`
	Fields JiraIssueFields `json:"fields"`
}

// JiraIssueFields represents the subset of JIRA issue fields we request
type JiraIssueFields struct {
	Summary   string       `json:"summary"`
	Status    *JiraNamed   `json:"status"`
	IssueType *JiraNamed   `json:"issuetype"`
	Assignee  *JiraUser    `json:"assignee"`
	Project   *JiraProject `json:"project"`
}

// JiraNamed represents any JIRA entity that only matters by name
type JiraNamed struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// JiraProject represents a JIRA project
type JiraProject struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// JiraUser represents a JIRA user profile
type JiraUser struct {
	AccountID    string `json:"accountId"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
	Active       bool   `json:"active"`
}

// JiraSearchRequest is the body of the enhanced JQL search endpoint
type JiraSearchRequest struct {
	JQL           string   `json:"jql"`
	MaxResults    int      `json:"maxResults"`
	Fields        []string `json:"fields"`
	NextPageToken string   `json:"nextPageToken,omitempty"`
}

// JiraSearchResponse is one page of the enhanced JQL search endpoint
type JiraSearchResponse struct {
	Issues        []JiraIssue `json:"issues"`
	NextPageToken string      `json:"nextPageToken"`
	IsLast        bool        `json:"isLast"`
}

// ToIssue normalizes the wire issue, defaulting every missing field
func (i JiraIssue) ToIssue() Issue {
	issue := Issue{
		Key:     i.Key,
		ID:      parseID(i.ID),
		Summary: i.Fields.Summary,
	}
	if i.Fields.Status != nil {
		issue.Status = i.Fields.Status.Name
	}
	if i.Fields.IssueType != nil {
		issue.Type = i.Fields.IssueType.Name
	}
	if i.Fields.Assignee != nil {
		issue.Assignee = i.Fields.Assignee.DisplayName
	}
	if i.Fields.Project != nil {
		issue.ProjectID = parseID(i.Fields.Project.ID)
	}
	return issue
}

// ToIssueRef keeps only the identifying fields of the issue
func (i JiraIssue) ToIssueRef() IssueRef {
	issue := i.ToIssue()
	return IssueRef{
		Key:       issue.Key,
		ID:        issue.ID,
		ProjectID: issue.ProjectID,
		Summary:   issue.Summary,
	}
}

// ToUser normalizes the wire user
func (u JiraUser) ToUser() User {
	return User{
		AccountID:   u.AccountID,
		DisplayName: u.DisplayName,
		Email:       u.EmailAddress,
		Active:      u.Active,
	}
}

// ToProject normalizes the wire project
func (p JiraProject) ToProject() Project {
	return Project{
		ID:   parseID(p.ID),
		Key:  p.Key,
		Name: p.Name,
	}
}

func parseID(s string) int64 {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return id
}
