package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// TempoMetadata carries the pagination cursor of a Tempo list response
type TempoMetadata struct {
	Count    int    `json:"count"`
	Offset   int    `json:"offset"`
	Limit    int    `json:"limit"`
	Next     string `json:"next"`
	Previous string `json:"previous"`
}

// TempoPage is one page of any Tempo list endpoint
type TempoPage[T any] struct {
	Self     string        `json:"self"`
	Metadata TempoMetadata `json:"metadata"`
	Results  []T           `json:"results"`
}

// FlexID accepts identifiers that Tempo sends either as strings or numbers
type FlexID string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

// TempoAccountRef references a Jira user by account id
type TempoAccountRef struct {
	AccountID string `json:"accountId"`
	Self      string `json:"self"`
}

// TempoIssueRef references a Jira issue by numeric id
type TempoIssueRef struct {
	ID   int64  `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
}

// TempoAttribute is a work attribute key/value pair
type TempoAttribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// TempoWorklog is a worklog as returned by Tempo
type TempoWorklog struct {
	TempoWorklogID   int64            `json:"tempoWorklogId"`
	Issue            *TempoIssueRef   `json:"issue"`
	TimeSpentSeconds int              `json:"timeSpentSeconds"`
	BillableSeconds  *int             `json:"billableSeconds"`
	StartDate        string           `json:"startDate"`
	StartTime        string           `json:"startTime"`
	Description      string           `json:"description"`
	Author           *TempoAccountRef `json:"author"`
}

// TempoWorklogRequest is the body for creating a worklog
type TempoWorklogRequest struct {
	IssueID          int64            `json:"issueId"`
	TimeSpentSeconds int              `json:"timeSpentSeconds"`
	StartDate        string           `json:"startDate"`
	StartTime        string           `json:"startTime"`
	AuthorAccountID  string           `json:"authorAccountId"`
	Description      string           `json:"description,omitempty"`
	Attributes       []TempoAttribute `json:"attributes,omitempty"`
}

// TempoTeam is a team as returned by Tempo
type TempoTeam struct {
	ID      int64            `json:"id"`
	Name    string           `json:"name"`
	Summary string           `json:"summary"`
	Lead    *TempoAccountRef `json:"lead"`
}

// TempoRole is the role of a team membership
type TempoRole struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TempoTeamMember is a team member as returned by Tempo
type TempoTeamMember struct {
	Member      *TempoAccountRef `json:"member"`
	Memberships *struct {
		Active *struct {
			Role *TempoRole `json:"role"`
		} `json:"active"`
	} `json:"memberships"`
}

// TempoAccountLinkAccount is the account side of an account link. Tempo may
// send only the self URL.
type TempoAccountLinkAccount struct {
	ID   int64  `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
}

// TempoAccountLink links a billing account to a project
type TempoAccountLink struct {
	ID      int64                    `json:"id"`
	Default bool                     `json:"default"`
	Account *TempoAccountLinkAccount `json:"account"`
}

// TempoAccount is a billing account
type TempoAccount struct {
	ID     int64  `json:"id"`
	Key    string `json:"key"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// TempoScheduleDay is one day of a user schedule
type TempoScheduleDay struct {
	Date            string `json:"date"`
	RequiredSeconds int    `json:"requiredSeconds"`
	Type            string `json:"type"`
}

// TempoPlanRef references the assignee or the plan item of a plan
type TempoPlanRef struct {
	ID   FlexID `json:"id"`
	Type string `json:"type"`
	Self string `json:"self"`
}

// TempoPlan is a resource plan as returned by Tempo
type TempoPlan struct {
	ID                         int64         `json:"id"`
	StartDate                  string        `json:"startDate"`
	EndDate                    string        `json:"endDate"`
	PlannedSecondsPerDay       int           `json:"plannedSecondsPerDay"`
	TotalPlannedSeconds        int           `json:"totalPlannedSeconds"`
	TotalPlannedSecondsInScope int           `json:"totalPlannedSecondsInScope"`
	Description                string        `json:"description"`
	Assignee                   *TempoPlanRef `json:"assignee"`
	PlanItem                   *TempoPlanRef `json:"planItem"`
}

// ToWorklog normalizes the wire worklog. Billable time never exceeds the
// logged time.
func (w TempoWorklog) ToWorklog() Worklog {
	wl := Worklog{
		ID:          w.TempoWorklogID,
		Date:        w.StartDate,
		StartTime:   w.StartTime,
		Seconds:     w.TimeSpentSeconds,
		Description: w.Description,
	}
	if w.Issue != nil {
		wl.IssueID = w.Issue.ID
		wl.IssueKey = w.Issue.Key
	}
	if w.Author != nil {
		wl.AuthorID = w.Author.AccountID
	}
	if w.BillableSeconds != nil {
		wl.BillableSeconds = *w.BillableSeconds
	}
	if wl.BillableSeconds > wl.Seconds {
		wl.BillableSeconds = wl.Seconds
	}
	if wl.BillableSeconds < 0 {
		wl.BillableSeconds = 0
	}
	return wl
}

// ToTeam normalizes the wire team
func (t TempoTeam) ToTeam() Team {
	team := Team{ID: t.ID, Name: t.Name}
	if t.Lead != nil {
		team.LeadID = t.Lead.AccountID
	}
	return team
}

// ToTeamMember normalizes the wire member
func (m TempoTeamMember) ToTeamMember(teamID int64) TeamMember {
	member := TeamMember{TeamID: teamID}
	if m.Member != nil {
		member.AccountID = m.Member.AccountID
	}
	if m.Memberships != nil && m.Memberships.Active != nil && m.Memberships.Active.Role != nil {
		member.RoleID = m.Memberships.Active.Role.ID
		member.RoleName = m.Memberships.Active.Role.Name
	}
	return member
}

// ToScheduleDay normalizes the wire schedule day
func (d TempoScheduleDay) ToScheduleDay() ScheduleDay {
	return ScheduleDay{Date: d.Date, RequiredSeconds: d.RequiredSeconds, Type: d.Type}
}

// ToPlan normalizes the wire plan
func (p TempoPlan) ToPlan() Plan {
	plan := Plan{
		ID:                  p.ID,
		StartDate:           p.StartDate,
		EndDate:             p.EndDate,
		SecondsPerDay:       p.PlannedSecondsPerDay,
		TotalSeconds:        p.TotalPlannedSeconds,
		TotalSecondsInScope: p.TotalPlannedSecondsInScope,
		Description:         p.Description,
	}
	if p.Assignee != nil {
		plan.AssigneeID = string(p.Assignee.ID)
		plan.AssigneeType = p.Assignee.Type
	}
	if p.PlanItem != nil {
		plan.ItemID = string(p.PlanItem.ID)
		plan.ItemType = PlanItemType(p.PlanItem.Type)
	}
	return plan
}

// AccountIDFromSelf extracts the numeric account id from a self URL such as
// https://api.tempo.io/4/accounts/42
func AccountIDFromSelf(self string) (int64, bool) {
	if i := strings.IndexAny(self, "?#"); i >= 0 {
		self = self[:i]
	}
	self = strings.TrimRight(self, "/")
	idx := strings.LastIndexByte(self, '/')
	if idx < 0 || idx == len(self)-1 {
		return 0, false
	}
	id, err := strconv.ParseInt(self[idx+1:], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
