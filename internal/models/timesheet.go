package models

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used by both APIs
const DateLayout = "2006-01-02"

// Issue represents a Jira issue projected onto the fields the tools display
type Issue struct {
	Key       string
	ID        int64
	ProjectID int64
	Summary   string
	Status    string
	Type      string
	Assignee  string
}

// IssueRef identifies an issue by key together with its numeric ids
type IssueRef struct {
	Key       string
	ID        int64
	ProjectID int64
	Summary   string
}

// User represents a Jira user profile
type User struct {
	AccountID   string
	DisplayName string
	Email       string
	Active      bool
}

// Project represents a Jira project
type Project struct {
	ID   int64
	Key  string
	Name string
}

// Worklog represents a single recorded span of time on an issue
type Worklog struct {
	ID              int64
	IssueID         int64
	IssueKey        string
	AuthorID        string
	Date            string
	StartTime       string
	Seconds         int
	BillableSeconds int
	Description     string
}

// WorkAttribute is a key/value work attribute attached to a worklog
type WorkAttribute struct {
	Key   string
	Value string
}

// WorklogInput carries everything needed to create a worklog
type WorklogInput struct {
	IssueID     int64
	Seconds     int
	StartDate   string
	StartTime   string
	AuthorID    string
	Description string
	Attributes  []WorkAttribute
}

// ScheduleDay is the required time for a user on one date
type ScheduleDay struct {
	Date            string
	RequiredSeconds int
	Type            string
}

// Team represents a Tempo team
type Team struct {
	ID     int64
	Name   string
	LeadID string
}

// TeamMember represents an active membership of a user in a team
type TeamMember struct {
	TeamID    int64
	AccountID string
	RoleID    int64
	RoleName  string
}

// PlanItemType tags what a plan allocates time to
type PlanItemType string

const (
	PlanItemIssue   PlanItemType = "ISSUE"
	PlanItemProject PlanItemType = "PROJECT"
)

// Plan represents a resource allocation for a worker over a date range
type Plan struct {
	ID                  int64
	StartDate           string
	EndDate             string
	SecondsPerDay       int
	TotalSeconds        int
	TotalSecondsInScope int
	Description         string
	AssigneeID          string
	AssigneeType        string
	ItemID              string
	ItemType            PlanItemType
}

// PlanFilter narrows a plan search
type PlanFilter struct {
	From          time.Time
	To            time.Time
	AssigneeIDs   []string
	PlanItemTypes []PlanItemType
}

// DateRange is an inclusive range of calendar dates
type DateRange struct {
	From time.Time
	To   time.Time
}

// Days returns the number of calendar days in the range, both ends included
func (r DateRange) Days() int {
	return int(r.To.Sub(r.From).Hours()/24) + 1
}

// FromString returns the start date as YYYY-MM-DD
func (r DateRange) FromString() string {
	return r.From.Format(DateLayout)
}

// ToString returns the end date as YYYY-MM-DD
func (r DateRange) ToString() string {
	return r.To.Format(DateLayout)
}

func (r DateRange) String() string {
	if r.From.Equal(r.To) {
		return r.FromString()
	}
	return fmt.Sprintf("%s to %s", r.FromString(), r.ToString())
}
