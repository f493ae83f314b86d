package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/reaver89/time-tracker/internal/helpers"
	"github.com/reaver89/time-tracker/internal/models"
	"github.com/rs/zerolog"
)

// DefaultStartTime is used when a worklog is logged without a start time
const DefaultStartTime = "09:00"

var issueKeyRe = regexp.MustCompile(`^[A-Z][A-Z0-9_]+-\d+$`)

// LogRequest is one worklog as entered by the caller
type LogRequest struct {
	IssueKey    string
	TimeSpent   string
	Date        string
	StartTime   string
	Description string
}

// LoggedWorklog is a created worklog together with what was resolved for it
type LoggedWorklog struct {
	Worklog        models.Worklog
	Issue          models.IssueRef
	BillingAccount string
}

// BulkEntryResult is the outcome of one entry of a bulk log
type BulkEntryResult struct {
	Index   int
	Request LogRequest
	Logged  *LoggedWorklog
	Err     error
}

// BulkResult collects the outcome of every bulk entry, in input order
type BulkResult struct {
	Entries []BulkEntryResult
}

// Succeeded returns the number of entries that were logged
func (r BulkResult) Succeeded() int {
	n := 0
	for _, e := range r.Entries {
		if e.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of entries that failed
func (r BulkResult) Failed() int {
	return len(r.Entries) - r.Succeeded()
}

// Total returns the number of entries
func (r BulkResult) Total() int {
	return len(r.Entries)
}

// WorklogService creates worklogs
type WorklogService struct {
	jira             IssueTracker
	tempo            TimeTracker
	billingAttribute string
	now              func() time.Time
	log              zerolog.Logger
}

// NewWorklogService creates a new worklog service. Worklogs on projects with
// a billing account get it attached under billingAttribute.
func NewWorklogService(jira IssueTracker, tempo TimeTracker, billingAttribute string, log zerolog.Logger) *WorklogService {
	return &WorklogService{
		jira:             jira,
		tempo:            tempo,
		billingAttribute: billingAttribute,
		now:              time.Now,
		log:              log,
	}
}

// WithClock returns a copy of the service that reads the current time from
// now. Default dates and the today/yesterday keywords resolve against it.
func (s *WorklogService) WithClock(now func() time.Time) *WorklogService {
	clone := *s
	clone.now = now
	return &clone
}

// billingMemo remembers the billing account per project for one invocation
type billingMemo map[int64]string

func (s *WorklogService) billingAccount(ctx context.Context, projectID int64, memo billingMemo) string {
	if projectID == 0 || s.billingAttribute == "" {
		return ""
	}
	if key, ok := memo[projectID]; ok {
		return key
	}
	key, _ := s.tempo.DefaultBillingAccount(ctx, projectID)
	memo[projectID] = key
	return key
}

// NormalizeIssueKey trims and upper-cases an issue key and checks its shape
func NormalizeIssueKey(key string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(key))
	if normalized == "" {
		return "", &models.ValidationError{Field: "issue_key", Message: "issue_key is required"}
	}
	if !issueKeyRe.MatchString(normalized) {
		return "", &models.ParseError{Kind: "issue key", Input: key, Examples: []string{"PROJ-123", "ab-7"}}
	}
	return normalized, nil
}

// LogTime logs a single worklog for authorID
func (s *WorklogService) LogTime(ctx context.Context, req LogRequest, authorID string) (LoggedWorklog, error) {
	return s.logTime(ctx, req, authorID, billingMemo{})
}

func (s *WorklogService) logTime(ctx context.Context, req LogRequest, authorID string, memo billingMemo) (LoggedWorklog, error) {
	if authorID == "" {
		return LoggedWorklog{}, &models.ValidationError{
			Field:   "account_id",
			Message: "the current user is unknown; pass account_id explicitly",
		}
	}

	key, err := NormalizeIssueKey(req.IssueKey)
	if err != nil {
		return LoggedWorklog{}, err
	}

	seconds, err := helpers.ParseDuration(req.TimeSpent)
	if err != nil {
		return LoggedWorklog{}, err
	}
	if seconds <= 0 {
		return LoggedWorklog{}, &models.ValidationError{Field: "time_spent", Message: "time_spent must be greater than zero"}
	}

	now := s.now()
	date := helpers.Today(now)
	if strings.TrimSpace(req.Date) != "" {
		if date, err = helpers.ParseDate(req.Date, now); err != nil {
			return LoggedWorklog{}, err
		}
	}

	startTime := strings.TrimSpace(req.StartTime)
	if startTime == "" {
		startTime = DefaultStartTime
	}
	if startTime, err = helpers.NormalizeStartTime(startTime); err != nil {
		return LoggedWorklog{}, err
	}

	issue, err := s.jira.GetIssueID(ctx, key)
	if err != nil {
		return LoggedWorklog{}, err
	}

	input := models.WorklogInput{
		IssueID:     issue.ID,
		Seconds:     seconds,
		StartDate:   helpers.FormatDate(date),
		StartTime:   startTime,
		AuthorID:    authorID,
		Description: strings.TrimSpace(req.Description),
	}
	account := s.billingAccount(ctx, issue.ProjectID, memo)
	if account != "" {
		input.Attributes = []models.WorkAttribute{{Key: s.billingAttribute, Value: account}}
	}

	worklog, err := s.tempo.CreateWorklog(ctx, input)
	if err != nil {
		return LoggedWorklog{}, err
	}
	if worklog.IssueKey == "" {
		worklog.IssueKey = key
	}

	s.log.Info().
		Int64("worklog_id", worklog.ID).
		Str("issue", key).
		Int("seconds", worklog.Seconds).
		Str("date", worklog.Date).
		Msg("worklog created")

	return LoggedWorklog{Worklog: worklog, Issue: issue, BillingAccount: account}, nil
}

// BulkLog logs every entry independently and in order. A failing entry is
// recorded and does not stop the others.
func (s *WorklogService) BulkLog(ctx context.Context, reqs []LogRequest, authorID string) BulkResult {
	memo := billingMemo{}
	result := BulkResult{Entries: make([]BulkEntryResult, 0, len(reqs))}

	for i, req := range reqs {
		entry := BulkEntryResult{Index: i + 1, Request: req}
		logged, err := s.logTime(ctx, req, authorID, memo)
		if err != nil {
			entry.Err = err
			s.log.Debug().Err(err).Int("entry", i+1).Msg("bulk entry failed")
		} else {
			entry.Logged = &logged
		}
		result.Entries = append(result.Entries, entry)
	}

	return result
}

// RenderLogged renders a created worklog
func RenderLogged(l LoggedWorklog) string {
	var out strings.Builder
	wl := l.Worklog

	out.WriteString(fmt.Sprintf("Logged %s on %s", helpers.FormatSeconds(wl.Seconds), wl.IssueKey))
	if l.Issue.Summary != "" {
		out.WriteString(fmt.Sprintf(" (%s)", l.Issue.Summary))
	}
	out.WriteString(".\n\n")

	table := helpers.NewMarkdownTable("Field", "Value")
	table.AddRow("Worklog ID", fmt.Sprint(wl.ID))
	table.AddRow("Issue", wl.IssueKey)
	table.AddRow("Date", wl.Date)
	if wl.StartTime != "" {
		table.AddRow("Start", wl.StartTime)
	}
	table.AddRow("Time", helpers.FormatSeconds(wl.Seconds))
	if wl.Description != "" {
		table.AddRow("Description", wl.Description)
	}
	if l.BillingAccount != "" {
		table.AddRow("Billing account", l.BillingAccount)
	}
	out.WriteString(table.String())
	return out.String()
}

// RenderBulkResult renders the per-entry outcome table and the summary line
func RenderBulkResult(r BulkResult) string {
	var out strings.Builder

	table := helpers.NewMarkdownTable("#", "Issue", "Date", "Time", "Result")
	for _, e := range r.Entries {
		if e.Err != nil {
			table.AddRow(
				fmt.Sprint(e.Index),
				strings.ToUpper(strings.TrimSpace(e.Request.IssueKey)),
				e.Request.Date,
				e.Request.TimeSpent,
				"❌ "+models.UserMessage(e.Err),
			)
			continue
		}
		wl := e.Logged.Worklog
		table.AddRow(
			fmt.Sprint(e.Index),
			wl.IssueKey,
			wl.Date,
			helpers.FormatSeconds(wl.Seconds),
			fmt.Sprintf("✅ worklog %d", wl.ID),
		)
	}

	out.WriteString(table.String())
	out.WriteString(fmt.Sprintf("\n**Summary:** %d succeeded, %d failed, %d total\n", r.Succeeded(), r.Failed(), r.Total()))
	return out.String()
}
