package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/reaver89/time-tracker/internal/helpers"
	"github.com/reaver89/time-tracker/internal/models"
)

// Grouping modes of the timesheet report
const (
	GroupByWorker = "worker"
	GroupByIssue  = "issue"
)

// GroupByModes lists the accepted grouping modes
var GroupByModes = []string{GroupByWorker, GroupByIssue}

// maxGridDays is the longest range that still gets a daily grid
const maxGridDays = 31

// Totals aggregates logged, billable and required time
type Totals struct {
	Logged   int
	Billable int
	Required int
}

// NonBillable returns logged time that is not billable
func (t Totals) NonBillable() int {
	return t.Logged - t.Billable
}

// Difference returns logged minus required time
func (t Totals) Difference() int {
	return t.Logged - t.Required
}

func (t *Totals) add(o Totals) {
	t.Logged += o.Logged
	t.Billable += o.Billable
	t.Required += o.Required
}

// DayRow is one row of the daily grid
type DayRow struct {
	Date     time.Time
	DayType  string
	Logged   int
	Required int
}

// IssueRow aggregates a worker's time on one issue
type IssueRow struct {
	Key      string
	Summary  string
	Seconds  int
	Billable int
}

// DescriptionRow aggregates a worker's time per worklog description
type DescriptionRow struct {
	Description string
	Seconds     int
	Entries     int
}

// EntryRow is a single worklog ready for display
type EntryRow struct {
	WorklogID   int64
	Date        string
	StartTime   string
	IssueKey    string
	Summary     string
	Description string
	Seconds     int
}

// WorkerReport is the per-worker section of a report
type WorkerReport struct {
	AccountID           string
	Name                string
	Totals              Totals
	ShowGrid            bool
	Days                []DayRow
	Issues              []IssueRow
	Descriptions        []DescriptionRow
	Entries             []EntryRow
	NameUnavailable     bool
	WorklogsUnavailable bool
	ScheduleUnavailable bool
}

// IssueWorker is one worker's share of an issue
type IssueWorker struct {
	AccountID string
	Name      string
	Seconds   int
}

// IssueGroup is an issue with the time every worker spent on it
type IssueGroup struct {
	Key     string
	Summary string
	Seconds int
	Workers []IssueWorker
}

// Report is the aggregated, render-ready timesheet
type Report struct {
	Range   models.DateRange
	GroupBy string
	Workers []WorkerReport
	Issues  []IssueGroup
	Total   Totals
}

// BuildReport aggregates fetched worker data into a report
func BuildReport(r models.DateRange, groupBy string, workers []WorkerData, issues map[int64]models.IssueRef) Report {
	if groupBy == "" {
		groupBy = GroupByWorker
	}
	report := Report{Range: r, GroupBy: groupBy}

	for _, w := range workers {
		wr := buildWorkerReport(r, w, issues)
		report.Total.add(wr.Totals)
		report.Workers = append(report.Workers, wr)
	}

	if groupBy == GroupByIssue {
		report.Issues = groupByIssue(workers, issues)
	}
	return report
}

func buildWorkerReport(r models.DateRange, w WorkerData, issues map[int64]models.IssueRef) WorkerReport {
	wr := WorkerReport{
		AccountID:           w.AccountID,
		Name:                w.Name,
		NameUnavailable:     w.NameUnavailable,
		WorklogsUnavailable: w.WorklogsUnavailable,
		ScheduleUnavailable: w.ScheduleUnavailable,
	}

	loggedByDay := make(map[string]int)
	byIssue := helpers.NewOrderedMap[string, IssueRow]()
	byDescription := helpers.NewOrderedMap[string, DescriptionRow]()

	for _, wl := range w.Worklogs {
		key, summary := issueLabel(wl, issues)

		wr.Totals.Logged += wl.Seconds
		wr.Totals.Billable += wl.BillableSeconds
		loggedByDay[wl.Date] += wl.Seconds

		byIssue.Update(key, func(row IssueRow) IssueRow {
			row.Key, row.Summary = key, summary
			row.Seconds += wl.Seconds
			row.Billable += wl.BillableSeconds
			return row
		})

		desc := strings.TrimSpace(wl.Description)
		byDescription.Update(desc, func(row DescriptionRow) DescriptionRow {
			row.Description = desc
			row.Seconds += wl.Seconds
			row.Entries++
			return row
		})

		wr.Entries = append(wr.Entries, EntryRow{
			WorklogID:   wl.ID,
			Date:        wl.Date,
			StartTime:   wl.StartTime,
			IssueKey:    key,
			Summary:     summary,
			Description: desc,
			Seconds:     wl.Seconds,
		})
	}

	requiredByDay := make(map[string]int)
	dayType := make(map[string]string)
	for _, d := range w.Schedule {
		wr.Totals.Required += d.RequiredSeconds
		requiredByDay[d.Date] += d.RequiredSeconds
		dayType[d.Date] = d.Type
	}

	days := r.Days()
	wr.ShowGrid = days > 1 && days <= maxGridDays
	if wr.ShowGrid {
		for _, day := range helpers.WeekdayRange(r.From, r.To) {
			date := helpers.FormatDate(day)
			logged, required := loggedByDay[date], requiredByDay[date]
			if logged == 0 && required == 0 {
				continue
			}
			wr.Days = append(wr.Days, DayRow{Date: day, DayType: dayType[date], Logged: logged, Required: required})
		}
	}

	wr.Issues = byIssue.Values()
	sort.SliceStable(wr.Issues, func(i, j int) bool {
		if wr.Issues[i].Seconds != wr.Issues[j].Seconds {
			return wr.Issues[i].Seconds > wr.Issues[j].Seconds
		}
		return wr.Issues[i].Key < wr.Issues[j].Key
	})

	wr.Descriptions = byDescription.Values()
	sort.SliceStable(wr.Descriptions, func(i, j int) bool {
		if wr.Descriptions[i].Seconds != wr.Descriptions[j].Seconds {
			return wr.Descriptions[i].Seconds > wr.Descriptions[j].Seconds
		}
		return wr.Descriptions[i].Description < wr.Descriptions[j].Description
	})

	sortEntries(wr.Entries)
	return wr
}

// sortEntries orders entries by date, then issue key, then start time
func sortEntries(entries []EntryRow) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.IssueKey != b.IssueKey {
			return a.IssueKey < b.IssueKey
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.WorklogID < b.WorklogID
	})
}

func groupByIssue(workers []WorkerData, issues map[int64]models.IssueRef) []IssueGroup {
	type accumulator struct {
		summary string
		total   int
		workers *helpers.OrderedMap[string, int]
	}

	names := make(map[string]string, len(workers))
	byIssue := helpers.NewOrderedMap[string, *accumulator]()

	for _, w := range workers {
		names[w.AccountID] = w.Name
		for _, wl := range w.Worklogs {
			key, summary := issueLabel(wl, issues)
			acc, ok := byIssue.Get(key)
			if !ok {
				acc = &accumulator{summary: summary, workers: helpers.NewOrderedMap[string, int]()}
				byIssue.Set(key, acc)
			}
			acc.total += wl.Seconds
			author := wl.AuthorID
			if author == "" {
				author = w.AccountID
			}
			acc.workers.Update(author, func(s int) int { return s + wl.Seconds })
		}
	}

	groups := make([]IssueGroup, 0, byIssue.Len())
	for _, key := range byIssue.Keys() {
		acc, _ := byIssue.Get(key)
		group := IssueGroup{Key: key, Summary: acc.summary, Seconds: acc.total}
		for _, id := range acc.workers.Keys() {
			seconds, _ := acc.workers.Get(id)
			name := names[id]
			if name == "" {
				name = id
			}
			group.Workers = append(group.Workers, IssueWorker{AccountID: id, Name: name, Seconds: seconds})
		}
		groups = append(groups, group)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Seconds != groups[j].Seconds {
			return groups[i].Seconds > groups[j].Seconds
		}
		return groups[i].Key < groups[j].Key
	})
	return groups
}

func issueLabel(wl models.Worklog, issues map[int64]models.IssueRef) (string, string) {
	ref, ok := issues[wl.IssueID]
	key := wl.IssueKey
	if key == "" && ok {
		key = ref.Key
	}
	if key == "" {
		key = fallbackLabel(models.PlanItemIssue, fmt.Sprint(wl.IssueID))
	}
	return key, ref.Summary
}
