package services

import (
	"fmt"
	"strings"

	"github.com/reaver89/time-tracker/internal/helpers"
)

// Default column widths for free text in report tables
const (
	DefaultSummaryWidth     = 80
	DefaultDescriptionWidth = 80
)

// RenderOptions controls how a report is rendered
type RenderOptions struct {
	Title            string
	IncludeDetails   bool
	ShowEntries      bool
	SummaryWidth     int
	DescriptionWidth int
}

func (o RenderOptions) summaryWidth() int {
	if o.SummaryWidth <= 0 {
		return DefaultSummaryWidth
	}
	return o.SummaryWidth
}

func (o RenderOptions) descriptionWidth() int {
	if o.DescriptionWidth <= 0 {
		return DefaultDescriptionWidth
	}
	return o.DescriptionWidth
}

// RenderReport renders a report as Markdown
func RenderReport(report Report, opts RenderOptions) string {
	var out strings.Builder

	title := opts.Title
	if title == "" {
		title = "Timesheet report"
	}
	out.WriteString(fmt.Sprintf("# %s\n\n", title))
	out.WriteString(fmt.Sprintf("**Period:** %s\n\n", report.Range))

	if report.GroupBy == GroupByIssue {
		renderByIssue(&out, report, opts)
	} else {
		for _, w := range report.Workers {
			renderWorker(&out, w, opts)
		}
	}

	if len(report.Workers) > 1 {
		renderGrandTotals(&out, report)
	}

	return strings.TrimRight(out.String(), "\n") + "\n"
}

func renderWorker(out *strings.Builder, w WorkerReport, opts RenderOptions) {
	out.WriteString(fmt.Sprintf("## %s\n\n", w.Name))
	if note := degradationNote(w); note != "" {
		out.WriteString(note + "\n\n")
	}

	summary := helpers.NewMarkdownTable("Logged", "Billable", "Non-billable", "Required", "Difference")
	summary.AddRow(
		helpers.FormatSeconds(w.Totals.Logged),
		helpers.FormatSeconds(w.Totals.Billable),
		helpers.FormatSeconds(w.Totals.NonBillable()),
		helpers.FormatSeconds(w.Totals.Required),
		helpers.FormatSignedSeconds(w.Totals.Difference()),
	)
	out.WriteString(summary.String() + "\n")

	if w.ShowGrid && len(w.Days) > 0 {
		out.WriteString("### Daily\n\n")
		grid := helpers.NewMarkdownTable("Date", "Day", "Logged", "Required", "Difference")
		for _, d := range w.Days {
			day := d.Date.Format("Mon")
			if d.DayType != "" && d.DayType != "WORKING_DAY" {
				day += " (" + strings.ToLower(strings.ReplaceAll(d.DayType, "_", " ")) + ")"
			}
			grid.AddRow(
				helpers.FormatDate(d.Date),
				day,
				helpers.FormatSeconds(d.Logged),
				helpers.FormatSeconds(d.Required),
				helpers.FormatSignedSeconds(d.Logged-d.Required),
			)
		}
		out.WriteString(grid.String() + "\n")
	}

	if len(w.Entries) == 0 {
		out.WriteString("_No worklogs found in this period._\n\n")
		return
	}

	if !opts.IncludeDetails {
		return
	}

	out.WriteString("### By issue\n\n")
	issues := helpers.NewMarkdownTable("Issue", "Summary", "Time", "Billable")
	for _, row := range w.Issues {
		issues.AddRow(
			row.Key,
			helpers.Truncate(row.Summary, opts.summaryWidth()),
			helpers.FormatSeconds(row.Seconds),
			helpers.FormatSeconds(row.Billable),
		)
	}
	out.WriteString(issues.String() + "\n")

	out.WriteString("### By description\n\n")
	descriptions := helpers.NewMarkdownTable("Description", "Time", "Entries")
	for _, row := range w.Descriptions {
		desc := helpers.Truncate(row.Description, opts.descriptionWidth())
		if desc == "" {
			desc = "_(no description)_"
		}
		descriptions.AddRow(desc, helpers.FormatSeconds(row.Seconds), fmt.Sprint(row.Entries))
	}
	out.WriteString(descriptions.String() + "\n")

	if opts.ShowEntries {
		out.WriteString("### Entries\n\n")
		out.WriteString(RenderEntries(w.Entries, opts) + "\n")
	}
}

// RenderEntries renders worklog entries as a table sorted by date then issue key
func RenderEntries(entries []EntryRow, opts RenderOptions) string {
	sorted := append([]EntryRow(nil), entries...)
	sortEntries(sorted)

	table := helpers.NewMarkdownTable("Date", "Issue", "Summary", "Time", "Description")
	for _, e := range sorted {
		table.AddRow(
			e.Date,
			e.IssueKey,
			helpers.Truncate(e.Summary, opts.summaryWidth()),
			helpers.FormatSeconds(e.Seconds),
			helpers.Truncate(e.Description, opts.descriptionWidth()),
		)
	}
	return table.String()
}

func renderByIssue(out *strings.Builder, report Report, opts RenderOptions) {
	if len(report.Issues) == 0 {
		out.WriteString("_No worklogs found in this period._\n\n")
	} else {
		table := helpers.NewMarkdownTable("Issue", "Summary", "Worker", "Time")
		for _, issue := range report.Issues {
			table.AddRow(
				"**"+issue.Key+"**",
				helpers.Truncate(issue.Summary, opts.summaryWidth()),
				"",
				"**"+helpers.FormatSeconds(issue.Seconds)+"**",
			)
			for _, w := range issue.Workers {
				table.AddRow("", "", w.Name, helpers.FormatSeconds(w.Seconds))
			}
		}
		out.WriteString(table.String() + "\n")
	}

	for _, w := range report.Workers {
		if note := degradationNote(w); note != "" {
			out.WriteString(fmt.Sprintf("%s: %s\n\n", w.Name, note))
		}
	}
}

func renderGrandTotals(out *strings.Builder, report Report) {
	out.WriteString("## Totals\n\n")
	table := helpers.NewMarkdownTable("Worker", "Logged", "Billable", "Non-billable", "Required", "Difference")
	for _, w := range report.Workers {
		table.AddRow(
			w.Name,
			helpers.FormatSeconds(w.Totals.Logged),
			helpers.FormatSeconds(w.Totals.Billable),
			helpers.FormatSeconds(w.Totals.NonBillable()),
			helpers.FormatSeconds(w.Totals.Required),
			helpers.FormatSignedSeconds(w.Totals.Difference()),
		)
	}
	t := report.Total
	table.AddRow(
		"**Total**",
		"**"+helpers.FormatSeconds(t.Logged)+"**",
		"**"+helpers.FormatSeconds(t.Billable)+"**",
		"**"+helpers.FormatSeconds(t.NonBillable())+"**",
		"**"+helpers.FormatSeconds(t.Required)+"**",
		"**"+helpers.FormatSignedSeconds(t.Difference())+"**",
	)
	out.WriteString(table.String() + "\n")
}

func degradationNote(w WorkerReport) string {
	var missing []string
	if w.NameUnavailable {
		missing = append(missing, "display name")
	}
	if w.WorklogsUnavailable {
		missing = append(missing, "worklogs")
	}
	if w.ScheduleUnavailable {
		missing = append(missing, "schedule")
	}
	if len(missing) == 0 {
		return ""
	}
	return fmt.Sprintf("_Could not load %s; shown values may be incomplete._", strings.Join(missing, ", "))
}
