package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/reaver89/time-tracker/internal/helpers"
	"github.com/reaver89/time-tracker/internal/models"
	"github.com/rs/zerolog"
)

// ReportService builds timesheet reports for one or more workers
type ReportService struct {
	jira    IssueTracker
	tempo   TimeTracker
	fetcher *Fetcher
	log     zerolog.Logger
}

// NewReportService creates a new report service
func NewReportService(jira IssueTracker, tempo TimeTracker, log zerolog.Logger) *ReportService {
	return &ReportService{
		jira:    jira,
		tempo:   tempo,
		fetcher: NewFetcher(jira, tempo, log),
		log:     log,
	}
}

// Timesheet fetches and aggregates the given workers over the range
func (s *ReportService) Timesheet(ctx context.Context, accountIDs []string, r models.DateRange, groupBy string) Report {
	workers := s.fetcher.FetchWorkers(ctx, accountIDs, r)
	issues := s.fetcher.IssueLabels(ctx, workers)
	return BuildReport(r, groupBy, workers, issues)
}

// TeamReport resolves workers from ids or names and builds their report.
// A name that matches nobody fails the whole report.
func (s *ReportService) TeamReport(ctx context.Context, ids, names []string, self string, r models.DateRange, groupBy string) (Report, error) {
	switch groupBy {
	case "", GroupByWorker, GroupByIssue:
	default:
		return Report{}, &models.ValidationError{
			Field:   "group_by",
			Message: fmt.Sprintf("unknown group_by %q, must be one of %s", groupBy, strings.Join(GroupByModes, ", ")),
		}
	}

	accountIDs, err := ResolveWorkers(ctx, s.jira, ids, names, self)
	if err != nil {
		return Report{}, err
	}
	return s.Timesheet(ctx, accountIDs, r, groupBy), nil
}

// TeamSection is the report of one team
type TeamSection struct {
	Team               models.Team
	Members            []models.TeamMember
	Report             Report
	MembersUnavailable bool
}

// TeamWorklogs reports the worklogs of every member of the given team, or of
// every team led by self when teamID is zero.
func (s *ReportService) TeamWorklogs(ctx context.Context, teamID int64, self string, r models.DateRange) ([]TeamSection, error) {
	teams, err := s.teamsFor(ctx, teamID, self)
	if err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return nil, nil
	}

	members := make([]Fetched[[]models.TeamMember], len(teams))
	var wg sync.WaitGroup
	for i, team := range teams {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			members[i] = fetch(func() ([]models.TeamMember, error) { return s.tempo.ListTeamMembers(ctx, id) })
		}(i, team.ID)
	}
	wg.Wait()

	var accountIDs []string
	for _, m := range members {
		for _, member := range m.Or(nil) {
			accountIDs = append(accountIDs, member.AccountID)
		}
	}
	accountIDs = uniqueNonEmpty(accountIDs)

	workers := s.fetcher.FetchWorkers(ctx, accountIDs, r)
	byID := make(map[string]WorkerData, len(workers))
	for _, w := range workers {
		byID[w.AccountID] = w
	}
	issues := s.fetcher.IssueLabels(ctx, workers)

	sections := make([]TeamSection, 0, len(teams))
	for i, team := range teams {
		if members[i].Degraded() {
			s.log.Debug().Err(members[i].Err).Int64("team_id", team.ID).Msg("team member lookup degraded")
		}
		section := TeamSection{Team: team, Members: members[i].Or(nil), MembersUnavailable: members[i].Degraded()}

		var teamWorkers []WorkerData
		seen := make(map[string]bool)
		for _, member := range section.Members {
			if w, ok := byID[member.AccountID]; ok && !seen[member.AccountID] {
				seen[member.AccountID] = true
				teamWorkers = append(teamWorkers, w)
			}
		}
		section.Report = BuildReport(r, GroupByWorker, teamWorkers, issues)
		sections = append(sections, section)
	}
	return sections, nil
}

func (s *ReportService) teamsFor(ctx context.Context, teamID int64, self string) ([]models.Team, error) {
	if teamID == 0 && self == "" {
		return nil, &models.ValidationError{
			Field:   "team_id",
			Message: "the current user is unknown; pass team_id explicitly",
		}
	}

	all, err := s.tempo.ListTeams(ctx)
	if err != nil {
		return nil, err
	}

	var teams []models.Team
	for _, team := range all {
		if (teamID != 0 && team.ID == teamID) || (teamID == 0 && team.LeadID == self) {
			teams = append(teams, team)
		}
	}
	if teamID != 0 && len(teams) == 0 {
		return nil, &models.NotFoundError{
			Kind: "team",
			Ref:  strconv.FormatInt(teamID, 10),
			Hint: "omit team_id to list the teams you lead",
		}
	}
	return teams, nil
}

// RenderTeamWorklogs renders one section per team
func RenderTeamWorklogs(sections []TeamSection, r models.DateRange, opts RenderOptions) string {
	var out strings.Builder
	out.WriteString("# Team worklogs\n\n")
	out.WriteString(fmt.Sprintf("**Period:** %s\n\n", r))

	if len(sections) == 0 {
		out.WriteString("You do not lead any team. Pass team_id to report on a specific team.\n")
		return out.String()
	}

	for _, section := range sections {
		out.WriteString(fmt.Sprintf("## %s\n\n", section.Team.Name))
		if section.MembersUnavailable {
			out.WriteString("_Could not load team members._\n\n")
			continue
		}
		if len(section.Report.Workers) == 0 {
			out.WriteString("_This team has no members._\n\n")
			continue
		}

		table := helpers.NewMarkdownTable("Member", "Logged", "Billable", "Required", "Difference")
		for _, w := range section.Report.Workers {
			name := w.Name
			if note := degradationNote(w); note != "" {
				name += " *"
			}
			table.AddRow(
				name,
				helpers.FormatSeconds(w.Totals.Logged),
				helpers.FormatSeconds(w.Totals.Billable),
				helpers.FormatSeconds(w.Totals.Required),
				helpers.FormatSignedSeconds(w.Totals.Difference()),
			)
		}
		t := section.Report.Total
		table.AddRow(
			"**Total**",
			"**"+helpers.FormatSeconds(t.Logged)+"**",
			"**"+helpers.FormatSeconds(t.Billable)+"**",
			"**"+helpers.FormatSeconds(t.Required)+"**",
			"**"+helpers.FormatSignedSeconds(t.Difference())+"**",
		)
		out.WriteString(table.String() + "\n")

		for _, w := range section.Report.Workers {
			if note := degradationNote(w); note != "" {
				out.WriteString(fmt.Sprintf("\\* %s: %s\n\n", w.Name, note))
			}
		}

		if !opts.IncludeDetails {
			continue
		}
		for _, w := range section.Report.Workers {
			if len(w.Entries) == 0 {
				continue
			}
			out.WriteString(fmt.Sprintf("### %s\n\n", w.Name))
			out.WriteString(RenderEntries(w.Entries, opts) + "\n")
		}
	}

	return strings.TrimRight(out.String(), "\n") + "\n"
}
