package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/reaver89/time-tracker/internal/helpers"
	"github.com/reaver89/time-tracker/internal/models"
	"github.com/rs/zerolog"
)

// PlanRow is a plan with its assignee and plan item resolved for display
type PlanRow struct {
	Plan     models.Plan
	Assignee string
	Item     string
}

// PlanReport lists the plans of a user or a team over a range
type PlanReport struct {
	Range models.DateRange
	Scope string
	Rows  []PlanRow
}

// TotalInScope sums the planned time that falls inside the range
func (r PlanReport) TotalInScope() int {
	total := 0
	for _, row := range r.Rows {
		total += row.Plan.TotalSecondsInScope
	}
	return total
}

// PlanService lists resource plans
type PlanService struct {
	jira    IssueTracker
	tempo   TimeTracker
	fetcher *Fetcher
	log     zerolog.Logger
}

// NewPlanService creates a new plan service
func NewPlanService(jira IssueTracker, tempo TimeTracker, log zerolog.Logger) *PlanService {
	return &PlanService{
		jira:    jira,
		tempo:   tempo,
		fetcher: NewFetcher(jira, tempo, log),
		log:     log,
	}
}

// Plans lists the plans of every member of teamID, or of accountID (falling
// back to self) when teamID is zero.
func (s *PlanService) Plans(ctx context.Context, accountID string, teamID int64, self string, r models.DateRange) (PlanReport, error) {
	report := PlanReport{Range: r}

	var plans []models.Plan
	switch {
	case teamID != 0:
		members, err := s.tempo.ListTeamMembers(ctx, teamID)
		if err != nil {
			return report, err
		}
		report.Scope = "team " + strconv.FormatInt(teamID, 10)

		ids := make([]string, 0, len(members))
		for _, m := range members {
			ids = append(ids, m.AccountID)
		}
		ids = uniqueNonEmpty(ids)
		if len(ids) == 0 {
			return report, nil
		}
		if plans, err = s.tempo.SearchPlans(ctx, models.PlanFilter{From: r.From, To: r.To, AssigneeIDs: ids}); err != nil {
			return report, err
		}
	default:
		if accountID == "" {
			accountID = self
		}
		if accountID == "" {
			return report, &models.ValidationError{
				Field:   "account_id",
				Message: "the current user is unknown; pass account_id or team_id",
			}
		}
		report.Scope = accountID

		var err error
		if plans, err = s.tempo.ListUserPlans(ctx, accountID, r.From, r.To); err != nil {
			return report, err
		}
	}

	labels := s.itemLabels(ctx, plans)

	assignees := []string{accountID}
	for _, p := range plans {
		assignees = append(assignees, p.AssigneeID)
	}
	names := s.fetcher.DisplayNames(ctx, uniqueNonEmpty(assignees))
	if teamID == 0 && names[accountID] != "" {
		report.Scope = names[accountID]
	}

	for _, p := range plans {
		assignee := names[p.AssigneeID]
		if assignee == "" {
			assignee = p.AssigneeID
		}
		report.Rows = append(report.Rows, PlanRow{Plan: p, Assignee: assignee, Item: labels[itemRef(p)]})
	}

	sort.SliceStable(report.Rows, func(i, j int) bool {
		a, b := report.Rows[i].Plan, report.Rows[j].Plan
		if a.StartDate != b.StartDate {
			return a.StartDate < b.StartDate
		}
		return a.ItemID < b.ItemID
	})
	return report, nil
}

func itemRef(p models.Plan) string {
	return string(p.ItemType) + ":" + p.ItemID
}

// itemLabels resolves every distinct plan item concurrently, one lookup per
// item. Items that can not be resolved get a "<TYPE> #<id>" label.
func (s *PlanService) itemLabels(ctx context.Context, plans []models.Plan) map[string]string {
	var items []models.Plan
	seen := make(map[string]bool)
	for _, p := range plans {
		if ref := itemRef(p); !seen[ref] {
			seen[ref] = true
			items = append(items, p)
		}
	}

	slots := make([]string, len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item models.Plan) {
			defer wg.Done()
			label := fetch(func() (string, error) { return s.itemLabel(ctx, item) })
			if label.Degraded() {
				s.log.Debug().Err(label.Err).Str("item", itemRef(item)).Msg("plan item lookup degraded")
			}
			slots[i] = label.Or("")
			if slots[i] == "" {
				slots[i] = fallbackLabel(item.ItemType, item.ItemID)
			}
		}(i, item)
	}
	wg.Wait()

	labels := make(map[string]string, len(items))
	for i, item := range items {
		labels[itemRef(item)] = slots[i]
	}
	return labels
}

func (s *PlanService) itemLabel(ctx context.Context, item models.Plan) (string, error) {
	id, err := strconv.ParseInt(item.ItemID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("plan item id %q is not numeric", item.ItemID)
	}

	switch item.ItemType {
	case models.PlanItemIssue:
		found, err := s.jira.IssuesByID(ctx, []int64{id})
		if err != nil {
			return "", err
		}
		ref, ok := found[id]
		if !ok || ref.Key == "" {
			return "", nil
		}
		return joinLabel(ref.Key, ref.Summary), nil
	case models.PlanItemProject:
		project, err := s.jira.GetProject(ctx, id)
		if err != nil {
			return "", err
		}
		if project.Key == "" {
			return "", nil
		}
		return joinLabel(project.Key, project.Name), nil
	default:
		return "", nil
	}
}

func joinLabel(key, name string) string {
	if name == "" {
		return key
	}
	return key + " — " + name
}

// RenderPlans renders a plan report as Markdown
func RenderPlans(report PlanReport) string {
	var out strings.Builder
	out.WriteString(fmt.Sprintf("# Plans for %s\n\n", report.Scope))
	out.WriteString(fmt.Sprintf("**Period:** %s\n\n", report.Range))

	if len(report.Rows) == 0 {
		out.WriteString("No plans found in this period.\n")
		return out.String()
	}

	table := helpers.NewMarkdownTable("Start", "End", "Assignee", "Item", "Per day", "In range", "Total", "Description")
	for _, row := range report.Rows {
		p := row.Plan
		table.AddRow(
			p.StartDate,
			p.EndDate,
			row.Assignee,
			helpers.Truncate(row.Item, DefaultSummaryWidth),
			helpers.FormatSeconds(p.SecondsPerDay),
			helpers.FormatSeconds(p.TotalSecondsInScope),
			helpers.FormatSeconds(p.TotalSeconds),
			helpers.Truncate(p.Description, DefaultDescriptionWidth),
		)
	}
	out.WriteString(table.String())
	out.WriteString(fmt.Sprintf("\n**Total planned in range:** %s across %d plans\n", helpers.FormatSeconds(report.TotalInScope()), len(report.Rows)))
	return out.String()
}
