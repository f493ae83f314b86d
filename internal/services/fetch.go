package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/reaver89/time-tracker/internal/models"
	"github.com/rs/zerolog"
)

// Fetched is the outcome of one best-effort sub-fetch
type Fetched[T any] struct {
	Value T
	Err   error
}

// Or returns the fetched value, or fallback when the fetch failed
func (f Fetched[T]) Or(fallback T) T {
	if f.Err != nil {
		return fallback
	}
	return f.Value
}

// Degraded reports whether the fallback is in use
func (f Fetched[T]) Degraded() bool {
	return f.Err != nil
}

func fetch[T any](fn func() (T, error)) Fetched[T] {
	v, err := fn()
	return Fetched[T]{Value: v, Err: err}
}

// WorkerData is everything fetched for one worker over a date range
type WorkerData struct {
	AccountID           string
	Name                string
	Worklogs            []models.Worklog
	Schedule            []models.ScheduleDay
	NameUnavailable     bool
	WorklogsUnavailable bool
	ScheduleUnavailable bool
}

// Fetcher fans out the per-worker lookups against both APIs
type Fetcher struct {
	jira  IssueTracker
	tempo TimeTracker
	log   zerolog.Logger
}

// NewFetcher creates a new fetcher
func NewFetcher(jira IssueTracker, tempo TimeTracker, log zerolog.Logger) *Fetcher {
	return &Fetcher{jira: jira, tempo: tempo, log: log}
}

// FetchWorkers fetches worklogs, display name and schedule for every worker
// concurrently. Each worker writes only its own slot; a failed sub-fetch
// degrades to its fallback instead of failing the batch.
func (f *Fetcher) FetchWorkers(ctx context.Context, accountIDs []string, r models.DateRange) []WorkerData {
	results := make([]WorkerData, len(accountIDs))

	var wg sync.WaitGroup
	for i, id := range accountIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			results[i] = f.fetchWorker(ctx, id, r)
		}(i, id)
	}
	wg.Wait()

	return results
}

func (f *Fetcher) fetchWorker(ctx context.Context, accountID string, r models.DateRange) WorkerData {
	var (
		worklogs Fetched[[]models.Worklog]
		user     Fetched[models.User]
		schedule Fetched[[]models.ScheduleDay]
		wg       sync.WaitGroup
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		worklogs = fetch(func() ([]models.Worklog, error) {
			return f.tempo.ListWorklogs(ctx, r.From, r.To, accountID)
		})
	}()
	go func() {
		defer wg.Done()
		user = fetch(func() (models.User, error) {
			return f.jira.GetUser(ctx, accountID)
		})
	}()
	go func() {
		defer wg.Done()
		schedule = fetch(func() ([]models.ScheduleDay, error) {
			return f.tempo.GetUserSchedule(ctx, accountID, r.From, r.To)
		})
	}()
	wg.Wait()

	name := user.Or(models.User{}).DisplayName
	if name == "" {
		name = accountID
	}

	data := WorkerData{
		AccountID:           accountID,
		Name:                name,
		Worklogs:            worklogs.Or(nil),
		Schedule:            schedule.Or(nil),
		NameUnavailable:     user.Degraded(),
		WorklogsUnavailable: worklogs.Degraded(),
		ScheduleUnavailable: schedule.Degraded(),
	}

	for field, err := range map[string]error{"worklogs": worklogs.Err, "name": user.Err, "schedule": schedule.Err} {
		if err != nil {
			f.log.Debug().Err(err).Str("account_id", accountID).Str("field", field).Msg("worker lookup degraded")
		}
	}
	return data
}

// DisplayNames resolves display names concurrently, falling back to the id
func (f *Fetcher) DisplayNames(ctx context.Context, accountIDs []string) map[string]string {
	slots := make([]string, len(accountIDs))

	var wg sync.WaitGroup
	for i, id := range accountIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			user := fetch(func() (models.User, error) { return f.jira.GetUser(ctx, id) })
			slots[i] = user.Or(models.User{}).DisplayName
			if slots[i] == "" {
				slots[i] = id
			}
		}(i, id)
	}
	wg.Wait()

	names := make(map[string]string, len(accountIDs))
	for i, id := range accountIDs {
		names[id] = slots[i]
	}
	return names
}

// IssueLabels resolves the issues referenced by worklogs. Issues that can
// not be resolved are labeled "ISSUE #<id>".
func (f *Fetcher) IssueLabels(ctx context.Context, workers []WorkerData) map[int64]models.IssueRef {
	seen := make(map[int64]bool)
	var ids []int64
	refs := make(map[int64]models.IssueRef)

	for _, w := range workers {
		for _, wl := range w.Worklogs {
			if wl.IssueKey != "" {
				refs[wl.IssueID] = models.IssueRef{Key: wl.IssueKey, ID: wl.IssueID}
				continue
			}
			if !seen[wl.IssueID] {
				seen[wl.IssueID] = true
				ids = append(ids, wl.IssueID)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if len(ids) > 0 {
		found := fetch(func() (map[int64]models.IssueRef, error) { return f.jira.IssuesByID(ctx, ids) })
		if found.Degraded() {
			f.log.Debug().Err(found.Err).Int("issues", len(ids)).Msg("issue lookup degraded")
		}
		// a partial result is still usable
		for id, ref := range found.Value {
			refs[id] = ref
		}
	}

	for _, id := range ids {
		if ref, ok := refs[id]; !ok || ref.Key == "" {
			refs[id] = models.IssueRef{Key: fallbackLabel(models.PlanItemIssue, fmt.Sprint(id)), ID: id}
		}
	}
	return refs
}

func fallbackLabel(kind models.PlanItemType, id string) string {
	return fmt.Sprintf("%s #%s", kind, id)
}
