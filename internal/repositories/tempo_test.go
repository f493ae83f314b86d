package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/reaver89/time-tracker/internal/config"
	"github.com/reaver89/time-tracker/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTempoTestRepo(t *testing.T, handler http.HandlerFunc) (*TempoRepository, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.TempoConfig{BaseURL: srv.URL, APIToken: "tempo-token", Timeout: 5, PageSize: 2}
	return NewTempoRepository(cfg, zerolog.Nop()), srv
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

var (
	rangeFrom = time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC)
	rangeTo   = time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
)

func TestTempoRepository_ListWorklogs_FollowsNextUntilExhausted(t *testing.T) {
	var srvURL string
	calls := 0
	repo, srv := newTempoTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "Bearer tempo-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/worklogs/user/acc-1", r.URL.Path)

		switch r.URL.Query().Get("offset") {
		case "":
			assert.Equal(t, "2024-03-11", r.URL.Query().Get("from"))
			assert.Equal(t, "2024-03-15", r.URL.Query().Get("to"))
			assert.Equal(t, "2", r.URL.Query().Get("limit"))
			writeJSON(t, w, map[string]any{
				"metadata": map[string]any{"count": 2, "next": srvURL + "/worklogs/user/acc-1?offset=2"},
				"results": []map[string]any{
					{"tempoWorklogId": 1, "issue": map[string]any{"id": 100}, "timeSpentSeconds": 3600, "billableSeconds": 3600, "startDate": "2024-03-11"},
					{"tempoWorklogId": 2, "issue": map[string]any{"id": 101}, "timeSpentSeconds": 1800, "startDate": "2024-03-12"},
				},
			})
		case "2":
			writeJSON(t, w, map[string]any{
				"metadata": map[string]any{"count": 2, "next": srvURL + "/worklogs/user/acc-1?offset=4"},
				"results": []map[string]any{
					{"tempoWorklogId": 3, "timeSpentSeconds": 600, "billableSeconds": 9999, "startDate": "2024-03-13"},
					{"tempoWorklogId": 4, "timeSpentSeconds": 60, "startDate": "2024-03-13", "author": map[string]any{"accountId": "acc-1"}},
				},
			})
		case "4":
			writeJSON(t, w, map[string]any{
				"metadata": map[string]any{"count": 1},
				"results":  []map[string]any{{"tempoWorklogId": 5, "timeSpentSeconds": 120, "startDate": "2024-03-14"}},
			})
		default:
			t.Errorf("unexpected offset %q", r.URL.Query().Get("offset"))
		}
	})
	srvURL = srv.URL

	worklogs, err := repo.ListWorklogs(context.Background(), rangeFrom, rangeTo, "acc-1")
	require.NoError(t, err)
	require.Len(t, worklogs, 5)
	assert.Equal(t, 3, calls)

	ids := make([]int64, len(worklogs))
	for i, wl := range worklogs {
		ids[i] = wl.ID
		assert.Equal(t, "acc-1", wl.AuthorID)
	}
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids)
	assert.Equal(t, int64(100), worklogs[0].IssueID)
	assert.Equal(t, 3600, worklogs[0].BillableSeconds)
	assert.Equal(t, 0, worklogs[1].BillableSeconds)
	assert.Equal(t, 600, worklogs[2].BillableSeconds, "billable is clamped to the logged time")
}

func TestTempoRepository_ListWorklogs_AllAuthors(t *testing.T) {
	repo, _ := newTempoTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/worklogs", r.URL.Path)
		writeJSON(t, w, map[string]any{"metadata": map[string]any{}, "results": []any{}})
	})

	worklogs, err := repo.ListWorklogs(context.Background(), rangeFrom, rangeTo, "")
	require.NoError(t, err)
	assert.Empty(t, worklogs)
}

func TestTempoRepository_ListWorklogs_UpstreamError(t *testing.T) {
	repo, _ := newTempoTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"errors":[{"message":"bad token"}]}`)
	})

	_, err := repo.ListWorklogs(context.Background(), rangeFrom, rangeTo, "acc-1")
	var upstream *models.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusUnauthorized, upstream.StatusCode)
	assert.Equal(t, "Tempo", upstream.Service)
	assert.Contains(t, upstream.Body, "bad token")
}

func TestTempoRepository_CreateWorklog(t *testing.T) {
	repo, _ := newTempoTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/worklogs", r.URL.Path)

		var body models.TempoWorklogRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(10001), body.IssueID)
		assert.Equal(t, 5400, body.TimeSpentSeconds)
		assert.Equal(t, "2024-03-12", body.StartDate)
		assert.Equal(t, "09:30:00", body.StartTime)
		assert.Equal(t, "acc-1", body.AuthorAccountID)
		assert.Equal(t, []models.TempoAttribute{{Key: "_Account_", Value: "ACME"}}, body.Attributes)

		writeJSON(t, w, map[string]any{
			"tempoWorklogId":   777,
			"issue":            map[string]any{"id": 10001},
			"timeSpentSeconds": 5460,
			"startDate":        "2024-03-12",
			"startTime":        "09:30:00",
			"author":           map[string]any{"accountId": "acc-1"},
		})
	})

	wl, err := repo.CreateWorklog(context.Background(), models.WorklogInput{
		IssueID:    10001,
		Seconds:    5400,
		StartDate:  "2024-03-12",
		StartTime:  "09:30",
		AuthorID:   "acc-1",
		Attributes: []models.WorkAttribute{{Key: "_Account_", Value: "ACME"}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(777), wl.ID)
	assert.Equal(t, 5460, wl.Seconds, "the response is authoritative")
	assert.Equal(t, "2024-03-12", wl.Date)
}

func TestTempoRepository_CreateWorklog_RejectsBadStartTime(t *testing.T) {
	repo, _ := newTempoTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := repo.CreateWorklog(context.Background(), models.WorklogInput{IssueID: 1, Seconds: 60, StartTime: "9am"})
	var perr *models.ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestTempoRepository_DefaultBillingAccount(t *testing.T) {
	tests := []struct {
		name    string
		handler func(t *testing.T, w http.ResponseWriter, r *http.Request)
		wantKey string
		wantOK  bool
	}{
		{
			name: "first link when none is default",
			handler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, map[string]any{"results": []map[string]any{
					{"id": 1, "default": false, "account": map[string]any{"key": "FIRST"}},
					{"id": 2, "default": false, "account": map[string]any{"key": "SECOND"}},
				}})
			},
			wantKey: "FIRST",
			wantOK:  true,
		},
		{
			name: "default link wins",
			handler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, map[string]any{"results": []map[string]any{
					{"id": 1, "default": false, "account": map[string]any{"key": "FIRST"}},
					{"id": 2, "default": true, "account": map[string]any{"key": "DEFAULT"}},
				}})
			},
			wantKey: "DEFAULT",
			wantOK:  true,
		},
		{
			name: "account resolved from self url",
			handler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/account-links/project/10000":
					writeJSON(t, w, map[string]any{"results": []map[string]any{
						{"id": 1, "default": true, "account": map[string]any{"self": "https://api.tempo.io/4/accounts/42"}},
					}})
				case "/accounts/42":
					writeJSON(t, w, map[string]any{"id": 42, "key": "LOOKED-UP"})
				default:
					t.Errorf("unexpected path %s", r.URL.Path)
				}
			},
			wantKey: "LOOKED-UP",
			wantOK:  true,
		},
		{
			name: "no links",
			handler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, map[string]any{"results": []any{}})
			},
		},
		{
			name: "lookup failure is no default",
			handler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "account lookup failure is no default",
			handler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/accounts/42" {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				writeJSON(t, w, map[string]any{"results": []map[string]any{
					{"id": 1, "account": map[string]any{"self": "https://api.tempo.io/4/accounts/42"}},
				}})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _ := newTempoTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
				tt.handler(t, w, r)
			})
			key, ok := repo.DefaultBillingAccount(context.Background(), 10000)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestTempoRepository_TeamsAndMembers(t *testing.T) {
	repo, _ := newTempoTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/teams":
			writeJSON(t, w, map[string]any{"results": []map[string]any{
				{"id": 7, "name": "Platform", "lead": map[string]any{"accountId": "lead-1"}},
				{"id": 8, "name": "Orphans"},
			}})
		case "/teams/7/members":
			writeJSON(t, w, map[string]any{"results": []map[string]any{
				{"member": map[string]any{"accountId": "acc-1"}, "memberships": map[string]any{"active": map[string]any{"role": map[string]any{"id": 3, "name": "Developer"}}}},
				{"member": map[string]any{"accountId": "acc-2"}},
				{"memberships": map[string]any{}},
			}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	teams, err := repo.ListTeams(context.Background())
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, models.Team{ID: 7, Name: "Platform", LeadID: "lead-1"}, teams[0])
	assert.Equal(t, "", teams[1].LeadID)

	members, err := repo.ListTeamMembers(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, models.TeamMember{TeamID: 7, AccountID: "acc-1", RoleID: 3, RoleName: "Developer"}, members[0])
	assert.Equal(t, "", members[1].RoleName)
}

func TestTempoRepository_ScheduleAndPlans(t *testing.T) {
	repo, _ := newTempoTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user-schedule/acc-1":
			writeJSON(t, w, map[string]any{"results": []map[string]any{
				{"date": "2024-03-11", "requiredSeconds": 28800, "type": "WORKING_DAY"},
				{"date": "2024-03-12", "requiredSeconds": 0, "type": "HOLIDAY"},
			}})
		case "/plans/user/acc-1":
			writeJSON(t, w, map[string]any{"results": []map[string]any{
				{"id": 1, "startDate": "2024-03-11", "endDate": "2024-03-15", "plannedSecondsPerDay": 3600,
					"totalPlannedSecondsInScope": 18000, "totalPlannedSeconds": 36000,
					"assignee": map[string]any{"id": "acc-1", "type": "USER"},
					"planItem": map[string]any{"id": 10001, "type": "ISSUE"}},
			}})
		case "/plans":
			q := r.URL.Query()
			assert.Equal(t, []string{"acc-1", "acc-2"}, q["assigneeIds"])
			assert.Equal(t, "USER", q.Get("assigneeTypes"))
			assert.Equal(t, []string{"PROJECT"}, q["planItemTypes"])
			writeJSON(t, w, map[string]any{"results": []map[string]any{
				{"id": 2, "planItem": map[string]any{"id": "10000", "type": "PROJECT"}},
			}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	ctx := context.Background()

	days, err := repo.GetUserSchedule(ctx, "acc-1", rangeFrom, rangeTo)
	require.NoError(t, err)
	assert.Equal(t, []models.ScheduleDay{
		{Date: "2024-03-11", RequiredSeconds: 28800, Type: "WORKING_DAY"},
		{Date: "2024-03-12", RequiredSeconds: 0, Type: "HOLIDAY"},
	}, days)

	plans, err := repo.ListUserPlans(ctx, "acc-1", rangeFrom, rangeTo)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "10001", plans[0].ItemID)
	assert.Equal(t, models.PlanItemIssue, plans[0].ItemType)
	assert.Equal(t, 18000, plans[0].TotalSecondsInScope)
	assert.Equal(t, 36000, plans[0].TotalSeconds)
	assert.Equal(t, "acc-1", plans[0].AssigneeID)

	plans, err = repo.SearchPlans(ctx, models.PlanFilter{
		From:          rangeFrom,
		To:            rangeTo,
		AssigneeIDs:   []string{"acc-1", "acc-2"},
		PlanItemTypes: []models.PlanItemType{models.PlanItemProject},
	})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "10000", plans[0].ItemID)
	assert.Equal(t, "", plans[0].AssigneeID)
}
