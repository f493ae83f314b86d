package services

import (
	"context"
	"fmt"

	"github.com/reaver89/time-tracker/internal/helpers"
)

// TestConnection checks both APIs with the configured credentials and prints
// the outcome of every step.
func TestConnection(ctx context.Context, jira IssueTracker, tempo TimeTracker) error {
	var failed int

	helpers.PrintInfo("Testing JIRA authentication...")
	me, err := jira.GetMyself(ctx)
	if err != nil {
		failed++
		helpers.PrintError("JIRA authentication failed: %v", err)
	} else {
		helpers.PrintSuccess("Authenticated to JIRA as %s (%s)", me.DisplayName, me.AccountID)
	}

	helpers.PrintInfo("Testing Tempo authentication...")
	teams, err := tempo.ListTeams(ctx)
	if err != nil {
		failed++
		helpers.PrintError("Tempo authentication failed: %v", err)
	} else {
		helpers.PrintSuccess("Authenticated to Tempo, %d teams visible", len(teams))
		if me.AccountID != "" {
			for _, team := range teams {
				if team.LeadID == me.AccountID {
					helpers.PrintInfo("  You lead %s (id %d)", team.Name, team.ID)
				}
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of 2 connectivity checks failed", failed)
	}
	helpers.PrintSuccess("All connectivity checks passed")
	return nil
}
