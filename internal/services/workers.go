package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/reaver89/time-tracker/internal/models"
	"github.com/rs/zerolog"
)

// ResolveWorkers turns explicit account ids or display-name fragments into
// account ids. Explicit ids win; without ids or names the caller is used.
func ResolveWorkers(ctx context.Context, jira IssueTracker, ids, names []string, self string) ([]string, error) {
	if resolved := uniqueNonEmpty(ids); len(resolved) > 0 {
		return resolved, nil
	}

	fragments := uniqueNonEmpty(names)
	if len(fragments) == 0 {
		if self == "" {
			return nil, &models.ValidationError{
				Field:   "account_ids",
				Message: "no workers given and the current user is unknown; pass account_ids or worker_names",
			}
		}
		return []string{self}, nil
	}

	resolved := make([]string, 0, len(fragments))
	seen := make(map[string]bool)
	for _, name := range fragments {
		user, err := resolveWorkerName(ctx, jira, name)
		if err != nil {
			return nil, err
		}
		if !seen[user.AccountID] {
			seen[user.AccountID] = true
			resolved = append(resolved, user.AccountID)
		}
	}
	return resolved, nil
}

func resolveWorkerName(ctx context.Context, jira IssueTracker, name string) (models.User, error) {
	users, err := jira.SearchUsers(ctx, name, 20)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to look up worker %q: %w", name, err)
	}

	var candidates []models.User
	for _, u := range users {
		if u.AccountID != "" {
			candidates = append(candidates, u)
		}
	}
	if len(candidates) == 0 {
		return models.User{}, &models.NotFoundError{
			Kind: "worker",
			Ref:  name,
			Hint: "pass the account id in account_ids instead",
		}
	}

	for _, u := range candidates {
		if strings.EqualFold(strings.TrimSpace(u.DisplayName), name) {
			return u, nil
		}
	}
	return candidates[0], nil
}

// ResolveIdentity establishes the caller's account id. A configured id wins;
// otherwise the authenticated JIRA user is looked up. Failure is not fatal.
func ResolveIdentity(ctx context.Context, jira IssueTracker, configured string, log zerolog.Logger) string {
	if configured != "" {
		return configured
	}
	me, err := jira.GetMyself(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("could not resolve current user; tools will need an explicit account_id")
		return ""
	}
	log.Info().Str("account_id", me.AccountID).Str("name", me.DisplayName).Msg("resolved current user")
	return me.AccountID
}

func uniqueNonEmpty(values []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
