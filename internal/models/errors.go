package models

import (
	"errors"
	"fmt"
	"strings"
)

// ParseError reports malformed user input such as a duration or a date
type ParseError struct {
	Kind     string
	Input    string
	Examples []string
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("invalid %s %q", e.Kind, e.Input)
	if len(e.Examples) > 0 {
		msg += ", accepted formats: " + strings.Join(e.Examples, ", ")
	}
	return msg
}

// NotFoundError reports an issue, user or worker that could not be resolved
type NotFoundError struct {
	Kind string
	Ref  string
	Hint string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s %q not found", e.Kind, e.Ref)
	if e.Hint != "" {
		msg += ": " + e.Hint
	}
	return msg
}

// UpstreamError reports a non-2xx response from Jira or Tempo
type UpstreamError struct {
	Service    string
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s API returned status %d for %s %s: %s", e.Service, e.StatusCode, e.Method, e.URL, e.Body)
}

// ValidationError reports a tool input that is structurally invalid
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// UserMessage renders err as the plain-text message shown to tool callers
func UserMessage(err error) string {
	var (
		parseErr      *ParseError
		notFoundErr   *NotFoundError
		upstreamErr   *UpstreamError
		validationErr *ValidationError
	)

	switch {
	case errors.As(err, &parseErr):
		msg := fmt.Sprintf("Invalid %s %q.", parseErr.Kind, parseErr.Input)
		if len(parseErr.Examples) > 0 {
			msg += " Accepted formats: " + strings.Join(parseErr.Examples, ", ")
		}
		return msg
	case errors.As(err, &notFoundErr):
		msg := fmt.Sprintf("%s %q not found.", capitalize(notFoundErr.Kind), notFoundErr.Ref)
		if notFoundErr.Hint != "" {
			msg += " " + capitalize(notFoundErr.Hint) + "."
		}
		return msg
	case errors.As(err, &upstreamErr):
		body := strings.TrimSpace(upstreamErr.Body)
		if body == "" {
			body = "(empty response)"
		}
		return fmt.Sprintf("%s API error (HTTP %d): %s", upstreamErr.Service, upstreamErr.StatusCode, body)
	case errors.As(err, &validationErr):
		return validationErr.Message
	default:
		return err.Error()
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
