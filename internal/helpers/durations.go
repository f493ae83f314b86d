package helpers

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/reaver89/time-tracker/internal/models"
)

var (
	durationPattern  = regexp.MustCompile(`(?i)^(?:(\d+(?:\.\d+)?|\.\d+)\s*h)?\s*(?:(\d+)\s*m)?$`)
	durationExamples = []string{"2h", "30m", "1h30m", "1.5h", "1h 15m"}
	startTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)(?::([0-5]\d))?$`)
)

// ParseDuration converts strings such as "1h30m" or "1.5h" into seconds
func ParseDuration(text string) (int, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, &models.ParseError{Kind: "duration", Input: text, Examples: durationExamples}
	}

	m := durationPattern.FindStringSubmatch(trimmed)
	if m == nil || (m[1] == "" && m[2] == "") {
		return 0, &models.ParseError{Kind: "duration", Input: text, Examples: durationExamples}
	}

	var total float64
	if m[1] != "" {
		hours, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, &models.ParseError{Kind: "duration", Input: text, Examples: durationExamples}
		}
		total += hours * 3600
	}
	if m[2] != "" {
		minutes, err := strconv.Atoi(m[2])
		if err != nil {
			return 0, &models.ParseError{Kind: "duration", Input: text, Examples: durationExamples}
		}
		total += float64(minutes) * 60
	}

	return int(math.Round(total)), nil
}

// FormatSeconds renders seconds as "2h 30m". Sub-minute remainders are dropped.
func FormatSeconds(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	minutes := seconds / 60
	h, m := minutes/60, minutes%60

	switch {
	case h == 0 && m == 0:
		return "0m"
	case m == 0:
		return fmt.Sprintf("%dh", h)
	case h == 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}

// FormatSignedSeconds renders a difference with an explicit sign
func FormatSignedSeconds(seconds int) string {
	switch {
	case seconds/60 > 0:
		return "+" + FormatSeconds(seconds)
	case seconds/60 < 0:
		return "-" + FormatSeconds(-seconds)
	default:
		return "0m"
	}
}

// NormalizeStartTime turns "HH:MM" into "HH:MM:00" and validates "HH:MM:SS"
func NormalizeStartTime(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	m := startTimePattern.FindStringSubmatch(trimmed)
	if m == nil {
		return "", &models.ParseError{Kind: "start time", Input: text, Examples: []string{"09:00", "13:30:00"}}
	}
	if m[3] == "" {
		return trimmed + ":00", nil
	}
	return trimmed, nil
}
