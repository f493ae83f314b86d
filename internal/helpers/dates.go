package helpers

import (
	"strings"
	"time"

	"github.com/reaver89/time-tracker/internal/models"
)

// Periods accepted by the reporting tools
const (
	PeriodToday  = "today"
	PeriodWeek   = "week"
	PeriodMonth  = "month"
	PeriodCustom = "custom"
)

// Periods lists the accepted period names in display order
var Periods = []string{PeriodToday, PeriodWeek, PeriodMonth, PeriodCustom}

var (
	dateLayouts = []string{
		models.DateLayout,
		"2006/01/02",
		"02.01.2006",
		time.RFC3339,
		"2006-01-02T15:04:05",
		"Jan 2, 2006",
		"January 2, 2006",
		"2 Jan 2006",
		"2 January 2006",
	}
	dateExamples = []string{"2024-03-15", "2024/03/15", "15.03.2024", "Mar 15, 2024", "today", "yesterday"}
)

// DateOf truncates t to its calendar date at UTC midnight
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the calendar date of now
func Today(now time.Time) time.Time {
	return DateOf(now)
}

// ParseDate parses a calendar date relative to now for keywords
func ParseDate(text string, now time.Time) (time.Time, error) {
	trimmed := strings.TrimSpace(text)
	switch strings.ToLower(trimmed) {
	case "":
		return time.Time{}, &models.ParseError{Kind: "date", Input: text, Examples: dateExamples}
	case "today":
		return Today(now), nil
	case "yesterday":
		return Today(now).AddDate(0, 0, -1), nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return DateOf(t), nil
		}
	}
	return time.Time{}, &models.ParseError{Kind: "date", Input: text, Examples: dateExamples}
}

// FormatDate renders a date as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(models.DateLayout)
}

// GetWeekBounds returns Monday and Friday of the week containing ref.
// Sunday belongs to the week that started six days earlier.
func GetWeekBounds(ref time.Time) (time.Time, time.Time) {
	if ref.IsZero() {
		ref = time.Now()
	}
	day := DateOf(ref)
	offset := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 4)
}

// MonthBounds returns the first and last day of the month containing ref
func MonthBounds(ref time.Time) (time.Time, time.Time) {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

// WeekdayRange returns every calendar day from from to to inclusive,
// weekends included.
func WeekdayRange(from, to time.Time) []time.Time {
	from, to = DateOf(from), DateOf(to)
	if to.Before(from) {
		return nil
	}
	days := make([]time.Time, 0, int(to.Sub(from).Hours()/24)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// ResolvePeriod turns a period name plus optional explicit dates into a range
func ResolvePeriod(period, from, to string, now time.Time) (models.DateRange, error) {
	today := Today(now)

	switch strings.ToLower(strings.TrimSpace(period)) {
	case PeriodToday:
		return models.DateRange{From: today, To: today}, nil
	case PeriodWeek:
		monday, friday := GetWeekBounds(today)
		return models.DateRange{From: monday, To: friday}, nil
	case PeriodMonth:
		first, last := MonthBounds(today)
		return models.DateRange{From: first, To: last}, nil
	case PeriodCustom:
		var missing []string
		if strings.TrimSpace(from) == "" {
			missing = append(missing, "from")
		}
		if strings.TrimSpace(to) == "" {
			missing = append(missing, "to")
		}
		if len(missing) > 0 {
			return models.DateRange{}, &models.ValidationError{
				Field:   "period",
				Message: `"custom" requires ` + strings.Join(missing, " and ") + " (YYYY-MM-DD)",
			}
		}
		start, err := ParseDate(from, now)
		if err != nil {
			return models.DateRange{}, err
		}
		end, err := ParseDate(to, now)
		if err != nil {
			return models.DateRange{}, err
		}
		if end.Before(start) {
			return models.DateRange{}, &models.ValidationError{
				Field:   "to",
				Message: "to (" + FormatDate(end) + ") must not be before from (" + FormatDate(start) + ")",
			}
		}
		return models.DateRange{From: start, To: end}, nil
	default:
		return models.DateRange{}, &models.ValidationError{
			Field:   "period",
			Message: `period must be one of ` + strings.Join(Periods, ", ") + `, got "` + period + `"`,
		}
	}
}
