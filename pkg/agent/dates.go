package agent

import (
	"strings"
	"time"
)

// DateRange is an inclusive date window resolved from natural language.
type DateRange struct {
	Start time.Time
	End   time.Time
}

var monthNames = []struct {
	name  string
	month time.Month
}{
	{"january", time.January}, {"february", time.February}, {"march", time.March},
	{"april", time.April}, {"may", time.May}, {"june", time.June},
	{"july", time.July}, {"august", time.August}, {"september", time.September},
	{"october", time.October}, {"november", time.November}, {"december", time.December},
}

// ParseDateRange resolves date phrases in a query relative to today.
// Recognized phrases: "next week", "this week", "next month",
// "last week of <month>" / "end of <month>", and "last week of next
// month". Returns nil when no phrase matches; the caller picks its own
// default window.
func ParseDateRange(query string, today time.Time) *DateRange {
	lower := strings.ToLower(query)
	day := midnight(today)

	if strings.Contains(lower, "next week") {
		start := day.AddDate(0, 0, 7-mondayIndex(day))
		return &DateRange{Start: start, End: start.AddDate(0, 0, 6)}
	}

	for _, m := range monthNames {
		name, month := m.name, m.month
		if !strings.Contains(lower, "last week of "+name) && !strings.Contains(lower, "end of "+name) {
			continue
		}
		year := day.Year()
		// roll to next year when the named month has already passed,
		// or its last week already started
		if month < day.Month() || (month == day.Month() && day.Day() > 21) {
			year++
		}
		end := lastDayOfMonth(year, month, day.Location())
		return &DateRange{Start: end.AddDate(0, 0, -6), End: end}
	}

	if strings.Contains(lower, "last week of next month") ||
		strings.Contains(lower, "end of next month") ||
		strings.Contains(lower, "final week of next month") {
		year, month := nextMonth(day)
		end := lastDayOfMonth(year, month, day.Location())
		return &DateRange{Start: end.AddDate(0, 0, -6), End: end}
	}

	if strings.Contains(lower, "next month") && !strings.Contains(lower, "last week") {
		year, month := nextMonth(day)
		start := time.Date(year, month, 1, 0, 0, 0, 0, day.Location())
		return &DateRange{Start: start, End: lastDayOfMonth(year, month, day.Location())}
	}

	if strings.Contains(lower, "this week") {
		start := day.AddDate(0, 0, -mondayIndex(day))
		return &DateRange{Start: start, End: start.AddDate(0, 0, 6)}
	}

	return nil
}

// mondayIndex is the weekday with Monday as 0 and Sunday as 6.
func mondayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func nextMonth(t time.Time) (int, time.Month) {
	if t.Month() == time.December {
		return t.Year() + 1, time.January
	}
	return t.Year(), t.Month() + 1
}

func lastDayOfMonth(year int, month time.Month, loc *time.Location) time.Time {
	// day 0 of the following month
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc)
}
