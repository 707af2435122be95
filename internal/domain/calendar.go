package domain

import (
	"strings"
	"time"
)

// Weekdays are the days the campus desks are open, in dashboard order.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

var dayMap = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday accepts a full day name in any case.
func ParseWeekday(name string) (time.Weekday, bool) {
	d, ok := dayMap[strings.ToLower(strings.TrimSpace(name))]
	return d, ok
}

// DayName returns the English day name of t in its own location.
func DayName(t time.Time) string {
	return t.Weekday().String()
}

// StatsWindowStart returns midnight `days` days before now, in now's location.
func StatsWindowStart(now time.Time, days int) time.Time {
	if days < 1 {
		days = 1
	}
	start := now.AddDate(0, 0, -days)
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, now.Location())
}

// ResolveDay expands "today" (or an empty day) against now and
// canonicalises known day names. Anything else is returned trimmed.
func ResolveDay(day string, now time.Time) string {
	day = strings.TrimSpace(day)
	if day == "" || strings.EqualFold(day, "today") {
		return DayName(now)
	}
	if wd, ok := ParseWeekday(day); ok {
		return wd.String()
	}
	return day
}
