package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var clockPattern = regexp.MustCompile(`(?i)^\s*(\d{1,2})(?::(\d{2}))?\s*(AM|PM)\s*$`)

// ParseClock converts a 12-hour clock string such as "12:30 PM" or "4 pm"
// to an hour in [0, 23]. Minutes are optional, checked, then dropped.
func ParseClock(s string) (int, error) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("not a 12-hour time: %q", s)
	}
	hour, _ := strconv.Atoi(m[1])
	if hour < 1 || hour > 12 {
		return 0, fmt.Errorf("hour out of range in %q", s)
	}
	if m[2] != "" {
		if minute, _ := strconv.Atoi(m[2]); minute > 59 {
			return 0, fmt.Errorf("minutes out of range in %q", s)
		}
	}

	pm := strings.EqualFold(m[3], "PM")
	switch {
	case pm && hour != 12:
		hour += 12
	case !pm && hour == 12:
		hour = 0
	}
	return hour, nil
}
