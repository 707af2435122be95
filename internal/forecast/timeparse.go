package forecast

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"campuspulse/internal/domain"
)

// ErrInvalidTimeFormat is the only error Predict surfaces to callers.
var ErrInvalidTimeFormat = errors.New("invalid time format")

// ParseHour converts a 12-hour clock string such as "12:30 PM" to an hour
// in [0, 23]. Minutes are checked but otherwise ignored.
func ParseHour(s string) (int, error) {
	hour, err := domain.ParseClock(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidTimeFormat, err)
	}
	return hour, nil
}

// FormatHour renders a 24-hour value back in the "HH:MM AM" form used by
// the dashboard time pickers.
func FormatHour(hour, minute int) string {
	meridiem := "AM"
	if hour >= 12 {
		meridiem = "PM"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%02d:%02d %s", h, minute, meridiem)
}

// ResolveClock expands "now" against the given time; other input is
// returned trimmed for ParseHour to judge.
func ResolveClock(clock string, now time.Time) string {
	clock = strings.TrimSpace(clock)
	if strings.EqualFold(clock, "now") {
		return FormatHour(now.Hour(), now.Minute())
	}
	return clock
}
