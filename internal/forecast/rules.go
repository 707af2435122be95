package forecast

import (
	"strings"

	"campuspulse/internal/domain"
)

type slot struct {
	hour       int
	day        string
	examPeriod bool
}

// rule is one guarded row; a service's rules are tried top to bottom and
// the first match wins, so overlapping hour windows depend on order.
type rule struct {
	when  func(slot) bool
	level CrowdLevel
	wait  WaitRange
}

func hours(start, end int) func(slot) bool {
	return func(s slot) bool { return s.hour >= start && s.hour < end }
}

func fromHour(start int) func(slot) bool {
	return func(s slot) bool { return s.hour >= start }
}

func always(slot) bool { return true }

func minutes(lo, hi int) WaitRange { return WaitRange{Min: lo, Max: hi} }

func examPeriod(s slot) bool { return s.examPeriod }

func examPeriodOrEarlyWeek(s slot) bool {
	day := strings.ToLower(s.day)
	return s.examPeriod || strings.Contains(day, "monday") || strings.Contains(day, "tuesday")
}

var defaultRule = rule{when: always, level: domain.CrowdMedium, wait: WaitRange{Min: 15, Max: 20}}

var ruleTable = map[Service][]rule{
	domain.ServiceCanteen: {
		{hours(8, 9), domain.CrowdLow, minutes(5, 10)},
		{hours(9, 12), domain.CrowdMedium, minutes(15, 20)},
		{hours(12, 15), domain.CrowdHigh, minutes(25, 35)},
		{hours(14, 18), domain.CrowdMedium, minutes(15, 20)},
		{always, domain.CrowdLow, minutes(5, 10)},
	},
	domain.ServiceLibrary: {
		{examPeriod, domain.CrowdHigh, minutes(25, 30)},
		{hours(8, 9), domain.CrowdLow, minutes(5, 8)},
		{hours(9, 12), domain.CrowdLow, minutes(5, 10)},
		{hours(12, 16), domain.CrowdMedium, minutes(15, 20)},
		{hours(16, 19), domain.CrowdHigh, minutes(20, 25)},
		{always, domain.CrowdMedium, minutes(15, 20)},
	},
	domain.ServiceAdminOffice: {
		{hours(9, 10), domain.CrowdLow, minutes(10, 15)},
		{hours(9, 12), domain.CrowdMedium, minutes(15, 20)},
		{hours(12, 13), domain.CrowdLow, minutes(10, 15)},
		{hours(13, 16), domain.CrowdMedium, minutes(15, 20)},
		{fromHour(16), domain.CrowdLow, minutes(10, 15)},
		{always, domain.CrowdLow, minutes(10, 15)},
	},
	domain.ServiceExamCell: {
		{examPeriodOrEarlyWeek, domain.CrowdHigh, minutes(30, 40)},
		{hours(9, 10), domain.CrowdMedium, minutes(15, 20)},
		{hours(10, 12), domain.CrowdMedium, minutes(15, 20)},
		{hours(12, 16), domain.CrowdHigh, minutes(25, 30)},
		{always, domain.CrowdMedium, minutes(15, 20)},
	},
}

// isExamPeriod reports whether free-text context signals exam season.
func isExamPeriod(context string) bool {
	lower := strings.ToLower(context)
	return strings.Contains(lower, "exam") || strings.Contains(lower, "preparation")
}

// Classify resolves the crowd level and admissible wait range for one slot.
func Classify(svc Service, day string, hour int, context string) (CrowdLevel, WaitRange) {
	s := slot{hour: hour, day: day, examPeriod: isExamPeriod(context)}
	for _, r := range ruleTable[svc] {
		if r.when(s) {
			return r.level, r.wait
		}
	}
	return defaultRule.level, defaultRule.wait
}
