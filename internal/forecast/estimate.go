package forecast

import (
	"fmt"
	"math"
	"strings"

	"campuspulse/internal/domain"
)

const (
	baseConfidence = 0.75
	examConfidence = 0.85
)

// EstimateWait derives a repeatable minute estimate from a range. The
// arithmetic is fixed so the same range always yields the same number;
// the result is clamped so it never leaves the range.
func EstimateWait(r WaitRange) int {
	base := float64(r.Min+r.Max) / 2
	variation := float64(r.Max-r.Min) * 0.3
	timeHash := (r.Min + r.Max + r.Min*7) % 5
	estimate := int(math.Floor(base + float64(timeHash-2)*variation + 0.5))
	return min(max(estimate, r.Min), r.Max)
}

func Confidence(context string) float64 {
	if isExamPeriod(context) {
		return examConfidence
	}
	return baseConfidence
}

// Reasoning returns the one-line justification shown under a forecast.
func Reasoning(svc Service, day, clock string, level CrowdLevel, context string) string {
	switch svc {
	case domain.ServiceCanteen:
		switch level {
		case domain.CrowdHigh:
			return fmt.Sprintf("Lunch rush hour at %s typically sees peak demand with long queues forming.", clock)
		case domain.CrowdMedium:
			return fmt.Sprintf("Moderate footfall expected during %s on %s.", clock, day)
		default:
			return fmt.Sprintf("Quiet period at %s with minimal waiting expected.", clock)
		}
	case domain.ServiceLibrary:
		// Only the literal word "exam" picks the exam sentence; "preparation"
		// alone still raises the level but keeps the hour-based wording.
		if strings.Contains(strings.ToLower(context), "exam") {
			return "Exam preparation week increases library demand significantly."
		}
		switch level {
		case domain.CrowdHigh:
			return "Evening study hours attract many students seeking quiet spaces."
		case domain.CrowdLow:
			return "Morning hours are typically less crowded, ideal for focused study."
		default:
			return "Moderate occupancy expected during afternoon hours."
		}
	case domain.ServiceAdminOffice:
		if level == domain.CrowdMedium {
			return "Standard office hours see steady flow of administrative requests."
		}
		return "Off-peak hours with reduced administrative traffic."
	case domain.ServiceExamCell:
		if level == domain.CrowdHigh {
			return "Exam period or peak service hours result in extended wait times."
		}
		return "Regular service hours with moderate demand expected."
	default:
		return fmt.Sprintf("Based on typical %s patterns at %s.", day, clock)
	}
}
