package report

import (
	"fmt"
	"strings"
	"time"

	"campuspulse/internal/catalog"
	"campuspulse/internal/domain"
)

// levelEmoji mirrors the dashboard's green/yellow/red crowd indicator.
func levelEmoji(level domain.CrowdLevel) string {
	switch level {
	case domain.CrowdLow:
		return ":large_green_circle:"
	case domain.CrowdMedium:
		return ":large_yellow_circle:"
	case domain.CrowdHigh:
		return ":red_circle:"
	default:
		return ":white_circle:"
	}
}

func FormatPrediction(req domain.PredictionRequest, r domain.PredictionResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*%s* on %s at %s\n", req.Service, req.Day, req.Time))
	sb.WriteString(fmt.Sprintf("%s Crowd: *%s* | Wait: ~%d min | Confidence: %.0f%%\n",
		levelEmoji(r.CrowdLevel), r.CrowdLevel, r.EstimatedWaitMinutes, r.Confidence*100))
	sb.WriteString("> " + r.Reasoning)
	if strings.TrimSpace(req.Context) != "" {
		sb.WriteString(fmt.Sprintf("\n_Context: %s_", req.Context))
	}
	return sb.String()
}

func FormatDemand(day string, items []catalog.ForecastItem) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*High-demand canteen items for %s*\n", day))
	for i, it := range items {
		if it.OnMenu {
			sb.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, it.Name, catalog.FormatPrice(it.Price)))
		} else {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, it.Name))
		}
	}
	if total := catalog.Total(items); total.IsPositive() {
		sb.WriteString(fmt.Sprintf("Combo total for listed menu items: %s", catalog.FormatPrice(total)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatUsageStats renders the per-service usage dashboard for rows
// recorded since the given time.
func FormatUsageStats(stats []domain.ServiceUsageStat, since time.Time) string {
	var sb strings.Builder
	sb.WriteString("*Campus Usage Dashboard*\n")
	sb.WriteString(fmt.Sprintf("_Since %s_\n\n", since.Format("Mon Jan 2, 2006")))

	if len(stats) == 0 {
		sb.WriteString("No usage recorded yet.")
		return sb.String()
	}

	total := 0
	for _, s := range stats {
		total += s.Count
	}
	sb.WriteString(fmt.Sprintf("- Predictions served: %d\n", total))
	for _, s := range stats {
		sb.WriteString(fmt.Sprintf("\n*%s*\n", s.Service))
		sb.WriteString(fmt.Sprintf("- Requests: %d\n", s.Count))
		sb.WriteString(fmt.Sprintf("- Avg wait: %.1f min\n", s.AvgWait))
		sb.WriteString(fmt.Sprintf("- Level mix: Low %d / Medium %d / High %d\n", s.LowCount, s.MediumCount, s.HighCount))
		if busiest := busiestShare(s); busiest != "" {
			sb.WriteString(fmt.Sprintf("- %s\n", busiest))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func busiestShare(s domain.ServiceUsageStat) string {
	if s.Count == 0 || s.HighCount == 0 {
		return ""
	}
	return fmt.Sprintf("High crowd in %.0f%% of requests", 100*float64(s.HighCount)/float64(s.Count))
}

func FormatRecentPredictions(records []domain.PredictionRecord, loc *time.Location) string {
	if len(records) == 0 {
		return "No predictions recorded yet."
	}
	if loc == nil {
		loc = time.Local
	}
	var sb strings.Builder
	sb.WriteString("*Recent Predictions*\n")
	for _, r := range records {
		sb.WriteString(fmt.Sprintf("- %s  %s %s %s: %s, ~%d min (%s)\n",
			r.RecordedAt.In(loc).Format("2006-01-02 15:04"),
			r.Service, r.Day, r.Time, r.CrowdLevel, r.EstimatedWaitMinutes, r.Source))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// DigestEntry is one service forecast inside a digest time slot.
type DigestEntry struct {
	Time    string
	Service string
	Result  domain.PredictionResult
}

// FormatDigest groups entries by time slot, keeping the order they were given in.
func FormatDigest(campus, day string, entries []DigestEntry) string {
	var sb strings.Builder
	title := "*Crowd digest"
	if campus != "" {
		title += " for " + campus
	}
	sb.WriteString(fmt.Sprintf("%s: %s*\n", title, day))

	if len(entries) == 0 {
		sb.WriteString("No slots configured.")
		return sb.String()
	}

	current := ""
	for _, e := range entries {
		if e.Time != current {
			current = e.Time
			sb.WriteString(fmt.Sprintf("\n*%s*\n", e.Time))
		}
		sb.WriteString(fmt.Sprintf("%s %s: %s, ~%d min\n",
			levelEmoji(e.Result.CrowdLevel), e.Service, e.Result.CrowdLevel, e.Result.EstimatedWaitMinutes))
	}
	return strings.TrimRight(sb.String(), "\n")
}
