package report

import (
	"strings"
	"testing"
	"time"

	"campuspulse/internal/catalog"
	"campuspulse/internal/domain"
)

func TestFormatPrediction(t *testing.T) {
	got := FormatPrediction(
		domain.PredictionRequest{Service: "Canteen", Day: "Monday", Time: "12:30 PM", Context: "fest week"},
		domain.PredictionResult{CrowdLevel: domain.CrowdHigh, EstimatedWaitMinutes: 25, Confidence: 0.75, Reasoning: "Lunch rush."},
	)
	for _, want := range []string{"*Canteen* on Monday at 12:30 PM", ":red_circle: Crowd: *High*", "~25 min", "75%", "> Lunch rush.", "_Context: fest week_"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in:\n%s", want, got)
		}
	}
}

func TestFormatPredictionOmitsEmptyContext(t *testing.T) {
	got := FormatPrediction(domain.PredictionRequest{Service: "Library"}, domain.PredictionResult{CrowdLevel: domain.CrowdLow})
	if strings.Contains(got, "Context") {
		t.Fatalf("unexpected context line:\n%s", got)
	}
	if !strings.Contains(got, ":large_green_circle:") {
		t.Fatalf("expected green indicator:\n%s", got)
	}
}

func TestFormatDemand(t *testing.T) {
	menu := catalog.NewMenu(catalog.DefaultMenu())
	got := FormatDemand("Friday", menu.Annotate([]string{"Filtered Coffee", "Lemon Rice"}))
	if !strings.Contains(got, "1. Filtered Coffee (₹20.00)") {
		t.Fatalf("missing priced item:\n%s", got)
	}
	if !strings.Contains(got, "2. Lemon Rice\n") {
		t.Fatalf("missing unpriced item:\n%s", got)
	}
	if !strings.HasSuffix(got, "₹20.00") {
		t.Fatalf("expected combo total at the end:\n%s", got)
	}
}

func TestFormatUsageStats(t *testing.T) {
	since := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)
	got := FormatUsageStats([]domain.ServiceUsageStat{
		{Service: "Canteen", Count: 4, AvgWait: 17.5, LowCount: 1, MediumCount: 1, HighCount: 2},
		{Service: "Library", Count: 1, AvgWait: 5, LowCount: 1},
	}, since)

	for _, want := range []string{
		"_Since Thu Feb 5, 2026_",
		"- Predictions served: 5",
		"- Avg wait: 17.5 min",
		"- Level mix: Low 1 / Medium 1 / High 2",
		"High crowd in 50% of requests",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in:\n%s", want, got)
		}
	}
	if strings.Count(got, "High crowd in") != 1 {
		t.Fatalf("library has no high rows and should not show a share:\n%s", got)
	}
}

func TestFormatUsageStatsEmpty(t *testing.T) {
	got := FormatUsageStats(nil, time.Now())
	if !strings.HasSuffix(got, "No usage recorded yet.") {
		t.Fatalf("unexpected empty dashboard:\n%s", got)
	}
}

func TestFormatRecentPredictions(t *testing.T) {
	at := time.Date(2026, 2, 12, 7, 0, 0, 0, time.UTC)
	got := FormatRecentPredictions([]domain.PredictionRecord{
		{Service: "Exam Cell", Day: "Monday", Time: "11:00 AM", CrowdLevel: "High", EstimatedWaitMinutes: 30, Source: "rules", RecordedAt: at},
	}, time.UTC)
	if !strings.Contains(got, "- 2026-02-12 07:00  Exam Cell Monday 11:00 AM: High, ~30 min (rules)") {
		t.Fatalf("unexpected output:\n%s", got)
	}
	if FormatRecentPredictions(nil, nil) != "No predictions recorded yet." {
		t.Fatal("expected empty message")
	}
}

func TestFormatDigest(t *testing.T) {
	got := FormatDigest("CMRIT", "Monday", []DigestEntry{
		{Time: "09:00 AM", Service: "Canteen", Result: domain.PredictionResult{CrowdLevel: domain.CrowdLow, EstimatedWaitMinutes: 5}},
		{Time: "09:00 AM", Service: "Library", Result: domain.PredictionResult{CrowdLevel: domain.CrowdLow, EstimatedWaitMinutes: 6}},
		{Time: "12:30 PM", Service: "Canteen", Result: domain.PredictionResult{CrowdLevel: domain.CrowdHigh, EstimatedWaitMinutes: 25}},
	})
	want := "*Crowd digest for CMRIT: Monday*\n" +
		"\n*09:00 AM*\n" +
		":large_green_circle: Canteen: Low, ~5 min\n" +
		":large_green_circle: Library: Low, ~6 min\n" +
		"\n*12:30 PM*\n" +
		":red_circle: Canteen: High, ~25 min"
	if got != want {
		t.Fatalf("unexpected digest:\n%s\nwant:\n%s", got, want)
	}

	if empty := FormatDigest("", "Friday", nil); empty != "*Crowd digest: Friday*\nNo slots configured." {
		t.Fatalf("unexpected empty digest: %q", empty)
	}
}
