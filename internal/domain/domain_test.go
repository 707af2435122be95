package domain

import (
	"testing"
	"time"
)

func TestClassifyService(t *testing.T) {
	tests := []struct {
		in   string
		want Service
	}{
		{"Canteen", ServiceCanteen},
		{"main CANTEEN", ServiceCanteen},
		{"Library", ServiceLibrary},
		{"Admin Office", ServiceAdminOffice},
		{"Administration", ServiceAdminOffice},
		{"Exam Cell", ServiceExamCell},
		{"exam cell", ServiceExamCell},
		{"Admin exam desk", ServiceAdminOffice},
		{"Gym", ServiceUnknown},
		{"", ServiceUnknown},
	}
	for _, tt := range tests {
		if got := ClassifyService(tt.in); got != tt.want {
			t.Fatalf("ClassifyService(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestCrowdLevelRank(t *testing.T) {
	if !(CrowdLow.Rank() < CrowdMedium.Rank() && CrowdMedium.Rank() < CrowdHigh.Rank()) {
		t.Fatal("expected Low < Medium < High")
	}
	if CrowdLevel("Packed").Rank() != 0 {
		t.Fatal("expected unknown level to rank 0")
	}
}

func TestWaitRangeContains(t *testing.T) {
	r := WaitRange{Min: 15, Max: 20}
	for _, m := range []int{15, 17, 20} {
		if !r.Contains(m) {
			t.Fatalf("expected %d in %v", m, r)
		}
	}
	for _, m := range []int{14, 21} {
		if r.Contains(m) {
			t.Fatalf("expected %d outside %v", m, r)
		}
	}
}

func TestParseWeekday(t *testing.T) {
	if d, ok := ParseWeekday(" monday "); !ok || d != time.Monday {
		t.Fatalf("ParseWeekday(monday) = %v, %v", d, ok)
	}
	if _, ok := ParseWeekday("Funday"); ok {
		t.Fatal("expected Funday to be rejected")
	}
}

func TestStatsWindowStart(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2026, 2, 12, 15, 4, 0, 0, loc)
	got := StatsWindowStart(now, 7)
	want := time.Date(2026, 2, 5, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("StatsWindowStart = %s, want %s", got, want)
	}
	if DayName(now) != "Thursday" {
		t.Fatalf("DayName = %s", DayName(now))
	}
}

func TestResolveDay(t *testing.T) {
	now := time.Date(2026, 2, 12, 9, 0, 0, 0, time.UTC)
	tests := map[string]string{
		"":          "Thursday",
		"today":     "Thursday",
		" TODAY ":   "Thursday",
		"monday":    "Monday",
		"Someday":   "Someday",
		" friday  ": "Friday",
	}
	for in, want := range tests {
		if got := ResolveDay(in, now); got != want {
			t.Fatalf("ResolveDay(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"12:00 AM", 0},
		{"12:00 PM", 12},
		{"01:00 AM", 1},
		{"01:00 PM", 13},
		{"4 PM", 16},
		{" 09:45 am ", 9},
		{"7:05PM", 19},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if err != nil || got != tt.want {
			t.Fatalf("ParseClock(%q) = %d, %v; want %d", tt.in, got, err, tt.want)
		}
	}
	for _, bad := range []string{"", "13:00 PM", "0:30 AM", "10:61 AM", "09:45", "noon"} {
		if _, err := ParseClock(bad); err == nil {
			t.Fatalf("expected ParseClock(%q) to fail", bad)
		}
	}
}
