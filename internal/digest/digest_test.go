package digest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/slack-go/slack"

	"campuspulse/internal/forecast"
)

func TestBuildCoversEveryServiceAndSlot(t *testing.T) {
	got := Build(context.Background(), forecast.NewEngine(nil), nil, "CMRIT", "Monday", []string{"09:00 AM", "12:30 PM"})

	for _, want := range []string{
		"*Crowd digest for CMRIT: Monday*",
		"*09:00 AM*",
		"*12:30 PM*",
		"Canteen: High",
		"Exam Cell: High",
		"*High-demand canteen items for Monday*",
		"Hyderabadi Biryani (₹120.00)",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in digest:\n%s", want, got)
		}
	}
	if n := strings.Count(got, "Library:"); n != 2 {
		t.Fatalf("expected Library once per slot, got %d:\n%s", n, got)
	}
}

func TestBuildSkipsUnreadableTimes(t *testing.T) {
	got := Build(context.Background(), forecast.NewEngine(nil), nil, "", "Friday", []string{"noon"})
	if strings.Contains(got, "noon") {
		t.Fatalf("unreadable slot should be skipped:\n%s", got)
	}
	if !strings.Contains(got, "No slots configured.") {
		t.Fatalf("expected empty slot notice:\n%s", got)
	}
}

type slackCalls struct {
	mu       sync.Mutex
	opened   []string
	postedTo []string
}

func newMockSlackAPI(t *testing.T, failOpen string) (*slack.Client, *slackCalls) {
	t.Helper()
	calls := &slackCalls{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		calls.mu.Lock()
		defer calls.mu.Unlock()
		switch strings.TrimPrefix(r.URL.Path, "/api/") {
		case "conversations.open":
			user := r.Form.Get("users")
			if user == failOpen {
				_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "user_not_found"})
				return
			}
			calls.opened = append(calls.opened, user)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"ok":      true,
				"channel": map[string]any{"id": "D" + user},
			})
		case "chat.postMessage":
			calls.postedTo = append(calls.postedTo, r.Form.Get("channel"))
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "channel": r.Form.Get("channel"), "ts": "1.0"})
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
		}
	}))
	t.Cleanup(server.Close)
	return slack.New("xoxb-test", slack.OptionAPIURL(server.URL+"/api/")), calls
}

func TestDeliverPostsToChannelAndSubscribers(t *testing.T) {
	api, calls := newMockSlackAPI(t, "")

	sent, err := Deliver(api, "C_DIGEST", []string{"U11111111", "U22222222"}, "digest")
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if sent != 3 {
		t.Fatalf("expected 3 messages, got %d", sent)
	}
	want := []string{"C_DIGEST", "DU11111111", "DU22222222"}
	if strings.Join(calls.postedTo, ",") != strings.Join(want, ",") {
		t.Fatalf("posted to %v, want %v", calls.postedTo, want)
	}
}

func TestDeliverContinuesAfterDMFailure(t *testing.T) {
	api, calls := newMockSlackAPI(t, "U11111111")

	sent, err := Deliver(api, "", []string{"U11111111", "U22222222"}, "digest")
	if err == nil {
		t.Fatal("expected joined error for failed DM")
	}
	if sent != 1 || len(calls.postedTo) != 1 || calls.postedTo[0] != "DU22222222" {
		t.Fatalf("unexpected delivery sent=%d posted=%v", sent, calls.postedTo)
	}
}

func TestStartSchedulerDisabled(t *testing.T) {
	api, _ := newMockSlackAPI(t, "")
	engine := forecast.NewEngine(nil)

	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "no schedule", cfg: Config{DigestChannelID: "C1"}},
		{name: "no destination", cfg: Config{DigestSchedule: "0 8 * * 1-5"}},
		{name: "bad schedule", cfg: Config{DigestSchedule: "every morning", DigestChannelID: "C1"}},
	}
	for _, tt := range tests {
		if StartScheduler(tt.cfg, engine, nil, api) {
			t.Fatalf("%s: scheduler should not start", tt.name)
		}
	}
}

func TestStartSchedulerStarts(t *testing.T) {
	api, _ := newMockSlackAPI(t, "")
	cfg := Config{DigestSchedule: "0 8 * * 1-5", DigestChannelID: "C1", DigestTimes: []string{"09:00 AM"}}
	if !StartScheduler(cfg, forecast.NewEngine(nil), nil, api) {
		t.Fatal("expected scheduler to start")
	}
}
