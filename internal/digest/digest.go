// Package digest posts a scheduled crowd outlook for the day to Slack.
package digest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/slack-go/slack"

	"campuspulse/internal/catalog"
	"campuspulse/internal/domain"
	"campuspulse/internal/report"
)

// Build predicts every known service at each of the given times and
// appends the demand forecast for day.
func Build(ctx context.Context, engine Predictor, menu *catalog.Menu, campus, day string, times []string) string {
	var entries []report.DigestEntry
	for _, clock := range times {
		for _, svc := range domain.KnownServices {
			req := domain.PredictionRequest{Service: svc.String(), Day: day, Time: clock}
			result, err := engine.Predict(ctx, req)
			if err != nil {
				log.Printf("digest skipped slot service=%s time=%q: %v", svc, clock, err)
				continue
			}
			entries = append(entries, report.DigestEntry{Time: clock, Service: svc.String(), Result: result})
		}
	}

	if menu == nil {
		menu = catalog.NewMenu(catalog.DefaultMenu())
	}
	demand := report.FormatDemand(day, menu.Annotate(engine.ForecastDemand(ctx, day)))
	return report.FormatDigest(campus, day, entries) + "\n\n" + demand
}

// Deliver posts text to the digest channel and as a DM to each subscriber.
// It returns how many messages were sent.
func Deliver(api *slack.Client, channelID string, subscriberIDs []string, text string) (int, error) {
	sent := 0
	var errs []error

	if channelID != "" {
		if _, _, err := api.PostMessage(channelID, slack.MsgOptionText(text, false)); err != nil {
			log.Printf("digest post error channel=%s: %v", channelID, err)
			errs = append(errs, fmt.Errorf("channel %s: %w", channelID, err))
		} else {
			sent++
		}
	}

	for _, userID := range subscriberIDs {
		channel, _, _, err := api.OpenConversation(&slack.OpenConversationParameters{
			Users: []string{userID},
		})
		if err != nil {
			log.Printf("Error opening DM with %s: %v", userID, err)
			errs = append(errs, fmt.Errorf("dm %s: %w", userID, err))
			continue
		}

		_, _, err = api.PostMessage(channel.ID, slack.MsgOptionText(text, false))
		if err != nil {
			log.Printf("Error sending digest to %s: %v", userID, err)
			errs = append(errs, fmt.Errorf("dm %s: %w", userID, err))
		} else {
			log.Printf("Sent digest to %s", userID)
			sent++
		}
	}
	return sent, errors.Join(errs...)
}

// StartScheduler runs the digest on the configured 5-field cron schedule,
// e.g. "0 8 * * 1-5" for weekdays at 8am. It reports whether a scheduler
// was started.
func StartScheduler(cfg Config, engine Predictor, menu *catalog.Menu, api *slack.Client) bool {
	schedule := strings.TrimSpace(cfg.DigestSchedule)
	if schedule == "" {
		log.Println("Digest disabled (digest_schedule not set)")
		return false
	}
	if cfg.DigestChannelID == "" && len(cfg.DigestSubscribers) == 0 {
		log.Println("Digest disabled: neither digest_channel_id nor digest_subscribers is set")
		return false
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Printf("Invalid digest_schedule '%s': %v, digest disabled", schedule, err)
		return false
	}

	var subscriberIDs []string
	if len(cfg.DigestSubscribers) > 0 {
		ids, unresolved, err := resolveUserIDs(api, cfg.DigestSubscribers)
		if err != nil {
			log.Printf("Error resolving digest_subscribers: %v", err)
		}
		if len(unresolved) > 0 {
			log.Printf("Unresolved digest_subscribers: %s", strings.Join(unresolved, ", "))
		}
		subscriberIDs = ids
	}
	if cfg.DigestChannelID == "" && len(subscriberIDs) == 0 {
		log.Println("Digest disabled: no digest_subscribers could be resolved")
		return false
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	log.Printf("Digest scheduled (cron: %s) slots=%d subscribers=%d", schedule, len(cfg.DigestTimes), len(subscriberIDs))

	go func() {
		for {
			now := time.Now().In(loc)
			next := sched.Next(now)
			wait := next.Sub(now)
			log.Printf("Next digest at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

			time.Sleep(wait)

			day := domain.DayName(time.Now().In(loc))
			text := Build(context.Background(), engine, menu, cfg.CampusName, day, cfg.DigestTimes)
			sent, sendErr := Deliver(api, cfg.DigestChannelID, subscriberIDs, text)
			if sendErr != nil {
				log.Printf("Digest delivery error (non-fatal): %v", sendErr)
			}
			log.Printf("Digest complete day=%s sent=%d", day, sent)
		}
	}()
	return true
}
