package slackbot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"campuspulse/internal/catalog"
	"campuspulse/internal/domain"
	"campuspulse/internal/forecast"
	"campuspulse/internal/history"
	"campuspulse/internal/report"
	"campuspulse/internal/storage"
)

const statsWindowDays = 7
const historyLimit = 10

const crowdUsage = "Usage: `/crowd <service>, <day>, <time>[, <context>]`\n" +
	">*Example:* `/crowd Canteen, Monday, 12:30 PM`\n" +
	">*With context:* `/crowd Library, today, 02:00 PM, exam preparation week`"

var errCrowdUsage = errors.New("crowd: expected service, day and time")

// Predictor is the part of the forecast engine the bot needs.
type Predictor interface {
	Predict(ctx context.Context, req PredictionRequest) (PredictionResult, error)
	ForecastDemand(ctx context.Context, day string) []string
}

type Bot struct {
	cfg     Config
	engine  Predictor
	sink    *history.Sink
	reader  storage.Reader
	menu    *catalog.Menu
	tracker *forecast.Tracker
	now     func() time.Time
}

// NewBot wires the command handlers. reader may be nil when no readable
// history store is configured.
func NewBot(cfg Config, engine Predictor, sink *history.Sink, reader storage.Reader, menu *catalog.Menu) *Bot {
	if menu == nil {
		menu = catalog.NewMenu(catalog.DefaultMenu())
	}
	return &Bot{
		cfg:     cfg,
		engine:  engine,
		sink:    sink,
		reader:  reader,
		menu:    menu,
		tracker: forecast.NewTracker(),
		now:     time.Now,
	}
}

func (b *Bot) location() *time.Location {
	if b.cfg.Location != nil {
		return b.cfg.Location
	}
	return time.Local
}

func (b *Bot) Start(api *slack.Client) error {
	client := socketmode.New(api)

	go func() {
		for evt := range client.Events {
			switch evt.Type {
			case socketmode.EventTypeSlashCommand:
				client.Ack(*evt.Request)
				cmd, ok := evt.Data.(slack.SlashCommand)
				if !ok {
					continue
				}
				log.Printf("Slash command received: %s from user=%s channel=%s", cmd.Command, cmd.UserID, cmd.ChannelID)
				go b.handleSlashCommand(api, cmd)
			case socketmode.EventTypeEventsAPI:
				client.Ack(*evt.Request)
				eventsAPIEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
				if !ok {
					continue
				}
				go b.handleEventsAPI(api, eventsAPIEvent)
			}
		}
	}()

	log.Println("Slack bot connected via Socket Mode")
	return client.Run()
}

func (b *Bot) handleSlashCommand(api *slack.Client, cmd slack.SlashCommand) {
	switch cmd.Command {
	case "/crowd":
		b.handleCrowd(api, cmd)
	case "/menu-forecast":
		b.handleMenuForecast(api, cmd)
	case "/crowd-stats":
		b.handleCrowdStats(api, cmd)
	case "/crowd-history":
		b.handleCrowdHistory(api, cmd)
	case "/crowd-help":
		b.handleHelp(api, cmd)
	}
}

func (b *Bot) handleEventsAPI(api *slack.Client, event slackevents.EventsAPIEvent) {
	if event.Type != slackevents.CallbackEvent {
		return
	}
	switch ev := event.InnerEvent.Data.(type) {
	case *slackevents.MemberJoinedChannelEvent:
		b.handleMemberJoined(api, ev)
	}
}

func (b *Bot) handleMemberJoined(api *slack.Client, ev *slackevents.MemberJoinedChannelEvent) {
	log.Printf("member-joined user=%s channel=%s", ev.User, ev.Channel)

	intro := fmt.Sprintf("Welcome! I forecast queues at the %s campus desks.\n\n"+
		"• `/crowd Canteen, today, 12:30 PM` — Crowd level and wait time for a service\n"+
		"• `/menu-forecast` — Today's high-demand canteen items\n"+
		"• `/crowd-help` — See all available commands",
		b.cfg.CampusName,
	)

	_, _, err := api.PostMessage(ev.Channel,
		slack.MsgOptionText(intro, false),
		slack.MsgOptionPostEphemeral(ev.User),
	)
	if err != nil {
		log.Printf("member-joined intro error user=%s channel=%s: %v", ev.User, ev.Channel, err)
	}
}

// parseCrowdArgs splits "<service>, <day>, <time>[, <context>]". The
// context may itself contain commas. "today" and "now" resolve against now.
func parseCrowdArgs(text string, now time.Time) (PredictionRequest, error) {
	parts := strings.SplitN(text, ",", 4)
	if len(parts) < 3 {
		return PredictionRequest{}, errCrowdUsage
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return PredictionRequest{}, errCrowdUsage
	}

	req := PredictionRequest{
		Service: parts[0],
		Day:     domain.ResolveDay(parts[1], now),
		Time:    forecast.ResolveClock(parts[2], now),
	}
	if len(parts) == 4 {
		req.Context = parts[3]
	}
	return req, nil
}

func crowdSlot(userID, service string) string {
	svc := domain.ClassifyService(service)
	if svc == domain.ServiceUnknown {
		return userID + "/" + strings.ToLower(strings.TrimSpace(service))
	}
	return userID + "/" + svc.String()
}

func (b *Bot) handleCrowd(api *slack.Client, cmd slack.SlashCommand) {
	req, err := parseCrowdArgs(cmd.Text, b.now().In(b.location()))
	if err != nil {
		postEphemeral(api, cmd, crowdUsage)
		return
	}

	ticket := b.tracker.Begin(crowdSlot(cmd.UserID, req.Service))
	defer b.tracker.Done(ticket)
	result, err := b.engine.Predict(context.Background(), req)
	if errors.Is(err, forecast.ErrInvalidTimeFormat) {
		postEphemeral(api, cmd, fmt.Sprintf("Couldn't read the time %q. Use a 12-hour time like `12:30 PM`.", req.Time))
		log.Printf("crowd invalid time user=%s time=%q", cmd.UserID, req.Time)
		return
	}
	if err != nil {
		postEphemeral(api, cmd, fmt.Sprintf("Error predicting crowd: %v", err))
		log.Printf("crowd error user=%s: %v", cmd.UserID, err)
		return
	}
	if !b.tracker.Current(ticket) {
		log.Printf("crowd stale result dropped user=%s service=%q", cmd.UserID, req.Service)
		return
	}

	b.sink.Record(req, result)
	postEphemeral(api, cmd, report.FormatPrediction(req, result))
	log.Printf("crowd sent user=%s service=%q level=%s wait=%d source=%s", cmd.UserID, req.Service, result.CrowdLevel, result.EstimatedWaitMinutes, result.Source)
}

func (b *Bot) handleMenuForecast(api *slack.Client, cmd slack.SlashCommand) {
	day := domain.ResolveDay(cmd.Text, b.now().In(b.location()))

	items := b.engine.ForecastDemand(context.Background(), day)
	postEphemeral(api, cmd, report.FormatDemand(day, b.menu.Annotate(items)))
	log.Printf("menu-forecast sent user=%s day=%s items=%d", cmd.UserID, day, len(items))
}

func (b *Bot) handleCrowdStats(api *slack.Client, cmd slack.SlashCommand) {
	if b.reader == nil {
		postEphemeral(api, cmd, "Usage history is not configured. Set `db_path` or `postgres_dsn` to enable it.")
		return
	}
	since := domain.StatsWindowStart(b.now().In(b.location()), statsWindowDays)
	stats, err := b.reader.GetUsageStats(context.Background(), since)
	if err != nil {
		postEphemeral(api, cmd, fmt.Sprintf("Error loading stats: %v", err))
		log.Printf("crowd-stats error: %v", err)
		return
	}
	postEphemeral(api, cmd, report.FormatUsageStats(stats, since))
	log.Printf("crowd-stats sent user=%s services=%d", cmd.UserID, len(stats))
}

func (b *Bot) handleCrowdHistory(api *slack.Client, cmd slack.SlashCommand) {
	if b.reader == nil {
		postEphemeral(api, cmd, "Prediction history is not configured. Set `db_path` or `postgres_dsn` to enable it.")
		return
	}
	records, err := b.reader.GetRecentPredictions(context.Background(), historyLimit)
	if err != nil {
		postEphemeral(api, cmd, fmt.Sprintf("Error loading history: %v", err))
		log.Printf("crowd-history error: %v", err)
		return
	}
	postEphemeral(api, cmd, report.FormatRecentPredictions(records, b.location()))
}

func (b *Bot) handleHelp(api *slack.Client, cmd slack.SlashCommand) {
	lines := []string{
		"*Campus Crowd Commands*",
		"",
		"`/crowd <service>, <day>, <time>[, <context>]` — Predict crowd level and wait time.",
		">Services: Canteen, Library, Admin Office, Exam Cell.",
		">`today` and `now` work for day and time.",
		"`/menu-forecast [day]` — High-demand canteen items with prices.",
		"`/crowd-stats` — Usage dashboard for the last 7 days.",
		"`/crowd-history` — Most recent predictions.",
		"`/crowd-help` — Show this help.",
	}
	postEphemeral(api, cmd, strings.Join(lines, "\n"))
}

func postEphemeral(api *slack.Client, cmd slack.SlashCommand, text string) {
	_, err := api.PostEphemeral(cmd.ChannelID, cmd.UserID, slack.MsgOptionText(text, false))
	if err != nil {
		log.Printf("Error posting ephemeral: %v", err)
	}
}
