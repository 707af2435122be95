package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"campuspulse/internal/domain"
	"campuspulse/internal/forecast"
	"campuspulse/internal/history"
)

const watchSlot = "watch"

const examContext = "exam preparation week"

var watchTimes = []string{
	"08:00 AM", "09:00 AM", "10:00 AM", "11:00 AM", "12:00 PM", "12:30 PM",
	"01:00 PM", "02:00 PM", "03:00 PM", "04:00 PM", "05:00 PM", "06:00 PM",
}

type watchKeyMap struct {
	Service key.Binding
	DayNext key.Binding
	DayPrev key.Binding
	TimeUp  key.Binding
	TimeDn  key.Binding
	Exam    key.Binding
	Quit    key.Binding
}

func newWatchKeyMap() watchKeyMap {
	return watchKeyMap{
		Service: key.NewBinding(key.WithKeys("tab", "s"), key.WithHelp("tab", "service")),
		DayNext: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next day")),
		DayPrev: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "prev day")),
		TimeUp:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "later")),
		TimeDn:  key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "earlier")),
		Exam:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "exam week")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

func (k watchKeyMap) helpLine() string {
	var parts []string
	for _, b := range []key.Binding{k.Service, k.DayPrev, k.DayNext, k.TimeDn, k.TimeUp, k.Exam, k.Quit} {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}

// predictionMsg carries a finished prediction back to the view together
// with the ticket it was issued under.
type predictionMsg struct {
	ticket forecast.Ticket
	req    PredictionRequest
	result PredictionResult
	err    error
}

type watchModel struct {
	engine  Predictor
	sink    *history.Sink
	tracker *forecast.Tracker
	timeout time.Duration
	keys    watchKeyMap

	svcIdx  int
	dayIdx  int
	timeIdx int
	exam    bool

	pending bool
	shown   *predictionMsg
}

func newWatchModel(engine Predictor, sink *history.Sink, timeout time.Duration, now time.Time) watchModel {
	m := watchModel{
		engine:  engine,
		sink:    sink,
		tracker: forecast.NewTracker(),
		timeout: timeout,
		keys:    newWatchKeyMap(),
	}
	for i, d := range domain.Weekdays {
		if d == domain.DayName(now) {
			m.dayIdx = i
		}
	}
	for i, t := range watchTimes {
		if h, _ := forecast.ParseHour(t); h == now.Hour() {
			m.timeIdx = i
			break
		}
	}
	return m
}

func (m watchModel) request() PredictionRequest {
	req := PredictionRequest{
		Service: domain.KnownServices[m.svcIdx].String(),
		Day:     domain.Weekdays[m.dayIdx],
		Time:    watchTimes[m.timeIdx],
	}
	if m.exam {
		req.Context = examContext
	}
	return req
}

// predict issues a new request; any in-flight request is superseded.
func (m watchModel) predict() tea.Cmd {
	req := m.request()
	ticket := m.tracker.Begin(watchSlot)
	engine := m.engine
	timeout := m.timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		result, err := engine.Predict(ctx, req)
		return predictionMsg{ticket: ticket, req: req, result: result, err: err}
	}
}

func (m watchModel) Init() tea.Cmd {
	return m.predict()
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Service):
			m.svcIdx = (m.svcIdx + 1) % len(domain.KnownServices)
		case key.Matches(msg, m.keys.DayNext):
			m.dayIdx = (m.dayIdx + 1) % len(domain.Weekdays)
		case key.Matches(msg, m.keys.DayPrev):
			m.dayIdx = (m.dayIdx + len(domain.Weekdays) - 1) % len(domain.Weekdays)
		case key.Matches(msg, m.keys.TimeUp):
			m.timeIdx = (m.timeIdx + 1) % len(watchTimes)
		case key.Matches(msg, m.keys.TimeDn):
			m.timeIdx = (m.timeIdx + len(watchTimes) - 1) % len(watchTimes)
		case key.Matches(msg, m.keys.Exam):
			m.exam = !m.exam
		default:
			return m, nil
		}
		m.pending = true
		return m, m.predict()

	case predictionMsg:
		if !m.tracker.Current(msg.ticket) {
			return m, nil
		}
		m.tracker.Done(msg.ticket)
		m.pending = false
		m.shown = &msg
		if msg.err == nil {
			m.sink.Record(msg.req, msg.result)
		}
		return m, nil
	}
	return m, nil
}

func (m watchModel) View() string {
	req := m.request()
	var sb strings.Builder
	sb.WriteString(styleHeader.Render("Campus crowd watch"))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Service  %s\n", req.Service))
	sb.WriteString(fmt.Sprintf("Day      %s\n", req.Day))
	sb.WriteString(fmt.Sprintf("Time     %s\n", req.Time))
	exam := "off"
	if m.exam {
		exam = "on"
	}
	sb.WriteString(fmt.Sprintf("Exam     %s\n\n", exam))

	switch {
	case m.shown == nil:
		sb.WriteString(styleDim.Render("Predicting..."))
	case m.shown.err != nil:
		sb.WriteString(fmt.Sprintf("Error: %v", m.shown.err))
	default:
		r := m.shown.result
		sb.WriteString(fmt.Sprintf("%s  ~%d min wait  %s\n", levelBadge(r.CrowdLevel), r.EstimatedWaitMinutes,
			styleDim.Render(fmt.Sprintf("(%.0f%% confidence)", r.Confidence*100))))
		sb.WriteString(r.Reasoning)
		if m.pending {
			sb.WriteString("\n" + styleDim.Render("Updating..."))
		}
	}

	sb.WriteString("\n\n")
	sb.WriteString(styleDim.Render(m.keys.helpLine()))
	sb.WriteString("\n")
	return sb.String()
}

func newWatchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Interactive view that re-predicts as you change service, day and time",
		RunE: func(cmd *cobra.Command, args []string) error {
			timeout := app.Config.OracleTimeout() + time.Second
			m := newWatchModel(app.Engine, app.Sink, timeout, app.now())
			_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
}
