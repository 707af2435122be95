package cli

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuspulse/internal/forecast"
)

// Monday 2026-02-09 12:10.
var watchNow = time.Date(2026, 2, 9, 12, 10, 0, 0, time.UTC)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestWatchModelStartsAtNow(t *testing.T) {
	m := newWatchModel(forecast.NewEngine(nil), nil, 0, watchNow)
	req := m.request()
	assert.Equal(t, "Canteen", req.Service)
	assert.Equal(t, "Monday", req.Day)
	assert.Equal(t, "12:00 PM", req.Time)
	assert.Empty(t, req.Context)
}

func TestWatchModelShowsPrediction(t *testing.T) {
	m := newWatchModel(forecast.NewEngine(nil), nil, 0, watchNow)
	assert.Contains(t, m.View(), "Predicting...")

	msg := m.Init()()
	updated, _ := m.Update(msg)
	view := updated.View()
	assert.Contains(t, view, "HIGH")
	assert.Contains(t, view, "Lunch rush hour at 12:00 PM")
}

func TestWatchModelDropsSupersededResult(t *testing.T) {
	var tm tea.Model = newWatchModel(forecast.NewEngine(nil), nil, 0, watchNow)

	tm, first := tm.Update(runes("e"))
	require.NotNil(t, first)
	tm, second := tm.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.NotNil(t, second)

	stale := first().(predictionMsg)
	assert.Equal(t, "Canteen", stale.req.Service)
	tm, _ = tm.Update(stale)
	assert.Nil(t, tm.(watchModel).shown, "superseded result must not be shown")

	fresh := second().(predictionMsg)
	tm, _ = tm.Update(fresh)
	m := tm.(watchModel)
	require.NotNil(t, m.shown)
	assert.Equal(t, "Library", m.shown.req.Service)
	assert.Equal(t, "exam preparation week", m.shown.req.Context)
	assert.Contains(t, m.View(), "Exam     on")
}

func TestWatchModelKeys(t *testing.T) {
	var tm tea.Model = newWatchModel(forecast.NewEngine(nil), nil, 0, watchNow)

	tm, _ = tm.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, "Friday", tm.(watchModel).request().Day)
	tm, _ = tm.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "12:30 PM", tm.(watchModel).request().Time)

	_, cmd := tm.Update(runes("x"))
	assert.Nil(t, cmd, "unbound keys do not issue requests")

	_, cmd = tm.Update(runes("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}
