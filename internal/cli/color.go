package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"campuspulse/internal/domain"
)

// Gruvbox palette, matching the dashboard's green/yellow/red indicator.
var (
	colorGreen  = lipgloss.Color("#8ec07c")
	colorYellow = lipgloss.Color("#fabd2f")
	colorRed    = lipgloss.Color("#fb4934")
	colorDim    = lipgloss.Color("#928374")
	colorHeader = lipgloss.Color("#fe8019")
	colorBadge  = lipgloss.Color("#282828")
)

var (
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(colorHeader)
	styleDim    = lipgloss.NewStyle().Foreground(colorDim)
	styleBadge  = lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(colorBadge)
)

func levelColor(level CrowdLevel) lipgloss.Color {
	switch level {
	case domain.CrowdLow:
		return colorGreen
	case domain.CrowdMedium:
		return colorYellow
	case domain.CrowdHigh:
		return colorRed
	default:
		return colorDim
	}
}

// levelBadge renders a crowd level as a coloured block, e.g. " HIGH ".
func levelBadge(level CrowdLevel) string {
	label := strings.ToUpper(strings.TrimSpace(string(level)))
	if label == "" {
		label = "UNKNOWN"
	}
	return styleBadge.Background(levelColor(level)).Render(label)
}
