package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smartcommhub/commhub/pkg/domain"
)

// Palette. Calm institutional blue with a warm accent for alerts.
const (
	colorAccent  = "#38bdf8"
	colorOK      = "#34d474"
	colorWarn    = "#f0b429"
	colorDanger  = "#f87171"
	colorDim     = "245"
	colorMeta    = "240"
	colorGold    = "#d4a844"
	colorMagenta = "#c084e0"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(colorAccent)).Bold(true)
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorAccent))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(colorDim))
	metaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(colorMeta))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(colorOK))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(colorWarn))
	dangerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorDanger))
	goldStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(colorGold))

	selectedStyle = lipgloss.NewStyle().Bold(true)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(colorMeta))

	inputPromptStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(colorAccent)).Bold(true)
	inputPlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// RoleStyle returns the display style for a role badge.
func RoleStyle(r domain.Role) lipgloss.Style {
	switch r {
	case domain.RoleAdmin:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorMagenta)).Bold(true)
	case domain.RoleElderly:
		return okStyle
	case domain.RoleFamily:
		return goldStyle
	case domain.RoleProvider:
		return accentStyle
	default:
		return dimStyle
	}
}

// StatusStyle returns the display style for an order status.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case domain.OrderPending:
		return warnStyle
	case domain.OrderConfirmed:
		return accentStyle
	case domain.OrderCompleted:
		return okStyle
	default:
		return dimStyle
	}
}

// helpEntry renders one "key description" pair for the bottom help bar.
func helpEntry(key, desc string) string {
	return accentStyle.Render(key) + " " + dimStyle.Render(desc)
}

// Cursor blink for the inline forms.
type blinkTickMsg time.Time

func blinkTickCmd() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(t time.Time) tea.Msg {
		return blinkTickMsg(t)
	})
}

// renderLogo renders the centered wordmark with a slow two-tone sweep.
func renderLogo(frame, width int) string {
	const text = "COMMHUB"
	var out string
	for i := range text {
		style := accentStyle
		if (i+frame/6)%len(text) < 2 {
			style = titleStyle
		}
		out += style.Bold(true).Render(string(text[i]))
		if i < len(text)-1 {
			out += " "
		}
	}
	w := lipgloss.Width(out)
	pad := (width - w) / 2
	if pad < 0 {
		pad = 0
	}
	return spaces(pad) + out
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
