package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smartcommhub/commhub/pkg/client"
	"github.com/smartcommhub/commhub/pkg/domain"
)

type eldersLoadedMsg struct {
	elders []domain.Elder
	err    error
}

type elderDetailMsg struct {
	elderlyID int64
	health    []domain.HealthRecord
	access    []domain.AccessRecord
	alerts    []domain.Alert
	err       error
}

type alertAckedMsg struct {
	err error
}

// eldersModel is the resident directory with a per-elder monitoring
// detail pane. The view is provider-gated; administrators pass through the
// guard's grant table.
type eldersModel struct {
	client  *client.Client
	elders  []domain.Elder
	cursor  int
	loading bool
	err     string

	detail   bool
	detailID int64
	health   []domain.HealthRecord
	access   []domain.AccessRecord
	alerts   []domain.Alert

	width  int
	height int
}

func newEldersModel(c *client.Client) eldersModel {
	return eldersModel{client: c, loading: true}
}

func (m eldersModel) Init() tea.Cmd {
	return m.load()
}

func (m eldersModel) load() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		elders, err := c.ListElders(context.Background(), pageSize, 0)
		if err != nil && client.IsUnauthorized(err) {
			return sessionEndedMsg{reason: "session expired"}
		}
		return eldersLoadedMsg{elders: elders, err: err}
	}
}

func (m eldersModel) loadDetail(elderlyID int64) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		out := elderDetailMsg{elderlyID: elderlyID}
		out.health, out.err = c.ListHealthRecords(context.Background(), elderlyID, 10, 0)
		if out.err == nil {
			out.access, out.err = c.ListAccessRecords(context.Background(), elderlyID, 10, 0)
		}
		if out.err == nil {
			out.alerts, out.err = c.ListAlerts(context.Background(), elderlyID, "", 10, 0)
		}
		if out.err != nil && client.IsUnauthorized(out.err) {
			return sessionEndedMsg{reason: "session expired"}
		}
		return out
	}
}

func (m eldersModel) selected() *domain.Elder {
	if m.cursor < 0 || m.cursor >= len(m.elders) {
		return nil
	}
	return &m.elders[m.cursor]
}

// firstUnacked returns the newest alert still waiting for acknowledgement.
func (m eldersModel) firstUnacked() *domain.Alert {
	for i := range m.alerts {
		if m.alerts[i].AckStatus == domain.AlertUnacked {
			return &m.alerts[i]
		}
	}
	return nil
}

func (m eldersModel) Update(msg tea.Msg) (eldersModel, tea.Cmd) {
	switch msg := msg.(type) {
	case eldersLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err.Error()
		} else {
			m.elders = msg.elders
			m.err = ""
			if m.cursor >= len(m.elders) {
				m.cursor = 0
			}
		}
		return m, nil

	case elderDetailMsg:
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		m.detail = true
		m.detailID = msg.elderlyID
		m.health = msg.health
		m.access = msg.access
		m.alerts = msg.alerts
		m.err = ""
		return m, nil

	case alertAckedMsg:
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		return m, m.loadDetail(m.detailID)

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if !m.detail && m.cursor < len(m.elders)-1 {
				m.cursor++
			}
		case "k", "up":
			if !m.detail && m.cursor > 0 {
				m.cursor--
			}
		case "enter":
			if !m.detail {
				if e := m.selected(); e != nil {
					return m, m.loadDetail(e.ElderlyID)
				}
			}
		case "esc":
			if m.detail {
				m.detail = false
			}
		case "a":
			if m.detail {
				if alert := m.firstUnacked(); alert != nil {
					c := m.client
					id := alert.AlertID
					return m, func() tea.Msg {
						_, err := c.AckAlert(context.Background(), id)
						if err != nil && client.IsUnauthorized(err) {
							return sessionEndedMsg{reason: "session expired"}
						}
						return alertAckedMsg{err: err}
					}
				}
			}
		case "r":
			if m.detail {
				return m, m.loadDetail(m.detailID)
			}
			m.loading = true
			return m, m.load()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m eldersModel) helpKeys() string {
	if m.detail {
		return helpEntry("a", "ack alert") + "  " + helpEntry("r", "reload") + "  " + helpEntry("esc", "back")
	}
	return helpEntry("j/k", "nav") + "  " + helpEntry("enter", "detail") + "  " + helpEntry("r", "reload")
}

func (m eldersModel) View() string {
	if m.detail {
		return m.detailView()
	}
	if m.loading && len(m.elders) == 0 {
		return " " + dimStyle.Render("loading residents...")
	}
	if m.err != "" {
		return " " + dangerStyle.Render("error: "+m.err)
	}
	if len(m.elders) == 0 {
		return " " + dimStyle.Render("no residents registered")
	}

	var sb strings.Builder
	sb.WriteString(" " + selectedStyle.Render("Residents") + "\n\n")
	for i, e := range m.elders {
		marker := "  "
		if i == m.cursor {
			marker = accentStyle.Render("> ")
		}
		level := okStyle
		if e.HealthLevel == "high" || e.HealthLevel == "critical" {
			level = dangerStyle
		} else if e.HealthLevel == "medium" {
			level = warnStyle
		}
		sb.WriteString(fmt.Sprintf(" %s%-12s %s %s  %s\n",
			marker,
			truncStr(e.Name, 12),
			metaStyle.Render(fmt.Sprintf("age %-3d", e.Age)),
			level.Render(e.HealthLevel),
			dimStyle.Render(truncStr(e.Address, 40)),
		))
	}
	return sb.String()
}

func (m eldersModel) detailView() string {
	var sb strings.Builder
	name := fmt.Sprintf("resident #%d", m.detailID)
	for _, e := range m.elders {
		if e.ElderlyID == m.detailID {
			name = e.Name
			break
		}
	}
	sb.WriteString(" " + selectedStyle.Render(name) + "\n")
	if m.err != "" {
		sb.WriteString(" " + dangerStyle.Render("error: "+m.err) + "\n")
	}

	sb.WriteString("\n " + labelStyle.Render("alerts") + "\n")
	if len(m.alerts) == 0 {
		sb.WriteString("   " + dimStyle.Render("none") + "\n")
	}
	for _, a := range m.alerts {
		badge := okStyle.Render("acked")
		if a.AckStatus == domain.AlertUnacked {
			badge = dangerStyle.Render("UNACKED")
		}
		sb.WriteString(fmt.Sprintf("   %s  %s %.1f  %s\n",
			badge, a.MonitorType, a.MonitorValue, metaStyle.Render(formatWhen(a.MonitorTime))))
	}

	sb.WriteString("\n " + labelStyle.Render("health") + "\n")
	if len(m.health) == 0 {
		sb.WriteString("   " + dimStyle.Render("no samples") + "\n")
	}
	for _, h := range m.health {
		flag := ""
		if h.Abnormal == "yes" || h.Abnormal == "Y" || h.Abnormal == "true" {
			flag = "  " + warnStyle.Render("abnormal")
		}
		sb.WriteString(fmt.Sprintf("   %-14s %-8s %s%s\n",
			h.MonitorType, h.MonitorValue, metaStyle.Render(formatWhen(h.MonitorTime)), flag))
	}

	sb.WriteString("\n " + labelStyle.Render("gate activity") + "\n")
	if len(m.access) == 0 {
		sb.WriteString("   " + dimStyle.Render("no records") + "\n")
	}
	for _, a := range m.access {
		sb.WriteString(fmt.Sprintf("   %-4s %-20s %s\n",
			a.AccessType, truncStr(a.GateLocation, 20), metaStyle.Render(formatWhen(a.RecordTime))))
	}
	return sb.String()
}
