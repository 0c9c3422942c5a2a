package tui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smartcommhub/commhub/pkg/client"
	"github.com/smartcommhub/commhub/pkg/domain"
)

// noticePollInterval is how often the notice board auto-refreshes.
const noticePollInterval = 30 * time.Second

type noticeTickMsg time.Time

func noticeTickCmd() tea.Cmd {
	return tea.Tick(noticePollInterval, func(t time.Time) tea.Msg {
		return noticeTickMsg(t)
	})
}

type noticesLoadedMsg struct {
	notices []domain.Notice
	err     error
}

// homeModel shows the community notice board.
type homeModel struct {
	client  *client.Client
	notices []domain.Notice
	loading bool
	err     string
	width   int
	height  int
}

func newHomeModel(c *client.Client) homeModel {
	return homeModel{client: c, loading: true}
}

func (m homeModel) Init() tea.Cmd {
	return m.load()
}

func (m homeModel) load() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		notices, err := c.ListNotices(context.Background(), pageSize, 0)
		if err != nil && client.IsUnauthorized(err) {
			return sessionEndedMsg{reason: "session expired"}
		}
		return noticesLoadedMsg{notices: notices, err: err}
	}
}

func (m homeModel) Update(msg tea.Msg) (homeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case noticesLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err.Error()
		} else {
			m.notices = msg.notices
			m.err = ""
		}
		return m, noticeTickCmd()

	case noticeTickMsg:
		return m, m.load()

	case tea.KeyMsg:
		if msg.String() == "r" {
			m.loading = true
			return m, m.load()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m homeModel) View() string {
	if m.loading && len(m.notices) == 0 {
		return " " + dimStyle.Render("loading notices...")
	}
	if m.err != "" {
		return " " + dangerStyle.Render("error: "+m.err)
	}
	if len(m.notices) == 0 {
		return " " + dimStyle.Render("no notices posted")
	}

	bodyWidth := m.width - 15
	if bodyWidth < 20 {
		bodyWidth = 20
	}

	var sb strings.Builder
	sb.WriteString(" " + selectedStyle.Render("Community notices") + "\n\n")
	for _, n := range m.notices {
		when := metaStyle.Render(lipgloss.NewStyle().Width(9).Render(formatWhen(n.PublishTime)))
		group := ""
		if n.TargetGroup != "" && n.TargetGroup != "all" {
			group = " " + goldStyle.Render("["+n.TargetGroup+"]")
		}
		sb.WriteString(" " + when + "  " + selectedStyle.Render(truncStr(n.Title, 60)) + group + "\n")
		if n.Content != "" {
			content := truncStr(strings.Join(strings.Fields(n.Content), " "), bodyWidth)
			sb.WriteString("            " + dimStyle.Render(content) + "\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
