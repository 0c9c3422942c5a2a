package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smartcommhub/commhub/internal/browser"
	"github.com/smartcommhub/commhub/pkg/auth"
)

type passwordChangedMsg struct {
	err error
}

const (
	pwFieldOld = iota
	pwFieldNew
	pwFieldConfirm
)

// accountModel shows the signed-in profile and hosts the password change
// form. Sign-out is routed through the app so every view tears down the
// same way.
type accountModel struct {
	auth *auth.Manager

	changing bool
	oldPw    string
	newPw    string
	confirm  string
	focus    int
	busy     bool
	status   string
	statusOK bool

	width  int
	height int
}

func newAccountModel(m *auth.Manager) accountModel {
	return accountModel{auth: m}
}

func (m accountModel) Init() tea.Cmd {
	return nil
}

func (m accountModel) resetForm() accountModel {
	m.changing = false
	m.oldPw, m.newPw, m.confirm = "", "", ""
	m.focus = pwFieldOld
	return m
}

func (m accountModel) Update(msg tea.Msg) (accountModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case passwordChangedMsg:
		m.busy = false
		if msg.err != nil {
			if errors.Is(msg.err, auth.ErrCredentialsRejected) {
				m.status = "current password was not accepted"
			} else {
				m.status = msg.err.Error()
			}
			m.statusOK = false
			return m, nil
		}
		m = m.resetForm()
		m.status = "password updated"
		m.statusOK = true
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		if m.changing {
			return m.updateForm(msg)
		}
		switch msg.String() {
		case "p":
			m.changing = true
			m.status = ""
			return m, nil
		case "c":
			if p := m.auth.Session().Profile(); p != nil {
				if err := clipboard.WriteAll(p.Username); err != nil {
					m.status = "clipboard unavailable"
					m.statusOK = false
				} else {
					m.status = "username copied"
					m.statusOK = true
				}
			}
			return m, nil
		case "w":
			if err := browser.Open(m.auth.BaseURL()); err != nil {
				m.status = "could not open browser"
				m.statusOK = false
			}
			return m, nil
		case "s":
			return m, func() tea.Msg {
				return sessionEndedMsg{reason: "signed out"}
			}
		}
	}
	return m, nil
}

func (m accountModel) updateForm(msg tea.KeyMsg) (accountModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m = m.resetForm()
		m.status = ""
		return m, nil
	case "tab", "down":
		m.focus = (m.focus + 1) % 3
		return m, nil
	case "shift+tab", "up":
		m.focus = (m.focus + 2) % 3
		return m, nil
	case "enter":
		return m.submit()
	}
	switch m.focus {
	case pwFieldOld:
		m.oldPw = editRune(m.oldPw, msg.String())
	case pwFieldNew:
		m.newPw = editRune(m.newPw, msg.String())
	case pwFieldConfirm:
		m.confirm = editRune(m.confirm, msg.String())
	}
	return m, nil
}

func (m accountModel) submit() (accountModel, tea.Cmd) {
	switch {
	case m.oldPw == "" || m.newPw == "":
		m.status = "both passwords are required"
		m.statusOK = false
		return m, nil
	case len(m.newPw) < 6:
		m.status = "new password must be at least 6 characters"
		m.statusOK = false
		return m, nil
	case m.newPw != m.confirm:
		m.status = "new passwords do not match"
		m.statusOK = false
		return m, nil
	}
	m.busy = true
	m.status = ""
	am := m.auth
	oldPw, newPw := m.oldPw, m.newPw
	return m, func() tea.Msg {
		return passwordChangedMsg{err: am.ChangePassword(context.Background(), oldPw, newPw)}
	}
}

func (m accountModel) helpKeys() string {
	if m.changing {
		return helpEntry("enter", "save") + "  " + helpEntry("esc", "cancel")
	}
	return helpEntry("p", "password") + "  " + helpEntry("c", "copy name") + "  " +
		helpEntry("w", "portal") + "  " + helpEntry("s", "sign out")
}

func (m accountModel) View() string {
	return m.view(0)
}

func (m accountModel) view(frame int) string {
	var sb strings.Builder
	sb.WriteString(" " + selectedStyle.Render("Account") + "\n\n")

	p := m.auth.Session().Profile()
	if p == nil {
		sb.WriteString(" " + dimStyle.Render("profile not loaded") + "\n")
		return sb.String()
	}

	sb.WriteString("   " + labelStyle.Render("username") + "  " + p.Username + "\n")
	sb.WriteString("   " + labelStyle.Render("role    ") + "  " + RoleStyle(p.Role).Render(p.Role.String()) + "\n")
	if p.Phone != "" {
		sb.WriteString("   " + labelStyle.Render("phone   ") + "  " + p.Phone + "\n")
	}
	state := okStyle.Render("active")
	if !p.Active {
		state = dangerStyle.Render("disabled")
	}
	sb.WriteString("   " + labelStyle.Render("status  ") + "  " + state + "\n")

	if m.changing {
		sb.WriteString("\n " + selectedStyle.Render("Change password") + "\n\n")
		sb.WriteString(" " + renderField("current", m.oldPw, m.focus == pwFieldOld, true, frame) + "\n")
		sb.WriteString(" " + renderField("new    ", m.newPw, m.focus == pwFieldNew, true, frame) + "\n")
		sb.WriteString(" " + renderField("confirm", m.confirm, m.focus == pwFieldConfirm, true, frame) + "\n")
	}

	sb.WriteString("\n")
	switch {
	case m.busy:
		sb.WriteString(" " + dimStyle.Render("updating password...") + "\n")
	case m.status != "" && m.statusOK:
		sb.WriteString(" " + okStyle.Render(m.status) + "\n")
	case m.status != "":
		sb.WriteString(" " + warnStyle.Render(m.status) + "\n")
	}
	return sb.String()
}
