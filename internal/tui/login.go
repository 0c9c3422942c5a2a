package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smartcommhub/commhub/pkg/auth"
	"github.com/smartcommhub/commhub/pkg/domain"
)

// loginResultMsg carries the outcome of a sign-in attempt.
type loginResultMsg struct {
	ok bool
}

// registerResultMsg carries the outcome of an account registration.
type registerResultMsg struct {
	ok bool
}

// registerRoles are the roles offered on the sign-up form.
var registerRoles = []domain.Role{
	domain.RoleFamily,
	domain.RoleElderly,
	domain.RoleProvider,
}

const (
	fieldUsername = iota
	fieldPassword
	fieldPhone
)

// loginModel is the public landing view: sign-in by default, sign-up when
// toggled. Every guard redirect lands here.
type loginModel struct {
	auth *auth.Manager

	registering bool
	username    string
	password    string
	phone       string
	roleIdx     int
	focus       int
	busy        bool
	status      string
	width       int
	height      int
}

func newLoginModel(m *auth.Manager) loginModel {
	return loginModel{auth: m}
}

func (m loginModel) Init() tea.Cmd {
	return nil
}

func (m loginModel) lastField() int {
	if m.registering {
		return fieldPhone
	}
	return fieldPassword
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case loginResultMsg:
		m.busy = false
		if !msg.ok {
			m.status = "sign in failed, check username and password"
		}
		return m, nil

	case registerResultMsg:
		m.busy = false
		if msg.ok {
			m.registering = false
			m.focus = fieldUsername
			m.password = ""
			m.status = "account created, sign in to continue"
		} else {
			m.status = "registration failed, name or phone may be taken"
		}
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "tab", "down":
			m.focus++
			if m.focus > m.lastField() {
				m.focus = fieldUsername
			}
			return m, nil
		case "shift+tab", "up":
			m.focus--
			if m.focus < fieldUsername {
				m.focus = m.lastField()
			}
			return m, nil
		case "ctrl+r":
			m.registering = !m.registering
			m.focus = fieldUsername
			m.status = ""
			return m, nil
		case "left", "right":
			if m.registering {
				if msg.String() == "left" {
					m.roleIdx = (m.roleIdx + len(registerRoles) - 1) % len(registerRoles)
				} else {
					m.roleIdx = (m.roleIdx + 1) % len(registerRoles)
				}
				return m, nil
			}
		case "enter":
			return m.submit()
		}
		switch m.focus {
		case fieldUsername:
			m.username = editRune(m.username, msg.String())
		case fieldPassword:
			m.password = editRune(m.password, msg.String())
		case fieldPhone:
			m.phone = editRune(m.phone, msg.String())
		}
		return m, nil
	}
	return m, nil
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	if strings.TrimSpace(m.username) == "" || m.password == "" {
		m.status = "username and password are required"
		return m, nil
	}
	m.busy = true
	m.status = ""
	am := m.auth
	username, password := strings.TrimSpace(m.username), m.password
	if m.registering {
		role := registerRoles[m.roleIdx]
		phone := strings.TrimSpace(m.phone)
		return m, func() tea.Msg {
			return registerResultMsg{ok: am.Register(context.Background(), username, password, role, phone)}
		}
	}
	return m, func() tea.Msg {
		return loginResultMsg{ok: am.Login(context.Background(), username, password)}
	}
}

func (m loginModel) View() string {
	return m.view(0)
}

func (m loginModel) view(frame int) string {
	var sb strings.Builder
	sb.WriteString("\n")
	if m.registering {
		sb.WriteString(" " + selectedStyle.Render("Create an account") + "\n\n")
	} else {
		sb.WriteString(" " + selectedStyle.Render("Sign in") + "\n\n")
	}
	sb.WriteString(" " + renderField("username", m.username, m.focus == fieldUsername, false, frame) + "\n")
	sb.WriteString(" " + renderField("password", m.password, m.focus == fieldPassword, true, frame) + "\n")
	if m.registering {
		sb.WriteString(" " + renderField("phone   ", m.phone, m.focus == fieldPhone, false, frame) + "\n")
		var roles []string
		for i, r := range registerRoles {
			if i == m.roleIdx {
				roles = append(roles, RoleStyle(r).Render("["+r.String()+"]"))
			} else {
				roles = append(roles, dimStyle.Render(" "+r.String()+" "))
			}
		}
		sb.WriteString("\n   " + labelStyle.Render("role") + "  " + strings.Join(roles, " ") + "\n")
	}
	sb.WriteString("\n")
	switch {
	case m.busy && m.registering:
		sb.WriteString(" " + dimStyle.Render("creating account...") + "\n")
	case m.busy:
		sb.WriteString(" " + dimStyle.Render("signing in...") + "\n")
	case m.status != "":
		sb.WriteString(" " + warnStyle.Render(m.status) + "\n")
	}
	return sb.String()
}
