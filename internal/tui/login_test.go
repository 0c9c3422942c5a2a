package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smartcommhub/commhub/pkg/domain"
)

func newTestLogin() loginModel {
	return loginModel{}
}

func TestLoginFieldCycling(t *testing.T) {
	m := newTestLogin()

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != fieldPassword {
		t.Errorf("expected focus=fieldPassword after tab, got %d", m.focus)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != fieldUsername {
		t.Errorf("expected focus to wrap to fieldUsername, got %d", m.focus)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.focus != fieldPassword {
		t.Errorf("expected shift+tab to wrap back to fieldPassword, got %d", m.focus)
	}
}

func TestLoginRegisterToggleExposesPhoneField(t *testing.T) {
	m := newTestLogin()
	if m.lastField() != fieldPassword {
		t.Errorf("expected sign-in form to end at password, got %d", m.lastField())
	}

	m, _ = m.Update(keyMsg2("ctrl+r"))
	if !m.registering {
		t.Fatal("expected registering=true after ctrl+r")
	}
	if m.lastField() != fieldPhone {
		t.Errorf("expected sign-up form to end at phone, got %d", m.lastField())
	}

	m, _ = m.Update(keyMsg2("ctrl+r"))
	if m.registering {
		t.Error("expected registering=false after second ctrl+r")
	}
}

func TestLoginRoleSelection(t *testing.T) {
	m := newTestLogin()
	m.registering = true

	if registerRoles[m.roleIdx] != domain.RoleFamily {
		t.Errorf("expected default register role RoleFamily, got %v", registerRoles[m.roleIdx])
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if registerRoles[m.roleIdx] != domain.RoleElderly {
		t.Errorf("expected RoleElderly after right, got %v", registerRoles[m.roleIdx])
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if registerRoles[m.roleIdx] != domain.RoleProvider {
		t.Errorf("expected RoleProvider after wrapping left, got %v", registerRoles[m.roleIdx])
	}
}

func TestLoginSubmitRequiresCredentials(t *testing.T) {
	m := newTestLogin()
	m, cmd := m.submit()
	if cmd != nil {
		t.Error("expected no command for an empty submit")
	}
	if m.status == "" {
		t.Error("expected a validation message for an empty submit")
	}
	if m.busy {
		t.Error("expected busy=false after rejected submit")
	}
}

func TestLoginTypingRoutesToFocusedField(t *testing.T) {
	m := newTestLogin()
	for _, r := range "elder01" {
		m, _ = m.Update(keyMsg(string(r)))
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	for _, r := range "pw" {
		m, _ = m.Update(keyMsg(string(r)))
	}

	if m.username != "elder01" {
		t.Errorf("expected username 'elder01', got %q", m.username)
	}
	if m.password != "pw" {
		t.Errorf("expected password 'pw', got %q", m.password)
	}
}

func TestLoginViewMasksPassword(t *testing.T) {
	m := newTestLogin()
	m.password = "secret"
	m.focus = fieldUsername

	view := m.View()
	if strings.Contains(view, "secret") {
		t.Error("expected the password to be masked in the view")
	}
	if !strings.Contains(view, "••••••") {
		t.Error("expected mask dots in the view")
	}
}

func TestLoginFailureResultClearsBusy(t *testing.T) {
	m := newTestLogin()
	m.busy = true

	m, _ = m.Update(loginResultMsg{ok: false})
	if m.busy {
		t.Error("expected busy=false after loginResultMsg")
	}
	if m.status == "" {
		t.Error("expected a failure status after rejected sign-in")
	}
}

func TestRegisterSuccessReturnsToSignIn(t *testing.T) {
	m := newTestLogin()
	m.registering = true
	m.busy = true
	m.password = "pw123456"

	m, _ = m.Update(registerResultMsg{ok: true})
	if m.registering {
		t.Error("expected to land back on the sign-in form")
	}
	if m.password != "" {
		t.Error("expected the password field to be cleared")
	}
	if !strings.Contains(m.status, "account created") {
		t.Errorf("expected success status, got %q", m.status)
	}
}

// keyMsg2 builds a named (non-rune) key message such as "ctrl+r".
func keyMsg2(s string) tea.KeyMsg {
	switch s {
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
