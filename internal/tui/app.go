package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smartcommhub/commhub/pkg/auth"
	"github.com/smartcommhub/commhub/pkg/client"
	"github.com/smartcommhub/commhub/pkg/domain"
)

type view int

const (
	viewLogin view = iota
	viewHome
	viewOrders
	viewElders
	viewAccount
)

// sessionEndedMsg is emitted by any sub-model whose backend call came back
// unauthorized, and by the explicit sign-out key. The app tears the session
// down and lands on the sign-in view.
type sessionEndedMsg struct {
	reason string
}

// profileLoadedMsg carries the result of a profile fetch.
type profileLoadedMsg struct {
	profile *domain.Profile
	err     error
}

// App is the root Bubbletea model. Every view switch consults the capability
// guard; a denied switch lands on the sign-in view, never on the target.
type App struct {
	auth    *auth.Manager
	client  *client.Client
	view    view
	login   loginModel
	home    homeModel
	orders  ordersModel
	elders  eldersModel
	account accountModel
	banner  string
	width   int
	height  int
	frame   int // logo sweep animation frame
}

// NewApp creates the TUI application around an authenticated session manager.
func NewApp(m *auth.Manager) App {
	c := client.New(m)
	a := App{
		auth:    m,
		client:  c,
		view:    viewLogin,
		login:   newLoginModel(m),
		home:    newHomeModel(c),
		orders:  newOrdersModel(c),
		elders:  newEldersModel(c),
		account: newAccountModel(m),
	}
	if m.Session().LoggedIn() {
		a.view = viewHome
	}
	return a
}

func capabilityFor(v view) auth.Capability {
	switch v {
	case viewElders:
		return auth.RequireRole(domain.RoleProvider)
	case viewLogin:
		return auth.Public
	default:
		return auth.Authenticated
	}
}

func (a App) Init() tea.Cmd {
	if a.view == viewLogin {
		return blinkTickCmd()
	}
	return tea.Batch(blinkTickCmd(), a.home.Init(), a.loadProfile())
}

// loadProfile refetches the profile so sub-models know the signed-in role.
// A failure tears the session down inside the manager, so all the cmd has to
// report is the outcome.
func (a App) loadProfile() tea.Cmd {
	m := a.auth
	return func() tea.Msg {
		if err := m.FetchProfile(context.Background()); err != nil {
			return profileLoadedMsg{err: err}
		}
		return profileLoadedMsg{profile: m.Session().Profile()}
	}
}

// switchTo routes to the requested view if the guard allows it. A denied
// request lands on the sign-in view.
func (a App) switchTo(v view) (App, tea.Cmd) {
	if !a.auth.Guard().CanEnter(capabilityFor(v)) {
		if a.view != viewLogin {
			a.view = viewLogin
			a.login = newLoginModel(a.auth)
			a.banner = "sign in to continue"
		}
		return a, nil
	}
	if a.view == v {
		return a, nil
	}
	a.view = v
	a.banner = ""
	switch v {
	case viewHome:
		return a, a.home.Init()
	case viewOrders:
		return a, a.orders.Init()
	case viewElders:
		return a, a.elders.Init()
	case viewAccount:
		return a, a.account.Init()
	}
	return a, nil
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + help(1) = 4 lines
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 4}
		a.login, _ = a.login.Update(bodyMsg)
		a.home, _ = a.home.Update(bodyMsg)
		a.orders, _ = a.orders.Update(bodyMsg)
		a.elders, _ = a.elders.Update(bodyMsg)
		a.account, _ = a.account.Update(bodyMsg)
		return a, nil

	case blinkTickMsg:
		a.frame++
		return a, blinkTickCmd()

	case sessionEndedMsg:
		a.auth.Logout()
		a.view = viewLogin
		a.login = newLoginModel(a.auth)
		a.banner = msg.reason
		return a, nil

	case loginResultMsg:
		if msg.ok {
			a.banner = ""
			var cmd tea.Cmd
			a, cmd = a.switchTo(viewHome)
			return a, tea.Batch(cmd, a.loadProfile())
		}
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		return a, cmd

	case profileLoadedMsg:
		if msg.err != nil {
			return a.Update(sessionEndedMsg{reason: "session expired"})
		}
		a.orders, _ = a.orders.Update(msg)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.isEditing() {
			switch msg.String() {
			case "q":
				return a, tea.Quit
			case "1":
				return a.switchTo(viewHome)
			case "2":
				return a.switchTo(viewOrders)
			case "3":
				return a.switchTo(viewElders)
			case "4":
				return a.switchTo(viewAccount)
			}
		}
	}

	var cmd tea.Cmd
	switch a.view {
	case viewLogin:
		a.login, cmd = a.login.Update(msg)
	case viewHome:
		a.home, cmd = a.home.Update(msg)
	case viewOrders:
		a.orders, cmd = a.orders.Update(msg)
	case viewElders:
		a.elders, cmd = a.elders.Update(msg)
	case viewAccount:
		a.account, cmd = a.account.Update(msg)
	}
	return a, cmd
}

func (a App) isEditing() bool {
	switch a.view {
	case viewLogin:
		return true
	case viewAccount:
		return a.account.changing
	case viewOrders:
		return a.orders.rating
	}
	return false
}

// tabVisible reports whether a tab should appear for the current role. The
// guard stays the authority on entry; this only trims the chrome.
func (a App) tabVisible(v view) bool {
	return a.auth.Guard().CanEnter(capabilityFor(v))
}

func (a App) View() string {
	header := renderLogo(a.frame, a.width)
	if p := a.auth.Session().Profile(); p != nil {
		who := p.Username + " " + RoleStyle(p.Role).Render("("+p.Role.String()+")")
		pad := (a.width - lipgloss.Width(who)) / 2
		if pad < 0 {
			pad = 0
		}
		header += "\n" + spaces(pad) + metaStyle.Render(who)
	} else {
		header += "\n"
	}

	type tabEntry struct {
		key  string
		name string
		v    view
	}
	all := []tabEntry{
		{"1", "Notices", viewHome},
		{"2", "Orders", viewOrders},
		{"3", "Residents", viewElders},
		{"4", "Account", viewAccount},
	}
	var tabs []tabEntry
	for _, t := range all {
		if a.tabVisible(t.v) {
			tabs = append(tabs, t)
		}
	}

	var tabBar string
	if a.view != viewLogin && len(tabs) > 0 {
		colWidth := a.width / len(tabs)
		var sb strings.Builder
		for _, t := range tabs {
			var label string
			if t.v == a.view {
				label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
			} else {
				label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
			}
			labelWidth := lipgloss.Width(label)
			leftPad := (colWidth - labelWidth) / 2
			if leftPad < 0 {
				leftPad = 0
			}
			rightPad := colWidth - labelWidth - leftPad
			if rightPad < 0 {
				rightPad = 0
			}
			sb.WriteString(spaces(leftPad) + label + spaces(rightPad))
		}
		tabBar = sb.String()
	}

	var body, help string
	switch a.view {
	case viewLogin:
		body = a.login.view(a.frame)
		if a.banner != "" {
			body = " " + warnStyle.Render(a.banner) + "\n" + body
		}
		help = " " + helpEntry("tab", "next") + "  " + helpEntry("ctrl+r", "sign up") + "  " +
			helpEntry("enter", "submit") + "  " + helpEntry("ctrl+c", "quit")
	case viewHome:
		body = a.home.View()
		help = " " + helpEntry("1-4", "tabs") + "  " + helpEntry("r", "reload") + "  " + helpEntry("q", "quit")
	case viewOrders:
		body = a.orders.View()
		help = " " + helpEntry("1-4", "tabs") + "  " + a.orders.helpKeys() + "  " + helpEntry("q", "quit")
	case viewElders:
		body = a.elders.View()
		help = " " + helpEntry("1-4", "tabs") + "  " + a.elders.helpKeys() + "  " + helpEntry("q", "quit")
	case viewAccount:
		body = a.account.view(a.frame)
		help = " " + helpEntry("1-4", "tabs") + "  " + a.account.helpKeys() + "  " + helpEntry("q", "quit")
	}

	chrome := 4
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s", header, tabBar, body, help)
}
