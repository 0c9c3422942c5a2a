package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smartcommhub/commhub/pkg/client"
	"github.com/smartcommhub/commhub/pkg/domain"
)

type ordersLoadedMsg struct {
	orders []domain.ServiceOrder
	err    error
}

type orderActionMsg struct {
	err error
}

// ordersModel lists service orders. Providers and administrators move
// orders along (confirm, complete); residents and family rate completed
// ones.
type ordersModel struct {
	client  *client.Client
	role    domain.Role
	orders  []domain.ServiceOrder
	cursor  int
	rating  bool
	loading bool
	status  string
	err     string
	width   int
	height  int
}

func newOrdersModel(c *client.Client) ordersModel {
	return ordersModel{client: c, loading: true}
}

func (m ordersModel) Init() tea.Cmd {
	return m.load()
}

func (m ordersModel) load() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		orders, err := c.ListOrders(context.Background(), 0, "", pageSize, 0)
		if err != nil && client.IsUnauthorized(err) {
			return sessionEndedMsg{reason: "session expired"}
		}
		return ordersLoadedMsg{orders: orders, err: err}
	}
}

// canManage reports whether the current role may confirm/complete orders.
func (m ordersModel) canManage() bool {
	return m.role == domain.RoleProvider || m.role == domain.RoleAdmin
}

func (m ordersModel) selected() *domain.ServiceOrder {
	if m.cursor < 0 || m.cursor >= len(m.orders) {
		return nil
	}
	return &m.orders[m.cursor]
}

func (m ordersModel) Update(msg tea.Msg) (ordersModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ordersLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err.Error()
		} else {
			m.orders = msg.orders
			m.err = ""
			if m.cursor >= len(m.orders) {
				m.cursor = 0
			}
		}
		return m, nil

	case profileLoadedMsg:
		if msg.profile != nil {
			m.role = msg.profile.Role
		}
		return m, nil

	case orderActionMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.status = ""
		m.loading = true
		return m, m.load()

	case tea.KeyMsg:
		// Rating mode captures the number keys that otherwise switch tabs.
		if m.rating {
			switch key := msg.String(); key {
			case "1", "2", "3", "4", "5":
				m.rating = false
				if o := m.selected(); o != nil {
					return m, m.rate(o.OrderID, int(key[0]-'0'))
				}
			case "esc":
				m.rating = false
				m.status = ""
			}
			return m, nil
		}
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.orders)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "r":
			m.loading = true
			return m, m.load()
		case "c":
			if o := m.selected(); o != nil && m.canManage() && o.OrderStatus == domain.OrderPending {
				return m, m.action(o.OrderID, "confirm")
			}
		case "x":
			if o := m.selected(); o != nil && m.canManage() && o.OrderStatus == domain.OrderConfirmed {
				return m, m.action(o.OrderID, "complete")
			}
		case "e":
			if o := m.selected(); o != nil && o.OrderStatus == domain.OrderCompleted && o.EvalScore == 0 {
				m.rating = true
				m.status = "press 1-5 to rate, esc to cancel"
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m ordersModel) action(orderID int64, verb string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		var err error
		switch verb {
		case "confirm":
			err = c.ConfirmOrder(context.Background(), orderID)
		case "complete":
			err = c.CompleteOrder(context.Background(), orderID)
		}
		if err != nil && client.IsUnauthorized(err) {
			return sessionEndedMsg{reason: "session expired"}
		}
		return orderActionMsg{err: err}
	}
}

func (m ordersModel) rate(orderID int64, score int) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		err := c.RateOrder(context.Background(), orderID, score, "")
		if err != nil && client.IsUnauthorized(err) {
			return sessionEndedMsg{reason: "session expired"}
		}
		return orderActionMsg{err: err}
	}
}

func (m ordersModel) helpKeys() string {
	base := helpEntry("j/k", "nav") + "  " + helpEntry("r", "reload")
	if m.rating {
		return helpEntry("1-5", "score") + "  " + helpEntry("esc", "cancel")
	}
	if m.canManage() {
		return base + "  " + helpEntry("c", "confirm") + "  " + helpEntry("x", "complete")
	}
	return base + "  " + helpEntry("e", "rate done")
}

func (m ordersModel) View() string {
	if m.loading && len(m.orders) == 0 {
		return " " + dimStyle.Render("loading orders...")
	}
	if m.err != "" {
		return " " + dangerStyle.Render("error: "+m.err)
	}
	if len(m.orders) == 0 {
		return " " + dimStyle.Render("no service orders")
	}

	var sb strings.Builder
	sb.WriteString(" " + selectedStyle.Render("Service orders") + "\n\n")
	for i, o := range m.orders {
		marker := "  "
		if i == m.cursor {
			marker = accentStyle.Render("> ")
		}
		line := fmt.Sprintf("#%-5d elder %-5d service %-5d", o.OrderID, o.ElderlyID, o.ServiceID)
		status := StatusStyle(o.OrderStatus).Render(o.OrderStatus)
		extra := ""
		if o.EvalScore > 0 {
			extra = "  " + goldStyle.Render(strings.Repeat("★", o.EvalScore))
		}
		sb.WriteString(" " + marker + line + "  " + status + extra + "  " +
			metaStyle.Render(o.ServiceTime.Format("01-02 15:04")) + "\n")
	}
	if m.status != "" {
		sb.WriteString("\n " + warnStyle.Render(m.status) + "\n")
	}
	return sb.String()
}
