package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/civic/internal/clock"
	"github.com/sadopc/civic/internal/domain"
	"github.com/sadopc/civic/internal/view"
)

// dashboardLink is a card or quick link that jumps to another view.
type dashboardLink struct {
	title  string
	target view.View
}

var dashboardLinks = []dashboardLink{
	{"Transport", view.Transport},
	{"Taxes", view.Taxes},
	{"Utilities", view.Utilities},
	{"View Projects", view.Projects},
	{"See Benefits", view.Benefits},
	{"Pay Taxes", view.Taxes},
	{"Top-up Card", view.Transport},
}

// the first three links are summary cards
const dashboardCards = 3

type dashboardModel struct {
	clock  clock.Clock
	width  int
	height int

	data   view.Slice
	cursor int
}

func newDashboardModel(c clock.Clock, d domain.UserData) dashboardModel {
	return dashboardModel{clock: c, data: view.Select(view.Dashboard, d)}
}

func (m *dashboardModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *dashboardModel) setData(d domain.UserData) {
	m.data = view.Select(view.Dashboard, d)
}

func (m dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, keys.Left), key.Matches(km, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, keys.Right), key.Matches(km, keys.Down):
		if m.cursor < len(dashboardLinks)-1 {
			m.cursor++
		}
	case key.Matches(km, keys.Enter):
		target := dashboardLinks[m.cursor].target
		return m, func() tea.Msg { return switchViewMsg{view: target} }
	}
	return m, nil
}

// taxCard summarizes the next unpaid tax, or reports that all are paid.
func (m dashboardModel) taxCard() (value, label string, overdue bool) {
	next, ok := domain.NextPayableTax(m.data.Taxes)
	if !ok {
		return "All Paid", "Your taxes are up to date", false
	}
	return formatMoney(next.Amount), "Next payment due: " + formatDate(next.DueDate),
		next.Overdue() || next.PastDue(m.clock.Now())
}

func (m dashboardModel) waterUsage() string {
	for _, u := range m.data.Utilities {
		if u.Name == domain.Water {
			return u.Usage
		}
	}
	return "-"
}

func (m dashboardModel) view() string {
	w := m.width - 4
	name := ""
	if m.data.User != nil {
		name = m.data.User.Name
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(fmt.Sprintf("Welcome, %s!", name)),
		subtitleStyle.Render("Here's a quick summary of your civic services."),
	)

	balance := ""
	if m.data.Transport != nil {
		balance = formatMoney(m.data.Transport.Balance)
	}
	taxValue, taxLabel, overdue := m.taxCard()
	taxStyle := bigNumberStyle
	if overdue {
		taxStyle = errorStyle.Bold(true)
	}

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderCard(0, bigNumberStyle.Render(balance), "Current MetroCard Balance"),
		m.renderCard(1, taxStyle.Render(taxValue), taxLabel),
		m.renderCard(2, bigNumberStyle.Render(m.waterUsage()), "Latest Water Bill Usage"),
	)

	var links []string
	for i := dashboardCards; i < len(dashboardLinks); i++ {
		style := normalItemStyle
		cursor := "  "
		if i == m.cursor {
			style = selectedItemStyle
			cursor = "> "
		}
		title := dashboardLinks[i].title
		if dashboardLinks[i].target == view.Projects && m.data.ProjectCount > 0 {
			title = fmt.Sprintf("%s (%d)", title, m.data.ProjectCount)
		}
		links = append(links, style.Render(cursor+title))
	}
	quick := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Quick Links"),
		lipgloss.JoinHorizontal(lipgloss.Top, links...),
	)

	banner := lipgloss.NewStyle().Foreground(colorSecondary).Render(
		"Have a say in our city's future! Join the \"Budget Saturday\" meeting to discuss new city projects.")

	nav := mutedStyle.Render("  ←/→: move  enter: open")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", cards, "", quick, "", banner, "", nav),
	)
}

func (m dashboardModel) renderCard(i int, value, label string) string {
	style := cardStyle
	if i == m.cursor {
		style = selectedCardStyle
	}
	link := dashboardLinks[i]
	return style.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(link.title),
		value,
		mutedStyle.Render(label),
		highlightStyle.Render("Go to "+link.title+" ›"),
	))
}
