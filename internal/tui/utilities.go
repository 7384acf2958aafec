package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/civic/internal/domain"
	"github.com/sadopc/civic/internal/flow"
	"github.com/sadopc/civic/internal/view"
)

type utilityModal int

const (
	modalNone utilityModal = iota
	modalPay
	modalAutoPay
)

type utilitiesModel struct {
	deps   *deps
	width  int
	height int

	utilities []domain.Utility
	cursor    int

	modal  utilityModal
	target domain.UtilityName
	fl     flow.Flow

	chart barchart.Model
}

func newUtilitiesModel(d *deps, data domain.UserData) utilitiesModel {
	m := utilitiesModel{deps: d}
	m.setData(data)
	return m
}

func (m *utilitiesModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.buildChart()
}

func (m *utilitiesModel) setData(d domain.UserData) {
	m.utilities = view.Select(view.Utilities, d).Utilities
	if m.cursor >= len(m.utilities) {
		m.cursor = max(0, len(m.utilities)-1)
	}
	m.buildChart()
}

// buildChart draws the magnitude of each usage change. Increases are red and
// decreases green.
func (m *utilitiesModel) buildChart() {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 8
	if m.height > 30 {
		chartHeight = 12
	}

	m.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, c := range domain.UsageChanges(m.utilities) {
		color := colorSuccess
		if c.Change > 0 {
			color = colorError
		}
		bars = append(bars, barchart.BarData{
			Label: fmt.Sprintf("%s %s", c.Name, formatChange(c.Change)),
			Values: []barchart.BarValue{{
				Name:  string(c.Name),
				Value: math.Abs(float64(c.Change)),
				Style: lipgloss.NewStyle().Foreground(color),
			}},
		})
	}
	if len(bars) == 0 {
		return
	}
	m.chart.PushAll(bars)
	m.chart.Draw()
}

func (m utilitiesModel) current() (domain.Utility, bool) {
	if m.cursor < len(m.utilities) {
		return m.utilities[m.cursor], true
	}
	return domain.Utility{}, false
}

// modalUtility is the live state of the utility the open modal refers to.
func (m utilitiesModel) modalUtility() domain.Utility {
	for _, u := range m.utilities {
		if u.Name == m.target {
			return u
		}
	}
	return domain.Utility{Name: m.target}
}

func (m utilitiesModel) update(msg tea.Msg) (utilitiesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case flowDoneMsg:
		if m.fl.Finish(msg.id, msg.err) {
			m.setData(m.deps.ops.Snapshot())
		}
		return m, nil
	case tea.KeyMsg:
		if m.modal != modalNone {
			return m.updateModal(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m utilitiesModel) updateList(msg tea.KeyMsg) (utilitiesModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up), key.Matches(msg, keys.Left):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down), key.Matches(msg, keys.Right):
		if m.cursor < len(m.utilities)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Pay):
		if u, ok := m.current(); ok && u.Payable() && !u.AutoPay {
			m.openModal(modalPay, flow.PayUtility, u.Name)
		}
	case key.Matches(msg, keys.AutoPay):
		if u, ok := m.current(); ok && u.Billable() {
			m.openModal(modalAutoPay, flow.ToggleAutoPay, u.Name)
		}
	}
	return m, nil
}

func (m *utilitiesModel) openModal(kind utilityModal, fk flow.Kind, name domain.UtilityName) {
	m.modal = kind
	m.target = name
	m.fl = flow.New(fk)
}

func (m utilitiesModel) updateModal(msg tea.KeyMsg) (utilitiesModel, tea.Cmd) {
	switch m.fl.Phase {
	case flow.Processing:
		return m, nil
	case flow.Success, flow.Failed:
		if key.Matches(msg, keys.Enter) || key.Matches(msg, keys.Back) {
			m.modal = modalNone
			m.fl.Reset()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Enter):
		return m.confirm()
	case key.Matches(msg, keys.Back):
		m.modal = modalNone
	}
	return m, nil
}

func (m utilitiesModel) confirm() (utilitiesModel, tea.Cmd) {
	if err := m.fl.Begin(); err != nil {
		return m, nil
	}
	name, ops := m.target, m.deps.ops
	if m.modal == modalPay {
		return m, m.deps.run(m.fl, func() error {
			return ops.PayUtility(name)
		})
	}
	return m, m.deps.run(m.fl, func() error {
		_, err := ops.ToggleAutoPay(name)
		return err
	})
}

func (m utilitiesModel) view(frame string) string {
	w := m.width - 4

	var cards []string
	for i, u := range m.utilities {
		cards = append(cards, m.renderCard(i, u))
	}

	rows := []string{
		titleStyle.Render("Utilities"),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, cards...),
	}

	if m.modal != modalNone {
		rows = append(rows, "", m.renderModal(frame))
	}

	rows = append(rows, "",
		titleStyle.Render("Monthly Usage Change"),
		subtitleStyle.Render("Comparison with the previous month."),
		m.chart.View(),
	)

	if history := m.renderHistory(w); history != "" {
		rows = append(rows, "", history)
	}

	rows = append(rows, "", mutedStyle.Render("  ←/→: move  p: pay bill  a: manage auto-pay"))
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m utilitiesModel) renderCard(i int, u domain.Utility) string {
	style := cardStyle.Width(24)
	if i == m.cursor {
		style = selectedCardStyle.Width(24)
	}

	if !u.Billable() {
		return style.Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render(string(u.Name)),
			mutedStyle.Render("Service Status"),
			successStyle.Render(string(u.Status)),
			mutedStyle.Render("No payment required."),
		))
	}

	name := titleStyle.Render(string(u.Name))
	if u.AutoPay {
		name += " " + badge("Auto-Pay", colorSuccess)
	}

	when := "Due: " + formatDate(*u.DueDate)
	if u.Status == domain.UtilityPaid {
		when = "Paid this cycle"
	}

	var action string
	switch {
	case u.Status == domain.UtilityDue && u.AutoPay:
		action = successStyle.Render("Auto-payment on " + formatDate(*u.DueDate))
	case u.Status == domain.UtilityDue:
		action = selectedItemStyle.Render("[p] Pay Bill")
	case u.Status == domain.UtilityPaid && !u.AutoPay:
		action = successStyle.Render("✓ Paid this month")
	}
	manage := "[a] Set up Auto-Pay"
	if u.AutoPay {
		manage = "[a] Manage Auto-Pay"
	}

	return style.Render(lipgloss.JoinVertical(lipgloss.Left,
		name,
		bigNumberStyle.Render(formatMoney(*u.Amount)),
		mutedStyle.Render(when),
		mutedStyle.Render(u.Usage+"  "+formatChange(u.Change)),
		action,
		highlightStyle.Render(manage),
	))
}

func (m utilitiesModel) renderHistory(w int) string {
	paid := domain.PaidUtilities(m.utilities)
	if len(paid) == 0 {
		return ""
	}
	rows := []string{
		titleStyle.Render("Payment History"),
		subtitleStyle.Render("Recent utility payments."),
		mutedStyle.Render("  " + strings.Repeat("─", min(w-6, 54))),
	}
	for _, u := range paid {
		rows = append(rows, fmt.Sprintf("  %s %-18s %-20s %14s",
			successStyle.Render("✓"), u.Name, "Paid on "+formatPaid(u.PaymentDate), formatMoney(*u.Amount)))
	}
	return strings.Join(rows, "\n")
}

func (m utilitiesModel) renderModal(frame string) string {
	u := m.modalUtility()

	if m.modal == modalPay {
		title := titleStyle.Render(fmt.Sprintf("Pay %s Bill", u.Name))
		var body string
		switch m.fl.Phase {
		case flow.Processing:
			body = renderFlow(m.fl, frame, "Processing payment...", "")
		case flow.Success:
			body = lipgloss.JoinVertical(lipgloss.Left,
				renderFlow(m.fl, frame, "", "Payment Successful!"),
				fmt.Sprintf("Your %s bill has been paid.", u.Name),
				"", mutedStyle.Render("enter: done"))
		case flow.Failed:
			body = lipgloss.JoinVertical(lipgloss.Left, renderFlow(m.fl, frame, "", ""), "", mutedStyle.Render("enter: close"))
		default:
			amount, due := "", ""
			if u.Billable() {
				amount, due = formatMoney(*u.Amount), formatDate(*u.DueDate)
			}
			body = lipgloss.JoinVertical(lipgloss.Left,
				"You are about to pay:",
				bigNumberStyle.Render(amount),
				fmt.Sprintf("for your %s bill due on %s.", u.Name, due),
				"",
				selectedItemStyle.Render("enter: Confirm Payment"),
				mutedStyle.Render("esc: cancel"))
		}
		return modalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body))
	}

	title := titleStyle.Render(fmt.Sprintf("Manage Auto-Pay for %s", u.Name))
	var body string
	switch m.fl.Phase {
	case flow.Processing:
		body = renderFlow(m.fl, frame, "Updating settings...", "")
	case flow.Success:
		status := "inactive"
		if u.AutoPay {
			status = "active"
		}
		body = lipgloss.JoinVertical(lipgloss.Left,
			renderFlow(m.fl, frame, "", "Success!"),
			fmt.Sprintf("Auto-Pay for %s is now %s.", u.Name, status),
			"", mutedStyle.Render("enter: done"))
	case flow.Failed:
		body = lipgloss.JoinVertical(lipgloss.Left, renderFlow(m.fl, frame, "", ""), "", mutedStyle.Render("enter: close"))
	default:
		if u.AutoPay {
			body = lipgloss.JoinVertical(lipgloss.Left,
				"Automatic payments are currently active for this utility.",
				"Your bill will be paid on the due date each month.",
				"",
				errorStyle.Render("enter: Cancel Auto-Pay"),
				mutedStyle.Render("esc: back"))
		} else {
			body = lipgloss.JoinVertical(lipgloss.Left,
				fmt.Sprintf("Enable automatic payments to have your %s bill paid on its due date each month.", u.Name),
				"You will be notified 3 days before each payment.",
				"",
				selectedItemStyle.Render("enter: Activate Auto-Pay"),
				mutedStyle.Render("esc: back"))
		}
	}
	return modalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body))
}
