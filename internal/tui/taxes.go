package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/civic/internal/domain"
	"github.com/sadopc/civic/internal/flow"
	"github.com/sadopc/civic/internal/view"
)

type taxesModel struct {
	deps   *deps
	width  int
	height int

	taxes    []domain.Tax
	cursor   int
	selected map[int64]bool

	fl      flow.Flow
	paying  []int64 // ids submitted with the current request
	settled string  // formatted total of the current request
}

func newTaxesModel(d *deps, data domain.UserData) taxesModel {
	m := taxesModel{
		deps:     d,
		selected: make(map[int64]bool),
		fl:       flow.New(flow.PayTaxes),
	}
	m.setData(data)
	return m
}

func (m *taxesModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

// setData refreshes the list and drops selections that are no longer payable.
func (m *taxesModel) setData(d domain.UserData) {
	m.taxes = view.Select(view.Taxes, d).Taxes
	for id := range m.selected {
		t, ok := d.FindTax(id)
		if !ok || !t.Payable() {
			delete(m.selected, id)
		}
	}
	if m.cursor >= len(m.taxes) {
		m.cursor = max(0, len(m.taxes)-1)
	}
}

func (m taxesModel) selectedIDs() []int64 {
	var ids []int64
	for _, t := range m.taxes {
		if m.selected[t.ID] {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func (m taxesModel) update(msg tea.Msg) (taxesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case flowDoneMsg:
		if m.fl.Finish(msg.id, msg.err) {
			if msg.err == nil {
				m.selected = make(map[int64]bool)
			}
			m.setData(m.deps.ops.Snapshot())
		}
		return m, nil
	case tea.KeyMsg:
		if m.fl.Active() {
			return m.updateModal(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m taxesModel) updateList(msg tea.KeyMsg) (taxesModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.taxes)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Select):
		if m.cursor < len(m.taxes) && m.taxes[m.cursor].Payable() {
			id := m.taxes[m.cursor].ID
			if m.selected[id] {
				delete(m.selected, id)
			} else {
				m.selected[id] = true
			}
		}
	case key.Matches(msg, keys.Pay), key.Matches(msg, keys.Enter):
		return m.payNow()
	}
	return m, nil
}

func (m taxesModel) payNow() (taxesModel, tea.Cmd) {
	ids := m.selectedIDs()
	if len(ids) == 0 {
		return m, nil
	}
	if err := m.fl.Begin(); err != nil {
		return m, nil
	}
	m.paying = ids
	m.settled = formatMoney(domain.SumSelected(m.taxes, m.selected))
	ops := m.deps.ops
	return m, m.deps.run(m.fl, func() error {
		ops.PayTaxes(ids...)
		return nil
	})
}

func (m taxesModel) updateModal(msg tea.KeyMsg) (taxesModel, tea.Cmd) {
	if m.fl.Done() && (key.Matches(msg, keys.Enter) || key.Matches(msg, keys.Back)) {
		m.fl.Reset()
		m.paying = nil
	}
	return m, nil
}

func (m taxesModel) view(frame string) string {
	w := m.width - 4

	var rows []string
	rows = append(rows, titleStyle.Render("Taxes"), subtitleStyle.Render("Manage your local tax obligations."), "")

	for i, t := range m.taxes {
		rows = append(rows, m.renderTax(i, t))
	}

	payable := domain.PayableTaxes(m.taxes)
	if len(payable) > 0 {
		rows = append(rows, "", mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 54))))
		rows = append(rows, fmt.Sprintf("  Total due: %s", formatMoney(domain.SumTaxes(payable))))
		rows = append(rows, titleStyle.Render(fmt.Sprintf("  Selected:  %s", formatMoney(domain.SumSelected(m.taxes, m.selected)))))
		pay := mutedStyle.Render("  [ Pay Now ]")
		if len(m.selected) > 0 {
			pay = selectedItemStyle.Render("  [ Pay Now ]")
		}
		rows = append(rows, pay)
	} else {
		rows = append(rows, "", successStyle.Render("  All taxes are paid."))
	}

	if m.fl.Active() {
		rows = append(rows, "", m.renderModal(frame))
	}

	rows = append(rows, "", mutedStyle.Render("  space: select  p/enter: pay now"))
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m taxesModel) renderTax(i int, t domain.Tax) string {
	cursor := "  "
	style := normalItemStyle
	if i == m.cursor {
		cursor = "> "
		style = selectedItemStyle
	}

	box := "   "
	if t.Payable() {
		box = "[ ]"
		if m.selected[t.ID] {
			box = "[x]"
		}
	}

	when := "Due: " + formatDate(t.DueDate)
	if t.Status == domain.TaxPaid && t.PaymentDate != nil {
		when = "Paid on: " + formatPaid(t.PaymentDate)
	}

	status := badge(string(t.Status), taxStatusColor(t.Status))
	if !t.Overdue() && t.PastDue(m.deps.clock.Now()) {
		status += " " + badge("Past due", colorWarning)
	}

	return fmt.Sprintf("%s%s %s %s  %s  %s",
		cursor, box,
		style.Render(fmt.Sprintf("%-16s", t.Name)),
		fmt.Sprintf("%14s", formatMoney(t.Amount)),
		mutedStyle.Render(fmt.Sprintf("%-22s", when)),
		status,
	)
}

func (m taxesModel) renderModal(frame string) string {
	title := titleStyle.Render("Payment Status")
	var body string
	switch m.fl.Phase {
	case flow.Processing:
		body = renderFlow(m.fl, frame, "Processing payment...", "")
	case flow.Success:
		body = lipgloss.JoinVertical(lipgloss.Left,
			renderFlow(m.fl, frame, "", "Payment Successful!"),
			fmt.Sprintf("Your payment of %s for %d tax(es) has been processed.", m.settled, len(m.paying)),
			"",
			mutedStyle.Render("enter: done"),
		)
	case flow.Failed:
		body = lipgloss.JoinVertical(lipgloss.Left, renderFlow(m.fl, frame, "", ""), "", mutedStyle.Render("enter: close"))
	}
	return modalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body))
}
