package tui

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/civic/internal/domain"
	"github.com/sadopc/civic/internal/flow"
	"github.com/sadopc/civic/internal/view"
	"github.com/shopspring/decimal"
)

type transportModel struct {
	deps   *deps
	width  int
	height int

	card domain.Transport

	presets  []int
	fallback int
	selected int // index into presets

	modalOpen bool
	fl        flow.Flow
	amount    int // amount of the request in flight or just finished
}

func newTransportModel(d *deps, data domain.UserData, presets []int, def int) transportModel {
	m := transportModel{
		deps:     d,
		presets:  presets,
		fallback: def,
		fl:       flow.New(flow.TopUp),
	}
	m.setData(data)
	m.selected = m.defaultIndex()
	return m
}

func (m *transportModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *transportModel) setData(d domain.UserData) {
	m.card = *view.Select(view.Transport, d).Transport
}

func (m transportModel) defaultIndex() int {
	if i := slices.Index(m.presets, m.fallback); i >= 0 {
		return i
	}
	return 0
}

func (m transportModel) selectedAmount() int {
	if len(m.presets) == 0 {
		return m.fallback
	}
	return m.presets[m.selected]
}

func (m transportModel) update(msg tea.Msg) (transportModel, tea.Cmd) {
	switch msg := msg.(type) {
	case flowDoneMsg:
		if m.fl.Finish(msg.id, msg.err) {
			m.setData(m.deps.ops.Snapshot())
		}
		return m, nil
	case tea.KeyMsg:
		if m.modalOpen {
			return m.updateModal(msg)
		}
		if key.Matches(msg, keys.TopUp) || key.Matches(msg, keys.Enter) {
			m.modalOpen = true
			m.selected = m.defaultIndex()
		}
	}
	return m, nil
}

func (m transportModel) updateModal(msg tea.KeyMsg) (transportModel, tea.Cmd) {
	switch m.fl.Phase {
	case flow.Processing:
		return m, nil
	case flow.Success, flow.Failed:
		if key.Matches(msg, keys.Enter) || key.Matches(msg, keys.Back) {
			m.closeModal()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Left), key.Matches(msg, keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, keys.Right), key.Matches(msg, keys.Down):
		if m.selected < len(m.presets)-1 {
			m.selected++
		}
	case key.Matches(msg, keys.Enter):
		return m.confirm()
	case key.Matches(msg, keys.Back):
		m.closeModal()
	}
	return m, nil
}

func (m transportModel) confirm() (transportModel, tea.Cmd) {
	if err := m.fl.Begin(); err != nil {
		return m, nil
	}
	m.amount = m.selectedAmount()
	amount, ops := decimal.NewFromInt(int64(m.amount)), m.deps.ops
	return m, m.deps.run(m.fl, func() error {
		return ops.TopUp(amount)
	})
}

func (m *transportModel) closeModal() {
	m.modalOpen = false
	m.fl.Reset()
	m.selected = m.defaultIndex()
}

func (m transportModel) view(frame string) string {
	w := m.width - 4

	card := activePanelStyle.Width(min(50, max(30, w-4))).Render(lipgloss.JoinVertical(lipgloss.Center,
		brandStyle.Render(m.card.CardName),
		"",
		mutedStyle.Render("Current Balance"),
		bigNumberStyle.Render(fmt.Sprintf("%s %s", m.card.Balance.StringFixed(2), m.card.Currency)),
	))

	rows := []string{titleStyle.Render("Transport"), "", card, ""}
	if m.modalOpen {
		rows = append(rows, m.renderModal(frame))
	} else {
		rows = append(rows, mutedStyle.Render("  t/enter: top-up balance"))
	}
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m transportModel) renderModal(frame string) string {
	title := titleStyle.Render("Top-Up MetroCard")
	cur := m.card.Currency

	var body string
	switch m.fl.Phase {
	case flow.Processing:
		body = renderFlow(m.fl, frame, "Processing payment...", "")
	case flow.Success:
		body = lipgloss.JoinVertical(lipgloss.Left,
			renderFlow(m.fl, frame, "", "Success!"),
			fmt.Sprintf("%d %s has been added to your card.", m.amount, cur),
			titleStyle.Render(fmt.Sprintf("New Balance: %s %s", m.card.Balance.StringFixed(2), cur)),
			"",
			mutedStyle.Render("enter: done"),
		)
	case flow.Failed:
		body = lipgloss.JoinVertical(lipgloss.Left,
			renderFlow(m.fl, frame, "", ""),
			"",
			mutedStyle.Render("enter: close"),
		)
	default:
		var opts []string
		for i, p := range m.presets {
			label := fmt.Sprintf(" %d %s ", p, cur)
			if i == m.selected {
				opts = append(opts, selectedCardStyle.Width(12).Render(label))
			} else {
				opts = append(opts, cardStyle.Width(12).Render(label))
			}
		}
		body = lipgloss.JoinVertical(lipgloss.Left,
			"Select an amount to add to your card.",
			lipgloss.JoinHorizontal(lipgloss.Top, opts...),
			"",
			selectedItemStyle.Render(fmt.Sprintf("enter: Confirm %d %s", m.selectedAmount(), cur)),
			mutedStyle.Render("←/→: choose  esc: cancel"),
		)
	}
	return modalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body))
}
