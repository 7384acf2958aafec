package tui

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/civic/internal/domain"
	"github.com/sadopc/civic/internal/export"
	"github.com/sadopc/civic/internal/view"
	"go.uber.org/zap"
)

// copiedFor is how long the "Copied!" confirmation stays visible.
const copiedFor = 2 * time.Second

type benefitsModel struct {
	deps   *deps
	width  int
	height int

	benefits []domain.Benefit
	cursor   int

	copy    func(string) error
	copied  int64 // id of the benefit showing "Copied!", 0 for none
	copySeq int
	copyErr string
}

func newBenefitsModel(d *deps, data domain.UserData, copyFn func(string) error) benefitsModel {
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}
	m := benefitsModel{deps: d, copy: copyFn}
	m.setData(data)
	return m
}

func (m *benefitsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *benefitsModel) setData(d domain.UserData) {
	m.benefits = view.Select(view.Benefits, d).Benefits
	if m.cursor >= len(m.benefits) {
		m.cursor = max(0, len(m.benefits)-1)
	}
}

func (m benefitsModel) update(msg tea.Msg) (benefitsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case copiedMsg:
		if msg.err != nil {
			m.deps.log.Warn("copy benefit summary", zap.Error(msg.err))
			m.copyErr = "Clipboard unavailable: " + msg.err.Error()
			return m, nil
		}
		m.copyErr = ""
		m.copied = msg.benefitID
		m.copySeq++
		return m, m.deps.sleep(copiedFor, clearCopiedMsg{seq: m.copySeq})

	case clearCopiedMsg:
		if msg.seq == m.copySeq {
			m.copied = 0
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up), key.Matches(msg, keys.Left):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down), key.Matches(msg, keys.Right):
			if m.cursor < len(m.benefits)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Copy):
			return m, m.share()
		}
	}
	return m, nil
}

// share copies the summary of the benefit under the cursor.
func (m benefitsModel) share() tea.Cmd {
	if m.cursor >= len(m.benefits) {
		return nil
	}
	b := m.benefits[m.cursor]
	text, copyFn := export.BenefitSummary(b), m.copy
	return func() tea.Msg {
		return copiedMsg{benefitID: b.ID, err: copyFn(text)}
	}
}

func (m benefitsModel) view() string {
	w := m.width - 4

	rows := []string{titleStyle.Render("Social Benefits"), ""}
	if len(m.benefits) == 0 {
		rows = append(rows, mutedStyle.Render("You have no active benefits."))
	}
	for i, b := range m.benefits {
		rows = append(rows, m.renderBenefit(i, b))
	}
	if m.copyErr != "" {
		rows = append(rows, "", errorStyle.Render(m.copyErr))
	}
	rows = append(rows, "", mutedStyle.Render("  ↑/↓: move  c: copy summary to share"))
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m benefitsModel) renderBenefit(i int, b domain.Benefit) string {
	style := cardStyle.Width(min(60, max(30, m.width-10)))
	if i == m.cursor {
		style = selectedCardStyle.Width(min(60, max(30, m.width-10)))
	}

	statusColor := colorWarning
	if b.Status == domain.BenefitApproved {
		statusColor = colorSuccess
	}

	share := highlightStyle.Render("[c] Share")
	if m.copied == b.ID {
		share = successStyle.Render("✓ Copied!")
	}

	return style.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(b.Name)+"  "+badge(string(b.Status), statusColor),
		mutedStyle.Render("Recipient: "+b.Recipient),
		fmt.Sprintf("Next Payment: %s", b.NextPaymentDate),
		fmt.Sprintf("Annual Amount: %s", formatMoney(b.AnnualAmount)),
		share,
	))
}
