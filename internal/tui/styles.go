package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/civic/internal/domain"
)

// Color palette
var (
	colorPrimary   = lipgloss.Color("#1E40AF")
	colorSecondary = lipgloss.Color("#FACC15")
	colorMuted     = lipgloss.Color("#666666")
	colorSuccess   = lipgloss.Color("#22C55E")
	colorWarning   = lipgloss.Color("#F59E0B")
	colorError     = lipgloss.Color("#EF4444")
	colorInfo      = lipgloss.Color("#3B82F6")
	colorPurple    = lipgloss.Color("#A855F7")
	colorFg        = lipgloss.Color("#C0CAF5")
	colorSubtle    = lipgloss.Color("#414868")
	colorHighlight = lipgloss.Color("#7AA2F7")
)

// Styles
var (
	// Tabs
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorHighlight).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorHighlight).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 2)

	// Panels
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorHighlight).
				Padding(1, 2)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(0, 1).
			Width(30)

	selectedCardStyle = cardStyle.
				BorderForeground(colorHighlight)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorSecondary).
			Padding(1, 3)

	// Text
	brandStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorSecondary)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorFg)

	bigNumberStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorFg)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	highlightStyle = lipgloss.NewStyle().
			Foreground(colorHighlight)

	// Header/footer
	headerStyle = lipgloss.NewStyle().
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	// List items
	selectedItemStyle = lipgloss.NewStyle().
				Foreground(colorHighlight).
				Bold(true)

	normalItemStyle = lipgloss.NewStyle().
			Foreground(colorFg)
)

func badge(text string, c lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(c).Bold(true).Render("[" + text + "]")
}

func projectStatusColor(s domain.ProjectStatus) lipgloss.Color {
	switch s {
	case domain.ProjectInProgress:
		return colorInfo
	case domain.ProjectPlanning:
		return colorWarning
	case domain.ProjectApproved:
		return colorPurple
	case domain.ProjectCompleted:
		return colorSuccess
	}
	return colorMuted
}

func taxStatusColor(s domain.TaxStatus) lipgloss.Color {
	switch s {
	case domain.TaxPaid:
		return colorSuccess
	case domain.TaxOverdue:
		return colorError
	}
	return colorInfo
}
