package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/civic/internal/domain"
	"github.com/sadopc/civic/internal/view"
)

type projectsMode int

const (
	modeList projectsMode = iota
	modeMap
)

const (
	mapWidth  = 60
	mapHeight = 15
)

// projectFilters is "All" followed by every status.
var projectFilters = append([]domain.ProjectStatus{""}, domain.ProjectStatuses...)

type projectsModel struct {
	deps   *deps
	width  int
	height int

	projects []domain.Project
	filter   int
	mode     projectsMode
	cursor   int

	detailID  int64 // project shown in the detail panel, 0 for none
	relCursor int

	bar progress.Model
}

func newProjectsModel(d *deps, data domain.UserData) projectsModel {
	m := projectsModel{
		deps: d,
		bar:  progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
	}
	m.setData(data)
	return m
}

func (m *projectsModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.bar.Width = min(40, max(10, w/3))
}

func (m *projectsModel) setData(d domain.UserData) {
	m.projects = view.Select(view.Projects, d).Projects
	if n := len(m.filtered()); m.cursor >= n {
		m.cursor = max(0, n-1)
	}
}

func filterName(s domain.ProjectStatus) string {
	if s == "" {
		return "All"
	}
	return string(s)
}

func (m projectsModel) filtered() []domain.Project {
	return domain.FilterProjects(m.projects, projectFilters[m.filter])
}

func (m projectsModel) detail() (domain.Project, bool) {
	if m.detailID == 0 {
		return domain.Project{}, false
	}
	return domain.UserData{Projects: m.projects}.FindProject(m.detailID)
}

func (m projectsModel) update(msg tea.Msg) (projectsModel, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if _, open := m.detail(); open {
		return m.updateDetail(km)
	}

	switch {
	case key.Matches(km, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, keys.Down):
		if m.cursor < len(m.filtered())-1 {
			m.cursor++
		}
	case key.Matches(km, keys.Left):
		m.filter = (m.filter + len(projectFilters) - 1) % len(projectFilters)
		m.cursor = 0
	case key.Matches(km, keys.Right):
		m.filter = (m.filter + 1) % len(projectFilters)
		m.cursor = 0
	case key.Matches(km, keys.Mode):
		if m.mode == modeList {
			m.mode = modeMap
		} else {
			m.mode = modeList
		}
	case key.Matches(km, keys.Enter):
		if f := m.filtered(); m.cursor < len(f) {
			m.detailID = f[m.cursor].ID
			m.relCursor = 0
		}
	}
	return m, nil
}

func (m projectsModel) updateDetail(km tea.KeyMsg) (projectsModel, tea.Cmd) {
	p, _ := m.detail()
	related := domain.RelatedProjects(m.projects, p)
	switch {
	case key.Matches(km, keys.Back):
		m.detailID = 0
	case key.Matches(km, keys.Up):
		if m.relCursor > 0 {
			m.relCursor--
		}
	case key.Matches(km, keys.Down):
		if m.relCursor < len(related)-1 {
			m.relCursor++
		}
	case key.Matches(km, keys.Enter):
		if m.relCursor < len(related) {
			m.detailID = related[m.relCursor].ID
			m.relCursor = 0
		}
	}
	return m, nil
}

func (m projectsModel) view() string {
	w := m.width - 4
	if p, ok := m.detail(); ok {
		return panelStyle.Width(w).Render(m.renderDetail(p))
	}

	var tabs []string
	for i, s := range projectFilters {
		if i == m.filter {
			tabs = append(tabs, activeTabStyle.Render(filterName(s)))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(filterName(s)))
		}
	}
	modeLabel := "List View"
	if m.mode == modeMap {
		modeLabel = "Map View"
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("City Projects"), "  ", mutedStyle.Render(modeLabel),
	)
	rows := []string{header, lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...), ""}

	filtered := m.filtered()
	switch {
	case len(filtered) == 0:
		rows = append(rows,
			titleStyle.Render("No Projects Found"),
			mutedStyle.Render(fmt.Sprintf("There are no projects with the status %q.", filterName(projectFilters[m.filter]))),
		)
	case m.mode == modeMap:
		rows = append(rows, m.renderMap(filtered))
	default:
		for i, p := range filtered {
			rows = append(rows, m.renderRow(i, p))
		}
	}

	rows = append(rows, "", mutedStyle.Render("  ←/→: filter  ↑/↓: move  m: list/map  enter: details"))
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m projectsModel) renderRow(i int, p domain.Project) string {
	cursor := "  "
	style := normalItemStyle
	if i == m.cursor {
		cursor = "> "
		style = selectedItemStyle
	}
	line := fmt.Sprintf("%s%s %s", cursor, style.Render(p.Name), badge(string(p.Status), projectStatusColor(p.Status)))
	if p.Overdue(m.deps.clock.Now()) {
		line += " " + badge("Overdue", colorError)
	}
	meta := mutedStyle.Render(fmt.Sprintf("    Contractor: %s  Budget: %s  Deadline: %s",
		p.Company, formatBudget(p.Budget), formatDate(p.EndDate)))
	bar := "    " + m.bar.ViewAs(float64(p.Progress)/100) + fmt.Sprintf(" %d%%", p.Progress)
	return lipgloss.JoinVertical(lipgloss.Left, line, meta, bar, "")
}

// renderMap plots each project's coordinates, given as percentages of the
// map, on a character grid.
func (m projectsModel) renderMap(projects []domain.Project) string {
	grid := make([][]string, mapHeight)
	for r := range grid {
		grid[r] = make([]string, mapWidth)
		for c := range grid[r] {
			grid[r][c] = mutedStyle.Render("·")
		}
	}

	var legend []string
	for i, p := range projects {
		marker := strconv.Itoa(i + 1)
		style := lipgloss.NewStyle().Foreground(projectStatusColor(p.Status)).Bold(true)
		if i == m.cursor {
			style = style.Reverse(true)
		}
		legend = append(legend, fmt.Sprintf("%s %s", style.Render(marker), p.Name))
		if p.Coordinates == nil {
			continue
		}
		col := clampInt(p.Coordinates.X*(mapWidth-1)/100, 0, mapWidth-1)
		row := clampInt(p.Coordinates.Y*(mapHeight-1)/100, 0, mapHeight-1)
		grid[row][col] = style.Render(marker)
	}

	lines := make([]string, len(grid))
	for r := range grid {
		lines[r] = strings.Join(grid[r], "")
	}
	frame := lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(colorSubtle).Render(strings.Join(lines, "\n"))

	sel := ""
	if m.cursor < len(projects) {
		p := projects[m.cursor]
		sel = lipgloss.JoinHorizontal(lipgloss.Bottom,
			titleStyle.Render(p.Name), " ", badge(string(p.Status), projectStatusColor(p.Status)),
			mutedStyle.Render("  enter: view details"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, frame, strings.Join(legend, "  "), sel)
}

func (m projectsModel) renderDetail(p domain.Project) string {
	rows := []string{
		lipgloss.JoinHorizontal(lipgloss.Bottom, titleStyle.Render(p.Name), " ", badge(string(p.Status), projectStatusColor(p.Status))),
		"",
		mutedStyle.Render("Description"),
		lipgloss.NewStyle().Width(max(20, m.width-12)).Render(p.Description),
		"",
		fmt.Sprintf("Contractor:   %s", p.Company),
		fmt.Sprintf("Total Budget: %s", formatBudget(p.Budget)),
		fmt.Sprintf("Deadline:     %s", formatDate(p.EndDate)),
	}
	if p.Overdue(m.deps.clock.Now()) {
		rows = append(rows, errorStyle.Render("Overdue"))
	}
	rows = append(rows, "",
		titleStyle.Render(fmt.Sprintf("Progress: %d%%", p.Progress)),
		m.bar.ViewAs(float64(p.Progress)/100),
	)

	if len(p.Milestones) > 0 {
		rows = append(rows, "", titleStyle.Render("Key Milestones"), renderTimeline(p))
		for i, ms := range p.Milestones {
			mark := mutedStyle.Render("○")
			if ms.Status == domain.MilestoneCompleted {
				mark = successStyle.Render("●")
			}
			rows = append(rows, fmt.Sprintf("  %d. %s %-14s %s  %s", i+1, mark, ms.Name, ms.Date.Format("02 Jan"), mutedStyle.Render(string(ms.Status))))
		}
	}

	if len(p.Stakeholders) > 0 {
		rows = append(rows, "", titleStyle.Render("Stakeholders"))
		for _, s := range p.Stakeholders {
			rows = append(rows, "  • "+s)
		}
	}

	related := domain.RelatedProjects(m.projects, p)
	if len(related) > 0 {
		rows = append(rows, "", titleStyle.Render("Related Projects"))
		for i, r := range related {
			cursor, style := "  ", normalItemStyle
			if i == m.relCursor {
				cursor, style = "> ", selectedItemStyle
			}
			rows = append(rows, style.Render(cursor+r.Name))
		}
	}

	rows = append(rows, "", mutedStyle.Render("  esc: back  ↑/↓ + enter: open related project"))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderTimeline draws the milestones as a line filled up to the last
// completed one.
func renderTimeline(p domain.Project) string {
	ms := p.Milestones
	last := int(math.Round(p.MilestoneProgress() * float64(len(ms)-1)))
	var b strings.Builder
	b.WriteString("  ")
	for i, m := range ms {
		dot := mutedStyle.Render("○")
		if m.Status == domain.MilestoneCompleted {
			dot = highlightStyle.Render("●")
		}
		b.WriteString(dot)
		if i < len(ms)-1 {
			seg := mutedStyle.Render("────────")
			if i < last {
				seg = highlightStyle.Render("━━━━━━━━")
			}
			b.WriteString(seg)
		}
	}
	return b.String()
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
