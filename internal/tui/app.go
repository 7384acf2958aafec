package tui

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/civic/internal/clock"
	"github.com/sadopc/civic/internal/domain"
	"github.com/sadopc/civic/internal/export"
	"github.com/sadopc/civic/internal/flow"
	"github.com/sadopc/civic/internal/state"
	"github.com/sadopc/civic/internal/view"
	"go.uber.org/zap"
)

const loadingText = "Loading Florești Civic Portal..."

// Options wires the App to its collaborators. Zero values get defaults.
type Options struct {
	Store   *state.Store
	Session *state.Session
	Runner  *flow.Runner
	Clock   clock.Clock
	Log     *zap.Logger

	LoadingDelay time.Duration
	TopUpPresets []int
	TopUpDefault int
	DefaultEmail string
	// ExportDir receives statements exported with the e key.
	ExportDir string
	// Copy writes to the system clipboard.
	Copy func(string) error
}

// App is the root Bubble Tea model.
type App struct {
	deps    *deps
	store   *state.Store
	session *state.Session

	updates     <-chan domain.UserData
	unsubscribe func()

	loadingDelay time.Duration
	presets      []int
	topUpDefault int
	defaultEmail string
	exportDir    string
	copyFn       func(string) error

	width  int
	height int

	active        view.View
	showHelp      bool
	exportPicking bool
	exportCursor  int
	data          domain.UserData

	login     loginModel
	dashboard dashboardModel
	projects  projectsModel
	transport transportModel
	taxes     taxesModel
	utilities utilitiesModel
	benefits  benefitsModel

	help    help.Model
	spinner   spinner.Model
	status    string
	statusErr bool
}

func NewApp(opts Options) App {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Runner == nil {
		opts.Runner = flow.NewRunner(opts.Clock, nil, opts.Log)
	}
	if len(opts.TopUpPresets) == 0 {
		opts.TopUpPresets = []int{50, 100, 200, 500}
	}
	if opts.TopUpDefault <= 0 {
		opts.TopUpDefault = 100
	}

	h := help.New()
	h.ShowAll = false

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = highlightStyle

	updates, unsubscribe := opts.Store.Subscribe()

	a := App{
		deps:         newDeps(opts.Runner, opts.Store, opts.Session, opts.Clock, opts.Log),
		store:        opts.Store,
		session:      opts.Session,
		updates:      updates,
		unsubscribe:  unsubscribe,
		loadingDelay: opts.LoadingDelay,
		presets:      opts.TopUpPresets,
		topUpDefault: opts.TopUpDefault,
		defaultEmail: opts.DefaultEmail,
		exportDir:    opts.ExportDir,
		copyFn:       opts.Copy,
		active:       view.Default,
		data:         opts.Store.Snapshot(),
		help:         h,
		spinner:      sp,
	}
	a.resetViews()
	return a
}

// resetViews rebuilds every view model, dropping selections and open modals.
func (a *App) resetViews() {
	a.login = newLoginModel(a.deps, a.defaultEmail)
	a.dashboard = newDashboardModel(a.deps.clock, a.data)
	a.projects = newProjectsModel(a.deps, a.data)
	a.transport = newTransportModel(a.deps, a.data, a.presets, a.topUpDefault)
	a.taxes = newTaxesModel(a.deps, a.data)
	a.utilities = newUtilitiesModel(a.deps, a.data)
	a.benefits = newBenefitsModel(a.deps, a.data, a.copyFn)
	a.setSizes()
}

func (a *App) setSizes() {
	contentHeight := a.height - 4 // header + footer
	a.login.setSize(a.width, a.height)
	a.dashboard.setSize(a.width, contentHeight)
	a.projects.setSize(a.width, contentHeight)
	a.transport.setSize(a.width, contentHeight)
	a.taxes.setSize(a.width, contentHeight)
	a.utilities.setSize(a.width, contentHeight)
	a.benefits.setSize(a.width, contentHeight)
}

func (a *App) setData(d domain.UserData) {
	a.data = d
	a.dashboard.setData(d)
	a.projects.setData(d)
	a.transport.setData(d)
	a.taxes.setData(d)
	a.utilities.setData(d)
	a.benefits.setData(d)
}

// Close abandons in-flight requests and stops listening for store changes.
func (a App) Close() {
	a.deps.cancel()
	a.unsubscribe()
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.deps.sleep(a.loadingDelay, loadedMsg{}),
		waitForChange(a.updates),
		a.spinner.Tick,
	)
}

func waitForChange(ch <-chan domain.UserData) tea.Cmd {
	return func() tea.Msg {
		d, ok := <-ch
		if !ok {
			return nil
		}
		return storeChangedMsg{data: d}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.setSizes()
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case loadedMsg:
		a.session.FinishLoading()
		if a.session.State() == state.LoggedIn {
			return a, nil
		}
		var cmd tea.Cmd
		a.login, cmd = a.login.start()
		return a, cmd

	case storeChangedMsg:
		a.setData(msg.data)
		return a, waitForChange(a.updates)

	case flowDoneMsg:
		return a.routeFlowDone(msg)

	case loggedInMsg:
		a.active = view.Default
		a.setStatus("Signed in as "+a.session.Email(), false)
		return a, nil

	case switchViewMsg:
		a.active = msg.view
		return a, nil

	case copiedMsg, clearCopiedMsg:
		var cmd tea.Cmd
		a.benefits, cmd = a.benefits.update(msg)
		return a, cmd

	case statusMsg:
		a.setStatus(msg.text, msg.isError)
		return a, nil

	case exportDoneMsg:
		a.setStatus("Exported to "+msg.path, false)
		a.exportPicking = false
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a.quit()
		}
		if a.session.Loading() {
			return a, nil
		}
		if a.session.State() != state.LoggedIn {
			var cmd tea.Cmd
			a.login, cmd = a.login.update(msg)
			return a, cmd
		}

		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// An open modal captures input.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return a.quit()
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Logout):
			return a.logout()
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.active = view.Dashboard
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.active = view.Projects
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.active = view.Transport
			return a, nil
		case key.Matches(msg, keys.Tab4):
			a.active = view.Taxes
			return a, nil
		case key.Matches(msg, keys.Tab5):
			a.active = view.Utilities
			return a, nil
		case key.Matches(msg, keys.Tab6):
			a.active = view.Benefits
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.active = a.active.Next()
			return a, nil
		case key.Matches(msg, keys.ShiftTab):
			a.active = a.active.Prev()
			return a, nil
		}
	}

	return a.updateActiveView(msg)
}

// routeFlowDone hands a completion to the model that owns the request. Each
// model ignores ids it did not issue.
func (a App) routeFlowDone(msg flowDoneMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.kind {
	case flow.SendCode, flow.VerifyCode:
		a.login, cmd = a.login.update(msg)
	case flow.TopUp:
		a.transport, cmd = a.transport.update(msg)
	case flow.PayTaxes:
		a.taxes, cmd = a.taxes.update(msg)
	case flow.PayUtility, flow.ToggleAutoPay:
		a.utilities, cmd = a.utilities.update(msg)
	}
	return a, cmd
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.active {
	case view.Dashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case view.Projects:
		a.projects, cmd = a.projects.update(msg)
	case view.Transport:
		a.transport, cmd = a.transport.update(msg)
	case view.Taxes:
		a.taxes, cmd = a.taxes.update(msg)
	case view.Utilities:
		a.utilities, cmd = a.utilities.update(msg)
	case view.Benefits:
		a.benefits, cmd = a.benefits.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.active {
	case view.Transport:
		return a.transport.modalOpen
	case view.Taxes:
		return a.taxes.fl.Active()
	case view.Utilities:
		return a.utilities.modal != modalNone
	case view.Projects:
		_, open := a.projects.detail()
		return open
	}
	return false
}

// logout ends the session: pending requests are abandoned, the remembered
// login is cleared and all session changes to the data are discarded.
func (a App) logout() (tea.Model, tea.Cmd) {
	a.deps.restart()
	if err := a.session.Logout(); err != nil {
		a.deps.log.Error("logout", zap.Error(err))
		a.setStatus(fmt.Sprintf("Logout: %v", err), true)
	} else {
		a.setStatus("", false)
	}
	a.store.Reset()
	a.data = a.store.Snapshot()
	a.active = view.Default
	a.showHelp = false
	a.help.ShowAll = false
	a.exportPicking = false
	a.resetViews()

	var cmd tea.Cmd
	a.login, cmd = a.login.start()
	return a, cmd
}

func (a *App) setStatus(text string, isError bool) {
	a.status = text
	a.statusErr = isError
}

func (a App) quit() (tea.Model, tea.Cmd) {
	a.deps.cancel()
	return a, tea.Quit
}

func (a App) View() string {
	if a.session.Loading() || a.width == 0 {
		return a.spinner.View() + " " + loadingText
	}
	frame := a.spinner.View()
	if a.session.State() != state.LoggedIn {
		return a.login.view(frame)
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.active {
	case view.Dashboard:
		content = a.dashboard.view()
	case view.Projects:
		content = a.projects.view()
	case view.Transport:
		content = a.transport.view(frame)
	case view.Taxes:
		content = a.taxes.view(frame)
	case view.Utilities:
		content = a.utilities.view(frame)
	case view.Benefits:
		content = a.benefits.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, v := range view.All() {
		label := fmt.Sprintf("%d %s", i+1, v)
		if v == a.active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}
	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := brandStyle.Render("Florești Civic Portal")
	user := mutedStyle.Render(a.data.User.Name)
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - lipgloss.Width(user) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, " ", tabRow, spacer, user),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	left := footerStyle.Render(helpView)
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(status) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, status)
}

var exportFormats = []string{"csv", "json"}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export Statement"), ""}
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(exportFormats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format string) tea.Cmd {
	data, now, dir, log := a.store.Snapshot(), a.deps.clock.Now(), a.exportDir, a.deps.log
	return func() tea.Msg {
		path := filepath.Join(dir, export.FileName(format, now))
		var err error
		if format == "json" {
			err = export.ToJSON(data, path, now)
		} else {
			err = export.ToCSV(data, path)
		}
		if err != nil {
			log.Error("export statement", zap.String("format", format), zap.Error(err))
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		log.Info("statement exported", zap.String("path", path))
		return exportDoneMsg{path: path}
	}
}
