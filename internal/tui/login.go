package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/civic/internal/domain"
	"github.com/sadopc/civic/internal/flow"
	"github.com/sadopc/civic/internal/state"
	"go.uber.org/zap"
)

type loginStep int

const (
	stepCredentials loginStep = iota
	stepCode
)

type loginModel struct {
	deps   *deps
	width  int
	height int

	step loginStep
	fl   flow.Flow
	form *huh.Form

	// Form field pointers (survive value copies)
	email    *string
	remember *bool
	code     *string
}

func newLoginModel(d *deps, defaultEmail string) loginModel {
	email, remember, code := defaultEmail, false, ""
	return loginModel{
		deps:     d,
		email:    &email,
		remember: &remember,
		code:     &code,
	}
}

func (m *loginModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

// start shows the form for the current step.
func (m loginModel) start() (loginModel, tea.Cmd) {
	if m.step == stepCode {
		*m.code = ""
		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Verification code").
					Description("Enter the code sent to " + *m.email).
					Value(m.code).
					Validate(m.deps.session.ValidateCode),
			),
		).WithShowHelp(true).WithShowErrors(true)
		return m, m.form.Init()
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.md").
				Value(m.email).
				Validate(state.ValidateEmail),
			huh.NewConfirm().
				Title("Remember me").
				Affirmative("Yes").
				Negative("No").
				Value(m.remember),
		),
	).WithShowHelp(true).WithShowErrors(true)
	return m, m.form.Init()
}

func (m loginModel) update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case flowDoneMsg:
		return m.finish(msg)
	case tea.KeyMsg:
		if m.fl.Busy() {
			return m, nil
		}
		if msg.String() == "esc" && m.step == stepCode {
			return m.changeEmail()
		}
	}

	if m.form == nil || m.fl.Busy() {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		if m.step == stepCredentials {
			return m.submitCredentials()
		}
		return m.submitCode()
	}
	return m, cmd
}

func (m loginModel) submitCredentials() (loginModel, tea.Cmd) {
	if m.fl.Busy() {
		return m, nil
	}
	m.fl = flow.New(flow.SendCode)
	_ = m.fl.Begin()
	email, remember, session := *m.email, *m.remember, m.deps.session
	return m, m.deps.run(m.fl, func() error {
		return session.RequestLogin(email, remember)
	})
}

func (m loginModel) submitCode() (loginModel, tea.Cmd) {
	if m.fl.Busy() {
		return m, nil
	}
	m.fl = flow.New(flow.VerifyCode)
	_ = m.fl.Begin()
	code, session := *m.code, m.deps.session
	return m, m.deps.run(m.fl, func() error {
		return session.SubmitCode(code)
	})
}

func (m loginModel) changeEmail() (loginModel, tea.Cmd) {
	if err := m.deps.session.ChangeEmail(); err != nil {
		m.deps.log.Warn("change email", zap.Error(err))
	}
	m.step = stepCredentials
	m.fl.Reset()
	return m.start()
}

func (m loginModel) finish(msg flowDoneMsg) (loginModel, tea.Cmd) {
	if !m.fl.Finish(msg.id, msg.err) {
		return m, nil
	}
	if msg.err != nil {
		// Stay on the same step and let the citizen try again.
		return m.start()
	}

	m.fl.Reset()
	switch msg.kind {
	case flow.SendCode:
		m.step = stepCode
		return m.start()
	case flow.VerifyCode:
		m.form = nil
		return m, func() tea.Msg { return loggedInMsg{} }
	}
	return m, nil
}

func (m loginModel) view(frame string) string {
	title := brandStyle.Render("Florești Civic Portal")
	subtitle := subtitleStyle.Render("Sign in to access your civic services")

	var body string
	switch {
	case m.fl.Busy():
		label := "Sending code..."
		if m.fl.Kind == flow.VerifyCode {
			label = "Verifying..."
		}
		body = highlightStyle.Render(frame + " " + label)
	case m.form != nil:
		body = m.form.View()
	}

	var rows []string
	rows = append(rows, title, subtitle, "")
	if m.step == stepCode {
		rows = append(rows, mutedStyle.Render("A code was sent to "+*m.email), "")
	}
	rows = append(rows, body)
	if m.fl.Phase == flow.Failed {
		rows = append(rows, "", errorStyle.Render(loginError(m.fl.Err)))
	}
	if m.step == stepCode && !m.fl.Busy() {
		rows = append(rows, "", mutedStyle.Render("esc: change email"))
	}

	box := activePanelStyle.Width(min(60, max(20, m.width-4))).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func loginError(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidEmail):
		return "Please enter a valid email address."
	case errors.Is(err, domain.ErrInvalidCode):
		return "That code is too short."
	case errors.Is(err, domain.ErrCancelled):
		return "Request cancelled."
	}
	return "Failed: " + err.Error()
}
