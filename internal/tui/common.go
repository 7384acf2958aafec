package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/sadopc/civic/internal/clock"
	"github.com/sadopc/civic/internal/domain"
	"github.com/sadopc/civic/internal/export"
	"github.com/sadopc/civic/internal/flow"
	"github.com/sadopc/civic/internal/state"
	"github.com/sadopc/civic/internal/view"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// --- Messages ---

type loadedMsg struct{}

type storeChangedMsg struct {
	data domain.UserData
}

type flowDoneMsg struct {
	kind flow.Kind
	id   uuid.UUID
	err  error
}

type loggedInMsg struct{}

type switchViewMsg struct {
	view view.View
}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

type copiedMsg struct {
	benefitID int64
	err       error
}

type clearCopiedMsg struct {
	seq int
}

// deps is shared by every view model. ctx is replaced on logout so requests
// started by the previous session are abandoned.
type deps struct {
	ctx    context.Context
	cancel context.CancelFunc

	runner  *flow.Runner
	ops     state.Operations
	session *state.Session
	clock   clock.Clock
	log     *zap.Logger
}

func newDeps(runner *flow.Runner, ops state.Operations, session *state.Session, c clock.Clock, log *zap.Logger) *deps {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &deps{ctx: ctx, cancel: cancel, runner: runner, ops: ops, session: session, clock: c, log: log}
}

func (d *deps) restart() {
	d.cancel()
	d.ctx, d.cancel = context.WithCancel(context.Background())
}

// run starts f's simulated request. commit runs only if the delay elapses
// before the session ends and the store has not been reset since.
func (d *deps) run(f flow.Flow, commit func() error) tea.Cmd {
	ctx, runner, ops := d.ctx, d.runner, d.ops
	epoch := ops.Epoch()
	return func() tea.Msg {
		err := runner.Run(ctx, f.Kind, f.ID, func() error {
			return ops.Within(epoch, commit)
		})
		return flowDoneMsg{kind: f.Kind, id: f.ID, err: err}
	}
}

func (d *deps) sleep(dur time.Duration, msg tea.Msg) tea.Cmd {
	ctx, c := d.ctx, d.clock
	return func() tea.Msg {
		_ = c.Sleep(ctx, dur)
		return msg
	}
}

// --- Helpers ---

func formatMoney(d decimal.Decimal) string {
	return humanize.FormatFloat("#,###.##", d.InexactFloat64()) + " " + export.Currency
}

func formatBudget(d decimal.Decimal) string {
	return humanize.Comma(d.IntPart()) + " " + export.Currency
}

func formatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}

func formatPaid(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.Format(domain.PaymentDateLayout)
}

func formatChange(pct int) string {
	if pct > 0 {
		return "+" + humanize.Comma(int64(pct)) + "%"
	}
	return humanize.Comma(int64(pct)) + "%"
}

// renderFlow draws the processing, success and failure phases of a modal.
func renderFlow(f flow.Flow, frame, processing, success string) string {
	switch f.Phase {
	case flow.Processing:
		return highlightStyle.Render(frame + " " + processing)
	case flow.Success:
		return successStyle.Render("✓ " + success)
	case flow.Failed:
		return errorStyle.Render("Failed: " + f.Err.Error())
	}
	return ""
}
