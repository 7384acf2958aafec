// Package flow models the simulated request cycle shared by every payment and
// login step: idle, processing, then success or failure.
package flow

import (
	"github.com/google/uuid"
	"github.com/sadopc/civic/internal/domain"
)

type Kind string

const (
	SendCode      Kind = "send_code"
	VerifyCode    Kind = "verify_code"
	PayTaxes      Kind = "pay_taxes"
	TopUp         Kind = "top_up"
	PayUtility    Kind = "pay_utility"
	ToggleAutoPay Kind = "auto_pay"
)

// Kinds lists every simulated request kind.
var Kinds = []Kind{SendCode, VerifyCode, PayTaxes, TopUp, PayUtility, ToggleAutoPay}

type Phase int

const (
	Idle Phase = iota
	Processing
	Success
	Failed
)

var phaseNames = map[Phase]string{
	Idle:       "idle",
	Processing: "processing",
	Success:    "success",
	Failed:     "failed",
}

func (p Phase) String() string { return phaseNames[p] }

// Flow tracks one request of a given kind. The zero value is idle.
type Flow struct {
	Kind  Kind
	Phase Phase
	ID    uuid.UUID
	Err   error
}

func New(kind Kind) Flow {
	return Flow{Kind: kind}
}

// Begin enters Processing and assigns a fresh request id. A flow that is
// already processing rejects the duplicate submission.
func (f *Flow) Begin() error {
	if f.Phase == Processing {
		return domain.ErrInFlight
	}
	f.Phase = Processing
	f.ID = uuid.New()
	f.Err = nil
	return nil
}

// Finish settles the in-flight request identified by id. Completions for a
// request that is no longer current are ignored and reported as false.
func (f *Flow) Finish(id uuid.UUID, err error) bool {
	if f.Phase != Processing || f.ID != id {
		return false
	}
	if err != nil {
		f.Phase = Failed
		f.Err = err
		return true
	}
	f.Phase = Success
	return true
}

func (f *Flow) Reset() {
	f.Phase = Idle
	f.Err = nil
}

func (f Flow) Busy() bool   { return f.Phase == Processing }
func (f Flow) Active() bool { return f.Phase != Idle }
func (f Flow) Done() bool   { return f.Phase == Success || f.Phase == Failed }
