package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sadopc/civic/internal/clock"
	"github.com/sadopc/civic/internal/domain"
	"go.uber.org/zap"
)

// DefaultDelays are the simulated network latencies per request kind.
func DefaultDelays() map[Kind]time.Duration {
	return map[Kind]time.Duration{
		SendCode:      time.Second,
		VerifyCode:    1500 * time.Millisecond,
		PayTaxes:      2 * time.Second,
		TopUp:         1500 * time.Millisecond,
		PayUtility:    1500 * time.Millisecond,
		ToggleAutoPay: 1500 * time.Millisecond,
	}
}

// Runner waits out a request's simulated latency and then commits it.
type Runner struct {
	clock  clock.Clock
	delays map[Kind]time.Duration
	log    *zap.Logger
}

func NewRunner(c clock.Clock, delays map[Kind]time.Duration, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	d := DefaultDelays()
	for k, v := range delays {
		d[k] = v
	}
	return &Runner{clock: c, delays: d, log: log}
}

func (r *Runner) Delay(kind Kind) time.Duration {
	return r.delays[kind]
}

// Run blocks for the delay of kind and then calls commit exactly once. If ctx
// ends first, commit is never called and the error wraps domain.ErrCancelled.
func (r *Runner) Run(ctx context.Context, kind Kind, id uuid.UUID, commit func() error) error {
	log := r.log.With(zap.String("request_id", id.String()), zap.String("kind", string(kind)))
	d := r.Delay(kind)
	log.Debug("request started", zap.Duration("delay", d))

	if err := r.clock.Sleep(ctx, d); err != nil {
		log.Info("request cancelled", zap.Error(err))
		return fmt.Errorf("%s: %w", kind, domain.ErrCancelled)
	}
	if err := commit(); err != nil {
		log.Warn("request failed", zap.Error(err))
		return err
	}
	log.Info("request completed")
	return nil
}
