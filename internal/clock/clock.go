// Package clock abstracts wall time and waiting so simulated requests can run
// instantly under test.
package clock

import (
	"context"
	"time"
)

type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done, whichever comes first.
	Sleep(ctx context.Context, d time.Duration) error
}

// Real uses the system clock and real timers.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Instant reports a fixed time and never waits.
type Instant struct {
	T time.Time
}

func (c Instant) Now() time.Time { return c.T }

func (Instant) Sleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}
