package progress

import (
	"context"
	"time"
)

// Animator emits frames of a plan until the work is done.
type Animator struct {
	Plan Plan

	// Tick is the frame interval.
	Tick time.Duration

	// Hold is how long the completed frame stays before the hidden frame.
	// Zero emits the hidden frame immediately.
	Hold time.Duration

	now func() time.Time
}

// NewAnimator returns an animator with 100ms ticks.
func NewAnimator(plan Plan, hold time.Duration) *Animator {
	return &Animator{Plan: plan, Tick: 100 * time.Millisecond, Hold: hold, now: time.Now}
}

// AnalysisHold is how long the completion message stays up.
const AnalysisHold = 3500 * time.Millisecond

// Run emits frames on every tick until done is closed or ctx ends. When
// done closes it emits the 100% frame, waits Hold and emits a hidden
// frame. If ctx ends first, Run returns ctx.Err() without the completion
// frames.
func (a *Animator) Run(ctx context.Context, done <-chan struct{}, emit func(Frame)) error {
	now := a.now
	if now == nil {
		now = time.Now
	}
	tick := a.Tick
	if tick <= 0 {
		tick = 100 * time.Millisecond
	}

	start := now()
	emit(a.Plan.At(0))

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
			emit(a.Plan.Done())
			if a.Hold > 0 {
				timer := time.NewTimer(a.Hold)
				select {
				case <-ctx.Done():
					timer.Stop()
					return ctx.Err()
				case <-timer.C:
				}
			}
			emit(Frame{Percent: 100, Complete: true, Hidden: true})
			return nil
		case <-ticker.C:
			emit(a.Plan.At(now().Sub(start)))
		}
	}
}
