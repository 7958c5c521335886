// Package reveal gates an already-computed result behind a fixed-duration
// progress display. The matching pass itself finishes near-instantly; the
// delay here is purely presentational and must never be folded back into
// the computation. Canceling the context aborts the gate with no side
// effects and never re-runs or retries anything.
package reveal

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
)

// Progress is one tick of the presentation countdown.
type Progress struct {
	Step       int
	TotalSteps int
	Percent    int
}

// Options configures the disclosure gate.
type Options struct {
	Duration   time.Duration
	Steps      int
	OnProgress func(Progress)
}

const (
	defaultDuration = 3 * time.Second
	defaultSteps    = 20
)

// Wait blocks for the configured duration, emitting evenly spaced progress
// ticks. It returns nil when the gate opens, or the wrapped context error
// if the caller navigates away first.
func Wait(ctx context.Context, opts Options) error {
	if opts.Duration <= 0 {
		opts.Duration = defaultDuration
	}
	if opts.Steps <= 0 {
		opts.Steps = defaultSteps
	}

	interval := opts.Duration / time.Duration(opts.Steps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for step := 1; step <= opts.Steps; step++ {
		select {
		case <-ctx.Done():
			return eris.Wrap(ctx.Err(), "reveal: canceled")
		case <-ticker.C:
			if opts.OnProgress != nil {
				opts.OnProgress(Progress{
					Step:       step,
					TotalSteps: opts.Steps,
					Percent:    step * 100 / opts.Steps,
				})
			}
		}
	}
	return nil
}

// Disclose returns the eagerly computed result once the gate opens. On
// cancellation the zero value and an error are returned; the result is
// simply discarded, never recomputed.
func Disclose[T any](ctx context.Context, result T, opts Options) (T, error) {
	if err := Wait(ctx, opts); err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
