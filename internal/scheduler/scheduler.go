// Package scheduler runs a job periodically with exponential backoff after
// failures. Runs never overlap.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/menuroll/internal/logging"
)

// DefaultInitialBackoff is the first retry delay after a failed run.
const DefaultInitialBackoff = 30 * time.Second

// Job is one unit of periodic work.
type Job func(ctx context.Context) error

// Runner calls Job every Interval. After a failure the next attempt comes
// after a backoff that starts at InitialBackoff and doubles on each
// consecutive failure, capped at Interval. A success resets the backoff.
type Runner struct {
	Interval       time.Duration
	InitialBackoff time.Duration
	// RunAtStart runs the job once before waiting for the first interval.
	RunAtStart bool

	Job Job
	Log logging.Logger
}

// Run blocks until ctx is cancelled. A run in progress receives the same
// ctx and is waited for. Run returns ctx.Err().
func (r *Runner) Run(ctx context.Context) error {
	if r.Interval <= 0 {
		return errors.New("scheduler: interval must be positive")
	}
	if r.Job == nil {
		return errors.New("scheduler: job is nil")
	}
	log := r.Log
	if log == nil {
		log = logging.Nop()
	}

	var failures, run int
	delay := r.Interval
	if r.RunAtStart {
		delay = 0
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		run++
		runCtx := logging.ContextWith(ctx, "run", run)
		start := time.Now()
		err := r.Job(runCtx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err != nil {
			failures++
			delay = r.backoff(failures)
			log.Warn(runCtx, "scheduled job failed", "error", err, "attempt", failures, "retry_in", delay.String())
		} else {
			failures = 0
			delay = r.Interval
			log.Info(runCtx, "scheduled job done", "took", time.Since(start).String(), "next_in", delay.String())
		}
		timer.Reset(delay)
	}
}

// backoff returns the delay after the n-th consecutive failure.
func (r *Runner) backoff(n int) time.Duration {
	d := r.InitialBackoff
	if d <= 0 {
		d = DefaultInitialBackoff
	}
	for i := 1; i < n && d < r.Interval; i++ {
		d *= 2
	}
	return min(d, r.Interval)
}
