// Package saga runs multi-step operations that touch external systems, undoing
// completed steps when a later one fails.
package saga

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/matheuspina/avaliatec/pkg/slogx"
)

// Step is one unit of work. Compensate undoes Do and may be nil when there is
// nothing to undo.
type Step struct {
	Name       string
	Do         func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Runner executes steps in order.
type Runner struct {
	// MaxAttempts bounds how often a single compensation is tried.
	MaxAttempts int

	// Backoff is the wait before the first compensation retry; it doubles
	// after every failure.
	Backoff time.Duration

	// Sleep waits between retries. Tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Default retries each compensation three times starting at 200ms.
var Default = Runner{MaxAttempts: 3, Backoff: 200 * time.Millisecond}

// Run executes steps with the Default runner.
func Run(ctx context.Context, steps ...Step) error {
	return Default.Run(ctx, steps...)
}

// Run executes steps in order. When a step fails the completed steps are
// compensated in reverse order. The returned error wraps the step failure
// joined with any compensation that still failed after its retries.
func (r Runner) Run(ctx context.Context, steps ...Step) error {
	log := slogx.FromContext(ctx)

	for i, step := range steps {
		if err := step.Do(ctx); err != nil {
			log.Warn("saga step failed, compensating",
				slog.String("step", step.Name),
				slog.Int("completed", i),
				slog.Any("error", err),
			)
			stepErr := fmt.Errorf("%s: %w", step.Name, err)
			return errors.Join(stepErr, r.compensate(ctx, steps[:i]))
		}
	}
	return nil
}

func (r Runner) compensate(ctx context.Context, done []Step) error {
	// Compensations must run even when the request context was cancelled.
	ctx = context.WithoutCancel(ctx)

	var errs []error
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if step.Compensate == nil {
			continue
		}
		if err := r.retry(ctx, step); err != nil {
			errs = append(errs, fmt.Errorf("compensate %s: %w", step.Name, err))
		}
	}
	return errors.Join(errs...)
}

func (r Runner) retry(ctx context.Context, step Step) error {
	log := slogx.FromContext(ctx)

	attempts := max(r.MaxAttempts, 1)
	backoff := r.Backoff
	sleep := r.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = step.Compensate(ctx); err == nil {
			return nil
		}
		log.Error("saga compensation failed",
			slog.String("step", step.Name),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			slog.Any("error", err),
		)
		if attempt < attempts {
			if serr := sleep(ctx, backoff); serr != nil {
				return errors.Join(err, serr)
			}
			backoff *= 2
		}
	}
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
