package irradiance

import (
	"context"
	"fmt"
	"time"

	"Helio/internal/log"
)

// RetryPolicy bounds attempts and doubles the wait after every failure:
// BaseDelay before the second attempt, 2·BaseDelay before the third, etc.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// Sleep waits for d or until ctx is done. Nil uses a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Delay returns the wait before the given attempt (1-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	return p.BaseDelay << (attempt - 2)
}

// Do calls fn until it succeeds, the attempts run out, or ctx is done.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			wait := p.Delay(attempt)
			log.Debugw("retrying irradiance request", "attempt", attempt, "wait", wait)
			if serr := sleep(ctx, wait); serr != nil {
				return fmt.Errorf("%w after %d attempts: %w: %w", ErrRetriesExhausted, attempt-1, serr, err)
			}
		}
		if err = fn(ctx); err == nil {
			return nil
		}
		log.Warnw("irradiance attempt failed", "attempt", attempt, "max_attempts", attempts, "error", err)
		if ctx.Err() != nil {
			return fmt.Errorf("%w after %d attempts: %w: %w", ErrRetriesExhausted, attempt, ctx.Err(), err)
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempts, err)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Retrying applies a RetryPolicy around another Source.
type Retrying struct {
	Source Source
	Policy RetryPolicy
}

func NewRetrying(src Source, policy RetryPolicy) *Retrying {
	return &Retrying{Source: src, Policy: policy}
}

func (r *Retrying) DailyHorizontal(ctx context.Context, lat, lon float64, date time.Time) (float64, error) {
	var v float64
	err := r.Policy.Do(ctx, func(ctx context.Context) error {
		var err error
		v, err = r.Source.DailyHorizontal(ctx, lat, lon, date)
		return err
	})
	if err != nil {
		return 0, err
	}
	return v, nil
}
