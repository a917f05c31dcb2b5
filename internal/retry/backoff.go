// Package retry retries store bootstrap with capped exponential backoff.
package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

type Backoff struct {
	BaseDelay time.Duration // e.g. 200ms
	MaxDelay  time.Duration // e.g. 5s
}

func DefaultBackoff() Backoff {
	return Backoff{
		BaseDelay: 200 * time.Millisecond,
		MaxDelay:  5 * time.Second,
	}
}

// NextDelay computes the wait before the next attempt using exponential
// backoff with full jitter. attempt is 1-based (1 => up to BaseDelay).
func NextDelay(attempt int, cfg Backoff, rng *rand.Rand) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 200 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 5 * time.Second
	}

	delay := cfg.MaxDelay
	// Shifting past 62 bits overflows; anything that large is capped anyway.
	if attempt <= 62 {
		if d := cfg.BaseDelay << (attempt - 1); d > 0 && d < cfg.MaxDelay {
			delay = d
		}
	}

	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return time.Duration(rng.Int63n(int64(delay) + 1))
}

// Do calls fn up to attempts times, sleeping between failures. It returns
// nil on the first success, ctx.Err() if ctx ends while waiting, or the
// last error from fn.
func Do(ctx context.Context, attempts int, cfg Backoff, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		timer := time.NewTimer(NextDelay(attempt, cfg, rng))
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w (last error: %v)", ctx.Err(), err)
		case <-timer.C:
		}
	}
	return fmt.Errorf("after %d attempts: %w", attempts, err)
}
