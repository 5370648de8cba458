package retry

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

// Backoff retries an operation with exponentially growing delays until it
// succeeds, the attempt budget runs out, or the context ends.
type Backoff struct {
	MaxAttempts int // zero means no limit other than the context
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
	Jitter      bool
}

// NewBackoff returns a Backoff tuned for short in-request waits.
func NewBackoff() *Backoff {
	return &Backoff{
		BaseDelay:  50 * time.Millisecond,
		MaxDelay:   time.Second,
		Multiplier: 2.0,
		Jitter:     true,
	}
}

// Retry executes fn until it returns nil.
func (b *Backoff) Retry(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; b.MaxAttempts == 0 || attempt < b.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return joinCtx(err, lastErr)
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		delay := b.delay(attempt)
		slog.DebugContext(ctx, "Retry attempt failed, waiting before next attempt",
			"attempt", attempt+1, "delay_ms", delay.Milliseconds(), "error", err)

		if err := Sleep(ctx, delay); err != nil {
			return joinCtx(err, lastErr)
		}
	}
	return fmt.Errorf("operation failed after %d attempts: %w", b.MaxAttempts, lastErr)
}

func (b *Backoff) delay(attempt int) time.Duration {
	d := float64(b.BaseDelay) * math.Pow(b.Multiplier, float64(attempt))
	if b.MaxDelay > 0 && d > float64(b.MaxDelay) {
		d = float64(b.MaxDelay)
	}
	if b.Jitter {
		// up to 25% extra
		d += rand.Float64() * d * 0.25
	}
	return time.Duration(d)
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func joinCtx(ctxErr, lastErr error) error {
	if lastErr == nil {
		return ctxErr
	}
	return fmt.Errorf("%w (last error: %v)", ctxErr, lastErr)
}
