package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
)

// ClickPolicy bounds the retries of a single click.
type ClickPolicy struct {
	Attempts uint
	Backoff  time.Duration
	// OnRetry is called after each failed attempt that is followed by another.
	OnRetry func(selector string, attempt uint, err error)
}

// DefaultClickPolicy is 3 attempts with a fixed 0.5s pause.
func DefaultClickPolicy() ClickPolicy {
	return ClickPolicy{Attempts: 3, Backoff: 500 * time.Millisecond}
}

// RetryClick runs click until it succeeds, the attempts are spent or ctx ends.
// Exhaustion is reported as ErrNotClickable wrapping the last failure.
func RetryClick(ctx context.Context, p ClickPolicy, selector string, click func(context.Context) error) error {
	attempts := p.Attempts
	if attempts == 0 {
		attempts = 1
	}

	err := retry.Do(
		func() error { return click(ctx) },
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(p.Backoff),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(error) bool { return ctx.Err() == nil }),
		// retry-go also reports the final failure here; that one is not a retry.
		retry.OnRetry(func(n uint, err error) {
			if p.OnRetry != nil && n+1 < attempts {
				p.OnRetry(selector, n+1, err)
			}
		}),
	)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%w: %s: %v", ErrNotClickable, selector, err)
}
