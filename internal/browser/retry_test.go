package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryClick_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	var retried []uint
	policy := ClickPolicy{
		Attempts: 3,
		Backoff:  time.Millisecond,
		OnRetry: func(selector string, attempt uint, err error) {
			assert.Equal(t, "#randevu-ara-buton", selector)
			retried = append(retried, attempt)
		},
	}

	err := RetryClick(context.Background(), policy, "#randevu-ara-buton", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("stale element reference")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []uint{1, 2}, retried)
}

func TestRetryClick_ExhaustedReturnsNotClickable(t *testing.T) {
	calls := 0
	err := RetryClick(context.Background(), ClickPolicy{Attempts: 3}, ".ant-btn-danger", func(context.Context) error {
		calls++
		return errors.New("element click intercepted")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotClickable)
	assert.Contains(t, err.Error(), ".ant-btn-danger")
	assert.Contains(t, err.Error(), "element click intercepted")
	assert.Equal(t, 3, calls)
}

func TestRetryClick_ExhaustedReportsOnlyRealRetries(t *testing.T) {
	var retried []uint
	policy := ClickPolicy{
		Attempts: 3,
		OnRetry: func(_ string, attempt uint, _ error) {
			retried = append(retried, attempt)
		},
	}
	err := RetryClick(context.Background(), policy, "button", func(context.Context) error {
		return errors.New("stale element reference")
	})

	assert.ErrorIs(t, err, ErrNotClickable)
	assert.Equal(t, []uint{1, 2}, retried)
}

func TestRetryClick_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	err := RetryClick(context.Background(), ClickPolicy{}, "button", func(context.Context) error {
		calls++
		return errors.New("nope")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryClick_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := RetryClick(ctx, ClickPolicy{Attempts: 5, Backoff: time.Millisecond}, "button", func(context.Context) error {
		calls++
		cancel()
		return errors.New("detached")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDefaultClickPolicy(t *testing.T) {
	p := DefaultClickPolicy()
	assert.Equal(t, uint(3), p.Attempts)
	assert.Equal(t, 500*time.Millisecond, p.Backoff)
}
