package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSleeper struct {
	delays []time.Duration
}

func (s *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func TestPolicyDelayIsLinear(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, 200*time.Millisecond, p.Delay(1))
	assert.Equal(t, 400*time.Millisecond, p.Delay(2))
	assert.Equal(t, 600*time.Millisecond, p.Delay(3))

	p.Initial = time.Second
	assert.Equal(t, 1200*time.Millisecond, p.Delay(1))
}

func TestPolicyDelayCap(t *testing.T) {
	p := Policy{Increment: 200 * time.Millisecond, Max: 500 * time.Millisecond}
	assert.Equal(t, 400*time.Millisecond, p.Delay(2))
	assert.Equal(t, 500*time.Millisecond, p.Delay(3))
	assert.Equal(t, 500*time.Millisecond, p.Delay(10))
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	s := &recordingSleeper{}
	r := NewRetrier(DefaultPolicy(), WithSleeper(s.sleep))

	calls := 0
	err := r.Do(context.Background(), "fetchLogs", func(ctx context.Context) error {
		calls++
		if calls < 4 {
			return errors.New("boom")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 4, calls)
	assert.Equal(t, []time.Duration{200 * time.Millisecond, 400 * time.Millisecond, 600 * time.Millisecond}, s.delays)
	assert.Equal(t, time.Duration(0), r.Interval())
}

func TestIntervalSharedAcrossCallsAndResetOnSuccess(t *testing.T) {
	s := &recordingSleeper{}
	r := NewRetrier(DefaultPolicy(), WithSleeper(s.sleep))
	ctx := context.Background()

	failOnce := func() func(ctx context.Context) error {
		failed := false
		return func(ctx context.Context) error {
			if !failed {
				failed = true
				return errors.New("transient")
			}
			return nil
		}
	}

	require.NoError(t, r.Do(ctx, "a", failOnce()))
	require.NoError(t, r.Do(ctx, "b", failOnce()))

	// each call starts from a fresh streak because the previous one succeeded
	assert.Equal(t, []time.Duration{200 * time.Millisecond, 200 * time.Millisecond}, s.delays)
}

func TestDoMaxAttempts(t *testing.T) {
	s := &recordingSleeper{}
	r := NewRetrier(Policy{Increment: time.Millisecond, MaxAttempts: 3}, WithSleeper(s.sleep))
	cause := errors.New("down")

	calls := 0
	err := r.Do(context.Background(), "getBlockNumber", func(ctx context.Context) error {
		calls++
		return cause
	})

	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, ErrMaxAttemptsExceeded)
	assert.ErrorIs(t, err, cause)
	assert.Len(t, s.delays, 2)
}

func TestDoStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRetrier(DefaultPolicy(), WithSleeper(func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}))

	err := r.Do(ctx, "fetchLogs", func(ctx context.Context) error {
		return errors.New("down")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHooksCalledBeforeSleep(t *testing.T) {
	var order []string
	r := NewRetrier(DefaultPolicy(), WithSleeper(func(ctx context.Context, d time.Duration) error {
		order = append(order, "sleep")
		return nil
	}))

	calls := 0
	value, err := Call(context.Background(), r, "fetchLogs", func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("once")
		}
		return 7, nil
	}, func(attempt int, err error) {
		order = append(order, "hook")
	})

	require.NoError(t, err)
	assert.Equal(t, 7, value)
	assert.Equal(t, []string{"hook", "sleep"}, order)
}
