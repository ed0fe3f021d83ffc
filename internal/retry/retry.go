package retry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	config "github.com/thirdweb-dev/ledger-indexer/configs"
	"github.com/thirdweb-dev/ledger-indexer/internal/metrics"
)

var ErrMaxAttemptsExceeded = errors.New("max retry attempts exceeded")

const DEFAULT_INCREMENT = 200 * time.Millisecond

// Policy describes a linear backoff. The delay after the n-th consecutive
// failure is Initial + n*Increment, capped at Max when Max is positive.
// MaxAttempts of zero retries forever.
type Policy struct {
	Initial     time.Duration
	Increment   time.Duration
	Max         time.Duration
	MaxAttempts int
}

func DefaultPolicy() Policy {
	return Policy{Increment: DEFAULT_INCREMENT}
}

func PolicyFromConfig() Policy {
	cfg := config.Cfg.Retry
	p := Policy{
		Initial:     time.Duration(cfg.Initial) * time.Millisecond,
		Increment:   time.Duration(cfg.Increment) * time.Millisecond,
		Max:         time.Duration(cfg.Max) * time.Millisecond,
		MaxAttempts: cfg.MaxAttempts,
	}
	if p.Increment <= 0 && p.Initial <= 0 {
		p.Increment = DEFAULT_INCREMENT
	}
	return p
}

// Delay returns the wait after the given number of consecutive failures (1-based).
func (p Policy) Delay(failures int) time.Duration {
	d := p.Initial + time.Duration(failures)*p.Increment
	if p.Max > 0 && d > p.Max {
		d = p.Max
	}
	return d
}

// Hook is called after a failure, before the retrier sleeps.
type Hook func(attempt int, err error)

type Sleeper func(ctx context.Context, d time.Duration) error

// Retrier owns the failure streak shared by every call routed through it.
// A success on any call resets the streak.
type Retrier struct {
	policy   Policy
	sleep    Sleeper
	mu       sync.Mutex
	failures int
}

type Option func(*Retrier)

func WithSleeper(s Sleeper) Option {
	return func(r *Retrier) {
		r.sleep = s
	}
}

func NewRetrier(policy Policy, opts ...Option) *Retrier {
	r := &Retrier{
		policy: policy,
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Interval returns the delay applied after the most recent failure, zero after a success.
func (r *Retrier) Interval() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failures == 0 {
		return 0
	}
	return r.policy.Delay(r.failures)
}

// Do invokes op until it succeeds, the context is cancelled or the policy's
// attempts are exhausted.
func (r *Retrier) Do(ctx context.Context, name string, op func(ctx context.Context) error, hooks ...Hook) error {
	attempt := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := op(ctx)
		if err == nil {
			r.reset()
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		attempt++
		if r.policy.MaxAttempts > 0 && attempt >= r.policy.MaxAttempts {
			return fmt.Errorf("%w: %s after %d attempts: %w", ErrMaxAttemptsExceeded, name, attempt, err)
		}

		delay := r.fail()
		metrics.RPCRetries.WithLabelValues(name).Inc()
		log.Error().Err(err).Str("operation", name).Int("attempt", attempt).Msg("remote call failed")
		log.Warn().Msgf("wait: %s after %dms", name, delay.Milliseconds())

		for _, hook := range hooks {
			hook(attempt, err)
		}

		if err := r.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// Call is the value-returning form of Retrier.Do.
func Call[T any](ctx context.Context, r *Retrier, name string, op func(ctx context.Context) (T, error), hooks ...Hook) (T, error) {
	var result T
	err := r.Do(ctx, name, func(ctx context.Context) error {
		var err error
		result, err = op(ctx)
		return err
	}, hooks...)
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

func (r *Retrier) fail() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures++
	return r.policy.Delay(r.failures)
}

func (r *Retrier) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = 0
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
