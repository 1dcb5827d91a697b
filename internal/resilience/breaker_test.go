package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Domenick1991/airticket/internal/clock"
	"github.com/Domenick1991/airticket/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransport = errors.New("connection refused")

func newTestBreaker(clk clock.Clock) *Breaker {
	return NewBreaker(Settings{
		Name:             "inventory",
		FailureThreshold: 3,
		Window:           time.Minute,
		OpenTimeout:      10 * time.Second,
	}, clk)
}

func fail(b *Breaker) {
	done, err := b.Allow()
	if err == nil {
		done(false)
	}
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	b := newTestBreaker(clk)

	fail(b)
	fail(b)
	assert.Equal(t, StateClosed, b.State())
	fail(b)
	assert.Equal(t, StateOpen, b.State())

	_, err := b.Allow()
	assert.ErrorIs(t, err, ErrOpen)
}

func TestBreaker_FailuresOutsideWindowDoNotCount(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	b := newTestBreaker(clk)

	fail(b)
	fail(b)
	clk.Advance(2 * time.Minute)
	fail(b)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenAdmitsSingleTrial(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	b := newTestBreaker(clk)
	for i := 0; i < 3; i++ {
		fail(b)
	}

	clk.Advance(10 * time.Second)
	assert.Equal(t, StateHalfOpen, b.State())

	done, err := b.Allow()
	require.NoError(t, err)

	_, err = b.Allow()
	assert.ErrorIs(t, err, ErrOpen, "second call while the trial is in flight")

	done(true)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_FailedTrialReopens(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	b := newTestBreaker(clk)
	for i := 0; i < 3; i++ {
		fail(b)
	}
	clk.Advance(10 * time.Second)

	done, err := b.Allow()
	require.NoError(t, err)
	done(false)
	assert.Equal(t, StateOpen, b.State())

	clk.Advance(9 * time.Second)
	assert.Equal(t, StateOpen, b.State())
	clk.Advance(time.Second)
	assert.Equal(t, StateHalfOpen, b.State())
}

func TestBreaker_StaleOutcomeIgnored(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	b := newTestBreaker(clk)

	slow, err := b.Allow()
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		fail(b)
	}
	clk.Advance(10 * time.Second)

	trial, err := b.Allow()
	require.NoError(t, err)

	slow(true)
	assert.Equal(t, StateHalfOpen, b.State())
	trial(false)
	assert.Equal(t, StateOpen, b.State())
}

func TestBreaker_StateChangeHook(t *testing.T) {
	var transitions []string
	b := NewBreaker(Settings{
		Name:             "directory",
		FailureThreshold: 1,
		OnStateChange: func(name string, from, to State) {
			transitions = append(transitions, name+":"+from.String()+"->"+to.String())
		},
	}, clock.NewFixed(time.Unix(0, 0)))

	fail(b)
	assert.Equal(t, []string{"directory:closed->open"}, transitions)
}

func TestBreaker_ConcurrentUse(t *testing.T) {
	b := NewBreaker(Settings{Name: "inventory", FailureThreshold: 1000}, clock.NewSystem())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			done, err := b.Allow()
			if err == nil {
				done(i%2 == 0)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, StateClosed, b.State())
}

func TestDo_OpenBreakerSkipsCall(t *testing.T) {
	b := NewBreaker(Settings{Name: "inventory", FailureThreshold: 1}, clock.NewFixed(time.Unix(0, 0)))
	fail(b)

	var calls int32
	res := Do(context.Background(), b, time.Second, func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 1, nil
	})

	assert.Equal(t, KindUnavailable, res.Kind)
	assert.ErrorIs(t, res.Err, ErrOpen)
	assert.Zero(t, atomic.LoadInt32(&calls))

	_, err := res.Unwrap()
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestDo_NotFoundIsNotAFailure(t *testing.T) {
	b := NewBreaker(Settings{Name: "directory", FailureThreshold: 1}, clock.NewFixed(time.Unix(0, 0)))

	res := Do(context.Background(), b, time.Second, func(ctx context.Context) (string, error) {
		return "", domain.ErrNotFound
	})

	assert.Equal(t, KindNotFound, res.Kind)
	assert.Equal(t, StateClosed, b.State())
	_, err := res.Unwrap()
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDo_TimeoutCountsAsFailure(t *testing.T) {
	b := NewBreaker(Settings{Name: "inventory", FailureThreshold: 1}, clock.NewFixed(time.Unix(0, 0)))

	res := Do(context.Background(), b, 10*time.Millisecond, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})

	assert.Equal(t, KindUnavailable, res.Kind)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
	assert.Equal(t, StateOpen, b.State())
}

func TestDo_RejectedAndTransportErrors(t *testing.T) {
	b := NewBreaker(Settings{Name: "inventory", FailureThreshold: 2}, clock.NewFixed(time.Unix(0, 0)))

	res := Do(context.Background(), b, time.Second, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, domain.ErrConflict
	})
	assert.Equal(t, KindRejected, res.Kind)

	res = Do(context.Background(), b, time.Second, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, errTransport
	})
	assert.Equal(t, KindUnavailable, res.Kind)
	assert.Equal(t, StateClosed, b.State())
}

// Клиент отменил запрос: это не отказ зависимости.
func TestDo_CallerCancellationIsNotAFailure(t *testing.T) {
	b := newTestBreaker(clock.NewManual(time.Unix(0, 0)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 3; i++ {
		res := Do(ctx, b, time.Second, func(ctx context.Context) (int, error) {
			return 0, ctx.Err()
		})
		assert.Equal(t, KindUnavailable, res.Kind)
		assert.ErrorIs(t, res.Err, context.Canceled)
	}
	assert.Equal(t, StateClosed, b.State())

	res := Do(context.Background(), b, time.Second, func(ctx context.Context) (int, error) {
		return 0, errTransport
	})
	assert.Equal(t, KindUnavailable, res.Kind)
	assert.Equal(t, StateClosed, b.State(), "one real failure is still below the threshold")
}

func TestDo_CallerCancellationFreesHalfOpenTrial(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	b := newTestBreaker(clk)
	for i := 0; i < 3; i++ {
		fail(b)
	}
	clk.Advance(10 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	Do(ctx, b, time.Second, func(ctx context.Context) (int, error) {
		return 0, ctx.Err()
	})
	assert.Equal(t, StateHalfOpen, b.State())

	res := Do(context.Background(), b, time.Second, func(ctx context.Context) (int, error) {
		return 7, nil
	})
	require.Equal(t, KindOK, res.Kind)
	assert.Equal(t, StateClosed, b.State())
}

func TestDo_PanicRecordsFailure(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	b := newTestBreaker(clk)
	for i := 0; i < 3; i++ {
		fail(b)
	}
	clk.Advance(10 * time.Second)
	require.Equal(t, StateHalfOpen, b.State())

	assert.Panics(t, func() {
		Do(context.Background(), b, time.Second, func(ctx context.Context) (int, error) {
			panic("decoder blew up")
		})
	})
	assert.Equal(t, StateOpen, b.State(), "panicking trial must not leave the slot taken")

	clk.Advance(10 * time.Second)
	res := Do(context.Background(), b, time.Second, func(ctx context.Context) (int, error) {
		return 1, nil
	})
	assert.Equal(t, KindOK, res.Kind)
	assert.Equal(t, StateClosed, b.State())
}

func TestDo_PanicInClosedStateCounts(t *testing.T) {
	b := NewBreaker(Settings{Name: "inventory", FailureThreshold: 1}, clock.NewFixed(time.Unix(0, 0)))

	assert.Panics(t, func() {
		Do(context.Background(), b, time.Second, func(ctx context.Context) (int, error) {
			panic("boom")
		})
	})
	assert.Equal(t, StateOpen, b.State())
}
