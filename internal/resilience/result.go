package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/airticket/internal/domain"
)

type Kind int

const (
	KindOK Kind = iota
	KindNotFound
	// KindRejected is a clean refusal by the dependency, e.g. inventory
	// declining a reservation.
	KindRejected
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindNotFound:
		return "not_found"
	case KindRejected:
		return "rejected"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Result is the tagged outcome of a guarded outbound call.
type Result[T any] struct {
	Value T
	Kind  Kind
	Err   error
}

func OK[T any](v T) Result[T] {
	return Result[T]{Value: v, Kind: KindOK}
}

// Unwrap converts the result into a value and an error from the domain
// taxonomy so services can branch with errors.Is.
func (r Result[T]) Unwrap() (T, error) {
	switch r.Kind {
	case KindOK:
		return r.Value, nil
	case KindNotFound:
		return r.Value, tag(domain.ErrNotFound, r.Err)
	case KindRejected:
		return r.Value, tag(domain.ErrConflict, r.Err)
	default:
		return r.Value, tag(domain.ErrUpstreamUnavailable, r.Err)
	}
}

func tag(kind, err error) error {
	switch {
	case err == nil:
		return kind
	case errors.Is(err, kind):
		return err
	default:
		return fmt.Errorf("%w: %v", kind, err)
	}
}

// Classify maps a raw client error onto a result kind. Clean answers
// (not found, rejected) are not dependency failures.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, domain.ErrNotFound):
		return KindNotFound
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrInvalidRequest):
		return KindRejected
	default:
		return KindUnavailable
	}
}

// Do runs call through the breaker with a bounded timeout. An open breaker
// short-circuits without invoking call. A call abandoned because ctx was
// cancelled by the caller is not held against the dependency, and a
// panicking call counts as a failure.
func Do[T any](ctx context.Context, b *Breaker, timeout time.Duration, call func(ctx context.Context) (T, error)) Result[T] {
	report, err := b.admit()
	if err != nil {
		return Result[T]{Kind: KindUnavailable, Err: fmt.Errorf("%s: %w", b.Name(), err)}
	}
	o := outcomeFailure
	defer func() { report(o) }()

	v, err := Call(ctx, timeout, call)
	kind := Classify(err)
	switch {
	case kind != KindUnavailable:
		o = outcomeSuccess
	case errors.Is(ctx.Err(), context.Canceled):
		o = outcomeIgnored
	}
	if kind == KindOK {
		return OK(v)
	}
	return Result[T]{Value: v, Kind: kind, Err: err}
}

// Call runs call with a bounded timeout and no breaker.
func Call[T any](ctx context.Context, timeout time.Duration, call func(ctx context.Context) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return call(ctx)
}
