package resilience

import (
	"errors"
	"sync"
	"time"

	"github.com/Domenick1991/airticket/internal/clock"
)

type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

var ErrOpen = errors.New("circuit breaker is open")

const (
	defaultFailureThreshold = 5
	defaultWindow           = 30 * time.Second
	defaultOpenTimeout      = 10 * time.Second
)

type Settings struct {
	Name string
	// FailureThreshold is the number of failures inside Window that opens the breaker.
	FailureThreshold int
	Window           time.Duration
	// OpenTimeout is how long the breaker stays open before admitting a trial call.
	OpenTimeout time.Duration
	// OnStateChange runs with the breaker locked and must not call back into it.
	OnStateChange func(name string, from, to State)
}

// Breaker is a per-dependency circuit breaker. It is safe for concurrent use.
type Breaker struct {
	settings Settings
	clock    clock.Clock

	mu            sync.Mutex
	state         State
	failures      []time.Time
	openUntil     time.Time
	trialInFlight bool
	// generation changes on every transition so late outcomes from an
	// earlier phase are ignored.
	generation uint64
}

func NewBreaker(settings Settings, clk clock.Clock) *Breaker {
	if settings.FailureThreshold <= 0 {
		settings.FailureThreshold = defaultFailureThreshold
	}
	if settings.Window <= 0 {
		settings.Window = defaultWindow
	}
	if settings.OpenTimeout <= 0 {
		settings.OpenTimeout = defaultOpenTimeout
	}
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &Breaker{settings: settings, clock: clk}
}

func (b *Breaker) Name() string {
	return b.settings.Name
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh(b.clock.Now())
	return b.state
}

type outcome int

const (
	outcomeFailure outcome = iota
	outcomeSuccess
	// outcomeIgnored releases a half-open trial slot without moving the
	// breaker, e.g. when the caller gave up before the dependency answered.
	outcomeIgnored
)

// Allow reports whether a call may proceed. When it returns nil the caller
// must report the outcome exactly once through done.
func (b *Breaker) Allow() (done func(success bool), err error) {
	report, err := b.admit()
	if err != nil {
		return nil, err
	}
	return func(success bool) {
		if success {
			report(outcomeSuccess)
			return
		}
		report(outcomeFailure)
	}, nil
}

func (b *Breaker) admit() (func(outcome), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refresh(b.clock.Now())
	switch b.state {
	case StateOpen:
		return nil, ErrOpen
	case StateHalfOpen:
		if b.trialInFlight {
			return nil, ErrOpen
		}
		b.trialInFlight = true
	}

	gen := b.generation
	var once sync.Once
	return func(o outcome) {
		once.Do(func() { b.record(gen, o) })
	}, nil
}

func (b *Breaker) record(gen uint64, o outcome) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.clock.Now()
	if gen != b.generation {
		return
	}

	switch b.state {
	case StateHalfOpen:
		b.trialInFlight = false
		switch o {
		case outcomeSuccess:
			b.failures = b.failures[:0]
			b.setState(StateClosed)
		case outcomeFailure:
			b.trip(now)
		}
	case StateClosed:
		if o != outcomeFailure {
			return
		}
		b.failures = append(b.failures, now)
		b.prune(now)
		if len(b.failures) >= b.settings.FailureThreshold {
			b.trip(now)
		}
	}
}

// refresh moves Open to HalfOpen once the cool-down has elapsed.
func (b *Breaker) refresh(now time.Time) {
	if b.state == StateOpen && !now.Before(b.openUntil) {
		b.trialInFlight = false
		b.setState(StateHalfOpen)
	}
}

func (b *Breaker) trip(now time.Time) {
	b.failures = b.failures[:0]
	b.openUntil = now.Add(b.settings.OpenTimeout)
	b.setState(StateOpen)
}

func (b *Breaker) prune(now time.Time) {
	cutoff := now.Add(-b.settings.Window)
	i := 0
	for i < len(b.failures) && !b.failures[i].After(cutoff) {
		i++
	}
	b.failures = b.failures[i:]
}

func (b *Breaker) setState(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	b.generation++
	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.settings.Name, from, to)
	}
}
