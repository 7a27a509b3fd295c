// Package resilience guards calls to the workflow engine so a failing
// upstream is not hammered while it recovers.
package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrOpen = errors.New("circuit open")

type State uint8

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// Config drives a Breaker. Zero values fall back to 5 failures, a 15s
// cooldown and 2 probes.
type Config struct {
	Enabled   bool
	Threshold int
	Cooldown  time.Duration
	Probes    int
}

func (c Config) normalized() Config {
	if c.Threshold < 1 {
		c.Threshold = 5
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 15 * time.Second
	}
	if c.Probes < 1 {
		c.Probes = 2
	}
	return c
}

// Breaker opens after Threshold consecutive failures, rejects calls for
// Cooldown, then lets up to Probes calls through. It closes once every probe
// succeeds and reopens on the first failed probe.
type Breaker struct {
	cfg Config
	now func() time.Time

	mu         sync.Mutex
	state      State
	failures   int
	openedAt   time.Time
	inFlight   int
	passed     int
	generation uint64 // bumped on every trip; older settles are dropped
}

func New(cfg Config) *Breaker {
	return &Breaker{cfg: cfg.normalized(), now: time.Now}
}

// Acquire reserves a slot for one call. The returned func must be called
// exactly once with whether the call failed.
func (b *Breaker) Acquire() (func(failed bool), error) {
	if b == nil || !b.cfg.Enabled {
		return func(bool) {}, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.advance()
	switch b.state {
	case Open:
		return nil, ErrOpen
	case HalfOpen:
		if b.inFlight >= b.cfg.Probes {
			return nil, ErrOpen
		}
		b.inFlight++
	}

	gen := b.generation
	var once sync.Once
	return func(failed bool) {
		once.Do(func() { b.settle(gen, failed) })
	}, nil
}

// Do runs fn under the breaker. Only errors for which isFailure reports true
// count against the upstream; a nil isFailure counts every error.
func (b *Breaker) Do(ctx context.Context, fn func(context.Context) error, isFailure func(error) bool) error {
	done, err := b.Acquire()
	if err != nil {
		return err
	}
	err = fn(ctx)
	done(err != nil && (isFailure == nil || isFailure(err)))
	return err
}

func (b *Breaker) State() State {
	if b == nil {
		return Closed
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance()
	return b.state
}

// advance moves an expired open breaker to half-open. Caller holds mu.
func (b *Breaker) advance() {
	if b.state == Open && b.now().Sub(b.openedAt) >= b.cfg.Cooldown {
		b.state = HalfOpen
		b.inFlight = 0
		b.passed = 0
	}
}

func (b *Breaker) settle(gen uint64, failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if gen != b.generation {
		return
	}
	switch b.state {
	case Closed:
		if !failed {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.cfg.Threshold {
			b.trip()
		}
	case HalfOpen:
		if b.inFlight > 0 {
			b.inFlight--
		}
		if failed {
			b.trip()
			return
		}
		b.passed++
		if b.passed >= b.cfg.Probes && b.inFlight == 0 {
			b.state = Closed
			b.failures = 0
		}
	}
}

func (b *Breaker) trip() {
	b.generation++
	b.state = Open
	b.openedAt = b.now()
	b.inFlight = 0
	b.passed = 0
}
