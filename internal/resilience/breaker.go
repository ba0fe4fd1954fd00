// Package resilience guards remote store calls with a circuit breaker.
package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State is the breaker position.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

// Breaker counts consecutive backend failures. After maxFailures it opens
// and fails fast for cooldown; then a single trial call decides whether it
// closes again or reopens.
type Breaker struct {
	mu          sync.Mutex
	state       State
	failures    int
	maxFailures int
	cooldown    time.Duration
	openedAt    time.Time
	trialing    bool

	now      func() time.Time
	answered func(error) bool
	onChange func(from, to State)
}

// NewBreaker returns a closed breaker.
func NewBreaker(maxFailures int, cooldown time.Duration) *Breaker {
	if maxFailures < 1 {
		maxFailures = 1
	}
	return &Breaker{
		state:       StateClosed,
		maxFailures: maxFailures,
		cooldown:    cooldown,
		now:         time.Now,
	}
}

// IgnoreErrors marks errors that prove the backend answered, such as a
// missing row, so they do not count towards opening the circuit.
func (b *Breaker) IgnoreErrors(answered func(error) bool) *Breaker {
	b.mu.Lock()
	b.answered = answered
	b.mu.Unlock()
	return b
}

// OnStateChange registers fn to run after every transition. fn is called
// without the breaker lock held.
func (b *Breaker) OnStateChange(fn func(from, to State)) *Breaker {
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
	return b
}

// Execute runs fn unless the circuit is open.
func (b *Breaker) Execute(fn func() error) error {
	trial, err := b.admit()
	if err != nil {
		return err
	}
	err = fn()
	b.record(trial, err)
	return err
}

// State reports the current position without advancing it.
func (b *Breaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.state)
}

func (b *Breaker) admit() (trial bool, err error) {
	b.mu.Lock()
	var from State
	switch b.state {
	case StateClosed:
		b.mu.Unlock()
		return false, nil
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			b.mu.Unlock()
			return false, ErrCircuitOpen
		}
		from = b.setState(StateHalfOpen)
	}
	// Half-open: exactly one caller trials the backend, the rest keep failing fast.
	if b.trialing {
		b.mu.Unlock()
		return false, ErrCircuitOpen
	}
	b.trialing = true
	notify := b.onChange
	b.mu.Unlock()
	if notify != nil && from != "" {
		notify(from, StateHalfOpen)
	}
	return true, nil
}

func (b *Breaker) record(trial bool, err error) {
	b.mu.Lock()
	if trial {
		b.trialing = false
	}
	failed := err != nil && (b.answered == nil || !b.answered(err))
	var from, to State
	switch {
	case !failed:
		b.failures = 0
		if b.state != StateClosed {
			from, to = b.setState(StateClosed), StateClosed
		}
	default:
		b.failures++
		if b.state == StateHalfOpen || (b.state == StateClosed && b.failures >= b.maxFailures) {
			b.openedAt = b.now()
			from, to = b.setState(StateOpen), StateOpen
		}
	}
	notify := b.onChange
	b.mu.Unlock()
	if notify != nil && to != "" {
		notify(from, to)
	}
}

// setState must be called with b.mu held. It returns the previous state.
func (b *Breaker) setState(s State) State {
	prev := b.state
	b.state = s
	return prev
}
