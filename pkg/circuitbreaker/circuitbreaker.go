// Package circuitbreaker stops calling a failing dependency for a while after
// repeated failures. The roster service wraps its Redis cache in one so that
// an unreachable cache is skipped instead of timing out on every request.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State represents the current state of the circuit breaker.
type State int

const (
	// StateClosed lets every call through.
	StateClosed State = iota
	// StateOpen rejects calls until the timeout passes.
	StateOpen
	// StateHalfOpen lets one trial call through to test recovery.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var (
	// ErrCircuitOpen is returned when the circuit is open and calls are blocked.
	ErrCircuitOpen = errors.New("circuit breaker is open")
	// ErrTooManyRequests is returned while the half-open trial call is still running.
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

// Config holds circuit breaker configuration.
type Config struct {
	// Name identifies this circuit breaker in state change callbacks.
	Name string

	// FailureThreshold is the number of consecutive failures that opens the
	// circuit. Default: 5
	FailureThreshold int

	// SuccessThreshold is the number of consecutive half-open successes that
	// closes it again. Default: 2
	SuccessThreshold int

	// Timeout is how long the circuit stays open before a trial call.
	// Default: 30s
	Timeout time.Duration

	// OnStateChange is called when the circuit state changes.
	OnStateChange func(name string, from, to State)

	// IsFailure decides whether an error counts against the dependency.
	// If nil, every non-nil error does.
	IsFailure func(error) bool
}

func defaultConfig(name string) Config {
	return Config{
		Name:             name,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Timeout:          30 * time.Second,
	}
}

// Option is a functional option for configuring the circuit breaker.
type Option func(*Config)

// WithFailureThreshold sets the failure threshold.
func WithFailureThreshold(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.FailureThreshold = n
		}
	}
}

// WithSuccessThreshold sets the success threshold.
func WithSuccessThreshold(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.SuccessThreshold = n
		}
	}
}

// WithTimeout sets how long the circuit stays open.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.Timeout = d
		}
	}
}

// WithOnStateChange sets the state change callback.
func WithOnStateChange(fn func(name string, from, to State)) Option {
	return func(c *Config) {
		c.OnStateChange = fn
	}
}

// WithIsFailure sets the failure detection function.
func WithIsFailure(fn func(error) bool) Option {
	return func(c *Config) {
		c.IsFailure = fn
	}
}

// CircuitBreaker guards calls to one dependency. It is safe for concurrent use.
type CircuitBreaker struct {
	config Config

	mu        sync.Mutex
	state     State
	successes int // consecutive, reset on state change
	failures  int // consecutive, reset on state change
	openedAt  time.Time
	trial     bool // a half-open trial call is in flight
}

// New creates a CircuitBreaker with the given name and options.
func New(name string, opts ...Option) *CircuitBreaker {
	config := defaultConfig(name)
	for _, opt := range opts {
		opt(&config)
	}
	return &CircuitBreaker{config: config, state: StateClosed}
}

// Execute runs fn if the circuit allows it and records the outcome. fn's
// error is returned unchanged.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := cb.allow(); err != nil {
		return err
	}

	err := fn(ctx)
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return nil
	case StateOpen:
		if time.Since(cb.openedAt) < cb.config.Timeout {
			return ErrCircuitOpen
		}
		cb.setState(StateHalfOpen)
		cb.trial = true
		return nil
	case StateHalfOpen:
		if cb.trial {
			return ErrTooManyRequests
		}
		cb.trial = true
		return nil
	default:
		return ErrCircuitOpen
	}
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.trial = false

	failed := err != nil
	if failed && cb.config.IsFailure != nil {
		failed = cb.config.IsFailure(err)
	}

	if !failed {
		cb.failures = 0
		cb.successes++
		if cb.state == StateHalfOpen && cb.successes >= cb.config.SuccessThreshold {
			cb.setState(StateClosed)
		}
		return
	}

	cb.successes = 0
	cb.failures++
	// Any half-open failure reopens the circuit.
	if cb.state == StateHalfOpen || (cb.state == StateClosed && cb.failures >= cb.config.FailureThreshold) {
		cb.openedAt = time.Now()
		cb.setState(StateOpen)
	}
}

// setState must be called with mu held.
func (cb *CircuitBreaker) setState(to State) {
	if cb.state == to {
		return
	}
	from := cb.state
	cb.state = to
	cb.successes = 0
	cb.failures = 0

	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(cb.config.Name, from, to)
	}
}

// State returns the current state of the circuit breaker.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// IsOpen reports whether calls are currently being rejected.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.State() == StateOpen
}

// CacheBreaker returns a circuit breaker for the graded roster cache. A cache
// outage only costs a reload, so it gives up fast and retries soon. isMiss
// reports errors that mean "not cached" rather than "cache down".
func CacheBreaker(isMiss func(error) bool, onStateChange func(name string, from, to State)) *CircuitBreaker {
	return New(
		"roster-cache",
		WithFailureThreshold(3),
		WithSuccessThreshold(1),
		WithTimeout(15*time.Second),
		WithIsFailure(func(err error) bool { return isMiss == nil || !isMiss(err) }),
		WithOnStateChange(onStateChange),
	)
}
