package orion

import (
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// PolicyState is a state of the reconnect state machine.
type PolicyState int

const (
	StateIdle PolicyState = iota
	StateConnecting
	StateConnected
	StateBackoff
	StateExhausted
)

func (s PolicyState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateBackoff:
		return "backoff"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// ReconnectPolicy bounds the number of consecutive failed connection
// attempts. Delays are fixed: no jitter, no growth.
type ReconnectPolicy struct {
	mu          sync.Mutex
	state       PolicyState
	attempts    int
	maxAttempts int
	delay       backoff.BackOff
}

// NewReconnectPolicy creates a policy in the Idle state.
func NewReconnectPolicy(maxAttempts int, delay time.Duration) *ReconnectPolicy {
	return &ReconnectPolicy{
		state:       StateIdle,
		maxAttempts: maxAttempts,
		delay:       backoff.NewConstantBackOff(delay),
	}
}

// Begin is called when a connection attempt is about to start. Once the
// attempt budget is spent the policy becomes Exhausted and stays there.
func (p *ReconnectPolicy) Begin() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateExhausted || p.attempts >= p.maxAttempts {
		p.state = StateExhausted
		return ErrReconnectExhausted
	}
	p.state = StateConnecting
	return nil
}

// Opened records a successful open and resets the attempt counter.
func (p *ReconnectPolicy) Opened() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateExhausted {
		return
	}
	p.state = StateConnected
	p.attempts = 0
	p.delay.Reset()
}

// Disconnected records a closed session and returns how long to wait before
// the next attempt.
//
// A logout resets the counter and is still retried, so a fresh login
// challenge can be issued on the next session.
func (p *ReconnectPolicy) Disconnected(cause Cause) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateExhausted {
		return 0
	}
	switch cause {
	case CauseTerminalLogout:
		p.attempts = 0
	default:
		if p.attempts < p.maxAttempts {
			p.attempts++
		}
	}
	p.state = StateBackoff
	return p.delay.NextBackOff()
}

// Attempts returns the number of consecutive retryable disconnects.
func (p *ReconnectPolicy) Attempts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempts
}

// MaxAttempts returns the attempt budget.
func (p *ReconnectPolicy) MaxAttempts() int { return p.maxAttempts }

// State returns the current state.
func (p *ReconnectPolicy) State() PolicyState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}
