package orion

import "context"

// Session is one live link to the messaging service, as supplied by a
// transport. A session is used once: after it closes it is discarded and a
// new one is dialed.
type Session interface {
	Capabilities

	// Events returns the session's event source. Handlers bound before
	// Start see every event the session produces.
	Events() EventSource

	// Start begins connecting. Every outcome, including failure to reach
	// the remote end, is reported as a connection.update event.
	Start(ctx context.Context)

	// User returns the logged-in account once the session is open.
	User() *User

	// Close releases the session.
	Close() error
}

// Dialer creates sessions.
type Dialer interface {
	Dial(ctx context.Context) (Session, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context) (Session, error)

// Dial calls f(ctx).
func (f DialerFunc) Dial(ctx context.Context) (Session, error) { return f(ctx) }
