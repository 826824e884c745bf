package orion

import (
	"errors"
	"fmt"
)

// DisconnectReason is the status code a session reports when it closes.
type DisconnectReason int

const (
	ReasonNone                DisconnectReason = 0
	ReasonLoggedOut           DisconnectReason = 401
	ReasonForbidden           DisconnectReason = 403
	ReasonConnectionLost      DisconnectReason = 408
	ReasonTimedOut            DisconnectReason = 408
	ReasonMultideviceMismatch DisconnectReason = 411
	ReasonConnectionClosed    DisconnectReason = 428
	ReasonConnectionReplaced  DisconnectReason = 440
	ReasonBadSession          DisconnectReason = 500
	ReasonUnavailableService  DisconnectReason = 503
	ReasonRestartRequired     DisconnectReason = 515
)

func (r DisconnectReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonLoggedOut:
		return "logged_out"
	case ReasonForbidden:
		return "forbidden"
	case ReasonConnectionLost:
		return "connection_lost"
	case ReasonMultideviceMismatch:
		return "multidevice_mismatch"
	case ReasonConnectionClosed:
		return "connection_closed"
	case ReasonConnectionReplaced:
		return "connection_replaced"
	case ReasonBadSession:
		return "bad_session"
	case ReasonUnavailableService:
		return "unavailable_service"
	case ReasonRestartRequired:
		return "restart_required"
	default:
		return fmt.Sprintf("status_%d", int(r))
	}
}

// Cause is the outcome of classifying a disconnect.
type Cause int

const (
	CauseRetryable Cause = iota
	CauseTerminalLogout
)

func (c Cause) String() string {
	if c == CauseTerminalLogout {
		return "terminal_logout"
	}
	return "retryable"
}

// Classify maps a disconnect status code to a Cause. Only an explicit logout
// is terminal; every other code, including no code at all, is retryable.
func Classify(code int) Cause {
	if DisconnectReason(code) == ReasonLoggedOut {
		return CauseTerminalLogout
	}
	return CauseRetryable
}

// DisconnectError describes why a session closed.
type DisconnectError struct {
	Reason DisconnectReason
	Err    error
}

func (e *DisconnectError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("disconnected (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("disconnected (%s)", e.Reason)
}

func (e *DisconnectError) Unwrap() error { return e.Err }

// StatusCode extracts the disconnect status code from err, or 0 when err
// carries none.
func StatusCode(err error) int {
	var de *DisconnectError
	if errors.As(err, &de) {
		return int(de.Reason)
	}
	return 0
}
