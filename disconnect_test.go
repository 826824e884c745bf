package orion

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	if Classify(int(ReasonLoggedOut)) != CauseTerminalLogout {
		t.Error("logged out should be terminal")
	}

	retryable := []DisconnectReason{
		ReasonNone, ReasonForbidden, ReasonConnectionLost, ReasonTimedOut,
		ReasonMultideviceMismatch, ReasonConnectionClosed, ReasonConnectionReplaced,
		ReasonBadSession, ReasonUnavailableService, ReasonRestartRequired,
		DisconnectReason(999),
	}
	for _, r := range retryable {
		if got := Classify(int(r)); got != CauseRetryable {
			t.Errorf("%s: got %s, want retryable", r, got)
		}
	}
}

func TestStatusCode(t *testing.T) {
	if StatusCode(nil) != 0 {
		t.Error("nil error should have no code")
	}
	if StatusCode(errors.New("boom")) != 0 {
		t.Error("plain error should have no code")
	}

	err := fmt.Errorf("read: %w", &DisconnectError{Reason: ReasonLoggedOut})
	if got := StatusCode(err); got != 401 {
		t.Errorf("wrapped code: got %d, want 401", got)
	}
}

func TestDisconnectErrorUnwrap(t *testing.T) {
	inner := errors.New("eof")
	err := &DisconnectError{Reason: ReasonConnectionClosed, Err: inner}
	if !errors.Is(err, inner) {
		t.Error("expected DisconnectError to unwrap to inner error")
	}
	if err.Error() != "disconnected (connection_closed): eof" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
