package orion

import (
	"errors"
	"fmt"
)

var (
	ErrNotConnected       = errors.New("orion: not connected")
	ErrNotMediaMessage    = errors.New("orion: message is not a media message")
	ErrReconnectExhausted = errors.New("orion: max reconnection attempts reached")
)

// NotConnectedError is returned by every capability invoked while no session
// is open. Op names the operation that was called.
type NotConnectedError struct {
	Op string
}

func (e *NotConnectedError) Error() string {
	return fmt.Sprintf("orion: %s cannot be called without connecting", e.Op)
}

func (e *NotConnectedError) Is(target error) bool { return target == ErrNotConnected }

// NotMediaMessageError is returned when a download is requested for a message
// that carries no media payload.
type NotMediaMessageError struct {
	MessageID string
}

func (e *NotMediaMessageError) Error() string {
	if e.MessageID == "" {
		return ErrNotMediaMessage.Error()
	}
	return fmt.Sprintf("%s: %s", ErrNotMediaMessage, e.MessageID)
}

func (e *NotMediaMessageError) Is(target error) bool { return target == ErrNotMediaMessage }
