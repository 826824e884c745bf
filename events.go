package orion

import "sync"

// Normalized events emitted by the Client.
const (
	EventQR         = "qr"
	EventOpen       = "open"
	EventNewMessage = "new-message"
)

// Events produced by a transport session.
const (
	EventConnectionUpdate = "connection.update"
	EventMessagesUpsert   = "messages.upsert"
	EventContactsUpdate   = "contacts.update"
	EventChatsUpsert      = "chats.upsert"
)

// Event is a named payload delivered to a Handler.
type Event struct {
	Name    string
	Payload any
}

// Handler is a callback for events.
type Handler func(Event)

// EventSource is the subscription surface of a session.
type EventSource interface {
	On(name string, h Handler)
	Emit(name string, payload any)
}

// Emitter is an in-process EventSource. Handlers for a name are invoked
// synchronously, in registration order, on the goroutine calling Emit.
type Emitter struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	closed   bool
}

// NewEmitter creates an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{handlers: make(map[string][]Handler)}
}

// On adds h to the handlers for name.
func (e *Emitter) On(name string, h Handler) {
	if h == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.handlers[name] = append(e.handlers[name], h)
}

// Emit dispatches payload to every handler registered for name.
// Emit on a closed emitter is a no-op.
func (e *Emitter) Emit(name string, payload any) {
	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return
	}
	hs := e.handlers[name]
	e.mu.RUnlock()

	ev := Event{Name: name, Payload: payload}
	for _, h := range hs {
		h(ev)
	}
}

// Close drops all handlers and silences further emits.
func (e *Emitter) Close() {
	e.mu.Lock()
	e.closed = true
	e.handlers = nil
	e.mu.Unlock()
}
