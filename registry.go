package orion

import "sync"

type subscription struct {
	name    string
	handler Handler
}

// Registry remembers event subscriptions independently of any session and
// replays them onto each new session's event source.
type Registry struct {
	mu   sync.Mutex
	subs []subscription
	live EventSource
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register stores h for name. If a session is live, h is bound to it as well.
func (r *Registry) Register(name string, h Handler) {
	if h == nil {
		return
	}
	r.mu.Lock()
	r.subs = append(r.subs, subscription{name: name, handler: h})
	live := r.live
	r.mu.Unlock()

	if live != nil {
		live.On(name, h)
	}
}

// Replay binds every stored subscription onto src and makes src the live
// source. It must run before src produces its first event.
func (r *Registry) Replay(src EventSource) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.subs {
		src.On(s.name, s.handler)
	}
	r.live = src
	return len(r.subs)
}

// Emit forwards a normalized event through the live source. Before the first
// session exists it dispatches to the stored handlers directly.
func (r *Registry) Emit(name string, payload any) {
	r.mu.Lock()
	live := r.live
	var direct []Handler
	if live == nil {
		for _, s := range r.subs {
			if s.name == name {
				direct = append(direct, s.handler)
			}
		}
	}
	r.mu.Unlock()

	if live != nil {
		live.Emit(name, payload)
		return
	}
	ev := Event{Name: name, Payload: payload}
	for _, h := range direct {
		h(ev)
	}
}

// Len returns the number of stored subscriptions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// Detach forgets src as the live source if it still is.
func (r *Registry) Detach(src EventSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.live == src {
		r.live = nil
	}
}
