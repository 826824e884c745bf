package orion

import "testing"

func TestRegistryReplay(t *testing.T) {
	r := NewRegistry()
	var got []string
	r.Register("a", func(e Event) { got = append(got, "a:"+e.Payload.(string)) })
	r.Register("b", func(e Event) { got = append(got, "b:"+e.Payload.(string)) })

	src := NewEmitter()
	if n := r.Replay(src); n != 2 {
		t.Fatalf("replayed %d, want 2", n)
	}

	src.Emit("a", "1")
	src.Emit("b", "2")
	src.Emit("c", "3")

	if len(got) != 2 || got[0] != "a:1" || got[1] != "b:2" {
		t.Errorf("unexpected dispatch %v", got)
	}
}

func TestRegistryRegisterWhileLive(t *testing.T) {
	r := NewRegistry()
	src := NewEmitter()
	r.Replay(src)

	calls := 0
	r.Register("x", func(Event) { calls++ })
	src.Emit("x", nil)
	if calls != 1 {
		t.Fatalf("late registration: got %d calls, want 1", calls)
	}

	// Replaying onto a fresh source binds the late handler exactly once.
	next := NewEmitter()
	r.Replay(next)
	next.Emit("x", nil)
	if calls != 2 {
		t.Errorf("after replay: got %d calls, want 2", calls)
	}
}

func TestRegistryEmitWithoutSession(t *testing.T) {
	r := NewRegistry()
	var payload any
	r.Register(EventQR, func(e Event) { payload = e.Payload })

	r.Emit(EventQR, "challenge")
	if payload != "challenge" {
		t.Errorf("payload: got %v, want challenge", payload)
	}
}

func TestRegistryDetach(t *testing.T) {
	r := NewRegistry()
	calls := 0
	r.Register("x", func(Event) { calls++ })

	src := NewEmitter()
	r.Replay(src)
	r.Detach(NewEmitter()) // not live, ignored
	r.Emit("x", nil)
	if calls != 1 {
		t.Fatalf("got %d calls, want 1", calls)
	}

	r.Detach(src)
	src.Emit("x", nil) // still bound to the detached source
	r.Emit("x", nil)   // dispatched directly
	if calls != 3 {
		t.Errorf("got %d calls, want 3", calls)
	}
}

func TestEmitterOrderAndClose(t *testing.T) {
	e := NewEmitter()
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		e.On("ev", func(Event) { order = append(order, i) })
	}
	e.Emit("ev", nil)
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Fatalf("unexpected order %v", order)
	}

	e.Close()
	e.Emit("ev", nil)
	e.On("ev", func(Event) { order = append(order, 99) })
	if len(order) != 3 {
		t.Errorf("closed emitter dispatched: %v", order)
	}
}
