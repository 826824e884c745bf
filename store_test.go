package orion

import "testing"

func TestMessageStoreLimitAndClear(t *testing.T) {
	s := newMessageStore(2)
	for _, id := range []string{"a", "b", "c"} {
		s.add(&Message{ID: id, Chat: "1@s.whatsapp.net"})
	}
	s.add(&Message{ID: "d", Chat: "2@s.whatsapp.net"})

	if got := s.messageCount(); got != 3 {
		t.Errorf("count: got %d, want 3", got)
	}
	if _, ok := s.load("1@s.whatsapp.net", "a"); ok {
		t.Error("oldest message should be evicted")
	}
	if _, ok := s.load("1@s.whatsapp.net", "c"); !ok {
		t.Error("newest message missing")
	}

	s.upsertChats([]Chat{{ID: "1@s.whatsapp.net"}})
	if got := s.clearMessages(); got != 3 {
		t.Errorf("cleared: got %d, want 3", got)
	}
	if got := s.messageCount(); got != 0 {
		t.Errorf("count after clear: got %d, want 0", got)
	}
	if got := len(s.chatList()); got != 1 {
		t.Errorf("chats after clear: got %d, want 1", got)
	}
}
