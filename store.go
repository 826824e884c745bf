package orion

import (
	"sync"
)

// DefaultMessagesPerChat is the message cache depth per chat.
const DefaultMessagesPerChat = 100

// messageStore caches recent messages per chat. It is a housekeeping
// structure: clearing it never affects connection behavior.
type messageStore struct {
	mu      sync.RWMutex
	limit   int
	byChat  map[string][]*Message
	chats   map[string]Chat
	order   []string
	contact map[string]Contact
}

func newMessageStore(limit int) *messageStore {
	if limit <= 0 {
		limit = DefaultMessagesPerChat
	}
	return &messageStore{
		limit:   limit,
		byChat:  make(map[string][]*Message),
		chats:   make(map[string]Chat),
		contact: make(map[string]Contact),
	}
}

func (s *messageStore) add(m *Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := append(s.byChat[m.Chat], m)
	if len(msgs) > s.limit {
		msgs = msgs[len(msgs)-s.limit:]
	}
	s.byChat[m.Chat] = msgs
}

func (s *messageStore) load(chat, id string) (*Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.byChat[chat]
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].ID == id {
			return msgs[i], true
		}
	}
	return nil, false
}

// clearMessages drops every cached message and returns how many were dropped.
func (s *messageStore) clearMessages() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for chat, msgs := range s.byChat {
		n += len(msgs)
		delete(s.byChat, chat)
	}
	return n
}

func (s *messageStore) messageCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, msgs := range s.byChat {
		n += len(msgs)
	}
	return n
}

func (s *messageStore) upsertChats(chats []Chat) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range chats {
		if _, ok := s.chats[c.ID]; !ok {
			s.order = append(s.order, c.ID)
		}
		s.chats[c.ID] = c
	}
}

func (s *messageStore) chatList() []Chat {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Chat, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.chats[id])
	}
	return out
}

// updateContacts merges partial contact updates. A known contact only has
// its notify name refreshed.
func (s *messageStore) updateContacts(contacts []Contact) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range contacts {
		if c.ID == "" {
			continue
		}
		if existing, ok := s.contact[c.ID]; ok {
			if c.Notify != "" && c.Notify != existing.Notify {
				existing.Notify = c.Notify
				s.contact[c.ID] = existing
			}
			continue
		}
		s.contact[c.ID] = c
	}
}

func (s *messageStore) lookupContact(jid string) (Contact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contact[jid]
	return c, ok
}
