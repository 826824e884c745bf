package orion

import (
	"testing"
	"time"
)

func TestNewMessageText(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	m := NewMessage(RawMessage{
		Key:       MessageKey{RemoteJID: "123@s.whatsapp.net", ID: "A1"},
		PushName:  "Ann",
		Timestamp: ts,
		Text:      "!help",
	})

	if m.Kind != KindText {
		t.Errorf("kind: got %s, want text", m.Kind)
	}
	if m.Content != "!help" {
		t.Errorf("content: got %q", m.Content)
	}
	if m.IsGroup {
		t.Error("did not expect group")
	}
	if m.Sender != "123@s.whatsapp.net" {
		t.Errorf("sender: got %q", m.Sender)
	}
	if !m.Timestamp.Equal(ts) {
		t.Errorf("timestamp: got %v, want %v", m.Timestamp, ts)
	}
	if m.HasMedia() {
		t.Error("did not expect media")
	}
}

func TestNewMessageGroupMedia(t *testing.T) {
	m := NewMessage(RawMessage{
		Key: MessageKey{
			RemoteJID:   "999-111@g.us",
			ID:          "B2",
			Participant: "555@s.whatsapp.net",
		},
		Media: &MediaRef{Kind: MediaSticker, URL: "https://media/x", Caption: "cap"},
	})

	if !m.IsGroup {
		t.Error("expected group")
	}
	if m.Sender != "555@s.whatsapp.net" {
		t.Errorf("sender: got %q, want participant", m.Sender)
	}
	if m.Kind != KindSticker {
		t.Errorf("kind: got %s, want sticker", m.Kind)
	}
	if m.Content != "cap" {
		t.Errorf("content: got %q, want caption", m.Content)
	}
	if !m.HasMedia() {
		t.Error("expected media")
	}
}

func TestSanitizeJID(t *testing.T) {
	cases := map[string]string{
		"123:4@s.whatsapp.net": "123@s.whatsapp.net",
		"123@s.whatsapp.net":   "123@s.whatsapp.net",
		"nojid":                "nojid",
	}
	for in, want := range cases {
		if got := SanitizeJID(in); got != want {
			t.Errorf("SanitizeJID(%q): got %q, want %q", in, got, want)
		}
	}
}
