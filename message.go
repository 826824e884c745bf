package orion

import (
	"strings"
	"time"
)

// MessageKind classifies a normalized message by its content.
type MessageKind string

const (
	KindText     MessageKind = "text"
	KindImage    MessageKind = "image"
	KindVideo    MessageKind = "video"
	KindAudio    MessageKind = "audio"
	KindDocument MessageKind = "document"
	KindSticker  MessageKind = "sticker"
	KindUnknown  MessageKind = "unknown"
)

// Message is the normalized form of an inbound message, delivered with
// new-message events.
type Message struct {
	ID        string
	Chat      string
	Sender    string
	PushName  string
	FromMe    bool
	IsGroup   bool
	Kind      MessageKind
	Content   string // text body, or the media caption
	QuotedID  string
	Mentions  []string
	Media     *MediaRef
	Timestamp time.Time

	Raw RawMessage
}

// NewMessage normalizes a raw transport message.
func NewMessage(raw RawMessage) *Message {
	m := &Message{
		ID:        raw.Key.ID,
		Chat:      raw.Key.RemoteJID,
		PushName:  raw.PushName,
		FromMe:    raw.Key.FromMe,
		IsGroup:   IsGroupJID(raw.Key.RemoteJID),
		QuotedID:  raw.QuotedID,
		Mentions:  raw.Mentions,
		Media:     raw.Media,
		Timestamp: raw.Timestamp,
		Raw:       raw,
	}

	m.Sender = raw.Key.RemoteJID
	if m.IsGroup && raw.Key.Participant != "" {
		m.Sender = raw.Key.Participant
	}

	switch {
	case raw.Media != nil:
		m.Kind = mediaKindToMessageKind(raw.Media.Kind)
		m.Content = raw.Media.Caption
	case raw.Text != "":
		m.Kind = KindText
		m.Content = raw.Text
	default:
		m.Kind = KindUnknown
	}
	return m
}

// HasMedia reports whether m carries a downloadable payload.
func (m *Message) HasMedia() bool { return m.Media != nil }

func mediaKindToMessageKind(k MediaKind) MessageKind {
	switch k {
	case MediaImage:
		return KindImage
	case MediaVideo:
		return KindVideo
	case MediaAudio:
		return KindAudio
	case MediaDocument:
		return KindDocument
	case MediaSticker:
		return KindSticker
	default:
		return KindUnknown
	}
}

// IsGroupJID reports whether jid addresses a group chat.
func IsGroupJID(jid string) bool {
	return strings.HasSuffix(jid, "@g.us")
}

// SanitizeJID strips the device suffix from a user JID ("123:4@s.whatsapp.net"
// becomes "123@s.whatsapp.net").
func SanitizeJID(jid string) string {
	user, server, ok := strings.Cut(jid, "@")
	if !ok {
		return jid
	}
	if i := strings.IndexByte(user, ':'); i >= 0 {
		user = user[:i]
	}
	return user + "@" + server
}
