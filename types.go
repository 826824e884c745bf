package orion

import "time"

// --------------------------------------------------------------------------
// Session Event Payloads
// --------------------------------------------------------------------------

// ConnectionStatus is the connection field of a ConnectionUpdate.
type ConnectionStatus string

const (
	ConnectionConnecting ConnectionStatus = "connecting"
	ConnectionOpen       ConnectionStatus = "open"
	ConnectionClose      ConnectionStatus = "close"
)

// ConnectionUpdate is the payload of a connection.update event.
// A login challenge carries QR with an empty Connection.
type ConnectionUpdate struct {
	Connection     ConnectionStatus
	QR             string
	LastDisconnect error
}

// MessagesUpsert is the payload of a messages.upsert event: one batch of
// inbound messages in arrival order.
type MessagesUpsert struct {
	Type     string // "notify" for live messages, "append" for history
	Messages []RawMessage
}

// MessageKey identifies a message within a chat.
type MessageKey struct {
	RemoteJID   string `json:"remoteJid"`
	ID          string `json:"id"`
	FromMe      bool   `json:"fromMe"`
	Participant string `json:"participant,omitempty"`
}

// RawMessage is a message as delivered by the transport.
type RawMessage struct {
	Key       MessageKey `json:"key"`
	PushName  string     `json:"pushName,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
	Text      string     `json:"text,omitempty"`
	Media     *MediaRef  `json:"media,omitempty"`
	QuotedID  string     `json:"quotedId,omitempty"`
	Mentions  []string   `json:"mentions,omitempty"`
}

// Contact is an entry of a contacts.update event.
type Contact struct {
	ID           string `json:"id"`
	Notify       string `json:"notify,omitempty"`
	VerifiedName string `json:"verifiedName,omitempty"`
	Name         string `json:"name,omitempty"`
	Status       string `json:"status,omitempty"`
	ImgURL       string `json:"imgUrl,omitempty"`
}

// Chat is an entry of a chats.upsert event.
type Chat struct {
	ID          string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	UnreadCount int       `json:"unreadCount,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// User is the account a session is logged in as.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// --------------------------------------------------------------------------
// Media Types
// --------------------------------------------------------------------------

// MediaKind is the declared kind of a media payload.
type MediaKind string

const (
	MediaImage    MediaKind = "image"
	MediaVideo    MediaKind = "video"
	MediaAudio    MediaKind = "audio"
	MediaDocument MediaKind = "document"
	MediaSticker  MediaKind = "sticker"
)

// MediaRef points at downloadable media attached to a message.
type MediaRef struct {
	Kind       MediaKind `json:"kind"`
	URL        string    `json:"url"`
	Mimetype   string    `json:"mimetype,omitempty"`
	FileLength int64     `json:"fileLength,omitempty"`
	FileSHA256 []byte    `json:"fileSha256,omitempty"`
	Caption    string    `json:"caption,omitempty"`
}

// --------------------------------------------------------------------------
// Capability Types
// --------------------------------------------------------------------------

// MessageContent is what SendMessage delivers.
type MessageContent struct {
	Text     string    `json:"text,omitempty"`
	Media    *MediaRef `json:"media,omitempty"`
	Mentions []string  `json:"mentions,omitempty"`
	QuotedID string    `json:"quotedId,omitempty"`
}

// Presence is a chat presence state.
type Presence string

const (
	PresenceAvailable   Presence = "available"
	PresenceUnavailable Presence = "unavailable"
	PresenceComposing   Presence = "composing"
	PresenceRecording   Presence = "recording"
	PresencePaused      Presence = "paused"
)

// PrivacyValue is the audience of a privacy setting.
type PrivacyValue string

const (
	PrivacyAll              PrivacyValue = "all"
	PrivacyContacts         PrivacyValue = "contacts"
	PrivacyContactBlacklist PrivacyValue = "contact_blacklist"
	PrivacyNone             PrivacyValue = "none"
)

// PrivacySettings is returned by FetchPrivacySettings.
type PrivacySettings struct {
	LastSeen     PrivacyValue `json:"lastSeen"`
	Online       PrivacyValue `json:"online"`
	Profile      PrivacyValue `json:"profile"`
	Status       PrivacyValue `json:"status"`
	ReadReceipts PrivacyValue `json:"readReceipts"`
	GroupAdd     PrivacyValue `json:"groupAdd"`
}

// ParticipantAction is applied by GroupParticipantsUpdate.
type ParticipantAction string

const (
	ParticipantAdd     ParticipantAction = "add"
	ParticipantRemove  ParticipantAction = "remove"
	ParticipantPromote ParticipantAction = "promote"
	ParticipantDemote  ParticipantAction = "demote"
)

// GroupParticipant is a member of a group. Admin is "admin", "superadmin" or empty.
type GroupParticipant struct {
	ID    string `json:"id"`
	Admin string `json:"admin,omitempty"`
}

// GroupMetadata describes a group chat.
type GroupMetadata struct {
	ID           string             `json:"id"`
	Subject      string             `json:"subject"`
	Owner        string             `json:"owner,omitempty"`
	Desc         string             `json:"desc,omitempty"`
	Creation     time.Time          `json:"creation,omitempty"`
	Announce     bool               `json:"announce,omitempty"`
	Restrict     bool               `json:"restrict,omitempty"`
	Participants []GroupParticipant `json:"participants"`
}

// Admins returns the IDs of participants holding any admin role.
func (g *GroupMetadata) Admins() []string {
	var out []string
	for _, p := range g.Participants {
		if p.Admin != "" {
			out = append(out, p.ID)
		}
	}
	return out
}
