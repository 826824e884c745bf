// Package wire defines the JSON payload types carried inside gateway frames.
// Both the gateway and the bot import these.
package wire

import "encoding/json"

// Capability operation names carried in REQUEST frames.
const (
	OpSendMessage                = "sendMessage"
	OpReadMessages               = "readMessages"
	OpSendPresenceUpdate         = "sendPresenceUpdate"
	OpPresenceSubscribe          = "presenceSubscribe"
	OpProfilePictureURL          = "profilePictureUrl"
	OpFetchStatus                = "fetchStatus"
	OpUpdateProfileStatus        = "updateProfileStatus"
	OpUpdateProfileName          = "updateProfileName"
	OpUpdateBlockStatus          = "updateBlockStatus"
	OpFetchPrivacySettings       = "fetchPrivacySettings"
	OpUpdateLastSeenPrivacy      = "updateLastSeenPrivacy"
	OpGroupMetadata              = "groupMetadata"
	OpGroupCreate                = "groupCreate"
	OpGroupLeave                 = "groupLeave"
	OpGroupUpdateSubject         = "groupUpdateSubject"
	OpGroupParticipantsUpdate    = "groupParticipantsUpdate"
	OpGroupInviteCode            = "groupInviteCode"
	OpGroupFetchAllParticipating = "groupFetchAllParticipating"
	OpLogout                     = "logout"
)

// ConnectPayload is the payload of a CONNECT frame (client -> gateway).
type ConnectPayload struct {
	Session string `json:"session,omitempty"`
	Token   string `json:"token,omitempty"`
}

// AuthResultPayload is the payload of AUTH_OK / AUTH_FAIL (gateway -> client).
type AuthResultPayload struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
	UserID string `json:"userId,omitempty"`
	Name   string `json:"name,omitempty"`
}

// LoginChallengePayload carries a QR payload to be scanned by the account owner.
type LoginChallengePayload struct {
	QR string `json:"qr"`
}

// RequestPayload is the payload of a REQUEST frame. The frame header msg_id
// correlates it with the RESPONSE.
type RequestPayload struct {
	Op   string          `json:"op"`
	Args json.RawMessage `json:"args,omitempty"`
}

// ResponsePayload is the payload of a RESPONSE frame.
type ResponsePayload struct {
	OK     bool            `json:"ok"`
	Error  string          `json:"error,omitempty"`
	Status int             `json:"status,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

// DeliveryPayload is a batch of inbound messages. Type is "notify" for live
// messages and "append" for history.
type DeliveryPayload struct {
	Type     string          `json:"type"`
	Messages json.RawMessage `json:"messages"`
}

// ContactsPayload is the payload of a CONTACTS_UPDATE frame.
type ContactsPayload struct {
	Contacts json.RawMessage `json:"contacts"`
}

// ChatsPayload is the payload of a CHATS_UPSERT frame.
type ChatsPayload struct {
	Chats json.RawMessage `json:"chats"`
}

// AckPayload is the payload of an ACK frame (client -> gateway).
type AckPayload struct {
	AckedSeq uint64 `json:"ackedSeq"`
}

// ClosePayload is the payload of a CLOSE frame. Code uses the disconnect
// status codes (401 logged out, 440 replaced, 515 restart required, ...).
type ClosePayload struct {
	Code   int    `json:"code"`
	Reason string `json:"reason,omitempty"`
}
