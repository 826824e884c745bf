package orion

import (
	"context"
	"sync/atomic"
)

// Capabilities is the full set of remote operations a connected session
// exposes. The Client presents the same set whether or not a session is open.
type Capabilities interface {
	// Messaging
	SendMessage(ctx context.Context, jid string, content MessageContent) (string, error)
	ReadMessages(ctx context.Context, keys []MessageKey) error

	// Presence
	SendPresenceUpdate(ctx context.Context, presence Presence, jid string) error
	PresenceSubscribe(ctx context.Context, jid string) error

	// Profile and privacy
	ProfilePictureURL(ctx context.Context, jid string) (string, error)
	FetchStatus(ctx context.Context, jid string) (string, error)
	UpdateProfileStatus(ctx context.Context, status string) error
	UpdateProfileName(ctx context.Context, name string) error
	UpdateBlockStatus(ctx context.Context, jid string, block bool) error
	FetchPrivacySettings(ctx context.Context) (*PrivacySettings, error)
	UpdateLastSeenPrivacy(ctx context.Context, value PrivacyValue) error

	// Groups
	GroupMetadata(ctx context.Context, jid string) (*GroupMetadata, error)
	GroupCreate(ctx context.Context, subject string, participants []string) (*GroupMetadata, error)
	GroupLeave(ctx context.Context, jid string) error
	GroupUpdateSubject(ctx context.Context, jid, subject string) error
	GroupParticipantsUpdate(ctx context.Context, jid string, participants []string, action ParticipantAction) error
	GroupInviteCode(ctx context.Context, jid string) (string, error)
	GroupFetchAllParticipating(ctx context.Context) (map[string]*GroupMetadata, error)

	// Media
	UploadMedia(ctx context.Context, kind MediaKind, data []byte) (*MediaRef, error)
	DownloadMediaStream(ctx context.Context, ref MediaRef) (MediaStream, error)

	// Session
	Logout(ctx context.Context) error
}

// Operations lists every capability by name, in interface order.
var Operations = []string{
	"SendMessage",
	"ReadMessages",
	"SendPresenceUpdate",
	"PresenceSubscribe",
	"ProfilePictureURL",
	"FetchStatus",
	"UpdateProfileStatus",
	"UpdateProfileName",
	"UpdateBlockStatus",
	"FetchPrivacySettings",
	"UpdateLastSeenPrivacy",
	"GroupMetadata",
	"GroupCreate",
	"GroupLeave",
	"GroupUpdateSubject",
	"GroupParticipantsUpdate",
	"GroupInviteCode",
	"GroupFetchAllParticipating",
	"UploadMedia",
	"DownloadMediaStream",
	"Logout",
}

// notReady stands in for a session before one is open. Every call fails
// immediately with a NotConnectedError naming the operation.
type notReady struct{}

func notConnected(op string) error { return &NotConnectedError{Op: op} }

func (notReady) SendMessage(context.Context, string, MessageContent) (string, error) {
	return "", notConnected("SendMessage")
}

func (notReady) ReadMessages(context.Context, []MessageKey) error {
	return notConnected("ReadMessages")
}

func (notReady) SendPresenceUpdate(context.Context, Presence, string) error {
	return notConnected("SendPresenceUpdate")
}

func (notReady) PresenceSubscribe(context.Context, string) error {
	return notConnected("PresenceSubscribe")
}

func (notReady) ProfilePictureURL(context.Context, string) (string, error) {
	return "", notConnected("ProfilePictureURL")
}

func (notReady) FetchStatus(context.Context, string) (string, error) {
	return "", notConnected("FetchStatus")
}

func (notReady) UpdateProfileStatus(context.Context, string) error {
	return notConnected("UpdateProfileStatus")
}

func (notReady) UpdateProfileName(context.Context, string) error {
	return notConnected("UpdateProfileName")
}

func (notReady) UpdateBlockStatus(context.Context, string, bool) error {
	return notConnected("UpdateBlockStatus")
}

func (notReady) FetchPrivacySettings(context.Context) (*PrivacySettings, error) {
	return nil, notConnected("FetchPrivacySettings")
}

func (notReady) UpdateLastSeenPrivacy(context.Context, PrivacyValue) error {
	return notConnected("UpdateLastSeenPrivacy")
}

func (notReady) GroupMetadata(context.Context, string) (*GroupMetadata, error) {
	return nil, notConnected("GroupMetadata")
}

func (notReady) GroupCreate(context.Context, string, []string) (*GroupMetadata, error) {
	return nil, notConnected("GroupCreate")
}

func (notReady) GroupLeave(context.Context, string) error {
	return notConnected("GroupLeave")
}

func (notReady) GroupUpdateSubject(context.Context, string, string) error {
	return notConnected("GroupUpdateSubject")
}

func (notReady) GroupParticipantsUpdate(context.Context, string, []string, ParticipantAction) error {
	return notConnected("GroupParticipantsUpdate")
}

func (notReady) GroupInviteCode(context.Context, string) (string, error) {
	return "", notConnected("GroupInviteCode")
}

func (notReady) GroupFetchAllParticipating(context.Context) (map[string]*GroupMetadata, error) {
	return nil, notConnected("GroupFetchAllParticipating")
}

func (notReady) UploadMedia(context.Context, MediaKind, []byte) (*MediaRef, error) {
	return nil, notConnected("UploadMedia")
}

func (notReady) DownloadMediaStream(context.Context, MediaRef) (MediaStream, error) {
	return nil, notConnected("DownloadMediaStream")
}

func (notReady) Logout(context.Context) error {
	return notConnected("Logout")
}

// binding is one complete capability table. It is replaced, never mutated.
type binding struct {
	caps  Capabilities
	ready bool
}

var unbound = &binding{caps: notReady{}}

// capabilityProxy swaps whole bindings atomically, so a concurrent caller
// sees either the previous table or the next one.
type capabilityProxy struct {
	cur atomic.Pointer[binding]
}

func newCapabilityProxy() *capabilityProxy {
	p := &capabilityProxy{}
	p.cur.Store(unbound)
	return p
}

func (p *capabilityProxy) bind(caps Capabilities) {
	p.cur.Store(&binding{caps: caps, ready: true})
}

func (p *capabilityProxy) unbind() {
	p.cur.Store(unbound)
}

func (p *capabilityProxy) load() Capabilities {
	return p.cur.Load().caps
}

// Ready returns the live capability table, or false when no session is open.
func (c *Client) Ready() (Capabilities, bool) {
	b := c.caps.cur.Load()
	return b.caps, b.ready
}

// --- Delegated capabilities ---

func (c *Client) SendMessage(ctx context.Context, jid string, content MessageContent) (string, error) {
	return c.caps.load().SendMessage(ctx, jid, content)
}

func (c *Client) ReadMessages(ctx context.Context, keys []MessageKey) error {
	return c.caps.load().ReadMessages(ctx, keys)
}

func (c *Client) SendPresenceUpdate(ctx context.Context, presence Presence, jid string) error {
	return c.caps.load().SendPresenceUpdate(ctx, presence, jid)
}

func (c *Client) PresenceSubscribe(ctx context.Context, jid string) error {
	return c.caps.load().PresenceSubscribe(ctx, jid)
}

func (c *Client) ProfilePictureURL(ctx context.Context, jid string) (string, error) {
	return c.caps.load().ProfilePictureURL(ctx, jid)
}

func (c *Client) FetchStatus(ctx context.Context, jid string) (string, error) {
	return c.caps.load().FetchStatus(ctx, jid)
}

func (c *Client) UpdateProfileStatus(ctx context.Context, status string) error {
	return c.caps.load().UpdateProfileStatus(ctx, status)
}

func (c *Client) UpdateProfileName(ctx context.Context, name string) error {
	return c.caps.load().UpdateProfileName(ctx, name)
}

func (c *Client) UpdateBlockStatus(ctx context.Context, jid string, block bool) error {
	return c.caps.load().UpdateBlockStatus(ctx, jid, block)
}

func (c *Client) FetchPrivacySettings(ctx context.Context) (*PrivacySettings, error) {
	return c.caps.load().FetchPrivacySettings(ctx)
}

func (c *Client) UpdateLastSeenPrivacy(ctx context.Context, value PrivacyValue) error {
	return c.caps.load().UpdateLastSeenPrivacy(ctx, value)
}

func (c *Client) GroupMetadata(ctx context.Context, jid string) (*GroupMetadata, error) {
	return c.caps.load().GroupMetadata(ctx, jid)
}

func (c *Client) GroupCreate(ctx context.Context, subject string, participants []string) (*GroupMetadata, error) {
	return c.caps.load().GroupCreate(ctx, subject, participants)
}

func (c *Client) GroupLeave(ctx context.Context, jid string) error {
	return c.caps.load().GroupLeave(ctx, jid)
}

func (c *Client) GroupUpdateSubject(ctx context.Context, jid, subject string) error {
	return c.caps.load().GroupUpdateSubject(ctx, jid, subject)
}

func (c *Client) GroupParticipantsUpdate(ctx context.Context, jid string, participants []string, action ParticipantAction) error {
	return c.caps.load().GroupParticipantsUpdate(ctx, jid, participants, action)
}

func (c *Client) GroupInviteCode(ctx context.Context, jid string) (string, error) {
	return c.caps.load().GroupInviteCode(ctx, jid)
}

func (c *Client) GroupFetchAllParticipating(ctx context.Context) (map[string]*GroupMetadata, error) {
	return c.caps.load().GroupFetchAllParticipating(ctx)
}

func (c *Client) UploadMedia(ctx context.Context, kind MediaKind, data []byte) (*MediaRef, error) {
	return c.caps.load().UploadMedia(ctx, kind, data)
}

func (c *Client) DownloadMediaStream(ctx context.Context, ref MediaRef) (MediaStream, error) {
	return c.caps.load().DownloadMediaStream(ctx, ref)
}

func (c *Client) Logout(ctx context.Context) error {
	return c.caps.load().Logout(ctx)
}

var _ Capabilities = (*Client)(nil)
