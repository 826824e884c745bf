package gateway

import (
	"context"

	"github.com/orion-bot/orion"
	"github.com/orion-bot/orion/wire"
)

var _ orion.Session = (*Session)(nil)

type jidArgs struct {
	JID string `json:"jid"`
}

// --- Messaging ---

func (s *Session) SendMessage(ctx context.Context, jid string, content orion.MessageContent) (string, error) {
	var res struct {
		ID string `json:"id"`
	}
	args := struct {
		JID     string               `json:"jid"`
		Content orion.MessageContent `json:"content"`
	}{jid, content}
	if err := s.call(ctx, wire.OpSendMessage, args, &res); err != nil {
		return "", err
	}
	return res.ID, nil
}

func (s *Session) ReadMessages(ctx context.Context, keys []orion.MessageKey) error {
	args := struct {
		Keys []orion.MessageKey `json:"keys"`
	}{keys}
	return s.call(ctx, wire.OpReadMessages, args, nil)
}

// --- Presence ---

func (s *Session) SendPresenceUpdate(ctx context.Context, presence orion.Presence, jid string) error {
	args := struct {
		Presence orion.Presence `json:"presence"`
		JID      string         `json:"jid,omitempty"`
	}{presence, jid}
	return s.call(ctx, wire.OpSendPresenceUpdate, args, nil)
}

func (s *Session) PresenceSubscribe(ctx context.Context, jid string) error {
	return s.call(ctx, wire.OpPresenceSubscribe, jidArgs{jid}, nil)
}

// --- Profile and privacy ---

func (s *Session) ProfilePictureURL(ctx context.Context, jid string) (string, error) {
	var res struct {
		URL string `json:"url"`
	}
	if err := s.call(ctx, wire.OpProfilePictureURL, jidArgs{jid}, &res); err != nil {
		return "", err
	}
	return res.URL, nil
}

func (s *Session) FetchStatus(ctx context.Context, jid string) (string, error) {
	var res struct {
		Status string `json:"status"`
	}
	if err := s.call(ctx, wire.OpFetchStatus, jidArgs{jid}, &res); err != nil {
		return "", err
	}
	return res.Status, nil
}

func (s *Session) UpdateProfileStatus(ctx context.Context, status string) error {
	args := struct {
		Status string `json:"status"`
	}{status}
	return s.call(ctx, wire.OpUpdateProfileStatus, args, nil)
}

func (s *Session) UpdateProfileName(ctx context.Context, name string) error {
	args := struct {
		Name string `json:"name"`
	}{name}
	return s.call(ctx, wire.OpUpdateProfileName, args, nil)
}

func (s *Session) UpdateBlockStatus(ctx context.Context, jid string, block bool) error {
	action := "unblock"
	if block {
		action = "block"
	}
	args := struct {
		JID    string `json:"jid"`
		Action string `json:"action"`
	}{jid, action}
	return s.call(ctx, wire.OpUpdateBlockStatus, args, nil)
}

func (s *Session) FetchPrivacySettings(ctx context.Context) (*orion.PrivacySettings, error) {
	var res orion.PrivacySettings
	if err := s.call(ctx, wire.OpFetchPrivacySettings, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *Session) UpdateLastSeenPrivacy(ctx context.Context, value orion.PrivacyValue) error {
	args := struct {
		Value orion.PrivacyValue `json:"value"`
	}{value}
	return s.call(ctx, wire.OpUpdateLastSeenPrivacy, args, nil)
}

// --- Groups ---

func (s *Session) GroupMetadata(ctx context.Context, jid string) (*orion.GroupMetadata, error) {
	var res orion.GroupMetadata
	if err := s.call(ctx, wire.OpGroupMetadata, jidArgs{jid}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *Session) GroupCreate(ctx context.Context, subject string, participants []string) (*orion.GroupMetadata, error) {
	args := struct {
		Subject      string   `json:"subject"`
		Participants []string `json:"participants"`
	}{subject, participants}
	var res orion.GroupMetadata
	if err := s.call(ctx, wire.OpGroupCreate, args, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *Session) GroupLeave(ctx context.Context, jid string) error {
	return s.call(ctx, wire.OpGroupLeave, jidArgs{jid}, nil)
}

func (s *Session) GroupUpdateSubject(ctx context.Context, jid, subject string) error {
	args := struct {
		JID     string `json:"jid"`
		Subject string `json:"subject"`
	}{jid, subject}
	return s.call(ctx, wire.OpGroupUpdateSubject, args, nil)
}

func (s *Session) GroupParticipantsUpdate(ctx context.Context, jid string, participants []string, action orion.ParticipantAction) error {
	args := struct {
		JID          string                  `json:"jid"`
		Participants []string                `json:"participants"`
		Action       orion.ParticipantAction `json:"action"`
	}{jid, participants, action}
	return s.call(ctx, wire.OpGroupParticipantsUpdate, args, nil)
}

func (s *Session) GroupInviteCode(ctx context.Context, jid string) (string, error) {
	var res struct {
		Code string `json:"code"`
	}
	if err := s.call(ctx, wire.OpGroupInviteCode, jidArgs{jid}, &res); err != nil {
		return "", err
	}
	return res.Code, nil
}

func (s *Session) GroupFetchAllParticipating(ctx context.Context) (map[string]*orion.GroupMetadata, error) {
	res := make(map[string]*orion.GroupMetadata)
	if err := s.call(ctx, wire.OpGroupFetchAllParticipating, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// --- Session ---

// Logout asks the gateway to drop the stored credentials. The gateway
// follows up with a CLOSE frame carrying 401.
func (s *Session) Logout(ctx context.Context) error {
	return s.call(ctx, wire.OpLogout, nil, nil)
}
