// Package orion keeps a chat bot attached to a messaging transport whose
// sessions are created and destroyed on every reconnect. The Client owns one
// session at a time, replays registered subscriptions onto each new session,
// presents a stable capability surface regardless of connection state, and
// bounds how many times it will retry before giving up.
package orion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrClientClosed is returned by Connect after Close.
	ErrClientClosed = errors.New("orion: client closed")

	// ErrAlreadyConnected is returned by Connect while a session is live.
	ErrAlreadyConnected = errors.New("orion: already connected")

	errStaleReconnect = errors.New("orion: reconnect superseded")
)

// Client is the connection lifecycle manager.
type Client struct {
	cfg    Config
	dialer Dialer
	logger *slog.Logger

	registry *Registry
	policy   *ReconnectPolicy
	caps     *capabilityProxy
	store    *messageStore

	mu      sync.Mutex
	ctx     context.Context
	session Session
	dialing bool
	timer   *time.Timer
	gen     uint64
	closed  bool
	qr      string
	boots   int
	user    *User

	fatal     chan error
	fatalOnce sync.Once

	maintOnce sync.Once
	maintStop chan struct{}
	stopOnce  sync.Once
}

// New creates a Client that obtains sessions from dialer.
func New(cfg Config, dialer Dialer) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		cfg:       cfg,
		dialer:    dialer,
		logger:    cfg.Logger,
		registry:  NewRegistry(),
		policy:    NewReconnectPolicy(cfg.MaxReconnectAttempts, cfg.ReconnectDelay),
		caps:      newCapabilityProxy(),
		store:     newMessageStore(cfg.MessagesPerChat),
		fatal:     make(chan error, 1),
		maintStop: make(chan struct{}),
	}
}

// --- Subscriptions ---

// On subscribes h to the named event. Subscriptions survive reconnects.
func (c *Client) On(name string, h Handler) {
	c.registry.Register(name, h)
}

// OnQR subscribes to login challenges.
func (c *Client) OnQR(fn func(qr string)) {
	c.On(EventQR, func(e Event) {
		if qr, ok := e.Payload.(string); ok {
			fn(qr)
		}
	})
}

// OnOpen subscribes to successful connections.
func (c *Client) OnOpen(fn func()) {
	c.On(EventOpen, func(Event) { fn() })
}

// OnMessage subscribes to normalized inbound messages.
func (c *Client) OnMessage(fn func(*Message)) {
	c.On(EventNewMessage, func(e Event) {
		if m, ok := e.Payload.(*Message); ok {
			fn(m)
		}
	})
}

// Emit delivers an event to every subscriber of name.
func (c *Client) Emit(name string, payload any) {
	c.registry.Emit(name, payload)
}

// Fatal delivers ErrReconnectExhausted once the retry budget is spent. The
// Client accepts no further connections after that; the owner decides how to
// shut down.
func (c *Client) Fatal() <-chan error {
	return c.fatal
}

// --- Lifecycle ---

// Connect dials a new session, replays every subscription onto it and starts
// it. ctx also bounds all later automatic reconnects. If dialing fails a
// reconnect is still scheduled. Connect returns ErrAlreadyConnected while a
// session is live or being dialed; during backoff it replaces the pending
// reconnect.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClientClosed
	}
	c.ctx = ctx
	c.mu.Unlock()

	c.maintOnce.Do(func() { go c.maintenanceLoop() })
	return c.connect(ctx, 0)
}

// connect runs one connection attempt. gen is the reconnect generation that
// armed it, or 0 for an explicit Connect.
func (c *Client) connect(ctx context.Context, gen uint64) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClientClosed
	}
	if gen != 0 && gen != c.gen {
		c.mu.Unlock()
		return errStaleReconnect
	}
	if c.session != nil || c.dialing {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.stopTimerLocked()

	if err := c.policy.Begin(); err != nil {
		c.mu.Unlock()
		c.logger.Error("max reconnection attempts reached, giving up",
			"max_attempts", c.policy.MaxAttempts(),
		)
		c.signalFatal(err)
		return err
	}
	c.dialing = true
	c.mu.Unlock()

	sess, err := c.dialer.Dial(ctx)

	c.mu.Lock()
	c.dialing = false
	if c.closed {
		c.mu.Unlock()
		if sess != nil {
			sess.Close()
		}
		return ErrClientClosed
	}
	if err != nil {
		delay := c.policy.Disconnected(CauseRetryable)
		c.scheduleLocked(delay)
		c.mu.Unlock()
		c.logger.Warn("dial failed",
			"error", err,
			"attempt", c.policy.Attempts(),
			"max_attempts", c.policy.MaxAttempts(),
		)
		return fmt.Errorf("dial: %w", err)
	}

	c.session = sess
	src := sess.Events()
	src.On(EventConnectionUpdate, func(e Event) { c.handleConnectionUpdate(sess, e) })
	src.On(EventMessagesUpsert, func(e Event) { c.handleMessagesUpsert(sess, e) })
	src.On(EventContactsUpdate, func(e Event) { c.handleContactsUpdate(e) })
	src.On(EventChatsUpsert, func(e Event) { c.handleChatsUpsert(e) })
	n := c.registry.Replay(src)
	c.mu.Unlock()

	c.logger.Debug("replayed subscriptions", "count", n)
	sess.Start(ctx)
	return nil
}

// Close stops reconnecting, stops maintenance and closes the live session.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.stopTimerLocked()
	sess := c.session
	c.session = nil
	c.caps.unbind()
	c.mu.Unlock()

	c.stopMaintenance()

	if sess != nil {
		c.registry.Detach(sess.Events())
		return sess.Close()
	}
	return nil
}

// scheduleLocked arms the reconnect timer. c.mu must be held.
func (c *Client) scheduleLocked(delay time.Duration) {
	if c.closed {
		return
	}
	ctx := c.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	c.stopTimerLocked()
	gen := c.gen
	c.timer = time.AfterFunc(delay, func() {
		if ctx.Err() != nil {
			c.logger.Debug("reconnect cancelled", "error", ctx.Err())
			return
		}
		err := c.connect(ctx, gen)
		switch {
		case err == nil, errors.Is(err, ErrReconnectExhausted), errors.Is(err, errStaleReconnect):
		default:
			c.logger.Debug("reconnect attempt failed", "error", err)
		}
	})
}

// stopTimerLocked cancels any pending reconnect. A timer that already fired
// finds its generation outdated and does nothing. c.mu must be held.
func (c *Client) stopTimerLocked() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Client) signalFatal(err error) {
	c.fatalOnce.Do(func() {
		c.fatal <- err
		c.stopMaintenance()
	})
}

// --- Session events ---

func (c *Client) handleConnectionUpdate(sess Session, e Event) {
	var u ConnectionUpdate
	switch p := e.Payload.(type) {
	case ConnectionUpdate:
		u = p
	case *ConnectionUpdate:
		if p == nil {
			return
		}
		u = *p
	default:
		return
	}

	switch {
	case u.Connection == ConnectionClose:
		c.handleClose(sess, u.LastDisconnect)
	case u.Connection == ConnectionConnecting:
		c.logger.Info("connecting")
	case u.QR != "":
		if !c.isCurrent(sess) {
			return
		}
		c.mu.Lock()
		c.qr = u.QR
		c.mu.Unlock()
		c.logger.Info("login challenge received")
		c.registry.Emit(EventQR, u.QR)
	case u.Connection == ConnectionOpen:
		c.handleOpen(sess)
	}
}

func (c *Client) handleOpen(sess Session) {
	c.mu.Lock()
	if c.closed || sess != c.session {
		c.mu.Unlock()
		return
	}
	c.policy.Opened()
	c.caps.bind(sess)
	c.boots++
	c.user = sess.User()
	boots := c.boots
	c.mu.Unlock()

	c.logger.Info("connected", "boot", boots)
	c.registry.Emit(EventOpen, nil)
}

func (c *Client) handleClose(sess Session, lastDisconnect error) {
	c.mu.Lock()
	if sess != c.session {
		c.mu.Unlock()
		return
	}
	c.caps.unbind()
	c.session = nil

	code := StatusCode(lastDisconnect)
	cause := Classify(code)
	delay := c.policy.Disconnected(cause)
	c.scheduleLocked(delay)
	closed := c.closed
	c.mu.Unlock()

	c.registry.Detach(sess.Events())
	if err := sess.Close(); err != nil {
		c.logger.Debug("close discarded session", "error", err)
	}
	if closed {
		return
	}

	if cause == CauseTerminalLogout {
		c.logger.Warn("session logged out, a new login challenge will be issued",
			"delay", delay,
		)
		return
	}
	c.logger.Warn("connection closed, reconnecting",
		"reason", DisconnectReason(code),
		"error", lastDisconnect,
		"attempt", c.policy.Attempts(),
		"max_attempts", c.policy.MaxAttempts(),
		"delay", delay,
	)
}

func (c *Client) handleMessagesUpsert(sess Session, e Event) {
	var batch MessagesUpsert
	switch p := e.Payload.(type) {
	case MessagesUpsert:
		batch = p
	case *MessagesUpsert:
		if p == nil {
			return
		}
		batch = *p
	default:
		return
	}
	if !c.isCurrent(sess) {
		return
	}

	for _, raw := range batch.Messages {
		m := NewMessage(raw)
		c.store.add(m)
		c.registry.Emit(EventNewMessage, m)
	}
}

func (c *Client) handleContactsUpdate(e Event) {
	if contacts, ok := e.Payload.([]Contact); ok {
		c.store.updateContacts(contacts)
	}
}

func (c *Client) handleChatsUpsert(e Event) {
	if chats, ok := e.Payload.([]Chat); ok {
		c.logger.Debug("received chats", "count", len(chats))
		c.store.upsertChats(chats)
	}
}

func (c *Client) isCurrent(sess Session) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return sess == c.session
}

// --- Maintenance ---

func (c *Client) maintenanceLoop() {
	if c.cfg.CacheClearInterval < 0 {
		return
	}
	ticker := time.NewTicker(c.cfg.CacheClearInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.maintStop:
			return
		case <-ticker.C:
			if n := c.store.clearMessages(); n > 0 {
				c.logger.Debug("cleared message cache", "messages", n)
			}
		}
	}
}

func (c *Client) stopMaintenance() {
	c.stopOnce.Do(func() { close(c.maintStop) })
}

// --- Accessors ---

// QR returns the most recent login challenge payload.
func (c *Client) QR() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.qr
}

// State returns the reconnect state.
func (c *Client) State() PolicyState { return c.policy.State() }

// Attempts returns the number of consecutive failed attempts.
func (c *Client) Attempts() int { return c.policy.Attempts() }

// Boots counts successful opens.
func (c *Client) Boots() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.boots
}

// User returns the account of the last opened session.
func (c *Client) User() *User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// LoadMessage returns a cached message.
func (c *Client) LoadMessage(chat, id string) (*Message, bool) {
	return c.store.load(chat, id)
}

// Chats returns every chat seen so far, in first-seen order.
func (c *Client) Chats() []Chat {
	return c.store.chatList()
}

// DisplayName returns the best known name for jid, or "User".
func (c *Client) DisplayName(jid string) string {
	contact, ok := c.store.lookupContact(jid)
	if !ok {
		return "User"
	}
	for _, name := range []string{contact.Notify, contact.VerifiedName, contact.Name} {
		if name != "" {
			return name
		}
	}
	return "User"
}
