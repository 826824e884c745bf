// Package gateway is a transport for orion. It speaks the binary frame
// protocol over a WebSocket to a messaging gateway, and fetches media over
// HTTP from the same host.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/orion-bot/orion"
	"github.com/orion-bot/orion/frame"
	"github.com/orion-bot/orion/wire"
)

// ErrSessionClosed is returned by calls on a session that has ended.
var ErrSessionClosed = errors.New("gateway: session closed")

// Dialer creates gateway sessions. It implements orion.Dialer.
type Dialer struct {
	cfg        Config
	logger     *slog.Logger
	httpClient *http.Client
}

// NewDialer creates a Dialer. A nil logger selects slog.Default().
func NewDialer(cfg Config, logger *slog.Logger) *Dialer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dialer{
		cfg:        cfg.withDefaults(),
		logger:     logger,
		httpClient: &http.Client{},
	}
}

// Dial returns a new session. Nothing touches the network until Start.
func (d *Dialer) Dial(ctx context.Context) (orion.Session, error) {
	if d.cfg.Endpoint == "" {
		return nil, errors.New("gateway: endpoint not configured")
	}
	return newSession(d.cfg, d.logger, d.httpClient), nil
}

// Session is one WebSocket connection to the gateway.
type Session struct {
	cfg        Config
	logger     *slog.Logger
	httpClient *http.Client

	id     uuid.UUID
	ids    *frame.ULIDGen
	dedup  *frame.DedupWindow
	events *orion.Emitter
	queue  chan orion.Event

	mu      sync.Mutex
	conn    net.Conn
	user    *orion.User
	pending map[[16]byte]chan wire.ResponsePayload
	ended   bool

	sendCh    chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newSession(cfg Config, logger *slog.Logger, httpClient *http.Client) *Session {
	id := uuid.New()
	return &Session{
		cfg:        cfg,
		logger:     logger.With("session_id", id.String()),
		httpClient: httpClient,
		id:         id,
		ids:        frame.NewULIDGen(),
		dedup:      frame.NewDedupWindow(0, 0),
		events:     orion.NewEmitter(),
		queue:      make(chan orion.Event, defaultEventBuffer),
		pending:    make(map[[16]byte]chan wire.ResponsePayload),
		sendCh:     make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// Events returns the session's event source.
func (s *Session) Events() orion.EventSource { return s.events }

// User returns the account reported by AUTH_OK.
func (s *Session) User() *orion.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Start connects in the background. Events are dispatched on a single
// goroutine in the order frames arrive, so handlers may call back into the
// session without blocking the reader.
func (s *Session) Start(ctx context.Context) {
	go s.dispatch()
	go s.run(ctx)
}

// Close ends the session. It never blocks on the network and is safe to call
// from an event handler.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.mu.Lock()
		conn := s.conn
		s.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		s.events.Close()
	})
	return nil
}

func (s *Session) dispatch() {
	for ev := range s.queue {
		s.events.Emit(ev.Name, ev.Payload)
	}
	s.events.Close()
}

func (s *Session) post(name string, payload any) {
	select {
	case s.queue <- orion.Event{Name: name, Payload: payload}:
	case <-s.done:
	}
}

func (s *Session) run(ctx context.Context) {
	defer close(s.queue)

	s.post(orion.EventConnectionUpdate, orion.ConnectionUpdate{Connection: orion.ConnectionConnecting})

	err := s.serve(ctx)
	s.failPending()
	s.post(orion.EventConnectionUpdate, orion.ConnectionUpdate{
		Connection:     orion.ConnectionClose,
		LastDisconnect: err,
	})
}

func (s *Session) serve(ctx context.Context) error {
	conn, err := s.connect(ctx)
	if err != nil {
		return &orion.DisconnectError{Reason: orion.ReasonConnectionClosed, Err: err}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.readLoop(conn) })
	g.Go(func() error { return s.writeLoop(gctx, conn) })
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-s.done:
		}
		conn.Close()
		return nil
	})

	err = g.Wait()
	var de *orion.DisconnectError
	if errors.As(err, &de) {
		return de
	}
	return &orion.DisconnectError{Reason: orion.ReasonConnectionClosed, Err: err}
}

func (s *Session) connect(ctx context.Context) (net.Conn, error) {
	conn, _, _, err := ws.Dial(ctx, s.cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	s.mu.Lock()
	select {
	case <-s.done:
		s.mu.Unlock()
		conn.Close()
		return nil, ErrSessionClosed
	default:
	}
	s.conn = conn
	s.mu.Unlock()

	payload, _ := json.Marshal(wire.ConnectPayload{Session: s.cfg.Session, Token: s.cfg.Token})
	encoded, err := frame.Encode(frame.Header{Type: frame.TypeConnect, SessionID: s.id}, payload)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := wsutil.WriteClientBinary(conn, encoded); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send connect: %w", err)
	}

	s.logger.Info("connected to gateway", "endpoint", s.cfg.Endpoint)
	return conn, nil
}

func (s *Session) readLoop(conn net.Conn) error {
	for {
		data, err := wsutil.ReadServerBinary(conn)
		if err != nil {
			select {
			case <-s.done:
				return ErrSessionClosed
			default:
			}
			return fmt.Errorf("read: %w", err)
		}

		h, payload, err := frame.DecodePayload(data)
		if err != nil {
			s.logger.Debug("bad frame", "error", err)
			continue
		}

		if err := s.handleFrame(h, payload); err != nil {
			return err
		}
	}
}

func (s *Session) handleFrame(h frame.Header, payload []byte) error {
	switch h.Type {
	case frame.TypeLoginChallenge:
		var p wire.LoginChallengePayload
		if err := json.Unmarshal(payload, &p); err != nil || p.QR == "" {
			s.logger.Debug("bad login challenge", "error", err)
			return nil
		}
		s.post(orion.EventConnectionUpdate, orion.ConnectionUpdate{QR: p.QR})

	case frame.TypeAuthOK:
		var p wire.AuthResultPayload
		json.Unmarshal(payload, &p)
		s.mu.Lock()
		s.user = &orion.User{ID: p.UserID, Name: p.Name}
		s.mu.Unlock()
		s.post(orion.EventConnectionUpdate, orion.ConnectionUpdate{Connection: orion.ConnectionOpen})

	case frame.TypeAuthFail:
		var p wire.AuthResultPayload
		json.Unmarshal(payload, &p)
		return &orion.DisconnectError{
			Reason: orion.ReasonLoggedOut,
			Err:    fmt.Errorf("auth failed: %s", p.Reason),
		}

	case frame.TypeClose:
		var p wire.ClosePayload
		json.Unmarshal(payload, &p)
		return &orion.DisconnectError{
			Reason: orion.DisconnectReason(p.Code),
			Err:    errors.New(p.Reason),
		}

	case frame.TypeResponse:
		var p wire.ResponsePayload
		if err := json.Unmarshal(payload, &p); err != nil {
			s.logger.Debug("bad response", "error", err)
			return nil
		}
		s.resolve(h.MsgID, p)

	case frame.TypeMessageDelivery:
		if s.dedup.Seen(h.MsgID) {
			s.logger.Debug("dropped duplicate delivery", "msg_id", frame.ULIDString(h.MsgID))
			return nil
		}
		var p wire.DeliveryPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			s.logger.Debug("bad delivery", "error", err)
			return nil
		}
		var msgs []orion.RawMessage
		if err := json.Unmarshal(p.Messages, &msgs); err != nil {
			s.logger.Debug("bad delivery messages", "error", err)
			return nil
		}
		s.post(orion.EventMessagesUpsert, orion.MessagesUpsert{Type: p.Type, Messages: msgs})
		s.ack(h.Seq)

	case frame.TypeContactsUpdate:
		var p wire.ContactsPayload
		var contacts []orion.Contact
		if err := json.Unmarshal(payload, &p); err == nil && json.Unmarshal(p.Contacts, &contacts) == nil {
			s.post(orion.EventContactsUpdate, contacts)
		}

	case frame.TypeChatsUpsert:
		var p wire.ChatsPayload
		var chats []orion.Chat
		if err := json.Unmarshal(payload, &p); err == nil && json.Unmarshal(p.Chats, &chats) == nil {
			s.post(orion.EventChatsUpsert, chats)
		}
	}
	return nil
}

func (s *Session) writeLoop(ctx context.Context, conn net.Conn) error {
	for {
		select {
		case data := <-s.sendCh:
			if err := wsutil.WriteClientBinary(conn, data); err != nil {
				return fmt.Errorf("write: %w", err)
			}
		case <-s.done:
			return ErrSessionClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Session) ack(seq uint64) {
	payload, _ := json.Marshal(wire.AckPayload{AckedSeq: seq})
	encoded, err := frame.Encode(frame.Header{Type: frame.TypeAck, SessionID: s.id, Seq: seq}, payload)
	if err != nil {
		return
	}
	select {
	case s.sendCh <- encoded:
	case <-s.done:
	}
}

// --- Request correlation ---

// RequestError is a capability call rejected by the gateway.
type RequestError struct {
	Op      string
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("gateway: %s failed (%d): %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("gateway: %s failed: %s", e.Op, e.Message)
}

// call sends a REQUEST frame and waits for the RESPONSE with the same msg_id.
func (s *Session) call(ctx context.Context, op string, args, result any) error {
	req := wire.RequestPayload{Op: op}
	if args != nil {
		b, err := json.Marshal(args)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", op, err)
		}
		req.Args = b
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}

	msgID := s.ids.Next()
	encoded, err := frame.EncodeCompressed(frame.Header{
		Type:      frame.TypeRequest,
		MsgID:     msgID,
		SessionID: s.id,
	}, payload)
	if err != nil {
		return err
	}

	ch := make(chan wire.ResponsePayload, 1)
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.pending[msgID] = ch
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.pending, msgID)
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	select {
	case s.sendCh <- encoded:
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return ErrSessionClosed
		}
		if !resp.OK {
			return &RequestError{Op: op, Status: resp.Status, Message: resp.Error}
		}
		if result != nil && len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, result); err != nil {
				return fmt.Errorf("decode %s result: %w", op, err)
			}
		}
		return nil
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) resolve(msgID [16]byte, resp wire.ResponsePayload) {
	s.mu.Lock()
	ch, ok := s.pending[msgID]
	if ok {
		delete(s.pending, msgID)
	}
	s.mu.Unlock()
	if !ok {
		s.logger.Debug("response for unknown request", "msg_id", frame.ULIDString(msgID))
		return
	}
	ch <- resp
}

func (s *Session) failPending() {
	s.mu.Lock()
	s.ended = true
	for id, ch := range s.pending {
		close(ch)
		delete(s.pending, id)
	}
	s.mu.Unlock()
}
