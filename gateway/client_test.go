package gateway

import (
	"context"
	"encoding/json"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/orion-bot/orion"
	"github.com/orion-bot/orion/frame"
	"github.com/orion-bot/orion/wire"
)

func TestClientReconnectsThroughGateway(t *testing.T) {
	var conns atomic.Int32
	srv := mockGateway(t, func(conn net.Conn) {
		n := conns.Add(1)
		handshake(t, conn)

		if n == 1 {
			writeFrame(conn, frame.Header{Type: frame.TypeClose}, wire.ClosePayload{Code: 515, Reason: "restart required"})
			drain(conn)
			return
		}

		msgs, _ := json.Marshal([]orion.RawMessage{{
			Key:  orion.MessageKey{RemoteJID: "1@s.whatsapp.net", ID: "m1"},
			Text: "!ping",
		}})
		writeFrame(conn, frame.Header{Type: frame.TypeMessageDelivery, MsgID: frame.NewULIDGen().Next(), Seq: 1},
			wire.DeliveryPayload{Type: "notify", Messages: msgs})

		for {
			h, _, err := readFrame(conn)
			if err != nil {
				return
			}
			if h.Type == frame.TypeRequest {
				writeFrame(conn, frame.Header{Type: frame.TypeResponse, MsgID: h.MsgID},
					wire.ResponsePayload{OK: true, Result: json.RawMessage(`{"id":"reply-1"}`)})
			}
		}
	})
	defer srv.Close()

	client := orion.New(orion.Config{
		ReconnectDelay:     10 * time.Millisecond,
		CacheClearInterval: -1,
		Logger:             discard,
	}, NewDialer(Config{Endpoint: wsURL(srv), Token: "secret"}, discard))
	defer client.Close()

	var opens atomic.Int32
	client.OnOpen(func() { opens.Add(1) })

	replies := make(chan string, 1)
	client.OnMessage(func(m *orion.Message) {
		id, err := client.SendMessage(context.Background(), m.Chat, orion.MessageContent{Text: "pong", QuotedID: m.ID})
		if err != nil {
			t.Errorf("reply: %v", err)
			return
		}
		replies <- id
	})

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	select {
	case id := <-replies:
		if id != "reply-1" {
			t.Errorf("reply id: got %q", id)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reply sent")
	}

	if got := opens.Load(); got != 2 {
		t.Errorf("opens: got %d, want 2", got)
	}
	if got := client.Boots(); got != 2 {
		t.Errorf("boots: got %d, want 2", got)
	}
	if got := client.Attempts(); got != 0 {
		t.Errorf("attempts after open: got %d, want 0", got)
	}
	if _, ok := client.LoadMessage("1@s.whatsapp.net", "m1"); !ok {
		t.Error("message not cached")
	}
}
