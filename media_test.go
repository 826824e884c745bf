package orion

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
)

type sliceStream struct {
	chunks [][]byte
	err    error // returned after the chunks instead of io.EOF
	closed bool
}

func (s *sliceStream) Recv() ([]byte, error) {
	if len(s.chunks) == 0 {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	c := s.chunks[0]
	s.chunks = s.chunks[1:]
	return c, nil
}

func (s *sliceStream) Close() error {
	s.closed = true
	return nil
}

func TestReadMediaStreamConcatenatesInOrder(t *testing.T) {
	b1, b2, b3 := []byte("first-"), []byte("second-"), []byte("third")
	s := &sliceStream{chunks: [][]byte{b1, b2, b3}}

	got, err := ReadMediaStream(s)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := append(append(append([]byte{}, b1...), b2...), b3...)
	if !bytes.Equal(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
	if !s.closed {
		t.Error("stream not closed")
	}
}

func TestReadMediaStreamFailureReturnsNoBuffer(t *testing.T) {
	boom := errors.New("stream reset")
	s := &sliceStream{chunks: [][]byte{[]byte("partial")}, err: boom}

	got, err := ReadMediaStream(s)
	if !errors.Is(err, boom) {
		t.Fatalf("expected stream error, got %v", err)
	}
	if got != nil {
		t.Errorf("expected no buffer, got %q", got)
	}
}

func TestDownloadMediaNotMediaMessage(t *testing.T) {
	c := New(Config{}, nil)
	m := NewMessage(RawMessage{Key: MessageKey{ID: "m1", RemoteJID: "1@s.whatsapp.net"}, Text: "hi"})

	buf, err := c.DownloadMedia(context.Background(), m)
	if buf != nil {
		t.Errorf("expected nil buffer, got %q", buf)
	}
	var nm *NotMediaMessageError
	if !errors.As(err, &nm) {
		t.Fatalf("expected NotMediaMessageError, got %v", err)
	}
	if nm.MessageID != "m1" {
		t.Errorf("message id: got %q, want m1", nm.MessageID)
	}
	if !errors.Is(err, ErrNotMediaMessage) {
		t.Error("expected errors.Is ErrNotMediaMessage")
	}

	if _, err := c.DownloadMedia(context.Background(), nil); !errors.Is(err, ErrNotMediaMessage) {
		t.Errorf("nil message: got %v", err)
	}
}

func TestDownloadMediaBeforeConnect(t *testing.T) {
	c := New(Config{}, nil)
	m := NewMessage(RawMessage{
		Key:   MessageKey{ID: "m2", RemoteJID: "1@s.whatsapp.net"},
		Media: &MediaRef{Kind: MediaImage, URL: "http://example/1"},
	})

	_, err := c.DownloadMedia(context.Background(), m)
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}
