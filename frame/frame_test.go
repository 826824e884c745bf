package frame

import (
	"bytes"
	"crypto/rand"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
)

func TestRoundTrip(t *testing.T) {
	gen := NewULIDGen()
	msgID := gen.Next()

	var sessionID [16]byte
	rand.Read(sessionID[:])

	payload := []byte(`{"op":"sendMessage","args":{"jid":"1@s.whatsapp.net"}}`)

	h := Header{
		Type:      TypeRequest,
		MsgID:     msgID,
		SessionID: sessionID,
		Seq:       42,
	}

	encoded, err := Encode(h, payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(encoded) != HeaderSize+len(payload) {
		t.Fatalf("encoded length: got %d, want %d", len(encoded), HeaderSize+len(payload))
	}

	hDec, pDec, err := Decode(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if hDec.Version != ProtoVersion {
		t.Errorf("version: got %d, want %d", hDec.Version, ProtoVersion)
	}
	if hDec.Type != TypeRequest {
		t.Errorf("type: got %d, want %d", hDec.Type, TypeRequest)
	}
	if hDec.Seq != 42 {
		t.Errorf("seq: got %d, want 42", hDec.Seq)
	}
	if hDec.MsgID != msgID {
		t.Error("msg_id mismatch")
	}
	if hDec.SessionID != sessionID {
		t.Error("session_id mismatch")
	}
	if !bytes.Equal(pDec, payload) {
		t.Error("payload mismatch")
	}
}

func TestOversizedPayload(t *testing.T) {
	big := make([]byte, MaxPayloadLen+1)
	_, err := Encode(Header{Type: TypeRequest}, big)
	if err != ErrPayloadTooLarge {
		t.Errorf("expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestVersionMismatch(t *testing.T) {
	data := make([]byte, HeaderSize)
	data[0] = 99
	_, _, err := Decode(data)
	if !errors.Is(err, ErrBadVersion) {
		t.Errorf("expected ErrBadVersion, got %v", err)
	}
}

func TestShortRead(t *testing.T) {
	if _, _, err := Decode([]byte{1, 2, 3}); err != ErrShortRead {
		t.Errorf("expected ErrShortRead, got %v", err)
	}

	encoded, _ := Encode(Header{Type: TypeAck}, []byte("abcdef"))
	if _, _, err := Decode(encoded[:len(encoded)-2]); err != ErrShortRead {
		t.Errorf("truncated payload: expected ErrShortRead, got %v", err)
	}
}

func TestEncodeCompressed(t *testing.T) {
	small := []byte("hi")
	encoded, err := EncodeCompressed(Header{Type: TypeMessageDelivery}, small)
	if err != nil {
		t.Fatal(err)
	}
	h, p, err := DecodePayload(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if h.IsCompressed() {
		t.Error("small payload should not compress")
	}
	if !bytes.Equal(p, small) {
		t.Error("small payload mismatch")
	}

	large := bytes.Repeat([]byte("orion gateway delivery batch "), 100)
	encoded, err = EncodeCompressed(Header{Type: TypeMessageDelivery, Flags: FlagFinal}, large)
	if err != nil {
		t.Fatal(err)
	}
	if len(encoded) >= HeaderSize+len(large) {
		t.Errorf("compressed frame (%d) not smaller than raw (%d)", len(encoded), HeaderSize+len(large))
	}
	h, p, err = DecodePayload(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !h.IsCompressed() || !h.IsFinal() {
		t.Errorf("flags: got %08b", h.Flags)
	}
	if !bytes.Equal(p, large) {
		t.Error("decompressed payload mismatch")
	}
}

func TestStreamReader(t *testing.T) {
	want := bytes.Repeat([]byte("media-bytes "), 500)

	var compressed bytes.Buffer
	w, err := zstd.NewWriter(&compressed)
	if err != nil {
		t.Fatal(err)
	}
	w.Write(want)
	w.Close()

	r, err := NewStreamReader(&compressed)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Error("stream payload mismatch")
	}
}

func TestULIDMonotonic(t *testing.T) {
	gen := NewULIDGen()
	prev := gen.Next()
	for i := 0; i < 1000; i++ {
		next := gen.Next()
		if bytes.Compare(next[:], prev[:]) <= 0 {
			t.Fatalf("ULID not monotonic at iteration %d", i)
		}
		prev = next
	}
}

func TestULIDTimestamp(t *testing.T) {
	gen := NewULIDGen()
	before := time.Now()
	id := gen.Next()
	after := time.Now()

	ts := Timestamp(id)
	if ts.Before(before.Truncate(time.Millisecond)) || ts.After(after.Add(time.Millisecond)) {
		t.Errorf("timestamp %v not between %v and %v", ts, before, after)
	}
}

func TestULIDString(t *testing.T) {
	var zero [16]byte
	if got := ULIDString(zero); got != "00000000000000000000000000" {
		t.Errorf("zero: got %q", got)
	}

	var full [16]byte
	for i := range full {
		full[i] = 0xff
	}
	if got := ULIDString(full); got != "7ZZZZZZZZZZZZZZZZZZZZZZZZZ" {
		t.Errorf("max: got %q", got)
	}
}

func TestDedupWindow(t *testing.T) {
	gen := NewULIDGen()
	d := NewDedupWindow(0, 0)

	id1 := gen.Next()
	id2 := gen.Next()

	if d.Seen(id1) {
		t.Error("first id should not be duplicate")
	}
	if !d.Seen(id1) {
		t.Error("second check of same id should be duplicate")
	}
	if d.Seen(id2) {
		t.Error("different id should not be duplicate")
	}
	if d.Len() != 2 {
		t.Errorf("expected len 2, got %d", d.Len())
	}

	d.Reset()
	if d.Len() != 0 || d.Seen(id1) {
		t.Error("reset should forget ids")
	}
}

func TestDedupWindowEviction(t *testing.T) {
	d := NewDedupWindow(10, 0)
	gen := NewULIDGen()

	for i := 0; i < 25; i++ {
		d.Seen(gen.Next())
	}
	if d.Len() != 10 {
		t.Errorf("window should hold 10, got %d", d.Len())
	}
}

func TestDedupWindowExpiry(t *testing.T) {
	d := NewDedupWindow(10, time.Minute)
	clock := time.Unix(1700000000, 0)
	d.now = func() time.Time { return clock }

	gen := NewULIDGen()
	id := gen.Next()
	d.Seen(id)

	clock = clock.Add(2 * time.Minute)
	if d.Seen(id) {
		t.Error("expired id should not be a duplicate")
	}
}
