// Package frame implements the binary frame codec spoken between the bot and
// the messaging gateway. Payloads are JSON documents defined in package wire.
//
// Header layout (47 bytes, big-endian):
//
//	[0]     proto_version   uint8
//	[1]     frame_type      uint8
//	[2]     flags           uint8  (bit0=compressed, bit1=final)
//	[3-6]   payload_len     uint32
//	[7-22]  msg_id          16 bytes (ULID, request/response correlation)
//	[23-38] session_id      16 bytes (UUID assigned by the gateway)
//	[39-46] seq             uint64
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	HeaderSize    = 47
	ProtoVersion  = 2
	MaxPayloadLen = 256 * 1024
)

// Frame types. Must fit in uint8.
const (
	TypeConnect         uint8 = 1  // client -> gateway: credentials
	TypeAuthOK          uint8 = 2  // gateway -> client: session open
	TypeAuthFail        uint8 = 3  // gateway -> client: credentials rejected
	TypeLoginChallenge  uint8 = 4  // gateway -> client: QR payload to scan
	TypeRequest         uint8 = 5  // client -> gateway: capability call
	TypeResponse        uint8 = 6  // gateway -> client: capability result
	TypeMessageDelivery uint8 = 7  // gateway -> client: inbound message batch
	TypeAck             uint8 = 8  // client -> gateway: delivery ack
	TypeContactsUpdate  uint8 = 9  // gateway -> client
	TypeChatsUpsert     uint8 = 10 // gateway -> client
	TypeClose           uint8 = 13 // either side: close with status code
)

// Flag bits.
const (
	FlagCompressed uint8 = 1 << 0
	FlagFinal      uint8 = 1 << 1
)

var (
	ErrBadVersion      = errors.New("frame: unsupported protocol version")
	ErrPayloadTooLarge = errors.New("frame: payload exceeds maximum size")
	ErrShortRead       = errors.New("frame: short read")
)

// Header is the fixed 47-byte header preceding every frame.
type Header struct {
	Version    uint8
	Type       uint8
	Flags      uint8
	PayloadLen uint32
	MsgID      [16]byte
	SessionID  [16]byte
	Seq        uint64
}

// Encode serialises a header and payload into a single byte slice.
func Encode(h Header, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadLen {
		return nil, ErrPayloadTooLarge
	}
	h.PayloadLen = uint32(len(payload))
	h.Version = ProtoVersion

	out := make([]byte, HeaderSize+len(payload))
	putHeader(out, h)
	copy(out[HeaderSize:], payload)
	return out, nil
}

// EncodeCompressed is Encode with zstd applied to payloads large enough to
// benefit. The compressed flag is set when compression was used.
func EncodeCompressed(h Header, payload []byte) ([]byte, error) {
	if compressed, ok := Compress(payload); ok {
		h.Flags |= FlagCompressed
		payload = compressed
	}
	return Encode(h, payload)
}

// Decode parses a byte slice into a header and payload. Compressed payloads
// are returned as-is; see DecodePayload.
func Decode(data []byte) (Header, []byte, error) {
	if len(data) < HeaderSize {
		return Header{}, nil, ErrShortRead
	}
	h := Header{
		Version:    data[0],
		Type:       data[1],
		Flags:      data[2],
		PayloadLen: binary.BigEndian.Uint32(data[3:7]),
		Seq:        binary.BigEndian.Uint64(data[39:47]),
	}
	if h.Version != ProtoVersion {
		return Header{}, nil, fmt.Errorf("%w: got %d, want %d", ErrBadVersion, h.Version, ProtoVersion)
	}
	copy(h.MsgID[:], data[7:23])
	copy(h.SessionID[:], data[23:39])

	if h.PayloadLen > MaxPayloadLen {
		return Header{}, nil, ErrPayloadTooLarge
	}
	end := HeaderSize + int(h.PayloadLen)
	if len(data) < end {
		return Header{}, nil, ErrShortRead
	}
	return h, data[HeaderSize:end], nil
}

// DecodePayload decodes a frame and inflates its payload if compressed.
func DecodePayload(data []byte) (Header, []byte, error) {
	h, payload, err := Decode(data)
	if err != nil {
		return h, nil, err
	}
	if h.IsCompressed() {
		payload, err = Decompress(payload)
		if err != nil {
			return h, nil, fmt.Errorf("frame: decompress: %w", err)
		}
	}
	return h, payload, nil
}

func putHeader(out []byte, h Header) {
	out[0] = h.Version
	out[1] = h.Type
	out[2] = h.Flags
	binary.BigEndian.PutUint32(out[3:7], h.PayloadLen)
	copy(out[7:23], h.MsgID[:])
	copy(out[23:39], h.SessionID[:])
	binary.BigEndian.PutUint64(out[39:47], h.Seq)
}

// IsCompressed returns true if the compressed flag is set.
func (h Header) IsCompressed() bool { return h.Flags&FlagCompressed != 0 }

// IsFinal returns true if the final flag is set.
func (h Header) IsFinal() bool { return h.Flags&FlagFinal != 0 }
