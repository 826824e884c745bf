package frame

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// ULIDGen generates monotonic ULIDs used as request correlation IDs.
type ULIDGen struct {
	mu   sync.Mutex
	last [16]byte
}

// NewULIDGen creates a new ULID generator.
func NewULIDGen() *ULIDGen {
	return &ULIDGen{}
}

// Next returns a new ULID. IDs minted within the same millisecond increment
// the random part of the previous one.
//
//	[0-5]   48-bit Unix millisecond timestamp (big-endian)
//	[6-15]  80-bit random
func (g *ULIDGen) Next() [16]byte {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := uint64(time.Now().UnixMilli())

	var id [16]byte
	for i := 0; i < 6; i++ {
		id[i] = byte(now >> (40 - 8*i))
	}

	if [6]byte(id[:6]) == [6]byte(g.last[:6]) {
		copy(id[6:], g.last[6:])
		for i := 15; i >= 6; i-- {
			id[i]++
			if id[i] != 0 {
				break
			}
		}
	} else {
		rand.Read(id[6:])
	}

	g.last = id
	return id
}

// Timestamp extracts the millisecond timestamp from a ULID.
func Timestamp(id [16]byte) time.Time {
	var ms uint64
	for i := 0; i < 6; i++ {
		ms = ms<<8 | uint64(id[i])
	}
	return time.UnixMilli(int64(ms))
}

// ULIDString renders id in the 26-character Crockford base32 form.
func ULIDString(id [16]byte) string {
	var sb strings.Builder
	sb.Grow(26)

	// 128 bits as 26 5-bit groups; the first group carries the top 3 bits.
	var acc uint32
	bits := 2 // pad so 130 bits divide evenly
	for _, b := range id {
		acc = acc<<8 | uint32(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			sb.WriteByte(crockford[(acc>>uint(bits))&0x1f])
		}
	}
	return sb.String()
}
