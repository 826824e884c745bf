package frame

import (
	"sync"
	"time"
)

const (
	DefaultDedupSize = 1000
	DefaultDedupTTL  = 5 * time.Minute
)

type dedupEntry struct {
	id   [16]byte
	seen time.Time
}

// DedupWindow remembers recently delivered message IDs so a redelivery after
// a gateway retry is dropped. It keeps at most size IDs, each for at most ttl.
type DedupWindow struct {
	mu      sync.Mutex
	size    int
	ttl     time.Duration
	entries []dedupEntry
	now     func() time.Time
}

// NewDedupWindow creates a window. Non-positive arguments select the defaults.
func NewDedupWindow(size int, ttl time.Duration) *DedupWindow {
	if size <= 0 {
		size = DefaultDedupSize
	}
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	return &DedupWindow{
		size:    size,
		ttl:     ttl,
		entries: make([]dedupEntry, 0, size),
		now:     time.Now,
	}
}

// Seen reports whether id was already recorded, recording it if not.
func (d *DedupWindow) Seen(id [16]byte) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	cutoff := now.Add(-d.ttl)
	start := 0
	for start < len(d.entries) && d.entries[start].seen.Before(cutoff) {
		start++
	}
	if start > 0 {
		d.entries = d.entries[start:]
	}

	for _, e := range d.entries {
		if e.id == id {
			return true
		}
	}

	if len(d.entries) >= d.size {
		d.entries = d.entries[1:]
	}
	d.entries = append(d.entries, dedupEntry{id: id, seen: now})
	return false
}

// Reset forgets every recorded ID.
func (d *DedupWindow) Reset() {
	d.mu.Lock()
	d.entries = d.entries[:0]
	d.mu.Unlock()
}

// Len returns the current number of tracked IDs.
func (d *DedupWindow) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}
