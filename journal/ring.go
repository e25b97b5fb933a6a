package journal

import "sync"

// DefaultRingSize is how many narration lines a game keeps in memory.
const DefaultRingSize = 16

// Ring is the bounded in-memory narration, newest entry first.
type Ring struct {
	mu      sync.Mutex
	size    int
	entries []Entry
}

// NewRing returns a ring holding at most size entries; size <= 0 means
// DefaultRingSize.
func NewRing(size int) *Ring {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Ring{size: size, entries: make([]Entry, 0, size)}
}

// Record prepends e and drops the oldest entry past capacity.
func (r *Ring) Record(e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries) < r.size {
		r.entries = append(r.entries, Entry{})
	}
	copy(r.entries[1:], r.entries)
	r.entries[0] = e
	return nil
}

// Entries returns a copy, newest first.
func (r *Ring) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Clear empties the ring.
func (r *Ring) Clear() {
	r.mu.Lock()
	r.entries = r.entries[:0]
	r.mu.Unlock()
}

func (r *Ring) Close() error { return nil }
