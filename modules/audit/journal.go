package audit

import (
	"sync"
	"time"
)

// Entry is one recorded domain event.
type Entry struct {
	Event      string    `json:"event"`
	SubjectID  string    `json:"subject_id"`
	OwnerID    string    `json:"owner_id,omitempty"`
	ActorID    string    `json:"actor_id,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// DefaultCapacity is the number of entries a Journal keeps by default.
const DefaultCapacity = 500

// Journal keeps the most recent entries in a fixed-size ring and counts every
// event it has seen. It is safe for concurrent use.
type Journal struct {
	mu      sync.RWMutex
	entries []Entry
	next    int
	full    bool
	counts  map[string]int64
}

// NewJournal creates a Journal holding up to capacity entries.
func NewJournal(capacity int) *Journal {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Journal{
		entries: make([]Entry, capacity),
		counts:  make(map[string]int64),
	}
}

// Record appends e, evicting the oldest entry when full.
func (j *Journal) Record(e Entry) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.entries[j.next] = e
	j.next = (j.next + 1) % len(j.entries)
	if j.next == 0 {
		j.full = true
	}
	j.counts[e.Event]++
}

// Recent returns up to limit entries, newest first. limit <= 0 returns all retained entries.
func (j *Journal) Recent(limit int) []Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()

	size := j.next
	if j.full {
		size = len(j.entries)
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	out := make([]Entry, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (j.next - i + len(j.entries)) % len(j.entries)
		out = append(out, j.entries[idx])
	}
	return out
}

// Counts returns the number of events seen per event name.
func (j *Journal) Counts() map[string]int64 {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make(map[string]int64, len(j.counts))
	for k, v := range j.counts {
		out[k] = v
	}
	return out
}
