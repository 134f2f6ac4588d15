// internal/domain/offline/queue.go
package offline

import (
	"sync"
	"time"

	"github.com/your-org/cart-engine/internal/domain/cart"
)

// Queue is the offline mutation queue for one cart session. Entries hold
// mutations by value, ordering is strictly FIFO, and ids are monotonic
// so replay order survives persistence round-trips.
type Queue struct {
	mu      sync.Mutex
	entries []cart.QueueEntry
	lastID  int64
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends a mutation and returns the created entry
func (q *Queue) Enqueue(m cart.Mutation) cart.QueueEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	id := time.Now().UnixNano()
	if id <= q.lastID {
		id = q.lastID + 1
	}
	q.lastID = id

	entry := cart.QueueEntry{
		ID:        id,
		Mutation:  m,
		Timestamp: time.Now().UTC(),
	}
	q.entries = append(q.entries, entry)
	return entry
}

// Entries returns a copy of the pending entries in FIFO order
func (q *Queue) Entries() []cart.QueueEntry {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]cart.QueueEntry(nil), q.entries...)
}

// Restore replaces the queue contents from a persisted snapshot
func (q *Queue) Restore(entries []cart.QueueEntry) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries = append([]cart.QueueEntry(nil), entries...)
	q.lastID = 0
	for _, entry := range entries {
		if entry.ID > q.lastID {
			q.lastID = entry.ID
		}
	}
}

// Remove deletes the entry with the given id, if present
func (q *Queue) Remove(id int64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := range q.entries {
		if q.entries[i].ID == id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return
		}
	}
}

// Bump increments the retry count of an entry and returns the new count
func (q *Queue) Bump(id int64) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := range q.entries {
		if q.entries[i].ID == id {
			q.entries[i].RetryCount++
			return q.entries[i].RetryCount
		}
	}
	return 0
}

// Len returns the number of pending entries
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}
