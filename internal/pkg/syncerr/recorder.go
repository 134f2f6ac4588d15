// internal/pkg/syncerr/recorder.go
package syncerr

import (
	"sync"
	"time"
)

// Recorder accumulates failure counts per category. It is created once
// during wiring and passed to the Classifier, so error accounting is
// explicitly owned rather than process-global.
type Recorder struct {
	mu        sync.Mutex
	counts    map[Category]int64
	lastError string
	lastAt    time.Time
}

// Stats is a point-in-time view of recorded failures
type Stats struct {
	Counts    map[string]int64 `json:"counts"`
	Total     int64            `json:"total"`
	LastError string           `json:"last_error,omitempty"`
	LastAt    *time.Time       `json:"last_at,omitempty"`
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{
		counts: make(map[Category]int64),
	}
}

// Record counts one failure in the given category
func (r *Recorder) Record(category Category, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counts[category]++
	if err != nil {
		r.lastError = err.Error()
	}
	r.lastAt = time.Now().UTC()
}

// Snapshot returns a copy of the current stats
func (r *Recorder) Snapshot() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := Stats{
		Counts: make(map[string]int64, len(r.counts)),
	}
	for category, count := range r.counts {
		stats.Counts[string(category)] = count
		stats.Total += count
	}
	stats.LastError = r.lastError
	if !r.lastAt.IsZero() {
		at := r.lastAt
		stats.LastAt = &at
	}

	return stats
}

// Reset clears all recorded failures
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counts = make(map[Category]int64)
	r.lastError = ""
	r.lastAt = time.Time{}
}
