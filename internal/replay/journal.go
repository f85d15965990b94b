// Package replay keeps a bounded per-match history of submitted commands.
package replay

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/processor"
)

// ErrJournalClosed is returned when recording into a closed journal
var ErrJournalClosed = errors.New("journal is closed")

// DefaultCapacity is used when a journal is created with capacity <= 0
const DefaultCapacity = 512

// Entry is one submitted command and how the engine answered it
type Entry struct {
	Seq       int64             `json:"seq"`
	Time      time.Time         `json:"time"`
	Player    int               `json:"player"`
	Round     int               `json:"round"`
	Command   processor.Command `json:"command"`
	OK        bool              `json:"ok"`
	ErrorKind string            `json:"error_kind,omitempty"`
}

// Journal is a thread-safe circular buffer of entries. Once full, the
// oldest entry is dropped for each new one.
type Journal struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
	size     int
	head     int // write position
	closed   bool

	totalAdded   int64
	totalDropped int64

	logger zerolog.Logger
}

// NewJournal creates a journal holding at most capacity entries
func NewJournal(capacity int, logger zerolog.Logger) *Journal {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Journal{
		entries:  make([]Entry, capacity),
		capacity: capacity,
		logger:   logger.With().Str("component", "journal").Logger(),
	}
}

// Record appends an entry and assigns its sequence number
func (j *Journal) Record(e Entry) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return 0, ErrJournalClosed
	}

	if j.size >= j.capacity {
		j.totalDropped++
		j.logger.Debug().Int64("dropped_total", j.totalDropped).Msg("Journal full, dropping oldest entry")
	} else {
		j.size++
	}

	j.totalAdded++
	e.Seq = j.totalAdded
	j.entries[j.head] = e
	j.head = (j.head + 1) % j.capacity
	return e.Seq, nil
}

// Latest returns up to n of the most recent entries, oldest first.
// n <= 0 returns everything held.
func (j *Journal) Latest(n int) []Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if n <= 0 || n > j.size {
		n = j.size
	}
	result := make([]Entry, n)
	for i := 0; i < n; i++ {
		idx := (j.head - n + i + j.capacity) % j.capacity
		result[i] = j.entries[idx]
	}
	return result
}

// Since returns the held entries with a sequence number greater than seq
func (j *Journal) Since(seq int64) []Entry {
	all := j.Latest(0)
	for i, e := range all {
		if e.Seq > seq {
			return all[i:]
		}
	}
	return []Entry{}
}

// Size returns the number of entries held
func (j *Journal) Size() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.size
}

// Capacity returns the maximum number of entries held
func (j *Journal) Capacity() int {
	return j.capacity
}

// Close stops the journal from accepting entries
func (j *Journal) Close() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return
	}
	j.closed = true
	j.logger.Debug().
		Int64("total_added", j.totalAdded).
		Int64("total_dropped", j.totalDropped).
		Msg("Journal closed")
}

// Stats returns journal statistics
func (j *Journal) Stats() Stats {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return Stats{
		CurrentSize:    j.size,
		Capacity:       j.capacity,
		TotalAdded:     j.totalAdded,
		TotalDropped:   j.totalDropped,
		UtilizationPct: float64(j.size) / float64(j.capacity) * 100,
	}
}

// Stats contains journal statistics
type Stats struct {
	CurrentSize    int     `json:"current_size"`
	Capacity       int     `json:"capacity"`
	TotalAdded     int64   `json:"total_added"`
	TotalDropped   int64   `json:"total_dropped"`
	UtilizationPct float64 `json:"utilization_pct"`
}
