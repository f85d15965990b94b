package matchserver

import (
	"sync"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

const (
	idempotencyTTL       = 24 * time.Hour
	idempotencyCacheSize = 1000
)

// idempotencyKey represents a composite key for idempotent requests
type idempotencyKey struct {
	player int
	key    string
}

// idempotencyEntry stores a cached response with timestamp
type idempotencyEntry struct {
	response  *structpb.Struct
	createdAt time.Time
}

// IdempotencyManager caches SubmitCommand responses so a retried request
// is answered without running the command twice
type IdempotencyManager struct {
	cache map[idempotencyKey]*idempotencyEntry
	mu    sync.RWMutex
	now   func() time.Time
}

// NewIdempotencyManager creates a new idempotency manager
func NewIdempotencyManager(now func() time.Time) *IdempotencyManager {
	if now == nil {
		now = time.Now
	}
	return &IdempotencyManager{
		cache: make(map[idempotencyKey]*idempotencyEntry),
		now:   now,
	}
}

// Check returns the cached response for the player's key, or nil
func (im *IdempotencyManager) Check(player int, key string) *structpb.Struct {
	if key == "" {
		return nil
	}

	im.mu.RLock()
	defer im.mu.RUnlock()

	entry, exists := im.cache[idempotencyKey{player: player, key: key}]
	if !exists || im.now().Sub(entry.createdAt) > idempotencyTTL {
		return nil
	}
	return entry.response
}

// Store caches a response for the given player and idempotency key
func (im *IdempotencyManager) Store(player int, key string, resp *structpb.Struct) {
	if key == "" {
		return
	}

	im.mu.Lock()
	defer im.mu.Unlock()

	im.cache[idempotencyKey{player: player, key: key}] = &idempotencyEntry{
		response:  resp,
		createdAt: im.now(),
	}

	if len(im.cache) > idempotencyCacheSize {
		im.cleanupOldEntriesLocked()
	}
}

// Len returns the number of cached responses
func (im *IdempotencyManager) Len() int {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return len(im.cache)
}

// cleanupOldEntriesLocked removes expired entries. Must be called with mu held.
func (im *IdempotencyManager) cleanupOldEntriesLocked() {
	cutoff := im.now().Add(-idempotencyTTL)
	for key, entry := range im.cache {
		if entry.createdAt.Before(cutoff) {
			delete(im.cache, key)
		}
	}
}
