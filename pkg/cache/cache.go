// Package cache provides the process-wide content-addressed interview cache.
// The cache is advisory: eviction or loss only causes recomputation.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/axwise-ai/axpersona/pkg/models"
)

// Fingerprint derives the cache key for one interview computation. Question
// text is deliberately excluded: identical persona/stakeholder pairs share a
// result across question-list revisions.
func Fingerprint(personaID, stakeholderID, businessIdea string, temperature float64, style models.ResponseStyle) string {
	key := fmt.Sprintf("%s_%s_%s_%g_%s", personaID, stakeholderID, businessIdea, temperature, style)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// InterviewCache is a concurrency-safe in-memory interview store. Entries
// are stored by value, so a hit returns an interview equal to the one
// originally cached.
type InterviewCache struct {
	mu      sync.RWMutex
	entries map[string]models.Interview
}

// NewInterviewCache creates an empty cache.
func NewInterviewCache() *InterviewCache {
	return &InterviewCache{entries: make(map[string]models.Interview)}
}

// Get returns the cached interview for key, if present.
func (c *InterviewCache) Get(key string) (models.Interview, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	iv, ok := c.entries[key]
	return iv, ok
}

// Put stores an interview under key. Racing writers may overwrite each
// other; redundant computation is not a correctness violation.
func (c *InterviewCache) Put(key string, iv models.Interview) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = iv
}

// Len returns the number of cached interviews.
func (c *InterviewCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops all entries.
func (c *InterviewCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]models.Interview)
}
