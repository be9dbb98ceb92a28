package orchestrator

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/brightpath-advisory/concierge/internal/llm"
	"github.com/brightpath-advisory/concierge/internal/utils"
)

// replyCache memoizes info-route answers. Repeat questions ("how much is the
// Foundation tier?") dominate that route, and a hit skips the model call
// entirely; the ledger still records the hit at zero cost for accounting
// symmetry.
//
// Entries are keyed by normalized message plus language hint, and the
// orchestrator consults the cache only for history-free openers: a follow-up
// answer depends on its conversation and must not leak across sessions.
type replyCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	reply     string
	usage     llm.Usage
	expiresAt time.Time
}

func newReplyCache(ttl time.Duration) *replyCache {
	return &replyCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

// Get returns the cached reply and the usage of the original completion.
func (c *replyCache) Get(message, language string) (string, llm.Usage, bool) {
	key := cacheKey(message, language)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", llm.Usage{}, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return "", llm.Usage{}, false
	}
	return e.reply, e.usage, true
}

// Put stores a fresh completion, evicting expired entries opportunistically.
func (c *replyCache) Put(message, language, reply string, usage llm.Usage) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
	c.entries[cacheKey(message, language)] = cacheEntry{
		reply:     reply,
		usage:     usage,
		expiresAt: now.Add(c.ttl),
	}
}

func cacheKey(message, language string) string {
	sum := sha256.Sum256([]byte(utils.NormalizeSpace(message) + "\x00" + utils.NormalizeSpace(language)))
	return hex.EncodeToString(sum[:])
}
