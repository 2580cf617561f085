package momo

import (
	"sync"
	"time"
)

// tokenTTL is how long an issued access token is cached. The provider states
// a 3600s validity; refreshing at 3540s keeps a 60s safety margin so a token
// is never handed out within its final minute.
const tokenTTL = 3540 * time.Second

// tokenCache holds the single cached bearer token for one credential set.
// Concurrent refreshes racing to overwrite the entry are tolerated: tokens
// obtained within the same second are equally valid, so last write wins.
type tokenCache struct {
	now    func() time.Time
	token  string
	expiry time.Time
	mu     sync.RWMutex
}

// newTokenCache creates an empty cache. A nil clock defaults to time.Now.
func newTokenCache(now func() time.Time) *tokenCache {
	if now == nil {
		now = time.Now
	}
	return &tokenCache{now: now}
}

// get returns the cached token and whether it is still valid.
func (c *tokenCache) get() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.token == "" || !c.now().Before(c.expiry) {
		return "", false
	}
	return c.token, true
}

// put stores a token with the given time to live.
func (c *tokenCache) put(token string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = token
	c.expiry = c.now().Add(ttl)
}

// hasValid reports whether an unexpired token is cached.
func (c *tokenCache) hasValid() bool {
	_, ok := c.get()
	return ok
}
