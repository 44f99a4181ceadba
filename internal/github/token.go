package github

import (
	"sync"
	"time"
)

// expirySkew invalidates tokens slightly before GitHub does so an
// in-flight review never races token expiry.
const expirySkew = time.Minute

type tokenEntry struct {
	token     string
	expiresAt time.Time
}

// tokenCache holds installation tokens in memory until shortly before
// they expire. Tokens are secrets and never touch disk.
type tokenCache struct {
	mu      sync.Mutex
	entries map[int64]tokenEntry
}

func newTokenCache() *tokenCache {
	return &tokenCache{entries: make(map[int64]tokenEntry)}
}

// Get returns a still-valid token for the installation, if any.
func (c *tokenCache) Get(installationID int64) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[installationID]
	if !ok {
		return "", false
	}
	if time.Now().After(entry.expiresAt.Add(-expirySkew)) {
		delete(c.entries, installationID)
		return "", false
	}
	return entry.token, true
}

// Put stores a token with its expiry.
func (c *tokenCache) Put(installationID int64, token string, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[installationID] = tokenEntry{token: token, expiresAt: expiresAt}
}
