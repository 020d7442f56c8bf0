package masterkey

import (
	"sync"

	"github.com/systmms/kpsec/internal/secure"
)

// Cache maps vault names to master keys for per-process caching. Entries
// live until process exit or explicit eviction; there is no TTL and keys
// are never persisted to disk. The cache is thread-safe, though the host
// contract already serializes operations per vault.
type Cache struct {
	mu   sync.RWMutex
	keys map[string]*secure.Key
}

// NewCache creates a new empty master key cache.
func NewCache() *Cache {
	return &Cache{keys: make(map[string]*secure.Key)}
}

// Get retrieves the cached key for a vault. Repeated calls return the
// identical key object; cached keys are not re-validated.
func (c *Cache) Get(vaultName string) (*secure.Key, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	key, ok := c.keys[vaultName]
	return key, ok
}

// Put stores a key for a vault, replacing any previous entry.
func (c *Cache) Put(vaultName string, key *secure.Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.keys[vaultName]; ok && old != key {
		old.Destroy()
	}
	c.keys[vaultName] = key
}

// Evict removes and destroys a vault's cached key so the next resolution
// re-prompts. Returns whether an entry was present.
func (c *Cache) Evict(vaultName string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	key, ok := c.keys[vaultName]
	if !ok {
		return false
	}
	key.Destroy()
	delete(c.keys, vaultName)
	return true
}

// Len returns the number of cached keys.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.keys)
}
