// Package secure provides memory-safe storage for master keys. Keys live
// in memguard enclaves: encrypted at rest in memory, mlocked against
// swapping where the platform allows it.
package secure

import (
	"errors"
	"sync"

	"github.com/awnumar/memguard"
)

// ErrKeyDestroyed is returned by Open after the key has been destroyed,
// typically because the cache evicted it after the engine rejected it.
var ErrKeyDestroyed = errors.New("master key has been destroyed")

// Key holds one vault's master key in a protected memory region. The
// plaintext exists only inside the LockedBuffer returned by Open, which
// the caller must destroy when done.
//
// memguard enclaves have no direct destroy; Destroy here drops the
// reference and marks the key unusable. Call memguard.Purge() at process
// exit for full cleanup.
type Key struct {
	enclave *memguard.Enclave
	mu      sync.RWMutex
	// destroyed allows idempotent Destroy calls and blocks use after
	// destruction.
	destroyed bool
}

// NewKey copies the key material into a protected region. The caller
// should zero its own copy afterwards.
func NewKey(data []byte) *Key {
	return &Key{enclave: memguard.NewEnclave(data)}
}

// NewKeyFromString is NewKey for string-typed key material.
func NewKeyFromString(s string) *Key {
	return NewKey([]byte(s))
}

// Open decrypts the key into a locked buffer. The caller MUST call
// Destroy() on the returned buffer when done:
//
//	buf, err := key.Open()
//	if err != nil {
//	    return err
//	}
//	defer buf.Destroy()
//	unlock(buf.Bytes())
func (k *Key) Open() (*memguard.LockedBuffer, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if k.destroyed {
		return nil, ErrKeyDestroyed
	}
	return k.enclave.Open()
}

// Destroy marks the key unusable. Idempotent; after Destroy, Open returns
// ErrKeyDestroyed. The enclave's ciphertext is safe to leave for the
// garbage collector.
func (k *Key) Destroy() {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.destroyed {
		return
	}
	k.enclave = nil
	k.destroyed = true
}
