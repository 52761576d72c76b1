package crypto

import (
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/singleflight"
)

// KeyCache memoizes derived pairwise keys per contact id. Concurrent first
// lookups for the same contact share a single derivation. The cache lives
// only in memory and is owned by one session.
type KeyCache struct {
	keys  *xsync.MapOf[string, *SymmetricKey]
	group singleflight.Group
}

// NewKeyCache creates an empty cache.
func NewKeyCache() *KeyCache {
	return &KeyCache{keys: xsync.NewMapOf[string, *SymmetricKey]()}
}

// GetOrDerive returns the cached key for contactID, calling derive at most
// once across concurrent callers when the key is missing. Failed derivations
// are not cached.
func (c *KeyCache) GetOrDerive(contactID string, derive func() (SymmetricKey, error)) (SymmetricKey, error) {
	if key, ok := c.keys.Load(contactID); ok {
		return *key, nil
	}

	v, err, shared := c.group.Do(contactID, func() (interface{}, error) {
		if key, ok := c.keys.Load(contactID); ok {
			return *key, nil
		}
		key, err := derive()
		if err != nil {
			return SymmetricKey{}, err
		}
		c.Store(contactID, key)
		return key, nil
	})
	if err != nil {
		return SymmetricKey{}, err
	}

	if shared {
		NewLogger("KeyCache.GetOrDerive").Debug("Derivation shared with a concurrent caller")
	}
	return v.(SymmetricKey), nil
}

// Store records a key derived outside the cache.
func (c *KeyCache) Store(contactID string, key SymmetricKey) {
	stored := key
	c.keys.Store(contactID, &stored)
}

// Len returns the number of cached keys.
func (c *KeyCache) Len() int {
	return c.keys.Size()
}

// Clear wipes and forgets every cached key. Keys already returned by
// GetOrDerive are copies and stay intact. Clear must not run concurrently
// with GetOrDerive.
func (c *KeyCache) Clear() {
	c.keys.Range(func(contactID string, key *SymmetricKey) bool {
		c.keys.Delete(contactID)
		WipeSymmetricKey(key)
		return true
	})
}
