// Package cache stores backend payloads such as transcripts across runs.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Cache defines the interface for byte caches
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// KeyPrefix starts every key built by Key
const KeyPrefix = "umactually-v1-"

// Key builds a namespaced cache key. The id is hashed so any string is a safe file name.
func Key(namespace, id string) string {
	hash := sha256.Sum256([]byte(id))
	return KeyPrefix + namespace + "-" + hex.EncodeToString(hash[:16])
}

// GetJSON decodes a cached JSON value into out. Undecodable entries count as misses.
func GetJSON(c Cache, key string, out any) bool {
	data, ok := c.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

// SetJSON encodes value as JSON and stores it
func SetJSON(c Cache, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(key, data, ttl)
}

// Nop is a cache that stores nothing
type Nop struct{}

func (Nop) Get(string) ([]byte, bool)               { return nil, false }
func (Nop) Set(string, []byte, time.Duration) error { return nil }
func (Nop) Delete(string) error                     { return nil }
func (Nop) Clear() error                            { return nil }
