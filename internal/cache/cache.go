package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores fetched contract sources
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey derives a cache key from a source location
func CacheKey(location string) string {
	hash := sha256.Sum256([]byte(location))
	return "rugscan:src:v1:" + hex.EncodeToString(hash[:])
}

// New builds the cache described by the settings: layered memory+disk when
// a directory is given, memory only otherwise
func New(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) Cache {
	if diskDir == "" {
		return NewMemoryCache(memoryTTL, cleanupInterval(memoryTTL))
	}
	return NewLayeredCache(memoryTTL, diskDir, diskTTL)
}

func cleanupInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 10 * time.Minute
	}
	return 2 * ttl
}
