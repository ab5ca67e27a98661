package cache

import (
	"strconv"
	"time"
)

// Cache stores encoded responses with a TTL.
type Cache interface {
	// Get returns the value and true if present and not expired.
	Get(key string) ([]byte, bool)

	// Set stores value under key. A ttl of 0 means the cache default.
	Set(key string, value []byte, ttl time.Duration)

	Delete(key string)

	Clear()

	Stats() Stats
}

// Stats represents cache statistics.
type Stats struct {
	Hits      uint64 // Total cache hits
	Misses    uint64 // Total cache misses
	KeysAdded uint64 // Total keys added
	Evictions uint64 // Total evictions
	Size      int64  // Approximate size in bytes
	Items     int64  // Current number of items
}

// SnapshotKey is the key of an encoded graph snapshot at a store version.
func SnapshotKey(version uint64) string {
	return "graph:v" + strconv.FormatUint(version, 10)
}
