// Package cache provides a small byte cache with pluggable backends.
//
// The library uses it to memoize decoded audio durations: scanning a take
// directory re-decodes every WAV header, and long sessions with hundreds of
// takes re-scan after every synthesizer export. Keys incorporate the file's
// path, size, and modification time, so a re-exported take naturally misses.
//
// Backends:
//   - file: cache directory on disk, for CLI usage
//   - redis: shared cache for multi-machine render farms
//   - null: disabled caching, for tests
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by backends for operations on missing entries
// where absence is an error rather than a miss.
var ErrNotFound = errors.New("not found")

// Cache is the interface all backends implement.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with an optional TTL (0 means no expiry).
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// DurationKey builds the cache key for a decoded audio duration.
// Size and modification time are part of the key so a re-exported file
// with the same name is a miss, not a stale hit.
func DurationKey(path string, size int64, modTime time.Time) string {
	return hashKey("dur", path, size, modTime.UnixNano())
}

// FormatDuration encodes a duration in seconds for storage.
func FormatDuration(seconds float64) []byte {
	return []byte(fmt.Sprintf("%.9f", seconds))
}

// ParseDuration decodes a stored duration. Returns false if the payload is
// not a valid encoding (treated as a miss by callers).
func ParseDuration(data []byte) (float64, bool) {
	var seconds float64
	if _, err := fmt.Sscanf(string(data), "%f", &seconds); err != nil {
		return 0, false
	}
	return seconds, true
}
