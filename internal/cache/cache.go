// SPDX-License-Identifier: MIT
package cache

import "time"

// Cache maps spec hashes to catalog video IDs so repeated build requests
// can be answered from the already rendered artifact instead of encoding
// the same video twice.
//
// A non-positive ttl stores the entry without expiry.
type Cache interface {
	Get(key string) (string, bool)
	Set(key, videoID string, ttl time.Duration)
	Delete(key string)
	Clear()
	Stats() Stats
	Close() error
}

// Stats reports cache effectiveness for the /readyz payload and logs.
type Stats struct {
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Entries     int64 `json:"entries"`
	Evictions   int64 `json:"evictions"`
	LastCleanup int64 `json:"last_cleanup_unix,omitempty"`
}

// noopCache satisfies Cache while remembering nothing. Selected when
// caching is disabled so callers never need a nil check.
type noopCache struct{}

// NewNoop returns a cache that drops every entry.
func NewNoop() Cache { return noopCache{} }

func (noopCache) Get(string) (string, bool) { return "", false }

func (noopCache) Set(string, string, time.Duration) {}

func (noopCache) Delete(string) {}

func (noopCache) Clear() {}

func (noopCache) Stats() Stats { return Stats{} }

func (noopCache) Close() error { return nil }
