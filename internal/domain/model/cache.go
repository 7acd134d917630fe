package model

import (
	"encoding/json"
	"time"
)

// CacheEntry is an immutable snapshot stored under a single cache key.
type CacheEntry struct {
	Key        string
	Data       json.RawMessage
	CapturedAt time.Time
}

// Age returns how long ago the entry was captured, relative to now.
func (e CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.CapturedAt)
}

// IsFresh reports whether the entry is younger than ttl at now.
func (e CacheEntry) IsFresh(now time.Time, ttl time.Duration) bool {
	return e.Age(now) < ttl
}
