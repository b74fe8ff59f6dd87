package poicache

import "time"

// Fresh reports whether the record is still valid at now for the given TTL.
// A zero FetchedAt (never fetched) is always stale. Monotonic in now: once
// false for a given record and ttl it never flips back.
func (r Record[V]) Fresh(ttl time.Duration, now time.Time) bool {
	if r.FetchedAt.IsZero() {
		return false
	}
	return now.Sub(r.FetchedAt) < ttl
}
