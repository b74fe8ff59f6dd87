package poicache

import (
	"sort"
	"time"
)

// CollectionID identifies one logical data collection (e.g. "schools",
// "transit"). Compared by value.
type CollectionID string

// Record is the cached payload for one (location, collection) pair. Items
// are opaque to the cache; FetchedAt marks when this collection was last
// fetched and drives freshness.
type Record[V any] struct {
	Items     []V
	FetchedAt time.Time
}

// Bundle is the full set of cached collection records for one location key.
type Bundle[V any] map[CollectionID]Record[V]

// Collections returns the bundle's collection ids in sorted order.
func (b Bundle[V]) Collections() []CollectionID {
	ids := make([]CollectionID, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// union returns a new bundle with other folded in; other wins for its own
// collection keys, everything else in b survives untouched. Neither input
// is mutated.
func (b Bundle[V]) union(other Bundle[V]) Bundle[V] {
	out := make(Bundle[V], len(b)+len(other))
	for id, r := range b {
		out[id] = r
	}
	for id, r := range other {
		out[id] = r
	}
	return out
}

// uniqueSorted dedupes and sorts collection ids. The result is the canonical
// form used for flight keys and fetch batches.
func uniqueSorted(ids []CollectionID) []CollectionID {
	out := make([]CollectionID, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	n := 0
	for i, id := range out {
		if i > 0 && id == out[n-1] {
			continue
		}
		out[n] = id
		n++
	}
	return out[:n]
}
