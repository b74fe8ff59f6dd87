// Package poicache implements a partial-coverage result cache for
// location-keyed collection data. One location maps to one bundle of
// per-collection records; each request names the collections it needs, the
// cache serves the subset that is still fresh and fetches only the gap from
// the external data source, then merges the fetched subset back without
// dropping any collection already stored.
//
// Components:
//   - Provider: byte store with a retention TTL (e.g. Ristretto, BigCache, Redis).
//   - Codec[V]: (de)serializes individual result items V <-> []byte.
//   - Fetcher[V]: the external data source; queried only for missing collections.
//
// Keys:
//
//	bundle:<ns>:<locationKey> - one persisted bundle per location
//
// Freshness is evaluated lazily at read time against a configurable TTL;
// stale records are treated as misses but survive in storage until a fetch
// supersedes them or the bundle is invalidated. Concurrent requests for the
// same location and missing collection set share one external fetch.
//
// Usage pattern:
//
//	bundle, err := cache.GetOrFetch(ctx, loc, []poicache.CollectionID{"schools", "transit"}, 0)
//	// bundle holds every fresh collection; on fetch failure err is a
//	// *FetchError and bundle still carries whatever was served from cache.
package poicache
