package poicache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/poicache/codec"
	pr "github.com/unkn0wn-root/poicache/provider"
)

// SetCostFunc computes the provider cost of a bundle write. Cost-aware
// providers (Ristretto) use it for admission; others ignore it.
type SetCostFunc func(key string, raw []byte, collections int) int64

// Fetcher is the external data source boundary. Implementations query the
// upstream service for exactly the given collections at the given location
// and return one item slice per collection. A missing map entry means
// "no results for that collection" and is not an error; a returned error
// means the whole batch failed and nothing is usable.
type Fetcher[V any] interface {
	Fetch(ctx context.Context, loc Location, collections []CollectionID) (map[CollectionID][]V, error)
}

// FetcherFunc adapts a plain function to the Fetcher interface.
type FetcherFunc[V any] func(ctx context.Context, loc Location, collections []CollectionID) (map[CollectionID][]V, error)

func (f FetcherFunc[V]) Fetch(ctx context.Context, loc Location, collections []CollectionID) (map[CollectionID][]V, error) {
	return f(ctx, loc, collections)
}

// Cache is the high-level partial-coverage cache API. V is the caller's
// per-item value type. Serialization is handled by a pluggable Codec[V].
type Cache[V any] interface {
	Enabled() bool
	Close(context.Context) error

	// GetOrFetch returns a bundle limited to the requested collections, each
	// record fresh within ttl (0 => Options.TTL). Collections already cached
	// and fresh are served without I/O; the rest are fetched in one batch,
	// merged into the stored bundle, and persisted. On fetch failure the
	// returned bundle holds the cached subset only and err is a *FetchError.
	GetOrFetch(ctx context.Context, loc Location, requested []CollectionID, ttl time.Duration) (Bundle[V], error)

	// Invalidate removes the whole bundle for the location.
	Invalidate(ctx context.Context, loc Location) error
}

// Options tune the behavior of the cache.
// Namespace, Provider, Codec and Fetcher are required; others have defaults.
type Options[V any] struct {
	// Required
	Namespace string // logical namespace to avoid collisions, e.g. "poi", "demographics"
	Provider  pr.Provider
	Codec     c.Codec[V]
	Fetcher   Fetcher[V]

	Logger         Logger        // if nil, NopLogger is used
	Hooks          Hooks         // if nil, NopHooks is used
	TTL            time.Duration // freshness window; 0 => 24h
	Retention      time.Duration // provider-level expiry for stored bundles; 0 => 7d
	Disabled       bool          // default false (enabled); disabled => pass-through fetch
	ComputeSetCost SetCostFunc   // default 1
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache[V](opts)
}
