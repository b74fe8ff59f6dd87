package poicache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	co "github.com/unkn0wn-root/poicache/codec"
	"github.com/unkn0wn-root/poicache/internal/wire"
	pr "github.com/unkn0wn-root/poicache/provider"
)

const (
	defaultTTL       = 24 * time.Hour
	defaultRetention = 7 * 24 * time.Hour
)

type cache[V any] struct {
	ns       string
	provider pr.Provider
	codec    co.Codec[V]
	fetcher  Fetcher[V]
	log      Logger
	hooks    Hooks
	enabled  bool

	ttl            time.Duration // freshness window
	retention      time.Duration // provider-level expiry
	computeSetCost SetCostFunc

	now func() time.Time

	// one in-flight fetch per (location, sorted missing set)
	flights singleflight.Group
	// serializes read-merge-write per location
	locks *lockTable
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("poicache: provider is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("poicache: codec is required")
	}
	if opts.Fetcher == nil {
		return nil, fmt.Errorf("poicache: fetcher is required")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("poicache: namespace is required")
	}

	c := &cache[V]{
		ns:       opts.Namespace,
		provider: opts.Provider,
		codec:    opts.Codec,
		fetcher:  opts.Fetcher,
		enabled:  !opts.Disabled,
		now:      time.Now,
		locks:    newLockTable(),
	}

	// defaults
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	c.ttl = coalesce[time.Duration](opts.TTL, defaultTTL)
	c.retention = coalesce[time.Duration](opts.Retention, defaultRetention)

	if opts.ComputeSetCost != nil {
		c.computeSetCost = opts.ComputeSetCost
	} else {
		c.computeSetCost = func(_ string, _ []byte, _ int) int64 { return 1 }
	}

	return c, nil
}

func (c *cache[V]) Enabled() bool { return c.enabled }

func (c *cache[V]) Close(ctx context.Context) error {
	if c.provider != nil {
		return c.provider.Close(ctx)
	}
	return nil
}

func (c *cache[V]) GetOrFetch(ctx context.Context, loc Location, requested []CollectionID, ttl time.Duration) (Bundle[V], error) {
	if len(requested) == 0 {
		return Bundle[V]{}, nil
	}
	if ttl == 0 {
		ttl = c.ttl
	}
	if !c.enabled {
		// pass-through: fetch everything, persist nothing
		return c.fetchMissing(ctx, loc, uniqueSorted(requested))
	}

	key := loc.Key()
	sk := c.storageKey(key)
	bundle := c.readBundle(ctx, sk)
	cov := resolveCoverage(bundle, requested, ttl, c.now())
	if len(cov.Missing) == 0 {
		return cov.Covered, nil
	}

	fetched, err := c.fetchShared(ctx, loc, key, cov.Missing)
	if err != nil {
		// best effort: the caller still gets everything the cache had
		return cov.Covered, err
	}
	return cov.Covered.union(fetched), nil
}

func (c *cache[V]) Invalidate(ctx context.Context, loc Location) error {
	if !c.enabled {
		return nil
	}
	key := loc.Key()
	unlock := c.locks.lock(string(key))
	defer unlock()
	c.log.Debug("invalidating bundle", Fields{"key": key})
	return c.provider.Del(ctx, c.storageKey(key))
}

// fetchShared runs (or joins) the single in-flight fetch for this location
// and missing set. The fetch itself runs on a detached context: an abandoned
// caller must not cancel work other waiters, or the cache itself, can still
// use. The abandoning caller unblocks immediately with ctx.Err().
func (c *cache[V]) fetchShared(ctx context.Context, loc Location, key LocationKey, missing []CollectionID) (Bundle[V], error) {
	ch := c.flights.DoChan(flightKey(key, missing), func() (any, error) {
		fctx := context.WithoutCancel(ctx)
		fetched, err := c.fetchMissing(fctx, loc, missing)
		if err != nil {
			return nil, err
		}
		c.mergeAndPersist(fctx, key, fetched)
		return fetched, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			c.hooks.FetchFailed(string(key), len(missing), res.Err)
			return nil, &FetchError{Key: key, Collections: missing, Err: res.Err}
		}
		if res.Shared {
			c.hooks.FetchShared(string(key), len(missing))
			c.log.Debug("joined in-flight fetch", Fields{"key": key, "collections": len(missing)})
		}
		return res.Val.(Bundle[V]), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// fetchMissing asks the external source for exactly the missing collections
// and normalizes the response: every requested collection comes back as a
// record stamped at completion time (empty results included), anything the
// source returned beyond the request is dropped. All-or-nothing: an error
// yields no partial bundle.
func (c *cache[V]) fetchMissing(ctx context.Context, loc Location, missing []CollectionID) (Bundle[V], error) {
	results, err := c.fetcher.Fetch(ctx, loc, missing)
	if err != nil {
		return nil, err
	}
	at := c.now()
	fetched := make(Bundle[V], len(missing))
	for _, id := range missing {
		fetched[id] = Record[V]{Items: results[id], FetchedAt: at}
	}
	return fetched, nil
}

// mergeAndPersist folds fetched into the stored bundle under the location's
// critical section and writes it back. Collections absent from fetched
// survive even when stale; staleness is re-evaluated on the next read. Write
// failures are reported but never unwind the in-memory result.
func (c *cache[V]) mergeAndPersist(ctx context.Context, key LocationKey, fetched Bundle[V]) {
	unlock := c.locks.lock(string(key))
	defer unlock()

	sk := c.storageKey(key)
	merged := c.readBundle(ctx, sk).union(fetched)

	raw, err := c.encodeBundle(merged)
	if err != nil {
		c.log.Error("bundle encode failed", Fields{"key": key, "err": err})
		c.hooks.StoreWriteFailed(sk, err)
		return
	}
	ok, err := c.provider.Set(ctx, sk, raw, c.computeSetCost(sk, raw, len(merged)), c.retention)
	if err != nil {
		c.log.Error("bundle persist failed", Fields{"key": key, "err": err})
		c.hooks.StoreWriteFailed(sk, err)
		return
	}
	if !ok {
		c.hooks.ProviderSetRejected(sk)
		c.log.Debug("bundle Set rejected by provider (pressure)", Fields{"key": key})
	}
}

// readBundle loads and decodes the stored bundle. Misses, read errors and
// corruption all degrade to an absent bundle; corrupt entries are deleted
// (self-heal) so the next write starts clean.
func (c *cache[V]) readBundle(ctx context.Context, storageKey string) Bundle[V] {
	raw, ok, err := c.provider.Get(ctx, storageKey)
	if err != nil {
		c.log.Warn("bundle read failed; treating as miss", Fields{"key": storageKey, "err": err})
		return nil
	}
	if !ok {
		return nil
	}
	recs, err := wire.DecodeBundle(raw)
	if err != nil {
		_ = c.provider.Del(ctx, storageKey) // self-heal corrupt
		c.hooks.CorruptBundleDropped(storageKey, "frame")
		return nil
	}
	b := make(Bundle[V], len(recs))
	for _, rec := range recs {
		items := make([]V, 0, len(rec.Items))
		for _, p := range rec.Items {
			v, err := c.codec.Decode(p)
			if err != nil {
				_ = c.provider.Del(ctx, storageKey) // self-heal
				c.hooks.CorruptBundleDropped(storageKey, "item_decode")
				return nil
			}
			items = append(items, v)
		}
		b[CollectionID(rec.ID)] = Record[V]{Items: items, FetchedAt: time.UnixMilli(rec.FetchedAt)}
	}
	return b
}

func (c *cache[V]) encodeBundle(b Bundle[V]) ([]byte, error) {
	recs := make([]wire.Record, 0, len(b))
	for _, id := range b.Collections() { // deterministic record order
		r := b[id]
		items := make([][]byte, 0, len(r.Items))
		for _, it := range r.Items {
			p, err := c.codec.Encode(it)
			if err != nil {
				return nil, err
			}
			items = append(items, p)
		}
		recs = append(recs, wire.Record{
			ID:        string(id),
			FetchedAt: r.FetchedAt.UnixMilli(),
			Items:     items,
		})
	}
	return wire.EncodeBundle(recs)
}

func (c *cache[V]) storageKey(key LocationKey) string {
	// isolate by namespace
	return "bundle:" + c.ns + ":" + string(key)
}

// flightKey is the de-duplication key for one pending fetch: location plus
// the sorted missing set, so identical concurrent requests share one flight.
func flightKey(key LocationKey, missing []CollectionID) string {
	var sb strings.Builder
	sb.WriteString(string(key))
	for _, id := range missing {
		sb.WriteByte('|')
		sb.WriteString(string(id))
	}
	return sb.String()
}
