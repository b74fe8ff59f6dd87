// Package asynchook decouples Hooks sinks from the cache's hot paths with a
// bounded queue; events are dropped rather than ever blocking a caller.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    CorruptEvery:     10, // sample logs: ~every 10th corrupt drop
//	    FetchSharedEvery: 1,  // log every shared fetch
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := poicache.New[Place](poicache.Options[Place]{
//	    Namespace: "app:prod:poi",
//	    Provider:  provider,
//	    Codec:     codec.JSON[Place]{},
//	    Fetcher:   fetcher,
//	    Hooks:     hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/poicache"
)

type Hooks struct {
	inner poicache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ poicache.Hooks = (*Hooks)(nil)

func New(inner poicache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) CorruptBundleDropped(k, r string) {
	h.try(func() { h.inner.CorruptBundleDropped(k, r) })
}
func (h *Hooks) FetchFailed(k string, n int, err error) {
	h.try(func() { h.inner.FetchFailed(k, n, err) })
}
func (h *Hooks) FetchShared(k string, n int) { h.try(func() { h.inner.FetchShared(k, n) }) }
func (h *Hooks) StoreWriteFailed(k string, err error) {
	h.try(func() { h.inner.StoreWriteFailed(k, err) })
}
func (h *Hooks) ProviderSetRejected(k string) { h.try(func() { h.inner.ProviderSetRejected(k) }) }
