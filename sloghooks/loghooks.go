// Package sloghooks is a slog-backed Hooks implementation with sampling for
// the noisy events. Wrap with hooks/async if the handler can block.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/poicache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	CorruptEvery     uint64
	FetchSharedEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	corruptCtr atomic.Uint64
	sharedCtr  atomic.Uint64
}

var _ poicache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) CorruptBundleDropped(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.CorruptEvery, &h.corruptCtr) {
		return
	}
	h.l.Debug("poicache.corrupt_bundle_dropped",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) FetchFailed(locationKey string, collections int, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("poicache.fetch_failed",
		"key", h.redact(locationKey),
		"collections", collections,
		"err", err)
}

func (h *Hooks) FetchShared(locationKey string, collections int) {
	if h.l == nil || !sample(h.opts.FetchSharedEvery, &h.sharedCtr) {
		return
	}
	h.l.Debug("poicache.fetch_shared",
		"key", h.redact(locationKey),
		"collections", collections)
}

func (h *Hooks) StoreWriteFailed(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("poicache.store_write_failed",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) ProviderSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("poicache.provider_set_rejected",
		"key", h.redact(storageKey))
}
