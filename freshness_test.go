package poicache

import (
	"testing"
	"time"
)

func TestFreshBoundary(t *testing.T) {
	fetched := time.UnixMilli(1_700_000_000_000)
	ttl := time.Hour
	r := Record[place]{FetchedAt: fetched}

	if !r.Fresh(ttl, fetched.Add(ttl-time.Millisecond)) {
		t.Fatalf("record just under ttl should be fresh")
	}
	if r.Fresh(ttl, fetched.Add(ttl)) {
		t.Fatalf("record exactly ttl old must be stale")
	}
	if r.Fresh(ttl, fetched.Add(ttl+time.Second)) {
		t.Fatalf("record past ttl must be stale")
	}
}

// Freshness is monotonic in now: once stale it never flips back.
func TestFreshMonotonic(t *testing.T) {
	fetched := time.UnixMilli(1_700_000_000_000)
	ttl := time.Hour
	r := Record[place]{FetchedAt: fetched}

	stale := false
	for d := time.Duration(0); d <= 3*ttl; d += ttl / 4 {
		f := r.Fresh(ttl, fetched.Add(d))
		if stale && f {
			t.Fatalf("freshness flipped back true at +%v", d)
		}
		if !f {
			stale = true
		}
	}
	if !stale {
		t.Fatalf("record never went stale")
	}
}

func TestFreshZeroTimestampIsStale(t *testing.T) {
	var r Record[place]
	if r.Fresh(time.Hour, time.Now()) {
		t.Fatalf("never-fetched record must be stale")
	}
}
